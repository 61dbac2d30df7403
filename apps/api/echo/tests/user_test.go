package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/kazadi/darasa/apps/api/echo"
	"github.com/kazadi/darasa/core/user"
	testutil "github.com/kazadi/darasa/tests"
)

func Test_userApi_login(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "LolC@t123", user.StudentRoles, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "LolC@t123", user.StudentRoles, false)

	body := func(uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}
	reqMsg := "this field is required"

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": reqMsg, "password": reqMsg}),
		},
		{
			name: "unknown user", body: body("whoami", "LolC@t123"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: body("hero", "nope nope"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: body("ndog", "LolC@t123"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "email works too", body: body(student.Email, "LolC@t123"), wantCode: http.StatusOK},
		{name: "logged in", body: body("hero", "LolC@t123"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Ref", "ref", "ref@test.cd", "", user.StudentRoles, true)
	naughty := testutil.CreateUser(t, usrRepo, "Ref Dog", "refdog", "refdog@test.cd", "", user.StudentRoles, false)

	// original issue older than the refresh window
	origIat := time.Now().Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix()
	unrefreshableToken, err := echoapi.GenerateToken(echoapi.GetUserClaims(conf, student, origIat))
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_permissions(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Perm Student", "permstud", "permstud@test.cd", "", user.StudentRoles, true)
	teacher := testutil.CreateUser(t, usrRepo, "Perm Teacher", "permteach", "permteach@test.cd", "", user.TeacherRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Perm Admin", "permadmin", "permadmin@test.cd", "", []string{user.RoleAdmin}, true)

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "user list: auth required", method: http.MethodGet, path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "user list: admin required", method: http.MethodGet, path: "/v1/users", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "user list: teacher is not admin", method: http.MethodGet, path: "/v1/users", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "roles: admin ok", method: http.MethodGet, path: "/v1/users/roles", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)},
		{name: "own profile ok", method: http.MethodGet, path: "/v1/users/" + itoa(student.ID), token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
		{name: "other profile not found", method: http.MethodGet, path: "/v1/users/" + itoa(teacher.ID), token: getToken(t, student), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "admin reads any profile", method: http.MethodGet, path: "/v1/users/" + itoa(student.ID), token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
