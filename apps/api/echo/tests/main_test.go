package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	. "github.com/kazadi/darasa/apps/api/echo"
	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/period"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
	emailsvc "github.com/kazadi/darasa/services/email"
	dummydb "github.com/kazadi/darasa/storage/database/dummy"
	testutil "github.com/kazadi/darasa/tests"
)

var (
	conf *core.Config
	app  Server

	usrRepo   user.Repository
	grpRepo   group.Repository
	crsRepo   course.Repository
	prdRepo   period.Repository
	schedRepo schedule.Repository
	lsnRepo   lesson.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Darasa",
		SecretKey: "~s3cr3t~",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		os.Exit(1)
	}
	usrRepo = dummydb.NewUserRepository(db)
	grpRepo = dummydb.NewGroupRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)
	prdRepo = dummydb.NewPeriodRepository(db)
	schedRepo = dummydb.NewScheduleRepository(db)
	lsnRepo = dummydb.NewLessonRepository(db)
	mrkRepo := dummydb.NewMarkRepository(db)

	validate, translator := testutil.NewValidator()

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	// set up server
	app = NewServer(&Options{
		Conf:           conf,
		Logger:         core.NewNoopLogger(),
		DisableReqLogs: true,
		UserSvc:        user.NewService(nil, usrRepo, mailSvc, conf),
		GroupSvc:       group.NewService(grpRepo, usrRepo, validate),
		CourseSvc:      course.NewService(crsRepo, validate),
		PeriodSvc:      period.NewService(prdRepo, validate),
		ScheduleSvc:    schedule.NewService(nil, schedRepo, lsnRepo, crsRepo, validate),
		LessonSvc:      lesson.NewService(nil, lsnRepo, grpRepo, prdRepo),
		MarkSvc:        mark.NewService(nil, mrkRepo, validate),
		Validate:       validate,
		Translator:     translator,
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func itoa(id int) string { return strconv.Itoa(id) }

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
