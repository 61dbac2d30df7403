package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
	testutil "github.com/kazadi/darasa/tests"
)

// exercises the whole weekly records flow over HTTP: scheduling, lesson
// generation, realization, attendance and marking.
func Test_recordsFlow(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Flow Teacher", "flowteach", "flowteach@test.cd", "", user.TeacherRoles, true)
	student := testutil.CreateUser(t, usrRepo, "Flow Student", "flowstud", "flowstud@test.cd", "", user.StudentRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Flow Admin", "flowadmin", "flowadmin@test.cd", "", []string{user.RoleAdmin}, true)

	grp := testutil.CreateGroup(t, grpRepo, "Flow G1", teacher.ID)
	testutil.AssignStudent(t, grpRepo, student.ID, grp.ID,
		core.Date(2024, time.January, 1), core.Date(2024, time.June, 30))
	crs := testutil.CreateCourse(t, crsRepo, "Flow Maths", grp.ID)
	prd := testutil.CreatePeriod(t, prdRepo, "10:00", "10:45")

	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, student)

	var sched schedule.Schedule
	t.Run("admin schedules the course", func(t *testing.T) {
		body := marchallObj(t, schedule.NewSchedule{
			CourseID:  crs.ID,
			TeacherID: teacher.ID,
			PeriodID:  prd.ID,
			DateStart: core.Date(2024, time.January, 1),
			DateEnd:   core.Date(2024, time.January, 15),
		})

		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules", studentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("students may not schedule; code = %v", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/schedules", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &sched); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if sched.GroupID != grp.ID {
			t.Errorf("GroupID = %d; want %d", sched.GroupID, grp.ID)
		}
	})

	t.Run("a colliding slot is rejected", func(t *testing.T) {
		body := marchallObj(t, schedule.NewSchedule{
			CourseID:  crs.ID,
			TeacherID: teacher.ID,
			PeriodID:  prd.ID,
			DateStart: core.Date(2024, time.January, 8),
			DateEnd:   core.Date(2024, time.January, 29),
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var fldErrs map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if _, ok := fldErrs["teacher"]; !ok {
			t.Errorf("teacher collision not reported: %v", fldErrs)
		}
		if _, ok := fldErrs["course"]; !ok {
			t.Errorf("group collision not reported: %v", fldErrs)
		}
	})

	var lessons []lesson.Lesson
	t.Run("lessons were generated weekly", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons?schedule_id="+itoa(sched.ID), studentToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &lessons); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(lessons) != 2 {
			t.Fatalf("len(lessons) = %d; want 2 (the end date is excluded)", len(lessons))
		}
	})

	t.Run("teacher realizes a lesson", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"subject": "Intro to fractions"})

		req, rec := newAuthRequest(http.MethodPost, "/v1/lessons/"+itoa(lessons[0].ID)+"/realize", studentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("students may not realize lessons; code = %v", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/lessons/"+itoa(lessons[0].ID)+"/realize", teacherToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var lsn lesson.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &lsn); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if lsn.Status != lesson.StatusRealized {
			t.Errorf("Status = %v; want %v", lsn.Status, lesson.StatusRealized)
		}
	})

	t.Run("attendance was seeded and can be amended", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons/"+itoa(lessons[0].ID)+"/attendances", teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var atts []lesson.Attendance
		if err := json.Unmarshal(rec.Body.Bytes(), &atts); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(atts) != 1 || atts[0].StudentID != student.ID || atts[0].Status != lesson.AttendancePresent {
			t.Fatalf("unexpected seeded attendance: %+v", atts)
		}

		body := marchallList(t, echo.Map{"student_id": student.ID, "status": lesson.AttendanceAbsent})
		req, rec = newAuthRequest(http.MethodPut, "/v1/lessons/"+itoa(lessons[0].ID)+"/attendances", teacherToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &atts); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if atts[0].Status != lesson.AttendanceAbsent {
			t.Errorf("Status = %v; want %v", atts[0].Status, lesson.AttendanceAbsent)
		}

		// a student who is not enrolled on the date has no record
		body = marchallList(t, echo.Map{"student_id": 424242, "status": lesson.AttendanceLate})
		req, rec = newAuthRequest(http.MethodPut, "/v1/lessons/"+itoa(lessons[0].ID)+"/attendances", teacherToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var fldErrs map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if _, ok := fldErrs["student_id"]; !ok {
			t.Errorf("missing student_id error: %v", fldErrs)
		}
	})

	t.Run("group timetable lays out the week", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetables/groups/"+itoa(grp.ID)+"?date=2024-01-04", studentToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var tt lesson.Timetable
		if err := json.Unmarshal(rec.Body.Bytes(), &tt); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(tt.Dates) != 7 {
			t.Errorf("len(Dates) = %d; want 7", len(tt.Dates))
		}
		found := false
		for _, row := range tt.Rows {
			if row.Period.ID != prd.ID {
				continue
			}
			found = row.Lessons[0] != nil && row.Lessons[0].ID == lessons[0].ID
		}
		if !found {
			t.Errorf("the realized lesson is not on the grid: %+v", tt.Rows)
		}
	})

	t.Run("teacher marks the student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/marks/symbols", adminToken,
			marchallObj(t, echo.Map{"name": "8", "value": "8"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var sym mark.Symbol
		if err := json.Unmarshal(rec.Body.Bytes(), &sym); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/marks/categories", adminToken,
			marchallObj(t, echo.Map{"name": "oral exam"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var cat mark.Category
		if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/marks", teacherToken, marchallObj(t, mark.NewMark{
			StudentID:  student.ID,
			TeacherID:  teacher.ID,
			CourseID:   crs.ID,
			CategoryID: cat.ID,
			SymbolID:   sym.ID,
		}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var mrk mark.Mark
		if err := json.Unmarshal(rec.Body.Bytes(), &mrk); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}

		// the teacher who entered the mark is on the audit trail
		req, rec = newAuthRequest(http.MethodGet, "/v1/marks/"+itoa(mrk.ID)+"/history", teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var hist []mark.ChangeHistory
		if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(hist) != 1 || hist[0].Type != mark.ChangeAdd || hist[0].UserID != teacher.ID {
			t.Errorf("unexpected history: %+v", hist)
		}
	})
}
