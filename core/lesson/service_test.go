package lesson_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
	dummydb "github.com/kazadi/darasa/storage/database/dummy"
	testutil "github.com/kazadi/darasa/tests"
)

type fixture struct {
	svc     *lesson.Service
	repo    lesson.Repository
	usrRepo user.Repository
	grpRepo group.Repository

	teacher user.User
	s1, s2  user.User
	grp     group.StudentGroup
	lessons []lesson.Lesson // Mondays Jan 1st, 8th and 15th 2024
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	grpRepo := dummydb.NewGroupRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	prdRepo := dummydb.NewPeriodRepository(db)
	schedRepo := dummydb.NewScheduleRepository(db)
	lsnRepo := dummydb.NewLessonRepository(db)
	validate, _ := testutil.NewValidator()

	f := &fixture{
		svc:     lesson.NewService(nil, lsnRepo, grpRepo, prdRepo),
		repo:    lsnRepo,
		usrRepo: usrRepo,
		grpRepo: grpRepo,
	}
	f.teacher = testutil.CreateUser(t, usrRepo, "T1", "teach1", "t1@test.cd", "", user.TeacherRoles, true)
	f.s1 = testutil.CreateUser(t, usrRepo, "S1", "stud1", "s1@test.cd", "", user.StudentRoles, true)
	f.s2 = testutil.CreateUser(t, usrRepo, "S2", "stud2", "s2@test.cd", "", user.StudentRoles, true)
	f.grp = testutil.CreateGroup(t, grpRepo, "G1-A", f.teacher.ID)
	crs := testutil.CreateCourse(t, crsRepo, "Maths", f.grp.ID)
	prd := testutil.CreatePeriod(t, prdRepo, "08:00", "08:45")

	testutil.AssignStudent(t, grpRepo, f.s1.ID, f.grp.ID,
		core.Date(2024, time.January, 1), core.Date(2024, time.June, 30))
	testutil.AssignStudent(t, grpRepo, f.s2.ID, f.grp.ID,
		core.Date(2024, time.January, 1), core.Date(2024, time.June, 30))

	schedSvc := schedule.NewService(nil, schedRepo, lsnRepo, crsRepo, validate)
	sched, err := schedSvc.Create(ctx, schedule.NewSchedule{
		CourseID:  crs.ID,
		TeacherID: f.teacher.ID,
		PeriodID:  prd.ID,
		DateStart: core.Date(2024, time.January, 1),
		DateEnd:   core.Date(2024, time.January, 22),
	})
	if err != nil {
		t.Fatalf("creating schedule failed: %v", err)
	}
	f.lessons, err = f.svc.Query(ctx, lesson.QueryFilter{ScheduleID: sched.ID})
	if err != nil {
		t.Fatalf("querying lessons failed: %v", err)
	}
	if len(f.lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(f.lessons))
	}
	return f
}

func attendanceStatuses(atts []lesson.Attendance) map[int]lesson.AttendanceStatus {
	statuses := make(map[int]lesson.AttendanceStatus, len(atts))
	for _, att := range atts {
		statuses[att.StudentID] = att.Status
	}
	return statuses
}

func TestService_Realize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lsn, err := f.svc.Realize(ctx, f.lessons[0].ID, "  Fractions  ")
	if err != nil {
		t.Fatalf("Realize() failed: %v", err)
	}
	assert.Equal(t, lesson.StatusRealized, lsn.Status)
	assert.Equal(t, "Fractions", lsn.Subject)

	// every enrolled student got a present record
	atts, err := f.repo.QueryLessonAttendances(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("QueryLessonAttendances() failed: %v", err)
	}
	assert.Equal(t,
		map[int]lesson.AttendanceStatus{f.s1.ID: lesson.AttendancePresent, f.s2.ID: lesson.AttendancePresent},
		attendanceStatuses(atts))
}

func TestService_CancelAndRestore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lsn, err := f.svc.Realize(ctx, f.lessons[0].ID, "Fractions")
	if err != nil {
		t.Fatalf("Realize() failed: %v", err)
	}

	lsn, err = f.svc.Cancel(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	assert.Equal(t, lesson.StatusCancelled, lsn.Status)
	assert.Empty(t, lsn.Subject)

	atts, err := f.repo.QueryLessonAttendances(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("QueryLessonAttendances() failed: %v", err)
	}
	assert.Empty(t, atts)

	lsn, err = f.svc.Restore(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	assert.Equal(t, lesson.StatusPlanned, lsn.Status)

	atts, err = f.svc.Attendances(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("Attendances() failed: %v", err)
	}
	assert.Equal(t,
		map[int]lesson.AttendanceStatus{f.s1.ID: lesson.AttendancePresent, f.s2.ID: lesson.AttendancePresent},
		attendanceStatuses(atts))
}

func TestService_LifecycleTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	statusError := func(t *testing.T, err error) {
		t.Helper()
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
		}
		assert.Equal(t, "status", vErr.Fields[0].Field)
	}

	// a planned lesson has nothing to restore
	_, err := f.svc.Restore(ctx, f.lessons[0].ID)
	statusError(t, err)

	lsn, err := f.svc.Realize(ctx, f.lessons[0].ID, "Fractions")
	if err != nil {
		t.Fatalf("Realize() failed: %v", err)
	}

	// restoring a realized lesson would wipe what was taught
	_, err = f.svc.Restore(ctx, lsn.ID)
	statusError(t, err)
	lsn, err = f.svc.GetByID(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	assert.Equal(t, lesson.StatusRealized, lsn.Status)
	assert.Equal(t, "Fractions", lsn.Subject)

	// realizing again just updates the subject
	lsn, err = f.svc.Realize(ctx, lsn.ID, "Decimals")
	if err != nil {
		t.Fatalf("Realize() failed: %v", err)
	}
	assert.Equal(t, "Decimals", lsn.Subject)

	if _, err = f.svc.Cancel(ctx, lsn.ID); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}

	// a cancelled lesson must be restored before anything else
	_, err = f.svc.Realize(ctx, lsn.ID, "Percentages")
	statusError(t, err)
	_, err = f.svc.Cancel(ctx, lsn.ID)
	statusError(t, err)
	lsn, err = f.svc.GetByID(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	assert.Equal(t, lesson.StatusCancelled, lsn.Status)
}

func TestService_Attendances_reconciles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lsn := f.lessons[1] // Jan 8th

	// newcomers show up with a present record
	s3 := testutil.CreateUser(t, f.usrRepo, "S3", "stud3", "s3@test.cd", "", user.StudentRoles, true)
	testutil.AssignStudent(t, f.grpRepo, s3.ID, f.grp.ID,
		core.Date(2024, time.January, 8), core.Date(2024, time.January, 10))

	atts, err := f.svc.Attendances(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("Attendances() failed: %v", err)
	}
	assert.Len(t, atts, 3)
	assert.Contains(t, attendanceStatuses(atts), s3.ID)

	// s3's enrollment does not cover Jan 15th
	atts, err = f.svc.Attendances(ctx, f.lessons[2].ID)
	if err != nil {
		t.Fatalf("Attendances() failed: %v", err)
	}
	assert.NotContains(t, attendanceStatuses(atts), s3.ID)

	// records of students not enrolled on the date are dropped
	stranger, err := f.repo.CreateAttendance(ctx, lesson.Attendance{
		LessonID: lsn.ID, StudentID: 999, Status: lesson.AttendanceAbsent,
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	atts, err = f.svc.Attendances(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("Attendances() failed: %v", err)
	}
	assert.NotContains(t, attendanceStatuses(atts), stranger.StudentID)

	// reconciling again changes nothing
	again, err := f.svc.Attendances(ctx, lsn.ID)
	if err != nil {
		t.Fatalf("Attendances() failed: %v", err)
	}
	assert.Equal(t, attendanceStatuses(atts), attendanceStatuses(again))
}

func TestService_UpdateSubject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// only a realized lesson has a subject
	_, err := f.svc.UpdateSubject(ctx, f.lessons[0].ID, "Fractions")
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	assert.Equal(t, "subject", vErr.Fields[0].Field)

	if _, err = f.svc.Realize(ctx, f.lessons[0].ID, "Fractions"); err != nil {
		t.Fatalf("Realize() failed: %v", err)
	}
	lsn, err := f.svc.UpdateSubject(ctx, f.lessons[0].ID, " Decimals ")
	if err != nil {
		t.Fatalf("UpdateSubject() failed: %v", err)
	}
	assert.Equal(t, "Decimals", lsn.Subject)
}

func TestService_SetAttendances(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lsn := f.lessons[0]

	atts, err := f.svc.SetAttendances(ctx, lsn.ID, map[int]lesson.AttendanceStatus{
		f.s1.ID: lesson.AttendanceLate,
		f.s2.ID: lesson.AttendanceAbsent,
	})
	if err != nil {
		t.Fatalf("SetAttendances() failed: %v", err)
	}
	assert.Equal(t,
		map[int]lesson.AttendanceStatus{f.s1.ID: lesson.AttendanceLate, f.s2.ID: lesson.AttendanceAbsent},
		attendanceStatuses(atts))

	// results come back ordered by student
	for i := 1; i < len(atts); i++ {
		assert.Less(t, atts[i-1].StudentID, atts[i].StudentID)
	}

	// unknown student means no record to update
	_, err = f.svc.SetAttendances(ctx, lsn.ID, map[int]lesson.AttendanceStatus{999: lesson.AttendanceLate})
	assert.Equal(t, lesson.ErrAttendanceNotFound, err)

	// setting the same status again is a no-op
	atts, err = f.svc.SetAttendances(ctx, lsn.ID, map[int]lesson.AttendanceStatus{f.s1.ID: lesson.AttendanceLate})
	if err != nil {
		t.Fatalf("SetAttendances() failed: %v", err)
	}
	assert.Equal(t, lesson.AttendanceLate, attendanceStatuses(atts)[f.s1.ID])
}

func TestService_Query_byStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Realize(ctx, f.lessons[0].ID, "Fractions"); err != nil {
		t.Fatalf("Realize() failed: %v", err)
	}

	realized := lesson.StatusRealized
	lessons, err := f.svc.Query(ctx, lesson.QueryFilter{Status: &realized})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	assert.Len(t, lessons, 1)
	assert.Equal(t, f.lessons[0].ID, lessons[0].ID)

	planned := lesson.StatusPlanned
	lessons, err = f.svc.Query(ctx, lesson.QueryFilter{Status: &planned})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	assert.Len(t, lessons, 2)
}

func TestService_Timetables(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tt, err := f.svc.TeacherTimetable(ctx, f.teacher.ID, core.Date(2024, time.January, 4)) // a Thursday
	if err != nil {
		t.Fatalf("TeacherTimetable() failed: %v", err)
	}

	// the whole week, Monday first
	assert.Len(t, tt.Dates, 7)
	assert.Equal(t, core.Date(2024, time.January, 1), tt.Dates[0])
	assert.Equal(t, core.Date(2024, time.January, 7), tt.Dates[6])

	// one row per period, the Monday lesson in the first cell
	if assert.Len(t, tt.Rows, 1) {
		cells := tt.Rows[0].Lessons
		if assert.NotNil(t, cells[0]) {
			assert.Equal(t, f.lessons[0].ID, cells[0].ID)
		}
		for _, cell := range cells[1:] {
			assert.Nil(t, cell)
		}
	}

	gtt, err := f.svc.GroupTimetable(ctx, f.grp.ID, core.Date(2024, time.January, 4))
	if err != nil {
		t.Fatalf("GroupTimetable() failed: %v", err)
	}
	assert.Equal(t, tt.Dates, gtt.Dates)
	if assert.Len(t, gtt.Rows, 1) && assert.NotNil(t, gtt.Rows[0].Lessons[0]) {
		assert.Equal(t, f.lessons[0].ID, gtt.Rows[0].Lessons[0].ID)
	}
}
