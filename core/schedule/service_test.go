package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/period"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
	dummydb "github.com/kazadi/darasa/storage/database/dummy"
	testutil "github.com/kazadi/darasa/tests"
)

type fixture struct {
	svc        *schedule.Service
	lessonRepo lesson.Repository

	teacher  user.User
	teacher2 user.User
	grp      group.StudentGroup
	grp2     group.StudentGroup
	crs      course.Course
	crs2     course.Course
	prd      period.Period
}

func setup(t *testing.T) *fixture {
	t.Helper()

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
		svc:        schedule.NewService(nil, schedRepo, lsnRepo, crsRepo, validate),
		lessonRepo: lsnRepo,
	}
	f.teacher = testutil.CreateUser(t, usrRepo, "T1", "teach1", "t1@test.cd", "", user.TeacherRoles, true)
	f.teacher2 = testutil.CreateUser(t, usrRepo, "T2", "teach2", "t2@test.cd", "", user.TeacherRoles, true)
	f.grp = testutil.CreateGroup(t, grpRepo, "G1-A", f.teacher.ID)
	f.grp2 = testutil.CreateGroup(t, grpRepo, "G1-B", f.teacher2.ID)
	f.crs = testutil.CreateCourse(t, crsRepo, "Maths", f.grp.ID)
	f.crs2 = testutil.CreateCourse(t, crsRepo, "Maths", f.grp2.ID)
	f.prd = testutil.CreatePeriod(t, prdRepo, "08:00", "08:45")
	return f
}

func (f *fixture) lessonDates(t *testing.T, scheduleID int) []time.Time {
	t.Helper()

	dates, err := f.lessonRepo.LessonDates(context.Background(), scheduleID)
	if err != nil {
		t.Fatalf("LessonDates() failed: %v", err)
	}
	return dates
}

func (f *fixture) realizeLessonOn(t *testing.T, scheduleID int, date time.Time) {
	t.Helper()

	ctx := context.Background()
	lessons, err := f.lessonRepo.QueryLessons(ctx, lesson.QueryFilter{ScheduleID: scheduleID})
	if err != nil {
		t.Fatalf("QueryLessons() failed: %v", err)
	}
	for _, lsn := range lessons {
		if lsn.Date.Equal(date) {
			lsn.Status = lesson.StatusRealized
			lsn.Subject = "held"
			if _, err := f.lessonRepo.UpdateLesson(ctx, lsn); err != nil {
				t.Fatalf("UpdateLesson() failed: %v", err)
			}
			return
		}
	}
	t.Fatalf("no lesson on %s", date.Format("2006-01-02"))
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, fErr := range vErr.Fields {
		flds[fErr.Field] = fErr.Error
	}
	return flds
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sched, err := f.svc.Create(ctx, schedule.NewSchedule{
		CourseID:  f.crs.ID,
		TeacherID: f.teacher.ID,
		PeriodID:  f.prd.ID,
		DateStart: core.Date(2024, time.January, 1),
		DateEnd:   core.Date(2024, time.January, 15),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	assert.Equal(t, 0, sched.DayOfWeek) // Jan 1st 2024 is a Monday
	assert.Equal(t, f.grp.ID, sched.GroupID)

	// one lesson per week, the end date itself excluded
	assert.Equal(t,
		[]time.Time{core.Date(2024, time.January, 1), core.Date(2024, time.January, 8)},
		f.lessonDates(t, sched.ID))
}

func TestService_Create_dateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	newSched := func(dateStart, dateEnd time.Time) schedule.NewSchedule {
		return schedule.NewSchedule{
			CourseID:  f.crs.ID,
			TeacherID: f.teacher.ID,
			PeriodID:  f.prd.ID,
			DateStart: dateStart,
			DateEnd:   dateEnd,
		}
	}

	t.Run("end before start", func(t *testing.T) {
		_, err := f.svc.Create(ctx, newSched(core.Date(2024, time.January, 8), core.Date(2024, time.January, 1)))
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "date_end")
	})

	t.Run("span longer than a year", func(t *testing.T) {
		_, err := f.svc.Create(ctx, newSched(core.Date(2024, time.January, 1), core.Date(2025, time.January, 7)))
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "date_end")
	})

	t.Run("exactly a year is fine", func(t *testing.T) {
		_, err := f.svc.Create(ctx, newSched(core.Date(2024, time.January, 1), core.Date(2024, time.December, 31)))
		assert.NoError(t, err)
	})
}

func TestService_Create_collisions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// occupy Mondays 08:00 for teacher1 with group1's course
	_, err := f.svc.Create(ctx, schedule.NewSchedule{
		CourseID:  f.crs.ID,
		TeacherID: f.teacher.ID,
		PeriodID:  f.prd.ID,
		DateStart: core.Date(2024, time.January, 1),
		DateEnd:   core.Date(2024, time.July, 1),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	tests := []struct {
		name      string
		courseID  int
		teacherID int
		dateStart time.Time
		dateEnd   time.Time
		wantFlds  []string
	}{
		{
			name:      "same teacher, other group",
			courseID:  f.crs2.ID,
			teacherID: f.teacher.ID,
			dateStart: core.Date(2024, time.March, 4),
			dateEnd:   core.Date(2024, time.September, 30),
			wantFlds:  []string{"teacher"},
		},
		{
			name:      "other teacher, same group",
			courseID:  f.crs.ID,
			teacherID: f.teacher2.ID,
			dateStart: core.Date(2024, time.March, 4),
			dateEnd:   core.Date(2024, time.September, 30),
			wantFlds:  []string{"course"},
		},
		{
			name:      "same teacher and same group",
			courseID:  f.crs.ID,
			teacherID: f.teacher.ID,
			dateStart: core.Date(2024, time.March, 4),
			dateEnd:   core.Date(2024, time.September, 30),
			wantFlds:  []string{"teacher", "course"},
		},
		{
			name:      "other teacher and other group",
			courseID:  f.crs2.ID,
			teacherID: f.teacher2.ID,
			dateStart: core.Date(2024, time.March, 4),
			dateEnd:   core.Date(2024, time.September, 30),
		},
		{
			name:      "same slot but disjoint dates",
			courseID:  f.crs.ID,
			teacherID: f.teacher.ID,
			dateStart: core.Date(2024, time.September, 2),
			dateEnd:   core.Date(2024, time.December, 31),
		},
		{
			name:      "overlap on the boundary date",
			courseID:  f.crs.ID,
			teacherID: f.teacher.ID,
			dateStart: core.Date(2024, time.July, 1),
			dateEnd:   core.Date(2024, time.December, 31),
			wantFlds:  []string{"teacher", "course"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, schedule.NewSchedule{
				CourseID:  tt.courseID,
				TeacherID: tt.teacherID,
				PeriodID:  f.prd.ID,
				DateStart: tt.dateStart,
				DateEnd:   tt.dateEnd,
			})
			if len(tt.wantFlds) == 0 {
				assert.NoError(t, err)
				return
			}
			flds := fieldErrors(t, err)
			assert.Len(t, flds, len(tt.wantFlds))
			for _, fld := range tt.wantFlds {
				assert.Contains(t, flds, fld)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sched, err := f.svc.Create(ctx, schedule.NewSchedule{
		CourseID:  f.crs.ID,
		TeacherID: f.teacher.ID,
		PeriodID:  f.prd.ID,
		DateStart: core.Date(2024, time.January, 1),
		DateEnd:   core.Date(2024, time.January, 15),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	t.Run("extension creates the missing lessons", func(t *testing.T) {
		_, err := f.svc.Update(ctx, sched.ID, schedule.UpdateSchedule{
			DateStart: core.Date(2024, time.January, 1),
			DateEnd:   core.Date(2024, time.January, 22),
		})
		assert.NoError(t, err)
		assert.Equal(t,
			[]time.Time{
				core.Date(2024, time.January, 1),
				core.Date(2024, time.January, 8),
				core.Date(2024, time.January, 15),
			},
			f.lessonDates(t, sched.ID))
	})

	t.Run("shrink drops the orphaned lessons", func(t *testing.T) {
		_, err := f.svc.Update(ctx, sched.ID, schedule.UpdateSchedule{
			DateStart: core.Date(2024, time.January, 1),
			DateEnd:   core.Date(2024, time.January, 15),
		})
		assert.NoError(t, err)
		assert.Equal(t,
			[]time.Time{core.Date(2024, time.January, 1), core.Date(2024, time.January, 8)},
			f.lessonDates(t, sched.ID))
	})

	t.Run("moving the weekday replaces all lessons", func(t *testing.T) {
		_, err := f.svc.Update(ctx, sched.ID, schedule.UpdateSchedule{
			DateStart: core.Date(2024, time.January, 2), // Tuesday
			DateEnd:   core.Date(2024, time.January, 16),
		})
		assert.NoError(t, err)
		assert.Equal(t,
			[]time.Time{core.Date(2024, time.January, 2), core.Date(2024, time.January, 9)},
			f.lessonDates(t, sched.ID))
	})

	t.Run("realized lessons pin the interval", func(t *testing.T) {
		f.realizeLessonOn(t, sched.ID, core.Date(2024, time.January, 9))

		editable, err := f.svc.Editable(ctx, sched.ID)
		assert.NoError(t, err)
		assert.False(t, editable)

		_, err = f.svc.Update(ctx, sched.ID, schedule.UpdateSchedule{
			DateStart: core.Date(2024, time.January, 2),
			DateEnd:   core.Date(2024, time.January, 9),
		})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds["date_end"], "2024-01-09")

		// nothing was deleted
		assert.Equal(t,
			[]time.Time{core.Date(2024, time.January, 2), core.Date(2024, time.January, 9)},
			f.lessonDates(t, sched.ID))
	})

	t.Run("shrinking around realized lessons is fine", func(t *testing.T) {
		_, err := f.svc.Update(ctx, sched.ID, schedule.UpdateSchedule{
			DateStart: core.Date(2024, time.January, 9),
			DateEnd:   core.Date(2024, time.January, 16),
		})
		assert.NoError(t, err)
		assert.Equal(t,
			[]time.Time{core.Date(2024, time.January, 9)},
			f.lessonDates(t, sched.ID))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, schedule.UpdateSchedule{
			DateStart: core.Date(2024, time.January, 1),
			DateEnd:   core.Date(2024, time.January, 15),
		})
		assert.Equal(t, schedule.ErrNotFound, err)
	})
}

func TestService_Delete_cascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sched, err := f.svc.Create(ctx, schedule.NewSchedule{
		CourseID:  f.crs.ID,
		TeacherID: f.teacher.ID,
		PeriodID:  f.prd.ID,
		DateStart: core.Date(2024, time.January, 1),
		DateEnd:   core.Date(2024, time.January, 15),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := f.svc.Delete(ctx, sched.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	_, err = f.svc.GetByID(ctx, sched.ID)
	assert.Equal(t, schedule.ErrNotFound, err)
	assert.Empty(t, f.lessonDates(t, sched.ID))
}
