package group_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/user"
	dummydb "github.com/kazadi/darasa/storage/database/dummy"
	testutil "github.com/kazadi/darasa/tests"
)

func setup(t *testing.T) (*group.Service, group.Repository, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewGroupRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	validate, _ := testutil.NewValidator()
	return group.NewService(repo, usrRepo, validate), repo, usrRepo
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
	svc, _, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "T", "teach1", "t1@test.cd", "", user.TeacherRoles, true)
	teacher2 := testutil.CreateUser(t, usrRepo, "T2", "teach2", "t2@test.cd", "", user.TeacherRoles, true)
	student := testutil.CreateUser(t, usrRepo, "S", "studnt", "s@test.cd", "", user.StudentRoles, true)

	grp, err := svc.Create(ctx, group.NewGroup{Name: "G1-A", EducatorID: teacher.ID})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	assert.NotZero(t, grp.ID)
	assert.Equal(t, "G1-A", grp.Name)

	t.Run("educator must be a teacher", func(t *testing.T) {
		_, err := svc.Create(ctx, group.NewGroup{Name: "G1-B", EducatorID: student.ID})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "educator_id")
	})

	t.Run("name must be unique", func(t *testing.T) {
		_, err := svc.Create(ctx, group.NewGroup{Name: "G1-A", EducatorID: teacher2.ID})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "name")
	})

	t.Run("educator can only hold one group", func(t *testing.T) {
		_, err := svc.Create(ctx, group.NewGroup{Name: "G1-B", EducatorID: teacher.ID})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "educator_id")
	})
}

func TestService_Assign(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "T", "teach1", "t1@test.cd", "", user.TeacherRoles, true)
	student := testutil.CreateUser(t, usrRepo, "S", "studnt", "s@test.cd", "", user.StudentRoles, true)

	grp, err := svc.Create(ctx, group.NewGroup{Name: "G1-A", EducatorID: teacher.ID})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	sept1 := core.Date(2024, 9, 1)
	dec31 := core.Date(2024, 12, 31)

	asg, err := svc.Assign(ctx, group.NewAssignment{
		StudentID: student.ID, GroupID: grp.ID, DateStart: sept1, DateEnd: dec31,
	})
	if err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
	assert.NotZero(t, asg.ID)

	t.Run("teacher cannot be assigned", func(t *testing.T) {
		_, err := svc.Assign(ctx, group.NewAssignment{
			StudentID: teacher.ID, GroupID: grp.ID, DateStart: sept1, DateEnd: dec31,
		})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "student_id")
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.Assign(ctx, group.NewAssignment{
			StudentID: student.ID, GroupID: grp.ID, DateStart: dec31, DateEnd: sept1,
		})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "date_end")
	})

	t.Run("overlapping assignment rejected", func(t *testing.T) {
		// overlaps [sept1, dec31] on its last day
		_, err := svc.Assign(ctx, group.NewAssignment{
			StudentID: student.ID, GroupID: grp.ID, DateStart: dec31, DateEnd: core.Date(2025, 3, 31),
		})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "date_start")
	})

	t.Run("adjacent assignment allowed", func(t *testing.T) {
		_, err := svc.Assign(ctx, group.NewAssignment{
			StudentID: student.ID, GroupID: grp.ID,
			DateStart: core.Date(2025, 1, 1), DateEnd: core.Date(2025, 3, 31),
		})
		assert.NoError(t, err)
	})

	t.Run("update cannot collide with another assignment", func(t *testing.T) {
		_, err := svc.UpdateAssignment(ctx, asg.ID, group.UpdateAssignment{
			DateStart: sept1, DateEnd: core.Date(2025, 1, 1),
		})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "date_start")
	})

	t.Run("update may keep its own interval", func(t *testing.T) {
		got, err := svc.UpdateAssignment(ctx, asg.ID, group.UpdateAssignment{
			DateStart: sept1, DateEnd: core.Date(2024, 12, 15),
		})
		assert.NoError(t, err)
		assert.Equal(t, core.Date(2024, 12, 15), got.DateEnd)
	})
}

func TestService_StudentsEnrolledOn(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "T", "teach1", "t1@test.cd", "", user.TeacherRoles, true)
	s1 := testutil.CreateUser(t, usrRepo, "S1", "studnt1", "s1@test.cd", "", user.StudentRoles, true)
	s2 := testutil.CreateUser(t, usrRepo, "S2", "studnt2", "s2@test.cd", "", user.StudentRoles, true)

	grp, err := svc.Create(ctx, group.NewGroup{Name: "G1-A", EducatorID: teacher.ID})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	mustAssign := func(studentID int, dateStart, dateEnd time.Time) {
		t.Helper()
		if _, err := svc.Assign(ctx, group.NewAssignment{
			StudentID: studentID, GroupID: grp.ID, DateStart: dateStart, DateEnd: dateEnd,
		}); err != nil {
			t.Fatalf("Assign() failed: %v", err)
		}
	}
	mustAssign(s1.ID, core.Date(2024, 9, 1), core.Date(2024, 12, 31))
	mustAssign(s2.ID, core.Date(2024, 10, 1), core.Date(2024, 12, 31))

	tests := []struct {
		name string
		date time.Time
		want []int
	}{
		{name: "before any assignment", date: core.Date(2024, 8, 31), want: nil},
		{name: "only s1 enrolled", date: core.Date(2024, 9, 15), want: []int{s1.ID}},
		{name: "both enrolled on s2 start", date: core.Date(2024, 10, 1), want: []int{s1.ID, s2.ID}},
		{name: "both enrolled on last day", date: core.Date(2024, 12, 31), want: []int{s1.ID, s2.ID}},
		{name: "after the interval", date: core.Date(2025, 1, 1), want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.StudentsEnrolledOn(ctx, grp.ID, tt.date)
			assert.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}
