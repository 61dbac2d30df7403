package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/period"
	"github.com/kazadi/darasa/core/user"
)

// NewValidator returns a fresh validator and translator with the app's
// custom validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateGroup(t *testing.T, repo group.Repository, name string, educatorID int) group.StudentGroup {
	t.Helper()

	now := time.Now().UTC()
	grp, err := repo.CreateGroup(context.Background(), group.StudentGroup{
		Name:       name,
		EducatorID: educatorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func AssignStudent(t *testing.T, repo group.Repository, studentID, groupID int, dateStart, dateEnd time.Time) group.Assignment {
	t.Helper()

	asg, err := repo.CreateAssignment(context.Background(), group.Assignment{
		StudentID: studentID,
		GroupID:   groupID,
		DateStart: core.Day(dateStart),
		DateEnd:   core.Day(dateEnd),
	})
	if err != nil {
		t.Fatalf("AssignStudent() failed: %v", err)
	}
	return asg
}

func CreateCourse(t *testing.T, repo course.Repository, name string, groupID int) course.Course {
	t.Helper()

	crs, err := repo.CreateCourse(context.Background(), course.Course{Name: name, GroupID: groupID})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreatePeriod(t *testing.T, repo period.Repository, timeStart, timeEnd string) period.Period {
	t.Helper()

	prd, err := repo.CreatePeriod(context.Background(), period.Period{TimeStart: timeStart, TimeEnd: timeEnd})
	if err != nil {
		t.Fatalf("CreatePeriod() failed: %v", err)
	}
	return prd
}
