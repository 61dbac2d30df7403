package group

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("student group not found")
	ErrAssignmentNotFound = errors.New("group assignment not found")
	ErrNameExists         = errors.New("a group with this name already exists")
	ErrEducatorTaken      = errors.New("this user already educates another group")

	errEducatorNotTeacher = errors.New("the educator must be a teacher")
	errStudentIsTeacher   = errors.New("a teacher cannot be assigned to a student group")
	errDateEndBeforeStart = errors.New("end date can't be earlier than start date")
)

type Repository interface {
	CheckGroupUniqueness(ctx context.Context, name string, educatorID int, excluded ...StudentGroup) error
	CreateGroup(ctx context.Context, grp StudentGroup, exec ...core.DBExecutor) (StudentGroup, error)
	QueryAllGroups(ctx context.Context) ([]StudentGroup, error)
	GetGroupByID(ctx context.Context, id int) (StudentGroup, error)
	UpdateGroup(ctx context.Context, grp StudentGroup, exec ...core.DBExecutor) (StudentGroup, error)
	DeleteGroupsByID(ctx context.Context, ids ...int) error

	CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
	GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
	QueryGroupAssignments(ctx context.Context, groupID int) ([]Assignment, error)
	QueryStudentAssignments(ctx context.Context, studentID int) ([]Assignment, error)
	// AssignmentsOverlapping returns the student's assignments whose [date_start, date_end]
	// interval overlaps the given one, excluding excludeID (0 = none).
	AssignmentsOverlapping(ctx context.Context, studentID int, dateStart, dateEnd time.Time, excludeID int) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
	DeleteAssignmentsByID(ctx context.Context, ids ...int) error

	// StudentIDsEnrolledOn returns the IDs of students whose assignment interval covers date.
	StudentIDsEnrolledOn(ctx context.Context, groupID int, date time.Time, exec ...core.DBExecutor) ([]int, error)
}

// UserGetter is the slice of the user repository this service needs.
type UserGetter interface {
	GetUserByID(ctx context.Context, id int) (user.User, error)
}

type Service struct {
	repo     Repository
	users    UserGetter
	validate *validator.Validate
}

func NewService(repo Repository, users UserGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, validate: validate}
}

func (svc *Service) checkEducator(ctx context.Context, educatorID int) error {
	educator, err := svc.users.GetUserByID(ctx, educatorID)
	if err != nil {
		return err
	}
	if !educator.IsTeacher() {
		return core.NewValidationError(errEducatorNotTeacher,
			core.FieldError{Field: "educator_id", Error: errEducatorNotTeacher.Error()})
	}
	return nil
}

func (svc *Service) checkUniqueness(ctx context.Context, name string, educatorID int, excl ...StudentGroup) error {
	if err := svc.repo.CheckGroupUniqueness(ctx, name, educatorID, excl...); err != nil {
		var field string
		switch err {
		case ErrNameExists:
			field = "name"
		case ErrEducatorTaken:
			field = "educator_id"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (StudentGroup, error) {
	ng.Name = core.CleanString(ng.Name)
	if err := svc.validate.Struct(ng); err != nil {
		return StudentGroup{}, err
	}
	if err := svc.checkEducator(ctx, ng.EducatorID); err != nil {
		return StudentGroup{}, err
	}
	if err := svc.checkUniqueness(ctx, ng.Name, ng.EducatorID); err != nil {
		return StudentGroup{}, err
	}

	now := time.Now().UTC()
	grp := StudentGroup{
		Name:       ng.Name,
		EducatorID: ng.EducatorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *Service) QueryAll(ctx context.Context) ([]StudentGroup, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (StudentGroup, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGroup) (StudentGroup, error) {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return StudentGroup{}, err
	}
	if name := core.CleanString(ug.Name); name != "" {
		grp.Name = name
	}
	if ug.EducatorID != 0 {
		grp.EducatorID = ug.EducatorID
	}
	if err := svc.validate.Struct(ug); err != nil {
		return StudentGroup{}, err
	}
	if err := svc.checkEducator(ctx, grp.EducatorID); err != nil {
		return StudentGroup{}, err
	}
	if err := svc.checkUniqueness(ctx, grp.Name, grp.EducatorID, grp); err != nil {
		return StudentGroup{}, err
	}

	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(ctx, grp)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}

// Assignments

func (svc *Service) checkAssignmentDates(ctx context.Context, studentID int, dateStart, dateEnd time.Time, excludeID int) error {
	if dateEnd.Before(dateStart) {
		return core.NewValidationError(errDateEndBeforeStart,
			core.FieldError{Field: "date_end", Error: errDateEndBeforeStart.Error()})
	}

	colliding, err := svc.repo.AssignmentsOverlapping(ctx, studentID, dateStart, dateEnd, excludeID)
	if err != nil {
		return err
	}
	if len(colliding) > 0 {
		strs := make([]string, 0, len(colliding))
		for _, asg := range colliding {
			strs = append(strs, asg.String())
		}
		err := fmt.Errorf("colliding assignments: %s", strings.Join(strs, "; "))
		return core.NewValidationError(err, core.FieldError{Field: "date_start", Error: err.Error()})
	}
	return nil
}

func (svc *Service) Assign(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := svc.validate.Struct(na); err != nil {
		return Assignment{}, err
	}

	student, err := svc.users.GetUserByID(ctx, na.StudentID)
	if err != nil {
		return Assignment{}, err
	}
	if student.IsTeacher() {
		return Assignment{}, core.NewValidationError(errStudentIsTeacher,
			core.FieldError{Field: "student_id", Error: errStudentIsTeacher.Error()})
	}
	if _, err = svc.repo.GetGroupByID(ctx, na.GroupID); err != nil {
		return Assignment{}, err
	}

	dateStart, dateEnd := core.Day(na.DateStart), core.Day(na.DateEnd)
	if err = svc.checkAssignmentDates(ctx, na.StudentID, dateStart, dateEnd, 0); err != nil {
		return Assignment{}, err
	}

	asg := Assignment{
		StudentID: na.StudentID,
		GroupID:   na.GroupID,
		DateStart: dateStart,
		DateEnd:   dateEnd,
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) GroupAssignments(ctx context.Context, groupID int) ([]Assignment, error) {
	return svc.repo.QueryGroupAssignments(ctx, groupID)
}

func (svc *Service) StudentAssignments(ctx context.Context, studentID int) ([]Assignment, error) {
	return svc.repo.QueryStudentAssignments(ctx, studentID)
}

func (svc *Service) UpdateAssignment(ctx context.Context, id int, ua UpdateAssignment) (Assignment, error) {
	asg, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if err = svc.validate.Struct(ua); err != nil {
		return Assignment{}, err
	}

	dateStart, dateEnd := core.Day(ua.DateStart), core.Day(ua.DateEnd)
	if err = svc.checkAssignmentDates(ctx, asg.StudentID, dateStart, dateEnd, asg.ID); err != nil {
		return Assignment{}, err
	}

	asg.DateStart, asg.DateEnd = dateStart, dateEnd
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *Service) DeleteAssignments(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAssignmentsByID(ctx, ids...)
}

// StudentsEnrolledOn returns the group's enrolled student IDs on the given date.
func (svc *Service) StudentsEnrolledOn(ctx context.Context, groupID int, date time.Time) ([]int, error) {
	return svc.repo.StudentIDsEnrolledOn(ctx, groupID, core.Day(date))
}
