package course

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/kazadi/darasa/core"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrNameExists = errors.New("this group already has a course with this name")
)

type Repository interface {
	// CheckCourseUniqueness fails with ErrNameExists if the group already has
	// a course with this name, excluded courses aside.
	CheckCourseUniqueness(ctx context.Context, name string, groupID int, excluded ...Course) error
	CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
	QueryAllCourses(ctx context.Context) ([]Course, error)
	GetCourseByID(ctx context.Context, id int) (Course, error)
	QueryGroupCourses(ctx context.Context, groupID int) ([]Course, error)
	UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
	DeleteCoursesByID(ctx context.Context, ids ...int) error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, name string, groupID int, excl ...Course) error {
	if err := svc.repo.CheckCourseUniqueness(ctx, name, groupID, excl...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	nc.Name = core.CleanString(nc.Name)
	if err := svc.validate.Struct(nc); err != nil {
		return Course{}, err
	}
	if err := svc.checkUniqueness(ctx, nc.Name, nc.GroupID); err != nil {
		return Course{}, err
	}

	crs := Course{
		Name:    nc.Name,
		GroupID: nc.GroupID,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GroupCourses(ctx context.Context, groupID int) ([]Course, error) {
	return svc.repo.QueryGroupCourses(ctx, groupID)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if name := core.CleanString(uc.Name); name != "" {
		crs.Name = name
	}
	if err = svc.validate.Struct(uc); err != nil {
		return Course{}, err
	}
	if err = svc.checkUniqueness(ctx, crs.Name, crs.GroupID, crs); err != nil {
		return Course{}, err
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}
