package period

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kazadi/darasa/core"
)

var (
	// errors
	ErrNotFound = errors.New("period not found")

	errTimeEndBeforeStart = errors.New("end time must be later than start time")
)

type Repository interface {
	CreatePeriod(ctx context.Context, prd Period, exec ...core.DBExecutor) (Period, error)
	// QueryAllPeriods returns all periods ordered by time_start.
	QueryAllPeriods(ctx context.Context) ([]Period, error)
	GetPeriodByID(ctx context.Context, id int) (Period, error)
	// PeriodsOverlapping returns the periods whose [time_start, time_end)
	// interval overlaps the given one, excluding excludeID (0 = none).
	PeriodsOverlapping(ctx context.Context, timeStart, timeEnd string, excludeID int) ([]Period, error)
	UpdatePeriod(ctx context.Context, prd Period, exec ...core.DBExecutor) (Period, error)
	DeletePeriodsByID(ctx context.Context, ids ...int) error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkTimes(ctx context.Context, timeStart, timeEnd string, excludeID int) error {
	if timeEnd <= timeStart {
		return core.NewValidationError(errTimeEndBeforeStart,
			core.FieldError{Field: "time_end", Error: errTimeEndBeforeStart.Error()})
	}

	colliding, err := svc.repo.PeriodsOverlapping(ctx, timeStart, timeEnd, excludeID)
	if err != nil {
		return err
	}
	if len(colliding) > 0 {
		strs := make([]string, 0, len(colliding))
		for _, prd := range colliding {
			strs = append(strs, prd.String())
		}
		err := fmt.Errorf("colliding periods: %s", strings.Join(strs, "; "))
		return core.NewValidationError(err, core.FieldError{Field: "time_start", Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, np NewPeriod) (Period, error) {
	if err := svc.validate.Struct(np); err != nil {
		return Period{}, err
	}
	if err := svc.checkTimes(ctx, np.TimeStart, np.TimeEnd, 0); err != nil {
		return Period{}, err
	}

	prd := Period{
		TimeStart: np.TimeStart,
		TimeEnd:   np.TimeEnd,
	}
	return svc.repo.CreatePeriod(ctx, prd)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Period, error) {
	return svc.repo.QueryAllPeriods(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Period, error) {
	return svc.repo.GetPeriodByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdatePeriod) (Period, error) {
	prd, err := svc.repo.GetPeriodByID(ctx, id)
	if err != nil {
		return Period{}, err
	}
	if err = svc.validate.Struct(up); err != nil {
		return Period{}, err
	}
	if err = svc.checkTimes(ctx, up.TimeStart, up.TimeEnd, prd.ID); err != nil {
		return Period{}, err
	}

	prd.TimeStart, prd.TimeEnd = up.TimeStart, up.TimeEnd
	return svc.repo.UpdatePeriod(ctx, prd)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeletePeriodsByID(ctx, ids...)
}
