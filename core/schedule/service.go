package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
)

const maxSpanDays = 365

var (
	// errors
	ErrNotFound = errors.New("schedule not found")

	errDateEndBeforeStart = errors.New("end date can't be earlier than start date")
	errSpanTooLong        = errors.New("a schedule can't span more than a year")
)

type Repository interface {
	CreateSchedule(ctx context.Context, sched Schedule, exec ...core.DBExecutor) (Schedule, error)
	GetScheduleByID(ctx context.Context, id int) (Schedule, error)
	QuerySchedules(ctx context.Context, filter QueryFilter) ([]Schedule, error)
	UpdateSchedule(ctx context.Context, sched Schedule, exec ...core.DBExecutor) (Schedule, error)
	DeleteSchedulesByID(ctx context.Context, ids ...int) error

	// SchedulesOverlapping returns the schedules on the same weekday and period
	// whose [date_start, date_end] interval overlaps the given one,
	// excluding excludeID (0 = none).
	SchedulesOverlapping(ctx context.Context, dayOfWeek, periodID int, dateStart, dateEnd time.Time, excludeID int) ([]Schedule, error)
}

// LessonWriter is the slice of the lesson repository this service needs to
// keep a schedule's lessons in step with its date interval.
type LessonWriter interface {
	BulkCreateLessons(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error
	LessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error)
	RealizedLessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error)
	DeleteLessonsByDate(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error
}

// CourseGetter is the slice of the course repository this service needs.
type CourseGetter interface {
	GetCourseByID(ctx context.Context, id int) (course.Course, error)
}

type Service struct {
	db       core.DB
	repo     Repository
	lessons  LessonWriter
	courses  CourseGetter
	validate *validator.Validate
}

func NewService(db core.DB, repo Repository, lessons LessonWriter, courses CourseGetter, validate *validator.Validate) *Service {
	return &Service{db: db, repo: repo, lessons: lessons, courses: courses, validate: validate}
}

func checkDates(dateStart, dateEnd time.Time) error {
	if dateEnd.Before(dateStart) {
		return core.NewValidationError(errDateEndBeforeStart,
			core.FieldError{Field: "date_end", Error: errDateEndBeforeStart.Error()})
	}
	if dateEnd.Sub(dateStart) > maxSpanDays*24*time.Hour {
		return core.NewValidationError(errSpanTooLong,
			core.FieldError{Field: "date_end", Error: errSpanTooLong.Error()})
	}
	return nil
}

// checkCollisions fails when another schedule occupies the same weekday and
// period over an overlapping date interval for the same teacher or the same
// group. Both violations are reported at once when both apply.
func (svc *Service) checkCollisions(ctx context.Context, sched Schedule) error {
	overlapping, err := svc.repo.SchedulesOverlapping(
		ctx, sched.DayOfWeek, sched.PeriodID, sched.DateStart, sched.DateEnd, sched.ID)
	if err != nil {
		return err
	}

	var teacherCols, groupCols []string
	for _, other := range overlapping {
		if other.TeacherID == sched.TeacherID {
			teacherCols = append(teacherCols, other.String())
		}
		if other.GroupID == sched.GroupID {
			groupCols = append(groupCols, other.String())
		}
	}
	if len(teacherCols) == 0 && len(groupCols) == 0 {
		return nil
	}

	var fieldErrs []core.FieldError
	if len(teacherCols) > 0 {
		fieldErrs = append(fieldErrs, core.FieldError{
			Field: "teacher",
			Error: fmt.Sprintf("the teacher is already occupied: %s", strings.Join(teacherCols, "; ")),
		})
	}
	if len(groupCols) > 0 {
		fieldErrs = append(fieldErrs, core.FieldError{
			Field: "course",
			Error: fmt.Sprintf("the group is already occupied: %s", strings.Join(groupCols, "; ")),
		})
	}
	return core.NewValidationError(errors.New("colliding schedules"), fieldErrs...)
}

func (svc *Service) Create(ctx context.Context, ns NewSchedule) (Schedule, error) {
	if err := svc.validate.Struct(ns); err != nil {
		return Schedule{}, err
	}

	dateStart, dateEnd := core.Day(ns.DateStart), core.Day(ns.DateEnd)
	if err := checkDates(dateStart, dateEnd); err != nil {
		return Schedule{}, err
	}

	crs, err := svc.courses.GetCourseByID(ctx, ns.CourseID)
	if err != nil {
		return Schedule{}, err
	}

	now := time.Now().UTC()
	sched := Schedule{
		CourseID:  ns.CourseID,
		TeacherID: ns.TeacherID,
		PeriodID:  ns.PeriodID,
		DayOfWeek: core.Weekday(dateStart),
		DateStart: dateStart,
		DateEnd:   dateEnd,
		CreatedAt: now,
		UpdatedAt: now,
		GroupID:   crs.GroupID,
	}
	if err = svc.checkCollisions(ctx, sched); err != nil {
		return Schedule{}, err
	}

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return Schedule{}, err
	}
	sched, err = svc.createTx(ctx, tx, sched)
	if err != nil {
		_ = tx.Rollback()
		return Schedule{}, err
	}
	if err = tx.Commit(); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

func (svc *Service) createTx(ctx context.Context, tx core.DBTransactor, sched Schedule) (Schedule, error) {
	sched, err := svc.repo.CreateSchedule(ctx, sched, tx)
	if err != nil {
		return Schedule{}, err
	}
	dates := core.DatesBetween(sched.DateStart, sched.DateEnd, 7)
	if err = svc.lessons.BulkCreateLessons(ctx, sched.ID, dates, tx); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Schedule, error) {
	return svc.repo.GetScheduleByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Schedule, error) {
	return svc.repo.QuerySchedules(ctx, filter)
}

// Editable reports whether the schedule's dates may still be moved,
// that is whether none of its lessons have been realized yet.
func (svc *Service) Editable(ctx context.Context, id int) (bool, error) {
	realized, err := svc.lessons.RealizedLessonDates(ctx, id)
	if err != nil {
		return false, err
	}
	return len(realized) == 0, nil
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSchedule) (Schedule, error) {
	sched, err := svc.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	if err = svc.validate.Struct(us); err != nil {
		return Schedule{}, err
	}

	dateStart, dateEnd := core.Day(us.DateStart), core.Day(us.DateEnd)
	if err = checkDates(dateStart, dateEnd); err != nil {
		return Schedule{}, err
	}

	sched.DateStart, sched.DateEnd = dateStart, dateEnd
	sched.DayOfWeek = core.Weekday(dateStart)
	sched.UpdatedAt = time.Now().UTC()
	if err = svc.checkCollisions(ctx, sched); err != nil {
		return Schedule{}, err
	}

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return Schedule{}, err
	}
	sched, err = svc.updateTx(ctx, tx, sched)
	if err != nil {
		_ = tx.Rollback()
		return Schedule{}, err
	}
	if err = tx.Commit(); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

func (svc *Service) updateTx(ctx context.Context, tx core.DBTransactor, sched Schedule) (Schedule, error) {
	oldDates, err := svc.lessons.LessonDates(ctx, sched.ID, tx)
	if err != nil {
		return Schedule{}, err
	}
	newDates := core.DatesBetween(sched.DateStart, sched.DateEnd, 7)
	toCreate, toDelete := core.DiffDates(newDates, oldDates)

	if len(toDelete) > 0 {
		realized, err := svc.lessons.RealizedLessonDates(ctx, sched.ID, tx)
		if err != nil {
			return Schedule{}, err
		}
		if conflicting := intersectDates(toDelete, realized); len(conflicting) > 0 {
			err := fmt.Errorf("realized lessons on %s would be removed", joinDates(conflicting))
			return Schedule{}, core.NewValidationError(err,
				core.FieldError{Field: "date_end", Error: err.Error()})
		}
		if err = svc.lessons.DeleteLessonsByDate(ctx, sched.ID, toDelete, tx); err != nil {
			return Schedule{}, err
		}
	}
	if len(toCreate) > 0 {
		if err = svc.lessons.BulkCreateLessons(ctx, sched.ID, toCreate, tx); err != nil {
			return Schedule{}, err
		}
	}
	return svc.repo.UpdateSchedule(ctx, sched, tx)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteSchedulesByID(ctx, ids...)
}

func intersectDates(a, b []time.Time) []time.Time {
	set := make(map[time.Time]struct{}, len(b))
	for _, d := range b {
		set[core.Day(d)] = struct{}{}
	}
	var out []time.Time
	for _, d := range a {
		if _, ok := set[core.Day(d)]; ok {
			out = append(out, d)
		}
	}
	return out
}

func joinDates(dates []time.Time) string {
	strs := make([]string, 0, len(dates))
	for _, d := range dates {
		strs = append(strs, d.Format("2006-01-02"))
	}
	sort.Strings(strs)
	return strings.Join(strs, ", ")
}
