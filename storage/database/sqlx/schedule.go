package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/schedule"
)

const scheduleTable = "schedule"

var scheduleColumns = []string{
	"id", "course_id", "teacher_id", "period_id", "day_of_week",
	"date_start", "date_end", "group_id", "created_at", "updated_at",
}

type dbSchedule struct {
	ID        int       `db:"id"`
	CourseID  int       `db:"course_id"`
	TeacherID int       `db:"teacher_id"`
	PeriodID  int       `db:"period_id"`
	DayOfWeek int       `db:"day_of_week"`
	DateStart time.Time `db:"date_start"`
	DateEnd   time.Time `db:"date_end"`
	GroupID   int       `db:"group_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s dbSchedule) toSchedule() schedule.Schedule {
	return schedule.Schedule{
		ID:        s.ID,
		CourseID:  s.CourseID,
		TeacherID: s.TeacherID,
		PeriodID:  s.PeriodID,
		DayOfWeek: s.DayOfWeek,
		DateStart: core.Day(s.DateStart),
		DateEnd:   core.Day(s.DateEnd),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		GroupID:   s.GroupID,
	}
}

type scheduleRepository struct {
	exec core.DBExecutor
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(exec core.DBExecutor) *scheduleRepository {
	return &scheduleRepository{exec: exec}
}

func (repo scheduleRepository) CreateSchedule(ctx context.Context, sched schedule.Schedule, exec ...core.DBExecutor) (schedule.Schedule, error) {
	stmt, args, err := psql.Insert(scheduleTable).
		Columns("course_id", "teacher_id", "period_id", "day_of_week",
			"date_start", "date_end", "group_id", "created_at", "updated_at").
		Values(sched.CourseID, sched.TeacherID, sched.PeriodID, sched.DayOfWeek,
			sched.DateStart, sched.DateEnd, sched.GroupID, sched.CreatedAt, sched.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return schedule.Schedule{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&sched.ID); err != nil {
		return schedule.Schedule{}, wrapWriteError(err, "inserting schedule")
	}
	return sched, nil
}

func (repo scheduleRepository) querySchedules(ctx context.Context, exec core.DBExecutor, query sq.SelectBuilder) ([]schedule.Schedule, error) {
	var rows []dbSchedule
	if err := selectStructs(ctx, exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	scheds := make([]schedule.Schedule, 0, len(rows))
	for _, row := range rows {
		scheds = append(scheds, row.toSchedule())
	}
	return scheds, nil
}

func (repo scheduleRepository) GetScheduleByID(ctx context.Context, id int) (schedule.Schedule, error) {
	scheds, err := repo.querySchedules(ctx, repo.exec,
		psql.Select(scheduleColumns...).From(scheduleTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return schedule.Schedule{}, err
	}
	if len(scheds) == 0 {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return scheds[0], nil
}

func (repo scheduleRepository) QuerySchedules(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Schedule, error) {
	query := psql.Select(scheduleColumns...).From(scheduleTable)
	if filter.TeacherID != 0 {
		query = query.Where(sq.Eq{"teacher_id": filter.TeacherID})
	}
	if filter.GroupID != 0 {
		query = query.Where(sq.Eq{"group_id": filter.GroupID})
	}
	if filter.CourseID != 0 {
		query = query.Where(sq.Eq{"course_id": filter.CourseID})
	}
	return repo.querySchedules(ctx, repo.exec, query.OrderBy("date_start", "id"))
}

func (repo scheduleRepository) UpdateSchedule(ctx context.Context, sched schedule.Schedule, exec ...core.DBExecutor) (schedule.Schedule, error) {
	query := psql.Update(scheduleTable).
		Set("day_of_week", sched.DayOfWeek).
		Set("date_start", sched.DateStart).
		Set("date_end", sched.DateEnd).
		Set("updated_at", sched.UpdatedAt).
		Where(sq.Eq{"id": sched.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return schedule.Schedule{}, wrapWriteError(err, "updating schedule")
	}
	return sched, nil
}

func (repo scheduleRepository) DeleteSchedulesByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(scheduleTable).Where(sq.Eq{"id": ids})), "deleting schedules")
}

func (repo scheduleRepository) SchedulesOverlapping(ctx context.Context, dayOfWeek, periodID int, dateStart, dateEnd time.Time, excludeID int) ([]schedule.Schedule, error) {
	query := psql.Select(scheduleColumns...).
		From(scheduleTable).
		Where(sq.Eq{"day_of_week": dayOfWeek, "period_id": periodID}).
		Where(sq.LtOrEq{"date_start": dateEnd}).
		Where(sq.GtOrEq{"date_end": dateStart})
	if excludeID != 0 {
		query = query.Where(sq.NotEq{"id": excludeID})
	}
	return repo.querySchedules(ctx, repo.exec, query.OrderBy("id"))
}
