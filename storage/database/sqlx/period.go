package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/period"
)

const periodTable = "period"

var periodColumns = []string{"id", "time_start", "time_end"}

type dbPeriod struct {
	ID        int    `db:"id"`
	TimeStart string `db:"time_start"`
	TimeEnd   string `db:"time_end"`
}

func (p dbPeriod) toPeriod() period.Period {
	return period.Period{ID: p.ID, TimeStart: p.TimeStart, TimeEnd: p.TimeEnd}
}

type periodRepository struct {
	exec core.DBExecutor
}

var _ period.Repository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(exec core.DBExecutor) *periodRepository {
	return &periodRepository{exec: exec}
}

func (repo periodRepository) CreatePeriod(ctx context.Context, prd period.Period, exec ...core.DBExecutor) (period.Period, error) {
	stmt, args, err := psql.Insert(periodTable).
		Columns("time_start", "time_end").
		Values(prd.TimeStart, prd.TimeEnd).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return period.Period{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&prd.ID); err != nil {
		return period.Period{}, wrapWriteError(err, "inserting period")
	}
	return prd, nil
}

func (repo periodRepository) queryPeriods(ctx context.Context, query sq.SelectBuilder) ([]period.Period, error) {
	var rows []dbPeriod
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying periods")
	}
	periods := make([]period.Period, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, row.toPeriod())
	}
	return periods, nil
}

func (repo periodRepository) QueryAllPeriods(ctx context.Context) ([]period.Period, error) {
	return repo.queryPeriods(ctx, psql.Select(periodColumns...).From(periodTable).OrderBy("time_start"))
}

func (repo periodRepository) GetPeriodByID(ctx context.Context, id int) (period.Period, error) {
	periods, err := repo.queryPeriods(ctx, psql.Select(periodColumns...).From(periodTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return period.Period{}, err
	}
	if len(periods) == 0 {
		return period.Period{}, period.ErrNotFound
	}
	return periods[0], nil
}

func (repo periodRepository) PeriodsOverlapping(ctx context.Context, timeStart, timeEnd string, excludeID int) ([]period.Period, error) {
	query := psql.Select(periodColumns...).
		From(periodTable).
		Where(sq.Lt{"time_start": timeEnd}).
		Where(sq.Gt{"time_end": timeStart}).
		OrderBy("time_start")
	if excludeID != 0 {
		query = query.Where(sq.NotEq{"id": excludeID})
	}
	return repo.queryPeriods(ctx, query)
}

func (repo periodRepository) UpdatePeriod(ctx context.Context, prd period.Period, exec ...core.DBExecutor) (period.Period, error) {
	query := psql.Update(periodTable).
		Set("time_start", prd.TimeStart).
		Set("time_end", prd.TimeEnd).
		Where(sq.Eq{"id": prd.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return period.Period{}, wrapWriteError(err, "updating period")
	}
	return prd, nil
}

func (repo periodRepository) DeletePeriodsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(periodTable).Where(sq.Eq{"id": ids})), "deleting periods")
}
