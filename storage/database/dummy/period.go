package dummydb

import (
	"context"
	"sort"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/period"
)

type periodRepository struct {
	db *periodTable
}

var _ period.Repository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(db *DB) period.Repository {
	return &periodRepository{db: db.period}
}

func (repo *periodRepository) query() []period.Period {
	periods := make([]period.Period, 0, len(repo.db.table))
	for _, prd := range repo.db.table {
		periods = append(periods, *prd)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].TimeStart < periods[j].TimeStart })
	return periods
}

func (repo *periodRepository) CreatePeriod(ctx context.Context, prd period.Period, exec ...core.DBExecutor) (period.Period, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	prd.ID = repo.db.pkCount
	repo.db.table[prd.ID] = &prd
	return prd, nil
}

func (repo *periodRepository) QueryAllPeriods(ctx context.Context) ([]period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *periodRepository) GetPeriodByID(ctx context.Context, id int) (period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prd, ok := repo.db.table[id]; ok {
		return *prd, nil
	}
	return period.Period{}, period.ErrNotFound
}

func (repo *periodRepository) PeriodsOverlapping(ctx context.Context, timeStart, timeEnd string, excludeID int) ([]period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var periods []period.Period
	for _, prd := range repo.query() {
		if prd.ID == excludeID {
			continue
		}
		if prd.TimeStart < timeEnd && prd.TimeEnd > timeStart {
			periods = append(periods, prd)
		}
	}
	return periods, nil
}

func (repo *periodRepository) UpdatePeriod(ctx context.Context, prd period.Period, exec ...core.DBExecutor) (period.Period, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prd.ID]; !ok {
		return period.Period{}, period.ErrNotFound
	}
	repo.db.table[prd.ID] = &prd
	return prd, nil
}

func (repo *periodRepository) DeletePeriodsByID(ctx context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
