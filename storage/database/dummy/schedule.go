package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/schedule"
)

type scheduleRepository struct {
	schedules   *scheduleTable
	lessons     *lessonTable
	attendances *attendanceTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{schedules: db.schedule, lessons: db.lesson, attendances: db.attendance}
}

func (repo *scheduleRepository) query() []schedule.Schedule {
	scheds := make([]schedule.Schedule, 0, len(repo.schedules.table))
	for _, sched := range repo.schedules.table {
		scheds = append(scheds, *sched)
	}
	sort.Slice(scheds, func(i, j int) bool { return scheds[i].ID < scheds[j].ID })
	return scheds
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sched schedule.Schedule, exec ...core.DBExecutor) (schedule.Schedule, error) {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	repo.schedules.pkCount++
	sched.ID = repo.schedules.pkCount
	repo.schedules.table[sched.ID] = &sched
	return sched, nil
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id int) (schedule.Schedule, error) {
	repo.schedules.RLock()
	defer repo.schedules.RUnlock()

	if sched, ok := repo.schedules.table[id]; ok {
		return *sched, nil
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) QuerySchedules(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Schedule, error) {
	repo.schedules.RLock()
	defer repo.schedules.RUnlock()

	var scheds []schedule.Schedule
	for _, sched := range repo.query() {
		if filter.TeacherID != 0 && sched.TeacherID != filter.TeacherID {
			continue
		}
		if filter.GroupID != 0 && sched.GroupID != filter.GroupID {
			continue
		}
		if filter.CourseID != 0 && sched.CourseID != filter.CourseID {
			continue
		}
		scheds = append(scheds, sched)
	}
	return scheds, nil
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sched schedule.Schedule, exec ...core.DBExecutor) (schedule.Schedule, error) {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	if _, ok := repo.schedules.table[sched.ID]; !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	repo.schedules.table[sched.ID] = &sched
	return sched, nil
}

// DeleteSchedulesByID cascades to the schedules' lessons and their attendances.
func (repo *scheduleRepository) DeleteSchedulesByID(ctx context.Context, ids ...int) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()
	repo.lessons.Lock()
	defer repo.lessons.Unlock()
	repo.attendances.Lock()
	defer repo.attendances.Unlock()

	for _, id := range ids {
		delete(repo.schedules.table, id)
		for lsnID, lsn := range repo.lessons.table {
			if lsn.ScheduleID != id {
				continue
			}
			delete(repo.lessons.table, lsnID)
			for attID, att := range repo.attendances.table {
				if att.LessonID == lsnID {
					delete(repo.attendances.table, attID)
				}
			}
		}
	}
	return nil
}

func (repo *scheduleRepository) SchedulesOverlapping(ctx context.Context, dayOfWeek, periodID int, dateStart, dateEnd time.Time, excludeID int) ([]schedule.Schedule, error) {
	repo.schedules.RLock()
	defer repo.schedules.RUnlock()

	var scheds []schedule.Schedule
	for _, sched := range repo.query() {
		if sched.ID == excludeID {
			continue
		}
		if sched.DayOfWeek != dayOfWeek || sched.PeriodID != periodID {
			continue
		}
		if !sched.DateStart.After(dateEnd) && !sched.DateEnd.Before(dateStart) {
			scheds = append(scheds, sched)
		}
	}
	return scheds, nil
}
