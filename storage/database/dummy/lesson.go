package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/lesson"
)

type lessonRepository struct {
	lessons     *lessonTable
	attendances *attendanceTable
	schedules   *scheduleTable
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{lessons: db.lesson, attendances: db.attendance, schedules: db.schedule}
}

// join fills in the slot fields off the lesson's schedule.
func (repo *lessonRepository) join(lsn lesson.Lesson) lesson.Lesson {
	if sched, ok := repo.schedules.table[lsn.ScheduleID]; ok {
		lsn.TeacherID = sched.TeacherID
		lsn.CourseID = sched.CourseID
		lsn.GroupID = sched.GroupID
		lsn.PeriodID = sched.PeriodID
	}
	return lsn
}

func (repo *lessonRepository) query() []lesson.Lesson {
	lessons := make([]lesson.Lesson, 0, len(repo.lessons.table))
	for _, lsn := range repo.lessons.table {
		lessons = append(lessons, repo.join(*lsn))
	}
	sort.Slice(lessons, func(i, j int) bool {
		if !lessons[i].Date.Equal(lessons[j].Date) {
			return lessons[i].Date.Before(lessons[j].Date)
		}
		return lessons[i].ID < lessons[j].ID
	})
	return lessons
}

func (repo *lessonRepository) BulkCreateLessons(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	for _, date := range dates {
		repo.lessons.pkCount++
		lsn := lesson.Lesson{
			ID:         repo.lessons.pkCount,
			ScheduleID: scheduleID,
			Date:       core.Day(date),
			Status:     lesson.StatusPlanned,
		}
		repo.lessons.table[lsn.ID] = &lsn
	}
	return nil
}

func (repo *lessonRepository) LessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	var dates []time.Time
	for _, lsn := range repo.query() {
		if lsn.ScheduleID == scheduleID {
			dates = append(dates, lsn.Date)
		}
	}
	return dates, nil
}

func (repo *lessonRepository) RealizedLessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	var dates []time.Time
	for _, lsn := range repo.query() {
		if lsn.ScheduleID == scheduleID && lsn.Status == lesson.StatusRealized {
			dates = append(dates, lsn.Date)
		}
	}
	return dates, nil
}

// DeleteLessonsByDate cascades to the lessons' attendances.
func (repo *lessonRepository) DeleteLessonsByDate(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()
	repo.attendances.Lock()
	defer repo.attendances.Unlock()

	days := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		days[core.Day(d)] = struct{}{}
	}

	for id, lsn := range repo.lessons.table {
		if lsn.ScheduleID != scheduleID {
			continue
		}
		if _, ok := days[lsn.Date]; !ok {
			continue
		}
		delete(repo.lessons.table, id)
		for attID, att := range repo.attendances.table {
			if att.LessonID == id {
				delete(repo.attendances.table, attID)
			}
		}
	}
	return nil
}

func (repo *lessonRepository) GetLessonByID(ctx context.Context, id int) (lesson.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	if lsn, ok := repo.lessons.table[id]; ok {
		return repo.join(*lsn), nil
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) QueryLessons(ctx context.Context, filter lesson.QueryFilter) ([]lesson.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	var lessons []lesson.Lesson
	for _, lsn := range repo.query() {
		if filter.ScheduleID != 0 && lsn.ScheduleID != filter.ScheduleID {
			continue
		}
		if filter.TeacherID != 0 && lsn.TeacherID != filter.TeacherID {
			continue
		}
		if filter.GroupID != 0 && lsn.GroupID != filter.GroupID {
			continue
		}
		if filter.Status != nil && lsn.Status != *filter.Status {
			continue
		}
		if !filter.DateFrom.IsZero() && lsn.Date.Before(core.Day(filter.DateFrom)) {
			continue
		}
		if !filter.DateTo.IsZero() && lsn.Date.After(core.Day(filter.DateTo)) {
			continue
		}
		lessons = append(lessons, lsn)
	}
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	orig, ok := repo.lessons.table[lsn.ID]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	orig.Status = lsn.Status
	orig.Subject = lsn.Subject
	return repo.join(*orig), nil
}

// Attendances

func (repo *lessonRepository) QueryLessonAttendances(ctx context.Context, lessonID int, exec ...core.DBExecutor) ([]lesson.Attendance, error) {
	repo.attendances.RLock()
	defer repo.attendances.RUnlock()

	var atts []lesson.Attendance
	for _, att := range repo.attendances.table {
		if att.LessonID == lessonID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].StudentID < atts[j].StudentID })
	return atts, nil
}

func (repo *lessonRepository) CreateAttendance(ctx context.Context, att lesson.Attendance, exec ...core.DBExecutor) (lesson.Attendance, error) {
	repo.attendances.Lock()
	defer repo.attendances.Unlock()

	repo.attendances.pkCount++
	att.ID = repo.attendances.pkCount
	repo.attendances.table[att.ID] = &att
	return att, nil
}

func (repo *lessonRepository) UpdateAttendance(ctx context.Context, att lesson.Attendance, exec ...core.DBExecutor) (lesson.Attendance, error) {
	repo.attendances.Lock()
	defer repo.attendances.Unlock()

	if _, ok := repo.attendances.table[att.ID]; !ok {
		return lesson.Attendance{}, lesson.ErrAttendanceNotFound
	}
	repo.attendances.table[att.ID] = &att
	return att, nil
}

func (repo *lessonRepository) DeleteAttendancesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	repo.attendances.Lock()
	defer repo.attendances.Unlock()
	for _, id := range ids {
		delete(repo.attendances.table, id)
	}
	return nil
}

func (repo *lessonRepository) DeleteLessonAttendances(ctx context.Context, lessonID int, exec ...core.DBExecutor) error {
	repo.attendances.Lock()
	defer repo.attendances.Unlock()
	for id, att := range repo.attendances.table {
		if att.LessonID == lessonID {
			delete(repo.attendances.table, id)
		}
	}
	return nil
}
