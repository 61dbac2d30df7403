package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/lesson"
)

const (
	lessonTable     = "lesson"
	attendanceTable = "attendance"
)

// lessonColumns joins the slot columns off the schedule row.
var lessonColumns = []string{
	"l.id", "l.schedule_id", "l.date", "l.status", "l.subject",
	"s.teacher_id", "s.course_id", "s.group_id", "s.period_id",
}

type dbLesson struct {
	ID         int       `db:"id"`
	ScheduleID int       `db:"schedule_id"`
	Date       time.Time `db:"date"`
	Status     int       `db:"status"`
	Subject    string    `db:"subject"`
	TeacherID  int       `db:"teacher_id"`
	CourseID   int       `db:"course_id"`
	GroupID    int       `db:"group_id"`
	PeriodID   int       `db:"period_id"`
}

func (l dbLesson) toLesson() lesson.Lesson {
	return lesson.Lesson{
		ID:         l.ID,
		ScheduleID: l.ScheduleID,
		Date:       core.Day(l.Date),
		Status:     lesson.Status(l.Status),
		Subject:    l.Subject,
		TeacherID:  l.TeacherID,
		CourseID:   l.CourseID,
		GroupID:    l.GroupID,
		PeriodID:   l.PeriodID,
	}
}

type dbAttendance struct {
	ID        int `db:"id"`
	LessonID  int `db:"lesson_id"`
	StudentID int `db:"student_id"`
	Status    int `db:"status"`
}

func (a dbAttendance) toAttendance() lesson.Attendance {
	return lesson.Attendance{
		ID:        a.ID,
		LessonID:  a.LessonID,
		StudentID: a.StudentID,
		Status:    lesson.AttendanceStatus(a.Status),
	}
}

type lessonRepository struct {
	exec core.DBExecutor
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(exec core.DBExecutor) *lessonRepository {
	return &lessonRepository{exec: exec}
}

func (repo lessonRepository) BulkCreateLessons(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error {
	if len(dates) == 0 {
		return nil
	}
	query := psql.Insert(lessonTable).Columns("schedule_id", "date", "status", "subject")
	for _, date := range dates {
		query = query.Values(scheduleID, core.Day(date), int(lesson.StatusPlanned), "")
	}
	return errors.Wrap(execStmt(ctx, getExec(repo.exec, exec), query), "bulk inserting lessons")
}

func (repo lessonRepository) lessonDates(ctx context.Context, query sq.SelectBuilder, exec []core.DBExecutor) ([]time.Time, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := getExec(repo.exec, exec).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err = rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, core.Day(d))
	}
	return dates, rows.Err()
}

func (repo lessonRepository) LessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error) {
	dates, err := repo.lessonDates(ctx, psql.Select("date").
		From(lessonTable).
		Where(sq.Eq{"schedule_id": scheduleID}).
		OrderBy("date"), exec)
	return dates, errors.Wrap(err, "querying lesson dates")
}

func (repo lessonRepository) RealizedLessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error) {
	dates, err := repo.lessonDates(ctx, psql.Select("date").
		From(lessonTable).
		Where(sq.Eq{"schedule_id": scheduleID, "status": int(lesson.StatusRealized)}).
		OrderBy("date"), exec)
	return dates, errors.Wrap(err, "querying realized lesson dates")
}

func (repo lessonRepository) DeleteLessonsByDate(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error {
	if len(dates) == 0 {
		return nil
	}
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, core.Day(d))
	}
	query := psql.Delete(lessonTable).Where(sq.Eq{"schedule_id": scheduleID, "date": days})
	return errors.Wrap(execStmt(ctx, getExec(repo.exec, exec), query), "deleting lessons")
}

func (repo lessonRepository) queryLessons(ctx context.Context, query sq.SelectBuilder) ([]lesson.Lesson, error) {
	var rows []dbLesson
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]lesson.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toLesson())
	}
	return lessons, nil
}

func lessonSelect() sq.SelectBuilder {
	return psql.Select(lessonColumns...).
		From(lessonTable + " l").
		Join(scheduleTable + " s ON s.id = l.schedule_id")
}

func (repo lessonRepository) GetLessonByID(ctx context.Context, id int) (lesson.Lesson, error) {
	lessons, err := repo.queryLessons(ctx, lessonSelect().Where(sq.Eq{"l.id": id}))
	if err != nil {
		return lesson.Lesson{}, err
	}
	if len(lessons) == 0 {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return lessons[0], nil
}

func (repo lessonRepository) QueryLessons(ctx context.Context, filter lesson.QueryFilter) ([]lesson.Lesson, error) {
	query := lessonSelect()
	if filter.ScheduleID != 0 {
		query = query.Where(sq.Eq{"l.schedule_id": filter.ScheduleID})
	}
	if filter.TeacherID != 0 {
		query = query.Where(sq.Eq{"s.teacher_id": filter.TeacherID})
	}
	if filter.GroupID != 0 {
		query = query.Where(sq.Eq{"s.group_id": filter.GroupID})
	}
	if filter.Status != nil {
		query = query.Where(sq.Eq{"l.status": int(*filter.Status)})
	}
	if !filter.DateFrom.IsZero() {
		query = query.Where(sq.GtOrEq{"l.date": core.Day(filter.DateFrom)})
	}
	if !filter.DateTo.IsZero() {
		query = query.Where(sq.LtOrEq{"l.date": core.Day(filter.DateTo)})
	}
	return repo.queryLessons(ctx, query.OrderBy("l.date", "l.id"))
}

func (repo lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	query := psql.Update(lessonTable).
		Set("status", int(lsn.Status)).
		Set("subject", lsn.Subject).
		Where(sq.Eq{"id": lsn.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	return lsn, nil
}

// Attendances

func (repo lessonRepository) QueryLessonAttendances(ctx context.Context, lessonID int, exec ...core.DBExecutor) ([]lesson.Attendance, error) {
	query := psql.Select("id", "lesson_id", "student_id", "status").
		From(attendanceTable).
		Where(sq.Eq{"lesson_id": lessonID}).
		OrderBy("student_id")

	var rows []dbAttendance
	if err := selectStructs(ctx, getExec(repo.exec, exec), query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying attendances")
	}
	atts := make([]lesson.Attendance, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, row.toAttendance())
	}
	return atts, nil
}

func (repo lessonRepository) CreateAttendance(ctx context.Context, att lesson.Attendance, exec ...core.DBExecutor) (lesson.Attendance, error) {
	stmt, args, err := psql.Insert(attendanceTable).
		Columns("lesson_id", "student_id", "status").
		Values(att.LessonID, att.StudentID, int(att.Status)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return lesson.Attendance{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&att.ID); err != nil {
		return lesson.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo lessonRepository) UpdateAttendance(ctx context.Context, att lesson.Attendance, exec ...core.DBExecutor) (lesson.Attendance, error) {
	query := psql.Update(attendanceTable).
		Set("status", int(att.Status)).
		Where(sq.Eq{"id": att.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return lesson.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return att, nil
}

func (repo lessonRepository) DeleteAttendancesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query := psql.Delete(attendanceTable).Where(sq.Eq{"id": ids})
	return errors.Wrap(execStmt(ctx, getExec(repo.exec, exec), query), "deleting attendances")
}

func (repo lessonRepository) DeleteLessonAttendances(ctx context.Context, lessonID int, exec ...core.DBExecutor) error {
	query := psql.Delete(attendanceTable).Where(sq.Eq{"lesson_id": lessonID})
	return errors.Wrap(execStmt(ctx, getExec(repo.exec, exec), query), "deleting lesson attendances")
}
