package lesson

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/period"
)

var (
	// errors
	ErrNotFound           = errors.New("lesson not found")
	ErrAttendanceNotFound = errors.New("attendance not found")

	errNotRealized  = errors.New("only realized lessons have a subject")
	errIsCancelled  = errors.New("a cancelled lesson must be restored first")
	errNotCancelled = errors.New("only cancelled lessons can be restored")
)

type Repository interface {
	BulkCreateLessons(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error
	LessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error)
	RealizedLessonDates(ctx context.Context, scheduleID int, exec ...core.DBExecutor) ([]time.Time, error)
	DeleteLessonsByDate(ctx context.Context, scheduleID int, dates []time.Time, exec ...core.DBExecutor) error

	GetLessonByID(ctx context.Context, id int) (Lesson, error)
	QueryLessons(ctx context.Context, filter QueryFilter) ([]Lesson, error)
	UpdateLesson(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) (Lesson, error)

	QueryLessonAttendances(ctx context.Context, lessonID int, exec ...core.DBExecutor) ([]Attendance, error)
	CreateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
	UpdateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
	DeleteAttendancesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	DeleteLessonAttendances(ctx context.Context, lessonID int, exec ...core.DBExecutor) error
}

// EnrollmentGetter is the slice of the group repository this service needs.
type EnrollmentGetter interface {
	StudentIDsEnrolledOn(ctx context.Context, groupID int, date time.Time, exec ...core.DBExecutor) ([]int, error)
}

// PeriodLister is the slice of the period repository this service needs
// to lay out timetables.
type PeriodLister interface {
	QueryAllPeriods(ctx context.Context) ([]period.Period, error)
}

type Service struct {
	db      core.DB
	repo    Repository
	groups  EnrollmentGetter
	periods PeriodLister
}

func NewService(db core.DB, repo Repository, groups EnrollmentGetter, periods PeriodLister) *Service {
	return &Service{db: db, repo: repo, groups: groups, periods: periods}
}

func (svc *Service) GetByID(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Lesson, error) {
	return svc.repo.QueryLessons(ctx, filter)
}

// reconcile brings the lesson's attendance records in line with its status
// and the group's enrollment on the lesson's date. Cancelled lessons keep no
// attendance at all; for any other status every enrolled student gets a record
// (created as present) and records of students no longer enrolled are dropped.
// It is idempotent.
func (svc *Service) reconcile(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) error {
	if lsn.Status == StatusCancelled {
		return svc.repo.DeleteLessonAttendances(ctx, lsn.ID, exec...)
	}

	enrolled, err := svc.groups.StudentIDsEnrolledOn(ctx, lsn.GroupID, lsn.Date, exec...)
	if err != nil {
		return err
	}
	existing, err := svc.repo.QueryLessonAttendances(ctx, lsn.ID, exec...)
	if err != nil {
		return err
	}

	enrolledSet := make(map[int]struct{}, len(enrolled))
	for _, id := range enrolled {
		enrolledSet[id] = struct{}{}
	}
	existingSet := make(map[int]struct{}, len(existing))
	var strangers []int
	for _, att := range existing {
		existingSet[att.StudentID] = struct{}{}
		if _, ok := enrolledSet[att.StudentID]; !ok {
			strangers = append(strangers, att.ID)
		}
	}

	for _, studentID := range enrolled {
		if _, ok := existingSet[studentID]; ok {
			continue
		}
		att := Attendance{LessonID: lsn.ID, StudentID: studentID, Status: AttendancePresent}
		if _, err = svc.repo.CreateAttendance(ctx, att, exec...); err != nil {
			return err
		}
	}
	if len(strangers) > 0 {
		return svc.repo.DeleteAttendancesByID(ctx, strangers, exec...)
	}
	return nil
}

// checkTransition enforces the lesson lifecycle. A cancelled lesson can only
// be restored to planned; realizing and cancelling apply to planned and
// realized lessons only.
func checkTransition(from, to Status) error {
	if to == StatusPlanned {
		if from != StatusCancelled {
			return core.NewValidationError(errNotCancelled,
				core.FieldError{Field: "status", Error: errNotCancelled.Error()})
		}
		return nil
	}
	if from == StatusCancelled {
		return core.NewValidationError(errIsCancelled,
			core.FieldError{Field: "status", Error: errIsCancelled.Error()})
	}
	return nil
}

// setStatus moves the lesson to the given status and reconciles its
// attendance in the same transaction.
func (svc *Service) setStatus(ctx context.Context, id int, status Status, subject string) (Lesson, error) {
	lsn, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if err = checkTransition(lsn.Status, status); err != nil {
		return Lesson{}, err
	}
	lsn.Status = status
	lsn.Subject = subject

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return Lesson{}, err
	}
	lsn, err = svc.setStatusTx(ctx, tx, lsn)
	if err != nil {
		_ = tx.Rollback()
		return Lesson{}, err
	}
	if err = tx.Commit(); err != nil {
		return Lesson{}, err
	}
	return lsn, nil
}

func (svc *Service) setStatusTx(ctx context.Context, tx core.DBTransactor, lsn Lesson) (Lesson, error) {
	lsn, err := svc.repo.UpdateLesson(ctx, lsn, tx)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.reconcile(ctx, lsn, tx); err != nil {
		return Lesson{}, err
	}
	return lsn, nil
}

// Realize marks the lesson as held, records what was taught and seeds
// attendance for every enrolled student.
func (svc *Service) Realize(ctx context.Context, id int, subject string) (Lesson, error) {
	return svc.setStatus(ctx, id, StatusRealized, core.CleanString(subject))
}

// Cancel marks the lesson as not taking place. Its subject and all of its
// attendance records are dropped.
func (svc *Service) Cancel(ctx context.Context, id int) (Lesson, error) {
	return svc.setStatus(ctx, id, StatusCancelled, "")
}

// Restore returns a cancelled lesson to the planned state and recreates
// attendance records for the currently enrolled students.
func (svc *Service) Restore(ctx context.Context, id int) (Lesson, error) {
	return svc.setStatus(ctx, id, StatusPlanned, "")
}

// UpdateSubject changes what was taught on an already realized lesson.
func (svc *Service) UpdateSubject(ctx context.Context, id int, subject string) (Lesson, error) {
	lsn, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if lsn.Status != StatusRealized {
		return Lesson{}, core.NewValidationError(errNotRealized,
			core.FieldError{Field: "subject", Error: errNotRealized.Error()})
	}
	lsn.Subject = core.CleanString(subject)
	return svc.repo.UpdateLesson(ctx, lsn)
}

// Attendances reconciles and returns the lesson's attendance records. The
// reconcile and the read run in one transaction so concurrent reconciliations
// of the same lesson can't interleave.
func (svc *Service) Attendances(ctx context.Context, id int) ([]Attendance, error) {
	lsn, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return nil, err
	}
	atts, err := svc.attendancesTx(ctx, tx, lsn)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return atts, nil
}

func (svc *Service) attendancesTx(ctx context.Context, tx core.DBTransactor, lsn Lesson) ([]Attendance, error) {
	if err := svc.reconcile(ctx, lsn, tx); err != nil {
		return nil, err
	}
	return svc.repo.QueryLessonAttendances(ctx, lsn.ID, tx)
}

// SetAttendances updates the status of the given students' attendance records
// on the lesson, reconciling first so the records exist. Students without a
// record after reconciliation are not attending the lesson.
func (svc *Service) SetAttendances(ctx context.Context, lessonID int, statuses map[int]AttendanceStatus) ([]Attendance, error) {
	lsn, err := svc.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return nil, err
	}
	atts, err := svc.setAttendancesTx(ctx, tx, lsn, statuses)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return atts, nil
}

func (svc *Service) setAttendancesTx(ctx context.Context, tx core.DBTransactor, lsn Lesson, statuses map[int]AttendanceStatus) ([]Attendance, error) {
	if err := svc.reconcile(ctx, lsn, tx); err != nil {
		return nil, err
	}
	atts, err := svc.repo.QueryLessonAttendances(ctx, lsn.ID, tx)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int]Attendance, len(atts))
	for _, att := range atts {
		byStudent[att.StudentID] = att
	}
	for studentID, status := range statuses {
		att, ok := byStudent[studentID]
		if !ok {
			return nil, ErrAttendanceNotFound
		}
		if att.Status == status {
			continue
		}
		att.Status = status
		if att, err = svc.repo.UpdateAttendance(ctx, att, tx); err != nil {
			return nil, err
		}
		byStudent[studentID] = att
	}

	atts = atts[:0]
	for _, att := range byStudent {
		atts = append(atts, att)
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].StudentID < atts[j].StudentID })
	return atts, nil
}
