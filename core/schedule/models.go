package schedule

import (
	"fmt"
	"time"
)

// Schedule is a weekly-recurring lesson slot: a course taught by a teacher
// on a given weekday and period, over an inclusive date interval.
// DayOfWeek is always derived from DateStart (0 = Monday).
type Schedule struct {
	ID        int       `json:"id"`
	CourseID  int       `json:"course_id"`
	TeacherID int       `json:"teacher_id"`
	PeriodID  int       `json:"period_id"`
	DayOfWeek int       `json:"day_of_week"`
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// GroupID is the owning group of CourseID, denormalized onto the row
	// so group collisions can be detected in a single query.
	GroupID int `json:"group_id"`
}

func (s Schedule) String() string {
	return fmt.Sprintf("schedule %d (%s - %s)",
		s.ID, s.DateStart.Format("2006-01-02"), s.DateEnd.Format("2006-01-02"))
}

// NewSchedule contains information needed to create a new Schedule.
type NewSchedule struct {
	CourseID  int       `json:"course_id" validate:"required"`
	TeacherID int       `json:"teacher_id" validate:"required"`
	PeriodID  int       `json:"period_id" validate:"required"`
	DateStart time.Time `json:"date_start" validate:"required"`
	DateEnd   time.Time `json:"date_end" validate:"required"`
}

// UpdateSchedule defines what may be changed on an existing Schedule.
// Only the date interval may move; the slot itself is immutable.
type UpdateSchedule struct {
	DateStart time.Time `json:"date_start" validate:"required"`
	DateEnd   time.Time `json:"date_end" validate:"required"`
}

// QueryFilter narrows down schedule queries.
type QueryFilter struct {
	TeacherID int `json:"teacher_id"`
	GroupID   int `json:"group_id"`
	CourseID  int `json:"course_id"`
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}
