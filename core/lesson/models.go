package lesson

import (
	"fmt"
	"time"
)

// Status is a lesson's lifecycle state.
type Status int

const (
	StatusPlanned Status = iota
	StatusRealized
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPlanned:
		return "planned"
	case StatusRealized:
		return "realized"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Lesson is a concrete occurrence of a schedule on a calendar date.
// Lessons are generated from their schedule's date interval and never
// created one by one.
type Lesson struct {
	ID         int       `json:"id"`
	ScheduleID int       `json:"schedule_id"`
	Date       time.Time `json:"date"`
	Status     Status    `json:"status"`
	Subject    string    `json:"subject"`

	// joined off the schedule row
	TeacherID int `json:"teacher_id"`
	CourseID  int `json:"course_id"`
	GroupID   int `json:"group_id"`
	PeriodID  int `json:"period_id"`
}

func (l Lesson) String() string {
	return fmt.Sprintf("lesson %d (%s)", l.ID, l.Date.Format("2006-01-02"))
}

// AttendanceStatus records how a student attended a lesson.
type AttendanceStatus int

const (
	AttendancePresent AttendanceStatus = iota
	AttendanceLate
	AttendanceAbsent
)

func (s AttendanceStatus) String() string {
	switch s {
	case AttendancePresent:
		return "present"
	case AttendanceLate:
		return "late"
	case AttendanceAbsent:
		return "absent"
	}
	return fmt.Sprintf("AttendanceStatus(%d)", int(s))
}

// Attendance is one student's attendance record for one lesson.
type Attendance struct {
	ID        int              `json:"id"`
	LessonID  int              `json:"lesson_id"`
	StudentID int              `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
}

// QueryFilter narrows down lesson queries. A nil Status matches any status.
type QueryFilter struct {
	ScheduleID int
	TeacherID  int
	GroupID    int
	Status     *Status
	DateFrom   time.Time
	DateTo     time.Time
}

func (f QueryFilter) IsEmpty() bool {
	return f.ScheduleID == 0 && f.TeacherID == 0 && f.GroupID == 0 &&
		f.Status == nil && f.DateFrom.IsZero() && f.DateTo.IsZero()
}
