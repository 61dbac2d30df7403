package group

import (
	"fmt"
	"time"
)

// StudentGroup is a cohort of students supervised by one educator (a teacher).
type StudentGroup struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	EducatorID int       `json:"educator_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (g StudentGroup) String() string { return g.Name }

// Assignment binds one student to one group for the [DateStart, DateEnd] interval.
// A student's assignments may never overlap.
type Assignment struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	GroupID   int       `json:"group_id"`
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
}

func (a Assignment) String() string {
	return fmt.Sprintf("group %d (%s - %s)",
		a.GroupID, a.DateStart.Format("2006-01-02"), a.DateEnd.Format("2006-01-02"))
}

// NewGroup contains information needed to create a new StudentGroup.
type NewGroup struct {
	Name       string `json:"name" validate:"required,max=30"`
	EducatorID int    `json:"educator_id" validate:"required"`
}

// UpdateGroup defines what information may be provided to modify an existing StudentGroup.
type UpdateGroup struct {
	Name       string `json:"name" validate:"omitempty,max=30"`
	EducatorID int    `json:"educator_id"`
}

// NewAssignment contains information needed to assign a student to a group.
type NewAssignment struct {
	StudentID int       `json:"student_id" validate:"required"`
	GroupID   int       `json:"group_id" validate:"required"`
	DateStart time.Time `json:"date_start" validate:"required"`
	DateEnd   time.Time `json:"date_end" validate:"required"`
}

// UpdateAssignment defines what may be changed on an existing Assignment.
type UpdateAssignment struct {
	DateStart time.Time `json:"date_start" validate:"required"`
	DateEnd   time.Time `json:"date_end" validate:"required"`
}
