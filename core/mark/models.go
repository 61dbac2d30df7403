package mark

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Symbol is a gradable mark symbol ("5", "A-", "np") with its numeric value
// used for averages.
type Symbol struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

func (s Symbol) String() string { return s.Name }

// NewSymbol contains information needed to create a new Symbol.
type NewSymbol struct {
	Name  string          `json:"name" validate:"required,min=1,max=5"`
	Value decimal.Decimal `json:"value" validate:"required"`
}

// Category labels what a mark was given for ("exam", "homework").
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c Category) String() string { return c.Name }

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name string `json:"name" validate:"required,min=3,max=60"`
}

// Mark is a grade a teacher gave a student for a course.
type Mark struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"student_id"`
	TeacherID  int       `json:"teacher_id"`
	CourseID   int       `json:"course_id"`
	CategoryID int       `json:"category_id"`
	SymbolID   int       `json:"symbol_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (m Mark) String() string { return fmt.Sprintf("mark %d", m.ID) }

// NewMark contains information needed to create a new Mark.
type NewMark struct {
	StudentID  int `json:"student_id" validate:"required"`
	TeacherID  int `json:"teacher_id" validate:"required"`
	CourseID   int `json:"course_id" validate:"required"`
	CategoryID int `json:"category_id" validate:"required"`
	SymbolID   int `json:"symbol_id" validate:"required"`
}

// UpdateMark defines what may be changed on an existing Mark.
type UpdateMark struct {
	CategoryID int `json:"category_id" validate:"required"`
	SymbolID   int `json:"symbol_id" validate:"required"`
}

// ChangeType says what a history entry records.
type ChangeType int

const (
	ChangeAdd ChangeType = iota
	ChangeModify
	ChangeErase
)

func (t ChangeType) String() string {
	switch t {
	case ChangeAdd:
		return "add"
	case ChangeModify:
		return "modify"
	case ChangeErase:
		return "erase"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeHistory is one entry of a mark's audit trail. ValueOld and ValueNew
// hold symbol IDs and are null when the change type has no old or new value.
type ChangeHistory struct {
	ID        int        `json:"id"`
	MarkID    int        `json:"mark_id"`
	Type      ChangeType `json:"type"`
	UserID    int        `json:"user_id"`
	ValueOld  null.Int   `json:"value_old"`
	ValueNew  null.Int   `json:"value_new"`
	Timestamp time.Time  `json:"timestamp"`
}
