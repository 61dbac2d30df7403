package period

import "fmt"

// Period is a fixed slot of the daily timetable. Times are zero-padded
// "HH:MM" strings so they compare lexically.
type Period struct {
	ID        int    `json:"id"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

func (p Period) String() string { return fmt.Sprintf("%s - %s", p.TimeStart, p.TimeEnd) }

// NewPeriod contains information needed to create a new Period.
type NewPeriod struct {
	TimeStart string `json:"time_start" validate:"required,datetime=15:04"`
	TimeEnd   string `json:"time_end" validate:"required,datetime=15:04"`
}

// UpdatePeriod defines what may be changed on an existing Period.
type UpdatePeriod struct {
	TimeStart string `json:"time_start" validate:"required,datetime=15:04"`
	TimeEnd   string `json:"time_end" validate:"required,datetime=15:04"`
}
