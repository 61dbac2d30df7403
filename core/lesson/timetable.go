package lesson

import (
	"context"
	"time"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/period"
)

// Timetable is a week's lessons laid out as a grid: one row per period,
// one column per date of the week.
type Timetable struct {
	Dates []time.Time    `json:"dates"`
	Rows  []TimetableRow `json:"rows"`
}

type TimetableRow struct {
	Period  period.Period `json:"period"`
	Lessons []*Lesson     `json:"lessons"`
}

func (svc *Service) timetable(ctx context.Context, filter QueryFilter, anyDay time.Time) (Timetable, error) {
	dates := core.WeekDates(anyDay)
	filter.DateFrom, filter.DateTo = dates[0], dates[len(dates)-1]
	lessons, err := svc.repo.QueryLessons(ctx, filter)
	if err != nil {
		return Timetable{}, err
	}
	periods, err := svc.periods.QueryAllPeriods(ctx)
	if err != nil {
		return Timetable{}, err
	}

	colIdx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		colIdx[d] = i
	}
	rowIdx := make(map[int]int, len(periods))
	tt := Timetable{Dates: dates, Rows: make([]TimetableRow, len(periods))}
	for i, prd := range periods {
		rowIdx[prd.ID] = i
		tt.Rows[i] = TimetableRow{Period: prd, Lessons: make([]*Lesson, len(dates))}
	}

	for i := range lessons {
		lsn := &lessons[i]
		row, ok := rowIdx[lsn.PeriodID]
		if !ok {
			continue
		}
		col, ok := colIdx[core.Day(lsn.Date)]
		if !ok {
			continue
		}
		tt.Rows[row].Lessons[col] = lsn
	}
	return tt, nil
}

// TeacherTimetable returns the teacher's lesson grid for the week containing anyDay.
func (svc *Service) TeacherTimetable(ctx context.Context, teacherID int, anyDay time.Time) (Timetable, error) {
	return svc.timetable(ctx, QueryFilter{TeacherID: teacherID}, anyDay)
}

// GroupTimetable returns the group's lesson grid for the week containing anyDay.
func (svc *Service) GroupTimetable(ctx context.Context, groupID int, anyDay time.Time) (Timetable, error) {
	return svc.timetable(ctx, QueryFilter{GroupID: groupID}, anyDay)
}
