package core

import "time"

// Date returns d at UTC midnight. All calendar dates in the app are
// normalized this way so they compare with ==.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}

// Weekday returns t's Monday-based day of the week: 0 = Monday .. 6 = Sunday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DatesBetween returns dates start, start+stepDays, ... strictly before end,
// in ascending order. Returns an empty slice when start >= end.
func DatesBetween(start, end time.Time, stepDays int) []time.Time {
	start, end = Day(start), Day(end)
	var dates []time.Time
	for start.Before(end) {
		dates = append(dates, start)
		start = start.AddDate(0, 0, stepDays)
	}
	return dates
}

// DiffDates returns the dates present in newDates but not in oldDates (toCreate)
// and vice versa (toDelete). Both inputs are treated as sets; results are unordered.
func DiffDates(newDates, oldDates []time.Time) (toCreate, toDelete []time.Time) {
	newSet := make(map[time.Time]struct{}, len(newDates))
	for _, d := range newDates {
		newSet[Day(d)] = struct{}{}
	}
	oldSet := make(map[time.Time]struct{}, len(oldDates))
	for _, d := range oldDates {
		oldSet[Day(d)] = struct{}{}
	}

	for d := range newSet {
		if _, ok := oldSet[d]; !ok {
			toCreate = append(toCreate, d)
		}
	}
	for d := range oldSet {
		if _, ok := newSet[d]; !ok {
			toDelete = append(toDelete, d)
		}
	}
	return toCreate, toDelete
}

// WeekDates returns the dates of the whole Monday-based week containing t.
func WeekDates(t time.Time) []time.Time {
	day := Day(t)
	weekday := Weekday(day)
	dates := make([]time.Time, 0, 7)
	for i := 0 - weekday; i < 7-weekday; i++ {
		dates = append(dates, day.AddDate(0, 0, i))
	}
	return dates
}

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayName returns the English name for a Monday-based day of the week.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return dayNames[weekday]
}
