package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekday(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{name: "monday", date: Date(2024, time.January, 1), want: 0},
		{name: "wednesday", date: Date(2024, time.January, 3), want: 2},
		{name: "saturday", date: Date(2024, time.January, 6), want: 5},
		{name: "sunday", date: Date(2024, time.January, 7), want: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weekday(tt.date); got != tt.want {
				t.Errorf("Weekday() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatesBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       []time.Time
	}{
		{
			name:  "two weeks yield two dates, end excluded",
			start: Date(2024, time.January, 1),
			end:   Date(2024, time.January, 15),
			want:  []time.Time{Date(2024, time.January, 1), Date(2024, time.January, 8)},
		},
		{
			name:  "partial last week still excluded",
			start: Date(2024, time.January, 1),
			end:   Date(2024, time.January, 16),
			want:  []time.Time{Date(2024, time.January, 1), Date(2024, time.January, 8), Date(2024, time.January, 15)},
		},
		{
			name:  "start equals end",
			start: Date(2024, time.January, 1),
			end:   Date(2024, time.January, 1),
			want:  nil,
		},
		{
			name:  "start after end",
			start: Date(2024, time.January, 8),
			end:   Date(2024, time.January, 1),
			want:  nil,
		},
		{
			name:  "time of day is ignored",
			start: time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC),
			end:   time.Date(2024, time.January, 8, 0, 1, 0, 0, time.UTC),
			want:  []time.Time{Date(2024, time.January, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DatesBetween(tt.start, tt.end, 7)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiffDates(t *testing.T) {
	jan := func(day int) time.Time { return Date(2024, time.January, day) }

	tests := []struct {
		name               string
		newDates, oldDates []time.Time
		toCreate, toDelete []time.Time
	}{
		{
			name:     "extension only creates",
			newDates: []time.Time{jan(1), jan(8), jan(15)},
			oldDates: []time.Time{jan(1), jan(8)},
			toCreate: []time.Time{jan(15)},
		},
		{
			name:     "shrink only deletes",
			newDates: []time.Time{jan(1)},
			oldDates: []time.Time{jan(1), jan(8)},
			toDelete: []time.Time{jan(8)},
		},
		{
			name:     "shifted interval does both",
			newDates: []time.Time{jan(8), jan(15)},
			oldDates: []time.Time{jan(1), jan(8)},
			toCreate: []time.Time{jan(15)},
			toDelete: []time.Time{jan(1)},
		},
		{
			name:     "identical sets are a no-op",
			newDates: []time.Time{jan(1), jan(8)},
			oldDates: []time.Time{jan(8), jan(1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toCreate, toDelete := DiffDates(tt.newDates, tt.oldDates)
			assert.ElementsMatch(t, tt.toCreate, toCreate)
			assert.ElementsMatch(t, tt.toDelete, toDelete)
		})
	}
}

func TestWeekDates(t *testing.T) {
	want := []time.Time{
		Date(2024, time.January, 1),
		Date(2024, time.January, 2),
		Date(2024, time.January, 3),
		Date(2024, time.January, 4),
		Date(2024, time.January, 5),
		Date(2024, time.January, 6),
		Date(2024, time.January, 7),
	}

	// any day of the week maps to the same Monday-based week
	for day := 1; day <= 7; day++ {
		assert.Equal(t, want, WeekDates(Date(2024, time.January, day)))
	}
}
