package dummydb

import (
	"sync"

	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/period"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		group      *groupTable
		assignment *assignmentTable
		course     *courseTable
		period     *periodTable
		schedule   *scheduleTable
		lesson     *lessonTable
		attendance *attendanceTable
		symbol     *symbolTable
		category   *categoryTable
		mark       *markTable
		history    *historyTable
	}

	userTable struct {
		sync.RWMutex
		table   map[int]*user.User
		pkCount int
	}
	groupTable struct {
		sync.RWMutex
		table   map[int]*group.StudentGroup
		pkCount int
	}
	assignmentTable struct {
		sync.RWMutex
		table   map[int]*group.Assignment
		pkCount int
	}
	courseTable struct {
		sync.RWMutex
		table   map[int]*course.Course
		pkCount int
	}
	periodTable struct {
		sync.RWMutex
		table   map[int]*period.Period
		pkCount int
	}
	scheduleTable struct {
		sync.RWMutex
		table   map[int]*schedule.Schedule
		pkCount int
	}
	lessonTable struct {
		sync.RWMutex
		table   map[int]*lesson.Lesson
		pkCount int
	}
	attendanceTable struct {
		sync.RWMutex
		table   map[int]*lesson.Attendance
		pkCount int
	}
	symbolTable struct {
		sync.RWMutex
		table   map[int]*mark.Symbol
		pkCount int
	}
	categoryTable struct {
		sync.RWMutex
		table   map[int]*mark.Category
		pkCount int
	}
	markTable struct {
		sync.RWMutex
		table   map[int]*mark.Mark
		pkCount int
	}
	historyTable struct {
		sync.RWMutex
		table   map[int]*mark.ChangeHistory
		pkCount int
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		group:      &groupTable{table: make(map[int]*group.StudentGroup)},
		assignment: &assignmentTable{table: make(map[int]*group.Assignment)},
		course:     &courseTable{table: make(map[int]*course.Course)},
		period:     &periodTable{table: make(map[int]*period.Period)},
		schedule:   &scheduleTable{table: make(map[int]*schedule.Schedule)},
		lesson:     &lessonTable{table: make(map[int]*lesson.Lesson)},
		attendance: &attendanceTable{table: make(map[int]*lesson.Attendance)},
		symbol:     &symbolTable{table: make(map[int]*mark.Symbol)},
		category:   &categoryTable{table: make(map[int]*mark.Category)},
		mark:       &markTable{table: make(map[int]*mark.Mark)},
		history:    &historyTable{table: make(map[int]*mark.ChangeHistory)},
	}
	return db, nil
}
