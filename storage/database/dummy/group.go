package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/group"
)

type groupRepository struct {
	groups      *groupTable
	assignments *assignmentTable
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{groups: db.group, assignments: db.assignment}
}

func (repo *groupRepository) queryGroups() []group.StudentGroup {
	groups := make([]group.StudentGroup, 0, len(repo.groups.table))
	for _, grp := range repo.groups.table {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

func (repo *groupRepository) queryAssignments() []group.Assignment {
	asgs := make([]group.Assignment, 0, len(repo.assignments.table))
	for _, asg := range repo.assignments.table {
		asgs = append(asgs, *asg)
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].ID < asgs[j].ID })
	return asgs
}

func (repo *groupRepository) CheckGroupUniqueness(ctx context.Context, name string, educatorID int, excluded ...group.StudentGroup) error {
	repo.groups.RLock()
	defer repo.groups.RUnlock()

	exclSet := make(map[int]struct{}, len(excluded))
	for _, grp := range excluded {
		exclSet[grp.ID] = struct{}{}
	}

	for _, grp := range repo.queryGroups() {
		if _, ok := exclSet[grp.ID]; ok {
			continue
		}
		if grp.Name == name {
			return group.ErrNameExists
		}
		if grp.EducatorID == educatorID {
			return group.ErrEducatorTaken
		}
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.StudentGroup, exec ...core.DBExecutor) (group.StudentGroup, error) {
	repo.groups.Lock()
	defer repo.groups.Unlock()

	repo.groups.pkCount++
	grp.ID = repo.groups.pkCount
	repo.groups.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.StudentGroup, error) {
	repo.groups.RLock()
	defer repo.groups.RUnlock()
	return repo.queryGroups(), nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id int) (group.StudentGroup, error) {
	repo.groups.RLock()
	defer repo.groups.RUnlock()

	if grp, ok := repo.groups.table[id]; ok {
		return *grp, nil
	}
	return group.StudentGroup{}, group.ErrNotFound
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp group.StudentGroup, exec ...core.DBExecutor) (group.StudentGroup, error) {
	repo.groups.Lock()
	defer repo.groups.Unlock()

	if _, ok := repo.groups.table[grp.ID]; !ok {
		return group.StudentGroup{}, group.ErrNotFound
	}
	repo.groups.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...int) error {
	repo.groups.Lock()
	defer repo.groups.Unlock()
	for _, id := range ids {
		delete(repo.groups.table, id)
	}
	return nil
}

// Assignments

func (repo *groupRepository) CreateAssignment(ctx context.Context, asg group.Assignment, exec ...core.DBExecutor) (group.Assignment, error) {
	repo.assignments.Lock()
	defer repo.assignments.Unlock()

	repo.assignments.pkCount++
	asg.ID = repo.assignments.pkCount
	repo.assignments.table[asg.ID] = &asg
	return asg, nil
}

func (repo *groupRepository) GetAssignmentByID(ctx context.Context, id int) (group.Assignment, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	if asg, ok := repo.assignments.table[id]; ok {
		return *asg, nil
	}
	return group.Assignment{}, group.ErrAssignmentNotFound
}

func (repo *groupRepository) QueryGroupAssignments(ctx context.Context, groupID int) ([]group.Assignment, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	var asgs []group.Assignment
	for _, asg := range repo.queryAssignments() {
		if asg.GroupID == groupID {
			asgs = append(asgs, asg)
		}
	}
	return asgs, nil
}

func (repo *groupRepository) QueryStudentAssignments(ctx context.Context, studentID int) ([]group.Assignment, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	var asgs []group.Assignment
	for _, asg := range repo.queryAssignments() {
		if asg.StudentID == studentID {
			asgs = append(asgs, asg)
		}
	}
	return asgs, nil
}

func (repo *groupRepository) AssignmentsOverlapping(ctx context.Context, studentID int, dateStart, dateEnd time.Time, excludeID int) ([]group.Assignment, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	var asgs []group.Assignment
	for _, asg := range repo.queryAssignments() {
		if asg.ID == excludeID || asg.StudentID != studentID {
			continue
		}
		if !asg.DateStart.After(dateEnd) && !asg.DateEnd.Before(dateStart) {
			asgs = append(asgs, asg)
		}
	}
	return asgs, nil
}

func (repo *groupRepository) UpdateAssignment(ctx context.Context, asg group.Assignment, exec ...core.DBExecutor) (group.Assignment, error) {
	repo.assignments.Lock()
	defer repo.assignments.Unlock()

	if _, ok := repo.assignments.table[asg.ID]; !ok {
		return group.Assignment{}, group.ErrAssignmentNotFound
	}
	repo.assignments.table[asg.ID] = &asg
	return asg, nil
}

func (repo *groupRepository) DeleteAssignmentsByID(ctx context.Context, ids ...int) error {
	repo.assignments.Lock()
	defer repo.assignments.Unlock()
	for _, id := range ids {
		delete(repo.assignments.table, id)
	}
	return nil
}

func (repo *groupRepository) StudentIDsEnrolledOn(ctx context.Context, groupID int, date time.Time, exec ...core.DBExecutor) ([]int, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	day := core.Day(date)
	var ids []int
	for _, asg := range repo.queryAssignments() {
		if asg.GroupID != groupID {
			continue
		}
		if !asg.DateStart.After(day) && !asg.DateEnd.Before(day) {
			ids = append(ids, asg.StudentID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}
