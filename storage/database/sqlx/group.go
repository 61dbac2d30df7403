package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/group"
)

const (
	groupTable      = "student_group"
	assignmentTable = "group_assignment"
)

var (
	groupColumns      = []string{"id", "name", "educator_id", "created_at", "updated_at"}
	assignmentColumns = []string{"id", "student_id", "group_id", "date_start", "date_end"}
)

type dbGroup struct {
	ID         int       `db:"id"`
	Name       string    `db:"name"`
	EducatorID int       `db:"educator_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (g dbGroup) toGroup() group.StudentGroup {
	return group.StudentGroup{
		ID:         g.ID,
		Name:       g.Name,
		EducatorID: g.EducatorID,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

type dbAssignment struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	GroupID   int       `db:"group_id"`
	DateStart time.Time `db:"date_start"`
	DateEnd   time.Time `db:"date_end"`
}

func (a dbAssignment) toAssignment() group.Assignment {
	return group.Assignment{
		ID:        a.ID,
		StudentID: a.StudentID,
		GroupID:   a.GroupID,
		DateStart: core.Day(a.DateStart),
		DateEnd:   core.Day(a.DateEnd),
	}
}

type groupRepository struct {
	exec core.DBExecutor
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{exec: exec}
}

func (repo groupRepository) CheckGroupUniqueness(ctx context.Context, name string, educatorID int, excluded ...group.StudentGroup) error {
	base := psql.Select("1").From(groupTable)
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, grp := range excluded {
			ids = append(ids, grp.ID)
		}
		base = base.Where(sq.NotEq{"id": ids})
	}

	taken, err := exists(ctx, repo.exec, base.Where(sq.Eq{"name": name}))
	if err != nil {
		return errors.Wrap(err, "checking group name uniqueness")
	}
	if taken {
		return group.ErrNameExists
	}

	taken, err = exists(ctx, repo.exec, base.Where(sq.Eq{"educator_id": educatorID}))
	if err != nil {
		return errors.Wrap(err, "checking group educator uniqueness")
	}
	if taken {
		return group.ErrEducatorTaken
	}
	return nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.StudentGroup, exec ...core.DBExecutor) (group.StudentGroup, error) {
	stmt, args, err := psql.Insert(groupTable).
		Columns("name", "educator_id", "created_at", "updated_at").
		Values(grp.Name, grp.EducatorID, grp.CreatedAt, grp.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return group.StudentGroup{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&grp.ID); err != nil {
		return group.StudentGroup{}, wrapWriteError(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) queryGroups(ctx context.Context, query sq.SelectBuilder) ([]group.StudentGroup, error) {
	var rows []dbGroup
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]group.StudentGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toGroup())
	}
	return groups, nil
}

func (repo groupRepository) QueryAllGroups(ctx context.Context) ([]group.StudentGroup, error) {
	return repo.queryGroups(ctx, psql.Select(groupColumns...).From(groupTable).OrderBy("name"))
}

func (repo groupRepository) GetGroupByID(ctx context.Context, id int) (group.StudentGroup, error) {
	groups, err := repo.queryGroups(ctx, psql.Select(groupColumns...).From(groupTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return group.StudentGroup{}, err
	}
	if len(groups) == 0 {
		return group.StudentGroup{}, group.ErrNotFound
	}
	return groups[0], nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.StudentGroup, exec ...core.DBExecutor) (group.StudentGroup, error) {
	query := psql.Update(groupTable).
		Set("name", grp.Name).
		Set("educator_id", grp.EducatorID).
		Set("updated_at", grp.UpdatedAt).
		Where(sq.Eq{"id": grp.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return group.StudentGroup{}, wrapWriteError(err, "updating group")
	}
	return grp, nil
}

func (repo groupRepository) DeleteGroupsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(groupTable).Where(sq.Eq{"id": ids})), "deleting groups")
}

// Assignments

func (repo groupRepository) CreateAssignment(ctx context.Context, asg group.Assignment, exec ...core.DBExecutor) (group.Assignment, error) {
	stmt, args, err := psql.Insert(assignmentTable).
		Columns("student_id", "group_id", "date_start", "date_end").
		Values(asg.StudentID, asg.GroupID, asg.DateStart, asg.DateEnd).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return group.Assignment{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&asg.ID); err != nil {
		return group.Assignment{}, wrapWriteError(err, "inserting assignment")
	}
	return asg, nil
}

func (repo groupRepository) queryAssignments(ctx context.Context, query sq.SelectBuilder) ([]group.Assignment, error) {
	var rows []dbAssignment
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]group.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toAssignment())
	}
	return asgs, nil
}

func (repo groupRepository) GetAssignmentByID(ctx context.Context, id int) (group.Assignment, error) {
	asgs, err := repo.queryAssignments(ctx, psql.Select(assignmentColumns...).From(assignmentTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return group.Assignment{}, err
	}
	if len(asgs) == 0 {
		return group.Assignment{}, group.ErrAssignmentNotFound
	}
	return asgs[0], nil
}

func (repo groupRepository) QueryGroupAssignments(ctx context.Context, groupID int) ([]group.Assignment, error) {
	return repo.queryAssignments(ctx, psql.Select(assignmentColumns...).
		From(assignmentTable).
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("date_start"))
}

func (repo groupRepository) QueryStudentAssignments(ctx context.Context, studentID int) ([]group.Assignment, error) {
	return repo.queryAssignments(ctx, psql.Select(assignmentColumns...).
		From(assignmentTable).
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("date_start"))
}

func (repo groupRepository) AssignmentsOverlapping(ctx context.Context, studentID int, dateStart, dateEnd time.Time, excludeID int) ([]group.Assignment, error) {
	query := psql.Select(assignmentColumns...).
		From(assignmentTable).
		Where(sq.Eq{"student_id": studentID}).
		Where(sq.LtOrEq{"date_start": dateEnd}).
		Where(sq.GtOrEq{"date_end": dateStart})
	if excludeID != 0 {
		query = query.Where(sq.NotEq{"id": excludeID})
	}
	return repo.queryAssignments(ctx, query)
}

func (repo groupRepository) UpdateAssignment(ctx context.Context, asg group.Assignment, exec ...core.DBExecutor) (group.Assignment, error) {
	query := psql.Update(assignmentTable).
		Set("date_start", asg.DateStart).
		Set("date_end", asg.DateEnd).
		Where(sq.Eq{"id": asg.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return group.Assignment{}, wrapWriteError(err, "updating assignment")
	}
	return asg, nil
}

func (repo groupRepository) DeleteAssignmentsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(assignmentTable).Where(sq.Eq{"id": ids})), "deleting assignments")
}

func (repo groupRepository) StudentIDsEnrolledOn(ctx context.Context, groupID int, date time.Time, exec ...core.DBExecutor) ([]int, error) {
	query := psql.Select("student_id").
		From(assignmentTable).
		Where(sq.Eq{"group_id": groupID}).
		Where(sq.LtOrEq{"date_start": date}).
		Where(sq.GtOrEq{"date_end": date}).
		OrderBy("student_id")
	ids, err := selectInts(ctx, getExec(repo.exec, exec), query)
	return ids, errors.Wrap(err, "querying enrolled students")
}
