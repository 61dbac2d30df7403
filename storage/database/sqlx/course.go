package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
)

const courseTable = "course"

var courseColumns = []string{"id", "name", "group_id"}

type dbCourse struct {
	ID      int    `db:"id"`
	Name    string `db:"name"`
	GroupID int    `db:"group_id"`
}

func (c dbCourse) toCourse() course.Course {
	return course.Course{ID: c.ID, Name: c.Name, GroupID: c.GroupID}
}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) CheckCourseUniqueness(ctx context.Context, name string, groupID int, excluded ...course.Course) error {
	query := psql.Select("1").From(courseTable).
		Where(sq.Eq{"name": name, "group_id": groupID})
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, crs := range excluded {
			ids = append(ids, crs.ID)
		}
		query = query.Where(sq.NotEq{"id": ids})
	}

	taken, err := exists(ctx, repo.exec, query)
	if err != nil {
		return errors.Wrap(err, "checking course uniqueness")
	}
	if taken {
		return course.ErrNameExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	stmt, args, err := psql.Insert(courseTable).
		Columns("name", "group_id").
		Values(crs.Name, crs.GroupID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return course.Course{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&crs.ID); err != nil {
		return course.Course{}, wrapWriteError(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) queryCourses(ctx context.Context, query sq.SelectBuilder) ([]course.Course, error) {
	var rows []dbCourse
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	return repo.queryCourses(ctx, psql.Select(courseColumns...).From(courseTable).OrderBy("name"))
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	courses, err := repo.queryCourses(ctx, psql.Select(courseColumns...).From(courseTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return course.Course{}, err
	}
	if len(courses) == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return courses[0], nil
}

func (repo courseRepository) QueryGroupCourses(ctx context.Context, groupID int) ([]course.Course, error) {
	return repo.queryCourses(ctx, psql.Select(courseColumns...).
		From(courseTable).
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("name"))
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	query := psql.Update(courseTable).
		Set("name", crs.Name).
		Where(sq.Eq{"id": crs.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return course.Course{}, wrapWriteError(err, "updating course")
	}
	return crs, nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(courseTable).Where(sq.Eq{"id": ids})), "deleting courses")
}
