package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/user"
)

// psql builds queries with postgres $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	errAssignmentTaken = errors.New("the student is already assigned to a group over these dates")
	errPeriodExists    = errors.New("a period with these times already exists")
	errTeacherOccupied = errors.New("the teacher is already occupied on this slot")
	errGroupOccupied   = errors.New("the group is already occupied on this slot")
)

// constraintErrors maps violated database constraints to the errors the
// services raise for the same rule. The services check these rules up front,
// but concurrent writers can still lose the race and hit the constraint.
var constraintErrors = map[string]error{
	"user_username_key":              fieldError("username", user.ErrUsernameExists),
	"user_email_key":                 fieldError("email", user.ErrEmailExists),
	"student_group_name_key":         fieldError("name", group.ErrNameExists),
	"student_group_educator_id_key":  fieldError("educator_id", group.ErrEducatorTaken),
	"assignment_no_overlap":          fieldError("date_start", errAssignmentTaken),
	"course_name_group_id_key":       fieldError("name", course.ErrNameExists),
	"period_time_start_time_end_key": fieldError("time_start", errPeriodExists),
	"schedule_teacher_no_overlap":    fieldError("teacher", errTeacherOccupied),
	"schedule_group_no_overlap":      fieldError("course", errGroupOccupied),
	"mark_symbol_name_key":           fieldError("name", mark.ErrSymbolNameExists),
	"mark_category_name_key":         fieldError("name", mark.ErrCategoryNameExists),
}

func fieldError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// wrapWriteError turns unique (23505) and exclusion (23P01) violations into
// their domain validation errors; anything else is wrapped with msg.
func wrapWriteError(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Code {
		case "23505", "23P01":
			if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
				return mapped
			}
		}
	}
	return errors.Wrap(err, msg)
}

func getExec(def core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return def
}

// selectStructs runs query and scans all rows into dest, a pointer to a slice
// of db-tagged structs.
func selectStructs(ctx context.Context, exec core.DBExecutor, query sq.SelectBuilder, dest interface{}) error {
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}
	rows, err := exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

// selectInts runs a single-column query and returns the values.
func selectInts(ctx context.Context, exec core.DBExecutor, query sq.SelectBuilder) ([]int, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int
	for rows.Next() {
		var v int
		if err = rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// exists runs query wrapped in SELECT EXISTS.
func exists(ctx context.Context, exec core.DBExecutor, query sq.SelectBuilder) (bool, error) {
	stmt, args, err := query.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var found bool
	err = exec.QueryRowContext(ctx, stmt, args...).Scan(&found)
	return found, err
}

// execStmt runs a squirrel statement that returns no rows.
func execStmt(ctx context.Context, exec core.DBExecutor, query sq.Sqlizer) error {
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, stmt, args...)
	return err
}
