package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/mark"
)

const (
	symbolTable   = "mark_symbol"
	categoryTable = "mark_category"
	markTable     = "mark"
	historyTable  = "mark_change_history"
)

var (
	symbolColumns   = []string{"id", "name", "value"}
	categoryColumns = []string{"id", "name"}
	markColumns     = []string{"id", "student_id", "teacher_id", "course_id", "category_id", "symbol_id", "created_at", "updated_at"}
	historyColumns  = []string{"id", "mark_id", "type", "user_id", "value_old", "value_new", "timestamp"}
)

type dbSymbol struct {
	ID    int             `db:"id"`
	Name  string          `db:"name"`
	Value decimal.Decimal `db:"value"`
}

type dbCategory struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type dbMark struct {
	ID         int       `db:"id"`
	StudentID  int       `db:"student_id"`
	TeacherID  int       `db:"teacher_id"`
	CourseID   int       `db:"course_id"`
	CategoryID int       `db:"category_id"`
	SymbolID   int       `db:"symbol_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m dbMark) toMark() mark.Mark {
	return mark.Mark{
		ID:         m.ID,
		StudentID:  m.StudentID,
		TeacherID:  m.TeacherID,
		CourseID:   m.CourseID,
		CategoryID: m.CategoryID,
		SymbolID:   m.SymbolID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type dbChangeHistory struct {
	ID        int       `db:"id"`
	MarkID    int       `db:"mark_id"`
	Type      int       `db:"type"`
	UserID    int       `db:"user_id"`
	ValueOld  null.Int  `db:"value_old"`
	ValueNew  null.Int  `db:"value_new"`
	Timestamp time.Time `db:"timestamp"`
}

func (ch dbChangeHistory) toChangeHistory() mark.ChangeHistory {
	return mark.ChangeHistory{
		ID:        ch.ID,
		MarkID:    ch.MarkID,
		Type:      mark.ChangeType(ch.Type),
		UserID:    ch.UserID,
		ValueOld:  ch.ValueOld,
		ValueNew:  ch.ValueNew,
		Timestamp: ch.Timestamp,
	}
}

type markRepository struct {
	exec core.DBExecutor
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(exec core.DBExecutor) *markRepository {
	return &markRepository{exec: exec}
}

// Symbols

func (repo markRepository) CreateSymbol(ctx context.Context, sym mark.Symbol, exec ...core.DBExecutor) (mark.Symbol, error) {
	stmt, args, err := psql.Insert(symbolTable).
		Columns("name", "value").
		Values(sym.Name, sym.Value).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return mark.Symbol{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&sym.ID); err != nil {
		return mark.Symbol{}, wrapWriteError(err, "inserting symbol")
	}
	return sym, nil
}

func (repo markRepository) QueryAllSymbols(ctx context.Context) ([]mark.Symbol, error) {
	var rows []dbSymbol
	query := psql.Select(symbolColumns...).From(symbolTable).OrderBy("value")
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying symbols")
	}
	syms := make([]mark.Symbol, 0, len(rows))
	for _, row := range rows {
		syms = append(syms, mark.Symbol{ID: row.ID, Name: row.Name, Value: row.Value})
	}
	return syms, nil
}

func (repo markRepository) GetSymbolByID(ctx context.Context, id int) (mark.Symbol, error) {
	var rows []dbSymbol
	query := psql.Select(symbolColumns...).From(symbolTable).Where(sq.Eq{"id": id})
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return mark.Symbol{}, errors.Wrap(err, "querying symbol")
	}
	if len(rows) == 0 {
		return mark.Symbol{}, mark.ErrSymbolNotFound
	}
	return mark.Symbol{ID: rows[0].ID, Name: rows[0].Name, Value: rows[0].Value}, nil
}

func (repo markRepository) DeleteSymbolsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(symbolTable).Where(sq.Eq{"id": ids})), "deleting symbols")
}

// Categories

func (repo markRepository) CreateCategory(ctx context.Context, cat mark.Category, exec ...core.DBExecutor) (mark.Category, error) {
	stmt, args, err := psql.Insert(categoryTable).
		Columns("name").
		Values(cat.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return mark.Category{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&cat.ID); err != nil {
		return mark.Category{}, wrapWriteError(err, "inserting category")
	}
	return cat, nil
}

func (repo markRepository) QueryAllCategories(ctx context.Context) ([]mark.Category, error) {
	var rows []dbCategory
	query := psql.Select(categoryColumns...).From(categoryTable).OrderBy("name")
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	cats := make([]mark.Category, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, mark.Category{ID: row.ID, Name: row.Name})
	}
	return cats, nil
}

func (repo markRepository) GetCategoryByID(ctx context.Context, id int) (mark.Category, error) {
	var rows []dbCategory
	query := psql.Select(categoryColumns...).From(categoryTable).Where(sq.Eq{"id": id})
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return mark.Category{}, errors.Wrap(err, "querying category")
	}
	if len(rows) == 0 {
		return mark.Category{}, mark.ErrCategoryNotFound
	}
	return mark.Category{ID: rows[0].ID, Name: rows[0].Name}, nil
}

func (repo markRepository) DeleteCategoriesByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(categoryTable).Where(sq.Eq{"id": ids})), "deleting categories")
}

// Marks

func (repo markRepository) CreateMark(ctx context.Context, mrk mark.Mark, exec ...core.DBExecutor) (mark.Mark, error) {
	stmt, args, err := psql.Insert(markTable).
		Columns("student_id", "teacher_id", "course_id", "category_id", "symbol_id", "created_at", "updated_at").
		Values(mrk.StudentID, mrk.TeacherID, mrk.CourseID, mrk.CategoryID, mrk.SymbolID, mrk.CreatedAt, mrk.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return mark.Mark{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&mrk.ID); err != nil {
		return mark.Mark{}, errors.Wrap(err, "inserting mark")
	}
	return mrk, nil
}

func (repo markRepository) queryMarks(ctx context.Context, query sq.SelectBuilder) ([]mark.Mark, error) {
	var rows []dbMark
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}
	marks := make([]mark.Mark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, row.toMark())
	}
	return marks, nil
}

func (repo markRepository) GetMarkByID(ctx context.Context, id int) (mark.Mark, error) {
	marks, err := repo.queryMarks(ctx, psql.Select(markColumns...).From(markTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return mark.Mark{}, err
	}
	if len(marks) == 0 {
		return mark.Mark{}, mark.ErrNotFound
	}
	return marks[0], nil
}

func (repo markRepository) QueryStudentMarks(ctx context.Context, studentID, courseID int) ([]mark.Mark, error) {
	query := psql.Select(markColumns...).From(markTable).Where(sq.Eq{"student_id": studentID})
	if courseID != 0 {
		query = query.Where(sq.Eq{"course_id": courseID})
	}
	return repo.queryMarks(ctx, query.OrderBy("created_at", "id"))
}

func (repo markRepository) UpdateMark(ctx context.Context, mrk mark.Mark, exec ...core.DBExecutor) (mark.Mark, error) {
	query := psql.Update(markTable).
		Set("category_id", mrk.CategoryID).
		Set("symbol_id", mrk.SymbolID).
		Set("updated_at", mrk.UpdatedAt).
		Where(sq.Eq{"id": mrk.ID})
	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return mark.Mark{}, errors.Wrap(err, "updating mark")
	}
	return mrk, nil
}

func (repo markRepository) DeleteMarksByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(markTable).Where(sq.Eq{"id": ids})), "deleting marks")
}

// History

func (repo markRepository) CreateChangeHistory(ctx context.Context, ch mark.ChangeHistory, exec ...core.DBExecutor) (mark.ChangeHistory, error) {
	stmt, args, err := psql.Insert(historyTable).
		Columns("mark_id", "type", "user_id", "value_old", "value_new", "timestamp").
		Values(ch.MarkID, int(ch.Type), ch.UserID, ch.ValueOld, ch.ValueNew, ch.Timestamp).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return mark.ChangeHistory{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&ch.ID); err != nil {
		return mark.ChangeHistory{}, errors.Wrap(err, "inserting change history")
	}
	return ch, nil
}

func (repo markRepository) QueryMarkHistory(ctx context.Context, markID int) ([]mark.ChangeHistory, error) {
	var rows []dbChangeHistory
	query := psql.Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"mark_id": markID}).
		OrderBy("timestamp DESC", "id DESC")
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying mark history")
	}
	hist := make([]mark.ChangeHistory, 0, len(rows))
	for _, row := range rows {
		hist = append(hist, row.toChangeHistory())
	}
	return hist, nil
}
