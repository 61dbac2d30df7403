package mark

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kazadi/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("mark not found")
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryNameExists = errors.New("a category with this name already exists")
	ErrSymbolNameExists   = errors.New("a symbol with this name already exists")
)

type Repository interface {
	CreateSymbol(ctx context.Context, sym Symbol, exec ...core.DBExecutor) (Symbol, error)
	QueryAllSymbols(ctx context.Context) ([]Symbol, error)
	GetSymbolByID(ctx context.Context, id int) (Symbol, error)
	DeleteSymbolsByID(ctx context.Context, ids ...int) error

	CreateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
	QueryAllCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id int) (Category, error)
	DeleteCategoriesByID(ctx context.Context, ids ...int) error

	CreateMark(ctx context.Context, mrk Mark, exec ...core.DBExecutor) (Mark, error)
	GetMarkByID(ctx context.Context, id int) (Mark, error)
	QueryStudentMarks(ctx context.Context, studentID, courseID int) ([]Mark, error)
	UpdateMark(ctx context.Context, mrk Mark, exec ...core.DBExecutor) (Mark, error)
	DeleteMarksByID(ctx context.Context, ids ...int) error

	CreateChangeHistory(ctx context.Context, ch ChangeHistory, exec ...core.DBExecutor) (ChangeHistory, error)
	// QueryMarkHistory returns the mark's audit entries, newest first.
	QueryMarkHistory(ctx context.Context, markID int) ([]ChangeHistory, error)
}

type Service struct {
	db       core.DB
	repo     Repository
	validate *validator.Validate
}

func NewService(db core.DB, repo Repository, validate *validator.Validate) *Service {
	return &Service{db: db, repo: repo, validate: validate}
}

// Symbols

func (svc *Service) CreateSymbol(ctx context.Context, ns NewSymbol) (Symbol, error) {
	ns.Name = core.CleanString(ns.Name)
	if err := svc.validate.Struct(ns); err != nil {
		return Symbol{}, err
	}
	return svc.repo.CreateSymbol(ctx, Symbol{Name: ns.Name, Value: ns.Value})
}

func (svc *Service) QueryAllSymbols(ctx context.Context) ([]Symbol, error) {
	return svc.repo.QueryAllSymbols(ctx)
}

func (svc *Service) DeleteSymbols(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteSymbolsByID(ctx, ids...)
}

// Categories

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	nc.Name = core.CleanString(nc.Name)
	if err := svc.validate.Struct(nc); err != nil {
		return Category{}, err
	}
	return svc.repo.CreateCategory(ctx, Category{Name: nc.Name})
}

func (svc *Service) QueryAllCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *Service) DeleteCategories(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCategoriesByID(ctx, ids...)
}

// Marks

// Create records the mark and its "add" audit entry in one transaction.
// userID is the account performing the change.
func (svc *Service) Create(ctx context.Context, nm NewMark, userID int) (Mark, error) {
	if err := svc.validate.Struct(nm); err != nil {
		return Mark{}, err
	}
	if _, err := svc.repo.GetSymbolByID(ctx, nm.SymbolID); err != nil {
		return Mark{}, err
	}
	if _, err := svc.repo.GetCategoryByID(ctx, nm.CategoryID); err != nil {
		return Mark{}, err
	}

	now := time.Now().UTC()
	mrk := Mark{
		StudentID:  nm.StudentID,
		TeacherID:  nm.TeacherID,
		CourseID:   nm.CourseID,
		CategoryID: nm.CategoryID,
		SymbolID:   nm.SymbolID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return Mark{}, err
	}
	mrk, err = svc.createTx(ctx, tx, mrk, userID)
	if err != nil {
		_ = tx.Rollback()
		return Mark{}, err
	}
	if err = tx.Commit(); err != nil {
		return Mark{}, err
	}
	return mrk, nil
}

func (svc *Service) createTx(ctx context.Context, tx core.DBTransactor, mrk Mark, userID int) (Mark, error) {
	mrk, err := svc.repo.CreateMark(ctx, mrk, tx)
	if err != nil {
		return Mark{}, err
	}
	ch := ChangeHistory{
		MarkID:    mrk.ID,
		Type:      ChangeAdd,
		UserID:    userID,
		ValueNew:  null.IntFrom(mrk.SymbolID),
		Timestamp: mrk.CreatedAt,
	}
	if _, err = svc.repo.CreateChangeHistory(ctx, ch, tx); err != nil {
		return Mark{}, err
	}
	return mrk, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Mark, error) {
	return svc.repo.GetMarkByID(ctx, id)
}

func (svc *Service) StudentMarks(ctx context.Context, studentID, courseID int) ([]Mark, error) {
	return svc.repo.QueryStudentMarks(ctx, studentID, courseID)
}

// Update changes the mark's symbol or category and records a "modify" audit
// entry holding the symbol before and after, in one transaction. The old
// symbol is read before the row is overwritten.
func (svc *Service) Update(ctx context.Context, id int, um UpdateMark, userID int) (Mark, error) {
	mrk, err := svc.repo.GetMarkByID(ctx, id)
	if err != nil {
		return Mark{}, err
	}
	if err = svc.validate.Struct(um); err != nil {
		return Mark{}, err
	}
	if _, err = svc.repo.GetSymbolByID(ctx, um.SymbolID); err != nil {
		return Mark{}, err
	}
	if _, err = svc.repo.GetCategoryByID(ctx, um.CategoryID); err != nil {
		return Mark{}, err
	}

	oldSymbolID := mrk.SymbolID
	mrk.CategoryID = um.CategoryID
	mrk.SymbolID = um.SymbolID
	mrk.UpdatedAt = time.Now().UTC()

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return Mark{}, err
	}
	mrk, err = svc.updateTx(ctx, tx, mrk, oldSymbolID, userID)
	if err != nil {
		_ = tx.Rollback()
		return Mark{}, err
	}
	if err = tx.Commit(); err != nil {
		return Mark{}, err
	}
	return mrk, nil
}

func (svc *Service) updateTx(ctx context.Context, tx core.DBTransactor, mrk Mark, oldSymbolID, userID int) (Mark, error) {
	mrk, err := svc.repo.UpdateMark(ctx, mrk, tx)
	if err != nil {
		return Mark{}, err
	}
	ch := ChangeHistory{
		MarkID:    mrk.ID,
		Type:      ChangeModify,
		UserID:    userID,
		ValueOld:  null.IntFrom(oldSymbolID),
		ValueNew:  null.IntFrom(mrk.SymbolID),
		Timestamp: mrk.UpdatedAt,
	}
	if _, err = svc.repo.CreateChangeHistory(ctx, ch, tx); err != nil {
		return Mark{}, err
	}
	return mrk, nil
}

// Delete removes the mark; its history goes with it.
func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteMarksByID(ctx, ids...)
}

func (svc *Service) History(ctx context.Context, markID int) ([]ChangeHistory, error) {
	if _, err := svc.repo.GetMarkByID(ctx, markID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMarkHistory(ctx, markID)
}
