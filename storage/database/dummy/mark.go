package dummydb

import (
	"context"
	"sort"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/mark"
)

type markRepository struct {
	symbols    *symbolTable
	categories *categoryTable
	marks      *markTable
	history    *historyTable
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *DB) mark.Repository {
	return &markRepository{symbols: db.symbol, categories: db.category, marks: db.mark, history: db.history}
}

// Symbols

func (repo *markRepository) CreateSymbol(ctx context.Context, sym mark.Symbol, exec ...core.DBExecutor) (mark.Symbol, error) {
	repo.symbols.Lock()
	defer repo.symbols.Unlock()

	repo.symbols.pkCount++
	sym.ID = repo.symbols.pkCount
	repo.symbols.table[sym.ID] = &sym
	return sym, nil
}

func (repo *markRepository) QueryAllSymbols(ctx context.Context) ([]mark.Symbol, error) {
	repo.symbols.RLock()
	defer repo.symbols.RUnlock()

	syms := make([]mark.Symbol, 0, len(repo.symbols.table))
	for _, sym := range repo.symbols.table {
		syms = append(syms, *sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Value.LessThan(syms[j].Value) })
	return syms, nil
}

func (repo *markRepository) GetSymbolByID(ctx context.Context, id int) (mark.Symbol, error) {
	repo.symbols.RLock()
	defer repo.symbols.RUnlock()

	if sym, ok := repo.symbols.table[id]; ok {
		return *sym, nil
	}
	return mark.Symbol{}, mark.ErrSymbolNotFound
}

func (repo *markRepository) DeleteSymbolsByID(ctx context.Context, ids ...int) error {
	repo.symbols.Lock()
	defer repo.symbols.Unlock()
	for _, id := range ids {
		delete(repo.symbols.table, id)
	}
	return nil
}

// Categories

func (repo *markRepository) CreateCategory(ctx context.Context, cat mark.Category, exec ...core.DBExecutor) (mark.Category, error) {
	repo.categories.Lock()
	defer repo.categories.Unlock()

	repo.categories.pkCount++
	cat.ID = repo.categories.pkCount
	repo.categories.table[cat.ID] = &cat
	return cat, nil
}

func (repo *markRepository) QueryAllCategories(ctx context.Context) ([]mark.Category, error) {
	repo.categories.RLock()
	defer repo.categories.RUnlock()

	cats := make([]mark.Category, 0, len(repo.categories.table))
	for _, cat := range repo.categories.table {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *markRepository) GetCategoryByID(ctx context.Context, id int) (mark.Category, error) {
	repo.categories.RLock()
	defer repo.categories.RUnlock()

	if cat, ok := repo.categories.table[id]; ok {
		return *cat, nil
	}
	return mark.Category{}, mark.ErrCategoryNotFound
}

func (repo *markRepository) DeleteCategoriesByID(ctx context.Context, ids ...int) error {
	repo.categories.Lock()
	defer repo.categories.Unlock()
	for _, id := range ids {
		delete(repo.categories.table, id)
	}
	return nil
}

// Marks

func (repo *markRepository) CreateMark(ctx context.Context, mrk mark.Mark, exec ...core.DBExecutor) (mark.Mark, error) {
	repo.marks.Lock()
	defer repo.marks.Unlock()

	repo.marks.pkCount++
	mrk.ID = repo.marks.pkCount
	repo.marks.table[mrk.ID] = &mrk
	return mrk, nil
}

func (repo *markRepository) GetMarkByID(ctx context.Context, id int) (mark.Mark, error) {
	repo.marks.RLock()
	defer repo.marks.RUnlock()

	if mrk, ok := repo.marks.table[id]; ok {
		return *mrk, nil
	}
	return mark.Mark{}, mark.ErrNotFound
}

func (repo *markRepository) QueryStudentMarks(ctx context.Context, studentID, courseID int) ([]mark.Mark, error) {
	repo.marks.RLock()
	defer repo.marks.RUnlock()

	var marks []mark.Mark
	for _, mrk := range repo.marks.table {
		if mrk.StudentID != studentID {
			continue
		}
		if courseID != 0 && mrk.CourseID != courseID {
			continue
		}
		marks = append(marks, *mrk)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].ID < marks[j].ID })
	return marks, nil
}

func (repo *markRepository) UpdateMark(ctx context.Context, mrk mark.Mark, exec ...core.DBExecutor) (mark.Mark, error) {
	repo.marks.Lock()
	defer repo.marks.Unlock()

	if _, ok := repo.marks.table[mrk.ID]; !ok {
		return mark.Mark{}, mark.ErrNotFound
	}
	repo.marks.table[mrk.ID] = &mrk
	return mrk, nil
}

// DeleteMarksByID cascades to the marks' change history.
func (repo *markRepository) DeleteMarksByID(ctx context.Context, ids ...int) error {
	repo.marks.Lock()
	defer repo.marks.Unlock()
	repo.history.Lock()
	defer repo.history.Unlock()

	for _, id := range ids {
		delete(repo.marks.table, id)
		for chID, ch := range repo.history.table {
			if ch.MarkID == id {
				delete(repo.history.table, chID)
			}
		}
	}
	return nil
}

// History

func (repo *markRepository) CreateChangeHistory(ctx context.Context, ch mark.ChangeHistory, exec ...core.DBExecutor) (mark.ChangeHistory, error) {
	repo.history.Lock()
	defer repo.history.Unlock()

	repo.history.pkCount++
	ch.ID = repo.history.pkCount
	repo.history.table[ch.ID] = &ch
	return ch, nil
}

func (repo *markRepository) QueryMarkHistory(ctx context.Context, markID int) ([]mark.ChangeHistory, error) {
	repo.history.RLock()
	defer repo.history.RUnlock()

	var hist []mark.ChangeHistory
	for _, ch := range repo.history.table {
		if ch.MarkID == markID {
			hist = append(hist, *ch)
		}
	}
	// newest first
	sort.Slice(hist, func(i, j int) bool {
		if !hist[i].Timestamp.Equal(hist[j].Timestamp) {
			return hist[i].Timestamp.After(hist[j].Timestamp)
		}
		return hist[i].ID > hist[j].ID
	})
	return hist, nil
}
