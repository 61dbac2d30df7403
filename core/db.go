package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

// BeginTx starts a transaction on db. A nil db yields a no-op transactor;
// in-memory repositories ignore the executor they are handed anyway.
func BeginTx(ctx context.Context, db DB) (DBTransactor, error) {
	if db == nil {
		return noopTransactor{}, nil
	}
	return db.BeginTx(ctx, nil)
}

type noopTransactor struct{}

func (noopTransactor) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (noopTransactor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (noopTransactor) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (noopTransactor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (noopTransactor) QueryRow(string, ...interface{}) *sql.Row { return nil }
func (noopTransactor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}
func (noopTransactor) Commit() error   { return nil }
func (noopTransactor) Rollback() error { return nil }

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
