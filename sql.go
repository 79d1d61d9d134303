package authflow

import (
	"database/sql"
)

// Executor interface abstracts database operations.
type Executor interface {
	Exec(query string, args ...any) error
	Query(query string, args ...any) (Rows, error)
	QueryRow(query string, args ...any) Scanner
}

// Scanner interface abstracts scanning a row.
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface abstracts scanning multiple rows.
type Rows interface {
	Scan(dest ...any) error
	Next() bool
	Close() error
	Err() error
}

// DB adapts *sql.DB to Executor.
type DB struct {
	*sql.DB
}

func (d DB) Exec(query string, args ...any) error {
	_, err := d.DB.Exec(query, args...)
	return err
}

func (d DB) Query(query string, args ...any) (Rows, error) {
	return d.DB.Query(query, args...)
}

func (d DB) QueryRow(query string, args ...any) Scanner {
	return d.DB.QueryRow(query, args...)
}
