//go:build !wasm

package authflow

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore keeps client storage in a local SQL database, for native
// front-ends such as the terminal client.
type SQLStore struct {
	exec Executor
}

func NewSQLStore(exec Executor) (*SQLStore, error) {
	if err := runMigrations(exec); err != nil {
		return nil, err
	}
	return &SQLStore{exec: exec}, nil
}

func (s *SQLStore) Get(_ context.Context, key string) (string, bool, error) {
	var v string
	err := s.exec.QueryRow("SELECT value FROM client_storage WHERE key = ?", key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLStore) Set(_ context.Context, key, value string) error {
	return s.exec.Exec(
		`INSERT INTO client_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
}

func (s *SQLStore) Delete(_ context.Context, key string) error {
	return s.exec.Exec("DELETE FROM client_storage WHERE key = ?", key)
}

// Keys lists the stored keys in lexical order.
func (s *SQLStore) Keys() ([]string, error) {
	rows, err := s.exec.Query("SELECT key FROM client_storage ORDER BY key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
