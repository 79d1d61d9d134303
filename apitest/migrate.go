package apitest

import "github.com/tinywasm/authflow"

func runMigrations(exec authflow.Executor) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			full_name TEXT,
			password_hash TEXT NOT NULL,
			verified INTEGER DEFAULT 0,
			created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS otp_codes (
			email TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			expires_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at INTEGER,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for _, q := range queries {
		if err := exec.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
