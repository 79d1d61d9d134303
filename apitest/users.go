package apitest

import (
	"database/sql"
	"errors"

	"github.com/tinywasm/unixid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is lowered by tests to keep bcrypt fast.
var PasswordHashCost = bcrypt.DefaultCost

type user struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Verified     bool
	CreatedAt    int64
}

var errNoUser = errors.New("apitest: user not found")

func (s *Server) userByEmail(email string) (user, error) {
	var u user
	var verified int
	err := s.exec.QueryRow(
		"SELECT id, email, COALESCE(full_name, ''), password_hash, verified, created_at FROM users WHERE email = ?",
		email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user{}, errNoUser
		}
		return user{}, err
	}
	u.Verified = verified == 1
	return u, nil
}

// savePendingUser creates an unverified account, or refreshes the name and
// password of one that never finished verification.
func (s *Server) savePendingUser(email, fullName, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return err
	}
	u, err := unixid.NewUnixID()
	if err != nil {
		return err
	}
	return s.exec.Exec(
		`INSERT INTO users (id, email, full_name, password_hash, verified, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(email) DO UPDATE SET full_name = excluded.full_name, password_hash = excluded.password_hash`,
		u.GetNewID(), email, fullName, string(hash), s.now().Unix(),
	)
}

func (s *Server) markVerified(email string) error {
	return s.exec.Exec("UPDATE users SET verified = 1 WHERE email = ?", email)
}

func (s *Server) setPassword(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return err
	}
	return s.exec.Exec("UPDATE users SET password_hash = ?, verified = 1 WHERE email = ?", string(hash), email)
}

func checkPassword(u user, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
