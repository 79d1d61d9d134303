package apitest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
)

// issueCode replaces the pending code of email and mails the new one.
func (s *Server) issueCode(ctx context.Context, email string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.exec.Exec(
		`INSERT INTO otp_codes (email, code, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at`,
		email, code, s.now().Add(s.cfg.CodeTTL).Unix(),
	); err != nil {
		return err
	}
	return s.cfg.Mailer.SendCode(ctx, email, code)
}

// checkCode reports whether code is the unexpired pending code of email.
func (s *Server) checkCode(email, code string) (bool, error) {
	var want string
	var expires int64
	err := s.exec.QueryRow("SELECT code, expires_at FROM otp_codes WHERE email = ?", email).Scan(&want, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return code != "" && code == want && s.now().Unix() < expires, nil
}

func (s *Server) consumeCode(email string) error {
	return s.exec.Exec("DELETE FROM otp_codes WHERE email = ?", email)
}
