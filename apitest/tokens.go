package apitest

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// issueTokens signs an HS256 access token and stores an opaque refresh token.
func (s *Server) issueTokens(u user) (access, refresh string, err error) {
	now := s.now()
	claims := accessClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", "", err
	}
	refresh = uuid.NewString()
	if err := s.exec.Exec(
		"INSERT INTO refresh_tokens (token, user_id, created_at) VALUES (?, ?, ?)",
		refresh, u.ID, now.Unix(),
	); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseAccess verifies an access token issued by this server and returns
// its subject.
func (s *Server) ParseAccess(token string) (string, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
