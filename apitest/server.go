// Package apitest is a small implementation of the auth API that the flow
// talks to. It backs the devapi binary and the client integration tests.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tinywasm/authflow"
)

// Config holds the server settings. Zero values are replaced by defaults in New.
type Config struct {
	Exec      authflow.Executor // required
	JWTSecret []byte            // default: "apitest-secret"
	Issuer    string            // default: "apitest"
	AccessTTL time.Duration     // default: 15m
	CodeTTL   time.Duration     // default: 10m
	Mailer    Mailer            // default: a new Outbox
	Now       func() time.Time  // default: time.Now
}

type Server struct {
	cfg    Config
	exec   authflow.Executor
	router chi.Router
}

var errNoExecutor = errors.New("apitest: Exec is required")

func New(cfg Config) (*Server, error) {
	if cfg.Exec == nil {
		return nil, errNoExecutor
	}
	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = []byte("apitest-secret")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "apitest"
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.Mailer == nil {
		cfg.Mailer = NewOutbox()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := runMigrations(cfg.Exec); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, exec: cfg.Exec}
	r := chi.NewRouter()
	r.Post("/login/", s.login)
	r.Post("/send-signup-otp/", s.sendSignupOTP)
	r.Post("/send-login-otp/", s.sendLoginOTP)
	r.Post("/verify-otp/", s.verifyOTP)
	r.Post("/resend-otp/", s.resendOTP)
	r.Post("/forgot-password/", s.forgotPassword)
	r.Post("/reset-password/", s.resetPassword)
	s.router = r
	return s, nil
}

// Mailer returns the configured mailer, an *Outbox unless one was given.
func (s *Server) Mailer() Mailer { return s.cfg.Mailer }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) now() time.Time { return s.cfg.Now() }

type request struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Code        string `json:"code"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// decode reads the body and rejects requests without an email.
func decode(w http.ResponseWriter, r *http.Request) (request, bool) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		detail(w, http.StatusBadRequest, "Invalid request body.")
		return req, false
	}
	return req, true
}

// lookup loads the user of email, writing 404 or 500 when it cannot.
func (s *Server) lookup(w http.ResponseWriter, email string) (user, bool) {
	u, err := s.userByEmail(email)
	if errors.Is(err, errNoUser) {
		detail(w, http.StatusNotFound, "User not found.")
		return user{}, false
	}
	if err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return user{}, false
	}
	return u, true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	u, ok := s.lookup(w, req.Email)
	if !ok {
		return
	}
	if !checkPassword(u, req.Password) {
		detail(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if !u.Verified {
		detail(w, http.StatusForbidden, authflow.DetailOTPRequired)
		return
	}
	access, refresh, err := s.issueTokens(u)
	if err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	writeJSON(w, http.StatusOK, authflow.LoginResult{
		Access:   access,
		Refresh:  refresh,
		FullName: u.FullName,
		Username: u.Email,
	})
}

func (s *Server) sendSignupOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if req.Password == "" || req.FullName == "" {
		detail(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	u, err := s.userByEmail(req.Email)
	if err == nil && u.Verified {
		detail(w, http.StatusBadRequest, "Email already registered.")
		return
	}
	if err != nil && !errors.Is(err, errNoUser) {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if err := s.savePendingUser(req.Email, req.FullName, req.Password); err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	s.sendCode(w, r, req.Email)
}

func (s *Server) sendLoginOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	u, ok := s.lookup(w, req.Email)
	if !ok {
		return
	}
	if !checkPassword(u, req.Password) {
		detail(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	s.sendCode(w, r, req.Email)
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	valid, err := s.checkCode(req.Email, req.Code)
	if err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if !valid {
		detail(w, http.StatusBadRequest, "Invalid or expired OTP.")
		return
	}
	if err := s.markVerified(req.Email); err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	detail(w, http.StatusOK, "Email verified.")
}

func (s *Server) resendOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if _, ok := s.lookup(w, req.Email); !ok {
		return
	}
	s.sendCode(w, r, req.Email)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if _, ok := s.lookup(w, req.Email); !ok {
		return
	}
	s.sendCode(w, r, req.Email)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if authflow.ValidatePassword(req.NewPassword) != "" {
		detail(w, http.StatusBadRequest, "Password too weak.")
		return
	}
	valid, err := s.checkCode(req.Email, req.OTP)
	if err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if !valid {
		detail(w, http.StatusBadRequest, "Invalid or expired OTP.")
		return
	}
	if err := s.setPassword(req.Email, req.NewPassword); err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if err := s.consumeCode(req.Email); err != nil {
		detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	detail(w, http.StatusOK, "Password updated.")
}

func (s *Server) sendCode(w http.ResponseWriter, r *http.Request, email string) {
	if err := s.issueCode(r.Context(), email); err != nil {
		detail(w, http.StatusInternalServerError, "Could not send code.")
		return
	}
	detail(w, http.StatusOK, "OTP sent to your email.")
}
