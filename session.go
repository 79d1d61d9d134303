package authflow

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session is the typed read/write/clear contract over a Store. The flow
// writes it; the navigation bar and dashboard read it.
type Session struct {
	store Store
	now   func() time.Time
}

func NewSession(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

func (s *Session) Store() Store { return s.store }

// SaveLogin persists the token pair and the display name.
func (s *Session) SaveLogin(ctx context.Context, t Tokens) error {
	if t.Username == "" {
		t.Username = "User"
	}
	if err := s.store.Set(ctx, KeyAccessToken, t.Access); err != nil {
		return err
	}
	if t.Refresh != "" {
		if err := s.store.Set(ctx, KeyRefreshToken, t.Refresh); err != nil {
			return err
		}
	} else if err := s.store.Delete(ctx, KeyRefreshToken); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyUsername, t.Username)
}

// Tokens returns the stored pair; ok is false when no access token is stored.
func (s *Session) Tokens(ctx context.Context) (Tokens, bool, error) {
	access, ok, err := s.store.Get(ctx, KeyAccessToken)
	if err != nil || !ok || access == "" {
		return Tokens{}, false, err
	}
	refresh, _, err := s.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return Tokens{}, false, err
	}
	name, _, err := s.store.Get(ctx, KeyUsername)
	if err != nil {
		return Tokens{}, false, err
	}
	return Tokens{Access: access, Refresh: refresh, Username: name}, true, nil
}

func (s *Session) Username(ctx context.Context) string {
	name, _, _ := s.store.Get(ctx, KeyUsername)
	return name
}

// LoggedIn reports whether a usable access token is stored.
func (s *Session) LoggedIn(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// Logout clears the token pair and display name. Remembered email and
// theme survive.
func (s *Session) Logout(ctx context.Context) error {
	for _, k := range []string{KeyAccessToken, KeyRefreshToken, KeyUsername} {
		if err := s.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) RememberedEmail(ctx context.Context) (string, bool) {
	email, ok, err := s.store.Get(ctx, KeyRememberedEmail)
	if err != nil || email == "" {
		return "", false
	}
	return email, ok
}

func (s *Session) RememberEmail(ctx context.Context, email string) error {
	return s.store.Set(ctx, KeyRememberedEmail, email)
}

func (s *Session) ForgetEmail(ctx context.Context) error {
	return s.store.Delete(ctx, KeyRememberedEmail)
}

// Token returns the stored access token as an OAuth2 bearer token. The
// expiry comes from the JWT exp claim; opaque tokens never expire here.
func (s *Session) Token(ctx context.Context) (*oauth2.Token, error) {
	t, ok, err := s.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotLoggedIn
	}
	tok := &oauth2.Token{
		AccessToken:  t.Access,
		RefreshToken: t.Refresh,
		TokenType:    "Bearer",
		Expiry:       accessExpiry(t.Access),
	}
	if !tok.Expiry.IsZero() && !tok.Expiry.After(s.now()) {
		return nil, ErrSessionExpired
	}
	return tok, nil
}

// Client returns an HTTP client that sends the access token on every
// request, for dashboard API calls.
func (s *Session) Client(ctx context.Context) (*http.Client, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}

// accessExpiry reads exp without verifying the signature; the backend
// remains the authority on validity.
func accessExpiry(access string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
