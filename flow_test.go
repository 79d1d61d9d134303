package authflow

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// stubAPI records calls and answers with the configured funcs; a nil func
// succeeds.
type stubAPI struct {
	mu    sync.Mutex
	calls map[string]int
	last  map[string][]string

	login         func(email, password string) (LoginResult, error)
	sendSignupOTP func(email, password, fullName string) error
	sendLoginOTP  func(email, password string) error
	verifyOTP     func(email, code string) error
	resendOTP     func(email string) error
	forgot        func(email string) error
	reset         func(email, otp, newPassword string) error
}

func newStubAPI() *stubAPI {
	return &stubAPI{calls: map[string]int{}, last: map[string][]string{}}
}

func (s *stubAPI) record(name string, args ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	s.last[name] = args
}

func (s *stubAPI) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubAPI) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *stubAPI) args(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[name]
}

func (s *stubAPI) Login(_ context.Context, email, password string) (LoginResult, error) {
	s.record("login", email, password)
	if s.login != nil {
		return s.login(email, password)
	}
	return LoginResult{Access: "access", Refresh: "refresh", FullName: "Ada Lovelace"}, nil
}

func (s *stubAPI) SendSignupOTP(_ context.Context, email, password, fullName string) error {
	s.record("send-signup-otp", email, password, fullName)
	if s.sendSignupOTP != nil {
		return s.sendSignupOTP(email, password, fullName)
	}
	return nil
}

func (s *stubAPI) SendLoginOTP(_ context.Context, email, password string) error {
	s.record("send-login-otp", email, password)
	if s.sendLoginOTP != nil {
		return s.sendLoginOTP(email, password)
	}
	return nil
}

func (s *stubAPI) VerifyOTP(_ context.Context, email, code string) error {
	s.record("verify-otp", email, code)
	if s.verifyOTP != nil {
		return s.verifyOTP(email, code)
	}
	return nil
}

func (s *stubAPI) ResendOTP(_ context.Context, email string) error {
	s.record("resend-otp", email)
	if s.resendOTP != nil {
		return s.resendOTP(email)
	}
	return nil
}

func (s *stubAPI) ForgotPassword(_ context.Context, email string) error {
	s.record("forgot-password", email)
	if s.forgot != nil {
		return s.forgot(email)
	}
	return nil
}

func (s *stubAPI) ResetPassword(_ context.Context, email, otp, newPassword string) error {
	s.record("reset-password", email, otp, newPassword)
	if s.reset != nil {
		return s.reset(email, otp, newPassword)
	}
	return nil
}

const (
	testEmail    = "ada@example.com"
	testPassword = "Abcdef1!"
	testName     = "Ada Lovelace"
)

type harness struct {
	flow     *Flow
	api      *stubAPI
	session  *Session
	visited  []string
	visitsMu sync.Mutex
}

func newHarness(t *testing.T, api *stubAPI) *harness {
	t.Helper()
	h := &harness{api: api, session: NewSession(NewMemoryStore())}
	f, err := New(context.Background(), Config{
		API:     api,
		Session: h.session,
		Navigate: func(dest string) {
			h.visitsMu.Lock()
			h.visited = append(h.visited, dest)
			h.visitsMu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.flow = f
	return h
}

func (h *harness) fillLogin() {
	h.flow.SetField(FieldEmail, testEmail)
	h.flow.SetField(FieldPassword, testPassword)
}

func (h *harness) fillSignup() {
	h.flow.SetField(FieldFullName, testName)
	h.flow.SetField(FieldEmail, testEmail)
	h.flow.SetField(FieldPassword, testPassword)
	h.flow.SetField(FieldConfirmPassword, testPassword)
}

func (h *harness) navigations() []string {
	h.visitsMu.Lock()
	defer h.visitsMu.Unlock()
	return append([]string(nil), h.visited...)
}

func TestNewRequiresAPI(t *testing.T) {
	if _, err := New(context.Background(), Config{}); !errors.Is(err, ErrMissingAPI) {
		t.Errorf("expected ErrMissingAPI, got %v", err)
	}
}

func TestNewPrefillsRememberedEmail(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewMemoryStore())
	if err := s.RememberEmail(ctx, testEmail); err != nil {
		t.Fatalf("RememberEmail failed: %v", err)
	}
	f, err := New(ctx, Config{API: newStubAPI(), Session: s})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	v := f.View()
	if v.Phase != PhaseLogin {
		t.Errorf("expected phase login, got %s", v.Phase)
	}
	if v.Credentials.Email != testEmail || !v.RememberMe {
		t.Errorf("expected remembered email pre-filled, got %+v", v)
	}
}

func TestSetFieldValidatesOnEveryKeystroke(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.SetField(FieldEmail, "ada")
	if v := h.flow.View(); v.Errors.Email != MsgEmailInvalid {
		t.Errorf("expected email error, got %q", v.Errors.Email)
	}
	h.flow.SetField(FieldEmail, testEmail)
	if v := h.flow.View(); v.Errors.Email != "" {
		t.Errorf("expected no email error, got %q", v.Errors.Email)
	}

	h.flow.SetField(FieldConfirmPassword, "Abcdef1?")
	h.flow.SetField(FieldPassword, testPassword)
	if v := h.flow.View(); v.Errors.Confirm != MsgPasswordMismatch {
		t.Errorf("expected confirm recomputed on password change, got %q", v.Errors.Confirm)
	}
	h.flow.SetField(FieldConfirmPassword, testPassword)
	if v := h.flow.View(); v.Errors.Confirm != "" {
		t.Errorf("expected confirm cleared, got %q", v.Errors.Confirm)
	}
}

func TestSubmitLoginEmptyPasswordNoNetwork(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.SetField(FieldEmail, testEmail)

	err := h.flow.SubmitLogin(context.Background())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if n := h.api.total(); n != 0 {
		t.Errorf("expected no network call, got %d", n)
	}
	v := h.flow.View()
	if v.Error != MsgFixFields || v.Errors.Password != MsgPasswordRequired {
		t.Errorf("expected inline errors, got %+v", v)
	}
	if v.CanSubmit {
		t.Errorf("CanSubmit should be false")
	}
}

func TestSubmitLoginSuccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newStubAPI())
	h.fillLogin()
	h.flow.SetRememberMe(true)

	if v := h.flow.View(); !v.CanSubmit {
		t.Fatalf("expected CanSubmit, got %+v", v)
	}
	if err := h.flow.SubmitLogin(ctx); err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}

	tok, ok, err := h.session.Tokens(ctx)
	if err != nil || !ok {
		t.Fatalf("expected stored tokens, ok=%v err=%v", ok, err)
	}
	if tok.Access != "access" || tok.Refresh != "refresh" || tok.Username != testName {
		t.Errorf("unexpected tokens %+v", tok)
	}
	if email, ok := h.session.RememberedEmail(ctx); !ok || email != testEmail {
		t.Errorf("expected remembered email, got %q %v", email, ok)
	}
	if nav := h.navigations(); len(nav) != 1 || nav[0] != defaultDashboardPath {
		t.Errorf("expected navigation to dashboard, got %v", nav)
	}
	v := h.flow.View()
	if v.Destination != defaultDashboardPath {
		t.Errorf("expected destination, got %q", v.Destination)
	}
	if v.Credentials.Password != "" {
		t.Errorf("secrets should be discarded on exit")
	}
}

func TestSubmitLoginForgetsEmailWithoutRememberMe(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newStubAPI())
	h.session.RememberEmail(ctx, "old@example.com")
	h.fillLogin()
	h.flow.SetRememberMe(false)

	if err := h.flow.SubmitLogin(ctx); err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}
	if _, ok := h.session.RememberedEmail(ctx); ok {
		t.Errorf("remembered email should be cleared")
	}
}

func TestSubmitLoginUsernameFallback(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	api.login = func(string, string) (LoginResult, error) {
		return LoginResult{Access: "a", Refresh: "r"}, nil
	}
	h := newHarness(t, api)
	h.fillLogin()
	if err := h.flow.SubmitLogin(ctx); err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}
	if name := h.session.Username(ctx); name != "User" {
		t.Errorf("expected default username, got %q", name)
	}
}

func TestSubmitLoginUnregisteredEmail(t *testing.T) {
	api := newStubAPI()
	api.login = func(string, string) (LoginResult, error) {
		return LoginResult{}, &APIError{Status: http.StatusNotFound, Detail: "User not found."}
	}
	h := newHarness(t, api)
	h.fillLogin()

	err := h.flow.SubmitLogin(context.Background())
	if !errors.Is(err, ErrEmailNotRegistered) {
		t.Fatalf("expected ErrEmailNotRegistered, got %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseLogin {
		t.Errorf("expected phase login, got %s", v.Phase)
	}
	if v.Errors.Email != MsgEmailNotRegistered {
		t.Errorf("expected email field error, got %q", v.Errors.Email)
	}
}

func TestSubmitLoginOTPRequired(t *testing.T) {
	api := newStubAPI()
	api.login = func(string, string) (LoginResult, error) {
		return LoginResult{}, &APIError{Status: http.StatusForbidden, Detail: DetailOTPRequired}
	}
	h := newHarness(t, api)
	h.fillLogin()

	err := h.flow.SubmitLogin(context.Background())
	if !errors.Is(err, ErrOTPRequired) {
		t.Fatalf("expected ErrOTPRequired, got %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseVerifyOTP {
		t.Fatalf("expected verify_otp, got %s", v.Phase)
	}
	if !v.HasVerification || v.Verification.Email != testEmail || v.Verification.LastPhase != LastLogin {
		t.Errorf("unexpected verification context %+v", v.Verification)
	}
	if api.count("send-login-otp") != 1 {
		t.Errorf("expected send-login-otp call")
	}
	if v.Status != MsgOTPSent {
		t.Errorf("expected status %q, got %q", MsgOTPSent, v.Status)
	}
	if len(h.navigations()) != 0 {
		t.Errorf("no navigation expected")
	}
}

func TestSubmitLoginRejections(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		want    error
		message string
	}{
		{"wrong password", &APIError{Status: http.StatusUnauthorized, Detail: "Invalid credentials."}, ErrInvalidCredentials, MsgInvalidCredentials},
		{"server error", &APIError{Status: http.StatusInternalServerError}, ErrInvalidCredentials, MsgInvalidCredentials},
		{"transport", errors.Join(ErrRequestFailed, errors.New("dial tcp")), ErrRequestFailed, MsgRequestFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			api := newStubAPI()
			api.login = func(string, string) (LoginResult, error) { return LoginResult{}, c.err }
			h := newHarness(t, api)
			h.fillLogin()

			err := h.flow.SubmitLogin(context.Background())
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			v := h.flow.View()
			if v.Phase != PhaseLogin || v.Error != c.message {
				t.Errorf("expected login with %q, got %s %q", c.message, v.Phase, v.Error)
			}
			if v.Loading {
				t.Errorf("loading gate should be released")
			}
		})
	}
}

func TestSignupVerifyExitsToDashboard(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	api.login = func(string, string) (LoginResult, error) {
		return LoginResult{Access: "a", Refresh: "r"}, nil
	}
	h := newHarness(t, api)
	if err := h.flow.ShowSignup(); err != nil {
		t.Fatalf("ShowSignup failed: %v", err)
	}
	h.fillSignup()

	if err := h.flow.SubmitSignup(ctx); err != nil {
		t.Fatalf("SubmitSignup failed: %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseVerifyOTP || v.Verification.Email != testEmail || v.Verification.LastPhase != LastSignup {
		t.Fatalf("expected verify_otp for signup, got %+v", v)
	}
	if got := api.args("send-signup-otp"); len(got) != 3 || got[2] != testName {
		t.Errorf("unexpected signup args %v", got)
	}

	h.flow.SetField(FieldCode, "123456")
	if err := h.flow.Submit(ctx); err != nil {
		t.Fatalf("SubmitOTP failed: %v", err)
	}
	if got := api.args("login"); len(got) != 2 || got[1] != testPassword {
		t.Errorf("expected auto-login with retained password, got %v", got)
	}
	v = h.flow.View()
	if v.Destination != defaultDashboardPath {
		t.Errorf("expected dashboard exit, got %+v", v)
	}
	if v.Phase != PhaseLogin || v.HasVerification {
		t.Errorf("expected a clean login phase after exit, got %+v", v)
	}
	if v.Phase == PhaseVerifyOTP && v.Verification.Email == "" {
		t.Errorf("verify_otp without a verification email")
	}
	if v.Phase == PhaseLogin && v.Status == MsgVerified {
		t.Errorf("signup verification must not return to login")
	}
	if name := h.session.Username(ctx); name != testName {
		t.Errorf("expected full name as username, got %q", name)
	}
	if !h.session.LoggedIn(ctx) {
		t.Errorf("expected logged in")
	}
}

func TestSignupAutoLoginFailure(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	api.login = func(string, string) (LoginResult, error) {
		return LoginResult{}, &APIError{Status: http.StatusUnauthorized}
	}
	h := newHarness(t, api)
	h.flow.ShowSignup()
	h.fillSignup()
	h.flow.SubmitSignup(ctx)
	h.flow.SetField(FieldCode, "123456")

	if err := h.flow.SubmitOTP(ctx); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseLogin || v.Status != MsgVerifiedPleaseLogin || v.HasVerification {
		t.Errorf("expected login with verified notice, got %+v", v)
	}
	if v.Credentials.Email != testEmail || v.Credentials.Password != "" {
		t.Errorf("expected email kept and password cleared, got %+v", v.Credentials)
	}
}

func TestSubmitSignupInvalidNoNetwork(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.ShowSignup()
	h.flow.SetField(FieldFullName, testName)
	h.flow.SetField(FieldEmail, testEmail)
	h.flow.SetField(FieldPassword, testPassword)
	h.flow.SetField(FieldConfirmPassword, "Abcdef1?")

	if err := h.flow.SubmitSignup(context.Background()); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	h.flow.SetField(FieldFullName, "A1")
	if err := h.flow.SubmitSignup(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if v := h.flow.View(); v.Error != MsgCompleteForm {
		t.Errorf("expected %q, got %q", MsgCompleteForm, v.Error)
	}
	if n := h.api.total(); n != 0 {
		t.Errorf("expected no network call, got %d", n)
	}
}

func TestSubmitSignupBackendDetail(t *testing.T) {
	api := newStubAPI()
	api.sendSignupOTP = func(string, string, string) error {
		return &APIError{Status: http.StatusBadRequest, Detail: "Email already registered."}
	}
	h := newHarness(t, api)
	h.flow.ShowSignup()
	h.fillSignup()

	if err := h.flow.SubmitSignup(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	v := h.flow.View()
	if v.Phase != PhaseSignup || v.Error != "Email already registered." {
		t.Errorf("expected signup with backend detail, got %s %q", v.Phase, v.Error)
	}
}

func TestOTPRejectedKeepsPhase(t *testing.T) {
	api := newStubAPI()
	api.verifyOTP = func(string, string) error {
		return &APIError{Status: http.StatusBadRequest, Detail: "Invalid or expired OTP."}
	}
	h := newHarness(t, api)
	h.flow.ShowSignup()
	h.fillSignup()
	h.flow.SubmitSignup(context.Background())

	h.flow.SetField(FieldCode, "000000")
	if err := h.flow.SubmitOTP(context.Background()); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseVerifyOTP || v.Error != MsgOTPInvalid || v.Verification.Email != testEmail {
		t.Errorf("expected verify_otp with error, got %+v", v)
	}
}

func TestSubmitOTPEmptyCode(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.ShowSignup()
	h.fillSignup()
	h.flow.SubmitSignup(context.Background())
	before := h.api.total()

	if err := h.flow.SubmitOTP(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if h.api.total() != before {
		t.Errorf("expected no network call")
	}
}

func TestLoginOTPVerifiedReturnsToLogin(t *testing.T) {
	api := newStubAPI()
	api.login = func(string, string) (LoginResult, error) {
		return LoginResult{}, &APIError{Status: http.StatusForbidden, Detail: DetailOTPRequired}
	}
	h := newHarness(t, api)
	h.fillLogin()
	h.flow.SubmitLogin(context.Background())

	h.flow.SetField(FieldCode, "123456")
	if err := h.flow.SubmitOTP(context.Background()); err != nil {
		t.Fatalf("SubmitOTP failed: %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseLogin || v.Status != MsgVerified || v.HasVerification || v.Code != "" {
		t.Errorf("expected login with verified status, got %+v", v)
	}
	if v.Credentials.Email != testEmail {
		t.Errorf("expected email kept, got %q", v.Credentials.Email)
	}
}

func TestResendOTP(t *testing.T) {
	api := newStubAPI()
	h := newHarness(t, api)
	if err := h.flow.ResendOTP(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from login, got %v", err)
	}

	h.flow.ShowSignup()
	h.fillSignup()
	h.flow.SubmitSignup(context.Background())
	if err := h.flow.ResendOTP(context.Background()); err != nil {
		t.Fatalf("ResendOTP failed: %v", err)
	}
	if v := h.flow.View(); v.Status != MsgCodeResent {
		t.Errorf("expected %q, got %q", MsgCodeResent, v.Status)
	}
	if got := api.args("resend-otp"); len(got) != 1 || got[0] != testEmail {
		t.Errorf("unexpected resend args %v", got)
	}

	api.resendOTP = func(string) error { return &APIError{Status: http.StatusTooManyRequests} }
	if err := h.flow.ResendOTP(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if v := h.flow.View(); v.Error != MsgResendFailed {
		t.Errorf("expected %q, got %q", MsgResendFailed, v.Error)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	h := newHarness(t, api)
	if err := h.flow.ShowForgotPassword(); err != nil {
		t.Fatalf("ShowForgotPassword failed: %v", err)
	}
	h.flow.SetField(FieldEmail, testEmail)

	if err := h.flow.Submit(ctx); err != nil {
		t.Fatalf("SubmitForgotPassword failed: %v", err)
	}
	v := h.flow.View()
	if v.Phase != PhaseResetPassword || v.Verification.OTPVerified || v.Verification.Email != testEmail ||
		v.Verification.LastPhase != LastForgot {
		t.Fatalf("expected reset_password awaiting code, got %+v", v)
	}
	if v.Status != MsgResetSent {
		t.Errorf("expected %q, got %q", MsgResetSent, v.Status)
	}

	h.flow.SetField(FieldCode, "654321")
	if err := h.flow.Submit(ctx); err != nil {
		t.Fatalf("SubmitResetCode failed: %v", err)
	}
	if v := h.flow.View(); !v.Verification.OTPVerified {
		t.Fatalf("expected OTPVerified")
	}
	if err := h.flow.ResendOTP(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("resend after verification should be refused, got %v", err)
	}

	h.flow.SetField(FieldPassword, "Newpass1!")
	h.flow.SetField(FieldConfirmPassword, "Newpass1?")
	before := api.total()
	if err := h.flow.Submit(ctx); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if api.total() != before {
		t.Errorf("mismatch must not reach the network")
	}
	if v := h.flow.View(); v.Errors.Confirm != MsgPasswordMismatch {
		t.Errorf("expected inline mismatch, got %q", v.Errors.Confirm)
	}

	h.flow.SetField(FieldConfirmPassword, "Newpass1!")
	if err := h.flow.Submit(ctx); err != nil {
		t.Fatalf("SubmitNewPassword failed: %v", err)
	}
	if got := api.args("reset-password"); len(got) != 3 || got[1] != "654321" || got[2] != "Newpass1!" {
		t.Errorf("unexpected reset args %v", got)
	}
	v = h.flow.View()
	if v.Phase != PhaseLogin || v.Status != MsgPasswordUpdated || v.HasVerification {
		t.Errorf("expected login with updated status, got %+v", v)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	api := newStubAPI()
	api.forgot = func(string) error { return &APIError{Status: http.StatusNotFound} }
	h := newHarness(t, api)
	h.flow.ShowForgotPassword()
	h.flow.SetField(FieldEmail, testEmail)

	if err := h.flow.SubmitForgotPassword(context.Background()); !errors.Is(err, ErrEmailNotRegistered) {
		t.Fatalf("expected ErrEmailNotRegistered, got %v", err)
	}
	if v := h.flow.View(); v.Phase != PhaseForgotPassword || v.Error != MsgEmailNotFound {
		t.Errorf("expected forgot_password with %q, got %s %q", MsgEmailNotFound, v.Phase, v.Error)
	}
}

func TestShowLoginClearsSecrets(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.ShowSignup()
	h.fillSignup()
	h.flow.SubmitSignup(context.Background())
	h.flow.SetField(FieldCode, "123")

	h.flow.ShowLogin()
	v := h.flow.View()
	if v.Phase != PhaseLogin || v.HasVerification || v.Code != "" {
		t.Errorf("expected clean login, got %+v", v)
	}
	c := v.Credentials
	if c.Email != testEmail || c.Password != "" || c.ConfirmPassword != "" || c.FullName != "" {
		t.Errorf("expected only email kept, got %+v", c)
	}
}

func TestInvalidTransitions(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.ShowSignup()
	if err := h.flow.ShowForgotPassword(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("forgot from signup: expected ErrInvalidTransition, got %v", err)
	}
	if err := h.flow.SubmitLogin(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("login from signup: expected ErrInvalidTransition, got %v", err)
	}
	if err := h.flow.SubmitOTP(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("otp from signup: expected ErrInvalidTransition, got %v", err)
	}
	if err := h.flow.SubmitNewPassword(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("new password from signup: expected ErrInvalidTransition, got %v", err)
	}
}

// blockingLogin makes Login wait for release after signalling entered.
func blockingLogin(api *stubAPI) (entered chan struct{}, release chan struct{}) {
	entered = make(chan struct{}, 1)
	release = make(chan struct{})
	api.login = func(string, string) (LoginResult, error) {
		entered <- struct{}{}
		<-release
		return LoginResult{Access: "a", Refresh: "r", FullName: testName}, nil
	}
	return entered, release
}

func TestDuplicateSubmitIsBusy(t *testing.T) {
	api := newStubAPI()
	entered, release := blockingLogin(api)
	h := newHarness(t, api)
	h.fillLogin()

	done := make(chan error, 1)
	go func() { done <- h.flow.SubmitLogin(context.Background()) }()
	<-entered

	if v := h.flow.View(); !v.Loading || v.CanSubmit {
		t.Errorf("expected loading view, got %+v", v)
	}
	if err := h.flow.SubmitLogin(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first SubmitLogin failed: %v", err)
	}
	if n := api.count("login"); n != 1 {
		t.Errorf("expected one login call, got %d", n)
	}
}

func TestStaleResponseDropped(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	entered, release := blockingLogin(api)
	var logged []any
	var logMu sync.Mutex
	s := NewSession(NewMemoryStore())
	f, err := New(ctx, Config{API: api, Session: s, Log: func(v ...any) {
		logMu.Lock()
		logged = append(logged, v...)
		logMu.Unlock()
	}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.SetField(FieldEmail, testEmail)
	f.SetField(FieldPassword, testPassword)

	done := make(chan error, 1)
	go func() { done <- f.SubmitLogin(ctx) }()
	<-entered

	if err := f.ShowSignup(); err != nil {
		t.Fatalf("ShowSignup failed: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	if s.LoggedIn(ctx) {
		t.Errorf("stale response must not persist tokens")
	}
	v := f.View()
	if v.Phase != PhaseSignup || v.Destination != "" {
		t.Errorf("stale response must not change the flow, got %+v", v)
	}
	logMu.Lock()
	defer logMu.Unlock()
	if len(logged) == 0 {
		t.Errorf("expected dropped response to be logged")
	}
}

func TestCanSubmitPerPhase(t *testing.T) {
	h := newHarness(t, newStubAPI())
	if h.flow.View().CanSubmit {
		t.Errorf("empty login should not be submittable")
	}
	h.flow.ShowSignup()
	h.flow.SetField(FieldFullName, testName)
	h.flow.SetField(FieldEmail, testEmail)
	h.flow.SetField(FieldPassword, testPassword)
	if h.flow.View().CanSubmit {
		t.Errorf("signup without confirm should not be submittable")
	}
	h.flow.SetField(FieldConfirmPassword, testPassword)
	if !h.flow.View().CanSubmit {
		t.Errorf("complete signup should be submittable")
	}
	h.flow.SubmitSignup(context.Background())
	if h.flow.View().CanSubmit {
		t.Errorf("verify without code should not be submittable")
	}
	h.flow.SetField(FieldCode, "123456")
	if !h.flow.View().CanSubmit {
		t.Errorf("verify with code should be submittable")
	}
}

func TestForgotPasswordInvalidEmailNoNetwork(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.ShowForgotPassword()
	h.flow.SetField(FieldEmail, "ada")

	if err := h.flow.SubmitForgotPassword(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	v := h.flow.View()
	if v.Errors.Email != MsgEmailInvalid || v.Error != MsgFixFields {
		t.Errorf("expected inline and form notices, got %q %q", v.Errors.Email, v.Error)
	}
	if n := h.api.total(); n != 0 {
		t.Errorf("expected no network call, got %d", n)
	}
}

// hookStore runs onSet before every write and fails writes of failKey.
type hookStore struct {
	Store
	onSet   func()
	failKey string
}

var errStoreDown = errors.New("store down")

func (s *hookStore) Set(ctx context.Context, key, value string) error {
	if s.onSet != nil {
		s.onSet()
	}
	if key == s.failKey {
		return errStoreDown
	}
	return s.Store.Set(ctx, key, value)
}

func TestStorageAndLogRunOutsideLock(t *testing.T) {
	ctx := context.Background()
	var f *Flow
	var views int
	store := &hookStore{Store: NewMemoryStore(), onSet: func() {
		f.View()
		views++
	}}
	f, err := New(ctx, Config{
		API:     newStubAPI(),
		Session: NewSession(store),
		Log:     func(...any) { f.View() },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.SetField(FieldEmail, testEmail)
	f.SetField(FieldPassword, testPassword)
	f.SetRememberMe(true)

	done := make(chan error, 1)
	go func() { done <- f.SubmitLogin(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SubmitLogin failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SubmitLogin deadlocked")
	}
	if views == 0 {
		t.Errorf("expected storage writes")
	}
	if !f.Session().LoggedIn(ctx) {
		t.Errorf("expected logged in")
	}
}

func TestRememberEmailFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := &hookStore{Store: NewMemoryStore(), failKey: KeyRememberedEmail}
	var visited []string
	f, err := New(ctx, Config{
		API:      newStubAPI(),
		Session:  NewSession(store),
		Navigate: func(d string) { visited = append(visited, d) },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.SetField(FieldEmail, testEmail)
	f.SetField(FieldPassword, testPassword)
	f.SetRememberMe(true)

	if err := f.SubmitLogin(ctx); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if f.Session().LoggedIn(ctx) {
		t.Errorf("tokens must be removed when the login cannot be completed")
	}
	if _, ok, _ := store.Get(ctx, KeyUsername); ok {
		t.Errorf("username must be removed too")
	}
	v := f.View()
	if v.Phase != PhaseLogin || v.Error != MsgRequestFailed || v.Destination != "" || v.Loading {
		t.Errorf("expected login with failure notice, got %+v", v)
	}
	if len(visited) != 0 {
		t.Errorf("no navigation expected, got %v", visited)
	}
}
