package authflow

import (
	"context"
	"sync"
)

// Flow drives the authentication phases for one browser session. It is
// safe for concurrent use; network calls, storage writes and Config.Log
// run without holding its lock.
type Flow struct {
	mu sync.Mutex

	cfg      Config
	phase    Phase
	creds    Credentials
	errs     FieldErrors
	code     string
	remember bool
	verify   *VerificationContext
	status   string
	failure  string
	loading  map[Phase]bool
	epoch    uint64
	dest     string
}

// New returns a flow in the login phase. The email field is pre-filled
// from the remembered email, if any.
func New(ctx context.Context, cfg Config) (*Flow, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	f := &Flow{
		cfg:     cfg,
		phase:   PhaseLogin,
		loading: make(map[Phase]bool),
	}
	if email, ok := cfg.Session.RememberedEmail(ctx); ok {
		f.creds.Email = email
		f.remember = true
	}
	return f, nil
}

func (f *Flow) Session() *Session { return f.cfg.Session }

func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// SetField stores one keystroke's worth of input and revalidates it.
func (f *Flow) SetField(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldEmail:
		f.creds.Email = value
		f.errs.Email = ValidateEmail(value)
	case FieldPassword:
		f.creds.Password = value
		f.errs.Password = ValidatePassword(value)
		f.errs.Confirm = ValidateConfirm(value, f.creds.ConfirmPassword)
	case FieldFullName:
		f.creds.FullName = value
		f.errs.FullName = ValidateFullName(value)
	case FieldConfirmPassword:
		f.creds.ConfirmPassword = value
		f.errs.Confirm = ValidateConfirm(f.creds.Password, value)
	case FieldCode:
		f.code = value
	default:
		return
	}
	f.failure = ""
	f.status = ""
}

func (f *Flow) SetRememberMe(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remember = on
}

// ShowSignup switches login to signup.
func (f *Flow) ShowSignup() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseLogin {
		return ErrInvalidTransition
	}
	f.errs = FieldErrors{}
	f.clearNotices()
	f.setPhase(PhaseSignup)
	return nil
}

// ShowForgotPassword switches login to the forgot-password form.
func (f *Flow) ShowForgotPassword() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseLogin {
		return ErrInvalidTransition
	}
	f.clearNotices()
	f.setPhase(PhaseForgotPassword)
	return nil
}

// ShowLogin returns to login from any phase, dropping the verification
// context and every secret. The email is kept.
func (f *Flow) ShowLogin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetToLogin()
	f.errs = FieldErrors{Email: f.errs.Email}
	f.clearNotices()
}

// Submit runs the submit action of the current phase.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	phase := f.phase
	otpVerified := f.verify != nil && f.verify.OTPVerified
	f.mu.Unlock()

	switch phase {
	case PhaseLogin:
		return f.SubmitLogin(ctx)
	case PhaseSignup:
		return f.SubmitSignup(ctx)
	case PhaseVerifyOTP:
		return f.SubmitOTP(ctx)
	case PhaseForgotPassword:
		return f.SubmitForgotPassword(ctx)
	case PhaseResetPassword:
		if otpVerified {
			return f.SubmitNewPassword(ctx)
		}
		return f.SubmitResetCode(ctx)
	}
	return ErrInvalidTransition
}

// setPhase must be called with f.mu held. Every phase change supersedes
// the responses still in flight.
func (f *Flow) setPhase(p Phase) {
	if f.phase == p {
		return
	}
	f.phase = p
	f.epoch++
}

func (f *Flow) resetToLogin() {
	f.setPhase(PhaseLogin)
	f.verify = nil
	f.code = ""
	f.creds.Password = ""
	f.creds.ConfirmPassword = ""
	f.creds.FullName = ""
}

func (f *Flow) clearNotices() {
	f.status = ""
	f.failure = ""
}

// begin claims the loading gate of phase p, returning the epoch the
// response must still match.
func (f *Flow) begin(p Phase) (uint64, error) {
	if f.phase != p {
		return 0, ErrInvalidTransition
	}
	if f.loading[p] {
		return 0, ErrBusy
	}
	f.loading[p] = true
	f.failure = ""
	return f.epoch, nil
}

// resume reacquires f.mu after a network call. When the response went
// stale it releases the gate of p, unlocks and returns false.
func (f *Flow) resume(p Phase, epoch uint64) bool {
	f.mu.Lock()
	if epoch == f.epoch {
		return true
	}
	delete(f.loading, p)
	f.mu.Unlock()
	f.cfg.Log("authflow: dropped stale", p.String(), "response")
	return false
}

// settle is resume plus the release of the gate of p.
func (f *Flow) settle(p Phase, epoch uint64) bool {
	if !f.resume(p, epoch) {
		return false
	}
	delete(f.loading, p)
	return true
}

// exit leaves the flow on a clean login phase with the dashboard as
// destination.
func (f *Flow) exit() {
	f.setPhase(PhaseLogin)
	f.dest = f.cfg.DashboardPath
	f.creds = Credentials{}
	f.errs = FieldErrors{}
	f.code = ""
	f.verify = nil
	f.epoch++
}

func (f *Flow) navigate(dest string) {
	if dest != "" && f.cfg.Navigate != nil {
		f.cfg.Navigate(dest)
	}
}
