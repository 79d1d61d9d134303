package authflow

// View is an immutable snapshot of the flow for the per-phase renderers.
type View struct {
	Phase        Phase
	Credentials  Credentials
	Code         string
	Errors       FieldErrors
	Status       string // success or progress notice
	Error        string // form-level failure notice
	Loading      bool   // the active phase has a request in flight
	RememberMe   bool
	Verification VerificationContext
	// HasVerification is false outside the OTP phases.
	HasVerification bool
	CanSubmit       bool
	Destination     string // set once the flow exited to the dashboard
}

// View returns the current snapshot.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Phase:       f.phase,
		Credentials: f.creds,
		Code:        f.code,
		Errors:      f.errs,
		Status:      f.status,
		Error:       f.failure,
		Loading:     f.loading[f.phase],
		RememberMe:  f.remember,
		Destination: f.dest,
	}
	if f.verify != nil {
		v.Verification = *f.verify
		v.HasVerification = true
	}
	v.CanSubmit = !v.Loading && canSubmit(v)
	return v
}

// canSubmit is the AND of the relevant fields being filled and valid.
func canSubmit(v View) bool {
	c, e := v.Credentials, v.Errors
	switch v.Phase {
	case PhaseLogin:
		return c.Email != "" && c.Password != "" && e.Email == "" && e.Password == ""
	case PhaseSignup:
		return c.Email != "" && c.Password != "" && c.FullName != "" && c.ConfirmPassword != "" &&
			e.Empty() && c.Password == c.ConfirmPassword
	case PhaseVerifyOTP:
		return v.Code != ""
	case PhaseForgotPassword:
		return c.Email != "" && e.Email == ""
	case PhaseResetPassword:
		if !v.Verification.OTPVerified {
			return v.Code != ""
		}
		return c.Password != "" && e.Password == "" && c.Password == c.ConfirmPassword
	}
	return false
}
