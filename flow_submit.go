package authflow

import (
	"context"
	"errors"
)

// SubmitLogin validates the login form and calls the backend. It returns
// nil once the session is stored and the flow has exited to the
// dashboard, and ErrOTPRequired when the account still needs verification
// (the flow is then in PhaseVerifyOTP).
func (f *Flow) SubmitLogin(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseLogin {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.errs.Email = ValidateEmail(f.creds.Email)
	f.errs.Password = ValidatePassword(f.creds.Password)
	if f.creds.Email == "" || f.creds.Password == "" || f.errs.Email != "" || f.errs.Password != "" {
		f.failure = MsgFixFields
		f.mu.Unlock()
		return ErrInvalidInput
	}
	epoch, err := f.begin(PhaseLogin)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	email, password, remember := f.creds.Email, f.creds.Password, f.remember
	f.mu.Unlock()

	res, err := f.cfg.API.Login(ctx, email, password)

	if !f.resume(PhaseLogin, epoch) {
		return ErrStaleResponse
	}
	if err == nil {
		f.mu.Unlock()
		return f.completeLogin(ctx, PhaseLogin, res, "", email, &remember)
	}
	delete(f.loading, PhaseLogin)
	switch {
	case IsOTPRequired(err):
		f.verify = &VerificationContext{Email: email, LastPhase: LastLogin}
		f.code = ""
		f.setPhase(PhaseVerifyOTP)
		f.mu.Unlock()
		f.cfg.Log("authflow: otp required for", email)
		return f.sendLoginOTP(ctx, email, password)
	case IsNotFound(err):
		f.errs.Email = MsgEmailNotRegistered
		f.mu.Unlock()
		return ErrEmailNotRegistered
	case errors.Is(err, ErrRequestFailed):
		f.failure = MsgRequestFailed
		f.mu.Unlock()
		return err
	default:
		f.failure = MsgInvalidCredentials
		f.mu.Unlock()
		return ErrInvalidCredentials
	}
}

// sendLoginOTP asks the backend to mail a code after an OTP_REQUIRED
// login. It returns ErrOTPRequired unless the dispatch failed or went
// stale.
func (f *Flow) sendLoginOTP(ctx context.Context, email, password string) error {
	f.mu.Lock()
	epoch, err := f.begin(PhaseVerifyOTP)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	sendErr := f.cfg.API.SendLoginOTP(ctx, email, password)

	if !f.settle(PhaseVerifyOTP, epoch) {
		return ErrStaleResponse
	}
	defer f.mu.Unlock()
	if sendErr != nil {
		f.failure = MsgResendFailed
		return sendErr
	}
	f.status = MsgOTPSent
	return ErrOTPRequired
}

// completeLogin persists the session and exits the flow. It is called
// without f.mu and with the gate of p still claimed. A nil remember leaves
// the remembered email untouched.
func (f *Flow) completeLogin(ctx context.Context, p Phase, res LoginResult, fallbackName, email string, remember *bool) error {
	err := f.persistLogin(ctx, res, fallbackName, email, remember)

	f.mu.Lock()
	delete(f.loading, p)
	if err != nil {
		f.failure = MsgRequestFailed
		f.mu.Unlock()
		return err
	}
	f.exit()
	dest := f.dest
	f.mu.Unlock()

	f.cfg.Log("authflow: signed in", email)
	f.navigate(dest)
	return nil
}

// persistLogin writes the tokens first and the remembered email last. When
// the email write fails the tokens are removed again.
func (f *Flow) persistLogin(ctx context.Context, res LoginResult, fallbackName, email string, remember *bool) error {
	s := f.cfg.Session
	name := res.DisplayName()
	if name == "" {
		name = fallbackName
	}
	if err := s.SaveLogin(ctx, Tokens{Access: res.Access, Refresh: res.Refresh, Username: name}); err != nil {
		return err
	}
	if remember == nil {
		return nil
	}
	var err error
	if *remember {
		err = s.RememberEmail(ctx, email)
	} else {
		err = s.ForgetEmail(ctx)
	}
	if err != nil {
		if lerr := s.Logout(ctx); lerr != nil {
			return errors.Join(err, lerr)
		}
		return err
	}
	return nil
}

// SubmitSignup validates the signup form and requests a signup OTP.
func (f *Flow) SubmitSignup(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseSignup {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	c := f.creds
	f.errs.Email = ValidateEmail(c.Email)
	f.errs.Password = ValidatePassword(c.Password)
	f.errs.FullName = ValidateFullName(c.FullName)
	f.errs.Confirm = ValidateConfirm(c.Password, c.ConfirmPassword)
	if c.Email == "" || c.Password == "" || c.FullName == "" ||
		f.errs.Email != "" || f.errs.Password != "" || f.errs.FullName != "" {
		f.failure = MsgCompleteForm
		f.mu.Unlock()
		return ErrInvalidInput
	}
	if c.Password != c.ConfirmPassword {
		f.errs.Confirm = MsgPasswordMismatch
		f.failure = MsgPasswordMismatch
		f.mu.Unlock()
		return ErrPasswordMismatch
	}
	epoch, err := f.begin(PhaseSignup)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.status = MsgSigningUp
	f.mu.Unlock()

	err = f.cfg.API.SendSignupOTP(ctx, c.Email, c.Password, c.FullName)

	if !f.settle(PhaseSignup, epoch) {
		return ErrStaleResponse
	}
	defer f.mu.Unlock()
	f.status = ""
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestFailed):
			f.failure = MsgRequestFailed
		case Detail(err) != "":
			f.failure = Detail(err)
		default:
			f.failure = MsgSignupFailed
		}
		return err
	}
	f.verify = &VerificationContext{Email: c.Email, LastPhase: LastSignup}
	f.code = ""
	f.setPhase(PhaseVerifyOTP)
	f.status = MsgCodeSent
	return nil
}

// SubmitOTP verifies the code of the verify_otp phase. After a signup it
// signs the user in with the retained password and exits; after a login
// step-up it returns to the login form.
func (f *Flow) SubmitOTP(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseVerifyOTP || f.verify == nil {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.code == "" {
		f.failure = MsgCodeRequired
		f.mu.Unlock()
		return ErrInvalidInput
	}
	epoch, err := f.begin(PhaseVerifyOTP)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	v := *f.verify
	code, password, fullName := f.code, f.creds.Password, f.creds.FullName
	f.mu.Unlock()

	err = f.cfg.API.VerifyOTP(ctx, v.Email, code)

	if !f.resume(PhaseVerifyOTP, epoch) {
		return ErrStaleResponse
	}
	if err != nil {
		delete(f.loading, PhaseVerifyOTP)
		err = f.otpFailure(err)
		f.mu.Unlock()
		return err
	}
	if v.LastPhase != LastSignup {
		delete(f.loading, PhaseVerifyOTP)
		f.setPhase(PhaseLogin)
		f.verify = nil
		f.code = ""
		f.failure = ""
		f.status = MsgVerified
		f.mu.Unlock()
		return nil
	}

	// The gate stays claimed through the automatic sign-in.
	f.status = MsgVerifiedSigningIn
	f.mu.Unlock()

	res, err := f.cfg.API.Login(ctx, v.Email, password)

	if !f.resume(PhaseVerifyOTP, epoch) {
		return ErrStaleResponse
	}
	if err != nil {
		delete(f.loading, PhaseVerifyOTP)
		f.resetToLogin()
		f.status = MsgVerifiedPleaseLogin
		f.mu.Unlock()
		if errors.Is(err, ErrRequestFailed) {
			return err
		}
		return ErrInvalidCredentials
	}
	f.mu.Unlock()
	return f.completeLogin(ctx, PhaseVerifyOTP, res, fullName, v.Email, nil)
}

// ResendOTP asks for a fresh code while a code is awaited.
func (f *Flow) ResendOTP(ctx context.Context) error {
	f.mu.Lock()
	phase := f.phase
	awaiting := f.verify != nil &&
		(phase == PhaseVerifyOTP || (phase == PhaseResetPassword && !f.verify.OTPVerified))
	if !awaiting {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	epoch, err := f.begin(phase)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	email := f.verify.Email
	f.mu.Unlock()

	err = f.cfg.API.ResendOTP(ctx, email)

	if !f.settle(phase, epoch) {
		return ErrStaleResponse
	}
	defer f.mu.Unlock()
	if err != nil {
		f.failure = MsgResendFailed
		return err
	}
	f.status = MsgCodeResent
	return nil
}

// SubmitForgotPassword requests a reset code for the entered email.
func (f *Flow) SubmitForgotPassword(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseForgotPassword {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.errs.Email = ValidateEmail(f.creds.Email)
	if f.creds.Email == "" || f.errs.Email != "" {
		f.failure = MsgFixFields
		f.mu.Unlock()
		return ErrInvalidInput
	}
	epoch, err := f.begin(PhaseForgotPassword)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	email := f.creds.Email
	f.mu.Unlock()

	err = f.cfg.API.ForgotPassword(ctx, email)

	if !f.settle(PhaseForgotPassword, epoch) {
		return ErrStaleResponse
	}
	defer f.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrRequestFailed) {
			f.failure = MsgRequestFailed
			return err
		}
		f.failure = MsgEmailNotFound
		return ErrEmailNotRegistered
	}
	f.verify = &VerificationContext{Email: email, LastPhase: LastForgot}
	f.code = ""
	f.setPhase(PhaseResetPassword)
	f.status = MsgResetSent
	return nil
}

// SubmitResetCode checks the reset code and, when accepted, reveals the
// new-password fields.
func (f *Flow) SubmitResetCode(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseResetPassword || f.verify == nil || f.verify.OTPVerified {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.code == "" {
		f.failure = MsgCodeRequired
		f.mu.Unlock()
		return ErrInvalidInput
	}
	epoch, err := f.begin(PhaseResetPassword)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	email, code := f.verify.Email, f.code
	f.mu.Unlock()

	err = f.cfg.API.VerifyOTP(ctx, email, code)

	if !f.settle(PhaseResetPassword, epoch) {
		return ErrStaleResponse
	}
	defer f.mu.Unlock()
	if err != nil {
		return f.otpFailure(err)
	}
	f.verify.OTPVerified = true
	f.status = ""
	f.creds.Password = ""
	f.creds.ConfirmPassword = ""
	f.errs.Password = ""
	f.errs.Confirm = ""
	return nil
}

// SubmitNewPassword sends the new password with the verified reset code.
func (f *Flow) SubmitNewPassword(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseResetPassword || f.verify == nil || !f.verify.OTPVerified {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	c := f.creds
	if c.Password != c.ConfirmPassword {
		f.errs.Confirm = MsgPasswordMismatch
		f.failure = MsgPasswordMismatch
		f.mu.Unlock()
		return ErrPasswordMismatch
	}
	f.errs.Password = ValidatePassword(c.Password)
	if f.errs.Password != "" {
		f.failure = MsgFixFields
		f.mu.Unlock()
		return ErrInvalidInput
	}
	epoch, err := f.begin(PhaseResetPassword)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	email, code := f.verify.Email, f.code
	f.mu.Unlock()

	err = f.cfg.API.ResetPassword(ctx, email, code, c.Password)

	if !f.settle(PhaseResetPassword, epoch) {
		return ErrStaleResponse
	}
	defer f.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrRequestFailed) {
			f.failure = MsgRequestFailed
		} else {
			f.failure = MsgResetFailed
		}
		return err
	}
	f.resetToLogin()
	f.errs = FieldErrors{}
	f.failure = ""
	f.status = MsgPasswordUpdated
	return nil
}

// otpFailure maps a rejected code. Called with f.mu held.
func (f *Flow) otpFailure(err error) error {
	if errors.Is(err, ErrRequestFailed) {
		f.failure = MsgRequestFailed
		return err
	}
	f.failure = MsgOTPInvalid
	return ErrOTPInvalid
}
