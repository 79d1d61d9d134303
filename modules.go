package authflow

import (
	_ "github.com/tinywasm/fmt/dictionary"
	"github.com/tinywasm/form"
	"github.com/tinywasm/form/input"
)

var (
	LoginModule  *loginModule
	SignupModule *signupModule
	VerifyModule *verifyModule
	ForgotModule *forgotModule
	ResetModule  *resetModule
)

func init() {
	form.RegisterInput(
		input.Password("", "confirm"),
		input.Password("", "code"),
	)

	login := &LoginData{}
	LoginModule = &loginModule{data: login, form: mustForm("login", login)}
	signup := &SignupData{}
	SignupModule = &signupModule{data: signup, form: mustForm("signup", signup)}
	verify := &VerifyData{}
	VerifyModule = &verifyModule{data: verify, form: mustForm("verify", verify)}
	forgot := &ForgotData{}
	ForgotModule = &forgotModule{data: forgot, form: mustForm("forgot", forgot)}
	code, password := &ResetCodeData{}, &ResetPasswordData{}
	ResetModule = &resetModule{
		codeData:     code,
		passwordData: password,
		codeForm:     mustForm("reset-code", code),
		passwordForm: mustForm("reset-password", password),
	}
}

func mustForm(parentID string, s any) *form.Form {
	f, err := form.New(parentID, s)
	if err != nil {
		panic("authflow: mustForm: " + err.Error())
	}
	return f
}

// firstError returns the first non-empty message as an ErrInvalidInput
// wrapped with that message.
func firstError(msgs ...string) error {
	for _, m := range msgs {
		if m != "" {
			return invalid(m)
		}
	}
	return nil
}

type inputError struct{ msg string }

func (e inputError) Error() string { return e.msg }
func (e inputError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error { return inputError{msg: msg} }
