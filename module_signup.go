package authflow

import (
	"sync"

	"github.com/tinywasm/form"
)

type signupModule struct {
	mu   sync.Mutex // guards data while the form renders
	data *SignupData
	form *form.Form
}

func (m *signupModule) HandlerName() string { return "signup" }
func (m *signupModule) ModuleTitle() string { return "Create Account" }

func (m *signupModule) ValidateData(action byte, data ...any) error {
	if len(data) == 0 {
		return ErrInvalidInput
	}
	d, ok := data[0].(*SignupData)
	if !ok {
		return ErrInvalidInput
	}
	if err := firstError(ValidateFullName(d.Name), ValidateEmail(d.Email), ValidatePassword(d.Password)); err != nil {
		return err
	}
	if d.Password != d.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}
