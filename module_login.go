package authflow

import (
	"sync"

	"github.com/tinywasm/form"
)

type loginModule struct {
	mu   sync.Mutex // guards data while the form renders
	data *LoginData
	form *form.Form
}

func (m *loginModule) HandlerName() string { return "login" }
func (m *loginModule) ModuleTitle() string { return "Welcome Back" }

func (m *loginModule) ValidateData(action byte, data ...any) error {
	if len(data) == 0 {
		return ErrInvalidInput
	}
	d, ok := data[0].(*LoginData)
	if !ok {
		return ErrInvalidInput
	}
	return firstError(ValidateEmail(d.Email), ValidatePassword(d.Password))
}
