package authflow

import (
	"sync"

	"github.com/tinywasm/form"
)

type forgotModule struct {
	mu   sync.Mutex // guards data while the form renders
	data *ForgotData
	form *form.Form
}

func (m *forgotModule) HandlerName() string { return "forgot" }
func (m *forgotModule) ModuleTitle() string { return "Reset Password" }

func (m *forgotModule) ValidateData(action byte, data ...any) error {
	if len(data) == 0 {
		return ErrInvalidInput
	}
	d, ok := data[0].(*ForgotData)
	if !ok {
		return ErrInvalidInput
	}
	return firstError(ValidateEmail(d.Email))
}
