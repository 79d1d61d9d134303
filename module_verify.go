package authflow

import (
	"sync"

	"github.com/tinywasm/form"
)

type verifyModule struct {
	mu   sync.Mutex // guards data while the form renders
	data *VerifyData
	form *form.Form
}

func (m *verifyModule) HandlerName() string { return "verify" }
func (m *verifyModule) ModuleTitle() string { return "Verify Your Email" }

func (m *verifyModule) ValidateData(action byte, data ...any) error {
	if len(data) == 0 {
		return ErrInvalidInput
	}
	d, ok := data[0].(*VerifyData)
	if !ok || d.Code == "" {
		return invalid(MsgCodeRequired)
	}
	return nil
}
