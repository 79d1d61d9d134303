package authflow

import (
	"sync"

	"github.com/tinywasm/form"
)

// resetModule renders the two steps of reset_password: the emailed code,
// then the new password.
type resetModule struct {
	mu           sync.Mutex
	codeData     *ResetCodeData
	passwordData *ResetPasswordData
	codeForm     *form.Form
	passwordForm *form.Form
}

func (m *resetModule) HandlerName() string { return "reset" }
func (m *resetModule) ModuleTitle() string { return "Set New Password" }

func (m *resetModule) ValidateData(action byte, data ...any) error {
	if len(data) == 0 {
		return ErrInvalidInput
	}
	switch d := data[0].(type) {
	case *ResetCodeData:
		if d.Code == "" {
			return invalid(MsgCodeRequired)
		}
		return nil
	case *ResetPasswordData:
		if d.Password != d.Confirm {
			return ErrPasswordMismatch
		}
		return firstError(ValidatePassword(d.Password))
	}
	return ErrInvalidInput
}
