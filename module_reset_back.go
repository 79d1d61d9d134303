//go:build !wasm

package authflow

func (m *resetModule) RenderHTML() string {
	return m.bindCode(ResetCodeData{}) + "<hr>" + m.bindPassword()
}

func (m *resetModule) bindCode(d ResetCodeData) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.codeData = d
	m.codeForm.SetSSR(true)
	return m.codeForm.RenderHTML()
}

func (m *resetModule) bindPassword() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.passwordData = ResetPasswordData{}
	m.passwordForm.SetSSR(true)
	return m.passwordForm.RenderHTML()
}

// Render shows the code step until the code is accepted, then the new
// password step.
func (m *resetModule) Render(v View) string {
	var p page
	p.open(v)
	p.heading(m.ModuleTitle(), "Code sent to "+v.Verification.Email)
	if !v.Verification.OTPVerified {
		p.raw(m.bindCode(ResetCodeData{Code: v.Code}))
		p.notices(v)
		p.link("resend", "Resend code")
	} else {
		p.raw(m.bindPassword())
		p.fieldErrors(v.Errors.Password, v.Errors.Confirm)
		p.notices(v)
	}
	p.link("login", "Back to login")
	p.close()
	return p.String()
}
