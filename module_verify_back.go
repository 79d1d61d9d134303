//go:build !wasm

package authflow

func (m *verifyModule) RenderHTML() string {
	return m.bind(VerifyData{})
}

func (m *verifyModule) bind(d VerifyData) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.data = d
	m.form.SetSSR(true)
	return m.form.RenderHTML()
}

func (m *verifyModule) Render(v View) string {
	var p page
	p.open(v)
	p.heading(m.ModuleTitle(), "We sent a 6-digit code to "+v.Verification.Email)
	p.raw(m.bind(VerifyData{Code: v.Code}))
	p.notices(v)
	p.link("resend", "Resend code")
	p.link("login", "Back to login")
	p.close()
	return p.String()
}
