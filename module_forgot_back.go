//go:build !wasm

package authflow

func (m *forgotModule) RenderHTML() string {
	return m.bind(ForgotData{})
}

func (m *forgotModule) bind(d ForgotData) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.data = d
	m.form.SetSSR(true)
	return m.form.RenderHTML()
}

func (m *forgotModule) Render(v View) string {
	var p page
	p.open(v)
	p.heading(m.ModuleTitle(), "Enter your email to receive a reset code")
	p.raw(m.bind(ForgotData{Email: v.Credentials.Email}))
	p.fieldErrors(v.Errors.Email)
	p.notices(v)
	p.link("login", "Back to login")
	p.close()
	return p.String()
}
