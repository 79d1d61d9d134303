//go:build !wasm

package authflow

func (m *signupModule) RenderHTML() string {
	return m.bind(SignupData{})
}

func (m *signupModule) bind(d SignupData) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.data = d
	m.form.SetSSR(true)
	return m.form.RenderHTML()
}

func (m *signupModule) Render(v View) string {
	var p page
	p.open(v)
	p.heading(m.ModuleTitle(), "Start building your digital twin")
	p.raw(m.bind(SignupData{Name: v.Credentials.FullName, Email: v.Credentials.Email}))
	p.fieldErrors(v.Errors.FullName, v.Errors.Email, v.Errors.Password, v.Errors.Confirm)
	p.notices(v)
	p.raw(`<p>Already have an account? `)
	p.link("login", "Login")
	p.raw(`</p>`)
	p.close()
	return p.String()
}
