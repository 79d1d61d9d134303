//go:build !wasm

package authflow

func (m *loginModule) RenderHTML() string {
	return m.bind(LoginData{})
}

// bind loads d into the form data and renders it. Passwords are never
// bound.
func (m *loginModule) bind(d LoginData) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.data = d
	m.form.SetSSR(true)
	return m.form.RenderHTML()
}

// Render draws the login phase of v.
func (m *loginModule) Render(v View) string {
	var p page
	p.open(v)
	p.heading(m.ModuleTitle(), "Sign in to your digital twin")
	p.raw(m.bind(LoginData{Email: v.Credentials.Email}))
	p.fieldErrors(v.Errors.Email, v.Errors.Password)
	checked := ""
	if v.RememberMe {
		checked = " checked"
	}
	p.raw(`<label><input type="checkbox" name="remember"` + checked + `> Remember me</label>`)
	p.link("forgot", "Forgot password?")
	p.notices(v)
	p.raw(`<p>Don't have an account? `)
	p.link("signup", "Sign up")
	p.raw(`</p>`)
	p.close()
	return p.String()
}
