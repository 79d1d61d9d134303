//go:build !wasm

package authflow

import (
	"html"
	"strconv"
	"strings"
)

// RenderView renders the module of the active phase.
func RenderView(v View) string {
	switch v.Phase {
	case PhaseSignup:
		return SignupModule.Render(v)
	case PhaseVerifyOTP:
		return VerifyModule.Render(v)
	case PhaseForgotPassword:
		return ForgotModule.Render(v)
	case PhaseResetPassword:
		return ResetModule.Render(v)
	}
	return LoginModule.Render(v)
}

// page wraps the form markup with the parts the form library does not
// draw: headings, inline messages, notices and phase links.
type page struct {
	b strings.Builder
}

func (p *page) open(v View) {
	p.b.WriteString(`<section class="auth" data-phase="` + v.Phase.String() +
		`" data-loading="` + strconv.FormatBool(v.Loading) +
		`" data-can-submit="` + strconv.FormatBool(v.CanSubmit) + `">`)
}

func (p *page) close() { p.b.WriteString(`</section>`) }

func (p *page) heading(title, sub string) {
	p.b.WriteString(`<h2>` + html.EscapeString(title) + `</h2>`)
	if sub != "" {
		p.b.WriteString(`<p class="subtitle">` + html.EscapeString(sub) + `</p>`)
	}
}

// fieldErrors lists the non-empty inline messages.
func (p *page) fieldErrors(msgs ...string) {
	var items []string
	for _, m := range msgs {
		if m != "" {
			items = append(items, `<li>`+html.EscapeString(m)+`</li>`)
		}
	}
	if len(items) > 0 {
		p.b.WriteString(`<ul class="field-errors">` + strings.Join(items, "") + `</ul>`)
	}
}

func (p *page) notices(v View) {
	if v.Loading {
		p.b.WriteString(`<p class="loading">Please wait...</p>`)
	}
	if v.Status != "" {
		p.b.WriteString(`<p class="status" role="status">` + html.EscapeString(v.Status) + `</p>`)
	}
	if v.Error != "" {
		p.b.WriteString(`<p class="error" role="alert">` + html.EscapeString(v.Error) + `</p>`)
	}
}

func (p *page) link(action, label string) {
	p.b.WriteString(`<a href="#" data-action="` + action + `">` + html.EscapeString(label) + `</a>`)
}

func (p *page) raw(s string) { p.b.WriteString(s) }

func (p *page) String() string { return p.b.String() }
