//go:build !wasm

package authflow

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestModulesSSR(t *testing.T) {
	modules := map[string]interface{ RenderHTML() string }{
		"login":  LoginModule,
		"signup": SignupModule,
		"verify": VerifyModule,
		"forgot": ForgotModule,
		"reset":  ResetModule,
	}
	for name, m := range modules {
		if out := m.RenderHTML(); !strings.Contains(out, "<form") {
			t.Errorf("%s RenderHTML() should contain <form", name)
		}
	}
}

func TestModulesValidateData(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"login ok", LoginModule.ValidateData('c', &LoginData{Email: testEmail, Password: testPassword}), nil},
		{"login bad email", LoginModule.ValidateData('c', &LoginData{Email: "x", Password: testPassword}), ErrInvalidInput},
		{"login no data", LoginModule.ValidateData('c'), ErrInvalidInput},
		{"signup ok", SignupModule.ValidateData('c', &SignupData{Name: testName, Email: testEmail, Password: testPassword, Confirm: testPassword}), nil},
		{"signup mismatch", SignupModule.ValidateData('c', &SignupData{Name: testName, Email: testEmail, Password: testPassword, Confirm: "x"}), ErrPasswordMismatch},
		{"verify empty", VerifyModule.ValidateData('c', &VerifyData{}), ErrInvalidInput},
		{"verify ok", VerifyModule.ValidateData('c', &VerifyData{Code: "123456"}), nil},
		{"forgot ok", ForgotModule.ValidateData('c', &ForgotData{Email: testEmail}), nil},
		{"reset code empty", ResetModule.ValidateData('c', &ResetCodeData{}), ErrInvalidInput},
		{"reset weak", ResetModule.ValidateData('u', &ResetPasswordData{Password: "abc", Confirm: "abc"}), ErrInvalidInput},
		{"reset ok", ResetModule.ValidateData('u', &ResetPasswordData{Password: testPassword, Confirm: testPassword}), nil},
		{"wrong type", ResetModule.ValidateData('u', &LoginData{}), ErrInvalidInput},
	}
	for _, c := range cases {
		if c.want == nil && c.err != nil {
			t.Errorf("%s: unexpected error %v", c.name, c.err)
		}
		if c.want != nil && !errors.Is(c.err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.err)
		}
	}

	err := LoginModule.ValidateData('c', &LoginData{Email: testEmail, Password: "short"})
	if err == nil || err.Error() != MsgPasswordTooShort {
		t.Errorf("expected the field message, got %v", err)
	}
}

func TestRenderViewUsesPhaseForms(t *testing.T) {
	h := newHarness(t, newStubAPI())
	v := h.flow.View()

	out := RenderView(v)
	if n := strings.Count(out, "<form"); n != 1 {
		t.Errorf("expected exactly one form, got %d in %s", n, out)
	}
	if !strings.Contains(out, LoginModule.RenderHTML()) {
		t.Errorf("expected the login form markup, got %s", out)
	}
	if !strings.Contains(out, `data-phase="login"`) || !strings.Contains(out, "Remember me") {
		t.Errorf("expected login extras, got %s", out)
	}

	h.flow.ShowSignup()
	out = RenderView(h.flow.View())
	if !strings.Contains(out, SignupModule.RenderHTML()) {
		t.Errorf("expected the signup form markup, got %s", out)
	}
}

func TestRenderViewFollowsPhase(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.SetField(FieldPassword, testPassword)
	if out := RenderView(h.flow.View()); strings.Contains(out, testPassword) {
		t.Errorf("password must not be rendered")
	}

	h.flow.SetField(FieldEmail, `<b>@x.io`)
	h.flow.ShowForgotPassword()
	h.flow.SubmitForgotPassword(context.Background())
	out := RenderView(h.flow.View())
	if !strings.Contains(out, `data-phase="reset_password"`) || !strings.Contains(out, "Resend code") {
		t.Errorf("expected reset code step, got %s", out)
	}
	if strings.Contains(out, "Code sent to <b>") || !strings.Contains(out, "&lt;b&gt;@x.io") {
		t.Errorf("expected escaped email, got %s", out)
	}
	if !strings.Contains(out, MsgResetSent) {
		t.Errorf("expected status notice, got %s", out)
	}

	h.flow.SetField(FieldCode, "123456")
	h.flow.SubmitResetCode(context.Background())
	out = RenderView(h.flow.View())
	if strings.Contains(out, "Resend code") || strings.Count(out, "<form") != 1 {
		t.Errorf("expected the new password step only, got %s", out)
	}
}

func TestRenderSignupErrors(t *testing.T) {
	h := newHarness(t, newStubAPI())
	h.flow.ShowSignup()
	h.flow.SetField(FieldFullName, "A1")
	out := RenderView(h.flow.View())
	if !strings.Contains(out, `<ul class="field-errors"><li>`+MsgNameTooShort) {
		t.Errorf("expected inline name error, got %s", out)
	}
	if !strings.Contains(out, `data-can-submit="false"`) {
		t.Errorf("expected submit disallowed, got %s", out)
	}
}
