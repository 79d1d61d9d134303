package main

import (
	"fmt"
	"strings"

	"github.com/tinywasm/authflow"
)

var titles = map[authflow.Phase]string{
	authflow.PhaseLogin:          "Login",
	authflow.PhaseSignup:         "Sign up",
	authflow.PhaseVerifyOTP:      "Verify email",
	authflow.PhaseForgotPassword: "Forgot password",
	authflow.PhaseResetPassword:  "Reset password",
}

// render draws v as plain text. Secrets are shown masked.
func render(v authflow.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n== %s ==\n", titles[v.Phase])
	if v.HasVerification {
		fmt.Fprintf(&b, "code sent to %s\n", v.Verification.Email)
	}

	c, e := v.Credentials, v.Errors
	switch v.Phase {
	case authflow.PhaseLogin:
		line(&b, "email", c.Email, e.Email)
		line(&b, "password", mask(c.Password), e.Password)
		fmt.Fprintf(&b, "  remember: %t\n", v.RememberMe)
	case authflow.PhaseSignup:
		line(&b, "name", c.FullName, e.FullName)
		line(&b, "email", c.Email, e.Email)
		line(&b, "password", mask(c.Password), e.Password)
		line(&b, "confirm", mask(c.ConfirmPassword), e.Confirm)
	case authflow.PhaseVerifyOTP:
		line(&b, "code", v.Code, "")
	case authflow.PhaseForgotPassword:
		line(&b, "email", c.Email, e.Email)
	case authflow.PhaseResetPassword:
		if !v.Verification.OTPVerified {
			line(&b, "code", v.Code, "")
		} else {
			line(&b, "password", mask(c.Password), e.Password)
			line(&b, "confirm", mask(c.ConfirmPassword), e.Confirm)
		}
	}

	if v.Status != "" {
		fmt.Fprintf(&b, "* %s\n", v.Status)
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "x %s\n", v.Error)
	}
	if v.CanSubmit {
		b.WriteString("(ready to submit)\n")
	}
	return b.String()
}

func line(b *strings.Builder, label, value, msg string) {
	fmt.Fprintf(b, "  %-9s %s\n", label+":", value)
	if msg != "" {
		fmt.Fprintf(b, "  %-9s ^ %s\n", "", msg)
	}
}

func mask(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}
