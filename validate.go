package authflow

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Inline field messages.
const (
	MsgEmailInvalid      = "Enter valid email (example@gmail.com)"
	MsgNameRequired      = "Full name is required."
	MsgNameTooShort      = "Min 3 characters."
	MsgNameTooLong       = "Max 25 characters."
	MsgNameLettersOnly   = "Letters only."
	MsgPasswordRequired  = "Password is required."
	MsgPasswordTooShort  = "Min 8 characters required."
	MsgPasswordUppercase = "Uppercase required."
	MsgPasswordLowercase = "Lowercase required."
	MsgPasswordNumber    = "Number required."
	MsgPasswordSymbol    = "Special character required."
	MsgPasswordMismatch  = "Passwords do not match."
)

const (
	minPasswordLen  = 8
	minNameLen      = 3
	maxNameLen      = 25
	passwordSymbols = "@$!%*?&#"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]*$`)
)

// ValidateEmail returns "" when s has a local@domain.tld shape.
func ValidateEmail(s string) string {
	if emailPattern.MatchString(s) {
		return ""
	}
	return MsgEmailInvalid
}

// ValidatePassword returns the message of the first unmet rule, or "".
func ValidatePassword(s string) string {
	if s == "" {
		return MsgPasswordRequired
	}
	if utf8.RuneCountInString(s) < minPasswordLen {
		return MsgPasswordTooShort
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	switch {
	case !upper:
		return MsgPasswordUppercase
	case !lower:
		return MsgPasswordLowercase
	case !digit:
		return MsgPasswordNumber
	case !symbol:
		return MsgPasswordSymbol
	}
	return ""
}

func ValidateFullName(s string) string {
	if s == "" {
		return MsgNameRequired
	}
	n := utf8.RuneCountInString(s)
	if n < minNameLen {
		return MsgNameTooShort
	}
	if n > maxNameLen {
		return MsgNameTooLong
	}
	if !namePattern.MatchString(s) {
		return MsgNameLettersOnly
	}
	return ""
}

// ValidateConfirm reports a mismatch only once the confirmation has input.
func ValidateConfirm(password, confirm string) string {
	if confirm != "" && confirm != password {
		return MsgPasswordMismatch
	}
	return ""
}
