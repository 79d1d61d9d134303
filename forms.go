package authflow

// LoginData is the login form, validated by LoginModule.
type LoginData struct {
	Email    string
	Password string
}

// SignupData is validated by SignupModule.
type SignupData struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// VerifyData carries the emailed code of the verify_otp phase.
type VerifyData struct {
	Code string
}

type ForgotData struct {
	Email string
}

// ResetCodeData is the first step of reset_password.
type ResetCodeData struct {
	Code string
}

// ResetPasswordData is the second step, shown once the code is accepted.
type ResetPasswordData struct {
	Password string
	Confirm  string
}
