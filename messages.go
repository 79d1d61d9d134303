package authflow

// Form-level notices shown under the active form.
const (
	MsgFixFields           = "Please fill in all fields correctly."
	MsgCompleteForm        = "Please complete the form correctly."
	MsgCodeRequired        = "Enter the 6-digit code."
	MsgInvalidCredentials  = "Invalid credentials."
	MsgEmailNotRegistered  = "This email is not registered."
	MsgEmailNotFound       = "Email not found."
	MsgOTPSent             = "OTP required. A verification code was sent to your email."
	MsgCodeSent            = "Verification code sent to your email."
	MsgOTPInvalid          = "Invalid or expired OTP. Please try again."
	MsgCodeResent          = "New code sent! Please check your inbox."
	MsgResendFailed        = "Failed to resend code."
	MsgSigningUp           = "Sending code to your email..."
	MsgSignupFailed        = "Signup failed."
	MsgVerified            = "Verified! You can now log in."
	MsgVerifiedSigningIn   = "Email verified! Signing you in now..."
	MsgVerifiedPleaseLogin = "Email verified! Please log in."
	MsgResetSent           = "Reset code sent to your email."
	MsgPasswordUpdated     = "Password updated! You can now log in."
	MsgResetFailed         = "Failed to update password. Please try again."
	MsgRequestFailed       = "Request failed. Please check your connection and try again."
)
