package authflow

import (
	"github.com/tinywasm/fmt"
)

var (
	ErrInvalidInput       = fmt.Err("input", "invalid")           // EN: Input Invalid                    / ES: Entrada Inválida
	ErrInvalidCredentials = fmt.Err("access", "denied")           // EN: Access Denied                    / ES: Acceso Denegado
	ErrEmailNotRegistered = fmt.Err("email", "not", "registered") // EN: Email Not Registered             / ES: Correo electrónico No Registrado
	ErrOTPRequired        = fmt.Err("code", "required")           // EN: Code Required                    / ES: Código Requerido
	ErrOTPInvalid         = fmt.Err("code", "invalid")            // EN: Code Invalid                     / ES: Código Inválido
	ErrPasswordMismatch   = fmt.Err("password", "mismatch")       // EN: Password Mismatch                / ES: Contraseña No coincide
	ErrRequestFailed      = fmt.Err("request", "failed")          // EN: Request Failed                   / ES: Solicitud Fallida
	ErrBusy               = fmt.Err("request", "pending")         // EN: Request Pending                  / ES: Solicitud Pendiente
	ErrStaleResponse      = fmt.Err("response", "discarded")      // EN: Response Discarded               / ES: Respuesta Descartada
	ErrInvalidTransition  = fmt.Err("phase", "invalid")           // EN: Phase Invalid                    / ES: Fase Inválida
	ErrNotLoggedIn        = fmt.Err("session", "not", "found")    // EN: Session Not Found                / ES: Sesión No Encontrada
	ErrSessionExpired     = fmt.Err("token", "expired")           // EN: Token Expired                    / ES: Token Expirado
	ErrMissingAPI         = fmt.Err("api", "not", "configured")   // EN: Api Not Configured               / ES: Api No Configurado
)

// Phase is the active step of the authentication flow.
type Phase string

const (
	PhaseLogin          Phase = "login"
	PhaseSignup         Phase = "signup"
	PhaseVerifyOTP      Phase = "verify_otp"
	PhaseForgotPassword Phase = "forgot_password"
	PhaseResetPassword  Phase = "reset_password"
)

func (p Phase) String() string { return string(p) }

// LastPhase records which step sent the user to an OTP screen.
type LastPhase string

const (
	LastNone   LastPhase = ""
	LastSignup LastPhase = "signup"
	LastLogin  LastPhase = "login"
	LastForgot LastPhase = "forgot"
)

// Field names a user-editable input of the flow.
type Field string

const (
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldFullName        Field = "fullName"
	FieldConfirmPassword Field = "confirmPassword"
	FieldCode            Field = "otp"
)

type Credentials struct {
	Email           string
	Password        string
	FullName        string
	ConfirmPassword string
}

// FieldErrors holds the inline message per field, "" when valid.
type FieldErrors struct {
	Email    string
	Password string
	FullName string
	Confirm  string
}

func (e FieldErrors) Empty() bool {
	return e.Email == "" && e.Password == "" && e.FullName == "" && e.Confirm == ""
}

type VerificationContext struct {
	Email       string
	LastPhase   LastPhase
	OTPVerified bool
}

// Tokens is the session token pair returned by a successful login.
type Tokens struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
}

type Config struct {
	API           API          // required
	Session       *Session     // default: in-memory store
	DashboardPath string       // default: "/twin-dashboard"
	Navigate      func(string) // called once with DashboardPath on exit
	Log           func(...any) // default: no-op
}

const defaultDashboardPath = "/twin-dashboard"

func (c *Config) applyDefaults() error {
	if c.API == nil {
		return ErrMissingAPI
	}
	if c.Session == nil {
		c.Session = NewSession(NewMemoryStore())
	}
	if c.DashboardPath == "" {
		c.DashboardPath = defaultDashboardPath
	}
	if c.Log == nil {
		c.Log = func(...any) {}
	}
	return nil
}
