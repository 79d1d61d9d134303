package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL is where the auth API listens in local development.
const DefaultBaseURL = "http://127.0.0.1:8000/api/auth/"

// DetailOTPRequired is the login rejection detail for unverified accounts.
const DetailOTPRequired = "OTP_REQUIRED"

// API is the contract the flow expects from the external auth backend.
type API interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	SendSignupOTP(ctx context.Context, email, password, fullName string) error
	SendLoginOTP(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

type LoginResult struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	FullName string `json:"full_name,omitempty"`
	Username string `json:"username,omitempty"`
}

// DisplayName prefers the backend's full name over its username.
func (r LoginResult) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Username
}

// APIError is a non-2xx answer from the auth backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("auth api: status %d", e.Status)
	}
	return fmt.Sprintf("auth api: status %d: %s", e.Status, e.Detail)
}

// IsOTPRequired reports whether err is the backend asking for OTP step-up.
func IsOTPRequired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Detail == DetailOTPRequired
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Detail returns the backend's detail message carried by err, if any.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// HTTPClient calls the auth backend with JSON bodies.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client rooted at baseURL. A nil hc uses http.DefaultClient.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/") + "/", httpClient: hc}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.post(ctx, "login/", map[string]string{
		"email": email, "password": password,
	}, &res)
	return res, err
}

func (c *HTTPClient) SendSignupOTP(ctx context.Context, email, password, fullName string) error {
	return c.post(ctx, "send-signup-otp/", map[string]string{
		"email": email, "password": password, "full_name": fullName,
	}, nil)
}

func (c *HTTPClient) SendLoginOTP(ctx context.Context, email, password string) error {
	return c.post(ctx, "send-login-otp/", map[string]string{
		"email": email, "password": password,
	}, nil)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, code string) error {
	return c.post(ctx, "verify-otp/", map[string]string{
		"email": email, "code": code,
	}, nil)
}

func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	return c.post(ctx, "resend-otp/", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "forgot-password/", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.post(ctx, "reset-password/", map[string]string{
		"email": email, "otp": otp, "new_password": newPassword,
	}, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRequestFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", ErrRequestFailed, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var data struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &data) == nil {
		apiErr.Detail = data.Detail
	}
	return apiErr
}
