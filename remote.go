package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// RegisterAck is the remote service's answer to a signup submission. UserID
// is the signup correlation token: the service keys OTP verification by it.
type RegisterAck struct {
	UserID              string
	PendingVerification bool
	Message             string
}

// LoginOutcome is the remote service's answer to a credential or OTP
// submission: either a full user + token pair, or a 2FA challenge flag with
// a temporary token.
type LoginOutcome struct {
	User   *User
	Tokens TokenPair

	RequiresOTP bool
	TempToken   string
	Message     string
}

// RemoteAuthService is the abstract remote collaborator the flow
// controllers drive. The HTTP implementation is [HTTPRemote]; tests inject
// fakes.
type RemoteAuthService interface {
	Register(ctx context.Context, role Role, input SignupInput) (*RegisterAck, error)
	SendSignupCode(ctx context.Context, email string) error
	VerifySignupCode(ctx context.Context, correlationToken, code string) error
	Login(ctx context.Context, email, password string) (*LoginOutcome, error)
	SendLoginCode(ctx context.Context, tempToken string) error
	VerifyLoginCode(ctx context.Context, tempToken, code string) (*LoginOutcome, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword, confirmPassword string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (TokenPair, error)
}

// HTTPRemote implements [RemoteAuthService] over the auth service's JSON
// REST routes. Failures are classified as rejected (4xx, message passed
// through verbatim) or unavailable (5xx and transport errors); no finer
// status interpretation happens here.
//
// HTTPRemote instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPRemote struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewHTTPRemote describes the newhttpremote operation and its observable behavior.
//
// NewHTTPRemote may return an error when input validation, dependency calls, or security checks fail.
// NewHTTPRemote does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHTTPRemote(cfg RemoteConfig, client *http.Client) (*HTTPRemote, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote base URL required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &HTTPRemote{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    client,
		userAgent: cfg.UserAgent,
	}, nil
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) Register(ctx context.Context, role Role, input SignupInput) (*RegisterAck, error) {
	body, contentType, err := encodeSignupForm(role, input)
	if err != nil {
		return nil, err
	}

	var response struct {
		UserID              json.Number `json:"user_id"`
		PendingVerification bool        `json:"pending_verification"`
		Message             string      `json:"message"`
	}
	if err := r.do(ctx, http.MethodPost, "/auth/signup/"+url.PathEscape(string(role)), body, contentType, &response); err != nil {
		return nil, err
	}
	return &RegisterAck{
		UserID:              response.UserID.String(),
		PendingVerification: response.PendingVerification,
		Message:             response.Message,
	}, nil
}

// SendSignupCode describes the sendsignupcode operation and its observable behavior.
//
// SendSignupCode may return an error when input validation, dependency calls, or security checks fail.
// SendSignupCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) SendSignupCode(ctx context.Context, email string) error {
	return r.postJSON(ctx, "/auth/send-signup-otp", map[string]any{
		"email": strings.ToLower(email),
	}, nil)
}

// VerifySignupCode describes the verifysignupcode operation and its observable behavior.
//
// VerifySignupCode may return an error when input validation, dependency calls, or security checks fail.
// VerifySignupCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) VerifySignupCode(ctx context.Context, correlationToken, code string) error {
	return r.postJSON(ctx, "/auth/verify-signup-otp", map[string]any{
		"user_id": numericToken(correlationToken),
		"otp":     code,
	}, nil)
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	var response loginResponse
	if err := r.postJSON(ctx, "/auth/login", map[string]any{
		"email":    strings.ToLower(email),
		"password": password,
	}, &response); err != nil {
		return nil, err
	}
	return response.outcome()
}

// SendLoginCode describes the sendlogincode operation and its observable behavior.
//
// SendLoginCode may return an error when input validation, dependency calls, or security checks fail.
// SendLoginCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) SendLoginCode(ctx context.Context, tempToken string) error {
	return r.postJSON(ctx, "/auth/send-login-otp", map[string]any{
		"temp_token": tempToken,
	}, nil)
}

// VerifyLoginCode describes the verifylogincode operation and its observable behavior.
//
// VerifyLoginCode may return an error when input validation, dependency calls, or security checks fail.
// VerifyLoginCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) VerifyLoginCode(ctx context.Context, tempToken, code string) (*LoginOutcome, error) {
	var response loginResponse
	if err := r.postJSON(ctx, "/auth/verify-login-otp", map[string]any{
		"temp_token": tempToken,
		"otp":        code,
	}, &response); err != nil {
		return nil, err
	}
	return response.outcome()
}

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) RequestPasswordReset(ctx context.Context, email string) error {
	return r.postJSON(ctx, "/auth/forgot-password", map[string]any{
		"email": strings.ToLower(email),
	}, nil)
}

// ConfirmPasswordReset describes the confirmpasswordreset operation and its observable behavior.
//
// ConfirmPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// ConfirmPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) ConfirmPasswordReset(ctx context.Context, code, newPassword, confirmPassword string) error {
	return r.postJSON(ctx, "/auth/reset-password", map[string]any{
		"token":            code,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	}, nil)
}

// RefreshAccessToken describes the refreshaccesstoken operation and its observable behavior.
//
// RefreshAccessToken may return an error when input validation, dependency calls, or security checks fail.
// RefreshAccessToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *HTTPRemote) RefreshAccessToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	var response struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	// The service takes the refresh token as a query parameter.
	path := "/auth/refresh-token?refresh_token=" + url.QueryEscape(refreshToken)
	if err := r.do(ctx, http.MethodPost, path, nil, "", &response); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
	}, nil
}

type loginResponse struct {
	User         map[string]any `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	RequiresOTP  bool           `json:"requires_otp"`
	TempToken    string         `json:"temp_token"`
	Message      string         `json:"message"`
}

func (r loginResponse) outcome() (*LoginOutcome, error) {
	if r.RequiresOTP {
		if r.TempToken == "" {
			return nil, newRemoteUnavailable(0, "authentication service returned a 2FA challenge without a token")
		}
		return &LoginOutcome{
			RequiresOTP: true,
			TempToken:   r.TempToken,
			Message:     r.Message,
		}, nil
	}
	if r.AccessToken == "" || r.User == nil {
		return nil, newRemoteUnavailable(0, "authentication service returned an incomplete login response")
	}
	user := decodeUserPayload(r.User)
	return &LoginOutcome{
		User: &user,
		Tokens: TokenPair{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
		},
		Message: r.Message,
	}, nil
}

// decodeUserPayload maps the service's user dict onto the session user
// record, keeping unrecognized keys in Extra untouched.
func decodeUserPayload(payload map[string]any) User {
	user := User{}
	for key, value := range payload {
		switch key {
		case "id":
			user.ID = stringifyID(value)
		case "full_name":
			user.FullName, _ = value.(string)
		case "email":
			user.Email, _ = value.(string)
		case "role":
			user.Role, _ = value.(string)
		default:
			if user.Extra == nil {
				user.Extra = map[string]any{}
			}
			user.Extra[key] = value
		}
	}
	return user
}

func stringifyID(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// numericToken converts a correlation token back to the integer id the
// service expects, passing it through untouched when it is not numeric.
func numericToken(token string) any {
	if n, err := strconv.Atoi(token); err == nil {
		return n
	}
	return token
}

func encodeSignupForm(role Role, input SignupInput) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"full_name":        input.FullName,
		"email":            strings.ToLower(input.Email),
		"phone":            input.Phone,
		"password":         input.Password,
		"confirm_password": input.ConfirmPassword,
		"date_of_birth":    input.DateOfBirth,
		"gender":           input.Gender,
		"blood_group":      input.BloodGroup,
		"license_number":   input.LicenseNumber,
		"specialization":   input.Specialization,
		"hospital":         input.Hospital,
		"institution":      input.Institution,
		"research_area":    input.ResearchArea,
	}
	for _, name := range []string{
		"full_name", "email", "phone", "password", "confirm_password",
		"date_of_birth", "gender", "blood_group",
		"license_number", "specialization", "hospital",
		"institution", "research_area",
	} {
		value := fields[name]
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if input.Document != nil {
		fieldName := "license_document"
		if role == RoleResearcher {
			fieldName = "affiliation_document"
		}
		part, err := writer.CreateFormFile(fieldName, input.Document.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(input.Document.Content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func (r *HTTPRemote) postJSON(ctx context.Context, path string, payload map[string]any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.do(ctx, http.MethodPost, path, bytes.NewReader(encoded), "application/json", out)
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	request, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	request.Header.Set("Accept", "application/json")
	if ua := userAgentFromContext(ctx); ua != "" {
		request.Header.Set("User-Agent", ua)
	} else if r.userAgent != "" {
		request.Header.Set("User-Agent", r.userAgent)
	}
	if locale := localeFromContext(ctx); locale != "" {
		request.Header.Set("Accept-Language", locale)
	}

	response, err := r.client.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return newRemoteUnavailable(0, "")
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return newRemoteUnavailable(response.StatusCode, "")
	}

	if response.StatusCode >= 500 {
		return newRemoteUnavailable(response.StatusCode, "")
	}
	if response.StatusCode >= 400 {
		return newRemoteRejected(response.StatusCode, remoteDetail(data))
	}

	if out != nil && len(data) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(out); err != nil {
			return newRemoteUnavailable(response.StatusCode, "authentication service returned an unreadable response")
		}
	}
	return nil
}

// remoteDetail extracts the service's human-readable error message. The
// service wraps it as {"detail": "..."}; anything else falls back to a
// generic message so raw payloads never reach the UI.
func remoteDetail(data []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return "request rejected"
}
