package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRemote(t *testing.T, handler http.Handler) (*HTTPRemote, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	remote, err := NewHTTPRemote(RemoteConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "authflow-test",
	}, nil)
	if err != nil {
		t.Fatalf("NewHTTPRemote failed: %v", err)
	}
	return remote, srv
}

func TestHTTPRemoteLoginSuccess(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "alice@example.com" {
			t.Errorf("expected lowercased email, got %v", body["email"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":        7,
				"full_name": "Alice Example",
				"email":     "alice@example.com",
				"role":      "patient",
				"age":       33,
			},
			"access_token":  "acc",
			"refresh_token": "ref",
		})
	}))

	outcome, err := remote.Login(context.Background(), "Alice@Example.com", "Str0ngPass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if outcome.RequiresOTP {
		t.Fatal("expected direct login")
	}
	if outcome.User.ID != "7" || outcome.User.Role != "patient" {
		t.Fatalf("unexpected user %+v", outcome.User)
	}
	if outcome.Tokens.AccessToken != "acc" || outcome.Tokens.RefreshToken != "ref" {
		t.Fatalf("unexpected tokens %+v", outcome.Tokens)
	}
	if _, ok := outcome.User.Extra["age"]; !ok {
		t.Fatal("expected unrecognized fields preserved in Extra")
	}
}

func TestHTTPRemoteLoginRequiresOTP(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"requires_otp": true,
			"temp_token":   "temp-42",
			"message":      "OTP required",
		})
	}))

	outcome, err := remote.Login(context.Background(), "alice@example.com", "Str0ngPass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !outcome.RequiresOTP || outcome.TempToken != "temp-42" {
		t.Fatalf("expected 2FA outcome, got %+v", outcome)
	}
	if outcome.User != nil {
		t.Fatal("expected no user before verification")
	}
}

func TestHTTPRemoteRejectedPassesDetailVerbatim(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password"})
	}))

	_, err := remote.Login(context.Background(), "alice@example.com", "WrongPass1")
	if !errors.Is(err, ErrRemoteRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusUnauthorized || remoteErr.Message != "Invalid email or password" {
		t.Fatalf("expected verbatim detail, got %+v", remoteErr)
	}
}

func TestHTTPRemoteServerErrorMapsToUnavailable(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := remote.SendSignupCode(context.Background(), "alice@example.com")
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestHTTPRemoteTransportErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	remote, err := NewHTTPRemote(RemoteConfig{BaseURL: srv.URL, RequestTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewHTTPRemote failed: %v", err)
	}
	if err := remote.SendSignupCode(context.Background(), "alice@example.com"); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected unavailable error on connection failure, got %v", err)
	}
}

func TestHTTPRemoteRefreshUsesQueryParameter(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refresh-token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("refresh_token"); got != "ref&old" {
			t.Errorf("expected refresh token in query, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "acc2",
			"refresh_token": "ref2",
		})
	}))

	pair, err := remote.RefreshAccessToken(context.Background(), "ref&old")
	if err != nil {
		t.Fatalf("RefreshAccessToken failed: %v", err)
	}
	if pair.AccessToken != "acc2" || pair.RefreshToken != "ref2" {
		t.Fatalf("expected rotated pair, got %+v", pair)
	}
}

func TestHTTPRemoteRegisterMultipart(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup/doctor" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("email"); got != "doc@example.com" {
			t.Errorf("expected lowercased email, got %q", got)
		}
		if got := r.FormValue("license_number"); got != "MD-1234" {
			t.Errorf("expected license number, got %q", got)
		}
		file, header, err := r.FormFile("license_document")
		if err != nil {
			t.Errorf("expected license_document part: %v", err)
		} else {
			file.Close()
			if header.Filename != "license.pdf" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":              42,
			"pending_verification": true,
			"message":              "User registered. Please verify your email with the OTP sent.",
		})
	}))

	input := SignupInput{
		FullName:        "Doc Example",
		Email:           "Doc@Example.com",
		Phone:           "+15550002222",
		Password:        "Str0ngPass",
		ConfirmPassword: "Str0ngPass",
		LicenseNumber:   "MD-1234",
		Specialization:  "Cardiology",
		Document: &Document{
			Filename:    "license.pdf",
			ContentType: "application/pdf",
			Content:     []byte("%PDF-1.4"),
		},
	}
	ack, err := remote.Register(context.Background(), RoleDoctor, input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if ack.UserID != "42" || !ack.PendingVerification {
		t.Fatalf("unexpected ack %+v", ack)
	}
}

func TestHTTPRemoteResearcherDocumentFieldName(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if file, _, err := r.FormFile("affiliation_document"); err != nil {
			t.Errorf("expected affiliation_document part: %v", err)
		} else {
			file.Close()
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user_id": 43, "pending_verification": true})
	}))

	input := SignupInput{
		FullName:        "R Example",
		Email:           "r@example.com",
		Phone:           "+15550003333",
		Password:        "Str0ngPass",
		ConfirmPassword: "Str0ngPass",
		Institution:     "Example University",
		ResearchArea:    "Cardiac acoustics",
		Document:        &Document{Filename: "affiliation.pdf", Content: []byte("doc")},
	}
	if _, err := remote.Register(context.Background(), RoleResearcher, input); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestHTTPRemoteVerifySignupSendsNumericUserID(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		// The service expects an integer id, not the string the client
		// carries around.
		if got, ok := body["user_id"].(float64); !ok || got != 42 {
			t.Errorf("expected numeric user_id, got %T %v", body["user_id"], body["user_id"])
		}
		if body["otp"] != "123456" {
			t.Errorf("unexpected otp %v", body["otp"])
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := remote.VerifySignupCode(context.Background(), "42", "123456"); err != nil {
		t.Fatalf("VerifySignupCode failed: %v", err)
	}
}

func TestHTTPRemoteContextHeaders(t *testing.T) {
	remote, _ := newTestRemote(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "heartbeat-shell/2.1" {
			t.Errorf("expected context user agent, got %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "en-GB" {
			t.Errorf("expected context locale, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	ctx := WithLocale(WithUserAgent(context.Background(), "heartbeat-shell/2.1"), "en-GB")
	if err := remote.SendSignupCode(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SendSignupCode failed: %v", err)
	}
}
