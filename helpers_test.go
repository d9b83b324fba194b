package authflow

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pcgkit/authflow/session"
)

// fakeRemote implements RemoteAuthService with overridable behavior per
// operation and records the order of calls.
type fakeRemote struct {
	mu    sync.Mutex
	calls []string

	registerFn     func(ctx context.Context, role Role, input SignupInput) (*RegisterAck, error)
	sendSignupFn   func(ctx context.Context, email string) error
	verifySignupFn func(ctx context.Context, token, code string) error
	loginFn        func(ctx context.Context, email, password string) (*LoginOutcome, error)
	sendLoginFn    func(ctx context.Context, tempToken string) error
	verifyLoginFn  func(ctx context.Context, tempToken, code string) (*LoginOutcome, error)
	resetRequestFn func(ctx context.Context, email string) error
	resetConfirmFn func(ctx context.Context, code, newPassword, confirmPassword string) error
	refreshFn      func(ctx context.Context, refreshToken string) (TokenPair, error)
}

func (f *fakeRemote) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeRemote) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeRemote) Register(ctx context.Context, role Role, input SignupInput) (*RegisterAck, error) {
	f.record("register")
	if f.registerFn != nil {
		return f.registerFn(ctx, role, input)
	}
	return &RegisterAck{UserID: "1", PendingVerification: true}, nil
}

func (f *fakeRemote) SendSignupCode(ctx context.Context, email string) error {
	f.record("send_signup_code")
	if f.sendSignupFn != nil {
		return f.sendSignupFn(ctx, email)
	}
	return nil
}

func (f *fakeRemote) VerifySignupCode(ctx context.Context, token, code string) error {
	f.record("verify_signup_code")
	if f.verifySignupFn != nil {
		return f.verifySignupFn(ctx, token, code)
	}
	return nil
}

func (f *fakeRemote) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	f.record("login")
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	user := testUser()
	return &LoginOutcome{User: &user, Tokens: testTokens()}, nil
}

func (f *fakeRemote) SendLoginCode(ctx context.Context, tempToken string) error {
	f.record("send_login_code")
	if f.sendLoginFn != nil {
		return f.sendLoginFn(ctx, tempToken)
	}
	return nil
}

func (f *fakeRemote) VerifyLoginCode(ctx context.Context, tempToken, code string) (*LoginOutcome, error) {
	f.record("verify_login_code")
	if f.verifyLoginFn != nil {
		return f.verifyLoginFn(ctx, tempToken, code)
	}
	user := testUser()
	return &LoginOutcome{User: &user, Tokens: testTokens()}, nil
}

func (f *fakeRemote) RequestPasswordReset(ctx context.Context, email string) error {
	f.record("request_password_reset")
	if f.resetRequestFn != nil {
		return f.resetRequestFn(ctx, email)
	}
	return nil
}

func (f *fakeRemote) ConfirmPasswordReset(ctx context.Context, code, newPassword, confirmPassword string) error {
	f.record("confirm_password_reset")
	if f.resetConfirmFn != nil {
		return f.resetConfirmFn(ctx, code, newPassword, confirmPassword)
	}
	return nil
}

func (f *fakeRemote) RefreshAccessToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	f.record("refresh_access_token")
	if f.refreshFn != nil {
		return f.refreshFn(ctx, refreshToken)
	}
	return TokenPair{AccessToken: "rotated-access", RefreshToken: "rotated-refresh"}, nil
}

func testUser() session.User {
	return session.User{
		ID:       "7",
		FullName: "Alice Example",
		Email:    "alice@example.com",
		Role:     "patient",
	}
}

func testTokens() TokenPair {
	return TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}
}

func newTestClient(t *testing.T, remote RemoteAuthService) *Client {
	t.Helper()

	client, err := New().
		WithRemote(remote).
		WithSessionFile(filepath.Join(t.TempDir(), "session.json")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	if _, err := client.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	return client
}

func commitTestSession(t *testing.T, client *Client) {
	t.Helper()
	if _, err := client.Sessions().Commit(context.Background(), testUser(), testTokens()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func signedTestToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7",
		"role": "patient",
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return signed
}

func mustFileStorage(t *testing.T, path string) session.Storage {
	t.Helper()
	storage, err := session.NewFileStorage(path)
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	return storage
}

func validSignupInput() SignupInput {
	return SignupInput{
		FullName:        "Alice Example",
		Email:           "Alice@Example.com",
		Phone:           "+15550001111",
		Password:        "Str0ngPass",
		ConfirmPassword: "Str0ngPass",
		DateOfBirth:     "1990-04-02",
		Gender:          "female",
	}
}
