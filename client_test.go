package authflow

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSessionSurvivesClientRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first, err := New().
		WithRemote(&fakeRemote{}).
		WithSessionFile(path).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := first.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	commitTestSession(t, first)
	first.Close()

	second, err := New().
		WithRemote(&fakeRemote{}).
		WithSessionFile(path).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(second.Close)

	sess, err := second.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess == nil || sess.User.Email != "alice@example.com" {
		t.Fatalf("expected restored session, got %+v", sess)
	}
	if got := second.MetricValue(MetricSessionRestored); got != 1 {
		t.Fatalf("expected restore metric, got %d", got)
	}
}

func TestLogoutClearsStoredSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	client, err := New().
		WithRemote(&fakeRemote{}).
		WithSessionFile(path).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	if _, err := client.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	commitTestSession(t, client)

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if sess := client.Sessions().Current(); sess != nil {
		t.Fatal("expected no session after logout")
	}

	// Logout again is a no-op, not an error.
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}

	reopened, err := New().
		WithRemote(&fakeRemote{}).
		WithSessionFile(path).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(reopened.Close)

	sess, err := reopened.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected no persisted session after logout, got %+v", sess)
	}
}

func TestSubscriberSeesLoginAndLogout(t *testing.T) {
	client := newTestClient(t, &fakeRemote{})

	var updates []*Session
	unsubscribe := client.Sessions().Subscribe(func(sess *Session) {
		updates = append(updates, sess)
	})
	defer unsubscribe()

	if _, err := client.NewLoginFlow().Submit(context.Background(), "alice@example.com", "Str0ngPass"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(updates))
	}
	if updates[0] == nil || updates[1] != nil {
		t.Fatalf("expected session then nil, got %v then %v", updates[0], updates[1])
	}
}
