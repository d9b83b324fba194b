package authflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRefreshRotatesBothTokens(t *testing.T) {
	remote := &fakeRemote{}
	client := newTestClient(t, remote)
	commitTestSession(t, client)

	pair, err := client.RefreshTokens(context.Background())
	if err != nil {
		t.Fatalf("RefreshTokens failed: %v", err)
	}
	if pair.AccessToken != "rotated-access" || pair.RefreshToken != "rotated-refresh" {
		t.Fatalf("unexpected pair %+v", pair)
	}

	sess := client.Sessions().Current()
	if sess == nil {
		t.Fatal("expected session to survive refresh")
	}
	if sess.AccessToken != "rotated-access" || sess.RefreshToken != "rotated-refresh" {
		t.Fatalf("expected rotated tokens in store, got %+v", sess)
	}
	if sess.User.ID != "7" {
		t.Fatalf("expected user record preserved, got %+v", sess.User)
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	client := newTestClient(t, &fakeRemote{})
	if _, err := client.RefreshTokens(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected no-session error, got %v", err)
	}
}

func TestRefreshRejectedPurgesSession(t *testing.T) {
	remote := &fakeRemote{
		refreshFn: func(context.Context, string) (TokenPair, error) {
			return TokenPair{}, newRemoteRejected(401, "Invalid refresh token")
		},
	}
	client := newTestClient(t, remote)
	commitTestSession(t, client)

	_, err := client.RefreshTokens(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
	if sess := client.Sessions().Current(); sess != nil {
		t.Fatal("expected session purged after rejected refresh")
	}
	if got := client.MetricValue(MetricSessionPurged); got != 1 {
		t.Fatalf("expected purge metric, got %d", got)
	}
}

func TestRefreshUnavailableKeepsSession(t *testing.T) {
	remote := &fakeRemote{
		refreshFn: func(context.Context, string) (TokenPair, error) {
			return TokenPair{}, newRemoteUnavailable(503, "")
		},
	}
	client := newTestClient(t, remote)
	commitTestSession(t, client)

	if _, err := client.RefreshTokens(context.Background()); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if sess := client.Sessions().Current(); sess == nil || sess.AccessToken != "access-1" {
		t.Fatal("expected session untouched after outage")
	}
}

func TestConcurrentRefreshCollapsesToOneExchange(t *testing.T) {
	remote := &fakeRemote{
		refreshFn: func(context.Context, string) (TokenPair, error) {
			time.Sleep(100 * time.Millisecond)
			return TokenPair{AccessToken: "rotated-access", RefreshToken: "rotated-refresh"}, nil
		},
	}
	client := newTestClient(t, remote)
	commitTestSession(t, client)

	const goroutines = 8
	var wg sync.WaitGroup
	results := make([]TokenPair, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.RefreshTokens(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d failed: %v", i, errs[i])
		}
		if results[i].AccessToken != "rotated-access" {
			t.Fatalf("goroutine %d got unexpected pair %+v", i, results[i])
		}
	}
	if got := remote.callCount("refresh_access_token"); got != 1 {
		t.Fatalf("expected a single remote exchange, got %d", got)
	}
	if got := client.MetricValue(MetricRefreshDeduplicated); got == 0 {
		t.Fatal("expected deduplication metric to count collapsed callers")
	}
}
