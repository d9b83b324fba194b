package authflow

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildRequiresSessionStorage(t *testing.T) {
	_, err := New().WithRemote(&fakeRemote{}).Build()
	if err == nil {
		t.Fatal("expected error without any session storage")
	}
}

func TestBuildRequiresRemoteOrBaseURL(t *testing.T) {
	_, err := New().
		WithSessionFile(filepath.Join(t.TempDir(), "session.json")).
		Build()
	if err == nil {
		t.Fatal("expected error without remote binding")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	builder := New().
		WithRemote(&fakeRemote{}).
		WithSessionFile(filepath.Join(t.TempDir(), "session.json"))

	if _, err := builder.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildWithRedisStorage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	client, err := New().
		WithRemote(&fakeRemote{}).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	if _, err := client.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	commitTestSession(t, client)

	if keys := mr.Keys(); len(keys) == 0 {
		t.Fatal("expected session keys written to redis")
	}
}

func TestExplicitStorageWinsOverRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	path := filepath.Join(t.TempDir(), "session.json")
	client, err := New().
		WithRemote(&fakeRemote{}).
		WithRedis(rdb).
		WithSessionFile(path).
		WithStorage(mustFileStorage(t, path)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	if _, err := client.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	commitTestSession(t, client)

	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected redis untouched when explicit storage is set, got %v", keys)
	}
}

func TestBuildValidatesConfig(t *testing.T) {
	_, err := New().
		WithBaseURL("ftp://example.com").
		WithSessionFile(filepath.Join(t.TempDir(), "session.json")).
		Build()
	if err == nil {
		t.Fatal("expected config validation failure")
	}
}
