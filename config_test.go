package authflow

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Flow.ResendCooldown != 60*time.Second {
		t.Fatalf("expected 60s resend cooldown, got %v", cfg.Flow.ResendCooldown)
	}
	if cfg.Token.RefreshLeeway <= 0 {
		t.Fatal("expected positive refresh leeway")
	}
}

func TestConfigRejectsNonHTTPBaseURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Remote.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http base URL")
	}
}

func TestConfigRejectsWhitespaceBaseURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Remote.BaseURL = " http://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for padded base URL")
	}
}

func TestConfigRejectsNegativeDurations(t *testing.T) {
	cfg := defaultConfig()
	cfg.Flow.ResendCooldown = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative cooldown")
	}

	cfg = defaultConfig()
	cfg.Token.RefreshLeeway = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative leeway")
	}
}

func TestCloneConfigIsIndependent(t *testing.T) {
	cfg := defaultConfig()
	cloned := cloneConfig(cfg)
	cloned.Remote.BaseURL = "http://changed.example.com"

	if cfg.Remote.BaseURL == cloned.Remote.BaseURL {
		t.Fatal("expected clone to be independent")
	}
}
