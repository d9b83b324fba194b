package authflow

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authflow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Remote  RemoteConfig
	Session SessionConfig
	Flow    FlowConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
REMOTE CONFIG
====================================
*/

// RemoteConfig defines a public type used by authflow APIs.
//
// RemoteConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RemoteConfig struct {
	// BaseURL of the auth service, e.g. "https://api.example.com".
	// The /auth/* routes are appended to it.
	BaseURL string

	RequestTimeout time.Duration
	UserAgent      string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authflow APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// FilePath of the JSON session cache when no explicit storage backend
	// is supplied. Ignored when a Redis client or custom Storage is set on
	// the Builder.
	FilePath string

	// RedisPrefix namespaces the session keys when Redis storage is used.
	RedisPrefix string
}

/*
====================================
FLOW CONFIG
====================================
*/

// FlowConfig defines a public type used by authflow APIs.
//
// FlowConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowConfig struct {
	// ResendCooldown gates how soon an OTP resend may follow challenge
	// issuance or the previous resend. UX throttle only; the remote
	// service applies its own limits.
	ResendCooldown time.Duration
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authflow APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// RefreshLeeway triggers a proactive refresh when the access token's
	// readable expiry is closer than this. Zero disables proactive
	// refresh; the 401-retry path still applies.
	RefreshLeeway time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authflow APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authflow APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			RequestTimeout: 15 * time.Second,
			UserAgent:      "authflow-client",
		},
		Flow: FlowConfig{
			ResendCooldown: 60 * time.Second,
		},
		Token: TokenConfig{
			RefreshLeeway: 30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Remote.BaseURL != "" {
		trimmed := strings.TrimSpace(c.Remote.BaseURL)
		if trimmed != c.Remote.BaseURL {
			return errors.New("Remote BaseURL must not contain surrounding whitespace")
		}
		if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
			return errors.New("Remote BaseURL must be an http(s) URL")
		}
	}
	if c.Remote.RequestTimeout < 0 {
		return errors.New("Remote RequestTimeout must not be negative")
	}
	if c.Flow.ResendCooldown < 0 {
		return errors.New("Flow ResendCooldown must not be negative")
	}
	if c.Token.RefreshLeeway < 0 {
		return errors.New("Token RefreshLeeway must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must not be negative")
	}
	return nil
}
