package authflow

import (
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pcgkit/authflow/session"
)

// Builder defines a public type used by authflow APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	remote     RemoteAuthService
	storage    session.Storage
	redis      *redis.Client
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL describes the withbaseurl operation and its observable behavior.
//
// WithBaseURL may return an error when input validation, dependency calls, or security checks fail.
// WithBaseURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Remote.BaseURL = baseURL
	return b
}

// WithRemote describes the withremote operation and its observable behavior.
//
// WithRemote may return an error when input validation, dependency calls, or security checks fail.
// WithRemote does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRemote(remote RemoteAuthService) *Builder {
	b.remote = remote
	return b
}

// WithStorage describes the withstorage operation and its observable behavior.
//
// WithStorage may return an error when input validation, dependency calls, or security checks fail.
// WithStorage does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStorage(storage session.Storage) *Builder {
	b.storage = storage
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithSessionFile describes the withsessionfile operation and its observable behavior.
//
// WithSessionFile may return an error when input validation, dependency calls, or security checks fail.
// WithSessionFile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionFile(path string) *Builder {
	b.config.Session.FilePath = path
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- SESSION STORAGE --------
	storage := b.storage
	if storage == nil {
		switch {
		case b.redis != nil:
			s, err := session.NewRedisStorage(b.redis, cfg.Session.RedisPrefix)
			if err != nil {
				return nil, err
			}
			storage = s
		case cfg.Session.FilePath != "":
			s, err := session.NewFileStorage(cfg.Session.FilePath)
			if err != nil {
				return nil, err
			}
			storage = s
		default:
			return nil, errors.New("session storage required")
		}
	}

	// -------- REMOTE SERVICE --------
	remote := b.remote
	if remote == nil {
		r, err := NewHTTPRemote(cfg.Remote, b.httpClient)
		if err != nil {
			return nil, err
		}
		remote = r
	}

	client := &Client{
		config:   cfg,
		remote:   remote,
		sessions: session.NewStore(storage),
		now:      time.Now,
	}
	client.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	client.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return client, nil
}
