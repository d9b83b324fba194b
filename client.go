package authflow

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pcgkit/authflow/session"
)

// Client is the assembled authentication client. It owns the session
// store, the remote service binding, the flow controllers it hands out,
// and the observability plumbing around them. Construct one through
// [Builder.Build] and keep it for the lifetime of the application.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config   Config
	remote   RemoteAuthService
	sessions *session.Store
	audit    *auditDispatcher
	metrics  *Metrics

	refreshGroup singleflight.Group

	now func() time.Time
}

// Sessions describes the sessions operation and its observable behavior.
//
// Sessions may return an error when input validation, dependency calls, or security checks fail.
// Sessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

// Remote describes the remote operation and its observable behavior.
//
// Remote may return an error when input validation, dependency calls, or security checks fail.
// Remote does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Remote() RemoteAuthService {
	return c.remote
}

// Restore describes the restore operation and its observable behavior.
//
// Restore may return an error when input validation, dependency calls, or security checks fail.
// Restore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Restore(ctx context.Context) (*Session, error) {
	sess, err := c.sessions.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	c.metricInc(MetricSessionRestored)
	c.emitAudit(ctx, AuditEvent{
		EventType: auditEventRestore,
		UserID:    sess.User.ID,
		Email:     sess.User.Email,
		Success:   true,
	})
	return sess, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context) error {
	current := c.sessions.Current()

	if err := c.sessions.Clear(ctx); err != nil {
		return err
	}

	c.metricInc(MetricLogout)
	event := AuditEvent{
		EventType: auditEventLogout,
		Success:   true,
	}
	if current != nil {
		event.UserID = current.User.ID
		event.Email = current.User.Email
	}
	c.emitAudit(ctx, event)
	return nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// MetricValue describes the metricvalue operation and its observable behavior.
//
// MetricValue may return an error when input validation, dependency calls, or security checks fail.
// MetricValue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricValue(id MetricID) uint64 {
	return c.metrics.Value(id)
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

func (c *Client) metricInc(id MetricID) {
	c.metrics.Inc(id)
}

func (c *Client) observeRemote(start time.Time) {
	c.metrics.Observe(MetricRemoteLatency, c.now().Sub(start))
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now()
	}
	c.audit.Emit(ctx, event)
}
