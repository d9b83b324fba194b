package authflow

import (
	"context"
	"errors"
)

// refreshKey collapses concurrent refresh attempts into one remote call.
// The client holds at most one session, so a single key is enough.
const refreshKey = "refresh"

// RefreshTokens describes the refreshtokens operation and its observable behavior.
//
// RefreshTokens may return an error when input validation, dependency calls, or security checks fail.
// RefreshTokens does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RefreshTokens(ctx context.Context) (TokenPair, error) {
	result, err, shared := c.refreshGroup.Do(refreshKey, func() (any, error) {
		return c.refreshOnce(ctx)
	})
	if shared {
		c.metricInc(MetricRefreshDeduplicated)
	}
	if err != nil {
		return TokenPair{}, err
	}
	return result.(TokenPair), nil
}

// refreshOnce performs the actual remote exchange. A rejected refresh token
// is terminal: the stored session is purged and the caller gets
// ErrSessionExpired. An unavailable service keeps the session intact so the
// caller can retry.
func (c *Client) refreshOnce(ctx context.Context) (TokenPair, error) {
	current := c.sessions.Current()
	if current == nil || current.RefreshToken == "" {
		return TokenPair{}, ErrNoSession
	}

	start := c.now()
	pair, err := c.remote.RefreshAccessToken(ctx, current.RefreshToken)
	c.observeRemote(start)
	if err != nil {
		if errors.Is(err, ErrRemoteRejected) {
			_ = c.sessions.Clear(ctx)
			c.metricInc(MetricRefreshFailure)
			c.metricInc(MetricSessionPurged)
			c.emitAudit(ctx, AuditEvent{
				EventType: auditEventRefresh,
				UserID:    current.User.ID,
				Email:     current.User.Email,
				Error:     err.Error(),
			})
			return TokenPair{}, ErrSessionExpired
		}
		c.metricInc(MetricRefreshFailure)
		if errors.Is(err, ErrRemoteUnavailable) {
			c.metricInc(MetricRemoteUnavailable)
		}
		return TokenPair{}, err
	}

	// The exchange rotates both tokens; keep the user record as-is.
	if _, err := c.sessions.Commit(ctx, current.User, pair); err != nil {
		return TokenPair{}, err
	}
	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, AuditEvent{
		EventType: auditEventRefresh,
		UserID:    current.User.ID,
		Email:     current.User.Email,
		Success:   true,
	})
	return pair, nil
}
