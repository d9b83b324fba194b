package authflow

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo carries the claims the client reads out of an access token
// without verifying its signature. Verification is the service's job; the
// client only needs expiry for proactive refresh and the embedded role for
// display.
//
// TokenInfo instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenInfo struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// InspectToken describes the inspecttoken operation and its observable behavior.
//
// InspectToken may return an error when input validation, dependency calls, or security checks fail.
// InspectToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func InspectToken(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, err
	}

	info := TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// tokenExpiresWithin reports whether the token's exp claim falls inside the
// leeway window from now. Unparseable tokens and tokens without an exp
// claim count as expiring, which biases the caller toward refreshing.
func tokenExpiresWithin(raw string, now time.Time, leeway time.Duration) bool {
	info, err := InspectToken(raw)
	if err != nil || info.ExpiresAt.IsZero() {
		return true
	}
	return !now.Add(leeway).Before(info.ExpiresAt)
}
