package session

import (
	"context"
	"errors"
)

// Fixed key names under which the three persisted values live. All backends
// use the same names so an install can migrate between file and Redis
// storage without a re-login.
const (
	// KeyAccessToken is an exported constant or variable used by the authflow client.
	KeyAccessToken = "authflow:access_token"
	// KeyRefreshToken is an exported constant or variable used by the authflow client.
	KeyRefreshToken = "authflow:refresh_token"
	// KeyUser is an exported constant or variable used by the authflow client.
	KeyUser = "authflow:user"
)

// ErrKeyNotFound is an exported constant or variable used by the authflow client.
var ErrKeyNotFound = errors.New("session storage key not found")

// ErrStorageUnavailable is an exported constant or variable used by the authflow client.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Storage is the durable key/value backend behind a [Store]. Implementations
// must treat deletion of a missing key as a no-op.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
