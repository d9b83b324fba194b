package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrPartialSession is an exported constant or variable used by the authflow client.
var ErrPartialSession = errors.New("session commit requires both user and access token")

// Store defines a public type used by authflow APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	storage Storage
	now     func() time.Time

	mu       sync.RWMutex
	current  *Session
	loading  bool
	restored bool

	subMu   sync.Mutex
	subs    map[int]func(*Session)
	nextSub int
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		now:     time.Now,
		loading: true,
		subs:    map[int]func(*Session){},
	}
}

// Loading describes the loading operation and its observable behavior.
//
// Loading does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Current describes the current operation and its observable behavior.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Restore reads the persisted session exactly once. The loading flag flips
// to false after the first attempt regardless of outcome; later calls return
// the in-memory state without touching storage. A corrupt or partial
// persisted record is purged and reported as an absent session, not as an
// error.
//
// Restore may return an error when input validation, dependency calls, or security checks fail.
// Restore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Restore(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	if s.restored {
		defer s.mu.Unlock()
		return s.current.clone(), nil
	}
	s.restored = true
	defer func() {
		s.loading = false
		s.mu.Unlock()
	}()

	access, accessErr := s.storage.Get(ctx, KeyAccessToken)
	rawUser, userErr := s.storage.Get(ctx, KeyUser)
	if errors.Is(accessErr, ErrStorageUnavailable) || errors.Is(userErr, ErrStorageUnavailable) {
		if errors.Is(accessErr, ErrStorageUnavailable) {
			return nil, accessErr
		}
		return nil, userErr
	}
	if accessErr != nil || userErr != nil {
		// One half of the pair is missing. Purge the rest so the next
		// restore starts clean.
		_ = s.storage.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser)
		return nil, nil
	}

	user, err := decodeUser(rawUser)
	if err != nil {
		_ = s.storage.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser)
		return nil, nil
	}

	refresh, err := s.storage.Get(ctx, KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	s.current = &Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		CreatedAt:    s.now(),
	}
	return s.current.clone(), nil
}

// Commit replaces the session wholesale and persists all three keys. There
// is no partial patch path: re-login, 2FA completion, and token refresh all
// go through full replacement.
//
// Commit may return an error when input validation, dependency calls, or security checks fail.
// Commit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Commit(ctx context.Context, user User, tokens TokenPair) (*Session, error) {
	if user.ID == "" || tokens.AccessToken == "" {
		return nil, ErrPartialSession
	}

	encoded, err := encodeUser(user)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Set(ctx, map[string]string{
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
		KeyUser:         encoded,
	}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = &Session{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		CreatedAt:    s.now(),
	}
	snapshot := s.current.clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot, nil
}

// Clear destroys the session and removes the persisted keys. Clearing an
// absent session is a no-op, not an error.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		return err
	}

	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had {
		s.notify(nil)
	}
	return nil
}

// Subscribe registers an observer invoked after every commit or clear with
// the new session (nil on clear). The returned function removes the
// observer.
//
// Subscribe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Subscribe(fn func(*Session)) func() {
	if fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(sess *Session) {
	s.subMu.Lock()
	observers := make([]func(*Session), 0, len(s.subs))
	for _, fn := range s.subs {
		observers = append(observers, fn)
	}
	s.subMu.Unlock()

	for _, fn := range observers {
		fn(sess.clone())
	}
}
