package session

import "time"

// User defines a public type used by authflow APIs.
//
// User instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type User struct {
	ID       string         `json:"id"`
	FullName string         `json:"full_name"`
	Email    string         `json:"email"`
	Role     string         `json:"role"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// TokenPair defines a public type used by authflow APIs.
//
// TokenPair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session defines a public type used by authflow APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	User User

	AccessToken  string
	RefreshToken string

	CreatedAt time.Time
}

// Tokens describes the tokens operation and its observable behavior.
//
// Tokens does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) Tokens() TokenPair {
	if s == nil {
		return TokenPair{}
	}
	return TokenPair{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	copied := *s
	if s.User.Extra != nil {
		extra := make(map[string]any, len(s.User.Extra))
		for k, v := range s.User.Extra {
			extra[k] = v
		}
		copied.User.Extra = extra
	}
	return &copied
}
