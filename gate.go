package authflow

import "github.com/pcgkit/authflow/session"

// LoginPath is an exported constant or variable used by the authflow client.
const LoginPath = "/login"

// Decision is the route authorization verdict consumed by the navigation
// layer. Exactly one of Pending, Allow, or a non-empty RedirectTo applies.
type Decision struct {
	// Pending means the session store has not finished restoring; the
	// caller renders a neutral loading state and must not redirect.
	Pending bool

	Allow bool

	// RedirectTo is set on denial: the login page for unauthenticated
	// visitors, the user's own landing page on a role mismatch (the user
	// IS authenticated, just not authorized for this route).
	RedirectTo string
}

// Authorize decides whether the current session may enter a route that
// requires the given role. An empty required role means the route only
// needs authentication.
//
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Authorize(loading bool, sess *session.Session, required Role) Decision {
	if loading {
		return Decision{Pending: true}
	}
	if sess == nil {
		return Decision{RedirectTo: LoginPath}
	}
	if required != "" && Role(sess.User.Role) != required {
		return Decision{RedirectTo: Role(sess.User.Role).LandingPath()}
	}
	return Decision{Allow: true}
}

// Authorize evaluates the route gate against this client's session store.
//
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Authorize(required Role) Decision {
	decision := Authorize(c.sessions.Loading(), c.sessions.Current(), required)
	switch {
	case decision.Pending:
	case decision.Allow:
		c.metricInc(MetricGateAllowed)
	case decision.RedirectTo == LoginPath:
		c.metricInc(MetricGateDeniedUnauthenticated)
	default:
		c.metricInc(MetricGateDeniedRole)
	}
	return decision
}
