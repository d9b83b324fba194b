package authflow

import (
	"errors"
	"io"
	"net/http"
)

// Transport is an http.RoundTripper that authenticates outgoing requests
// with the stored access token. It refreshes proactively when the token is
// inside the configured leeway of its expiry, and once reactively when the
// service answers 401 anyway. Use it as the transport of any http.Client
// that talks to the protected API surface.
//
// Transport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Transport struct {
	base   http.RoundTripper
	client *Client
}

// Transport describes the transport operation and its observable behavior.
//
// Transport may return an error when input validation, dependency calls, or security checks fail.
// Transport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Transport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:   base,
		client: c,
	}
}

// RoundTrip describes the roundtrip operation and its observable behavior.
//
// RoundTrip may return an error when input validation, dependency calls, or security checks fail.
// RoundTrip does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t == nil || t.client == nil {
		return nil, ErrClientNotReady
	}
	sess := t.client.sessions.Current()
	if sess == nil {
		return nil, ErrNoSession
	}

	token := sess.AccessToken
	if tokenExpiresWithin(token, t.client.now(), t.client.config.Token.RefreshLeeway) {
		pair, err := t.client.RefreshTokens(req.Context())
		switch {
		case err == nil:
			token = pair.AccessToken
		case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrNoSession):
			return nil, err
		default:
			// Service unreachable; send the stale token and let the
			// reactive path below deal with a 401.
		}
	}

	resp, err := t.base.RoundTrip(authorized(req, token))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Cannot replay the body; hand the 401 back.
		return resp, nil
	}

	pair, refreshErr := t.client.RefreshTokens(req.Context())
	if refreshErr != nil {
		if errors.Is(refreshErr, ErrSessionExpired) || errors.Is(refreshErr, ErrNoSession) {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
			return nil, refreshErr
		}
		return resp, nil
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	retry := authorized(req, pair.AccessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

// authorized clones the request with the bearer header set. RoundTrip must
// not mutate the caller's request.
func authorized(req *http.Request, token string) *http.Request {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+token)
	return cloned
}
