// Package session owns the client's authenticated-session record and its
// durable persistence across process restarts.
//
// # Design
//
// A [Store] is the single source of truth for "who is logged in". It restores
// the persisted token pair and user record exactly once at startup, replaces
// the session wholesale on commit, and clears it on logout or irrecoverable
// refresh failure. Persistence is delegated to a [Storage] backend: a JSON
// file for single-user installs, or Redis for kiosk and shared-host
// deployments.
//
// # Architecture boundaries
//
// This package owns the session model, its wire encoding, and storage
// backends. Flow orchestration, remote calls, and authorization decisions
// live in the root authflow package and read the session through [Store].
//
// # What this package must NOT do
//
//   - Perform network calls against the auth service.
//   - Surface a corrupt persisted record as an error; it is purged and
//     reported as an absent session.
//   - Expose partial sessions: a user record is present if and only if an
//     access token is present.
package session
