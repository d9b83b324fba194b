// Package authflow is the client-side authentication core for the PCG
// heart-sound diagnostics platform: a durable session store, the OTP-gated
// signup / login / password-reset flow controllers, and the role-based route
// authorization gate.
//
// The package is a client of the remote auth service, never an authority:
// credential checks, OTP issuance, and token minting all happen server-side.
// Client-side validation exists to avoid doomed round-trips, not as a
// security boundary.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Client], [Builder], [Config],
// the flow controllers ([SignupFlow], [LoginFlow], [PasswordResetFlow]), the
// [Authorize] gate, and value types. Session persistence lives in the
// session subpackage; metric export lives in metrics/export/.
//
// # What this package must NOT do
//
//   - Interpret remote error payloads beyond rejected vs unavailable; the
//     remote-supplied message passes through for display verbatim.
//   - Persist a verification challenge: challenges are transient and die
//     with the flow instance that issued them.
//   - Mutate the session store from a discarded flow instance.
//
// # Concurrency contract
//
// A [Client] is safe for concurrent use after [Builder.Build]. Each flow
// instance serializes its own remote calls: a submission attempted while a
// request is outstanding fails with [ErrFlowBusy]. Token refresh is
// single-flight across the whole client.
package authflow
