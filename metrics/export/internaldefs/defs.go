package internaldefs

import (
	authflow "github.com/pcgkit/authflow"
)

// CounterDef defines a public type used by authflow APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authflow.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authflow APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authflow.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authflow client.
var CounterDefs = []CounterDef{
	{ID: authflow.MetricLoginSuccess, Name: "authflow_login_success_total", Help: "Successful direct logins."},
	{ID: authflow.MetricLoginFailure, Name: "authflow_login_failure_total", Help: "Failed login submissions."},
	{ID: authflow.MetricLoginOTPRequired, Name: "authflow_login_otp_required_total", Help: "Logins answered with a 2FA challenge."},
	{ID: authflow.MetricLoginOTPSuccess, Name: "authflow_login_otp_success_total", Help: "Successful 2FA code verifications."},
	{ID: authflow.MetricLoginOTPFailure, Name: "authflow_login_otp_failure_total", Help: "Rejected 2FA code verifications."},
	{ID: authflow.MetricSignupSuccess, Name: "authflow_signup_success_total", Help: "Accepted signup submissions."},
	{ID: authflow.MetricSignupFailure, Name: "authflow_signup_failure_total", Help: "Rejected signup submissions."},
	{ID: authflow.MetricSignupVerified, Name: "authflow_signup_verified_total", Help: "Completed signup verifications."},
	{ID: authflow.MetricSignupCodeRejected, Name: "authflow_signup_code_rejected_total", Help: "Rejected signup verification codes."},
	{ID: authflow.MetricResetRequested, Name: "authflow_reset_requested_total", Help: "Password reset requests."},
	{ID: authflow.MetricResetConfirmed, Name: "authflow_reset_confirmed_total", Help: "Completed password resets."},
	{ID: authflow.MetricResetRejected, Name: "authflow_reset_rejected_total", Help: "Rejected password reset confirmations."},
	{ID: authflow.MetricCodeResent, Name: "authflow_code_resent_total", Help: "Verification code re-deliveries."},
	{ID: authflow.MetricResendThrottled, Name: "authflow_resend_throttled_total", Help: "Re-delivery attempts blocked by the cooldown."},
	{ID: authflow.MetricRefreshSuccess, Name: "authflow_refresh_success_total", Help: "Successful token refresh exchanges."},
	{ID: authflow.MetricRefreshFailure, Name: "authflow_refresh_failure_total", Help: "Failed token refresh exchanges."},
	{ID: authflow.MetricRefreshDeduplicated, Name: "authflow_refresh_deduplicated_total", Help: "Refresh calls collapsed into an in-flight exchange."},
	{ID: authflow.MetricSessionRestored, Name: "authflow_session_restored_total", Help: "Sessions restored from storage at startup."},
	{ID: authflow.MetricSessionPurged, Name: "authflow_session_purged_total", Help: "Sessions purged after a rejected refresh."},
	{ID: authflow.MetricLogout, Name: "authflow_logout_total", Help: "Logout operations."},
	{ID: authflow.MetricValidationFailure, Name: "authflow_validation_failure_total", Help: "Submissions blocked by client-side validation."},
	{ID: authflow.MetricGateAllowed, Name: "authflow_gate_allowed_total", Help: "Route authorization checks that allowed access."},
	{ID: authflow.MetricGateDeniedUnauthenticated, Name: "authflow_gate_denied_unauthenticated_total", Help: "Route authorization checks denied for missing session."},
	{ID: authflow.MetricGateDeniedRole, Name: "authflow_gate_denied_role_total", Help: "Route authorization checks denied for role mismatch."},
	{ID: authflow.MetricRemoteUnavailable, Name: "authflow_remote_unavailable_total", Help: "Remote calls that failed as unavailable."},
}

// HistogramDefs is an exported constant or variable used by the authflow client.
var HistogramDefs = []HistogramDef{
	{ID: authflow.MetricRemoteLatency, Name: "authflow_remote_latency_seconds", Help: "Remote call latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authflow client.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authflow client.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
