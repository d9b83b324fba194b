package authflow

import (
	"time"

	"github.com/pcgkit/authflow/session"
)

// Role represents the account role assigned by the platform. Routing and
// dashboard access key off it.
type Role string

const (
	// RolePatient is an exported constant or variable used by the authflow client.
	RolePatient Role = "patient"
	// RoleDoctor is an exported constant or variable used by the authflow client.
	RoleDoctor Role = "doctor"
	// RoleResearcher is an exported constant or variable used by the authflow client.
	RoleResearcher Role = "researcher"
	// RoleAdmin is an exported constant or variable used by the authflow client.
	RoleAdmin Role = "admin"
)

// ParseRole describes the parserole operation and its observable behavior.
//
// ParseRole may return an error when input validation, dependency calls, or security checks fail.
// ParseRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RolePatient, RoleDoctor, RoleResearcher, RoleAdmin:
		return Role(value), nil
	default:
		return "", ErrRoleInvalid
	}
}

// Valid describes the valid operation and its observable behavior.
//
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleResearcher, RoleAdmin:
		return true
	default:
		return false
	}
}

// SignupAllowed reports whether the role may self-register. Admin accounts
// are provisioned server-side only.
func (r Role) SignupAllowed() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleResearcher:
		return true
	default:
		return false
	}
}

// LandingPath returns the role's dashboard route, used by the authorization
// gate when redirecting an authenticated user away from a route they cannot
// access.
func (r Role) LandingPath() string {
	switch r {
	case RolePatient, RoleDoctor, RoleResearcher, RoleAdmin:
		return "/dashboard/" + string(r)
	default:
		return LoginPath
	}
}

// User is the authenticated user record held by the session store.
type User = session.User

// TokenPair is the access/refresh credential pair issued by the remote auth
// service.
type TokenPair = session.TokenPair

// Session is the client's record of the currently authenticated user and
// their credentials.
type Session = session.Session

// Document is an optional credential attachment submitted with a doctor or
// researcher signup (license or affiliation proof).
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SignupInput defines a public type used by authflow APIs.
//
// SignupInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupInput struct {
	FullName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string

	// Patient fields.
	DateOfBirth string
	Gender      string
	BloodGroup  string

	// Doctor fields.
	LicenseNumber  string
	Specialization string
	Hospital       string

	// Researcher fields.
	Institution  string
	ResearchArea string

	// Doctor license or researcher affiliation proof.
	Document *Document
}

// ChallengeKind identifies which flow issued a verification challenge. A
// challenge is never reused across kinds.
type ChallengeKind uint8

const (
	// ChallengeSignup is an exported constant or variable used by the authflow client.
	ChallengeSignup ChallengeKind = iota
	// ChallengeLogin2FA is an exported constant or variable used by the authflow client.
	ChallengeLogin2FA
	// ChallengePasswordReset is an exported constant or variable used by the authflow client.
	ChallengePasswordReset
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k ChallengeKind) String() string {
	switch k {
	case ChallengeSignup:
		return "signup"
	case ChallengeLogin2FA:
		return "login-2fa"
	case ChallengePasswordReset:
		return "password-reset"
	default:
		return "unknown"
	}
}

// Challenge is the transient state of one in-progress OTP exchange. It lives
// only inside the flow instance that issued it and never survives a process
// restart.
//
// CorrelationToken ties the challenge's steps together: the signup flow
// carries the user id returned by registration (the backend keys signup OTP
// verification by user id), the login flow carries the temporary 2FA token,
// and the password-reset flow carries none (the reset code alone correlates).
type Challenge struct {
	Kind             ChallengeKind
	CorrelationToken string
	TargetEmail      string

	IssuedAt          time.Time
	ResendAvailableAt time.Time
	Attempts          int
}

// ResendAvailable reports whether the resend cooldown has elapsed at the
// given instant. Cosmetic throttle only; the remote service applies its own.
func (c *Challenge) ResendAvailable(now time.Time) bool {
	if c == nil {
		return false
	}
	return !now.Before(c.ResendAvailableAt)
}

// LoginResult is returned by [LoginFlow.Submit] and [LoginFlow.VerifyCode].
// Exactly one of Session or Challenge is set: a session when authentication
// completed, a challenge when a second factor is still required.
type LoginResult struct {
	Session *Session

	OTPRequired bool
	Challenge   *Challenge
}
