package authflow

import (
	"sync"

	"github.com/google/uuid"
)

// FlowState defines a public type used by authflow APIs.
//
// FlowState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowState uint8

const (
	// FlowIdle is an exported constant or variable used by the authflow client.
	FlowIdle FlowState = iota
	// FlowSubmitting is an exported constant or variable used by the authflow client.
	FlowSubmitting
	// FlowChallengeIssued is an exported constant or variable used by the authflow client.
	FlowChallengeIssued
	// FlowVerifyingCode is an exported constant or variable used by the authflow client.
	FlowVerifyingCode
	// FlowResending is an exported constant or variable used by the authflow client.
	FlowResending
	// FlowCodeRejected is an exported constant or variable used by the authflow client.
	FlowCodeRejected
	// FlowCompleted is an exported constant or variable used by the authflow client.
	FlowCompleted
	// FlowFailed is an exported constant or variable used by the authflow client.
	FlowFailed
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowSubmitting:
		return "submitting"
	case FlowChallengeIssued:
		return "challenge_issued"
	case FlowVerifyingCode:
		return "verifying_code"
	case FlowResending:
		return "resending"
	case FlowCodeRejected:
		return "code_rejected"
	case FlowCompleted:
		return "completed"
	case FlowFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// flowCore holds the state machine shared by the three flow controllers.
// All transitions happen under mu; a transient state (submitting,
// verifying, resending) means a call is in flight and concurrent calls get
// ErrFlowBusy instead of interleaving. A discarded flow refuses every
// operation and never commits to the session store, even when a remote
// call it started earlier comes back successful.
type flowCore struct {
	id     string
	client *Client
	kind   ChallengeKind

	mu        sync.Mutex
	state     FlowState
	challenge *Challenge
	discarded bool
}

func newFlowCore(client *Client, kind ChallengeKind) flowCore {
	return flowCore{
		id:     uuid.NewString(),
		client: client,
		kind:   kind,
		state:  FlowIdle,
	}
}

// ID describes the id operation and its observable behavior.
//
// ID may return an error when input validation, dependency calls, or security checks fail.
// ID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *flowCore) ID() string {
	return f.id
}

// State describes the state operation and its observable behavior.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *flowCore) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Challenge describes the challenge operation and its observable behavior.
//
// Challenge may return an error when input validation, dependency calls, or security checks fail.
// Challenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *flowCore) Challenge() *Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge == nil {
		return nil
	}
	copied := *f.challenge
	return &copied
}

// Discard describes the discard operation and its observable behavior.
//
// Discard may return an error when input validation, dependency calls, or security checks fail.
// Discard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *flowCore) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = true
}

func (s FlowState) transient() bool {
	return s == FlowSubmitting || s == FlowVerifyingCode || s == FlowResending
}

func (f *flowCore) alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.discarded
}

// begin moves the machine into the transient state to, provided the current
// state is one of from. It is the single entry gate for every flow
// operation.
func (f *flowCore) begin(to FlowState, from ...FlowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.discarded {
		return ErrFlowDiscarded
	}
	if f.state.transient() {
		return ErrFlowBusy
	}
	for _, s := range from {
		if f.state == s {
			f.state = to
			return nil
		}
	}
	return ErrFlowState
}

// conclude leaves the transient state. It reports false when the flow was
// discarded mid-call, in which case the caller must not touch the session
// store or the challenge.
func (f *flowCore) conclude(to FlowState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.discarded {
		return false
	}
	f.state = to
	return true
}

func (f *flowCore) setChallenge(correlationToken, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.discarded {
		return
	}
	now := f.client.now()
	f.challenge = &Challenge{
		Kind:              f.kind,
		CorrelationToken:  correlationToken,
		TargetEmail:       email,
		IssuedAt:          now,
		ResendAvailableAt: now.Add(f.client.config.Flow.ResendCooldown),
	}
}

func (f *flowCore) currentChallenge() (Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.challenge == nil {
		return Challenge{}, ErrNoChallenge
	}
	return *f.challenge, nil
}

func (f *flowCore) bumpAttempts() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge != nil {
		f.challenge.Attempts++
	}
}

func (f *flowCore) resetResendWindow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge != nil {
		f.challenge.ResendAvailableAt = f.client.now().Add(f.client.config.Flow.ResendCooldown)
	}
}

// checkResend enforces the cooldown between code deliveries.
func (f *flowCore) checkResend() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.challenge == nil {
		return ErrNoChallenge
	}
	if !f.challenge.ResendAvailable(f.client.now()) {
		return ErrResendCooldown
	}
	return nil
}
