package authflow

import (
	"context"
	"errors"
	"strings"
)

// LoginFlow drives credential sign-in, including the optional second
// factor. A direct login commits the session immediately; when the remote
// service demands a code, the flow parks in FlowChallengeIssued holding the
// temporary token and commits only after VerifyCode succeeds.
//
// LoginFlow instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginFlow struct {
	flowCore
	email string
}

// NewLoginFlow describes the newloginflow operation and its observable behavior.
//
// NewLoginFlow may return an error when input validation, dependency calls, or security checks fail.
// NewLoginFlow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) NewLoginFlow() *LoginFlow {
	return &LoginFlow{
		flowCore: newFlowCore(c, ChallengeLogin2FA),
	}
}

// Submit describes the submit operation and its observable behavior.
//
// Submit may return an error when input validation, dependency calls, or security checks fail.
// Submit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *LoginFlow) Submit(ctx context.Context, email, password string) (*LoginResult, error) {
	errs := FieldErrors{}
	if msg := GetValidationErrors("Email", email, Rules{Required: true, Email: true}); msg != nil {
		errs["email"] = *msg
	}
	if msg := GetValidationErrors("Password", password, Rules{Required: true}); msg != nil {
		errs["password"] = *msg
	}
	if len(errs) > 0 {
		f.client.metricInc(MetricValidationFailure)
		return nil, errs
	}

	if err := f.begin(FlowSubmitting, FlowIdle, FlowFailed); err != nil {
		return nil, err
	}

	lowered := strings.ToLower(email)
	start := f.client.now()
	outcome, err := f.client.remote.Login(ctx, lowered, password)
	f.client.observeRemote(start)
	if err != nil {
		if !f.conclude(FlowFailed) {
			return nil, ErrFlowDiscarded
		}
		f.client.metricInc(MetricLoginFailure)
		if errors.Is(err, ErrRemoteUnavailable) {
			f.client.metricInc(MetricRemoteUnavailable)
		}
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogin,
			FlowID:    f.id,
			Email:     lowered,
			Error:     err.Error(),
		})
		return nil, err
	}

	if outcome.RequiresOTP {
		f.email = lowered
		f.setChallenge(outcome.TempToken, lowered)

		// Code delivery is a separate call. If it fails the challenge
		// stays usable and the cooldown is waived so Resend works
		// immediately.
		sendErr := f.client.remote.SendLoginCode(ctx, outcome.TempToken)
		if sendErr != nil {
			f.mu.Lock()
			if f.challenge != nil {
				f.challenge.ResendAvailableAt = f.client.now()
			}
			f.mu.Unlock()
		}

		if !f.conclude(FlowChallengeIssued) {
			return nil, ErrFlowDiscarded
		}
		f.client.metricInc(MetricLoginOTPRequired)
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogin,
			FlowID:    f.id,
			Email:     lowered,
			Success:   true,
			Metadata:  map[string]string{"requires_otp": "true"},
		})
		return &LoginResult{
			OTPRequired: true,
			Challenge:   f.Challenge(),
		}, sendErr
	}

	if !f.alive() {
		return nil, ErrFlowDiscarded
	}
	sess, err := f.client.sessions.Commit(ctx, *outcome.User, outcome.Tokens)
	if err != nil {
		f.conclude(FlowFailed)
		return nil, err
	}
	if !f.conclude(FlowCompleted) {
		return nil, ErrFlowDiscarded
	}
	f.client.metricInc(MetricLoginSuccess)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventLogin,
		FlowID:    f.id,
		UserID:    outcome.User.ID,
		Email:     lowered,
		Success:   true,
	})
	return &LoginResult{Session: sess}, nil
}

// VerifyCode describes the verifycode operation and its observable behavior.
//
// VerifyCode may return an error when input validation, dependency calls, or security checks fail.
// VerifyCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *LoginFlow) VerifyCode(ctx context.Context, code string) (*Session, error) {
	if msg := GetValidationErrors("OTP", code, Rules{Required: true, OTP: true}); msg != nil {
		f.client.metricInc(MetricValidationFailure)
		return nil, FieldErrors{"otp": *msg}
	}

	if err := f.begin(FlowVerifyingCode, FlowChallengeIssued, FlowCodeRejected); err != nil {
		return nil, err
	}
	challenge, err := f.currentChallenge()
	if err != nil {
		f.conclude(FlowFailed)
		return nil, err
	}
	f.bumpAttempts()

	start := f.client.now()
	outcome, err := f.client.remote.VerifyLoginCode(ctx, challenge.CorrelationToken, code)
	f.client.observeRemote(start)
	if err != nil {
		if errors.Is(err, ErrRemoteRejected) {
			if !f.conclude(FlowCodeRejected) {
				return nil, ErrFlowDiscarded
			}
			f.client.metricInc(MetricLoginOTPFailure)
		} else {
			if !f.conclude(FlowChallengeIssued) {
				return nil, ErrFlowDiscarded
			}
			f.client.metricInc(MetricRemoteUnavailable)
		}
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventLoginOTP,
			FlowID:    f.id,
			Email:     challenge.TargetEmail,
			Error:     err.Error(),
		})
		return nil, err
	}
	if outcome.User == nil {
		f.conclude(FlowChallengeIssued)
		f.client.metricInc(MetricRemoteUnavailable)
		return nil, newRemoteUnavailable(0, "authentication service returned an incomplete login response")
	}

	if !f.alive() {
		return nil, ErrFlowDiscarded
	}
	sess, err := f.client.sessions.Commit(ctx, *outcome.User, outcome.Tokens)
	if err != nil {
		f.conclude(FlowFailed)
		return nil, err
	}
	if !f.conclude(FlowCompleted) {
		return nil, ErrFlowDiscarded
	}
	f.client.metricInc(MetricLoginOTPSuccess)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventLoginOTP,
		FlowID:    f.id,
		UserID:    outcome.User.ID,
		Email:     challenge.TargetEmail,
		Success:   true,
	})
	return sess, nil
}

// Resend describes the resend operation and its observable behavior.
//
// Resend may return an error when input validation, dependency calls, or security checks fail.
// Resend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *LoginFlow) Resend(ctx context.Context) error {
	if err := f.checkResend(); err != nil {
		if errors.Is(err, ErrResendCooldown) {
			f.client.metricInc(MetricResendThrottled)
		}
		return err
	}
	if err := f.begin(FlowResending, FlowChallengeIssued, FlowCodeRejected); err != nil {
		return err
	}
	challenge, err := f.currentChallenge()
	if err != nil {
		f.conclude(FlowFailed)
		return err
	}

	start := f.client.now()
	err = f.client.remote.SendLoginCode(ctx, challenge.CorrelationToken)
	f.client.observeRemote(start)
	if !f.conclude(FlowChallengeIssued) {
		return ErrFlowDiscarded
	}
	if err != nil {
		if errors.Is(err, ErrRemoteUnavailable) {
			f.client.metricInc(MetricRemoteUnavailable)
		}
		return err
	}

	f.resetResendWindow()
	f.client.metricInc(MetricCodeResent)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventCodeResend,
		FlowID:    f.id,
		Email:     challenge.TargetEmail,
		Success:   true,
		Metadata:  map[string]string{"kind": f.kind.String()},
	})
	return nil
}
