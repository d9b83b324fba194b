package authflow

import (
	"context"
	"errors"
	"strings"
)

// PasswordResetFlow drives the forgot-password sequence. The remote service
// acknowledges every reset request regardless of whether the address is
// known, so SubmitEmail always issues a challenge; the reset code itself is
// the correlation, which is why the challenge carries no token.
//
// PasswordResetFlow instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordResetFlow struct {
	flowCore
	email string
}

// NewPasswordResetFlow describes the newpasswordresetflow operation and its observable behavior.
//
// NewPasswordResetFlow may return an error when input validation, dependency calls, or security checks fail.
// NewPasswordResetFlow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) NewPasswordResetFlow() *PasswordResetFlow {
	return &PasswordResetFlow{
		flowCore: newFlowCore(c, ChallengePasswordReset),
	}
}

// SubmitEmail describes the submitemail operation and its observable behavior.
//
// SubmitEmail may return an error when input validation, dependency calls, or security checks fail.
// SubmitEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *PasswordResetFlow) SubmitEmail(ctx context.Context, email string) error {
	if msg := GetValidationErrors("Email", email, Rules{Required: true, Email: true}); msg != nil {
		f.client.metricInc(MetricValidationFailure)
		return FieldErrors{"email": *msg}
	}

	if err := f.begin(FlowSubmitting, FlowIdle, FlowFailed); err != nil {
		return err
	}

	lowered := strings.ToLower(email)
	start := f.client.now()
	err := f.client.remote.RequestPasswordReset(ctx, lowered)
	f.client.observeRemote(start)
	if err != nil {
		if !f.conclude(FlowFailed) {
			return ErrFlowDiscarded
		}
		if errors.Is(err, ErrRemoteUnavailable) {
			f.client.metricInc(MetricRemoteUnavailable)
		}
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventResetRequest,
			FlowID:    f.id,
			Email:     lowered,
			Error:     err.Error(),
		})
		return err
	}

	f.email = lowered
	f.setChallenge("", lowered)
	if !f.conclude(FlowChallengeIssued) {
		return ErrFlowDiscarded
	}
	f.client.metricInc(MetricResetRequested)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventResetRequest,
		FlowID:    f.id,
		Email:     lowered,
		Success:   true,
	})
	return nil
}

// Confirm describes the confirm operation and its observable behavior.
//
// Confirm may return an error when input validation, dependency calls, or security checks fail.
// Confirm does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *PasswordResetFlow) Confirm(ctx context.Context, code, newPassword, confirmPassword string) error {
	errs := FieldErrors{}
	if msg := GetValidationErrors("OTP", code, Rules{Required: true, OTP: true}); msg != nil {
		errs["otp"] = *msg
	}
	if msg := GetValidationErrors("New password", newPassword, Rules{Required: true, Password: true}); msg != nil {
		errs["new_password"] = *msg
	}
	if msg := GetValidationErrors("Confirm password", confirmPassword, Rules{Required: true, Match: &newPassword}); msg != nil {
		errs["confirm_password"] = *msg
	}
	if len(errs) > 0 {
		f.client.metricInc(MetricValidationFailure)
		return errs
	}

	if err := f.begin(FlowVerifyingCode, FlowChallengeIssued, FlowCodeRejected); err != nil {
		return err
	}
	f.bumpAttempts()

	start := f.client.now()
	err := f.client.remote.ConfirmPasswordReset(ctx, code, newPassword, confirmPassword)
	f.client.observeRemote(start)
	if err != nil {
		if errors.Is(err, ErrRemoteRejected) {
			if !f.conclude(FlowCodeRejected) {
				return ErrFlowDiscarded
			}
			f.client.metricInc(MetricResetRejected)
		} else {
			if !f.conclude(FlowChallengeIssued) {
				return ErrFlowDiscarded
			}
			f.client.metricInc(MetricRemoteUnavailable)
		}
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventResetConfirm,
			FlowID:    f.id,
			Email:     f.email,
			Error:     err.Error(),
		})
		return err
	}

	if !f.conclude(FlowCompleted) {
		return ErrFlowDiscarded
	}
	f.client.metricInc(MetricResetConfirmed)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventResetConfirm,
		FlowID:    f.id,
		Email:     f.email,
		Success:   true,
	})
	return nil
}

// Resend describes the resend operation and its observable behavior.
//
// Resend may return an error when input validation, dependency calls, or security checks fail.
// Resend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *PasswordResetFlow) Resend(ctx context.Context) error {
	if err := f.checkResend(); err != nil {
		if errors.Is(err, ErrResendCooldown) {
			f.client.metricInc(MetricResendThrottled)
		}
		return err
	}
	if err := f.begin(FlowResending, FlowChallengeIssued, FlowCodeRejected); err != nil {
		return err
	}

	start := f.client.now()
	err := f.client.remote.RequestPasswordReset(ctx, f.email)
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
		Email:     f.email,
		Success:   true,
		Metadata:  map[string]string{"kind": f.kind.String()},
	})
	return nil
}
