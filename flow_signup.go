package authflow

import (
	"context"
	"errors"
	"strings"
)

// SignupFlow drives the registration sequence: submit the role-specific
// profile, then verify the emailed code. Completion leaves no session
// behind; the user signs in through a [LoginFlow] afterwards.
//
// SignupFlow instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupFlow struct {
	flowCore
	role  Role
	email string
}

// NewSignupFlow describes the newsignupflow operation and its observable behavior.
//
// NewSignupFlow may return an error when input validation, dependency calls, or security checks fail.
// NewSignupFlow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) NewSignupFlow(role Role) (*SignupFlow, error) {
	if !role.SignupAllowed() {
		return nil, ErrRoleInvalid
	}
	return &SignupFlow{
		flowCore: newFlowCore(c, ChallengeSignup),
		role:     role,
	}, nil
}

// Role describes the role operation and its observable behavior.
//
// Role may return an error when input validation, dependency calls, or security checks fail.
// Role does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *SignupFlow) Role() Role {
	return f.role
}

// Submit describes the submit operation and its observable behavior.
//
// Submit may return an error when input validation, dependency calls, or security checks fail.
// Submit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *SignupFlow) Submit(ctx context.Context, input SignupInput) (*RegisterAck, error) {
	if errs := validateSignup(f.role, input); len(errs) > 0 {
		f.client.metricInc(MetricValidationFailure)
		return nil, errs
	}

	if err := f.begin(FlowSubmitting, FlowIdle, FlowFailed); err != nil {
		return nil, err
	}

	email := strings.ToLower(input.Email)
	start := f.client.now()
	ack, err := f.client.remote.Register(ctx, f.role, input)
	f.client.observeRemote(start)
	if err != nil {
		if !f.conclude(FlowFailed) {
			return nil, ErrFlowDiscarded
		}
		f.client.metricInc(MetricSignupFailure)
		if errors.Is(err, ErrRemoteUnavailable) {
			f.client.metricInc(MetricRemoteUnavailable)
		}
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventSignup,
			FlowID:    f.id,
			Email:     email,
			Error:     err.Error(),
			Metadata:  map[string]string{"role": string(f.role)},
		})
		return nil, err
	}

	f.email = email
	f.setChallenge(ack.UserID, email)

	// The registration itself never delivers the code; that is a second
	// call. A failed delivery still leaves the challenge in place so the
	// user can retry through Resend, with the cooldown waived because no
	// code went out.
	sendErr := f.client.remote.SendSignupCode(ctx, email)
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
	f.client.metricInc(MetricSignupSuccess)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventSignup,
		FlowID:    f.id,
		UserID:    ack.UserID,
		Email:     email,
		Success:   true,
		Metadata:  map[string]string{"role": string(f.role)},
	})
	return ack, sendErr
}

// VerifyCode describes the verifycode operation and its observable behavior.
//
// VerifyCode may return an error when input validation, dependency calls, or security checks fail.
// VerifyCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *SignupFlow) VerifyCode(ctx context.Context, code string) error {
	if msg := GetValidationErrors("OTP", code, Rules{Required: true, OTP: true}); msg != nil {
		f.client.metricInc(MetricValidationFailure)
		return FieldErrors{"otp": *msg}
	}

	if err := f.begin(FlowVerifyingCode, FlowChallengeIssued, FlowCodeRejected); err != nil {
		return err
	}
	challenge, err := f.currentChallenge()
	if err != nil {
		f.conclude(FlowFailed)
		return err
	}
	f.bumpAttempts()

	start := f.client.now()
	err = f.client.remote.VerifySignupCode(ctx, challenge.CorrelationToken, code)
	f.client.observeRemote(start)
	if err != nil {
		if errors.Is(err, ErrRemoteRejected) {
			if !f.conclude(FlowCodeRejected) {
				return ErrFlowDiscarded
			}
			f.client.metricInc(MetricSignupCodeRejected)
		} else {
			if !f.conclude(FlowChallengeIssued) {
				return ErrFlowDiscarded
			}
			f.client.metricInc(MetricRemoteUnavailable)
		}
		f.client.emitAudit(ctx, AuditEvent{
			EventType: auditEventSignupVerify,
			FlowID:    f.id,
			UserID:    challenge.CorrelationToken,
			Email:     challenge.TargetEmail,
			Error:     err.Error(),
		})
		return err
	}

	if !f.conclude(FlowCompleted) {
		return ErrFlowDiscarded
	}
	f.client.metricInc(MetricSignupVerified)
	f.client.emitAudit(ctx, AuditEvent{
		EventType: auditEventSignupVerify,
		FlowID:    f.id,
		UserID:    challenge.CorrelationToken,
		Email:     challenge.TargetEmail,
		Success:   true,
	})
	return nil
}

// Resend describes the resend operation and its observable behavior.
//
// Resend may return an error when input validation, dependency calls, or security checks fail.
// Resend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *SignupFlow) Resend(ctx context.Context) error {
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
	err := f.client.remote.SendSignupCode(ctx, f.email)
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

func validateSignup(role Role, input SignupInput) FieldErrors {
	errs := FieldErrors{}

	check := func(key, label, value string, rules Rules) {
		if msg := GetValidationErrors(label, value, rules); msg != nil {
			errs[key] = *msg
		}
	}

	check("full_name", "Full name", input.FullName, Rules{Required: true, MinLength: 2})
	check("email", "Email", input.Email, Rules{Required: true, Email: true})
	check("phone", "Phone", input.Phone, Rules{Required: true, Phone: true})
	check("password", "Password", input.Password, Rules{Required: true, Password: true})
	check("confirm_password", "Confirm password", input.ConfirmPassword, Rules{Required: true, Match: &input.Password})

	switch role {
	case RolePatient:
		check("date_of_birth", "Date of birth", input.DateOfBirth, Rules{Required: true})
		check("gender", "Gender", input.Gender, Rules{Required: true})
	case RoleDoctor:
		check("license_number", "License number", input.LicenseNumber, Rules{Required: true})
		check("specialization", "Specialization", input.Specialization, Rules{Required: true})
	case RoleResearcher:
		check("institution", "Institution", input.Institution, Rules{Required: true})
		check("research_area", "Research area", input.ResearchArea, Rules{Required: true})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
