package authflow

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
)

// Rules declares which validation checks apply to a field. Evaluation order
// is fixed: Required short-circuits, then Email, Phone, Password, OTP,
// MinLength, MaxLength, Match. The first failing rule's message wins.
//
// Rules instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Rules struct {
	Required bool
	Email    bool
	Phone    bool
	Password bool
	OTP      bool

	MinLength int
	MaxLength int

	// Match holds the comparison value for exact-equality checks
	// (confirm-password). Nil means the rule is not requested.
	Match *string
}

// GetValidationErrors evaluates the requested rules against a field value
// and returns the first failing rule's message, or nil when the value
// passes. An empty optional value passes every rule except Match.
//
// GetValidationErrors does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func GetValidationErrors(field, value string, rules Rules) *string {
	trimmed := strings.TrimSpace(value)

	if rules.Required && trimmed == "" {
		return msg(fmt.Sprintf("%s is required", field))
	}
	if trimmed == "" {
		if rules.Match != nil && value != *rules.Match {
			return msg("Passwords do not match")
		}
		return nil
	}

	if rules.Email && !emailPattern.MatchString(value) {
		return msg("Invalid email format")
	}
	if rules.Phone && !phonePattern.MatchString(value) {
		return msg("Invalid phone number format (use E.164 format)")
	}
	if rules.Password {
		if failed := passwordStrength(value); failed != "" {
			return msg(failed)
		}
	}
	if rules.OTP && !otpPattern.MatchString(value) {
		return msg("OTP must be exactly 6 digits")
	}
	if rules.MinLength > 0 && len(value) < rules.MinLength {
		return msg(fmt.Sprintf("%s must be at least %d characters", field, rules.MinLength))
	}
	if rules.MaxLength > 0 && len(value) > rules.MaxLength {
		return msg(fmt.Sprintf("%s must be at most %d characters", field, rules.MaxLength))
	}
	if rules.Match != nil && value != *rules.Match {
		return msg("Passwords do not match")
	}
	return nil
}

// passwordStrength mirrors the service's policy: at least 8 characters with
// one lowercase letter, one uppercase letter, and one digit. No symbol
// requirement.
func passwordStrength(value string) string {
	const message = "Password must be at least 8 characters with uppercase, lowercase, and a number"
	if len(value) < 8 {
		return message
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return message
	}
	return ""
}

func msg(text string) *string {
	return &text
}
