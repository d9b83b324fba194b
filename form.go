package authflow

// FormDraft holds a form's candidate field values and their validation
// errors. A field's error is cleared the instant its value changes and is
// only recomputed by [FormDraft.Validate] (on submit or blur), never while
// typing.
//
// FormDraft instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FormDraft struct {
	rules  map[string]Rules
	values map[string]string
	errors map[string]string
}

// NewFormDraft describes the newformdraft operation and its observable behavior.
//
// NewFormDraft may return an error when input validation, dependency calls, or security checks fail.
// NewFormDraft does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewFormDraft(rules map[string]Rules) *FormDraft {
	copied := make(map[string]Rules, len(rules))
	for field, r := range rules {
		copied[field] = r
	}
	return &FormDraft{
		rules:  copied,
		values: map[string]string{},
		errors: map[string]string{},
	}
}

// SetValue records a field edit and clears the field's stale error.
//
// SetValue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *FormDraft) SetValue(field, value string) {
	if d.values[field] == value {
		return
	}
	d.values[field] = value
	delete(d.errors, field)
}

// Value describes the value operation and its observable behavior.
//
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *FormDraft) Value(field string) string {
	return d.values[field]
}

// FieldError describes the fielderror operation and its observable behavior.
//
// FieldError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *FormDraft) FieldError(field string) (string, bool) {
	message, ok := d.errors[field]
	return message, ok
}

// ValidateField recomputes one field's error, as on blur.
//
// ValidateField may return an error when input validation, dependency calls, or security checks fail.
// ValidateField does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *FormDraft) ValidateField(field string) *string {
	rules, ok := d.rules[field]
	if !ok {
		return nil
	}
	result := GetValidationErrors(field, d.values[field], d.withMatchValue(rules))
	if result == nil {
		delete(d.errors, field)
	} else {
		d.errors[field] = *result
	}
	return result
}

// Validate recomputes every field's error, as on submit. A non-empty result
// blocks submission; no network call may be attempted while it is non-empty.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *FormDraft) Validate() FieldErrors {
	failures := FieldErrors{}
	for field := range d.rules {
		if result := d.ValidateField(field); result != nil {
			failures[field] = *result
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return failures
}

// withMatchValue resolves a Match rule that names another field by value at
// validation time, so confirm-password always compares against the current
// password draft.
func (d *FormDraft) withMatchValue(rules Rules) Rules {
	if rules.Match == nil {
		return rules
	}
	if other, ok := d.values[*rules.Match]; ok {
		rules.Match = &other
	}
	return rules
}
