package authflow

import "testing"

func TestRequiredShortCircuits(t *testing.T) {
	msg := GetValidationErrors("Email", "   ", Rules{Required: true, Email: true})
	if msg == nil {
		t.Fatal("expected error for blank required field")
	}
	if *msg != "Email is required" {
		t.Fatalf("expected required message, got %q", *msg)
	}
}

func TestOptionalEmptyValuePasses(t *testing.T) {
	if msg := GetValidationErrors("Phone", "", Rules{Phone: true}); msg != nil {
		t.Fatalf("expected empty optional value to pass, got %q", *msg)
	}
}

func TestEmailValidation(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"alice@example.com", true},
		{"a@b.co", true},
		{"first.last+tag@sub.example.org", true},
		{"no-at-sign", false},
		{"spaces in@example.com", false},
		{"missing@tld", false},
		{"@example.com", false},
	}
	for _, tc := range cases {
		msg := GetValidationErrors("Email", tc.value, Rules{Required: true, Email: true})
		if tc.ok && msg != nil {
			t.Errorf("expected %q to pass, got %q", tc.value, *msg)
		}
		if !tc.ok && msg == nil {
			t.Errorf("expected %q to fail", tc.value)
		}
	}
}

func TestPhoneValidationE164(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"+15550001111", true},
		{"+442071234567", true},
		{"+0123", false},
		{"15550001111", false},
		{"+1 555 000 1111", false},
	}
	for _, tc := range cases {
		msg := GetValidationErrors("Phone", tc.value, Rules{Required: true, Phone: true})
		if tc.ok && msg != nil {
			t.Errorf("expected %q to pass, got %q", tc.value, *msg)
		}
		if !tc.ok && msg == nil {
			t.Errorf("expected %q to fail", tc.value)
		}
	}
}

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"Str0ngPass", true},
		{"aB3xxxxx", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, tc := range cases {
		msg := GetValidationErrors("Password", tc.value, Rules{Required: true, Password: true})
		if tc.ok && msg != nil {
			t.Errorf("expected %q to pass, got %q", tc.value, *msg)
		}
		if !tc.ok && msg == nil {
			t.Errorf("expected %q to fail", tc.value)
		}
	}
}

func TestOTPValidation(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12a456", false},
	}
	for _, tc := range cases {
		msg := GetValidationErrors("OTP", tc.value, Rules{Required: true, OTP: true})
		if tc.ok && msg != nil {
			t.Errorf("expected %q to pass, got %q", tc.value, *msg)
		}
		if !tc.ok && msg == nil {
			t.Errorf("expected %q to fail", tc.value)
		}
	}
}

func TestLengthBounds(t *testing.T) {
	if msg := GetValidationErrors("Name", "a", Rules{Required: true, MinLength: 2}); msg == nil {
		t.Fatal("expected min length violation")
	}
	if msg := GetValidationErrors("Name", "abcdef", Rules{Required: true, MaxLength: 5}); msg == nil {
		t.Fatal("expected max length violation")
	}
	if msg := GetValidationErrors("Name", "abc", Rules{Required: true, MinLength: 2, MaxLength: 5}); msg != nil {
		t.Fatalf("expected in-bounds value to pass, got %q", *msg)
	}
}

func TestMatchRule(t *testing.T) {
	expected := "Str0ngPass"
	if msg := GetValidationErrors("Confirm password", "Str0ngPass", Rules{Required: true, Match: &expected}); msg != nil {
		t.Fatalf("expected matching value to pass, got %q", *msg)
	}
	msg := GetValidationErrors("Confirm password", "Different1", Rules{Required: true, Match: &expected})
	if msg == nil {
		t.Fatal("expected mismatch to fail")
	}
	if *msg != "Passwords do not match" {
		t.Fatalf("unexpected mismatch message %q", *msg)
	}
}

func TestFirstFailingRuleWins(t *testing.T) {
	msg := GetValidationErrors("Email", "not-an-email", Rules{Required: true, Email: true, MinLength: 100})
	if msg == nil || *msg != "Invalid email format" {
		t.Fatalf("expected email rule to fail first, got %v", msg)
	}
}
