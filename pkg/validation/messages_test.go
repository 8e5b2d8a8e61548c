package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestDefaultMessage(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		tag      string
		param    string
		expected string
	}{
		{
			name:     "Required",
			field:    "Email",
			tag:      "required",
			expected: "email is required",
		},
		{
			name:     "Email format",
			field:    "Email",
			tag:      "email",
			expected: "email must be a valid email address",
		},
		{
			name:     "Minimum length",
			field:    "Password",
			tag:      "min",
			param:    "8",
			expected: "password must be at least 8 characters",
		},
		{
			name:     "One of",
			field:    "Plan",
			tag:      "oneof",
			param:    "FREE PRO ENTERPRISE",
			expected: "plan must be one of: FREE PRO ENTERPRISE",
		},
		{
			name:     "Unknown tag",
			field:    "Slug",
			tag:      "containsany",
			expected: "slug is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultMessage(tt.field, tt.tag, tt.param); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Email", "email"},
		{"FirstName", "first_name"},
		{"RefreshToken", "refresh_token"},
		{"CurrentPassword", "current_password"},
		{"slug", "slug"},
	}

	for _, tt := range tests {
		if got := toSnakeCase(tt.in); got != tt.expected {
			t.Errorf("toSnakeCase(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

func TestFormatBindingError(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	v := validator.New()
	err := v.Struct(payload{Email: "not-an-email", Password: "short"})
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	fields := FormatBindingError(err)
	if len(fields) != 2 {
		t.Fatalf("Expected 2 field errors, got %d: %v", len(fields), fields)
	}
	if fields[0].Field != "email" {
		t.Errorf("Expected field email, got %s", fields[0].Field)
	}
	if fields[1].Field != "password" {
		t.Errorf("Expected field password, got %s", fields[1].Field)
	}
}

func TestFormatBindingErrorNonValidator(t *testing.T) {
	fields := FormatBindingError(errors.New("unexpected EOF"))
	if len(fields) != 1 {
		t.Fatalf("Expected 1 generic entry, got %d", len(fields))
	}
	if fields[0].Field != "body" || fields[0].Message != "malformed request body" {
		t.Errorf("Unexpected generic entry: %+v", fields[0])
	}
}
