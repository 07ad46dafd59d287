/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Player", "123")

	// Test error message
	expected := `Player with key "123" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	// Test helper function
	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("Player", "ABC")

	expected := `Player with key "ABC" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "email",
			message:  "invalid format",
			expected: `validation failed for field "email": invalid format`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !errors.Is(err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestDescriptorError(t *testing.T) {
	noKey := NewDescriptorError("Widget", ErrNoKeyField)
	if !errors.Is(noKey, ErrNoKeyField) {
		t.Error("DescriptorError should match its reason sentinel")
	}
	if errors.Is(noKey, ErrMultipleKeyFields) {
		t.Error("DescriptorError should not match an unrelated reason")
	}

	multi := NewDescriptorError("Widget", ErrMultipleKeyFields)
	expected := "descriptor for type Widget: multiple key fields found on type"
	if multi.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, multi.Error())
	}
}

func TestMissingIdentityError(t *testing.T) {
	err := NewMissingIdentityError("sub")

	expected := "missing user identity: no sub claim resolvable"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrMissingIdentity) {
		t.Error("MissingIdentityError should match ErrMissingIdentity")
	}

	if !IsMissingIdentity(err) {
		t.Error("IsMissingIdentity should return true for MissingIdentityError")
	}
}

func TestBackendError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewBackendError("Insert", cause)

	expected := "backend failure during Insert: connection reset"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrBackendUnavailable) {
		t.Error("BackendError should match ErrBackendUnavailable")
	}

	if !errors.Is(err, cause) {
		t.Error("BackendError should unwrap to its cause")
	}

	if !IsBackendUnavailable(err) {
		t.Error("IsBackendUnavailable should return true for BackendError")
	}
}

func TestErrorWrapping(t *testing.T) {
	// Test that wrapped errors still match
	original := NewNotFoundError("Player", "123")
	wrapped := fmt.Errorf("store operation failed: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}
}
