/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoKeyField is returned when a record type declares no key field
	ErrNoKeyField = errors.New("no key field found on type")

	// ErrMultipleKeyFields is returned when a record type declares more than one key field
	ErrMultipleKeyFields = errors.New("multiple key fields found on type")

	// ErrMissingIdentity is returned when no actor identity can be resolved for an audited write
	ErrMissingIdentity = errors.New("missing user identity")

	// ErrBackendUnavailable wraps opaque driver failures
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DescriptorError represents a record type whose key markers are misconfigured.
// It is raised at store-construction time, never on the CRUD path.
type DescriptorError struct {
	Type   string
	Reason error // ErrNoKeyField or ErrMultipleKeyFields
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor for type %s: %v", e.Type, e.Reason)
}

func (e *DescriptorError) Is(target error) bool {
	return target == e.Reason
}

// MissingIdentityError reports which identity claim could not be resolved
type MissingIdentityError struct {
	Claim string
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("missing user identity: no %s claim resolvable", e.Claim)
}

func (e *MissingIdentityError) Is(target error) bool {
	return target == ErrMissingIdentity
}

// BackendError wraps a driver-level failure with the operation that hit it
type BackendError struct {
	Operation string
	Err       error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failure during %s: %v", e.Operation, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewDescriptorError creates a new DescriptorError
func NewDescriptorError(typeName string, reason error) error {
	return &DescriptorError{Type: typeName, Reason: reason}
}

// NewMissingIdentityError creates a new MissingIdentityError
func NewMissingIdentityError(claim string) error {
	return &MissingIdentityError{Claim: claim}
}

// NewBackendError creates a new BackendError
func NewBackendError(operation string, err error) error {
	return &BackendError{Operation: operation, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMissingIdentity checks if an error is a missing identity error
func IsMissingIdentity(err error) bool {
	return errors.Is(err, ErrMissingIdentity)
}

// IsBackendUnavailable checks if an error is a wrapped driver failure
func IsBackendUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}
