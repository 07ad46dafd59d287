/*
Package errors provides semantic error types for the AuditStore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound          = errors.New("entity not found")
	    ErrAlreadyExists     = errors.New("entity already exists")
	    ErrInvalidInput      = errors.New("invalid input")
	    ErrNoKeyField        = errors.New("no key field found on type")
	    ErrMultipleKeyFields = errors.New("multiple key fields found on type")
	    ErrMissingIdentity   = errors.New("missing user identity")
	    ErrBackendUnavailable = errors.New("backend unavailable")
	)

Usage:

	// Check error type
	player, err := store.Get(ctx, "123", "")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Handle not found case
	        return nil, fmt.Errorf("player %s does not exist", "123")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("Player", "123")
	err := errors.NewValidationError("email", "invalid format")
	err := errors.NewMissingIdentityError("sub")

Descriptor errors (ErrNoKeyField, ErrMultipleKeyFields) are raised when a
store is constructed for a misconfigured record type, so bad markers fail at
startup rather than on the first CRUD call.

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
