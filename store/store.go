/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"context"
	"time"
)

// EntityStore is the capability contract every backend implements for one
// named collection of T. Identity of a record is (key, partitionKey); the
// partition key is "" for types that declare none.
//
// Backends stamp the type's timestamp field (when declared) on every write.
// Beyond stamped fields, stores never alter caller-set business fields.
type EntityStore[T any] interface {
	// Exists reports whether a record with the given identity is present.
	Exists(ctx context.Context, key, partitionKey string) (bool, error)

	// Get returns the record, or errors.ErrNotFound.
	Get(ctx context.Context, key, partitionKey string) (*T, error)

	// List returns records in backend-native order. When since is non-nil,
	// only records whose timestamp field is strictly greater are returned.
	List(ctx context.Context, since *time.Time) ([]T, error)

	// Insert stores a new record; errors.ErrAlreadyExists when the identity
	// is already present.
	Insert(ctx context.Context, entity *T) error

	// Update replaces an existing record; errors.ErrNotFound when absent.
	// Update never creates.
	Update(ctx context.Context, entity *T) error

	// Upsert creates or replaces, with no existence precondition.
	Upsert(ctx context.Context, entity *T) error

	// BulkUpsert is a best-effort batched upsert. Atomicity across the batch
	// is backend-specific.
	BulkUpsert(ctx context.Context, entities []*T) error

	// Delete removes the record. When errorIfMissing is set and the record
	// is absent, errors.ErrNotFound is returned; otherwise a missing record
	// is a no-op.
	Delete(ctx context.Context, key, partitionKey string, errorIfMissing bool) error

	// DeleteStore destroys the whole collection.
	DeleteStore(ctx context.Context) error

	// Name returns the collection name this store is bound to.
	Name() string
}

// Provider manages stores at collection granularity for one backend
// connection.
type Provider interface {
	// StoreNames lists the collections reachable through this provider.
	StoreNames(ctx context.Context) ([]string, error)

	// DeleteStore destroys the named collection.
	DeleteStore(ctx context.Context, name string) error
}
