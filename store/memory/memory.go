/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides the in-memory reference implementation of
// store.EntityStore. It is the backend used by the test suites and a
// template for driver authors: every contract nuance (existence
// preconditions, timestamp stamping, errorIfMissing deletes) is spelled
// out here without vendor SDK noise.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/suparena/auditstore/descriptor"
	"github.com/suparena/auditstore/errors"
	"github.com/suparena/auditstore/store"
)

// Provider keeps named in-memory collections for one logical "connection".
type Provider struct {
	mu     sync.RWMutex
	stores map[string]any
	clock  func() time.Time
}

// NewProvider creates an empty in-memory Provider.
func NewProvider() *Provider {
	return &Provider{
		stores: make(map[string]any),
		clock:  time.Now,
	}
}

// WithClock overrides the timestamp source, for tests.
func (p *Provider) WithClock(clock func() time.Time) *Provider {
	p.clock = clock
	return p
}

// StoreNames lists the collections currently held by the provider.
func (p *Provider) StoreNames(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.stores))
	for name := range p.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteStore drops the named collection. Dropping an unknown name is a no-op.
func (p *Provider) DeleteStore(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stores, name)
	return nil
}

var _ store.Provider = (*Provider)(nil)

// Store is an in-memory store.EntityStore[T] over one named collection.
type Store[T any] struct {
	provider *Provider
	name     string
	desc     *descriptor.EntityDescriptor

	mu   sync.RWMutex
	data map[string]T
}

// Open binds (or creates) the named collection for type T. The descriptor is
// resolved here so a misconfigured type fails at construction, not first use.
func Open[T any](p *Provider, name string) (*Store[T], error) {
	desc, err := descriptor.For[T]()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.stores[name]; ok {
		s, ok := existing.(*Store[T])
		if !ok {
			return nil, errors.NewValidationError("name",
				fmt.Sprintf("store %q already open for a different type", name))
		}
		return s, nil
	}

	s := &Store[T]{
		provider: p,
		name:     name,
		desc:     desc,
		data:     make(map[string]T),
	}
	p.stores[name] = s
	return s, nil
}

// Name returns the collection name.
func (s *Store[T]) Name() string { return s.name }

// Descriptor returns the resolved metadata for T.
func (s *Store[T]) Descriptor() *descriptor.EntityDescriptor { return s.desc }

func compositeKey(key, partitionKey string) string {
	return partitionKey + "|" + key
}

func (s *Store[T]) identity(entity *T) (string, error) {
	key, err := s.desc.Key(entity)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.NewValidationError(s.desc.KeyField, "empty key")
	}
	pk, err := s.desc.PartitionKey(entity)
	if err != nil {
		return "", err
	}
	return compositeKey(key, pk), nil
}

// Exists reports whether the identity is present.
func (s *Store[T]) Exists(ctx context.Context, key, partitionKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[compositeKey(key, partitionKey)]
	return ok, nil
}

// Get returns a copy of the stored record, or errors.ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, key, partitionKey string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.data[compositeKey(key, partitionKey)]
	if !ok {
		return nil, errors.NewNotFoundError(s.desc.TypeName, key)
	}
	return &entity, nil
}

// List returns the stored records; when since is non-nil only records whose
// timestamp field is strictly greater are returned. Order follows map
// iteration, matching the contract's "backend-native order" clause.
func (s *Store[T]) List(ctx context.Context, since *time.Time) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.data))
	for _, entity := range s.data {
		if since != nil && s.desc.HasTimestamp() {
			ts, err := s.desc.Timestamp(&entity)
			if err != nil {
				return nil, err
			}
			if !ts.After(*since) {
				continue
			}
		}
		out = append(out, entity)
	}
	return out, nil
}

// Insert stores a new record, stamping its timestamp field.
func (s *Store[T]) Insert(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ck, err := s.identity(entity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[ck]; exists {
		key, _ := s.desc.Key(entity)
		return errors.NewAlreadyExistsError(s.desc.TypeName, key)
	}
	if err := s.desc.StampTimestamp(entity, s.provider.clock()); err != nil {
		return err
	}
	s.data[ck] = *entity
	return nil
}

// Update replaces an existing record, stamping its timestamp field. It never
// creates.
func (s *Store[T]) Update(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ck, err := s.identity(entity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[ck]; !exists {
		key, _ := s.desc.Key(entity)
		return errors.NewNotFoundError(s.desc.TypeName, key)
	}
	if err := s.desc.StampTimestamp(entity, s.provider.clock()); err != nil {
		return err
	}
	s.data[ck] = *entity
	return nil
}

// Upsert creates or replaces with no existence precondition.
func (s *Store[T]) Upsert(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ck, err := s.identity(entity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.desc.StampTimestamp(entity, s.provider.clock()); err != nil {
		return err
	}
	s.data[ck] = *entity
	return nil
}

// BulkUpsert upserts each entity in turn. The batch is not atomic; the first
// failure stops processing and is returned.
func (s *Store[T]) BulkUpsert(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		if err := s.Upsert(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record. A missing record errors only when errorIfMissing
// is set.
func (s *Store[T]) Delete(ctx context.Context, key, partitionKey string, errorIfMissing bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ck := compositeKey(key, partitionKey)
	if _, exists := s.data[ck]; !exists {
		if errorIfMissing {
			return errors.NewNotFoundError(s.desc.TypeName, key)
		}
		return nil
	}
	delete(s.data, ck)
	return nil
}

// DeleteStore drops the whole collection and detaches it from the provider.
func (s *Store[T]) DeleteStore(ctx context.Context) error {
	s.mu.Lock()
	s.data = make(map[string]T)
	s.mu.Unlock()
	return s.provider.DeleteStore(ctx, s.name)
}

// Count returns the number of stored records, for tests.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
