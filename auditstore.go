/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package auditstore

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/suparena/auditstore/store"
)

// TypedRegistry tracks the opened EntityStore instances for one record type,
// keyed by store name. Services register stores at bootstrap and look them
// up by name afterwards, so wiring stays in one place.
type TypedRegistry[T any] struct {
	mu     sync.RWMutex
	stores map[string]store.EntityStore[T]
}

// NewTypedRegistry creates an empty registry for type T.
func NewTypedRegistry[T any]() *TypedRegistry[T] {
	return &TypedRegistry[T]{
		stores: make(map[string]store.EntityStore[T]),
	}
}

// Register adds a store under the given name.
func (r *TypedRegistry[T]) Register(name string, s store.EntityStore[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("store with name %q already registered", name)
	}

	r.stores[name] = s
	return nil
}

// Get retrieves a store by name.
func (r *TypedRegistry[T]) Get(name string) (store.EntityStore[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.stores[name]
	if !exists {
		return nil, fmt.Errorf("store with name %q not found", name)
	}

	return s, nil
}

// Remove drops a store from the registry by name. The store itself is not
// touched.
func (r *TypedRegistry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; !exists {
		return fmt.Errorf("store with name %q not found", name)
	}

	delete(r.stores, name)
	return nil
}

// List returns all registered store names.
func (r *TypedRegistry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	return names
}

// Registry manages TypedRegistry instances across record types.
type Registry struct {
	mu    sync.RWMutex
	typed map[reflect.Type]interface{}
}

// NewRegistry creates a new multi-type Registry.
func NewRegistry() *Registry {
	return &Registry{
		typed: make(map[reflect.Type]interface{}),
	}
}

// TypedFor returns the TypedRegistry for the given type, creating it if
// necessary.
func TypedFor[T any](r *Registry) *TypedRegistry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	typ := reflect.TypeOf(zero)

	if typed, exists := r.typed[typ]; exists {
		return typed.(*TypedRegistry[T])
	}

	typed := NewTypedRegistry[T]()
	r.typed[typ] = typed
	return typed
}

// RegisterStore is a convenience function to register a store for type T.
func RegisterStore[T any](r *Registry, name string, s store.EntityStore[T]) error {
	return TypedFor[T](r).Register(name, s)
}

// GetStore is a convenience function to get a store for type T.
func GetStore[T any](r *Registry, name string) (store.EntityStore[T], error) {
	return TypedFor[T](r).Get(name)
}

// RemoveStore is a convenience function to remove a store for type T.
func RemoveStore[T any](r *Registry, name string) error {
	return TypedFor[T](r).Remove(name)
}

// ListStores is a convenience function to list all store names for type T.
func ListStores[T any](r *Registry) []string {
	return TypedFor[T](r).List()
}
