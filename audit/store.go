/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/suparena/auditstore/descriptor"
	"github.com/suparena/auditstore/errors"
	"github.com/suparena/auditstore/identity"
	"github.com/suparena/auditstore/store"
)

// Backend opens the companion stores that back one audited store's ledger
// and actor directory. Each storage driver supplies its own Backend so the
// companions land next to the root data.
type Backend struct {
	OpenEvents func(name string) (store.EntityStore[Event], error)
	OpenUsers  func(name string) (store.EntityStore[User], error)
}

// Store decorates any store.EntityStore[T] so that every create, update,
// upsert and delete first appends exactly one Event to the ledger, attributed
// to the principal on the context. The ledger write strictly precedes the
// root write: a failed root write can leave an orphan event, but no root
// mutation ever happens without its event.
//
// Writers to the same (key, partitionKey) are serialized in process, so the
// read-revision / append-event / write-root sequence cannot interleave and
// produce duplicate event ids. Cross-process writers still rely on the
// backend's own concurrency token.
type Store[T any] struct {
	base    store.EntityStore[T]
	desc    *descriptor.EntityDescriptor
	backend Backend
	audited bool

	initMu sync.Mutex
	events store.EntityStore[Event]
	users  store.EntityStore[User]

	actorMu sync.Mutex
	actors  map[string]User // subject id -> last state written to the directory

	locks keyedLocks
}

// operation is the caller-requested mutation, before classification.
type operation int

const (
	opInsert operation = iota
	opUpdate
	opUpsert
	opDelete
)

// New wraps base with audit recording. The wrap is transparent for types that
// do not embed Trail: such stores delegate every call unchanged.
func New[T any](base store.EntityStore[T], backend Backend) (*Store[T], error) {
	desc, err := descriptor.For[T]()
	if err != nil {
		return nil, err
	}

	var probe T
	_, audited := any(&probe).(Auditable)

	return &Store[T]{
		base:    base,
		desc:    desc,
		backend: backend,
		audited: audited,
		actors:  make(map[string]User),
	}, nil
}

// Audited reports whether T is marked for auditing.
func (s *Store[T]) Audited() bool { return s.audited }

// Name returns the wrapped store's collection name.
func (s *Store[T]) Name() string { return s.base.Name() }

// Exists delegates to the wrapped store.
func (s *Store[T]) Exists(ctx context.Context, key, partitionKey string) (bool, error) {
	return s.base.Exists(ctx, key, partitionKey)
}

// Get delegates to the wrapped store. Logically deleted records are still
// returned, with their Deleted state set.
func (s *Store[T]) Get(ctx context.Context, key, partitionKey string) (*T, error) {
	return s.base.Get(ctx, key, partitionKey)
}

// List delegates to the wrapped store.
func (s *Store[T]) List(ctx context.Context, since *time.Time) ([]T, error) {
	return s.base.List(ctx, since)
}

// DeleteStore destroys the wrapped collection. The ledger and actor directory
// are left intact: audit history outlives the data it describes.
func (s *Store[T]) DeleteStore(ctx context.Context) error {
	return s.base.DeleteStore(ctx)
}

// Insert records a Created event, stamps the trail and inserts into the
// wrapped store. Inserting an existing identity fails with
// errors.ErrAlreadyExists before anything is written to the ledger.
func (s *Store[T]) Insert(ctx context.Context, entity *T) error {
	if !s.audited {
		return s.base.Insert(ctx, entity)
	}
	return s.mutate(ctx, opInsert, entity)
}

// Update records an Updated event and updates the wrapped store. When the
// identity does not exist yet the operation is reclassified as Created and
// the record is written anyway, favoring availability over strict signaling
// for this one ambiguous case.
func (s *Store[T]) Update(ctx context.Context, entity *T) error {
	if !s.audited {
		return s.base.Update(ctx, entity)
	}
	return s.mutate(ctx, opUpdate, entity)
}

// Upsert records a Created or Updated event depending on current existence,
// then upserts into the wrapped store.
func (s *Store[T]) Upsert(ctx context.Context, entity *T) error {
	if !s.audited {
		return s.base.Upsert(ctx, entity)
	}
	return s.mutate(ctx, opUpsert, entity)
}

// BulkUpsert upserts each entity through the audited path, one event per
// record. The batch is not atomic; the first failure stops processing.
func (s *Store[T]) BulkUpsert(ctx context.Context, entities []*T) error {
	if !s.audited {
		return s.base.BulkUpsert(ctx, entities)
	}
	for _, entity := range entities {
		if err := s.mutate(ctx, opUpsert, entity); err != nil {
			return err
		}
	}
	return nil
}

// Delete logically deletes an audited record: it records a Deleted event and
// upserts the tombstoned record into the wrapped store, which keeps it
// retrievable by key. Deleting a missing identity is a no-op unless
// errorIfMissing is set.
func (s *Store[T]) Delete(ctx context.Context, key, partitionKey string, errorIfMissing bool) error {
	if !s.audited {
		return s.base.Delete(ctx, key, partitionKey, errorIfMissing)
	}

	unlock := s.locks.lock(compositeLockKey(s.base.Name(), key, partitionKey))
	defer unlock()

	existing, err := s.base.Get(ctx, key, partitionKey)
	if err != nil {
		if errors.IsNotFound(err) {
			if errorIfMissing {
				return err
			}
			return nil
		}
		return err
	}
	return s.mutateLocked(ctx, opDelete, existing)
}

// mutate runs the audited write sequence under the per-identity lock.
func (s *Store[T]) mutate(ctx context.Context, op operation, entity *T) error {
	key, err := s.desc.Key(entity)
	if err != nil {
		return err
	}
	partitionKey, err := s.desc.PartitionKey(entity)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(compositeLockKey(s.base.Name(), key, partitionKey))
	defer unlock()

	return s.mutateLocked(ctx, op, entity)
}

// mutateLocked is the audited state machine: ensure companions and actor,
// classify the event, compute the post-write revision, append the event,
// stamp the trail, then delegate to the wrapped store. Any failure before
// the event insert leaves both stores untouched; a failure after it leaves
// an orphan event, which Reconcile can surface.
func (s *Store[T]) mutateLocked(ctx context.Context, op operation, entity *T) error {
	if err := s.ensureStores(); err != nil {
		return err
	}
	actor, err := s.ensureActor(ctx)
	if err != nil {
		return err
	}

	key, err := s.desc.Key(entity)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.NewValidationError(s.desc.KeyField, "empty key")
	}
	partitionKey, err := s.desc.PartitionKey(entity)
	if err != nil {
		return err
	}
	ref := entityRef(key, partitionKey)

	existing, err := s.base.Get(ctx, key, partitionKey)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	exists := existing != nil

	if op == opInsert && exists {
		// Fail closed before the ledger write; no orphan event for a
		// write that cannot possibly commit.
		return errors.NewAlreadyExistsError(s.desc.TypeName, key)
	}

	eventType := classify(op, exists)
	var currentRevision int64
	var existingTrail *Trail
	if exists {
		existingTrail = any(existing).(Auditable).AuditTrail()
		currentRevision = existingTrail.Revision
	}
	newRevision := currentRevision + 1

	event := &Event{
		ID:       eventID(ref, newRevision),
		EntityID: ref,
		Revision: newRevision,
		Type:     eventType,
		UserID:   actor.ID,
		Username: actor.Username,
		TraceID:  identity.EnsureTraceID(ctx),
	}
	if err := s.events.Insert(ctx, event); err != nil {
		return err
	}

	trail := any(entity).(Auditable).AuditTrail()
	trail.Revision = newRevision
	trail.LastUpdateEventID = event.ID
	switch eventType {
	case EventCreated:
		trail.CreateEventID = event.ID
		trail.Deleted = nil
	case EventUpdated:
		// Provenance survives updates even when the caller passed a fresh
		// value with an empty trail.
		trail.CreateEventID = existingTrail.CreateEventID
		trail.Deleted = nil
	case EventDeleted:
		trail.CreateEventID = existingTrail.CreateEventID
		trail.Deleted = &Deletion{At: time.Now().UTC(), EventID: event.ID}
	}

	return s.delegate(ctx, op, eventType, entity)
}

// classify maps the requested operation and current existence to the event
// type. Update on a missing record becomes Created rather than an error.
func classify(op operation, exists bool) EventType {
	switch {
	case op == opDelete:
		return EventDeleted
	case !exists:
		return EventCreated
	default:
		return EventUpdated
	}
}

// delegate performs the root write matching the classified event.
func (s *Store[T]) delegate(ctx context.Context, op operation, eventType EventType, entity *T) error {
	switch {
	case eventType == EventDeleted:
		// Logical delete: the root store receives the tombstoned record.
		return s.base.Upsert(ctx, entity)
	case op == opInsert:
		return s.base.Insert(ctx, entity)
	case op == opUpdate && eventType == EventCreated:
		// Reclassified update: the record does not exist, Update would
		// refuse to create it.
		return s.base.Upsert(ctx, entity)
	case op == opUpdate:
		return s.base.Update(ctx, entity)
	default:
		return s.base.Upsert(ctx, entity)
	}
}

// ensureStores lazily opens the companion stores. Idempotent.
func (s *Store[T]) ensureStores() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.events != nil && s.users != nil {
		return nil
	}
	if s.backend.OpenEvents == nil || s.backend.OpenUsers == nil {
		return errors.NewValidationError("backend", "audit backend is not configured")
	}

	events, err := s.backend.OpenEvents(s.base.Name() + "-audit-events")
	if err != nil {
		return err
	}
	users, err := s.backend.OpenUsers(s.base.Name() + "-audit-users")
	if err != nil {
		return err
	}
	s.events = events
	s.users = users
	return nil
}

// ensureActor resolves the acting user from the context principal and keeps
// the directory in sync: first action creates the User record, a claims
// drift updates it in place, everything else is served from the per-store
// cache without touching the backend.
func (s *Store[T]) ensureActor(ctx context.Context) (*User, error) {
	principal := identity.PrincipalFrom(ctx)
	if principal == nil {
		return nil, errors.NewMissingIdentityError("sub or oid")
	}

	s.actorMu.Lock()
	defer s.actorMu.Unlock()

	if cached, ok := s.actors[principal.Subject]; ok &&
		cached.Username == principal.Username && cached.DisplayName == principal.DisplayName {
		return &cached, nil
	}

	stored, err := s.users.Get(ctx, principal.Subject, "")
	switch {
	case errors.IsNotFound(err):
		user := User{
			ID:          principal.Subject,
			Username:    principal.Username,
			DisplayName: principal.DisplayName,
		}
		if err := s.users.Insert(ctx, &user); err != nil {
			return nil, err
		}
		s.actors[principal.Subject] = user
		return &user, nil
	case err != nil:
		return nil, err
	}

	if stored.Username != principal.Username || stored.DisplayName != principal.DisplayName {
		stored.Username = principal.Username
		stored.DisplayName = principal.DisplayName
		if err := s.users.Update(ctx, stored); err != nil {
			return nil, err
		}
	}
	s.actors[principal.Subject] = *stored
	return stored, nil
}

// Events exposes the ledger store, read-only by convention.
func (s *Store[T]) Events() (store.EntityStore[Event], error) {
	if err := s.ensureStores(); err != nil {
		return nil, err
	}
	return s.events, nil
}

// Users exposes the actor directory store, read-only by convention.
func (s *Store[T]) Users() (store.EntityStore[User], error) {
	if err := s.ensureStores(); err != nil {
		return nil, err
	}
	return s.users, nil
}

// keyedLocks serializes writers per composite identity.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func compositeLockKey(storeName, key, partitionKey string) string {
	return storeName + "\x00" + partitionKey + "\x00" + key
}

// lock acquires the mutex for the given key, creating it on first use and
// releasing the map entry when the last holder unlocks.
func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
