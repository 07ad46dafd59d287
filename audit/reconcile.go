/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package audit

import (
	"context"
	"sort"

	"github.com/suparena/auditstore/errors"
)

// Orphan is a ledger entry with no matching committed root revision: the
// event was appended but the root write that should have followed it never
// landed. Orphans are the accepted inconsistency window of the
// write-event-then-write-root ordering; they are reported, never repaired
// automatically.
type Orphan struct {
	EventID       string
	EntityID      string
	EventRevision int64
	RootRevision  int64 // 0 when the root record is missing entirely
	RootMissing   bool
}

// Reconcile scans the audited store's ledger and reports every event whose
// revision exceeds the root record's committed revision. A healthy store
// returns an empty slice.
func (s *Store[T]) Reconcile(ctx context.Context) ([]Orphan, error) {
	if !s.audited {
		return nil, nil
	}
	if err := s.ensureStores(); err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Highest ledger revision per entity reference. Lower revisions are
	// covered transitively: the root either reached them or it did not
	// reach the maximum either.
	latest := make(map[string]Event)
	for _, event := range events {
		if cur, ok := latest[event.EntityID]; !ok || event.Revision > cur.Revision {
			latest[event.EntityID] = event
		}
	}

	var orphans []Orphan
	for ref, event := range latest {
		key, partitionKey := splitEntityRef(ref)

		entity, err := s.base.Get(ctx, key, partitionKey)
		switch {
		case errors.IsNotFound(err):
			orphans = append(orphans, Orphan{
				EventID:       event.ID,
				EntityID:      ref,
				EventRevision: event.Revision,
				RootMissing:   true,
			})
			continue
		case err != nil:
			return nil, err
		}

		trail := any(entity).(Auditable).AuditTrail()
		if event.Revision > trail.Revision {
			orphans = append(orphans, Orphan{
				EventID:       event.ID,
				EntityID:      ref,
				EventRevision: event.Revision,
				RootRevision:  trail.Revision,
			})
		}
	}

	sort.Slice(orphans, func(i, j int) bool { return orphans[i].EventID < orphans[j].EventID })
	return orphans, nil
}
