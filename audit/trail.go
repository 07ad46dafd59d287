/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package audit

import "time"

// Deletion marks a logically deleted record. Audited deletes tombstone the
// record in place instead of removing it, so history stays resolvable.
type Deletion struct {
	At      time.Time `json:"at"`
	EventID string    `json:"eventId"`
}

// Trail carries the audit-stamped fields of a record. Embedding Trail in a
// record type marks it as audited:
//
//	type Player struct {
//	    audit.Trail
//	    ID string `json:"id" auditstore:"key"`
//	}
//
// The decorator owns every Trail field; callers treat them as read-only.
type Trail struct {
	// Revision counts committed mutations, starting at 0 for a record that
	// was never written.
	Revision int64 `json:"revision" auditstore:"revision"`

	// CreateEventID is the ledger id of the event that created the record.
	CreateEventID string `json:"createEventId,omitempty"`

	// LastUpdateEventID is the ledger id of the most recent mutation.
	LastUpdateEventID string `json:"lastUpdateEventId,omitempty"`

	// Deleted is set when the record has been logically deleted. A later
	// create or update revives the record and clears it.
	Deleted *Deletion `json:"deleted,omitempty"`
}

// AuditTrail returns the trail itself; it is what makes an embedding type
// satisfy Auditable.
func (t *Trail) AuditTrail() *Trail { return t }

// IsDeleted reports whether the record is logically deleted.
func (t *Trail) IsDeleted() bool { return t.Deleted != nil }

// Auditable marks a record type whose mutations are recorded in the ledger.
// Types opt in by embedding Trail. Stores wrapping a non-Auditable type pass
// every operation straight through.
type Auditable interface {
	AuditTrail() *Trail
}
