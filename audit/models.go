/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package audit

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies one mutation recorded in the ledger.
type EventType string

const (
	EventCreated EventType = "Created"
	EventUpdated EventType = "Updated"
	EventDeleted EventType = "Deleted"
)

// Event is one immutable entry in the append-only audit ledger. Events are
// inserted exactly once and never updated or deleted.
type Event struct {
	// ID is "{entityRef}:{revision}", human-inspectable and unique as long
	// as revisions increase without gaps.
	ID string `json:"id" auditstore:"key"`

	// EntityID is the entity reference this event belongs to. For
	// partitioned types it carries the "{partitionKey}/{key}" form.
	EntityID string `json:"entityId"`

	// Revision is the revision the entity holds after this event commits.
	Revision int64 `json:"revision"`

	Type     EventType `json:"type"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`

	// TraceID correlates the event to the causing request.
	TraceID string `json:"traceId"`

	// Changes is a reserved field-diff payload.
	Changes map[string]any `json:"changes,omitempty"`

	CreatedAt time.Time `json:"createdAt" auditstore:"timestamp"`
}

// User is one entry in the deduplicated actor directory, keyed by the
// external subject id. Created on first observed action, updated in place
// when the identity provider's claims drift, never deleted.
type User struct {
	ID          string    `json:"id" auditstore:"key"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	LastSeenAt  time.Time `json:"lastSeenAt" auditstore:"timestamp"`
}

// entityRef builds the ledger-side entity reference from a record identity.
func entityRef(key, partitionKey string) string {
	if partitionKey == "" {
		return key
	}
	return partitionKey + "/" + key
}

// splitEntityRef is the inverse of entityRef.
func splitEntityRef(ref string) (key, partitionKey string) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		return ref[i+1:], ref[:i]
	}
	return ref, ""
}

// eventID builds the composite ledger id for one committed revision.
func eventID(ref string, revision int64) string {
	return fmt.Sprintf("%s:%d", ref, revision)
}
