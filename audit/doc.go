/*
Package audit decorates any store.EntityStore with an append-only change
ledger, revision numbering and actor attribution.

A record type opts in by embedding Trail:

	type Player struct {
	    audit.Trail
	    ID     string `json:"id" auditstore:"key"`
	    Rating int    `json:"rating"`
	}

Wrapping a store is one call:

	base, _ := memory.Open[Player](provider, "players")
	players, _ := audit.New(base, memory.AuditBackend(provider))

Every create, update, upsert and delete then runs a fixed sequence: resolve
the acting identity.Principal from the context, sync the actor directory,
classify the event (an Update against a missing record is reclassified as
Created), compute the post-write revision, append the Event to the ledger,
stamp the record's Trail, and only then write to the wrapped store. A failure
before the ledger write leaves everything untouched; a failure after it
leaves an orphan event that Reconcile reports.

Deletes of audited records are logical: the record is tombstoned via its
Deleted state and upserted, never physically removed, so every ledger entry
keeps a resolvable subject.

Types that do not embed Trail pass through the decorator unchanged, which
lets factories hand out audited stores unconditionally.
*/
package audit
