/*
Package descriptor resolves storage metadata for record types.

A record type declares its storage-relevant fields with the `auditstore`
struct tag:

	type Player struct {
	    ID        string    `json:"id" auditstore:"key"`
	    Region    string    `json:"region" auditstore:"partitionkey"`
	    Revision  int64     `json:"revision" auditstore:"revision"`
	    UpdatedAt time.Time `json:"updatedAt" auditstore:"timestamp"`
	    Name      string    `json:"name"`
	}

Exactly one field must carry the key marker. The partition key, revision and
timestamp markers are each optional. Resolve scans a type once and memoizes
the result for the process lifetime, so the CRUD hot path pays only field
get/set cost, never a re-scan.

Misconfigured types (no key, or more than one) fail at Resolve time with
errors.ErrNoKeyField or errors.ErrMultipleKeyFields, which store constructors
surface immediately.
*/
package descriptor
