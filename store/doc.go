/*
Package store defines the core interfaces for AuditStore's persistence layer.

The main interface is EntityStore[T], which provides generic CRUD operations
for any record type T over one named collection:

	type EntityStore[T any] interface {
	    Exists(ctx context.Context, key, partitionKey string) (bool, error)
	    Get(ctx context.Context, key, partitionKey string) (*T, error)
	    List(ctx context.Context, since *time.Time) ([]T, error)
	    Insert(ctx context.Context, entity *T) error
	    Update(ctx context.Context, entity *T) error
	    Upsert(ctx context.Context, entity *T) error
	    BulkUpsert(ctx context.Context, entities []*T) error
	    Delete(ctx context.Context, key, partitionKey string, errorIfMissing bool) error
	    DeleteStore(ctx context.Context) error
	    Name() string
	}

Implementations:
  - memory: in-memory reference backend, also used as the test double
  - ddb: DynamoDB backend with conditional writes for existence preconditions

Every backend assumes one record is the unit of atomicity per call and is
expected to provide durable, atomic single-record writes. The audit decorator
in package audit builds its guarantees on exactly that assumption.
*/
package store
