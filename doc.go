/*
Package auditstore provides a generic, type-safe entity persistence layer
with an audit-trail decorator that works across heterogeneous storage
backends.

The layering, bottom up:

  - descriptor: one-time, cached reflection over `auditstore` struct tags,
    resolving each record type's key, partition key, revision and timestamp
    fields.
  - store: the EntityStore[T] capability contract every backend implements
    (exists, get, list-since, insert, update, upsert, bulk-upsert, delete,
    delete-store), plus Provider for collection lifecycle.
  - store/memory and store/ddb: the in-memory reference backend and the
    DynamoDB backend.
  - audit: wraps any EntityStore[T] so that every mutation first appends an
    immutable Event to a ledger, attributed to the identity.Principal on the
    context, with contiguous revision numbering and logical deletes.

Basic usage:

	provider := memory.NewProvider()
	players, _ := memory.OpenAudited[Player](provider, "players")

	ctx := identity.WithPrincipal(ctx, principal)
	err := players.Insert(ctx, &Player{ID: "p1", Rating: 1500})

This root package adds a small registry so services can wire stores once at
bootstrap and fetch them by name elsewhere:

	reg := auditstore.NewRegistry()
	auditstore.RegisterStore(reg, "players", players)
	s, _ := auditstore.GetStore[Player](reg, "players")

For more information, see the documentation at https://github.com/suparena/auditstore
*/
package auditstore
