/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

import (
	"github.com/suparena/auditstore/audit"
	"github.com/suparena/auditstore/store"
)

// AuditBackend adapts the provider for use as an audit companion backend, so
// audited stores keep their ledger and actor directory in the same provider
// as the root data.
func AuditBackend(p *Provider) audit.Backend {
	return audit.Backend{
		OpenEvents: func(name string) (store.EntityStore[audit.Event], error) {
			return Open[audit.Event](p, name)
		},
		OpenUsers: func(name string) (store.EntityStore[audit.User], error) {
			return Open[audit.User](p, name)
		},
	}
}

// OpenAudited opens the named collection and wraps it with audit recording
// backed by the same provider. For types that do not embed audit.Trail the
// wrap is a transparent pass-through.
func OpenAudited[T any](p *Provider, name string) (*audit.Store[T], error) {
	base, err := Open[T](p, name)
	if err != nil {
		return nil, err
	}
	return audit.New[T](base, AuditBackend(p))
}
