/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"strings"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/auditstore/audit"
	"github.com/suparena/auditstore/errors"
	"github.com/suparena/auditstore/store"
)

// Provider maps store names onto DynamoDB tables under a common prefix, so
// one AWS account can host several isolated store sets.
type Provider struct {
	client *sdk.Client
	prefix string
}

// NewProvider creates a Provider. The prefix may be empty.
func NewProvider(client *sdk.Client, prefix string) *Provider {
	return &Provider{client: client, prefix: prefix}
}

func (p *Provider) tableName(name string) string {
	return p.prefix + name
}

// StoreNames lists the stores reachable through this provider, i.e. the
// tables carrying its prefix.
func (p *Provider) StoreNames(ctx context.Context) ([]string, error) {
	var names []string
	var startTable *string

	for {
		out, err := p.client.ListTables(ctx, &sdk.ListTablesInput{
			ExclusiveStartTableName: startTable,
		})
		if err != nil {
			return nil, errors.NewBackendError("StoreNames", err)
		}
		for _, table := range out.TableNames {
			if strings.HasPrefix(table, p.prefix) {
				names = append(names, strings.TrimPrefix(table, p.prefix))
			}
		}
		if out.LastEvaluatedTableName == nil {
			break
		}
		startTable = out.LastEvaluatedTableName
	}
	return names, nil
}

// CreateStore provisions the named store's table and waits until it is
// active. Creating an existing store is a no-op.
func (p *Provider) CreateStore(ctx context.Context, name string) error {
	return createTable(ctx, p.client, p.tableName(name))
}

// DeleteStore drops the named store's table. Unknown names are a no-op.
func (p *Provider) DeleteStore(ctx context.Context, name string) error {
	table := p.tableName(name)
	_, err := p.client.DeleteTable(ctx, &sdk.DeleteTableInput{TableName: &table})
	if err != nil {
		var rnf *types.ResourceNotFoundException
		if stderrors.As(err, &rnf) {
			return nil
		}
		return errors.NewBackendError("DeleteStore", err)
	}
	return nil
}

var _ store.Provider = (*Provider)(nil)

// AuditBackend adapts the provider for use as an audit companion backend:
// ledgers and actor directories live in tables next to the root data.
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

// OpenAudited opens the named store and wraps it with audit recording backed
// by the same provider.
func OpenAudited[T any](p *Provider, name string) (*audit.Store[T], error) {
	base, err := Open[T](p, name)
	if err != nil {
		return nil, err
	}
	return audit.New[T](base, AuditBackend(p))
}
