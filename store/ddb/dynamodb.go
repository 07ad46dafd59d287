/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/auditstore/descriptor"
	"github.com/suparena/auditstore/errors"
)

// Attribute names of the table key schema. The partition attribute carries
// the record's partition key, or the record key itself for unpartitioned
// types; the sort attribute always carries the record key.
const (
	pkAttr = "PK"
	skAttr = "SK"
)

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// Store implements store.EntityStore[T] over one DynamoDB table.
type Store[T any] struct {
	client *sdk.Client
	table  string
	name   string
	desc   *descriptor.EntityDescriptor
	clock  func() time.Time
}

// Open binds type T to the named store under the given provider. The
// descriptor is resolved here so a misconfigured type fails at construction.
func Open[T any](p *Provider, name string) (*Store[T], error) {
	desc, err := descriptor.For[T]()
	if err != nil {
		return nil, err
	}
	return &Store[T]{
		client: p.client,
		table:  p.tableName(name),
		name:   name,
		desc:   desc,
		clock:  time.Now,
	}, nil
}

// Name returns the collection name.
func (s *Store[T]) Name() string { return s.name }

// Descriptor returns the resolved metadata for T.
func (s *Store[T]) Descriptor() *descriptor.EntityDescriptor { return s.desc }

func (s *Store[T]) tableKey(key, partitionKey string) map[string]types.AttributeValue {
	pk := partitionKey
	if pk == "" {
		pk = key
	}
	return map[string]types.AttributeValue{
		pkAttr: &types.AttributeValueMemberS{Value: pk},
		skAttr: &types.AttributeValueMemberS{Value: key},
	}
}

func (s *Store[T]) identity(entity *T) (key, partitionKey string, err error) {
	key, err = s.desc.Key(entity)
	if err != nil {
		return "", "", err
	}
	if key == "" {
		return "", "", errors.NewValidationError(s.desc.KeyField, "empty key")
	}
	partitionKey, err = s.desc.PartitionKey(entity)
	if err != nil {
		return "", "", err
	}
	return key, partitionKey, nil
}

// marshal stamps the timestamp field, marshals the entity and injects the
// table key attributes.
func (s *Store[T]) marshal(entity *T) (map[string]types.AttributeValue, string, error) {
	key, partitionKey, err := s.identity(entity)
	if err != nil {
		return nil, "", err
	}
	if err := s.desc.StampTimestamp(entity, s.clock().UTC()); err != nil {
		return nil, "", err
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal entity: %w", err)
	}
	for attr, value := range s.tableKey(key, partitionKey) {
		av[attr] = value
	}
	return av, key, nil
}

// Exists reports whether the identity is present, via a key-only projection.
func (s *Store[T]) Exists(ctx context.Context, key, partitionKey string) (bool, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:            &s.table,
		Key:                  s.tableKey(key, partitionKey),
		ProjectionExpression: aws.String(skAttr),
	})
	if err != nil {
		return false, errors.NewBackendError("Exists", err)
	}
	return out.Item != nil, nil
}

// Get retrieves a single record, or errors.ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, key, partitionKey string) (*T, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.table,
		Key:       s.tableKey(key, partitionKey),
	})
	if err != nil {
		return nil, errors.NewBackendError("Get", err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError(s.desc.TypeName, key)
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// List scans the table page by page. The since filter is applied after
// unmarshaling, against the descriptor's timestamp field, so it works
// independently of how the SDK encodes timestamps on the wire.
func (s *Store[T]) List(ctx context.Context, since *time.Time) ([]T, error) {
	var out []T
	var startKey map[string]types.AttributeValue

	for {
		page, err := s.client.Scan(ctx, &sdk.ScanInput{
			TableName:         &s.table,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, errors.NewBackendError("List", err)
		}

		for _, item := range page.Items {
			entity := new(T)
			if err := attributevalue.UnmarshalMap(item, entity); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item: %w", err)
			}
			if since != nil && s.desc.HasTimestamp() {
				ts, err := s.desc.Timestamp(entity)
				if err != nil {
					return nil, err
				}
				if !ts.After(*since) {
					continue
				}
			}
			out = append(out, *entity)
		}

		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return out, nil
}

// Insert stores a new record; the conditional write turns a key collision
// into errors.ErrAlreadyExists.
func (s *Store[T]) Insert(ctx context.Context, entity *T) error {
	av, key, err := s.marshal(entity)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &s.table,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewAlreadyExistsError(s.desc.TypeName, key)
		}
		return errors.NewBackendError("Insert", err)
	}
	return nil
}

// Update replaces an existing record; the conditional write turns a missing
// record into errors.ErrNotFound.
func (s *Store[T]) Update(ctx context.Context, entity *T) error {
	av, key, err := s.marshal(entity)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &s.table,
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(s.desc.TypeName, key)
		}
		return errors.NewBackendError("Update", err)
	}
	return nil
}

// Upsert creates or replaces with no condition.
func (s *Store[T]) Upsert(ctx context.Context, entity *T) error {
	av, _, err := s.marshal(entity)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.table,
		Item:      av,
	})
	if err != nil {
		return errors.NewBackendError("Upsert", err)
	}
	return nil
}

// batchLimit is DynamoDB's BatchWriteItem cap.
const batchLimit = 25

// BulkUpsert writes the batch in BatchWriteItem chunks, resubmitting
// unprocessed items until the backend accepts them or stops making progress.
// Atomicity holds per record only.
func (s *Store[T]) BulkUpsert(ctx context.Context, entities []*T) error {
	requests := make([]types.WriteRequest, 0, len(entities))
	for _, entity := range entities {
		av, _, err := s.marshal(entity)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}

	for len(requests) > 0 {
		chunk := requests
		if len(chunk) > batchLimit {
			chunk = chunk[:batchLimit]
		}
		requests = requests[len(chunk):]

		out, err := s.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: chunk},
		})
		if err != nil {
			return errors.NewBackendError("BulkUpsert", err)
		}
		if unprocessed := out.UnprocessedItems[s.table]; len(unprocessed) > 0 {
			if len(unprocessed) == len(chunk) {
				return errors.NewBackendError("BulkUpsert",
					fmt.Errorf("%d items rejected without progress", len(unprocessed)))
			}
			requests = append(requests, unprocessed...)
		}
	}
	return nil
}

// Delete removes the record. With errorIfMissing the delete is conditional
// and a missing record yields errors.ErrNotFound.
func (s *Store[T]) Delete(ctx context.Context, key, partitionKey string, errorIfMissing bool) error {
	input := &sdk.DeleteItemInput{
		TableName: &s.table,
		Key:       s.tableKey(key, partitionKey),
	}
	if errorIfMissing {
		input.ConditionExpression = aws.String("attribute_exists(PK) AND attribute_exists(SK)")
	}

	_, err := s.client.DeleteItem(ctx, input)
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(s.desc.TypeName, key)
		}
		return errors.NewBackendError("Delete", err)
	}
	return nil
}

// DeleteStore drops the whole table.
func (s *Store[T]) DeleteStore(ctx context.Context) error {
	_, err := s.client.DeleteTable(ctx, &sdk.DeleteTableInput{TableName: &s.table})
	if err != nil {
		var rnf *types.ResourceNotFoundException
		if stderrors.As(err, &rnf) {
			return nil
		}
		return errors.NewBackendError("DeleteStore", err)
	}
	return nil
}

// CreateTable provisions the backing table with the PK/SK schema in
// on-demand capacity mode, waiting until it is active. Intended for
// bootstrap tooling and integration tests.
func (s *Store[T]) CreateTable(ctx context.Context) error {
	return createTable(ctx, s.client, s.table)
}

// createTable is shared by Store.CreateTable and Provider.CreateStore: the
// key schema is fixed and type-independent.
func createTable(ctx context.Context, client *sdk.Client, table string) error {
	_, err := client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName:   &table,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(pkAttr), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(skAttr), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(pkAttr), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(skAttr), KeyType: types.KeyTypeRange},
		},
	})
	if err != nil {
		var exists *types.ResourceInUseException
		if stderrors.As(err, &exists) {
			return nil
		}
		return errors.NewBackendError("CreateTable", err)
	}

	waiter := sdk.NewTableExistsWaiter(client)
	return waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: &table}, 2*time.Minute)
}
