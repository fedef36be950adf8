package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	awserrors "github.com/stockyard/warehouse-backend/internal/awssdk/errors"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

// Client is the narrow DynamoDB surface the store depends on. The production
// client and the in-memory emulator used in tests both satisfy it.
type Client interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store is the long-lived handle to the single backing table. It is built
// once at process start and shared across invocations.
type Store struct {
	client Client
	table  string
	log    logging.Logger
}

// NewStore wires a store to the given client and table name.
func NewStore(client Client, table string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Store{client: client, table: table, log: logger}
}

// Table returns the backing table name.
func (s *Store) Table() string { return s.table }

// Get performs a point lookup and returns nil when no row exists.
func (s *Store) Get(ctx context.Context, pk, sk string) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       primaryKey(pk, sk),
	})
	if err != nil {
		s.log.Warn("dynamo.get.err", logging.Fields{"pk": pk, "sk": sk, "error": err.Error()})
		return nil, awserrors.Classify(err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// Put writes a full row, replacing any existing row with the same key.
func (s *Store) Put(ctx context.Context, item Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		s.log.Warn("dynamo.put.err", logging.Fields{"error": err.Error()})
		return awserrors.Classify(err)
	}
	return nil
}

// Update applies a SET update expression to the row at (pk, sk). DynamoDB
// upserts on update, so a missing row gains the written attributes.
func (s *Store) Update(ctx context.Context, pk, sk, expression string, values Item) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       primaryKey(pk, sk),
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		s.log.Warn("dynamo.update.err", logging.Fields{"pk": pk, "sk": sk, "error": err.Error()})
		return awserrors.Classify(err)
	}
	return nil
}

// Delete removes the row at (pk, sk); deleting an absent row succeeds.
func (s *Store) Delete(ctx context.Context, pk, sk string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       primaryKey(pk, sk),
	})
	if err != nil {
		s.log.Warn("dynamo.delete.err", logging.Fields{"pk": pk, "sk": sk, "error": err.Error()})
		return awserrors.Classify(err)
	}
	return nil
}

// ScanAll enumerates every row in the table, following pagination. Callers
// filter by key strings; see the dispatcher for why this is a scan and not
// a key-prefix query.
func (s *Store) ScanAll(ctx context.Context) ([]Item, error) {
	var (
		items []Item
		start Item
	)
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			s.log.Warn("dynamo.scan.err", logging.Fields{"error": err.Error()})
			return nil, awserrors.Classify(err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}
	return items, nil
}

func primaryKey(pk, sk string) Item {
	return Item{"PK": StringAttribute(pk), "SK": StringAttribute(sk)}
}
