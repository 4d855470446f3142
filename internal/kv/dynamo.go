package kv

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB attribute names for the key and discriminator.
const (
	attrPK         = "pk"
	attrSK         = "sk"
	attrEntityType = "entityType"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// NewDynamoClient builds a DynamoDB client from the default credential chain.
// endpoint overrides the service URL (e.g. DynamoDB Local) when set.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// DynamoStore keeps one namespace in a DynamoDB table keyed by pk/sk, with
// attributes stored as top-level item attributes.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore binds a store to table.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Get implements Store.
func (s *DynamoStore) Get(ctx context.Context, pk, sk string) (Item, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyOf(pk, sk),
	})
	if err != nil {
		return Item{}, false, fmt.Errorf("dynamodb get %s %s/%s: %w", s.table, pk, sk, err)
	}
	if len(out.Item) == 0 {
		return Item{}, false, nil
	}

	item, err := fromDynamo(out.Item)
	if err != nil {
		return Item{}, false, err
	}
	return item, true, nil
}

// Put implements Store.
func (s *DynamoStore) Put(ctx context.Context, item Item) error {
	av, err := toDynamo(item)
	if err != nil {
		return err
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("dynamodb put %s %s/%s: %w", s.table, item.PK, item.SK, err)
	}
	return nil
}

// Delete implements Store.
func (s *DynamoStore) Delete(ctx context.Context, pk, sk string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       keyOf(pk, sk),
	}); err != nil {
		return fmt.Errorf("dynamodb delete %s %s/%s: %w", s.table, pk, sk, err)
	}
	return nil
}

// Query implements Store. It follows LastEvaluatedKey until the partition is
// exhausted.
func (s *DynamoStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":pk": &types.AttributeValueMemberS{Value: pk}},
		ScanIndexForward:          aws.Bool(false),
	}
	if skPrefix != "" {
		in.KeyConditionExpression = aws.String("pk = :pk AND begins_with(sk, :sk)")
		in.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: skPrefix}
	}

	var out []Item
	for {
		page, err := s.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("dynamodb query %s %s: %w", s.table, pk, err)
		}
		for _, raw := range page.Items {
			item, err := fromDynamo(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		in.ExclusiveStartKey = page.LastEvaluatedKey
	}
}

func keyOf(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pk},
		attrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func toDynamo(item Item) (map[string]types.AttributeValue, error) {
	attrs := item.Attrs
	if attrs == nil {
		attrs = Attrs{}
	}
	av, err := attributevalue.MarshalMap(map[string]any(attrs))
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}
	av[attrPK] = &types.AttributeValueMemberS{Value: item.PK}
	av[attrSK] = &types.AttributeValueMemberS{Value: item.SK}
	av[attrEntityType] = &types.AttributeValueMemberS{Value: item.EntityType}
	return av, nil
}

func fromDynamo(av map[string]types.AttributeValue) (Item, error) {
	var m map[string]any
	if err := attributevalue.UnmarshalMap(av, &m); err != nil {
		return Item{}, fmt.Errorf("unmarshal attrs: %w", err)
	}

	attrs := Attrs(m)
	item := Item{
		PK:         attrs.String(attrPK),
		SK:         attrs.String(attrSK),
		EntityType: attrs.String(attrEntityType),
	}
	delete(attrs, attrPK)
	delete(attrs, attrSK)
	delete(attrs, attrEntityType)
	item.Attrs = attrs
	return item, nil
}
