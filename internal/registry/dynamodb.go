// Package registry persists onboarded bindings in a DynamoDB table keyed by
// security group id.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	internalaws "github.com/gllesch/plsync/internal/aws"
	"github.com/gllesch/plsync/internal/domain"
)

// ErrNotFound reports a binding key with no registry entry.
var ErrNotFound = errors.New("binding not found")

type bindingItem struct {
	SecurityGroupID     string `dynamodbav:"security_group_id"`
	SecurityGroupRegion string `dynamodbav:"security_group_region"`
	PrefixListID        string `dynamodbav:"prefix_list_id"`
	PrefixListRegion    string `dynamodbav:"prefix_list_region"`
	PercentThreshold    int    `dynamodbav:"percent_threshold"`
	BaseThreshold       int    `dynamodbav:"base_threshold"`
}

func toItem(b domain.Binding) bindingItem {
	return bindingItem(b)
}

func (i bindingItem) toBinding() domain.Binding {
	return domain.Binding(i)
}

// dynamoAPI is the slice of the DynamoDB client the registry uses; tests
// substitute a fake.
type dynamoAPI interface {
	GetItem(ctx context.Context, input *awsddb.GetItemInput, optFns ...func(*awsddb.Options)) (*awsddb.GetItemOutput, error)
	PutItem(ctx context.Context, input *awsddb.PutItemInput, optFns ...func(*awsddb.Options)) (*awsddb.PutItemOutput, error)
	Scan(ctx context.Context, input *awsddb.ScanInput, optFns ...func(*awsddb.Options)) (*awsddb.ScanOutput, error)
}

// DynamoDB implements the binding registry.
type DynamoDB struct {
	client dynamoAPI
	table  string
}

func New(cfg aws.Config, table string) *DynamoDB {
	return &DynamoDB{
		client: awsddb.NewFromConfig(cfg),
		table:  table,
	}
}

// Get reads one binding by its key.
func (r *DynamoDB) Get(ctx context.Context, key string) (domain.Binding, error) {
	out, err := r.client.GetItem(ctx, &awsddb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"security_group_id": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return domain.Binding{}, fmt.Errorf("get binding %s: %w", key, err)
	}
	if out.Item == nil {
		return domain.Binding{}, fmt.Errorf("binding %s: %w", key, ErrNotFound)
	}

	var item bindingItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return domain.Binding{}, fmt.Errorf("unmarshal binding %s: %w", key, err)
	}
	return item.toBinding(), nil
}

// Put registers or replaces a binding. Used only by onboarding.
func (r *DynamoDB) Put(ctx context.Context, b domain.Binding) error {
	item, err := attributevalue.MarshalMap(toItem(b))
	if err != nil {
		return fmt.Errorf("marshal binding %s: %w", b.Key(), err)
	}
	if _, err := r.client.PutItem(ctx, &awsddb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put binding %s: %w", b.Key(), err)
	}
	return nil
}

// ListBindings scans the whole table, draining every page before returning.
func (r *DynamoDB) ListBindings(ctx context.Context) ([]domain.Binding, error) {
	paginator := awsddb.NewScanPaginator(r.client, &awsddb.ScanInput{
		TableName: aws.String(r.table),
	})
	items, err := internalaws.CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*awsddb.ScanOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *awsddb.ScanOutput) []map[string]types.AttributeValue {
			return out.Items
		},
	)
	if err != nil {
		return nil, fmt.Errorf("scan bindings: %w", err)
	}

	bindings := make([]domain.Binding, 0, len(items))
	for _, raw := range items {
		var item bindingItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal binding item: %w", err)
		}
		bindings = append(bindings, item.toBinding())
	}
	return bindings, nil
}
