package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoOptions locate the table a Dynamo backend writes to. The table must
// have a string partition key named "PK".
type DynamoOptions struct {
	Table     string
	Region    string
	Endpoint  string // DynamoDB Local or another compatible endpoint
	Namespace string // prefixed to every key so stores can share a table
	Timeout   time.Duration
}

// dynamoAPI is the subset of the DynamoDB client the backend calls.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
}

type dynamoItem struct {
	PK    string `dynamodbav:"PK"`
	Value string `dynamodbav:"Value"`
}

// Dynamo stores each slot as one item. Writes go straight to the table, so
// Flush has nothing to do.
type Dynamo struct {
	client    dynamoAPI
	table     string
	namespace string
	timeout   time.Duration
}

// OpenDynamo builds a client from the default AWS configuration chain. With
// an Endpoint set, static placeholder credentials are used, which DynamoDB
// Local accepts.
func OpenDynamo(ctx context.Context, o DynamoOptions) (*Dynamo, error) {
	if o.Table == "" {
		return nil, errors.New("dynamodb backend: table name is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.Region))
	}
	if o.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(opts *sdk.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
		}
	})
	return newDynamo(client, o), nil
}

func newDynamo(client dynamoAPI, o DynamoOptions) *Dynamo {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dynamo{client: client, table: o.Table, namespace: o.Namespace, timeout: timeout}
}

func (d *Dynamo) pk(key string) string {
	if d.namespace == "" {
		return key
	}
	return d.namespace + "#" + key
}

func (d *Dynamo) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: d.pk(key)},
	}
}

func (d *Dynamo) HasKey(key string) (bool, error) {
	_, ok, err := d.GetString(key)
	return ok, err
}

func (d *Dynamo) GetString(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.table,
		Key:            d.keyAttr(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("GetItem %q: %w", key, err)
	}
	if out.Item == nil {
		return "", false, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, fmt.Errorf("unmarshalling item %q: %w", key, err)
	}
	return item.Value, true, nil
}

func (d *Dynamo) SetString(key, val string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	av, err := attributevalue.MarshalMap(dynamoItem{PK: d.pk(key), Value: val})
	if err != nil {
		return fmt.Errorf("marshalling item %q: %w", key, err)
	}
	if _, err := d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.table,
		Item:      av,
	}); err != nil {
		return fmt.Errorf("PutItem %q: %w", key, err)
	}
	return nil
}

func (d *Dynamo) DeleteKey(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if _, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.table,
		Key:       d.keyAttr(key),
	}); err != nil {
		return fmt.Errorf("DeleteItem %q: %w", key, err)
	}
	return nil
}

func (d *Dynamo) Flush() error { return nil }
