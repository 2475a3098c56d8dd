package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/config"
)

// swapped in tests
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	newDynamoFromConfig  = dynamodb.NewFromConfig
)

// NewDynamoDB builds a DynamoDB client. A static key pair and endpoint are
// only applied when configured, which is how DynamoDB Local is targeted.
func NewDynamoDB(ctx context.Context, cfg config.DynamoConfig, logger *zap.Logger) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newDynamoFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("dynamodb client ready",
		zap.String("table", cfg.Table),
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint))
	return client, nil
}

// EnsureDynamoTable creates the ticket table keyed by id when it is missing.
func EnsureDynamoTable(ctx context.Context, client *dynamodb.Client, table string, logger *zap.Logger) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	switch {
	case errors.As(err, &inUse):
		logger.Info("dynamodb table already exists", zap.String("table", table))
		return nil
	case err != nil:
		return fmt.Errorf("create table %s: %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", table, err)
	}
	logger.Info("dynamodb table created", zap.String("table", table))
	return nil
}
