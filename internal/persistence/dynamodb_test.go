package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/config"
)

func swapAWS(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newDynamoFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newDynamoFromConfig = origNew
	})
}

func TestNewDynamoDB_AppliesEndpointAndCredentials(t *testing.T) {
	swapAWS(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "local", creds.AccessKeyID)
		return aws.Config{Region: lo.Region}, nil
	}

	var endpoint string
	newDynamoFromConfig = func(cfg aws.Config, optFns ...func(*dynamodb.Options)) *dynamodb.Client {
		var opts dynamodb.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			endpoint = *opts.BaseEndpoint
		}
		return &dynamodb.Client{}
	}

	client, err := NewDynamoDB(context.Background(), config.DynamoConfig{
		Table:           "tickets",
		Region:          "eu-west-1",
		Endpoint:        "http://127.0.0.1:8000",
		AccessKeyID:     "local",
		SecretAccessKey: "local",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "http://127.0.0.1:8000", endpoint)
}

func TestNewDynamoDB_ConfigError(t *testing.T) {
	swapAWS(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewDynamoDB(context.Background(), config.DynamoConfig{Region: "x"}, zap.NewNop())
	assert.ErrorContains(t, err, "no region")
}
