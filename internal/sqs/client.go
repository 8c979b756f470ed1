package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/product-catalog/internal/config"
)

// NewClient creates and configures a new AWS SQS client.
// It loads the AWS configuration from the environment and optionally sets a custom endpoint.
func NewClient(ctx context.Context, region string, endpoint string) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Override endpoint for LocalStack if specified
	if endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}

	return sqs.NewFromConfig(awsCfg), nil
}

// NewPublisherFromConfig builds a Publisher for the configured queue.
func NewPublisherFromConfig(ctx context.Context, conf config.AWSConfig) (*Publisher, error) {
	client, err := NewClient(ctx, conf.Region, conf.Endpoint)
	if err != nil {
		return nil, err
	}
	return NewPublisher(client, conf.SQSQueueURL), nil
}
