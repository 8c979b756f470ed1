package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-catalog/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	deleted            int
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	m.deleted++
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("successful message processing", func(t *testing.T) {
		// given
		var got events.ProductMessage
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, func(_ context.Context, msg events.ProductMessage) error {
			got = msg
			return nil
		})

		message := types.Message{
			Body:          aws.String(`{"action":"updated","product_id":"123","name":"Headphones","category":"Electronics","price":119.99}`),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		assert.Equal(t, events.ActionUpdated, got.Action)
		assert.Equal(t, "Electronics", got.Category)
		assert.Equal(t, 119.99, got.Price)
	})

	t.Run("default handler logs the message", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

		err := consumer.processMessage(context.Background(), types.Message{
			Body: aws.String(`{"action":"deleted","product_id":"123"}`),
		})

		require.NoError(t, err)
	})

	t.Run("nil message body", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

		err := consumer.processMessage(context.Background(), types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

		err := consumer.processMessage(context.Background(), types.Message{
			Body: aws.String(`{"invalid json`),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})

	t.Run("handler error", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, func(context.Context, events.ProductMessage) error {
			return errors.New("downstream unavailable")
		})

		err := consumer.processMessage(context.Background(), types.Message{
			Body: aws.String(`{"action":"created","product_id":"123"}`),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to handle message")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.NotNil(t, params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, errors.New("failed to delete")
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL)

		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("receives, processes and deletes messages", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(`{"action":"created","product_id":"123","name":"Headphones","price":129.99}`),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, mockClient.deleted)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, errors.New("failed to receive")
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL)

		err := consumer.receiveMessages(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})

	t.Run("keeps messages that fail processing", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{Body: aws.String(`{"invalid json`), ReceiptHandle: aws.String("test-receipt-handle")},
					},
				}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL)

		err := consumer.receiveMessages(context.Background())

		// Processing errors are logged but don't stop the consumer
		require.NoError(t, err)
		assert.Zero(t, mockClient.deleted)
	})
}

func TestConsumer_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

	err := consumer.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
