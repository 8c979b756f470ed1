package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-catalog/internal/events"
	"github.com/iyhunko/product-catalog/internal/repository/memory"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryQueue is an in-process stand-in for one SQS queue.
type memoryQueue struct {
	mu       sync.Mutex
	seq      int
	messages map[string]types.Message
	deleted  []string
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{messages: map[string]types.Message{}}
}

func (q *memoryQueue) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	handle := fmt.Sprintf("receipt-%d", q.seq)
	q.messages[handle] = types.Message{
		Body:              params.MessageBody,
		ReceiptHandle:     aws.String(handle),
		MessageAttributes: params.MessageAttributes,
	}
	return &sqs.SendMessageOutput{MessageId: aws.String(handle)}, nil
}

func (q *memoryQueue) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	out := &sqs.ReceiveMessageOutput{}
	for _, msg := range q.messages {
		if int32(len(out.Messages)) >= params.MaxNumberOfMessages {
			break
		}
		out.Messages = append(out.Messages, msg)
	}
	q.mu.Unlock()

	if len(out.Messages) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return out, nil
}

func (q *memoryQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.messages, *params.ReceiptHandle)
	q.deleted = append(q.deleted, *params.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func (q *memoryQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

func TestNotificationService_Integration(t *testing.T) {
	queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/product-events"
	queue := newMemoryQueue()

	router := newRouter(memory.NewProductRepository(), sqspkg.NewPublisher(queue, queueURL))

	var (
		mu       sync.Mutex
		received []events.ProductMessage
	)
	consumer := sqspkg.NewConsumer(queue, queueURL, func(_ context.Context, msg events.ProductMessage) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Start(ctx)
	}()

	w := serve(router, http.MethodPost, "/api/products", map[string]any{
		"name":           "Headphones",
		"description":    "Wireless",
		"price":          129.99,
		"category":       "Electronics",
		"stock_quantity": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, events.ActionCreated, received[0].Action)
	assert.Equal(t, "Headphones", received[0].Name)
	assert.Equal(t, "Electronics", received[0].Category)
	assert.Equal(t, 129.99, received[0].Price)
	assert.Equal(t, 0, queue.pending(), "handled messages are deleted")
}
