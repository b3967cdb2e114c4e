// Package queue decouples webhook signature verification (the HTTP
// receiver) from ledger crediting (the async worker), grounded on
// cmd/webhook-receiver/main.go's queueWebhookEvent /
// cmd/webhook-processor/main.go's HandleSQSEvent split. Two
// implementations satisfy Queue: an SQS-backed one for the deployed
// service, and an in-process buffered-channel one for local/dev mode.
package queue

import (
	"context"
	"encoding/json"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/types"
)

// Message wraps a verified webhook event with the provider-derived
// attributes the worker uses for routing and logging before it has
// unmarshalled the body.
type Message struct {
	ReceiptHandle string
	Provider      string
	EventType     string
	Event         types.WebhookEvent
}

// Queue is the narrow surface the webhook receiver and worker need.
type Queue interface {
	// Enqueue hands a verified event to the queue for async processing.
	Enqueue(ctx context.Context, event types.WebhookEvent) error

	// Receive returns up to max messages. The SQS implementation long-polls;
	// the local one returns immediately with whatever is buffered.
	Receive(ctx context.Context, max int) ([]Message, error)

	// Delete acknowledges successful processing of a received message.
	Delete(ctx context.Context, receiptHandle string) error
}

func marshal(event types.WebhookEvent) ([]byte, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, apperr.ServiceUnavailable("marshalling webhook event for queue", err)
	}
	return b, nil
}

func unmarshal(body []byte) (types.WebhookEvent, error) {
	var event types.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return types.WebhookEvent{}, apperr.ServiceUnavailable("unmarshalling webhook event from queue", err)
	}
	return event, nil
}
