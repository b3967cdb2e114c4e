package queue

import (
	"context"

	"github.com/google/uuid"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/types"
)

// LocalQueue is an in-process buffered-channel stand-in for SQS, used in
// local stage so the receiver/worker split runs without AWS.
type LocalQueue struct {
	ch chan Message

	// delivered tracks receipt handles that have been handed out but not
	// yet deleted. Delete removes a handle without checking that it is
	// outstanding.
	delivered map[string]struct{}
}

func NewLocalQueue(capacity int) *LocalQueue {
	return &LocalQueue{
		ch:        make(chan Message, capacity),
		delivered: make(map[string]struct{}),
	}
}

var _ Queue = (*LocalQueue)(nil)

func (q *LocalQueue) Enqueue(ctx context.Context, event types.WebhookEvent) error {
	msg := Message{
		ReceiptHandle: uuid.NewString(),
		Provider:      event.Provider,
		EventType:     string(event.Kind),
		Event:         event,
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return apperr.ServiceUnavailable("enqueue canceled", ctx.Err())
	}
}

func (q *LocalQueue) Receive(ctx context.Context, max int) ([]Message, error) {
	messages := make([]Message, 0, max)
	for len(messages) < max {
		select {
		case msg := <-q.ch:
			q.delivered[msg.ReceiptHandle] = struct{}{}
			messages = append(messages, msg)
		case <-ctx.Done():
			return messages, nil
		default:
			return messages, nil
		}
	}
	return messages, nil
}

func (q *LocalQueue) Delete(ctx context.Context, receiptHandle string) error {
	delete(q.delivered, receiptHandle)
	return nil
}
