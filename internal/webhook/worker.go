package webhook

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/queue"
)

// Run drains q in a loop, calling Reconcile on each message and deleting it
// on success, until ctx is canceled. Grounded on
// cmd/webhook-processor/main.go's HandleSQSEvent loop, adapted to a
// long-running poll instead of one Lambda invocation per batch.
func (r *Reconciler) Run(ctx context.Context, q queue.Queue, batchSize int, pollInterval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := q.Receive(ctx, batchSize)
		if err != nil {
			logger.Error("webhook worker receive failed", zap.Error(err))
			time.Sleep(pollInterval)
			continue
		}
		if len(messages) == 0 {
			time.Sleep(pollInterval)
			continue
		}

		for _, msg := range messages {
			if err := r.Reconcile(ctx, msg.Event); err != nil {
				logger.Error("webhook reconcile failed",
					zap.String("provider", msg.Provider),
					zap.String("event_type", msg.EventType),
					zap.Error(err))
				continue
			}
			if err := q.Delete(ctx, msg.ReceiptHandle); err != nil {
				logger.Error("webhook worker delete failed", zap.Error(err))
			}
		}
	}
}

// RunBatch processes exactly the messages handed to it and returns the
// first error encountered, matching the Lambda SQS trigger's one-shot
// batch-per-invocation shape in cmd/webhook-processor/main.go.
func (r *Reconciler) RunBatch(ctx context.Context, messages []queue.Message) error {
	for _, msg := range messages {
		if err := r.Reconcile(ctx, msg.Event); err != nil {
			logger.Error("webhook reconcile failed",
				zap.String("provider", msg.Provider),
				zap.String("event_type", msg.EventType),
				zap.Error(err))
			return err
		}
	}
	return nil
}
