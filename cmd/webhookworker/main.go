// Command webhookworker is the Lambda entrypoint that drains the SQS queue
// of verified payment webhook events and runs them through the ledger
// engine, grounded on cmd/webhook-processor/main.go's HandleSQSEvent +
// lambda.Start wiring.
//
// In local/dev mode this binary has nothing to do: cmd/api already starts
// the same reconciler as a background goroutine against its own in-process
// LocalQueue, since a channel can't be shared across two OS processes.
// Running this binary locally just logs that and blocks until signaled.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/config"
	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/queue"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/webhook"
)

var reconciler *webhook.Reconciler

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer st.Close()

	reg := registry.New(st, registry.Config{
		FreeUsesPerAccount: cfg.FreeUsesPerAccount,
		DefaultCurrency:    cfg.DefaultCurrency,
	})
	pol := policy.New(policy.Config{
		PurchasePriceMinor: cfg.PricePerPurchaseMinor,
		PurchaseUses:       cfg.PaidUsesPerPurchase,
	})
	led := ledger.New(st, reg, pol, ledger.Config{EnforceBalanceMinorInvariant: cfg.EnforceBalanceMinorInvariant})
	reconciler = webhook.New(st, led)

	if cfg.RuntimeMode == config.RuntimeLambda {
		lambda.Start(handleSQSEvent)
		return
	}

	logger.Info("webhookworker has nothing to do in local mode; cmd/api already drains the in-process queue")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// handleSQSEvent is the Lambda trigger handler: one invocation per SQS
// batch. Returning an error lets SQS retry/DLQ the whole batch, matching
// HandleSQSEvent's behavior in the teacher.
func handleSQSEvent(ctx context.Context, event events.SQSEvent) error {
	logger.Info("webhook worker handling SQS event", zap.Int("record_count", len(event.Records)))

	messages := make([]queue.Message, 0, len(event.Records))
	for _, record := range event.Records {
		msg, err := queue.DecodeSQSRecord(record)
		if err != nil {
			logger.Error("failed to decode SQS record", zap.String("message_id", record.MessageId), zap.Error(err))
			return err
		}
		messages = append(messages, msg)
	}

	return reconciler.RunBatch(ctx, messages)
}
