// Command api serves the billing request surface described in §6: a
// local HTTP server, or an API-Gateway-fronted Lambda when
// RUNTIME_MODE=lambda, mirroring the dual local/Lambda dispatch in
// cmd/webhook-receiver/main.go.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awssdkconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/audit"
	"github.com/cyphera/credit-ledger/internal/config"
	"github.com/cyphera/credit-ledger/internal/handlers"
	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/payment"
	"github.com/cyphera/credit-ledger/internal/payment/stripe"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/queue"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/server"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/webhook"
)

var ginLambda *ginadapter.GinLambdaV2

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
	if err := st.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	reg := registry.New(st, registry.Config{
		FreeUsesPerAccount: cfg.FreeUsesPerAccount,
		DefaultCurrency:    cfg.DefaultCurrency,
	})
	pol := policy.New(policy.Config{
		PurchasePriceMinor: cfg.PricePerPurchaseMinor,
		PurchaseUses:       cfg.PaidUsesPerPurchase,
	})
	led := ledger.New(st, reg, pol, ledger.Config{EnforceBalanceMinorInvariant: cfg.EnforceBalanceMinorInvariant})
	aud := audit.New(st)

	var gw payment.Gateway
	switch cfg.PaymentProvider {
	case "stripe":
		gw = stripe.New(cfg.StripeAPIKey, cfg.StripeWebhookSecret)
	default:
		logger.Fatal("unsupported PAYMENT_PROVIDER", zap.String("provider", cfg.PaymentProvider))
	}

	q, err := buildQueue(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize webhook queue", zap.Error(err))
	}

	// In local/dev mode the queue is an in-process channel, so this
	// process also drains it: cmd/webhookworker's Lambda entrypoint only
	// matters once RUNTIME_MODE=lambda switches the queue to real SQS.
	if cfg.RuntimeMode != config.RuntimeLambda {
		reconciler := webhook.New(st, led)
		go reconciler.Run(ctx, q, 10, 2*time.Second)
	}

	h := handlers.New(st, reg, pol, led, aud, gw, q, handlers.PurchaseConfig{
		PriceMinor: cfg.PricePerPurchaseMinor,
		Uses:       cfg.PaidUsesPerPurchase,
		Currency:   cfg.DefaultCurrency,
	})
	router := server.New(h)

	if cfg.RuntimeMode == config.RuntimeLambda {
		ginLambda = ginadapter.NewV2(router)
		lambda.Start(handleLambdaRequest)
		return
	}

	runLocalServer(router, cfg.HTTPPort)
}

func handleLambdaRequest(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func runLocalServer(router http.Handler, port string) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		logger.Info("api server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("api server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("api server forced to shutdown", zap.Error(err))
	}
	logger.Info("api server exited")
}

// buildQueue wires the shared webhook queue: a real SQS client in lambda
// mode, an in-process buffered channel otherwise, which this process
// drains itself in local development.
func buildQueue(ctx context.Context, cfg *config.Config) (queue.Queue, error) {
	if cfg.RuntimeMode != config.RuntimeLambda {
		return queue.NewLocalQueue(256), nil
	}
	awsCfg, err := awssdkconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), nil
}
