// Package config loads the process-wide options enumerated in the external
// interfaces section once at startup, gated by the STAGE environment
// variable the way apps/api/server wires it up in the teacher.
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	awssecrets "github.com/cyphera/credit-ledger/internal/client/aws"
	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// RuntimeMode selects how cmd/api and cmd/webhookworker talk to the outside
// world: an in-process HTTP server and channel queue, or a Lambda-proxied
// server backed by real SQS.
type RuntimeMode string

const (
	RuntimeLocal  RuntimeMode = "local"
	RuntimeLambda RuntimeMode = "lambda"
)

// Config is every process-wide option read once at startup.
type Config struct {
	Stage       string
	RuntimeMode RuntimeMode

	DatabaseURL     string
	DatabaseReadURL string

	FreeUsesPerAccount    int64
	PaidUsesPerPurchase   int64
	PricePerPurchaseMinor int64
	DefaultCurrency       string

	PaymentProvider      string
	StripeAPIKey         string
	StripeWebhookSecret  string

	RequestDeadlineSeconds int

	// EnforceBalanceMinorInvariant controls whether write verification
	// of a charge also checks that balance_minor is unchanged by it. See the
	// open question on balance_minor in the design notes.
	EnforceBalanceMinorInvariant bool

	HTTPPort string

	SQSQueueURL string
}

// Load reads .env (if present), validates STAGE, initializes the global
// logger, and resolves every option — from Secrets Manager in dev/prod, from
// the environment directly in local — the way InitializeHandlers does for
// the teacher's API process.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: error loading .env file: %v", err)
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = logger.StageLocal
		log.Printf("warning: STAGE not set, defaulting to %q", stage)
	}
	if !logger.IsValidStage(stage) {
		return nil, fmt.Errorf("invalid STAGE %q: must be one of %s, %s, %s",
			stage, logger.StageProd, logger.StageDev, logger.StageLocal)
	}
	logger.Init(stage)
	logger.Info("loading configuration", zap.String("stage", stage))

	runtimeMode := RuntimeMode(os.Getenv("RUNTIME_MODE"))
	if runtimeMode == "" {
		runtimeMode = RuntimeLocal
	}

	cfg := &Config{
		Stage:                        stage,
		RuntimeMode:                  runtimeMode,
		FreeUsesPerAccount:           envInt64("FREE_USES_PER_ACCOUNT", 3),
		PaidUsesPerPurchase:          envInt64("PAID_USES_PER_PURCHASE", 50),
		PricePerPurchaseMinor:        envInt64("PRICE_PER_PURCHASE_MINOR", 500),
		DefaultCurrency:              envString("DEFAULT_CURRENCY", "USD"),
		PaymentProvider:              envString("PAYMENT_PROVIDER", "stripe"),
		RequestDeadlineSeconds:       int(envInt64("REQUEST_DEADLINE_SECONDS", 10)),
		EnforceBalanceMinorInvariant: envBool("ENFORCE_BALANCE_MINOR_INVARIANT", true),
		HTTPPort:                     envString("PORT", "8080"),
	}

	var secretsClient *awssecrets.SecretsManagerClient
	if stage == logger.StageProd || stage == logger.StageDev {
		var err error
		secretsClient, err = awssecrets.NewSecretsManagerClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("initializing secrets manager client: %w", err)
		}
	}

	dbURL, err := resolveSecret(ctx, secretsClient, stage, "DATABASE_URL_ARN", "DATABASE_URL")
	if err != nil {
		return nil, fmt.Errorf("resolving DATABASE_URL: %w", err)
	}
	cfg.DatabaseURL = dbURL
	cfg.DatabaseReadURL = envString("DATABASE_READ_URL", dbURL)

	stripeKey, err := resolveSecret(ctx, secretsClient, stage, "STRIPE_API_KEY_ARN", "STRIPE_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("resolving STRIPE_API_KEY: %w", err)
	}
	cfg.StripeAPIKey = stripeKey

	stripeWebhookSecret, err := resolveSecret(ctx, secretsClient, stage, "STRIPE_WEBHOOK_SECRET_ARN", "STRIPE_WEBHOOK_SECRET")
	if err != nil {
		return nil, fmt.Errorf("resolving STRIPE_WEBHOOK_SECRET: %w", err)
	}
	cfg.StripeWebhookSecret = stripeWebhookSecret

	if runtimeMode == RuntimeLambda {
		cfg.SQSQueueURL = os.Getenv("SQS_QUEUE_URL")
		if cfg.SQSQueueURL == "" {
			return nil, fmt.Errorf("SQS_QUEUE_URL is required when RUNTIME_MODE=lambda")
		}
	}

	return cfg, nil
}

// resolveSecret fetches a value from Secrets Manager in dev/prod, or reads
// it straight from the environment in local stage.
func resolveSecret(ctx context.Context, client *awssecrets.SecretsManagerClient, stage, arnEnvVar, plainEnvVar string) (string, error) {
	if stage == logger.StageLocal {
		return os.Getenv(plainEnvVar), nil
	}
	return client.GetSecretString(ctx, arnEnvVar, plainEnvVar)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
