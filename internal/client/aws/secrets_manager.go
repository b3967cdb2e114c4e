// Package aws wraps the AWS SDK clients the ledger needs at startup:
// Secrets Manager for DSNs and provider credentials.
package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/logger"
)

// SecretsManagerClient wraps the AWS Secrets Manager client with the
// ARN-env-var-with-plaintext-fallback convention the rest of the ledger's
// configuration loading uses.
type SecretsManagerClient struct {
	svc *secretsmanager.Client
}

// NewSecretsManagerClient builds a client from the default AWS credential
// chain (environment, shared config, or an IAM role when deployed).
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &SecretsManagerClient{svc: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecretString resolves a secret named by the ARN held in secretArnEnvVar.
// If that env var is unset, or the fetch fails, it falls back to reading
// fallbackEnvVar directly.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar, fallbackEnvVar string) (string, error) {
	if secretArn := os.Getenv(secretArnEnvVar); secretArn != "" {
		result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		})
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			return *result.SecretString, nil
		}
		logger.Warn("failed to fetch secret from Secrets Manager, falling back to plain env var",
			zap.String("arn_env_var", secretArnEnvVar),
			zap.String("fallback_env_var", fallbackEnvVar),
			zap.Error(err))
	}

	if v := os.Getenv(fallbackEnvVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret not found via %q or %q", secretArnEnvVar, fallbackEnvVar)
}
