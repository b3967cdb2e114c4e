// Package payment defines the Payment Gateway Adapter: the narrow surface
// the purchase flow and webhook receiver need from a payment provider,
// grounded on the ps.PaymentSyncService shape in
// libs/go/client/payment_sync/interface.go, trimmed to the subset this
// ledger actually drives (no customer/subscription/product sync).
package payment

import (
	"context"

	"github.com/cyphera/credit-ledger/internal/types"
)

// IntentRequest describes a purchase the caller wants a provider-hosted
// payment collected for.
type IntentRequest struct {
	AccountID      string
	Identity       types.Identity
	AmountMinor    int64
	Currency       string
	Description    string
	IdempotencyKey string
}

// Intent is the provider's handle for a not-yet-settled payment.
type Intent struct {
	ExternalID   string
	ClientSecret string
	Status       types.PaymentStatus
}

// Gateway is the boundary between the ledger and a concrete payment
// provider. Exactly one implementation (stripe) exists today; the
// interface exists so the Webhook Reconciler and purchase handlers never
// import a provider SDK directly.
type Gateway interface {
	// Name identifies the provider, used as the payment_records.provider
	// discriminator and the {provider} path segment on the webhook route.
	Name() string

	// CreateIntent starts a new provider-hosted payment collection.
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)

	// Confirm retrieves the current status of a previously created intent
	// from the provider. The purchase-status endpoint does not call it; it
	// reads the stored payment record.
	Confirm(ctx context.Context, externalID string) (Intent, error)

	// VerifyWebhook checks the request signature and maps the provider's
	// event into the canonical WebhookEvent tagged union. A signature
	// failure is returned as apperr.SignatureInvalid.
	VerifyWebhook(ctx context.Context, body []byte, signatureHeader string) (types.WebhookEvent, error)

	// Refund issues a provider-side refund for a previously succeeded
	// payment.
	Refund(ctx context.Context, externalID string, amountMinor int64) error
}
