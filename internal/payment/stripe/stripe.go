// Package stripe is the Payment Gateway Adapter's Stripe implementation,
// grounded on libs/go/client/payment_sync/stripe/stripe.go's client setup
// and libs/go/client/payment_sync/stripe/webhook.go's signature
// verification and event-type switch, narrowed to the payment-intent and
// refund events the ledger's purchase flow actually drives.
package stripe

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/payment"
	"github.com/cyphera/credit-ledger/internal/types"
)

// metaOAuthProvider etc. are the PaymentIntent metadata keys CreateIntent
// stamps on every intent, so VerifyWebhook can recover the identity to
// credit without a side lookup table.
const (
	metaOAuthProvider = "credit_ledger_oauth_provider"
	metaExternalID    = "credit_ledger_external_id"
	metaWAID          = "credit_ledger_wa_id"
	metaTenantID      = "credit_ledger_tenant_id"
)

// Gateway implements payment.Gateway against the Stripe API.
type Gateway struct {
	client        *stripe.Client
	webhookSecret string
}

var _ payment.Gateway = (*Gateway)(nil)

func New(apiKey, webhookSecret string) *Gateway {
	return &Gateway{client: stripe.NewClient(apiKey, nil), webhookSecret: webhookSecret}
}

func (g *Gateway) Name() string { return "stripe" }

// CreateIntent creates a Stripe PaymentIntent and stamps it with the
// identity metadata VerifyWebhook later reads back.
func (g *Gateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		Params: stripe.Params{
			Metadata: map[string]string{
				"account_id":      req.AccountID,
				"idempotency_key": req.IdempotencyKey,
				metaOAuthProvider: req.Identity.OAuthProvider,
				metaExternalID:    req.Identity.ExternalID,
				metaWAID:          req.Identity.WAID,
				metaTenantID:      req.Identity.TenantID,
			},
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}

	intent, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return payment.Intent{}, apperr.PaymentProviderError("creating stripe payment intent", err)
	}

	return payment.Intent{
		ExternalID:   intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       mapStatus(intent.Status),
	}, nil
}

func (g *Gateway) Confirm(ctx context.Context, externalID string) (payment.Intent, error) {
	intent, err := g.client.V1PaymentIntents.Retrieve(ctx, externalID, nil)
	if err != nil {
		return payment.Intent{}, apperr.PaymentProviderError("retrieving stripe payment intent", err)
	}
	return payment.Intent{
		ExternalID:   intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       mapStatus(intent.Status),
	}, nil
}

func (g *Gateway) Refund(ctx context.Context, externalID string, amountMinor int64) error {
	_, err := g.client.V1Refunds.Create(ctx, &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(externalID),
		Amount:        stripe.Int64(amountMinor),
	})
	if err != nil {
		return apperr.PaymentProviderError("issuing stripe refund", err)
	}
	return nil
}

// VerifyWebhook validates the signature header against the configured
// secret, then maps the event type into the canonical WebhookEvent union.
func (g *Gateway) VerifyWebhook(ctx context.Context, body []byte, signatureHeader string) (types.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(body, signatureHeader, g.webhookSecret)
	if err != nil {
		return types.WebhookEvent{}, apperr.SignatureInvalid("stripe webhook signature verification failed")
	}

	logger.Info("stripe webhook verified", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return types.WebhookEvent{}, apperr.PaymentProviderError("unmarshalling payment_intent.succeeded", err)
		}
		return types.WebhookEvent{
			Kind:            types.WebhookPaymentSucceeded,
			ProviderEventID: event.ID,
			Provider:        g.Name(),
			Succeeded: &types.PaymentSucceededEvent{
				ExternalID:      intent.ID,
				AmountMinor:     intent.Amount,
				Currency:        string(intent.Currency),
				AccountIdentity: identityFromMetadata(intent.Metadata),
			},
		}, nil

	case stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return types.WebhookEvent{}, apperr.PaymentProviderError("unmarshalling payment_intent.payment_failed", err)
		}
		reason := ""
		if intent.LastPaymentError != nil {
			reason = intent.LastPaymentError.Msg
		}
		return types.WebhookEvent{
			Kind:            types.WebhookPaymentFailed,
			ProviderEventID: event.ID,
			Provider:        g.Name(),
			Failed:          &types.PaymentFailedEvent{ExternalID: intent.ID, Reason: reason},
		}, nil

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return types.WebhookEvent{}, apperr.PaymentProviderError("unmarshalling charge.refunded", err)
		}
		externalID := ""
		if charge.PaymentIntent != nil {
			externalID = charge.PaymentIntent.ID
		}
		return types.WebhookEvent{
			Kind:            types.WebhookRefund,
			ProviderEventID: event.ID,
			Provider:        g.Name(),
			Refund:          &types.RefundEvent{ExternalID: externalID, AmountMinor: charge.AmountRefunded},
		}, nil

	default:
		return types.WebhookEvent{
			Kind:            types.WebhookIgnored,
			ProviderEventID: event.ID,
			Provider:        g.Name(),
			Ignored:         &types.IgnoredEvent{EventType: string(event.Type)},
		}, nil
	}
}

func identityFromMetadata(meta map[string]string) types.Identity {
	return types.Identity{
		OAuthProvider: meta[metaOAuthProvider],
		ExternalID:    meta[metaExternalID],
		WAID:          meta[metaWAID],
		TenantID:      meta[metaTenantID],
	}
}

func mapStatus(s stripe.PaymentIntentStatus) types.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return types.PaymentSucceeded
	case stripe.PaymentIntentStatusProcessing:
		return types.PaymentProcessing
	case stripe.PaymentIntentStatusCanceled:
		return types.PaymentCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusRequiresConfirmation, stripe.PaymentIntentStatusRequiresAction:
		return types.PaymentRequiresMethod
	default:
		return types.PaymentProcessing
	}
}
