// Package webhook implements the Webhook Reconciler: the state machine
// that turns a verified provider event into a PaymentRecord transition and,
// on success, a ledger credit. Grounded on the receive/queue/process split
// in cmd/webhook-receiver/main.go and cmd/webhook-processor/main.go: the
// HTTP layer verifies and enqueues, this package does the rest.
package webhook

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

// Reconciler applies a verified WebhookEvent to the payment_records table
// and, for a succeeded payment, the ledger.
type Reconciler struct {
	store  store.Store
	ledger *ledger.Engine
}

func New(s store.Store, l *ledger.Engine) *Reconciler {
	return &Reconciler{store: s, ledger: l}
}

// Reconcile drives the ∅ → pending → fulfilled/failed transition described
// for the payment record lifecycle. It is safe to call more than once for
// the same ProviderEventID: a payment already in a terminal state is a
// no-op, and the ledger credit itself is idempotent on external_id.
func (r *Reconciler) Reconcile(ctx context.Context, event types.WebhookEvent) error {
	switch event.Kind {
	case types.WebhookPaymentSucceeded:
		return r.reconcileSucceeded(ctx, event.Provider, event.Succeeded)
	case types.WebhookPaymentFailed:
		return r.reconcileFailed(ctx, event.Provider, event.Failed)
	case types.WebhookRefund:
		return r.reconcileRefund(ctx, event.Provider, event.Refund)
	case types.WebhookIgnored:
		logger.Info("ignored webhook event", zap.String("provider", event.Provider), zap.String("event_type", event.Ignored.EventType))
		return nil
	default:
		return apperr.Validation("unrecognized webhook event kind")
	}
}

func (r *Reconciler) reconcileSucceeded(ctx context.Context, provider string, ev *types.PaymentSucceededEvent) error {
	existing, err := r.store.FindPaymentByExternalID(ctx, provider, ev.ExternalID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := r.store.InsertPayment(ctx, types.PaymentRecord{
			PaymentID:   uuid.New(),
			Provider:    provider,
			ExternalID:  ev.ExternalID,
			AmountMinor: ev.AmountMinor,
			Currency:    ev.Currency,
			Status:      types.PaymentProcessing,
		}); err != nil {
			return err
		}
	} else if existing.Status == types.PaymentSucceeded {
		logger.Info("duplicate payment_succeeded webhook ignored", zap.String("external_id", ev.ExternalID))
		return nil
	}

	credit, err := r.ledger.Credit(ctx, ledger.CreditInput{
		Identity:              ev.AccountIdentity,
		AmountMinor:           ev.AmountMinor,
		TransactionType:       types.TransactionPurchase,
		ExternalTransactionID: ev.ExternalID,
		IdempotencyKey:        ev.ExternalID,
		Description:           "payment provider webhook: " + provider,
	})
	if err != nil {
		if ae, ok := apperr.As(err); !ok || ae.Kind != apperr.KindIdempotencyReplay {
			return err
		}
	}

	if err := r.store.UpdatePaymentStatus(ctx, provider, ev.ExternalID, types.PaymentSucceeded); err != nil {
		return err
	}
	if credit != nil {
		if err := r.store.MarkPaymentFulfilled(ctx, provider, ev.ExternalID, credit.CreditID); err != nil {
			return err
		}
	}

	logger.Info("payment fulfilled", zap.String("provider", provider), zap.String("external_id", ev.ExternalID))
	return nil
}

func (r *Reconciler) reconcileFailed(ctx context.Context, provider string, ev *types.PaymentFailedEvent) error {
	existing, err := r.store.FindPaymentByExternalID(ctx, provider, ev.ExternalID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := r.store.InsertPayment(ctx, types.PaymentRecord{
			PaymentID:  uuid.New(),
			Provider:   provider,
			ExternalID: ev.ExternalID,
			Status:     types.PaymentFailed,
		}); err != nil {
			return err
		}
		logger.Warn("payment failed", zap.String("provider", provider), zap.String("external_id", ev.ExternalID), zap.String("reason", ev.Reason))
		return nil
	}
	if existing.Status == types.PaymentSucceeded {
		logger.Warn("payment_failed webhook received for already-succeeded payment, ignoring",
			zap.String("provider", provider), zap.String("external_id", ev.ExternalID))
		return nil
	}
	return r.store.UpdatePaymentStatus(ctx, provider, ev.ExternalID, types.PaymentFailed)
}

// reconcileRefund logs the refund for audit; per the design notes, clawing
// back already-spent credits is out of scope, so no ledger debit is
// issued here.
func (r *Reconciler) reconcileRefund(ctx context.Context, provider string, ev *types.RefundEvent) error {
	logger.Info("refund observed", zap.String("provider", provider), zap.String("external_id", ev.ExternalID), zap.Int64("amount_minor", ev.AmountMinor))
	return nil
}
