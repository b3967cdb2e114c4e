package webhook_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
	"github.com/cyphera/credit-ledger/internal/webhook"
)

func newReconciler() (*webhook.Reconciler, *store.MemoryStore) {
	s := store.NewMemoryStore()
	reg := registry.New(s, registry.Config{FreeUsesPerAccount: 3, DefaultCurrency: "USD"})
	pol := policy.New(policy.Config{PurchasePriceMinor: 500, PurchaseUses: 50})
	eng := ledger.New(s, reg, pol, ledger.Config{})
	return webhook.New(s, eng), s
}

func succeededEvent(externalID string, amount int64) types.WebhookEvent {
	return types.WebhookEvent{
		Kind:            types.WebhookPaymentSucceeded,
		Provider:        "stripe",
		ProviderEventID: "evt_" + externalID,
		Succeeded: &types.PaymentSucceededEvent{
			ExternalID:      externalID,
			AmountMinor:     amount,
			Currency:        "USD",
			AccountIdentity: types.Identity{OAuthProvider: "oauth:google", ExternalID: "user-1"},
		},
	}
}

func TestReconcileSucceededCreditsAccountAndFulfillsPayment(t *testing.T) {
	r, s := newReconciler()
	ctx := context.Background()

	err := r.Reconcile(ctx, succeededEvent("pi_1", 500))
	require.NoError(t, err)

	record, err := s.FindPaymentByExternalID(ctx, "stripe", "pi_1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, types.PaymentSucceeded, record.Status)
	require.NotNil(t, record.FulfillingCreditID)
}

func TestReconcileSucceededIsIdempotentOnRedelivery(t *testing.T) {
	r, s := newReconciler()
	ctx := context.Background()

	require.NoError(t, r.Reconcile(ctx, succeededEvent("pi_dup", 500)))
	require.NoError(t, r.Reconcile(ctx, succeededEvent("pi_dup", 500)))

	credits, err := s.ListCredits(ctx, mustAccountID(ctx, t, s), 10, 0)
	require.NoError(t, err)
	assert.Len(t, credits, 1)
}

func mustAccountID(ctx context.Context, t *testing.T, s *store.MemoryStore) uuid.UUID {
	t.Helper()
	acc, err := s.FindAccountByIdentity(ctx, types.Identity{OAuthProvider: "oauth:google", ExternalID: "user-1"})
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc.AccountID
}

func TestReconcileFailedMarksPaymentFailed(t *testing.T) {
	r, s := newReconciler()
	ctx := context.Background()

	event := types.WebhookEvent{
		Kind:            types.WebhookPaymentFailed,
		Provider:        "stripe",
		ProviderEventID: "evt_failed",
		Failed:          &types.PaymentFailedEvent{ExternalID: "pi_failed", Reason: "card_declined"},
	}
	require.NoError(t, r.Reconcile(ctx, event))

	record, err := s.FindPaymentByExternalID(ctx, "stripe", "pi_failed")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, types.PaymentFailed, record.Status)
}

func TestReconcileFailedIgnoredAfterAlreadySucceeded(t *testing.T) {
	r, s := newReconciler()
	ctx := context.Background()

	require.NoError(t, r.Reconcile(ctx, succeededEvent("pi_race", 500)))
	err := r.Reconcile(ctx, types.WebhookEvent{
		Kind:            types.WebhookPaymentFailed,
		Provider:        "stripe",
		ProviderEventID: "evt_race_failed",
		Failed:          &types.PaymentFailedEvent{ExternalID: "pi_race", Reason: "late failure notification"},
	})
	require.NoError(t, err)

	record, err := s.FindPaymentByExternalID(ctx, "stripe", "pi_race")
	require.NoError(t, err)
	assert.Equal(t, types.PaymentSucceeded, record.Status)
}

func TestReconcileRefundIsLogOnly(t *testing.T) {
	r, _ := newReconciler()
	err := r.Reconcile(context.Background(), types.WebhookEvent{
		Kind:            types.WebhookRefund,
		Provider:        "stripe",
		ProviderEventID: "evt_refund",
		Refund:          &types.RefundEvent{ExternalID: "pi_refunded", AmountMinor: 500},
	})
	assert.NoError(t, err)
}

func TestReconcileIgnoredEventIsNoop(t *testing.T) {
	r, _ := newReconciler()
	err := r.Reconcile(context.Background(), types.WebhookEvent{
		Kind:            types.WebhookIgnored,
		Provider:        "stripe",
		ProviderEventID: "evt_other",
		Ignored:         &types.IgnoredEvent{EventType: "customer.created"},
	})
	assert.NoError(t, err)
}
