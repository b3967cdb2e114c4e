package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

func testIdentity() types.Identity {
	return types.Identity{OAuthProvider: "oauth:slack", ExternalID: "U123"}
}

func newEngine(t *testing.T) (*ledger.Engine, *store.MemoryStore, *registry.Registry) {
	t.Helper()
	s := store.NewMemoryStore()
	reg := registry.New(s, registry.Config{FreeUsesPerAccount: 3, DefaultCurrency: "USD"})
	pol := policy.New(policy.Config{PurchasePriceMinor: 500, PurchaseUses: 50})
	eng := ledger.New(s, reg, pol, ledger.Config{EnforceBalanceMinorInvariant: false})
	return eng, s, reg
}

func TestChargeDrawsFromFreePoolFirst(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	charge, err := eng.Charge(ctx, ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    100,
		IdempotencyKey: "charge-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), charge.AmountMinor)
}

func TestChargeFallsBackToPaidPoolOnceFreeExhausted(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := eng.Charge(ctx, ledger.ChargeInput{
			Identity:       testIdentity(),
			AmountMinor:    10,
			IdempotencyKey: uuidKey(i),
		})
		require.NoError(t, err)
	}

	_, err := eng.Credit(ctx, ledger.CreditInput{
		Identity:        testIdentity(),
		AmountMinor:     1000,
		TransactionType: types.TransactionPurchase,
		IdempotencyKey:  "fund-up",
	})
	require.NoError(t, err)

	charge, err := eng.Charge(ctx, ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    250,
		IdempotencyKey: "paid-charge",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000-250), charge.BalanceAfter)
}

func uuidKey(i int) string {
	return "free-charge-" + string(rune('a'+i))
}

func TestChargeIdempotentReplayReturnsExistingChargeAndError(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	in := ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    100,
		IdempotencyKey: "replay-key",
	}
	first, err := eng.Charge(ctx, in)
	require.NoError(t, err)

	second, err := eng.Charge(ctx, in)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindIdempotencyReplay, ae.Kind)
	require.NotNil(t, second)
	assert.Equal(t, first.ChargeID, second.ChargeID)
	assert.Equal(t, first.ChargeID.String(), ae.ExistingID)
}

func TestChargeRejectsNonPositiveAmount(t *testing.T) {
	eng, _, _ := newEngine(t)
	_, err := eng.Charge(context.Background(), ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    0,
		IdempotencyKey: "zero",
	})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
}

func TestChargeDeniedForSuspendedAccount(t *testing.T) {
	eng, s, reg := newEngine(t)
	ctx := context.Background()

	acc, err := reg.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)
	s.SetAccountStatusForTest(acc.AccountID, types.AccountSuspended)

	_, err = eng.Charge(ctx, ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    100,
		IdempotencyKey: "blocked",
	})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAccountSuspended, ae.Kind)
}

func TestChargeInsufficientCreditsOnExhaustedAccount(t *testing.T) {
	eng, _, reg := newEngine(t)
	ctx := context.Background()

	_, err := reg.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := eng.Charge(ctx, ledger.ChargeInput{
			Identity:       testIdentity(),
			AmountMinor:    10,
			IdempotencyKey: uuidKey(i),
		})
		require.NoError(t, err)
	}

	_, err = eng.Charge(ctx, ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    10,
		IdempotencyKey: "overdrawn",
	})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientCredits, ae.Kind)
	require.NotNil(t, ae.PurchaseHint)
}

func TestChargeProductScopedDrawsProductPoolBeforeMain(t *testing.T) {
	eng, s, reg := newEngine(t)
	ctx := context.Background()

	acc, err := reg.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)
	// Drain the account's free pool so the product charge can't draw it.
	for i := 0; i < 3; i++ {
		_, err := eng.Charge(ctx, ledger.ChargeInput{
			Identity:       testIdentity(),
			AmountMinor:    1,
			IdempotencyKey: uuidKey(i),
		})
		require.NoError(t, err)
	}

	_, err = s.LockProductInventory(ctx, acc.AccountID, "voice-clone", store.ProductInventorySeed{FreeRemaining: 1, PaidCredits: 2})
	require.NoError(t, err)

	charge, err := eng.Charge(ctx, ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    999,
		IdempotencyKey: "product-charge-1",
		ProductType:    "voice-clone",
	})
	require.NoError(t, err)
	assert.Equal(t, "voice-clone", charge.ProductType)

	inv, err := s.GetProductInventory(ctx, acc.AccountID, "voice-clone")
	require.NoError(t, err)
	assert.Equal(t, int64(0), inv.FreeRemaining)
	assert.Equal(t, int64(2), inv.PaidCredits)
}

func TestChargeProductScopedFallsBackToMainPaidPool(t *testing.T) {
	eng, s, reg := newEngine(t)
	ctx := context.Background()

	acc, err := reg.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := eng.Charge(ctx, ledger.ChargeInput{
			Identity:       testIdentity(),
			AmountMinor:    1,
			IdempotencyKey: uuidKey(i),
		})
		require.NoError(t, err)
	}
	_, err = eng.Credit(ctx, ledger.CreditInput{
		Identity:        testIdentity(),
		AmountMinor:     50,
		TransactionType: types.TransactionPurchase,
		IdempotencyKey:  "topup",
	})
	require.NoError(t, err)

	_, err = s.LockProductInventory(ctx, acc.AccountID, "voice-clone", store.ProductInventorySeed{})
	require.NoError(t, err)

	_, err = eng.Charge(ctx, ledger.ChargeInput{
		Identity:       testIdentity(),
		AmountMinor:    999,
		IdempotencyKey: "product-fallback",
		ProductType:    "voice-clone",
	})
	require.NoError(t, err)

	acc2, err := s.GetAccount(ctx, acc.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(49), acc2.PaidCredits)
}

func TestCreditAddsToPaidPoolAndIsIdempotent(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	in := ledger.CreditInput{
		Identity:              testIdentity(),
		AmountMinor:           500,
		TransactionType:       types.TransactionPurchase,
		ExternalTransactionID: "pi_123",
		IdempotencyKey:        "pi_123",
	}
	first, err := eng.Credit(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(500), first.BalanceAfter)

	second, err := eng.Credit(ctx, in)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindIdempotencyReplay, ae.Kind)
	assert.Equal(t, first.CreditID, second.CreditID)
}

func TestCreditAllowedEvenWhenAccountSuspended(t *testing.T) {
	eng, s, reg := newEngine(t)
	ctx := context.Background()

	acc, err := reg.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)
	s.SetAccountStatusForTest(acc.AccountID, types.AccountSuspended)

	credit, err := eng.Credit(ctx, ledger.CreditInput{
		Identity:        testIdentity(),
		AmountMinor:     100,
		TransactionType: types.TransactionRefund,
		IdempotencyKey:  "refund-while-suspended",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), credit.BalanceAfter)
}
