package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/types"
)

func newPolicy() *policy.Policy {
	return policy.New(policy.Config{PurchasePriceMinor: 500, PurchaseUses: 50})
}

func TestAuthorizeSuspendedAccount(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{Status: types.AccountSuspended, FreeUsesRemaining: 5}
	d := p.Authorize(acc, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, types.PoolNone, d.Pool)
	assert.Equal(t, "AccountSuspended", d.DenialReason)
}

func TestAuthorizeClosedAccount(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{Status: types.AccountClosed, PaidCredits: 100}
	d := p.Authorize(acc, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, "AccountClosed", d.DenialReason)
}

func TestAuthorizePrefersFreePool(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{Status: types.AccountActive, FreeUsesRemaining: 1, PaidCredits: 1000}
	d := p.Authorize(acc, nil)
	assert.True(t, d.Allowed)
	assert.Equal(t, types.PoolFree, d.Pool)
}

func TestAuthorizeFallsBackToPaidPool(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{Status: types.AccountActive, FreeUsesRemaining: 0, PaidCredits: 1}
	d := p.Authorize(acc, nil)
	assert.True(t, d.Allowed)
	assert.Equal(t, types.PoolPaid, d.Pool)
}

func TestAuthorizeFallsBackToProductPool(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{Status: types.AccountActive}
	inv := &types.ProductInventory{FreeRemaining: 0, PaidCredits: 3}
	d := p.Authorize(acc, inv)
	assert.True(t, d.Allowed)
	assert.Equal(t, types.PoolProduct, d.Pool)
}

func TestAuthorizeDeniesWhenAllPoolsExhausted(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{Status: types.AccountActive}
	inv := &types.ProductInventory{}
	d := p.Authorize(acc, inv)
	assert.False(t, d.Allowed)
	assert.Equal(t, "NoCreditsRemaining", d.DenialReason)
}

func TestSelectMainPoolConsumesOneFreeUseRegardlessOfAmount(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{FreeUsesRemaining: 3, PaidCredits: 1000}
	sel, err := p.SelectMainPool(acc, 250)
	require.NoError(t, err)
	assert.Equal(t, types.PoolFree, sel.Pool)
	assert.Equal(t, int64(2), sel.NewFree)
	assert.Equal(t, int64(1000), sel.NewPaid)
}

func TestSelectMainPoolDecrementsFullAmountFromPaidPool(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{FreeUsesRemaining: 0, PaidCredits: 1000}
	sel, err := p.SelectMainPool(acc, 250)
	require.NoError(t, err)
	assert.Equal(t, types.PoolPaid, sel.Pool)
	assert.Equal(t, int64(0), sel.NewFree)
	assert.Equal(t, int64(750), sel.NewPaid)
}

func TestSelectMainPoolInsufficientCredits(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{FreeUsesRemaining: 0, PaidCredits: 100}
	_, err := p.SelectMainPool(acc, 250)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientCredits, ae.Kind)
	require.NotNil(t, ae.PurchaseHint)
	assert.Equal(t, int64(500), ae.PurchaseHint.PriceMinor)
}

func TestSelectProductPoolDrawsProductFreePoolFirst(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{PaidCredits: 1000}
	inv := &types.ProductInventory{FreeRemaining: 2, PaidCredits: 5}
	sel, err := p.SelectProductPool(acc, inv)
	require.NoError(t, err)
	assert.Equal(t, types.PoolFree, sel.Pool)
	assert.Equal(t, int64(1), sel.NewInvFree)
	assert.Equal(t, int64(5), sel.NewInvPaid)
	assert.False(t, sel.FallbackToMain)
}

func TestSelectProductPoolDrawsOneUnitFromProductPaidPoolRegardlessOfAmount(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{PaidCredits: 1000}
	inv := &types.ProductInventory{FreeRemaining: 0, PaidCredits: 5}
	sel, err := p.SelectProductPool(acc, inv)
	require.NoError(t, err)
	assert.Equal(t, types.PoolPaid, sel.Pool)
	assert.Equal(t, int64(4), sel.NewInvPaid)
	assert.False(t, sel.FallbackToMain)
}

func TestSelectProductPoolFallsBackToMainPaidPool(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{PaidCredits: 10}
	inv := &types.ProductInventory{FreeRemaining: 0, PaidCredits: 0}
	sel, err := p.SelectProductPool(acc, inv)
	require.NoError(t, err)
	assert.Equal(t, types.PoolPaid, sel.Pool)
	assert.True(t, sel.FallbackToMain)
	assert.Equal(t, int64(9), sel.NewMainPaid)
}

func TestSelectProductPoolInsufficientCredits(t *testing.T) {
	p := newPolicy()
	acc := &types.Account{PaidCredits: 0}
	inv := &types.ProductInventory{FreeRemaining: 0, PaidCredits: 0}
	_, err := p.SelectProductPool(acc, inv)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientCredits, ae.Kind)
}
