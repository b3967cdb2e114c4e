// Package policy implements the Credit Policy: the authorisation decision
// used by credit-check and pre-charge, and the pool-selection arithmetic
// the Ledger Engine applies inside the charge transaction.
package policy

import (
	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/types"
)

// Config carries the purchase hint values attached to a NoCreditsRemaining
// denial.
type Config struct {
	PurchasePriceMinor int64
	PurchaseUses       int64
}

type Policy struct {
	cfg Config
}

func New(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// Decision is the outcome of an authorisation check.
type Decision struct {
	Allowed      bool
	Pool         types.Pool
	DenialReason string
}

// Authorize answers "may this principal be served?" For a product-scoped
// check, pass the product's inventory row (nil if none exists yet).
func (p *Policy) Authorize(acc *types.Account, productInv *types.ProductInventory) Decision {
	switch acc.Status {
	case types.AccountSuspended:
		return Decision{Allowed: false, Pool: types.PoolNone, DenialReason: "AccountSuspended"}
	case types.AccountClosed:
		return Decision{Allowed: false, Pool: types.PoolNone, DenialReason: "AccountClosed"}
	}

	if acc.FreeUsesRemaining > 0 {
		return Decision{Allowed: true, Pool: types.PoolFree}
	}
	if acc.PaidCredits > 0 {
		return Decision{Allowed: true, Pool: types.PoolPaid}
	}
	if productInv != nil && (productInv.FreeRemaining > 0 || productInv.PaidCredits > 0) {
		return Decision{Allowed: true, Pool: types.PoolProduct}
	}
	return Decision{Allowed: false, Pool: types.PoolNone, DenialReason: "NoCreditsRemaining"}
}

// PurchaseHint builds the hint attached to a NoCreditsRemaining denial.
func (p *Policy) PurchaseHint() *apperr.PurchaseHint {
	return &apperr.PurchaseHint{PriceMinor: p.cfg.PurchasePriceMinor, Uses: p.cfg.PurchaseUses}
}

// MainPoolSelection is the result of selecting a pool for a non-product
// charge: the account's new balances after the charge is applied.
type MainPoolSelection struct {
	Pool     types.Pool
	NewFree  int64
	NewPaid  int64
}

// SelectMainPool implements §4.6's main-pool rule: a free use is consumed
// whole (decrement of exactly one) before any paid credits are touched;
// once the free pool is exhausted, paid_credits is decremented by the
// charge's full amount_minor.
func (p *Policy) SelectMainPool(acc *types.Account, amountMinor int64) (MainPoolSelection, error) {
	if acc.FreeUsesRemaining >= 1 {
		return MainPoolSelection{Pool: types.PoolFree, NewFree: acc.FreeUsesRemaining - 1, NewPaid: acc.PaidCredits}, nil
	}
	if acc.PaidCredits >= amountMinor {
		return MainPoolSelection{Pool: types.PoolPaid, NewFree: acc.FreeUsesRemaining, NewPaid: acc.PaidCredits - amountMinor}, nil
	}
	return MainPoolSelection{}, apperr.InsufficientCredits("no pool can cover the charge", p.PurchaseHint())
}

// ProductPoolSelection is the result of selecting a pool for a
// product-scoped charge.
type ProductPoolSelection struct {
	Pool            types.Pool
	NewInvFree      int64
	NewInvPaid      int64
	FallbackToMain  bool
	NewMainPaid     int64
}

// SelectProductPool implements §4.6's product rule: draw from the
// product's own free pool, then its own paid pool, then fall back to the
// account's main paid_credits — each path draws exactly one unit per
// charge, regardless of amount_minor, matching the source behaviour §4.6
// and §9 direct us to preserve.
func (p *Policy) SelectProductPool(acc *types.Account, inv *types.ProductInventory) (ProductPoolSelection, error) {
	if inv.FreeRemaining >= 1 {
		return ProductPoolSelection{Pool: types.PoolFree, NewInvFree: inv.FreeRemaining - 1, NewInvPaid: inv.PaidCredits}, nil
	}
	if inv.PaidCredits >= 1 {
		return ProductPoolSelection{Pool: types.PoolPaid, NewInvFree: inv.FreeRemaining, NewInvPaid: inv.PaidCredits - 1}, nil
	}
	if acc.PaidCredits >= 1 {
		return ProductPoolSelection{
			Pool:           types.PoolPaid,
			NewInvFree:     inv.FreeRemaining,
			NewInvPaid:     inv.PaidCredits,
			FallbackToMain: true,
			NewMainPaid:    acc.PaidCredits - 1,
		}, nil
	}
	return ProductPoolSelection{}, apperr.InsufficientCredits("no pool can cover the product charge", p.PurchaseHint())
}
