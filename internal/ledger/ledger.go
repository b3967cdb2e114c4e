// Package ledger implements the Ledger Engine: the charge and credit
// protocols that mutate account balances under a row lock, with write
// verification inside the transaction before commit, grounded on the
// lock-read-modify-verify-commit shape used across
// libs/go/services/account_service.go's mutating methods.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/idempotency"
	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

// Config carries the subset of process-wide options the engine needs.
type Config struct {
	// EnforceBalanceMinorInvariant gates whether write verification also
	// checks balance_minor = balance_minor_before, since the field is
	// presently unused by pricing. See the design notes' open question.
	EnforceBalanceMinorInvariant bool
}

// Engine applies charges and credits under row-level locks.
type Engine struct {
	store    store.Store
	registry *registry.Registry
	policy   *policy.Policy
	cfg      Config
}

func New(s store.Store, reg *registry.Registry, pol *policy.Policy, cfg Config) *Engine {
	return &Engine{store: s, registry: reg, policy: pol, cfg: cfg}
}

// ChargeInput is the request to deduct one unit / amount_minor from an
// account.
type ChargeInput struct {
	Identity       types.Identity
	AmountMinor    int64
	IdempotencyKey string
	Metadata       types.ChargeMetadata
	ProductType    string
}

// Charge implements the §4.4 protocol.
func (e *Engine) Charge(ctx context.Context, in ChargeInput) (*types.Charge, error) {
	if in.AmountMinor <= 0 {
		return nil, apperr.Validation("amount_minor must be positive")
	}
	if err := idempotency.Validate(in.IdempotencyKey); err != nil {
		return nil, err
	}

	acc, err := e.registry.FindOrCreate(ctx, in.Identity)
	if err != nil {
		return nil, err
	}
	if acc.Status != types.AccountActive {
		return nil, statusError(acc.Status)
	}

	if existing, err := e.store.FindChargeByIdempotency(ctx, acc.AccountID, in.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, apperr.IdempotencyReplay("charge already recorded for this idempotency key", existing.ChargeID.String())
	}

	var result *types.Charge
	err = e.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		locked, err := q.LockAccountForUpdate(ctx, acc.AccountID)
		if err != nil {
			return err
		}
		if locked.Status != types.AccountActive {
			return statusError(locked.Status)
		}

		if existing, err := q.FindChargeByIdempotency(ctx, locked.AccountID, in.IdempotencyKey); err != nil {
			return err
		} else if existing != nil {
			result = existing
			return apperr.IdempotencyReplay("charge already recorded for this idempotency key", existing.ChargeID.String())
		}

		var (
			pool         types.Pool
			newFree      = locked.FreeUsesRemaining
			newPaid      = locked.PaidCredits
			newTotalUses = locked.TotalUses
			inv          *types.ProductInventory
			invAfterFree int64
			invAfterPaid int64
			productDrawn bool
		)

		if in.ProductType != "" {
			inv, err = q.LockProductInventory(ctx, locked.AccountID, in.ProductType, store.ProductInventorySeed{})
			if err != nil {
				return err
			}
			sel, err := e.policy.SelectProductPool(locked, inv)
			if err != nil {
				return err
			}
			pool = sel.Pool
			invAfterFree, invAfterPaid = sel.NewInvFree, sel.NewInvPaid
			productDrawn = true
			if sel.FallbackToMain {
				newPaid = sel.NewMainPaid
			}
		} else {
			sel, err := e.policy.SelectMainPool(locked, in.AmountMinor)
			if err != nil {
				return err
			}
			pool = sel.Pool
			newFree, newPaid = sel.NewFree, sel.NewPaid
			newTotalUses++
		}

		balanceBefore := locked.PaidCredits
		balanceAfter := newPaid

		if err := q.UpdateAccountBalances(ctx, locked.AccountID, newFree, newPaid, locked.BalanceMinor, newTotalUses); err != nil {
			return err
		}

		charge := types.Charge{
			ChargeID:       uuid.New(),
			AccountID:      locked.AccountID,
			AmountMinor:    in.AmountMinor,
			Currency:       locked.Currency,
			Description:    in.Metadata.RequestID,
			IdempotencyKey: in.IdempotencyKey,
			Metadata:       in.Metadata,
			ProductType:    in.ProductType,
			BalanceBefore:  balanceBefore,
			BalanceAfter:   balanceAfter,
		}
		if err := q.InsertCharge(ctx, charge); err != nil {
			return err
		}

		if productDrawn {
			inv.FreeRemaining, inv.PaidCredits = invAfterFree, invAfterPaid
			inv.TotalUses++
			if err := q.UpdateProductInventory(ctx, *inv); err != nil {
				return err
			}
			if err := q.InsertProductUsageLog(ctx, types.ProductUsageLog{
				LogID:          uuid.New(),
				AccountID:      locked.AccountID,
				ProductType:    in.ProductType,
				ChargeID:       charge.ChargeID,
				AmountMinor:    in.AmountMinor,
				IdempotencyKey: in.IdempotencyKey,
			}); err != nil {
				return err
			}
		}

		if err := e.verifyCharge(ctx, q, locked.AccountID, charge.ChargeID, newFree, newPaid, locked.BalanceMinor, charge); err != nil {
			return err
		}

		logger.Info("charge applied",
			zap.String("account_id", locked.AccountID.String()),
			zap.String("pool", string(pool)),
			zap.Int64("amount_minor", in.AmountMinor))

		result = &charge
		return nil
	})

	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindIdempotencyReplay {
			return result, err
		}
		return nil, err
	}
	return result, nil
}

// verifyCharge re-reads the account and the just-inserted charge by primary
// key inside the same transaction and compares them to intent, per §4.4
// step 7.
func (e *Engine) verifyCharge(ctx context.Context, q store.Querier, accountID, chargeID uuid.UUID, wantFree, wantPaid, wantBalanceMinor int64, want types.Charge) error {
	acc, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return apperr.WriteVerificationFailure("re-reading account after charge", err)
	}
	if acc.FreeUsesRemaining != wantFree || acc.PaidCredits != wantPaid {
		return apperr.WriteVerificationFailure("account balance mismatch after charge", nil)
	}
	if e.cfg.EnforceBalanceMinorInvariant && acc.BalanceMinor != wantBalanceMinor {
		return apperr.WriteVerificationFailure("balance_minor mismatch after charge", nil)
	}

	got, err := q.GetCharge(ctx, chargeID)
	if err != nil {
		return apperr.WriteVerificationFailure("re-reading charge after insert", err)
	}
	if got.AmountMinor != want.AmountMinor || got.BalanceAfter != want.BalanceAfter || got.AccountID != want.AccountID {
		return apperr.WriteVerificationFailure("charge record mismatch after insert", nil)
	}
	return nil
}

// CreditInput is the request to add to an account's paid_credits balance.
type CreditInput struct {
	Identity              types.Identity
	AmountMinor           int64
	TransactionType       types.TransactionType
	ExternalTransactionID string
	IdempotencyKey        string
	Description           string
}

// Credit implements the §4.5 protocol.
func (e *Engine) Credit(ctx context.Context, in CreditInput) (*types.Credit, error) {
	if in.AmountMinor <= 0 {
		return nil, apperr.Validation("amount_minor must be positive")
	}
	if err := idempotency.Validate(in.IdempotencyKey); err != nil {
		return nil, err
	}

	acc, err := e.registry.FindOrCreate(ctx, in.Identity)
	if err != nil {
		return nil, err
	}

	if existing, err := e.store.FindCreditByIdempotency(ctx, acc.AccountID, in.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, apperr.IdempotencyReplay("credit already recorded for this idempotency key", existing.CreditID.String())
	}

	var result *types.Credit
	err = e.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		locked, err := q.LockAccountForUpdate(ctx, acc.AccountID)
		if err != nil {
			return err
		}

		if existing, err := q.FindCreditByIdempotency(ctx, locked.AccountID, in.IdempotencyKey); err != nil {
			return err
		} else if existing != nil {
			result = existing
			return apperr.IdempotencyReplay("credit already recorded for this idempotency key", existing.CreditID.String())
		}

		balanceBefore := locked.PaidCredits
		newPaid := locked.PaidCredits + in.AmountMinor

		if err := q.UpdateAccountBalances(ctx, locked.AccountID, locked.FreeUsesRemaining, newPaid, locked.BalanceMinor, locked.TotalUses); err != nil {
			return err
		}

		credit := types.Credit{
			CreditID:              uuid.New(),
			AccountID:             locked.AccountID,
			AmountMinor:           in.AmountMinor,
			Currency:              locked.Currency,
			Description:           in.Description,
			TransactionType:       in.TransactionType,
			ExternalTransactionID: in.ExternalTransactionID,
			IdempotencyKey:        in.IdempotencyKey,
			BalanceBefore:         balanceBefore,
			BalanceAfter:          newPaid,
		}
		if err := q.InsertCredit(ctx, credit); err != nil {
			return err
		}

		if err := e.verifyCredit(ctx, q, locked.AccountID, credit.CreditID, balanceBefore+in.AmountMinor, credit); err != nil {
			return err
		}

		logger.Info("credit applied",
			zap.String("account_id", locked.AccountID.String()),
			zap.String("transaction_type", string(in.TransactionType)),
			zap.Int64("amount_minor", in.AmountMinor))

		result = &credit
		return nil
	})

	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindIdempotencyReplay {
			return result, err
		}
		return nil, err
	}
	return result, nil
}

func (e *Engine) verifyCredit(ctx context.Context, q store.Querier, accountID, creditID uuid.UUID, wantPaid int64, want types.Credit) error {
	acc, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return apperr.WriteVerificationFailure("re-reading account after credit", err)
	}
	if acc.PaidCredits != wantPaid {
		return apperr.WriteVerificationFailure("account balance mismatch after credit", nil)
	}

	got, err := q.GetCredit(ctx, creditID)
	if err != nil {
		return apperr.WriteVerificationFailure("re-reading credit after insert", err)
	}
	if got.AmountMinor != want.AmountMinor || got.BalanceAfter != want.BalanceAfter || got.AccountID != want.AccountID {
		return apperr.WriteVerificationFailure("credit record mismatch after insert", nil)
	}
	return nil
}

func statusError(status types.AccountStatus) error {
	if status == types.AccountSuspended {
		return apperr.AccountSuspended("account is suspended")
	}
	return apperr.AccountClosed("account is closed")
}
