// Package store defines the Ledger Store contract: durable, strongly
// consistent persistence for accounts, charges, credits, product inventory,
// payment records and the credit-check audit log. Two implementations
// satisfy it — a pgx-backed Postgres store for production, and an
// in-memory store for tests that need no database.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/cyphera/credit-ledger/internal/types"
)

// AccountSeed carries the values a freshly-created Account is seeded with.
type AccountSeed struct {
	FreeUsesRemaining int64
	Currency          string
	PlanName          string
	CustomerEmail     string
	UserRole          string
	AgentID           string
}

// ProductInventorySeed carries the values a freshly-created ProductInventory
// row is seeded with.
type ProductInventorySeed struct {
	FreeRemaining int64
	PaidCredits   int64
}

// Querier is the set of operations available both outside and inside a
// Ledger Engine transaction. Postgres-backed and in-memory implementations
// both satisfy it; the Ledger Engine and Account Registry depend only on
// these interfaces, never on a concrete store, so unit tests can swap in
// the in-memory double.
type Querier interface {
	// Accounts
	FindAccountByIdentity(ctx context.Context, identity types.Identity) (*types.Account, error)
	UpsertAccount(ctx context.Context, identity types.Identity, seed AccountSeed) (*types.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*types.Account, error)
	LockAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*types.Account, error)
	UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, freeUsesRemaining, paidCredits, balanceMinor, totalUses int64) error

	// Charges
	FindChargeByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Charge, error)
	InsertCharge(ctx context.Context, charge types.Charge) error
	GetCharge(ctx context.Context, chargeID uuid.UUID) (*types.Charge, error)
	ListCharges(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Charge, error)

	// Credits
	FindCreditByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Credit, error)
	InsertCredit(ctx context.Context, credit types.Credit) error
	GetCredit(ctx context.Context, creditID uuid.UUID) (*types.Credit, error)
	ListCredits(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Credit, error)

	// Product inventory
	// GetProductInventory is a non-locking read used by the credit-check
	// path, which must never block behind a charge in flight. Returns
	// (nil, nil) if no inventory row has been seeded yet for this
	// account/product pair.
	GetProductInventory(ctx context.Context, accountID uuid.UUID, productType string) (*types.ProductInventory, error)
	LockProductInventory(ctx context.Context, accountID uuid.UUID, productType string, seed ProductInventorySeed) (*types.ProductInventory, error)
	UpdateProductInventory(ctx context.Context, inv types.ProductInventory) error
	InsertProductUsageLog(ctx context.Context, log types.ProductUsageLog) error

	// Payments
	FindPaymentByExternalID(ctx context.Context, provider, externalID string) (*types.PaymentRecord, error)
	InsertPayment(ctx context.Context, record types.PaymentRecord) error
	UpdatePaymentStatus(ctx context.Context, provider, externalID string, status types.PaymentStatus) error
	MarkPaymentFulfilled(ctx context.Context, provider, externalID string, creditID uuid.UUID) error

	// Credit-check audit log
	InsertCreditCheck(ctx context.Context, check types.CreditCheck) error
}

// Store extends Querier with transaction scoping and a liveness check.
type Store interface {
	Querier

	// WithTx runs fn inside a single transaction, passing a Querier scoped
	// to that transaction. Any error returned by fn rolls the transaction
	// back; a nil return commits. Row locks taken via LockAccountForUpdate
	// / LockProductInventory inside fn are held until commit or rollback.
	WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error

	Ping(ctx context.Context) error
	Close()
}
