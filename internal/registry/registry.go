// Package registry wraps account lookup and lazy creation by identity,
// grounded on the upsert-by-unique-fields pattern in
// libs/go/services/account_service.go.
package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

// Config carries the seed values new accounts are created with.
type Config struct {
	FreeUsesPerAccount int64
	DefaultCurrency    string
}

// Registry owns account lifecycle: find-by-identity, and implicit
// creation the first time an identity is observed by a credit-check or a
// charge.
type Registry struct {
	store store.Querier
	cfg   Config
}

func New(s store.Querier, cfg Config) *Registry {
	return &Registry{store: s, cfg: cfg}
}

// FindOrCreate looks up identity, creating the account with the configured
// seed values if this is the first time it has been observed. Returns the
// canonical account whether freshly created or pre-existing.
func (r *Registry) FindOrCreate(ctx context.Context, identity types.Identity) (*types.Account, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	acc, err := r.store.FindAccountByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}

	acc, err = r.store.UpsertAccount(ctx, identity, store.AccountSeed{
		FreeUsesRemaining: r.cfg.FreeUsesPerAccount,
		Currency:          r.cfg.DefaultCurrency,
		PlanName:          "free",
	})
	if err != nil {
		return nil, err
	}
	logger.Info("account created", zap.String("account_id", acc.AccountID.String()),
		zap.String("oauth_provider", identity.OAuthProvider))
	return acc, nil
}

// Find looks up identity without creating an account, returning nil if
// absent — used by the account lookup and listing endpoints, which answer
// 404 for an identity the ledger has never seen.
func (r *Registry) Find(ctx context.Context, identity types.Identity) (*types.Account, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return r.store.FindAccountByIdentity(ctx, identity)
}
