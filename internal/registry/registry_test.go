package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

func newRegistry() *registry.Registry {
	return registry.New(store.NewMemoryStore(), registry.Config{
		FreeUsesPerAccount: 3,
		DefaultCurrency:    "USD",
	})
}

func testIdentity() types.Identity {
	return types.Identity{OAuthProvider: "oauth:google", ExternalID: "user-1"}
}

func TestFindOrCreateSeedsNewAccount(t *testing.T) {
	r := newRegistry()
	acc, err := r.FindOrCreate(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Equal(t, int64(3), acc.FreeUsesRemaining)
	assert.Equal(t, "USD", acc.Currency)
	assert.Equal(t, types.AccountActive, acc.Status)
}

func TestFindOrCreateReturnsSameAccountOnSecondCall(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()
	first, err := r.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)

	second, err := r.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, second.AccountID)
}

func TestFindOrCreateRejectsInvalidIdentity(t *testing.T) {
	r := newRegistry()
	_, err := r.FindOrCreate(context.Background(), types.Identity{OAuthProvider: "google"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
}

func TestFindDoesNotCreateAccount(t *testing.T) {
	r := newRegistry()
	acc, err := r.Find(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestFindReturnsExistingAccount(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()
	created, err := r.FindOrCreate(ctx, testIdentity())
	require.NoError(t, err)

	found, err := r.Find(ctx, testIdentity())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.AccountID, found.AccountID)
}
