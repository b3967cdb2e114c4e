package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cyphera/credit-ledger/internal/mocks"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

// These tests exercise the gomock store double rather than
// MemoryStore, grounded on libs/go/services/account_service_test.go's
// use of mocks.NewMockQuerier to assert store-layer errors propagate
// unchanged instead of being swallowed or translated.

func TestFindOrCreatePropagatesLookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	wantErr := errors.New("connection reset by peer")
	mockStore.EXPECT().
		FindAccountByIdentity(gomock.Any(), testIdentity()).
		Return(nil, wantErr)

	r := registry.New(mockStore, registry.Config{FreeUsesPerAccount: 3, DefaultCurrency: "USD"})
	_, err := r.FindOrCreate(context.Background(), testIdentity())
	assert.ErrorIs(t, err, wantErr)
}

func TestFindOrCreateSeedsThroughMockedUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	identity := testIdentity()
	want := &types.Account{AccountID: uuid.New(), Identity: identity, FreeUsesRemaining: 3, Currency: "USD"}

	mockStore.EXPECT().
		FindAccountByIdentity(gomock.Any(), identity).
		Return(nil, nil)
	mockStore.EXPECT().
		UpsertAccount(gomock.Any(), identity, store.AccountSeed{FreeUsesRemaining: 3, Currency: "USD", PlanName: "free"}).
		Return(want, nil)

	r := registry.New(mockStore, registry.Config{FreeUsesPerAccount: 3, DefaultCurrency: "USD"})
	got, err := r.FindOrCreate(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindPropagatesLookupErrorWithoutCreating(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	wantErr := errors.New("query timed out")
	mockStore.EXPECT().
		FindAccountByIdentity(gomock.Any(), testIdentity()).
		Return(nil, wantErr)
	// UpsertAccount must never be called on a lookup error: no .EXPECT()
	// for it means gomock fails the test if Find triggers a fallback create.

	r := registry.New(mockStore, registry.Config{FreeUsesPerAccount: 3, DefaultCurrency: "USD"})
	_, err := r.Find(context.Background(), testIdentity())
	assert.ErrorIs(t, err, wantErr)
}
