package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/audit"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

func TestRecordDoesNotPanicOnValidCheck(t *testing.T) {
	s := store.NewMemoryStore()
	log := audit.New(s)

	check := types.CreditCheck{
		Identity: types.Identity{OAuthProvider: "oauth:google", ExternalID: "user-1"},
		Result:   types.CreditCheckAllowed,
		Pool:     types.PoolFree,
	}
	assert.NotPanics(t, func() {
		log.Record(context.Background(), check)
	})
}

func TestRecordNeverReturnsAnErrorEvenOnBadInput(t *testing.T) {
	s := store.NewMemoryStore()
	log := audit.New(s)
	require.NotNil(t, log)

	check := types.CreditCheck{
		Result: types.CreditCheckDenied,
		Pool:   types.PoolNone,
	}
	log.Record(context.Background(), check)
}
