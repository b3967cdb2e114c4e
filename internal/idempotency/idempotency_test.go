package idempotency_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/idempotency"
)

func TestValidateAcceptsEmptyKey(t *testing.T) {
	assert.NoError(t, idempotency.Validate(""))
}

func TestValidateAcceptsKeyWithinBound(t *testing.T) {
	assert.NoError(t, idempotency.Validate(strings.Repeat("a", idempotency.MaxKeyLength)))
}

func TestValidateRejectsOverlongKey(t *testing.T) {
	err := idempotency.Validate(strings.Repeat("a", idempotency.MaxKeyLength+1))
	ae, ok := apperr.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, apperr.KindValidation, ae.Kind)
	}
}
