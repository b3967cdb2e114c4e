package apperr_test

import (
	"net/http"
	"testing"

	goerrors "errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/apperr"
)

func TestConstructorsSetKind(t *testing.T) {
	cases := []struct {
		name string
		err  *apperr.Error
		kind apperr.Kind
	}{
		{"validation", apperr.Validation("bad input"), apperr.KindValidation},
		{"account_not_found", apperr.AccountNotFound("nope"), apperr.KindAccountNotFound},
		{"account_suspended", apperr.AccountSuspended("suspended"), apperr.KindAccountSuspended},
		{"account_closed", apperr.AccountClosed("closed"), apperr.KindAccountClosed},
		{"insufficient_credits", apperr.InsufficientCredits("empty", nil), apperr.KindInsufficientCredits},
		{"idempotency_replay", apperr.IdempotencyReplay("replay", "id-1"), apperr.KindIdempotencyReplay},
		{"write_verification_failure", apperr.WriteVerificationFailure("mismatch", nil), apperr.KindWriteVerificationFailure},
		{"data_integrity_violation", apperr.DataIntegrityViolation("bad", nil), apperr.KindDataIntegrityViolation},
		{"payment_provider_error", apperr.PaymentProviderError("provider down", nil), apperr.KindPaymentProviderError},
		{"signature_invalid", apperr.SignatureInvalid("bad sig"), apperr.KindSignatureInvalid},
		{"service_unavailable", apperr.ServiceUnavailable("db down", nil), apperr.KindServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.err.Kind)
		})
	}
}

func TestIdempotencyReplayCarriesExistingID(t *testing.T) {
	err := apperr.IdempotencyReplay("already recorded", "charge-123")
	assert.Equal(t, "charge-123", err.ExistingID)
}

func TestInsufficientCreditsCarriesPurchaseHint(t *testing.T) {
	hint := &apperr.PurchaseHint{PriceMinor: 500, Uses: 50}
	err := apperr.InsufficientCredits("no credits", hint)
	require.NotNil(t, err.PurchaseHint)
	assert.Equal(t, int64(500), err.PurchaseHint.PriceMinor)
	assert.Equal(t, int64(50), err.PurchaseHint.Uses)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := goerrors.New("connection refused")
	err := apperr.ServiceUnavailable("dialing postgres", cause)
	assert.Contains(t, err.Error(), "dialing postgres")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsUnwrapsPkgErrorsWrap(t *testing.T) {
	original := apperr.AccountSuspended("account is suspended")
	wrapped := errors.Wrap(original, "during charge")

	found, ok := apperr.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAccountSuspended, found.Kind)
}

func TestAsReturnsFalseForForeignError(t *testing.T) {
	_, ok := apperr.As(goerrors.New("plain error"))
	assert.False(t, ok)
}

func TestWrapPreservesKind(t *testing.T) {
	original := apperr.InsufficientCredits("no pool", nil)
	wrapped := apperr.Wrap(original, "charging account")

	ae, ok := apperr.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientCredits, ae.Kind)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, apperr.Wrap(nil, "message"))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:               http.StatusUnprocessableEntity,
		apperr.KindAccountNotFound:          http.StatusNotFound,
		apperr.KindAccountSuspended:         http.StatusForbidden,
		apperr.KindAccountClosed:            http.StatusForbidden,
		apperr.KindInsufficientCredits:      http.StatusPaymentRequired,
		apperr.KindIdempotencyReplay:        http.StatusConflict,
		apperr.KindWriteVerificationFailure: http.StatusInternalServerError,
		apperr.KindDataIntegrityViolation:   http.StatusInternalServerError,
		apperr.KindSignatureInvalid:         http.StatusBadRequest,
		apperr.KindPaymentProviderError:     http.StatusServiceUnavailable,
		apperr.KindServiceUnavailable:       http.StatusServiceUnavailable,
	}

	for kind, want := range cases {
		assert.Equal(t, want, apperr.HTTPStatus(kind), "kind %s", kind)
	}
}
