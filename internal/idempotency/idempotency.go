// Package idempotency validates idempotency keys for the charge and credit
// protocols. Replay detection itself is not in this package: it is realised
// by the unique constraints on (account_id, idempotency_key) in the Ledger
// Store and the Ledger Engine's lookup of an existing row by key.
package idempotency

import (
	"github.com/cyphera/credit-ledger/internal/apperr"
)

// MaxKeyLength bounds the length of a caller-supplied idempotency key.
const MaxKeyLength = 255

// Validate checks that key, if supplied, is within the bounded length. An
// empty key is valid — the operation still executes, just without replay
// protection.
func Validate(key string) error {
	if len(key) > MaxKeyLength {
		return apperr.Validation("idempotency_key exceeds maximum length")
	}
	return nil
}
