// Package apperr defines the typed error taxonomy shared by every layer of
// the ledger: the Ledger Store, Ledger Engine, Credit Policy, Webhook
// Reconciler and the HTTP surface all produce or consume a apperr.Error
// rather than an ad-hoc wrapped string.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind is a closed set of error categories. Business logic branches on Kind,
// never on a wrapped error's string content.
type Kind string

const (
	KindValidation               Kind = "validation"
	KindAccountNotFound          Kind = "account_not_found"
	KindAccountSuspended         Kind = "account_suspended"
	KindAccountClosed            Kind = "account_closed"
	KindInsufficientCredits      Kind = "insufficient_credits"
	KindIdempotencyReplay        Kind = "idempotency_replay"
	KindWriteVerificationFailure Kind = "write_verification_failure"
	KindDataIntegrityViolation   Kind = "data_integrity_violation"
	KindPaymentProviderError     Kind = "payment_provider_error"
	KindSignatureInvalid         Kind = "signature_invalid"
	KindServiceUnavailable       Kind = "service_unavailable"
)

// Error is the concrete error type carried across component boundaries. It
// pairs a Kind with a human-readable message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error

	// ExistingID carries the id of the pre-existing resource on a
	// KindIdempotencyReplay, so the HTTP surface can set the
	// X-Existing-*-ID hint header.
	ExistingID string

	// PurchaseHint is attached to KindInsufficientCredits denials that
	// originate from the credit-check path.
	PurchaseHint *PurchaseHint
}

// PurchaseHint suggests a purchase to resolve a credits-exhausted denial.
type PurchaseHint struct {
	PriceMinor int64 `json:"price_minor"`
	Uses       int64 `json:"uses"`
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Cause returns the deepest non-apperr cause, following pkg/errors
// conventions used throughout the rest of the codebase.
func (e *Error) Cause() error {
	if e.cause == nil {
		return e
	}
	return errors.Cause(e.cause)
}

func new(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Validation(message string) *Error { return new(KindValidation, message, nil) }

func AccountNotFound(message string) *Error { return new(KindAccountNotFound, message, nil) }

func AccountSuspended(message string) *Error { return new(KindAccountSuspended, message, nil) }

func AccountClosed(message string) *Error { return new(KindAccountClosed, message, nil) }

func InsufficientCredits(message string, hint *PurchaseHint) *Error {
	e := new(KindInsufficientCredits, message, nil)
	e.PurchaseHint = hint
	return e
}

func IdempotencyReplay(message string, existingID string) *Error {
	e := new(KindIdempotencyReplay, message, nil)
	e.ExistingID = existingID
	return e
}

func WriteVerificationFailure(message string, cause error) *Error {
	return new(KindWriteVerificationFailure, message, cause)
}

func DataIntegrityViolation(message string, cause error) *Error {
	return new(KindDataIntegrityViolation, message, cause)
}

func PaymentProviderError(message string, cause error) *Error {
	return new(KindPaymentProviderError, message, cause)
}

func SignatureInvalid(message string) *Error { return new(KindSignatureInvalid, message, nil) }

func ServiceUnavailable(message string, cause error) *Error {
	return new(KindServiceUnavailable, message, cause)
}

// Wrap attaches additional context to an existing apperr.Error, preserving
// its Kind, or wraps a foreign error as a KindServiceUnavailable if it
// carries no Kind of its own.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return new(ae.Kind, message, errors.Wrap(ae, ae.Message))
	}
	return new(KindServiceUnavailable, message, errors.Wrap(err, message))
}

// As extracts an *Error from err, unwrapping pkg/errors chains.
func As(err error) (*Error, bool) {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			return ae, true
		}
		cause := errors.Unwrap(err)
		if cause == nil {
			return nil, false
		}
		err = cause
	}
	return nil, false
}

// HTTPStatus is the sole place an error Kind is mapped onto an HTTP status
// code. Every handler funnels its error return through this function.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAccountNotFound:
		return http.StatusNotFound
	case KindAccountSuspended, KindAccountClosed:
		return http.StatusForbidden
	case KindInsufficientCredits:
		return http.StatusPaymentRequired
	case KindIdempotencyReplay:
		return http.StatusConflict
	case KindWriteVerificationFailure, KindDataIntegrityViolation:
		return http.StatusInternalServerError
	case KindSignatureInvalid:
		return http.StatusBadRequest
	case KindPaymentProviderError, KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
