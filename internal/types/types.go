// Package types holds the value records shared across the ledger: accounts,
// charges, credits, product inventory, credit checks, payment records, and
// the tagged unions the design notes call for in place of ad-hoc dictionary
// shapes (TransactionType, AccountStatus, PaymentStatus, pool selection).
package types

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the closed set of lifecycle states an Account can be in.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountClosed    AccountStatus = "closed"
)

// TransactionType tags the reason a Credit row exists.
type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionRefund   TransactionType = "refund"
	TransactionGrant    TransactionType = "grant"
	TransactionTransfer TransactionType = "transfer"
)

// PaymentStatus mirrors the lifecycle of a provider PaymentIntent.
type PaymentStatus string

const (
	PaymentRequiresMethod PaymentStatus = "requires_payment_method"
	PaymentProcessing     PaymentStatus = "processing"
	PaymentSucceeded      PaymentStatus = "succeeded"
	PaymentCanceled       PaymentStatus = "canceled"
	PaymentFailed         PaymentStatus = "failed"
)

// Pool names the balance a charge was drawn from or a credit-check decision
// selected.
type Pool string

const (
	PoolFree    Pool = "free"
	PoolPaid    Pool = "paid"
	PoolNone    Pool = "none"
	PoolProduct Pool = "product"
)

// Account is the unit of credit ownership.
type Account struct {
	AccountID            uuid.UUID
	Identity             Identity
	PaidCredits          int64
	FreeUsesRemaining    int64
	BalanceMinor         int64
	Currency             string
	PlanName             string
	Status               AccountStatus
	CustomerEmail        string
	MarketingOptIn       bool
	MarketingOptInAt     *time.Time
	MarketingOptInSource string
	UserRole             string
	AgentID              string
	TotalUses            int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Charge is an immutable record of a usage deduction.
type Charge struct {
	ChargeID       uuid.UUID
	AccountID      uuid.UUID
	AmountMinor    int64
	Currency       string
	Description    string
	IdempotencyKey string
	Metadata       ChargeMetadata
	ProductType    string
	BalanceBefore  int64
	BalanceAfter   int64
	CreatedAt      time.Time
}

// ChargeMetadata is the fixed field set attached to a Charge, replacing the
// source's ad-hoc metadata dictionary.
type ChargeMetadata struct {
	MessageID string `json:"message_id,omitempty"`
	AgentID   string `json:"agent_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Credit is an immutable record of a balance addition.
type Credit struct {
	CreditID              uuid.UUID
	AccountID             uuid.UUID
	AmountMinor           int64
	Currency              string
	Description           string
	TransactionType       TransactionType
	ExternalTransactionID string
	IdempotencyKey        string
	BalanceBefore         int64
	BalanceAfter          int64
	CreatedAt             time.Time
}

// ProductInventory is a per-account, per-product-type sub-ledger.
type ProductInventory struct {
	AccountID        uuid.UUID
	ProductType      string
	FreeRemaining    int64
	PaidCredits      int64
	LastDailyRefresh time.Time
	TotalUses        int64
}

// ProductUsageLog is an append-only audit row for product charges.
type ProductUsageLog struct {
	LogID          uuid.UUID
	AccountID      uuid.UUID
	ProductType    string
	ChargeID       uuid.UUID
	AmountMinor    int64
	IdempotencyKey string
	CreatedAt      time.Time
}

// CreditCheckResult is the outcome of an authorisation decision.
type CreditCheckResult string

const (
	CreditCheckAllowed CreditCheckResult = "allowed"
	CreditCheckDenied  CreditCheckResult = "denied"
)

// CreditCheck is an append-only authorisation-decision audit row.
type CreditCheck struct {
	CheckID      uuid.UUID
	AccountID    *uuid.UUID
	Identity     Identity
	Result       CreditCheckResult
	Pool         Pool
	DenialReason string
	AgentID      string
	ChannelID    string
	RequestID    string
	CreatedAt    time.Time
}

// PaymentRecord captures the state of one provider PaymentIntent and the
// Credit row (if any) that fulfilled it.
type PaymentRecord struct {
	Provider           string
	ExternalID         string
	PaymentID          uuid.UUID
	AccountID          uuid.UUID
	AmountMinor        int64
	Currency           string
	Status             PaymentStatus
	FulfillingCreditID *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
