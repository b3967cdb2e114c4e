// Package handlers implements the gin handlers for the request surface
// described in §6: credit-check, charges, credits, accounts, purchases,
// webhooks and the supplemental admin listings. Grounded on the
// request-binding / error-mapping shape in apps/api/handlers.
package handlers

import (
	"time"

	"github.com/cyphera/credit-ledger/internal/types"
)

// identityRequest is the identity triple every mutating body embeds.
type identityRequest struct {
	OAuthProvider string `json:"oauth_provider" binding:"required"`
	ExternalID    string `json:"external_id" binding:"required"`
	WAID          string `json:"wa_id"`
	TenantID      string `json:"tenant_id"`
}

func (r identityRequest) toIdentity() types.Identity {
	return types.Identity{
		OAuthProvider: r.OAuthProvider,
		ExternalID:    r.ExternalID,
		WAID:          r.WAID,
		TenantID:      r.TenantID,
	}
}

type creditCheckRequest struct {
	identityRequest
	ProductType string `json:"product_type"`
	AgentID     string `json:"agent_id"`
	ChannelID   string `json:"channel_id"`
	RequestID   string `json:"request_id"`
}

type creditCheckResponse struct {
	HasCredit          bool   `json:"has_credit"`
	CreditsRemaining   int64  `json:"credits_remaining"`
	FreeUsesRemaining  int64  `json:"free_uses_remaining"`
	TotalUses          int64  `json:"total_uses"`
	PlanName           string `json:"plan_name"`
	PurchaseRequired   bool   `json:"purchase_required"`
	PurchasePriceMinor int64  `json:"purchase_price_minor,omitempty"`
	PurchaseUses       int64  `json:"purchase_uses,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

type chargeRequest struct {
	identityRequest
	AmountMinor    int64  `json:"amount_minor" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
	ProductType    string `json:"product_type"`
	MessageID      string `json:"message_id"`
	AgentID        string `json:"agent_id"`
	ChannelID      string `json:"channel_id"`
	RequestID      string `json:"request_id"`
}

type chargeResponse struct {
	ChargeID       string    `json:"charge_id"`
	AccountID      string    `json:"account_id"`
	AmountMinor    int64     `json:"amount_minor"`
	Currency       string    `json:"currency"`
	ProductType    string    `json:"product_type,omitempty"`
	BalanceBefore  int64     `json:"balance_before"`
	BalanceAfter   int64     `json:"balance_after"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func chargeToResponse(c *types.Charge) chargeResponse {
	return chargeResponse{
		ChargeID:       c.ChargeID.String(),
		AccountID:      c.AccountID.String(),
		AmountMinor:    c.AmountMinor,
		Currency:       c.Currency,
		ProductType:    c.ProductType,
		BalanceBefore:  c.BalanceBefore,
		BalanceAfter:   c.BalanceAfter,
		IdempotencyKey: c.IdempotencyKey,
		CreatedAt:      c.CreatedAt,
	}
}

type creditRequest struct {
	identityRequest
	AmountMinor           int64  `json:"amount_minor" binding:"required"`
	TransactionType       string `json:"transaction_type" binding:"required"`
	ExternalTransactionID string `json:"external_transaction_id"`
	IdempotencyKey        string `json:"idempotency_key"`
	Description           string `json:"description"`
}

type creditResponse struct {
	CreditID              string    `json:"credit_id"`
	AccountID             string    `json:"account_id"`
	AmountMinor           int64     `json:"amount_minor"`
	Currency              string    `json:"currency"`
	TransactionType       string    `json:"transaction_type"`
	ExternalTransactionID string    `json:"external_transaction_id,omitempty"`
	BalanceBefore         int64     `json:"balance_before"`
	BalanceAfter          int64     `json:"balance_after"`
	CreatedAt             time.Time `json:"created_at"`
}

func creditToResponse(c *types.Credit) creditResponse {
	return creditResponse{
		CreditID:              c.CreditID.String(),
		AccountID:             c.AccountID.String(),
		AmountMinor:           c.AmountMinor,
		Currency:              c.Currency,
		TransactionType:       string(c.TransactionType),
		ExternalTransactionID: c.ExternalTransactionID,
		BalanceBefore:         c.BalanceBefore,
		BalanceAfter:          c.BalanceAfter,
		CreatedAt:             c.CreatedAt,
	}
}

type accountRequest struct {
	identityRequest
	CustomerEmail string `json:"customer_email"`
	UserRole      string `json:"user_role"`
	AgentID       string `json:"agent_id"`
}

type accountResponse struct {
	AccountID         string    `json:"account_id"`
	OAuthProvider     string    `json:"oauth_provider"`
	ExternalID        string    `json:"external_id"`
	PaidCredits       int64     `json:"paid_credits"`
	FreeUsesRemaining int64     `json:"free_uses_remaining"`
	Currency          string    `json:"currency"`
	PlanName          string    `json:"plan_name"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

func accountToResponse(a *types.Account) accountResponse {
	return accountResponse{
		AccountID:         a.AccountID.String(),
		OAuthProvider:     a.Identity.OAuthProvider,
		ExternalID:        a.Identity.ExternalID,
		PaidCredits:       a.PaidCredits,
		FreeUsesRemaining: a.FreeUsesRemaining,
		Currency:          a.Currency,
		PlanName:          a.PlanName,
		Status:            string(a.Status),
		CreatedAt:         a.CreatedAt,
	}
}

type purchaseRequest struct {
	identityRequest
	IdempotencyKey string `json:"idempotency_key"`
}

type purchaseResponse struct {
	PaymentID     string `json:"payment_id"`
	ClientSecret  string `json:"client_secret"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	UsesPurchased int64  `json:"uses_purchased"`
	Status        string `json:"status"`
}

type toolChargeRequest struct {
	identityRequest
	ProductType    string `json:"product_type" binding:"required"`
	AmountMinor    int64  `json:"amount_minor" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
	MessageID      string `json:"message_id"`
	AgentID        string `json:"agent_id"`
	ChannelID      string `json:"channel_id"`
	RequestID      string `json:"request_id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}
