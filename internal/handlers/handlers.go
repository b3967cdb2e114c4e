package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/audit"
	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/middleware"
	"github.com/cyphera/credit-ledger/internal/payment"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/queue"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

// PurchaseConfig carries the fixed purchase-intent terms from the process
// configuration, since a purchase always buys the same package today.
type PurchaseConfig struct {
	PriceMinor int64
	Uses       int64
	Currency   string
}

// Handlers wires the Ledger Engine, Credit Policy, Account Registry,
// Credit-Check Audit Log, Payment Gateway Adapter and webhook queue into
// the request surface of §6.
type Handlers struct {
	store    store.Store
	registry *registry.Registry
	policy   *policy.Policy
	ledger   *ledger.Engine
	audit    *audit.Log
	gateway  payment.Gateway
	queue    queue.Queue
	purchase PurchaseConfig
}

func New(s store.Store, reg *registry.Registry, pol *policy.Policy, led *ledger.Engine, aud *audit.Log, gw payment.Gateway, q queue.Queue, purchase PurchaseConfig) *Handlers {
	return &Handlers{store: s, registry: reg, policy: pol, ledger: led, audit: aud, gateway: gw, queue: q, purchase: purchase}
}

func respondError(c *gin.Context, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error", Kind: string(apperr.KindServiceUnavailable), Message: err.Error()})
		return
	}
	if ae.Kind == apperr.KindIdempotencyReplay {
		c.Header("X-Existing-ID", ae.ExistingID)
	}
	body := errorResponse{Error: string(ae.Kind), Kind: string(ae.Kind), Message: ae.Message}
	if ae.PurchaseHint != nil {
		c.JSON(apperr.HTTPStatus(ae.Kind), gin.H{
			"error":               body.Error,
			"kind":                body.Kind,
			"message":             body.Message,
			"purchase_price_minor": ae.PurchaseHint.PriceMinor,
			"purchase_uses":         ae.PurchaseHint.Uses,
		})
		return
	}
	c.JSON(apperr.HTTPStatus(ae.Kind), body)
}

// PostCreditsCheck implements POST /v1/billing/credits/check.
func (h *Handlers) PostCreditsCheck(c *gin.Context) {
	var req creditCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	identity := req.toIdentity()
	acc, err := h.registry.FindOrCreate(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	var productInv *types.ProductInventory
	if req.ProductType != "" {
		productInv, err = h.store.GetProductInventory(c.Request.Context(), acc.AccountID, req.ProductType)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	decision := h.policy.Authorize(acc, productInv)

	check := types.CreditCheck{
		AccountID: &acc.AccountID,
		Identity:  identity,
		Pool:      decision.Pool,
		AgentID:   req.AgentID,
		ChannelID: req.ChannelID,
		RequestID: req.RequestID,
	}
	if decision.Allowed {
		check.Result = types.CreditCheckAllowed
	} else {
		check.Result = types.CreditCheckDenied
		check.DenialReason = decision.DenialReason
	}
	go h.audit.Record(context.WithoutCancel(c.Request.Context()), check)

	totalUses := acc.TotalUses
	if productInv != nil {
		totalUses = productInv.TotalUses
	}

	resp := creditCheckResponse{
		HasCredit:         decision.Allowed,
		CreditsRemaining:  acc.PaidCredits,
		FreeUsesRemaining: acc.FreeUsesRemaining,
		TotalUses:         totalUses,
		PlanName:          acc.PlanName,
		PurchaseRequired:  !decision.Allowed,
	}
	if !decision.Allowed {
		resp.Reason = decision.DenialReason
		hint := h.policy.PurchaseHint()
		resp.PurchasePriceMinor = hint.PriceMinor
		resp.PurchaseUses = hint.Uses
	}
	c.JSON(http.StatusOK, resp)
}

// PostCharge implements POST /v1/billing/charges.
func (h *Handlers) PostCharge(c *gin.Context) {
	var req chargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	charge, err := h.ledger.Charge(c.Request.Context(), ledger.ChargeInput{
		Identity:       req.toIdentity(),
		AmountMinor:    req.AmountMinor,
		IdempotencyKey: req.IdempotencyKey,
		Metadata: types.ChargeMetadata{
			MessageID: req.MessageID,
			AgentID:   req.AgentID,
			ChannelID: req.ChannelID,
			RequestID: req.RequestID,
		},
		ProductType: req.ProductType,
	})
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindIdempotencyReplay {
			c.Header("X-Existing-Charge-ID", ae.ExistingID)
			respondError(c, err)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chargeToResponse(charge))
}

// PostToolCharge implements POST /v1/tools/charge — a product-scoped charge.
func (h *Handlers) PostToolCharge(c *gin.Context) {
	var req toolChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	charge, err := h.ledger.Charge(c.Request.Context(), ledger.ChargeInput{
		Identity:       req.toIdentity(),
		AmountMinor:    req.AmountMinor,
		IdempotencyKey: req.IdempotencyKey,
		Metadata: types.ChargeMetadata{
			MessageID: req.MessageID,
			AgentID:   req.AgentID,
			ChannelID: req.ChannelID,
			RequestID: req.RequestID,
		},
		ProductType: req.ProductType,
	})
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindIdempotencyReplay {
			c.Header("X-Existing-Charge-ID", ae.ExistingID)
			respondError(c, err)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chargeToResponse(charge))
}

// PostCredit implements POST /v1/billing/credits.
func (h *Handlers) PostCredit(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	credit, err := h.ledger.Credit(c.Request.Context(), ledger.CreditInput{
		Identity:              req.toIdentity(),
		AmountMinor:            req.AmountMinor,
		TransactionType:        types.TransactionType(req.TransactionType),
		ExternalTransactionID:  req.ExternalTransactionID,
		IdempotencyKey:         req.IdempotencyKey,
		Description:            req.Description,
	})
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindIdempotencyReplay {
			c.Header("X-Existing-Credit-ID", ae.ExistingID)
			respondError(c, err)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, creditToResponse(credit))
}

// PostAccount implements POST /v1/billing/accounts.
func (h *Handlers) PostAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	acc, err := h.registry.FindOrCreate(c.Request.Context(), req.toIdentity())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountToResponse(acc))
}

// GetAccount implements GET /v1/billing/accounts/{provider}/{external_id}.
func (h *Handlers) GetAccount(c *gin.Context) {
	identity := types.Identity{
		OAuthProvider: c.Param("provider"),
		ExternalID:    c.Param("external_id"),
		TenantID:      c.Query("tenant_id"),
	}
	acc, err := h.registry.Find(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	if acc == nil {
		respondError(c, apperr.AccountNotFound("no account for this identity"))
		return
	}
	c.JSON(http.StatusOK, accountToResponse(acc))
}

// GetAccountCharges implements the supplemental admin listing
// GET /v1/billing/accounts/{provider}/{external_id}/charges.
func (h *Handlers) GetAccountCharges(c *gin.Context) {
	acc := h.mustFindAccount(c)
	if acc == nil {
		return
	}
	limit, offset := pagination(c)
	charges, err := h.store.ListCharges(c.Request.Context(), acc.AccountID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]chargeResponse, 0, len(charges))
	for i := range charges {
		out = append(out, chargeToResponse(&charges[i]))
	}
	c.JSON(http.StatusOK, gin.H{"charges": out})
}

// GetAccountCredits implements the supplemental admin listing
// GET /v1/billing/accounts/{provider}/{external_id}/credits.
func (h *Handlers) GetAccountCredits(c *gin.Context) {
	acc := h.mustFindAccount(c)
	if acc == nil {
		return
	}
	limit, offset := pagination(c)
	credits, err := h.store.ListCredits(c.Request.Context(), acc.AccountID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]creditResponse, 0, len(credits))
	for i := range credits {
		out = append(out, creditToResponse(&credits[i]))
	}
	c.JSON(http.StatusOK, gin.H{"credits": out})
}

func (h *Handlers) mustFindAccount(c *gin.Context) *types.Account {
	identity := types.Identity{
		OAuthProvider: c.Param("provider"),
		ExternalID:    c.Param("external_id"),
		TenantID:      c.Query("tenant_id"),
	}
	acc, err := h.registry.Find(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return nil
	}
	if acc == nil {
		respondError(c, apperr.AccountNotFound("no account for this identity"))
		return nil
	}
	return acc
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return
}

// PostPurchase implements POST /v1/billing/purchases.
func (h *Handlers) PostPurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	acc, err := h.registry.FindOrCreate(c.Request.Context(), req.toIdentity())
	if err != nil {
		respondError(c, err)
		return
	}

	intent, err := h.gateway.CreateIntent(c.Request.Context(), payment.IntentRequest{
		AccountID:      acc.AccountID.String(),
		Identity:       req.toIdentity(),
		AmountMinor:    h.purchase.PriceMinor,
		Currency:       h.purchase.Currency,
		Description:    "credit ledger purchase",
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.InsertPayment(c.Request.Context(), types.PaymentRecord{
		PaymentID:   uuid.New(),
		Provider:    h.gateway.Name(),
		ExternalID:  intent.ExternalID,
		AccountID:   acc.AccountID,
		AmountMinor: h.purchase.PriceMinor,
		Currency:    h.purchase.Currency,
		Status:      intent.Status,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchaseResponse{
		PaymentID:     intent.ExternalID,
		ClientSecret:  intent.ClientSecret,
		AmountMinor:   h.purchase.PriceMinor,
		Currency:      h.purchase.Currency,
		UsesPurchased: h.purchase.Uses,
		Status:        string(intent.Status),
	})
}

// GetPurchase implements GET /v1/billing/purchases/{payment_id}.
func (h *Handlers) GetPurchase(c *gin.Context) {
	record, err := h.store.FindPaymentByExternalID(c.Request.Context(), c.Query("provider"), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		respondError(c, apperr.AccountNotFound("no payment with this id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id":   record.ExternalID,
		"amount_minor": record.AmountMinor,
		"currency":     record.Currency,
		"status":       record.Status,
	})
}

// PostWebhook implements POST /v1/billing/webhooks/{provider}. It verifies
// the signature synchronously and enqueues the normalized event for
// cmd/webhookworker; it never calls the Ledger Engine directly.
func (h *Handlers) PostWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, apperr.Validation("could not read request body"))
		return
	}
	c.Request.Body = middleware.NewBodyReader(body)

	signature := c.GetHeader("Stripe-Signature")
	event, err := h.gateway.VerifyWebhook(c.Request.Context(), body, signature)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.queue.Enqueue(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetHealth implements GET /health.
func (h *Handlers) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"database":  "unreachable",
			"timestamp": time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  "ok",
		"timestamp": time.Now().UTC(),
	})
}
