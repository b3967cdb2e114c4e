package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/audit"
	"github.com/cyphera/credit-ledger/internal/handlers"
	"github.com/cyphera/credit-ledger/internal/ledger"
	"github.com/cyphera/credit-ledger/internal/payment"
	"github.com/cyphera/credit-ledger/internal/policy"
	"github.com/cyphera/credit-ledger/internal/queue"
	"github.com/cyphera/credit-ledger/internal/registry"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

// fakeGateway is a hand-rolled double for payment.Gateway; the purchase test
// uses its CreateIntent, and the credit-check and charge paths never touch it.
type fakeGateway struct {
	createIntentErr error
	intent          payment.Intent
	verifyResult    types.WebhookEvent
	verifyErr       error
}

func (g *fakeGateway) Name() string { return "fakeprovider" }
func (g *fakeGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error) {
	return g.intent, g.createIntentErr
}
func (g *fakeGateway) Confirm(ctx context.Context, externalID string) (payment.Intent, error) {
	return g.intent, nil
}
func (g *fakeGateway) VerifyWebhook(ctx context.Context, body []byte, sig string) (types.WebhookEvent, error) {
	return g.verifyResult, g.verifyErr
}
func (g *fakeGateway) Refund(ctx context.Context, externalID string, amountMinor int64) error {
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandlers() *handlers.Handlers {
	s := store.NewMemoryStore()
	reg := registry.New(s, registry.Config{FreeUsesPerAccount: 3, DefaultCurrency: "USD"})
	pol := policy.New(policy.Config{PurchasePriceMinor: 500, PurchaseUses: 50})
	eng := ledger.New(s, reg, pol, ledger.Config{})
	aud := audit.New(s)
	gw := &fakeGateway{}
	q := queue.NewLocalQueue(8)
	return handlers.New(s, reg, pol, eng, aud, gw, q, handlers.PurchaseConfig{
		PriceMinor: 500,
		Uses:       50,
		Currency:   "USD",
	})
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newTestRouter(h *handlers.Handlers) *gin.Engine {
	r := gin.New()
	r.POST("/v1/billing/credits/check", h.PostCreditsCheck)
	r.POST("/v1/billing/charges", h.PostCharge)
	r.POST("/v1/billing/credits", h.PostCredit)
	r.POST("/v1/billing/accounts", h.PostAccount)
	r.GET("/v1/billing/accounts/:provider/:external_id", h.GetAccount)
	r.GET("/v1/billing/accounts/:provider/:external_id/charges", h.GetAccountCharges)
	r.GET("/v1/billing/accounts/:provider/:external_id/credits", h.GetAccountCredits)
	r.POST("/v1/billing/purchases", h.PostPurchase)
	r.POST("/v1/tools/charge", h.PostToolCharge)
	r.GET("/health", h.GetHealth)
	return r
}

func identityBody(extra map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"oauth_provider": "oauth:google",
		"external_id":    "user-1",
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestPostCreditsCheckAllowsFreshAccountOnFreePool(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	rec := doRequest(router, http.MethodPost, "/v1/billing/credits/check", identityBody(nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["has_credit"])
}

func TestPostChargeCreatedWithIdempotencyKey(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	rec := doRequest(router, http.MethodPost, "/v1/billing/charges", identityBody(map[string]interface{}{
		"amount_minor":    100,
		"idempotency_key": "charge-1",
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPostChargeReplayReturnsConflictWithHeader(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	body := identityBody(map[string]interface{}{
		"amount_minor":    100,
		"idempotency_key": "charge-dup",
	})
	first := doRequest(router, http.MethodPost, "/v1/billing/charges", body)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(router, http.MethodPost, "/v1/billing/charges", body)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.NotEmpty(t, second.Header().Get("X-Existing-Charge-ID"))
}

func TestPostAccountThenGetAccount(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	created := doRequest(router, http.MethodPost, "/v1/billing/accounts", identityBody(nil))
	require.Equal(t, http.StatusCreated, created.Code)

	fetched := doRequest(router, http.MethodGet, "/v1/billing/accounts/oauth:google/user-1", nil)
	assert.Equal(t, http.StatusOK, fetched.Code)
}

func TestGetAccountNotFoundFor404(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	rec := doRequest(router, http.MethodGet, "/v1/billing/accounts/oauth:google/never-seen", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHealthReportsOK(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	rec := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostChargeRejectsMalformedBody(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/v1/billing/charges", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetAccountChargesListsPriorCharges(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	created := doRequest(router, http.MethodPost, "/v1/billing/charges", identityBody(map[string]interface{}{
		"amount_minor":    50,
		"idempotency_key": "list-charge-1",
	}))
	require.Equal(t, http.StatusCreated, created.Code)

	rec := doRequest(router, http.MethodGet, "/v1/billing/accounts/oauth:google/user-1/charges", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["charges"], 1)
}

func TestGetAccountCreditsListsPriorCredits(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	created := doRequest(router, http.MethodPost, "/v1/billing/credits", identityBody(map[string]interface{}{
		"amount_minor":     500,
		"transaction_type": "purchase",
		"idempotency_key":  "list-credit-1",
	}))
	require.Equal(t, http.StatusCreated, created.Code)

	rec := doRequest(router, http.MethodGet, "/v1/billing/accounts/oauth:google/user-1/credits", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["credits"], 1)
}

func TestPostPurchaseCreatesIntentAndPaymentRecord(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	rec := doRequest(router, http.MethodPost, "/v1/billing/purchases", identityBody(map[string]interface{}{
		"idempotency_key": "purchase-1",
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(500), resp["amount_minor"])
	assert.Equal(t, float64(50), resp["uses_purchased"])
}

func TestPostToolChargeProductScopedCharge(t *testing.T) {
	h := newTestHandlers()
	router := newTestRouter(h)

	// A fresh account has no product inventory, so the product charge falls
	// back to the main paid pool; fund it first.
	funded := doRequest(router, http.MethodPost, "/v1/billing/credits", identityBody(map[string]interface{}{
		"amount_minor":     10,
		"transaction_type": "grant",
		"idempotency_key":  "tool-charge-funding",
	}))
	require.Equal(t, http.StatusCreated, funded.Code)

	rec := doRequest(router, http.MethodPost, "/v1/tools/charge", identityBody(map[string]interface{}{
		"amount_minor":    10,
		"idempotency_key": "tool-charge-1",
		"product_type":    "voice-clone",
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
