// Package server assembles the gin engine: CORS, correlation ID and API
// key middleware, then the route table of §6, grounded on
// apps/api/server/server.go's InitializeRoutes route-group nesting and
// configureCORS, trimmed to this service's much smaller surface.
package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cyphera/credit-ledger/internal/handlers"
	"github.com/cyphera/credit-ledger/internal/middleware"
)

// New builds the gin engine serving the full billing request surface.
func New(h *handlers.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(configureCORS())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.APIKeyPassthrough())

	router.GET("/health", h.GetHealth)

	v1 := router.Group("/v1")
	{
		billing := v1.Group("/billing")
		{
			billing.POST("/credits/check", h.PostCreditsCheck)
			billing.POST("/charges", h.PostCharge)
			billing.POST("/credits", h.PostCredit)
			billing.POST("/accounts", h.PostAccount)
			billing.GET("/accounts/:provider/:external_id", h.GetAccount)
			billing.GET("/accounts/:provider/:external_id/charges", h.GetAccountCharges)
			billing.GET("/accounts/:provider/:external_id/credits", h.GetAccountCredits)
			billing.POST("/purchases", h.PostPurchase)
			billing.GET("/purchases/:payment_id", h.GetPurchase)
			billing.POST("/webhooks/:provider", h.PostWebhook)
		}

		tools := v1.Group("/tools")
		{
			tools.POST("/charge", h.PostToolCharge)
		}
	}

	return router
}

func configureCORS() gin.HandlerFunc {
	cfg := cors.DefaultConfig()

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowOrigins = splitTrim(origins)
	} else {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}

	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-API-Key", "X-Correlation-ID", "Stripe-Signature"}
	cfg.ExposeHeaders = []string{"X-Correlation-ID", "X-Existing-ID", "X-Existing-Charge-ID", "X-Existing-Credit-ID"}
	cfg.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(cfg)
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
