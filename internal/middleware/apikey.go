package middleware

import "github.com/gin-gonic/gin"

const (
	apiKeyHeader = "X-API-Key"
	apiKeyCtxKey = "apiKey"
)

// APIKeyPassthrough reads the caller-supplied API key into the gin context
// for downstream logging. Validating it is the responsibility of a
// preceding component and is not performed here.
func APIKeyPassthrough() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(apiKeyCtxKey, c.GetHeader(apiKeyHeader))
		c.Next()
	}
}

// GetAPIKey retrieves the API key set by APIKeyPassthrough.
func GetAPIKey(c *gin.Context) string {
	if v, exists := c.Get(apiKeyCtxKey); exists {
		if key, ok := v.(string); ok {
			return key
		}
	}
	return ""
}
