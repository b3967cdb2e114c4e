package types

import (
	"strings"

	"github.com/cyphera/credit-ledger/internal/apperr"
)

// Identity is the composite key an Account is looked up and created by.
type Identity struct {
	OAuthProvider string `json:"oauth_provider"`
	ExternalID    string `json:"external_id"`
	WAID          string `json:"wa_id,omitempty"`
	TenantID      string `json:"tenant_id,omitempty"`
}

// Validate checks the identity shape: the provider must carry the
// "oauth:<name>" prefix and external_id must be non-empty.
func (id Identity) Validate() error {
	if !strings.HasPrefix(id.OAuthProvider, "oauth:") || len(id.OAuthProvider) <= len("oauth:") {
		return apperr.Validation("oauth_provider must have the form \"oauth:<name>\"")
	}
	if id.ExternalID == "" {
		return apperr.Validation("external_id is required")
	}
	return nil
}
