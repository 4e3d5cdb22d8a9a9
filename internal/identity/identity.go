// Package identity verifies bearer ID tokens issued by the identity provider.
package identity

import (
	"context"

	"osapio-backend/internal/shared/apperr"
)

// Claims is the verified identity carried by a request. UID is the only
// owner key the rest of the service trusts.
type Claims struct {
	UID           string
	Email         string
	PhoneNumber   string
	EmailVerified bool
	ProviderID    string
}

// Verifier validates a raw token. Any failure wraps ErrInvalidToken.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

var ErrInvalidToken = apperr.New(apperr.KindUnauthenticated, "unauthorized", "Invalid authentication token")

func stringClaim(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolClaim(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
