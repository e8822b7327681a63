// internal/pkg/jwt/claims.go
package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const PurposeAccess = "access"

// Claims represents the JWT claims issued by the identity service
type Claims struct {
	TenantID       string   `json:"tenant_id"`
	IdentityID     int64    `json:"identity_id"`
	Roles          []string `json:"roles,omitempty"`
	SessionPurpose string   `json:"session_purpose"`
	jwt.RegisteredClaims
}

// Tenant parses the tenant claim
func (c *Claims) Tenant() (uuid.UUID, error) {
	id, err := uuid.Parse(c.TenantID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant_id claim: %w", err)
	}
	return id, nil
}
