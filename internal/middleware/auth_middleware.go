// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"salescrm-service/internal/pkg/jwt"
	"salescrm-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by Auth
const (
	ctxTenantID   = "tenant_id"
	ctxIdentityID = "identity_id"
	ctxJTI        = "jti"
	ctxRoles      = "roles"
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	revoked  RevocationChecker
	logger   *zap.Logger
}

// NewAuthMiddleware builds the middleware. revoked may be nil.
func NewAuthMiddleware(verifier TokenVerifier, revoked RevocationChecker, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, revoked: revoked, logger: logger}
}

// Auth validates the bearer token and stores tenant and user in the context
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		if m.revoked != nil && claims.ID != "" {
			revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				m.logger.Error("revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
				response.Error(c, http.StatusServiceUnavailable, "unable to verify session", nil)
				return
			}
			if revoked {
				response.Error(c, http.StatusUnauthorized, "session has been revoked", nil)
				return
			}
		}

		tenantID, err := claims.Tenant()
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set(ctxTenantID, tenantID)
		c.Set(ctxIdentityID, claims.IdentityID)
		c.Set(ctxJTI, claims.ID)
		c.Set(ctxRoles, claims.Roles)

		c.Next()
	}
}

// RequireRole requires at least one of the given roles.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := GetRoles(c)
		for _, userRole := range userRoles {
			for _, required := range roles {
				if userRole == required {
					c.Next()
					return
				}
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions", errors.New("user does not have required role"), map[string]interface{}{
			"required_roles": roles,
		})
	}
}

// extractToken reads the bearer token from the header, or the query for websocket upgrades
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}
