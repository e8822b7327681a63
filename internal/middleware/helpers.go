// internal/middleware/helpers.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTenantID returns the authenticated tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxTenantID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetIdentityID returns the authenticated user
func GetIdentityID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxIdentityID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetTenantID gets the tenant from context or panics
func MustGetTenantID(c *gin.Context) uuid.UUID {
	id, ok := GetTenantID(c)
	if !ok {
		panic("tenant_id not found in context")
	}
	return id
}

// MustGetIdentityID gets identity ID from context or panics
func MustGetIdentityID(c *gin.Context) int64 {
	id, ok := GetIdentityID(c)
	if !ok {
		panic("identity_id not found in context")
	}
	return id
}

// GetRoles gets user roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get(ctxRoles)
	if !exists {
		return []string{}
	}
	list, ok := roles.([]string)
	if !ok {
		return []string{}
	}
	return list
}
