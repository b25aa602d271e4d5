// internal/middleware/helpers.go
package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
)

const (
	ctxSubject   = "subject"
	ctxJTI       = "jti"
	ctxRoles     = "roles"
	ctxRequestID = "request_id"
)

// GetSubject gets the authenticated client name from context
func GetSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(ctxSubject)
	if !exists {
		return "", false
	}
	s, ok := subject.(string)
	return s, ok
}

// GetRoles gets client roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get(ctxRoles)
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

// HasAnyRole checks the context roles against roles
func HasAnyRole(c *gin.Context, roles ...string) bool {
	userRoles := GetRoles(c)
	for _, r := range roles {
		if slices.Contains(userRoles, r) {
			return true
		}
	}
	return false
}

// GetRequestID returns the id assigned by RequestLogger, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
