// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"campuscafe-reports/internal/pkg/jwt"
	"campuscafe-reports/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// Auth is the base authentication middleware that validates JWT tokens
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("rejected bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set(ctxSubject, claims.Subject)
		c.Set(ctxJTI, claims.ID)
		c.Set(ctxRoles, claims.Roles)

		c.Next()
	}
}

// RequireRole requires at least one of the specified roles.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxRoles); !exists {
			response.Error(c, http.StatusForbidden, "no roles found - authentication required", nil)
			return
		}

		if !HasAnyRole(c, roles...) {
			err := errors.New("client does not have required role")
			response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
				"required_roles": roles,
			})
			return
		}

		c.Next()
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
