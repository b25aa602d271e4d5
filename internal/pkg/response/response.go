// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "campuscafe-reports/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort before writing so later handlers never run
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	c.JSON(code, resp)
}

// FromError maps a service error onto its status code. Query failures only
// expose their safe message; anything unrecognised becomes a generic 500.
func FromError(c *gin.Context, err error) {
	if ve, ok := xerrors.AsValidation(err); ok {
		Error(c, http.StatusBadRequest, "invalid request parameters", ve)
		return
	}
	if qe, ok := xerrors.AsQuery(err); ok {
		Error(c, http.StatusInternalServerError, qe.Message, nil)
		return
	}
	if errors.Is(err, xerrors.ErrUnauthorized) {
		Unauthorized(c, "unauthorized")
		return
	}
	if errors.Is(err, xerrors.ErrRateLimited) {
		TooManyRequests(c, "too many requests")
		return
	}
	Error(c, http.StatusInternalServerError, "internal server error", nil)
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// TooManyRequests sends a 429 response.
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message, xerrors.ErrRateLimited)
}
