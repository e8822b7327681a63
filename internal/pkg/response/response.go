// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Data     interface{}  `json:"data,omitempty"`
	Error    string       `json:"error,omitempty"`
	Kind     xerrors.Kind `json:"kind,omitempty"`
	Warnings interface{}  `json:"warnings,omitempty"`
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

// SuccessWithWarnings reports a committed write whose follow-up effects failed.
func SuccessWithWarnings(c *gin.Context, status int, message string, data interface{}, warnings interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success:  true,
		Message:  message,
		Data:     data,
		Warnings: warnings,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort before writing so later handlers do not run
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
		response.Kind = xerrors.KindOf(err)
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind xerrors.Kind) int {
	switch kind {
	case xerrors.KindNotFound:
		return http.StatusNotFound
	case xerrors.KindInvalidTransition, xerrors.KindAlreadyConverted,
		xerrors.KindDuplicateMembership, xerrors.KindConflict:
		return http.StatusConflict
	case xerrors.KindMissingRequiredField, xerrors.KindCrossTenantReference, xerrors.KindNoPipelineStage:
		return http.StatusUnprocessableEntity
	case xerrors.KindInvalidInput:
		return http.StatusBadRequest
	case xerrors.KindUnauthorized:
		return http.StatusUnauthorized
	case xerrors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err with the status of its kind. Internal failures hide
// their cause from the client.
func FromError(c *gin.Context, message string, err error) {
	kind := xerrors.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		c.Error(err)
		Error(c, status, message, xerrors.ErrInternal)
		return
	}
	Error(c, status, message, err)
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
