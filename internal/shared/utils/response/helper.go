package response

import (
	"errors"
	"net/http"

	"ticketly/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error maps a service error onto an HTTP status using the sentinel taxonomy
// and writes the standard envelope.
func Error(c *gin.Context, err error) {
	RespondJSON(c, "error", statusCodeFor(err), err.Error(), nil, nil)
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrSeatUnavailable):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
