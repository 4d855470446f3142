package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rickgao/phantom-ledger/internal/apperr"
)

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// writeError maps err onto a status code. Only validation messages reach the
// client; everything else is logged and answered with fallback.
func (h *handler) writeError(c *gin.Context, err error, fallback string) {
	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, errorBody(validation.Msg))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, errorBody(notFoundMessage(notFound.Entity)))
	case apperr.IsNotConfigured(err):
		h.Logger.Warn(fallback, "request_id", c.GetString(ctxRequestID), "error", err)
		c.JSON(http.StatusServiceUnavailable, errorBody(fallback))
	default:
		h.Logger.Error(fallback, "request_id", c.GetString(ctxRequestID), "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(fallback))
	}
}

func notFoundMessage(entity string) string {
	if entity == "" {
		return "Not found"
	}
	return strings.ToUpper(entity[:1]) + entity[1:] + " not found"
}
