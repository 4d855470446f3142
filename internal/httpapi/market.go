package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/version"
)

const missingSymbol = "Missing required parameter: symbol"

type quoteResponse struct {
	model.Quote
	FetchedAt string `json:"fetchedAt"`
}

type healthResponse struct {
	Status string `json:"status"`
	version.Info
}

func (h *handler) quote(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	q := h.Market.BestEffortQuote(c.Request.Context(), symbol)
	c.JSON(http.StatusOK, quoteResponse{
		Quote:     q,
		FetchedAt: h.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) candles(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	set, err := h.Market.Candles(c.Request.Context(), symbol, c.Query("interval"), c.Query("range"))
	if err != nil {
		h.writeError(c, err, "Failed to retrieve market candles")
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *handler) validate(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	info, err := h.Market.ValidateTicker(c.Request.Context(), symbol)
	if err != nil {
		h.writeError(c, err, "Failed to validate ticker")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handler) health(c *gin.Context) {
	resp := healthResponse{Status: "ok", Info: version.Current()}
	if h.Health != nil {
		if err := h.Health.Ping(c.Request.Context()); err != nil {
			h.Logger.Warn("health check failed", "error", err)
			resp.Status = "unavailable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func symbolParam(c *gin.Context) (string, bool) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, errorBody(missingSymbol))
		return "", false
	}
	return symbol, true
}
