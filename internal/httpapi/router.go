// Package httpapi exposes the ghost ledger over HTTP with gin.
//
// Every route except /v1/health runs behind the identity middleware, which
// puts the caller's user id on the gin context. Handlers translate the apperr
// taxonomy into status codes in one place (writeError).
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rickgao/phantom-ledger/internal/ghost"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/voice"
)

// Ghosts is the ghost service.
type Ghosts interface {
	Create(ctx context.Context, userID string, in ghost.CreateInput) (model.GhostRecord, error)
	List(ctx context.Context, userID string, limit int) ([]model.GhostRecord, error)
	Get(ctx context.Context, userID, ghostID string) (model.GhostRecord, error)
	Update(ctx context.Context, userID, ghostID string, in ghost.UpdateInput) (model.GhostRecord, error)
}

// Dashboard serves ledger summaries.
type Dashboard interface {
	SummaryOrCreate(ctx context.Context, userID string) (model.LedgerSummary, error)
}

// Market serves the market data endpoints.
type Market interface {
	BestEffortQuote(ctx context.Context, symbol string) model.Quote
	Candles(ctx context.Context, symbol, interval, rng string) (model.CandleSet, error)
	ValidateTicker(ctx context.Context, symbol string) (model.TickerInfo, error)
}

// Uploads issues voice note upload slots.
type Uploads interface {
	Enabled() bool
	PresignUpload(ctx context.Context, userID string) (voice.Upload, error)
}

// Identity maps a bearer token to a user id.
type Identity interface {
	UserID(token string) (string, error)
}

// Health is checked by /v1/health. A nil Health always reports ok.
type Health interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the routes.
type Deps struct {
	Ghosts    Ghosts
	Dashboard Dashboard
	Market    Market
	Uploads   Uploads
	Identity  Identity
	Health    Health

	// AllowHeaderIdentity trusts X-User-Id when no bearer token is sent.
	AllowHeaderIdentity bool

	Logger *slog.Logger
	Now    func() time.Time
}

type handler struct {
	Deps
}

// New builds the gin engine serving all routes.
func New(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handler{Deps: deps}

	r := gin.New()
	r.Use(requestID(), accessLog(deps.Logger), recovery(deps.Logger))

	v1 := r.Group("/v1")
	v1.GET("/health", h.health)

	authed := v1.Group("", identity(deps.Identity, deps.AllowHeaderIdentity))
	{
		authed.POST("/ghosts", h.createGhost)
		authed.GET("/ghosts", h.listGhosts)
		authed.POST("/ghosts/voice-upload", h.voiceUpload)
		authed.GET("/ghosts/:ghostId", h.getGhost)
		authed.PATCH("/ghosts/:ghostId", h.updateGhost)

		authed.GET("/dashboard/summary", h.summary)

		authed.GET("/market/quote", h.quote)
		authed.GET("/market/candles", h.candles)
		authed.GET("/market/validate", h.validate)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("Not found"))
	})

	return r
}
