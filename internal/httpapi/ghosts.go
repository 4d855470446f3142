package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rickgao/phantom-ledger/internal/ghost"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/voice"
	"github.com/shopspring/decimal"
)

// createGhostRequest is the POST /v1/ghosts body. IntendedShares and
// IntendedDollars are older clients' spelling of IntendedSize.
type createGhostRequest struct {
	Ticker         string           `json:"ticker"`
	Direction      string           `json:"direction"`
	PriceSource    string           `json:"priceSource"`
	QuantityType   string           `json:"quantityType"`
	IntendedSize   *decimal.Decimal `json:"intendedSize"`
	IntendedShares *decimal.Decimal `json:"intendedShares"`
	IntendedDollars *decimal.Decimal `json:"intendedDollars"`
	IntendedPrice  *decimal.Decimal `json:"intendedPrice"`
	ConsideredAt   *int64           `json:"consideredAtEpochMs"`
	HesitationTags []string         `json:"hesitationTags"`
	NoteText       *string          `json:"noteText"`
	VoiceKey       *string          `json:"voiceKey"`
}

// size returns the intended size, falling back to the legacy field matching
// the quantity type.
func (r createGhostRequest) size() *decimal.Decimal {
	if r.IntendedSize != nil {
		return r.IntendedSize
	}
	if qt, _ := model.ParseQuantityType(r.QuantityType); qt == model.QuantityDollars {
		return r.IntendedDollars
	}
	return r.IntendedShares
}

type updateGhostRequest struct {
	Status   *string `json:"status"`
	NoteText *string `json:"noteText"`
}

type ghostList struct {
	Ghosts []model.GhostRecord `json:"ghosts"`
}

func (h *handler) createGhost(c *gin.Context) {
	var req createGhostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	size := req.size()
	if size == nil {
		c.JSON(http.StatusBadRequest, errorBody("intendedSize is required"))
		return
	}

	uid := userID(c)
	if req.VoiceKey != nil && h.Uploads != nil && h.Uploads.Enabled() && !voice.OwnedBy(*req.VoiceKey, uid) {
		c.JSON(http.StatusBadRequest, errorBody("voiceKey was not issued to this user"))
		return
	}

	g, err := h.Ghosts.Create(c.Request.Context(), uid, ghost.CreateInput{
		Ticker:         req.Ticker,
		Direction:      model.Direction(req.Direction),
		PriceSource:    model.PriceSource(req.PriceSource),
		QuantityType:   model.QuantityType(req.QuantityType),
		IntendedSize:   *size,
		IntendedPrice:  req.IntendedPrice,
		ConsideredAt:   req.ConsideredAt,
		HesitationTags: req.HesitationTags,
		NoteText:       req.NoteText,
		VoiceKey:       req.VoiceKey,
	})
	if err != nil {
		h.writeError(c, err, "Failed to create ghost")
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *handler) listGhosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		limit = n
	}

	ghosts, err := h.Ghosts.List(c.Request.Context(), userID(c), limit)
	if err != nil {
		h.writeError(c, err, "Failed to list ghosts")
		return
	}
	if ghosts == nil {
		ghosts = []model.GhostRecord{}
	}
	c.JSON(http.StatusOK, ghostList{Ghosts: ghosts})
}

func (h *handler) getGhost(c *gin.Context) {
	g, err := h.Ghosts.Get(c.Request.Context(), userID(c), c.Param("ghostId"))
	if err != nil {
		h.writeError(c, err, "Failed to retrieve ghost")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *handler) updateGhost(c *gin.Context) {
	var req updateGhostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	g, err := h.Ghosts.Update(c.Request.Context(), userID(c), c.Param("ghostId"), ghost.UpdateInput{
		Status:   req.Status,
		NoteText: req.NoteText,
	})
	if err != nil {
		h.writeError(c, err, "Failed to update ghost")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *handler) voiceUpload(c *gin.Context) {
	if h.Uploads == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody("Voice uploads are not enabled"))
		return
	}
	up, err := h.Uploads.PresignUpload(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "Voice uploads are not available")
		return
	}
	c.JSON(http.StatusOK, up)
}

func (h *handler) summary(c *gin.Context) {
	s, err := h.Dashboard.SummaryOrCreate(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "Failed to load dashboard summary")
		return
	}
	c.JSON(http.StatusOK, s)
}
