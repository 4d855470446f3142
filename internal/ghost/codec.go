package ghost

import (
	"errors"
	"fmt"

	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/pricing"
)

const (
	attrGhostID        = "ghostId"
	attrUserID         = "userId"
	attrCreatedAt      = "createdAtEpochMs"
	attrTicker         = "ticker"
	attrDirection      = "direction"
	attrPriceSource    = "priceSource"
	attrQuantityType   = "quantityType"
	attrResolvedPrice  = "resolvedPrice"
	attrShares         = "shares"
	attrDollars        = "dollars"
	attrConsideredAt   = "consideredAtEpochMs"
	attrHesitationTags = "hesitationTags"
	attrNoteText       = "noteText"
	attrVoiceKey       = "voiceKey"
	attrStatus         = "status"
	attrLoggedQuote    = "loggedQuote"
)

// Codec maps a GhostRecord to its USER#/GHOST# item.
type Codec struct{}

// Encode implements kv.Codec.
func (Codec) Encode(g model.GhostRecord) (kv.Item, error) {
	if g.UserID == "" || g.GhostID == "" {
		return kv.Item{}, errors.New("ghost without user or ghost id")
	}

	tags := g.HesitationTags
	if tags == nil {
		tags = []string{}
	}

	attrs := kv.Attrs{
		attrGhostID:        g.GhostID,
		attrUserID:         g.UserID,
		attrCreatedAt:      g.CreatedAt,
		attrTicker:         g.Ticker,
		attrDirection:      string(g.Direction),
		attrPriceSource:    string(g.PriceSource),
		attrQuantityType:   string(g.QuantityType),
		attrResolvedPrice:  g.ResolvedPrice.String(),
		attrShares:         g.Shares.String(),
		attrDollars:        g.Dollars.String(),
		attrConsideredAt:   g.ConsideredAt,
		attrHesitationTags: tags,
		attrStatus:         string(g.Status),
		attrLoggedQuote:    pricing.EncodeQuote(g.LoggedQuote),
	}
	if g.NoteText != nil {
		attrs[attrNoteText] = *g.NoteText
	}
	if g.VoiceKey != nil {
		attrs[attrVoiceKey] = *g.VoiceKey
	}

	return kv.Item{
		PK:         model.UserPK(g.UserID),
		SK:         g.SortKey(),
		EntityType: model.EntityGhost,
		Attrs:      attrs,
	}, nil
}

// Decode implements kv.Codec.
func (Codec) Decode(item kv.Item) (model.GhostRecord, error) {
	a := item.Attrs
	g := model.GhostRecord{
		GhostID:        a.String(attrGhostID),
		UserID:         a.String(attrUserID),
		Ticker:         a.String(attrTicker),
		Direction:      model.Direction(a.String(attrDirection)),
		PriceSource:    model.PriceSource(a.String(attrPriceSource)),
		QuantityType:   model.QuantityType(a.String(attrQuantityType)),
		HesitationTags: a.Strings(attrHesitationTags),
		NoteText:       a.StringPtr(attrNoteText),
		VoiceKey:       a.StringPtr(attrVoiceKey),
		Status:         model.GhostStatus(a.String(attrStatus)),
	}

	var err error
	if g.CreatedAt, err = a.Int64(attrCreatedAt); err != nil {
		return model.GhostRecord{}, err
	}
	if g.ConsideredAt, err = a.Int64(attrConsideredAt); err != nil {
		return model.GhostRecord{}, err
	}
	if g.ResolvedPrice, err = a.Decimal(attrResolvedPrice); err != nil {
		return model.GhostRecord{}, err
	}
	if g.Shares, err = a.Decimal(attrShares); err != nil {
		return model.GhostRecord{}, err
	}
	if g.Dollars, err = a.Decimal(attrDollars); err != nil {
		return model.GhostRecord{}, err
	}
	if g.LoggedQuote, err = pricing.DecodeQuote(a.Map(attrLoggedQuote)); err != nil {
		return model.GhostRecord{}, fmt.Errorf("ghost %s: %w", g.GhostID, err)
	}

	return g, nil
}
