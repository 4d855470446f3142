package model

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// QuoteSource tags where a Quote's price came from.
type QuoteSource string

const (
	QuoteSourceLive       QuoteSource = "MARKET_LIVE_PROVIDER"
	QuoteSourceHistorical QuoteSource = "MARKET_HISTORICAL_PROVIDER"
	QuoteSourceManual     QuoteSource = "MANUAL"
	QuoteSourceMock       QuoteSource = "MOCK"
)

// PriceSource selects how a ghost is priced.
type PriceSource string

const (
	PriceSourceLive       PriceSource = "MARKET_LIVE"
	PriceSourceHistorical PriceSource = "MARKET_HISTORICAL"
	PriceSourceManual     PriceSource = "MANUAL"

	// priceSourceLegacyLive is the wire value older clients send for live pricing.
	priceSourceLegacyLive = "MARKET_CURRENT"
)

// ParsePriceSource normalizes s and reports whether it names a known source.
func ParsePriceSource(s string) (PriceSource, bool) {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case string(PriceSourceLive), priceSourceLegacyLive:
		return PriceSourceLive, true
	case string(PriceSourceHistorical):
		return PriceSourceHistorical, true
	case string(PriceSourceManual):
		return PriceSourceManual, true
	default:
		return PriceSource(v), false
	}
}

// QuantityType says whether the intended size is in shares or dollars.
type QuantityType string

const (
	QuantityShares  QuantityType = "SHARES"
	QuantityDollars QuantityType = "DOLLARS"
)

// ParseQuantityType normalizes s and reports whether it is known.
func ParseQuantityType(s string) (QuantityType, bool) {
	v := QuantityType(strings.ToUpper(strings.TrimSpace(s)))
	return v, v == QuantityShares || v == QuantityDollars
}

// Direction is the side of the considered trade.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ParseDirection normalizes s and reports whether it is known.
func ParseDirection(s string) (Direction, bool) {
	v := Direction(strings.ToUpper(strings.TrimSpace(s)))
	return v, v == DirectionBuy || v == DirectionSell
}

// GhostStatus is the lifecycle state of a ghost record.
type GhostStatus string

const (
	StatusOpen   GhostStatus = "OPEN"
	StatusClosed GhostStatus = "CLOSED"
)

// ParseGhostStatus normalizes s and reports whether it is known.
func ParseGhostStatus(s string) (GhostStatus, bool) {
	v := GhostStatus(strings.ToUpper(strings.TrimSpace(s)))
	return v, v == StatusOpen || v == StatusClosed
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// -----------------------------------------------------------------------------
// Quotes
// -----------------------------------------------------------------------------

// Quote is a resolved price observation. Treat it as immutable.
type Quote struct {
	Symbol            string          `json:"symbol"`
	Price             decimal.Decimal `json:"price"`
	ProviderTimestamp string          `json:"providerTs"`
	CapturedAt        int64           `json:"capturedAtEpochMs"`
	Source            QuoteSource     `json:"source"`
}

// MockQuote is the zero-priced stand-in used when the provider is unavailable.
func MockQuote(symbol string, now time.Time) Quote {
	return Quote{
		Symbol:            NormalizeTicker(symbol),
		Price:             decimal.Zero,
		ProviderTimestamp: now.UTC().Format(time.RFC3339),
		CapturedAt:        now.UnixMilli(),
		Source:            QuoteSourceMock,
	}
}

// Candle is a single OHLCV bar.
type Candle struct {
	Datetime string          `json:"datetime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   int64           `json:"volume"`
}

// CandleSet is the cached answer to a candle query.
type CandleSet struct {
	Symbol    string   `json:"symbol"`
	Interval  string   `json:"interval"`
	Candles   []Candle `json:"candles"`
	FetchedAt string   `json:"fetchedAt"`
}

// TickerInfo describes whether a symbol is a known, tradable asset.
type TickerInfo struct {
	Valid    bool   `json:"valid"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Tradable bool   `json:"tradable"`
}

// CacheEntry is a payload stored in the cache namespace.
type CacheEntry struct {
	PK        string
	SK        string
	Payload   map[string]any
	FetchedAt string // RFC 3339
	ExpiresAt int64  // seconds since epoch
	Source    string
}

// Expired reports whether the entry is stale at now. An entry expiring at
// exactly now is stale.
func (e CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt <= now.Unix()
}

// -----------------------------------------------------------------------------
// Ghosts
// -----------------------------------------------------------------------------

// GhostRecord is a trade the user considered but did not execute.
//
// Only Status and NoteText change after creation, through WithStatus and
// WithNote, which return modified copies.
type GhostRecord struct {
	GhostID        string          `json:"ghostId"`
	UserID         string          `json:"userId"`
	CreatedAt      int64           `json:"createdAtEpochMs"`
	Ticker         string          `json:"ticker"`
	Direction      Direction       `json:"direction"`
	PriceSource    PriceSource     `json:"priceSource"`
	QuantityType   QuantityType    `json:"quantityType"`
	ResolvedPrice  decimal.Decimal `json:"resolvedPrice"`
	Shares         decimal.Decimal `json:"shares"`
	Dollars        decimal.Decimal `json:"dollars"`
	ConsideredAt   int64           `json:"consideredAtEpochMs"`
	HesitationTags []string        `json:"hesitationTags"`
	NoteText       *string         `json:"noteText,omitempty"`
	VoiceKey       *string         `json:"voiceKey,omitempty"`
	Status         GhostStatus     `json:"status"`
	LoggedQuote    Quote           `json:"loggedQuote"`
}

// WithStatus returns a copy of g with the given status.
func (g GhostRecord) WithStatus(status GhostStatus) GhostRecord {
	out := g.clone()
	out.Status = status
	return out
}

// WithNote returns a copy of g with the given note. A nil note clears it.
func (g GhostRecord) WithNote(note *string) GhostRecord {
	out := g.clone()
	if note == nil {
		out.NoteText = nil
	} else {
		n := *note
		out.NoteText = &n
	}
	return out
}

// SortKey returns the sort key the record is stored under.
func (g GhostRecord) SortKey() string {
	return GhostSK(g.CreatedAt, g.GhostID)
}

func (g GhostRecord) clone() GhostRecord {
	out := g
	out.HesitationTags = slices.Clone(g.HesitationTags)
	if g.NoteText != nil {
		n := *g.NoteText
		out.NoteText = &n
	}
	if g.VoiceKey != nil {
		v := *g.VoiceKey
		out.VoiceKey = &v
	}
	return out
}

// -----------------------------------------------------------------------------
// Ledger
// -----------------------------------------------------------------------------

// TagCount is one entry of a hesitation-tag leaderboard.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// LedgerSummary holds a user's running ghost statistics.
type LedgerSummary struct {
	UserID               string     `json:"userId"`
	GhostCountTotal      int64      `json:"ghostCountTotal"`
	GhostCount30d        int64      `json:"ghostCount30d"`
	LastGhostAt          *int64     `json:"lastGhostAtEpochMs"`
	StreakDays           int64      `json:"streakDays"`
	TopHesitationTags30d []TagCount `json:"topHesitationTags30d"`
}

// NewLedgerSummary returns the zeroed summary for a user with no ghosts.
func NewLedgerSummary(userID string) LedgerSummary {
	return LedgerSummary{
		UserID:               userID,
		TopHesitationTags30d: []TagCount{},
	}
}

// RecordGhost returns a copy of s counting one more ghost created at createdAt.
// GhostCount30d is only ever incremented here.
func (s LedgerSummary) RecordGhost(createdAt int64) LedgerSummary {
	out := s
	out.TopHesitationTags30d = slices.Clone(s.TopHesitationTags30d)
	out.GhostCountTotal++
	out.GhostCount30d++
	at := createdAt
	out.LastGhostAt = &at
	return out
}
