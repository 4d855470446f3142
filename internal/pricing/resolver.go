package pricing

import (
	"context"
	"log/slog"
	"time"
	_ "time/tzdata" // market timezone must resolve on hosts without zoneinfo

	"github.com/rickgao/phantom-ledger/internal/alpaca"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/quotecache"
	"github.com/shopspring/decimal"
)

// CacheSource tags cache entries written by the resolver.
const CacheSource = "alpaca"

// shareScale is the number of decimal places kept when converting dollars
// to shares.
const shareScale = 8

// MarketData is the upstream provider surface used by the Resolver.
// *alpaca.Client implements it.
type MarketData interface {
	Configured() bool
	GetSnapshot(ctx context.Context, symbol string) (*alpaca.SnapshotResponse, error)
	GetBars(ctx context.Context, symbol string, opts alpaca.BarsOptions) (*alpaca.BarsResponse, error)
	GetAsset(ctx context.Context, symbol string) (*alpaca.Asset, error)
}

// Request is everything needed to price one ghost.
type Request struct {
	UserID        string
	Ticker        string
	Direction     model.Direction
	PriceSource   model.PriceSource
	QuantityType  model.QuantityType
	IntendedSize  decimal.Decimal
	IntendedPrice *decimal.Decimal
	ConsideredAt  *int64 // epoch ms

	// CreatedAt is the creation instant. Zero means now.
	CreatedAt time.Time
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Ticker       string
	Direction    model.Direction
	PriceSource  model.PriceSource
	QuantityType model.QuantityType
	Quote        model.Quote
	Shares       decimal.Decimal
	Dollars      decimal.Decimal
	ConsideredAt int64 // epoch ms
}

// Resolver prices ghosts and serves market lookups.
type Resolver struct {
	market        MarketData
	cache         *quotecache.Cache
	quoteTTL      time.Duration
	timeSeriesTTL time.Duration
	lookbackDays  int
	location      *time.Location
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithQuoteTTL sets how long live quotes stay cached.
func WithQuoteTTL(d time.Duration) Option {
	return func(r *Resolver) {
		r.quoteTTL = d
	}
}

// WithTimeSeriesTTL sets how long candle sets stay cached.
func WithTimeSeriesTTL(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeSeriesTTL = d
	}
}

// WithLookbackDays sets how far back historical pricing may reach.
func WithLookbackDays(days int) Option {
	return func(r *Resolver) {
		r.lookbackDays = days
	}
}

// WithLocation sets the market timezone used to find a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		r.location = loc
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver with 15s quote and 6h candle TTLs, a 365 day
// look-back and the America/New_York calendar.
func NewResolver(market MarketData, cache *quotecache.Cache, opts ...Option) *Resolver {
	r := &Resolver{
		market:        market,
		cache:         cache,
		quoteTTL:      15 * time.Second,
		timeSeriesTTL: 6 * time.Hour,
		lookbackDays:  365,
		location:      newYork(),
		now:           time.Now,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func newYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Resolve validates req, prices it from its price source and converts the
// intended size into shares and dollars.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Resolution, error) {
	ticker := model.NormalizeTicker(req.Ticker)
	if ticker == "" {
		return Resolution{}, apperr.Validation("ticker is required")
	}
	direction, ok := model.ParseDirection(string(req.Direction))
	if !ok {
		return Resolution{}, apperr.Validation("invalid direction: %s", req.Direction)
	}
	source, ok := model.ParsePriceSource(string(req.PriceSource))
	if !ok {
		return Resolution{}, apperr.Validation("invalid priceSource: %s", req.PriceSource)
	}
	qtyType, ok := model.ParseQuantityType(string(req.QuantityType))
	if !ok {
		return Resolution{}, apperr.Validation("invalid quantityType: %s", req.QuantityType)
	}
	if req.IntendedSize.IsNegative() {
		return Resolution{}, apperr.Validation("intended size must not be negative")
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	var (
		quote        model.Quote
		consideredAt int64
		err          error
	)

	switch source {
	case model.PriceSourceLive:
		quote, err = r.LiveQuote(ctx, ticker)
		consideredAt = createdAt.UnixMilli()

	case model.PriceSourceHistorical:
		if req.ConsideredAt == nil {
			return Resolution{}, apperr.Validation("consideredAtEpochMs is required for %s pricing", source)
		}
		consideredAt = *req.ConsideredAt
		quote, err = r.HistoricalQuote(ctx, ticker, consideredAt)

	case model.PriceSourceManual:
		if req.IntendedPrice == nil {
			return Resolution{}, apperr.Validation("intendedPrice is required for %s pricing", source)
		}
		if !req.IntendedPrice.IsPositive() {
			return Resolution{}, apperr.Validation("intendedPrice must be positive")
		}
		quote = model.Quote{
			Symbol:     ticker,
			Price:      *req.IntendedPrice,
			CapturedAt: createdAt.UnixMilli(),
			Source:     model.QuoteSourceManual,
		}
		consideredAt = createdAt.UnixMilli()
		if req.ConsideredAt != nil {
			consideredAt = *req.ConsideredAt
		}
	}
	if err != nil {
		return Resolution{}, err
	}

	shares, dollars, err := convert(qtyType, req.IntendedSize, quote)
	if err != nil {
		return Resolution{}, err
	}

	r.logger.Debug("resolved ghost price",
		"user_id", req.UserID,
		"symbol", ticker,
		"price_source", source,
		"quote_source", quote.Source,
		"price", quote.Price.String(),
	)

	return Resolution{
		Ticker:       ticker,
		Direction:    direction,
		PriceSource:  source,
		QuantityType: qtyType,
		Quote:        quote,
		Shares:       shares,
		Dollars:      dollars,
		ConsideredAt: consideredAt,
	}, nil
}

// convert derives shares and dollars from size in the unit named by qtyType.
// A MOCK quote is priced at zero, so its derived side is zero.
func convert(qtyType model.QuantityType, size decimal.Decimal, quote model.Quote) (shares, dollars decimal.Decimal, err error) {
	price := quote.Price
	if quote.Source != model.QuoteSourceMock && !price.IsPositive() {
		return decimal.Zero, decimal.Zero, apperr.Validation("resolved price must be positive, got %s", price)
	}

	switch qtyType {
	case model.QuantityShares:
		return size, size.Mul(price), nil
	case model.QuantityDollars:
		if price.IsZero() {
			return decimal.Zero, size, nil
		}
		return size.DivRound(price, shareScale), size, nil
	default:
		return decimal.Zero, decimal.Zero, apperr.Validation("invalid quantityType: %s", qtyType)
	}
}
