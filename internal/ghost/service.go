// Package ghost records trades a user considered but did not execute.
//
// A ghost is priced once at creation through the pricing resolver, stored
// under the user's partition with a time-ordered sort key, and counted into
// the user's ledger summary. Afterwards only its status and note change.
package ghost

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/pricing"
	"github.com/shopspring/decimal"
)

// Defaults for listing and lookup.
const (
	DefaultListLimit    = 50
	DefaultLookupWindow = 100
)

// Pricer resolves the price of a new ghost.
type Pricer interface {
	Resolve(ctx context.Context, req pricing.Request) (pricing.Resolution, error)
}

// Ledger is notified of every created ghost.
type Ledger interface {
	OnGhostCreated(ctx context.Context, userID string, createdAt int64, hesitationTags []string) error
}

// CreateInput is a ghost creation request.
type CreateInput struct {
	Ticker         string
	Direction      model.Direction
	PriceSource    model.PriceSource
	QuantityType   model.QuantityType
	IntendedSize   decimal.Decimal
	IntendedPrice  *decimal.Decimal
	ConsideredAt   *int64
	HesitationTags []string
	NoteText       *string
	VoiceKey       *string
}

// UpdateInput changes the mutable fields of a ghost. Nil fields are left alone.
type UpdateInput struct {
	Status   *string
	NoteText *string
}

// Service creates, lists and updates ghost records.
type Service struct {
	table        *kv.Table[model.GhostRecord]
	pricer       Pricer
	ledger       Ledger
	newID        func() string
	now          func() time.Time
	listLimit    int
	lookupWindow int
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithListLimit sets the default page size of List.
func WithListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.listLimit = n
		}
	}
}

// WithLookupWindow sets how many recent ghosts Get scans.
func WithLookupWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupWindow = n
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator sets the ghost id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service over the application store.
func NewService(store kv.Store, pricer Pricer, ledger Ledger, opts ...Option) *Service {
	s := &Service{
		table:        kv.NewTable[model.GhostRecord](store, Codec{}),
		pricer:       pricer,
		ledger:       ledger,
		newID:        uuid.NewString,
		now:          time.Now,
		listLimit:    DefaultListLimit,
		lookupWindow: DefaultLookupWindow,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create prices and stores a new OPEN ghost, then updates the ledger.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (model.GhostRecord, error) {
	if userID == "" {
		return model.GhostRecord{}, apperr.Validation("user id is required")
	}

	now := s.now()
	res, err := s.pricer.Resolve(ctx, pricing.Request{
		UserID:        userID,
		Ticker:        in.Ticker,
		Direction:     in.Direction,
		PriceSource:   in.PriceSource,
		QuantityType:  in.QuantityType,
		IntendedSize:  in.IntendedSize,
		IntendedPrice: in.IntendedPrice,
		ConsideredAt:  in.ConsideredAt,
		CreatedAt:     now,
	})
	if err != nil {
		return model.GhostRecord{}, err
	}

	tags := slices.Clone(in.HesitationTags)
	if tags == nil {
		tags = []string{}
	}

	g := model.GhostRecord{
		GhostID:        s.newID(),
		UserID:         userID,
		CreatedAt:      now.UnixMilli(),
		Ticker:         res.Ticker,
		Direction:      res.Direction,
		PriceSource:    res.PriceSource,
		QuantityType:   res.QuantityType,
		ResolvedPrice:  res.Quote.Price,
		Shares:         res.Shares,
		Dollars:        res.Dollars,
		ConsideredAt:   res.ConsideredAt,
		HesitationTags: tags,
		Status:         model.StatusOpen,
		LoggedQuote:    res.Quote,
	}
	g = g.WithNote(in.NoteText)
	if in.VoiceKey != nil {
		key := *in.VoiceKey
		g.VoiceKey = &key
	}

	if err := s.table.Put(ctx, g); err != nil {
		return model.GhostRecord{}, fmt.Errorf("put ghost %s: %w", g.GhostID, err)
	}
	if err := s.ledger.OnGhostCreated(ctx, userID, g.CreatedAt, g.HesitationTags); err != nil {
		return model.GhostRecord{}, fmt.Errorf("update ledger for ghost %s: %w", g.GhostID, err)
	}

	s.logger.Info("ghost created",
		"user_id", userID,
		"ghost_id", g.GhostID,
		"symbol", g.Ticker,
		"price_source", g.PriceSource,
		"quote_source", g.LoggedQuote.Source,
	)
	return g, nil
}

// List returns the user's newest ghosts first, at most limit of them.
// limit <= 0 uses the default page size.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]model.GhostRecord, error) {
	if limit <= 0 {
		limit = s.listLimit
	}
	ghosts, err := s.table.Query(ctx, model.UserPK(userID), model.GhostSKPrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("list ghosts %s: %w", userID, err)
	}
	return ghosts, nil
}

// Get finds a ghost by id among the user's most recent lookup window of
// ghosts. Older ghosts are reported as not found.
func (s *Service) Get(ctx context.Context, userID, ghostID string) (model.GhostRecord, error) {
	recent, err := s.table.Query(ctx, model.UserPK(userID), model.GhostSKPrefix, s.lookupWindow)
	if err != nil {
		return model.GhostRecord{}, fmt.Errorf("get ghost %s: %w", ghostID, err)
	}
	for _, g := range recent {
		if g.GhostID == ghostID {
			return g, nil
		}
	}
	return model.GhostRecord{}, apperr.NotFound("ghost", ghostID)
}

// Update applies in to the ghost and rewrites it in full.
func (s *Service) Update(ctx context.Context, userID, ghostID string, in UpdateInput) (model.GhostRecord, error) {
	g, err := s.Get(ctx, userID, ghostID)
	if err != nil {
		return model.GhostRecord{}, err
	}

	if in.Status != nil {
		status, ok := model.ParseGhostStatus(*in.Status)
		if !ok {
			return model.GhostRecord{}, apperr.Validation("invalid status: %s", *in.Status)
		}
		g = g.WithStatus(status)
	}
	if in.NoteText != nil {
		g = g.WithNote(in.NoteText)
	}

	if err := s.table.Put(ctx, g); err != nil {
		return model.GhostRecord{}, fmt.Errorf("put ghost %s: %w", ghostID, err)
	}

	s.logger.Info("ghost updated", "user_id", userID, "ghost_id", ghostID, "status", g.Status)
	return g, nil
}
