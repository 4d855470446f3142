package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/phantom-ledger/internal/kv"
)

// Target is a named store to sweep.
type Target struct {
	Name  string
	Store kv.Expirer
}

// Config holds sweeper configuration.
type Config struct {
	Interval time.Duration // Sweep interval (default: 10m)
	Timeout  time.Duration // Per-target timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// Sweeper purges expired items from its targets on a fixed interval.
type Sweeper struct {
	cfg     Config
	targets []Target
	now     func() time.Time
	logger  *slog.Logger

	purged atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Sweeper.
func New(cfg Config, targets []Target, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Sweeper{
		cfg:     cfg,
		targets: targets,
		now:     time.Now,
		logger:  logger,
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("cache sweeper started",
		"interval", s.cfg.Interval,
		"targets", len(s.targets),
	)

	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("cache sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Purged returns the number of items removed since start.
func (s *Sweeper) Purged() int64 {
	return s.purged.Load()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweepAll()
		}
	}
}

// sweepAll purges every target once. A failing target is logged and skipped.
func (s *Sweeper) sweepAll() {
	start := time.Now()
	now := s.now()

	var total int64
	for _, t := range s.targets {
		n, err := s.sweep(t, now)
		if err != nil {
			s.logger.Warn("failed to sweep cache",
				"target", t.Name,
				"error", err,
			)
			continue
		}
		total += n
	}
	s.purged.Add(total)

	s.logger.Debug("sweep complete",
		"purged", total,
		"duration", time.Since(start),
	)
}

func (s *Sweeper) sweep(t Target, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()
	return t.Store.PurgeExpired(ctx, now)
}
