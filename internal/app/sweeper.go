package app

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultSweepInterval = time.Second

// Sweeper periodically drives ActivateDue and CloseDue so auctions open and
// close on schedule even when no bids arrive. Each swept auction goes
// through the same critical section as live bids.
type Sweeper struct {
	lifecycle *LifecycleService
	interval  time.Duration
	logger    *slog.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool
}

type SweeperOption func(*Sweeper)

// WithSweepInterval overrides how often the sweep runs.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweeperLogger sets the logger for sweep activity.
func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSweeper(lifecycle *LifecycleService, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		lifecycle: lifecycle,
		interval:  defaultSweepInterval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("caller", "Sweeper"))
	return s
}

func (s *Sweeper) Start() {
	if s.started {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.logger.Info("starting auction sweeper", slog.Duration("interval", s.interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.logger.Info("auction sweeper stopped")

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	activated, err := s.lifecycle.ActivateDue(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("activation sweep error", slog.Any("error", err))
	}
	closed, err := s.lifecycle.CloseDue(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("close sweep error", slog.Any("error", err))
	}
	if activated > 0 || closed > 0 {
		s.logger.Debug("sweep applied transitions", slog.Int("activated", activated), slog.Int("closed", closed))
	}
}

func (s *Sweeper) Close() {
	if !s.started {
		return
	}
	s.started = false
	s.cancel()
	s.wg.Wait()
}
