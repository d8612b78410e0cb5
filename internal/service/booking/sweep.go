package booking

import (
	"context"
	"log/slog"
	"time"
)

type SweeperConfig struct {
	Interval time.Duration
}

// Sweeper periodically completes appointments whose end has passed.
type Sweeper struct {
	svc      *Service
	log      *slog.Logger
	interval time.Duration
}

func NewSweeper(svc *Service, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Sweeper{
		svc:      svc,
		log:      svc.log.With(slog.String("component", "booking.sweeper")),
		interval: cfg.Interval,
	}
}

// Run sweeps until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	n, err := w.svc.CompleteElapsed(ctx, w.svc.now())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.ErrorContext(ctx, "completion sweep failed", slog.Int("completed", n), slog.String("err", err.Error()))
		return
	}
	if n > 0 {
		w.log.InfoContext(ctx, "completed elapsed appointments", slog.Int("completed", n))
	}
}
