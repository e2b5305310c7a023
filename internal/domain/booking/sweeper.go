package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically finalizes confirmed appointments whose time slot
// has ended. It runs as a background goroutine for the lifetime of the
// server.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(svc *Service, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, logger: logger}
}

// Start runs the sweep loop until the context is cancelled. One sweep
// runs immediately so a restart does not delay completion by a full
// interval.
func (s *Sweeper) Start(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("appointment sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.svc.CompleteElapsed(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).Msg("appointment sweep failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int64("completed", n).Msg("appointments marked completed")
	}
}
