package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
)

// SessionSweeper periodically aborts sync sessions abandoned by clients.
type SessionSweeper struct {
	sweeper  IdleSessionSweeper
	interval time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

func NewSessionSweeper(sweeper IdleSessionSweeper, interval time.Duration, log *logger.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{sweeper: sweeper, interval: interval, now: time.Now, logger: log}
}

func (s *SessionSweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.sweeper.SweepIdleSessions(s.now()); n > 0 {
				s.logger.Info().Int("sessions", n).Msg("aborted idle sync sessions")
			}
		}
	}
}
