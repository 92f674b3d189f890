/*
Package sweeper periodically removes accounts that registered but never confirmed
their OTP within the verification window.
*/
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"backbench/internal/app/store"
	"backbench/internal/pkg/logx"
)

// DefaultInterval is how often the sweep runs.
const DefaultInterval = time.Minute

// Sweeper deletes expired unverified accounts from a Directory.
type Sweeper struct {
	directory store.Directory
	ttl       time.Duration
	interval  time.Duration
	timeout   time.Duration

	now    func() time.Time
	logger zerolog.Logger
}

// New returns a Sweeper removing unverified accounts older than ttl every interval.
func New(directory store.Directory, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		directory: directory,
		ttl:       ttl,
		interval:  interval,
		timeout:   10 * time.Second,
		now:       time.Now,
		logger:    logx.Component("Sweeper"),
	}
}

// Run sweeps once immediately, then on every tick until ctx ends.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Dur("ttl", s.ttl).Msg("Unverified account sweeper started.")

	for {
		s.sweepLogged(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Unverified account sweeper stopped.")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweepLogged(ctx context.Context) {
	removed, err := s.SweepOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("Unverified account sweep failed.")
		}
		return
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Msg("Expired unverified accounts removed.")
	}
}

// SweepOnce deletes every unverified account created more than ttl ago.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.directory.DeleteMany(ctx, store.DeleteFilter{
		UnverifiedOnly: true,
		CreatedBefore:  s.now().Add(-s.ttl),
	})
}
