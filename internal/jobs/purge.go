// Package jobs runs periodic maintenance next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/repo"
)

// purgeTimeout bounds a single purge run.
const purgeTimeout = 30 * time.Second

// Scheduler wraps a cron runner with the jobs this service needs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler returns a stopped scheduler. Overlapping runs of the same job
// are skipped rather than queued.
func NewScheduler(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "jobs").Logger()
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{l}),
			cron.SkipIfStillRunning(cronLogger{l}),
		)),
		log: l,
	}
}

// AddIdempotencyPurge registers the expired-key purge under spec (standard
// five-field cron or descriptors such as "@every 1h"). An empty spec leaves
// the job disabled.
func (s *Scheduler) AddIdempotencyPurge(db *gorm.DB, spec string) error {
	if spec == "" {
		s.log.Info().Msg("idempotency purge disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { PurgeIdempotency(context.Background(), db, s.log, time.Now()) }); err != nil {
		return fmt.Errorf("schedule idempotency purge %q: %w", spec, err)
	}
	s.log.Info().Str("schedule", spec).Msg("idempotency purge scheduled")
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("jobs still running at shutdown")
	}
}

// PurgeIdempotency deletes idempotency records that expired before now and
// returns how many were removed. Failures are logged, never returned.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, log zerolog.Logger, now time.Time) int64 {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	start := time.Now()
	n, err := repo.PurgeExpiredIdempotency(ctx, db, now)
	if err != nil {
		log.Error().Err(err).Msg("idempotency purge failed")
		return 0
	}
	log.Info().Int64("deleted", n).Dur("took", time.Since(start)).Msg("idempotency purge")
	return n
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l zerolog.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug().Fields(kv).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error().Err(err).Fields(kv).Msg(msg)
}
