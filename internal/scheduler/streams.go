package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/config"
	"github.com/buzzleague/buzz/internal/db"
)

const streamExpiryJobName = "stream_expiry"

// ExpireStaleStreams marks streams that went live more than maxAge before
// the clock's current time as no longer live.
func ExpireStaleStreams(ctx context.Context, database *db.DB, clock clockwork.Clock, maxAge time.Duration) (int64, error) {
	if database == nil {
		return 0, fmt.Errorf("stream expiry requires database")
	}
	cutoff := clock.Now().UTC().Add(-maxAge)
	expired, err := database.Queries.ExpireStaleStreams(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire streams: %w", err)
	}
	return expired, nil
}

// RegisterStreamExpiryJob schedules ExpireStaleStreams on the configured cron.
func RegisterStreamExpiryJob(svc *Service, database *db.DB, cfg config.SchedulerConfig) error {
	if database == nil {
		return fmt.Errorf("stream expiry job requires database")
	}
	if svc == nil {
		return ErrNotInitialized
	}

	jobLogger := log.With().
		Str("component", "stream_expiry_job").
		Str("job_name", streamExpiryJobName).
		Str("cron", cfg.StreamExpiryJob).
		Logger()

	_, err := svc.AddJob(streamExpiryJobName, cfg.StreamExpiryJob, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		expired, err := ExpireStaleStreams(ctx, database, svc.Clock(), cfg.StreamMaxAge)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Stream expiry failed")
			return
		}
		if expired > 0 {
			jobLogger.Info().Int64("expired", expired).Msg("Expired stale streams")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add stream expiry job: %w", err)
	}

	jobLogger.Info().Dur("max_age", cfg.StreamMaxAge).Msg("Stream expiry job registered")
	return nil
}
