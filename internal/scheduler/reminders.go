package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/matches"
)

const (
	matchReminderJobName = "match_reminders"
	matchReminderCron    = "*/15 * * * *"
	matchReminderWindow  = 15 * time.Minute
)

// UpcomingMatches lists matches starting within a window of the service clock.
type UpcomingMatches interface {
	Upcoming(ctx context.Context, window time.Duration) ([]matches.Match, error)
}

// RegisterMatchReminderJobs logs each match about to start so casters and
// stream operators watching the logs can pick it up.
func RegisterMatchReminderJobs(svc *Service, source UpcomingMatches) error {
	if source == nil {
		return fmt.Errorf("match reminder job requires a match source")
	}
	if svc == nil {
		return ErrNotInitialized
	}

	jobLogger := log.With().
		Str("component", "match_reminders_job").
		Str("job_name", matchReminderJobName).
		Str("cron", matchReminderCron).
		Logger()

	_, err := svc.AddJob(matchReminderJobName, matchReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if _, err := announceUpcoming(ctx, source, &jobLogger); err != nil {
			jobLogger.Error().Err(err).Msg("Failed to load upcoming matches")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add match reminder job: %w", err)
	}

	jobLogger.Info().Msg("Match reminder job registered")
	return nil
}

func announceUpcoming(ctx context.Context, source UpcomingMatches, logger *zerolog.Logger) (int, error) {
	upcoming, err := source.Upcoming(ctx, matchReminderWindow)
	if err != nil {
		return 0, err
	}
	for _, match := range upcoming {
		event := logger.Info().
			Int64("match_id", match.ID).
			Int64("home_id", match.HomeID).
			Time("start_time", *match.StartTime)
		if match.AwayID != nil {
			event = event.Int64("away_id", *match.AwayID)
		}
		if match.PrimaryCasterID != nil {
			event = event.Int64("primary_caster_id", *match.PrimaryCasterID)
		}
		event.Msg("Match starting soon")
	}
	return len(upcoming), nil
}
