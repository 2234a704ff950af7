// Package matches schedules matches and accepts their results.
package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/config"
	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrResultNotFound    = errors.New("result not found")
	ErrScheduleForbidden = errors.New("schedule update not permitted")
)

type Match struct {
	ID                 int64      `json:"id"`
	HomeID             int64      `json:"homeId"`
	AwayID             *int64     `json:"awayId"`
	CircuitID          int64      `json:"circuitId"`
	RoundID            *int64     `json:"roundId,omitempty"`
	StartTime          *time.Time `json:"startTime"`
	Scheduled          bool       `json:"scheduled"`
	PrimaryCasterID    *int64     `json:"primaryCasterId"`
	SecondaryCasterIDs []int64    `json:"secondaryCasterIds"`
	VodLink            string     `json:"vodLink,omitempty"`
}

type Service struct {
	db    *db.DB
	rules config.RulesConfig
	clock clockwork.Clock
}

func NewService(database *db.DB, rules config.RulesConfig, clock clockwork.Clock) (*Service, error) {
	if database == nil {
		return nil, errors.New("match service requires a database")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{db: database, rules: rules, clock: clock}, nil
}

type CreateMatchParams struct {
	HomeID    int64
	AwayID    *int64
	RoundID   *int64
	StartTime *time.Time
}

// CreateMatch is reserved for service identities. The match is placed in
// the home team's circuit; a nil AwayID records a bye.
func (s *Service) CreateMatch(ctx context.Context, id eligibility.Identity, params CreateMatchParams) (Match, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "match_service").
		Int64("home_id", params.HomeID).
		Logger()

	if err := eligibility.CanCreateMatch(id); err != nil {
		logger.Warn().Err(err).Msg("Match creation refused")
		return Match{}, err
	}

	var created Match
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		home, err := txdb.Queries.GetTeam(ctx, params.HomeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return eligibility.Invalid("Validation Error: Home team not found.")
			}
			return fmt.Errorf("load home team: %w", err)
		}
		if params.AwayID != nil {
			if *params.AwayID == home.ID {
				return eligibility.Invalid("Validation Error: Home and Away must be different Teams.")
			}
			away, err := txdb.Queries.GetTeam(ctx, *params.AwayID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return eligibility.Invalid("Validation Error: Away team not found.")
				}
				return fmt.Errorf("load away team: %w", err)
			}
			if away.CircuitID != home.CircuitID {
				return eligibility.Invalid("Validation Error: Home and Away must play in the same Circuit.")
			}
		}

		matchID, err := txdb.Queries.CreateMatch(ctx, dbgen.CreateMatchParams{
			HomeID:    home.ID,
			AwayID:    nullInt64(params.AwayID),
			CircuitID: home.CircuitID,
			RoundID:   nullInt64(params.RoundID),
			StartTime: nullTime(params.StartTime),
		})
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return eligibility.Invalid("Validation Error: Round not found.")
			}
			return fmt.Errorf("create match: %w", err)
		}
		created, err = loadMatch(ctx, txdb, matchID)
		return err
	})
	if err != nil {
		logFailure(logger, err, "Match creation failed")
		return Match{}, err
	}

	logger.Info().Int64("match_id", created.ID).Msg("Created match")
	return created, nil
}

// ScheduleUpdate carries the fields a captain may change. Fields whose Set
// flag is false are left as they are.
type ScheduleUpdate struct {
	StartTimeSet        bool
	StartTime           *time.Time
	PrimaryCasterSet    bool
	PrimaryCasterID     *int64
	SecondaryCastersSet bool
	SecondaryCasterIDs  []int64
}

// UpdateSchedule changes the start time and casters of a match that has no
// result yet.
func (s *Service) UpdateSchedule(ctx context.Context, id eligibility.Identity, matchID int64, update ScheduleUpdate) (Match, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "match_service").
		Int64("match_id", matchID).
		Logger()

	var updated Match
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		snapshot, err := matchSnapshot(ctx, txdb, matchID)
		if err != nil {
			return err
		}
		if !eligibility.CanUpdateMatchSchedule(id, snapshot) {
			return ErrScheduleForbidden
		}

		current, err := txdb.Queries.GetMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("load match: %w", err)
		}
		startTime := current.StartTime
		if update.StartTimeSet {
			startTime = nullTime(update.StartTime)
		}
		primary := current.PrimaryCasterID
		if update.PrimaryCasterSet {
			if update.PrimaryCasterID != nil {
				if err := requireCaster(ctx, txdb, *update.PrimaryCasterID); err != nil {
					return err
				}
			}
			primary = nullInt64(update.PrimaryCasterID)
		}

		if _, err := txdb.Queries.UpdateMatchSchedule(ctx, dbgen.UpdateMatchScheduleParams{
			StartTime:       startTime,
			PrimaryCasterID: primary,
			UpdatedAt:       s.clock.Now().UTC(),
			ID:              matchID,
		}); err != nil {
			return fmt.Errorf("update match schedule: %w", err)
		}

		if update.SecondaryCastersSet {
			if err := txdb.Queries.DeleteMatchSecondaryCasters(ctx, matchID); err != nil {
				return fmt.Errorf("clear secondary casters: %w", err)
			}
			seen := make(map[int64]struct{}, len(update.SecondaryCasterIDs))
			for _, casterID := range update.SecondaryCasterIDs {
				if _, dup := seen[casterID]; dup {
					continue
				}
				seen[casterID] = struct{}{}
				if err := requireCaster(ctx, txdb, casterID); err != nil {
					return err
				}
				if err := txdb.Queries.AddMatchSecondaryCaster(ctx, dbgen.AddMatchSecondaryCasterParams{
					MatchID:  matchID,
					CasterID: casterID,
				}); err != nil {
					return fmt.Errorf("add secondary caster: %w", err)
				}
			}
		}

		updated, err = loadMatch(ctx, txdb, matchID)
		return err
	})
	if err != nil {
		logFailure(logger, err, "Match schedule update failed")
		return Match{}, err
	}

	logger.Info().Bool("scheduled", updated.Scheduled).Msg("Updated match schedule")
	return updated, nil
}

func requireCaster(ctx context.Context, txdb *db.DB, casterID int64) error {
	if _, err := txdb.Queries.GetCaster(ctx, casterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eligibility.Invalid("Validation Error: Caster not found.")
		}
		return fmt.Errorf("load caster: %w", err)
	}
	return nil
}

// ListStartingWithin returns scheduled matches whose start time falls in
// [now, now+window].
func (s *Service) ListStartingWithin(ctx context.Context, now time.Time, window time.Duration) ([]Match, error) {
	if window < 0 {
		return nil, fmt.Errorf("window must not be negative")
	}
	now = now.UTC()
	rows, err := s.db.Queries.ListMatchesStartingBetween(ctx, dbgen.ListMatchesStartingBetweenParams{
		From: now,
		To:   now.Add(window),
	})
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	out := make([]Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMatch(row, nil))
	}
	return out, nil
}

// Upcoming is ListStartingWithin measured from the service clock.
func (s *Service) Upcoming(ctx context.Context, window time.Duration) ([]Match, error) {
	return s.ListStartingWithin(ctx, s.clock.Now(), window)
}

// GetMatch returns a match with its casters.
func (s *Service) GetMatch(ctx context.Context, matchID int64) (Match, error) {
	return loadMatch(ctx, s.db, matchID)
}

func matchSnapshot(ctx context.Context, database *db.DB, matchID int64) (eligibility.MatchSnapshot, error) {
	row, err := database.Queries.GetMatchContext(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eligibility.MatchSnapshot{}, ErrMatchNotFound
		}
		return eligibility.MatchSnapshot{}, fmt.Errorf("load match: %w", err)
	}
	return eligibility.MatchSnapshot{
		ID:            row.ID,
		HomeID:        row.HomeID,
		AwayID:        int64Ptr(row.AwayID),
		HomeCaptainID: int64Ptr(row.HomeCaptainID),
		AwayCaptainID: int64Ptr(row.AwayCaptainID),
		Season: eligibility.Season{
			ID:       row.SeasonID,
			IsActive: row.SeasonIsActive,
		},
		HasResult: row.HasResult,
	}, nil
}

func loadMatch(ctx context.Context, database *db.DB, matchID int64) (Match, error) {
	row, err := database.Queries.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrMatchNotFound
		}
		return Match{}, fmt.Errorf("load match: %w", err)
	}
	secondary, err := database.Queries.ListMatchSecondaryCasterIDs(ctx, matchID)
	if err != nil {
		return Match{}, fmt.Errorf("list secondary casters: %w", err)
	}
	return toMatch(row, secondary), nil
}

func toMatch(row dbgen.Match, secondary []int64) Match {
	if secondary == nil {
		secondary = []int64{}
	}
	m := Match{
		ID:                 row.ID,
		HomeID:             row.HomeID,
		AwayID:             int64Ptr(row.AwayID),
		CircuitID:          row.CircuitID,
		RoundID:            int64Ptr(row.RoundID),
		PrimaryCasterID:    int64Ptr(row.PrimaryCasterID),
		SecondaryCasterIDs: secondary,
		VodLink:            row.VodLink.String,
	}
	if row.StartTime.Valid {
		start := row.StartTime.Time.UTC()
		m.StartTime = &start
		m.Scheduled = true
	}
	return m
}

func logFailure(logger zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, ErrScheduleForbidden):
		logger.Warn().Err(err).Msg(msg)
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrResultNotFound):
		logger.Debug().Err(err).Msg(msg)
	default:
		if _, ok := eligibility.AsDenial(err); ok {
			logger.Warn().Err(err).Msg(msg)
			return
		}
		logger.Error().Err(err).Msg(msg)
	}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}
