// Package leagues builds circuit schedules and standings.
package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

var ErrCircuitNotFound = errors.New("circuit not found")

const ReasonAlreadyScheduled = "Validation Error: Circuit already has a schedule."

type Service struct {
	db *db.DB
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("league service requires a database")
	}
	return &Service{db: database}, nil
}

// CreateCircuitSchedule generates a round robin for every team in the
// circuit and stores it. Rounds are looked up by number within the season
// and created when missing. Only service identities may call it, and a
// circuit is scheduled at most once.
func (s *Service) CreateCircuitSchedule(ctx context.Context, id eligibility.Identity, circuitID int64, opts ScheduleOptions) ([]dbgen.Match, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "league_service").
		Int64("circuit_id", circuitID).
		Logger()

	if err := eligibility.CanCreateMatch(id); err != nil {
		logger.Warn().Err(err).Msg("Schedule generation refused")
		return nil, err
	}

	var created []dbgen.Match
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		circuit, err := txdb.Queries.GetCircuit(ctx, circuitID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCircuitNotFound
			}
			return fmt.Errorf("load circuit: %w", err)
		}
		existing, err := txdb.Queries.ListMatchesByCircuit(ctx, circuitID)
		if err != nil {
			return fmt.Errorf("list circuit matches: %w", err)
		}
		if len(existing) > 0 {
			return eligibility.Invalid(ReasonAlreadyScheduled)
		}

		teams, err := txdb.Queries.ListTeamsByCircuit(ctx, circuitID)
		if err != nil {
			return fmt.Errorf("list circuit teams: %w", err)
		}
		schedule, err := GenerateCircuitSchedule(circuitID, teams, opts)
		if err != nil {
			return eligibility.Invalid("Validation Error: " + err.Error())
		}

		rounds := make(map[int]int64)
		for _, scheduled := range schedule {
			roundID, ok := rounds[scheduled.Round]
			if !ok {
				roundID, err = ensureRound(ctx, txdb, circuit.SeasonID, scheduled.Round)
				if err != nil {
					return err
				}
				rounds[scheduled.Round] = roundID
			}

			params := dbgen.CreateMatchParams{
				HomeID:    scheduled.HomeTeam.ID,
				CircuitID: circuitID,
				RoundID:   sql.NullInt64{Int64: roundID, Valid: true},
			}
			if scheduled.AwayTeam != nil {
				params.AwayID = sql.NullInt64{Int64: scheduled.AwayTeam.ID, Valid: true}
			}
			if scheduled.StartTime != nil {
				params.StartTime = sql.NullTime{Time: *scheduled.StartTime, Valid: true}
			}
			matchID, err := txdb.Queries.CreateMatch(ctx, params)
			if err != nil {
				return fmt.Errorf("create round %d match: %w", scheduled.Round, err)
			}
			match, err := txdb.Queries.GetMatch(ctx, matchID)
			if err != nil {
				return fmt.Errorf("load match: %w", err)
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		if _, ok := eligibility.AsDenial(err); ok || errors.Is(err, ErrCircuitNotFound) {
			logger.Warn().Err(err).Msg("Schedule generation refused")
		} else {
			logger.Error().Err(err).Msg("Schedule generation failed")
		}
		return nil, err
	}

	logger.Info().Int("matches", len(created)).Int("rounds", len(roundsOf(created))).Msg("Generated circuit schedule")
	return created, nil
}

func ensureRound(ctx context.Context, txdb *db.DB, seasonID int64, number int) (int64, error) {
	round, err := txdb.Queries.GetRoundByNumber(ctx, dbgen.GetRoundByNumberParams{
		SeasonID:    seasonID,
		RoundNumber: int64(number),
	})
	if err == nil {
		return round.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("load round %d: %w", number, err)
	}
	roundID, err := txdb.Queries.CreateRound(ctx, dbgen.CreateRoundParams{
		SeasonID:    seasonID,
		RoundNumber: int64(number),
		Name:        sql.NullString{String: fmt.Sprintf("Round %d", number), Valid: true},
	})
	if err != nil {
		return 0, fmt.Errorf("create round %d: %w", number, err)
	}
	return roundID, nil
}

func roundsOf(matches []dbgen.Match) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, m := range matches {
		if m.RoundID.Valid {
			out[m.RoundID.Int64] = struct{}{}
		}
	}
	return out
}

// Standings returns the ranked standings of a circuit.
func (s *Service) Standings(ctx context.Context, circuitID int64) ([]TeamStanding, error) {
	if _, err := s.db.Queries.GetCircuit(ctx, circuitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCircuitNotFound
		}
		return nil, fmt.Errorf("load circuit: %w", err)
	}
	return CalculateStandings(ctx, s.db.Queries, circuitID)
}
