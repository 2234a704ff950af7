package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

const (
	StatusCompleted     = "C"
	StatusSingleForfeit = "SF"
	StatusDoubleForfeit = "DF"
	StatusBye           = "BY"
)

const (
	ReasonResultTeams    = "Validation Error: Result Winner and Loser must be associated with Match"
	ReasonResultDistinct = "Validation Error: Result Winner and Loser must be different Teams."
	ReasonSetTeams       = "Validation Error: Set Winner and Loser must be associated with Match"
	ReasonStatus         = "Validation Error: Result status must be one of C, SF, DF, BY."
	ReasonTeamMapping    = "Validation Error: Team mappings must reference Teams in this Match."
	ReasonUnknownPlayer  = "Validation Error: Player mappings must reference registered Players."
)

type SetLogInput struct {
	Filename string
	Body     string
}

type SetInput struct {
	WinnerID int64
	LoserID  int64
	Log      *SetLogInput
}

type PlayerMappingInput struct {
	Nickname string
	PlayerID int64
}

type TeamMappingInput struct {
	Color  string
	TeamID int64
}

type SubmitResultParams struct {
	MatchID        int64
	WinnerID       int64
	LoserID        int64
	Status         string
	Sets           []SetInput
	Notes          string
	Source         string
	PlayerMappings []PlayerMappingInput
	TeamMappings   []TeamMappingInput
}

type Game struct {
	Number          int64  `json:"number"`
	Map             string `json:"map"`
	WinCondition    string `json:"winCondition"`
	WinnerID        *int64 `json:"winnerId"`
	LoserID         *int64 `json:"loserId"`
	DurationSeconds *int64 `json:"durationSeconds,omitempty"`
}

type Set struct {
	ID       int64  `json:"id"`
	Number   int64  `json:"number"`
	WinnerID int64  `json:"winnerId"`
	LoserID  int64  `json:"loserId"`
	Games    []Game `json:"games"`
}

type PlayerMapping struct {
	Nickname string `json:"nickname"`
	PlayerID int64  `json:"playerId"`
}

type TeamMapping struct {
	Color  string `json:"color"`
	TeamID int64  `json:"teamId"`
}

type Result struct {
	ID             int64           `json:"id"`
	MatchID        int64           `json:"matchId"`
	Status         string          `json:"status"`
	WinnerID       int64           `json:"winnerId"`
	LoserID        int64           `json:"loserId"`
	Notes          string          `json:"notes,omitempty"`
	Source         string          `json:"source,omitempty"`
	CreatedBy      *int64          `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	Sets           []Set           `json:"sets"`
	PlayerMappings []PlayerMapping `json:"playerMappings"`
	TeamMappings   []TeamMapping   `json:"teamMappings"`
}

type loggedSet struct {
	setID    int64
	winnerID int64
	loserID  int64
	body     string
}

// insertResult writes the Result row. The unique index on results.match_id
// backs up the HasResult check and reports the same conflict.
func insertResult(ctx context.Context, txdb *db.DB, arg dbgen.CreateResultParams) (int64, error) {
	resultID, err := txdb.Queries.CreateResult(ctx, arg)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, eligibility.ResultExists()
		}
		return 0, fmt.Errorf("create result: %w", err)
	}
	return resultID, nil
}

// SubmitResult records a match result. The permission check, validation and
// every Result, Set, set log and mapping row run in one transaction. Games
// derived from set logs are written afterwards, one set per transaction, and
// a failure there never undoes the committed result.
func (s *Service) SubmitResult(ctx context.Context, id eligibility.Identity, params SubmitResultParams) (Result, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "result_pipeline").
		Int64("match_id", params.MatchID).
		Logger()

	var resultID int64
	var logs []loggedSet
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		match, err := matchSnapshot(ctx, txdb, params.MatchID)
		if err != nil {
			return err
		}
		if err := eligibility.CanSubmitResult(id, match); err != nil {
			return err
		}
		status, err := s.validate(match, params)
		if err != nil {
			return err
		}

		resultID, err = insertResult(ctx, txdb, dbgen.CreateResultParams{
			MatchID:   match.ID,
			Status:    status,
			WinnerID:  params.WinnerID,
			LoserID:   params.LoserID,
			Notes:     nullString(params.Notes),
			Source:    nullString(params.Source),
			CreatedBy: sql.NullInt64{Int64: *id.PlayerID, Valid: true},
		})
		if err != nil {
			return err
		}

		for i, set := range params.Sets {
			setID, err := txdb.Queries.CreateSet(ctx, dbgen.CreateSetParams{
				ResultID: resultID,
				Number:   int64(i + 1),
				WinnerID: set.WinnerID,
				LoserID:  set.LoserID,
			})
			if err != nil {
				return fmt.Errorf("create set %d: %w", i+1, err)
			}
			if set.Log == nil {
				continue
			}
			if _, err := txdb.Queries.CreateSetLog(ctx, dbgen.CreateSetLogParams{
				SetID:    setID,
				Filename: set.Log.Filename,
				Body:     set.Log.Body,
			}); err != nil {
				return fmt.Errorf("create set log %d: %w", i+1, err)
			}
			logs = append(logs, loggedSet{setID: setID, winnerID: set.WinnerID, loserID: set.LoserID, body: set.Log.Body})
		}

		for _, mapping := range params.PlayerMappings {
			if err := txdb.Queries.CreatePlayerMapping(ctx, dbgen.CreatePlayerMappingParams{
				ResultID: resultID,
				Nickname: mapping.Nickname,
				PlayerID: mapping.PlayerID,
			}); err != nil {
				if db.IsForeignKeyViolation(err) {
					return eligibility.Invalid(ReasonUnknownPlayer)
				}
				return fmt.Errorf("create player mapping: %w", err)
			}
		}
		for _, mapping := range params.TeamMappings {
			if err := txdb.Queries.CreateTeamMapping(ctx, dbgen.CreateTeamMappingParams{
				ResultID: resultID,
				Color:    strings.ToLower(strings.TrimSpace(mapping.Color)),
				TeamID:   mapping.TeamID,
			}); err != nil {
				return fmt.Errorf("create team mapping: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logFailure(logger, err, "Result submission refused")
		return Result{}, err
	}

	logger = logger.With().Int64("result_id", resultID).Logger()
	logger.Info().Int("sets", len(params.Sets)).Msg("Result recorded")

	if len(logs) > 0 {
		s.deriveGames(ctx, logger, resultID, logs)
	}

	return s.GetResult(ctx, resultID)
}

// validate runs the structural checks in order and returns the status to store.
func (s *Service) validate(match eligibility.MatchSnapshot, params SubmitResultParams) (string, error) {
	if !match.Involves(params.WinnerID) || !match.Involves(params.LoserID) {
		return "", eligibility.Invalid(ReasonResultTeams)
	}
	if params.WinnerID == params.LoserID {
		return "", eligibility.Invalid(ReasonResultDistinct)
	}
	if n := len(params.Sets); n < s.rules.MinSets {
		return "", eligibility.Invalid(MinSetsReason(s.rules.MinSets))
	} else if n > s.rules.MaxSets {
		return "", eligibility.Invalid(MaxSetsReason(s.rules.MaxSets))
	}
	for _, set := range params.Sets {
		if !match.Involves(set.WinnerID) || !match.Involves(set.LoserID) {
			return "", eligibility.Invalid(ReasonSetTeams)
		}
	}

	status := strings.ToUpper(strings.TrimSpace(params.Status))
	switch status {
	case "":
		status = StatusCompleted
	case StatusCompleted, StatusSingleForfeit, StatusDoubleForfeit, StatusBye:
	default:
		return "", eligibility.Invalid(ReasonStatus)
	}

	for _, mapping := range params.TeamMappings {
		if !match.Involves(mapping.TeamID) {
			return "", eligibility.Invalid(ReasonTeamMapping)
		}
	}
	return status, nil
}

// MinSetsReason renders the lower set bound message.
func MinSetsReason(n int) string {
	return fmt.Sprintf("Validation Error: You must include results for at least %s.", countSets(n))
}

// MaxSetsReason renders the upper set bound message.
func MaxSetsReason(n int) string {
	return fmt.Sprintf("Validation Error: You cannot include more than %s.", countSets(n))
}

var numberWords = []string{
	"zero", "one", "two", "three", "four", "five", "six",
	"seven", "eight", "nine", "ten", "eleven", "twelve",
}

func countSets(n int) string {
	word := strconv.Itoa(n)
	if n >= 0 && n < len(numberWords) {
		word = numberWords[n]
	}
	if n == 1 {
		return word + " Set"
	}
	return word + " Sets"
}

func (s *Service) deriveGames(ctx context.Context, logger zerolog.Logger, resultID int64, logs []loggedSet) {
	mappings, err := s.db.Queries.ListTeamMappings(ctx, resultID)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping game derivation, team mappings unavailable")
		return
	}
	colors := make(map[string]int64, len(mappings))
	for _, m := range mappings {
		colors[m.Color] = m.TeamID
	}

	for _, set := range logs {
		setLogger := logger.With().Int64("set_id", set.setID).Logger()
		records, err := ParseSetLog(set.body)
		if err != nil {
			setLogger.Warn().Err(err).Msg("Ignoring unreadable set log")
			continue
		}
		err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
			for _, record := range records {
				var winner, loser sql.NullInt64
				if teamID, ok := colors[record.WinnerColor]; ok {
					winner = sql.NullInt64{Int64: teamID, Valid: true}
					switch teamID {
					case set.winnerID:
						loser = sql.NullInt64{Int64: set.loserID, Valid: true}
					case set.loserID:
						loser = sql.NullInt64{Int64: set.winnerID, Valid: true}
					}
				}
				var duration sql.NullInt64
				if record.DurationSeconds > 0 {
					duration = sql.NullInt64{Int64: record.DurationSeconds, Valid: true}
				}
				if _, err := txdb.Queries.CreateGame(ctx, dbgen.CreateGameParams{
					SetID:           set.setID,
					Number:          int64(record.Number),
					Map:             record.Map,
					WinCondition:    record.WinCondition,
					WinnerID:        winner,
					LoserID:         loser,
					DurationSeconds: duration,
				}); err != nil {
					return fmt.Errorf("create game %d: %w", record.Number, err)
				}
			}
			return nil
		})
		if err != nil {
			setLogger.Warn().Err(err).Msg("Game derivation failed, result kept")
			continue
		}
		setLogger.Debug().Int("games", len(records)).Msg("Derived games from set log")
	}
}

// GetResult returns a stored result with its sets, games and mappings.
func (s *Service) GetResult(ctx context.Context, resultID int64) (Result, error) {
	row, err := s.db.Queries.GetResult(ctx, resultID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, fmt.Errorf("load result: %w", err)
	}

	sets, err := s.db.Queries.ListSetsByResult(ctx, resultID)
	if err != nil {
		return Result{}, fmt.Errorf("list sets: %w", err)
	}
	result := Result{
		ID:             row.ID,
		MatchID:        row.MatchID,
		Status:         row.Status,
		WinnerID:       row.WinnerID,
		LoserID:        row.LoserID,
		Notes:          row.Notes.String,
		Source:         row.Source.String,
		CreatedBy:      int64Ptr(row.CreatedBy),
		CreatedAt:      row.CreatedAt,
		Sets:           make([]Set, 0, len(sets)),
		PlayerMappings: []PlayerMapping{},
		TeamMappings:   []TeamMapping{},
	}
	for _, set := range sets {
		games, err := s.db.Queries.ListGamesBySet(ctx, set.ID)
		if err != nil {
			return Result{}, fmt.Errorf("list games: %w", err)
		}
		out := Set{ID: set.ID, Number: set.Number, WinnerID: set.WinnerID, LoserID: set.LoserID, Games: make([]Game, 0, len(games))}
		for _, g := range games {
			out.Games = append(out.Games, Game{
				Number:          g.Number,
				Map:             g.Map,
				WinCondition:    g.WinCondition,
				WinnerID:        int64Ptr(g.WinnerID),
				LoserID:         int64Ptr(g.LoserID),
				DurationSeconds: int64Ptr(g.DurationSeconds),
			})
		}
		result.Sets = append(result.Sets, out)
	}

	players, err := s.db.Queries.ListPlayerMappings(ctx, resultID)
	if err != nil {
		return Result{}, fmt.Errorf("list player mappings: %w", err)
	}
	for _, m := range players {
		result.PlayerMappings = append(result.PlayerMappings, PlayerMapping{Nickname: m.Nickname, PlayerID: m.PlayerID})
	}
	teams, err := s.db.Queries.ListTeamMappings(ctx, resultID)
	if err != nil {
		return Result{}, fmt.Errorf("list team mappings: %w", err)
	}
	for _, m := range teams {
		result.TeamMappings = append(result.TeamMappings, TeamMapping{Color: m.Color, TeamID: m.TeamID})
	}
	return result, nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
