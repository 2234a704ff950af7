// Package teams creates teams and manages their names, rosters and invite codes.
package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/invitecode"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrCircuitNotFound     = errors.New("circuit not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInviteCodeExhausted = errors.New("could not allocate a unique invite code")
)

const maxTeamNameLength = 64

const ReasonNameRequired = "Validation Error: Team name is required."

type Team struct {
	ID            int64   `json:"id"`
	CircuitID     int64   `json:"circuitId"`
	Name          string  `json:"name"`
	CaptainID     *int64  `json:"captainId"`
	DynastyID     *int64  `json:"dynastyId,omitempty"`
	InviteCode    string  `json:"inviteCode,omitempty"`
	MemberIDs     []int64 `json:"memberIds"`
	IsActive      bool    `json:"isActive"`
	CanAddMembers bool    `json:"canAddMembers"`
}

type CreateParams struct {
	CircuitID int64
	Name      string
	DynastyID *int64
}

// CodeGenerator returns a fresh invite code.
type CodeGenerator func() (string, error)

type Service struct {
	db      *db.DB
	newCode CodeGenerator
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("team service requires a database")
	}
	return &Service{db: database, newCode: invitecode.Generate}, nil
}

// WithCodeGenerator replaces the invite code source.
func (s *Service) WithCodeGenerator(gen CodeGenerator) *Service {
	s.newCode = gen
	return s
}

// Create registers a new team in the circuit with the caller as captain and
// sole member.
func (s *Service) Create(ctx context.Context, id eligibility.Identity, params CreateParams) (Team, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "team_service").
		Int64("circuit_id", params.CircuitID).
		Logger()

	name := strings.TrimSpace(params.Name)

	var created Team
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		circuitRow, err := txdb.Queries.GetCircuitWithSeason(ctx, params.CircuitID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCircuitNotFound
			}
			return fmt.Errorf("load circuit: %w", err)
		}
		circuit := eligibility.Circuit{
			ID:     circuitRow.ID,
			Region: circuitRow.Region,
			Season: eligibility.Season{
				ID:               circuitRow.SeasonID,
				IsActive:         circuitRow.SeasonIsActive,
				RegistrationOpen: circuitRow.SeasonRegistrationOpen,
				RostersOpen:      circuitRow.SeasonRostersOpen,
				MaxTeamMembers:   int(circuitRow.SeasonMaxTeamMembers),
			},
		}

		existing, err := memberships(ctx, txdb, id, circuit.Season.ID)
		if err != nil {
			return err
		}
		if err := eligibility.CanCreateTeam(id, circuit, existing); err != nil {
			return err
		}
		if err := validateName(name); err != nil {
			return err
		}
		captainID := *id.PlayerID

		teamID, err := s.insertWithFreshCode(ctx, txdb, dbgen.CreateTeamParams{
			CircuitID: circuit.ID,
			Name:      name,
			CaptainID: sql.NullInt64{Int64: captainID, Valid: true},
			DynastyID: nullInt64(params.DynastyID),
		})
		if err != nil {
			return err
		}
		if err := txdb.Queries.AddTeamMember(ctx, dbgen.AddTeamMemberParams{TeamID: teamID, PlayerID: captainID}); err != nil {
			return fmt.Errorf("add captain to roster: %w", err)
		}

		created, err = loadTeam(ctx, txdb, teamID)
		return err
	})
	if err != nil {
		logDenial(logger, err, "Team creation refused")
		return Team{}, err
	}

	logger.Info().Int64("team_id", created.ID).Msg("Created team")
	return created, nil
}

// validateName applies the same name rules to new and renamed teams.
func validateName(name string) error {
	if name == "" {
		return eligibility.Invalid(ReasonNameRequired)
	}
	if len(name) > maxTeamNameLength {
		return eligibility.Invalid(fmt.Sprintf("Validation Error: Team name must be at most %d characters.", maxTeamNameLength))
	}
	return nil
}

func (s *Service) insertWithFreshCode(ctx context.Context, txdb *db.DB, params dbgen.CreateTeamParams) (int64, error) {
	for attempt := 0; attempt < invitecode.MaxAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return 0, err
		}
		params.InviteCode = code
		teamID, err := txdb.Queries.CreateTeam(ctx, params)
		if err == nil {
			return teamID, nil
		}
		if !db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("create team: %w", err)
		}
	}
	return 0, ErrInviteCodeExhausted
}

// Rename changes only the team's name.
func (s *Service) Rename(ctx context.Context, id eligibility.Identity, teamID int64, name string) (Team, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "team_service").
		Int64("team_id", teamID).
		Logger()

	name = strings.TrimSpace(name)

	var renamed Team
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		snapshot, err := teamSnapshot(ctx, txdb, teamID)
		if err != nil {
			return err
		}
		if err := eligibility.CanRenameTeam(id, snapshot); err != nil {
			return err
		}
		if err := validateName(name); err != nil {
			return err
		}
		if _, err := txdb.Queries.UpdateTeamName(ctx, dbgen.UpdateTeamNameParams{Name: name, ID: teamID}); err != nil {
			return fmt.Errorf("rename team: %w", err)
		}
		renamed, err = loadTeam(ctx, txdb, teamID)
		return err
	})
	if err != nil {
		logDenial(logger, err, "Team rename refused")
		return Team{}, err
	}

	logger.Info().Str("name", renamed.Name).Msg("Renamed team")
	return renamed, nil
}

// Join adds the caller to the team's roster when the invite code matches
// and the roster and season caps allow it.
func (s *Service) Join(ctx context.Context, id eligibility.Identity, teamID int64, code string) (Team, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "team_service").
		Int64("team_id", teamID).
		Logger()

	if !invitecode.Valid(code) {
		logger.Warn().Msg("Team join refused: malformed invite code")
		return Team{}, ErrPermissionDenied
	}

	var joined Team
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		snapshot, err := teamSnapshot(ctx, txdb, teamID)
		if err != nil {
			return err
		}
		existing, err := memberships(ctx, txdb, id, snapshot.Circuit.Season.ID)
		if err != nil {
			return err
		}
		if !eligibility.CanJoinTeam(id, snapshot, code, existing) {
			return ErrPermissionDenied
		}
		if err := txdb.Queries.AddTeamMember(ctx, dbgen.AddTeamMemberParams{TeamID: teamID, PlayerID: *id.PlayerID}); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrPermissionDenied
			}
			return fmt.Errorf("add team member: %w", err)
		}
		joined, err = loadTeam(ctx, txdb, teamID)
		return err
	})
	if err != nil {
		logDenial(logger, err, "Team join refused")
		return Team{}, err
	}

	logger.Info().Int64("player_id", *id.PlayerID).Msg("Player joined team")
	return joined, nil
}

// RegenerateInviteCode replaces the team's invite code. The previous code
// stops working as soon as the transaction commits.
func (s *Service) RegenerateInviteCode(ctx context.Context, id eligibility.Identity, teamID int64) (string, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "team_service").
		Int64("team_id", teamID).
		Logger()

	var code string
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		snapshot, err := teamSnapshot(ctx, txdb, teamID)
		if err != nil {
			return err
		}
		if !eligibility.CanRegenerateInviteCode(id, snapshot) {
			return ErrPermissionDenied
		}

		for attempt := 0; attempt < invitecode.MaxAttempts; attempt++ {
			candidate, err := s.newCode()
			if err != nil {
				return err
			}
			if candidate == snapshot.InviteCode {
				continue
			}
			_, err = txdb.Queries.UpdateTeamInviteCode(ctx, dbgen.UpdateTeamInviteCodeParams{
				InviteCode: candidate,
				ID:         teamID,
			})
			if err == nil {
				code = candidate
				return nil
			}
			if !db.IsUniqueViolation(err) {
				return fmt.Errorf("update invite code: %w", err)
			}
			logger.Debug().Int("attempt", attempt+1).Msg("Invite code collision, retrying")
		}
		return ErrInviteCodeExhausted
	})
	if err != nil {
		logDenial(logger, err, "Invite code regeneration refused")
		return "", err
	}

	logger.Info().Msg("Regenerated invite code")
	return code, nil
}

// Get returns the team. The invite code is only included for its captain.
func (s *Service) Get(ctx context.Context, id eligibility.Identity, teamID int64) (Team, error) {
	team, err := loadTeam(ctx, s.db, teamID)
	if err != nil {
		return Team{}, err
	}
	if !captainOf(id, team.CaptainID) {
		team.InviteCode = ""
	}
	return team, nil
}

func captainOf(id eligibility.Identity, captainID *int64) bool {
	return id.Authenticated && id.PlayerID != nil && captainID != nil && *id.PlayerID == *captainID
}

func memberships(ctx context.Context, database *db.DB, id eligibility.Identity, seasonID int64) ([]eligibility.Membership, error) {
	if id.PlayerID == nil {
		return nil, nil
	}
	rows, err := database.Queries.ListPlayerTeamsInSeason(ctx, dbgen.ListPlayerTeamsInSeasonParams{
		PlayerID: *id.PlayerID,
		SeasonID: seasonID,
	})
	if err != nil {
		return nil, fmt.Errorf("list player teams: %w", err)
	}
	out := make([]eligibility.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, eligibility.Membership{TeamID: row.ID, CircuitID: row.CircuitID, Region: row.Region})
	}
	return out, nil
}

func teamSnapshot(ctx context.Context, database *db.DB, teamID int64) (eligibility.TeamSnapshot, error) {
	row, err := database.Queries.GetTeamContext(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eligibility.TeamSnapshot{}, ErrTeamNotFound
		}
		return eligibility.TeamSnapshot{}, fmt.Errorf("load team: %w", err)
	}
	members, err := database.Queries.ListTeamMemberIDs(ctx, teamID)
	if err != nil {
		return eligibility.TeamSnapshot{}, fmt.Errorf("list team members: %w", err)
	}
	return eligibility.TeamSnapshot{
		ID: row.ID,
		Circuit: eligibility.Circuit{
			ID:     row.CircuitID,
			Region: row.Region,
			Season: eligibility.Season{
				ID:               row.SeasonID,
				IsActive:         row.SeasonIsActive,
				RegistrationOpen: row.SeasonRegistrationOpen,
				RostersOpen:      row.SeasonRostersOpen,
				MaxTeamMembers:   int(row.SeasonMaxTeamMembers),
			},
		},
		CaptainID:  int64Ptr(row.CaptainID),
		InviteCode: row.InviteCode,
		MemberIDs:  members,
	}, nil
}

func loadTeam(ctx context.Context, database *db.DB, teamID int64) (Team, error) {
	row, err := database.Queries.GetTeamContext(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, ErrTeamNotFound
		}
		return Team{}, fmt.Errorf("load team: %w", err)
	}
	members, err := database.Queries.ListTeamMemberIDs(ctx, teamID)
	if err != nil {
		return Team{}, fmt.Errorf("list team members: %w", err)
	}
	if members == nil {
		members = []int64{}
	}
	return Team{
		ID:            row.ID,
		CircuitID:     row.CircuitID,
		Name:          row.Name,
		CaptainID:     int64Ptr(row.CaptainID),
		DynastyID:     int64Ptr(row.DynastyID),
		InviteCode:    row.InviteCode,
		MemberIDs:     members,
		IsActive:      row.SeasonIsActive,
		CanAddMembers: row.SeasonRostersOpen && int64(len(members)) < row.SeasonMaxTeamMembers,
	}, nil
}

func logDenial(logger zerolog.Logger, err error, msg string) {
	if _, ok := eligibility.AsDenial(err); ok || errors.Is(err, ErrPermissionDenied) {
		logger.Warn().Err(err).Msg(msg)
		return
	}
	if errors.Is(err, ErrTeamNotFound) || errors.Is(err, ErrCircuitNotFound) {
		logger.Debug().Err(err).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
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
