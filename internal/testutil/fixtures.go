package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/invitecode"
)

var fixtureSeq atomic.Int64

func nextName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, fixtureSeq.Add(1))
}

// fixtureInviteCode returns a well-formed code that generated codes are
// unlikely to collide with.
func fixtureInviteCode() string {
	n := fixtureSeq.Add(1)
	base := int64(len(invitecode.Alphabet))
	code := []byte("T" + strings.Repeat("A", invitecode.Length-1))
	for i := len(code) - 1; i > 0; i-- {
		code[i] = invitecode.Alphabet[n%base]
		n /= base
	}
	return string(code)
}

// SeasonOptions describes the season flags a fixture season is created with.
type SeasonOptions struct {
	IsActive         bool
	RegistrationOpen bool
	RostersOpen      bool
	MaxTeamMembers   int64
}

// OpenSeason is active with registration and rosters open.
func OpenSeason() SeasonOptions {
	return SeasonOptions{IsActive: true, RegistrationOpen: true, RostersOpen: true, MaxTeamMembers: 6}
}

// CreateSeason inserts a league and a season under it.
func CreateSeason(t *testing.T, database *db.DB, opts SeasonOptions) int64 {
	t.Helper()
	ctx := context.Background()

	leagueID, err := database.Queries.CreateLeague(ctx, nextName("league"))
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	if opts.MaxTeamMembers == 0 {
		opts.MaxTeamMembers = 6
	}
	seasonID, err := database.Queries.CreateSeason(ctx, dbgen.CreateSeasonParams{
		LeagueID:         leagueID,
		Name:             nextName("season"),
		IsActive:         opts.IsActive,
		RegistrationOpen: opts.RegistrationOpen,
		RostersOpen:      opts.RostersOpen,
		MaxTeamMembers:   opts.MaxTeamMembers,
	})
	if err != nil {
		t.Fatalf("create season: %v", err)
	}
	return seasonID
}

// CreateCircuit inserts a tier 1 circuit in region.
func CreateCircuit(t *testing.T, database *db.DB, seasonID int64, region string) int64 {
	t.Helper()

	circuitID, err := database.Queries.CreateCircuit(context.Background(), dbgen.CreateCircuitParams{
		SeasonID: seasonID,
		Region:   region,
		Tier:     "1",
		Name:     sql.NullString{String: nextName("circuit"), Valid: true},
	})
	if err != nil {
		t.Fatalf("create circuit: %v", err)
	}
	return circuitID
}

// Player is a fixture player and the identity that acts as them.
type Player struct {
	ID        int64
	AccountID int64
	Name      string
}

func (p Player) Identity() eligibility.Identity {
	id := p.ID
	return eligibility.Identity{AccountID: p.AccountID, Authenticated: true, PlayerID: &id}
}

// CreatePlayer inserts an account and a player linked to it.
func CreatePlayer(t *testing.T, database *db.DB) Player {
	t.Helper()
	ctx := context.Background()

	name := nextName("player")
	accountID, err := database.Queries.CreateAccount(ctx, dbgen.CreateAccountParams{
		Username:     name,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	playerID, err := database.Queries.CreatePlayer(ctx, dbgen.CreatePlayerParams{
		Name:            name,
		DiscordUsername: name + "#0001",
		AccountID:       sql.NullInt64{Int64: accountID, Valid: true},
	})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	return Player{ID: playerID, AccountID: accountID, Name: name}
}

// ServiceIdentity creates a service account and returns its identity.
func ServiceIdentity(t *testing.T, database *db.DB) eligibility.Identity {
	t.Helper()

	accountID, err := database.Queries.CreateAccount(context.Background(), dbgen.CreateAccountParams{
		Username:     nextName("service"),
		PasswordHash: "x",
		IsService:    true,
	})
	if err != nil {
		t.Fatalf("create service account: %v", err)
	}
	return eligibility.Identity{AccountID: accountID, Authenticated: true, IsService: true}
}

// CreateTeam inserts a team captained by captainID, who is also its first member.
func CreateTeam(t *testing.T, database *db.DB, circuitID, captainID int64) dbgen.Team {
	t.Helper()
	ctx := context.Background()

	code := fixtureInviteCode()
	teamID, err := database.Queries.CreateTeam(ctx, dbgen.CreateTeamParams{
		CircuitID:  circuitID,
		Name:       nextName("team"),
		CaptainID:  sql.NullInt64{Int64: captainID, Valid: true},
		InviteCode: code,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := database.Queries.AddTeamMember(ctx, dbgen.AddTeamMemberParams{TeamID: teamID, PlayerID: captainID}); err != nil {
		t.Fatalf("add captain to team: %v", err)
	}
	team, err := database.Queries.GetTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	return team
}

// AddMember adds playerID to the team roster.
func AddMember(t *testing.T, database *db.DB, teamID, playerID int64) {
	t.Helper()

	if err := database.Queries.AddTeamMember(context.Background(), dbgen.AddTeamMemberParams{TeamID: teamID, PlayerID: playerID}); err != nil {
		t.Fatalf("add team member: %v", err)
	}
}

// CreateMatch inserts a match. A zero awayID creates a bye.
func CreateMatch(t *testing.T, database *db.DB, circuitID, homeID, awayID int64, start *time.Time) int64 {
	t.Helper()

	params := dbgen.CreateMatchParams{
		HomeID:    homeID,
		CircuitID: circuitID,
	}
	if awayID != 0 {
		params.AwayID = sql.NullInt64{Int64: awayID, Valid: true}
	}
	if start != nil {
		params.StartTime = sql.NullTime{Time: start.UTC(), Valid: true}
	}
	matchID, err := database.Queries.CreateMatch(context.Background(), params)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return matchID
}

// CreateCaster registers playerID as a caster.
func CreateCaster(t *testing.T, database *db.DB, playerID int64) int64 {
	t.Helper()

	casterID, err := database.Queries.CreateCaster(context.Background(), dbgen.CreateCasterParams{PlayerID: playerID})
	if err != nil {
		t.Fatalf("create caster: %v", err)
	}
	return casterID
}

// League is a season with one circuit and two captained teams in it.
type League struct {
	SeasonID    int64
	CircuitID   int64
	HomeCaptain Player
	AwayCaptain Player
	Home        dbgen.Team
	Away        dbgen.Team
}

// CreateLeague builds a West circuit in a season with the given options and
// two teams ready to play each other.
func CreateLeague(t *testing.T, database *db.DB, opts SeasonOptions) League {
	t.Helper()

	seasonID := CreateSeason(t, database, opts)
	circuitID := CreateCircuit(t, database, seasonID, "W")
	homeCaptain := CreatePlayer(t, database)
	awayCaptain := CreatePlayer(t, database)
	return League{
		SeasonID:    seasonID,
		CircuitID:   circuitID,
		HomeCaptain: homeCaptain,
		AwayCaptain: awayCaptain,
		Home:        CreateTeam(t, database, circuitID, homeCaptain.ID),
		Away:        CreateTeam(t, database, circuitID, awayCaptain.ID),
	}
}
