package dbgen

import (
	"context"
	"database/sql"
	"time"
)

type Querier interface {
	AddMatchSecondaryCaster(ctx context.Context, arg AddMatchSecondaryCasterParams) error
	AddTeamMember(ctx context.Context, arg AddTeamMemberParams) error
	CreateAccount(ctx context.Context, arg CreateAccountParams) (int64, error)
	CreateCaster(ctx context.Context, arg CreateCasterParams) (int64, error)
	CreateCircuit(ctx context.Context, arg CreateCircuitParams) (int64, error)
	CreateDynasty(ctx context.Context, name string) (int64, error)
	CreateGame(ctx context.Context, arg CreateGameParams) (int64, error)
	CreateLeague(ctx context.Context, name string) (int64, error)
	CreateMatch(ctx context.Context, arg CreateMatchParams) (int64, error)
	CreatePlayer(ctx context.Context, arg CreatePlayerParams) (int64, error)
	CreatePlayerMapping(ctx context.Context, arg CreatePlayerMappingParams) error
	CreateResult(ctx context.Context, arg CreateResultParams) (int64, error)
	CreateRound(ctx context.Context, arg CreateRoundParams) (int64, error)
	CreateSeason(ctx context.Context, arg CreateSeasonParams) (int64, error)
	CreateSet(ctx context.Context, arg CreateSetParams) (int64, error)
	CreateSetLog(ctx context.Context, arg CreateSetLogParams) (int64, error)
	CreateTeam(ctx context.Context, arg CreateTeamParams) (int64, error)
	CreateTeamMapping(ctx context.Context, arg CreateTeamMappingParams) error
	DeleteMatchSecondaryCasters(ctx context.Context, matchID int64) error
	EndStream(ctx context.Context, id int64) (Stream, error)
	ExpireStaleStreams(ctx context.Context, startedBefore time.Time) (int64, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	GetAccountByUsername(ctx context.Context, username string) (Account, error)
	GetCaster(ctx context.Context, id int64) (Caster, error)
	GetCircuit(ctx context.Context, id int64) (Circuit, error)
	GetCircuitWithSeason(ctx context.Context, id int64) (GetCircuitWithSeasonRow, error)
	GetMatch(ctx context.Context, id int64) (Match, error)
	GetMatchContext(ctx context.Context, id int64) (GetMatchContextRow, error)
	GetPlayer(ctx context.Context, id int64) (Player, error)
	GetPlayerByAccountID(ctx context.Context, accountID sql.NullInt64) (Player, error)
	GetResult(ctx context.Context, id int64) (Result, error)
	GetRoundByNumber(ctx context.Context, arg GetRoundByNumberParams) (Round, error)
	GetSeason(ctx context.Context, id int64) (Season, error)
	GetTeam(ctx context.Context, id int64) (Team, error)
	GetTeamContext(ctx context.Context, id int64) (GetTeamContextRow, error)
	ListCircuitResults(ctx context.Context, circuitID int64) ([]ListCircuitResultsRow, error)
	ListCircuitSets(ctx context.Context, circuitID int64) ([]ListCircuitSetsRow, error)
	ListGamesBySet(ctx context.Context, setID int64) ([]Game, error)
	ListMatchSecondaryCasterIDs(ctx context.Context, matchID int64) ([]int64, error)
	ListMatchesByCircuit(ctx context.Context, circuitID int64) ([]Match, error)
	ListMatchesStartingBetween(ctx context.Context, arg ListMatchesStartingBetweenParams) ([]Match, error)
	ListPlayerMappings(ctx context.Context, resultID int64) ([]PlayerMapping, error)
	ListPlayerTeamsInSeason(ctx context.Context, arg ListPlayerTeamsInSeasonParams) ([]ListPlayerTeamsInSeasonRow, error)
	ListSetsByResult(ctx context.Context, resultID int64) ([]Set, error)
	ListStreams(ctx context.Context, arg ListStreamsParams) ([]Stream, error)
	ListTeamMappings(ctx context.Context, resultID int64) ([]TeamMapping, error)
	ListTeamMemberIDs(ctx context.Context, teamID int64) ([]int64, error)
	ListTeamsByCircuit(ctx context.Context, circuitID int64) ([]Team, error)
	UpdateMatchSchedule(ctx context.Context, arg UpdateMatchScheduleParams) (int64, error)
	UpdatePlayerHandles(ctx context.Context, arg UpdatePlayerHandlesParams) (int64, error)
	UpdateSeasonFlags(ctx context.Context, arg UpdateSeasonFlagsParams) error
	UpdateTeamInviteCode(ctx context.Context, arg UpdateTeamInviteCodeParams) (int64, error)
	UpdateTeamName(ctx context.Context, arg UpdateTeamNameParams) (int64, error)
	UpsertLiveStream(ctx context.Context, arg UpsertLiveStreamParams) (Stream, error)
}

var _ Querier = (*Queries)(nil)
