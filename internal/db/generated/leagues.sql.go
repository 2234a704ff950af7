package dbgen

import (
	"context"
	"database/sql"
)

const createLeague = `-- name: CreateLeague :execlastid
INSERT INTO leagues (name) VALUES (?)
`

func (q *Queries) CreateLeague(ctx context.Context, name string) (int64, error) {
	result, err := q.db.ExecContext(ctx, createLeague, name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const createSeason = `-- name: CreateSeason :execlastid
INSERT INTO seasons (
    league_id, name, is_active, registration_open, rosters_open, max_team_members
) VALUES (?, ?, ?, ?, ?, ?)
`

type CreateSeasonParams struct {
	LeagueID         int64  `json:"leagueId"`
	Name             string `json:"name"`
	IsActive         bool   `json:"isActive"`
	RegistrationOpen bool   `json:"registrationOpen"`
	RostersOpen      bool   `json:"rostersOpen"`
	MaxTeamMembers   int64  `json:"maxTeamMembers"`
}

func (q *Queries) CreateSeason(ctx context.Context, arg CreateSeasonParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createSeason,
		arg.LeagueID,
		arg.Name,
		arg.IsActive,
		arg.RegistrationOpen,
		arg.RostersOpen,
		arg.MaxTeamMembers,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getSeason = `-- name: GetSeason :one
SELECT id, league_id, name, is_active, registration_open, rosters_open,
       max_team_members, created_at, updated_at
FROM seasons
WHERE id = ?
`

func (q *Queries) GetSeason(ctx context.Context, id int64) (Season, error) {
	row := q.db.QueryRowContext(ctx, getSeason, id)
	var i Season
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.Name,
		&i.IsActive,
		&i.RegistrationOpen,
		&i.RostersOpen,
		&i.MaxTeamMembers,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateSeasonFlags = `-- name: UpdateSeasonFlags :exec
UPDATE seasons
SET is_active = ?,
    registration_open = ?,
    rosters_open = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateSeasonFlagsParams struct {
	IsActive         bool  `json:"isActive"`
	RegistrationOpen bool  `json:"registrationOpen"`
	RostersOpen      bool  `json:"rostersOpen"`
	ID               int64 `json:"id"`
}

func (q *Queries) UpdateSeasonFlags(ctx context.Context, arg UpdateSeasonFlagsParams) error {
	_, err := q.db.ExecContext(ctx, updateSeasonFlags,
		arg.IsActive,
		arg.RegistrationOpen,
		arg.RostersOpen,
		arg.ID,
	)
	return err
}

const createCircuit = `-- name: CreateCircuit :execlastid
INSERT INTO circuits (season_id, region, tier, name)
VALUES (?, ?, ?, ?)
`

type CreateCircuitParams struct {
	SeasonID int64          `json:"seasonId"`
	Region   string         `json:"region"`
	Tier     string         `json:"tier"`
	Name     sql.NullString `json:"name"`
}

func (q *Queries) CreateCircuit(ctx context.Context, arg CreateCircuitParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createCircuit,
		arg.SeasonID,
		arg.Region,
		arg.Tier,
		arg.Name,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getCircuit = `-- name: GetCircuit :one
SELECT id, season_id, region, tier, name
FROM circuits
WHERE id = ?
`

func (q *Queries) GetCircuit(ctx context.Context, id int64) (Circuit, error) {
	row := q.db.QueryRowContext(ctx, getCircuit, id)
	var i Circuit
	err := row.Scan(
		&i.ID,
		&i.SeasonID,
		&i.Region,
		&i.Tier,
		&i.Name,
	)
	return i, err
}

const getCircuitWithSeason = `-- name: GetCircuitWithSeason :one
SELECT c.id, c.season_id, c.region, c.tier, c.name,
       s.is_active, s.registration_open, s.rosters_open, s.max_team_members
FROM circuits c
JOIN seasons s ON s.id = c.season_id
WHERE c.id = ?
`

type GetCircuitWithSeasonRow struct {
	ID                     int64          `json:"id"`
	SeasonID               int64          `json:"seasonId"`
	Region                 string         `json:"region"`
	Tier                   string         `json:"tier"`
	Name                   sql.NullString `json:"name"`
	SeasonIsActive         bool           `json:"seasonIsActive"`
	SeasonRegistrationOpen bool           `json:"seasonRegistrationOpen"`
	SeasonRostersOpen      bool           `json:"seasonRostersOpen"`
	SeasonMaxTeamMembers   int64          `json:"seasonMaxTeamMembers"`
}

func (q *Queries) GetCircuitWithSeason(ctx context.Context, id int64) (GetCircuitWithSeasonRow, error) {
	row := q.db.QueryRowContext(ctx, getCircuitWithSeason, id)
	var i GetCircuitWithSeasonRow
	err := row.Scan(
		&i.ID,
		&i.SeasonID,
		&i.Region,
		&i.Tier,
		&i.Name,
		&i.SeasonIsActive,
		&i.SeasonRegistrationOpen,
		&i.SeasonRostersOpen,
		&i.SeasonMaxTeamMembers,
	)
	return i, err
}

const createRound = `-- name: CreateRound :execlastid
INSERT INTO rounds (season_id, round_number, name, bracket)
VALUES (?, ?, ?, ?)
`

type CreateRoundParams struct {
	SeasonID    int64          `json:"seasonId"`
	RoundNumber int64          `json:"roundNumber"`
	Name        sql.NullString `json:"name"`
	Bracket     sql.NullString `json:"bracket"`
}

func (q *Queries) CreateRound(ctx context.Context, arg CreateRoundParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createRound,
		arg.SeasonID,
		arg.RoundNumber,
		arg.Name,
		arg.Bracket,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getRoundByNumber = `-- name: GetRoundByNumber :one
SELECT id, season_id, round_number, name, bracket
FROM rounds
WHERE season_id = ?
  AND round_number = ?
  AND IFNULL(bracket, '') = IFNULL(?, '')
`

type GetRoundByNumberParams struct {
	SeasonID    int64          `json:"seasonId"`
	RoundNumber int64          `json:"roundNumber"`
	Bracket     sql.NullString `json:"bracket"`
}

func (q *Queries) GetRoundByNumber(ctx context.Context, arg GetRoundByNumberParams) (Round, error) {
	row := q.db.QueryRowContext(ctx, getRoundByNumber, arg.SeasonID, arg.RoundNumber, arg.Bracket)
	var i Round
	err := row.Scan(
		&i.ID,
		&i.SeasonID,
		&i.RoundNumber,
		&i.Name,
		&i.Bracket,
	)
	return i, err
}

const createDynasty = `-- name: CreateDynasty :execlastid
INSERT INTO dynasties (name) VALUES (?)
`

func (q *Queries) CreateDynasty(ctx context.Context, name string) (int64, error) {
	result, err := q.db.ExecContext(ctx, createDynasty, name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
