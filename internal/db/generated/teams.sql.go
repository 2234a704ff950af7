package dbgen

import (
	"context"
	"database/sql"
)

const createTeam = `-- name: CreateTeam :execlastid
INSERT INTO teams (circuit_id, name, captain_id, dynasty_id, invite_code)
VALUES (?, ?, ?, ?, ?)
`

type CreateTeamParams struct {
	CircuitID  int64         `json:"circuitId"`
	Name       string        `json:"name"`
	CaptainID  sql.NullInt64 `json:"captainId"`
	DynastyID  sql.NullInt64 `json:"dynastyId"`
	InviteCode string        `json:"inviteCode"`
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createTeam,
		arg.CircuitID,
		arg.Name,
		arg.CaptainID,
		arg.DynastyID,
		arg.InviteCode,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getTeam = `-- name: GetTeam :one
SELECT id, circuit_id, name, captain_id, dynasty_id, invite_code, created_at, updated_at
FROM teams
WHERE id = ?
`

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	var i Team
	err := row.Scan(
		&i.ID,
		&i.CircuitID,
		&i.Name,
		&i.CaptainID,
		&i.DynastyID,
		&i.InviteCode,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTeamContext = `-- name: GetTeamContext :one
SELECT t.id, t.circuit_id, t.name, t.captain_id, t.dynasty_id, t.invite_code,
       c.region, c.season_id,
       s.is_active, s.registration_open, s.rosters_open, s.max_team_members
FROM teams t
JOIN circuits c ON c.id = t.circuit_id
JOIN seasons s ON s.id = c.season_id
WHERE t.id = ?
`

type GetTeamContextRow struct {
	ID                     int64         `json:"id"`
	CircuitID              int64         `json:"circuitId"`
	Name                   string        `json:"name"`
	CaptainID              sql.NullInt64 `json:"captainId"`
	DynastyID              sql.NullInt64 `json:"dynastyId"`
	InviteCode             string        `json:"-"`
	Region                 string        `json:"region"`
	SeasonID               int64         `json:"seasonId"`
	SeasonIsActive         bool          `json:"seasonIsActive"`
	SeasonRegistrationOpen bool          `json:"seasonRegistrationOpen"`
	SeasonRostersOpen      bool          `json:"seasonRostersOpen"`
	SeasonMaxTeamMembers   int64         `json:"seasonMaxTeamMembers"`
}

func (q *Queries) GetTeamContext(ctx context.Context, id int64) (GetTeamContextRow, error) {
	row := q.db.QueryRowContext(ctx, getTeamContext, id)
	var i GetTeamContextRow
	err := row.Scan(
		&i.ID,
		&i.CircuitID,
		&i.Name,
		&i.CaptainID,
		&i.DynastyID,
		&i.InviteCode,
		&i.Region,
		&i.SeasonID,
		&i.SeasonIsActive,
		&i.SeasonRegistrationOpen,
		&i.SeasonRostersOpen,
		&i.SeasonMaxTeamMembers,
	)
	return i, err
}

const updateTeamName = `-- name: UpdateTeamName :execrows
UPDATE teams
SET name = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateTeamNameParams struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

func (q *Queries) UpdateTeamName(ctx context.Context, arg UpdateTeamNameParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTeamName, arg.Name, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateTeamInviteCode = `-- name: UpdateTeamInviteCode :execrows
UPDATE teams
SET invite_code = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateTeamInviteCodeParams struct {
	InviteCode string `json:"inviteCode"`
	ID         int64  `json:"id"`
}

func (q *Queries) UpdateTeamInviteCode(ctx context.Context, arg UpdateTeamInviteCodeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTeamInviteCode, arg.InviteCode, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const addTeamMember = `-- name: AddTeamMember :exec
INSERT INTO team_members (team_id, player_id) VALUES (?, ?)
`

type AddTeamMemberParams struct {
	TeamID   int64 `json:"teamId"`
	PlayerID int64 `json:"playerId"`
}

func (q *Queries) AddTeamMember(ctx context.Context, arg AddTeamMemberParams) error {
	_, err := q.db.ExecContext(ctx, addTeamMember, arg.TeamID, arg.PlayerID)
	return err
}

const listTeamMemberIDs = `-- name: ListTeamMemberIDs :many
SELECT player_id
FROM team_members
WHERE team_id = ?
ORDER BY joined_at, player_id
`

func (q *Queries) ListTeamMemberIDs(ctx context.Context, teamID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listTeamMemberIDs, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var playerID int64
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		items = append(items, playerID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPlayerTeamsInSeason = `-- name: ListPlayerTeamsInSeason :many
SELECT DISTINCT t.id, t.circuit_id, c.region
FROM teams t
JOIN circuits c ON c.id = t.circuit_id
LEFT JOIN team_members tm ON tm.team_id = t.id AND tm.player_id = ?1
WHERE c.season_id = ?2
  AND (t.captain_id = ?1 OR tm.player_id IS NOT NULL)
ORDER BY t.id
`

type ListPlayerTeamsInSeasonParams struct {
	PlayerID int64 `json:"playerId"`
	SeasonID int64 `json:"seasonId"`
}

type ListPlayerTeamsInSeasonRow struct {
	ID        int64  `json:"id"`
	CircuitID int64  `json:"circuitId"`
	Region    string `json:"region"`
}

func (q *Queries) ListPlayerTeamsInSeason(ctx context.Context, arg ListPlayerTeamsInSeasonParams) ([]ListPlayerTeamsInSeasonRow, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerTeamsInSeason, arg.PlayerID, arg.SeasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPlayerTeamsInSeasonRow
	for rows.Next() {
		var i ListPlayerTeamsInSeasonRow
		if err := rows.Scan(&i.ID, &i.CircuitID, &i.Region); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTeamsByCircuit = `-- name: ListTeamsByCircuit :many
SELECT id, circuit_id, name, captain_id, dynasty_id, invite_code, created_at, updated_at
FROM teams
WHERE circuit_id = ?
ORDER BY id
`

func (q *Queries) ListTeamsByCircuit(ctx context.Context, circuitID int64) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listTeamsByCircuit, circuitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Team
	for rows.Next() {
		var i Team
		if err := rows.Scan(
			&i.ID,
			&i.CircuitID,
			&i.Name,
			&i.CaptainID,
			&i.DynastyID,
			&i.InviteCode,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
