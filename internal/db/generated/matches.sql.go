package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const createMatch = `-- name: CreateMatch :execlastid
INSERT INTO matches (home_id, away_id, circuit_id, round_id, start_time)
VALUES (?, ?, ?, ?, ?)
`

type CreateMatchParams struct {
	HomeID    int64         `json:"homeId"`
	AwayID    sql.NullInt64 `json:"awayId"`
	CircuitID int64         `json:"circuitId"`
	RoundID   sql.NullInt64 `json:"roundId"`
	StartTime sql.NullTime  `json:"startTime"`
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createMatch,
		arg.HomeID,
		arg.AwayID,
		arg.CircuitID,
		arg.RoundID,
		arg.StartTime,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getMatch = `-- name: GetMatch :one
SELECT id, home_id, away_id, circuit_id, round_id, start_time, primary_caster_id,
       vod_link, created_at, updated_at
FROM matches
WHERE id = ?
`

func (q *Queries) GetMatch(ctx context.Context, id int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, id)
	var i Match
	err := row.Scan(
		&i.ID,
		&i.HomeID,
		&i.AwayID,
		&i.CircuitID,
		&i.RoundID,
		&i.StartTime,
		&i.PrimaryCasterID,
		&i.VodLink,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getMatchContext = `-- name: GetMatchContext :one
SELECT m.id, m.home_id, m.away_id, m.circuit_id,
       home.captain_id AS home_captain_id,
       away.captain_id AS away_captain_id,
       c.season_id, s.is_active,
       EXISTS (SELECT 1 FROM results r WHERE r.match_id = m.id) AS has_result
FROM matches m
JOIN teams home ON home.id = m.home_id
LEFT JOIN teams away ON away.id = m.away_id
JOIN circuits c ON c.id = m.circuit_id
JOIN seasons s ON s.id = c.season_id
WHERE m.id = ?
`

type GetMatchContextRow struct {
	ID             int64         `json:"id"`
	HomeID         int64         `json:"homeId"`
	AwayID         sql.NullInt64 `json:"awayId"`
	CircuitID      int64         `json:"circuitId"`
	HomeCaptainID  sql.NullInt64 `json:"homeCaptainId"`
	AwayCaptainID  sql.NullInt64 `json:"awayCaptainId"`
	SeasonID       int64         `json:"seasonId"`
	SeasonIsActive bool          `json:"seasonIsActive"`
	HasResult      bool          `json:"hasResult"`
}

func (q *Queries) GetMatchContext(ctx context.Context, id int64) (GetMatchContextRow, error) {
	row := q.db.QueryRowContext(ctx, getMatchContext, id)
	var i GetMatchContextRow
	err := row.Scan(
		&i.ID,
		&i.HomeID,
		&i.AwayID,
		&i.CircuitID,
		&i.HomeCaptainID,
		&i.AwayCaptainID,
		&i.SeasonID,
		&i.SeasonIsActive,
		&i.HasResult,
	)
	return i, err
}

const updateMatchSchedule = `-- name: UpdateMatchSchedule :execrows
UPDATE matches
SET start_time = ?,
    primary_caster_id = ?,
    updated_at = ?
WHERE id = ?
`

type UpdateMatchScheduleParams struct {
	StartTime       sql.NullTime  `json:"startTime"`
	PrimaryCasterID sql.NullInt64 `json:"primaryCasterId"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	ID              int64         `json:"id"`
}

func (q *Queries) UpdateMatchSchedule(ctx context.Context, arg UpdateMatchScheduleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateMatchSchedule,
		arg.StartTime,
		arg.PrimaryCasterID,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listMatchesStartingBetween = `-- name: ListMatchesStartingBetween :many
SELECT id, home_id, away_id, circuit_id, round_id, start_time, primary_caster_id,
       vod_link, created_at, updated_at
FROM matches
WHERE start_time IS NOT NULL
  AND start_time >= ?
  AND start_time <= ?
ORDER BY start_time, id
`

type ListMatchesStartingBetweenParams struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (q *Queries) ListMatchesStartingBetween(ctx context.Context, arg ListMatchesStartingBetweenParams) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesStartingBetween, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

const listMatchesByCircuit = `-- name: ListMatchesByCircuit :many
SELECT id, home_id, away_id, circuit_id, round_id, start_time, primary_caster_id,
       vod_link, created_at, updated_at
FROM matches
WHERE circuit_id = ?
ORDER BY id
`

func (q *Queries) ListMatchesByCircuit(ctx context.Context, circuitID int64) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesByCircuit, circuitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]Match, error) {
	var items []Match
	for rows.Next() {
		var i Match
		if err := rows.Scan(
			&i.ID,
			&i.HomeID,
			&i.AwayID,
			&i.CircuitID,
			&i.RoundID,
			&i.StartTime,
			&i.PrimaryCasterID,
			&i.VodLink,
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

const createCaster = `-- name: CreateCaster :execlastid
INSERT INTO casters (player_id, bio_link) VALUES (?, ?)
`

type CreateCasterParams struct {
	PlayerID int64          `json:"playerId"`
	BioLink  sql.NullString `json:"bioLink"`
}

func (q *Queries) CreateCaster(ctx context.Context, arg CreateCasterParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createCaster, arg.PlayerID, arg.BioLink)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getCaster = `-- name: GetCaster :one
SELECT id, player_id, bio_link FROM casters WHERE id = ?
`

func (q *Queries) GetCaster(ctx context.Context, id int64) (Caster, error) {
	row := q.db.QueryRowContext(ctx, getCaster, id)
	var i Caster
	err := row.Scan(&i.ID, &i.PlayerID, &i.BioLink)
	return i, err
}

const deleteMatchSecondaryCasters = `-- name: DeleteMatchSecondaryCasters :exec
DELETE FROM match_secondary_casters WHERE match_id = ?
`

func (q *Queries) DeleteMatchSecondaryCasters(ctx context.Context, matchID int64) error {
	_, err := q.db.ExecContext(ctx, deleteMatchSecondaryCasters, matchID)
	return err
}

const addMatchSecondaryCaster = `-- name: AddMatchSecondaryCaster :exec
INSERT INTO match_secondary_casters (match_id, caster_id) VALUES (?, ?)
`

type AddMatchSecondaryCasterParams struct {
	MatchID  int64 `json:"matchId"`
	CasterID int64 `json:"casterId"`
}

func (q *Queries) AddMatchSecondaryCaster(ctx context.Context, arg AddMatchSecondaryCasterParams) error {
	_, err := q.db.ExecContext(ctx, addMatchSecondaryCaster, arg.MatchID, arg.CasterID)
	return err
}

const listMatchSecondaryCasterIDs = `-- name: ListMatchSecondaryCasterIDs :many
SELECT caster_id FROM match_secondary_casters WHERE match_id = ? ORDER BY caster_id
`

func (q *Queries) ListMatchSecondaryCasterIDs(ctx context.Context, matchID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listMatchSecondaryCasterIDs, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var casterID int64
		if err := rows.Scan(&casterID); err != nil {
			return nil, err
		}
		items = append(items, casterID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
