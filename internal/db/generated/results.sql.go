package dbgen

import (
	"context"
	"database/sql"
)

const createResult = `-- name: CreateResult :execlastid
INSERT INTO results (match_id, status, winner_id, loser_id, notes, source, created_by)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateResultParams struct {
	MatchID   int64          `json:"matchId"`
	Status    string         `json:"status"`
	WinnerID  int64          `json:"winnerId"`
	LoserID   int64          `json:"loserId"`
	Notes     sql.NullString `json:"notes"`
	Source    sql.NullString `json:"source"`
	CreatedBy sql.NullInt64  `json:"createdBy"`
}

func (q *Queries) CreateResult(ctx context.Context, arg CreateResultParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createResult,
		arg.MatchID,
		arg.Status,
		arg.WinnerID,
		arg.LoserID,
		arg.Notes,
		arg.Source,
		arg.CreatedBy,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getResult = `-- name: GetResult :one
SELECT id, match_id, status, winner_id, loser_id, notes, source, created_by, created_at
FROM results
WHERE id = ?
`

func (q *Queries) GetResult(ctx context.Context, id int64) (Result, error) {
	row := q.db.QueryRowContext(ctx, getResult, id)
	var i Result
	err := row.Scan(
		&i.ID,
		&i.MatchID,
		&i.Status,
		&i.WinnerID,
		&i.LoserID,
		&i.Notes,
		&i.Source,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createSet = `-- name: CreateSet :execlastid
INSERT INTO sets (result_id, number, winner_id, loser_id)
VALUES (?, ?, ?, ?)
`

type CreateSetParams struct {
	ResultID int64 `json:"resultId"`
	Number   int64 `json:"number"`
	WinnerID int64 `json:"winnerId"`
	LoserID  int64 `json:"loserId"`
}

func (q *Queries) CreateSet(ctx context.Context, arg CreateSetParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createSet,
		arg.ResultID,
		arg.Number,
		arg.WinnerID,
		arg.LoserID,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listSetsByResult = `-- name: ListSetsByResult :many
SELECT id, result_id, number, winner_id, loser_id
FROM sets
WHERE result_id = ?
ORDER BY number
`

func (q *Queries) ListSetsByResult(ctx context.Context, resultID int64) ([]Set, error) {
	rows, err := q.db.QueryContext(ctx, listSetsByResult, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Set
	for rows.Next() {
		var i Set
		if err := rows.Scan(
			&i.ID,
			&i.ResultID,
			&i.Number,
			&i.WinnerID,
			&i.LoserID,
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

const createSetLog = `-- name: CreateSetLog :execlastid
INSERT INTO set_logs (set_id, filename, body) VALUES (?, ?, ?)
`

type CreateSetLogParams struct {
	SetID    int64  `json:"setId"`
	Filename string `json:"filename"`
	Body     string `json:"body"`
}

func (q *Queries) CreateSetLog(ctx context.Context, arg CreateSetLogParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createSetLog, arg.SetID, arg.Filename, arg.Body)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const createGame = `-- name: CreateGame :execlastid
INSERT INTO games (set_id, number, map, win_condition, winner_id, loser_id, duration_seconds)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateGameParams struct {
	SetID           int64         `json:"setId"`
	Number          int64         `json:"number"`
	Map             string        `json:"map"`
	WinCondition    string        `json:"winCondition"`
	WinnerID        sql.NullInt64 `json:"winnerId"`
	LoserID         sql.NullInt64 `json:"loserId"`
	DurationSeconds sql.NullInt64 `json:"durationSeconds"`
}

func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createGame,
		arg.SetID,
		arg.Number,
		arg.Map,
		arg.WinCondition,
		arg.WinnerID,
		arg.LoserID,
		arg.DurationSeconds,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listGamesBySet = `-- name: ListGamesBySet :many
SELECT id, set_id, number, map, win_condition, winner_id, loser_id, duration_seconds
FROM games
WHERE set_id = ?
ORDER BY number
`

func (q *Queries) ListGamesBySet(ctx context.Context, setID int64) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listGamesBySet, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Game
	for rows.Next() {
		var i Game
		if err := rows.Scan(
			&i.ID,
			&i.SetID,
			&i.Number,
			&i.Map,
			&i.WinCondition,
			&i.WinnerID,
			&i.LoserID,
			&i.DurationSeconds,
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

const createPlayerMapping = `-- name: CreatePlayerMapping :exec
INSERT INTO player_mappings (result_id, nickname, player_id) VALUES (?, ?, ?)
`

type CreatePlayerMappingParams struct {
	ResultID int64  `json:"resultId"`
	Nickname string `json:"nickname"`
	PlayerID int64  `json:"playerId"`
}

func (q *Queries) CreatePlayerMapping(ctx context.Context, arg CreatePlayerMappingParams) error {
	_, err := q.db.ExecContext(ctx, createPlayerMapping, arg.ResultID, arg.Nickname, arg.PlayerID)
	return err
}

const listPlayerMappings = `-- name: ListPlayerMappings :many
SELECT id, result_id, nickname, player_id
FROM player_mappings
WHERE result_id = ?
ORDER BY id
`

func (q *Queries) ListPlayerMappings(ctx context.Context, resultID int64) ([]PlayerMapping, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerMappings, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayerMapping
	for rows.Next() {
		var i PlayerMapping
		if err := rows.Scan(&i.ID, &i.ResultID, &i.Nickname, &i.PlayerID); err != nil {
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

const createTeamMapping = `-- name: CreateTeamMapping :exec
INSERT INTO team_mappings (result_id, color, team_id) VALUES (?, ?, ?)
`

type CreateTeamMappingParams struct {
	ResultID int64  `json:"resultId"`
	Color    string `json:"color"`
	TeamID   int64  `json:"teamId"`
}

func (q *Queries) CreateTeamMapping(ctx context.Context, arg CreateTeamMappingParams) error {
	_, err := q.db.ExecContext(ctx, createTeamMapping, arg.ResultID, arg.Color, arg.TeamID)
	return err
}

const listTeamMappings = `-- name: ListTeamMappings :many
SELECT id, result_id, color, team_id
FROM team_mappings
WHERE result_id = ?
ORDER BY id
`

func (q *Queries) ListTeamMappings(ctx context.Context, resultID int64) ([]TeamMapping, error) {
	rows, err := q.db.QueryContext(ctx, listTeamMappings, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TeamMapping
	for rows.Next() {
		var i TeamMapping
		if err := rows.Scan(&i.ID, &i.ResultID, &i.Color, &i.TeamID); err != nil {
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

const listCircuitResults = `-- name: ListCircuitResults :many
SELECT r.id, r.match_id, r.status, r.winner_id, r.loser_id
FROM results r
JOIN matches m ON m.id = r.match_id
WHERE m.circuit_id = ?
ORDER BY r.id
`

type ListCircuitResultsRow struct {
	ID       int64  `json:"id"`
	MatchID  int64  `json:"matchId"`
	Status   string `json:"status"`
	WinnerID int64  `json:"winnerId"`
	LoserID  int64  `json:"loserId"`
}

func (q *Queries) ListCircuitResults(ctx context.Context, circuitID int64) ([]ListCircuitResultsRow, error) {
	rows, err := q.db.QueryContext(ctx, listCircuitResults, circuitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCircuitResultsRow
	for rows.Next() {
		var i ListCircuitResultsRow
		if err := rows.Scan(
			&i.ID,
			&i.MatchID,
			&i.Status,
			&i.WinnerID,
			&i.LoserID,
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

const listCircuitSets = `-- name: ListCircuitSets :many
SELECT st.result_id, st.winner_id, st.loser_id
FROM sets st
JOIN results r ON r.id = st.result_id
JOIN matches m ON m.id = r.match_id
WHERE m.circuit_id = ?
ORDER BY st.result_id, st.number
`

type ListCircuitSetsRow struct {
	ResultID int64 `json:"resultId"`
	WinnerID int64 `json:"winnerId"`
	LoserID  int64 `json:"loserId"`
}

func (q *Queries) ListCircuitSets(ctx context.Context, circuitID int64) ([]ListCircuitSetsRow, error) {
	rows, err := q.db.QueryContext(ctx, listCircuitSets, circuitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCircuitSetsRow
	for rows.Next() {
		var i ListCircuitSetsRow
		if err := rows.Scan(&i.ResultID, &i.WinnerID, &i.LoserID); err != nil {
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
