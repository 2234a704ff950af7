package dbgen

import (
	"context"
	"time"
)

const upsertLiveStream = `-- name: UpsertLiveStream :one
INSERT INTO streams (name, username, service, start_time, is_live)
VALUES (?, ?, ?, ?, 1)
ON CONFLICT (service, username) DO UPDATE
SET name = excluded.name,
    start_time = CASE WHEN streams.is_live = 1 THEN streams.start_time ELSE excluded.start_time END,
    is_live = 1
RETURNING id, name, username, service, start_time, is_live
`

type UpsertLiveStreamParams struct {
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Service   string    `json:"service"`
	StartTime time.Time `json:"startTime"`
}

func (q *Queries) UpsertLiveStream(ctx context.Context, arg UpsertLiveStreamParams) (Stream, error) {
	row := q.db.QueryRowContext(ctx, upsertLiveStream,
		arg.Name,
		arg.Username,
		arg.Service,
		arg.StartTime,
	)
	var i Stream
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Username,
		&i.Service,
		&i.StartTime,
		&i.IsLive,
	)
	return i, err
}

const endStream = `-- name: EndStream :one
UPDATE streams
SET is_live = 0
WHERE id = ?
RETURNING id, name, username, service, start_time, is_live
`

func (q *Queries) EndStream(ctx context.Context, id int64) (Stream, error) {
	row := q.db.QueryRowContext(ctx, endStream, id)
	var i Stream
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Username,
		&i.Service,
		&i.StartTime,
		&i.IsLive,
	)
	return i, err
}

const expireStaleStreams = `-- name: ExpireStaleStreams :execrows
UPDATE streams
SET is_live = 0
WHERE is_live = 1
  AND start_time < ?
`

func (q *Queries) ExpireStaleStreams(ctx context.Context, startedBefore time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, expireStaleStreams, startedBefore)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listStreams = `-- name: ListStreams :many
SELECT id, name, username, service, start_time, is_live
FROM streams
WHERE (? = 0 OR is_live = 1)
  AND (? = '' OR username LIKE '%' || ? || '%')
ORDER BY start_time DESC, id
`

type ListStreamsParams struct {
	LiveOnly bool   `json:"liveOnly"`
	Username string `json:"username"`
}

func (q *Queries) ListStreams(ctx context.Context, arg ListStreamsParams) ([]Stream, error) {
	rows, err := q.db.QueryContext(ctx, listStreams, arg.LiveOnly, arg.Username, arg.Username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Stream
	for rows.Next() {
		var i Stream
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Username,
			&i.Service,
			&i.StartTime,
			&i.IsLive,
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
