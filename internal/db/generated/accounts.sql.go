package dbgen

import (
	"context"
	"database/sql"
)

const createAccount = `-- name: CreateAccount :execlastid
INSERT INTO accounts (username, password_hash, is_service)
VALUES (?, ?, ?)
`

type CreateAccountParams struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	IsService    bool   `json:"isService"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createAccount, arg.Username, arg.PasswordHash, arg.IsService)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getAccount = `-- name: GetAccount :one
SELECT id, username, password_hash, is_service, created_at
FROM accounts
WHERE id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.IsService,
		&i.CreatedAt,
	)
	return i, err
}

const getAccountByUsername = `-- name: GetAccountByUsername :one
SELECT id, username, password_hash, is_service, created_at
FROM accounts
WHERE username = ?
`

func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountByUsername, username)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.IsService,
		&i.CreatedAt,
	)
	return i, err
}

const createPlayer = `-- name: CreatePlayer :execlastid
INSERT INTO players (name, discord_username, twitch_username, account_id)
VALUES (?, ?, ?, ?)
`

type CreatePlayerParams struct {
	Name            string         `json:"name"`
	DiscordUsername string         `json:"discordUsername"`
	TwitchUsername  sql.NullString `json:"twitchUsername"`
	AccountID       sql.NullInt64  `json:"accountId"`
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createPlayer,
		arg.Name,
		arg.DiscordUsername,
		arg.TwitchUsername,
		arg.AccountID,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getPlayer = `-- name: GetPlayer :one
SELECT id, name, discord_username, twitch_username, account_id, created_at, updated_at
FROM players
WHERE id = ?
`

func (q *Queries) GetPlayer(ctx context.Context, id int64) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.DiscordUsername,
		&i.TwitchUsername,
		&i.AccountID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPlayerByAccountID = `-- name: GetPlayerByAccountID :one
SELECT id, name, discord_username, twitch_username, account_id, created_at, updated_at
FROM players
WHERE account_id = ?
`

func (q *Queries) GetPlayerByAccountID(ctx context.Context, accountID sql.NullInt64) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerByAccountID, accountID)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.DiscordUsername,
		&i.TwitchUsername,
		&i.AccountID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updatePlayerHandles = `-- name: UpdatePlayerHandles :execrows
UPDATE players
SET discord_username = ?,
    twitch_username = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdatePlayerHandlesParams struct {
	DiscordUsername string         `json:"discordUsername"`
	TwitchUsername  sql.NullString `json:"twitchUsername"`
	ID              int64          `json:"id"`
}

func (q *Queries) UpdatePlayerHandles(ctx context.Context, arg UpdatePlayerHandlesParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePlayerHandles, arg.DiscordUsername, arg.TwitchUsername, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
