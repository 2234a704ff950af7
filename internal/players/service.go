// Package players serves player profiles and lets a player edit their own
// contact handles.
package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

const maxHandleLength = 255

var ErrPlayerNotFound = errors.New("player not found")

const ReasonDiscordRequired = "Validation Error: Discord username cannot be blank."

type Player struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DiscordUsername string    `json:"discordUsername"`
	TwitchUsername  *string   `json:"twitchUsername"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Service struct {
	db *db.DB
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("player service requires a database")
	}
	return &Service{db: database}, nil
}

func (s *Service) Get(ctx context.Context, playerID int64) (Player, error) {
	row, err := s.db.Queries.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, ErrPlayerNotFound
		}
		return Player{}, fmt.Errorf("load player: %w", err)
	}
	return toPlayer(row), nil
}

// HandleUpdate holds the handles to change. A nil field is left as is; an
// empty TwitchUsername clears it.
type HandleUpdate struct {
	DiscordUsername *string
	TwitchUsername  *string
}

// UpdateHandles changes the player's Discord and Twitch handles. The name
// and account link are not editable here.
func (s *Service) UpdateHandles(ctx context.Context, id eligibility.Identity, playerID int64, update HandleUpdate) (Player, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "player_service").
		Int64("player_id", playerID).
		Logger()

	if err := eligibility.CanEditPlayer(id, playerID); err != nil {
		logger.Warn().Err(err).Msg("Player edit refused")
		return Player{}, err
	}

	var updated Player
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		row, err := txdb.Queries.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("load player: %w", err)
		}

		params := dbgen.UpdatePlayerHandlesParams{
			ID:              row.ID,
			DiscordUsername: row.DiscordUsername,
			TwitchUsername:  row.TwitchUsername,
		}
		if update.DiscordUsername != nil {
			discord := strings.TrimSpace(*update.DiscordUsername)
			if discord == "" {
				return eligibility.Invalid(ReasonDiscordRequired)
			}
			if err := checkHandleLength(discord, "Discord"); err != nil {
				return err
			}
			params.DiscordUsername = discord
		}
		if update.TwitchUsername != nil {
			twitch := strings.TrimSpace(*update.TwitchUsername)
			if err := checkHandleLength(twitch, "Twitch"); err != nil {
				return err
			}
			params.TwitchUsername = sql.NullString{String: twitch, Valid: twitch != ""}
		}

		if _, err := txdb.Queries.UpdatePlayerHandles(ctx, params); err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		row, err = txdb.Queries.GetPlayer(ctx, playerID)
		if err != nil {
			return fmt.Errorf("reload player: %w", err)
		}
		updated = toPlayer(row)
		return nil
	})
	if err != nil {
		return Player{}, err
	}

	logger.Info().Msg("Player handles updated")
	return updated, nil
}

func checkHandleLength(handle, service string) error {
	if len(handle) > maxHandleLength {
		return eligibility.Invalid(fmt.Sprintf("Validation Error: %s username must be at most %d characters.", service, maxHandleLength))
	}
	return nil
}

func toPlayer(row dbgen.Player) Player {
	player := Player{
		ID:              row.ID,
		Name:            row.Name,
		DiscordUsername: row.DiscordUsername,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.TwitchUsername.Valid {
		twitch := row.TwitchUsername.String
		player.TwitchUsername = &twitch
	}
	return player
}
