// internal/api/players/handlers.go
package players

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/apiutil"
	"github.com/buzzleague/buzz/internal/api/authz"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/players"
)

const playerIDPathKey = "id"

var service *players.Service

// updatePlayerRequest ignores every other profile field a client echoes back.
type updatePlayerRequest struct {
	DiscordUsername *string `json:"discordUsername"`
	TwitchUsername  *string `json:"twitchUsername"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *players.Service) {
	service = svc
}

// GET /api/v1/players/{id}
func HandlePlayerDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Player service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, playerIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	player, err := service.Get(r.Context(), playerID)
	if err != nil {
		apiutil.RespondError(w, r, playerError(err, "Failed to load player"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to write player response")
	}
}

// PATCH /api/v1/players/{id}
func HandleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Player service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, playerIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req updatePlayerRequest
	if r.Body == nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	player, err := service.UpdateHandles(r.Context(), authz.IdentityFromContext(r.Context()), playerID, players.HandleUpdate{
		DiscordUsername: req.DiscordUsername,
		TwitchUsername:  req.TwitchUsername,
	})
	if err != nil {
		apiutil.RespondError(w, r, playerError(err, "Failed to update player"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to write player response")
	}
}

// playerError reports sign-in and ownership refusals as 403, like team renames.
func playerError(err error, message string) error {
	if errors.Is(err, players.ErrPlayerNotFound) {
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Player not found", Err: err}
	}
	if d, ok := eligibility.AsDenial(err); ok {
		status := http.StatusForbidden
		if errors.Is(err, eligibility.ErrInvalid) {
			status = http.StatusBadRequest
		}
		return apiutil.HandlerError{Status: status, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}
