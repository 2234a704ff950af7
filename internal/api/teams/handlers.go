// internal/api/teams/handlers.go
package teams

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/apiutil"
	"github.com/buzzleague/buzz/internal/api/authz"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/ratelimit"
	"github.com/buzzleague/buzz/internal/teams"
)

const (
	teamIDPathKey = "id"

	joinDeniedMessage       = "Permission Denied"
	regenerateDeniedMessage = "permission denied"
)

var (
	service    *teams.Service
	limiter    *ratelimit.Limiter
	trustProxy bool
)

type createTeamRequest struct {
	CircuitID int64  `json:"circuitId"`
	Name      string `json:"name"`
	DynastyID *int64 `json:"dynastyId"`
}

// Other team fields may be submitted with a rename; they are ignored.
type renameTeamRequest struct {
	Name *string `json:"name"`
}

type joinTeamRequest struct {
	InviteCode string `json:"inviteCode"`
}

type inviteCodeResponse struct {
	InviteCode string `json:"inviteCode"`
}

// InitHandlers must be called during server startup before handling requests.
// A nil limiter disables join throttling.
func InitHandlers(svc *teams.Service, joinLimiter *ratelimit.Limiter, trustForwardedFor bool) {
	service = svc
	limiter = joinLimiter
	trustProxy = trustForwardedFor
}

// POST /api/v1/teams
func HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Team service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createTeamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CircuitID <= 0 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "circuitId must be greater than 0")
		return
	}

	team, err := service.Create(r.Context(), authz.IdentityFromContext(r.Context()), teams.CreateParams{
		CircuitID: req.CircuitID,
		Name:      req.Name,
		DynastyID: req.DynastyID,
	})
	if err != nil {
		apiutil.RespondError(w, r, createError(err))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, team); err != nil {
		logger.Error().Err(err).Int64("team_id", team.ID).Msg("Failed to write team response")
	}
}

// GET /api/v1/teams/{id}
func HandleTeamDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Team service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	teamID, err := apiutil.PathID(r, teamIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	team, err := service.Get(r.Context(), authz.IdentityFromContext(r.Context()), teamID)
	if err != nil {
		apiutil.RespondError(w, r, lookupError(err, "Failed to load team"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to write team response")
	}
}

// PATCH /api/v1/teams/{id}
func HandleRenameTeam(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Team service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	teamID, err := apiutil.PathID(r, teamIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req renameTeamRequest
	if r.Body == nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	team, err := service.Rename(r.Context(), authz.IdentityFromContext(r.Context()), teamID, *req.Name)
	if err != nil {
		apiutil.RespondError(w, r, renameError(err))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to write team response")
	}
}

// POST /api/v1/teams/{id}/join
func HandleJoinTeam(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Team service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	teamID, err := apiutil.PathID(r, teamIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req joinTeamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := authz.IdentityFromContext(r.Context())

	// Only callers with a player are throttled; everyone else is refused by
	// the rules before an invite code is compared.
	throttled := limiter != nil && id.Authenticated && id.PlayerID != nil
	var playerID int64
	var ip string
	if throttled {
		playerID = *id.PlayerID
		ip = ratelimit.GetClientIP(r, trustProxy)
		if check := limiter.CheckJoin(playerID, ip); !check.Allowed {
			ratelimit.LogRateLimitExceeded(playerID, ip, check.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(check.RetryAfter.Seconds())+1))
			apiutil.WriteError(w, r, http.StatusTooManyRequests, "Too many join attempts. Try again later.")
			return
		}
	}

	team, err := service.Join(r.Context(), id, teamID, req.InviteCode)
	if throttled && (err == nil || errors.Is(err, teams.ErrPermissionDenied)) {
		if limiter.RecordJoin(playerID, ip, err == nil) {
			ratelimit.LogRateLimitExceeded(playerID, ip, "lockout")
		}
	}
	if err != nil {
		if errors.Is(err, teams.ErrPermissionDenied) {
			apiutil.WriteError(w, r, http.StatusBadRequest, joinDeniedMessage)
			return
		}
		apiutil.RespondError(w, r, lookupError(err, "Failed to join team"))
		return
	}

	if team.CaptainID == nil || *team.CaptainID != *id.PlayerID {
		team.InviteCode = ""
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to write team response")
	}
}

// POST /api/v1/teams/{id}/regenerate-invite-code
func HandleRegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Team service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	teamID, err := apiutil.PathID(r, teamIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	code, err := service.RegenerateInviteCode(r.Context(), authz.IdentityFromContext(r.Context()), teamID)
	if err != nil {
		if errors.Is(err, teams.ErrPermissionDenied) {
			apiutil.WriteError(w, r, http.StatusBadRequest, regenerateDeniedMessage)
			return
		}
		apiutil.RespondError(w, r, lookupError(err, "Failed to regenerate invite code"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, inviteCodeResponse{InviteCode: code}); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to write invite code response")
	}
}

func createError(err error) error {
	if errors.Is(err, teams.ErrCircuitNotFound) {
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Circuit not found", Err: err}
	}
	if d, ok := eligibility.AsDenial(err); ok {
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create team", Err: err}
}

func renameError(err error) error {
	d, ok := eligibility.AsDenial(err)
	if !ok {
		return lookupError(err, "Failed to rename team")
	}
	if errors.Is(err, eligibility.ErrInvalid) {
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusForbidden, Message: d.Reason, Err: err}
}

func lookupError(err error, message string) error {
	if errors.Is(err, teams.ErrTeamNotFound) {
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Team not found", Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}
