// internal/api/matches/handlers.go
package matches

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/apiutil"
	"github.com/buzzleague/buzz/internal/api/authz"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/matches"
)

const (
	idPathKey              = "id"
	startsWithinQueryKey   = "starts_within_minutes"
	defaultStartsWithin    = 15 * time.Minute
	maxStartsWithinMinutes = 7 * 24 * 60
)

var service *matches.Service

type createMatchRequest struct {
	HomeID    int64  `json:"homeId"`
	AwayID    *int64 `json:"awayId"`
	RoundID   *int64 `json:"roundId"`
	StartTime string `json:"startTime"`
}

// Absent fields are left unchanged; an explicit null clears them.
type updateScheduleRequest struct {
	StartTime          json.RawMessage `json:"startTime"`
	PrimaryCasterID    json.RawMessage `json:"primaryCasterId"`
	SecondaryCasterIDs json.RawMessage `json:"secondaryCasterIds"`
}

type setLogRequest struct {
	Filename string `json:"filename"`
	Body     string `json:"body"`
}

type setRequest struct {
	WinnerID int64          `json:"winnerId"`
	LoserID  int64          `json:"loserId"`
	Log      *setLogRequest `json:"log"`
}

type playerMappingRequest struct {
	Nickname string `json:"nickname"`
	PlayerID int64  `json:"playerId"`
}

type teamMappingRequest struct {
	Color  string `json:"color"`
	TeamID int64  `json:"teamId"`
}

type submitResultRequest struct {
	MatchID        int64                  `json:"matchId"`
	WinnerID       int64                  `json:"winnerId"`
	LoserID        int64                  `json:"loserId"`
	Status         string                 `json:"status"`
	Sets           []setRequest           `json:"sets"`
	Notes          string                 `json:"notes"`
	Source         string                 `json:"source"`
	PlayerMappings []playerMappingRequest `json:"playerMappings"`
	TeamMappings   []teamMappingRequest   `json:"teamMappings"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *matches.Service) {
	service = svc
}

// POST /api/v1/matches
func HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createMatchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.HomeID <= 0 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "homeId must be greater than 0")
		return
	}
	params := matches.CreateMatchParams{
		HomeID:  req.HomeID,
		AwayID:  req.AwayID,
		RoundID: req.RoundID,
	}
	if strings.TrimSpace(req.StartTime) != "" {
		start, err := apiutil.ParseTimestamp(req.StartTime, "startTime")
		if err != nil {
			apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		params.StartTime = &start
	}

	match, err := service.CreateMatch(r.Context(), authz.IdentityFromContext(r.Context()), params)
	if err != nil {
		apiutil.RespondError(w, r, matchError(err, "Failed to create match"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, match); err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to write match response")
	}
}

// GET /api/v1/matches?starts_within_minutes=N
func HandleUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireService(w, r) {
		return
	}

	window := defaultStartsWithin
	if raw := r.URL.Query().Get(startsWithinQueryKey); raw != "" {
		minutes, err := apiutil.ParseNonNegativeInt64Field(raw, startsWithinQueryKey)
		if err != nil {
			apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if minutes > maxStartsWithinMinutes {
			apiutil.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("%s must be at most %d", startsWithinQueryKey, maxStartsWithinMinutes))
			return
		}
		window = time.Duration(minutes) * time.Minute
	}

	upcoming, err := service.Upcoming(r.Context(), window)
	if err != nil {
		logger.Error().Err(err).Dur("window", window).Msg("Failed to list upcoming matches")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Failed to list matches")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"matches": upcoming}); err != nil {
		logger.Error().Err(err).Msg("Failed to write matches response")
	}
}

// GET /api/v1/matches/{id}
func HandleMatchDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	matchID, err := apiutil.PathID(r, idPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	match, err := service.GetMatch(r.Context(), matchID)
	if err != nil {
		apiutil.RespondError(w, r, matchError(err, "Failed to load match"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to write match response")
	}
}

// PATCH /api/v1/matches/{id}
func HandleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	matchID, err := apiutil.PathID(r, idPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req updateScheduleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	update, err := parseScheduleUpdate(req)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	match, err := service.UpdateSchedule(r.Context(), authz.IdentityFromContext(r.Context()), matchID, update)
	if err != nil {
		apiutil.RespondError(w, r, matchError(err, "Failed to update match"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to write match response")
	}
}

// POST /api/v1/results
func HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req submitResultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MatchID <= 0 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "matchId must be greater than 0")
		return
	}

	result, err := service.SubmitResult(r.Context(), authz.IdentityFromContext(r.Context()), toSubmitParams(req))
	if err != nil {
		apiutil.RespondError(w, r, resultError(err))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, result); err != nil {
		logger.Error().Err(err).Int64("result_id", result.ID).Msg("Failed to write result response")
	}
}

// GET /api/v1/results/{id}
func HandleResultDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resultID, err := apiutil.PathID(r, idPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := service.GetResult(r.Context(), resultID)
	if err != nil {
		if errors.Is(err, matches.ErrResultNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "Result not found")
			return
		}
		logger.Error().Err(err).Int64("result_id", resultID).Msg("Failed to load result")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Failed to load result")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Int64("result_id", resultID).Msg("Failed to write result response")
	}
}

func parseScheduleUpdate(req updateScheduleRequest) (matches.ScheduleUpdate, error) {
	var update matches.ScheduleUpdate

	if req.StartTime != nil {
		update.StartTimeSet = true
		if !isNull(req.StartTime) {
			var raw string
			if err := json.Unmarshal(req.StartTime, &raw); err != nil {
				return update, errors.New("startTime must be a string or null")
			}
			start, err := apiutil.ParseTimestamp(raw, "startTime")
			if err != nil {
				return update, err
			}
			update.StartTime = &start
		}
	}

	if req.PrimaryCasterID != nil {
		update.PrimaryCasterSet = true
		if !isNull(req.PrimaryCasterID) {
			var casterID int64
			if err := json.Unmarshal(req.PrimaryCasterID, &casterID); err != nil || casterID <= 0 {
				return update, errors.New("primaryCasterId must be a positive integer or null")
			}
			update.PrimaryCasterID = &casterID
		}
	}

	if req.SecondaryCasterIDs != nil {
		update.SecondaryCastersSet = true
		if !isNull(req.SecondaryCasterIDs) {
			if err := json.Unmarshal(req.SecondaryCasterIDs, &update.SecondaryCasterIDs); err != nil {
				return update, errors.New("secondaryCasterIds must be a list of integers")
			}
		}
	}

	return update, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func toSubmitParams(req submitResultRequest) matches.SubmitResultParams {
	params := matches.SubmitResultParams{
		MatchID:  req.MatchID,
		WinnerID: req.WinnerID,
		LoserID:  req.LoserID,
		Status:   req.Status,
		Notes:    req.Notes,
		Source:   req.Source,
	}
	for _, set := range req.Sets {
		in := matches.SetInput{WinnerID: set.WinnerID, LoserID: set.LoserID}
		if set.Log != nil {
			in.Log = &matches.SetLogInput{Filename: set.Log.Filename, Body: set.Log.Body}
		}
		params.Sets = append(params.Sets, in)
	}
	for _, m := range req.PlayerMappings {
		params.PlayerMappings = append(params.PlayerMappings, matches.PlayerMappingInput{Nickname: m.Nickname, PlayerID: m.PlayerID})
	}
	for _, m := range req.TeamMappings {
		params.TeamMappings = append(params.TeamMappings, matches.TeamMappingInput{Color: m.Color, TeamID: m.TeamID})
	}
	return params
}

// matchError maps match service failures: authorization denials are 403,
// validation denials 400.
func matchError(err error, message string) error {
	switch {
	case errors.Is(err, matches.ErrMatchNotFound):
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Match not found", Err: err}
	case errors.Is(err, matches.ErrScheduleForbidden):
		return apiutil.HandlerError{Status: http.StatusForbidden, Message: eligibility.ReasonScheduleNotPermitted, Err: err}
	}
	if d, ok := eligibility.AsDenial(err); ok {
		status := http.StatusBadRequest
		if errors.Is(err, eligibility.ErrForbidden) || errors.Is(err, eligibility.ErrUnauthenticated) {
			status = http.StatusForbidden
		}
		return apiutil.HandlerError{Status: status, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// resultError reports every denial as 400 with its reason.
func resultError(err error) error {
	if errors.Is(err, matches.ErrMatchNotFound) {
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Match not found", Err: err}
	}
	if d, ok := eligibility.AsDenial(err); ok {
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to submit result", Err: err}
}
