// internal/api/streams/handlers.go
package streams

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/apiutil"
	"github.com/buzzleague/buzz/internal/api/authz"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/streams"
)

const (
	streamIDPathKey  = "id"
	liveQueryKey     = "live"
	usernameQueryKey = "username"
)

var service *streams.Service

type goLiveRequest struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Service   string `json:"service"`
	StartTime string `json:"startTime"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *streams.Service) {
	service = svc
}

// GET /api/v1/streams?live=true&username=name
func HandleListStreams(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Stream service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := streams.ListParams{Username: query.Get(usernameQueryKey)}
	if raw := query.Get(liveQueryKey); raw != "" {
		live, err := strconv.ParseBool(raw)
		if err != nil {
			apiutil.WriteError(w, r, http.StatusBadRequest, liveQueryKey+" must be true or false")
			return
		}
		params.LiveOnly = live
	}

	list, err := service.List(r.Context(), params)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list streams")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Failed to list streams")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"streams": list}); err != nil {
		logger.Error().Err(err).Msg("Failed to write streams response")
	}
}

// POST /api/v1/streams
func HandleGoLive(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Stream service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireService(w, r) {
		return
	}

	var req goLiveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	params := streams.GoLiveParams{
		Name:     req.Name,
		Username: req.Username,
		Service:  req.Service,
	}
	if strings.TrimSpace(req.StartTime) != "" {
		start, err := apiutil.ParseTimestamp(req.StartTime, "startTime")
		if err != nil {
			apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		params.StartTime = &start
	}

	stream, err := service.GoLive(r.Context(), authz.IdentityFromContext(r.Context()), params)
	if err != nil {
		apiutil.RespondError(w, r, streamError(err, "Failed to record stream"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, stream); err != nil {
		logger.Error().Err(err).Int64("stream_id", stream.ID).Msg("Failed to write stream response")
	}
}

// POST /api/v1/streams/{id}/end
func HandleEndStream(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Stream service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireService(w, r) {
		return
	}

	streamID, err := apiutil.PathID(r, streamIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stream, err := service.End(r.Context(), authz.IdentityFromContext(r.Context()), streamID)
	if err != nil {
		apiutil.RespondError(w, r, streamError(err, "Failed to end stream"))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, stream); err != nil {
		logger.Error().Err(err).Int64("stream_id", streamID).Msg("Failed to write stream response")
	}
}

func streamError(err error, message string) error {
	if errors.Is(err, streams.ErrStreamNotFound) {
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Stream not found", Err: err}
	}
	if d, ok := eligibility.AsDenial(err); ok {
		status := http.StatusBadRequest
		if errors.Is(err, eligibility.ErrForbidden) {
			status = http.StatusForbidden
		}
		return apiutil.HandlerError{Status: status, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}
