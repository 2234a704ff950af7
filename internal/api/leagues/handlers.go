// internal/api/leagues/handlers.go
package leagues

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/apiutil"
	"github.com/buzzleague/buzz/internal/api/authz"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/leagues"
)

const circuitIDPathKey = "id"

var service *leagues.Service

type scheduleRequest struct {
	FirstRound         string `json:"firstRound"`
	RoundIntervalHours int    `json:"roundIntervalHours"`
}

type scheduledMatch struct {
	ID        int64      `json:"id"`
	HomeID    int64      `json:"homeId"`
	AwayID    *int64     `json:"awayId"`
	CircuitID int64      `json:"circuitId"`
	RoundID   *int64     `json:"roundId"`
	StartTime *time.Time `json:"startTime"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *leagues.Service) {
	service = svc
}

// GET /api/v1/circuits/{id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("League service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	circuitID, err := apiutil.PathID(r, circuitIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	standings, err := service.Standings(r.Context(), circuitID)
	if err != nil {
		if errors.Is(err, leagues.ErrCircuitNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "Circuit not found")
			return
		}
		logger.Error().Err(err).Int64("circuit_id", circuitID).Msg("Failed to calculate standings")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Failed to calculate standings")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": standings}); err != nil {
		logger.Error().Err(err).Int64("circuit_id", circuitID).Msg("Failed to write standings response")
	}
}

// POST /api/v1/circuits/{id}/schedule
func HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("League service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	circuitID, err := apiutil.PathID(r, circuitIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := decodeScheduleRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := service.CreateCircuitSchedule(r.Context(), authz.IdentityFromContext(r.Context()), circuitID, opts)
	if err != nil {
		apiutil.RespondError(w, r, scheduleError(err))
		return
	}

	response := make([]scheduledMatch, 0, len(created))
	for _, m := range created {
		response = append(response, toScheduledMatch(m))
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{"matches": response}); err != nil {
		logger.Error().Err(err).Int64("circuit_id", circuitID).Msg("Failed to write schedule response")
	}
}

// decodeScheduleRequest accepts an empty body, which schedules every round
// without start times.
func decodeScheduleRequest(r *http.Request) (leagues.ScheduleOptions, error) {
	var opts leagues.ScheduleOptions
	if r.Body == nil || r.ContentLength == 0 {
		return opts, nil
	}

	var req scheduleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		return opts, errors.New("Invalid request body")
	}
	if req.FirstRound == "" {
		if req.RoundIntervalHours != 0 {
			return opts, errors.New("firstRound is required with roundIntervalHours")
		}
		return opts, nil
	}
	first, err := apiutil.ParseTimestamp(req.FirstRound, "firstRound")
	if err != nil {
		return opts, err
	}
	if req.RoundIntervalHours <= 0 {
		return opts, errors.New("roundIntervalHours must be greater than 0")
	}
	opts.FirstRound = first
	opts.RoundInterval = time.Duration(req.RoundIntervalHours) * time.Hour
	return opts, nil
}

func scheduleError(err error) error {
	if errors.Is(err, leagues.ErrCircuitNotFound) {
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Circuit not found", Err: err}
	}
	if d, ok := eligibility.AsDenial(err); ok {
		status := http.StatusBadRequest
		if errors.Is(err, eligibility.ErrForbidden) || errors.Is(err, eligibility.ErrUnauthenticated) {
			status = http.StatusForbidden
		}
		return apiutil.HandlerError{Status: status, Message: d.Reason, Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create schedule", Err: err}
}

func toScheduledMatch(m dbgen.Match) scheduledMatch {
	out := scheduledMatch{
		ID:        m.ID,
		HomeID:    m.HomeID,
		CircuitID: m.CircuitID,
	}
	if m.AwayID.Valid {
		away := m.AwayID.Int64
		out.AwayID = &away
	}
	if m.RoundID.Valid {
		round := m.RoundID.Int64
		out.RoundID = &round
	}
	if m.StartTime.Valid {
		start := m.StartTime.Time.UTC()
		out.StartTime = &start
	}
	return out
}
