// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api"
	"github.com/buzzleague/buzz/internal/api/auth"
	apileagues "github.com/buzzleague/buzz/internal/api/leagues"
	apimatches "github.com/buzzleague/buzz/internal/api/matches"
	apiplayers "github.com/buzzleague/buzz/internal/api/players"
	apistreams "github.com/buzzleague/buzz/internal/api/streams"
	apiteams "github.com/buzzleague/buzz/internal/api/teams"
	"github.com/buzzleague/buzz/internal/config"
)

func newServer(cfg *config.Config, deps *dependencies) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      newHandler(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(cfg *config.Config, deps *dependencies) http.Handler {
	router := http.NewServeMux()

	auth.InitHandlers(deps.database.Queries, deps.tokens)
	apiteams.InitHandlers(deps.teams, deps.joinLimiter, cfg.RateLimit.TrustProxy)
	apimatches.InitHandlers(deps.matches)
	apileagues.InitHandlers(deps.leagues)
	apiplayers.InitHandlers(deps.players)
	apistreams.InitHandlers(deps.streams)

	registerRoutes(router, deps)

	// Each middleware wraps the ones before it, so CORS runs first and auth last.
	return api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithCORS(cfg.App.AllowedOrigins),
	)
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.database.PingContext(r.Context()); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("GET /api/v1/auth/me", auth.HandleMe)

	// Player routes
	mux.HandleFunc("GET /api/v1/players/{id}", apiplayers.HandlePlayerDetail)
	mux.HandleFunc("PATCH /api/v1/players/{id}", apiplayers.HandleUpdatePlayer)

	// Team routes
	mux.HandleFunc("POST /api/v1/teams", apiteams.HandleCreateTeam)
	mux.HandleFunc("GET /api/v1/teams/{id}", apiteams.HandleTeamDetail)
	mux.HandleFunc("PATCH /api/v1/teams/{id}", apiteams.HandleRenameTeam)
	mux.HandleFunc("POST /api/v1/teams/{id}/join", apiteams.HandleJoinTeam)
	mux.HandleFunc("POST /api/v1/teams/{id}/regenerate-invite-code", apiteams.HandleRegenerateInviteCode)

	// Match routes
	mux.HandleFunc("POST /api/v1/matches", apimatches.HandleCreateMatch)
	mux.HandleFunc("GET /api/v1/matches", apimatches.HandleUpcomingMatches)
	mux.HandleFunc("GET /api/v1/matches/{id}", apimatches.HandleMatchDetail)
	mux.HandleFunc("PATCH /api/v1/matches/{id}", apimatches.HandleUpdateSchedule)

	// Result routes
	mux.HandleFunc("POST /api/v1/results", apimatches.HandleSubmitResult)
	mux.HandleFunc("GET /api/v1/results/{id}", apimatches.HandleResultDetail)

	// Circuit routes
	mux.HandleFunc("GET /api/v1/circuits/{id}/standings", apileagues.HandleStandings)
	mux.HandleFunc("POST /api/v1/circuits/{id}/schedule", apileagues.HandleCreateSchedule)

	// Stream routes
	mux.HandleFunc("GET /api/v1/streams", apistreams.HandleListStreams)
	mux.HandleFunc("POST /api/v1/streams", apistreams.HandleGoLive)
	mux.HandleFunc("POST /api/v1/streams/{id}/end", apistreams.HandleEndStream)
}
