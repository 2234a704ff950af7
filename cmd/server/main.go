// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/buzzleague/buzz/internal/api/auth"
	"github.com/buzzleague/buzz/internal/config"
	"github.com/buzzleague/buzz/internal/db"
	"github.com/buzzleague/buzz/internal/leagues"
	"github.com/buzzleague/buzz/internal/matches"
	"github.com/buzzleague/buzz/internal/players"
	"github.com/buzzleague/buzz/internal/ratelimit"
	"github.com/buzzleague/buzz/internal/scheduler"
	"github.com/buzzleague/buzz/internal/streams"
	"github.com/buzzleague/buzz/internal/teams"
)

// devSecretKey signs tokens in development when APP_SECRET_KEY is unset.
const devSecretKey = "buzz-development-only-secret"

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	clock := clockwork.NewRealClock()

	deps, err := buildDependencies(cfg, database, clock)
	if err != nil {
		return err
	}
	defer deps.joinLimiter.Close()

	if cfg.Scheduler.Enabled {
		if err := startScheduler(cfg, database, clock, deps.matches); err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}()
	}

	server := newServer(cfg, deps)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

type dependencies struct {
	teams       *teams.Service
	matches     *matches.Service
	leagues     *leagues.Service
	players     *players.Service
	streams     *streams.Service
	tokens      *auth.TokenIssuer
	joinLimiter *ratelimit.Limiter
	database    *db.DB
}

func buildDependencies(cfg *config.Config, database *db.DB, clock clockwork.Clock) (*dependencies, error) {
	teamService, err := teams.NewService(database)
	if err != nil {
		return nil, err
	}
	matchService, err := matches.NewService(database, cfg.Rules, clock)
	if err != nil {
		return nil, err
	}
	leagueService, err := leagues.NewService(database)
	if err != nil {
		return nil, err
	}
	playerService, err := players.NewService(database)
	if err != nil {
		return nil, err
	}
	streamService, err := streams.NewService(database, clock)
	if err != nil {
		return nil, err
	}

	secret := cfg.App.SecretKey
	if secret == "" {
		log.Warn().Msg("APP_SECRET_KEY not set, using development signing key")
		secret = devSecretKey
	}
	issuer, err := auth.NewTokenIssuer(secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, clock)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	return &dependencies{
		teams:       teamService,
		matches:     matchService,
		leagues:     leagueService,
		players:     playerService,
		streams:     streamService,
		tokens:      issuer,
		joinLimiter: ratelimit.New(ratelimit.FromConfig(cfg.RateLimit, clock)),
		database:    database,
	}, nil
}

func startScheduler(cfg *config.Config, database *db.DB, clock clockwork.Clock, upcoming scheduler.UpcomingMatches) error {
	if err := scheduler.Init(clock); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	svc, err := scheduler.ServiceInstance()
	if err != nil {
		return err
	}
	if err := scheduler.RegisterStreamExpiryJob(svc, database, cfg.Scheduler); err != nil {
		return err
	}
	if err := scheduler.RegisterMatchReminderJobs(svc, upcoming); err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	log.Info().Int("jobs", len(svc.Jobs())).Msg("Scheduler started")
	return nil
}
