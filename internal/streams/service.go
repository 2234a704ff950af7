// Package streams records which league streams are live on Twitch and YouTube.
package streams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

const (
	ServiceTwitch  = "TW"
	ServiceYouTube = "YT"

	maxNameLength = 255
)

var ErrStreamNotFound = errors.New("stream not found")

const (
	ReasonNameRequired     = "Validation Error: Stream name is required."
	ReasonUsernameRequired = "Validation Error: Stream username is required."
	ReasonUnknownService   = "Validation Error: Stream service must be TW or YT."
)

type Stream struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Service   string    `json:"service"`
	StartTime time.Time `json:"startTime"`
	IsLive    bool      `json:"isLive"`
}

type Service struct {
	db    *db.DB
	clock clockwork.Clock
}

func NewService(database *db.DB, clock clockwork.Clock) (*Service, error) {
	if database == nil {
		return nil, errors.New("stream service requires a database")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{db: database, clock: clock}, nil
}

type GoLiveParams struct {
	Name      string
	Username  string
	Service   string
	StartTime *time.Time
}

// GoLive marks the channel live. A channel is one row per service and
// username; reporting a live channel again keeps its original start time.
func (s *Service) GoLive(ctx context.Context, id eligibility.Identity, params GoLiveParams) (Stream, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "stream_service").
		Str("service", params.Service).
		Str("username", params.Username).
		Logger()

	if err := eligibility.CanManageStreams(id); err != nil {
		logger.Warn().Err(err).Msg("Stream report refused")
		return Stream{}, err
	}

	name := strings.TrimSpace(params.Name)
	username := strings.TrimSpace(params.Username)
	service := strings.ToUpper(strings.TrimSpace(params.Service))
	switch {
	case name == "":
		return Stream{}, eligibility.Invalid(ReasonNameRequired)
	case len(name) > maxNameLength:
		return Stream{}, eligibility.Invalid(fmt.Sprintf("Validation Error: Stream name must be at most %d characters.", maxNameLength))
	case username == "":
		return Stream{}, eligibility.Invalid(ReasonUsernameRequired)
	case service != ServiceTwitch && service != ServiceYouTube:
		return Stream{}, eligibility.Invalid(ReasonUnknownService)
	}

	start := s.clock.Now().UTC()
	if params.StartTime != nil {
		start = params.StartTime.UTC()
	}

	row, err := s.db.Queries.UpsertLiveStream(ctx, dbgen.UpsertLiveStreamParams{
		Name:      name,
		Username:  username,
		Service:   service,
		StartTime: start,
	})
	if err != nil {
		return Stream{}, fmt.Errorf("upsert stream: %w", err)
	}

	logger.Info().Int64("stream_id", row.ID).Msg("Stream live")
	return toStream(row), nil
}

// End marks the stream offline. Ending an offline stream is not an error.
func (s *Service) End(ctx context.Context, id eligibility.Identity, streamID int64) (Stream, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "stream_service").
		Int64("stream_id", streamID).
		Logger()

	if err := eligibility.CanManageStreams(id); err != nil {
		logger.Warn().Err(err).Msg("Stream end refused")
		return Stream{}, err
	}

	row, err := s.db.Queries.EndStream(ctx, streamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stream{}, ErrStreamNotFound
		}
		return Stream{}, fmt.Errorf("end stream: %w", err)
	}

	logger.Info().Msg("Stream ended")
	return toStream(row), nil
}

type ListParams struct {
	LiveOnly bool
	Username string
}

// List returns streams newest first. Username matches as a substring.
func (s *Service) List(ctx context.Context, params ListParams) ([]Stream, error) {
	rows, err := s.db.Queries.ListStreams(ctx, dbgen.ListStreamsParams{
		LiveOnly: params.LiveOnly,
		Username: strings.TrimSpace(params.Username),
	})
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	out := make([]Stream, 0, len(rows))
	for _, row := range rows {
		out = append(out, toStream(row))
	}
	return out, nil
}

func toStream(row dbgen.Stream) Stream {
	return Stream{
		ID:        row.ID,
		Name:      row.Name,
		Username:  row.Username,
		Service:   row.Service,
		StartTime: row.StartTime.UTC(),
		IsLive:    row.IsLive,
	}
}
