package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/buzzleague/buzz/internal/config"
	"github.com/buzzleague/buzz/internal/db"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/testutil"
)

var epoch = time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)

func newService(t *testing.T, database *db.DB) (*Service, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	svc, err := NewService(database, config.DefaultRules(), clock)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, clock
}

func TestNewServiceRejectsBadRules(t *testing.T) {
	database := testutil.NewTestDB(t)
	if _, err := NewService(database, config.RulesConfig{MinSets: 4, MaxSets: 2}, nil); err == nil {
		t.Fatalf("expected inverted rules to be rejected")
	}
}

func TestCreateMatchRequiresServiceIdentity(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc, _ := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	awayID := league.Away.ID

	_, err := svc.CreateMatch(ctx, league.HomeCaptain.Identity(), CreateMatchParams{HomeID: league.Home.ID, AwayID: &awayID})
	if !errors.Is(err, eligibility.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	service := testutil.ServiceIdentity(t, database)
	match, err := svc.CreateMatch(ctx, service, CreateMatchParams{HomeID: league.Home.ID, AwayID: &awayID})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if match.CircuitID != league.CircuitID || match.Scheduled {
		t.Fatalf("unexpected match %+v", match)
	}

	bye, err := svc.CreateMatch(ctx, service, CreateMatchParams{HomeID: league.Home.ID})
	if err != nil {
		t.Fatalf("create bye: %v", err)
	}
	if bye.AwayID != nil {
		t.Fatalf("expected bye without away team")
	}

	same := league.Home.ID
	if _, err := svc.CreateMatch(ctx, service, CreateMatchParams{HomeID: league.Home.ID, AwayID: &same}); !errors.Is(err, eligibility.ErrInvalid) {
		t.Fatalf("expected home == away rejected, got %v", err)
	}
}

func TestCreateMatchRejectsCrossCircuitTeams(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc, _ := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	east := testutil.CreateCircuit(t, database, league.SeasonID, "E")
	other := testutil.CreateTeam(t, database, east, testutil.CreatePlayer(t, database).ID)

	_, err := svc.CreateMatch(ctx, testutil.ServiceIdentity(t, database), CreateMatchParams{HomeID: league.Home.ID, AwayID: &other.ID})
	if !errors.Is(err, eligibility.ErrInvalid) {
		t.Fatalf("expected cross-circuit match rejected, got %v", err)
	}
}

func TestUpdateSchedule(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc, clock := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	matchID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)
	casterPlayer := testutil.CreatePlayer(t, database)
	casterID := testutil.CreateCaster(t, database, casterPlayer.ID)
	secondPlayer := testutil.CreatePlayer(t, database)
	secondID := testutil.CreateCaster(t, database, secondPlayer.ID)

	start := clock.Now().Add(48 * time.Hour)
	updated, err := svc.UpdateSchedule(ctx, league.AwayCaptain.Identity(), matchID, ScheduleUpdate{
		StartTimeSet:        true,
		StartTime:           &start,
		PrimaryCasterSet:    true,
		PrimaryCasterID:     &casterID,
		SecondaryCastersSet: true,
		SecondaryCasterIDs:  []int64{secondID, secondID},
	})
	if err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	if !updated.Scheduled || updated.StartTime == nil || !updated.StartTime.Equal(start) {
		t.Fatalf("expected start time %v, got %v", start, updated.StartTime)
	}
	if updated.PrimaryCasterID == nil || *updated.PrimaryCasterID != casterID {
		t.Fatalf("expected primary caster %d, got %v", casterID, updated.PrimaryCasterID)
	}
	if len(updated.SecondaryCasterIDs) != 1 || updated.SecondaryCasterIDs[0] != secondID {
		t.Fatalf("expected one secondary caster, got %v", updated.SecondaryCasterIDs)
	}

	// Leaving fields unset keeps them.
	cleared, err := svc.UpdateSchedule(ctx, league.HomeCaptain.Identity(), matchID, ScheduleUpdate{StartTimeSet: true})
	if err != nil {
		t.Fatalf("clear start time: %v", err)
	}
	if cleared.Scheduled || cleared.PrimaryCasterID == nil {
		t.Fatalf("expected start time cleared and caster kept, got %+v", cleared)
	}

	missing := int64(9999)
	_, err = svc.UpdateSchedule(ctx, league.HomeCaptain.Identity(), matchID, ScheduleUpdate{PrimaryCasterSet: true, PrimaryCasterID: &missing})
	if !errors.Is(err, eligibility.ErrInvalid) {
		t.Fatalf("expected unknown caster rejected, got %v", err)
	}
}

func TestUpdateScheduleForbidden(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc, clock := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	matchID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)
	start := clock.Now()
	update := ScheduleUpdate{StartTimeSet: true, StartTime: &start}

	outsider := testutil.CreatePlayer(t, database)
	if _, err := svc.UpdateSchedule(ctx, outsider.Identity(), matchID, update); !errors.Is(err, ErrScheduleForbidden) {
		t.Fatalf("expected ErrScheduleForbidden for outsider, got %v", err)
	}
	if _, err := svc.UpdateSchedule(ctx, eligibility.Anonymous(), matchID, update); !errors.Is(err, ErrScheduleForbidden) {
		t.Fatalf("expected ErrScheduleForbidden for anonymous, got %v", err)
	}

	if _, err := svc.SubmitResult(ctx, league.HomeCaptain.Identity(), validParams(matchID, league.Home.ID, league.Away.ID, 3)); err != nil {
		t.Fatalf("submit result: %v", err)
	}
	if _, err := svc.UpdateSchedule(ctx, league.HomeCaptain.Identity(), matchID, update); !errors.Is(err, ErrScheduleForbidden) {
		t.Fatalf("expected schedule frozen after result, got %v", err)
	}

	if _, err := svc.UpdateSchedule(ctx, league.HomeCaptain.Identity(), 31337, update); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestListStartingWithinUsesSuppliedNow(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc, clock := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	now := clock.Now()
	soon := now.Add(20 * time.Minute)
	later := now.Add(3 * time.Hour)
	past := now.Add(-10 * time.Minute)

	soonID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, &soon)
	testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, &later)
	testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, &past)
	testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)

	got, err := svc.ListStartingWithin(ctx, now, 30*time.Minute)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != soonID {
		t.Fatalf("expected only match %d, got %+v", soonID, got)
	}

	got, err = svc.ListStartingWithin(ctx, now.Add(-15*time.Minute), 30*time.Minute)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || !got[0].StartTime.Equal(past) {
		t.Fatalf("expected the past match relative to an earlier now, got %+v", got)
	}

	clock.Advance(2*time.Hour + 50*time.Minute)
	got, err = svc.Upcoming(ctx, 30*time.Minute)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(got) != 1 || !got[0].StartTime.Equal(later) {
		t.Fatalf("expected the later match after advancing the clock, got %+v", got)
	}

	if _, err := svc.ListStartingWithin(ctx, now, -time.Minute); err == nil {
		t.Fatalf("expected negative window rejected")
	}
}
