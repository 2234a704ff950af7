package teams

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/buzzleague/buzz/internal/db"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/testutil"
)

func newService(t *testing.T, database *db.DB) *Service {
	t.Helper()
	svc, err := NewService(database)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	d, ok := eligibility.AsDenial(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	return d.Reason
}

func TestCreateMakesCaptainSoleMember(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	seasonID := testutil.CreateSeason(t, database, testutil.OpenSeason())
	circuitID := testutil.CreateCircuit(t, database, seasonID, "W")
	p := testutil.CreatePlayer(t, database)

	team, err := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: circuitID, Name: "  Blue Gate  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if team.Name != "Blue Gate" {
		t.Fatalf("expected trimmed name, got %q", team.Name)
	}
	if team.CaptainID == nil || *team.CaptainID != p.ID {
		t.Fatalf("expected captain %d, got %v", p.ID, team.CaptainID)
	}
	if len(team.MemberIDs) != 1 || team.MemberIDs[0] != p.ID {
		t.Fatalf("expected captain as sole member, got %v", team.MemberIDs)
	}
	if len(team.InviteCode) != 8 {
		t.Fatalf("expected 8 character invite code, got %q", team.InviteCode)
	}
}

func TestCreateRegionRules(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	seasonID := testutil.CreateSeason(t, database, testutil.OpenSeason())
	westTier1 := testutil.CreateCircuit(t, database, seasonID, "W")
	westTier2 := testutil.CreateCircuit(t, database, seasonID, "W")
	east := testutil.CreateCircuit(t, database, seasonID, "E")
	all := testutil.CreateCircuit(t, database, seasonID, "A")
	p := testutil.CreatePlayer(t, database)

	if _, err := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: westTier1, Name: "Hive"}); err != nil {
		t.Fatalf("create west: %v", err)
	}

	_, err := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: westTier2, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonAlreadyInCircuit {
		t.Fatalf("expected %q, got %q", eligibility.ReasonAlreadyInCircuit, got)
	}

	if _, err := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: all, Name: "Hive"}); err != nil {
		t.Fatalf("create all-region: %v", err)
	}

	_, err = svc.Create(ctx, p.Identity(), CreateParams{CircuitID: all, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonAlreadyInCircuit {
		t.Fatalf("expected duplicate all-region denial, got %q", got)
	}

	if _, err := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: east, Name: "Hive"}); err != nil {
		t.Fatalf("create east: %v", err)
	}

	other := testutil.CreateCircuit(t, database, seasonID, "E")
	_, err = svc.Create(ctx, p.Identity(), CreateParams{CircuitID: other, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonTeamCap {
		t.Fatalf("expected %q, got %q", eligibility.ReasonTeamCap, got)
	}
}

func TestCreateCountsMembershipNotJustCaptaincy(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	seasonID := testutil.CreateSeason(t, database, testutil.OpenSeason())
	west := testutil.CreateCircuit(t, database, seasonID, "W")
	otherWest := testutil.CreateCircuit(t, database, seasonID, "W")
	captain := testutil.CreatePlayer(t, database)
	member := testutil.CreatePlayer(t, database)

	team := testutil.CreateTeam(t, database, west, captain.ID)
	testutil.AddMember(t, database, team.ID, member.ID)

	_, err := svc.Create(ctx, member.Identity(), CreateParams{CircuitID: otherWest, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonAlreadyInCircuit {
		t.Fatalf("expected %q, got %q", eligibility.ReasonAlreadyInCircuit, got)
	}
}

func TestCreateDenials(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	closed := testutil.OpenSeason()
	closed.RegistrationOpen = false
	closedCircuit := testutil.CreateCircuit(t, database, testutil.CreateSeason(t, database, closed), "W")
	p := testutil.CreatePlayer(t, database)

	_, err := svc.Create(ctx, eligibility.Anonymous(), CreateParams{CircuitID: closedCircuit, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonCreateSignIn {
		t.Fatalf("expected sign-in denial, got %q", got)
	}

	_, err = svc.Create(ctx, eligibility.Identity{AccountID: 99, Authenticated: true}, CreateParams{CircuitID: closedCircuit, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonNoPlayer {
		t.Fatalf("expected no-player denial, got %q", got)
	}

	_, err = svc.Create(ctx, p.Identity(), CreateParams{CircuitID: closedCircuit, Name: "Hive"})
	if got := reasonOf(t, err); got != eligibility.ReasonRegistrationClosed {
		t.Fatalf("expected registration closed, got %q", got)
	}

	if _, err := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: 9999, Name: "Hive"}); !errors.Is(err, ErrCircuitNotFound) {
		t.Fatalf("expected ErrCircuitNotFound, got %v", err)
	}

	teams, err := database.Queries.ListTeamsByCircuit(ctx, closedCircuit)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected no teams written, got %d", len(teams))
	}
}

func TestCreateAndRenameShareNameRules(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	seasonID := testutil.CreateSeason(t, database, testutil.OpenSeason())
	circuitID := testutil.CreateCircuit(t, database, seasonID, "W")
	p := testutil.CreatePlayer(t, database)

	tests := []struct {
		name     string
		teamName string
	}{
		{name: "blank", teamName: "   "},
		{name: "empty", teamName: ""},
		{name: "too long", teamName: strings.Repeat("b", maxTeamNameLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, createErr := svc.Create(ctx, p.Identity(), CreateParams{CircuitID: circuitID, Name: tt.teamName})
			if !errors.Is(createErr, eligibility.ErrInvalid) {
				t.Fatalf("expected create to be invalid, got %v", createErr)
			}
			league := testutil.CreateLeague(t, database, testutil.OpenSeason())
			_, renameErr := svc.Rename(ctx, league.HomeCaptain.Identity(), league.Home.ID, tt.teamName)
			if reasonOf(t, createErr) != reasonOf(t, renameErr) {
				t.Fatalf("expected matching reasons, got %q and %q", reasonOf(t, createErr), reasonOf(t, renameErr))
			}
		})
	}

	teams, err := database.Queries.ListTeamsByCircuit(ctx, circuitID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected no teams written, got %d", len(teams))
	}
}

func TestCreateRetriesInviteCodeCollision(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	seasonID := testutil.CreateSeason(t, database, testutil.OpenSeason())
	west := testutil.CreateCircuit(t, database, seasonID, "W")
	east := testutil.CreateCircuit(t, database, seasonID, "E")
	first := testutil.CreatePlayer(t, database)
	second := testutil.CreatePlayer(t, database)

	codes := []string{"AAAA2222", "AAAA2222", "BBBB3333"}
	var calls atomic.Int32
	svc.WithCodeGenerator(func() (string, error) {
		i := calls.Add(1) - 1
		return codes[i], nil
	})

	a, err := svc.Create(ctx, first.Identity(), CreateParams{CircuitID: west, Name: "Hive"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	b, err := svc.Create(ctx, second.Identity(), CreateParams{CircuitID: east, Name: "Hive"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if a.InviteCode != "AAAA2222" || b.InviteCode != "BBBB3333" {
		t.Fatalf("unexpected codes %q %q", a.InviteCode, b.InviteCode)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 generator calls, got %d", calls.Load())
	}
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	seasonID := testutil.CreateSeason(t, database, testutil.OpenSeason())
	west := testutil.CreateCircuit(t, database, seasonID, "W")
	east := testutil.CreateCircuit(t, database, seasonID, "E")
	first := testutil.CreatePlayer(t, database)
	second := testutil.CreatePlayer(t, database)

	svc.WithCodeGenerator(func() (string, error) { return "CCCC4444", nil })
	if _, err := svc.Create(ctx, first.Identity(), CreateParams{CircuitID: west, Name: "Hive"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(ctx, second.Identity(), CreateParams{CircuitID: east, Name: "Hive"}); !errors.Is(err, ErrInviteCodeExhausted) {
		t.Fatalf("expected ErrInviteCodeExhausted, got %v", err)
	}
}

func TestRenameAppliesOnlyName(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())

	renamed, err := svc.Rename(ctx, league.HomeCaptain.Identity(), league.Home.ID, "Queen Bees")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Queen Bees" {
		t.Fatalf("expected new name, got %q", renamed.Name)
	}

	row, err := database.Queries.GetTeam(ctx, league.Home.ID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if row.CircuitID != league.Home.CircuitID || row.CaptainID != league.Home.CaptainID || row.InviteCode != league.Home.InviteCode {
		t.Fatalf("rename changed more than the name: %+v", row)
	}
}

func TestRenameDenials(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())

	_, err := svc.Rename(ctx, league.AwayCaptain.Identity(), league.Home.ID, "Stolen")
	if got := reasonOf(t, err); got != eligibility.ReasonRenameNotCaptain {
		t.Fatalf("expected %q, got %q", eligibility.ReasonRenameNotCaptain, got)
	}
	if !errors.Is(err, eligibility.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.Rename(ctx, league.HomeCaptain.Identity(), league.Home.ID, "   ")
	if !errors.Is(err, eligibility.ErrInvalid) {
		t.Fatalf("expected blank name rejected, got %v", err)
	}

	inactive := testutil.OpenSeason()
	inactive.IsActive = false
	old := testutil.CreateLeague(t, database, inactive)
	_, err = svc.Rename(ctx, old.HomeCaptain.Identity(), old.Home.ID, "Renamed")
	if got := reasonOf(t, err); got != eligibility.ReasonRenameSeasonInactive {
		t.Fatalf("expected %q, got %q", eligibility.ReasonRenameSeasonInactive, got)
	}

	if _, err := svc.Rename(ctx, league.HomeCaptain.Identity(), 4242, "Ghost"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}

func TestJoinWithInviteCode(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	p := testutil.CreatePlayer(t, database)

	if _, err := svc.Join(ctx, p.Identity(), league.Home.ID, "WRONG234"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected wrong code denied, got %v", err)
	}
	for _, malformed := range []string{"", "short", strings.ToLower(league.Home.InviteCode), league.Home.InviteCode + "X"} {
		if _, err := svc.Join(ctx, p.Identity(), league.Home.ID, malformed); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected malformed code %q denied, got %v", malformed, err)
		}
	}
	// Malformed codes are refused before the team is looked up.
	if _, err := svc.Join(ctx, p.Identity(), 9999, "bad"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected malformed code denied for unknown team, got %v", err)
	}
	if _, err := svc.Join(ctx, p.Identity(), 9999, "ABCD2345"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}

	team, err := svc.Join(ctx, p.Identity(), league.Home.ID, league.Home.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(team.MemberIDs) != 2 {
		t.Fatalf("expected two members, got %v", team.MemberIDs)
	}

	if _, err := svc.Join(ctx, p.Identity(), league.Home.ID, league.Home.InviteCode); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected second join denied, got %v", err)
	}

	// Same region of the same season is now taken.
	if _, err := svc.Join(ctx, p.Identity(), league.Away.ID, league.Away.InviteCode); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected same-region join denied, got %v", err)
	}
}

func TestInviteCodeRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())
	oldCode := league.Home.InviteCode

	if _, err := svc.RegenerateInviteCode(ctx, league.AwayCaptain.Identity(), league.Home.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected non-captain denied, got %v", err)
	}

	newCode, err := svc.RegenerateInviteCode(ctx, league.HomeCaptain.Identity(), league.Home.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if newCode == oldCode || len(newCode) != 8 {
		t.Fatalf("expected fresh 8 character code, got %q (old %q)", newCode, oldCode)
	}

	snapshot, err := teamSnapshot(ctx, database, league.Home.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	p := testutil.CreatePlayer(t, database)
	if eligibility.CanJoinTeam(p.Identity(), snapshot, oldCode, nil) {
		t.Fatalf("old invite code still accepted")
	}
	if _, err := svc.Join(ctx, p.Identity(), league.Home.ID, oldCode); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected join with old code denied, got %v", err)
	}
	if _, err := svc.Join(ctx, p.Identity(), league.Home.ID, newCode); err != nil {
		t.Fatalf("join with new code: %v", err)
	}
}

func TestConcurrentJoinsRespectRosterLimit(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	opts := testutil.OpenSeason()
	opts.MaxTeamMembers = 3
	league := testutil.CreateLeague(t, database, opts)

	const joiners = 8
	players := make([]testutil.Player, joiners)
	for i := range players {
		players[i] = testutil.CreatePlayer(t, database)
	}

	var joined atomic.Int32
	var g errgroup.Group
	for _, p := range players {
		g.Go(func() error {
			_, err := svc.Join(ctx, p.Identity(), league.Home.ID, league.Home.InviteCode)
			switch {
			case err == nil:
				joined.Add(1)
				return nil
			case errors.Is(err, ErrPermissionDenied):
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("join: %v", err)
	}

	if joined.Load() != 2 {
		t.Fatalf("expected exactly 2 joins to fit the roster, got %d", joined.Load())
	}
	members, err := database.Queries.ListTeamMemberIDs(ctx, league.Home.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected roster of 3, got %d", len(members))
	}
}

func TestGetHidesInviteCodeFromNonCaptains(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newService(t, database)
	ctx := context.Background()

	league := testutil.CreateLeague(t, database, testutil.OpenSeason())

	team, err := svc.Get(ctx, league.HomeCaptain.Identity(), league.Home.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if team.InviteCode != league.Home.InviteCode {
		t.Fatalf("captain should see invite code")
	}

	team, err = svc.Get(ctx, league.AwayCaptain.Identity(), league.Home.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if team.InviteCode != "" {
		t.Fatalf("non-captain saw invite code %q", team.InviteCode)
	}
}
