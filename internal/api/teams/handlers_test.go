package teams

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/buzzleague/buzz/internal/api/authz"
	"github.com/buzzleague/buzz/internal/db"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/ratelimit"
	"github.com/buzzleague/buzz/internal/teams"
	"github.com/buzzleague/buzz/internal/testutil"
)

func setupTeamsTest(t *testing.T) (*db.DB, testutil.League) {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc, err := teams.NewService(database)
	if err != nil {
		t.Fatalf("new team service: %v", err)
	}
	joinLimiter := ratelimit.New(&ratelimit.Config{
		MaxFailures:  2,
		Lockout:      time.Minute,
		MaxIPPerHour: 100,
		Clock:        clockwork.NewFakeClock(),
	})
	InitHandlers(svc, joinLimiter, false)
	t.Cleanup(func() {
		joinLimiter.Close()
		service = nil
		limiter = nil
	})

	return database, testutil.CreateLeague(t, database, testutil.OpenSeason())
}

func doRequest(t *testing.T, handler http.HandlerFunc, method string, teamID int64, body string, id eligibility.Identity) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/v1/teams", nil)
	} else {
		req = httptest.NewRequest(method, "/api/v1/teams", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if teamID != 0 {
		req.SetPathValue("id", fmt.Sprintf("%d", teamID))
	}
	req = req.WithContext(authz.ContextWithIdentity(req.Context(), id))

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeTeam(t *testing.T, rec *httptest.ResponseRecorder) teams.Team {
	t.Helper()

	var team teams.Team
	if err := json.NewDecoder(rec.Body).Decode(&team); err != nil {
		t.Fatalf("decode team: %v", err)
	}
	return team
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestHandleCreateTeam(t *testing.T) {
	database, league := setupTeamsTest(t)
	player := testutil.CreatePlayer(t, database)
	east := testutil.CreateCircuit(t, database, league.SeasonID, "E")

	rec := doRequest(t, HandleCreateTeam, http.MethodPost, 0,
		fmt.Sprintf(`{"circuitId":%d,"name":"Hive Five"}`, east), player.Identity())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	team := decodeTeam(t, rec)
	if team.Name != "Hive Five" || team.CircuitID != east {
		t.Fatalf("unexpected team %+v", team)
	}
	if team.CaptainID == nil || *team.CaptainID != player.ID {
		t.Fatalf("expected captain %d, got %v", player.ID, team.CaptainID)
	}
	if len(team.InviteCode) != 8 {
		t.Fatalf("expected 8 character invite code, got %q", team.InviteCode)
	}
}

func TestHandleCreateTeamDenials(t *testing.T) {
	database, league := setupTeamsTest(t)
	newcomer := testutil.CreatePlayer(t, database)

	tests := []struct {
		name   string
		body   string
		id     eligibility.Identity
		status int
		reason string
	}{
		{
			name:   "anonymous",
			body:   fmt.Sprintf(`{"circuitId":%d,"name":"x"}`, league.CircuitID),
			id:     eligibility.Anonymous(),
			status: http.StatusBadRequest,
			reason: eligibility.ReasonCreateSignIn,
		},
		{
			name:   "already in circuit",
			body:   fmt.Sprintf(`{"circuitId":%d,"name":"x"}`, league.CircuitID),
			id:     league.HomeCaptain.Identity(),
			status: http.StatusBadRequest,
			reason: eligibility.ReasonAlreadyInCircuit,
		},
		{
			name:   "unknown circuit",
			body:   `{"circuitId":9999,"name":"x"}`,
			id:     league.HomeCaptain.Identity(),
			status: http.StatusNotFound,
			reason: "Circuit not found",
		},
		{
			name:   "blank name",
			body:   fmt.Sprintf(`{"circuitId":%d,"name":"   "}`, league.CircuitID),
			id:     newcomer.Identity(),
			status: http.StatusBadRequest,
			reason: teams.ReasonNameRequired,
		},
		{
			name:   "missing circuit",
			body:   `{"name":"x"}`,
			id:     league.HomeCaptain.Identity(),
			status: http.StatusBadRequest,
			reason: "circuitId must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, HandleCreateTeam, http.MethodPost, 0, tt.body, tt.id)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if got := errorBody(t, rec); got != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got)
			}
		})
	}
}

func TestHandleRenameTeamIgnoresOtherFields(t *testing.T) {
	database, league := setupTeamsTest(t)
	other := testutil.CreatePlayer(t, database)

	body := fmt.Sprintf(`{"name":"Renamed","captainId":%d,"inviteCode":"AAAAAAAA"}`, other.ID)
	rec := doRequest(t, HandleRenameTeam, http.MethodPatch, league.Home.ID, body, league.HomeCaptain.Identity())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	team := decodeTeam(t, rec)
	if team.Name != "Renamed" {
		t.Fatalf("expected name Renamed, got %q", team.Name)
	}
	if team.CaptainID == nil || *team.CaptainID != league.HomeCaptain.ID {
		t.Fatalf("expected captain unchanged, got %v", team.CaptainID)
	}
	if team.InviteCode != league.Home.InviteCode {
		t.Fatalf("expected invite code unchanged, got %q", team.InviteCode)
	}
}

func TestHandleRenameTeamDenials(t *testing.T) {
	_, league := setupTeamsTest(t)

	rec := doRequest(t, HandleRenameTeam, http.MethodPatch, league.Home.ID, `{"name":"Mine now"}`, league.AwayCaptain.Identity())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if got := errorBody(t, rec); got != eligibility.ReasonRenameNotCaptain {
		t.Fatalf("expected reason %q, got %q", eligibility.ReasonRenameNotCaptain, got)
	}

	rec = doRequest(t, HandleRenameTeam, http.MethodPatch, league.Home.ID, `{"name":"x"}`, eligibility.Anonymous())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d for anonymous, got %d", http.StatusForbidden, rec.Code)
	}

	rec = doRequest(t, HandleRenameTeam, http.MethodPatch, league.Home.ID, `{"name":"   "}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for blank name, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doRequest(t, HandleRenameTeam, http.MethodPatch, league.Home.ID, `{"captainId":1}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d without name, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doRequest(t, HandleRenameTeam, http.MethodPatch, 9999, `{"name":"x"}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for unknown team, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleJoinTeam(t *testing.T) {
	database, league := setupTeamsTest(t)
	player := testutil.CreatePlayer(t, database)

	body := fmt.Sprintf(`{"inviteCode":%q}`, league.Home.InviteCode)
	rec := doRequest(t, HandleJoinTeam, http.MethodPost, league.Home.ID, body, player.Identity())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	team := decodeTeam(t, rec)
	if team.InviteCode != "" {
		t.Fatalf("expected invite code hidden from new member, got %q", team.InviteCode)
	}
	found := false
	for _, id := range team.MemberIDs {
		if id == player.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected player %d in members %v", player.ID, team.MemberIDs)
	}

	// Joining again is refused without detail.
	rec = doRequest(t, HandleJoinTeam, http.MethodPost, league.Home.ID, body, player.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := errorBody(t, rec); got != joinDeniedMessage {
		t.Fatalf("expected %q, got %q", joinDeniedMessage, got)
	}
}

func TestHandleJoinTeamLocksOutRepeatedFailures(t *testing.T) {
	database, league := setupTeamsTest(t)
	player := testutil.CreatePlayer(t, database)

	wrong := `{"inviteCode":"WRONG123"}`
	for i := 0; i < 2; i++ {
		rec := doRequest(t, HandleJoinTeam, http.MethodPost, league.Home.ID, wrong, player.Identity())
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected status %d, got %d", i+1, http.StatusBadRequest, rec.Code)
		}
	}

	right := fmt.Sprintf(`{"inviteCode":%q}`, league.Home.InviteCode)
	rec := doRequest(t, HandleJoinTeam, http.MethodPost, league.Home.ID, right, player.Identity())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	// Anonymous callers are not throttled; the rules refuse them.
	rec = doRequest(t, HandleJoinTeam, http.MethodPost, league.Home.ID, right, eligibility.Anonymous())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for anonymous, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleRegenerateInviteCode(t *testing.T) {
	_, league := setupTeamsTest(t)

	rec := doRequest(t, HandleRegenerateInviteCode, http.MethodPost, league.Home.ID, "", league.HomeCaptain.Identity())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp inviteCodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.InviteCode) != 8 || resp.InviteCode == league.Home.InviteCode {
		t.Fatalf("expected a fresh 8 character code, got %q", resp.InviteCode)
	}

	rec = doRequest(t, HandleRegenerateInviteCode, http.MethodPost, league.Home.ID, "", league.AwayCaptain.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := errorBody(t, rec); got != regenerateDeniedMessage {
		t.Fatalf("expected %q, got %q", regenerateDeniedMessage, got)
	}

	rec = doRequest(t, HandleRegenerateInviteCode, http.MethodPost, 9999, "", league.HomeCaptain.Identity())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleTeamDetail(t *testing.T) {
	_, league := setupTeamsTest(t)

	rec := doRequest(t, HandleTeamDetail, http.MethodGet, league.Home.ID, "", league.HomeCaptain.Identity())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if team := decodeTeam(t, rec); team.InviteCode != league.Home.InviteCode {
		t.Fatalf("expected captain to see invite code, got %q", team.InviteCode)
	}

	rec = doRequest(t, HandleTeamDetail, http.MethodGet, league.Home.ID, "", eligibility.Anonymous())
	if team := decodeTeam(t, rec); team.InviteCode != "" {
		t.Fatalf("expected invite code hidden, got %q", team.InviteCode)
	}

	rec = doRequest(t, HandleTeamDetail, http.MethodGet, 9999, "", eligibility.Anonymous())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
