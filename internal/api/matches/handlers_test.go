package matches

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
	"github.com/buzzleague/buzz/internal/config"
	"github.com/buzzleague/buzz/internal/db"
	"github.com/buzzleague/buzz/internal/eligibility"
	"github.com/buzzleague/buzz/internal/matches"
	"github.com/buzzleague/buzz/internal/testutil"
)

var testNow = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func setupMatchesTest(t *testing.T) (*db.DB, testutil.League) {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc, err := matches.NewService(database, config.DefaultRules(), clockwork.NewFakeClockAt(testNow))
	if err != nil {
		t.Fatalf("new match service: %v", err)
	}
	InitHandlers(svc)
	t.Cleanup(func() {
		service = nil
	})

	return database, testutil.CreateLeague(t, database, testutil.OpenSeason())
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, pathID int64, body string, id eligibility.Identity) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if pathID != 0 {
		req.SetPathValue("id", fmt.Sprintf("%d", pathID))
	}
	req = req.WithContext(authz.ContextWithIdentity(req.Context(), id))

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
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

func resultBody(league testutil.League, matchID int64, sets int) string {
	var parts []string
	for i := 0; i < sets; i++ {
		parts = append(parts, fmt.Sprintf(`{"winnerId":%d,"loserId":%d}`, league.Home.ID, league.Away.ID))
	}
	return fmt.Sprintf(`{"matchId":%d,"winnerId":%d,"loserId":%d,"sets":[%s],"notes":" close one "}`,
		matchID, league.Home.ID, league.Away.ID, strings.Join(parts, ","))
}

func TestHandleCreateMatch(t *testing.T) {
	database, league := setupMatchesTest(t)
	svc := testutil.ServiceIdentity(t, database)

	body := fmt.Sprintf(`{"homeId":%d,"awayId":%d,"startTime":"2026-03-15T18:00:00-05:00"}`, league.Home.ID, league.Away.ID)
	rec := doRequest(t, HandleCreateMatch, http.MethodPost, "/api/v1/matches", 0, body, svc)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var match matches.Match
	if err := json.NewDecoder(rec.Body).Decode(&match); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	if match.CircuitID != league.CircuitID || match.AwayID == nil || *match.AwayID != league.Away.ID {
		t.Fatalf("unexpected match %+v", match)
	}
	want := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	if match.StartTime == nil || !match.StartTime.Equal(want) {
		t.Fatalf("expected start %s, got %v", want, match.StartTime)
	}
}

func TestHandleCreateMatchDenials(t *testing.T) {
	database, league := setupMatchesTest(t)
	svc := testutil.ServiceIdentity(t, database)

	body := fmt.Sprintf(`{"homeId":%d,"awayId":%d}`, league.Home.ID, league.Away.ID)
	rec := doRequest(t, HandleCreateMatch, http.MethodPost, "/api/v1/matches", 0, body, league.HomeCaptain.Identity())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if got := errorBody(t, rec); got != eligibility.ReasonCreateMatchService {
		t.Fatalf("expected reason %q, got %q", eligibility.ReasonCreateMatchService, got)
	}

	same := fmt.Sprintf(`{"homeId":%d,"awayId":%d}`, league.Home.ID, league.Home.ID)
	rec = doRequest(t, HandleCreateMatch, http.MethodPost, "/api/v1/matches", 0, same, svc)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	badTime := fmt.Sprintf(`{"homeId":%d,"startTime":"tomorrow"}`, league.Home.ID)
	rec = doRequest(t, HandleCreateMatch, http.MethodPost, "/api/v1/matches", 0, badTime, svc)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleUpcomingMatches(t *testing.T) {
	database, league := setupMatchesTest(t)
	svc := testutil.ServiceIdentity(t, database)

	soon := testNow.Add(10 * time.Minute)
	later := testNow.Add(3 * time.Hour)
	soonID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, &soon)
	testutil.CreateMatch(t, database, league.CircuitID, league.Away.ID, league.Home.ID, &later)

	rec := doRequest(t, HandleUpcomingMatches, http.MethodGet, "/api/v1/matches?starts_within_minutes=30", 0, "", svc)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp struct {
		Matches []matches.Match `json:"matches"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].ID != soonID {
		t.Fatalf("expected only match %d, got %+v", soonID, resp.Matches)
	}

	tests := []struct {
		name   string
		target string
		id     eligibility.Identity
		status int
	}{
		{name: "anonymous", target: "/api/v1/matches", id: eligibility.Anonymous(), status: http.StatusUnauthorized},
		{name: "captain", target: "/api/v1/matches", id: league.HomeCaptain.Identity(), status: http.StatusForbidden},
		{name: "negative window", target: "/api/v1/matches?starts_within_minutes=-5", id: svc, status: http.StatusBadRequest},
		{name: "huge window", target: "/api/v1/matches?starts_within_minutes=999999", id: svc, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, HandleUpcomingMatches, http.MethodGet, tt.target, 0, "", tt.id)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHandleUpdateSchedule(t *testing.T) {
	database, league := setupMatchesTest(t)
	matchID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)
	caster := testutil.CreateCaster(t, database, testutil.CreatePlayer(t, database).ID)

	body := fmt.Sprintf(`{"startTime":"2026-03-20T01:00:00Z","primaryCasterId":%d}`, caster)
	rec := doRequest(t, HandleUpdateSchedule, http.MethodPatch, "/", matchID, body, league.AwayCaptain.Identity())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var match matches.Match
	if err := json.NewDecoder(rec.Body).Decode(&match); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	if !match.Scheduled || match.PrimaryCasterID == nil || *match.PrimaryCasterID != caster {
		t.Fatalf("unexpected match %+v", match)
	}

	rec = doRequest(t, HandleUpdateSchedule, http.MethodPatch, "/", matchID, `{"startTime":null}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	match = matches.Match{}
	if err := json.NewDecoder(rec.Body).Decode(&match); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	if match.Scheduled || match.StartTime != nil {
		t.Fatalf("expected start time cleared, got %+v", match)
	}
	if match.PrimaryCasterID == nil || *match.PrimaryCasterID != caster {
		t.Fatalf("expected caster kept, got %v", match.PrimaryCasterID)
	}
}

func TestHandleUpdateScheduleDenials(t *testing.T) {
	database, league := setupMatchesTest(t)
	matchID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)
	outsider := testutil.CreatePlayer(t, database)

	rec := doRequest(t, HandleUpdateSchedule, http.MethodPatch, "/", matchID, `{"startTime":null}`, outsider.Identity())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if got := errorBody(t, rec); got != eligibility.ReasonScheduleNotPermitted {
		t.Fatalf("expected reason %q, got %q", eligibility.ReasonScheduleNotPermitted, got)
	}

	rec = doRequest(t, HandleUpdateSchedule, http.MethodPatch, "/", matchID, `{"primaryCasterId":"abc"}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doRequest(t, HandleUpdateSchedule, http.MethodPatch, "/", matchID, `{"primaryCasterId":4242}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for unknown caster, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doRequest(t, HandleUpdateSchedule, http.MethodPatch, "/", 9999, `{"startTime":null}`, league.HomeCaptain.Identity())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleSubmitResult(t *testing.T) {
	database, league := setupMatchesTest(t)
	matchID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)

	rec := doRequest(t, HandleSubmitResult, http.MethodPost, "/api/v1/results", 0, resultBody(league, matchID, 3), league.HomeCaptain.Identity())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var result matches.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.MatchID != matchID || result.Status != matches.StatusCompleted || len(result.Sets) != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	for i, set := range result.Sets {
		if set.Number != int64(i+1) {
			t.Fatalf("expected set %d numbered %d, got %d", i, i+1, set.Number)
		}
	}
	if result.Notes != "close one" {
		t.Fatalf("expected trimmed notes, got %q", result.Notes)
	}

	rec = doRequest(t, HandleResultDetail, http.MethodGet, "/", result.ID, "", eligibility.Anonymous())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doRequest(t, HandleSubmitResult, http.MethodPost, "/api/v1/results", 0, resultBody(league, matchID, 3), league.AwayCaptain.Identity())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := errorBody(t, rec); got != eligibility.ReasonSubmitResultExists {
		t.Fatalf("expected reason %q, got %q", eligibility.ReasonSubmitResultExists, got)
	}
}

func TestHandleSubmitResultDenials(t *testing.T) {
	database, league := setupMatchesTest(t)
	matchID := testutil.CreateMatch(t, database, league.CircuitID, league.Home.ID, league.Away.ID, nil)

	tests := []struct {
		name   string
		body   string
		id     eligibility.Identity
		status int
		reason string
	}{
		{
			name:   "anonymous",
			body:   resultBody(league, matchID, 3),
			id:     eligibility.Anonymous(),
			status: http.StatusBadRequest,
			reason: eligibility.ReasonSubmitSignIn,
		},
		{
			name:   "too few sets",
			body:   resultBody(league, matchID, 2),
			id:     league.HomeCaptain.Identity(),
			status: http.StatusBadRequest,
			reason: matches.MinSetsReason(3),
		},
		{
			name:   "too many sets",
			body:   resultBody(league, matchID, 6),
			id:     league.HomeCaptain.Identity(),
			status: http.StatusBadRequest,
			reason: matches.MaxSetsReason(5),
		},
		{
			name:   "unknown match",
			body:   resultBody(league, 9999, 3),
			id:     league.HomeCaptain.Identity(),
			status: http.StatusNotFound,
			reason: "Match not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, HandleSubmitResult, http.MethodPost, "/api/v1/results", 0, tt.body, tt.id)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if got := errorBody(t, rec); got != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got)
			}
		})
	}

	rec := doRequest(t, HandleResultDetail, http.MethodGet, "/", 9999, "", eligibility.Anonymous())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
