package matches

import (
	"errors"
	"testing"
)

func TestParseSetLog(t *testing.T) {
	body := `{"games": [
		{"map": "map_helix", "winner": "Blue", "win_condition": "military", "duration": 245},
		{"map": "map_pod", "winner": "gold", "win_condition": "snail", "duration": 301},
		{"map": "MAP_SPIRE", "winner": "blue", "win_condition": "berries"}
	]}`

	records, err := ParseSetLog(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 games, got %d", len(records))
	}

	want := []GameRecord{
		{Number: 1, Map: "Helix Temple", WinCondition: "military", WinnerColor: "blue", DurationSeconds: 245},
		{Number: 2, Map: "The Pod", WinCondition: "snail", WinnerColor: "gold", DurationSeconds: 301},
		{Number: 3, Map: "Spire", WinCondition: "economic", WinnerColor: "blue"},
	}
	for i := range want {
		if records[i] != want[i] {
			t.Fatalf("game %d: expected %+v, got %+v", i+1, want[i], records[i])
		}
	}
}

func TestParseSetLogRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":          `games: yes`,
		"no games":          `{"sets": []}`,
		"games not array":   `{"games": {"map": "map_day"}}`,
		"unknown map":       `{"games": [{"map": "map_moon", "winner": "blue", "win_condition": "military"}]}`,
		"unknown condition": `{"games": [{"map": "map_day", "winner": "blue", "win_condition": "forfeit"}]}`,
		"missing winner":    `{"games": [{"map": "map_day", "win_condition": "military"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSetLog(body); !errors.Is(err, errMalformedLog) {
				t.Fatalf("expected malformed log error, got %v", err)
			}
		})
	}
}

func TestParseSetLogEmptyGames(t *testing.T) {
	records, err := ParseSetLog(`{"games": []}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no games, got %d", len(records))
	}
}
