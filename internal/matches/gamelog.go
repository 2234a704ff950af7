package matches

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var maps = map[string]string{
	"map_day":           "Day",
	"map_night":         "Night",
	"map_dusk":          "Dusk",
	"map_twilight":      "Twilight",
	"map_helix":         "Helix Temple",
	"map_helix_temple":  "Helix Temple",
	"map_pod":           "The Pod",
	"map_split_juniper": "Split Juniper",
	"map_nesting_flats": "Nesting Flats",
	"map_tally_fields":  "Tally Fields",
	"map_spire":         "Spire",
}

var winConditions = map[string]string{
	"military": "military",
	"economic": "economic",
	"berries":  "economic",
	"snail":    "snail",
}

// GameRecord is one game read from a set log.
type GameRecord struct {
	Number          int
	Map             string
	WinCondition    string
	WinnerColor     string
	DurationSeconds int64
}

var errMalformedLog = errors.New("malformed set log")

// ParseSetLog reads the games of a set from its uploaded log:
//
//	{"games": [{"map": "map_helix", "winner": "blue", "win_condition": "military", "duration": 245}]}
//
// Games are numbered in the order they appear.
func ParseSetLog(body string) ([]GameRecord, error) {
	if !gjson.Valid(body) {
		return nil, errMalformedLog
	}
	games := gjson.Get(body, "games")
	if !games.IsArray() {
		return nil, fmt.Errorf("%w: missing games array", errMalformedLog)
	}

	var records []GameRecord
	var parseErr error
	games.ForEach(func(_, game gjson.Result) bool {
		number := len(records) + 1
		mapName, ok := maps[strings.ToLower(game.Get("map").String())]
		if !ok {
			parseErr = fmt.Errorf("%w: game %d has unknown map %q", errMalformedLog, number, game.Get("map").String())
			return false
		}
		condition, ok := winConditions[strings.ToLower(game.Get("win_condition").String())]
		if !ok {
			parseErr = fmt.Errorf("%w: game %d has unknown win condition %q", errMalformedLog, number, game.Get("win_condition").String())
			return false
		}
		winner := strings.ToLower(strings.TrimSpace(game.Get("winner").String()))
		if winner == "" {
			parseErr = fmt.Errorf("%w: game %d has no winner", errMalformedLog, number)
			return false
		}
		records = append(records, GameRecord{
			Number:          number,
			Map:             mapName,
			WinCondition:    condition,
			WinnerColor:     winner,
			DurationSeconds: game.Get("duration").Int(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return records, nil
}
