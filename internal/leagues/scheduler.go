package leagues

import (
	"errors"
	"time"

	dbgen "github.com/buzzleague/buzz/internal/db/generated"
)

type ScheduledMatch struct {
	CircuitID int64
	Round     int
	HomeTeam  dbgen.Team
	// AwayTeam is nil when HomeTeam has a bye this round.
	AwayTeam  *dbgen.Team
	StartTime *time.Time
}

type ScheduleOptions struct {
	// FirstRound is the start time of round 1. Zero leaves matches unscheduled.
	FirstRound    time.Time
	RoundInterval time.Duration
}

// GenerateCircuitSchedule pairs every team in the circuit with every other
// team once. With an odd number of teams, each team sits out one round and
// that bye is returned as a match without an away team.
func GenerateCircuitSchedule(circuitID int64, teams []dbgen.Team, opts ScheduleOptions) ([]ScheduledMatch, error) {
	if circuitID <= 0 {
		return nil, errors.New("circuit ID is required")
	}
	if len(teams) < 2 {
		return nil, errors.New("at least two teams are required")
	}
	if !opts.FirstRound.IsZero() && opts.RoundInterval <= 0 {
		return nil, errors.New("round interval must be positive")
	}
	seen := make(map[int64]struct{}, len(teams))
	for _, team := range teams {
		if team.CircuitID != circuitID {
			return nil, errors.New("every team must belong to the circuit")
		}
		if _, dup := seen[team.ID]; dup {
			return nil, errors.New("teams must be distinct")
		}
		seen[team.ID] = struct{}{}
	}

	pairs := buildRoundRobinPairs(teams)
	schedule := make([]ScheduledMatch, 0, len(pairs))
	for _, pairing := range pairs {
		match := ScheduledMatch{
			CircuitID: circuitID,
			Round:     pairing.Round,
			HomeTeam:  pairing.HomeTeam,
			AwayTeam:  pairing.AwayTeam,
		}
		if !opts.FirstRound.IsZero() {
			start := opts.FirstRound.Add(time.Duration(pairing.Round-1) * opts.RoundInterval).UTC()
			match.StartTime = &start
		}
		schedule = append(schedule, match)
	}
	return schedule, nil
}

type roundPair struct {
	Round    int
	HomeTeam dbgen.Team
	AwayTeam *dbgen.Team
}

func buildRoundRobinPairs(teams []dbgen.Team) []roundPair {
	working := make([]*dbgen.Team, 0, len(teams)+1)
	for i := range teams {
		working = append(working, &teams[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil)
	}

	rounds := len(working) - 1
	pairs := make([]roundPair, 0, rounds*len(working)/2)

	for round := 0; round < rounds; round++ {
		for i := 0; i < len(working)/2; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			switch {
			case left == nil:
				pairs = append(pairs, roundPair{Round: round + 1, HomeTeam: *right})
				continue
			case right == nil:
				pairs = append(pairs, roundPair{Round: round + 1, HomeTeam: *left})
				continue
			}
			home, away := left, right
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, roundPair{
				Round:    round + 1,
				HomeTeam: *home,
				AwayTeam: away,
			})
		}
		rotateTeams(working)
	}

	return pairs
}

func rotateTeams(teams []*dbgen.Team) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}
