package leagues

import (
	"context"
	"errors"
	"fmt"
	"sort"

	dbgen "github.com/buzzleague/buzz/internal/db/generated"
)

const statusDoubleForfeit = "DF"

type TeamStanding struct {
	TeamID          int64  `json:"teamId"`
	TeamName        string `json:"teamName"`
	MatchesPlayed   int    `json:"matchesPlayed"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	SetsWon         int    `json:"setsWon"`
	SetsLost        int    `json:"setsLost"`
	SetDifferential int    `json:"setDifferential"`
}

type teamStats struct {
	TeamStanding
	headToHeadWins    map[int64]int
	headToHeadSetDiff map[int64]int
}

// CalculateStandings ranks the teams of a circuit by match wins. Ties are
// broken by wins against the other tied teams, then overall set
// differential, then set differential against the tied teams, then name.
// A double forfeit counts as a loss for both teams.
func CalculateStandings(ctx context.Context, q *dbgen.Queries, circuitID int64) ([]TeamStanding, error) {
	if q == nil {
		return nil, errors.New("queries are required")
	}
	if circuitID <= 0 {
		return nil, errors.New("circuit ID is required")
	}

	teamRows, err := q.ListTeamsByCircuit(ctx, circuitID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	results, err := q.ListCircuitResults(ctx, circuitID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	sets, err := q.ListCircuitSets(ctx, circuitID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	teams := make(map[int64]*teamStats, len(teamRows))
	for _, row := range teamRows {
		teams[row.ID] = &teamStats{
			TeamStanding:      TeamStanding{TeamID: row.ID, TeamName: row.Name},
			headToHeadWins:    make(map[int64]int),
			headToHeadSetDiff: make(map[int64]int),
		}
	}

	for _, result := range results {
		winner, loser := teams[result.WinnerID], teams[result.LoserID]
		if winner == nil || loser == nil {
			return nil, fmt.Errorf("result %d references a team outside circuit %d", result.ID, circuitID)
		}
		winner.MatchesPlayed++
		loser.MatchesPlayed++
		loser.Losses++
		if result.Status == statusDoubleForfeit {
			winner.Losses++
			continue
		}
		winner.Wins++
		winner.headToHeadWins[loser.TeamID]++
	}

	for _, set := range sets {
		winner, loser := teams[set.WinnerID], teams[set.LoserID]
		if winner == nil || loser == nil {
			return nil, fmt.Errorf("result %d has a set outside circuit %d", set.ResultID, circuitID)
		}
		winner.SetsWon++
		loser.SetsLost++
		winner.headToHeadSetDiff[loser.TeamID]++
		loser.headToHeadSetDiff[winner.TeamID]--
	}

	ordered := make([]*teamStats, 0, len(teams))
	for _, team := range teams {
		team.SetDifferential = team.SetsWon - team.SetsLost
		ordered = append(ordered, team)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Wins != ordered[j].Wins {
			return ordered[i].Wins > ordered[j].Wins
		}
		return ordered[i].TeamName < ordered[j].TeamName
	})

	sortStandingsByTiebreakers(ordered)

	standings := make([]TeamStanding, 0, len(ordered))
	for _, team := range ordered {
		standings = append(standings, team.TeamStanding)
	}
	return standings, nil
}

func sortStandingsByTiebreakers(ordered []*teamStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Wins == ordered[start].Wins {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[int64]struct{}, len(group))
			for _, team := range group {
				groupSet[team.TeamID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				winsI := sumWithin(group[i].headToHeadWins, groupSet)
				winsJ := sumWithin(group[j].headToHeadWins, groupSet)
				if winsI != winsJ {
					return winsI > winsJ
				}
				if group[i].SetDifferential != group[j].SetDifferential {
					return group[i].SetDifferential > group[j].SetDifferential
				}
				diffI := sumWithin(group[i].headToHeadSetDiff, groupSet)
				diffJ := sumWithin(group[j].headToHeadSetDiff, groupSet)
				if diffI != diffJ {
					return diffI > diffJ
				}
				return group[i].TeamName < group[j].TeamName
			})
		}

		start = end
	}
}

func sumWithin(byOpponent map[int64]int, group map[int64]struct{}) int {
	total := 0
	for opponentID, value := range byOpponent {
		if _, ok := group[opponentID]; ok {
			total += value
		}
	}
	return total
}
