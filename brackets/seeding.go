package brackets

import (
	"fmt"
	"sort"
)

// Qualifier is a team that survived the group stage, carrying the criteria
// used for tournament-wide re-ranking.
type Qualifier struct {
	TeamID         int
	GroupLabel     string
	Points         int
	GoalDifference int
	GoalsFor       int
}

// Semifinal pairs seed positions across the bracket so the top two teams
// cannot meet before the final.
type Semifinal struct {
	SeedCode string
	Home     Qualifier
	Away     Qualifier
}

// RankQualifiers orders the qualified set by points, then goal difference,
// then goals scored, each criterion descending. The sort is stable: any tie
// remaining after all three keeps the input's relative order.
func RankQualifiers(qualifiers []Qualifier) []Qualifier {
	ranked := make([]Qualifier, len(qualifiers))
	copy(ranked, qualifiers)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		if ranked[i].GoalDifference != ranked[j].GoalDifference {
			return ranked[i].GoalDifference > ranked[j].GoalDifference
		}
		return ranked[i].GoalsFor > ranked[j].GoalsFor
	})
	return ranked
}

// PairSemifinals builds the two semifinals from a four-team ranked set:
// seed 1 plays seed 4, seed 2 plays seed 3.
func PairSemifinals(ranked []Qualifier) ([2]Semifinal, error) {
	if len(ranked) < 4 {
		return [2]Semifinal{}, fmt.Errorf("need 4 ranked qualifiers, got %d", len(ranked))
	}
	return [2]Semifinal{
		{SeedCode: "SF1", Home: ranked[0], Away: ranked[3]},
		{SeedCode: "SF2", Home: ranked[1], Away: ranked[2]},
	}, nil
}
