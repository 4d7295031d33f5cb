package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankQualifiersByPointsThenGoalDiffThenGoalsFor(t *testing.T) {
	qualifiers := []Qualifier{
		{TeamID: 4, GroupLabel: "B", Points: 3, GoalDifference: -1, GoalsFor: 2},
		{TeamID: 2, GroupLabel: "B", Points: 9, GoalDifference: 2, GoalsFor: 8},
		{TeamID: 1, GroupLabel: "A", Points: 9, GoalDifference: 5, GoalsFor: 10},
		{TeamID: 3, GroupLabel: "A", Points: 6, GoalDifference: 1, GoalsFor: 5},
	}

	ranked := RankQualifiers(qualifiers)
	ids := []int{ranked[0].TeamID, ranked[1].TeamID, ranked[2].TeamID, ranked[3].TeamID}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestRankQualifiersStableOnFullTie(t *testing.T) {
	// Identical records keep their standings order.
	qualifiers := []Qualifier{
		{TeamID: 10, Points: 6, GoalDifference: 2, GoalsFor: 4},
		{TeamID: 20, Points: 6, GoalDifference: 2, GoalsFor: 4},
		{TeamID: 30, Points: 6, GoalDifference: 2, GoalsFor: 4},
	}
	ranked := RankQualifiers(qualifiers)
	assert.Equal(t, 10, ranked[0].TeamID)
	assert.Equal(t, 20, ranked[1].TeamID)
	assert.Equal(t, 30, ranked[2].TeamID)
}

func TestRankQualifiersGoalsForBreaksGoalDiffTie(t *testing.T) {
	qualifiers := []Qualifier{
		{TeamID: 1, Points: 6, GoalDifference: 3, GoalsFor: 4},
		{TeamID: 2, Points: 6, GoalDifference: 3, GoalsFor: 7},
	}
	ranked := RankQualifiers(qualifiers)
	assert.Equal(t, 2, ranked[0].TeamID)
}

func TestPairSemifinalsCrossBracket(t *testing.T) {
	ranked := []Qualifier{
		{TeamID: 1}, {TeamID: 2}, {TeamID: 3}, {TeamID: 4},
	}
	semis, err := PairSemifinals(ranked)
	require.NoError(t, err)

	assert.Equal(t, "SF1", semis[0].SeedCode)
	assert.Equal(t, 1, semis[0].Home.TeamID)
	assert.Equal(t, 4, semis[0].Away.TeamID)

	assert.Equal(t, "SF2", semis[1].SeedCode)
	assert.Equal(t, 2, semis[1].Home.TeamID)
	assert.Equal(t, 3, semis[1].Away.TeamID)
}

func TestPairSemifinalsRequiresFour(t *testing.T) {
	_, err := PairSemifinals([]Qualifier{{TeamID: 1}, {TeamID: 2}, {TeamID: 3}})
	assert.Error(t, err)
}
