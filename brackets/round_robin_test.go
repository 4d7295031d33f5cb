package brackets

import (
	"testing"
	"time"

	"github.com/otalvarodev/liga-live/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinFourTeams(t *testing.T) {
	teams := []models.TeamRef{
		{ID: 3, Name: "Cobras"},
		{ID: 1, Name: "Aguilas"},
		{ID: 4, Name: "Dragones"},
		{ID: 2, Name: "Bufalos"},
	}
	kickoff := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	interval := 30 * time.Minute

	fixtures, err := NewRoundRobinGenerator().Generate(teams, kickoff, interval)
	require.NoError(t, err)
	require.Len(t, fixtures, 6)

	// Every unordered pair appears exactly once.
	seen := make(map[[2]int]int)
	for _, f := range fixtures {
		pair := [2]int{f.Team1.ID, f.Team2.ID}
		if pair[0] > pair[1] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		seen[pair]++
	}
	assert.Len(t, seen, 6)
	for pair, count := range seen {
		assert.Equalf(t, 1, count, "pair %v scheduled %d times", pair, count)
	}

	// Kickoffs strictly increase by the configured interval.
	for i, f := range fixtures {
		assert.Equal(t, kickoff.Add(time.Duration(i)*interval), f.Kickoff)
	}

	// Deterministic pairing order over the alphabetically sorted roster.
	assert.Equal(t, "Aguilas", fixtures[0].Team1.Name)
	assert.Equal(t, "Bufalos", fixtures[0].Team2.Name)
	assert.Equal(t, "Cobras", fixtures[5].Team1.Name)
	assert.Equal(t, "Dragones", fixtures[5].Team2.Name)
}

func TestRoundRobinPairCount(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8} {
		teams := make([]models.TeamRef, n)
		for i := range teams {
			teams[i] = models.TeamRef{ID: i + 1, Name: string(rune('A' + i))}
		}
		fixtures, err := NewRoundRobinGenerator().Generate(teams, time.Now(), time.Hour)
		require.NoError(t, err)
		assert.Lenf(t, fixtures, n*(n-1)/2, "%d teams", n)
	}
}

func TestRoundRobinTooFewTeams(t *testing.T) {
	_, err := NewRoundRobinGenerator().Generate([]models.TeamRef{{ID: 1, Name: "Solo"}}, time.Now(), time.Hour)
	assert.Error(t, err)

	_, err = NewRoundRobinGenerator().Generate(nil, time.Now(), time.Hour)
	assert.Error(t, err)
}

func TestRoundRobinDoesNotMutateInput(t *testing.T) {
	teams := []models.TeamRef{
		{ID: 2, Name: "Zorros"},
		{ID: 1, Name: "Aguilas"},
	}
	_, err := NewRoundRobinGenerator().Generate(teams, time.Now(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "Zorros", teams[0].Name)
}
