package brackets

import (
	"fmt"
	"sort"
	"time"

	"github.com/otalvarodev/liga-live/models"
)

// Fixture is one generated pairing before persistence.
type Fixture struct {
	Team1   models.TeamRef
	Team2   models.TeamRef
	Kickoff time.Time
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{}
}

// Generate produces every unordered pair exactly once: n*(n-1)/2 fixtures in
// the deterministic order of a double loop (i < j) over the alphabetically
// sorted roster, kickoffs spaced by interval starting at kickoff.
func (g *RoundRobinGenerator) Generate(teams []models.TeamRef, kickoff time.Time, interval time.Duration) ([]Fixture, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("not enough teams for round robin (found %d, min 2 required)", len(teams))
	}

	roster := make([]models.TeamRef, len(teams))
	copy(roster, teams)
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].Name != roster[j].Name {
			return roster[i].Name < roster[j].Name
		}
		return roster[i].ID < roster[j].ID
	})

	fixtures := make([]Fixture, 0, len(roster)*(len(roster)-1)/2)
	next := kickoff
	for i := 0; i < len(roster); i++ {
		for j := i + 1; j < len(roster); j++ {
			fixtures = append(fixtures, Fixture{
				Team1:   roster[i],
				Team2:   roster[j],
				Kickoff: next,
			})
			next = next.Add(interval)
		}
	}
	return fixtures, nil
}
