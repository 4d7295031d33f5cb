package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/otalvarodev/liga-live/models"
	"github.com/otalvarodev/liga-live/repositories"
)

// In-memory fakes for the repository interfaces. They honor the same
// contracts the postgres implementations do (copies out, guarded updates,
// no lost increments) without needing a database.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeMatchRepo struct {
	mu     sync.Mutex
	nextID int
	store  map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{store: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	match.ID = r.nextID
	match.CreatedAt = time.Now()
	match.UpdatedAt = match.CreatedAt
	stored := *match
	r.store[match.ID] = &stored
	return nil
}

func (r *fakeMatchRepo) get(id int) (*models.Match, error) {
	m, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakeMatchRepo) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakeMatchRepo) UpdateSchedule(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.store[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.MatchTime = match.MatchTime
	stored.GroupLabel = match.GroupLabel
	stored.UpdatedBy = match.UpdatedBy
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *fakeMatchRepo) TransitionStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.MatchStatus, period *int, updatedBy int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.store[id]
	if !ok {
		return false, repositories.ErrMatchNotFound
	}
	if stored.Status != from {
		return false, nil
	}
	stored.Status = to
	if period != nil {
		p := *period
		stored.Period = &p
	}
	stored.UpdatedBy = &updatedBy
	return true, nil
}

func (r *fakeMatchRepo) IncrementScore(_ context.Context, _ repositories.SQLExecutor, id int, side int, updatedBy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.store[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	switch side {
	case 1:
		stored.Score1++
	case 2:
		stored.Score2++
	default:
		return fmt.Errorf("invalid score side %d", side)
	}
	stored.UpdatedBy = &updatedBy
	return nil
}

func (r *fakeMatchRepo) SetScore(_ context.Context, _ repositories.SQLExecutor, id int, score1, score2, updatedBy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.store[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Score1 = score1
	stored.Score2 = score2
	stored.UpdatedBy = &updatedBy
	return nil
}

func (r *fakeMatchRepo) TeamBookedAt(_ context.Context, _ repositories.SQLExecutor, categoryID, teamID int, matchTime time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.store {
		if m.CategoryID == categoryID && m.MatchTime.Equal(matchTime) &&
			m.Status != models.MatchStatusCancelled &&
			(m.Team1ID == teamID || m.Team2ID == teamID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) ListByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, m := range r.store {
		if m.CategoryID == categoryID {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	return matches, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID int
	events []*models.MatchEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (r *fakeEventRepo) Insert(_ context.Context, _ repositories.SQLExecutor, event *models.MatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	event.CreatedAt = time.Now()
	stored := *event
	r.events = append(r.events, &stored)
	return nil
}

func (r *fakeEventRepo) detail(e *models.MatchEvent) *models.MatchEventDetail {
	return &models.MatchEventDetail{
		MatchEvent: *e,
		PlayerName: fmt.Sprintf("Player %d", e.PlayerID),
		TeamName:   fmt.Sprintf("Team %d", e.TeamID),
	}
}

func (r *fakeEventRepo) GetDetail(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchEventDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			return r.detail(e), nil
		}
	}
	return nil, repositories.ErrMatchEventNotFound
}

func (r *fakeEventRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.MatchEventDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	details := make([]*models.MatchEventDetail, 0)
	for _, e := range r.events {
		if e.MatchID == matchID {
			details = append(details, r.detail(e))
		}
	}
	return details, nil
}

func (r *fakeEventRepo) CountScoringByTeam(_ context.Context, _ repositories.SQLExecutor, matchID, teamID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.MatchID != matchID {
			continue
		}
		if (e.Kind == models.EventKindGoal && e.TeamID == teamID) ||
			(e.Kind == models.EventKindOwnGoal && e.TeamID != teamID) {
			count++
		}
	}
	return count, nil
}

type fakeBracketRepo struct {
	mu     sync.Mutex
	nextID int
	store  map[int]*models.Bracket
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{store: make(map[int]*models.Bracket)}
}

func (r *fakeBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	bracket.ID = r.nextID
	bracket.CreatedAt = time.Now()
	stored := *bracket
	r.store[bracket.ID] = &stored
	return nil
}

func (r *fakeBracketRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBracketRepo) ListByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) ([]*models.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*models.Bracket, 0)
	for id := 1; id <= r.nextID; id++ {
		if b, ok := r.store[id]; ok && b.CategoryID == categoryID {
			copied := *b
			entries = append(entries, &copied)
		}
	}
	return entries, nil
}

func (r *fakeBracketRepo) AssignTeams(_ context.Context, _ repositories.SQLExecutor, id int, team1ID, team2ID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.store[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	b.Team1ID = &team1ID
	b.Team2ID = &team2ID
	return nil
}

func (r *fakeBracketRepo) LinkMatch(_ context.Context, _ repositories.SQLExecutor, id int, matchID int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.store[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	b.MatchID = &matchID
	b.Status = status
	return nil
}

func (r *fakeBracketRepo) UpdateStatusByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.store {
		if b.MatchID != nil && *b.MatchID == matchID {
			b.Status = status
		}
	}
	return nil
}

func (r *fakeBracketRepo) DeleteByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.store {
		if b.CategoryID == categoryID {
			delete(r.store, id)
		}
	}
	return nil
}

type rosterKey struct {
	playerID, categoryID, teamID int
}

type fakeRosterRepo struct {
	mu          sync.Mutex
	eligible    map[rosterKey]bool
	careerGoals map[[2]int]int // player, category
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{
		eligible:    make(map[rosterKey]bool),
		careerGoals: make(map[[2]int]int),
	}
}

func (r *fakeRosterRepo) allow(playerID, categoryID, teamID int) {
	r.eligible[rosterKey{playerID, categoryID, teamID}] = true
}

func (r *fakeRosterRepo) IsPlayerEligible(_ context.Context, _ repositories.SQLExecutor, playerID, categoryID, teamID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eligible[rosterKey{playerID, categoryID, teamID}], nil
}

func (r *fakeRosterRepo) IncrementCareerGoals(_ context.Context, _ repositories.SQLExecutor, playerID, categoryID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.careerGoals[[2]int{playerID, categoryID}]++
	return nil
}

type fakeStandingRepo struct {
	mu             sync.Mutex
	recomputeCalls int
	table          []*models.Standing
	byGroup        map[string][]*models.Standing
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{byGroup: make(map[string][]*models.Standing)}
}

func (r *fakeStandingRepo) Recompute(_ context.Context, _ int) ([]*models.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputeCalls++
	return r.table, nil
}

func (r *fakeStandingRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, _ int, groupLabel string) ([]*models.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byGroup[groupLabel], nil
}

type fakeCategoryRepo struct {
	format string
	groups []string
}

func (r *fakeCategoryRepo) GetFormat(_ context.Context, _ repositories.SQLExecutor, _ int) (string, error) {
	return r.format, nil
}

func (r *fakeCategoryRepo) ListGroupLabels(_ context.Context, _ repositories.SQLExecutor, _ int) ([]string, error) {
	return r.groups, nil
}

type broadcastRecord struct {
	Topic string
	Event string
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	records []broadcastRecord
}

func (b *recordingBroadcaster) Publish(topic string, event string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, broadcastRecord{Topic: topic, Event: event})
}

func (b *recordingBroadcaster) has(topic, event string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.records {
		if rec.Topic == topic && rec.Event == event {
			return true
		}
	}
	return false
}
