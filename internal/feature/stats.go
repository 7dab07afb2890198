// Package feature converts match events into numeric feature vectors,
// maintaining per-team running statistics and per-match situational context.
package feature

import (
	"math"
	"sync"
)

const (
	eloSeed         = 1500.0
	eloKFactor      = 32.0
	formWindow      = 10
	minStrength     = 0.1
	maxStrength     = 3.0
	avgGoalsPerTeam = 1.35
)

// TeamStats holds the running season statistics for one team. Entries guard
// themselves so updates to unrelated teams never contend.
type TeamStats struct {
	mu sync.Mutex

	Team            string
	MatchesPlayed   int
	GoalsFor        int
	GoalsAgainst    int
	Elo             float64
	AttackStrength  float64
	DefenseStrength float64
	Form            []bool
	Yellows         int
	Reds            int
}

func newTeamStats(team string) *TeamStats {
	return &TeamStats{
		Team:            team,
		Elo:             eloSeed,
		AttackStrength:  1.0,
		DefenseStrength: 1.0,
		Form:            make([]bool, 0, formWindow),
	}
}

// RecordResult folds one finished match into the team's statistics: cumulative
// goals, Elo via the logistic expected-score formula, attack/defense strength
// from raw scoring rates, and the bounded form window.
func (ts *TeamStats) RecordResult(goalsFor, goalsAgainst int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.MatchesPlayed++
	ts.GoalsFor += goalsFor
	ts.GoalsAgainst += goalsAgainst

	won := goalsFor > goalsAgainst
	actual := 0.0
	switch {
	case won:
		actual = 1.0
	case goalsFor == goalsAgainst:
		actual = 0.5
	}

	// Expected score against a league-baseline opponent
	expected := 1.0 / (1.0 + math.Pow(10, (eloSeed-ts.Elo)/400.0))
	ts.Elo += eloKFactor * (actual - expected)

	matches := float64(ts.MatchesPlayed)
	ts.AttackStrength = clampStrength((float64(ts.GoalsFor) / matches) / avgGoalsPerTeam)
	ts.DefenseStrength = clampStrength((float64(ts.GoalsAgainst) / matches) / avgGoalsPerTeam)

	ts.Form = append(ts.Form, won)
	if len(ts.Form) > formWindow {
		ts.Form = ts.Form[len(ts.Form)-formWindow:]
	}
}

// RecordCard tallies a disciplinary card against the team
func (ts *TeamStats) RecordCard(red bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if red {
		ts.Reds++
	} else {
		ts.Yellows++
	}
}

// FormScore weights recent results higher: the most recent result carries
// weight 1/1, the next 1/2, and so on across the window.
func (ts *TeamStats) FormScore() float64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if len(ts.Form) == 0 {
		return 0.5
	}
	score := 0.0
	totalWeight := 0.0
	for rank := 0; rank < len(ts.Form); rank++ {
		// rank 0 is the most recent result
		weight := 1.0 / float64(rank+1)
		totalWeight += weight
		if ts.Form[len(ts.Form)-1-rank] {
			score += weight
		}
	}
	return score / totalWeight
}

// DisciplineTally returns yellows + 2x reds
func (ts *TeamStats) DisciplineTally() float64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return float64(ts.Yellows) + 2.0*float64(ts.Reds)
}

// Snapshot returns a consistent copy of the mutable numeric fields
func (ts *TeamStats) Snapshot() (elo, attack, defense float64) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.Elo, ts.AttackStrength, ts.DefenseStrength
}

func clampStrength(v float64) float64 {
	if v < minStrength {
		return minStrength
	}
	if v > maxStrength {
		return maxStrength
	}
	return v
}

// teamStore is a concurrent map of team statistics with lazy creation
type teamStore struct {
	mu    sync.RWMutex
	teams map[string]*TeamStats
}

func newTeamStore() *teamStore {
	return &teamStore{teams: make(map[string]*TeamStats)}
}

func (s *teamStore) get(team string) *TeamStats {
	s.mu.RLock()
	ts, ok := s.teams[team]
	s.mu.RUnlock()
	if ok {
		return ts
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ts, ok := s.teams[team]; ok {
		return ts
	}
	ts = newTeamStats(team)
	s.teams[team] = ts
	return ts
}
