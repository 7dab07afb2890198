package feature

import (
	"sync"

	"github.com/yourusername/quant-trader/internal/models"
)

const (
	momentumShift = 0.3
	goalIntensity = 0.2
	cardIntensity = 0.1
	momentumDecay = 0.1
)

// MatchContext tracks the in-play situation of one match. Entries guard
// themselves so unrelated matches never contend.
type MatchContext struct {
	mu sync.Mutex

	MatchID        string
	Minute         int
	HomeScore      int
	AwayScore      int
	Momentum       float64
	Intensity      float64
	LastGoalMinute int
	LastGoalTeam   string
	HomeYellows    int
	HomeReds       int
	AwayYellows    int
	AwayReds       int
}

func newMatchContext(matchID string) *MatchContext {
	return &MatchContext{MatchID: matchID}
}

// Apply folds one event into the match context. Goals shift momentum toward
// the scoring side and raise intensity; cards raise intensity only. Momentum
// then decays in proportion to how far the match has progressed.
func (mc *MatchContext) Apply(event *models.MatchEvent) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	detail := event.Detail
	if detail.Minute > 0 {
		mc.Minute = detail.Minute
	}

	switch detail.Kind {
	case models.EventGoal:
		if detail.Team == event.TeamHome {
			mc.HomeScore++
			mc.Momentum = clampMomentum(mc.Momentum + momentumShift)
		} else {
			mc.AwayScore++
			mc.Momentum = clampMomentum(mc.Momentum - momentumShift)
		}
		mc.LastGoalMinute = detail.Minute
		mc.LastGoalTeam = detail.Team
		mc.Intensity = clampIntensity(mc.Intensity + goalIntensity)
	case models.EventCard:
		if detail.Team == event.TeamHome {
			if detail.Card == models.CardRed {
				mc.HomeReds++
			} else {
				mc.HomeYellows++
			}
		} else {
			if detail.Card == models.CardRed {
				mc.AwayReds++
			} else {
				mc.AwayYellows++
			}
		}
		mc.Intensity = clampIntensity(mc.Intensity + cardIntensity)
	case models.EventHalfTime:
		mc.Minute = 45
	case models.EventFullTime, models.EventMatchEnd:
		mc.Minute = 90
	}

	if event.Score != nil {
		mc.HomeScore = event.Score.Home
		mc.AwayScore = event.Score.Away
	}

	// Momentum matters less as the match runs down
	mc.Momentum *= 1.0 - (float64(mc.Minute)/90.0)*momentumDecay
}

// snapshot returns a consistent copy of the context for feature assembly
func (mc *MatchContext) snapshot() MatchContext {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return MatchContext{
		MatchID:        mc.MatchID,
		Minute:         mc.Minute,
		HomeScore:      mc.HomeScore,
		AwayScore:      mc.AwayScore,
		Momentum:       mc.Momentum,
		Intensity:      mc.Intensity,
		LastGoalMinute: mc.LastGoalMinute,
		LastGoalTeam:   mc.LastGoalTeam,
		HomeYellows:    mc.HomeYellows,
		HomeReds:       mc.HomeReds,
		AwayYellows:    mc.AwayYellows,
		AwayReds:       mc.AwayReds,
	}
}

func clampMomentum(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampIntensity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// contextStore is a concurrent map of match contexts with lazy creation
type contextStore struct {
	mu      sync.RWMutex
	matches map[string]*MatchContext
}

func newContextStore() *contextStore {
	return &contextStore{matches: make(map[string]*MatchContext)}
}

func (s *contextStore) get(matchID string) *MatchContext {
	s.mu.RLock()
	mc, ok := s.matches[matchID]
	s.mu.RUnlock()
	if ok {
		return mc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if mc, ok := s.matches[matchID]; ok {
		return mc
	}
	mc = newMatchContext(matchID)
	s.matches[matchID] = mc
	return mc
}

func (s *contextStore) remove(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
}
