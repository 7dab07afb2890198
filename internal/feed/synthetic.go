// Package feed produces the match-event stream the pipeline consumes, either
// synthesized locally or pulled from an external sports API.
package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/quant-trader/internal/models"
)

// Source streams match events into a channel until the context is cancelled
type Source interface {
	// Stream sends events to out, returning when ctx is done or the source
	// is exhausted
	Stream(ctx context.Context, out chan<- models.MatchEvent) error
}

// Fixture describes one match the synthetic source simulates
type Fixture struct {
	MatchID  string
	TeamHome string
	TeamAway string
	League   string
}

// SampleFixtures returns the default simulated match roster
func SampleFixtures() []Fixture {
	return []Fixture{
		{MatchID: "epl_match_001", TeamHome: "Arsenal", TeamAway: "Chelsea", League: "Premier League"},
		{MatchID: "epl_match_002", TeamHome: "Manchester City", TeamAway: "Liverpool", League: "Premier League"},
		{MatchID: "laliga_match_001", TeamHome: "Real Madrid", TeamAway: "Barcelona", League: "La Liga"},
	}
}

// matchState tracks the simulated progression of one fixture
type matchState struct {
	status models.MatchStatus
	minute int
	score  models.Score
}

// SyntheticSource generates a plausible live event stream for a fixture
// roster: kickoffs, goals (2% per tick), cards (3% per tick, 80% yellow),
// half time and full time. Every simulated minute consumes a rate-limiter
// slot, so the match clock advances at eventsPerSecond ticks regardless of
// how many ticks produce an event.
type SyntheticSource struct {
	mu       sync.Mutex
	fixtures []Fixture
	states   map[string]*matchState
	limiter  *rate.Limiter
	rng      *rand.Rand
	season   string
	logger   *logrus.Logger
}

// NewSyntheticSource creates a synthetic source emitting at most
// eventsPerSecond events
func NewSyntheticSource(fixtures []Fixture, eventsPerSecond float64, logger *logrus.Logger) *SyntheticSource {
	if len(fixtures) == 0 {
		fixtures = SampleFixtures()
	}
	return &SyntheticSource{
		fixtures: fixtures,
		states:   make(map[string]*matchState),
		limiter:  rate.NewLimiter(rate.Limit(eventsPerSecond), 1),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		season:   "2024-25",
		logger:   logger,
	}
}

// Stream cycles the fixture roster, advancing each live match one minute per
// visit, until every match has finished or the context is cancelled
func (s *SyntheticSource) Stream(ctx context.Context, out chan<- models.MatchEvent) error {
	s.logger.WithField("fixtures", len(s.fixtures)).Info("Starting synthetic event feed")

	for {
		active := false
		for _, fixture := range s.fixtures {
			if s.state(fixture.MatchID).status == models.StatusFinished {
				continue
			}
			active = true

			// Pace the simulated clock itself, not just emissions, so
			// silent minutes do not advance at CPU speed
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}

			event, ok := s.nextEvent(fixture)
			if !ok {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if !active {
			s.logger.Info("All simulated matches finished, feed exhausted")
			return nil
		}
	}
}

func (s *SyntheticSource) state(matchID string) *matchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[matchID]
	if !ok {
		st = &matchState{status: models.StatusScheduled}
		s.states[matchID] = st
	}
	return st
}

// nextEvent advances one fixture by a minute and possibly emits an event
func (s *SyntheticSource) nextEvent(fixture Fixture) (models.MatchEvent, bool) {
	st := s.state(fixture.MatchID)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch st.status {
	case models.StatusFinished:
		return models.MatchEvent{}, false

	case models.StatusScheduled:
		st.status = models.StatusLive
		event := models.NewMatchEvent(fixture.MatchID,
			models.EventDetail{Kind: models.EventMatchStart},
			fixture.TeamHome, fixture.TeamAway, fixture.League, s.season).
			WithStatus(models.StatusLive)
		return event, true
	}

	st.minute++

	if st.minute >= 90 {
		st.status = models.StatusFinished
		event := models.NewMatchEvent(fixture.MatchID,
			models.EventDetail{Kind: models.EventFullTime, Minute: 90},
			fixture.TeamHome, fixture.TeamAway, fixture.League, s.season).
			WithStatus(models.StatusFinished).
			WithScore(st.score)
		return event, true
	}

	if st.minute == 45 {
		event := models.NewMatchEvent(fixture.MatchID,
			models.EventDetail{Kind: models.EventHalfTime, Minute: 45},
			fixture.TeamHome, fixture.TeamAway, fixture.League, s.season).
			WithStatus(models.StatusHalfTime).
			WithScore(st.score)
		return event, true
	}

	roll := s.rng.Float64()
	switch {
	case roll < 0.02:
		team := fixture.TeamHome
		if s.rng.Float64() < 0.5 {
			team = fixture.TeamAway
		}
		if team == fixture.TeamHome {
			st.score.Home++
		} else {
			st.score.Away++
		}
		event := models.NewMatchEvent(fixture.MatchID,
			models.EventDetail{
				Kind:   models.EventGoal,
				Team:   team,
				Player: s.randomPlayer(),
				Minute: st.minute,
			},
			fixture.TeamHome, fixture.TeamAway, fixture.League, s.season).
			WithStatus(models.StatusLive).
			WithScore(st.score)
		return event, true

	case roll < 0.05:
		team := fixture.TeamHome
		if s.rng.Float64() < 0.5 {
			team = fixture.TeamAway
		}
		card := models.CardYellow
		if s.rng.Float64() >= 0.8 {
			card = models.CardRed
		}
		event := models.NewMatchEvent(fixture.MatchID,
			models.EventDetail{
				Kind:   models.EventCard,
				Team:   team,
				Player: s.randomPlayer(),
				Card:   card,
				Minute: st.minute,
			},
			fixture.TeamHome, fixture.TeamAway, fixture.League, s.season).
			WithStatus(models.StatusLive).
			WithScore(st.score)
		return event, true
	}

	return models.MatchEvent{}, false
}

func (s *SyntheticSource) randomPlayer() string {
	return fmt.Sprintf("Player%d", s.rng.Intn(23)+1)
}

// ActiveMatches returns the ids of matches not yet finished
func (s *SyntheticSource) ActiveMatches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, st := range s.states {
		if st.status != models.StatusFinished {
			ids = append(ids, id)
		}
	}
	return ids
}
