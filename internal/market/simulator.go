// Package market synthesizes bookmaker-style odds for matches from their
// event streams.
package market

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/metrics"
	"github.com/yourusername/quant-trader/internal/models"
)

const (
	homeAdvantage   = 0.55
	noiseFactor     = 0.02
	redCardSeverity = 0.15
	yellowSeverity  = 0.02
	goalAdjustment  = 0.1

	defaultMinMargin = 0.02
	defaultMaxMargin = 0.08
)

// Simulator synthesizes and maintains bookmaker odds per match. It owns its
// own odds cache; consumers copy snapshots out, they never share references
// into it.
type Simulator struct {
	mu        sync.RWMutex
	margins   map[string]float64
	odds      map[string]models.SimpleMarketOdds
	minMargin float64
	maxMargin float64
	rng       *rand.Rand
	rngMu     sync.Mutex
	logger    *logrus.Logger
}

// NewSimulator creates a market simulator with an empty odds cache
func NewSimulator(minMargin, maxMargin float64, logger *logrus.Logger) *Simulator {
	if minMargin <= 0 || maxMargin <= minMargin {
		minMargin = defaultMinMargin
		maxMargin = defaultMaxMargin
	}
	return &Simulator{
		margins:   make(map[string]float64),
		odds:      make(map[string]models.SimpleMarketOdds),
		minMargin: minMargin,
		maxMargin: maxMargin,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logger,
	}
}

// GenerateMarketOdds derives a fresh odds snapshot for the event's match from
// league baselines, the event itself, and market noise, then caches it
func (s *Simulator) GenerateMarketOdds(event *models.MatchEvent) (models.SimpleMarketOdds, error) {
	homeProb, drawProb, awayProb := baseProbabilities(event.League)

	adjustForMatchState(event, &homeProb, &drawProb, &awayProb)

	// Small symmetric noise emulates market inefficiency
	s.rngMu.Lock()
	homeProb += s.rng.Float64()*2*noiseFactor - noiseFactor
	drawProb += s.rng.Float64()*2*noiseFactor - noiseFactor
	awayProb += s.rng.Float64()*2*noiseFactor - noiseFactor
	s.rngMu.Unlock()

	total := homeProb + drawProb + awayProb
	homeProb /= total
	drawProb /= total
	awayProb /= total

	margin := s.marginForMatch(event.MatchID)
	odds := models.SimpleMarketOddsFromProbabilities(homeProb, drawProb, awayProb, margin)

	s.mu.Lock()
	s.odds[event.MatchID] = odds
	s.mu.Unlock()

	metrics.RecordOddsGenerated()
	s.logger.WithFields(logrus.Fields{
		"match_id": event.MatchID,
		"home":     odds.HomeWin,
		"draw":     odds.Draw,
		"away":     odds.AwayWin,
	}).Debug("Generated market odds")

	return odds, nil
}

// UpdateOddsForEvent regenerates odds only on goals and cards, returning nil
// for every other event kind to avoid noisy regeneration on each tick
func (s *Simulator) UpdateOddsForEvent(event *models.MatchEvent) (*models.SimpleMarketOdds, error) {
	switch event.Detail.Kind {
	case models.EventGoal, models.EventCard:
		odds, err := s.GenerateMarketOdds(event)
		if err != nil {
			return nil, err
		}
		return &odds, nil
	default:
		return nil, nil
	}
}

// GetCurrentOdds returns the cached odds snapshot for a match, false if the
// match has no odds yet
func (s *Simulator) GetCurrentOdds(matchID string) (models.SimpleMarketOdds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	odds, ok := s.odds[matchID]
	return odds, ok
}

// SetMarginForMatch overrides the persisted bookmaker margin for a match
func (s *Simulator) SetMarginForMatch(matchID string, margin float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.margins[matchID] = margin
}

// SimulateMarketMovement applies a small random walk to a match's existing
// odds to emulate pre-kickoff drift. Volatility shrinks as the time factor
// approaches 1 (kickoff).
func (s *Simulator) SimulateMarketMovement(matchID string, timeFactor float64) error {
	odds, ok := s.GetCurrentOdds(matchID)
	if !ok {
		return nil
	}

	efficiencyFactor := timeFactor * 0.5
	volatility := 0.05 * (1.0 - efficiencyFactor)

	s.rngMu.Lock()
	homeChange := s.rng.Float64()*2*volatility - volatility
	drawChange := s.rng.Float64()*2*volatility - volatility
	awayChange := s.rng.Float64()*2*volatility - volatility
	s.rngMu.Unlock()

	homeProb, drawProb, awayProb := odds.ImpliedProbabilities()

	homeProb = clampBand(homeProb+homeChange, 0.1, 0.8)
	drawProb = clampBand(drawProb+drawChange, 0.1, 0.4)
	awayProb = clampBand(awayProb+awayChange, 0.1, 0.8)

	total := homeProb + drawProb + awayProb
	newOdds := models.SimpleMarketOddsFromProbabilities(
		homeProb/total, drawProb/total, awayProb/total, s.marginForMatch(matchID))

	s.mu.Lock()
	s.odds[matchID] = newOdds
	s.mu.Unlock()

	return nil
}

// ActiveMatches returns the match ids with cached odds
func (s *Simulator) ActiveMatches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.odds))
	for id := range s.odds {
		ids = append(ids, id)
	}
	return ids
}

// ClearMatch drops the odds and margin of a completed match
func (s *Simulator) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.odds, matchID)
	delete(s.margins, matchID)
}

// marginForMatch returns the persisted margin for a match, drawing and
// persisting one from the configured band on first use
func (s *Simulator) marginForMatch(matchID string) float64 {
	s.mu.RLock()
	margin, ok := s.margins[matchID]
	s.mu.RUnlock()
	if ok {
		return margin
	}

	s.rngMu.Lock()
	margin = s.minMargin + s.rng.Float64()*(s.maxMargin-s.minMargin)
	s.rngMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.margins[matchID]; ok {
		return existing
	}
	s.margins[matchID] = margin
	return margin
}

// baseProbabilities derives the pre-event outcome distribution from league
// competitiveness and home advantage
func baseProbabilities(league string) (home, draw, away float64) {
	var competitiveness float64
	switch league {
	case "Premier League":
		competitiveness = 0.9
	case "La Liga":
		competitiveness = 0.8
	case "Bundesliga":
		competitiveness = 0.7
	default:
		competitiveness = 0.6
	}

	away = (1.0 - homeAdvantage) * 0.7
	draw = 0.25 + competitiveness*0.05
	home = 1.0 - draw - away
	return home, draw, away
}

// adjustForMatchState shifts probabilities for goals and cards with magnitudes
// that decay as the match approaches minute 90, then clamps and renormalizes
// into a valid simplex
func adjustForMatchState(event *models.MatchEvent, homeProb, drawProb, awayProb *float64) {
	detail := event.Detail
	timeFactor := float64(detail.Minute) / 90.0
	if timeFactor > 1 {
		timeFactor = 1
	}

	switch detail.Kind {
	case models.EventGoal:
		adjustment := goalAdjustment * (1.0 - timeFactor)
		if detail.Team == event.TeamHome {
			*homeProb += adjustment
			*awayProb -= adjustment * 0.5
			*drawProb -= adjustment * 0.5
		} else {
			*awayProb += adjustment
			*homeProb -= adjustment * 0.5
			*drawProb -= adjustment * 0.5
		}
	case models.EventCard:
		severity := yellowSeverity
		if detail.Card == models.CardRed {
			severity = redCardSeverity
		}
		adjustment := severity * (1.0 - timeFactor)
		if detail.Team == event.TeamHome {
			*homeProb -= adjustment
			*awayProb += adjustment * 0.7
			*drawProb += adjustment * 0.3
		} else {
			*awayProb -= adjustment
			*homeProb += adjustment * 0.7
			*drawProb += adjustment * 0.3
		}
	}

	total := *homeProb + *drawProb + *awayProb
	if total > 0 {
		*homeProb /= total
		*drawProb /= total
		*awayProb /= total
	}

	*homeProb = clampBand(*homeProb, 0.1, 0.8)
	*drawProb = clampBand(*drawProb, 0.1, 0.4)
	*awayProb = clampBand(*awayProb, 0.1, 0.8)

	total = *homeProb + *drawProb + *awayProb
	*homeProb /= total
	*drawProb /= total
	*awayProb /= total
}

func clampBand(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
