package market

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quant-trader/internal/models"
)

func testSimulator() *Simulator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSimulator(0.02, 0.08, log)
}

func matchEvent(kind models.EventKind, team string, minute int, card models.CardKind) *models.MatchEvent {
	event := models.NewMatchEvent("epl_match_001",
		models.EventDetail{Kind: kind, Team: team, Minute: minute, Card: card},
		"Arsenal", "Chelsea", "Premier League", "2024-25")
	return &event
}

func TestGenerateMarketOddsProducesPlausibleQuotes(t *testing.T) {
	s := testSimulator()

	odds, err := s.GenerateMarketOdds(matchEvent(models.EventMatchStart, "", 0, ""))
	require.NoError(t, err)

	floor := decimal.NewFromFloat(1.1)
	assert.True(t, odds.HomeWin.GreaterThan(floor), "home odds %s", odds.HomeWin)
	assert.True(t, odds.Draw.GreaterThan(floor), "draw odds %s", odds.Draw)
	assert.True(t, odds.AwayWin.GreaterThan(floor), "away odds %s", odds.AwayWin)

	// The overround must sit inside the configured margin band, allowing for
	// the probability noise
	overround := odds.Overround()
	assert.Greater(t, overround, 1.0)
	assert.Less(t, overround, 1.12)
}

func TestGetCurrentOddsReturnsCachedSnapshot(t *testing.T) {
	s := testSimulator()

	_, ok := s.GetCurrentOdds("epl_match_001")
	assert.False(t, ok)

	generated, err := s.GenerateMarketOdds(matchEvent(models.EventMatchStart, "", 0, ""))
	require.NoError(t, err)

	cached, ok := s.GetCurrentOdds("epl_match_001")
	require.True(t, ok)
	assert.True(t, generated.HomeWin.Equal(cached.HomeWin))

	// Reads do not mutate the cache
	again, ok := s.GetCurrentOdds("epl_match_001")
	require.True(t, ok)
	assert.True(t, cached.HomeWin.Equal(again.HomeWin))
	assert.True(t, cached.Draw.Equal(again.Draw))
	assert.True(t, cached.AwayWin.Equal(again.AwayWin))
}

func TestUpdateOddsForEventOnlyGoalsAndCards(t *testing.T) {
	s := testSimulator()

	tests := []struct {
		kind       models.EventKind
		regenerate bool
	}{
		{models.EventGoal, true},
		{models.EventCard, true},
		{models.EventMatchStart, false},
		{models.EventHalfTime, false},
		{models.EventSubstitution, false},
		{models.EventFullTime, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			card := models.CardKind("")
			if tt.kind == models.EventCard {
				card = models.CardYellow
			}
			updated, err := s.UpdateOddsForEvent(matchEvent(tt.kind, "Arsenal", 30, card))
			require.NoError(t, err)
			if tt.regenerate {
				assert.NotNil(t, updated)
			} else {
				assert.Nil(t, updated)
			}
		})
	}
}

func TestHomeGoalShortensHomeOdds(t *testing.T) {
	// Average across trials so market noise cannot mask the adjustment
	trials := 50
	baselineSum, goalSum := 0.0, 0.0
	for i := 0; i < trials; i++ {
		s := testSimulator()
		baseline, err := s.GenerateMarketOdds(matchEvent(models.EventMatchStart, "", 0, ""))
		require.NoError(t, err)
		baselineSum += baseline.HomeWin.InexactFloat64()

		s2 := testSimulator()
		s2.SetMarginForMatch("epl_match_001", 0.05)
		goal, err := s2.GenerateMarketOdds(matchEvent(models.EventGoal, "Arsenal", 10, ""))
		require.NoError(t, err)
		goalSum += goal.HomeWin.InexactFloat64()
	}

	assert.Less(t, goalSum/float64(trials), baselineSum/float64(trials))
}

func TestRedCardHurtsMoreThanYellow(t *testing.T) {
	trials := 50
	yellowSum, redSum := 0.0, 0.0
	for i := 0; i < trials; i++ {
		s := testSimulator()
		yellow, err := s.GenerateMarketOdds(matchEvent(models.EventCard, "Arsenal", 10, models.CardYellow))
		require.NoError(t, err)
		yellowSum += yellow.HomeWin.InexactFloat64()

		s2 := testSimulator()
		red, err := s2.GenerateMarketOdds(matchEvent(models.EventCard, "Arsenal", 10, models.CardRed))
		require.NoError(t, err)
		redSum += red.HomeWin.InexactFloat64()
	}

	// A red card against the home side lengthens its odds more than a yellow
	assert.Greater(t, redSum/float64(trials), yellowSum/float64(trials))
}

func TestMarginPersistsAcrossRegenerations(t *testing.T) {
	s := testSimulator()
	s.SetMarginForMatch("epl_match_001", 0.05)

	for i := 0; i < 5; i++ {
		odds, err := s.GenerateMarketOdds(matchEvent(models.EventGoal, "Arsenal", 10+i, ""))
		require.NoError(t, err)
		assert.InDelta(t, 1.05, odds.Overround(), 1e-6)
	}
}

func TestSimulateMarketMovementKeepsOddsValid(t *testing.T) {
	s := testSimulator()
	s.SetMarginForMatch("epl_match_001", 0.05)

	_, err := s.GenerateMarketOdds(matchEvent(models.EventMatchStart, "", 0, ""))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.SimulateMarketMovement("epl_match_001", 0.5))
	}

	odds, ok := s.GetCurrentOdds("epl_match_001")
	require.True(t, ok)
	assert.True(t, odds.HomeWin.GreaterThan(decimal.NewFromInt(1)))
	assert.True(t, odds.Draw.GreaterThan(decimal.NewFromInt(1)))
	assert.True(t, odds.AwayWin.GreaterThan(decimal.NewFromInt(1)))
	assert.InDelta(t, 1.05, odds.Overround(), 1e-6)
}

func TestSimulateMarketMovementWithoutOddsIsNoOp(t *testing.T) {
	s := testSimulator()
	assert.NoError(t, s.SimulateMarketMovement("unknown_match", 0.5))
	_, ok := s.GetCurrentOdds("unknown_match")
	assert.False(t, ok)
}

func TestActiveMatchesAndClearMatch(t *testing.T) {
	s := testSimulator()
	assert.Empty(t, s.ActiveMatches())

	_, err := s.GenerateMarketOdds(matchEvent(models.EventMatchStart, "", 0, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"epl_match_001"}, s.ActiveMatches())

	s.ClearMatch("epl_match_001")
	assert.Empty(t, s.ActiveMatches())
	_, ok := s.GetCurrentOdds("epl_match_001")
	assert.False(t, ok)
}

func TestBaseProbabilitiesByLeague(t *testing.T) {
	home, draw, away := baseProbabilities("Premier League")
	assert.InDelta(t, 0.295, draw, 1e-9)
	assert.InDelta(t, 0.315, away, 1e-9)
	assert.InDelta(t, 1.0, home+draw+away, 1e-9)

	_, lowDraw, _ := baseProbabilities("Conference")
	assert.InDelta(t, 0.28, lowDraw, 1e-9)
}
