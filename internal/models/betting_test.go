package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKellyFraction(t *testing.T) {
	tests := []struct {
		name     string
		odds     float64
		prob     float64
		expected float64
	}{
		{"positive edge", 2.0, 0.6, 0.2},
		{"no edge", 2.0, 0.5, 0.0},
		{"negative edge floored", 2.0, 0.4, 0.0},
		{"long odds small edge", 5.0, 0.25, 0.0625},
		{"odds at one", 1.0, 0.9, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, KellyFraction(tt.odds, tt.prob), 1e-9)
		})
	}
}

func TestNewBettingDecision(t *testing.T) {
	decision, err := NewBettingDecision(
		"match_1", BetTypeHomeWin,
		decimal.NewFromInt(100), decimal.NewFromFloat(2.0),
		0.55, "Moderate Growth",
	)
	require.NoError(t, err)

	assert.Equal(t, BetStatusPending, decision.Status)
	assert.InDelta(t, 0.1, decision.ExpectedValue, 1e-9)
	assert.InDelta(t, 0.05, decision.Confidence, 1e-9)
	assert.InDelta(t, 0.1, decision.KellyFraction, 1e-9)
	assert.True(t, decision.HasPositiveEV())
}

func TestNewBettingDecisionValidation(t *testing.T) {
	_, err := NewBettingDecision("match_1", BetTypeHomeWin,
		decimal.Zero, decimal.NewFromFloat(2.0), 0.55, "test")
	assert.Error(t, err)

	_, err = NewBettingDecision("match_1", BetTypeHomeWin,
		decimal.NewFromInt(-10), decimal.NewFromFloat(2.0), 0.55, "test")
	assert.Error(t, err)

	_, err = NewBettingDecision("match_1", BetTypeHomeWin,
		decimal.NewFromInt(100), decimal.NewFromInt(1), 0.55, "test")
	assert.Error(t, err)
}

func TestPotentialPayoutAndProfit(t *testing.T) {
	decision, err := NewBettingDecision(
		"match_1", BetTypeDraw,
		decimal.NewFromInt(100), decimal.NewFromFloat(2.5),
		0.45, "test",
	)
	require.NoError(t, err)

	assert.True(t, decision.PotentialPayout().Equal(decimal.NewFromInt(250)))
	assert.True(t, decision.PotentialProfit().Equal(decimal.NewFromInt(150)))
	assert.InDelta(t, 1.5, decision.RiskRewardRatio(), 1e-9)
}

func TestBetLifecycle(t *testing.T) {
	decision, err := NewBettingDecision(
		"match_1", BetTypeAwayWin,
		decimal.NewFromInt(50), decimal.NewFromFloat(3.0),
		0.4, "test",
	)
	require.NoError(t, err)

	assert.True(t, decision.IsActive())
	decision.UpdateStatus(BetStatusPlaced)
	assert.True(t, decision.IsActive())
	decision.UpdateStatus(BetStatusWon)
	assert.False(t, decision.IsActive())
}

func TestStrategyByTier(t *testing.T) {
	conservative, err := StrategyByTier("conservative")
	require.NoError(t, err)
	assert.Equal(t, "Conservative Value", conservative.Name)
	assert.Equal(t, 0.25, conservative.KellyMultiplier)

	moderate, err := StrategyByTier("moderate")
	require.NoError(t, err)
	assert.Equal(t, "Moderate Growth", moderate.Name)
	assert.Equal(t, 0.05, moderate.MaxStakePercent)

	aggressive, err := StrategyByTier("aggressive")
	require.NoError(t, err)
	assert.Equal(t, "Aggressive Growth", aggressive.Name)
	assert.Equal(t, 0.01, aggressive.MinEdge)

	_, err = StrategyByTier("reckless")
	assert.Error(t, err)
}

func TestShouldBet(t *testing.T) {
	moderate := ModerateStrategy()

	tests := []struct {
		name       string
		odds       float64
		prob       float64
		confidence float64
		expected   bool
	}{
		{"clear value in band", 2.0, 0.55, 0.7, true},
		{"odds below band", 1.2, 0.9, 0.9, false},
		{"odds above band", 6.0, 0.25, 0.9, false},
		{"edge too thin", 2.0, 0.51, 0.7, false},
		{"confidence too low", 2.0, 0.55, 0.5, false},
		{"no edge at all", 2.0, 0.45, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := moderate.ShouldBet(decimal.NewFromFloat(tt.odds), tt.prob, tt.confidence)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestShouldBetConservativeIsStricter(t *testing.T) {
	conservative := ConservativeStrategy()
	aggressive := AggressiveStrategy()

	odds := decimal.NewFromFloat(2.0)
	// 4% edge, 0.6 confidence passes aggressive but not conservative
	assert.False(t, conservative.ShouldBet(odds, 0.54, 0.6))
	assert.True(t, aggressive.ShouldBet(odds, 0.54, 0.6))
}

func TestCalculateStake(t *testing.T) {
	bankroll := decimal.NewFromInt(1000)

	moderate := ModerateStrategy()
	// Half-Kelly of 0.2 is 100, capped by 5% of bankroll
	stake := moderate.CalculateStake(bankroll, 0.2)
	assert.True(t, stake.Equal(decimal.NewFromInt(50)), "got %s", stake)

	// Small Kelly stays under the cap
	stake = moderate.CalculateStake(bankroll, 0.04)
	assert.True(t, stake.Equal(decimal.NewFromInt(20)), "got %s", stake)

	conservative := ConservativeStrategy()
	stake = conservative.CalculateStake(bankroll, 0.04)
	assert.True(t, stake.Equal(decimal.NewFromInt(10)), "got %s", stake)

	// Zero Kelly produces a zero stake
	stake = moderate.CalculateStake(bankroll, 0)
	assert.True(t, stake.IsZero())
}
