package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimpleMarketOddsRejectsOddsAtOrBelowOne(t *testing.T) {
	valid := decimal.NewFromFloat(2.0)

	_, err := NewSimpleMarketOdds(decimal.NewFromInt(1), valid, valid)
	assert.Error(t, err)

	_, err = NewSimpleMarketOdds(valid, decimal.NewFromFloat(0.5), valid)
	assert.Error(t, err)

	odds, err := NewSimpleMarketOdds(valid, decimal.NewFromFloat(3.4), decimal.NewFromFloat(4.0))
	require.NoError(t, err)
	assert.True(t, odds.HomeWin.Equal(valid))
}

func TestSimpleMarketOddsFromProbabilities(t *testing.T) {
	third := 1.0 / 3.0
	margin := 0.05
	odds := SimpleMarketOddsFromProbabilities(third, third, third, margin)

	// Equal probabilities with a 5% margin quote at 1/(1.05/3)
	expected := 3.0 / 1.05
	assert.InDelta(t, expected, odds.HomeWin.InexactFloat64(), 1e-6)
	assert.InDelta(t, expected, odds.Draw.InexactFloat64(), 1e-6)
	assert.InDelta(t, expected, odds.AwayWin.InexactFloat64(), 1e-6)

	assert.InDelta(t, 1.05, odds.Overround(), 1e-6)
}

func TestSimpleMarketOddsFromProbabilitiesFavorite(t *testing.T) {
	odds := SimpleMarketOddsFromProbabilities(0.6, 0.25, 0.15, 0.0)

	assert.InDelta(t, 1.0/0.6, odds.HomeWin.InexactFloat64(), 1e-6)
	assert.True(t, odds.HomeWin.LessThan(odds.Draw))
	assert.True(t, odds.Draw.LessThan(odds.AwayWin))
}

func TestImpliedProbabilities(t *testing.T) {
	odds, err := NewSimpleMarketOdds(
		decimal.NewFromFloat(2.0),
		decimal.NewFromFloat(4.0),
		decimal.NewFromFloat(5.0),
	)
	require.NoError(t, err)

	home, draw, away := odds.ImpliedProbabilities()
	assert.InDelta(t, 0.5, home, 1e-9)
	assert.InDelta(t, 0.25, draw, 1e-9)
	assert.InDelta(t, 0.2, away, 1e-9)
	assert.InDelta(t, 0.95, odds.Overround(), 1e-9)
}

func TestOddsForBetType(t *testing.T) {
	odds, err := NewSimpleMarketOdds(
		decimal.NewFromFloat(1.8),
		decimal.NewFromFloat(3.5),
		decimal.NewFromFloat(4.2),
	)
	require.NoError(t, err)

	home, err := odds.OddsForBetType(BetTypeHomeWin)
	require.NoError(t, err)
	assert.True(t, home.Equal(decimal.NewFromFloat(1.8)))

	draw, err := odds.OddsForBetType(BetTypeDraw)
	require.NoError(t, err)
	assert.True(t, draw.Equal(decimal.NewFromFloat(3.5)))

	_, err = odds.OddsForBetType(BetTypeOverUnder)
	assert.Error(t, err)
}

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		expected string
		wantErr  bool
	}{
		{"plus 100", 100, "2", false},
		{"minus 100", -100, "2", false},
		{"plus 150", 150, "2.5", false},
		{"minus 200", -200, "1.5", false},
		{"plus 250", 250, "3.5", false},
		{"zero", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := AmericanToDecimal(tt.american)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			expected, parseErr := decimal.NewFromString(tt.expected)
			require.NoError(t, parseErr)
			assert.True(t, result.Equal(expected), "got %s, want %s", result, expected)
		})
	}
}

func TestFractionalToDecimal(t *testing.T) {
	tests := []struct {
		name       string
		fractional string
		expected   string
		wantErr    bool
	}{
		{"evens", "1/1", "2", false},
		{"two to one", "2/1", "3", false},
		{"one to two", "1/2", "1.5", false},
		{"five to two", "5/2", "3.5", false},
		{"with spaces", " 3 / 1 ", "4", false},
		{"missing slash", "5-2", "", true},
		{"zero denominator", "1/0", "", true},
		{"non numeric", "a/b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FractionalToDecimal(tt.fractional)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			expected, parseErr := decimal.NewFromString(tt.expected)
			require.NoError(t, parseErr)
			assert.True(t, result.Equal(expected), "got %s, want %s", result, expected)
		})
	}
}
