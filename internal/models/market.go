package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// SimpleMarketOdds is an immutable snapshot of decimal-valued three-way odds.
// All odds must be strictly greater than 1.0; the sum of implied probabilities
// exceeds 1 by the bookmaker's overround.
type SimpleMarketOdds struct {
	HomeWin decimal.Decimal `json:"home_win"`
	Draw    decimal.Decimal `json:"draw"`
	AwayWin decimal.Decimal `json:"away_win"`
}

// NewSimpleMarketOdds validates and constructs an odds snapshot
func NewSimpleMarketOdds(homeWin, draw, awayWin decimal.Decimal) (SimpleMarketOdds, error) {
	for _, o := range []decimal.Decimal{homeWin, draw, awayWin} {
		if o.LessThanOrEqual(one) {
			return SimpleMarketOdds{}, &InvalidOddsError{Reason: fmt.Sprintf("odds must be greater than 1.0, got %s", o)}
		}
	}
	return SimpleMarketOdds{HomeWin: homeWin, Draw: draw, AwayWin: awayWin}, nil
}

// SimpleMarketOddsFromProbabilities converts a fair probability triple into
// quoted decimal odds with the given bookmaker margin applied.
func SimpleMarketOddsFromProbabilities(homeProb, drawProb, awayProb, margin float64) SimpleMarketOdds {
	total := homeProb + drawProb + awayProb
	adjustedTotal := total * (1.0 + margin)

	toOdds := func(p float64) decimal.Decimal {
		adjusted := (p / total) * adjustedTotal
		if adjusted <= 0 {
			return decimal.NewFromInt(2)
		}
		return decimal.NewFromFloat(1.0 / adjusted)
	}

	return SimpleMarketOdds{
		HomeWin: toOdds(homeProb),
		Draw:    toOdds(drawProb),
		AwayWin: toOdds(awayProb),
	}
}

// ImpliedProbabilities returns the market-implied probability of each outcome
func (o SimpleMarketOdds) ImpliedProbabilities() (home, draw, away float64) {
	home = 1.0 / o.HomeWin.InexactFloat64()
	draw = 1.0 / o.Draw.InexactFloat64()
	away = 1.0 / o.AwayWin.InexactFloat64()
	return home, draw, away
}

// Overround returns the sum of implied probabilities, greater than 1 for any
// real bookmaker market
func (o SimpleMarketOdds) Overround() float64 {
	home, draw, away := o.ImpliedProbabilities()
	return home + draw + away
}

// OddsForBetType returns the odds quoted for a three-way outcome leg
func (o SimpleMarketOdds) OddsForBetType(betType BetType) (decimal.Decimal, error) {
	switch betType {
	case BetTypeHomeWin:
		return o.HomeWin, nil
	case BetTypeDraw:
		return o.Draw, nil
	case BetTypeAwayWin:
		return o.AwayWin, nil
	default:
		return decimal.Zero, &InvalidOddsError{Reason: fmt.Sprintf("no three-way odds for bet type %s", betType)}
	}
}

// MarketType identifies the betting market a quote belongs to
type MarketType string

const (
	MarketMatchWinner      MarketType = "match_winner"
	MarketOverUnder        MarketType = "over_under"
	MarketAsianHandicap    MarketType = "asian_handicap"
	MarketBothTeamsToScore MarketType = "both_teams_to_score"
	MarketCorrectScore     MarketType = "correct_score"
)

// MarketOdds is a full bookmaker quote for one market of one match
type MarketOdds struct {
	ID        uuid.UUID        `json:"id"`
	MatchID   string           `json:"match_id"`
	Market    MarketType       `json:"market"`
	Bookmaker string           `json:"bookmaker"`
	Odds      SimpleMarketOdds `json:"odds"`
	Timestamp time.Time        `json:"timestamp"`
	IsActive  bool             `json:"is_active"`
}

// NewMarketOdds constructs an active match-winner quote for a match
func NewMarketOdds(matchID, bookmaker string, odds SimpleMarketOdds) MarketOdds {
	return MarketOdds{
		ID:        uuid.New(),
		MatchID:   matchID,
		Market:    MarketMatchWinner,
		Bookmaker: bookmaker,
		Odds:      odds,
		Timestamp: time.Now().UTC(),
		IsActive:  true,
	}
}

// AmericanToDecimal converts American odds (+150, -200) to decimal odds
func AmericanToDecimal(american int) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, &InvalidOddsError{Reason: "american odds cannot be zero"}
	}
	hundred := decimal.NewFromInt(100)
	if american > 0 {
		return decimal.NewFromInt(int64(american)).Div(hundred).Add(one), nil
	}
	return hundred.Div(decimal.NewFromInt(int64(-american))).Add(one), nil
}

// FractionalToDecimal converts fractional odds ("5/2") to decimal odds
func FractionalToDecimal(fractional string) (decimal.Decimal, error) {
	parts := strings.Split(fractional, "/")
	if len(parts) != 2 {
		return decimal.Zero, &InvalidOddsError{Reason: fmt.Sprintf("invalid fractional odds format: %s", fractional)}
	}
	numerator, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return decimal.Zero, &InvalidOddsError{Reason: fmt.Sprintf("invalid numerator: %s", parts[0])}
	}
	denominator, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return decimal.Zero, &InvalidOddsError{Reason: fmt.Sprintf("invalid denominator: %s", parts[1])}
	}
	if denominator == 0 {
		return decimal.Zero, &InvalidOddsError{Reason: "denominator cannot be zero"}
	}
	return decimal.NewFromInt(numerator).Div(decimal.NewFromInt(denominator)).Add(one), nil
}
