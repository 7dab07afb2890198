package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetType identifies the market leg a decision stakes on. Three-way legs
// carry no payload; the remaining markets carry their line or selection.
type BetType string

const (
	BetTypeHomeWin          BetType = "home_win"
	BetTypeDraw             BetType = "draw"
	BetTypeAwayWin          BetType = "away_win"
	BetTypeOverUnder        BetType = "over_under"
	BetTypeAsianHandicap    BetType = "asian_handicap"
	BetTypeBothTeamsToScore BetType = "both_teams_to_score"
	BetTypeCorrectScore     BetType = "correct_score"
)

// BetStatus is the lifecycle state of a betting decision
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusPlaced    BetStatus = "placed"
	BetStatusWon       BetStatus = "won"
	BetStatusLost      BetStatus = "lost"
	BetStatusVoid      BetStatus = "void"
	BetStatusCashedOut BetStatus = "cashed_out"
)

// BetDetail carries the market-specific payload of a bet type
type BetDetail struct {
	Line      decimal.Decimal `json:"line,omitempty"`
	Over      bool            `json:"over,omitempty"`
	Team      string          `json:"team,omitempty"`
	Yes       bool            `json:"yes,omitempty"`
	HomeGoals int             `json:"home_goals,omitempty"`
	AwayGoals int             `json:"away_goals,omitempty"`
}

// BettingDecision is a single staking action against the bankroll. Stake and
// odds are exact decimals; stake > 0 and odds > 1.0 are enforced at
// construction. The Kelly fraction is floored at 0.
type BettingDecision struct {
	ID             uuid.UUID        `json:"id"`
	MatchID        string           `json:"match_id"`
	BetType        BetType          `json:"bet_type"`
	Detail         *BetDetail       `json:"detail,omitempty"`
	Stake          decimal.Decimal  `json:"stake"`
	Odds           decimal.Decimal  `json:"odds"`
	ExpectedValue  float64          `json:"expected_value"`
	KellyFraction  float64          `json:"kelly_fraction"`
	Confidence     float64          `json:"confidence"`
	Strategy       string           `json:"strategy"`
	Timestamp      time.Time        `json:"timestamp"`
	Status         BetStatus        `json:"status"`
	CashedOutValue *decimal.Decimal `json:"cashed_out_value,omitempty"`
}

// NewBettingDecision validates and constructs a pending decision. The
// confidence field carries the edge (true minus implied probability).
func NewBettingDecision(matchID string, betType BetType, stake, odds decimal.Decimal, trueProbability float64, strategy string) (*BettingDecision, error) {
	if stake.LessThanOrEqual(decimal.Zero) {
		return nil, &InvalidStakeError{Amount: stake.String()}
	}
	if odds.LessThanOrEqual(one) {
		return nil, &InvalidOddsError{Reason: fmt.Sprintf("odds must be greater than 1.0, got %s", odds)}
	}

	oddsF := odds.InexactFloat64()
	impliedProbability := 1.0 / oddsF
	expectedValue := trueProbability*oddsF - 1.0
	edge := trueProbability - impliedProbability

	return &BettingDecision{
		ID:            uuid.New(),
		MatchID:       matchID,
		BetType:       betType,
		Stake:         stake,
		Odds:          odds,
		ExpectedValue: expectedValue,
		KellyFraction: KellyFraction(oddsF, trueProbability),
		Confidence:    edge,
		Strategy:      strategy,
		Timestamp:     time.Now().UTC(),
		Status:        BetStatusPending,
	}, nil
}

// KellyFraction computes f = (b*p - q)/b with b = odds-1, floored at 0 so a
// negative edge never produces a stake
func KellyFraction(odds, trueProbability float64) float64 {
	b := odds - 1.0
	if b <= 0 {
		return 0
	}
	q := 1.0 - trueProbability
	f := (b*trueProbability - q) / b
	if f < 0 {
		return 0
	}
	return f
}

// HasPositiveEV reports whether the decision's expected value is positive
func (d *BettingDecision) HasPositiveEV() bool {
	return d.ExpectedValue > 0
}

// PotentialPayout returns stake times odds
func (d *BettingDecision) PotentialPayout() decimal.Decimal {
	return d.Stake.Mul(d.Odds)
}

// PotentialProfit returns the payout net of stake
func (d *BettingDecision) PotentialProfit() decimal.Decimal {
	return d.PotentialPayout().Sub(d.Stake)
}

// RiskRewardRatio returns potential profit per unit staked
func (d *BettingDecision) RiskRewardRatio() float64 {
	if d.Stake.IsZero() {
		return 0
	}
	return d.PotentialProfit().Div(d.Stake).InexactFloat64()
}

// UpdateStatus transitions the decision's lifecycle state
func (d *BettingDecision) UpdateStatus(status BetStatus) {
	d.Status = status
}

// IsActive reports whether the decision still holds capital
func (d *BettingDecision) IsActive() bool {
	return d.Status == BetStatusPending || d.Status == BetStatusPlaced
}

// RiskTolerance classifies a strategy tier
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// BettingStrategy is a configuration bundle, not a behavior hierarchy: tier
// selection swaps the struct, never the code path.
type BettingStrategy struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	MinOdds         decimal.Decimal `json:"min_odds"`
	MaxOdds         decimal.Decimal `json:"max_odds"`
	MinEdge         float64         `json:"min_edge"`
	MaxStakePercent float64         `json:"max_stake_percent"`
	KellyMultiplier float64         `json:"kelly_multiplier"`
	MinConfidence   float64         `json:"min_confidence"`
	MaxCorrelation  float64         `json:"max_correlation"`
	RiskTolerance   RiskTolerance   `json:"risk_tolerance"`
}

// ConservativeStrategy is quarter-Kelly value betting with strict criteria
func ConservativeStrategy() BettingStrategy {
	return BettingStrategy{
		Name:            "Conservative Value",
		Description:     "Low-risk value betting with strict criteria",
		MinOdds:         decimal.NewFromFloat(1.5),
		MaxOdds:         decimal.NewFromFloat(3.0),
		MinEdge:         0.05,
		MaxStakePercent: 0.02,
		KellyMultiplier: 0.25,
		MinConfidence:   0.8,
		MaxCorrelation:  0.3,
		RiskTolerance:   RiskConservative,
	}
}

// ModerateStrategy is half-Kelly balanced growth
func ModerateStrategy() BettingStrategy {
	return BettingStrategy{
		Name:            "Moderate Growth",
		Description:     "Balanced approach between growth and risk",
		MinOdds:         decimal.NewFromFloat(1.3),
		MaxOdds:         decimal.NewFromFloat(5.0),
		MinEdge:         0.03,
		MaxStakePercent: 0.05,
		KellyMultiplier: 0.5,
		MinConfidence:   0.6,
		MaxCorrelation:  0.5,
		RiskTolerance:   RiskModerate,
	}
}

// AggressiveStrategy is three-quarter-Kelly high growth
func AggressiveStrategy() BettingStrategy {
	return BettingStrategy{
		Name:            "Aggressive Growth",
		Description:     "High-growth strategy with increased risk",
		MinOdds:         decimal.NewFromFloat(1.2),
		MaxOdds:         decimal.NewFromFloat(10.0),
		MinEdge:         0.01,
		MaxStakePercent: 0.1,
		KellyMultiplier: 0.75,
		MinConfidence:   0.4,
		MaxCorrelation:  0.7,
		RiskTolerance:   RiskAggressive,
	}
}

// StrategyByTier resolves a configured tier name to its strategy bundle
func StrategyByTier(tier string) (BettingStrategy, error) {
	switch RiskTolerance(tier) {
	case RiskConservative:
		return ConservativeStrategy(), nil
	case RiskModerate:
		return ModerateStrategy(), nil
	case RiskAggressive:
		return AggressiveStrategy(), nil
	default:
		return BettingStrategy{}, fmt.Errorf("unknown strategy tier: %s", tier)
	}
}

// ShouldBet gates a candidate bet on the odds band, minimum edge and minimum
// confidence
func (s *BettingStrategy) ShouldBet(odds decimal.Decimal, trueProbability, confidence float64) bool {
	impliedProbability := 1.0 / odds.InexactFloat64()
	edge := trueProbability - impliedProbability

	return odds.GreaterThanOrEqual(s.MinOdds) &&
		odds.LessThanOrEqual(s.MaxOdds) &&
		edge >= s.MinEdge &&
		confidence >= s.MinConfidence
}

// CalculateStake returns min(bankroll*kelly*multiplier, bankroll*maxPercent),
// never negative
func (s *BettingStrategy) CalculateStake(bankroll decimal.Decimal, kellyFraction float64) decimal.Decimal {
	kellyStake := bankroll.Mul(decimal.NewFromFloat(kellyFraction * s.KellyMultiplier))
	maxStake := bankroll.Mul(decimal.NewFromFloat(s.MaxStakePercent))

	stake := decimal.Min(kellyStake, maxStake)
	if stake.IsNegative() {
		return decimal.Zero
	}
	return stake
}
