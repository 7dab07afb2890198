package trading

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	logging "github.com/yourusername/quant-trader/internal/logger"
	"github.com/yourusername/quant-trader/internal/metrics"
	"github.com/yourusername/quant-trader/internal/models"
)

// Engine turns predictions into risk-constrained staking decisions against
// the portfolio. It owns its own market-odds cache, populated by copies from
// the simulator, so simulator mutations never reach engine-visible state.
//
// Sizing reads the portfolio under a read lock and placement later
// re-acquires a write lock, so a concurrent trade can shrink the available
// bankroll between the two. ExecuteTrade serializes its risk re-check and
// placement under one lock, so a stale sizing can only shrink to a rejection,
// never overdraw.
type Engine struct {
	oddsMu sync.RWMutex
	odds   map[string]models.SimpleMarketOdds

	// execMu serializes the risk re-check and placement inside ExecuteTrade
	execMu sync.Mutex

	portfolio    *Portfolio
	risk         *RiskManager
	strategy     models.BettingStrategy
	maxRiskScore float64
	logger       *logrus.Logger
	audit        *logging.AuditLogger
}

// NewEngine creates a trading engine over a fresh portfolio
func NewEngine(initialBankroll decimal.Decimal, strategy models.BettingStrategy, limits RiskLimits, maxRiskScore float64, logger *logrus.Logger) *Engine {
	if maxRiskScore <= 0 {
		maxRiskScore = 0.8
	}
	return &Engine{
		odds:         make(map[string]models.SimpleMarketOdds),
		portfolio:    NewPortfolio(initialBankroll),
		risk:         NewRiskManager(limits, logger),
		strategy:     strategy,
		maxRiskScore: maxRiskScore,
		logger:       logger,
		audit:        logging.NewAuditLogger(logger),
	}
}

// UpdateMarketOdds copies an odds snapshot into the engine's view
func (e *Engine) UpdateMarketOdds(matchID string, odds models.SimpleMarketOdds) {
	e.oddsMu.Lock()
	defer e.oddsMu.Unlock()
	e.odds[matchID] = odds
}

// GetMarketOdds returns the engine's current odds for a match
func (e *Engine) GetMarketOdds(matchID string) (models.SimpleMarketOdds, bool) {
	e.oddsMu.RLock()
	defer e.oddsMu.RUnlock()
	odds, ok := e.odds[matchID]
	return odds, ok
}

// ProcessPrediction evaluates all three outcome legs against current odds and
// returns the strongest signal. Absence of odds is a normal transient state
// and yields a zero-strength signal, not an error. Exact-equal strengths
// favor the leg evaluated last; this is a stated policy, not an accident.
func (e *Engine) ProcessPrediction(prediction *models.Prediction) (*TradingSignal, error) {
	odds, ok := e.GetMarketOdds(prediction.MatchID)
	if !ok {
		e.logger.WithField("match_id", prediction.MatchID).
			Debug("No market odds for prediction, emitting zero-strength signal")
		return NoOddsSignal(prediction.MatchID), nil
	}

	legs := []struct {
		name    string
		betType models.BetType
		prob    float64
		odds    decimal.Decimal
	}{
		{"Home win", models.BetTypeHomeWin, prediction.HomeWinProb, odds.HomeWin},
		{"Draw", models.BetTypeDraw, prediction.DrawProbOrZero(), odds.Draw},
		{"Away win", models.BetTypeAwayWin, prediction.AwayWinProb, odds.AwayWin},
	}

	signal := &TradingSignal{
		MatchID:   prediction.MatchID,
		Reasoning: "No edge found against current market",
		Timestamp: time.Now().UTC(),
	}

	for _, leg := range legs {
		oddsF := leg.odds.InexactFloat64()
		edge := leg.prob - 1.0/oddsF
		expectedValue := leg.prob*oddsF - 1.0

		strength := expectedValue * prediction.Confidence
		if strength < 0 {
			strength = 0
		}
		if strength > 1 {
			strength = 1
		}

		if strength < signal.SignalStrength {
			continue
		}

		bet := e.AnalyzeBetOpportunity(prediction.MatchID, leg.betType, leg.prob, leg.odds, prediction.Confidence)
		signal.SignalStrength = strength
		signal.RecommendedBet = bet
		if bet != nil {
			signal.Reasoning = fmt.Sprintf("%s edge: %.1f%%, expected value: %.2f", leg.name, edge*100, expectedValue)
		}
	}

	signal.RiskAssessment = e.risk.AssessRisk(prediction.MatchID, signal.RecommendedBet, e.portfolio)
	metrics.RecordSignal()

	return signal, nil
}

// AnalyzeBetOpportunity gates a single leg through the strategy, sizes the
// stake via Kelly, and clamps it through the risk constraints. Returns nil
// when no bet should be made.
func (e *Engine) AnalyzeBetOpportunity(matchID string, betType models.BetType, trueProb float64, odds decimal.Decimal, confidence float64) *models.BettingDecision {
	if !e.strategy.ShouldBet(odds, trueProb, confidence) {
		return nil
	}

	kelly := models.KellyFraction(odds.InexactFloat64(), trueProb)
	if kelly <= 0 {
		return nil
	}

	stake := e.strategy.CalculateStake(e.portfolio.AvailableBankroll(), kelly)
	stake = e.risk.ApplyConstraints(stake, matchID, e.portfolio)
	if stake.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	bet, err := models.NewBettingDecision(matchID, betType, stake.Round(2), odds, trueProb, e.strategy.Name)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"match_id": matchID,
			"bet_type": betType,
		}).Warn("Failed to construct betting decision")
		return nil
	}
	return bet
}

// ExecuteTrade is the final hard gate before capital commits. It rejects
// without error on a risk score above the threshold or on insufficient funds;
// the portfolio's own check is the last-resort invariant guard.
func (e *Engine) ExecuteTrade(signal *TradingSignal) (bool, error) {
	if signal.RecommendedBet == nil {
		return false, nil
	}

	if signal.RiskAssessment.RiskScore > e.maxRiskScore {
		e.logger.WithFields(logrus.Fields{
			"match_id":   signal.MatchID,
			"risk_score": signal.RiskAssessment.RiskScore,
		}).Warn("Trade rejected on risk score")
		e.audit.LogTradeRejection(signal.MatchID, "risk_score", signal.RiskAssessment.RiskScore)
		metrics.RecordTradeRejected("risk_score")
		return false, nil
	}

	e.execMu.Lock()
	defer e.execMu.Unlock()

	if e.portfolio.ActiveBetCount() >= e.risk.Limits().MaxConcurrentBets {
		metrics.RecordTradeRejected("concurrent_limit")
		return false, nil
	}

	if err := e.portfolio.PlaceBet(signal.RecommendedBet); err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			e.logger.WithFields(logrus.Fields{
				"match_id": signal.MatchID,
				"stake":    signal.RecommendedBet.Stake,
			}).Warn("Trade rejected, stake exceeds available bankroll")
			e.audit.LogTradeRejection(signal.MatchID, "insufficient_funds", signal.RiskAssessment.RiskScore)
			metrics.RecordTradeRejected("insufficient_funds")
			return false, nil
		}
		return false, fmt.Errorf("placing bet: %w", err)
	}

	metrics.RecordTradeExecuted()
	e.publishPortfolioGauges()

	bet := signal.RecommendedBet
	e.audit.LogTradeExecution(bet.ID.String(), bet.MatchID, string(bet.BetType), bet.Stake, bet.Odds, bet.Strategy)

	e.logger.WithFields(logrus.Fields{
		"match_id": signal.MatchID,
		"bet_type": signal.RecommendedBet.BetType,
		"stake":    signal.RecommendedBet.Stake,
		"odds":     signal.RecommendedBet.Odds,
	}).Info("Trade executed")

	return true, nil
}

// SettleMatch resolves every active bet on a match against its final outcome.
// Three-way legs win or lose by comparison; unsupported market legs are
// voided with their stakes returned.
func (e *Engine) SettleMatch(matchID string, outcome models.PredictedOutcome) error {
	bets := e.portfolio.ActiveBetsForMatch(matchID)
	if len(bets) == 0 {
		return nil
	}

	for _, bet := range bets {
		won, supported := betWins(bet.BetType, outcome)
		if !supported {
			if err := e.portfolio.VoidBet(bet.ID); err != nil {
				return err
			}
			metrics.RecordBetSettled("void")
			continue
		}

		if err := e.portfolio.SettleBet(bet.ID, won); err != nil {
			return err
		}

		profitLoss := bet.Stake.Neg()
		result := "lost"
		if won {
			profitLoss = bet.PotentialProfit()
			result = "won"
		}
		e.risk.RecordSettlement(profitLoss)
		e.audit.LogBetSettlement(bet.ID.String(), matchID, result, profitLoss)
		metrics.RecordBetSettled(result)
	}

	e.publishPortfolioGauges()

	e.logger.WithFields(logrus.Fields{
		"match_id": matchID,
		"outcome":  outcome,
		"bets":     len(bets),
	}).Info("Settled match")

	return nil
}

// ProcessBetOutcome settles the active bets of one bet type on a match with
// an explicit win flag
func (e *Engine) ProcessBetOutcome(matchID string, betType models.BetType, won bool) error {
	bets := e.portfolio.ActiveBetsForMatch(matchID)
	for _, bet := range bets {
		if bet.BetType != betType {
			continue
		}
		if err := e.portfolio.SettleBet(bet.ID, won); err != nil {
			return err
		}

		profitLoss := bet.Stake.Neg()
		result := "lost"
		if won {
			profitLoss = bet.PotentialProfit()
			result = "won"
		}
		e.risk.RecordSettlement(profitLoss)
		metrics.RecordBetSettled(result)
	}

	e.publishPortfolioGauges()
	return nil
}

// AssessRisk exposes the risk manager's heuristic scoring for a candidate bet
func (e *Engine) AssessRisk(matchID string, bet *models.BettingDecision) RiskAssessment {
	return e.risk.AssessRisk(matchID, bet, e.portfolio)
}

// ActiveStrategy returns the engine's configured strategy bundle
func (e *Engine) ActiveStrategy() models.BettingStrategy {
	return e.strategy
}

// PortfolioSummary returns a consistent snapshot of the ledger
func (e *Engine) PortfolioSummary() PortfolioSummary {
	return e.portfolio.Summary()
}

// RiskManager exposes the engine's risk manager for scheduled resets
func (e *Engine) RiskManager() *RiskManager {
	return e.risk
}

func (e *Engine) publishPortfolioGauges() {
	summary := e.portfolio.Summary()
	metrics.UpdateBankroll(summary.AvailableBankroll.InexactFloat64())
	metrics.UpdateExposure(summary.TotalExposure.InexactFloat64())
	metrics.UpdateActiveBets(float64(summary.ActiveBetsCount))
}

// betWins maps a three-way bet type against the final outcome. The second
// return is false for market legs settlement does not support.
func betWins(betType models.BetType, outcome models.PredictedOutcome) (won, supported bool) {
	switch betType {
	case models.BetTypeHomeWin:
		return outcome == models.OutcomeHomeWin, true
	case models.BetTypeDraw:
		return outcome == models.OutcomeDraw, true
	case models.BetTypeAwayWin:
		return outcome == models.OutcomeAwayWin, true
	default:
		return false, false
	}
}
