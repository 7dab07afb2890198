package trading

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	logging "github.com/yourusername/quant-trader/internal/logger"
	"github.com/yourusername/quant-trader/internal/metrics"
	"github.com/yourusername/quant-trader/internal/models"
)

// RiskLimits bundles the staking ceilings the risk manager enforces
type RiskLimits struct {
	BankrollBuffer    float64
	MaxMatchExposure  decimal.Decimal
	MaxDailyLoss      decimal.Decimal
	MaxConcurrentBets int
}

// DefaultRiskLimits returns the standard ceilings: a 5% bankroll buffer and a
// hard stop at 10 concurrent bets
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		BankrollBuffer:    0.05,
		MaxMatchExposure:  decimal.NewFromInt(500),
		MaxDailyLoss:      decimal.NewFromInt(1000),
		MaxConcurrentBets: 10,
	}
}

// RiskManager applies the layered staking constraints and tracks realized
// daily losses
type RiskManager struct {
	mu sync.RWMutex

	limits    RiskLimits
	dailyLoss decimal.Decimal
	dailyPnL  decimal.Decimal
	logger    *logrus.Logger
	audit     *logging.AuditLogger
}

// NewRiskManager creates a risk manager with the given limits
func NewRiskManager(limits RiskLimits, logger *logrus.Logger) *RiskManager {
	return &RiskManager{
		limits: limits,
		logger: logger,
		audit:  logging.NewAuditLogger(logger),
	}
}

// ApplyConstraints clamps a proposed stake against four ceilings in order:
// available bankroll less the buffer, per-match exposure, remaining daily
// loss allowance, and last the concurrency hard stop which zeroes the stake
// outright. The ordering is deliberate: bankroll and match limits are
// structural, the concurrency limit is a circuit breaker.
func (rm *RiskManager) ApplyConstraints(stake decimal.Decimal, matchID string, portfolio *Portfolio) decimal.Decimal {
	rm.mu.RLock()
	limits := rm.limits
	dailyLoss := rm.dailyLoss
	rm.mu.RUnlock()

	available := portfolio.AvailableBankroll()
	buffered := available.Mul(decimal.NewFromFloat(1.0 - limits.BankrollBuffer))
	if stake.GreaterThan(buffered) {
		stake = buffered
	}

	matchHeadroom := limits.MaxMatchExposure.Sub(portfolio.MatchExposure(matchID))
	if matchHeadroom.IsNegative() {
		matchHeadroom = decimal.Zero
	}
	if stake.GreaterThan(matchHeadroom) {
		stake = matchHeadroom
	}

	lossHeadroom := limits.MaxDailyLoss.Sub(dailyLoss)
	if lossHeadroom.IsNegative() {
		lossHeadroom = decimal.Zero
	}
	if stake.GreaterThan(lossHeadroom) {
		stake = lossHeadroom
	}

	if portfolio.ActiveBetCount() >= limits.MaxConcurrentBets {
		rm.logger.WithFields(logrus.Fields{
			"match_id":    matchID,
			"active_bets": portfolio.ActiveBetCount(),
		}).Warn("Concurrent bet limit reached, rejecting stake")
		metrics.RecordTradeRejected("concurrent_limit")
		return decimal.Zero
	}

	if stake.IsNegative() {
		return decimal.Zero
	}
	return stake
}

// AssessRisk scores a proposed bet in [0,1] from independent heuristic flags.
// The score is informational; the execution gate applies its own threshold.
func (rm *RiskManager) AssessRisk(matchID string, bet *models.BettingDecision, portfolio *Portfolio) RiskAssessment {
	assessment := RiskAssessment{Warnings: []string{}}
	if bet == nil {
		return assessment
	}

	summary := portfolio.Summary()

	if summary.TotalBankroll.GreaterThan(decimal.Zero) {
		stakeFraction := bet.Stake.Div(summary.TotalBankroll).InexactFloat64()
		assessment.PortfolioImpact = stakeFraction
		if stakeFraction > 0.05 {
			assessment.RiskScore += 0.3
			assessment.Warnings = append(assessment.Warnings,
				fmt.Sprintf("stake is %.1f%% of bankroll", stakeFraction*100))
		}
	}

	if bet.Odds.GreaterThan(decimal.NewFromInt(5)) {
		assessment.RiskScore += 0.2
		assessment.VolatilityRisk = 0.5
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("long odds %s carry high variance", bet.Odds))
	}

	if bet.KellyFraction > 0.1 {
		assessment.RiskScore += 0.2
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("Kelly fraction %.1f%% exceeds 10%%", bet.KellyFraction*100))
	}

	matchExposure := portfolio.MatchExposure(matchID)
	if matchExposure.GreaterThan(decimal.Zero) {
		assessment.CorrelationRisk = 0.5
		assessment.RiskScore += 0.2
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("existing exposure of %s on the same match", matchExposure))
	}

	if assessment.RiskScore > 1.0 {
		assessment.RiskScore = 1.0
	}
	return assessment
}

// RecordSettlement folds a settled bet's P&L into the daily tallies and
// publishes the running daily total to the gauge
func (rm *RiskManager) RecordSettlement(profitLoss decimal.Decimal) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if profitLoss.IsNegative() {
		rm.dailyLoss = rm.dailyLoss.Add(profitLoss.Neg())
	}
	rm.dailyPnL = rm.dailyPnL.Add(profitLoss)
	metrics.UpdateDailyPnL(rm.dailyPnL.InexactFloat64())
}

// DailyLoss returns today's realized loss so far
func (rm *RiskManager) DailyLoss() decimal.Decimal {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.dailyLoss
}

// ResetDailyLoss zeroes the daily tallies, typically at midnight via the
// scheduler
func (rm *RiskManager) ResetDailyLoss() {
	rm.mu.Lock()
	previous := rm.dailyLoss
	rm.dailyLoss = decimal.Zero
	rm.dailyPnL = decimal.Zero
	rm.mu.Unlock()

	metrics.UpdateDailyPnL(0)
	rm.audit.LogDailyLossReset(previous)
}

// Limits returns a copy of the configured ceilings
func (rm *RiskManager) Limits() RiskLimits {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.limits
}
