// Package trading contains the system of record for capital: the trading
// engine, risk management, and the portfolio ledger.
package trading

import (
	"time"

	"github.com/yourusername/quant-trader/internal/models"
)

// TradingSignal is the engine's verdict on a prediction: how strongly the
// edge justifies acting, and with which bet if any. A zero-strength signal
// with a reason is the normal outcome for matches without odds.
type TradingSignal struct {
	MatchID        string                  `json:"match_id"`
	SignalStrength float64                 `json:"signal_strength"`
	RecommendedBet *models.BettingDecision `json:"recommended_bet,omitempty"`
	RiskAssessment RiskAssessment          `json:"risk_assessment"`
	Reasoning      string                  `json:"reasoning"`
	Timestamp      time.Time               `json:"timestamp"`
}

// NoOddsSignal builds the zero-strength signal returned when a match has no
// market odds yet
func NoOddsSignal(matchID string) *TradingSignal {
	return &TradingSignal{
		MatchID:   matchID,
		Reasoning: "No market odds available",
		Timestamp: time.Now().UTC(),
	}
}

// RiskAssessment is an informational heuristic score attached to a signal. It
// is not itself a gate; the engine applies its own threshold at execution.
type RiskAssessment struct {
	RiskScore       float64  `json:"risk_score"`
	CorrelationRisk float64  `json:"correlation_risk"`
	VolatilityRisk  float64  `json:"volatility_risk"`
	PortfolioImpact float64  `json:"portfolio_impact"`
	Warnings        []string `json:"warnings"`
}
