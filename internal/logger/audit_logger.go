// Package logger provides audit logging.
package logger

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for capital movements.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTradeExecution logs a committed bet.
func (al *AuditLogger) LogTradeExecution(betID, matchID, betType string, stake, odds decimal.Decimal, strategy string) {
	al.WithFields(logrus.Fields{
		"bet_id":   betID,
		"match_id": matchID,
		"bet_type": betType,
		"stake":    stake.String(),
		"odds":     odds.String(),
		"strategy": strategy,
	}).Info("Trade execution recorded")
}

// LogBetSettlement logs a bet settlement.
func (al *AuditLogger) LogBetSettlement(betID, matchID, result string, profitLoss decimal.Decimal) {
	al.WithFields(logrus.Fields{
		"bet_id":      betID,
		"match_id":    matchID,
		"result":      result,
		"profit_loss": profitLoss.String(),
	}).Info("Bet settlement recorded")
}

// LogTradeRejection logs a trade blocked before capital committed.
func (al *AuditLogger) LogTradeRejection(matchID, reason string, riskScore float64) {
	al.WithFields(logrus.Fields{
		"match_id":   matchID,
		"reason":     reason,
		"risk_score": riskScore,
	}).Warn("Trade rejection recorded")
}

// LogDailyLossReset logs the scheduled daily loss counter reset.
func (al *AuditLogger) LogDailyLossReset(previousLoss decimal.Decimal) {
	al.WithFields(logrus.Fields{
		"previous_loss": previousLoss.String(),
	}).Info("Daily loss reset recorded")
}
