// Package metrics provides the centralized Prometheus metrics registry for the
// decision pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EventsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "events_processed_total",
		Help:      "Total number of match events processed",
	}, []string{"kind"})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "predictions_total",
		Help:      "Total number of predictions produced",
	}, []string{"model"})
	SignalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "signals_total",
		Help:      "Total number of trading signals generated",
	})
	TradesExecutedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "trades_executed_total",
		Help:      "Total number of trades executed",
	})
	TradesRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "trades_rejected_total",
		Help:      "Total number of trades rejected before execution",
	}, []string{"reason"})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled",
	}, []string{"result"})
	OddsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quant_trader",
		Name:      "odds_generated_total",
		Help:      "Total number of market odds snapshots generated",
	})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quant_trader",
		Name:      "current_bankroll",
		Help:      "Current available bankroll in currency units",
	})
	TotalExposure = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quant_trader",
		Name:      "total_exposure",
		Help:      "Total stake held in active bets",
	})
	ActiveBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quant_trader",
		Name:      "active_bets",
		Help:      "Number of currently active bets",
	})
	DailyPnL = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quant_trader",
		Name:      "daily_pnl",
		Help:      "Realized profit and loss since the last daily reset",
	})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quant_trader",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of feature extraction plus model prediction in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	TradeDecisionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quant_trader",
		Name:      "trade_decision_latency_seconds",
		Help:      "Latency of signal generation plus trade execution in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EventsProcessedTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(SignalsTotal)
		registry.MustRegister(TradesExecutedTotal)
		registry.MustRegister(TradesRejectedTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(OddsGeneratedTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(TotalExposure)
		registry.MustRegister(ActiveBets)
		registry.MustRegister(DailyPnL)

		registry.MustRegister(PredictionLatency)
		registry.MustRegister(TradeDecisionLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEventProcessed records a processed match event.
func RecordEventProcessed(kind string) {
	EventsProcessedTotal.WithLabelValues(kind).Inc()
}

// RecordPrediction records a produced prediction.
func RecordPrediction(model string) {
	PredictionsTotal.WithLabelValues(model).Inc()
}

// RecordSignal records a generated trading signal.
func RecordSignal() {
	SignalsTotal.Inc()
}

// RecordTradeExecuted records an executed trade.
func RecordTradeExecuted() {
	TradesExecutedTotal.Inc()
}

// RecordTradeRejected records a rejected trade with its reason.
func RecordTradeRejected(reason string) {
	TradesRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordBetSettled records a settled bet with its result.
func RecordBetSettled(result string) {
	BetsSettledTotal.WithLabelValues(result).Inc()
}

// RecordOddsGenerated records a generated odds snapshot.
func RecordOddsGenerated() {
	OddsGeneratedTotal.Inc()
}

// UpdateBankroll updates the available bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdateExposure updates the total exposure gauge.
func UpdateExposure(amount float64) {
	TotalExposure.Set(amount)
}

// UpdateActiveBets updates the active bets gauge.
func UpdateActiveBets(count float64) {
	ActiveBets.Set(count)
}

// UpdateDailyPnL updates the daily P&L gauge.
func UpdateDailyPnL(pnl float64) {
	DailyPnL.Set(pnl)
}

// RecordPredictionLatency records prediction path latency.
func RecordPredictionLatency(durationSeconds float64) {
	PredictionLatency.Observe(durationSeconds)
}

// RecordTradeDecisionLatency records trading path latency.
func RecordTradeDecisionLatency(durationSeconds float64) {
	TradeDecisionLatency.Observe(durationSeconds)
}
