package model

import (
	"sync"

	"github.com/yourusername/quant-trader/internal/models"
)

// PerformanceTracker accumulates calibration statistics per model as
// predictions resolve
type PerformanceTracker struct {
	mu      sync.RWMutex
	records map[string]*models.ModelPerformance
}

// NewPerformanceTracker creates an empty tracker
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{records: make(map[string]*models.ModelPerformance)}
}

// Record folds one resolved prediction into the owning model's statistics.
// The predicted probability is the mass the model put on the outcome that
// actually happened when correct, on its chosen outcome otherwise.
func (pt *PerformanceTracker) Record(prediction *models.Prediction, actual models.PredictedOutcome) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	record, ok := pt.records[prediction.ModelName]
	if !ok {
		record = models.NewModelPerformance(prediction.ModelName, prediction.ModelVersion)
		pt.records[prediction.ModelName] = record
	}

	correct := prediction.MostLikelyOutcome() == actual

	var predictedProb float64
	switch actual {
	case models.OutcomeHomeWin:
		predictedProb = prediction.HomeWinProb
	case models.OutcomeAwayWin:
		predictedProb = prediction.AwayWinProb
	default:
		predictedProb = prediction.DrawProbOrZero()
	}

	record.RecordOutcome(predictedProb, correct)
}

// Performance returns a copy of a model's statistics, false if the model has
// no resolved predictions yet
func (pt *PerformanceTracker) Performance(modelName string) (models.ModelPerformance, bool) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	record, ok := pt.records[modelName]
	if !ok {
		return models.ModelPerformance{}, false
	}
	return *record, true
}

// All returns copies of every tracked model's statistics
func (pt *PerformanceTracker) All() []models.ModelPerformance {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	all := make([]models.ModelPerformance, 0, len(pt.records))
	for _, record := range pt.records {
		all = append(all, *record)
	}
	return all
}
