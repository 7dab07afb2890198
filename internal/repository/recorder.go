package repository

import (
	"context"

	"github.com/yourusername/quant-trader/internal/models"
)

// Recorder adapts the repositories to the pipeline's persistence hook
type Recorder struct {
	predictions PredictionRepository
	decisions   DecisionRepository
}

// NewRecorder creates a recorder over the two repositories
func NewRecorder(predictions PredictionRepository, decisions DecisionRepository) *Recorder {
	return &Recorder{predictions: predictions, decisions: decisions}
}

// RecordPrediction persists a prediction
func (r *Recorder) RecordPrediction(ctx context.Context, prediction *models.Prediction) error {
	return r.predictions.Create(ctx, prediction)
}

// RecordDecision persists a betting decision
func (r *Recorder) RecordDecision(ctx context.Context, decision *models.BettingDecision) error {
	return r.decisions.Create(ctx, decision)
}
