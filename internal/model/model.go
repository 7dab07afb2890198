// Package model provides the prediction models of the decision pipeline:
// logistic regression, Poisson goal rates, and an ensemble blending both.
package model

import (
	"github.com/yourusername/quant-trader/internal/models"
)

const modelVersion = "v1.0"

// PredictionModel is the shared contract the trading engine depends on. The
// ensemble composes two instances of it rather than extending either.
type PredictionModel interface {
	// Name returns the model's stable identifier
	Name() string
	// Version returns the model's version string
	Version() string
	// Predict maps a feature vector to a three-way outcome prediction
	Predict(fv *models.FeatureVector) (*models.Prediction, error)
	// UpdateWeights folds observed-outcome feedback into the model. Updates
	// are best-effort; failures are logged, never propagated as fatal.
	UpdateWeights(feedback *models.ModelFeedback) error
}

// clampAndNormalize clamps each probability to [0.01, 0.98] and renormalizes
// the triple to sum exactly 1
func clampAndNormalize(home, draw, away float64) (float64, float64, float64) {
	home = clampProb(home)
	draw = clampProb(draw)
	away = clampProb(away)

	total := home + draw + away
	return home / total, draw / total, away / total
}

func clampProb(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.98 {
		return 0.98
	}
	return p
}
