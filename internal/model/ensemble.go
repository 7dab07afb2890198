package model

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/models"
)

const (
	ensembleModelName = "EnsembleModel"

	logisticBlendWeight = 0.6
	poissonBlendWeight  = 0.4
)

// EnsembleModel blends a logistic and a Poisson model with fixed weights. It
// contains its members rather than extending them.
type EnsembleModel struct {
	logistic *LogisticModel
	poisson  *PoissonModel
	logger   *logrus.Logger
}

// NewEnsembleModel creates an ensemble over fresh sub-model instances
func NewEnsembleModel(learningRate float64, logger *logrus.Logger) *EnsembleModel {
	return &EnsembleModel{
		logistic: NewLogisticModel(learningRate, logger),
		poisson:  NewPoissonModel(logger),
		logger:   logger,
	}
}

// Name returns the model identifier
func (m *EnsembleModel) Name() string { return ensembleModelName }

// Version returns the model version
func (m *EnsembleModel) Version() string { return modelVersion }

// Predict runs both sub-models and blends their probabilities with the fixed
// weights; confidence is the arithmetic mean of the sub-confidences
func (m *EnsembleModel) Predict(fv *models.FeatureVector) (*models.Prediction, error) {
	logisticPred, err := m.logistic.Predict(fv)
	if err != nil {
		return nil, err
	}
	poissonPred, err := m.poisson.Predict(fv)
	if err != nil {
		return nil, err
	}

	home := logisticBlendWeight*logisticPred.HomeWinProb + poissonBlendWeight*poissonPred.HomeWinProb
	draw := logisticBlendWeight*logisticPred.DrawProbOrZero() + poissonBlendWeight*poissonPred.DrawProbOrZero()
	away := logisticBlendWeight*logisticPred.AwayWinProb + poissonBlendWeight*poissonPred.AwayWinProb

	home, draw, away = clampAndNormalize(home, draw, away)

	prediction, err := models.NewPrediction(fv.MatchID, ensembleModelName, modelVersion, home, away, fv.Timestamp)
	if err != nil {
		return nil, err
	}
	if prediction, err = prediction.WithDrawProb(draw); err != nil {
		return nil, err
	}

	confidence := (logisticPred.Confidence + poissonPred.Confidence) / 2.0
	if prediction, err = prediction.WithConfidence(confidence); err != nil {
		return nil, err
	}

	if poissonPred.ExpectedGoalsHome != nil && poissonPred.ExpectedGoalsAway != nil {
		prediction = prediction.WithExpectedGoals(*poissonPred.ExpectedGoalsHome, *poissonPred.ExpectedGoalsAway)
	}

	return prediction.WithFeatures(fv.Names()), nil
}

// UpdateWeights forwards feedback to both sub-models independently. A failure
// in one is logged and does not abort the other.
func (m *EnsembleModel) UpdateWeights(feedback *models.ModelFeedback) error {
	if err := m.logistic.UpdateWeights(feedback); err != nil {
		m.logger.WithError(err).WithField("model", m.logistic.Name()).
			Warn("Sub-model weight update failed")
	}
	if err := m.poisson.UpdateWeights(feedback); err != nil {
		m.logger.WithError(err).WithField("model", m.poisson.Name()).
			Warn("Sub-model weight update failed")
	}
	return nil
}
