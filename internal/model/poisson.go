package model

import (
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/models"
)

const (
	poissonModelName = "PoissonGoals"

	baseHomeRate = 1.4
	baseAwayRate = 1.3
	minGoalRate  = 0.5
	maxGoalRate  = 3.0
	maxGoals     = 6
	rateNudge    = 0.01
)

// PoissonModel predicts by summing the joint Poisson probability mass over a
// 7x7 grid of plausible scorelines, bucketing each cell into home win, draw
// or away win.
type PoissonModel struct {
	mu sync.RWMutex

	homeRate float64
	awayRate float64
	logger   *logrus.Logger
}

// NewPoissonModel creates a Poisson model seeded near realistic goal averages
func NewPoissonModel(logger *logrus.Logger) *PoissonModel {
	return &PoissonModel{
		homeRate: baseHomeRate,
		awayRate: baseAwayRate,
		logger:   logger,
	}
}

// Name returns the model identifier
func (m *PoissonModel) Name() string { return poissonModelName }

// Version returns the model version
func (m *PoissonModel) Version() string { return modelVersion }

// Predict adjusts the base goal rates by attack/defense strengths and home
// advantage, then buckets the scoreline grid into outcome probabilities
func (m *PoissonModel) Predict(fv *models.FeatureVector) (*models.Prediction, error) {
	m.mu.RLock()
	homeRate := m.homeRate
	awayRate := m.awayRate
	m.mu.RUnlock()

	homeAttack := fv.Get("home_attack", 1.0)
	homeDefense := fv.Get("home_defense", 1.0)
	awayAttack := fv.Get("away_attack", 1.0)
	awayDefense := fv.Get("away_defense", 1.0)
	homeAdvantage := fv.Get("home_advantage", 1.0)

	lambdaHome := homeRate * homeAttack * awayDefense * (1.0 + 0.1*homeAdvantage)
	lambdaAway := awayRate * awayAttack * homeDefense

	homeWin, draw, awayWin := 0.0, 0.0, 0.0
	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			p := poissonPMF(lambdaHome, h) * poissonPMF(lambdaAway, a)
			switch {
			case h > a:
				homeWin += p
			case h == a:
				draw += p
			default:
				awayWin += p
			}
		}
	}

	home, drawProb, away := clampAndNormalize(homeWin, draw, awayWin)

	prediction, err := models.NewPrediction(fv.MatchID, poissonModelName, modelVersion, home, away, fv.Timestamp)
	if err != nil {
		return nil, err
	}
	if prediction, err = prediction.WithDrawProb(drawProb); err != nil {
		return nil, err
	}

	// A wide rate gap means a clearer favourite
	confidence := 0.5 + math.Abs(lambdaHome-lambdaAway)/4.0
	if confidence > 1.0 {
		confidence = 1.0
	}
	if prediction, err = prediction.WithConfidence(confidence); err != nil {
		return nil, err
	}

	return prediction.
		WithExpectedGoals(lambdaHome, lambdaAway).
		WithFeatures(fv.Names()), nil
}

// UpdateWeights nudges both goal rates by reward scaled with the fixed nudge
// factor, keeping them inside the plausible band
func (m *PoissonModel) UpdateWeights(feedback *models.ModelFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delta := feedback.Reward * rateNudge
	if !feedback.ActualOutcome {
		delta = -math.Abs(delta)
	}

	m.homeRate = clampRate(m.homeRate + delta)
	m.awayRate = clampRate(m.awayRate + delta)

	m.logger.WithFields(logrus.Fields{
		"model":         poissonModelName,
		"prediction_id": feedback.PredictionID,
		"home_rate":     m.homeRate,
		"away_rate":     m.awayRate,
	}).Debug("Updated Poisson goal rates")

	return nil
}

func poissonPMF(lambda float64, k int) float64 {
	return math.Exp(-lambda) * math.Pow(lambda, float64(k)) / factorial(k)
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

func clampRate(rate float64) float64 {
	if rate < minGoalRate {
		return minGoalRate
	}
	if rate > maxGoalRate {
		return maxGoalRate
	}
	return rate
}
