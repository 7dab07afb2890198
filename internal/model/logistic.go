package model

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/models"
)

const logisticModelName = "LogisticRegression"

// featureNames is the canonical feature ordering shared by all three weight
// vectors
var featureNames = []string{
	"minute", "home_score", "away_score", "score_difference", "total_goals",
	"momentum", "intensity", "game_phase", "time_pressure",
	"home_elo", "away_elo", "elo_difference",
	"home_attack", "home_defense", "away_attack", "away_defense",
	"home_expected_goals", "away_expected_goals",
	"home_form", "away_form", "form_difference",
	"home_discipline", "away_discipline",
	"home_season_discipline", "away_season_discipline",
	"match_status", "event_influence", "home_advantage",
	"hour_of_day", "is_evening", "day_of_week", "is_weekend",
	"league_competitiveness", "league_avg_goals", "league_avg_cards",
	"league_home_advantage",
}

// LogisticModel predicts via per-class weight vectors and a softmax over the
// three outcome logits. Weights are seeded with small random perturbations so
// two instances differ, but each instance is deterministic between updates.
type LogisticModel struct {
	mu sync.RWMutex

	homeWeights  map[string]float64
	drawWeights  map[string]float64
	awayWeights  map[string]float64
	learningRate float64
	logger       *logrus.Logger
}

// NewLogisticModel creates a logistic model with randomly perturbed seed
// weights and the given learning rate
func NewLogisticModel(learningRate float64, logger *logrus.Logger) *LogisticModel {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	seed := func(bias float64) map[string]float64 {
		weights := make(map[string]float64, len(featureNames))
		for _, name := range featureNames {
			weights[name] = bias + (rng.Float64()-0.5)*0.02
		}
		return weights
	}

	m := &LogisticModel{
		homeWeights:  seed(0.01),
		drawWeights:  seed(0.0),
		awayWeights:  seed(-0.01),
		learningRate: learningRate,
		logger:       logger,
	}

	// Scale down the raw-magnitude features so Elo ratings do not swamp the
	// logits
	for _, w := range []map[string]float64{m.homeWeights, m.drawWeights, m.awayWeights} {
		for _, name := range []string{"home_elo", "away_elo", "elo_difference"} {
			w[name] *= 0.001
		}
		w["minute"] *= 0.01
		w["hour_of_day"] *= 0.01
	}

	return m
}

// Name returns the model identifier
func (m *LogisticModel) Name() string { return logisticModelName }

// Version returns the model version
func (m *LogisticModel) Version() string { return modelVersion }

// Predict computes softmax probabilities over the three outcome logits,
// clamps, renormalizes, and derives confidence from the normalized entropy
func (m *LogisticModel) Predict(fv *models.FeatureVector) (*models.Prediction, error) {
	m.mu.RLock()
	homeLogit := dot(m.homeWeights, fv)
	drawLogit := dot(m.drawWeights, fv)
	awayLogit := dot(m.awayWeights, fv)
	m.mu.RUnlock()

	home, draw, away := softmax3(homeLogit, drawLogit, awayLogit)
	home, draw, away = clampAndNormalize(home, draw, away)

	prediction, err := models.NewPrediction(fv.MatchID, logisticModelName, modelVersion, home, away, fv.Timestamp)
	if err != nil {
		return nil, err
	}
	if prediction, err = prediction.WithDrawProb(draw); err != nil {
		return nil, err
	}

	// Peaked distributions yield confidence near 1, uniform near 0
	entropy := 0.0
	for _, p := range []float64{home, draw, away} {
		entropy -= p * math.Log(p)
	}
	confidence := 1.0 - entropy/math.Log(3)
	if prediction, err = prediction.WithConfidence(confidence); err != nil {
		return nil, err
	}

	return prediction.WithFeatures(fv.Names()), nil
}

// UpdateWeights applies a coarse scalar nudge, not a gradient-exact update:
// positive reward scales all weight vectors up, negative down, with the draw
// class moving half as far as home and away.
func (m *LogisticModel) UpdateWeights(feedback *models.ModelFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	direction := feedback.Reward * m.learningRate
	if !feedback.ActualOutcome {
		direction = -math.Abs(direction)
	}

	for name := range m.homeWeights {
		m.homeWeights[name] *= 1.0 + direction
		m.drawWeights[name] *= 1.0 + direction*0.5
		m.awayWeights[name] *= 1.0 + direction
	}

	m.logger.WithFields(logrus.Fields{
		"model":         logisticModelName,
		"prediction_id": feedback.PredictionID,
		"reward":        feedback.Reward,
	}).Debug("Updated logistic weights")

	return nil
}

func dot(weights map[string]float64, fv *models.FeatureVector) float64 {
	sum := 0.0
	for name, w := range weights {
		sum += w * fv.Get(name, 0)
	}
	return sum
}

func softmax3(a, b, c float64) (float64, float64, float64) {
	max := math.Max(a, math.Max(b, c))
	ea := math.Exp(a - max)
	eb := math.Exp(b - max)
	ec := math.Exp(c - max)
	total := ea + eb + ec
	return ea / total, eb / total, ec / total
}
