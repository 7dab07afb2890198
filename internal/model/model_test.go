package model

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quant-trader/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func featureVector(overrides map[string]float64) *models.FeatureVector {
	features := map[string]float64{
		"minute": 30, "home_score": 0, "away_score": 0, "score_difference": 0,
		"total_goals": 0, "momentum": 0, "intensity": 0.2, "game_phase": 0.25,
		"time_pressure": 0.17,
		"home_elo":      1500, "away_elo": 1500, "elo_difference": 0,
		"home_attack": 1.0, "home_defense": 1.0, "away_attack": 1.0, "away_defense": 1.0,
		"home_expected_goals": 1.4, "away_expected_goals": 1.4,
		"home_form": 0.5, "away_form": 0.5, "form_difference": 0,
		"home_discipline": 0, "away_discipline": 0,
		"home_season_discipline": 0, "away_season_discipline": 0,
		"match_status": 1, "event_influence": 1.0, "home_advantage": 1.0,
		"hour_of_day": 15, "is_evening": 0, "day_of_week": 6, "is_weekend": 1,
		"league_competitiveness": 0.9, "league_avg_goals": 2.8,
		"league_avg_cards": 3.8, "league_home_advantage": 0.55,
	}
	for name, v := range overrides {
		features[name] = v
	}
	return &models.FeatureVector{
		MatchID:   "match_1",
		Features:  features,
		Timestamp: time.Now().UTC(),
	}
}

func assertValidPrediction(t *testing.T, p *models.Prediction) {
	t.Helper()
	total := p.HomeWinProb + p.DrawProbOrZero() + p.AwayWinProb
	assert.InDelta(t, 1.0, total, models.ProbabilityTolerance)

	for _, prob := range []float64{p.HomeWinProb, p.DrawProbOrZero(), p.AwayWinProb} {
		assert.GreaterOrEqual(t, prob, 0.01)
		assert.LessOrEqual(t, prob, 0.98)
	}
	assert.GreaterOrEqual(t, p.Confidence, 0.0)
	assert.LessOrEqual(t, p.Confidence, 1.0)
}

func TestModelIdentities(t *testing.T) {
	log := testLogger()

	logistic := NewLogisticModel(0.01, log)
	assert.Equal(t, "LogisticRegression", logistic.Name())
	assert.Equal(t, "v1.0", logistic.Version())

	poisson := NewPoissonModel(log)
	assert.Equal(t, "PoissonGoals", poisson.Name())
	assert.Equal(t, "v1.0", poisson.Version())

	ensemble := NewEnsembleModel(0.01, log)
	assert.Equal(t, "EnsembleModel", ensemble.Name())
	assert.Equal(t, "v1.0", ensemble.Version())
}

func TestLogisticPredictProducesValidDistribution(t *testing.T) {
	m := NewLogisticModel(0.01, testLogger())

	p, err := m.Predict(featureVector(nil))
	require.NoError(t, err)
	assertValidPrediction(t, p)
	assert.Equal(t, "LogisticRegression", p.ModelName)
	assert.NotEmpty(t, p.FeaturesUsed)
}

func TestLogisticPredictIsDeterministicBetweenUpdates(t *testing.T) {
	m := NewLogisticModel(0.01, testLogger())
	fv := featureVector(nil)

	first, err := m.Predict(fv)
	require.NoError(t, err)
	second, err := m.Predict(fv)
	require.NoError(t, err)

	assert.Equal(t, first.HomeWinProb, second.HomeWinProb)
	assert.Equal(t, first.AwayWinProb, second.AwayWinProb)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestLogisticUpdateWeightsShiftsPrediction(t *testing.T) {
	m := NewLogisticModel(0.1, testLogger())
	fv := featureVector(nil)

	before, err := m.Predict(fv)
	require.NoError(t, err)

	err = m.UpdateWeights(&models.ModelFeedback{
		PredictionID:  uuid.New(),
		ActualOutcome: true,
		Reward:        1.0,
	})
	require.NoError(t, err)

	after, err := m.Predict(fv)
	require.NoError(t, err)
	assertValidPrediction(t, after)
	assert.NotEqual(t, before.HomeWinProb, after.HomeWinProb)
}

func TestPoissonBaselineFavorsHome(t *testing.T) {
	m := NewPoissonModel(testLogger())

	p, err := m.Predict(featureVector(nil))
	require.NoError(t, err)
	assertValidPrediction(t, p)

	// Base home rate exceeds the away rate even before home advantage
	assert.Greater(t, p.HomeWinProb, p.AwayWinProb)
	require.NotNil(t, p.ExpectedGoalsHome)
	require.NotNil(t, p.ExpectedGoalsAway)
	assert.InDelta(t, 1.4*1.1, *p.ExpectedGoalsHome, 1e-9)
	assert.InDelta(t, 1.3, *p.ExpectedGoalsAway, 1e-9)
}

func TestPoissonStrongAttackRaisesExpectedGoals(t *testing.T) {
	m := NewPoissonModel(testLogger())

	weak, err := m.Predict(featureVector(map[string]float64{"home_attack": 0.5}))
	require.NoError(t, err)
	strong, err := m.Predict(featureVector(map[string]float64{"home_attack": 2.0}))
	require.NoError(t, err)

	assert.Greater(t, *strong.ExpectedGoalsHome, *weak.ExpectedGoalsHome)
	assert.Greater(t, strong.HomeWinProb, weak.HomeWinProb)
	// A clearer favourite carries higher confidence
	assert.Greater(t, strong.Confidence, weak.Confidence)
}

func TestPoissonDrawProbsDifferAcrossScoringRates(t *testing.T) {
	m := NewPoissonModel(testLogger())

	lowScoring, err := m.Predict(featureVector(map[string]float64{
		"home_attack": 0.5, "away_attack": 0.5,
	}))
	require.NoError(t, err)
	highScoring, err := m.Predict(featureVector(map[string]float64{
		"home_attack": 2.0, "away_attack": 2.0,
	}))
	require.NoError(t, err)

	assert.NotEqual(t, lowScoring.DrawProbOrZero(), highScoring.DrawProbOrZero())
}

func TestPoissonUpdateWeightsClampsRates(t *testing.T) {
	m := NewPoissonModel(testLogger())

	// Hammer the rates downward; they must stop at the floor
	for i := 0; i < 200; i++ {
		err := m.UpdateWeights(&models.ModelFeedback{
			PredictionID:  uuid.New(),
			ActualOutcome: false,
			Reward:        1.0,
		})
		require.NoError(t, err)
	}

	p, err := m.Predict(featureVector(nil))
	require.NoError(t, err)
	assert.InDelta(t, 0.5*1.1, *p.ExpectedGoalsHome, 1e-9)
	assert.InDelta(t, 0.5, *p.ExpectedGoalsAway, 1e-9)
}

func TestEnsembleBlendsSubModels(t *testing.T) {
	m := NewEnsembleModel(0.01, testLogger())
	fv := featureVector(nil)

	p, err := m.Predict(fv)
	require.NoError(t, err)
	assertValidPrediction(t, p)
	assert.Equal(t, "EnsembleModel", p.ModelName)

	logisticPred, err := m.logistic.Predict(fv)
	require.NoError(t, err)
	poissonPred, err := m.poisson.Predict(fv)
	require.NoError(t, err)

	expectedHome := 0.6*logisticPred.HomeWinProb + 0.4*poissonPred.HomeWinProb
	assert.InDelta(t, expectedHome, p.HomeWinProb, 0.02)

	expectedConfidence := (logisticPred.Confidence + poissonPred.Confidence) / 2.0
	assert.InDelta(t, expectedConfidence, p.Confidence, 1e-9)

	// Expected goals forward from the Poisson member
	require.NotNil(t, p.ExpectedGoalsHome)
	assert.Equal(t, *poissonPred.ExpectedGoalsHome, *p.ExpectedGoalsHome)
}

func TestEnsembleUpdateWeightsForwardsToBoth(t *testing.T) {
	m := NewEnsembleModel(0.1, testLogger())
	fv := featureVector(nil)

	before, err := m.Predict(fv)
	require.NoError(t, err)

	err = m.UpdateWeights(&models.ModelFeedback{
		PredictionID:  uuid.New(),
		ActualOutcome: false,
		Reward:        0.5,
	})
	require.NoError(t, err)

	after, err := m.Predict(fv)
	require.NoError(t, err)
	assertValidPrediction(t, after)
	assert.NotEqual(t, before.HomeWinProb, after.HomeWinProb)
}

func TestPredictionModelInterfaceCompliance(t *testing.T) {
	log := testLogger()
	implementations := []PredictionModel{
		NewLogisticModel(0.01, log),
		NewPoissonModel(log),
		NewEnsembleModel(0.01, log),
	}

	for _, m := range implementations {
		p, err := m.Predict(featureVector(nil))
		require.NoError(t, err, m.Name())
		assertValidPrediction(t, p)
	}
}
