package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ProbabilityTolerance is the allowed deviation of a finalized three-way
// distribution from summing to exactly 1
const ProbabilityTolerance = 1e-3

// PredictedOutcome is the most likely three-way result of a prediction
type PredictedOutcome string

const (
	OutcomeHomeWin PredictedOutcome = "home_win"
	OutcomeDraw    PredictedOutcome = "draw"
	OutcomeAwayWin PredictedOutcome = "away_win"
)

// FeatureVector is an immutable snapshot of named numeric features extracted
// from a single match event
type FeatureVector struct {
	MatchID   string             `json:"match_id"`
	Features  map[string]float64 `json:"features"`
	Timestamp time.Time          `json:"timestamp"`
}

// Get returns the named feature, or the fallback when absent
func (fv *FeatureVector) Get(name string, fallback float64) float64 {
	if v, ok := fv.Features[name]; ok {
		return v
	}
	return fallback
}

// Names returns the feature names present in the vector
func (fv *FeatureVector) Names() []string {
	names := make([]string, 0, len(fv.Features))
	for name := range fv.Features {
		names = append(names, name)
	}
	return names
}

// Prediction is an immutable probabilistic forecast of a match outcome. All
// present probabilities are individually in [0,1] and the full set sums to 1
// within ProbabilityTolerance.
type Prediction struct {
	ID                  uuid.UUID `json:"id"`
	MatchID             string    `json:"match_id"`
	ModelName           string    `json:"model_name"`
	ModelVersion        string    `json:"model_version"`
	HomeWinProb         float64   `json:"home_win_prob"`
	DrawProb            *float64  `json:"draw_prob,omitempty"`
	AwayWinProb         float64   `json:"away_win_prob"`
	Confidence          float64   `json:"confidence"`
	ExpectedGoalsHome   *float64  `json:"expected_goals_home,omitempty"`
	ExpectedGoalsAway   *float64  `json:"expected_goals_away,omitempty"`
	FeaturesUsed        []string  `json:"features_used"`
	PredictionTimestamp time.Time `json:"prediction_timestamp"`
	MatchTimestamp      time.Time `json:"match_timestamp"`
}

// NewPrediction constructs a prediction from home and away probabilities. The
// remaining mass, if any, becomes the draw probability.
func NewPrediction(matchID, modelName, modelVersion string, homeWinProb, awayWinProb float64, matchTimestamp time.Time) (*Prediction, error) {
	if homeWinProb < 0 || homeWinProb > 1 {
		return nil, &InvalidProbabilityError{Prob: homeWinProb}
	}
	if awayWinProb < 0 || awayWinProb > 1 {
		return nil, &InvalidProbabilityError{Prob: awayWinProb}
	}
	total := homeWinProb + awayWinProb
	if total > 1+ProbabilityTolerance {
		return nil, &InvalidProbabilityError{Prob: total}
	}

	p := &Prediction{
		ID:                  uuid.New(),
		MatchID:             matchID,
		ModelName:           modelName,
		ModelVersion:        modelVersion,
		HomeWinProb:         homeWinProb,
		AwayWinProb:         awayWinProb,
		PredictionTimestamp: time.Now().UTC(),
		MatchTimestamp:      matchTimestamp,
	}
	if total < 1 {
		draw := 1 - total
		p.DrawProb = &draw
	}
	return p, nil
}

// WithDrawProb sets an explicit draw probability, validating the simplex
func (p *Prediction) WithDrawProb(drawProb float64) (*Prediction, error) {
	if drawProb < 0 || drawProb > 1 {
		return nil, &InvalidProbabilityError{Prob: drawProb}
	}
	total := p.HomeWinProb + p.AwayWinProb + drawProb
	if math.Abs(total-1) > ProbabilityTolerance {
		return nil, &InvalidProbabilityError{Prob: total}
	}
	p.DrawProb = &drawProb
	return p, nil
}

// WithConfidence sets the model confidence scalar
func (p *Prediction) WithConfidence(confidence float64) (*Prediction, error) {
	if confidence < 0 || confidence > 1 {
		return nil, &InvalidProbabilityError{Prob: confidence}
	}
	p.Confidence = confidence
	return p, nil
}

// WithExpectedGoals attaches expected-goal estimates
func (p *Prediction) WithExpectedGoals(home, away float64) *Prediction {
	p.ExpectedGoalsHome = &home
	p.ExpectedGoalsAway = &away
	return p
}

// WithFeatures records the feature names the model consumed
func (p *Prediction) WithFeatures(features []string) *Prediction {
	p.FeaturesUsed = features
	return p
}

// IsConfident reports whether confidence meets the threshold
func (p *Prediction) IsConfident(threshold float64) bool {
	return p.Confidence >= threshold
}

// DrawProbOrZero returns the draw probability, 0 when unset
func (p *Prediction) DrawProbOrZero() float64 {
	if p.DrawProb == nil {
		return 0
	}
	return *p.DrawProb
}

// MostLikelyOutcome returns the outcome with the highest probability. Home is
// preferred on exact ties with away, away on exact ties with draw.
func (p *Prediction) MostLikelyOutcome() PredictedOutcome {
	draw := p.DrawProbOrZero()
	switch {
	case p.HomeWinProb >= p.AwayWinProb && p.HomeWinProb >= draw:
		return OutcomeHomeWin
	case p.AwayWinProb >= draw:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// Entropy returns the Shannon entropy of the distribution in bits
func (p *Prediction) Entropy() float64 {
	entropy := 0.0
	for _, prob := range []float64{p.HomeWinProb, p.AwayWinProb, p.DrawProbOrZero()} {
		if prob > 0 {
			entropy -= prob * math.Log2(prob)
		}
	}
	return entropy
}

// ModelFeedback carries the observed outcome of a prior prediction back to a
// model for weight adjustment
type ModelFeedback struct {
	PredictionID  uuid.UUID `json:"prediction_id"`
	ActualOutcome bool      `json:"actual_outcome"`
	Reward        float64   `json:"reward"`
}

// ModelPerformance accumulates calibration statistics for one model version
type ModelPerformance struct {
	ModelName          string    `json:"model_name"`
	ModelVersion       string    `json:"model_version"`
	TotalPredictions   int       `json:"total_predictions"`
	CorrectPredictions int       `json:"correct_predictions"`
	Accuracy           float64   `json:"accuracy"`
	BrierScore         float64   `json:"brier_score"`
	LastUpdated        time.Time `json:"last_updated"`
}

// NewModelPerformance creates an empty performance record
func NewModelPerformance(modelName, modelVersion string) *ModelPerformance {
	return &ModelPerformance{
		ModelName:    modelName,
		ModelVersion: modelVersion,
		LastUpdated:  time.Now().UTC(),
	}
}

// RecordOutcome folds one resolved prediction into accuracy and the running
// Brier score average
func (mp *ModelPerformance) RecordOutcome(predictedProb float64, correct bool) {
	mp.TotalPredictions++
	if correct {
		mp.CorrectPredictions++
	}
	mp.Accuracy = float64(mp.CorrectPredictions) / float64(mp.TotalPredictions)

	outcome := 0.0
	if correct {
		outcome = 1.0
	}
	score := (predictedProb - outcome) * (predictedProb - outcome)
	weight := 1.0 / float64(mp.TotalPredictions)
	mp.BrierScore = (1-weight)*mp.BrierScore + weight*score
	mp.LastUpdated = time.Now().UTC()
}
