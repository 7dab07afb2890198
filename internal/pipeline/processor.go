// Package pipeline runs the event loop connecting the feed to features,
// predictions, market odds, and trading decisions.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/feature"
	"github.com/yourusername/quant-trader/internal/market"
	"github.com/yourusername/quant-trader/internal/metrics"
	"github.com/yourusername/quant-trader/internal/model"
	"github.com/yourusername/quant-trader/internal/models"
	"github.com/yourusername/quant-trader/internal/trading"
)

// EventSink receives a copy of every processed event, e.g. for the live
// websocket stream. Implementations must not block.
type EventSink interface {
	Publish(event models.MatchEvent)
}

// Recorder persists predictions and decisions as they happen. The pipeline
// never depends on persistence succeeding; failures are logged and dropped.
type Recorder interface {
	RecordPrediction(ctx context.Context, prediction *models.Prediction) error
	RecordDecision(ctx context.Context, decision *models.BettingDecision) error
}

// Processor drives one match event through the full decision pipeline
type Processor struct {
	engineer    *feature.Engineer
	predictor   model.PredictionModel
	cache       *model.PredictionCache
	performance *model.PerformanceTracker
	simulator   *market.Simulator
	engine      *trading.Engine

	sink           EventSink
	recorder       Recorder
	enableFeedback bool
	logger         *logrus.Logger
}

// Options carries the optional collaborators of a processor
type Options struct {
	Sink           EventSink
	Recorder       Recorder
	EnableFeedback bool
}

// NewProcessor wires the pipeline components together
func NewProcessor(
	engineer *feature.Engineer,
	predictor model.PredictionModel,
	cache *model.PredictionCache,
	performance *model.PerformanceTracker,
	simulator *market.Simulator,
	engine *trading.Engine,
	opts Options,
	logger *logrus.Logger,
) *Processor {
	return &Processor{
		engineer:       engineer,
		predictor:      predictor,
		cache:          cache,
		performance:    performance,
		simulator:      simulator,
		engine:         engine,
		sink:           opts.Sink,
		recorder:       opts.Recorder,
		enableFeedback: opts.EnableFeedback,
		logger:         logger,
	}
}

// Run consumes events until the channel closes or the context is cancelled
func (p *Processor) Run(ctx context.Context, events <-chan models.MatchEvent) error {
	p.logger.Info("Pipeline processor started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				p.logger.Info("Event channel closed, pipeline stopping")
				return nil
			}
			if err := p.ProcessEvent(ctx, &event); err != nil {
				p.logger.WithError(err).WithFields(logrus.Fields{
					"match_id": event.MatchID,
					"kind":     event.Detail.Kind,
				}).Error("Failed to process event")
			}
		}
	}
}

// ProcessEvent runs one event through features, prediction, odds synthesis
// and trading. Match completion additionally settles bets and feeds outcomes
// back into team statistics and model weights.
func (p *Processor) ProcessEvent(ctx context.Context, event *models.MatchEvent) error {
	metrics.RecordEventProcessed(string(event.Detail.Kind))
	if p.sink != nil {
		p.sink.Publish(*event)
	}

	predictStart := time.Now()
	fv, err := p.engineer.ExtractFeatures(event)
	if err != nil {
		return err
	}

	prediction, err := p.predictor.Predict(fv)
	if err != nil {
		return err
	}
	metrics.RecordPrediction(prediction.ModelName)
	metrics.RecordPredictionLatency(time.Since(predictStart).Seconds())

	p.cache.Put(event.MatchID, prediction)
	if p.recorder != nil {
		if err := p.recorder.RecordPrediction(ctx, prediction); err != nil {
			p.logger.WithError(err).Debug("Prediction persistence failed")
		}
	}

	// Odds: full generation on kickoff, regeneration only on goals/cards
	if event.Detail.Kind == models.EventMatchStart {
		odds, err := p.simulator.GenerateMarketOdds(event)
		if err != nil {
			return err
		}
		p.engine.UpdateMarketOdds(event.MatchID, odds)
	} else if updated, err := p.simulator.UpdateOddsForEvent(event); err != nil {
		return err
	} else if updated != nil {
		p.engine.UpdateMarketOdds(event.MatchID, *updated)
	}

	tradeStart := time.Now()
	signal, err := p.engine.ProcessPrediction(prediction)
	if err != nil {
		return err
	}

	if signal.RecommendedBet != nil {
		executed, err := p.engine.ExecuteTrade(signal)
		if err != nil {
			return err
		}
		if executed && p.recorder != nil {
			if err := p.recorder.RecordDecision(ctx, signal.RecommendedBet); err != nil {
				p.logger.WithError(err).Debug("Decision persistence failed")
			}
		}
	}
	metrics.RecordTradeDecisionLatency(time.Since(tradeStart).Seconds())

	if event.IsFinished() {
		p.completeMatch(event, prediction)
	}

	return nil
}

// completeMatch settles the match, updates team season statistics, and feeds
// the observed outcome back into the model
func (p *Processor) completeMatch(event *models.MatchEvent, prediction *models.Prediction) {
	outcome := finalOutcome(event)

	if err := p.engine.SettleMatch(event.MatchID, outcome); err != nil {
		p.logger.WithError(err).WithField("match_id", event.MatchID).
			Error("Failed to settle match")
	}

	if event.Score != nil {
		p.engineer.UpdateTeamStats(event.TeamHome, event.Score.Home, event.Score.Away)
		p.engineer.UpdateTeamStats(event.TeamAway, event.Score.Away, event.Score.Home)
	}

	p.performance.Record(prediction, outcome)

	if p.enableFeedback {
		correct := prediction.MostLikelyOutcome() == outcome
		reward := 1.0
		if !correct {
			reward = -0.5
		}
		feedback := &models.ModelFeedback{
			PredictionID:  prediction.ID,
			ActualOutcome: correct,
			Reward:        reward,
		}
		if err := p.predictor.UpdateWeights(feedback); err != nil {
			p.logger.WithError(err).Warn("Model feedback failed")
		}
	}

	p.engineer.ClearMatch(event.MatchID)
	p.simulator.ClearMatch(event.MatchID)

	p.logger.WithFields(logrus.Fields{
		"match_id": event.MatchID,
		"outcome":  outcome,
	}).Info("Match completed")
}

// finalOutcome derives the three-way result from the event's final score,
// defaulting to a draw when no score is attached
func finalOutcome(event *models.MatchEvent) models.PredictedOutcome {
	if event.Score == nil {
		return models.OutcomeDraw
	}
	switch {
	case event.Score.Home > event.Score.Away:
		return models.OutcomeHomeWin
	case event.Score.Away > event.Score.Home:
		return models.OutcomeAwayWin
	default:
		return models.OutcomeDraw
	}
}
