package feed

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/market"
	"github.com/yourusername/quant-trader/internal/trading"
)

// Scheduler runs the periodic background jobs of the pipeline: pre-kickoff
// market drift and the daily loss reset
type Scheduler struct {
	cron      *cron.Cron
	simulator *market.Simulator
	risk      *trading.RiskManager
	logger    *logrus.Logger

	mu        sync.Mutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler over the simulator and risk manager
func NewScheduler(simulator *market.Simulator, risk *trading.RiskManager, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		simulator: simulator,
		risk:      risk,
		logger:    logger,
	}
}

// ScheduleMarketMovement drifts the odds of every active match on the given
// cron expression with the given time factor
func (s *Scheduler) ScheduleMarketMovement(cronExpression string, timeFactor float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	id, err := s.cron.AddFunc(cronExpression, func() {
		for _, matchID := range s.simulator.ActiveMatches() {
			if err := s.simulator.SimulateMarketMovement(matchID, timeFactor); err != nil {
				s.logger.WithError(err).WithField("match_id", matchID).
					Warn("Market movement simulation failed")
			}
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling market movement: %w", err)
	}

	s.jobIDs = append(s.jobIDs, id)
	return nil
}

// ScheduleDailyLossReset zeroes the risk manager's daily loss tally on the
// given cron expression, typically at midnight
func (s *Scheduler) ScheduleDailyLossReset(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	id, err := s.cron.AddFunc(cronExpression, s.risk.ResetDailyLoss)
	if err != nil {
		return fmt.Errorf("scheduling daily loss reset: %w", err)
	}

	s.jobIDs = append(s.jobIDs, id)
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
}

// Stop halts scheduled jobs, waiting for in-flight runs to complete
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}
