// Package main provides the entry point for the quant trader.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/quant-trader/internal/config"
	"github.com/yourusername/quant-trader/internal/database"
	"github.com/yourusername/quant-trader/internal/feature"
	"github.com/yourusername/quant-trader/internal/feed"
	"github.com/yourusername/quant-trader/internal/logger"
	"github.com/yourusername/quant-trader/internal/market"
	"github.com/yourusername/quant-trader/internal/metrics"
	"github.com/yourusername/quant-trader/internal/model"
	"github.com/yourusername/quant-trader/internal/models"
	"github.com/yourusername/quant-trader/internal/pipeline"
	"github.com/yourusername/quant-trader/internal/repository"
	"github.com/yourusername/quant-trader/internal/server"
	"github.com/yourusername/quant-trader/internal/trading"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Live sports betting decision pipeline",
	Long: `Consumes a live match event stream, derives features, predicts outcomes,
synthesizes bookmaker odds, and places risk-managed simulated bets.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full trading pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		return runPipeline(cfg)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the pipeline in-memory against the synthetic feed",
	Long: `Runs the full pipeline without persistence, forcing the synthetic event
feed regardless of configuration. Useful for strategy evaluation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg.Feed.Source = "synthetic"
		cfg.Database.Enabled = false
		return runPipeline(cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trader %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(runCmd, simulateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runPipeline(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"strategy":    cfg.Trading.StrategyTier,
		"model":       cfg.Model.Active,
		"feed":        cfg.Feed.Source,
	}).Info("Quant trader starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional persistence
	var (
		db       *database.DB
		recorder pipeline.Recorder
		pinger   server.DatabasePinger
	)
	if cfg.Database.Enabled {
		var err error
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer db.Close()

		recorder = repository.NewRecorder(
			repository.NewPostgresPredictionRepository(db),
			repository.NewPostgresDecisionRepository(db),
		)
		pinger = db
		appLog.Info("Database connection established")
	}

	engineer := feature.NewEngineer(appLog)
	predictor, err := buildModel(cfg, appLog)
	if err != nil {
		return err
	}

	cache := model.NewPredictionCache(
		time.Duration(cfg.Model.CacheTTLSeconds)*time.Second,
		time.Duration(cfg.Model.CacheSweepSeconds)*time.Second,
	)
	performance := model.NewPerformanceTracker()

	simulator := market.NewSimulator(cfg.Market.MinMargin, cfg.Market.MaxMargin, appLog)

	strategy, err := models.StrategyByTier(cfg.Trading.StrategyTier)
	if err != nil {
		return fmt.Errorf("resolving strategy: %w", err)
	}

	limits := trading.RiskLimits{
		BankrollBuffer:    cfg.Trading.BankrollBuffer,
		MaxMatchExposure:  decimal.NewFromFloat(cfg.Trading.MaxMatchExposure),
		MaxDailyLoss:      decimal.NewFromFloat(cfg.Trading.MaxDailyLoss),
		MaxConcurrentBets: cfg.Trading.MaxConcurrentBets,
	}
	engine := trading.NewEngine(
		decimal.NewFromFloat(cfg.Trading.InitialBankroll),
		strategy, limits, cfg.Trading.MaxRiskScore, appLog,
	)

	hub := server.NewHub(appLog)

	processor := pipeline.NewProcessor(
		engineer, predictor, cache, performance, simulator, engine,
		pipeline.Options{
			Sink:           hub,
			Recorder:       recorder,
			EnableFeedback: cfg.Model.EnableFeedbackLoop,
		},
		appLog,
	)

	apiServer := server.NewServer(server.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Server.Port,
		Engine:      engine,
		Simulator:   simulator,
		Cache:       cache,
		Performance: performance,
		Hub:         hub,
		DB:          pinger,
		Logger:      appLog,
	})
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	scheduler := feed.NewScheduler(simulator, engine.RiskManager(), appLog)
	if err := scheduler.ScheduleMarketMovement(cfg.Market.MovementCron, cfg.Market.MovementTimeFactor); err != nil {
		return err
	}
	if err := scheduler.ScheduleDailyLossReset(cfg.Trading.DailyLossResetCron); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	source, err := buildFeedSource(cfg, appLog)
	if err != nil {
		return err
	}

	events := make(chan models.MatchEvent, 256)
	feedErr := make(chan error, 1)
	go func() {
		defer close(events)
		feedErr <- source.Stream(ctx, events)
	}()

	pipelineDone := make(chan error, 1)
	go func() {
		pipelineDone <- processor.Run(ctx, events)
	}()

	apiServer.SetReady(true)
	appLog.Info("Pipeline running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
		cancel()
		<-pipelineDone
	case err := <-pipelineDone:
		if err != nil && err != context.Canceled {
			appLog.WithError(err).Error("Pipeline stopped with error")
		}
	}

	summary := engine.PortfolioSummary()
	appLog.WithFields(logrus.Fields{
		"total_bankroll": summary.TotalBankroll,
		"profit_loss":    summary.ProfitLoss,
		"total_trades":   summary.TotalTrades,
		"win_rate":       summary.WinRate,
		"roi":            summary.ROI,
	}).Info("Quant trader shut down")

	return nil
}

func buildModel(cfg *config.Config, appLog *logrus.Logger) (model.PredictionModel, error) {
	switch cfg.Model.Active {
	case "logistic":
		return model.NewLogisticModel(cfg.Model.LearningRate, appLog), nil
	case "poisson":
		return model.NewPoissonModel(appLog), nil
	case "ensemble":
		return model.NewEnsembleModel(cfg.Model.LearningRate, appLog), nil
	default:
		return nil, fmt.Errorf("unknown model %q", cfg.Model.Active)
	}
}

func buildFeedSource(cfg *config.Config, appLog *logrus.Logger) (feed.Source, error) {
	switch cfg.Feed.Source {
	case "synthetic":
		return feed.NewSyntheticSource(feed.SampleFixtures(), cfg.Feed.EventsPerSecond, appLog), nil
	case "external":
		return feed.NewExternalSource(
			cfg.Feed.ExternalAPIURL,
			cfg.Feed.ExternalAPIKey,
			cfg.Feed.RetryMax,
			cfg.FeedTimeout(),
			0,
			appLog,
		), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}
