package database

import (
	"context"
	"fmt"

	"github.com/yourusername/quant-trader/internal/config"
)

// Initialize creates a connection pool from configuration and ensures the
// trader's schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, cfg.GetDatabaseDSN(), cfg.Database.MaxConnections)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the prediction and decision tables if they are missing
func EnsureSchema(ctx context.Context, db *DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id UUID PRIMARY KEY,
			match_id TEXT NOT NULL,
			model_name TEXT NOT NULL,
			model_version TEXT NOT NULL,
			home_win_prob DOUBLE PRECISION NOT NULL,
			draw_prob DOUBLE PRECISION,
			away_win_prob DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			expected_goals_home DOUBLE PRECISION,
			expected_goals_away DOUBLE PRECISION,
			prediction_timestamp TIMESTAMPTZ NOT NULL,
			match_timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_match_id ON predictions (match_id)`,
		`CREATE TABLE IF NOT EXISTS betting_decisions (
			id UUID PRIMARY KEY,
			match_id TEXT NOT NULL,
			bet_type TEXT NOT NULL,
			stake NUMERIC(12, 2) NOT NULL,
			odds NUMERIC(10, 4) NOT NULL,
			expected_value DOUBLE PRECISION NOT NULL,
			kelly_fraction DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			strategy TEXT NOT NULL,
			status TEXT NOT NULL,
			placed_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_betting_decisions_match_id ON betting_decisions (match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_betting_decisions_status ON betting_decisions (status)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}
