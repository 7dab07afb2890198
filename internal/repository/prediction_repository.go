package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/quant-trader/internal/database"
	"github.com/yourusername/quant-trader/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = `id, match_id, model_name, model_version, home_win_prob, draw_prob,
	away_win_prob, confidence, expected_goals_home, expected_goals_away,
	prediction_timestamp, match_timestamp`

// Create inserts a new prediction
func (r *PostgresPredictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		prediction.ID, prediction.MatchID, prediction.ModelName, prediction.ModelVersion,
		prediction.HomeWinProb, prediction.DrawProb, prediction.AwayWinProb, prediction.Confidence,
		prediction.ExpectedGoalsHome, prediction.ExpectedGoalsAway,
		prediction.PredictionTimestamp, prediction.MatchTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	prediction, err := scanPrediction(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return prediction, nil
}

// GetByMatchID retrieves all predictions for a match, newest first
func (r *PostgresPredictionRepository) GetByMatchID(ctx context.Context, matchID string) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE match_id = $1
		ORDER BY prediction_timestamp DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by match: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// GetRecent retrieves the most recent predictions across all matches
func (r *PostgresPredictionRepository) GetRecent(ctx context.Context, limit int) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		ORDER BY prediction_timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent predictions: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	prediction := &models.Prediction{}
	err := row.Scan(
		&prediction.ID, &prediction.MatchID, &prediction.ModelName, &prediction.ModelVersion,
		&prediction.HomeWinProb, &prediction.DrawProb, &prediction.AwayWinProb, &prediction.Confidence,
		&prediction.ExpectedGoalsHome, &prediction.ExpectedGoalsAway,
		&prediction.PredictionTimestamp, &prediction.MatchTimestamp,
	)
	if err != nil {
		return nil, err
	}
	return prediction, nil
}

func collectPredictions(rows pgx.Rows) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, prediction)
	}
	return predictions, rows.Err()
}
