// Package repository provides PostgreSQL persistence for predictions and
// betting decisions.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quant-trader/internal/models"
)

// PredictionRepository persists and queries model predictions
type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	GetByMatchID(ctx context.Context, matchID string) ([]*models.Prediction, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Prediction, error)
}

// DecisionRepository persists and queries betting decisions
type DecisionRepository interface {
	Create(ctx context.Context, decision *models.BettingDecision) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BettingDecision, error)
	GetByMatchID(ctx context.Context, matchID string) ([]*models.BettingDecision, error)
	GetActive(ctx context.Context) ([]*models.BettingDecision, error)
	GetSettled(ctx context.Context, start, end time.Time) ([]*models.BettingDecision, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BetStatus) error
}
