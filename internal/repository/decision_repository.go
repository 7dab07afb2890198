package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/quant-trader/internal/database"
	"github.com/yourusername/quant-trader/internal/models"
)

// PostgresDecisionRepository implements DecisionRepository for PostgreSQL
type PostgresDecisionRepository struct {
	db *database.DB
}

// NewPostgresDecisionRepository creates a new decision repository
func NewPostgresDecisionRepository(db *database.DB) DecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

const decisionColumns = `id, match_id, bet_type, stake, odds, expected_value, kelly_fraction,
	confidence, strategy, status, placed_at`

// Create inserts a new betting decision
func (r *PostgresDecisionRepository) Create(ctx context.Context, decision *models.BettingDecision) error {
	query := `
		INSERT INTO betting_decisions (` + decisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		decision.ID, decision.MatchID, decision.BetType, decision.Stake, decision.Odds,
		decision.ExpectedValue, decision.KellyFraction, decision.Confidence,
		decision.Strategy, decision.Status, decision.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create betting decision: %w", err)
	}

	return nil
}

// GetByID retrieves a decision by ID
func (r *PostgresDecisionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BettingDecision, error) {
	query := `SELECT ` + decisionColumns + ` FROM betting_decisions WHERE id = $1`

	decision, err := scanDecision(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get betting decision: %w", err)
	}

	return decision, nil
}

// GetByMatchID retrieves all decisions for a match, newest first
func (r *PostgresDecisionRepository) GetByMatchID(ctx context.Context, matchID string) ([]*models.BettingDecision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM betting_decisions
		WHERE match_id = $1
		ORDER BY placed_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions by match: %w", err)
	}
	defer rows.Close()

	return collectDecisions(rows)
}

// GetActive retrieves all pending and placed decisions
func (r *PostgresDecisionRepository) GetActive(ctx context.Context) ([]*models.BettingDecision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM betting_decisions
		WHERE status IN ('pending', 'placed')
		ORDER BY placed_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active decisions: %w", err)
	}
	defer rows.Close()

	return collectDecisions(rows)
}

// GetSettled retrieves won and lost decisions within a date range
func (r *PostgresDecisionRepository) GetSettled(ctx context.Context, start, end time.Time) ([]*models.BettingDecision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM betting_decisions
		WHERE status IN ('won', 'lost') AND updated_at >= $1 AND updated_at <= $2
		ORDER BY updated_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query settled decisions: %w", err)
	}
	defer rows.Close()

	return collectDecisions(rows)
}

// UpdateStatus moves a decision to a new lifecycle status
func (r *PostgresDecisionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BetStatus) error {
	query := `UPDATE betting_decisions SET status = $2, updated_at = NOW() WHERE id = $1`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update decision status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanDecision(row pgx.Row) (*models.BettingDecision, error) {
	decision := &models.BettingDecision{}
	err := row.Scan(
		&decision.ID, &decision.MatchID, &decision.BetType, &decision.Stake, &decision.Odds,
		&decision.ExpectedValue, &decision.KellyFraction, &decision.Confidence,
		&decision.Strategy, &decision.Status, &decision.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

func collectDecisions(rows pgx.Rows) ([]*models.BettingDecision, error) {
	var decisions []*models.BettingDecision
	for rows.Next() {
		decision, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan betting decision: %w", err)
		}
		decisions = append(decisions, decision)
	}
	return decisions, rows.Err()
}
