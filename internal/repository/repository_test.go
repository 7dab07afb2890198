package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quant-trader/internal/database"
	"github.com/yourusername/quant-trader/internal/models"
)

func TestPredictionRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := NewPostgresPredictionRepository(db)
	ctx := context.Background()

	prediction, err := models.NewPrediction(
		uuid.NewString(), "EnsembleModel", "v1.0", 0.5, 0.3, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, prediction))

	got, err := repo.GetByID(ctx, prediction.ID)
	require.NoError(t, err)
	assert.Equal(t, prediction.MatchID, got.MatchID)
	assert.Equal(t, "EnsembleModel", got.ModelName)
	assert.InDelta(t, 0.5, got.HomeWinProb, 1e-9)

	byMatch, err := repo.GetByMatchID(ctx, prediction.MatchID)
	require.NoError(t, err)
	require.Len(t, byMatch, 1)

	recent, err := repo.GetRecent(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestPredictionRepositoryNotFound(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := NewPostgresPredictionRepository(db)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDecisionRepositoryLifecycle(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := NewPostgresDecisionRepository(db)
	ctx := context.Background()

	decision, err := models.NewBettingDecision(
		uuid.NewString(), models.BetTypeHomeWin,
		decimal.NewFromInt(50), decimal.NewFromFloat(2.1), 0.55, "Moderate Growth")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, decision))

	got, err := repo.GetByID(ctx, decision.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusPending, got.Status)
	assert.True(t, got.Stake.Equal(decimal.NewFromInt(50)))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, active)

	require.NoError(t, repo.UpdateStatus(ctx, decision.ID, models.BetStatusWon))

	settled, err := repo.GetSettled(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	found := false
	for _, d := range settled {
		if d.ID == decision.ID {
			found = true
			assert.Equal(t, models.BetStatusWon, d.Status)
		}
	}
	assert.True(t, found)
}

func TestDecisionRepositoryUpdateUnknownID(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := NewPostgresDecisionRepository(db)
	err := repo.UpdateStatus(context.Background(), uuid.New(), models.BetStatusWon)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecorderDelegates(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	recorder := NewRecorder(
		NewPostgresPredictionRepository(db),
		NewPostgresDecisionRepository(db))
	ctx := context.Background()

	prediction, err := models.NewPrediction(
		uuid.NewString(), "PoissonGoals", "v1.0", 0.4, 0.3, time.Now().UTC())
	require.NoError(t, err)
	assert.NoError(t, recorder.RecordPrediction(ctx, prediction))

	decision, err := models.NewBettingDecision(
		uuid.NewString(), models.BetTypeDraw,
		decimal.NewFromInt(25), decimal.NewFromFloat(3.4), 0.35, "Moderate Growth")
	require.NoError(t, err)
	assert.NoError(t, recorder.RecordDecision(ctx, decision))
}
