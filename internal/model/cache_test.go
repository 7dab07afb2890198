package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quant-trader/internal/models"
)

func cachedPrediction(t *testing.T, matchID string, homeProb float64) *models.Prediction {
	t.Helper()
	p, err := models.NewPrediction(matchID, "TestModel", "v1.0", homeProb, 0.2, time.Now())
	require.NoError(t, err)
	return p
}

func TestCachePutAndLatest(t *testing.T) {
	cache := NewPredictionCache(time.Minute, time.Minute)

	assert.Nil(t, cache.Latest("match_1"))

	first := cachedPrediction(t, "match_1", 0.5)
	second := cachedPrediction(t, "match_1", 0.6)
	cache.Put("match_1", first)
	cache.Put("match_1", second)

	latest := cache.Latest("match_1")
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	recent := cache.Recent("match_1")
	assert.Len(t, recent, 2)
	assert.Equal(t, first.ID, recent[0].ID)
}

func TestCacheBoundsRecentTail(t *testing.T) {
	cache := NewPredictionCache(time.Minute, time.Minute)

	for i := 0; i < 30; i++ {
		cache.Put("match_1", cachedPrediction(t, "match_1", 0.5))
	}

	assert.Len(t, cache.Recent("match_1"), 20)
}

func TestCacheStats(t *testing.T) {
	cache := NewPredictionCache(time.Minute, time.Minute)
	cache.Put("match_1", cachedPrediction(t, "match_1", 0.5))

	cache.Recent("match_1")
	cache.Recent("match_1")
	cache.Recent("missing")

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 2.0/3.0, ratio, 1e-9)
}

func TestCacheClear(t *testing.T) {
	cache := NewPredictionCache(time.Minute, time.Minute)
	for i := 0; i < 3; i++ {
		matchID := fmt.Sprintf("match_%d", i)
		cache.Put(matchID, cachedPrediction(t, matchID, 0.5))
	}
	assert.Equal(t, 3, cache.ItemCount())

	cache.Clear()
	assert.Equal(t, 0, cache.ItemCount())
	assert.Nil(t, cache.Latest("match_0"))
}

func TestPerformanceTrackerRecords(t *testing.T) {
	tracker := NewPerformanceTracker()

	correct := cachedPrediction(t, "match_1", 0.7)
	tracker.Record(correct, models.OutcomeHomeWin)

	wrong := cachedPrediction(t, "match_1", 0.7)
	tracker.Record(wrong, models.OutcomeAwayWin)

	perf, ok := tracker.Performance("TestModel")
	require.True(t, ok)
	assert.Equal(t, 2, perf.TotalPredictions)
	assert.Equal(t, 1, perf.CorrectPredictions)
	assert.InDelta(t, 0.5, perf.Accuracy, 1e-9)

	all := tracker.All()
	assert.Len(t, all, 1)

	_, ok = tracker.Performance("UnknownModel")
	assert.False(t, ok)
}
