package model

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/quant-trader/internal/models"
)

// PredictionCache keeps the most recent predictions per match with a TTL, so
// the query surface can answer without re-running the models
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a prediction cache with the given TTL and sweep
// interval
func NewPredictionCache(ttl, sweepInterval time.Duration) *PredictionCache {
	return &PredictionCache{
		cache: cache.New(ttl, sweepInterval),
		ttl:   ttl,
	}
}

// Put stores the latest prediction list for a match
func (pc *PredictionCache) Put(matchID string, prediction *models.Prediction) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	var predictions []*models.Prediction
	if existing, found := pc.cache.Get(matchID); found {
		predictions = existing.([]*models.Prediction)
	}
	predictions = append(predictions, prediction)
	// Keep a bounded tail of recent predictions per match
	if len(predictions) > 20 {
		predictions = predictions[len(predictions)-20:]
	}
	pc.cache.Set(matchID, predictions, pc.ttl)
}

// Recent returns the recent predictions for a match, newest last
func (pc *PredictionCache) Recent(matchID string) []*models.Prediction {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if result, found := pc.cache.Get(matchID); found {
		pc.hitCount++
		return result.([]*models.Prediction)
	}
	pc.missCount++
	return nil
}

// Latest returns the most recent prediction for a match, nil if none cached
func (pc *PredictionCache) Latest(matchID string) *models.Prediction {
	predictions := pc.Recent(matchID)
	if len(predictions) == 0 {
		return nil
	}
	return predictions[len(predictions)-1]
}

// Stats returns cache hit statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// Clear flushes the cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// ItemCount returns the number of matches with cached predictions
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
