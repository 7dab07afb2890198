package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quant-trader/internal/market"
	"github.com/yourusername/quant-trader/internal/model"
	"github.com/yourusername/quant-trader/internal/models"
	"github.com/yourusername/quant-trader/internal/trading"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func newTestServer(t *testing.T, db DatabasePinger) *Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewServer(Config{
		ServiceName: "quant-trader",
		Version:     "test",
		Engine: trading.NewEngine(decimal.NewFromInt(1000), models.ModerateStrategy(),
			trading.DefaultRiskLimits(), 0.8, log),
		Simulator:   market.NewSimulator(0.02, 0.08, log),
		Cache:       model.NewPredictionCache(time.Minute, time.Minute),
		Performance: model.NewPerformanceTracker(),
		Hub:         NewHub(log),
		DB:          db,
		Logger:      log,
	})
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "quant-trader", body.Service)
}

func TestHandleReadyBeforeAndAfterSetReady(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadyReportsDatabaseFailure(t *testing.T) {
	s := newTestServer(t, &stubPinger{err: errors.New("connection refused")})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body readyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Contains(t, body.Checks["database"], "connection refused")
}

func TestHandlePortfolio(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handlePortfolio(rec, httptest.NewRequest(http.MethodGet, "/api/v1/portfolio", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var summary trading.PortfolioSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.True(t, summary.TotalBankroll.Equal(decimal.NewFromInt(1000)))
	assert.Zero(t, summary.ActiveBetsCount)
}

func TestHandleMarket(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/markets/match_1", nil)
	req.SetPathValue("match_id", "match_1")
	rec := httptest.NewRecorder()
	s.handleMarket(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	event := models.NewMatchEvent("match_1",
		models.EventDetail{Kind: models.EventMatchStart},
		"Arsenal", "Chelsea", "Premier League", "2024-25")
	_, err := s.simulator.GenerateMarketOdds(&event)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	s.handleMarket(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		MatchID string                  `json:"match_id"`
		Odds    models.SimpleMarketOdds `json:"odds"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "match_1", body.MatchID)
	assert.True(t, body.Odds.HomeWin.GreaterThan(decimal.NewFromInt(1)))
}

func TestHandlePredictions(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/match_1", nil)
	req.SetPathValue("match_id", "match_1")
	rec := httptest.NewRecorder()
	s.handlePredictions(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	p, err := models.NewPrediction("match_1", "EnsembleModel", "v1.0", 0.5, 0.3, time.Now().UTC())
	require.NoError(t, err)
	s.cache.Put("match_1", p)

	rec = httptest.NewRecorder()
	s.handlePredictions(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		MatchID     string               `json:"match_id"`
		Predictions []*models.Prediction `json:"predictions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Predictions, 1)
}

func TestHandlePerformance(t *testing.T) {
	s := newTestServer(t, nil)

	p, err := models.NewPrediction("match_1", "EnsembleModel", "v1.0", 0.6, 0.2, time.Now().UTC())
	require.NoError(t, err)
	s.performance.Record(p, models.OutcomeHomeWin)

	rec := httptest.NewRecorder()
	s.handlePerformance(rec, httptest.NewRequest(http.MethodGet, "/api/v1/models/performance", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body []models.ModelPerformance
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "EnsembleModel", body[0].ModelName)
	assert.Equal(t, 1, body[0].TotalPredictions)
}

func TestHandleStreamWithoutHub(t *testing.T) {
	s := newTestServer(t, nil)
	s.hub = nil

	rec := httptest.NewRecorder()
	s.handleStream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/stream", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
