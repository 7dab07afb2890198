package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/models"
)

// ExternalSource polls a sports data API for match events. Requests retry
// with backoff via retryablehttp; responses are expected as a JSON array of
// MatchEvent.
type ExternalSource struct {
	baseURL      string
	apiKey       string
	client       *retryablehttp.Client
	pollInterval time.Duration
	logger       *logrus.Logger

	// seen deduplicates events across polls
	seen map[string]struct{}
}

// NewExternalSource creates an external API source with retrying transport
func NewExternalSource(baseURL, apiKey string, retryMax int, timeout, pollInterval time.Duration, logger *logrus.Logger) *ExternalSource {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	return &ExternalSource{
		baseURL:      baseURL,
		apiKey:       apiKey,
		client:       client,
		pollInterval: pollInterval,
		logger:       logger,
		seen:         make(map[string]struct{}),
	}
}

// Stream polls the API on an interval and forwards unseen events until the
// context is cancelled
func (s *ExternalSource) Stream(ctx context.Context, out chan<- models.MatchEvent) error {
	s.logger.WithField("url", s.baseURL).Info("Starting external event feed")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		events, err := s.fetchEvents(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("External feed poll failed")
			continue
		}

		for _, event := range events {
			key := event.ID.String()
			if _, dup := s.seen[key]; dup {
				continue
			}
			s.seen[key] = struct{}{}

			select {
			case out <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (s *ExternalSource) fetchEvents(ctx context.Context) ([]models.MatchEvent, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/events/live", nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching live events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var events []models.MatchEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding feed response: %w", err)
	}
	return events, nil
}
