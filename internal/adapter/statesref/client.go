// Package statesref fetches the US state reference list from an external
// CSV endpoint. It backs the /api/states endpoint when enabled; the service
// runs fine without it.
package statesref

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
)

// Client implements domain.StateLister over an HTTP CSV endpoint with
// "State,Abbreviation" columns.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a state reference client.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// ListStates fetches and parses the reference list.
func (c *Client) ListStates(ctx context.Context) ([]domain.StateRef, error) {
	states, err := c.fetch(ctx)
	if err != nil {
		c.metrics.StatesRefRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.StatesRefRequests.WithLabelValues("success").Inc()
	return states, nil
}

func (c *Client) fetch(ctx context.Context) ([]domain.StateRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("states reference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("states reference API error: status %d", resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse states reference CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("states reference CSV has no data rows")
	}

	states := make([]domain.StateRef, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		code := strings.TrimSpace(row[1])
		if name == "" || code == "" {
			continue
		}
		states = append(states, domain.StateRef{Name: name, Code: code})
	}

	c.logger.Debug("fetched state reference list", "states", len(states))
	return states, nil
}
