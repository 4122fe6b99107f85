package stationapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hydrometrics/ehsn-measurements-etl/internal/domain"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/observability"
)

// Client implements domain.StationDirectory against the station metadata
// HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a station metadata API client.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup fetches the metadata for a station number. An unknown station
// returns a zero StationInfo and no error.
func (c *Client) Lookup(ctx context.Context, stationNo string) (domain.StationInfo, error) {
	u := fmt.Sprintf("%s/stations/%s", c.baseURL, url.PathEscape(stationNo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.StationInfo{}, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.StationAPIDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countLookup("error")
		return domain.StationInfo{}, fmt.Errorf("station lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.countLookup("unknown")
		return domain.StationInfo{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.countLookup("error")
		body, _ := io.ReadAll(resp.Body)
		return domain.StationInfo{}, fmt.Errorf("station API error: status %d: %s", resp.StatusCode, body)
	}

	var apiResp stationResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		c.countLookup("error")
		return domain.StationInfo{}, fmt.Errorf("decode response: %w", err)
	}

	offset, err := domain.ParseUTCOffset(apiResp.UTCOffset)
	if err != nil {
		c.countLookup("error")
		return domain.StationInfo{}, fmt.Errorf("station %s: %w", stationNo, err)
	}

	c.countLookup("success")
	return domain.StationInfo{
		StationNo: apiResp.StationNo,
		Name:      apiResp.StationName,
		UTCOffset: offset,
	}, nil
}

func (c *Client) countLookup(outcome string) {
	if c.metrics != nil {
		c.metrics.StationLookups.WithLabelValues(outcome).Inc()
	}
}

type stationResponse struct {
	StationNo   string `json:"station_no"`
	StationName string `json:"station_name"`
	UTCOffset   string `json:"utc_offset"`
}
