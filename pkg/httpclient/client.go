package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/models"
)

const maxResponseSize = 10 * 1024 * 1024

// Client talks to the external analysis service over POST /analyze.
type Client struct {
	baseURL string
	client  *http.Client
	logger  interfaces.Logger
	timeout time.Duration
}

// New builds a client for the service at baseURL. A zero timeout means the
// call may wait for as long as the service takes; cancellation comes from ctx.
func New(baseURL string, timeout time.Duration, logger interfaces.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout, // zero leaves the call bounded only by ctx
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,  // TCP connect timeout
					KeepAlive: 30 * time.Second, // keep-alive
				}).DialContext,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger:  logger,
		timeout: timeout,
	}
}

// Analyze submits one analysis request and decodes the AnalysisResult.
// Any status outside 2xx yields models.ErrRequestFailed without reading the body.
func (c *Client) Analyze(ctx context.Context, analysisReq models.AnalysisRequest) (*models.AnalysisResult, error) {
	requestID := logger.RequestIDFromContext(ctx)
	log := logger.WithContext(ctx, c.logger).With(
		"mode", analysisReq.Mode,
		"main_url", analysisReq.MainURL,
	)

	// Encode payload
	jsonData, err := json.Marshal(analysisReq)
	if err != nil {
		log.Error("Failed to marshal analysis request", "error", err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create request with context
	endpoint := c.baseURL + "/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		log.Error("Failed to create HTTP request", "error", err, "endpoint", endpoint)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "TokenEstimator/1.0")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	log.Debug("Sending request to analysis service",
		"endpoint", endpoint,
		"other_urls", len(analysisReq.OtherURLs),
	)

	// Perform request
	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Error("Failed to call analysis service",
			"error", err,
			"duration", duration,
		)
		return nil, fmt.Errorf("analysis service error: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("Analysis service responded",
		"status_code", resp.StatusCode,
		"duration", duration,
	)

	// The body of a failed call is never interpreted
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("Analysis service returned error status", "status_code", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", models.ErrRequestFailed, resp.StatusCode)
	}

	// Read response body with size limit (10MB)
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		log.Error("Failed to read response body", "error", err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		log.Error("Failed to parse analysis response",
			"error", err,
			"content_length", len(body),
		)
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	log.Info("Analysis service call completed successfully",
		"page_count", len(result.Pages),
		"total_min_token", result.TotalMinToken,
		"total_max_token", result.TotalMaxToken,
		"duration", duration,
	)

	return &result, nil
}

// CheckHealth reports whether the analysis service answers at all. The
// service exposes no health route, so any response below 500 counts.
func (c *Client) CheckHealth(ctx context.Context) error {
	endpoint := c.baseURL + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Analysis service health check failed",
			"error", err,
			"endpoint", endpoint,
			"duration", time.Since(start),
		)
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("Analysis service unhealthy", "status_code", resp.StatusCode)
		return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	c.logger.Debug("Analysis service health check passed", "status_code", resp.StatusCode)
	return nil
}

// Ensure Client implements interfaces.EstimatorClient
var _ interfaces.EstimatorClient = (*Client)(nil)
