// Package client provides the HTTP client for the backend chat service.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"chat-edge-proxy/internal/config"
	"chat-edge-proxy/internal/metrics"
	"chat-edge-proxy/internal/model"
)

// BackendClient sends requests to the backend chat service.
type BackendClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewBackendClient creates a BackendClient with connection pooling and a hard
// request timeout (backend.timeout_seconds, default 60s). The timeout bounds
// the whole exchange including reading the response body; without it a
// hanging backend would hold the inbound request open indefinitely.
// The metrics parameter is optional; pass nil to disable backend call metrics.
func NewBackendClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *BackendClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Backend.IdleConnections,
		MaxIdleConnsPerHost: cfg.Backend.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &BackendClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		},
		logger:  logger.With("component", "backend_client"),
		metrics: m,
	}
}

// Do issues a request to the backend and returns the fully read response.
// A non-nil body is sent with Content-Type: application/json; requests
// without a body carry no content type. The provided context controls the
// lifetime of the call: when it is canceled (e.g. the client disconnects),
// the backend request is canceled too.
func (c *BackendClient) Do(ctx context.Context, method, url string, body []byte) (*model.BackendResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request",
		"method", method,
		"url", url,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	label := metrics.NormalizeMethod(method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.BackendDuration.WithLabelValues(label).Observe(duration)
		}
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.BackendDuration.WithLabelValues(label).Observe(duration)
		c.metrics.BackendResponses.WithLabelValues(label, status).Inc()
	}

	return &model.BackendResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
