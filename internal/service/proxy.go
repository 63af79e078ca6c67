// Package service implements the core request-forwarding logic.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"chat-edge-proxy/internal/client"
	"chat-edge-proxy/internal/config"
	"chat-edge-proxy/internal/model"
)

// ErrInvalidBody is returned when a request body on a body-carrying method
// is not valid JSON. No backend call is made in that case.
var ErrInvalidBody = errors.New("request body is not valid JSON")

// bodyMethods are the HTTP methods whose inbound body is re-encoded as JSON
// and forwarded to the backend. All other methods send no body.
var bodyMethods = map[string]bool{
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// ForwardService relays requests to the backend chat service.
type ForwardService struct {
	client *client.BackendClient
	cfg    *config.Config
	logger *slog.Logger
}

// NewForwardService creates a ForwardService.
func NewForwardService(c *client.BackendClient, cfg *config.Config, logger *slog.Logger) *ForwardService {
	return &ForwardService{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "forward_service"),
	}
}

// Forward relays a request to the backend and returns the fully read response.
//
// The target URL is the configured base URL with the original path and query
// string concatenated onto it, no rewriting or normalization. Bodies are
// forwarded only for POST, PUT, PATCH and DELETE: the inbound body is decoded
// and re-marshalled so the backend always receives canonical JSON text with
// Content-Type: application/json.
func (s *ForwardService) Forward(fr *model.ForwardRequest) (*model.BackendResponse, error) {
	targetURL := s.buildTargetURL(fr.Path, fr.RawQuery)

	var payload []byte
	if bodyMethods[fr.Method] && len(fr.Body) > 0 {
		var decoded any
		if err := json.Unmarshal(fr.Body, &decoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		reencoded, err := json.Marshal(decoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		payload = reencoded
	}

	s.logger.Debug("forwarding request",
		"method", fr.Method,
		"url", targetURL,
	)

	resp, err := s.client.Do(fr.Ctx, fr.Method, targetURL, payload)
	if err != nil {
		return nil, fmt.Errorf("forward to backend: %w", err)
	}

	return resp, nil
}

// buildTargetURL concatenates the backend base URL with the original path
// and query string. Pure string concatenation: trailing slashes on the base
// URL are deliberately not normalized away.
func (s *ForwardService) buildTargetURL(path, rawQuery string) string {
	target := s.cfg.Backend.BaseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// IsTimeout reports whether err was caused by the backend exceeding the
// configured request timeout, as opposed to a connection-level failure.
// Both kinds surface to the caller as the same 500 response, but they are
// logged as distinct conditions.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
