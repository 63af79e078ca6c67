package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"chat-edge-proxy/internal/model"
	"chat-edge-proxy/internal/service"
)

// ProxyHandler is the generic forwarder: it relays any matched request to
// the backend and copies the response back with the status code preserved.
type ProxyHandler struct {
	service *service.ForwardService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ForwardService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle relays the request to the backend and writes the response back.
//
// The backend status code and body text are copied verbatim. The relayed
// Content-Type is set to application/json only when the backend response
// content type contains "application/json"; the body is never re-parsed, so
// malformed JSON from the backend passes through uninspected. For any other
// content type no explicit header is set and the framework default applies.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	fr := &model.ForwardRequest{
		Ctx:      req.Context(),
		Method:   req.Method,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
		Body:     body,
	}

	resp, err := h.service.Forward(fr)
	if err != nil {
		return h.relayError(c, err)
	}

	if strings.Contains(resp.ContentType, "application/json") {
		return c.Blob(resp.StatusCode, "application/json", resp.Body)
	}

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := c.Response().Write(resp.Body); err != nil {
		h.logger.Error("writing relayed response",
			"err", err,
			"path", req.URL.Path,
		)
	}
	return nil
}

// relayError maps a forwarding failure onto the caller-visible response.
// Every backend failure collapses into the same fixed 500 payload; only the
// server-side log distinguishes timeouts from connection failures, and no
// diagnostic detail leaks to the caller.
func (h *ProxyHandler) relayError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrInvalidBody) {
		h.logger.Warn("rejecting request",
			"err", err,
			"path", c.Request().URL.Path,
		)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Request body must be valid JSON",
		})
	}

	kind := "connect"
	if service.IsTimeout(err) {
		kind = "timeout"
	}
	h.logger.Error("backend call failed",
		"err", err,
		"kind", kind,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
	)

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "Failed to connect to backend",
	})
}
