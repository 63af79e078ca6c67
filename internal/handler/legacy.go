package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"chat-edge-proxy/internal/client"
	"chat-edge-proxy/internal/config"
)

// LegacyHandler is the older per-route handler set for chat listing and
// deletion. Each handler calls the backend itself, parses the response body
// as JSON unconditionally and answers 200 on success — the backend status
// code is not preserved. A backend error body that is not valid JSON fails
// the parse and collapses into the same 500 branch as a network failure.
//
// The generic forwarder is a strict superset of this behavior with better
// status fidelity; these handlers are only registered when legacy.enabled is
// set, in which case they take over their four method/path combinations.
type LegacyHandler struct {
	client *client.BackendClient
	cfg    *config.Config
	logger *slog.Logger
}

// NewLegacyHandler creates a LegacyHandler.
func NewLegacyHandler(c *client.BackendClient, cfg *config.Config, logger *slog.Logger) *LegacyHandler {
	return &LegacyHandler{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "legacy_handler"),
	}
}

// ListChats handles GET /chats.
func (h *LegacyHandler) ListChats(c echo.Context) error {
	return h.relayJSON(c, http.MethodGet, "/chats", "Failed to fetch chats")
}

// GetChat handles GET /chats/:id.
func (h *LegacyHandler) GetChat(c echo.Context) error {
	return h.relayJSON(c, http.MethodGet, "/chats/"+c.Param("id"), "Failed to fetch chat")
}

// DeleteChat handles DELETE /chats/:id.
func (h *LegacyHandler) DeleteChat(c echo.Context) error {
	return h.relayJSON(c, http.MethodDelete, "/chats/"+c.Param("id"), "Failed to delete chat")
}

// ClearChats handles DELETE /chats.
func (h *LegacyHandler) ClearChats(c echo.Context) error {
	return h.relayJSON(c, http.MethodDelete, "/chats", "Failed to clear chats")
}

// relayJSON calls the backend at base URL + path, re-parses the body as JSON
// and re-emits it with status 200. Any failure answers 500 with the
// route-specific message.
func (h *LegacyHandler) relayJSON(c echo.Context, method, path, errMsg string) error {
	resp, err := h.client.Do(c.Request().Context(), method, h.cfg.Backend.BaseURL+path, nil)
	if err != nil {
		return h.fail(c, path, errMsg, err)
	}

	var payload any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return h.fail(c, path, errMsg, err)
	}

	return c.JSON(http.StatusOK, payload)
}

func (h *LegacyHandler) fail(c echo.Context, path, msg string, err error) error {
	h.logger.Error("legacy relay failed",
		"err", err,
		"path", path,
	)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": msg,
	})
}
