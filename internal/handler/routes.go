package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-edge-proxy/internal/config"
	"chat-edge-proxy/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
//
// The legacy handlers are registered after the generic forwarder bindings.
// Echo replaces the handler when the same method and path are registered
// again, so with legacy.enabled the legacy set is authoritative for exactly
// its four method/path combinations and the generic forwarder keeps the rest.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, legacy *LegacyHandler, health *HealthHandler, m *metrics.Metrics) {
	e.GET("/health", health.Health)
	e.GET("/proxy/status", health.Status)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(
			promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		))
	}

	e.POST("/chat", proxy.Handle)
	e.Any("/chats", proxy.Handle)
	e.Any("/chats/:id", proxy.Handle)
	e.Any("/stats", proxy.Handle)

	if cfg.Legacy.Enabled {
		e.GET("/chats", legacy.ListChats)
		e.GET("/chats/:id", legacy.GetChat)
		e.DELETE("/chats/:id", legacy.DeleteChat)
		e.DELETE("/chats", legacy.ClearChats)
	}

	e.Static("/", cfg.Server.StaticDir)
}
