package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"chat-edge-proxy/internal/client"
	"chat-edge-proxy/internal/config"
	"chat-edge-proxy/internal/metrics"
	"chat-edge-proxy/internal/service"
)

// newTestEcho wires a full route table against the given backend URL.
func newTestEcho(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	bc := client.NewBackendClient(cfg, logger, m)
	svc := service.NewForwardService(bc, cfg, logger)

	e := echo.New()
	RegisterRoutes(e, cfg, NewProxyHandler(svc, logger), NewLegacyHandler(bc, cfg, logger), NewHealthHandler(cfg, "test"), m)
	return e
}

func testConfig(backendURL, staticDir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{StaticDir: staticDir},
		Backend: config.BackendConfig{
			BaseURL:         backendURL,
			TimeoutSeconds:  10,
			IdleConnections: 10,
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

func TestRegisterRoutes_Wiring(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>chat</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newTestEcho(t, testConfig(backend.URL, dir))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET /health", http.MethodGet, "/health", http.StatusOK},
		{"GET /proxy/status", http.MethodGet, "/proxy/status", http.StatusOK},
		{"POST /chat", http.MethodPost, "/chat", http.StatusOK},
		{"GET /chats", http.MethodGet, "/chats", http.StatusOK},
		{"DELETE /chats", http.MethodDelete, "/chats", http.StatusOK},
		{"GET /chats/42", http.MethodGet, "/chats/42", http.StatusOK},
		{"DELETE /chats/42", http.MethodDelete, "/chats/42", http.StatusOK},
		{"GET /stats", http.MethodGet, "/stats", http.StatusOK},
		{"DELETE /stats", http.MethodDelete, "/stats", http.StatusOK},
		{"GET /index.html (static)", http.MethodGet, "/index.html", http.StatusOK},
		{"GET /missing.css (static 404)", http.MethodGet, "/missing.css", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterRoutes_HealthIgnoresBackend(t *testing.T) {
	// Backend is unreachable; /health must still answer 200.
	e := newTestEcho(t, testConfig("http://127.0.0.1:1", t.TempDir()))

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestRegisterRoutes_LegacyPrecedence(t *testing.T) {
	// Backend answers 404 with a JSON body. The generic forwarder relays the
	// 404; the legacy handler re-parses the body and answers 200.
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
	}))
	defer backend.Close()

	generic := testConfig(backend.URL, t.TempDir())
	e := newTestEcho(t, generic)

	req := httptest.NewRequest(http.MethodGet, "/chats", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("generic forwarder: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	legacy := testConfig(backend.URL, t.TempDir())
	legacy.Legacy.Enabled = true
	e = newTestEcho(t, legacy)

	req = httptest.NewRequest(http.MethodGet, "/chats", http.NoBody)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("legacy handler: status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Routes outside the legacy set stay on the generic forwarder.
	req = httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("generic /stats under legacy config: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRegisterRoutes_MetricsEndpoint(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	cfg := testConfig(backend.URL, t.TempDir())
	cfg.Metrics.Enabled = true
	e := newTestEcho(t, cfg)

	// Generate some traffic so backend collectors have samples.
	req := httptest.NewRequest(http.MethodGet, "/chats", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "chat_proxy_backend_responses_total") {
		t.Error("expected chat_proxy_backend_responses_total in metrics output")
	}
}
