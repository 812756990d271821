package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sdorra/adguard-rewrite-sync/internal/metrics"
)

// New builds the HTTP server exposing health and metrics in daemon mode.
func New(addr string, m *metrics.Metrics) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(10*time.Second))

	r.Get("/healthz", health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
