package worker

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
)

// SystemLister reports the systems a worker can evaluate.
type SystemLister interface {
	Systems() []string
}

// HTTPServer serves health, system listing and Prometheus metrics.
type HTTPServer struct {
	mux     *http.ServeMux
	systems SystemLister
	logger  *slog.Logger
}

// NewHTTPServer creates the HTTP surface. gatherer is scraped on /metrics.
func NewHTTPServer(systems SystemLister, gatherer prometheus.Gatherer, l *slog.Logger) *HTTPServer {
	if l == nil {
		l = logger.Default
	}
	s := &HTTPServer{
		mux:     http.NewServeMux(),
		systems: systems,
		logger:  l,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/systems", s.handleSystems)
	s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleSystems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"systems": s.systems.Systems(),
	})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
