package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	LastSlot uint64 `json:"last_slot"`
}

// Server exposes /metrics and /healthz.
type Server struct {
	router  *chi.Mux
	metrics *Metrics
	started time.Time
}

func NewServer(gatherer prometheus.Gatherer, m *Metrics) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		metrics: m,
		started: time.Now(),
	}

	s.router.Get("/healthz", s.healthzHandler)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return s
}

// Handler exposes the underlying router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *Server) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Millisecond).String(),
	}
	if s.metrics != nil {
		resp.LastSlot = s.metrics.LastSlot()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
