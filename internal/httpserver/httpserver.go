// Package httpserver exposes the health-aggregation endpoint and a
// module-registered-route mux. Kept thin and deliberately out of the hard
// core, but wired so `hostctl serve` is a runnable program. Grounded on the
// teacher's internal/server handler-registration conventions.
package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/giantswarm/pluginhost/internal/manager"
)

// Server is the minimal HTTP surface in front of a Manager.
type Server struct {
	mgr *manager.Manager
	mux *http.ServeMux
}

// New builds a Server exposing /healthz backed by mgr.ReportHealth.
func New(mgr *manager.Manager) *Server {
	s := &Server{mgr: mgr, mux: http.NewServeMux()}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Mount registers a module-contributed route directly on the mux.
func (s *Server) Mount(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

type healthResponse struct {
	Healthy   int            `json:"healthy"`
	Degraded  int            `json:"degraded"`
	Unhealthy int            `json:"unhealthy"`
	Detail    map[string]any `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.mgr.ReportHealth(r.Context())

	detail := make(map[string]any, len(report.Detail))
	for id, h := range report.Detail {
		detail[id] = map[string]string{"status": h.Status.String(), "description": h.Description}
	}

	w.Header().Set("Content-Type", "application/json")
	if report.Unhealthy > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(healthResponse{
		Healthy:   report.Healthy,
		Degraded:  report.Degraded,
		Unhealthy: report.Unhealthy,
		Detail:    detail,
	})
}
