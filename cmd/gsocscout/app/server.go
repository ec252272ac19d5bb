package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gsocscout.dev/internal/config"
	"gsocscout.dev/internal/pipeline"
	"gsocscout.dev/internal/scout"
)

// Server holds handlers and dependencies for the scout HTTP server.
type Server struct {
	cs   *scout.ClientSet
	opts pipeline.Options
	mux  *http.ServeMux
	http *http.Server
}

// NewServer initializes a Server and mounts the read API, the scrape
// triggers and the health handler.
func NewServer(cs *scout.ClientSet, opts pipeline.Options) *Server {
	s := &Server{cs: cs, opts: opts, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/organizations", s.handleListOrganizations)
	s.mux.HandleFunc("GET /api/v1/issues", s.handleListIssues)
	s.mux.HandleFunc("POST /api/scrape", s.handleScrapeAll)
	s.mux.HandleFunc("POST /api/scrape/{stage}", s.handleScrapeStage)
	return s
}

// NewServerForConfig builds scout clients from cfg and returns a configured Server.
func NewServerForConfig(cfg *config.Config) (*Server, error) {
	cs, err := scout.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		StageDelay:  cfg.GetStageDelay(),
		EntityDelay: cfg.GetEntityDelay(),
	}
	return NewServer(cs, opts), nil
}

// ListenAndServe starts the HTTP server on addr using the internal mux.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(s.mux, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("server starting", "addr", addr)
	return s.http.ListenAndServe()
}

// Close gracefully shuts down the server and closes database connections.
func (s *Server) Close() error {
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.cs != nil {
		return s.cs.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.cs.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "gsocscout"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
