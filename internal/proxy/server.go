// Package proxy implements the thin HTTP service that keeps the language
// model credential off clients. It accepts the categorization protocol,
// expands it into a model call with the server-side key, and forwards the
// validated result back.
package proxy

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/voicetimeapp/voicetime/internal/categorize"
	"github.com/voicetimeapp/voicetime/internal/logging"
)

// Server serves /categorize, /test-connection, and /health.
type Server struct {
	categorizer categorize.Categorizer
	startTime   time.Time
	version     string
}

// NewServer creates a proxy server around the given upstream categorizer,
// typically a categorize.ModelClient holding the server-side key.
func NewServer(categorizer categorize.Categorizer, version string) *Server {
	return &Server{
		categorizer: categorizer,
		startTime:   time.Now(),
		version:     version,
	}
}

// Handler returns the HTTP handler for the proxy routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /categorize", s.handleCategorize)
	mux.HandleFunc("POST /test-connection", s.handleTestConnection)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe runs the proxy on addr.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	logging.Info("proxy listening", "addr", addr)
	return server.ListenAndServe()
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorize.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The empty-transcript short-circuit lives in the categorizer, so the
	// degenerate request never reaches the upstream model from here either.
	if strings.TrimSpace(req.Transcript) == "" {
		writeJSON(w, http.StatusOK, categorize.Response{
			Activities: []categorize.Activity{categorize.NoSpeechActivity()},
		})
		return
	}

	activities, err := s.categorizer.Categorize(r.Context(), req.Transcript, req.DefaultDurationMinutes, req.Categories)
	if err != nil {
		logging.Warn("upstream categorization failed", "error", err)
		writeError(w, http.StatusBadGateway, "categorization failed")
		return
	}

	writeJSON(w, http.StatusOK, categorize.Response{Activities: activities})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	ok := s.categorizer.TestConnection(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// handleHealth returns a static healthy marker; liveness only.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"version":        s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
