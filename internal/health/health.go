// Package health exposes the daemon's HTTP health check endpoint.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Pinger reports whether the registry's backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response is the JSON body of a health check.
type Response struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server provides the /healthz endpoint.
type Server struct {
	pinger Pinger
	server *http.Server
}

// NewServer creates a health check server for the given port.
func NewServer(pinger Pinger, port int) *Server {
	s := &Server{pinger: pinger}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthCheckHandler)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start starts the server in the background.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] Health server error: %v", err)
		}
	}()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// healthCheckHandler handles GET /healthz requests.
// Returns 200 OK if the registry store is reachable, 503 otherwise.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := Response{Status: "healthy"}
	code := http.StatusOK

	if err := s.pinger.Ping(ctx); err != nil {
		response.Status = "unhealthy"
		response.Store = "unreachable"
		response.Error = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}
