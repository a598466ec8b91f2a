package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/provider"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DeploymentResolver is what the HTTP layer needs from a resolver. Tests
// provide a simple fake.
type DeploymentResolver interface {
	Resolve(ctx context.Context, program string) (model.DeploymentRecord, error)
}

// Server exposes first-deployment resolution as a point-query HTTP API.
type Server struct {
	resolvers map[model.Network]DeploymentResolver
	logger    *slog.Logger
}

func New(resolvers map[model.Network]DeploymentResolver, logger *slog.Logger) *Server {
	return &Server{
		resolvers: resolvers,
		logger:    logger.With("component", "server"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/deployment", s.handleDeployment)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type deploymentResponse struct {
	Network   string `json:"network"`
	Program   string `json:"program"`
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Deployed  string `json:"deployed_at"`
}

func (s *Server) handleDeployment(w http.ResponseWriter, r *http.Request) {
	program := r.URL.Query().Get("program")
	if program == "" {
		http.Error(w, `{"error":"program query param required"}`, http.StatusBadRequest)
		return
	}

	networkParam := r.URL.Query().Get("network")
	if networkParam == "" {
		networkParam = model.NetworkMainnet.String()
	}
	network, err := model.ParseNetwork(networkParam)
	if err != nil {
		http.Error(w, `{"error":"invalid network value"}`, http.StatusBadRequest)
		return
	}

	resolver, ok := s.resolvers[network]
	if !ok {
		http.Error(w, `{"error":"network not configured"}`, http.StatusBadRequest)
		return
	}

	rec, err := resolver.Resolve(r.Context(), program)
	if err != nil {
		s.logger.Warn("resolution failed",
			"program", program, "network", network, "error", err)
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, deploymentResponse{
		Network:   network.String(),
		Program:   program,
		Signature: rec.Signature,
		Timestamp: rec.Timestamp,
		Deployed:  rec.Time().Format("2006-01-02T15:04:05Z"),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps resolution failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrNotFound), errors.Is(err, provider.ErrNoTransactions):
		return http.StatusNotFound
	case errors.Is(err, provider.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, provider.ErrPaginationLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, provider.ErrUnavailable), errors.Is(err, provider.ErrTimestampUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
