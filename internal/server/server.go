package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"GameLedger/internal/ingestion"
	"GameLedger/internal/observability"
	"GameLedger/internal/projection"
	"GameLedger/internal/query"
)

// Server hosts the gRPC endpoint (health + reflection) and the HTTP/JSON
// API. Ledger operations normally arrive over NATS; the HTTP submit route
// exists for tooling, backfills, and local development.
type Server struct {
	grpcServer    *grpc.Server
	httpServer    *http.Server
	grpcAddr      string
	httpAddr      string
	healthChecker *observability.HealthChecker
	log           zerolog.Logger
}

// Deps holds the dependencies the API routes need.
type Deps struct {
	DB            *sql.DB
	QueryService  *query.Service
	SubmitChan    chan<- ingestion.RawMessage
	HealthChecker *observability.HealthChecker
	StartTime     time.Time
	Log           zerolog.Logger
}

func New(grpcAddr, httpAddr string, deps *Deps) (*Server, error) {
	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl / grpcui
	reflection.Register(grpcServer)

	s := &Server{
		grpcServer:    grpcServer,
		grpcAddr:      grpcAddr,
		httpAddr:      httpAddr,
		healthChecker: deps.HealthChecker,
		log:           deps.Log.With().Str("component", "server").Logger(),
	}

	mux := runtime.NewServeMux()
	if err := s.registerRoutes(mux, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	httpMux := http.NewServeMux()
	httpMux.Handle("/metrics", promhttp.Handler())
	if deps.HealthChecker != nil {
		httpMux.HandleFunc("/healthz", deps.HealthChecker.LivenessHandler)
		httpMux.HandleFunc("/readyz", deps.HealthChecker.ReadinessHandler)
	}
	httpMux.Handle("/", mux)

	s.httpServer = &http.Server{
		Addr:    httpAddr,
		Handler: httpMux,
	}

	return s, nil
}

// StartGRPC starts the gRPC server (blocking).
func (s *Server) StartGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("gRPC server shutting down")
		s.grpcServer.GracefulStop()
	}()

	s.log.Info().Str("addr", s.grpcAddr).Msg("gRPC server listening")
	return s.grpcServer.Serve(lis)
}

// StartHTTP starts the HTTP/JSON API (blocking).
func (s *Server) StartHTTP(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.httpAddr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) registerRoutes(mux *runtime.ServeMux, deps *Deps) error {
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{"POST", "/v1/operations", s.handleSubmitOperation(deps)},
		{"GET", "/v1/balances/{record_id}", s.handleGetBalance(deps)},
		{"GET", "/v1/identities/{owner}/balances", s.handleListBalances(deps)},
		{"GET", "/v1/identities/{owner}/profile", s.handleGetProfile(deps)},
		{"GET", "/v1/identities/{owner}/listings", s.handleListingsBySeller(deps)},
		{"GET", "/v1/identities/{signer}/operations", s.handleOperationHistory(deps)},
		{"GET", "/v1/listings", s.handleActiveListings(deps)},
		{"GET", "/v1/records/{record_id}/history", s.handleRecordHistory(deps)},
		{"POST", "/v1/admin/verify-integrity", s.handleVerifyIntegrity(deps)},
		{"POST", "/v1/admin/rebuild-projections", s.handleRebuildProjections(deps)},
	}

	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return fmt.Errorf("%s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

// handleSubmitOperation accepts a wire-format operation and queues it for
// the engine. Acceptance means queued, not applied: results are published
// on the outbound stream and visible in the operation log.
func (s *Server) handleSubmitOperation(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		body := http.MaxBytesReader(w, r.Body, 1<<20)
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		// Validate before queueing so callers get parse errors synchronously.
		parsed, err := ingestion.ParseOperation(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		raw := ingestion.RawMessage{
			Subject:    "http.submit",
			Data:       data,
			ReceivedAt: time.Now(),
		}

		select {
		case deps.SubmitChan <- raw:
			writeJSON(w, http.StatusAccepted, map[string]interface{}{
				"accepted":        true,
				"op":              parsed.OpKind().String(),
				"idempotency_key": parsed.IdempotencyKey(),
			})
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, r.Context().Err())
		}
	}
}

func (s *Server) handleGetBalance(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		balance, err := deps.QueryService.GetBalance(r.Context(), pathParams["record_id"])
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, balance)
	}
}

func (s *Server) handleListBalances(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		balances, err := deps.QueryService.ListBalances(r.Context(), pathParams["owner"])
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"balances": balances})
	}
}

func (s *Server) handleGetProfile(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		profile, err := deps.QueryService.GetProfile(r.Context(), pathParams["owner"])
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) handleListingsBySeller(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		listings, err := deps.QueryService.GetListingsBySeller(r.Context(), pathParams["owner"])
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"listings": listings})
	}
}

func (s *Server) handleActiveListings(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		limit := parseLimit(r, 50, 200)
		afterSeq := parseAfterSequence(r)

		listings, err := deps.QueryService.ListActiveListings(r.Context(), limit, afterSeq)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"listings": listings})
	}
}

func (s *Server) handleOperationHistory(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		limit := parseLimit(r, 100, 500)
		afterSeq := parseAfterSequence(r)

		entries, err := deps.QueryService.GetOperationHistory(r.Context(), pathParams["signer"], limit, afterSeq)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"operations": entries})
	}
}

func (s *Server) handleRecordHistory(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		limit := parseLimit(r, 100, 500)

		entries, err := deps.QueryService.GetRecordHistory(r.Context(), pathParams["record_id"], limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"mutations": entries})
	}
}

func (s *Server) handleVerifyIntegrity(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		report, err := deps.QueryService.VerifyIntegrity(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) handleRebuildProjections(deps *Deps) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		if err := projection.Rebuild(r.Context(), deps.DB); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"started": true})
	}
}

func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func parseAfterSequence(r *http.Request) *int64 {
	if v := r.URL.Query().Get("after_sequence"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
