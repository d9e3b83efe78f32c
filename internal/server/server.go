// Package server exposes the verdict resolver over HTTP for the web form.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/logger"
	"github.com/spigell/loan-eligibility/internal/resolver"
)

const maxBodyBytes = 1 << 16

// Resolver is the part of resolver.Resolver the HTTP surface needs.
type Resolver interface {
	Resolve(ctx context.Context, applicant eligibility.Applicant) resolver.Resolution
}

type Server struct {
	resolver Resolver
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	router   *chi.Mux
}

// New builds the router. A nil gatherer leaves /metrics unregistered.
func New(res Resolver, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	s := &Server{
		resolver: res,
		logger:   logger.WithFields(log),
		gatherer: gatherer,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/applicants/default", s.handleDefaultApplicant)
		r.Post("/predictions", s.handlePredict)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDefaultApplicant(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, eligibility.DefaultApplicant())
}

// PredictionResponse is the body returned by POST /api/v1/predictions.
type PredictionResponse struct {
	RequestToken string              `json:"requestToken"`
	Prediction   eligibility.Verdict `json:"prediction"`
	Confidence   float64             `json:"confidence"`
	Reasons      []string            `json:"reasons"`
	Source       resolver.Source     `json:"source"`
	Failure      string              `json:"failure,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var applicant eligibility.Applicant

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&applicant); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := eligibility.Validate(applicant); err != nil {
		var verr *eligibility.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid applicant",
				"fields": verr.Fields,
			})
			return
		}
		respondError(w, http.StatusBadRequest, "invalid applicant", err)
		return
	}

	token := uuid.NewString()
	res := s.resolver.Resolve(r.Context(), applicant)

	failure := ""
	if res.Degraded() {
		failure = string(res.Failure)
	}

	s.logger.Info("prediction served",
		append(logger.ResolutionFields(string(res.Source), failure),
			zap.String(logger.FieldRequestToken, token),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("prediction", string(res.Verdict)),
			zap.Duration("elapsed", res.Elapsed),
		)...,
	)

	respondJSON(w, http.StatusOK, PredictionResponse{
		RequestToken: token,
		Prediction:   res.Verdict,
		Confidence:   res.Confidence,
		Reasons:      res.Reasons,
		Source:       res.Source,
		Failure:      failure,
	})
}
