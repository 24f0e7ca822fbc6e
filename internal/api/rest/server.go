package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dataguard-br/privacy-engine/internal/infrastructure/config"
	"github.com/dataguard-br/privacy-engine/internal/service/lifecycle"
)

// Server exposes the engine's contract as JSON over HTTP. Request and
// response bodies mirror the engine's structures field for field.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, manager *lifecycle.Manager, registry *prometheus.Registry, logger *zap.Logger) *Server {
	handler := NewHandler(manager, logger.Named("handler"))

	limiter := rate.NewLimiter(
		rate.Limit(cfg.Server.RateLimit.RequestsPerSecond),
		cfg.Server.RateLimit.BurstSize,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rateLimitMiddleware(limiter))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", handler.Detect)
		r.Post("/risk", handler.AnalyzeRisk)
		r.Post("/anonymize", handler.AnonymizeText)

		r.Post("/records", handler.CreateRecord)
		r.Post("/records/{id}/anonymize", handler.AnonymizeRecord)
		r.Delete("/records/{id}", handler.DeleteRecord)

		r.Get("/summary", handler.Summary)
		r.Get("/audit", handler.AuditTrail)
		r.Post("/cleanup", handler.Cleanup)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger,
	}
}

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
