package main

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"outage-pulse/pkg/analytics"
	"outage-pulse/pkg/config"
	"outage-pulse/pkg/metrics"
	"outage-pulse/pkg/outage"
	"outage-pulse/pkg/types"
)

// Server represents the HTTP server for the outage API.
type Server struct {
	logger        *logrus.Logger
	configManager *config.Manager[types.AppConfig]
	handlers      *Handlers
	collector     *metrics.Collector
	registry      *prometheus.Registry
	corsOrigin    string
	rateLimiter   *reportRateLimiter
	httpServer    *http.Server
}

// NewServer creates a new Server instance.
func NewServer(
	logger *logrus.Logger,
	configManager *config.Manager[types.AppConfig],
	manager *outage.Manager,
	engine *analytics.Engine,
	collector *metrics.Collector,
	registry *prometheus.Registry,
	corsOrigin string,
) *Server {
	rateCfg := configManager.Get().ReportRate
	return &Server{
		logger:        logger,
		configManager: configManager,
		handlers:      NewHandlers(logger, manager, engine),
		collector:     collector,
		registry:      registry,
		corsOrigin:    corsOrigin,
		rateLimiter:   newReportRateLimiter(rateCfg, logger),
	}
}

type route struct {
	path        string
	method      string
	handler     func(http.ResponseWriter, *http.Request)
	protected   bool
	rateLimited bool
}

func (s *Server) setupRoutes() http.Handler {
	routes := []route{
		{
			path:    "/health",
			method:  http.MethodGet,
			handler: s.handlers.HealthJSON,
		},
		{
			path:        "/api/outages",
			method:      http.MethodPost,
			handler:     s.handlers.ReportOutageJSON,
			rateLimited: true,
		},
		{
			path:    "/api/outages",
			method:  http.MethodGet,
			handler: s.handlers.ListOutagesJSON,
		},
		{
			path:    "/api/outages/{outageId}/restore",
			method:  http.MethodPatch,
			handler: s.handlers.RestoreOutageJSON,
		},
		{
			path:      "/api/outages/{outageId}",
			method:    http.MethodDelete,
			handler:   s.handlers.DeleteOutageJSON,
			protected: true,
		},
		{
			path:    "/api/analytics/stats",
			method:  http.MethodGet,
			handler: s.handlers.GetStatsJSON,
		},
		{
			path:    "/api/analytics/insights",
			method:  http.MethodGet,
			handler: s.handlers.GetInsightsJSON,
		},
		{
			path:    "/api/analytics/impact",
			method:  http.MethodGet,
			handler: s.handlers.GetImpactJSON,
		},
	}

	router := mux.NewRouter()
	protectedRouter := router.Name("protected").Subrouter()
	protectedRouter.Use(func(next http.Handler) http.Handler {
		return newAdminAuthMiddleware(s.logger, s.configManager, next)
	})
	rateLimitedRouter := router.Name("rate-limited").Subrouter()
	rateLimitedRouter.Use(s.rateLimiter.middleware)

	for _, route := range routes {
		switch {
		case route.protected:
			protectedRouter.HandleFunc(route.path, route.handler).Methods(route.method)
		case route.rateLimited:
			rateLimitedRouter.HandleFunc(route.path, route.handler).Methods(route.method)
		default:
			router.HandleFunc(route.path, route.handler).Methods(route.method)
		}
	}

	router.Handle("/metrics", metrics.Handler(s.registry)).Methods(http.MethodGet)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{s.corsOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Admin-Secret"}),
		handlers.AllowCredentials(),
	)(router)

	return s.loggingMiddleware(corsHandler)
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		requestID := uuid.NewString()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		if s.collector != nil {
			s.collector.RecordHTTPRequest(r.Method, recorder.status, duration)
		}
		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     recorder.status,
			"duration":   duration,
		}).Info("Request processed")
	})
}

// Start begins listening for HTTP requests on the specified address.
func (s *Server) Start(addr string) error {
	handler := s.setupRoutes()
	s.logger.Infof("Starting outage API server on %s", addr)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.rateLimiter.stop()
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down outage API server")
	return s.httpServer.Shutdown(ctx)
}
