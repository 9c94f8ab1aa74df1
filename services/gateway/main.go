package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/RuvinSL/token-estimator/pkg/config"
	"github.com/RuvinSL/token-estimator/pkg/estimator"
	"github.com/RuvinSL/token-estimator/pkg/httpclient"
	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/metrics"
	"github.com/RuvinSL/token-estimator/services/gateway/handlers"
	"github.com/RuvinSL/token-estimator/services/gateway/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serviceName = "gateway"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(serviceName, logger.ParseLevel(cfg.LogLevel))

	metricsCollector := metrics.NewPrometheusCollector(serviceName)
	prometheus.MustRegister(metricsCollector.GetCollectors()...)

	client := httpclient.New(cfg.Estimator.BaseURL, cfg.Estimator.Timeout, log)
	store := handlers.NewSessionStore(controllerFactory(cfg, client, log, metricsCollector), log, metricsCollector)

	router := newRouter(store, client, log, metricsCollector)

	// Start reaping idle sessions
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go store.RunReaper(reaperCtx, cfg.Gateway.SessionTTL, cfg.Gateway.SessionReapInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Gateway.Port),
		Handler:      router,
		ReadTimeout:  cfg.Gateway.ReadTimeout,
		WriteTimeout: cfg.Gateway.WriteTimeout,
		IdleTimeout:  cfg.Gateway.IdleTimeout,
	}

	go func() {
		log.Info("Starting API Gateway",
			"port", cfg.Gateway.Port,
			"estimator_url", cfg.Estimator.BaseURL,
			"session_ttl", cfg.Gateway.SessionTTL,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	stopReaper()
	store.CloseAll()

	log.Info("Server exited")
}

func controllerFactory(cfg *config.Config, client interfaces.EstimatorClient, log interfaces.Logger, collector interfaces.MetricsCollector) handlers.ControllerFactory {
	return func() *estimator.Controller {
		return estimator.NewController(client, log, collector, estimator.ControllerConfig{
			Progress: estimator.SimulatorConfig{
				TickInterval:    cfg.Progress.TickInterval,
				MessageInterval: cfg.Progress.MessageInterval,
				CompletionHold:  cfg.Progress.CompletionHold,
			},
		})
	}
}

func newRouter(store *handlers.SessionStore, client interfaces.HealthChecker, log interfaces.Logger, collector interfaces.MetricsCollector) *mux.Router {
	sessionHandler := handlers.NewSessionHandler(store, log)
	streamHandler := handlers.NewStreamHandler(store, log)
	healthHandler := handlers.NewHealthHandler(serviceName, version, client, store)

	router := mux.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/modes", sessionHandler.ListModes).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions", sessionHandler.CreateSession).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/form", sessionHandler.UpdateForm).Methods("PUT", "OPTIONS")
	api.HandleFunc("/sessions/{id}/analyze", sessionHandler.Analyze).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/report", sessionHandler.Report).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{id}/stream", streamHandler.Stream).Methods("GET")

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	router.HandleFunc("/debug/pprof/", pprof.Index)
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	router.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	router.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	router.Handle("/debug/pprof/block", pprof.Handler("block"))

	return router
}
