// Package main provides the RailTrace analysis server. It exposes the
// analysis pipeline over HTTP and runs it on a cron schedule.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"railtrace/db/clickhouse"
	"railtrace/db/postgres"
	"railtrace/internal/config"
	"railtrace/internal/pipeline"
	"railtrace/pkg/platform"
)

var (
	version   = "0.1.0"
	startTime = time.Now()
)

func main() {
	cfg, err := config.Load(os.Getenv("RAILTRACE_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := platform.InitLogger(cfg.LogLevel)
	log.Logger = logger

	source, err := postgres.NewSourceFromDSN(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to component database")
	}
	defer source.Close()

	var store pipeline.RunStore
	var history *clickhouse.Store
	if cfg.History.Enabled {
		history, err = clickhouse.NewStore(&clickhouse.Config{
			Host:     cfg.History.Host,
			Port:     cfg.History.Port,
			Database: cfg.History.Database,
			Username: cfg.History.User,
			Password: cfg.History.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to run history store")
		}
		defer history.Close()
		store = history
	}

	newRun := func() *pipeline.Pipeline {
		return pipeline.New(cfg, source, store, time.Now().UnixNano(), logger)
	}

	// Scheduled runs keep the history store populated without operator
	// intervention.
	if cfg.Server.CronSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Server.CronSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := newRun().Run(ctx); err != nil {
				log.Error().Err(err).Msg("Scheduled analysis run failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Server.CronSchedule).Msg("Invalid cron schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	// Health endpoints (for ALB/NLB)
	r.Get("/health", handleHealth)
	r.Get("/health/live", handleLiveness)
	r.Get("/health/ready", handleReadiness(source))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", handleAnalyze(newRun))
		r.Get("/runs", handleRuns(history))
		r.Get("/runs/{id}", handleRun(history))
	})

	// Metadata
	r.Get("/version", handleVersion)

	port := strconv.Itoa(cfg.Server.Port)
	log.Info().
		Str("port", port).
		Str("version", version).
		Str("cron", cfg.Server.CronSchedule).
		Msg("Starting RailTrace API Server")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// Health check handlers for load balancer
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "healthy",
		"service": "railtrace-api",
		"version": version,
		"uptime":  time.Since(startTime).String(),
	})
}

func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadiness(source *postgres.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := source.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "not ready",
				"reason": "component database unreachable",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"version": version,
		"service": "railtrace-api",
	})
}

func handleAnalyze(newRun func() *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, err := newRun().Run(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bundle)
	}
}

func handleRuns(history *clickhouse.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			respondError(w, http.StatusNotFound, "run history is not enabled")
			return
		}
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		runs, err := history.ListRuns(r.Context(), limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list runs: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}

func handleRun(history *clickhouse.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			respondError(w, http.StatusNotFound, "run history is not enabled")
			return
		}
		runID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid run id")
			return
		}
		rec, err := history.GetRun(r.Context(), runID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to get run: "+err.Error())
			return
		}
		if rec == nil {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		bundle, err := rec.UnmarshalBundle()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "stored bundle is corrupt: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bundle)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
