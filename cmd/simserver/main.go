package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/pf2e-sim/combat-engine/docs"
	"github.com/pf2e-sim/combat-engine/internal/api"
	"github.com/pf2e-sim/combat-engine/internal/cache"
	"github.com/pf2e-sim/combat-engine/internal/config"
	"github.com/pf2e-sim/combat-engine/internal/jobs"
	"github.com/pf2e-sim/combat-engine/internal/loader"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
	"github.com/pf2e-sim/combat-engine/pkg/validation"
)

func main() {
	log := initializeLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("simulations_per_run", cfg.Engine.SimulationsPerRun).
		Int("max_rounds", cfg.Engine.MaxRounds).
		Msg("Starting combat engine service")

	validation.Init()

	resultCache := initializeCache(cfg, log)
	bestiary := initializeBestiary(cfg, log)
	queue := initializeJobQueue(cfg, log)
	if queue != nil {
		defer queue.Stop()
	}

	handler := api.NewRouter(&cfg.Server, bestiary, queue, resultCache, log)
	runServer(cfg, handler, log)
}

func initializeLogger() *logger.LoggerV2 {
	cfg := logger.DefaultConfig()
	cfg.Level = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.Pretty = getEnvOrDefault("ENV", "development") != "production"
	cfg.Environment = getEnvOrDefault("ENV", "development")

	log, err := logger.NewV2(cfg)
	if err != nil {
		panic(err)
	}
	return log
}

func initializeCache(cfg *config.Config, log *logger.LoggerV2) *cache.DriverResultCache {
	redisClient, err := cache.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without result memoization")
		return nil
	}
	return cache.NewDriverResultCache(redisClient, cfg.Engine.CacheTTL, log)
}

func initializeBestiary(cfg *config.Config, log *logger.LoggerV2) *loader.Bestiary {
	bestiary, warnings := loader.Load(cfg.Loader.BestiaryDir)
	if bestiary == nil {
		log.Warn().Str("dir", cfg.Loader.BestiaryDir).Msg("Bestiary directory unavailable, serving unknown-enemy_id errors only")
		return loader.NewBestiary()
	}
	for _, w := range warnings {
		log.Warn().Err(w).Msg("Bestiary entry skipped")
	}
	log.Info().Int("entries", bestiary.Len()).Msg("Bestiary loaded")
	return bestiary
}

// initializeJobQueue wires the asynq client used by the HTTP handlers to
// enqueue simulation jobs (internal/api's async endpoints). It does not
// start processing jobs itself; cmd/simworker owns that half of the same
// JobQueue type.
func initializeJobQueue(cfg *config.Config, log *logger.LoggerV2) *jobs.JobQueue {
	queue, err := jobs.NewJobQueue(&cfg.Redis, cfg.Engine.WorkerConcurrency, log)
	if err != nil {
		log.Warn().Err(err).Msg("Job queue unavailable, async simulation submissions will return 503")
		return nil
	}
	return queue
}

func runServer(cfg *config.Config, handler http.Handler, log *logger.LoggerV2) {
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", srv.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
