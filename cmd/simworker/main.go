// Command simworker runs the asynq job processor for JobTypeSimulationRun,
// the worker half of internal/jobs: cmd/simserver's HTTP handlers enqueue
// jobs, and this process is what actually runs the Driver batch and writes
// the result into the shared result cache. Run alongside cmd/simserver,
// pointed at the same Redis instance.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pf2e-sim/combat-engine/internal/cache"
	"github.com/pf2e-sim/combat-engine/internal/config"
	"github.com/pf2e-sim/combat-engine/internal/jobs"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
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

	redisClient, err := cache.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis is required for the job worker")
	}
	defer redisClient.Close()
	resultCache := cache.NewDriverResultCache(redisClient, cfg.Engine.CacheTTL, log)

	queue, err := jobs.NewJobQueue(&cfg.Redis, cfg.Engine.WorkerConcurrency, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create job queue")
	}

	queue.RegisterHandler(jobs.JobTypeSimulationRun, jobs.SimulationRunHandler(resultCache, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("concurrency", cfg.Engine.WorkerConcurrency).Msg("Job worker starting")
		errCh <- queue.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Job worker stopped unexpectedly")
		}
	}

	if err := queue.Stop(); err != nil {
		log.Error().Err(err).Msg("Job worker forced to stop")
	}
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

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
