package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/pf2e-sim/combat-engine/internal/cache"
	"github.com/pf2e-sim/combat-engine/internal/config"
	"github.com/pf2e-sim/combat-engine/internal/jobs"
	"github.com/pf2e-sim/combat-engine/internal/loader"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
)

// NewRouter builds the gin engine and wraps it with CORS, matching the
// teacher's router+cors composition pattern (cmd/server/main.go). queue
// may be nil (Redis unavailable at startup), in which case the async submit
// endpoint responds with 503 and the status endpoint answers 404 for any
// task without a cached result, rather than panicking.
func NewRouter(cfg *config.ServerConfig, bestiary *loader.Bestiary, queue *jobs.JobQueue, resultCache *cache.DriverResultCache, log *logger.LoggerV2) http.Handler {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestIDMiddleware(), Recovery(log), LoggingMiddleware(log), ErrorHandler())

	r.GET("/healthz", HealthHandler)

	simHandler := NewSimulationHandler(bestiary, resultCache, log)
	asyncHandler := NewAsyncSimulationHandler(bestiary, queue, resultCache, log)
	v1 := r.Group("/v1")
	{
		v1.POST("/simulations", simHandler.Run)
		v1.POST("/simulations/async", asyncHandler.Submit)
		v1.GET("/simulations/async/:taskID", asyncHandler.Status)
	}

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:8080"}
	if cfg.Environment == "production" {
		allowedOrigins = []string{"https://yourdomain.com"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	return c.Handler(r)
}
