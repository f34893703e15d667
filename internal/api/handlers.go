package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pf2e-sim/combat-engine/internal/cache"
	"github.com/pf2e-sim/combat-engine/internal/engine"
	"github.com/pf2e-sim/combat-engine/internal/loader"
	apperrors "github.com/pf2e-sim/combat-engine/pkg/errors"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
	"github.com/pf2e-sim/combat-engine/pkg/validation"
)

// SimulationHandler serves POST /v1/simulations: resolve the request's
// {enemy_id, quantity} pairs against the loaded bestiary (§6), build the
// roster, run a full 100-simulation Driver batch (checking the result
// cache first), and return the aggregated result.
type SimulationHandler struct {
	bestiary    *loader.Bestiary
	resultCache *cache.DriverResultCache
	logger      *logger.LoggerV2
}

// NewSimulationHandler constructs a SimulationHandler. resultCache may be
// nil, in which case every request runs a fresh batch. bestiary may be
// nil, in which case every request is rejected with a validation error
// (400), since no enemy_id can be resolved.
func NewSimulationHandler(bestiary *loader.Bestiary, resultCache *cache.DriverResultCache, log *logger.LoggerV2) *SimulationHandler {
	return &SimulationHandler{bestiary: bestiary, resultCache: resultCache, logger: log}
}

// simulationRequestBody mirrors §6's request shape with validator tags for
// the defense-in-depth pass described in pkg/validation. Party members are
// given as full descriptors; enemies are {enemy_id, quantity} pairs that
// resolveEnemyRefs expands against the loaded bestiary.
type simulationRequestBody struct {
	Party   []engine.CreatureDescriptor `json:"party" validate:"required,min=1,dive"`
	Enemies []loader.EnemyRef           `json:"enemies" validate:"required,min=1,dive"`
}

// resolveEnemyRefs expands a request's enemy_id/quantity pairs into
// descriptors via the loaded bestiary. An unknown enemy_id is reported as
// a warning but does not fail the whole request unless nothing resolved.
// Shared by SimulationHandler and AsyncSimulationHandler.
func resolveEnemyRefs(bestiary *loader.Bestiary, refs []loader.EnemyRef) ([]engine.CreatureDescriptor, []error, error) {
	if bestiary == nil {
		return nil, nil, fmt.Errorf("bestiary is not loaded")
	}
	descriptors, warnings := bestiary.Resolve(refs)
	if len(descriptors) == 0 {
		return nil, warnings, fmt.Errorf("no enemy_id in request resolved to a known bestiary entry")
	}
	return descriptors, warnings, nil
}

// Run handles POST /v1/simulations.
//
//	@Summary      Run a combat simulation batch
//	@Description  Builds a party and enemy roster from the request body and
//	@Description  runs 100 independent simulations, returning the aggregated
//	@Description  win ratio, average rounds, and per-run logs.
//	@Tags         simulations
//	@Accept       json
//	@Produce      json
//	@Param        request body simulationRequestBody true "Simulation request"
//	@Success      200 {object} engine.DriverResult
//	@Failure      400 {object} map[string]interface{}
//	@Failure      500 {object} map[string]interface{}
//	@Router       /v1/simulations [post]
func (h *SimulationHandler) Run(c *gin.Context) {
	var body simulationRequestBody
	if err := validation.ValidateRequestBody(c.Request, &body); err != nil {
		c.Error(err)
		return
	}

	enemyDescs, resolveWarnings, err := resolveEnemyRefs(h.bestiary, body.Enemies)
	if err != nil {
		c.Error(apperrors.NewValidationError(err.Error()))
		return
	}
	if h.logger != nil {
		for _, w := range resolveWarnings {
			h.logger.Warn().Err(w).Msg("Enemy resolution warning")
		}
	}

	req := engine.SimulationRequest{Party: body.Party, Enemies: enemyDescs}

	if h.resultCache != nil {
		key, err := cache.RequestKey(req)
		if err == nil {
			if cached, err := h.resultCache.Get(c.Request.Context(), key); err == nil && cached != nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	_, _, warnings, err := engine.BuildCreatures(req)
	if err != nil {
		c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	start := time.Now()
	driver := engine.NewDriver(func() ([]*engine.Creature, []*engine.Creature) {
		players, enemies, _, _ := engine.BuildCreatures(req)
		return players, enemies
	})
	result := driver.Run()

	if h.logger != nil {
		h.logger.LogSimulationBatch(requestIDFromGin(c), result.TotalSims, result.Wins, time.Since(start), nil)
		for _, w := range warnings {
			h.logger.Warn().Err(w).Msg("Descriptor warning")
		}
	}

	if h.resultCache != nil {
		if key, err := cache.RequestKey(req); err == nil {
			_ = h.resultCache.Set(c.Request.Context(), key, result)
		}
	}

	c.JSON(http.StatusOK, result)
}

func requestIDFromGin(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// HealthHandler serves GET /healthz.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
