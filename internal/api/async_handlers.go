package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pf2e-sim/combat-engine/internal/cache"
	"github.com/pf2e-sim/combat-engine/internal/engine"
	"github.com/pf2e-sim/combat-engine/internal/jobs"
	"github.com/pf2e-sim/combat-engine/internal/loader"
	apperrors "github.com/pf2e-sim/combat-engine/pkg/errors"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
	"github.com/pf2e-sim/combat-engine/pkg/validation"
)

// AsyncSimulationHandler serves the async counterpart of SimulationHandler:
// submitting a batch enqueues a job on internal/jobs and returns a task ID
// immediately; a worker process (cmd/simworker) running
// jobs.SimulationRunHandler performs the actual Driver.Run and writes the
// result into resultCache, keyed by the same request hash used as the
// task's ID, so Status can serve a completed result straight from the
// cache once the worker finishes.
type AsyncSimulationHandler struct {
	bestiary    *loader.Bestiary
	queue       *jobs.JobQueue
	resultCache *cache.DriverResultCache
	logger      *logger.LoggerV2
}

// NewAsyncSimulationHandler constructs an AsyncSimulationHandler.
func NewAsyncSimulationHandler(bestiary *loader.Bestiary, queue *jobs.JobQueue, resultCache *cache.DriverResultCache, log *logger.LoggerV2) *AsyncSimulationHandler {
	return &AsyncSimulationHandler{bestiary: bestiary, queue: queue, resultCache: resultCache, logger: log}
}

// Submit handles POST /v1/simulations/async: it resolves and validates the
// request exactly as the synchronous endpoint does, then hands the batch
// off to the job queue instead of running it inline.
//
//	@Summary      Submit a combat simulation batch for async processing
//	@Description  Resolves the request's enemies against the bestiary and
//	@Description  enqueues a Driver batch job, returning a task ID to poll.
//	@Tags         simulations
//	@Accept       json
//	@Produce      json
//	@Param        request body simulationRequestBody true "Simulation request"
//	@Success      202 {object} map[string]interface{}
//	@Failure      400 {object} map[string]interface{}
//	@Failure      503 {object} map[string]interface{}
//	@Router       /v1/simulations/async [post]
func (h *AsyncSimulationHandler) Submit(c *gin.Context) {
	if h.queue == nil {
		c.Error(apperrors.NewServiceUnavailableError("job queue is not available"))
		return
	}

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

	if _, _, _, err := engine.BuildCreatures(req); err != nil {
		c.Error(apperrors.NewValidationError(err.Error()))
		return
	}

	key, err := cache.RequestKey(req)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to compute request key", err))
		return
	}

	if h.resultCache != nil {
		if cached, err := h.resultCache.Get(c.Request.Context(), key); err == nil && cached != nil {
			c.JSON(http.StatusOK, gin.H{"task_id": key, "state": "completed", "result": cached})
			return
		}
	}

	payload := jobs.SimulationRunPayload{RequestID: key, Party: req.Party, Enemies: req.Enemies}
	opts := jobs.DefaultJobOptions()
	opts.TaskID = key

	info, err := h.queue.Enqueue(c.Request.Context(), jobs.JobTypeSimulationRun, payload, opts)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to enqueue simulation job", err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID, "state": string(info.State)})
}

// Status handles GET /v1/simulations/async/:taskID: it checks the result
// cache first (the common case once a worker has finished) and falls back
// to the queue's task state when no cached result exists yet.
//
//	@Summary      Poll an async simulation batch
//	@Tags         simulations
//	@Produce      json
//	@Param        taskID path string true "Task ID returned by Submit"
//	@Success      200 {object} map[string]interface{}
//	@Failure      404 {object} map[string]interface{}
//	@Router       /v1/simulations/async/{taskID} [get]
func (h *AsyncSimulationHandler) Status(c *gin.Context) {
	taskID := c.Param("taskID")

	if h.resultCache != nil {
		if cached, err := h.resultCache.Get(c.Request.Context(), taskID); err == nil && cached != nil {
			c.JSON(http.StatusOK, gin.H{"task_id": taskID, "state": "completed", "result": cached})
			return
		}
	}

	if h.queue == nil {
		c.Error(apperrors.NewNotFoundError("task"))
		return
	}

	info, err := h.queue.GetTaskInfo(taskID)
	if err != nil {
		c.Error(apperrors.NewNotFoundError("task"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_id": info.ID, "state": string(info.State)})
}
