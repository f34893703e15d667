// Package jobs runs batch simulation requests asynchronously over asynq,
// for callers that submit a request and poll for a result rather than
// blocking on a synchronous Driver.Run. cmd/simserver's async handlers
// enqueue jobs with a JobQueue built from this package; cmd/simworker is
// the process that registers SimulationRunHandler and calls Start to
// actually process them. Adapted from the teacher's internal/jobs/queue.go
// background-job processor.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pf2e-sim/combat-engine/internal/cache"
	"github.com/pf2e-sim/combat-engine/internal/config"
	"github.com/pf2e-sim/combat-engine/internal/engine"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
)

// JobType represents different types of background jobs.
type JobType string

const (
	// JobTypeSimulationRun runs a full Driver batch (spec §4.6) for one
	// simulation request and stores the aggregated result in the cache.
	JobTypeSimulationRun JobType = "simulation:run"

	// Queue names
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// JobQueue manages background job processing.
type JobQueue struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	redisOpt asynq.RedisClientOpt
	logger   *logger.LoggerV2
	handlers map[JobType]JobHandler
	mu       sync.RWMutex
}

// JobHandler processes a specific job type.
type JobHandler func(ctx context.Context, task *asynq.Task) error

// JobOptions contains options for enqueuing a job.
type JobOptions struct {
	MaxRetry  int
	Queue     string
	ProcessAt time.Time
	ProcessIn time.Duration
	Deadline  time.Time
	UniqueFor time.Duration
	Retention time.Duration
	TaskID    string
}

// DefaultJobOptions returns default job options.
func DefaultJobOptions() JobOptions {
	return JobOptions{
		MaxRetry:  3,
		Queue:     QueueDefault,
		Retention: 24 * time.Hour,
	}
}

// NewJobQueue creates a new job queue.
func NewJobQueue(cfg *config.RedisConfig, workerConcurrency int, log *logger.LoggerV2) (*JobQueue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	if workerConcurrency <= 0 {
		workerConcurrency = 10
	}

	serverConfig := asynq.Config{
		Concurrency: workerConcurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		StrictPriority: true,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			if log != nil {
				log.Error().
					Err(err).
					Str("task_type", task.Type()).
					Bytes("payload", task.Payload()).
					Msg("Task processing failed")
			}
		}),
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			return time.Duration(n*n) * time.Second
		},
		Logger: &asynqLogger{logger: log},
		HealthCheckFunc: func(err error) {
			if err != nil && log != nil {
				log.Error().Err(err).Msg("Asynq health check failed")
			}
		},
	}

	server := asynq.NewServer(redisOpt, serverConfig)
	mux := asynq.NewServeMux()

	jq := &JobQueue{
		client:   client,
		server:   server,
		mux:      mux,
		redisOpt: redisOpt,
		logger:   log,
		handlers: make(map[JobType]JobHandler),
	}

	return jq, nil
}

// RegisterHandler registers a handler for a job type.
func (jq *JobQueue) RegisterHandler(jobType JobType, handler JobHandler) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	jq.handlers[jobType] = handler

	jq.mux.HandleFunc(string(jobType), func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()

		if jq.logger != nil {
			jq.logger.Info().
				Str("job_type", string(jobType)).
				Str("task_id", task.ResultWriter().TaskID()).
				Int("payload_size", len(task.Payload())).
				Msg("Processing job")
		}

		err := handler(ctx, task)

		if jq.logger != nil {
			event := jq.logger.Info().
				Str("job_type", string(jobType)).
				Str("task_id", task.ResultWriter().TaskID()).
				Dur("duration", time.Since(start))

			if err != nil {
				event.Err(err).Msg("Job failed")
			} else {
				event.Msg("Job completed")
			}
		}

		return err
	})

	if jq.logger != nil {
		jq.logger.Info().Str("job_type", string(jobType)).Msg("Registered job handler")
	}
}

// Enqueue adds a job to the queue.
func (jq *JobQueue) Enqueue(ctx context.Context, jobType JobType, payload interface{}, opts ...JobOptions) (*asynq.TaskInfo, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(string(jobType), data)

	opt := DefaultJobOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	var taskOpts []asynq.Option

	if opt.MaxRetry > 0 {
		taskOpts = append(taskOpts, asynq.MaxRetry(opt.MaxRetry))
	}
	if opt.Queue != "" {
		taskOpts = append(taskOpts, asynq.Queue(opt.Queue))
	}
	if !opt.ProcessAt.IsZero() {
		taskOpts = append(taskOpts, asynq.ProcessAt(opt.ProcessAt))
	} else if opt.ProcessIn > 0 {
		taskOpts = append(taskOpts, asynq.ProcessIn(opt.ProcessIn))
	}
	if !opt.Deadline.IsZero() {
		taskOpts = append(taskOpts, asynq.Deadline(opt.Deadline))
	}
	if opt.UniqueFor > 0 {
		taskOpts = append(taskOpts, asynq.Unique(opt.UniqueFor))
	}
	if opt.Retention > 0 {
		taskOpts = append(taskOpts, asynq.Retention(opt.Retention))
	}
	if opt.TaskID != "" {
		taskOpts = append(taskOpts, asynq.TaskID(opt.TaskID))
	}

	info, err := jq.client.EnqueueContext(ctx, task, taskOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	if jq.logger != nil {
		jq.logger.Info().
			Str("job_type", string(jobType)).
			Str("task_id", info.ID).
			Str("queue", info.Queue).
			Str("state", string(info.State)).
			Msg("Job enqueued")
	}

	return info, nil
}

// Start begins processing jobs.
func (jq *JobQueue) Start() error {
	if jq.logger != nil {
		jq.logger.Info().Msg("Starting job queue processor")
	}
	return jq.server.Start(jq.mux)
}

// Stop gracefully stops the job processor.
func (jq *JobQueue) Stop() error {
	if jq.logger != nil {
		jq.logger.Info().Msg("Stopping job queue processor")
	}
	jq.server.Shutdown()
	return jq.client.Close()
}

// GetTaskInfo retrieves information about a task.
func (jq *JobQueue) GetTaskInfo(taskID string) (*asynq.TaskInfo, error) {
	inspector := asynq.NewInspector(jq.redisOpt)
	defer inspector.Close()
	return inspector.GetTaskInfo(QueueDefault, taskID)
}

// CancelTask cancels a scheduled or retrying task.
func (jq *JobQueue) CancelTask(taskID string) error {
	inspector := asynq.NewInspector(jq.redisOpt)
	defer inspector.Close()
	return inspector.DeleteTask(QueueDefault, taskID)
}

// GetQueueStats returns statistics for all queues.
func (jq *JobQueue) GetQueueStats() (map[string]*asynq.QueueInfo, error) {
	inspector := asynq.NewInspector(jq.redisOpt)
	defer inspector.Close()

	queues, err := inspector.Queues()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*asynq.QueueInfo)
	for _, q := range queues {
		info, err := inspector.GetQueueInfo(q)
		if err != nil {
			return nil, err
		}
		stats[q] = info
	}

	return stats, nil
}

// HealthCheck verifies the job queue is functional.
func (jq *JobQueue) HealthCheck(ctx context.Context) error {
	stats, err := jq.GetQueueStats()
	if err != nil {
		return fmt.Errorf("failed to get queue stats: %w", err)
	}

	expectedQueues := []string{QueueCritical, QueueDefault, QueueLow}
	for _, q := range expectedQueues {
		if _, ok := stats[q]; !ok {
			return fmt.Errorf("queue %s not found", q)
		}
	}

	return nil
}

// asynqLogger adapts our logger to Asynq's logger interface.
type asynqLogger struct {
	logger *logger.LoggerV2
}

func (l *asynqLogger) Debug(args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug().Msg(fmt.Sprint(args...))
	}
}

func (l *asynqLogger) Info(args ...interface{}) {
	if l.logger != nil {
		l.logger.Info().Msg(fmt.Sprint(args...))
	}
}

func (l *asynqLogger) Warn(args ...interface{}) {
	if l.logger != nil {
		l.logger.Warn().Msg(fmt.Sprint(args...))
	}
}

func (l *asynqLogger) Error(args ...interface{}) {
	if l.logger != nil {
		l.logger.Error().Msg(fmt.Sprint(args...))
	}
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	if l.logger != nil {
		l.logger.Fatal().Msg(fmt.Sprint(args...))
	}
}

// SimulationRunPayload is the job payload for JobTypeSimulationRun.
type SimulationRunPayload struct {
	RequestID string                    `json:"request_id"`
	Party     []engine.CreatureDescriptor `json:"party"`
	Enemies   []engine.CreatureDescriptor `json:"enemies"`
}

// SimulationRunHandler builds a JobHandler that runs a full Driver batch
// for the payload's party/enemies and writes the aggregated result to
// resultCache under the payload's request hash.
func SimulationRunHandler(resultCache *cache.DriverResultCache, log *logger.LoggerV2) JobHandler {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload SimulationRunPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal simulation job payload: %w", err)
		}

		req := engine.SimulationRequest{Party: payload.Party, Enemies: payload.Enemies}

		// Validate once up front so a malformed request fails fast rather
		// than on the Driver's first of 100 build calls.
		_, _, warnings, err := engine.BuildCreatures(req)
		if err != nil {
			return fmt.Errorf("failed to build creatures: %w", err)
		}
		if log != nil {
			for _, w := range warnings {
				log.Warn().Str("request_id", payload.RequestID).Err(w).Msg("Descriptor warning")
			}
		}

		start := time.Now()
		driver := engine.NewDriver(func() ([]*engine.Creature, []*engine.Creature) {
			// BuildCreatures is called fresh per run so the Driver never
			// shares an object graph across simulations (spec §5); the
			// one-time error/warning check above already validated req.
			players, enemies, _, _ := engine.BuildCreatures(req)
			return players, enemies
		})
		result := driver.Run()

		if log != nil {
			log.LogSimulationBatch(payload.RequestID, result.TotalSims, result.Wins, time.Since(start), nil)
		}

		key, err := cache.RequestKey(req)
		if err != nil {
			return fmt.Errorf("failed to compute cache key: %w", err)
		}
		return resultCache.Set(ctx, key, result)
	}
}
