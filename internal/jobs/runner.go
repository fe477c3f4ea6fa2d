// Package jobs provides fire-and-forget background execution for backup and
// restore work, decoupled from the request that triggered it.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campushq-io/campushq/internal/metrics"
	"github.com/rs/zerolog"
)

// Task is one unit of background work.
type Task struct {
	// Name identifies the task in logs.
	Name string
	// Run does the work. Errors are captured and logged, never propagated.
	Run func(ctx context.Context) error
}

// RunnerConfig holds configuration for the background runner.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers.
	WorkerCount int
	// QueueSize is the task buffer size. Submissions beyond it spill to a
	// dedicated goroutine so the submitting path never blocks.
	QueueSize int
	// MaxTaskDuration is the hard ceiling on a single task's runtime.
	MaxTaskDuration time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with sensible defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:     4,
		QueueSize:       64,
		MaxTaskDuration: 60 * time.Second,
	}
}

// Runner executes tasks on a worker pool. Each task is isolated: a panic or
// error in one task never affects another task or the host process.
type Runner struct {
	config RunnerConfig
	logger zerolog.Logger

	tasks chan Task

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	workerWg sync.WaitGroup
	spillWg  sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(config RunnerConfig, logger zerolog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}
	if config.MaxTaskDuration <= 0 {
		config.MaxTaskDuration = DefaultRunnerConfig().MaxTaskDuration
	}
	return &Runner{
		config: config,
		logger: logger.With().Str("component", "task_runner").Logger(),
		tasks:  make(chan Task, config.QueueSize),
		stopCh: make(chan struct{}),
	}
}

// Start launches the worker pool.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("runner already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})

	for i := 0; i < r.config.WorkerCount; i++ {
		r.workerWg.Add(1)
		go r.worker(i)
	}

	r.logger.Info().Int("workers", r.config.WorkerCount).Msg("task runner started")
	return nil
}

// Stop drains in-flight tasks and shuts the pool down.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.workerWg.Wait()
	r.spillWg.Wait()
	r.logger.Info().Msg("task runner stopped")
}

// Submit schedules a task for execution after the current request has
// already produced its response. It never blocks: if the buffer is full the
// task runs on its own goroutine instead.
func (r *Runner) Submit(task Task) {
	if task.Run == nil {
		return
	}

	select {
	case r.tasks <- task:
	default:
		metrics.TaskSpilled()
		r.logger.Warn().Str("task", task.Name).Msg("task queue full, spilling to dedicated goroutine")
		r.spillWg.Add(1)
		go func() {
			defer r.spillWg.Done()
			r.execute(task)
		}()
	}
}

func (r *Runner) worker(id int) {
	defer r.workerWg.Done()
	logger := r.logger.With().Int("worker_id", id).Logger()
	logger.Debug().Msg("worker started")

	for {
		select {
		case <-r.stopCh:
			// Drain anything already queued before exiting.
			for {
				select {
				case task := <-r.tasks:
					r.execute(task)
				default:
					logger.Debug().Msg("worker stopping")
					return
				}
			}
		case task := <-r.tasks:
			r.execute(task)
		}
	}
}

// execute runs a single task with panic containment and a bounded runtime.
// No error of any kind may crash the host process.
func (r *Runner) execute(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.MaxTaskDuration)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("task", task.Name).
				Interface("panic", rec).
				Msg("task panicked")
		}
	}()

	if err := task.Run(ctx); err != nil {
		r.logger.Error().
			Err(err).
			Str("task", task.Name).
			Dur("duration", time.Since(start)).
			Msg("task failed")
		return
	}

	r.logger.Debug().
		Str("task", task.Name).
		Dur("duration", time.Since(start)).
		Msg("task completed")
}
