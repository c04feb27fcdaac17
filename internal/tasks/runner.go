package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/playnest/playnest-backend/internal/logger"
)

// Task is one unit of deferred pipeline work. Errors are logged, never
// returned to the submitting request.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes submitted tasks on a fixed pool of workers. Handlers use it
// to acknowledge a request immediately and run transcription, tagging and
// profiling behind the response.
type Runner struct {
	log     *logger.Logger
	queue   chan Task
	group   *errgroup.Group
	cancel  context.CancelFunc
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewRunner starts concurrency workers draining a queue of size queueSize.
// Each task runs under its own deadline so one stuck model call cannot wedge
// a worker forever.
func NewRunner(baseLog *logger.Logger, concurrency, queueSize int, taskTimeout time.Duration) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	r := &Runner{
		log:     baseLog.With("component", "TaskRunner"),
		queue:   make(chan Task, queueSize),
		group:   group,
		cancel:  cancel,
		timeout: taskTimeout,
	}
	for i := 0; i < concurrency; i++ {
		worker := i
		group.Go(func() error {
			r.work(ctx, worker)
			return nil
		})
	}
	return r
}

// Submit enqueues a task. It fails fast when the queue is full or the runner
// is shutting down, so callers can surface a 503 instead of blocking.
func (r *Runner) Submit(name string, run func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("task runner is shut down")
	}

	// The send is non-blocking, so holding the lock here is cheap and keeps
	// Close from closing the channel mid-send.
	select {
	case r.queue <- Task{Name: name, Run: run}:
		r.log.Debug("Task queued", "task", name)
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Close stops accepting tasks, drains the queue and waits for in-flight work.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.queue)
	if err := r.group.Wait(); err != nil {
		r.log.Warn("Task workers exited with error", "error", err)
	}
	r.cancel()
}

func (r *Runner) work(ctx context.Context, worker int) {
	for task := range r.queue {
		select {
		case <-ctx.Done():
			r.log.Warn("Dropping task, runner context cancelled", "task", task.Name, "worker", worker)
			continue
		default:
		}

		start := time.Now()
		taskCtx := ctx
		cancel := context.CancelFunc(func() {})
		if r.timeout > 0 {
			taskCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		if err := task.Run(taskCtx); err != nil {
			r.log.Error("Task failed", "task", task.Name, "worker", worker, "duration", time.Since(start).String(), "error", err)
		} else {
			r.log.Info("Task finished", "task", task.Name, "worker", worker, "duration", time.Since(start).String())
		}
		cancel()
	}
}
