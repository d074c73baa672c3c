package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work. Name shows up in logs only.
type Task struct {
	Name string
	Run  func(context.Context) error
}

// Options tunes the worker pool.
type Options struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue runs tasks on a fixed pool of goroutines with bounded retries.
// Used for best-effort work such as cache warming, so a full buffer
// rejects instead of blocking the caller.
type Queue struct {
	name       string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue with its workers already running; Stop
// shuts them down.
func NewQueue(name string, opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = opts.Workers * 8
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	q := &Queue{
		name:       name,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
		tasks:      make(chan Task, opts.BufferSize),
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	return q
}

// Stop cancels in-flight tasks and waits for workers to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
}

// Enqueue offers a task to the pool without blocking.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if !started {
		return fmt.Errorf("queue %s stopped", q.name)
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue %s full, dropping %s", q.name, task.Name)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.run(task)
		}
	}
}

func (q *Queue) run(task Task) {
	for attempt := 0; ; attempt++ {
		err := task.Run(q.ctx)
		if err == nil {
			return
		}
		if attempt >= q.maxRetries || q.ctx.Err() != nil {
			q.logger.Warn("background task failed",
				zap.String("queue", q.name),
				zap.String("task", task.Name),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return
		}
		select {
		case <-q.ctx.Done():
			return
		case <-time.After(q.retryDelay):
		}
	}
}
