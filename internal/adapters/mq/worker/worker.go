// Package worker runs the single-consumer event loop that owns a browser
// session's state.
//
// Everything that touches a session's document or view-models runs as a task
// on its loop. Network calls run on their own goroutines and post their
// completion back, so tasks never block on I/O.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/skillmonitor/internal/adapters/mq/queue"
	"github.com/okian/skillmonitor/pkg/logger"
	"github.com/okian/skillmonitor/pkg/metrics"
)

const (
	minRetryBackoff = time.Millisecond
	maxRetryBackoff = 50 * time.Millisecond
)

// Task is what the loop executes.
type Task = queue.Task

// Queue defines how the loop receives tasks.
type Queue interface {
	Enqueue(ctx context.Context, t Task) bool
	Dequeue(ctx context.Context) <-chan Task
	Len(ctx context.Context) int
	Close() error
}

// Loop executes tasks one at a time in enqueue order.
type Loop struct {
	queue Queue
	name  string

	ctx    context.Context
	cancel context.CancelFunc

	// pending counts queued tasks, the running task and in-flight Await calls.
	mu      sync.Mutex
	pending int
	idle    chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	logger logger.Logger
}

// NewLoop creates a loop bound to ctx. Cancelling ctx stops the loop.
func NewLoop(ctx context.Context, q Queue, opts ...Option) *Loop {
	idle := make(chan struct{})
	close(idle)

	lctx, cancel := context.WithCancel(ctx)
	l := &Loop{
		queue:  q,
		name:   "loop",
		ctx:    lctx,
		cancel: cancel,
		idle:   idle,
		done:   make(chan struct{}),
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the consumer goroutine. Calling it again is a no-op.
func (l *Loop) Start() {
	l.startOnce.Do(func() { go l.run() })
}

// Context returns the loop's context. It is cancelled by Stop.
func (l *Loop) Context() context.Context { return l.ctx }

// Done is closed once the consumer goroutine has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) run() {
	defer close(l.done)

	tasks := l.queue.Dequeue(l.ctx)
	for {
		select {
		case <-l.ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			if l.ctx.Err() != nil {
				return
			}
			l.execute(task)
			metrics.UpdateQueueSize(l.queue.Len(l.ctx))
		}
	}
}

func (l *Loop) execute(task Task) {
	start := time.Now()
	defer l.release()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordLoopPanic()
			metrics.RecordErrorByType("loop_panic", "high")
			l.logger.Error(l.ctx, "task panicked", logger.String("loop", l.name), logger.Any("panic", r))
		}
		metrics.RecordLoopTask(float64(time.Since(start).Microseconds()) / 1000)
	}()
	task(l.ctx)
}

func (l *Loop) acquire() {
	l.mu.Lock()
	if l.pending == 0 {
		l.idle = make(chan struct{})
	}
	l.pending++
	l.mu.Unlock()
}

func (l *Loop) release() {
	l.mu.Lock()
	l.pending--
	if l.pending == 0 {
		close(l.idle)
	}
	l.mu.Unlock()
}

// Post enqueues task without blocking. It reports false when the queue is
// full or the loop is stopped.
func (l *Loop) Post(ctx context.Context, task Task) bool {
	if task == nil {
		return false
	}
	if l.ctx.Err() != nil {
		return false
	}
	l.acquire()
	if !l.queue.Enqueue(ctx, task) {
		l.release()
		return false
	}
	return true
}

// Call runs fn on the loop and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func(ctx context.Context)) error {
	finished := make(chan struct{})
	if !l.Post(ctx, func(c context.Context) {
		defer close(finished)
		fn(c)
	}) {
		if l.ctx.Err() != nil {
			return ErrStopped
		}
		return ErrRejected
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for loop task: %w", ctx.Err())
	case <-l.done:
		return ErrStopped
	}
}

// After posts task once d has elapsed. The returned func cancels it if it
// has not fired yet.
func (l *Loop) After(d time.Duration, task Task) (stop func()) {
	t := time.AfterFunc(d, func() {
		if !l.Post(l.ctx, task) && l.ctx.Err() == nil {
			l.logger.Warn(l.ctx, "timer task dropped", logger.String("loop", l.name))
		}
	})
	return func() { t.Stop() }
}

// Every posts task every d until the returned func is called or the loop stops.
func (l *Loop) Every(d time.Duration, task Task) (stop func()) {
	quit := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-l.ctx.Done():
				return
			case <-quit:
				return
			case <-ticker.C:
				if !l.Post(l.ctx, task) && l.ctx.Err() == nil {
					l.logger.Warn(l.ctx, "ticker task dropped", logger.String("loop", l.name))
				}
			}
		}
	}()
	return func() { once.Do(func() { close(quit) }) }
}

// Await runs call off the loop and delivers its result to then on the loop.
// The call counts as pending work until then has run, so Settle waits for it.
// A completion is never dropped while the loop runs: when the queue is full
// it is retried until there is room.
func Await[T any](l *Loop, call func(ctx context.Context) T, then func(ctx context.Context, v T)) {
	if l.ctx.Err() != nil {
		return
	}
	l.acquire()
	go func() {
		defer l.release()
		v := call(l.ctx)
		l.deliver(func(c context.Context) { then(c, v) })
	}()
}

func (l *Loop) deliver(task Task) {
	backoff := minRetryBackoff
	for attempt := 0; ; attempt++ {
		if l.Post(l.ctx, task) {
			return
		}
		if l.ctx.Err() != nil {
			return
		}
		if attempt == 0 {
			l.logger.Warn(l.ctx, "queue full, retrying completion", logger.String("loop", l.name))
		}
		select {
		case <-l.ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

// Settle blocks until the loop has no queued, running or awaited work.
// Timers that have not fired yet do not count.
func (l *Loop) Settle(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("settling %s: %w", l.name, ctx.Err())
	case <-l.done:
		return ErrStopped
	}
}

// Stop cancels the loop context, closes the queue and waits for the running
// task to finish or ctx to expire.
func (l *Loop) Stop(ctx context.Context) error {
	l.stopOnce.Do(func() {
		l.cancel()
		if err := l.queue.Close(); err != nil {
			l.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	})

	l.startOnce.Do(func() { close(l.done) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "stop timed out", logger.String("loop", l.name))
		return fmt.Errorf("stop timed out: %w", ctx.Err())
	}
}
