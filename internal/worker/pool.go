// Package worker runs best-effort background tasks (profile saves, push
// notifications) on a bounded pool so they never hold up a chat turn.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
)

// ErrClosed is returned by Submit after Shutdown has started.
var ErrClosed = errors.New("worker pool closed")

// ErrQueueFull is returned by Submit when the queue has no free slot.
var ErrQueueFull = errors.New("worker queue full")

// Task is a unit of background work. The context is detached from the
// request that submitted it and is cancelled only when the pool stops.
type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

// Pool is a fixed set of goroutines draining a bounded queue.
type Pool struct {
	queue  chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// TaskTimeout bounds a single task; zero means no limit.
	TaskTimeout time.Duration
}

// NewPool starts concurrency workers over a queue of queueSize slots.
// Non-positive values are raised to 1.
func NewPool(concurrency, queueSize int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  make(chan job, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	log.Info().Int("concurrency", concurrency).Int("queue_size", queueSize).Msg("starting worker pool")
	for i := 0; i < concurrency; i++ {
		p.wg.Add(1)
		go p.runLoop(i + 1)
	}
	return p
}

// Submit enqueues fn without blocking. A full queue or a closed pool drops
// the task; the drop is logged and counted.
func (p *Pool) Submit(name string, fn Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		observability.BackgroundTasks.WithLabelValues(name, "dropped").Inc()
		return ErrClosed
	}
	select {
	case p.queue <- job{name: name, fn: fn}:
		return nil
	default:
		observability.BackgroundTasks.WithLabelValues(name, "dropped").Inc()
		log.Warn().Str("task", name).Msg("worker queue full; dropping task")
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. If ctx
// expires first, running tasks are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) runLoop(workerID int) {
	defer p.wg.Done()
	for j := range p.queue {
		p.run(workerID, j)
	}
}

func (p *Pool) run(workerID int, j job) {
	ctx := p.ctx
	if p.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.TaskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			observability.BackgroundTasks.WithLabelValues(j.name, "panic").Inc()
			log.Error().
				Int("worker_id", workerID).
				Str("task", j.name).
				Err(fmt.Errorf("panic: %v", r)).
				Msg("background task panic")
		}
	}()

	if err := j.fn(ctx); err != nil {
		observability.BackgroundTasks.WithLabelValues(j.name, "error").Inc()
		log.Error().Int("worker_id", workerID).Str("task", j.name).Err(err).Msg("background task failed")
		return
	}
	observability.BackgroundTasks.WithLabelValues(j.name, "ok").Inc()
}
