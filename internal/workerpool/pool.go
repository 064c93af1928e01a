package workerpool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/logging"
)

// ErrClosed is returned by Submit once the pool stopped accepting work.
var ErrClosed = errors.New("worker pool closed")

// Task is a unit of work submitted to the pool.
type Task func()

// Pool is a fixed set of goroutines fed from a bounded queue.
type Pool struct {
	log        *zap.Logger
	maxWorkers int
	queue      chan Task
	wg         sync.WaitGroup
	workers    sync.WaitGroup
	accepting  atomic.Bool
	closeOnce  sync.Once
	mu         sync.RWMutex
}

// New creates a pool with maxWorkers goroutines and a task queue of queueSize.
func New(maxWorkers, queueSize int, log *zap.Logger) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	p := &Pool{
		log:        logging.Component(log, "workerpool"),
		maxWorkers: maxWorkers,
		queue:      make(chan Task, queueSize),
	}
	p.accepting.Store(true)

	p.workers.Add(maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}

	p.log.Debug("worker pool started", zap.Int("workers", maxWorkers), zap.Int("queueSize", queueSize))
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.maxWorkers
}

// Submit enqueues a task, blocking while the queue is full. It fails with
// ctx.Err() if ctx ends first, or ErrClosed after Close.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.accepting.Load() {
		return ErrClosed
	}

	p.wg.Add(1)
	select {
	case p.queue <- task:
		return nil
	case <-ctx.Done():
		p.wg.Done() // undo the Add since task was not enqueued
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for queued and in-flight tasks,
// bounded by ctx. Worker goroutines exit once the queue is drained.
func (p *Pool) Close(ctx context.Context) {
	p.closeOnce.Do(func() {
		// Wait for in-progress Submit calls before closing the queue.
		p.mu.Lock()
		p.accepting.Store(false)
		close(p.queue)
		p.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		p.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Debug("worker pool drained")
	case <-ctx.Done():
		p.log.Warn("worker pool drain timed out")
	}
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for task := range p.queue {
		p.runTask(task)
	}
}

// runTask executes a single task with panic recovery. wg.Done is called here
// to match the wg.Add in Submit.
func (p *Pool) runTask(task Task) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
		}
	}()
	task()
}
