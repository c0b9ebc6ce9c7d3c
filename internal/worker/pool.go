package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/logger"
)

// Task is a detached side effect such as a history save.
type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

// Stats are cumulative counters since the pool started.
type Stats struct {
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Pool runs side effects off the request path. Failures are logged and
// counted, never returned to the caller.
type Pool struct {
	tasks       chan job
	workerCount int
	timeout     time.Duration
	log         *logger.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	started  bool
	stopped  bool
	stopOnce sync.Once

	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewPool(workerCount, queueSize int, timeout time.Duration, log *logger.Logger) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = workerCount * 16
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{
		tasks:       make(chan job, queueSize),
		workerCount: workerCount,
		timeout:     timeout,
		log:         log,
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Info("side-effect workers started", "workers", p.workerCount)
}

// Submit enqueues fn without blocking. It reports false when the queue is full
// or the pool is stopping.
func (p *Pool) Submit(name string, fn Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.dropped.Add(1)
		p.log.Warn("side effect dropped, pool stopped", "task", name)
		return false
	}

	select {
	case p.tasks <- job{name: name, fn: fn}:
		return true
	default:
		p.dropped.Add(1)
		p.log.Warn("side effect dropped, queue full", "task", name)
		return false
	}
}

// Stop refuses new work, drains what is queued and waits for the workers.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.tasks)
		started := p.started
		p.mu.Unlock()

		if !started {
			// Nobody is reading, so run the backlog here.
			for j := range p.tasks {
				p.run(j)
			}
			return
		}
		p.wg.Wait()
		p.log.Info("side-effect workers stopped")
	})
}

func (p *Pool) Stats() Stats {
	return Stats{
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for j := range p.tasks {
		p.run(j)
	}
	p.log.Debug("worker shutting down", "worker", id)
}

func (p *Pool) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, p.log.With("task", j.name))

	start := time.Now()
	err := safeCall(ctx, j.fn)
	if err != nil {
		p.failed.Add(1)
		p.log.Warn("side effect failed", "task", j.name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	p.completed.Add(1)
}

func safeCall(ctx context.Context, fn Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx)
}
