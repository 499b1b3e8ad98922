package pipeline

import (
	"context"
	"errors"
	"sync"

	"service-automation/internal/common/logger"
)

var ErrPoolStopped = errors.New("worker pool is stopped")

// Task is one unit of background work.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed set of goroutines fed by a bounded queue.
// Submit never blocks: when the queue is full the task is handed to a
// goroutine that waits for room.
type Pool struct {
	tasks chan Task
	quit  chan struct{}
	ctx   context.Context

	mu      sync.Mutex
	stopped bool

	workers  sync.WaitGroup
	handoffs sync.WaitGroup
	log      logger.Logger
}

// NewPool starts size workers over a queue of queueSize slots. Tasks run
// with ctx, which should outlive individual requests.
func NewPool(ctx context.Context, size, queueSize int, log logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		tasks: make(chan Task, queueSize),
		quit:  make(chan struct{}),
		ctx:   ctx,
		log:   log.Named("pool"),
	}
	for i := 0; i < size; i++ {
		p.workers.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.workers.Done()
	for {
		select {
		case task := <-p.tasks:
			p.exec(task)
		case <-p.quit:
			// drain what was queued before Stop
			for {
				select {
				case task := <-p.tasks:
					p.exec(task)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) exec(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("background task panicked", map[string]interface{}{
				"panic": r,
			})
		}
	}()
	task(p.ctx)
}

// Submit enqueues task. It returns ErrPoolStopped after Stop.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
	}

	p.log.Warn("queue full, handing task off", map[string]interface{}{
		"queueSize": cap(p.tasks),
	})
	p.handoffs.Add(1)
	go func() {
		defer p.handoffs.Done()
		select {
		case p.tasks <- task:
		case <-p.quit:
			p.exec(task)
		}
	}()
	return nil
}

// Stop refuses new tasks, runs everything already accepted and waits for
// the workers to exit or ctx to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.quit)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.handoffs.Wait()
		p.workers.Wait()
		// a hand-off may have landed after the workers drained
		for {
			select {
			case task := <-p.tasks:
				p.exec(task)
				continue
			default:
			}
			break
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
