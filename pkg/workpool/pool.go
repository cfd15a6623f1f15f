package workpool

import (
	"context"
	"fmt"
	"sync"
)

// Pool runs tasks with bounded concurrency. It is generic over the task
// result type, so callers receive typed outcomes without assertions.
type Pool[T any] struct {
	slots  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func New[T any](size int) *Pool[T] {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool[T]{
		slots:  make(chan struct{}, size),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit schedules task and returns a ticket for its outcome. The task
// runs with a context derived from the caller's ctx, additionally
// cancelled when the ticket is stopped or the pool is closed. Panics are
// recovered into error outcomes.
func (p *Pool[T]) Submit(ctx context.Context, task Task[T]) *Ticket[T] {
	out := make(chan Outcome[T], 1)
	taskCtx, taskCancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(p.ctx, taskCancel)

	if p.ctx.Err() != nil {
		out <- Outcome[T]{Err: context.Canceled}
		unhook()
		return &Ticket[T]{out: out, cancel: taskCancel}
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer unhook()

		select {
		case p.slots <- struct{}{}:
		case <-taskCtx.Done():
			out <- Outcome[T]{Err: taskCtx.Err()}
			return
		}
		defer func() { <-p.slots }()
		defer func() {
			if rec := recover(); rec != nil {
				out <- Outcome[T]{Err: fmt.Errorf("task panicked: %v", rec)}
			}
		}()

		v, err := task(taskCtx)
		out <- Outcome[T]{Value: v, Err: err}
	}()

	return &Ticket[T]{out: out, cancel: taskCancel}
}

// Close cancels every outstanding task context and waits for in-flight
// tasks to deliver their outcome.
func (p *Pool[T]) Close() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}
