// Package sched runs the periodic page work (polls, countdown ticks,
// autosave) with explicit cancellation on page teardown.
package sched

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Func func(ctx context.Context) error

type options struct {
	immediate bool
}

type Option func(*options)

// Immediately runs the task once before the first interval elapses.
func Immediately() Option {
	return func(o *options) { o.immediate = true }
}

type Scheduler struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	tasks   map[string]*Task
	logger  *slog.Logger
	stopped bool
}

func New(parent context.Context, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*Task),
		logger: logger,
	}
}

type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the task without waiting, so a task may stop itself from its
// own callback.
func (t *Task) Stop() {
	t.cancel()
}

// Done is closed once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Every runs fn each interval until the task or the scheduler is stopped. A
// task registered under an existing name replaces the old one. Errors and
// panics are logged; the next tick runs regardless.
func (s *Scheduler) Every(name string, interval time.Duration, fn Func, opts ...Option) *Task {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(s.ctx)
	t := &Task{name: name, cancel: cancel, done: make(chan struct{})}
	if s.stopped {
		cancel()
		close(t.done)
		return t
	}
	if old, ok := s.tasks[name]; ok {
		old.Stop()
	}
	s.tasks[name] = t

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(t.done)
		defer s.forget(t)

		if o.immediate {
			s.runOnce(ctx, name, fn)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx, name, fn)
			}
		}
	}()
	return t
}

func (s *Scheduler) runOnce(ctx context.Context, name string, fn Func) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", "task", name, "panic", fmt.Sprint(r))
		}
	}()
	if err := fn(ctx); err != nil {
		s.logger.Debug("scheduled task failed", "task", name, "error", err)
	}
}

func (s *Scheduler) forget(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[t.name]; ok && cur == t {
		delete(s.tasks, t.name)
	}
}

// Cancel stops the named task if it is registered.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		t.Stop()
	}
}

func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Stop cancels every task and waits for running callbacks to return. It must
// not be called from inside a task callback.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
