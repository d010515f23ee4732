// Package sched runs application code as cooperative tasks sharing one run
// loop, and owns the bounded deferred-call queue that interrupt handlers use
// to push work into task context.
package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"inputcore-go/errcode"
)

// call is one deferred invocation raised from interrupt context.
type call struct {
	fn  func(any)
	arg any
}

// TaskFunc is a task body. It receives the owning scheduler as its first
// argument so tasks can request sleeps.
type TaskFunc func(s *Scheduler, args ...any)

// Task is the handle returned by CreateTask.
type Task struct {
	done chan struct{}
}

// Done is closed when the task function returns.
func (t *Task) Done() <-chan struct{} { return t.done }

type Scheduler struct {
	// Written by ISRs via Schedule; MUST NOT block the ISR:
	defq chan call

	mu    sync.Mutex
	tasks []*Task

	drops uint32 // deferred-call drop counter
}

// New creates a scheduler whose deferred-call queue holds queueLen entries.
func New(queueLen int) *Scheduler {
	if queueLen <= 0 {
		queueLen = 16
	}
	return &Scheduler{defq: make(chan call, queueLen)}
}

// Schedule enqueues fn(arg) for execution on the run loop. Safe to call from
// interrupt context: it never blocks. Returns QueueFull when the queue is
// full; callers in ISR paths drop the request on that error.
func (s *Scheduler) Schedule(fn func(any), arg any) error {
	select {
	case s.defq <- call{fn: fn, arg: arg}:
		return nil
	default:
		atomic.AddUint32(&s.drops, 1)
		return errcode.QueueFull
	}
}

// Drops reports how many deferred calls were rejected with QueueFull.
func (s *Scheduler) Drops() uint32 { return atomic.LoadUint32(&s.drops) }

// CreateTask starts fn as a cooperatively scheduled task and returns its
// handle immediately. Tasks run until their function returns; there is no
// cancellation.
func (s *Scheduler) CreateTask(fn TaskFunc, args ...any) *Task {
	t := &Task{done: make(chan struct{})}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	go func() {
		defer close(t.done)
		fn(s, args...)
	}()
	return t
}

// Tasks reports how many tasks have been created.
func (s *Scheduler) Tasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Sleep suspends the calling task, letting other tasks and deferred calls run.
func (s *Scheduler) Sleep(d time.Duration) { time.Sleep(d) }

// SleepMs is Sleep with a millisecond count.
func (s *Scheduler) SleepMs(ms int) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// Start drains the deferred-call queue on its own goroutine until ctx is
// cancelled. Use this when embedding the scheduler in a larger program or in
// tests; firmware entry points normally call RunForever instead.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-s.defq:
			c.fn(c.arg)
		}
	}
}

// RunForever transfers control to the run loop and does not return. A
// keep-alive task sleeping in a coarse loop pins the process; the expected
// exit path is an external watchdog reset, not shutdown.
func (s *Scheduler) RunForever() {
	s.CreateTask(keepAlive)
	s.loop(context.Background())
}

func keepAlive(s *Scheduler, _ ...any) {
	for {
		s.SleepMs(10_000)
	}
}
