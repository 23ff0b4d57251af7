// Package eventloop implements the microtask/macrotask scheduler and
// the worker-thread pool of spec.md §4.7. Grounded on
// original_source/njs/vm/JSRunLoop.h/.cpp for the two-queue
// design and the post-result-as-macrotask pattern; the worker pool is
// bounded with golang.org/x/sync/semaphore rather than an unbounded
// goroutine-per-task fan-out, matching how mna-nenuphar's runtime
// bounds its own background workers.
package eventloop

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Callback is a zero-argument task body; internal/interp supplies a
// closure that invokes a heap.Value function with captured arguments,
// keeping this package free of any heap.Value dependency (spec.md
// §4.7's task table is payload-agnostic).
type Callback func()

// Task is one scheduled unit of work: a microtask job, a timer
// callback, or a worker-thread completion notification.
type Task struct {
	ID       uuid.UUID
	Run      Callback
	Canceled bool
}

// TimerHandle identifies a scheduled timer for clearTimeout/clearInterval.
type TimerHandle struct {
	id uuid.UUID
}

type timer struct {
	id       uuid.UUID
	fire     time.Time
	interval time.Duration // zero for a one-shot setTimeout
	run      Callback
	canceled bool
}

// Loop is the event loop: a FIFO microtask queue drained to empty at
// every checkpoint, a macrotask/timer queue polled once microtasks are
// exhausted, and a bounded worker pool that posts its results back onto
// the macrotask queue (spec.md §4.7).
type Loop struct {
	mu         sync.Mutex
	microtasks *list.List // of *Task
	timers     []*timer
	macrotasks *list.List // of *Task, timer fires and worker results land here

	sem       *semaphore.Weighted
	workerCtx context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	inFlight  int64
}

// New builds a loop whose worker pool allows at most maxWorkers
// concurrent background jobs (spec.md §6's resource-bound requirement).
func New(maxWorkers int64) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		microtasks: list.New(),
		macrotasks: list.New(),
		sem:        semaphore.NewWeighted(maxWorkers),
		workerCtx:  ctx,
		cancel:     cancel,
	}
}

// EnqueueMicrotask schedules a job to run before the loop next
// considers any macrotask (spec.md §4.4's promise-reaction scheduling).
func (l *Loop) EnqueueMicrotask(run Callback) {
	l.mu.Lock()
	l.microtasks.PushBack(&Task{ID: uuid.New(), Run: run})
	l.mu.Unlock()
}

// SetTimeout schedules run to fire once after d.
func (l *Loop) SetTimeout(d time.Duration, run Callback) TimerHandle {
	return l.addTimer(d, 0, run)
}

// SetInterval schedules run to fire repeatedly every d.
func (l *Loop) SetInterval(d time.Duration, run Callback) TimerHandle {
	return l.addTimer(d, d, run)
}

func (l *Loop) addTimer(d, interval time.Duration, run Callback) TimerHandle {
	t := &timer{id: uuid.New(), fire: time.Now().Add(d), interval: interval, run: run}
	l.mu.Lock()
	l.timers = append(l.timers, t)
	l.mu.Unlock()
	return TimerHandle{id: t.id}
}

// ClearTimer cancels a pending timer (clearTimeout/clearInterval).
func (l *Loop) ClearTimer(h TimerHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.timers {
		if t.id == h.id {
			t.canceled = true
		}
	}
	// A timer that already fell due sits in the macrotask queue; cancel
	// that queued task too so it is skipped.
	for e := l.macrotasks.Front(); e != nil; e = e.Next() {
		if task := e.Value.(*Task); task.ID == h.id {
			task.Canceled = true
		}
	}
}

// PostWorkerResult runs fn on a bounded background goroutine and, once
// it completes, enqueues done to run back on the loop's own goroutine
// as a macrotask (spec.md §4.7: "worker results are delivered by
// posting onto the macrotask queue, never by calling back directly").
// Acquiring the semaphore can block the caller if maxWorkers jobs are
// already in flight, applying the resource bound spec.md §6 requires.
func (l *Loop) PostWorkerResult(fn func() any, done func(any)) {
	if err := l.sem.Acquire(l.workerCtx, 1); err != nil {
		return
	}
	l.wg.Add(1)
	atomic.AddInt64(&l.inFlight, 1)
	go func() {
		defer l.wg.Done()
		defer l.sem.Release(1)
		defer atomic.AddInt64(&l.inFlight, -1)
		result := fn()
		l.mu.Lock()
		l.macrotasks.PushBack(&Task{ID: uuid.New(), Run: func() { done(result) }})
		l.mu.Unlock()
	}()
}

// drainMicrotasks runs every queued microtask to completion, including
// any that a running microtask itself enqueues (spec.md §4.4:
// "microtasks are drained fully, in FIFO order, before any macrotask
// runs").
func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		front := l.microtasks.Front()
		if front == nil {
			l.mu.Unlock()
			return
		}
		l.microtasks.Remove(front)
		l.mu.Unlock()
		task := front.Value.(*Task)
		if !task.Canceled {
			task.Run()
		}
	}
}

// promoteDueTimers moves any timer.fire <= now into the macrotask queue,
// rescheduling repeating timers for their next interval.
func (l *Loop) promoteDueTimers(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var kept []*timer
	for _, t := range l.timers {
		if t.canceled {
			continue
		}
		if !t.fire.After(now) {
			l.macrotasks.PushBack(&Task{ID: t.id, Run: t.run})
			if t.interval > 0 {
				t.fire = now.Add(t.interval)
				kept = append(kept, t)
			}
			continue
		}
		kept = append(kept, t)
	}
	l.timers = kept
}

// Run drains microtasks, then repeatedly promotes due timers and runs
// one macrotask at a time (draining microtasks again after each one),
// until no macrotask, pending timer, or in-flight worker remains
// (spec.md §4.7's loop termination condition).
func (l *Loop) Run() {
	l.drainMicrotasks()
	for {
		l.promoteDueTimers(time.Now())

		l.mu.Lock()
		front := l.macrotasks.Front()
		if front != nil {
			l.macrotasks.Remove(front)
		}
		l.mu.Unlock()

		if front != nil {
			task := front.Value.(*Task)
			if !task.Canceled {
				task.Run()
			}
			l.drainMicrotasks()
			continue
		}

		l.mu.Lock()
		hasTimers := len(l.timers) > 0
		l.mu.Unlock()
		if !hasTimers && !l.anyWorkersInFlight() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func (l *Loop) anyWorkersInFlight() bool {
	return atomic.LoadInt64(&l.inFlight) > 0
}

// Close cancels any in-flight worker acquisitions and waits for running
// workers to finish.
func (l *Loop) Close() {
	l.cancel()
	l.wg.Wait()
}
