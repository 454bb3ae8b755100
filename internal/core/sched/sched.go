// Package sched runs deferred callbacks against a simulation clock.
//
// Nothing here sleeps or spawns goroutines: the game loop advances the clock
// once per tick and every callback whose deadline has passed runs inline, in
// deadline order. Cancelling a handle removes its callback before it can run.
package sched

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled callback. Handles are never reused.
type Handle uint64

type task struct {
	handle   Handle
	deadline time.Duration
	interval time.Duration // >0 for repeating tasks
	fn       func()
	index    int // position in the heap
}

// Scheduler maps deadlines to callbacks. Single-goroutine access only.
type Scheduler struct {
	now   time.Duration
	next  Handle
	tasks map[Handle]*task
	queue taskQueue
}

func New() *Scheduler {
	return &Scheduler{tasks: make(map[Handle]*task, 64)}
}

// Now returns the simulation time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration { return s.now }

// After runs fn once, d after the current time. d <= 0 runs on the next Advance.
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	return s.add(d, 0, fn)
}

// Every runs fn every d, starting d from now. d must be positive.
func (s *Scheduler) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		panic("sched: non-positive interval")
	}
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	s.next++
	t := &task{handle: s.next, deadline: s.now + d, interval: interval, fn: fn}
	s.tasks[t.handle] = t
	heap.Push(&s.queue, t)
	return t.handle
}

// Cancel removes a pending callback. It reports whether anything was removed;
// cancelling a fired, cancelled or zero handle is a no-op.
func (s *Scheduler) Cancel(h Handle) bool {
	t, ok := s.tasks[h]
	if !ok {
		return false
	}
	delete(s.tasks, h)
	heap.Remove(&s.queue, t.index)
	return true
}

// Pending reports whether h is still scheduled.
func (s *Scheduler) Pending(h Handle) bool {
	_, ok := s.tasks[h]
	return ok
}

// Remaining returns the time left until h fires.
func (s *Scheduler) Remaining(h Handle) (time.Duration, bool) {
	t, ok := s.tasks[h]
	if !ok {
		return 0, false
	}
	return t.deadline - s.now, true
}

// Len returns the number of pending callbacks.
func (s *Scheduler) Len() int { return len(s.tasks) }

// queued is the heap size. Always equal to Len.
func (s *Scheduler) queued() int { return s.queue.Len() }

// Advance moves the clock forward by dt and runs every callback due by the new
// time. While a callback runs, Now reports its deadline, so callbacks that
// schedule follow-ups do so relative to when they were due. Returns the number
// of callbacks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	ran := 0
	for s.queue.Len() > 0 {
		t := s.queue[0]
		if t.deadline > target {
			break
		}
		heap.Pop(&s.queue)
		if t.deadline > s.now {
			s.now = t.deadline
		}
		if t.interval > 0 {
			t.deadline += t.interval
			heap.Push(&s.queue, t)
		} else {
			delete(s.tasks, t.handle)
		}
		t.fn()
		ran++
	}
	s.now = target
	return ran
}

// taskQueue orders by deadline, then by handle so equal deadlines fire in
// scheduling order.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].handle < q[j].handle
}
func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
