package sched

import (
	"container/heap"

	ksync "beskaros/kernel/sync"
)

// SleepHandle identifies an event sleepers can wait on (a condvar-like
// token, e.g. "keyboard queue readable" or "frame N worth of I/O done").
// There is no ecosystem priority-queue/event-multiplexer package suited to
// a freestanding kernel, so the min-heap side is built on the standard
// library's container/heap, the same way this codebase reaches for stdlib
// primitives like sync/atomic where no third-party package fits a
// low-level kernel data structure.
type SleepHandle uint64

type timerEntry struct {
	deadlineMicros uint64
	tid            uint64
}

type timerHeap []timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool   { return h[i].deadlineMicros < h[j].deadlineMicros }
func (h timerHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x interface{})  { *h = append(*h, x.(timerEntry)) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

type sleeper struct {
	reason SleepHandle
	thread *Thread
}

// SleepQueues tracks every parked thread across three structures: a
// deadline-ordered min-heap for timed sleeps, a per-handle FIFO for event
// waiters, and a plain slice for indefinite waits with no handle at all.
// A sleepers map from tid to (reason, thread) backs all three so a stale
// heap/FIFO entry (the thread already woke through the other path) can be
// detected and skipped.
type SleepQueues struct {
	lock ksync.Spinlock

	timers     timerHeap
	events     map[SleepHandle][]uint64
	indefinite []uint64
	sleepers   map[uint64]sleeper
}

// NewSleepQueues returns an empty SleepQueues ready to use.
func NewSleepQueues() *SleepQueues {
	return &SleepQueues{
		events:   make(map[SleepHandle][]uint64),
		sleepers: make(map[uint64]sleeper),
	}
}

const noHandle SleepHandle = 0

// SleepUntil parks t until at least deadlineMicros, registering both a
// timer entry and (if handle != noHandle) an event-wait entry so a
// WaitOnEvent-with-timeout style call resolves on whichever fires first.
func (sq *SleepQueues) SleepUntil(t *Thread, deadlineMicros uint64, handle SleepHandle) {
	sq.lock.Acquire()
	defer sq.lock.Release()

	t.State = Sleeping
	t.sleepUntilMicros = deadlineMicros
	t.waitHandle = handle

	sq.sleepers[t.ID] = sleeper{reason: handle, thread: t}
	heap.Push(&sq.timers, timerEntry{deadlineMicros: deadlineMicros, tid: t.ID})
	if handle != noHandle {
		sq.events[handle] = append(sq.events[handle], t.ID)
	}
}

// WaitOnEvent parks t indefinitely on handle.
func (sq *SleepQueues) WaitOnEvent(t *Thread, handle SleepHandle) {
	sq.lock.Acquire()
	defer sq.lock.Release()

	t.State = Sleeping
	t.waitHandle = handle
	sq.sleepers[t.ID] = sleeper{reason: handle, thread: t}
	sq.events[handle] = append(sq.events[handle], t.ID)
}

// WaitIndefinite parks t with no deadline and no handle (e.g. waiting for
// another thread to explicitly call WakeThread).
func (sq *SleepQueues) WaitIndefinite(t *Thread) {
	sq.lock.Acquire()
	defer sq.lock.Release()

	t.State = Sleeping
	sq.sleepers[t.ID] = sleeper{thread: t}
	sq.indefinite = append(sq.indefinite, t.ID)
}

// PopReady pops and returns every thread whose timer deadline is <= now,
// skipping stale heap entries for threads no longer in sleepers (already
// woken via an event).
func (sq *SleepQueues) PopReady(nowMicros uint64) []*Thread {
	sq.lock.Acquire()
	defer sq.lock.Release()

	var ready []*Thread
	for sq.timers.Len() > 0 && sq.timers[0].deadlineMicros <= nowMicros {
		entry := heap.Pop(&sq.timers).(timerEntry)

		s, ok := sq.sleepers[entry.tid]
		if !ok {
			continue // already woken through another path
		}

		delete(sq.sleepers, entry.tid)
		sq.removeFromEvents(s.reason, entry.tid)
		s.thread.State = Runnable
		ready = append(ready, s.thread)
	}
	return ready
}

// WakeEventSingle wakes the first waiter queued on handle, if any.
func (sq *SleepQueues) WakeEventSingle(handle SleepHandle) *Thread {
	sq.lock.Acquire()
	defer sq.lock.Release()

	queue := sq.events[handle]
	for len(queue) > 0 {
		tid := queue[0]
		queue = queue[1:]
		sq.events[handle] = queue

		s, ok := sq.sleepers[tid]
		if !ok {
			continue
		}
		delete(sq.sleepers, tid)
		s.thread.State = Runnable
		return s.thread
	}
	return nil
}

// WakeEventAll wakes every waiter queued on handle.
func (sq *SleepQueues) WakeEventAll(handle SleepHandle) []*Thread {
	sq.lock.Acquire()
	defer sq.lock.Release()

	var woken []*Thread
	for _, tid := range sq.events[handle] {
		s, ok := sq.sleepers[tid]
		if !ok {
			continue
		}
		delete(sq.sleepers, tid)
		s.thread.State = Runnable
		woken = append(woken, s.thread)
	}
	sq.events[handle] = nil
	return woken
}

// WakeThread removes tid from the sleepers map, its event FIFO and the
// indefinite list, and marks it runnable. Its timer-heap entry, if any, is
// left in place and skipped by PopReady's sleepers-map check.
func (sq *SleepQueues) WakeThread(tid uint64) *Thread {
	sq.lock.Acquire()
	defer sq.lock.Release()

	s, ok := sq.sleepers[tid]
	if !ok {
		return nil
	}
	delete(sq.sleepers, tid)
	sq.removeFromEvents(s.reason, tid)
	sq.removeFromIndefinite(tid)
	s.thread.State = Runnable
	return s.thread
}

func (sq *SleepQueues) removeFromEvents(handle SleepHandle, tid uint64) {
	if handle == noHandle {
		return
	}
	queue := sq.events[handle]
	for i, cur := range queue {
		if cur == tid {
			sq.events[handle] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

func (sq *SleepQueues) removeFromIndefinite(tid uint64) {
	for i, cur := range sq.indefinite {
		if cur == tid {
			sq.indefinite = append(sq.indefinite[:i], sq.indefinite[i+1:]...)
			return
		}
	}
}
