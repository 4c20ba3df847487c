package sched

import ksync "beskaros/kernel/sync"

// Priority orders a thread's place in the ready queues. Idle is only ever
// populated with the per-core idle thread.
type Priority uint8

const (
	Idle Priority = iota
	Low
	Normal
	High
	Realtime

	priorityCount = int(Realtime) + 1
)

// Reason identifies why the scheduler is being asked to reconsider the
// current thread.
type Reason uint8

const (
	// Yield is an explicit, voluntary relinquish of the CPU.
	Yield Reason = iota
	// Preempt is a forced switch driven by the timer ISR.
	Preempt
	// WakeUp follows a sleeper becoming runnable again.
	WakeUp
)

// ShouldRotate reports whether this reason rotates a thread to the back of
// its priority queue when the candidate is at the same priority as the
// outgoing thread.
func (r Reason) ShouldRotate() bool {
	return r == Yield || r == Preempt
}

// RoundRobinQueues holds one FIFO run queue per priority level. Each queue
// is guarded by its own spinlock so a core posting to a high-priority queue
// from interrupt context never contends with another core draining a lower
// one.
type RoundRobinQueues struct {
	locks  [priorityCount]ksync.Spinlock
	queues [priorityCount][]*Thread
}

// Append enqueues t at its priority's run queue.
func (q *RoundRobinQueues) Append(t *Thread) {
	p := t.Priority
	q.locks[p].Acquire()
	q.queues[p] = append(q.queues[p], t)
	q.locks[p].Release()
}

// PopBest dequeues the highest-priority runnable thread, draining
// Realtime before High before Normal and so on; the Idle queue is expected
// to always hold at least the per-core idle thread.
func (q *RoundRobinQueues) PopBest() (*Thread, bool) {
	for p := priorityCount - 1; p >= 0; p-- {
		q.locks[p].Acquire()
		if len(q.queues[p]) > 0 {
			t := q.queues[p][0]
			q.queues[p] = q.queues[p][1:]
			q.locks[p].Release()
			return t, true
		}
		q.locks[p].Release()
	}
	return nil, false
}

// ShouldSwitch implements the scheduler's switch policy: a strictly higher
// priority candidate always wins, a strictly lower one never does, and at
// equal priority the switch happens only if the current thread is not idle
// and reason rotates (timer preemption and explicit yield rotate; a wakeup
// at equal priority does not).
func ShouldSwitch(current, candidate *Thread, reason Reason) bool {
	switch {
	case candidate.Priority > current.Priority:
		return true
	case candidate.Priority < current.Priority:
		return false
	default:
		return current.Priority != Idle && reason.ShouldRotate()
	}
}
