// Package sched implements the kernel's preemptive, priority-based thread
// scheduler: round-robin ready queues, a sleep/wait queue for blocked
// threads, a should-switch preemption policy and the context-switch
// contract.
package sched

import (
	"beskaros/kernel/cpu"
	"beskaros/kernel/cpu/apic"
	"beskaros/kernel/irq"
	"beskaros/kernel/kfmt/early"
	"beskaros/kernel/time"
)

// nowMicrosFn is mocked by tests; production code reads the calibrated
// clock kernel/time maintains.
var nowMicrosFn = time.NowMicros

// Scheduler owns one core's ready queues, sleep queues and currently
// running thread. SMP builds one per core (kernel/percpu); this package
// also keeps a BSP-only package-level instance for callers (kmain, the
// timer ISR) that only ever run before kernel/smp brings up APs.
type Scheduler struct {
	Queues   RoundRobinQueues
	Sleepers *SleepQueues
	Current  *Thread
	idle     *Thread
	nextTID  uint64
}

// NewScheduler returns an initialized, empty Scheduler with its idle
// thread already enqueued.
func NewScheduler() *Scheduler {
	s := &Scheduler{Sleepers: NewSleepQueues()}
	s.idle = NewThread(0, Idle, 0, 0)
	s.Current = s.idle
	s.Queues.Append(s.idle)
	return s
}

var bsp = NewScheduler()

// BSP returns the bootstrap core's scheduler.
func BSP() *Scheduler { return bsp }

// NextTID allocates a fresh, core-unique thread ID.
func (s *Scheduler) NextTID() uint64 {
	s.nextTID++
	return s.nextTID
}

// Spawn creates and enqueues a new runnable thread at priority p.
func (s *Scheduler) Spawn(p Priority, stackPointer, addressSpaceRoot uintptr) *Thread {
	t := NewThread(s.NextTID(), p, stackPointer, addressSpaceRoot)
	s.Queues.Append(t)
	return t
}

// Reschedule implements one pass of the scheduling policy: it looks at the
// best runnable candidate and, if ShouldSwitch approves the switch, performs
// it (requeuing the outgoing thread unless it is sleeping or exited).
func (s *Scheduler) Reschedule(reason Reason) {
	candidate, ok := s.Queues.PopBest()
	if !ok {
		return
	}

	if !ShouldSwitch(s.Current, candidate, reason) {
		s.Queues.Append(candidate)
		return
	}

	outgoing := s.Current
	if outgoing.State == Runnable && outgoing != s.idle {
		s.Queues.Append(outgoing)
	}

	s.Current = candidate
	Switch(outgoing, candidate)
}

// onTick is installed as the LAPIC timer's handler; it acks the interrupt
// and asks the scheduler to consider a preemptive switch.
func onTick(_ *irq.Frame, _ *irq.Regs) {
	apic.EOI()

	for _, t := range bsp.Sleepers.PopReady(nowMicrosFn()) {
		bsp.Queues.Append(t)
	}

	bsp.Reschedule(Preempt)
}

// Init wires the timer and device-not-available vectors into irq's
// dispatch table. It does not start the timer (apic.StartTimer programs
// it, and nothing in this tree calls StartTimer) and does not enter the
// scheduling loop; call Enter for that.
func Init() {
	irq.HandleException(irq.TimerVector, onTick)
	irq.HandleException(irq.DeviceNotAvailable, nmHandler)
	early.Printf("[sched] scheduler initialized\n")
}

// Enter starts the idle loop on the current core. It never returns: once
// at least one real thread exists the reschedule call below will switch
// away from this call frame and only return to it when every other thread
// is asleep or exited.
func Enter() {
	for {
		bsp.Reschedule(Yield)
		cpu.Halt()
	}
}
