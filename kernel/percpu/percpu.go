// Package percpu implements each core's private state: core ID, APIC ID
// and scheduler, allocated once per core and reached through the GS-base
// MSR so interrupt handlers and the scheduler can find "this core's" state
// without a lock.
package percpu

import (
	"sync/atomic"
	"unsafe"

	"beskaros/kernel/cpu"
	"beskaros/kernel/sched"
)

// Locals is one core's private state, published by InitBSP/InitAP and never
// mutated from another core except via IPI.
type Locals struct {
	CoreID    uint32
	APICID    uint8
	Scheduler *sched.Scheduler

	// Ticks is a per-core timer tick counter. No code in this tree
	// increments it; the timer handler in kernel/sched does not touch it.
	Ticks uint64
}

var (
	bspLocals = &Locals{CoreID: 0, Scheduler: sched.BSP()}

	// readyFence counts cores that have completed InitAP; kernel/smp's
	// BringUpAPs waits on it before letting the BSP proceed to the main
	// scheduling loop.
	readyFence uint32
)

// InitBSP publishes the bootstrap core's locals into GS base. It must run
// before any interrupt handler that reads Current() can fire.
func InitBSP() {
	publish(bspLocals)
}

// InitAP allocates and publishes a fresh Locals for an application
// processor, identified by its APIC ID and a freshly constructed
// scheduler, then increments the ready fence.
func InitAP(coreID uint32, apicID uint8) *Locals {
	l := &Locals{CoreID: coreID, APICID: apicID, Scheduler: sched.NewScheduler()}
	publish(l)
	FenceArrive()
	return l
}

func publish(l *Locals) {
	cpu.WriteGSBase(uint64(uintptr(unsafe.Pointer(l))))
}

// Current returns the calling core's Locals.
func Current() *Locals {
	return (*Locals)(unsafe.Pointer(uintptr(cpu.ReadGSBase())))
}

// FenceArrive signals that the calling core has finished InitAP.
func FenceArrive() {
	readyFenceAddFn(1)
}

// FenceCount returns the number of cores that have called FenceArrive.
func FenceCount() uint32 {
	return readyFence
}

// readyFenceAddFn is mocked by tests; production code adds to the counter
// atomically, since kernel/smp starts every AP before waiting on the fence
// and several cores may arrive at once.
var readyFenceAddFn = func(delta uint32) {
	atomic.AddUint32(&readyFence, delta)
}
