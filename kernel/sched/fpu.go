package sched

import (
	"beskaros/kernel/cpu"
	"beskaros/kernel/irq"
)

// lastFPUOwner tracks which thread's FPU state is currently live in the
// hardware registers, so nmHandler knows whose state to save before
// restoring (or initializing) the faulting thread's.
var lastFPUOwner *Thread

// nmHandler services the #NM (device-not-available) exception: it clears
// CR0.TS, marks the previous FPU owner's state as saved (if any), zeroes
// the current thread's FPU region if it has never been marked saved, and
// records the current thread as the FPU owner. It issues no FXSAVE or
// FXRSTOR: the hardware FPU registers are neither written to nor loaded
// from any thread's region.
func nmHandler(_ *irq.Frame, _ *irq.Regs) {
	cpu.ClearTS()

	if lastFPUOwner != nil && lastFPUOwner != bsp.Current {
		lastFPUOwner.FPU.Saved = true
	}

	current := bsp.Current
	if !current.FPU.Saved {
		current.FPU.region = [512]byte{}
	}

	lastFPUOwner = current
}
