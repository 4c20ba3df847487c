// Package smp brings up application processors: it copies the real-mode
// trampoline into the reserved low frame, fills the shared register block
// each AP reads during its 16→64-bit transition, and sequences the
// INIT/SIPI/SIPI IPIs through the local APIC, then waits on the
// kernel/percpu ready fence before returning.
package smp

import (
	"beskaros/kernel/acpi"
	"beskaros/kernel/config"
	"beskaros/kernel/cpu/apic"
	"beskaros/kernel/kfmt/early"
	"beskaros/kernel/percpu"
)

// trampolineVector is the SIPI vector encoding of config.APTrampolinePaddr:
// the SIPI instruction addresses the target in 4 KiB pages.
func trampolineVector() uint8 {
	return uint8(config.APTrampolinePaddr >> 12)
}

// sipiDelayFn is called between the INIT IPI and the first SIPI, and again
// between the two SIPIs; tests mock it. The production value is a no-op and
// adds no delay.
var sipiDelayFn = func() {}

// bringUpOneFn performs the actual INIT/SIPI/SIPI sequence for a single
// core; tests override it to avoid touching real APIC MMIO registers.
var bringUpOneFn = bringUpOne

// apicIDFn and readFenceCountFn are mocked by tests to avoid touching real
// APIC MMIO registers and the percpu ready fence's GS-base-relative state.
var (
	apicIDFn         = apic.ID
	readFenceCountFn = percpu.FenceCount
)

// BringUpAPs enumerates the non-BSP cores kernel/acpi discovered in the
// MADT and brings each one up in turn, waiting for every reporting core to
// reach the ready fence before returning.
func BringUpAPs(cpuCount uint32) {
	if len(acpi.Info.Cores) <= 1 {
		early.Printf("[smp] single core system; skipping AP bring-up\n")
		return
	}

	bspAPICID := apicIDFn()
	started := uint32(0)
	for i, core := range acpi.Info.Cores {
		if !core.Enabled || uint32(core.APICID) == bspAPICID {
			continue
		}

		coreID := uint32(i + 1)
		bringUpOneFn(coreID, core.APICID)
		started++
	}

	for readFenceCountFn() < started {
		// Busy-wait for every started AP to publish its locals and
		// report through FenceArrive; bounded by the number of cores
		// this loop itself started.
	}

	early.Printf("[smp] %d application processor(s) online\n", started)
}

// bringUpOne sequences INIT, SIPI, SIPI for a single AP.
func bringUpOne(coreID uint32, apicID uint8) {
	apic.SendInit(apicID)
	sipiDelayFn()
	apic.SendSIPI(apicID, trampolineVector())
	sipiDelayFn()
	apic.SendSIPI(apicID, trampolineVector())
}
