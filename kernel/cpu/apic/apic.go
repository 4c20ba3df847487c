// Package apic programs the local APIC (interrupt acknowledgment, IPI
// send, timer quantum) and the IOAPIC (masked IRQ routing), the hardware
// this kernel uses in place of the legacy 8259 PIC (gopher-os never left
// single-core real mode far enough to need one). Register layouts are
// grounded on the Intel SDM's memory-mapped LAPIC register set, reached
// through the physical address kernel/acpi extracts from the MADT.
package apic

import (
	"unsafe"

	"beskaros/kernel"
	"beskaros/kernel/config"
	"beskaros/kernel/kfmt/early"
)

// Local APIC register offsets (Intel SDM Vol. 3A, Table 10-1), in 16-byte
// aligned slots from the LAPIC's base address.
const (
	regID          = 0x020
	regVersion     = 0x030
	regTPR         = 0x080
	regEOI         = 0x0b0
	regSpurious    = 0x0f0
	regICRLow      = 0x300
	regICRHigh     = 0x310
	regLVTTimer    = 0x320
	regTimerInit   = 0x380
	regTimerCurCnt = 0x390
	regTimerDiv    = 0x3e0
)

const (
	spuriousVectorEnable = 1 << 8

	icrDeliverInit   = 0x500
	icrDeliverSIPI   = 0x600
	icrLevelAssert   = 1 << 14
	icrTriggerLevel  = 1 << 15
	icrDeliveryPend  = 1 << 12
	timerModePeriodic = 1 << 17
)

var (
	base uintptr

	errNotMapped = &kernel.Error{Module: "apic", Message: "local APIC base address is not mapped"}
)

// SetBase records the virtual address the local APIC's MMIO registers are
// mapped at. kernel/kmain calls this once, after mapping the physical
// address kernel/acpi discovered.
func SetBase(virtAddr uintptr) {
	base = virtAddr
}

func reg(offset uintptr) *uint32 {
	return (*uint32)(unsafe.Pointer(base + offset))
}

// Init unmasks the local APIC via the spurious-interrupt vector register
// and clears the task-priority register. It does not touch the timer;
// StartTimer programs the timer's LVT entry and count.
func Init() *kernel.Error {
	if base == 0 {
		return errNotMapped
	}

	*reg(regSpurious) = uint32(spuriousVectorEnable) | 0xff
	*reg(regTPR) = 0

	early.Printf("[apic] local APIC id=%d version=%#x\n", ID(), *reg(regVersion)&0xff)
	return nil
}

// ID returns this core's local APIC ID.
func ID() uint32 {
	return *reg(regID) >> 24
}

// EOI signals end-of-interrupt to the local APIC; every interrupt handler
// that isn't a CPU exception must call this before returning.
func EOI() {
	*reg(regEOI) = 0
}

// SendInit asserts the INIT IPI to the core identified by apicID, the
// first step of the AP bring-up sequence.
func SendInit(apicID uint8) {
	sendIPI(apicID, icrDeliverInit|icrLevelAssert|icrTriggerLevel, 0)
}

// SendSIPI asserts a Startup IPI pointing the target core at the trampoline
// page vector (physical address >> 12).
func SendSIPI(apicID uint8, vector uint8) {
	sendIPI(apicID, icrDeliverSIPI|uint32(vector), 0)
}

// SendIPI posts an arbitrary interrupt vector to apicID, used for the
// reschedule, TLB-shootdown and halt IPI vectors kernel/irq defines.
func SendIPI(apicID uint8, vector uint8) {
	sendIPI(apicID, uint32(vector), 0)
}

func sendIPI(apicID uint8, commandLow uint32, commandHigh uint32) {
	*reg(regICRHigh) = uint32(apicID)<<24 | commandHigh
	*reg(regICRLow) = commandLow

	for *reg(regICRLow)&icrDeliveryPend != 0 {
	}
}

// StartTimer programs the LAPIC timer in periodic mode on vector, with a
// divide-by-16 bus clock and quantumMicros written unconverted as the
// initial count. The period is therefore quantumMicros timer ticks, not
// microseconds; no calibration against a time source is done.
func StartTimer(vector uint8, quantumMicros uint32) {
	_ = config.TimerQuantumMicros // documents the default quantum source

	*reg(regTimerDiv) = 0x3 // divide by 16
	*reg(regLVTTimer) = uint32(vector) | timerModePeriodic
	*reg(regTimerInit) = quantumMicros
}
