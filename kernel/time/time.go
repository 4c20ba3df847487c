// Package time implements the kernel's monotonic clock: an HPET-calibrated
// TSC reading when both are available, falling back to the HPET's own main
// counter, and to a sentinel "unknown" value when neither is present —
// NowMicros returns the sentinel rather than panicking when no timer
// source could ever be calibrated.
package time

import (
	"unsafe"

	"beskaros/kernel/acpi"
	"beskaros/kernel/cpu"
	"beskaros/kernel/mem/vmm"
)

// Unknown is returned by NowMicros when no timer source could be calibrated.
const Unknown uint64 = ^uint64(0)

const hpetMainCounterOffset = 0xf0
const hpetCapabilitiesOffset = 0x00

var (
	hpetBase   uintptr
	hpetPeriod uint64 // femtoseconds per tick

	tscTicksPerMicro uint64

	// readTSCFn and readHPETFn are mocked by tests.
	readTSCFn  = cpu.ReadTSC
	readHPETFn = readHPETCounter
)

// Init maps the HPET block kernel/acpi discovered (if any) and calibrates
// the TSC against it by timing a short busy-wait; if no HPET is present the
// clock falls back to reporting Unknown.
func Init() {
	if acpi.Info.HPETAddr == 0 {
		return
	}

	virt, err := vmm.MapMMIO(acpi.Info.HPETAddr, 0x400)
	if err != nil {
		return
	}
	hpetBase = virt

	caps := *(*uint64)(unsafe.Pointer(hpetBase + hpetCapabilitiesOffset))
	hpetPeriod = caps >> 32

	calibrateTSC()
}

func calibrateTSC() {
	if hpetBase == 0 {
		return
	}

	const sampleTicks = 100_000 // short enough to not stall boot noticeably

	start := readTSCFn()
	startHPET := readHPETFn()
	for readHPETFn()-startHPET < sampleTicks {
	}
	elapsedTSC := readTSCFn() - start

	elapsedFemtos := sampleTicks * hpetPeriod
	elapsedMicros := elapsedFemtos / 1_000_000_000
	if elapsedMicros == 0 {
		return
	}

	tscTicksPerMicro = elapsedTSC / elapsedMicros
}

func readHPETCounter() uint64 {
	if hpetBase == 0 {
		return 0
	}
	return *(*uint64)(unsafe.Pointer(hpetBase + hpetMainCounterOffset))
}

// NowMicros returns microseconds since an arbitrary epoch fixed at boot, or
// Unknown if no timer source was calibrated.
func NowMicros() uint64 {
	switch {
	case tscTicksPerMicro != 0:
		return readTSCFn() / tscTicksPerMicro
	case hpetBase != 0 && hpetPeriod != 0:
		return readHPETFn() * hpetPeriod / 1_000_000_000
	default:
		return Unknown
	}
}
