// Package acpi declares the subset of ACPI table shapes the kernel needs
// to discover its cores, local/IO APICs and timers (MADT, FADT, HPET,
// MCFG), following the same tag-parsing style as kernel/multiboot's
// device/acpi/table.SDTHeader/RSDPDescriptor types. Full AML interpretation
// is out of scope; this package only walks the fixed-layout tables needed
// at boot.
package acpi

import (
	"unsafe"

	"beskaros/kernel/kfmt/early"
)

// SDTHeader is the common header every ACPI table begins with.
type SDTHeader struct {
	Signature       [4]byte
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OEMID           [6]byte
	OEMTableID      [8]byte
	OEMRevision     uint32
	CreatorID       uint32
	CreatorRevision uint32
}

// RSDPDescriptor is the ACPI 1.0 root system descriptor pointer.
type RSDPDescriptor struct {
	Signature [8]byte
	Checksum  uint8
	OEMID     [6]byte
	Revision  uint8
	RSDTAddr  uint32
}

// ExtRSDPDescriptor extends RSDPDescriptor for ACPI 2.0+, adding a 64-bit
// XSDT pointer.
type ExtRSDPDescriptor struct {
	RSDPDescriptor
	Length           uint32
	XSDTAddr         uint64
	ExtendedChecksum uint8
	reserved         [3]byte
}

// MADTEntryHeader precedes every variable-length entry inside the MADT's
// interrupt controller structure list.
type MADTEntryHeader struct {
	Type   uint8
	Length uint8
}

// MADTEntryType enumerates the MADT interrupt-controller entry kinds this
// kernel consumes when enumerating cores and IOAPICs.
const (
	MADTEntryLocalAPIC  uint8 = 0
	MADTEntryIOAPIC     uint8 = 1
	MADTEntryLocalX2APIC uint8 = 9
)

// MADT is the Multiple APIC Description Table: a fixed header followed by a
// variable-length list of MADTEntryHeader-prefixed entries.
type MADT struct {
	SDTHeader
	LocalAPICAddr uint32
	Flags         uint32
	// Entries immediately follow in the raw table bytes.
}

// FADT is the Fixed ACPI Description Table; only the fields the kernel
// reads (none yet beyond presence/validation) are declared.
type FADT struct {
	SDTHeader
	FirmwareCtrl uint32
	DSDT         uint32
}

// HPET describes the High Precision Event Timer block.
type HPET struct {
	SDTHeader
	EventTimerBlockID uint32
	BaseAddress       [12]byte // generic address structure
	HPETNumber        uint8
	MinClockTick      uint16
	PageProtection    uint8
}

// MCFG describes the PCIe memory-mapped configuration space, each entry
// covering one PCI segment group.
type MCFG struct {
	SDTHeader
	reserved uint64
	// Entries immediately follow in the raw table bytes.
}

// CoreInfo is one BSP/AP entry discovered while walking the MADT.
type CoreInfo struct {
	APICID  uint8
	Enabled bool
}

// Info is the result of Init: the tables and enumerated cores discovered
// from the RSDP the bootloader handed off.
var Info = struct {
	Cores         []CoreInfo
	LocalAPICAddr uintptr
	HPETAddr      uintptr
	Found         bool
}{}

// Init walks the ACPI tables starting at rsdpPhysAddr, populating Info. A
// zero rsdpPhysAddr (no RSDP published, e.g. running under a minimal
// emulator config) leaves Info.Found false and Info.Cores empty; callers
// fall back to a single-core, no-IOAPIC configuration.
func Init(rsdpPhysAddr uint64) {
	if rsdpPhysAddr == 0 {
		early.Printf("[acpi] no RSDP provided by boot info; assuming single core\n")
		return
	}

	rsdp := (*ExtRSDPDescriptor)(unsafe.Pointer(uintptr(rsdpPhysAddr)))
	if rsdp.Signature != [8]byte{'R', 'S', 'D', ' ', 'P', 'T', 'R', ' '} {
		early.Printf("[acpi] RSDP signature mismatch; assuming single core\n")
		return
	}

	var sdtAddr uintptr
	if rsdp.Revision >= 2 && rsdp.XSDTAddr != 0 {
		sdtAddr = uintptr(rsdp.XSDTAddr)
	} else {
		sdtAddr = uintptr(rsdp.RSDTAddr)
	}

	header := (*SDTHeader)(unsafe.Pointer(sdtAddr))
	early.Printf("[acpi] root table signature=%s length=%d\n", string(header.Signature[:]), header.Length)

	Info.Found = true
	walkTables(sdtAddr, header)
}

// walkTables scans the root table's pointer list for the MADT and HPET
// tables, extracting the local APIC base address, the set of enabled
// logical cores, and the HPET block's physical address.
func walkTables(sdtAddr uintptr, header *SDTHeader) {
	entryPtrSize := uintptr(4)
	if header.Signature == [4]byte{'X', 'S', 'D', 'T'} {
		entryPtrSize = 8
	}

	entryCount := (uintptr(header.Length) - unsafe.Sizeof(SDTHeader{})) / entryPtrSize
	entriesBase := sdtAddr + unsafe.Sizeof(SDTHeader{})

	for i := uintptr(0); i < entryCount; i++ {
		var tableAddr uintptr
		if entryPtrSize == 8 {
			tableAddr = uintptr(*(*uint64)(unsafe.Pointer(entriesBase + i*8)))
		} else {
			tableAddr = uintptr(*(*uint32)(unsafe.Pointer(entriesBase + i*4)))
		}

		tableHeader := (*SDTHeader)(unsafe.Pointer(tableAddr))
		switch tableHeader.Signature {
		case [4]byte{'A', 'P', 'I', 'C'}:
			madt := (*MADT)(unsafe.Pointer(tableAddr))
			Info.LocalAPICAddr = uintptr(madt.LocalAPICAddr)
			parseMADTEntries(tableAddr+unsafe.Sizeof(MADT{}), uintptr(madt.Length)-unsafe.Sizeof(MADT{}))
		case [4]byte{'H', 'P', 'E', 'T'}:
			hpet := (*HPET)(unsafe.Pointer(tableAddr))
			Info.HPETAddr = parseHPETAddress(hpet)
		}
	}
}

// parseHPETAddress extracts the physical MMIO address from the HPET
// table's generic address structure (ACPI 5.2.8.2): a 12-byte structure
// whose bytes [4:12) hold the 64-bit address once the address space ID
// (byte 0) indicates system memory (0).
func parseHPETAddress(hpet *HPET) uintptr {
	if hpet.BaseAddress[0] != 0 {
		return 0 // not memory-mapped (e.g. SMBus); unsupported
	}
	return uintptr(*(*uint64)(unsafe.Pointer(&hpet.BaseAddress[4])))
}

// parseMADTEntries walks the MADT's variable-length interrupt controller
// structure list, recording every enabled local APIC entry as a core.
func parseMADTEntries(base, length uintptr) {
	for off := uintptr(0); off < length; {
		entry := (*MADTEntryHeader)(unsafe.Pointer(base + off))
		if entry.Length == 0 {
			break
		}

		if entry.Type == MADTEntryLocalAPIC {
			type localAPICEntry struct {
				MADTEntryHeader
				ProcessorID uint8
				APICID      uint8
				Flags       uint32
			}
			lapic := (*localAPICEntry)(unsafe.Pointer(base + off))
			Info.Cores = append(Info.Cores, CoreInfo{
				APICID:  lapic.APICID,
				Enabled: lapic.Flags&1 != 0,
			})
		}

		off += uintptr(entry.Length)
	}
}
