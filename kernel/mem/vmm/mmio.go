package vmm

import (
	"beskaros/kernel"
	"beskaros/kernel/mem"
	"beskaros/kernel/mem/pmm"
)

// MapMMIO reserves a virtual region and maps it 1:1 onto the physical
// address range [physAddr, physAddr+size), uncached semantics aside (the
// kernel does not yet program PAT/MTRR), for device registers such as the
// local APIC that live at a fixed physical address discovered at runtime
// rather than carved out of a frame allocator.
func MapMMIO(physAddr uintptr, size mem.Size) (uintptr, *kernel.Error) {
	virtAddr, err := EarlyReserveRegion(size)
	if err != nil {
		return 0, err
	}

	pageCount := uint64((size + mem.PageSize - 1) / mem.PageSize)
	physBase := physAddr &^ (uintptr(mem.PageSize) - 1)

	for i := uint64(0); i < pageCount; i++ {
		frame := pmm.ContainingAddress[pmm.Size4K](physBase + uintptr(i)*uintptr(mem.PageSize))
		page := PageFromAddress(virtAddr + uintptr(i)*uintptr(mem.PageSize))
		if err := Map(page, frame, FlagPresent|FlagRW|FlagNoExecute, frameAllocator); err != nil {
			return 0, err
		}
	}

	return virtAddr + (physAddr - physBase), nil
}
