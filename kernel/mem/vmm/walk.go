package vmm

import (
	"unsafe"

	"beskaros/kernel/mem"
)

var (
	// ptePtrFn returns a pointer to the supplied entry address. Tests
	// override it to exercise walk() without dereferencing an address
	// that only makes sense under the recursive mapping; the kernel build
	// inlines it away.
	ptePtrFn = func(entryAddr uintptr) unsafe.Pointer {
		return unsafe.Pointer(entryAddr)
	}
)

// pageTableWalker is called by walk with the current page level and page
// table entry. Returning false aborts the walk.
type pageTableWalker func(pteLevel uint8, pte *pageTableEntry) bool

// walk performs a page table walk for virtAddr, invoking walkFn once per
// page level (P4 down to P1) with the entry at that level, using the
// recursive self-mapping installed in the last P4 entry to reach tables
// that are not otherwise addressable.
func walk(virtAddr uintptr, walkFn pageTableWalker) {
	var (
		level                            uint8
		tableAddr, entryAddr, entryIndex uintptr
		ok                               bool
	)

	for level, tableAddr = uint8(0), pdtVirtualAddr; level < pageLevels; level, tableAddr = level+1, entryAddr {
		entryIndex = (virtAddr >> pageLevelShifts[level]) & ((1 << pageLevelBits[level]) - 1)

		// Shifting the table's virtual address left by an entry's worth
		// of bits adds one more level of recursive indirection, letting
		// us reach the table that entryAddr's entry points to.
		entryAddr = tableAddr + (entryIndex << mem.PointerShift)

		if ok = walkFn(level, (*pageTableEntry)(ptePtrFn(entryAddr))); !ok {
			return
		}

		entryAddr <<= pageLevelBits[level]
	}
}
