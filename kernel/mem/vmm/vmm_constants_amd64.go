package vmm

import "math"

const (
	// pageLevels indicates the number of page table levels supported by
	// the amd64 architecture's 4-level paging scheme (P4/P3/P2/P1).
	pageLevels = 4

	// ptePhysPageMask extracts the physical frame address from a page
	// table entry: bits 12-51 hold the physical address.
	ptePhysPageMask = uintptr(0x000f_ffff_ffff_f000)

	// tempMappingAddr is a reserved virtual page used to temporarily map
	// a physical frame (e.g. an inactive PDT) so it can be initialized
	// through the recursive mapping. Its page-table indices are
	// 510, 511, 511, 511.
	tempMappingAddr = uintptr(0xffff_ff7f_ffff_f000)
)

var (
	// pdtVirtualAddr exploits the recursive self-mapping installed in the
	// last P4 entry: setting every page-level index bit to 1 makes the
	// MMU walk through the last P4 entry at every level, landing back on
	// the P4 table itself.
	pdtVirtualAddr = uintptr(math.MaxUint64 &^ ((1 << 12) - 1))

	// pageLevelBits is the number of virtual address bits consumed by
	// each page level; amd64 uses 9 bits (512 entries) per level.
	pageLevelBits = [pageLevels]uint8{9, 9, 9, 9}

	// pageLevelShifts is the bit offset of each page level's index field
	// within a virtual address.
	pageLevelShifts = [pageLevels]uint8{39, 30, 21, 12}
)

const (
	// FlagPresent is set when the page is resident in memory.
	FlagPresent PageTableEntryFlag = 1 << iota

	// FlagRW is set if the page can be written to.
	FlagRW

	// FlagUserAccessible is set if user-mode code can access this page.
	FlagUserAccessible

	// FlagWriteThroughCaching selects write-through caching instead of
	// write-back when set.
	FlagWriteThroughCaching

	// FlagDoNotCache disables caching for this page.
	FlagDoNotCache

	// FlagAccessed is set by the CPU the first time the page is read.
	FlagAccessed

	// FlagDirty is set by the CPU the first time the page is written.
	FlagDirty

	// FlagHugePage marks a 2 MiB (P2) or 1 GiB (P3) large page entry.
	FlagHugePage

	// FlagGlobal excludes the page's TLB entry from being flushed on a
	// CR3 reload.
	FlagGlobal

	// FlagCopyOnWrite marks a page shared between address spaces that
	// must be duplicated on the next write fault. Mutually exclusive
	// with FlagRW: a copy-on-write page is always mapped read-only.
	FlagCopyOnWrite = 1 << 9

	// FlagNoExecute marks a page as non-executable; requires EFER.NXE.
	FlagNoExecute = 1 << 63
)
