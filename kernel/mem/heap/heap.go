// Package heap implements the kernel's general-purpose dynamic memory
// allocator: a slab allocator services requests of 512 bytes or less in
// O(1) using power-of-two size classes, while a buddy allocator backs
// anything larger in O(log n) with automatic coalescing on free. This
// heap is distinct from the Go runtime's own allocator (bootstrapped by
// kernel/goruntime against the same vmm/falloc primitives): it exists so
// kernel-internal control structures that must not move or be scanned by
// the Go GC (scheduler queues' backing storage, syscall handle tables) have
// an allocator of their own, separate from the Go runtime's global
// allocator.
package heap

import (
	"beskaros/kernel"
	"beskaros/kernel/config"
	"beskaros/kernel/mem"
	"beskaros/kernel/mem/falloc"
	"beskaros/kernel/mem/vmm"
	ksync "beskaros/kernel/sync"
)

var (
	errOutOfMemory  = &kernel.Error{Module: "heap", Message: "out of memory"}
	errSizeTooLarge = &kernel.Error{Module: "heap", Message: "requested size exceeds the heap's maximum block order"}

	lock ksync.Spinlock

	arenaBase uintptr
	arenaSize mem.Size

	freeLists [mem.MaxPageOrder + 1][]uintptr
	freeSlab  [len(slabClasses)][]uintptr
)

// slabClasses are the power-of-two size classes the slab side of the heap
// services; config.SlabMaxSize is the largest request the slab side takes.
var slabClasses = [...]mem.Size{16, 32, 64, 128, 256, 512}

// Init reserves and maps config.KernelHeapPages2M worth of 2 MiB pages as
// the heap's backing arena and seeds the top-level buddy free list with it.
func Init() *kernel.Error {
	arenaSize = mem.Size(config.KernelHeapPages2M) * mem.PageSize2M

	addr, err := vmm.EarlyReserveRegion(arenaSize)
	if err != nil {
		return err
	}
	arenaBase = addr

	flags := vmm.FlagPresent | vmm.FlagRW | vmm.FlagNoExecute
	pageCount := uint64(arenaSize) / uint64(mem.PageSize4K)
	if err := falloc.MapPages(vmm.PageFromAddress(arenaBase), pageCount, flags); err != nil {
		return err
	}

	topOrder := mem.PageSize2M.Order()
	blockSize := uint64(mem.PageSize4K) << topOrder
	for off := uint64(0); off < uint64(arenaSize); off += blockSize {
		freeLists[topOrder] = append(freeLists[topOrder], arenaBase+uintptr(off))
	}

	return nil
}

// Alloc returns a region of at least size bytes, or (0, err) on failure.
func Alloc(size mem.Size) (uintptr, *kernel.Error) {
	lock.Acquire()
	defer lock.Release()

	if size <= config.SlabMaxSize {
		return allocSlab(size)
	}
	return allocBuddy(size.Order())
}

// Free releases a region previously returned by Alloc for a request of the
// same size.
func Free(addr uintptr, size mem.Size) *kernel.Error {
	lock.Acquire()
	defer lock.Release()

	if size <= config.SlabMaxSize {
		freeSlab[slabClassIndex(size)] = append(freeSlab[slabClassIndex(size)], addr)
		return nil
	}
	return freeBuddy(addr, size.Order())
}

func slabClassIndex(size mem.Size) int {
	for i, class := range slabClasses {
		if size <= class {
			return i
		}
	}
	return len(slabClasses) - 1
}

// allocSlab pops a free chunk of the smallest class that fits size,
// refilling the class from a freshly buddy-allocated page when empty.
func allocSlab(size mem.Size) (uintptr, *kernel.Error) {
	idx := slabClassIndex(size)
	class := slabClasses[idx]

	if len(freeSlab[idx]) == 0 {
		page, err := allocBuddy(0)
		if err != nil {
			return 0, err
		}

		chunksPerPage := uint64(mem.PageSize4K) / uint64(class)
		for i := uint64(0); i < chunksPerPage; i++ {
			freeSlab[idx] = append(freeSlab[idx], page+uintptr(i*uint64(class)))
		}
	}

	last := len(freeSlab[idx]) - 1
	addr := freeSlab[idx][last]
	freeSlab[idx] = freeSlab[idx][:last]
	return addr, nil
}

// allocBuddy returns a free block of the requested order, recursively
// splitting a larger block when the requested order's free list is empty.
func allocBuddy(order mem.PageOrder) (uintptr, *kernel.Error) {
	if order > mem.MaxPageOrder {
		return 0, errSizeTooLarge
	}

	if n := len(freeLists[order]); n > 0 {
		addr := freeLists[order][n-1]
		freeLists[order] = freeLists[order][:n-1]
		return addr, nil
	}

	if order == mem.MaxPageOrder {
		return 0, errOutOfMemory
	}

	parent, err := allocBuddy(order + 1)
	if err != nil {
		return 0, err
	}

	blockSize := uintptr(mem.PageSize4K) << order
	buddy := parent + blockSize
	freeLists[order] = append(freeLists[order], buddy)
	return parent, nil
}

// freeBuddy returns addr to the free list at order, coalescing with its
// buddy (and that buddy's buddy, and so on) whenever both halves are free.
func freeBuddy(addr uintptr, order mem.PageOrder) *kernel.Error {
	for order < mem.MaxPageOrder {
		blockSize := uintptr(mem.PageSize4K) << order
		offset := addr - arenaBase
		buddyOffset := offset ^ uint64ToUintptr(uint64(blockSize))
		buddyAddr := arenaBase + buddyOffset

		idx, found := indexOf(freeLists[order], buddyAddr)
		if !found {
			break
		}

		freeLists[order] = removeAt(freeLists[order], idx)
		if buddyAddr < addr {
			addr = buddyAddr
		}
		order++
	}

	freeLists[order] = append(freeLists[order], addr)
	return nil
}

func uint64ToUintptr(v uint64) uintptr {
	return uintptr(v)
}

func indexOf(list []uintptr, v uintptr) (int, bool) {
	for i, cur := range list {
		if cur == v {
			return i, true
		}
	}
	return 0, false
}

func removeAt(list []uintptr, idx int) []uintptr {
	last := len(list) - 1
	list[idx] = list[last]
	return list[:last]
}
