// Package falloc implements the kernel's physical frame allocator. It wraps
// a ranges.Set of free physical addresses, carved out of the Usable regions
// the bootloader reports, and hands out individually-sized frames to
// kernel/mem/vmm's page-fault and page-table bring-up code.
package falloc

import (
	"beskaros/kernel"
	"beskaros/kernel/boot"
	"beskaros/kernel/config"
	"beskaros/kernel/kfmt/early"
	"beskaros/kernel/mem/pmm"
	"beskaros/kernel/mem/ranges"
	"beskaros/kernel/mem/vmm"
)

var (
	errOutOfMemory = &kernel.Error{Module: "falloc", Message: "no free frame available for the request"}

	free ranges.Set
)

// Init ingests the Usable regions of the boot info memory map into the free
// pool and reserves the AP trampoline frame so no later allocation can claim
// it.
func Init(info *boot.Info) *kernel.Error {
	var err *kernel.Error

	info.UsableRegions(func(region boot.MemoryRegion) bool {
		if ierr := free.Insert(ranges.Interval{Start: region.Start, End: region.End - 1}); ierr != nil {
			err = ierr
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	early.Printf("[falloc] free memory: %d MiB\n", free.Sum()/(1024*1024))

	return reserveAPTrampolineFrame()
}

// reserveAPTrampolineFrame allocates the fixed frame backing the real-mode
// AP trampoline so no subsequent request can claim it out from under the SMP
// bring-up code.
func reserveAPTrampolineFrame() *kernel.Error {
	var within ranges.Set
	paddr := uint64(config.APTrampolinePaddr)
	if err := within.Insert(ranges.Interval{Start: paddr, End: paddr + uint64(pmm.Size4K{}.Bytes()) - 1}); err != nil {
		return err
	}

	if _, ok := free.Allocate(uint64(pmm.Size4K{}.Bytes()), uint64(pmm.Size4K{}.Bytes()), ranges.MustBeWithin(&within)); !ok {
		return errOutOfMemory
	}
	return nil
}

// Alloc allocates and returns a single frame of size S at its natural
// alignment.
func Alloc[S pmm.Size]() (pmm.Frame[S], *kernel.Error) {
	return AllocRequest[S](ranges.DontCare())
}

// AllocRequest allocates a single frame of size S whose start address
// satisfies req.
func AllocRequest[S pmm.Size](req ranges.Request) (pmm.Frame[S], *kernel.Error) {
	var zero S
	size := uint64(zero.Bytes())

	addr, ok := free.Allocate(size, size, req)
	if !ok {
		return pmm.Invalid[S](), errOutOfMemory
	}

	frame, ok := pmm.FromStartAddress[S](uintptr(addr))
	if !ok {
		return pmm.Invalid[S](), errOutOfMemory
	}
	return frame, nil
}

// Free returns frame's backing memory to the pool, coalescing it with
// neighbouring free intervals.
func Free[S pmm.Size](frame pmm.Frame[S]) *kernel.Error {
	var zero S
	size := uint64(zero.Bytes())
	start := uint64(frame.Address())
	return free.Insert(ranges.Interval{Start: start, End: start + size - 1})
}

// Frame4K is the frame allocator's entry point for vmm.SetFrameAllocator,
// which only ever needs 4 KiB page-table frames.
func Frame4K() (pmm.Frame4K, *kernel.Error) {
	return Alloc[pmm.Size4K]()
}

// MapPages allocates a freshly-backed frame for every page in
// [firstPage, firstPage+pageCount) and maps it with flags.
func MapPages(firstPage vmm.Page, pageCount uint64, flags vmm.PageTableEntryFlag) *kernel.Error {
	for i := uint64(0); i < pageCount; i++ {
		frame, err := Alloc[pmm.Size4K]()
		if err != nil {
			return err
		}

		page := vmm.Page(uintptr(firstPage) + uintptr(i))
		if err := vmm.Map(page, frame, flags, Frame4K); err != nil {
			return err
		}
	}
	return nil
}
