package falloc

import (
	"testing"

	"beskaros/kernel/boot"
	"beskaros/kernel/config"
	"beskaros/kernel/mem/pmm"
	"beskaros/kernel/mem/ranges"
)

func resetPool() {
	free = ranges.Set{}
}

func TestInitReservesAPTrampolineFrame(t *testing.T) {
	resetPool()
	defer resetPool()

	info := &boot.Info{
		MemoryMap: []boot.MemoryRegion{
			{Start: 0, End: 0x10_0000, Usage: boot.Usable},
			{Start: 0x10_0000, End: 0x20_0000, Usage: boot.Bootloader},
			{Start: 0x20_0000, End: 0x30_0000, Usage: boot.Usable},
		},
	}

	if err := Init(info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The AP trampoline frame must no longer be available for a
	// general-purpose allocation constrained to it.
	var within ranges.Set
	paddr := uint64(config.APTrampolinePaddr)
	within.Insert(ranges.Interval{Start: paddr, End: paddr + uint64(pmm.Size4K{}.Bytes()) - 1})

	if _, ok := free.Allocate(uint64(pmm.Size4K{}.Bytes()), uint64(pmm.Size4K{}.Bytes()), ranges.MustBeWithin(&within)); ok {
		t.Fatal("expected the AP trampoline frame to already be reserved")
	}
}

func TestAllocAndFreeRoundTrip(t *testing.T) {
	resetPool()
	defer resetPool()

	free.Insert(ranges.Interval{Start: 0x10_0000, End: 0x10_0000 + uint64(pmm.Size4K{}.Bytes())*4 - 1})

	frame, err := Alloc[pmm.Size4K]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Address() != 0x10_0000 {
		t.Fatalf("expected lowest-fit frame at 0x100000; got %#x", frame.Address())
	}

	if err := Free(frame); err != nil {
		t.Fatalf("unexpected error freeing frame: %v", err)
	}

	// Freeing should coalesce back with the remaining free span.
	if got := free.Sum(); got != uint64(pmm.Size4K{}.Bytes())*4 {
		t.Fatalf("expected the freed frame to coalesce back; sum=%#x", got)
	}
}

func TestAllocOutOfMemory(t *testing.T) {
	resetPool()
	defer resetPool()

	if _, err := Alloc[pmm.Size4K](); err != errOutOfMemory {
		t.Fatalf("expected errOutOfMemory on an empty pool; got %v", err)
	}
}

func TestAllocRequestConstrained(t *testing.T) {
	resetPool()
	defer resetPool()

	free.Insert(ranges.Interval{Start: 0, End: 0xf_ffff})

	var within ranges.Set
	within.Insert(ranges.Interval{Start: 0x9000, End: 0x9fff})

	frame, err := AllocRequest[pmm.Size4K](ranges.MustBeWithin(&within))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Address() != 0x9000 {
		t.Fatalf("expected frame constrained to 0x9000; got %#x", frame.Address())
	}
}
