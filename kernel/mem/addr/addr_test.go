package addr

import "testing"

func TestNewVirtAddr(t *testing.T) {
	specs := []struct {
		name string
		raw  uint64
		ok   bool
	}{
		{"zero", 0, true},
		{"low canonical", 0x0000_1234_5678, true},
		{"highest low-half canonical", 0x0000_7FFF_FFFF_FFFF, true},
		{"lowest high-half canonical", 0xFFFF_8000_0000_0000, true},
		{"all ones", 0xFFFF_FFFF_FFFF_FFFF, true},
		{"non-canonical just above low half", 0x0000_8000_0000_0000, false},
		{"non-canonical just below high half", 0xFFFF_7FFF_FFFF_FFFF, false},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			got, ok := NewVirtAddr(spec.raw)
			if ok != spec.ok {
				t.Fatalf("expected ok=%v, got %v", spec.ok, ok)
			}
			if ok && got.Uint64() != spec.raw {
				t.Fatalf("expected round-trip %#x, got %#x", spec.raw, got.Uint64())
			}
		})
	}
}

func TestNewPhysAddr(t *testing.T) {
	specs := []struct {
		name string
		raw  uint64
		ok   bool
	}{
		{"zero", 0, true},
		{"max 52-bit", (1 << 52) - 1, true},
		{"bit 52 set", 1 << 52, false},
		{"high bits set", 0xFFF0_0000_0000_0000, false},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			_, ok := NewPhysAddr(spec.raw)
			if ok != spec.ok {
				t.Fatalf("expected ok=%v, got %v", spec.ok, ok)
			}
		})
	}
}

func TestVirtAddrAlign(t *testing.T) {
	v := VirtAddr(0x1000_1234)
	if got := v.AlignDown(0x1000); got.Uint64() != 0x1000_1000 {
		t.Fatalf("AlignDown: got %#x", got.Uint64())
	}
	if got := v.AlignUp(0x1000); got.Uint64() != 0x1000_2000 {
		t.Fatalf("AlignUp: got %#x", got.Uint64())
	}
	if got := VirtAddr(0).AlignUp(0x1000); got.Uint64() != 0 {
		t.Fatalf("AlignUp(0, n) must be 0, got %#x", got.Uint64())
	}
	if !VirtAddr(0x2000).IsAligned(0x1000) {
		t.Fatal("expected 0x2000 to be aligned to 0x1000")
	}
	if VirtAddr(0x2001).IsAligned(0x1000) {
		t.Fatal("expected 0x2001 to not be aligned to 0x1000")
	}
}

func TestVirtAddrIndices(t *testing.T) {
	// A canonical address that exercises all four non-zero index fields:
	// p4=1, p3=2, p2=3, p1=4, offset=0x100.
	raw := uint64(1)<<p4Shift | uint64(2)<<p3Shift | uint64(3)<<p2Shift | uint64(4)<<p1Shift | 0x100
	v, ok := NewVirtAddr(raw)
	if !ok {
		t.Fatalf("expected %#x to be canonical", raw)
	}
	if v.P4Index() != 1 {
		t.Errorf("P4Index: got %d, want 1", v.P4Index())
	}
	if v.P3Index() != 2 {
		t.Errorf("P3Index: got %d, want 2", v.P3Index())
	}
	if v.P2Index() != 3 {
		t.Errorf("P2Index: got %d, want 3", v.P2Index())
	}
	if v.P1Index() != 4 {
		t.Errorf("P1Index: got %d, want 4", v.P1Index())
	}
	if v.PageOffset() != 0x100 {
		t.Errorf("PageOffset: got %#x, want 0x100", v.PageOffset())
	}
}

func TestPhysAddrAlign(t *testing.T) {
	p := PhysAddr(0x2000_0800)
	if got := p.AlignDown(0x1000); got.Uint64() != 0x2000_0000 {
		t.Fatalf("AlignDown: got %#x", got.Uint64())
	}
	if got := p.AlignUp(0x1000); got.Uint64() != 0x2000_1000 {
		t.Fatalf("AlignUp: got %#x", got.Uint64())
	}
}
