package cpu

import "testing"

func TestIsIntel(t *testing.T) {
	defer func() { cpuidFn = ID }()

	specs := []struct {
		eax, ebx, ecx, edx uint32
		exp                bool
	}{
		// CPUID output from an Intel CPU
		{0xd, 0x756e6547, 0x6c65746e, 0x49656e69, true},
		// CPUID output from an AMD Athlon CPU
		{0x1, 0x68747541, 0x444d4163, 0x69746e65, false},
	}

	for specIndex, spec := range specs {
		cpuidFn = func(_, _ uint32) (uint32, uint32, uint32, uint32) {
			return spec.eax, spec.ebx, spec.ecx, spec.edx
		}

		if got := IsIntel(); got != spec.exp {
			t.Errorf("[spec %d] expected IsIntel to return %t; got %t", specIndex, spec.exp, got)
		}
	}
}

func TestHasAPICAndX2APIC(t *testing.T) {
	defer func() { cpuidFn = ID }()

	specs := []struct {
		edx, ecx  uint32
		expAPIC   bool
		expX2APIC bool
	}{
		{1 << 9, 1 << 21, true, true},
		{0, 0, false, false},
	}

	for specIndex, spec := range specs {
		cpuidFn = func(_, _ uint32) (uint32, uint32, uint32, uint32) {
			return 0, 0, spec.ecx, spec.edx
		}

		if got := HasAPIC(); got != spec.expAPIC {
			t.Errorf("[spec %d] expected HasAPIC %t; got %t", specIndex, spec.expAPIC, got)
		}
		if got := HasX2APIC(); got != spec.expX2APIC {
			t.Errorf("[spec %d] expected HasX2APIC %t; got %t", specIndex, spec.expX2APIC, got)
		}
	}
}

func TestHasRDRAND(t *testing.T) {
	defer func() { cpuidFn = ID }()

	cpuidFn = func(_, _ uint32) (uint32, uint32, uint32, uint32) { return 0, 0, 1 << 30, 0 }
	if !HasRDRAND() {
		t.Error("expected HasRDRAND to report true")
	}

	cpuidFn = func(_, _ uint32) (uint32, uint32, uint32, uint32) { return 0, 0, 0, 0 }
	if HasRDRAND() {
		t.Error("expected HasRDRAND to report false")
	}
}

func TestReadRandom64ReturnsSeamValue(t *testing.T) {
	defer func() { rdrand64Fn = readRDRAND64 }()

	calls := 0
	rdrand64Fn = func() uint64 {
		calls++
		return 0xdeadbeef
	}

	if got := ReadRandom64(); got != 0xdeadbeef {
		t.Fatalf("expected 0xdeadbeef; got %#x", got)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call through the seam; got %d", calls)
	}
}
