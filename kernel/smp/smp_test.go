package smp

import (
	"testing"

	"beskaros/kernel/acpi"
)

func TestBringUpAPsSkipsSingleCore(t *testing.T) {
	defer func() { acpi.Info.Cores = nil }()

	acpi.Info.Cores = nil
	calls := 0
	old := bringUpOneFn
	defer func() { bringUpOneFn = old }()
	bringUpOneFn = func(coreID uint32, apicID uint8) { calls++ }

	BringUpAPs(1)

	if calls != 0 {
		t.Fatalf("expected no AP bring-up calls for a single-core system; got %d", calls)
	}
}

func TestBringUpAPsSkipsDisabledCores(t *testing.T) {
	defer func() { acpi.Info.Cores = nil }()

	acpi.Info.Cores = []acpi.CoreInfo{
		{APICID: 0, Enabled: true},
		{APICID: 1, Enabled: false},
		{APICID: 2, Enabled: true},
	}

	oldID := apicIDFn
	defer func() { apicIDFn = oldID }()
	apicIDFn = func() uint32 { return 0 }

	var seen []uint8
	old := bringUpOneFn
	defer func() { bringUpOneFn = old }()
	bringUpOneFn = func(coreID uint32, apicID uint8) { seen = append(seen, apicID) }

	oldFence := readFenceCountFn
	defer func() { readFenceCountFn = oldFence }()
	readFenceCountFn = func() uint32 { return uint32(len(seen)) }

	BringUpAPs(3)

	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("expected only the enabled non-BSP core (APIC id 2) brought up; got %v", seen)
	}
}
