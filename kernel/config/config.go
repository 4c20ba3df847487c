// Package config collects the build-time constants that tie together the
// memory, SMP and scheduler subsystems. There is no runtime configuration
// file: a freestanding kernel has no filesystem until the VFS is mounted, so
// everything that would otherwise be a config knob is a compile-time
// constant, following the kernel/mem/constants_amd64.go convention gopher-os
// uses for the same reason.
package config

import "beskaros/kernel/mem"

const (
	// BootInfoBase is the fixed virtual address at which the bootloader
	// publishes the BootInfo structure.
	BootInfoBase uintptr = 0xFFFF_FFFF_8000_0000

	// APTrampolinePaddr is the fixed low physical address that holds the
	// 16-bit real-mode AP trampoline. It must be reserved by the frame
	// allocator before any other allocation.
	APTrampolinePaddr uintptr = 0x8000

	// MaxMemoryRegions bounds the size of the early memory-range set the
	// frame allocator builds from the bootloader's memory map.
	MaxMemoryRegions = 1024

	// KernelHeapPages2M is the number of 2 MiB pages seeded into the
	// kernel heap at boot.
	KernelHeapPages2M = 4

	// SlabMaxSize is the largest request size serviced by the slab side
	// of the hybrid kernel heap; anything larger goes to the buddy side.
	SlabMaxSize = mem.Size(512)

	// KernelStackPages is the number of 4 KiB pages in a thread's kernel
	// stack, not counting its guard page.
	KernelStackPages = 4

	// ISTStackPages is the size, in 4 KiB pages, of each IST-backed
	// critical stack (double fault, page fault), not counting its guard
	// page.
	ISTStackPages = 2

	// KeyboardQueueSize is the capacity of the ring buffer that buffers
	// keyboard events between the IRQ handler and /dev/keyboard reads.
	KeyboardQueueSize = 25

	// TimerQuantumMicros is the LAPIC timer's preemption quantum.
	TimerQuantumMicros = 10_000

	// Segment selectors installed in the GDT the rt0 trampoline builds
	// before calling Kmain. Their relative order is fixed by the SYSCALL/
	// SYSRET calling convention: STAR packs (kernel_cs, kernel_ds) in bits
	// 32-47 and (user_cs_base, user_ds_base) in bits 48-63, with SYSRET
	// deriving user_cs = user_cs_base+16 and user_ss = user_cs_base+8
	// (Intel SDM Vol. 2 "SYSRET").
	KernelCodeSelector uint16 = 0x08
	KernelDataSelector uint16 = 0x10
	UserCodeSelector   uint16 = 0x23 // RPL 3
	UserDataSelector   uint16 = 0x1b // RPL 3
)
