// Package boot describes the hand-off contract the UEFI bootloader
// publishes before jumping to the kernel entrypoint. Unlike a multiboot tag
// stream, this is a single fixed-layout structure placed at
// config.BootInfoBase; the bootloader itself is an external collaborator and
// is not implemented in this repository.
package boot

// RegionUsage classifies a physical memory region reported by the
// bootloader's memory map.
type RegionUsage uint32

const (
	// Usable regions are free RAM the frame allocator may hand out.
	Usable RegionUsage = iota

	// Bootloader regions hold bootloader-owned structures (page tables,
	// the boot info block itself) that must not be reused until the
	// kernel has copied anything it needs out of them.
	Bootloader

	// Unknown regions are reserved by firmware for a purpose the
	// bootloader did not resolve to one of the tags above; Tag records
	// the raw firmware-supplied region type for diagnostics.
	Unknown
)

// MemoryRegion describes one entry of the boot info memory map: a physical
// interval [Start, End) tagged with its usage.
type MemoryRegion struct {
	Start uint64
	End   uint64
	Usage RegionUsage
	// Tag carries the firmware's own region-type value when Usage is
	// Unknown; zero otherwise.
	Tag uint32
}

// Len returns the number of bytes the region spans.
func (r MemoryRegion) Len() uint64 { return r.End - r.Start }

// FramebufferInfo describes the linear framebuffer the bootloader has
// already set up in graphics mode.
type FramebufferInfo struct {
	PhysAddr uint64
	Pitch    uint32
	Width    uint32
	Height   uint32
	Bpp      uint8
}

// ElfInfo locates the kernel's own ELF image in physical and virtual memory,
// as loaded by the bootloader.
type ElfInfo struct {
	PhysAddr uint64
	VirtAddr uint64
	Size     uint64
}

// RamdiskInfo locates an optional initial ramdisk image the bootloader
// loaded alongside the kernel.
type RamdiskInfo struct {
	PhysAddr uint64
	Size     uint64
}

// Info is the fixed-layout structure the bootloader publishes at
// config.BootInfoBase. Every field is populated by the bootloader before
// control transfers to the kernel entrypoint; the kernel only ever reads it.
type Info struct {
	// MemoryMap is a sorted, non-overlapping slice of memory regions.
	MemoryMap []MemoryRegion

	Framebuffer FramebufferInfo

	// RecursivePTIndex is the P4 slot index the bootloader installed a
	// self-reference into, per the recursive mapping convention
	// kernel/mem/vmm relies on.
	RecursivePTIndex uint16

	// RSDPPhysAddr is the physical address of the ACPI RSDP, or zero if
	// the bootloader could not locate one.
	RSDPPhysAddr uint64

	Kernel ElfInfo

	// Ramdisk is the zero value if no ramdisk was loaded.
	Ramdisk RamdiskInfo

	// CPUCount is the number of logical CPUs the bootloader discovered
	// via ACPI MADT (or 1, if it could not).
	CPUCount uint32
}

// UsableRegions calls visit for every Usable region in the memory map, in
// ascending address order, stopping early if visit returns false.
func (info *Info) UsableRegions(visit func(MemoryRegion) bool) {
	for _, region := range info.MemoryMap {
		if region.Usage != Usable {
			continue
		}
		if !visit(region) {
			return
		}
	}
}
