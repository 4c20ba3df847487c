// Package kmain wires together the subsystem Init calls that bring the
// kernel up from the UEFI hand-off to the scheduler loop.
package kmain

import (
	"unsafe"

	"beskaros/kernel"
	"beskaros/kernel/acpi"
	"beskaros/kernel/boot"
	"beskaros/kernel/config"
	"beskaros/kernel/cpu/apic"
	_ "beskaros/kernel/goruntime"
	"beskaros/kernel/hal"
	"beskaros/kernel/kfmt/early"
	"beskaros/kernel/mem"
	"beskaros/kernel/mem/falloc"
	"beskaros/kernel/mem/heap"
	"beskaros/kernel/mem/vmm"
	"beskaros/kernel/percpu"
	"beskaros/kernel/sched"
	"beskaros/kernel/smp"
	"beskaros/kernel/syscall"
	ktime "beskaros/kernel/time"
	"beskaros/kernel/vfs"
	"beskaros/kernel/vfs/devfs"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// bootInfoFn is mocked by tests; it normally reads the BootInfo
	// structure the bootloader published at config.BootInfoBase.
	bootInfoFn = readBootInfo
)

// readBootInfo reinterprets the fixed virtual address the bootloader
// promises to publish a populated boot.Info at. This is the one place in
// the kernel that trusts the UEFI hand-off's memory layout directly; every
// other package only consumes the already-decoded *boot.Info.
func readBootInfo() *boot.Info {
	return (*boot.Info)(unsafe.Pointer(config.BootInfoBase))
}

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. It is invoked by the rt0 assembly code after setting
// up the GDT and a minimal g0 struct that allows Go code to run on the 4K
// stack the assembly code allocated.
//
// Kmain is not expected to return. If it does, the rt0 code halts the CPU.
//
//go:noinline
func Kmain() {
	info := bootInfoFn()

	hal.InitTerminal(&info.Framebuffer)
	hal.ActiveTerminal.Clear()
	early.Printf("BeskarOS kernel starting\n")

	var err *kernel.Error
	if err = falloc.Init(info); err != nil {
		kernel.Panic(err)
	}
	vmm.SetFrameAllocator(falloc.Frame4K)
	if err = vmm.Init(); err != nil {
		kernel.Panic(err)
	}
	if err = heap.Init(); err != nil {
		kernel.Panic(err)
	}

	acpi.Init(info.RSDPPhysAddr)
	if acpi.Info.LocalAPICAddr != 0 {
		lapicVirt, err := vmm.MapMMIO(acpi.Info.LocalAPICAddr, mem.PageSize)
		if err != nil {
			kernel.Panic(err)
		}
		apic.SetBase(lapicVirt)
		if err := apic.Init(); err != nil {
			kernel.Panic(err)
		}
	}

	ktime.Init()
	percpu.InitBSP()
	sched.Init()
	syscall.Init()

	vfs.Mount("/dev", devfs.New(info))

	smp.BringUpAPs(info.CPUCount)

	sched.Enter()

	// Use kernel.Panic instead of panic to prevent the compiler from
	// treating kernel.Panic as dead-code and eliminating it.
	kernel.Panic(errKmainReturned)
}
