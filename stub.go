package main

import "beskaros/kernel/kmain"

// main is the only Go symbol visible (exported) from the rt0 initialization
// code. It is a trampoline for the actual kernel entrypoint (kmain.Kmain)
// and is intentionally defined to prevent the Go compiler from optimizing
// away the real kernel code, since it is not aware of the rt0 assembly that
// calls into this package.
//
// main is invoked by the rt0 assembly code after setting up the GDT and a
// minimal g0 struct that allows Go code to run on the 4K stack the assembly
// code allocated.
//
// main is not expected to return. If it does, the rt0 code halts the CPU.
func main() {
	kmain.Kmain()
}
