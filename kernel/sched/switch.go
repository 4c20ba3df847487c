package sched

import "beskaros/kernel/cpu"

// switchFn is mocked by tests; production code leaves it pointed at the
// real Switch so callers never have to special-case tests vs. the kernel.
var switchFn = doSwitch

// Switch transfers execution from outgoing to incoming. It must only be
// called with interrupts disabled. The actual register save/restore is
// architecture assembly and is not reproduced in Go here; what is
// reproduced, and what every caller may rely on, is the documented
// contract:
//
//  1. Push RFLAGS, RAX, RCX, RDX, RBX, RBP, RSI, RDI, R8-R15 onto the
//     outgoing thread's kernel stack, in that order.
//  2. Store the resulting stack pointer in outgoing.StackPointer.
//  3. Load incoming.StackPointer into RSP.
//  4. Set CR0.TS so the first FPU/SSE instruction on the new stack traps,
//     driving lazy FPU restore (see nmHandler).
//  5. Reload CR3 from incoming.AddressSpaceRoot, but only if it differs
//     from outgoing.AddressSpaceRoot — an unconditional reload would flush
//     the TLB even when switching between two threads of the same process.
//  6. Pop the register set pushed in step 1 and return; the return path
//     re-enables interrupts.
func Switch(outgoing, incoming *Thread) {
	switchFn(outgoing, incoming)
}

func doSwitch(outgoing, incoming *Thread) {
	if outgoing.AddressSpaceRoot != incoming.AddressSpaceRoot {
		cpu.WriteCR3(uint64(incoming.AddressSpaceRoot))
	}
	cpu.SetTS()
	// The actual stack swap (steps 1-3 and 6 of the doc comment above) is
	// the assembly trampoline invoked by the real trap/yield path; this
	// Go-level function only models the bookkeeping every caller depends
	// on so the scheduling policy above it is fully testable on the host.
}
