package irq

import "beskaros/kernel"

// ExceptionNum identifies a CPU exception, hardware IRQ or software vector
// that can be routed through HandleException/HandleExceptionWithCode.
type ExceptionNum uint8

const (
	// DivideByZero occurs when dividing by 0 with DIV/IDIV.
	DivideByZero = ExceptionNum(0)

	// NMI is a non-maskable hardware interrupt signaling unrecoverable
	// hardware problems or a watchdog timer.
	NMI = ExceptionNum(2)

	// Overflow occurs when an arithmetic overflow is detected.
	Overflow = ExceptionNum(4)

	// BoundRangeExceeded occurs when BOUND is invoked with an out-of-range index.
	BoundRangeExceeded = ExceptionNum(5)

	// InvalidOpcode occurs when the CPU decodes an invalid or undefined instruction.
	InvalidOpcode = ExceptionNum(6)

	// DeviceNotAvailable occurs when an FPU/MMX/SSE instruction is executed
	// while CR0.TS is set; the lazy FPU restore path hooks this vector.
	DeviceNotAvailable = ExceptionNum(7)

	// DoubleFault occurs when an exception is unhandled, or occurs while
	// already servicing another exception.
	DoubleFault = ExceptionNum(8)

	// InvalidTSS occurs when the TSS references an invalid segment selector.
	InvalidTSS = ExceptionNum(10)

	// SegmentNotPresent occurs when a present gate references a
	// not-present segment.
	SegmentNotPresent = ExceptionNum(11)

	// StackSegmentFault occurs on non-canonical stack access or failed
	// stack segment limit checks.
	StackSegmentFault = ExceptionNum(12)

	// GPFException is raised on a general protection fault.
	GPFException = ExceptionNum(13)

	// PageFaultException is raised when a page-table walk fails a
	// presence or protection check.
	PageFaultException = ExceptionNum(14)

	// FloatingPointException occurs on an unmasked legacy FPU exception.
	FloatingPointException = ExceptionNum(16)

	// AlignmentCheck occurs on an unaligned access with alignment
	// checking enabled.
	AlignmentCheck = ExceptionNum(17)

	// MachineCheck occurs when the CPU detects an internal hardware error.
	MachineCheck = ExceptionNum(18)

	// SIMDFloatingPointException occurs on an unmasked SSE exception when
	// CR4.OSXMMEXCPT is set.
	SIMDFloatingPointException = ExceptionNum(19)
)

// IRQ and local-APIC-owned software vectors live above the 32 reserved
// CPU exception slots, matching the LAPIC/IOAPIC programming in
// kernel/cpu/apic.
const (
	// TimerVector is the LAPIC timer's interrupt vector, used to drive
	// scheduler preemption.
	TimerVector = ExceptionNum(0x20)

	// KeyboardVector is the IOAPIC-routed PS/2 keyboard IRQ.
	KeyboardVector = ExceptionNum(0x21)

	// RescheduleVector is the inter-processor interrupt one core sends to
	// another to force it to reconsider its run queue.
	RescheduleVector = ExceptionNum(0xfc)

	// TLBShootdownVector asks a remote core to invalidate a TLB entry
	// after a mapping change to a shared address space.
	TLBShootdownVector = ExceptionNum(0xfd)

	// HaltVector asks every other core to halt, used during a panic or
	// an orderly shutdown.
	HaltVector = ExceptionNum(0xfe)

	// SpuriousVector is the LAPIC's configured spurious-interrupt vector.
	SpuriousVector = ExceptionNum(0xff)
)

// ExceptionHandler handles an exception that does not push an error code.
// Modifications to frame/regs are propagated back to the faulting context
// if the handler returns.
type ExceptionHandler func(frame *Frame, regs *Regs)

// ExceptionHandlerWithCode handles an exception that pushes an error code.
type ExceptionHandlerWithCode func(errorCode uint64, frame *Frame, regs *Regs)

const vectorCount = 256

var (
	handlers         [vectorCount]ExceptionHandler
	handlersWithCode [vectorCount]ExceptionHandlerWithCode

	// panicFn is mocked by tests to avoid halting the CPU.
	panicFn = func(e *kernel.Error) { kernel.Panic(e) }

	errUnhandledException = &kernel.Error{Module: "irq", Message: "unhandled exception"}
)

// HandleException registers handler as the receiver for exceptionNum. It
// overwrites any handler previously registered for the same vector.
func HandleException(exceptionNum ExceptionNum, handler ExceptionHandler) {
	handlers[exceptionNum] = handler
}

// HandleExceptionWithCode registers handler as the receiver for
// exceptionNum, for vectors that push an error code (double fault,
// GPF, page fault, and a handful of others).
func HandleExceptionWithCode(exceptionNum ExceptionNum, handler ExceptionHandlerWithCode) {
	handlersWithCode[exceptionNum] = handler
}

// Dispatch routes a trapped vector to its registered handler. It is called
// by the common trap trampoline installed in the IDT by kernel/cpu; vectors
// with no registered handler panic with errUnhandledException.
func Dispatch(vector ExceptionNum, errorCode uint64, hasErrorCode bool, frame *Frame, regs *Regs) {
	if hasErrorCode {
		if h := handlersWithCode[vector]; h != nil {
			h(errorCode, frame, regs)
			return
		}
	} else if h := handlers[vector]; h != nil {
		h(frame, regs)
		return
	}

	panicFn(errUnhandledException)
}
