package cpu

// ReadMSR returns the 64-bit value of the model-specific register msr.
func ReadMSR(msr uint32) uint64

// WriteMSR loads value into the model-specific register msr.
func WriteMSR(msr uint32, value uint64)

// WriteGSBase loads value into the current core's GS segment base via
// WRGSBASE, requiring CR4.FSGSBASE to be set. Used by kernel/percpu to
// publish the per-core locals pointer.
func WriteGSBase(value uint64)

// ReadGSBase returns the current core's GS segment base via RDGSBASE.
func ReadGSBase() uint64
