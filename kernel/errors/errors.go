// Package errors collects the sentinel error tables shared by the kernel's
// subsystems. Each table is a set of KernelError constants rather than a call
// to errors.New, since several of these errors can be returned before the
// heap allocator is available.
package errors

var (
	ErrInvalidParamValue = KernelError("invalid parameter value")
)

// Memory mapping and physical/virtual allocation errors (kernel/mem/falloc,
// kernel/mem/vmm, kernel/mem/ranges).
var (
	ErrOutOfMemory      = KernelError("out of memory")
	ErrAlreadyMapped    = KernelError("address range already mapped")
	ErrNotMapped        = KernelError("address not mapped")
	ErrMisaligned       = KernelError("address is not aligned to the requested page size")
	ErrNonCanonical     = KernelError("address is not canonical")
	ErrRangeUnsatisfied = KernelError("no free range satisfies the allocation request")
)

// Mapping errors returned by the page-table wrapper when a caller's request
// conflicts with an existing mapping or falls outside the address space.
var (
	ErrMappingConflict = KernelError("mapping conflicts with an existing entry")
	ErrGuardPageHit    = KernelError("access fell on a guard page")
)

// Driver-level errors (kernel/driver, kernel/cpu/apic, kernel/smp).
var (
	ErrDriverNotReady   = KernelError("driver not ready")
	ErrDriverInitFailed = KernelError("driver initialization failed")
	ErrNoSuchDevice     = KernelError("no such device")
)

// Block device errors (reserved for a future disk driver; this kernel has
// no disk persistence today, but the taxonomy still names the vocabulary a
// block device would use).
var (
	ErrBlockDeviceIO       = KernelError("block device I/O error")
	ErrBlockDeviceReadOnly = KernelError("block device is read-only")
)

// File and VFS errors (kernel/vfs, kernel/vfs/devfs).
var (
	ErrFileNotFound      = KernelError("file not found")
	ErrFileExists        = KernelError("file already exists")
	ErrNotADirectory     = KernelError("not a directory")
	ErrIsADirectory      = KernelError("is a directory")
	ErrInvalidHandle     = KernelError("invalid file handle")
	ErrTooManyHandles    = KernelError("too many open handles")
	ErrNoSuchMount       = KernelError("no filesystem mounted at path")
	ErrUnsupportedOp     = KernelError("operation not supported by this filesystem")
)

// KernelError is a trivial implementation of a kernel error message that doens't
// require a memory allocation. It is used as an alternative to errors.New.
type KernelError string

// Error implements the error interface.
func (err KernelError) Error() string {
	return string(err)
}
