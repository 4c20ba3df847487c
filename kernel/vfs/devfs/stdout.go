package devfs

import (
	"beskaros/kernel"
	"beskaros/kernel/kfmt/early"
)

// stdoutDevice backs /dev/stdout, the target of the Print syscall
// compatibility alias: writes are forwarded straight to the early console,
// reads are rejected.
type stdoutDevice struct {
	NopOpenCloser
}

func newStdoutDevice() *stdoutDevice {
	return &stdoutDevice{}
}

func (d *stdoutDevice) Read(_ []byte, _ uint64) (int, *kernel.Error) {
	return 0, errUnsupportedOperation
}

func (d *stdoutDevice) Write(buf []byte, _ uint64) (int, *kernel.Error) {
	early.Printf("%s", string(buf))
	return len(buf), nil
}
