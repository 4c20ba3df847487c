package devfs

import (
	"encoding/binary"

	"beskaros/kernel"
	"beskaros/kernel/cpu"
)

// randDevice backs /dev/rand (CSPRNG-ish bytes drawn straight from RDRAND)
// and /dev/randseed (the same generator, kept as a distinct path so
// userspace can request fresh hardware entropy for reseeding a software
// PRNG, which this kernel does not implement, so both devices read
// directly from the hardware source).
type randDevice struct {
	NopOpenCloser
	seed bool
}

func newRandDevice(seed bool) *randDevice {
	return &randDevice{seed: seed}
}

// read64Fn is mocked by tests.
var read64Fn = cpu.ReadRandom64

func (d *randDevice) Read(buf []byte, _ uint64) (int, *kernel.Error) {
	n := 0
	for n < len(buf) {
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], read64Fn())
		n += copy(buf[n:], word[:])
	}
	return n, nil
}

// Write is rejected: both rand devices are read-only.
func (d *randDevice) Write(_ []byte, _ uint64) (int, *kernel.Error) {
	return 0, errUnsupportedOperation
}
