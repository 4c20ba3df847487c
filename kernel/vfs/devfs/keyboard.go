package devfs

import (
	"encoding/binary"
	"sync"

	"beskaros/kernel"
	"beskaros/kernel/config"
	"beskaros/kernel/cpu/apic"
	"beskaros/kernel/irq"
	"beskaros/kernel/kfmt/early"
)

// KeyState distinguishes a key-down from a key-up event.
type KeyState uint8

const (
	KeyPressed KeyState = iota
	KeyReleased
)

// noEvent is the packed sentinel meaning "no event pending": all bits set.
const noEvent uint64 = ^uint64(0)

// packKeyEvent packs a (code, state) pair the way /dev/keyboard blocks are
// read: low byte is the key code, the next byte is the key state.
func packKeyEvent(code uint8, state KeyState) uint64 {
	return uint64(code) | uint64(state)<<8
}

// keyboardDevice buffers scancode-translated key events in a fixed-size
// ring the PS/2 IRQ handler fills and /dev/keyboard reads drain; overruns
// drop the newest event and log a debug message.
type keyboardDevice struct {
	NopOpenCloser

	lock  sync.Mutex
	ring  [config.KeyboardQueueSize]uint64
	head  int
	count int
}

func newKeyboardDevice() *keyboardDevice {
	d := &keyboardDevice{}
	irq.HandleException(irq.KeyboardVector, d.onIRQ)
	return d
}

// onIRQ is installed as the PS/2 keyboard IRQ handler. Real scancode
// translation lives in a PS/2 controller driver this kernel does not yet
// implement; the handler is wired so the device's queue semantics (and
// overrun behavior) are exercised end-to-end once one exists.
func (d *keyboardDevice) onIRQ(_ *irq.Frame, _ *irq.Regs) {
	apic.EOI()
}

// push enqueues a translated key event, used by the (future) scancode
// translator and directly by tests.
func (d *keyboardDevice) push(code uint8, state KeyState) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.count == len(d.ring) {
		early.Printf("[devfs] keyboard queue full; dropping newest event\n")
		return
	}

	d.ring[(d.head+d.count)%len(d.ring)] = packKeyEvent(code, state)
	d.count++
}

// Read fills buf with 8-byte native-endian packed key events, one per
// 8-byte block, writing the "no event" sentinel for any trailing blocks
// once the queue drains.
func (d *keyboardDevice) Read(buf []byte, _ uint64) (int, *kernel.Error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	n := 0
	for off := 0; off+8 <= len(buf); off += 8 {
		var packed uint64
		if d.count > 0 {
			packed = d.ring[d.head]
			d.head = (d.head + 1) % len(d.ring)
			d.count--
		} else {
			packed = noEvent
		}
		binary.LittleEndian.PutUint64(buf[off:off+8], packed)
		n += 8
	}
	return n, nil
}

// Write is rejected: /dev/keyboard is read-only.
func (d *keyboardDevice) Write(_ []byte, _ uint64) (int, *kernel.Error) {
	return 0, errUnsupportedOperation
}
