package devfs

import (
	"testing"

	"beskaros/kernel"
)

type stubDevice struct {
	NopOpenCloser
	readN, writeN int
	readErr       *kernel.Error
}

func (d *stubDevice) Read(buf []byte, _ uint64) (int, *kernel.Error) {
	return d.readN, d.readErr
}
func (d *stubDevice) Write(buf []byte, _ uint64) (int, *kernel.Error) { return d.writeN, nil }

func TestDeviceFSRoutesByPath(t *testing.T) {
	fs := &DeviceFS{}
	a := &stubDevice{readN: 3}
	b := &stubDevice{readN: 7}
	fs.addDevice("/a", a)
	fs.addDevice("/b", b)

	n, err := fs.Read("/b", make([]byte, 8), 0)
	if err != nil || n != 7 {
		t.Fatalf("expected to route to device b; got n=%d err=%v", n, err)
	}
}

func TestDeviceFSUnknownPath(t *testing.T) {
	fs := &DeviceFS{}
	if _, err := fs.Read("/nope", nil, 0); err == nil {
		t.Fatal("expected an error for an unbound path")
	}
}

func TestKeyboardDeviceQueueDrainsAndSignalsNoEvent(t *testing.T) {
	d := &keyboardDevice{}
	d.push(5, KeyPressed)
	d.push(6, KeyReleased)

	buf := make([]byte, 24) // 3 blocks: two events + one empty
	n, err := d.Read(buf, 0)
	if err != nil || n != 24 {
		t.Fatalf("expected to fill 3 blocks; got n=%d err=%v", n, err)
	}

	first := packKeyEvent(5, KeyPressed)
	second := packKeyEvent(6, KeyReleased)
	if got := littleEndianUint64(buf[0:8]); got != first {
		t.Errorf("expected first block to be the pressed event; got %#x", got)
	}
	if got := littleEndianUint64(buf[8:16]); got != second {
		t.Errorf("expected second block to be the released event; got %#x", got)
	}
	if got := littleEndianUint64(buf[16:24]); got != noEvent {
		t.Errorf("expected trailing block to be the no-event sentinel; got %#x", got)
	}
}

func TestKeyboardDeviceOverrunDropsNewest(t *testing.T) {
	d := &keyboardDevice{}
	for i := 0; i < len(d.ring)+5; i++ {
		d.push(uint8(i), KeyPressed)
	}
	if d.count != len(d.ring) {
		t.Fatalf("expected the ring to cap at its capacity; got count=%d", d.count)
	}
}

func TestRandDeviceFillsBufferFromSeam(t *testing.T) {
	defer func() { read64Fn = nil }()

	read64Fn = func() uint64 { return 0x0102030405060708 }
	d := newRandDevice(false)

	buf := make([]byte, 10)
	n, err := d.Read(buf, 0)
	if err != nil || n != 10 {
		t.Fatalf("expected to fill 10 bytes; got n=%d err=%v", n, err)
	}
}

func littleEndianUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
