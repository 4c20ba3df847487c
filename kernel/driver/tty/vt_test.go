package tty

import (
	"testing"
	"unsafe"

	"beskaros/kernel/driver/video/console"
)

// newTestConsole backs a Framebuffer with a host-allocated byte slice so
// tests never touch real physical memory; 8 pixels/char * 4 bytes/pixel.
func newTestConsole(widthChars, heightChars uint16) (*console.Framebuffer, []byte) {
	const glyphSize = 8
	pitch := uint32(widthChars) * glyphSize * 4
	fb := make([]byte, int(pitch)*int(heightChars)*glyphSize)

	var cons console.Framebuffer
	cons.Init(uint32(widthChars)*glyphSize, uint32(heightChars)*glyphSize, 32, pitch, uintptr(unsafe.Pointer(&fb[0])))
	return &cons, fb
}

func TestVtPosition(t *testing.T) {
	specs := []struct {
		inX, inY   uint16
		expX, expY uint16
	}{
		{20, 20, 20, 20},
		{100, 20, 79, 20},
		{10, 200, 10, 24},
		{100, 100, 79, 24},
	}

	cons, _ := newTestConsole(80, 25)

	var vt Vt
	vt.AttachTo(cons)

	w, h := vt.Dimensions()
	if w != 80 || h != 25 {
		t.Fatalf("Dimensions wrong: got %v x %v", w, h)
	}

	for specIndex, spec := range specs {
		vt.SetPosition(spec.inX, spec.inY)
		if x, y := vt.Position(); x != spec.expX || y != spec.expY {
			t.Errorf("[spec %d] expected setting position to (%d, %d) to update the position to (%d, %d); got (%d, %d)", specIndex, spec.inX, spec.inY, spec.expX, spec.expY, x, y)
		}
	}
}

func TestWriteAdvancesCursorAndWraps(t *testing.T) {
	cons, _ := newTestConsole(80, 25)

	var vt Vt
	vt.AttachTo(cons)
	vt.Clear()

	vt.SetPosition(0, 1)
	vt.Write([]byte("12\n\t3\n4\r567\b8"))

	if x, y := vt.Position(); x != 3 || y != 3 {
		t.Fatalf("expected cursor at (3, 3) after writing; got (%d, %d)", x, y)
	}

	vt.SetPosition(79, 24)
	vt.Write([]byte{'!'})
	if x, y := vt.Position(); x != 0 || y != 24 {
		t.Fatalf("expected wrap+scroll to leave cursor at (0, 24); got (%d, %d)", x, y)
	}
}
