package devfs

import (
	"encoding/binary"
	"unsafe"

	"beskaros/kernel"
	"beskaros/kernel/boot"
	"beskaros/kernel/kfmt/early"
)

// fbInfoSize is the wire size of the packed descriptor /dev/fb returns on a
// full-size read: PhysAddr(8) + Pitch(4) + Width(4) + Height(4) + Bpp(1) +
// pad(3) + Size(8).
const fbInfoSize = 32

// framebufferDevice backs /dev/fb: a read of exactly fbInfoSize bytes
// returns the framebuffer descriptor, and writes copy pixel components
// directly into the linear framebuffer. Open and close only log a message;
// they do not stop the early logger from writing to the same memory while
// the device is open.
type framebufferDevice struct {
	info boot.FramebufferInfo
	size uint64
}

func newFramebufferDevice(info boot.FramebufferInfo) *framebufferDevice {
	return &framebufferDevice{info: info, size: uint64(info.Pitch) * uint64(info.Height)}
}

func (d *framebufferDevice) OnOpen() {
	early.Printf("[devfs] /fb opened\n")
}

func (d *framebufferDevice) OnClose() {
	early.Printf("[devfs] /fb closed\n")
}

// Read returns the packed descriptor when offset is 0 and the buffer is at
// least fbInfoSize bytes; any other request fails with errOutOfBounds,
// since /dev/fb has no byte-addressable "descriptor stream".
func (d *framebufferDevice) Read(buf []byte, offset uint64) (int, *kernel.Error) {
	if offset != 0 || len(buf) < fbInfoSize {
		return 0, errOutOfBounds
	}

	binary.LittleEndian.PutUint64(buf[0:8], d.info.PhysAddr)
	binary.LittleEndian.PutUint32(buf[8:12], d.info.Pitch)
	binary.LittleEndian.PutUint32(buf[12:16], d.info.Width)
	binary.LittleEndian.PutUint32(buf[16:20], d.info.Height)
	buf[20] = d.info.Bpp
	binary.LittleEndian.PutUint64(buf[24:32], d.size)
	return fbInfoSize, nil
}

// Write copies buf's pixel components directly into the linear framebuffer
// starting at offset. Both offset and len(buf) must be 4-byte aligned
// (pixel-component granularity) and the write must fit within the
// framebuffer's byte size.
func (d *framebufferDevice) Write(buf []byte, offset uint64) (int, *kernel.Error) {
	if offset%4 != 0 || len(buf)%4 != 0 {
		return 0, errUnalignedAccess
	}
	if offset+uint64(len(buf)) > d.size {
		return 0, errOutOfBounds
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(d.info.PhysAddr)+uintptr(offset))), len(buf))
	copy(dst, buf)
	return len(buf), nil
}
