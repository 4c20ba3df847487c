package console

import (
	"reflect"
	"unsafe"
)

const (
	clearColor = Black
	clearChar  = byte(' ')
)

// Framebuffer renders a character grid onto a linear 32bpp pixel
// framebuffer using an 8x8 bitmap font, replacing the VGA/EGA text-mode
// console gopher-os drove directly, now that the kernel only ever boots
// behind a UEFI GOP framebuffer. It keeps the same pattern of wrapping the
// raw framebuffer bytes as a fake slice pointed directly at physical
// memory: InitTerminal runs before the frame allocator and VMM are up, so
// there is no mapping layer to go through yet, the same constraint that
// made the Ega console address 0xB8000 directly.
type Framebuffer struct {
	widthPx  uint32
	heightPx uint32
	pitch    uint32
	bpp      uint8

	widthChars  uint16
	heightChars uint16

	fb []uint8
}

// Init sets up the console to draw onto the framebuffer described by the
// boot-time hand-off: a pixelWidth x pixelHeight region at physAddr, pitch
// bytes per scanline, bpp bits per pixel.
func (cons *Framebuffer) Init(pixelWidth, pixelHeight uint32, bpp uint8, pitch uint32, physAddr uintptr) {
	cons.widthPx = pixelWidth
	cons.heightPx = pixelHeight
	cons.pitch = pitch
	cons.bpp = bpp

	cons.widthChars = uint16(pixelWidth / glyphSize)
	cons.heightChars = uint16(pixelHeight / glyphSize)

	fbLen := int(pitch) * int(pixelHeight)
	cons.fb = *(*[]uint8)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  fbLen,
		Cap:  fbLen,
		Data: physAddr,
	}))
}

// Dimensions returns the console width and height in characters.
func (cons *Framebuffer) Dimensions() (uint16, uint16) {
	return cons.widthChars, cons.heightChars
}

func (cons *Framebuffer) bytesPerPixel() uint32 {
	return uint32(cons.bpp+7) >> 3
}

// putPixel writes a single pixel at the given pixel-space coordinates.
func (cons *Framebuffer) putPixel(x, y uint32, c rgba) {
	bpp := cons.bytesPerPixel()
	off := y*cons.pitch + x*bpp
	if off+bpp > uint32(len(cons.fb)) {
		return
	}

	switch bpp {
	case 4:
		cons.fb[off] = c.b
		cons.fb[off+1] = c.g
		cons.fb[off+2] = c.r
		cons.fb[off+3] = 0
	case 3:
		cons.fb[off] = c.b
		cons.fb[off+1] = c.g
		cons.fb[off+2] = c.r
	default:
		// 8/16bpp indexed or hi-color modes are not produced by the
		// UEFI GOP modes this kernel requests; fall back to treating
		// the pixel as a single intensity byte rather than corrupting
		// unrelated memory.
		cons.fb[off] = c.r
	}
}

// fillRect fills a pixel-space rectangle with a solid color.
func (cons *Framebuffer) fillRect(x, y, w, h uint32, c rgba) {
	for row := uint32(0); row < h; row++ {
		for col := uint32(0); col < w; col++ {
			cons.putPixel(x+col, y+row, c)
		}
	}
}

// Clear clears the specified rectangular region (in character cells).
func (cons *Framebuffer) Clear(x, y, width, height uint16) {
	if x >= cons.widthChars {
		x = cons.widthChars
	}
	if y >= cons.heightChars {
		y = cons.heightChars
	}
	if x+width > cons.widthChars {
		width = cons.widthChars - x
	}
	if y+height > cons.heightChars {
		height = cons.heightChars - y
	}

	cons.fillRect(uint32(x)*glyphSize, uint32(y)*glyphSize, uint32(width)*glyphSize, uint32(height)*glyphSize, colorOf(clearColor))
}

// Scroll shifts the console contents by the given number of text lines.
func (cons *Framebuffer) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines > cons.heightChars {
		return
	}

	rowBytes := cons.pitch * glyphSize * uint32(lines)

	switch dir {
	case Up:
		copy(cons.fb, cons.fb[rowBytes:])
	case Down:
		copy(cons.fb[rowBytes:], cons.fb)
	}
}

// Write draws ch at the given character cell using attr's low nibble as the
// foreground color and high nibble as the background color, matching the
// packed VGA-style attribute byte tty.Vt still builds.
func (cons *Framebuffer) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.widthChars || y >= cons.heightChars {
		return
	}

	fg := colorOf(Attr(attr & 0xF))
	bg := colorOf(Attr((attr >> 4) & 0xF))
	glyph := glyphFor(ch)

	baseX := uint32(x) * glyphSize
	baseY := uint32(y) * glyphSize

	for row := 0; row < glyphSize; row++ {
		line := glyph[row]
		mask := uint8(1 << 7)
		for col := 0; col < glyphSize; col, mask = col+1, mask>>1 {
			if line&mask != 0 {
				cons.putPixel(baseX+uint32(col), baseY+uint32(row), fg)
			} else {
				cons.putPixel(baseX+uint32(col), baseY+uint32(row), bg)
			}
		}
	}
}
