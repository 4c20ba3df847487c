package console

// DecodeChar inspects the 8x8 glyph rendered at the given character cell of
// a raw framebuffer byte slice and returns the ASCII byte it was rendered
// from (best-effort; ambiguous bitmaps return '?'). It exists so tests that
// attach a Framebuffer to hal.ActiveTerminal and exercise early.Printf can
// assert on the text that reached the screen without a parallel text-mode
// buffer to read back from.
func DecodeChar(fb []byte, pitch uint32, bpp uint8, cellX, cellY uint32) byte {
	bytesPerPixel := uint32(bpp+7) >> 3

	var bits [glyphSize]byte
	for row := 0; row < glyphSize; row++ {
		var line byte
		for col := 0; col < glyphSize; col++ {
			off := (cellY*glyphSize+uint32(row))*pitch + (cellX*glyphSize+uint32(col))*bytesPerPixel
			if off+2 >= uint32(len(fb)) {
				continue
			}
			// The console always clears to black, so any painted
			// channel means this pixel used the foreground color.
			if fb[off] != 0 || fb[off+1] != 0 || fb[off+2] != 0 {
				line |= 1 << uint(7-col)
			}
		}
		bits[row] = line
	}

	for ch, glyph := range font8x8 {
		if glyph == bits {
			return ch
		}
	}
	return '?'
}

// DumpText reconstructs the text grid rendered onto fb as a newline
// separated string, trimming trailing spaces from each line.
func DumpText(fb []byte, pitch uint32, bpp uint8, widthChars, heightChars uint32) string {
	out := make([]byte, 0, int(widthChars+1)*int(heightChars))

	for y := uint32(0); y < heightChars; y++ {
		if y > 0 {
			out = append(out, '\n')
		}

		lineStart := len(out)
		lineEnd := lineStart
		for x := uint32(0); x < widthChars; x++ {
			ch := DecodeChar(fb, pitch, bpp, x, y)
			out = append(out, ch)
			if ch != ' ' {
				lineEnd = len(out)
			}
		}
		out = out[:lineEnd]
	}

	for len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}

	return string(out)
}
