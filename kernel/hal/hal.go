package hal

import (
	"beskaros/kernel/boot"
	"beskaros/kernel/driver/tty"
	"beskaros/kernel/driver/video/console"
)

var (
	fbConsole = &console.Framebuffer{}

	// ActiveTerminal points to the currently active terminal.
	ActiveTerminal = &tty.Vt{}
)

// InitTerminal provides a basic terminal backed by the bootloader's linear
// framebuffer to allow the kernel to emit some output till everything else
// is properly set up.
func InitTerminal(fb *boot.FramebufferInfo) {
	fbConsole.Init(fb.Width, fb.Height, fb.Bpp, fb.Pitch, uintptr(fb.PhysAddr))
	ActiveTerminal.AttachTo(fbConsole)
}
