// Package devfs implements the device pass-through filesystem mounted at
// /dev: a small set of {path, KernelDevice} bindings backing /dev/keyboard,
// /dev/rand, /dev/randseed, /dev/fb and /dev/stdout.
package devfs

import (
	"beskaros/kernel"
	"beskaros/kernel/boot"
)

// KernelDevice is the interface every /dev binding implements. OnOpen and
// OnClose default to no-ops via embedding NopOpenCloser where a device has
// no session state to track.
type KernelDevice interface {
	Read(buf []byte, offset uint64) (int, *kernel.Error)
	Write(buf []byte, offset uint64) (int, *kernel.Error)
	OnOpen()
	OnClose()
}

// NopOpenCloser gives a KernelDevice a no-op OnOpen/OnClose pair.
type NopOpenCloser struct{}

func (NopOpenCloser) OnOpen()  {}
func (NopOpenCloser) OnClose() {}

var (
	errNotFound             = &kernel.Error{Module: "devfs", Message: "no device bound to path"}
	errUnsupportedOperation = &kernel.Error{Module: "devfs", Message: "operation not supported by this device"}
	errUnalignedAccess      = &kernel.Error{Module: "devfs", Message: "access must be aligned to the device's block size"}
	errOutOfBounds          = &kernel.Error{Module: "devfs", Message: "access falls outside the device's addressable range"}
)

type binding struct {
	path   string
	device KernelDevice
}

// DeviceFS is a pass-through vfs.FileSystem backing a fixed set of kernel
// devices. It implements beskaros/kernel/vfs.FileSystem.
type DeviceFS struct {
	devices []binding
}

// New builds the standard device set, wiring the keyboard IRQ handler,
// the framebuffer device against the bootloader's reported geometry, and
// RDRAND-backed /rand and /randseed devices.
func New(info *boot.Info) *DeviceFS {
	fs := &DeviceFS{}
	fs.addDevice("/keyboard", newKeyboardDevice())
	fs.addDevice("/rand", newRandDevice(false))
	fs.addDevice("/randseed", newRandDevice(true))
	fs.addDevice("/fb", newFramebufferDevice(info.Framebuffer))
	fs.addDevice("/stdout", newStdoutDevice())
	return fs
}

func (fs *DeviceFS) addDevice(path string, device KernelDevice) {
	fs.devices = append(fs.devices, binding{path: path, device: device})
}

func (fs *DeviceFS) find(path string) KernelDevice {
	for _, b := range fs.devices {
		if b.path == path {
			return b.device
		}
	}
	return nil
}

// Open calls the bound device's OnOpen hook.
func (fs *DeviceFS) Open(path string) *kernel.Error {
	d := fs.find(path)
	if d == nil {
		return errNotFound
	}
	d.OnOpen()
	return nil
}

// Close calls the bound device's OnClose hook.
func (fs *DeviceFS) Close(path string) *kernel.Error {
	d := fs.find(path)
	if d == nil {
		return errNotFound
	}
	d.OnClose()
	return nil
}

// Read forwards to the bound device's Read.
func (fs *DeviceFS) Read(path string, buf []byte, offset uint64) (int, *kernel.Error) {
	d := fs.find(path)
	if d == nil {
		return 0, errNotFound
	}
	return d.Read(buf, offset)
}

// Write forwards to the bound device's Write.
func (fs *DeviceFS) Write(path string, buf []byte, offset uint64) (int, *kernel.Error) {
	d := fs.find(path)
	if d == nil {
		return 0, errNotFound
	}
	return d.Write(buf, offset)
}
