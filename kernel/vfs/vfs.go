// Package vfs implements the kernel's virtual filesystem: a mount table
// keyed by path prefix and a per-process handle table.
package vfs

import (
	"sort"
	"strings"
	"sync"

	"beskaros/kernel"
)

// FileSystem is anything mountable under a path prefix. Every method takes
// the path suffix remaining after the mount prefix has been stripped
// (leading '/' preserved).
type FileSystem interface {
	Open(path string) *kernel.Error
	Close(path string) *kernel.Error
	Read(path string, buf []byte, offset uint64) (int, *kernel.Error)
	Write(path string, buf []byte, offset uint64) (int, *kernel.Error)
}

var (
	errNoMount       = &kernel.Error{Module: "vfs", Message: "no filesystem mounted for path"}
	errInvalidHandle = &kernel.Error{Module: "vfs", Message: "invalid handle"}
)

type mount struct {
	prefix string
	fs     FileSystem
}

var (
	mountLock sync.Mutex
	mounts    []mount
)

// Mount inserts fs under the path prefix, ready for Open/Read/Write calls
// against any path beginning with it. Mounting the same prefix twice
// replaces the previous filesystem.
func Mount(prefix string, fs FileSystem) {
	mountLock.Lock()
	defer mountLock.Unlock()

	for i, m := range mounts {
		if m.prefix == prefix {
			mounts[i].fs = fs
			return
		}
	}

	mounts = append(mounts, mount{prefix: prefix, fs: fs})
	// Longest-prefix-match wins, so keep the table sorted longest-first.
	sort.Slice(mounts, func(i, j int) bool { return len(mounts[i].prefix) > len(mounts[j].prefix) })
}

// resolve finds the longest-matching mount for path and returns the
// filesystem plus the suffix (with leading '/' preserved) to pass it.
func resolve(path string) (FileSystem, string, *kernel.Error) {
	mountLock.Lock()
	defer mountLock.Unlock()

	for _, m := range mounts {
		if path == m.prefix || strings.HasPrefix(path, m.prefix+"/") {
			suffix := path[len(m.prefix):]
			if suffix == "" {
				suffix = "/"
			}
			return m.fs, suffix, nil
		}
	}
	return nil, "", errNoMount
}

// Handle identifies one process's open file, routing reads/writes back to
// the mount it was opened against without re-resolving the path each time.
type Handle uint64

type openFile struct {
	fs   FileSystem
	path string
}

// HandleTable is a per-process table of open handles.
type HandleTable struct {
	lock  sync.Mutex
	next  Handle
	files map[Handle]openFile
}

// NewHandleTable returns an empty handle table, as installed on every new
// process's creation.
func NewHandleTable() *HandleTable {
	return &HandleTable{files: make(map[Handle]openFile)}
}

// Open resolves path through the mount table, calls the filesystem's Open
// hook and allocates a new handle bound to it.
func (t *HandleTable) Open(path string) (Handle, *kernel.Error) {
	fs, suffix, err := resolve(path)
	if err != nil {
		return 0, err
	}
	if err := fs.Open(suffix); err != nil {
		return 0, err
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	t.next++
	h := t.next
	t.files[h] = openFile{fs: fs, path: suffix}
	return h, nil
}

// Close calls the owning filesystem's Close hook and releases the handle.
func (t *HandleTable) Close(h Handle) *kernel.Error {
	t.lock.Lock()
	f, ok := t.files[h]
	if ok {
		delete(t.files, h)
	}
	t.lock.Unlock()

	if !ok {
		return errInvalidHandle
	}
	return f.fs.Close(f.path)
}

// Read forwards to the owning filesystem's Read at the given offset; the
// VFS itself keeps no cursor — offsets are always explicit.
func (t *HandleTable) Read(h Handle, buf []byte, offset uint64) (int, *kernel.Error) {
	t.lock.Lock()
	f, ok := t.files[h]
	t.lock.Unlock()
	if !ok {
		return 0, errInvalidHandle
	}
	return f.fs.Read(f.path, buf, offset)
}

// Write forwards to the owning filesystem's Write at the given offset.
func (t *HandleTable) Write(h Handle, buf []byte, offset uint64) (int, *kernel.Error) {
	t.lock.Lock()
	f, ok := t.files[h]
	t.lock.Unlock()
	if !ok {
		return 0, errInvalidHandle
	}
	return f.fs.Write(f.path, buf, offset)
}
