package pmm

import "beskaros/kernel/mem"

// Size is implemented by the three marker types below, letting Frame be
// generic over the x86_64 page size. A marker type carries no data; it
// only selects which constant Bytes() returns at compile time.
type Size interface {
	Bytes() mem.Size
}

// Size4K selects the base 4 KiB page size.
type Size4K struct{}

// Bytes implements Size.
func (Size4K) Bytes() mem.Size { return mem.PageSize4K }

// Size2M selects a 2 MiB large page.
type Size2M struct{}

// Bytes implements Size.
func (Size2M) Bytes() mem.Size { return mem.PageSize2M }

// Size1G selects a 1 GiB huge page.
type Size1G struct{}

// Bytes implements Size.
func (Size1G) Bytes() mem.Size { return mem.PageSize1G }

func bytesOf[S Size]() mem.Size {
	var s S
	return s.Bytes()
}
