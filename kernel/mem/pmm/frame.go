// Package pmm contains code that manages physical memory frame allocations.
package pmm

import "math"

// Frame identifies a physical memory frame of page size S by its frame
// number: Frame(n) covers the byte range [n*size, (n+1)*size).
type Frame[S Size] uint64

// invalidFrameBits marks a frame value as "no frame" regardless of S; it is
// wider than any real frame number a 52-bit physical address space can
// produce.
const invalidFrameBits = math.MaxUint64

// Invalid returns the sentinel frame value used by allocators that fail to
// reserve the requested frame.
func Invalid[S Size]() Frame[S] {
	return Frame[S](invalidFrameBits)
}

// Valid reports whether f is not the Invalid sentinel.
func (f Frame[S]) Valid() bool {
	return uint64(f) != invalidFrameBits
}

// ContainingAddress returns the frame that contains the given physical
// address, rounding down to the frame's alignment.
func ContainingAddress[S Size](paddr uintptr) Frame[S] {
	return Frame[S](uint64(paddr) / uint64(bytesOf[S]()))
}

// FromStartAddress returns the frame starting at paddr. ok is false if
// paddr is not aligned to the frame size.
func FromStartAddress[S Size](paddr uintptr) (frame Frame[S], ok bool) {
	size := uint64(bytesOf[S]())
	if uint64(paddr)%size != 0 {
		return Frame[S](0), false
	}
	return Frame[S](uint64(paddr) / size), true
}

// Address returns the physical address at the start of this frame.
func (f Frame[S]) Address() uintptr {
	return uintptr(uint64(f) * uint64(bytesOf[S]()))
}

// Size returns the byte size of this frame (4 KiB, 2 MiB or 1 GiB).
func (f Frame[S]) Size() uint64 {
	return uint64(bytesOf[S]())
}

// Add returns the frame n frames after f.
func (f Frame[S]) Add(n uint64) Frame[S] {
	return f + Frame[S](n)
}

// Sub returns the frame n frames before f.
func (f Frame[S]) Sub(n uint64) Frame[S] {
	return f - Frame[S](n)
}

// SubFrame returns the distance, in frames, between f and other. f must not
// be before other.
func (f Frame[S]) SubFrame(other Frame[S]) uint64 {
	return uint64(f) - uint64(other)
}

// FrameRange is an inclusive range of frames [Start, End].
type FrameRange[S Size] struct {
	Start Frame[S]
	End   Frame[S]
}

// NewFrameRange builds the inclusive range [start, end].
func NewFrameRange[S Size](start, end Frame[S]) FrameRange[S] {
	return FrameRange[S]{Start: start, End: end}
}

// IsEmpty reports whether the range contains no frames.
func (r FrameRange[S]) IsEmpty() bool {
	return r.Start > r.End
}

// Len returns the number of frames in the range.
func (r FrameRange[S]) Len() uint64 {
	if r.IsEmpty() {
		return 0
	}
	return uint64(r.End) - uint64(r.Start) + 1
}

// SizeBytes returns the total byte size covered by the range.
func (r FrameRange[S]) SizeBytes() uint64 {
	return r.Len() * uint64(bytesOf[S]())
}

// Next pops the first frame off the range, like an iterator's next(). It
// returns ok == false once the range is empty.
func (r *FrameRange[S]) Next() (frame Frame[S], ok bool) {
	if r.IsEmpty() {
		return Frame[S](0), false
	}
	frame = r.Start
	r.Start = frame + 1
	return frame, true
}

// NextBack pops the last frame off the range, like a double-ended
// iterator's next_back(). It guards against the zero-address case, where
// decrementing End would underflow the frame number, by collapsing Start
// forward instead of decrementing End.
func (r *FrameRange[S]) NextBack() (frame Frame[S], ok bool) {
	if r.IsEmpty() {
		return Frame[S](0), false
	}
	frame = r.End
	if r.End.Address() == 0 {
		r.Start = frame + 1
	} else {
		r.End = frame - 1
	}
	return frame, true
}

// Frame4K is the frame type used by the recursive page-table
// implementation, which is always built out of 4 KiB table pages
// regardless of the page size the entries it contains ultimately map.
type Frame4K = Frame[Size4K]

// InvalidFrame4K is the sentinel "no frame" value for Frame4K.
var InvalidFrame4K = Invalid[Size4K]()
