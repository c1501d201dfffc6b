// Package raw implements the contiguous backing region owned by a sector container.
//
// A Buffer only knows about slots, it has no notion of a logical length. Every
// operation that moves elements takes the number of live elements from the caller,
// which keeps the length bookkeeping in exactly one place (the container).
//
// Zero-sized element types never allocate. For them the buffer reports an
// unbounded capacity and all resize operations succeed without touching the
// allocator.
package raw

import (
	"math"
	"unsafe"

	"github.com/ValentinKolb/sector/lib/alloc"
	"github.com/cockroachdb/errors"
)

// Unbounded is the capacity reported for zero-sized element types.
const Unbounded = math.MaxInt

var (
	// ErrAllocation is returned when a region cannot be sized or the allocator refuses it.
	ErrAllocation = errors.New("sector: allocation failed")

	// ErrInvalidShrink is returned when a resize would drop live elements.
	ErrInvalidShrink = errors.New("sector: shrink below length")
)

// Buffer owns one contiguous region of element slots.
// Invariant: slots == nil iff the capacity is 0 or T is zero-sized.
type Buffer[T any] struct {
	slots     []T
	elemSize  uintptr
	zeroSized bool
	allocator alloc.Allocator
	resizes   int
}

// New creates an unallocated buffer. A nil allocator selects alloc.Heap().
func New[T any](a alloc.Allocator) *Buffer[T] {
	if a == nil {
		a = alloc.Heap()
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return &Buffer[T]{
		elemSize:  size,
		zeroSized: size == 0,
		allocator: a,
	}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Cap returns the number of slots in the region, Unbounded for zero-sized T.
func (b *Buffer[T]) Cap() int {
	if b.zeroSized {
		return Unbounded
	}
	return len(b.slots)
}

// Slots returns the full region. Slots past the live length hold zero values.
func (b *Buffer[T]) Slots() []T { return b.slots }

// ZeroSized reports whether T occupies no storage.
func (b *Buffer[T]) ZeroSized() bool { return b.zeroSized }

// Allocated reports whether the buffer currently holds a region.
func (b *Buffer[T]) Allocated() bool { return b.slots != nil }

// ElemSize returns the size of one element in bytes.
func (b *Buffer[T]) ElemSize() uintptr { return b.elemSize }

// Bytes returns the size of the current region in bytes.
func (b *Buffer[T]) Bytes() uint64 { return uint64(len(b.slots)) * uint64(b.elemSize) }

// Resizes returns how many times a region was created, replaced or released.
func (b *Buffer[T]) Resizes() int { return b.resizes }

// Allocator returns the allocator backing this buffer.
func (b *Buffer[T]) Allocator() alloc.Allocator { return b.allocator }

// --------------------------------------------------------------------------
// Resizing
// --------------------------------------------------------------------------

// Allocate creates the first region with the given capacity.
// It fails if the buffer already holds a region.
func (b *Buffer[T]) Allocate(capacity int) error {
	if capacity < 0 {
		return errors.Wrapf(ErrAllocation, "negative capacity %d", capacity)
	}
	if b.zeroSized || capacity == 0 {
		return nil
	}
	if b.slots != nil {
		return errors.Wrapf(ErrAllocation, "buffer already holds %d slots", len(b.slots))
	}
	return b.relocate(capacity, 0)
}

// GrowTo replaces the region with one of newCap slots and moves the first live
// elements across. Requests that do not increase the capacity are no-ops.
func (b *Buffer[T]) GrowTo(newCap, live int) error {
	if b.zeroSized || newCap <= len(b.slots) {
		return nil
	}
	if live < 0 || live > len(b.slots) {
		return errors.Wrapf(ErrAllocation, "live count %d outside region of %d slots", live, len(b.slots))
	}
	return b.relocate(newCap, live)
}

// ShrinkTo replaces the region with one of newCap slots holding the first live
// elements. Shrinking to zero releases the region. Requests that do not decrease
// the capacity are no-ops.
func (b *Buffer[T]) ShrinkTo(newCap, live int) error {
	if newCap < live || newCap < 0 {
		return errors.Wrapf(ErrInvalidShrink, "capacity %d cannot hold %d elements", newCap, live)
	}
	if b.zeroSized || newCap >= len(b.slots) {
		return nil
	}
	if newCap == 0 {
		return b.Deallocate(live)
	}
	return b.relocate(newCap, live)
}

// Deallocate releases the region. All elements must have been destroyed before.
func (b *Buffer[T]) Deallocate(live int) error {
	if live > 0 {
		return errors.Wrapf(ErrInvalidShrink, "deallocate with %d live elements", live)
	}
	if b.slots == nil {
		return nil
	}
	b.allocator.Free(b.Bytes())
	b.slots = nil
	b.resizes++
	return nil
}

// relocate creates a region of newCap slots, copies the first live elements and
// releases the old region. On failure the buffer is left untouched.
func (b *Buffer[T]) relocate(newCap, live int) error {
	bytes, ok := mulOverflowSafe(newCap, int(b.elemSize))
	if !ok || uint64(bytes) > alloc.MaxBytes {
		return errors.Wrapf(ErrAllocation, "capacity %d of %d byte elements overflows", newCap, b.elemSize)
	}
	if err := b.allocator.Alloc(uint64(bytes)); err != nil {
		return errors.Wrapf(ErrAllocation, "capacity %d: %v", newCap, err)
	}

	slots := make([]T, newCap)
	copy(slots, b.slots[:live])

	if b.slots != nil {
		clear(b.slots)
		b.allocator.Free(b.Bytes())
	}
	b.slots = slots
	b.resizes++
	return nil
}

// --------------------------------------------------------------------------
// Element moves
// --------------------------------------------------------------------------

// MoveElements moves n elements starting at from to start at to. The ranges may
// overlap. The vacated slots keep their old values until destroyed.
func (b *Buffer[T]) MoveElements(from, to, n int) {
	if b.zeroSized || n <= 0 || from == to {
		return
	}
	copy(b.slots[to:to+n], b.slots[from:from+n])
}

// MoveFrom copies the first n elements of src into the start of b.
// Both buffers must hold at least n slots.
func (b *Buffer[T]) MoveFrom(src *Buffer[T], n int) {
	if b.zeroSized || n <= 0 {
		return
	}
	copy(b.slots[:n], src.slots[:n])
}

// Destroy zeroes the slots in [from, to) so the garbage collector can reclaim
// whatever they reference.
func (b *Buffer[T]) Destroy(from, to int) {
	if b.zeroSized || from >= to {
		return
	}
	clear(b.slots[from:to])
}

// mulOverflowSafe multiplies two non-negative ints, ok = false on overflow.
func mulOverflowSafe(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a < 0 || b < 0 || a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
