package alloc

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrRefused is returned by an Allocator that declines a request.
var ErrRefused = errors.New("alloc: request refused")

// MaxBytes is the largest single region the Go runtime will hand out on this
// platform (1<<48 on 64 bit, 1<<31 on 32 bit). Requests above it never reach make.
const MaxBytes uint64 = 1 << (31 + 17*(^uint(0)>>63))

// --------------------------------------------------------------------------
// Allocator Interface
// --------------------------------------------------------------------------

// Allocator approves and accounts the memory requested by a buffer.
// Alloc is called before a region of the given size is created and must return
// an error if the region may not be created. Free is called with the same size
// once the region has been dropped by its owner.
type Allocator interface {
	Alloc(bytes uint64) error
	Free(bytes uint64)
}

// --------------------------------------------------------------------------
// Heap
// --------------------------------------------------------------------------

type heapAllocator struct{}

// Heap returns the default allocator. It only refuses requests above MaxBytes.
func Heap() Allocator {
	return heapAllocator{}
}

func (heapAllocator) Alloc(bytes uint64) error {
	if bytes > MaxBytes {
		return errors.Wrapf(ErrRefused, "%d bytes exceed the runtime limit of %d bytes", bytes, MaxBytes)
	}
	return nil
}

func (heapAllocator) Free(uint64) {}

// --------------------------------------------------------------------------
// Budget
// --------------------------------------------------------------------------

// Budget is an Allocator with a fixed upper bound on the bytes in use.
// A single budget may be shared by many containers, the counters are atomic.
type Budget struct {
	limit  uint64
	inUse  atomic.Uint64
	allocs atomic.Uint64
	denied atomic.Uint64
}

// NewBudget creates a budget that refuses any request which would push the
// total bytes in use above limit.
func NewBudget(limit uint64) *Budget {
	return &Budget{limit: limit}
}

// Alloc reserves bytes from the budget.
func (b *Budget) Alloc(bytes uint64) error {
	for {
		cur := b.inUse.Load()
		if bytes > b.limit || cur > b.limit-bytes {
			b.denied.Add(1)
			return errors.Wrapf(ErrRefused, "budget of %d bytes exhausted (in use %d, requested %d)", b.limit, cur, bytes)
		}
		if b.inUse.CompareAndSwap(cur, cur+bytes) {
			b.allocs.Add(1)
			return nil
		}
	}
}

// Free returns bytes to the budget. Freeing more than is in use clamps at zero.
func (b *Budget) Free(bytes uint64) {
	for {
		cur := b.inUse.Load()
		next := uint64(0)
		if bytes < cur {
			next = cur - bytes
		}
		if b.inUse.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Limit returns the configured byte limit.
func (b *Budget) Limit() uint64 { return b.limit }

// InUse returns the bytes currently reserved.
func (b *Budget) InUse() uint64 { return b.inUse.Load() }

// Allocations returns how many requests were approved so far.
func (b *Budget) Allocations() uint64 { return b.allocs.Load() }

// Refusals returns how many requests were refused so far.
func (b *Budget) Refusals() uint64 { return b.denied.Load() }
