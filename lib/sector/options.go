package sector

import "github.com/ValentinKolb/sector/lib/alloc"

// Option configures container creation.
type Option func(*options)

type options struct {
	capacity    int
	hasCapacity bool
	allocator   alloc.Allocator
}

// WithInitialCapacity asks the policy for room for n elements up front.
// The policy's InitialCapacity decides the actual capacity.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
		o.hasCapacity = true
	}
}

// WithAllocator makes the container account its buffer against a.
// Containers use alloc.Heap() by default.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) { o.allocator = a }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
