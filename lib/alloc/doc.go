// Package alloc provides the allocation hook used by sector buffers.
//
// A buffer never talks to the Go runtime directly when it needs memory for its
// backing region. It first asks an Allocator to approve the number of bytes it is
// about to reserve and reports the bytes back once the region is released. This
// keeps the memory accounting of a container observable and lets callers put an
// upper bound on how much memory a group of containers may hold.
//
// The package contains:
//   - Heap: the default allocator, approves every request the runtime can serve
//   - Budget: an allocator with a hard byte limit, shared safely between containers
//
// Example usage:
//
//	// allow at most 1 MiB for all containers created with this budget
//	budget := alloc.NewBudget(1 << 20)
//
//	s, err := sector.FromPolicy[int](sector.Normal{}, sector.WithAllocator(budget))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(budget.InUse())
package alloc
