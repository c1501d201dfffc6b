// Package sector provides a growable buffer whose capacity management is pluggable.
//
// A Sector[T] owns one contiguous buffer, a logical length and a Policy. The
// policy is consulted before every length change and answers with a Decision:
// grow the buffer, shrink it, leave it alone or deny the change. The container
// applies the decision verbatim and performs at most one buffer resize per call.
//
// Built-in policies:
//
//   - Normal: append-like geometric growth, never shrinks on its own.
//   - Dynamic: doubles on growth, shrinks to max(len, cap*3/4) once len <= cap/2.
//   - Fixed: capacity is set at construction, growth beyond it is denied.
//   - Locked: every structural mutation is denied, reads stay valid.
//   - Manual: never resizes on its own, capacity moves only through GrowBy,
//     ShrinkBy, Reserve and ShrinkToFit.
//   - Tight: capacity equals length after every push and removal.
//
// Feature Flags:
//
// Policies advertise the operations their container exposes through the Feature
// flags (see SupportsFeature). Calling an operation the policy does not expose
// returns ErrUnsupported, or ErrLocked for policies without FeatureMutate.
//
// Errors:
//
// All failures are reported through sentinel errors (ErrAllocation,
// ErrCapacityExceeded, ErrLocked, ErrIndexOutOfRange, ErrInvalidShrink,
// ErrUnsupported) that can be matched with errors.Is. A failing call never
// leaves the container partially modified.
//
// Zero-sized element types never allocate. Their capacity is a ceiling on the
// logical length: Unbounded for New, or whatever InitialCapacity returned for
// containers created with an explicit capacity.
//
// Custom policies implement the two methods of Policy and may be registered by
// name with RegisterPolicy. Example usage:
//
//	s, err := sector.FromPolicy[int](sector.Dynamic{}, sector.WithInitialCapacity(4))
//	if err != nil {
//		return err
//	}
//	for i := range 10 {
//		if err := s.Push(i); err != nil {
//			return err
//		}
//	}
//	tight, err := s.ToTight() // s is empty afterwards
package sector
