package sector

import (
	"github.com/ValentinKolb/sector/lib/sector/internal/raw"
	"github.com/cockroachdb/errors"
)

var (
	// ErrAllocation is returned when the requested capacity cannot be realized,
	// either because its byte size overflows or because the allocator refused it.
	ErrAllocation = raw.ErrAllocation

	// ErrInvalidShrink is returned when a shrink would leave less capacity than length.
	ErrInvalidShrink = raw.ErrInvalidShrink

	// ErrCapacityExceeded is returned when the policy denies the growth a call needs.
	ErrCapacityExceeded = errors.New("sector: capacity exceeded")

	// ErrLocked is returned for any structural mutation of a locked container.
	ErrLocked = errors.New("sector: container is locked")

	// ErrIndexOutOfRange is returned by Insert and Remove for an invalid index.
	ErrIndexOutOfRange = errors.New("sector: index out of range")

	// ErrUnsupported is returned for capacity operations the active policy does not expose.
	ErrUnsupported = errors.New("sector: operation not supported by policy")
)
