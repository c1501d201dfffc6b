package sector

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Decision
// --------------------------------------------------------------------------

// DecisionKind is the outcome class of a policy decision.
type DecisionKind uint8

const (
	KindNoChange DecisionKind = iota // keep the current capacity
	KindGrow                         // resize the buffer to a larger capacity
	KindShrink                       // resize the buffer to a smaller capacity
	KindDeny                         // reject the length change
)

func (k DecisionKind) String() string {
	switch k {
	case KindNoChange:
		return "NoChange"
	case KindGrow:
		return "Grow"
	case KindShrink:
		return "Shrink"
	case KindDeny:
		return "Deny"
	default:
		return "Unknown"
	}
}

// Decision is what a Policy returns for a length change.
// Capacity is only meaningful for KindGrow and KindShrink, Reason only for KindDeny.
type Decision struct {
	Kind     DecisionKind
	Capacity int
	Reason   error
}

// NoChange keeps the current capacity.
func NoChange() Decision { return Decision{Kind: KindNoChange} }

// Grow asks the container to resize its buffer to capacity slots.
func Grow(capacity int) Decision { return Decision{Kind: KindGrow, Capacity: capacity} }

// Shrink asks the container to resize its buffer to capacity slots.
func Shrink(capacity int) Decision { return Decision{Kind: KindShrink, Capacity: capacity} }

// Deny rejects the length change. The reason is handed to the caller as is,
// a nil reason is reported as ErrCapacityExceeded.
func Deny(reason error) Decision { return Decision{Kind: KindDeny, Reason: reason} }

func (d Decision) String() string {
	switch d.Kind {
	case KindGrow, KindShrink:
		return fmt.Sprintf("%s(%d)", d.Kind, d.Capacity)
	default:
		return d.Kind.String()
	}
}

// --------------------------------------------------------------------------
// Policy Interface
// --------------------------------------------------------------------------

// Policy decides every capacity transition of the container it is bound to.
// Policies never touch elements or memory, they only advise.
//
// Any type implementing the two methods below is a valid policy and can be used
// with FromPolicy or registered with RegisterPolicy.
type Policy interface {

	// InitialCapacity returns the capacity a new container should allocate
	// when the caller asks for room for requested elements.
	InitialCapacity(requested int) int

	// OnSizeChange is consulted before the length of the container changes from
	// oldLen to newLen while the buffer holds oldCap slots.
	//   - newLen > oldLen: growth event, answer Grow, Deny or NoChange
	//   - newLen < oldLen: removal event, answer Shrink, Deny or NoChange
	//   - newLen == oldLen: settle event, issued when a container is converted to
	//     this policy, answer Shrink, Grow or NoChange to impose the policy's invariant
	OnSizeChange(oldLen, newLen, oldCap int) Decision
}

// PolicyFactory creates a fresh policy value.
type PolicyFactory func() Policy

// --------------------------------------------------------------------------
// Features
// --------------------------------------------------------------------------

// Feature represents container operations a policy exposes, as bit flags.
type Feature uint64

const (
	FeatureMutate       Feature = 1 << iota // Push, Pop, Insert, Remove, Drain, Clear
	FeatureReserve                          // Reserve
	FeatureShrinkToFit                      // ShrinkToFit
	FeatureManualResize                     // GrowBy, ShrinkBy
)

// DefaultFeatures is assumed for policies that do not implement FeatureSupporter.
const DefaultFeatures = FeatureMutate | FeatureReserve | FeatureShrinkToFit

func (f Feature) String() string {
	switch f {
	case FeatureMutate:
		return "Mutate"
	case FeatureReserve:
		return "Reserve"
	case FeatureShrinkToFit:
		return "ShrinkToFit"
	case FeatureManualResize:
		return "ManualResize"
	case 0:
		return "None"
	}

	// combined flags
	var names []string
	for _, single := range []Feature{FeatureMutate, FeatureReserve, FeatureShrinkToFit, FeatureManualResize} {
		if f&single != 0 {
			names = append(names, single.String())
		}
	}
	if len(names) == 0 {
		return "Unknown"
	}
	return strings.Join(names, "|")
}

// FeatureSupporter is implemented by policies that restrict the operations of
// their container. Multiple features can be checked at once using bitwise OR.
type FeatureSupporter interface {
	SupportsFeature(feature Feature) (ok bool)
}

// SupportsFeature reports whether p exposes all of the given features.
func SupportsFeature(p Policy, feature Feature) bool {
	if fs, ok := p.(FeatureSupporter); ok {
		return fs.SupportsFeature(feature)
	}
	return DefaultFeatures&feature == feature
}

// PolicyName returns the name used for p in logs and metrics.
func PolicyName(p Policy) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
