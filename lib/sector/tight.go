package sector

// Tight grows to exactly the length a push needs and shrinks back to the length
// after every removal. Every length change therefore costs one reallocation.
type Tight struct{}

func (Tight) String() string { return "tight" }

func (Tight) InitialCapacity(requested int) int { return max(requested, 0) }

func (Tight) OnSizeChange(oldLen, newLen, oldCap int) Decision {
	switch {
	case newLen > oldCap:
		return Grow(newLen)
	case newLen <= oldLen && newLen < oldCap:
		return Shrink(newLen)
	default:
		return NoChange()
	}
}

func (Tight) SupportsFeature(feature Feature) bool {
	return FeatureMutate&feature == feature
}
