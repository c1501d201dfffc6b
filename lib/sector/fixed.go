package sector

// Fixed never reallocates. Its capacity is set once at construction (or frozen
// at conversion) and any growth beyond it is denied with ErrCapacityExceeded.
type Fixed struct{}

func (Fixed) String() string { return "fixed" }

func (Fixed) InitialCapacity(requested int) int { return max(requested, 0) }

func (Fixed) OnSizeChange(_, newLen, oldCap int) Decision {
	if newLen > oldCap {
		return Deny(ErrCapacityExceeded)
	}
	return NoChange()
}

func (Fixed) SupportsFeature(feature Feature) bool {
	return FeatureMutate&feature == feature
}
