package sector

// Manual never resizes on its own. Capacity only changes through Reserve,
// ShrinkToFit, GrowBy and ShrinkBy; a push beyond the current capacity is
// denied with ErrCapacityExceeded.
type Manual struct{}

func (Manual) String() string { return "manual" }

func (Manual) InitialCapacity(requested int) int { return max(requested, 0) }

func (Manual) OnSizeChange(_, newLen, oldCap int) Decision {
	if newLen > oldCap {
		return Deny(ErrCapacityExceeded)
	}
	return NoChange()
}

func (Manual) SupportsFeature(feature Feature) bool {
	return (DefaultFeatures|FeatureManualResize)&feature == feature
}
