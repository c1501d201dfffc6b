package sector

// Locked freezes a container: every length change is denied with ErrLocked.
// Reads (Get, GetMut, iteration) stay valid.
type Locked struct{}

func (Locked) String() string { return "locked" }

func (Locked) InitialCapacity(requested int) int { return max(requested, 0) }

func (Locked) OnSizeChange(oldLen, newLen, _ int) Decision {
	if oldLen == newLen {
		return NoChange()
	}
	return Deny(ErrLocked)
}

func (Locked) SupportsFeature(feature Feature) bool {
	return feature == 0
}
