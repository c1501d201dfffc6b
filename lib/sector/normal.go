package sector

// normalThreshold is where Normal switches from doubling to gentler growth.
const normalThreshold = 256

// Normal grows like a slice grown by append and never shrinks on its own.
// It exposes every capacity operation except the manual ones.
type Normal struct{}

func (Normal) String() string { return "normal" }

func (Normal) InitialCapacity(requested int) int { return max(requested, 0) }

func (Normal) OnSizeChange(_, newLen, oldCap int) Decision {
	if newLen > oldCap {
		return Grow(normalGrowth(oldCap, newLen))
	}
	return NoChange()
}

func (Normal) SupportsFeature(feature Feature) bool {
	return DefaultFeatures&feature == feature
}

// normalGrowth follows the growth curve of the Go runtime: double small
// buffers, then grow by a quarter plus a constant, never less than needed.
func normalGrowth(oldCap, needed int) int {
	doubled := oldCap + oldCap
	if doubled < 0 || needed > doubled {
		return needed
	}
	if oldCap < normalThreshold {
		return doubled
	}
	newCap := oldCap
	for 0 < newCap && newCap < needed {
		newCap += (newCap + 3*normalThreshold) >> 2
	}
	if newCap <= 0 {
		return needed
	}
	return newCap
}
