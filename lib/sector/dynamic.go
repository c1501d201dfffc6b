package sector

// dynamicMinShrinkCapacity is the smallest capacity Dynamic will ever shrink from.
// Below it the buffer is small enough that giving memory back is not worth a copy.
const dynamicMinShrinkCapacity = 4

// Dynamic doubles its capacity on growth and gives memory back once the
// container is at most half full: the low-water mark is len <= cap/2 with
// cap >= 4, and the new capacity is max(len, cap*3/4).
type Dynamic struct{}

func (Dynamic) String() string { return "dynamic" }

func (Dynamic) InitialCapacity(requested int) int { return max(requested, 0) }

func (Dynamic) OnSizeChange(oldLen, newLen, oldCap int) Decision {
	if newLen > oldCap {
		newCap := max(oldCap, 1)
		for newCap < newLen {
			if newCap > maxInt/2 {
				newCap = newLen
				break
			}
			newCap *= 2
		}
		return Grow(newCap)
	}
	if newLen <= oldLen && oldCap >= dynamicMinShrinkCapacity && newLen <= oldCap/2 {
		if target := max(newLen, threeQuarters(oldCap)); target < oldCap {
			return Shrink(target)
		}
	}
	return NoChange()
}

func (Dynamic) SupportsFeature(feature Feature) bool {
	return DefaultFeatures&feature == feature
}

// threeQuarters returns floor(n*3/4) without overflowing for large n.
func threeQuarters(n int) int {
	return n/4*3 + n%4*3/4
}
