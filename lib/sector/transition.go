package sector

import "github.com/cockroachdb/errors"

// Convert moves all elements into a new container managed by target.
//
// The new container gets a fresh buffer sized to the current capacity, adjusted
// by the settle decision of target (target.OnSizeChange(len, len, cap)). Tight
// trims to the length, Fixed and Locked freeze the current capacity. Elements
// keep their order. On success the source is left empty without a buffer, on
// failure it is untouched.
func (s *Sector[T]) Convert(target Policy) (*Sector[T], error) {
	if target == nil {
		return nil, errors.New("sector: nil policy")
	}

	oldCap := s.capacity()
	newCap := oldCap
	switch d := target.OnSizeChange(s.len, s.len, oldCap); d.Kind {
	case KindGrow, KindShrink:
		if d.Capacity >= s.len {
			newCap = d.Capacity
		}
	}

	dst := newSector[T](target, s.buf.Allocator())
	if s.buf.ZeroSized() {
		dst.ceiling = newCap
	} else {
		if err := dst.buf.Allocate(newCap); err != nil {
			return nil, errors.Wrapf(err, "convert %s to %s", s.name, dst.name)
		}
		if newCap > 0 {
			dst.metrics.recordResize(0, newCap, dst.buf.Bytes())
		}
		dst.buf.MoveFrom(s.buf, s.len)
	}
	dst.len = s.len

	// release the source
	s.buf.Destroy(0, s.len)
	s.len = 0
	if err := s.buf.Deallocate(0); err != nil {
		return nil, err
	}
	plog.Debugf("converted %s to %s (len %d, cap %d -> %d)", s.name, dst.name, dst.len, oldCap, newCap)
	return dst, nil
}

// ToNormal converts the container to the Normal policy.
func (s *Sector[T]) ToNormal() (*Sector[T], error) { return s.Convert(Normal{}) }

// ToDynamic converts the container to the Dynamic policy.
func (s *Sector[T]) ToDynamic() (*Sector[T], error) { return s.Convert(Dynamic{}) }

// ToFixed converts the container to the Fixed policy, freezing its capacity.
func (s *Sector[T]) ToFixed() (*Sector[T], error) { return s.Convert(Fixed{}) }

// ToLocked converts the container to the Locked policy.
func (s *Sector[T]) ToLocked() (*Sector[T], error) { return s.Convert(Locked{}) }

// ToManual converts the container to the Manual policy.
func (s *Sector[T]) ToManual() (*Sector[T], error) { return s.Convert(Manual{}) }

// ToTight converts the container to the Tight policy, trimming capacity to length.
func (s *Sector[T]) ToTight() (*Sector[T], error) { return s.Convert(Tight{}) }
