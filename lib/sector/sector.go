package sector

import (
	"fmt"
	"math"

	"github.com/ValentinKolb/sector/lib/alloc"
	"github.com/ValentinKolb/sector/lib/sector/internal/raw"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("sector")

const maxInt = math.MaxInt

// Unbounded is the capacity reported by containers of zero-sized elements that
// have no declared ceiling.
const Unbounded = raw.Unbounded

// Sector is a growable buffer whose capacity is managed by a Policy.
//
// A Sector is owned by one goroutine at a time, it does no locking of its own.
// Every method that returns an error leaves the container exactly as it was
// before the call.
type Sector[T any] struct {
	buf    *raw.Buffer[T]
	len    int
	policy Policy
	name   string

	// ceiling is the logical capacity of zero-sized element types. It is not used
	// for other types, their capacity is the size of the buffer.
	ceiling int

	metrics instruments
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// New returns an empty container with the Normal policy.
func New[T any]() *Sector[T] {
	return newSector[T](Normal{}, nil)
}

// WithCapacity returns an empty container with the Normal policy and room for n elements.
func WithCapacity[T any](n int) (*Sector[T], error) {
	return FromPolicy[T](Normal{}, WithInitialCapacity(n))
}

// FromPolicy returns an empty container managed by p.
func FromPolicy[T any](p Policy, opts ...Option) (*Sector[T], error) {
	return FromSlice[T](p, nil, opts...)
}

// FromSlice returns a container managed by p holding a copy of values.
// Construction is not a length change, so the policy is only asked for the
// initial capacity, which must be large enough for values.
func FromSlice[T any](p Policy, values []T, opts ...Option) (*Sector[T], error) {
	if p == nil {
		return nil, errors.New("sector: nil policy")
	}
	o := buildOptions(opts)
	s := newSector[T](p, o.allocator)

	if !o.hasCapacity && len(values) == 0 {
		return s, nil
	}

	capacity := p.InitialCapacity(max(o.capacity, len(values)))
	if capacity < len(values) {
		return nil, errors.Wrapf(ErrCapacityExceeded, "%s: initial capacity %d for %d elements", s.name, capacity, len(values))
	}

	if s.buf.ZeroSized() {
		s.ceiling = capacity
	} else {
		if err := s.buf.Allocate(capacity); err != nil {
			return nil, err
		}
		if capacity > 0 {
			s.metrics.recordResize(0, capacity, s.buf.Bytes())
		}
		copy(s.buf.Slots(), values)
	}
	s.len = len(values)
	return s, nil
}

func newSector[T any](p Policy, a alloc.Allocator) *Sector[T] {
	name := PolicyName(p)
	return &Sector[T]{
		buf:     raw.New[T](a),
		policy:  p,
		name:    name,
		ceiling: raw.Unbounded,
		metrics: newInstruments(name),
	}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Len returns the number of live elements.
func (s *Sector[T]) Len() int { return s.len }

// Cap returns the number of elements the container can hold without a resize.
// Zero-sized element types report their ceiling, Unbounded if they have none.
func (s *Sector[T]) Cap() int { return s.capacity() }

// IsEmpty reports whether the container holds no elements.
func (s *Sector[T]) IsEmpty() bool { return s.len == 0 }

// Policy returns the policy managing the container.
func (s *Sector[T]) Policy() Policy { return s.policy }

// Resizes returns how often the backing buffer was allocated, replaced or released.
// It stays 0 for zero-sized element types.
func (s *Sector[T]) Resizes() int { return s.buf.Resizes() }

// Bytes returns the size of the backing buffer in bytes.
func (s *Sector[T]) Bytes() uint64 { return s.buf.Bytes() }

func (s *Sector[T]) String() string {
	if s.capacity() == raw.Unbounded {
		return fmt.Sprintf("sector[%s len=%d cap=unbounded]", s.name, s.len)
	}
	return fmt.Sprintf("sector[%s len=%d cap=%d]", s.name, s.len, s.capacity())
}

// --------------------------------------------------------------------------
// Element Operations
// --------------------------------------------------------------------------

// Push appends v. It fails if the policy denies the growth or the buffer
// cannot be resized.
func (s *Sector[T]) Push(v T) error {
	if err := s.require(FeatureMutate); err != nil {
		return err
	}
	if s.len == maxInt {
		return errors.Wrap(ErrAllocation, "length overflow")
	}
	if err := s.prepare(s.len+1, s.len); err != nil {
		return err
	}
	if !s.buf.ZeroSized() {
		s.buf.Slots()[s.len] = v
	}
	s.len++
	return nil
}

// Pop removes and returns the last element. ok is false if the container is empty.
// A shrink decided by the policy is applied together with the removal.
func (s *Sector[T]) Pop() (v T, ok bool, err error) {
	if err = s.require(FeatureMutate); err != nil {
		return v, false, err
	}
	if s.len == 0 {
		return v, false, nil
	}

	last := s.len - 1
	elem := s.at(last)
	resizes := s.buf.Resizes()
	if err = s.prepare(last, last); err != nil {
		return v, false, err
	}
	if s.buf.Resizes() == resizes {
		s.buf.Destroy(last, s.len)
	}
	s.len = last
	return elem, true, nil
}

// Get returns the element at index i. ok is false if i is out of range.
func (s *Sector[T]) Get(i int) (v T, ok bool) {
	if i < 0 || i >= s.len {
		return v, false
	}
	return s.at(i), true
}

// GetMut returns a pointer to the element at index i. ok is false if i is out
// of range. The pointer is invalidated by the next resize of the container.
func (s *Sector[T]) GetMut(i int) (*T, bool) {
	if i < 0 || i >= s.len {
		return nil, false
	}
	if s.buf.ZeroSized() {
		return new(T), true
	}
	return &s.buf.Slots()[i], true
}

// Insert places v at index i and shifts the following elements one to the right.
// i must be in [0, Len()].
func (s *Sector[T]) Insert(i int, v T) error {
	if err := s.require(FeatureMutate); err != nil {
		return err
	}
	if i < 0 || i > s.len {
		return errors.Wrapf(ErrIndexOutOfRange, "insert at %d with length %d", i, s.len)
	}
	if s.len == maxInt {
		return errors.Wrap(ErrAllocation, "length overflow")
	}
	if err := s.prepare(s.len+1, s.len); err != nil {
		return err
	}
	if !s.buf.ZeroSized() {
		s.buf.MoveElements(i, i+1, s.len-i)
		s.buf.Slots()[i] = v
	}
	s.len++
	return nil
}

// Remove deletes and returns the element at index i and shifts the following
// elements one to the left. i must be in [0, Len()).
func (s *Sector[T]) Remove(i int) (v T, err error) {
	if err = s.require(FeatureMutate); err != nil {
		return v, err
	}
	if i < 0 || i >= s.len {
		return v, errors.Wrapf(ErrIndexOutOfRange, "remove at %d with length %d", i, s.len)
	}

	last := s.len - 1
	elem := s.at(i)
	s.buf.MoveElements(i+1, i, last-i)

	resizes := s.buf.Resizes()
	if err = s.prepare(last, last); err != nil {
		// undo the shift
		s.buf.MoveElements(i, i+1, last-i)
		if !s.buf.ZeroSized() {
			s.buf.Slots()[i] = elem
		}
		return v, err
	}
	if s.buf.Resizes() == resizes {
		s.buf.Destroy(last, s.len)
	}
	s.len = last
	return elem, nil
}

// Slice returns the live elements. The slice shares memory with the container
// and is invalidated by the next resize.
func (s *Sector[T]) Slice() []T {
	if s.buf.ZeroSized() {
		return make([]T, s.len)
	}
	return s.buf.Slots()[:s.len:s.len]
}

// Drain removes all elements and returns them in order. The policy is consulted
// once for the change to length 0.
func (s *Sector[T]) Drain() ([]T, error) {
	if err := s.require(FeatureMutate); err != nil {
		return nil, err
	}
	if s.len == 0 {
		return nil, nil
	}
	out := make([]T, s.len)
	copy(out, s.Slice())
	if err := s.truncate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear removes all elements. The policy is consulted once for the change to length 0.
func (s *Sector[T]) Clear() error {
	if err := s.require(FeatureMutate); err != nil {
		return err
	}
	if s.len == 0 {
		return nil
	}
	return s.truncate()
}

func (s *Sector[T]) truncate() error {
	resizes := s.buf.Resizes()
	if err := s.prepare(0, 0); err != nil {
		return err
	}
	if s.buf.Resizes() == resizes {
		s.buf.Destroy(0, s.len)
	}
	s.len = 0
	return nil
}

// --------------------------------------------------------------------------
// Capacity Operations
// --------------------------------------------------------------------------

// Reserve makes room for at least additional more elements. The policy's growth
// curve is used when it covers the request, the exact size otherwise.
func (s *Sector[T]) Reserve(additional int) error {
	if err := s.require(FeatureReserve); err != nil {
		return err
	}
	if additional < 0 {
		return errors.Newf("sector: negative reserve %d", additional)
	}
	if additional > maxInt-s.len {
		return errors.Wrapf(ErrAllocation, "reserve %d overflows length %d", additional, s.len)
	}

	need := s.len + additional
	oldCap := s.capacity()
	if need <= oldCap {
		return nil
	}
	target := need
	if d := s.policy.OnSizeChange(s.len, need, oldCap); d.Kind == KindGrow && d.Capacity > need {
		target = d.Capacity
	}
	return s.resize(target, s.len, true)
}

// ShrinkToFit reduces the capacity to the current length.
func (s *Sector[T]) ShrinkToFit() error {
	if err := s.require(FeatureShrinkToFit); err != nil {
		return err
	}
	if s.capacity() <= s.len {
		return nil
	}
	return s.resize(s.len, s.len, true)
}

// GrowBy adds n slots of capacity, bypassing the policy.
func (s *Sector[T]) GrowBy(n int) error {
	if err := s.require(FeatureManualResize); err != nil {
		return err
	}
	if n < 0 {
		return errors.Newf("sector: negative growth %d", n)
	}
	oldCap := s.capacity()
	if n == 0 || oldCap == raw.Unbounded {
		return nil
	}
	if n > maxInt-oldCap {
		return errors.Wrapf(ErrAllocation, "grow by %d overflows capacity %d", n, oldCap)
	}
	return s.resize(oldCap+n, s.len, true)
}

// ShrinkBy removes n slots of capacity, bypassing the policy. It fails with
// ErrInvalidShrink if fewer than Len() slots would remain.
func (s *Sector[T]) ShrinkBy(n int) error {
	if err := s.require(FeatureManualResize); err != nil {
		return err
	}
	if n < 0 {
		return errors.Newf("sector: negative shrink %d", n)
	}
	oldCap := s.capacity()
	if n > oldCap || oldCap-n < s.len {
		return errors.Wrapf(ErrInvalidShrink, "shrink by %d leaves less than %d of %d slots", n, s.len, oldCap)
	}
	if n == 0 {
		return nil
	}
	return s.resize(oldCap-n, s.len, true)
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Clone returns an independent copy with its own buffer of the same capacity.
// The copy is managed by the same policy value and allocates from the same allocator.
func (s *Sector[T]) Clone() (*Sector[T], error) {
	c := newSector[T](s.policy, s.buf.Allocator())
	c.ceiling = s.ceiling
	if !s.buf.ZeroSized() {
		if err := c.buf.Allocate(s.buf.Cap()); err != nil {
			return nil, err
		}
		if c.buf.Cap() > 0 {
			c.metrics.recordResize(0, c.buf.Cap(), c.buf.Bytes())
		}
		copy(c.buf.Slots(), s.buf.Slots()[:s.len])
	}
	c.len = s.len
	return c, nil
}

// Close destroys all elements in order and releases the buffer without asking
// the policy. The container stays usable and is empty afterwards.
func (s *Sector[T]) Close() error {
	s.buf.Destroy(0, s.len)
	s.len = 0
	return s.buf.Deallocate(0)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (s *Sector[T]) capacity() int {
	if s.buf.ZeroSized() {
		return s.ceiling
	}
	return s.buf.Cap()
}

// at returns the element at index i without a bounds check against the length.
func (s *Sector[T]) at(i int) T {
	var v T
	if s.buf.ZeroSized() {
		return v
	}
	return s.buf.Slots()[i]
}

// require checks that the policy exposes feature. Containers without
// FeatureMutate are locked, every other missing feature is unsupported.
func (s *Sector[T]) require(feature Feature) error {
	if SupportsFeature(s.policy, feature) {
		return nil
	}
	if !SupportsFeature(s.policy, FeatureMutate) {
		return errors.Wrapf(ErrLocked, "%s: %s", s.name, feature)
	}
	return errors.Wrapf(ErrUnsupported, "%s: %s", s.name, feature)
}

// prepare consults the policy about the length changing to newLen and applies
// its decision to the buffer. The length itself is left to the caller. live is
// the number of leading elements that must survive a resize.
func (s *Sector[T]) prepare(newLen, live int) error {
	oldCap := s.capacity()
	d := s.policy.OnSizeChange(s.len, newLen, oldCap)

	switch d.Kind {
	case KindDeny:
		s.metrics.denials.Inc()
		reason := d.Reason
		if reason == nil {
			reason = ErrCapacityExceeded
		}
		plog.Debugf("%s: denied length %d -> %d (cap %d): %v", s.name, s.len, newLen, oldCap, reason)
		return errors.Wrapf(reason, "%s: length %d -> %d", s.name, s.len, newLen)

	case KindGrow:
		if d.Capacity < newLen {
			return errors.Wrapf(ErrCapacityExceeded, "%s: grow to %d cannot hold %d elements", s.name, d.Capacity, newLen)
		}
		if d.Capacity > oldCap {
			if err := s.resize(d.Capacity, live, false); err != nil {
				return err
			}
		}

	case KindShrink:
		if d.Capacity < newLen {
			return errors.Wrapf(ErrInvalidShrink, "%s: shrink to %d cannot hold %d elements", s.name, d.Capacity, newLen)
		}
		// a shrink only makes sense once elements are gone
		if newLen <= s.len && d.Capacity < oldCap {
			if err := s.resize(d.Capacity, live, false); err != nil {
				return err
			}
		}
	}

	if newLen > s.capacity() {
		s.metrics.denials.Inc()
		return errors.Wrapf(ErrCapacityExceeded, "%s: length %d exceeds capacity %d", s.name, newLen, s.capacity())
	}
	return nil
}

// resize changes the capacity to newCap keeping the first live elements.
// For zero-sized types only the ceiling moves: automatic growth raises it,
// automatic shrinks leave it alone, explicit calls set it.
func (s *Sector[T]) resize(newCap, live int, explicit bool) error {
	oldCap := s.capacity()
	if newCap < live {
		return errors.Wrapf(ErrInvalidShrink, "%s: capacity %d cannot hold %d elements", s.name, newCap, live)
	}

	if s.buf.ZeroSized() {
		if explicit || newCap > oldCap {
			s.ceiling = newCap
		}
		return nil
	}

	var err error
	if newCap > oldCap {
		err = s.buf.GrowTo(newCap, live)
	} else {
		err = s.buf.ShrinkTo(newCap, live)
	}
	if err != nil {
		plog.Debugf("%s: resize %d -> %d failed: %v", s.name, oldCap, newCap, err)
		return err
	}
	s.metrics.recordResize(oldCap, newCap, s.buf.Bytes())
	plog.Debugf("%s: resized %d -> %d (len %d)", s.name, oldCap, newCap, live)
	return nil
}
