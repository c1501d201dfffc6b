package testing

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/ValentinKolb/sector/lib/alloc"
	"github.com/ValentinKolb/sector/lib/sector"
	"github.com/cockroachdb/errors"
)

// RunPolicyTests runs the conformance suite for a capacity policy.
// factory must return a fresh policy value on every call.
func RunPolicyTests(t *testing.T, name string, factory sector.PolicyFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("LengthWithinCapacity", func(t *testing.T) {
			testLengthWithinCapacity(t, factory)
		})

		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, factory)
		})

		t.Run("InsertRemoveOrder", func(t *testing.T) {
			testInsertRemoveOrder(t, factory)
		})

		t.Run("FailureAtomicity", func(t *testing.T) {
			testFailureAtomicity(t, factory)
		})

		t.Run("CapacityOperations", func(t *testing.T) {
			testCapacityOperations(t, factory)
		})

		t.Run("ManualResize", func(t *testing.T) {
			testManualResize(t, factory)
		})

		t.Run("Iteration", func(t *testing.T) {
			testIteration(t, factory)
		})

		t.Run("Clone", func(t *testing.T) {
			testClone(t, factory)
		})

		t.Run("Conversion", func(t *testing.T) {
			testConversion(t, factory)
		})

		t.Run("ZeroSized", func(t *testing.T) {
			testZeroSized(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the policy exposes the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, p sector.Policy, feature sector.Feature) {
	if !sector.SupportsFeature(p, feature) {
		t.Skip()
	}
}

// isKnownError reports whether err is one of the documented sentinel errors
func isKnownError(err error) bool {
	for _, sentinel := range []error{
		sector.ErrAllocation,
		sector.ErrCapacityExceeded,
		sector.ErrLocked,
		sector.ErrIndexOutOfRange,
		sector.ErrInvalidShrink,
		sector.ErrUnsupported,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func sequence(n int) []int {
	values := make([]int, n)
	for i := range values {
		values[i] = i + 1
	}
	return values
}

type snapshot struct {
	values []int
	len    int
	cap    int
}

func takeSnapshot(s *sector.Sector[int]) snapshot {
	return snapshot{values: slices.Clone(s.Slice()), len: s.Len(), cap: s.Cap()}
}

func checkUnchanged(t *testing.T, op string, before snapshot, s *sector.Sector[int]) {
	t.Helper()
	after := takeSnapshot(s)
	if after.len != before.len || after.cap != before.cap {
		t.Errorf("Expected failed %s to keep len=%d cap=%d, got len=%d cap=%d",
			op, before.len, before.cap, after.len, after.cap)
	}
	if !slices.Equal(after.values, before.values) {
		t.Errorf("Expected failed %s to keep elements %v, got %v", op, before.values, after.values)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testLengthWithinCapacity(t *testing.T, factory sector.PolicyFactory) {
	s, err := sector.FromPolicy[int](factory(), sector.WithInitialCapacity(8))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 2000; step++ {
		var opErr error
		op := rng.Intn(8)
		switch op {
		case 0, 1, 2:
			opErr = s.Push(step)
		case 3:
			_, _, opErr = s.Pop()
		case 4:
			opErr = s.Insert(rng.Intn(s.Len()+1), step)
		case 5:
			if s.Len() > 0 {
				_, opErr = s.Remove(rng.Intn(s.Len()))
			}
		case 6:
			opErr = s.Reserve(rng.Intn(16))
		case 7:
			opErr = s.ShrinkToFit()
		}

		if opErr != nil && !isKnownError(opErr) {
			t.Fatalf("Step %d (op %d): unexpected error %v", step, op, opErr)
		}
		if s.Len() > s.Cap() {
			t.Fatalf("Step %d (op %d): length %d exceeds capacity %d", step, op, s.Len(), s.Cap())
		}
	}
}

func testRoundTrip(t *testing.T, factory sector.PolicyFactory) {
	p := factory()
	requireFeature(t, p, sector.FeatureMutate)

	const n = 100
	s, err := sector.FromPolicy[int](p, sector.WithInitialCapacity(n))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	for _, v := range sequence(n) {
		if err := s.Push(v); err != nil {
			t.Fatalf("Push(%d) failed: %v", v, err)
		}
	}
	if s.Len() != n {
		t.Errorf("Expected length %d, got %d", n, s.Len())
	}

	for want := n; want > 0; want-- {
		got, ok, err := s.Pop()
		if err != nil || !ok {
			t.Fatalf("Pop failed at %d: ok=%v err=%v", want, ok, err)
		}
		if got != want {
			t.Errorf("Expected %d, got %d", want, got)
		}
	}

	if _, ok, err := s.Pop(); ok || err != nil {
		t.Errorf("Expected empty pop to report ok=false err=nil, got ok=%v err=%v", ok, err)
	}
}

func testInsertRemoveOrder(t *testing.T, factory sector.PolicyFactory) {
	p := factory()
	requireFeature(t, p, sector.FeatureMutate)

	s, err := sector.FromPolicy[int](p, sector.WithInitialCapacity(16))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	for _, v := range []int{1, 2, 4, 5} {
		if err := s.Push(v); err != nil {
			t.Fatalf("Push(%d) failed: %v", v, err)
		}
	}

	if err := s.Insert(2, 3); err != nil {
		t.Fatalf("Insert in the middle failed: %v", err)
	}
	if err := s.Insert(0, 0); err != nil {
		t.Fatalf("Insert at the front failed: %v", err)
	}
	if err := s.Insert(s.Len(), 6); err != nil {
		t.Fatalf("Insert at the end failed: %v", err)
	}
	if want := []int{0, 1, 2, 3, 4, 5, 6}; !slices.Equal(s.Slice(), want) {
		t.Errorf("Expected %v after inserts, got %v", want, s.Slice())
	}

	removed, err := s.Remove(3)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected removed element 3, got %d", removed)
	}
	if removed, err = s.Remove(0); err != nil || removed != 0 {
		t.Errorf("Expected to remove 0 from the front, got %d (%v)", removed, err)
	}
	if want := []int{1, 2, 4, 5, 6}; !slices.Equal(s.Slice(), want) {
		t.Errorf("Expected %v after removes, got %v", want, s.Slice())
	}
}

func testFailureAtomicity(t *testing.T, factory sector.PolicyFactory) {
	budget := alloc.NewBudget(64)
	s, err := sector.FromPolicy[int](factory(), sector.WithInitialCapacity(4), sector.WithAllocator(budget))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	// push until the policy or the budget refuses
	failed := false
	for i := 0; i < 100 && !failed; i++ {
		before := takeSnapshot(s)
		if err := s.Push(i); err != nil {
			if !isKnownError(err) {
				t.Fatalf("Unexpected error type: %v", err)
			}
			checkUnchanged(t, "push", before, s)
			failed = true
		}
	}
	if !failed {
		t.Errorf("Expected a push to fail within a 64 byte budget")
	}

	before := takeSnapshot(s)
	if err := s.Insert(s.Len()+1, 0); err == nil {
		t.Errorf("Expected insert past the end to fail")
	}
	checkUnchanged(t, "insert", before, s)

	if _, err := s.Remove(s.Len()); err == nil {
		t.Errorf("Expected remove past the end to fail")
	}
	checkUnchanged(t, "remove", before, s)

	if budget.InUse() > budget.Limit() {
		t.Errorf("Budget overrun: %d of %d bytes in use", budget.InUse(), budget.Limit())
	}
}

func testCapacityOperations(t *testing.T, factory sector.PolicyFactory) {
	p := factory()
	s, err := sector.FromSlice[int](p, sequence(3), sector.WithInitialCapacity(3))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	err = s.Reserve(10)
	switch {
	case sector.SupportsFeature(p, sector.FeatureReserve):
		if err != nil {
			t.Fatalf("Reserve failed: %v", err)
		}
		if s.Cap() < s.Len()+10 {
			t.Errorf("Expected capacity >= %d after Reserve, got %d", s.Len()+10, s.Cap())
		}
	case sector.SupportsFeature(p, sector.FeatureMutate):
		if !errors.Is(err, sector.ErrUnsupported) {
			t.Errorf("Expected ErrUnsupported from Reserve, got %v", err)
		}
	default:
		if !errors.Is(err, sector.ErrLocked) {
			t.Errorf("Expected ErrLocked from Reserve, got %v", err)
		}
	}

	before := takeSnapshot(s)
	err = s.ShrinkToFit()
	switch {
	case sector.SupportsFeature(p, sector.FeatureShrinkToFit):
		if err != nil {
			t.Fatalf("ShrinkToFit failed: %v", err)
		}
		if s.Cap() != s.Len() {
			t.Errorf("Expected capacity %d after ShrinkToFit, got %d", s.Len(), s.Cap())
		}
	default:
		if err == nil {
			t.Errorf("Expected ShrinkToFit to fail")
		}
		checkUnchanged(t, "shrink to fit", before, s)
	}

	if want := sequence(3); !slices.Equal(s.Slice(), want) {
		t.Errorf("Expected elements %v, got %v", want, s.Slice())
	}
}

func testManualResize(t *testing.T, factory sector.PolicyFactory) {
	p := factory()
	requireFeature(t, p, sector.FeatureManualResize)

	s, err := sector.FromSlice[int](p, sequence(2), sector.WithInitialCapacity(2))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	capacity := s.Cap()
	if err := s.GrowBy(5); err != nil {
		t.Fatalf("GrowBy failed: %v", err)
	}
	if s.Cap() != capacity+5 {
		t.Errorf("Expected capacity %d after GrowBy, got %d", capacity+5, s.Cap())
	}

	if err := s.ShrinkBy(s.Cap()); !errors.Is(err, sector.ErrInvalidShrink) {
		t.Errorf("Expected ErrInvalidShrink when shrinking below length, got %v", err)
	}

	if err := s.ShrinkBy(s.Cap() - s.Len()); err != nil {
		t.Fatalf("ShrinkBy to length failed: %v", err)
	}
	if s.Cap() != s.Len() {
		t.Errorf("Expected capacity %d after ShrinkBy, got %d", s.Len(), s.Cap())
	}
	if want := sequence(2); !slices.Equal(s.Slice(), want) {
		t.Errorf("Expected elements %v, got %v", want, s.Slice())
	}
}

func testIteration(t *testing.T, factory sector.PolicyFactory) {
	values := sequence(10)
	s, err := sector.FromSlice[int](factory(), values)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	resizes := s.Resizes()

	// restartable
	for round := 0; round < 2; round++ {
		var got []int
		for i, v := range s.All() {
			if v != values[i] {
				t.Errorf("Expected element %d at index %d, got %d", values[i], i, v)
			}
			got = append(got, v)
		}
		if !slices.Equal(got, values) {
			t.Errorf("Round %d: expected %v, got %v", round, values, got)
		}
	}

	if got := slices.Collect(s.Values()); !slices.Equal(got, values) {
		t.Errorf("Expected values %v, got %v", values, got)
	}

	var backward []int
	for _, v := range s.Backward() {
		backward = append(backward, v)
	}
	reversed := slices.Clone(values)
	slices.Reverse(reversed)
	if !slices.Equal(backward, reversed) {
		t.Errorf("Expected backward %v, got %v", reversed, backward)
	}

	// early stop
	count := 0
	for range s.Values() {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("Expected iteration to stop after 3 elements, got %d", count)
	}

	if s.Resizes() != resizes {
		t.Errorf("Iteration must not resize the buffer (%d -> %d)", resizes, s.Resizes())
	}
}

func testClone(t *testing.T, factory sector.PolicyFactory) {
	s, err := sector.FromSlice[int](factory(), sequence(5))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	c, err := s.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	defer c.Close()

	if c.Len() != s.Len() || c.Cap() != s.Cap() {
		t.Errorf("Expected clone len=%d cap=%d, got len=%d cap=%d", s.Len(), s.Cap(), c.Len(), c.Cap())
	}

	ptr, ok := s.GetMut(0)
	if !ok {
		t.Fatalf("GetMut(0) failed")
	}
	*ptr = 100

	if v, _ := c.Get(0); v != 1 {
		t.Errorf("Clone must not share memory with the source, got %d", v)
	}
	if v, _ := s.Get(0); v != 100 {
		t.Errorf("Expected GetMut to modify the source, got %d", v)
	}
}

func testConversion(t *testing.T, factory sector.PolicyFactory) {
	for _, target := range []sector.Policy{
		sector.Normal{}, sector.Dynamic{}, sector.Fixed{},
		sector.Locked{}, sector.Manual{}, sector.Tight{},
	} {
		values := sequence(6)
		s, err := sector.FromSlice[int](factory(), values, sector.WithInitialCapacity(8))
		if err != nil {
			t.Fatalf("Failed to create container: %v", err)
		}
		capacity := s.Cap()

		converted, err := s.Convert(target)
		if err != nil {
			t.Fatalf("Convert to %s failed: %v", sector.PolicyName(target), err)
		}

		if !slices.Equal(converted.Slice(), values) {
			t.Errorf("Convert to %s: expected %v, got %v", sector.PolicyName(target), values, converted.Slice())
		}
		if s.Len() != 0 || s.Bytes() != 0 {
			t.Errorf("Convert to %s: expected empty source, got len=%d bytes=%d", sector.PolicyName(target), s.Len(), s.Bytes())
		}

		switch target.(type) {
		case sector.Tight:
			if converted.Cap() != len(values) {
				t.Errorf("Expected Tight capacity %d, got %d", len(values), converted.Cap())
			}
		case sector.Fixed, sector.Locked, sector.Normal, sector.Manual:
			if converted.Cap() != capacity {
				t.Errorf("Expected %s to keep capacity %d, got %d", sector.PolicyName(target), capacity, converted.Cap())
			}
		}
		if converted.Len() > converted.Cap() {
			t.Errorf("Convert to %s: length %d exceeds capacity %d", sector.PolicyName(target), converted.Len(), converted.Cap())
		}
		converted.Close()
	}
}

func testZeroSized(t *testing.T, factory sector.PolicyFactory) {
	p := factory()
	s, err := sector.FromPolicy[struct{}](p, sector.WithInitialCapacity(8))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	if sector.SupportsFeature(p, sector.FeatureMutate) {
		for i := 0; i < 8; i++ {
			if err := s.Push(struct{}{}); err != nil {
				t.Fatalf("Push %d of a zero-sized element failed: %v", i, err)
			}
		}
	}

	if s.Resizes() != 0 || s.Bytes() != 0 {
		t.Errorf("Zero-sized elements must never allocate, got %d resizes and %d bytes", s.Resizes(), s.Bytes())
	}
	if s.Len() > s.Cap() {
		t.Errorf("Length %d exceeds ceiling %d", s.Len(), s.Cap())
	}
	if _, ok := s.Get(s.Len()); ok {
		t.Errorf("Expected Get past the end to report ok=false")
	}
}

func testEdgeCases(t *testing.T, factory sector.PolicyFactory) {
	p := factory()
	s, err := sector.FromPolicy[int](p)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer s.Close()

	if !s.IsEmpty() {
		t.Errorf("Expected a new container to be empty")
	}
	if _, ok := s.Get(-1); ok {
		t.Errorf("Expected Get(-1) to report ok=false")
	}
	if _, ok := s.Get(0); ok {
		t.Errorf("Expected Get(0) on an empty container to report ok=false")
	}
	if _, ok := s.GetMut(0); ok {
		t.Errorf("Expected GetMut(0) on an empty container to report ok=false")
	}

	_, ok, err := s.Pop()
	if sector.SupportsFeature(p, sector.FeatureMutate) {
		if ok || err != nil {
			t.Errorf("Expected empty pop to report ok=false err=nil, got ok=%v err=%v", ok, err)
		}
		if err := s.Insert(-1, 1); !errors.Is(err, sector.ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange from Insert(-1), got %v", err)
		}
		if _, err := s.Remove(0); !errors.Is(err, sector.ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange from Remove(0), got %v", err)
		}
		if _, err := s.Drain(); err != nil {
			t.Errorf("Expected draining an empty container to succeed, got %v", err)
		}
	} else if !errors.Is(err, sector.ErrLocked) {
		t.Errorf("Expected ErrLocked from Pop, got %v", err)
	}
}
