package sector_test

import (
	"testing"

	"github.com/ValentinKolb/sector/lib/alloc"
	"github.com/ValentinKolb/sector/lib/sector"
	sectortesting "github.com/ValentinKolb/sector/lib/sector/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Conformance suite
// --------------------------------------------------------------------------

func TestPolicies(t *testing.T) {
	for _, name := range []string{"normal", "dynamic", "fixed", "locked", "manual", "tight"} {
		sectortesting.RunPolicyTests(t, name, func() sector.Policy {
			p, err := sector.NewPolicy(name)
			require.NoError(t, err)
			return p
		})
	}
}

func BenchmarkPolicies(b *testing.B) {
	for _, name := range sector.PolicyNames() {
		sectortesting.RunPolicyBenchmarks(b, name, func() sector.Policy {
			p, _ := sector.NewPolicy(name)
			return p
		})
	}
}

// --------------------------------------------------------------------------
// Policy behaviour
// --------------------------------------------------------------------------

func TestDynamic_GrowAndShrink(t *testing.T) {
	s, err := sector.FromPolicy[int](sector.Dynamic{}, sector.WithInitialCapacity(4))
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		require.NoError(t, s.Push(i))
	}
	assert.Equal(t, 4, s.Cap())

	require.NoError(t, s.Push(5))
	assert.Equal(t, 8, s.Cap(), "fifth push doubles the capacity")

	// length 4 <= 8/2: shrink to max(4, 6)
	_, _, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 6, s.Cap())

	// every further removal keeps shrinking while len <= cap/2
	for s.Len() > 2 {
		capBefore := s.Cap()
		_, _, err = s.Pop()
		require.NoError(t, err)
		if s.Len() <= capBefore/2 && capBefore >= 4 {
			assert.Equal(t, max(s.Len(), capBefore*3/4), s.Cap())
		} else {
			assert.Equal(t, capBefore, s.Cap())
		}
	}
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.Cap())
	assert.Equal(t, []int{1, 2}, s.Slice())
}

func TestDynamic_NoShrinkBelowFour(t *testing.T) {
	s, err := sector.FromSlice[int](sector.Dynamic{}, []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, s.Cap())

	_, _, err = s.Pop()
	require.NoError(t, err)
	_, _, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Cap())
}

func TestFixed_DeniesGrowth(t *testing.T) {
	s, err := sector.FromPolicy[int](sector.Fixed{}, sector.WithInitialCapacity(2))
	require.NoError(t, err)

	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))

	err = s.Push(3)
	require.ErrorIs(t, err, sector.ErrCapacityExceeded)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Cap())
	assert.Equal(t, 1, s.Resizes(), "only the initial allocation")

	assert.ErrorIs(t, s.Insert(0, 0), sector.ErrCapacityExceeded)
	assert.ErrorIs(t, s.Reserve(1), sector.ErrUnsupported)
	assert.ErrorIs(t, s.ShrinkToFit(), sector.ErrUnsupported)
	assert.ErrorIs(t, s.GrowBy(1), sector.ErrUnsupported)
	assert.Equal(t, []int{1, 2}, s.Slice())
}

func TestLocked_RejectsMutation(t *testing.T) {
	s, err := sector.FromSlice[int](sector.Normal{}, []int{1, 2, 3})
	require.NoError(t, err)
	s, err = s.ToLocked()
	require.NoError(t, err)

	assert.ErrorIs(t, s.Push(4), sector.ErrLocked)
	_, _, err = s.Pop()
	assert.ErrorIs(t, err, sector.ErrLocked)
	assert.ErrorIs(t, s.Insert(0, 0), sector.ErrLocked)
	_, err = s.Remove(0)
	assert.ErrorIs(t, err, sector.ErrLocked)
	assert.ErrorIs(t, s.Reserve(1), sector.ErrLocked)
	assert.ErrorIs(t, s.ShrinkToFit(), sector.ErrLocked)
	assert.ErrorIs(t, s.GrowBy(1), sector.ErrLocked)
	assert.ErrorIs(t, s.ShrinkBy(1), sector.ErrLocked)
	assert.ErrorIs(t, s.Clear(), sector.ErrLocked)
	_, err = s.Drain()
	assert.ErrorIs(t, err, sector.ErrLocked)

	for i := 0; i < 3; i++ {
		v, ok := s.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i+1, v)
	}
	assert.Equal(t, 3, s.Len())
}

func TestTight_CapacityFollowsLength(t *testing.T) {
	s, err := sector.FromPolicy[int](sector.Tight{})
	require.NoError(t, err)

	var grown []int
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Push(i))
		grown = append(grown, s.Cap())
	}
	assert.Equal(t, []int{1, 2, 3}, grown)

	var shrunk []int
	for !s.IsEmpty() {
		_, _, err := s.Pop()
		require.NoError(t, err)
		shrunk = append(shrunk, s.Cap())
	}
	assert.Equal(t, []int{2, 1, 0}, shrunk)
	assert.Zero(t, s.Bytes())
}

func TestManual_ExplicitResizeOnly(t *testing.T) {
	s, err := sector.FromPolicy[int](sector.Manual{})
	require.NoError(t, err)

	require.ErrorIs(t, s.Push(1), sector.ErrCapacityExceeded)

	require.NoError(t, s.GrowBy(2))
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	require.ErrorIs(t, s.Push(3), sector.ErrCapacityExceeded)

	require.NoError(t, s.Reserve(3))
	assert.Equal(t, 5, s.Cap(), "Manual reserves exactly")

	// removals never shrink on their own
	_, _, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 5, s.Cap())

	assert.ErrorIs(t, s.ShrinkBy(5), sector.ErrInvalidShrink)
	require.NoError(t, s.ShrinkBy(4))
	assert.Equal(t, 1, s.Cap())
	assert.Equal(t, []int{1}, s.Slice())
}

func TestNormal_Growth(t *testing.T) {
	s := sector.New[int]()
	assert.Equal(t, 0, s.Cap())

	var caps []int
	for i := 0; i < 9; i++ {
		require.NoError(t, s.Push(i))
		if len(caps) == 0 || caps[len(caps)-1] != s.Cap() {
			caps = append(caps, s.Cap())
		}
	}
	assert.Equal(t, []int{1, 2, 4, 8, 16}, caps)

	// Normal never shrinks on its own
	for !s.IsEmpty() {
		_, _, err := s.Pop()
		require.NoError(t, err)
	}
	assert.Equal(t, 16, s.Cap())

	require.NoError(t, s.ShrinkToFit())
	assert.Equal(t, 0, s.Cap())
}

// --------------------------------------------------------------------------
// Container behaviour
// --------------------------------------------------------------------------

func TestZeroSized_NeverAllocates(t *testing.T) {
	s := sector.New[struct{}]()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Push(struct{}{}))
	}
	assert.Equal(t, sector.Unbounded, s.Cap())
	assert.Zero(t, s.Resizes())
	assert.Zero(t, s.Bytes())

	for i := 0; i < 10; i++ {
		_, ok := s.Get(i)
		assert.True(t, ok, "index %d", i)
	}
	_, ok := s.Get(10)
	assert.False(t, ok)
}

func TestZeroSized_FixedCeiling(t *testing.T) {
	s, err := sector.FromPolicy[struct{}](sector.Fixed{}, sector.WithInitialCapacity(3))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Push(struct{}{}))
	}
	assert.ErrorIs(t, s.Push(struct{}{}), sector.ErrCapacityExceeded)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Cap())
	assert.Zero(t, s.Resizes())
}

func TestZeroSized_ManualCeiling(t *testing.T) {
	s, err := sector.FromPolicy[struct{}](sector.Manual{}, sector.WithInitialCapacity(1))
	require.NoError(t, err)

	require.NoError(t, s.Push(struct{}{}))
	require.ErrorIs(t, s.Push(struct{}{}), sector.ErrCapacityExceeded)
	require.NoError(t, s.GrowBy(1))
	require.NoError(t, s.Push(struct{}{}))
	assert.Equal(t, 2, s.Cap())
	assert.ErrorIs(t, s.ShrinkBy(1), sector.ErrInvalidShrink)
}

func TestRoundTrip_ReverseOrder(t *testing.T) {
	for _, p := range []sector.Policy{sector.Normal{}, sector.Dynamic{}, sector.Tight{}} {
		s, err := sector.FromPolicy[string](p)
		require.NoError(t, err)

		in := []string{"a", "b", "c", "d", "e"}
		for _, v := range in {
			require.NoError(t, s.Push(v))
		}
		var out []string
		for {
			v, ok, err := s.Pop()
			require.NoError(t, err)
			if !ok {
				break
			}
			out = append(out, v)
		}
		assert.Equal(t, []string{"e", "d", "c", "b", "a"}, out, sector.PolicyName(p))
	}
}

func TestInsertRemove_Bounds(t *testing.T) {
	s, err := sector.FromSlice[int](sector.Normal{}, []int{1, 2, 3})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Insert(4, 9), sector.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Insert(-1, 9), sector.ErrIndexOutOfRange)
	_, err = s.Remove(3)
	assert.ErrorIs(t, err, sector.ErrIndexOutOfRange)
	assert.Equal(t, []int{1, 2, 3}, s.Slice())

	require.NoError(t, s.Insert(3, 4))
	v, err := s.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, []int{1, 3, 4}, s.Slice())
}

func TestGetMut(t *testing.T) {
	s, err := sector.FromSlice[int](sector.Tight{}, []int{1, 2, 3})
	require.NoError(t, err)

	p, ok := s.GetMut(1)
	require.True(t, ok)
	*p = 20

	v, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, 20, v)

	_, ok = s.GetMut(3)
	assert.False(t, ok)
}

func TestAllocatorRefusal_KeepsState(t *testing.T) {
	// room for 4 int64 values, a resize to 8 needs 96 bytes while the old region is held
	budget := alloc.NewBudget(64)
	s, err := sector.FromPolicy[int64](sector.Normal{}, sector.WithInitialCapacity(4), sector.WithAllocator(budget))
	require.NoError(t, err)

	for i := int64(0); i < 4; i++ {
		require.NoError(t, s.Push(i))
	}

	err = s.Push(4)
	require.ErrorIs(t, err, sector.ErrAllocation)
	assert.Equal(t, []int64{0, 1, 2, 3}, s.Slice())
	assert.Equal(t, 4, s.Cap())
	assert.Equal(t, uint64(32), budget.InUse())
	assert.Equal(t, uint64(1), budget.Refusals())

	require.NoError(t, s.Close())
	assert.Zero(t, budget.InUse())
}

func TestRemove_RestoresOnFailure(t *testing.T) {
	// Tight reallocates on every removal, the shrink from 4 to 3 needs 24 bytes on top of 32
	budget := alloc.NewBudget(40)
	s, err := sector.FromSlice[int64](sector.Tight{}, []int64{1, 2, 3, 4}, sector.WithAllocator(budget))
	require.NoError(t, err)

	_, err = s.Remove(1)
	require.ErrorIs(t, err, sector.ErrAllocation)
	assert.Equal(t, []int64{1, 2, 3, 4}, s.Slice())

	_, _, err = s.Pop()
	require.ErrorIs(t, err, sector.ErrAllocation)
	assert.Equal(t, 4, s.Len())
}

func TestDrainAndClear(t *testing.T) {
	s, err := sector.FromSlice[int](sector.Dynamic{}, []int{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	out, err := s.Drain()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, out)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 6, s.Cap(), "drain consults the policy once")

	require.NoError(t, s.Push(1))
	require.NoError(t, s.Clear())
	assert.True(t, s.IsEmpty())
}

func TestClose_ReleasesBuffer(t *testing.T) {
	budget := alloc.NewBudget(1024)
	s, err := sector.FromSlice[int64](sector.Fixed{}, []int64{1, 2, 3}, sector.WithAllocator(budget))
	require.NoError(t, err)
	assert.Equal(t, uint64(24), budget.InUse())

	require.NoError(t, s.Close())
	assert.Zero(t, budget.InUse())
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Cap())
}

func TestFromSlice_CustomPolicyTooSmall(t *testing.T) {
	_, err := sector.FromSlice[int](capped{limit: 2}, []int{1, 2, 3})
	assert.ErrorIs(t, err, sector.ErrCapacityExceeded)
}

func TestNilPolicy(t *testing.T) {
	_, err := sector.FromPolicy[int](nil)
	assert.Error(t, err)

	s := sector.New[int]()
	_, err = s.Convert(nil)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	s, err := sector.FromSlice[int](sector.Tight{}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "sector[tight len=2 cap=2]", s.String())
	assert.Equal(t, "sector[normal len=0 cap=unbounded]", sector.New[struct{}]().String())
}

// capped is a custom policy that never allows more than limit slots
type capped struct{ limit int }

func (c capped) InitialCapacity(requested int) int { return min(requested, c.limit) }

func (c capped) OnSizeChange(_, newLen, oldCap int) sector.Decision {
	if newLen > c.limit {
		return sector.Deny(nil)
	}
	if newLen > oldCap {
		return sector.Grow(c.limit)
	}
	return sector.NoChange()
}

func TestCustomPolicy(t *testing.T) {
	s, err := sector.FromPolicy[int](capped{limit: 3})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Push(i))
	}
	assert.Equal(t, 3, s.Cap())
	assert.ErrorIs(t, s.Push(3), sector.ErrCapacityExceeded, "nil deny reason")

	// default features apply to policies without SupportsFeature
	assert.NoError(t, s.ShrinkToFit())
	assert.ErrorIs(t, s.GrowBy(1), sector.ErrUnsupported)
	assert.Contains(t, sector.PolicyName(capped{}), "capped")
}
