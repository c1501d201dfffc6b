package sector_test

import (
	"testing"

	"github.com/ValentinKolb/sector/lib/alloc"
	"github.com/ValentinKolb/sector/lib/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Settle(t *testing.T) {
	tests := []struct {
		name    string
		convert func(*sector.Sector[int]) (*sector.Sector[int], error)
		wantCap int
	}{
		{"normal keeps capacity", (*sector.Sector[int]).ToNormal, 16},
		{"dynamic shrinks", (*sector.Sector[int]).ToDynamic, 12},
		{"fixed freezes", (*sector.Sector[int]).ToFixed, 16},
		{"locked freezes", (*sector.Sector[int]).ToLocked, 16},
		{"manual keeps capacity", (*sector.Sector[int]).ToManual, 16},
		{"tight trims", (*sector.Sector[int]).ToTight, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := sector.FromSlice[int](sector.Normal{}, []int{1, 2, 3}, sector.WithInitialCapacity(16))
			require.NoError(t, err)

			dst, err := tt.convert(src)
			require.NoError(t, err)

			assert.Equal(t, []int{1, 2, 3}, dst.Slice())
			assert.Equal(t, tt.wantCap, dst.Cap())
			assert.True(t, src.IsEmpty())
			assert.Zero(t, src.Bytes())
		})
	}
}

func TestConvert_FixedDeniesAfterwards(t *testing.T) {
	src, err := sector.FromSlice[int](sector.Normal{}, []int{1, 2})
	require.NoError(t, err)

	fixed, err := src.ToFixed()
	require.NoError(t, err)
	assert.ErrorIs(t, fixed.Push(3), sector.ErrCapacityExceeded)

	// converting back lifts the restriction
	normal, err := fixed.ToNormal()
	require.NoError(t, err)
	require.NoError(t, normal.Push(3))
	assert.Equal(t, []int{1, 2, 3}, normal.Slice())
}

func TestConvert_FailureKeepsSource(t *testing.T) {
	// the new buffer cannot be allocated while the old one is held
	budget := alloc.NewBudget(48)
	src, err := sector.FromSlice[int64](sector.Normal{}, []int64{1, 2, 3, 4}, sector.WithAllocator(budget))
	require.NoError(t, err)

	_, err = src.ToFixed()
	require.ErrorIs(t, err, sector.ErrAllocation)
	assert.Equal(t, []int64{1, 2, 3, 4}, src.Slice())
	assert.Equal(t, uint64(32), budget.InUse())

	// Tight only needs what the elements need, but still on top of the source
	_, err = src.ToTight()
	require.ErrorIs(t, err, sector.ErrAllocation)
	assert.Equal(t, 4, src.Len())
}

func TestConvert_ReleasesSourceBudget(t *testing.T) {
	budget := alloc.NewBudget(1024)
	src, err := sector.FromSlice[int64](sector.Normal{}, []int64{1, 2, 3}, sector.WithInitialCapacity(8), sector.WithAllocator(budget))
	require.NoError(t, err)
	assert.Equal(t, uint64(64), budget.InUse())

	dst, err := src.ToTight()
	require.NoError(t, err)
	assert.Equal(t, uint64(24), budget.InUse())

	require.NoError(t, dst.Close())
	assert.Zero(t, budget.InUse())
}

func TestConvert_ZeroSized(t *testing.T) {
	src := sector.New[struct{}]()
	for i := 0; i < 5; i++ {
		require.NoError(t, src.Push(struct{}{}))
	}

	fixed, err := src.ToFixed()
	require.NoError(t, err)
	assert.Equal(t, 5, fixed.Len())
	assert.Equal(t, sector.Unbounded, fixed.Cap(), "no ceiling to freeze")

	tight, err := fixed.ToTight()
	require.NoError(t, err)
	assert.Equal(t, 5, tight.Cap())

	locked, err := tight.ToLocked()
	require.NoError(t, err)
	assert.ErrorIs(t, locked.Push(struct{}{}), sector.ErrLocked)
	assert.Zero(t, locked.Resizes())
}
