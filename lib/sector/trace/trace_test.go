package trace

import (
	"testing"

	"github.com/ValentinKolb/sector/lib/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Tight(t *testing.T) {
	s, err := sector.FromPolicy[int64](sector.Tight{})
	require.NoError(t, err)

	r := NewRecorder()
	for i := int64(0); i < 3; i++ {
		r.Observe("push", s, s.Push(i))
	}
	_, _, err = s.Pop()
	r.Observe("pop", s, err)

	steps := r.Steps()
	require.Len(t, steps, 4)
	for _, step := range steps {
		assert.True(t, step.Resized, step.Op)
		assert.Equal(t, step.Len, step.Cap, "tight keeps len == cap")
	}

	summary := r.Summary()
	assert.Equal(t, 4, summary.Steps)
	assert.EqualValues(t, 4, summary.Resizes)
	assert.Zero(t, summary.Failures)
	assert.Equal(t, 100.0, summary.MeanUtilization)
	assert.EqualValues(t, 24, summary.PeakBytes)
	assert.EqualValues(t, 16, summary.FinalBytes)
	assert.Equal(t, 3.0, summary.Capacity.Max)
	assert.Equal(t, 1.0, summary.Capacity.Min)
}

func TestRecorder_FailuresAndConversion(t *testing.T) {
	s, err := sector.FromPolicy[int64](sector.Fixed{}, sector.WithInitialCapacity(1))
	require.NoError(t, err)

	r := NewRecorder()
	r.Observe("push", s, s.Push(1))
	step := r.Observe("push", s, s.Push(2))
	assert.ErrorIs(t, step.Err, sector.ErrCapacityExceeded)
	assert.False(t, step.Resized)

	// the new container starts counting from its own allocation
	converted, err := s.ToNormal()
	require.NoError(t, err)
	step = r.Observe("convert", converted, err)
	assert.True(t, step.Resized)

	summary := r.Summary()
	assert.EqualValues(t, 1, summary.Failures)
	assert.EqualValues(t, 2, summary.Resizes, "initial allocation of each container")
}

func TestRecorder_ZeroSizedSkipsUtilization(t *testing.T) {
	s := sector.New[struct{}]()
	r := NewRecorder()
	r.Observe("push", s, s.Push(struct{}{}))

	summary := r.Summary()
	assert.Zero(t, summary.MeanUtilization)
	assert.Zero(t, summary.PeakBytes)
	assert.Equal(t, Stats{}, summary.Capacity)
}

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, stats.Mean)
	assert.Equal(t, 2.0, stats.StdDeviation)
	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 9.0, stats.Max)
	assert.InDelta(t, 2.0/9.0, stats.MinMaxRatio, 1e-9)

	assert.Equal(t, Stats{}, NewStats(nil))
}

func TestByteHistogram(t *testing.T) {
	h := NewByteHistogram()
	assert.Zero(t, h.PercentileEstimate(50))

	for i := 0; i < 9; i++ {
		h.AddSample(10)
	}
	h.AddSample(5000)

	assert.EqualValues(t, 10, h.Count())
	assert.EqualValues(t, (9*10+5000)/10, h.Average())
	assert.EqualValues(t, 8, h.PercentileEstimate(50), "first bucket reports half its boundary")
	assert.EqualValues(t, (4096+16384)/2, h.PercentileEstimate(100))
	assert.Zero(t, h.PercentileEstimate(101))

	h.AddSample(1 << 40)
	assert.EqualValues(t, uint64(4294967296)*2, h.PercentileEstimate(100))
}
