// Package trace records how the length and capacity of a container evolve over
// a sequence of operations.
//
// A Recorder is fed one observation per operation. It keeps the individual steps
// and aggregates them into a Summary: how often the buffer was resized, how
// full it was on average and how large it got.
package trace

import (
	"math"

	"github.com/rcrowley/go-metrics"
)

// Observable is the read-only view of a container a Recorder needs.
// *sector.Sector[T] satisfies it for every T.
type Observable interface {
	Len() int
	Cap() int
	Bytes() uint64
	Resizes() int
}

// Step is one recorded operation.
type Step struct {
	Op      string
	Err     error
	Len     int
	Cap     int
	Bytes   uint64
	Resized bool
}

// Recorder collects steps. It is not safe for concurrent use.
type Recorder struct {
	steps       []Step
	last        Observable
	lastResizes int

	utilization metrics.Histogram // percent of capacity in use, per step
	resizes     metrics.Counter
	failures    metrics.Counter
	sizes       *ByteHistogram
	capacities  []float64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		utilization: metrics.NewHistogram(metrics.NewUniformSample(1028)),
		resizes:     metrics.NewCounter(),
		failures:    metrics.NewCounter(),
		sizes:       NewByteHistogram(),
	}
}

// Observe records the state of s after op returned err.
// When a conversion swaps the container, all resizes of the new container so
// far are attributed to the step.
func (r *Recorder) Observe(op string, s Observable, err error) Step {
	resizes := s.Resizes()
	delta := resizes - r.lastResizes
	if s != r.last {
		delta = resizes
	}
	r.last, r.lastResizes = s, resizes

	step := Step{
		Op:      op,
		Err:     err,
		Len:     s.Len(),
		Cap:     s.Cap(),
		Bytes:   s.Bytes(),
		Resized: delta > 0,
	}
	r.steps = append(r.steps, step)

	r.resizes.Inc(int64(delta))
	if err != nil {
		r.failures.Inc(1)
	}
	r.sizes.AddSample(step.Bytes)
	if step.Cap > 0 && step.Cap != math.MaxInt {
		r.utilization.Update(int64(step.Len * 100 / step.Cap))
		r.capacities = append(r.capacities, float64(step.Cap))
	}
	return step
}

// Steps returns all recorded steps in order.
func (r *Recorder) Steps() []Step { return r.steps }

// Summary aggregates the recorded steps.
type Summary struct {
	Steps    int
	Failures int64
	Resizes  int64

	// utilization in percent, over all steps with a bounded, non-zero capacity
	MeanUtilization float64
	MinUtilization  int64
	P50Utilization  float64

	Capacity   Stats
	AvgBytes   uint64
	P95Bytes   uint64
	PeakBytes  uint64
	FinalBytes uint64
}

// Summary computes the aggregate over all steps recorded so far.
func (r *Recorder) Summary() Summary {
	snapshot := r.utilization.Snapshot()
	summary := Summary{
		Steps:           len(r.steps),
		Failures:        r.failures.Count(),
		Resizes:         r.resizes.Count(),
		MeanUtilization: snapshot.Mean(),
		MinUtilization:  snapshot.Min(),
		P50Utilization:  snapshot.Percentile(0.5),
		Capacity:        NewStats(r.capacities),
		AvgBytes:        r.sizes.Average(),
		P95Bytes:        r.sizes.PercentileEstimate(95),
	}
	for _, step := range r.steps {
		summary.PeakBytes = max(summary.PeakBytes, step.Bytes)
	}
	if n := len(r.steps); n > 0 {
		summary.FinalBytes = r.steps[n-1].Bytes
	}
	return summary
}
