package sector

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// containerMetrics is the set all containers report to.
var containerMetrics = metrics.NewSet()

// instruments holds the per-policy metric handles of one container.
type instruments struct {
	grows     *metrics.Counter
	shrinks   *metrics.Counter
	denials   *metrics.Counter
	allocated *metrics.Counter
	capacity  *metrics.Histogram
}

func newInstruments(policy string) instruments {
	return instruments{
		grows:     containerMetrics.GetOrCreateCounter(fmt.Sprintf(`sector_resizes_total{policy=%q,direction="grow"}`, policy)),
		shrinks:   containerMetrics.GetOrCreateCounter(fmt.Sprintf(`sector_resizes_total{policy=%q,direction="shrink"}`, policy)),
		denials:   containerMetrics.GetOrCreateCounter(fmt.Sprintf(`sector_denials_total{policy=%q}`, policy)),
		allocated: containerMetrics.GetOrCreateCounter(fmt.Sprintf(`sector_allocated_bytes_total{policy=%q}`, policy)),
		capacity:  containerMetrics.GetOrCreateHistogram(fmt.Sprintf(`sector_resize_capacity{policy=%q}`, policy)),
	}
}

// recordResize is called after a successful buffer resize.
func (m instruments) recordResize(oldCap, newCap int, newBytes uint64) {
	if newCap > oldCap {
		m.grows.Inc()
		m.allocated.Add(int(newBytes))
	} else {
		m.shrinks.Inc()
	}
	m.capacity.Update(float64(newCap))
}

// WriteMetrics writes the metrics of all containers in Prometheus text format.
func WriteMetrics(w io.Writer) {
	containerMetrics.WritePrometheus(w)
}
