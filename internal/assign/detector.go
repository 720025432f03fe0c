package assign

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// actuationSpread is the minimum |min-mean| + |max-mean| for a control to
// count as actuated. Samples are in -1..1, so the spread is at most 2.
const actuationSpread = 1.5

// InputSummary keeps running statistics for one control without storing
// the samples.
type InputSummary struct {
	Min   float32
	Max   float32
	Sum   float32
	Mean  float32
	Count int
}

func newInputSummary() *InputSummary {
	return &InputSummary{
		Min: float32(math.Inf(1)),
		Max: float32(math.Inf(-1)),
	}
}

func (s *InputSummary) Add(v float32) {
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
	s.Sum += v
	s.Count++
	s.Mean = s.Sum / float32(s.Count)
}

// Spread is the distance of both extremes from the mean.
func (s *InputSummary) Spread() float32 {
	if s.Count == 0 {
		return 0
	}
	return abs(s.Min-s.Mean) + abs(s.Max-s.Mean)
}

func (s *InputSummary) Actuated() bool {
	return s.Spread() > actuationSpread
}

func (s *InputSummary) String() string {
	return fmt.Sprintf("Mean: %g Min: %g Max: %g Sum: %g Count: %d", s.Mean, s.Min, s.Max, s.Sum, s.Count)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Detector classifies which controls are being actuated from a stream of
// samples keyed by control id.
type Detector[K ~int] struct {
	stats map[K]*InputSummary
}

func NewDetector[K ~int]() *Detector[K] {
	return &Detector[K]{
		stats: make(map[K]*InputSummary),
	}
}

// Add records one sample for id.
func (d *Detector[K]) Add(id K, value float32) {
	s, ok := d.stats[id]
	if !ok {
		s = newInputSummary()
		d.stats[id] = s
	}
	s.Add(value)
}

// Summary returns the statistics for id, or nil if it has no samples.
func (d *Detector[K]) Summary(id K) *InputSummary {
	return d.stats[id]
}

func (d *Detector[K]) HasAnyActuated() bool {
	for _, s := range d.stats {
		if s.Actuated() {
			return true
		}
	}
	return false
}

// Actuated returns every actuated control, lowest id first.
func (d *Detector[K]) Actuated() []K {
	var ids []K
	for id, s := range d.stats {
		if s.Actuated() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Reset drops every summary.
func (d *Detector[K]) Reset() {
	clear(d.stats)
}

func (d *Detector[K]) String() string {
	ids := make([]K, 0, len(d.stats))
	for id := range d.stats {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "Control %v -> %s\n", id, d.stats[id])
	}
	return sb.String()
}
