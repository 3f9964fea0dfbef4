// Package score implements the metric suite and composite trust scoring
// for model bundles.
package score

import (
	"context"
	"math"
)

// Stable report keys for each metric. The report format depends on these,
// so they are fixed here rather than derived from type names.
const (
	MetricNetScore       = "net_score"
	MetricRampUp         = "ramp_up_time"
	MetricBusFactor      = "bus_factor"
	MetricClaims         = "performance_claims"
	MetricLicense        = "license"
	MetricSize           = "size_score"
	MetricAvailability   = "dataset_and_code_score"
	MetricDatasetQuality = "dataset_quality"
	MetricCodeQuality    = "code_quality"
)

// Metric is one independent scoring rule. Evaluate never panics and never
// returns an error: any internal failure yields the metric's zero-evidence
// score. Implementations are deterministic given fixed metadata.
type Metric interface {
	Name() string
	Evaluate(ctx context.Context, m *Model) Score
}

// Score is either a single scalar in [0,1] or a per-device breakdown
// (resource footprint only). The zero value is a scalar 0.
type Score struct {
	value   float64
	devices map[string]float64
}

// Scalar wraps a plain float score.
func Scalar(v float64) Score {
	return Score{value: v}
}

// Breakdown wraps a per-device score mapping.
func Breakdown(devices map[string]float64) Score {
	return Score{devices: devices}
}

// IsBreakdown reports whether the score is a per-device mapping.
func (s Score) IsBreakdown() bool {
	return s.devices != nil
}

// Value reduces the score to a single number: the scalar itself, or the
// arithmetic mean over present device entries (empty mapping reduces to 0).
func (s Score) Value() float64 {
	if s.devices == nil {
		return s.value
	}
	if len(s.devices) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.devices {
		sum += v
	}
	return sum / float64(len(s.devices))
}

// Devices returns the per-device mapping, nil for scalar scores.
func (s Score) Devices() map[string]float64 {
	return s.devices
}

// Report returns the rounded report representation: a float64 for scalars,
// a map[string]float64 for breakdowns.
func (s Score) Report() any {
	if s.devices == nil {
		return round2(s.value)
	}
	out := make(map[string]float64, len(s.devices))
	for k, v := range s.devices {
		out[k] = round2(v)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
