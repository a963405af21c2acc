package report

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ivlev/imgforensics/internal/faults"
)

type PolicyKind string

const (
	// Fixed uses Value as the threshold.
	Fixed PolicyKind = "fixed"
	// MeanPlusK uses location + Value·scale of the smoothed map, with robust
	// estimates of location and scale: the median and 1.4826·MAD (the
	// population standard deviation when the MAD is zero), not the plain
	// mean and standard deviation.
	MeanPlusK PolicyKind = "mean_plus_k"
)

// madScale turns a median absolute deviation into a standard deviation
// estimate for normally distributed data.
const madScale = 1.4826

// ThresholdPolicy decides which smoothed anomaly values count as suspect.
type ThresholdPolicy struct {
	Kind  PolicyKind `yaml:"kind"`
	Value float64    `yaml:"value"`
}

func FixedThreshold(v float64) ThresholdPolicy {
	return ThresholdPolicy{Kind: Fixed, Value: v}
}

func MeanPlusKThreshold(k float64) ThresholdPolicy {
	return ThresholdPolicy{Kind: MeanPlusK, Value: k}
}

// ParsePolicy reads "fixed:0.3" or "mean+k:2". "mean+k" is the robust
// MeanPlusK policy.
func ParsePolicy(s string) (ThresholdPolicy, error) {
	name, arg, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ThresholdPolicy{}, faults.InvalidConfig("threshold policy %q: want kind:value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return ThresholdPolicy{}, faults.InvalidConfig("threshold policy %q: %v", s, err)
	}

	var p ThresholdPolicy
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fixed":
		p = FixedThreshold(v)
	case "mean+k", "mean_plus_k", "meanplusk":
		p = MeanPlusKThreshold(v)
	default:
		return ThresholdPolicy{}, faults.InvalidConfig("unknown threshold policy %q", name)
	}
	return p, p.Validate()
}

func (p ThresholdPolicy) Validate() error {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return faults.InvalidConfig("threshold value %v", p.Value)
	}
	switch p.Kind {
	case Fixed:
		if p.Value < 0 {
			return faults.InvalidConfig("fixed threshold must be >= 0, got %v", p.Value)
		}
	case MeanPlusK:
		if p.Value < 0 {
			return faults.InvalidConfig("k must be >= 0, got %v", p.Value)
		}
	default:
		return faults.InvalidConfig("unknown threshold policy %q", p.Kind)
	}
	return nil
}

func (p ThresholdPolicy) String() string {
	switch p.Kind {
	case Fixed:
		return fmt.Sprintf("fixed:%g", p.Value)
	case MeanPlusK:
		return fmt.Sprintf("mean+k:%g", p.Value)
	}
	return string(p.Kind)
}

// Threshold computes the threshold for values.
//
// MeanPlusK estimates the mean and the standard deviation robustly, as the
// median and 1.4826·MAD, so suspect blocks do not raise their own
// threshold. When more than half of the values are identical the MAD is
// zero and the population standard deviation is the scale instead.
func (p ThresholdPolicy) Threshold(values []float64) float64 {
	switch {
	case p.Kind == Fixed:
		return p.Value
	case len(values) == 0:
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	med := median(sorted)

	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - med)
	}
	slices.Sort(dev)
	scale := madScale * median(dev)

	if scale == 0 {
		scale = stddev(values)
	}
	return med + p.Value*scale
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
