// Package divergence scores how far each block's histogram departs from the
// histograms around it.
package divergence

import "github.com/ivlev/imgforensics/internal/histogram"

// Eps keeps empty bins from dividing by zero.
const Eps = 1e-9

// ChiSquare returns the chi-square distance between c and r after both are
// normalized to sum to 1:
//
//	D = Σ (c_i - r_i)² / (c_i + r_i + Eps)
//
// The result is 0 for identical distributions and never negative. Both
// histograms must have the same number of bins.
func ChiSquare(c, r histogram.Histogram) float64 {
	return chiSquare(c, r, make([]float64, 0, c.Bins()), make([]float64, 0, r.Bins()))
}

// chiSquare is ChiSquare with caller-provided scratch space.
func chiSquare(c, r histogram.Histogram, cs, rs []float64) float64 {
	cs = c.Normalized(cs)
	rs = r.Normalized(rs)

	var d float64
	for i, ci := range cs {
		diff := ci - rs[i]
		d += diff * diff / (ci + rs[i] + Eps)
	}
	return d
}
