// Package histogram bins pixel samples into fixed-width intensity bins.
//
// Every histogram of one analysis is binned over the same [Min, Max] domain,
// the dynamic range of the whole image, so counts from different blocks are
// directly comparable.
package histogram

import (
	"math"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/pixel"
)

const (
	MinBins = 2
	MaxBins = 65535
)

// Range is the binning domain of one channel.
type Range struct {
	Min, Max float32
}

// Ranges returns the observed [min, max] of every channel of buf.
func Ranges(buf pixel.Region) []Range {
	ch := buf.Channels()
	_, h := buf.Size()

	out := make([]Range, ch)
	for c := range out {
		out[c] = Range{Min: float32(math.Inf(1)), Max: float32(math.Inf(-1))}
	}
	for y := 0; y < h; y++ {
		line := buf.Scanline(y)
		for i, v := range line {
			r := &out[i%ch]
			if v < r.Min {
				r.Min = v
			}
			if v > r.Max {
				r.Max = v
			}
		}
	}
	return out
}

// Bin maps v to its bin index among n bins. Values at or above Max fall in
// the last bin, which also holds everything when Min == Max.
func (r Range) Bin(v float32, n int) int {
	span := float64(r.Max) - float64(r.Min)
	if span <= 0 {
		return n - 1
	}
	i := int(math.Floor((float64(v) - float64(r.Min)) / span * float64(n)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Histogram holds the bin counts of one channel.
type Histogram struct {
	Channel int
	Counts  []uint32
}

func ValidateBins(binCount int) error {
	if binCount < MinBins || binCount > MaxBins {
		return faults.InvalidConfig("bin count must be in [%d, %d], got %d", MinBins, MaxBins, binCount)
	}
	return nil
}

// New returns an empty histogram.
func New(channel, binCount int) Histogram {
	return Histogram{Channel: channel, Counts: make([]uint32, binCount)}
}

func (h Histogram) Bins() int { return len(h.Counts) }

// Total is the number of samples binned into h.
func (h Histogram) Total() uint64 {
	var n uint64
	for _, c := range h.Counts {
		n += uint64(c)
	}
	return n
}

// Merge adds the counts of src into h. Both must have the same bin count.
func (h Histogram) Merge(src Histogram) {
	for i, c := range src.Counts {
		h.Counts[i] += c
	}
}

// Normalized writes the bin frequencies of h, summing to 1, into dst and
// returns it. An empty histogram yields all zeros.
func (h Histogram) Normalized(dst []float64) []float64 {
	dst = dst[:0]
	total := float64(h.Total())
	for _, c := range h.Counts {
		if total == 0 {
			dst = append(dst, 0)
			continue
		}
		dst = append(dst, float64(c)/total)
	}
	return dst
}

// Compute bins channel of every sample in r over rng.
func Compute(r pixel.Region, channel, binCount int, rng Range) (Histogram, error) {
	if err := ValidateBins(binCount); err != nil {
		return Histogram{}, err
	}
	ch := r.Channels()
	if channel < 0 || channel >= ch {
		return Histogram{}, faults.InvalidConfig("channel %d out of range [0, %d)", channel, ch)
	}

	h := New(channel, binCount)
	_, height := r.Size()
	for y := 0; y < height; y++ {
		line := r.Scanline(y)
		for i := channel; i < len(line); i += ch {
			h.Counts[rng.Bin(line[i], binCount)]++
		}
	}
	return h, nil
}

// ComputeAll returns one histogram per channel of r. ranges is indexed by
// channel.
func ComputeAll(r pixel.Region, binCount int, ranges []Range) ([]Histogram, error) {
	if len(ranges) != r.Channels() {
		return nil, faults.InvalidConfig("%d ranges for %d channels", len(ranges), r.Channels())
	}
	out := make([]Histogram, r.Channels())
	for c := range out {
		h, err := Compute(r, c, binCount, ranges[c])
		if err != nil {
			return nil, err
		}
		out[c] = h
	}
	return out, nil
}
