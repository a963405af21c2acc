// Package pixel holds the in-memory image representation used by the
// analysis core: the immutable Buffer, its clamp-to-edge padded copy and
// the block grid laid over it.
package pixel

import (
	"math"

	"github.com/ivlev/imgforensics/internal/faults"
)

// Region is a rectangular area of samples readable one scanline at a time.
// Both whole buffers and blocks implement it.
type Region interface {
	Size() (width, height int)
	Channels() int
	// Scanline returns the interleaved samples of row y, Width*Channels long.
	Scanline(y int) []float32
}

// Buffer is a decoded image: row-major, channel-interleaved samples.
// A Buffer must not be modified after construction; the analysis only
// borrows it.
type Buffer struct {
	width    int
	height   int
	channels int
	stride   int
	samples  []float32
}

// New wraps samples without copying them. stride is the distance between
// rows in samples and must be at least width*channels.
func New(width, height, channels, stride int, samples []float32) (*Buffer, error) {
	b := &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		stride:   stride,
		samples:  samples,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewPacked is New with stride == width*channels.
func NewPacked(width, height, channels int, samples []float32) (*Buffer, error) {
	return New(width, height, channels, width*channels, samples)
}

// Validate reports whether the buffer satisfies its invariants. Every
// sample must be finite.
func (b *Buffer) Validate() error {
	switch {
	case b == nil:
		return faults.MalformedInput("nil buffer")
	case b.width <= 0 || b.height <= 0:
		return faults.MalformedInput("zero dimensions %dx%d", b.width, b.height)
	case b.channels <= 0:
		return faults.MalformedInput("channel count %d", b.channels)
	case b.stride < b.width*b.channels:
		return faults.MalformedInput("stride %d shorter than row of %d samples", b.stride, b.width*b.channels)
	case len(b.samples) != b.height*b.stride:
		return faults.MalformedInput("sample count %d, want %d", len(b.samples), b.height*b.stride)
	}
	for y := 0; y < b.height; y++ {
		for i, v := range b.Scanline(y) {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return faults.MalformedInput("non-finite sample %v at (%d, %d) channel %d",
					v, i/b.channels, y, i%b.channels)
			}
		}
	}
	return nil
}

func (b *Buffer) Width() int    { return b.width }
func (b *Buffer) Height() int   { return b.height }
func (b *Buffer) Channels() int { return b.channels }
func (b *Buffer) Stride() int   { return b.stride }

func (b *Buffer) Size() (int, int) { return b.width, b.height }

func (b *Buffer) Scanline(y int) []float32 {
	off := y * b.stride
	return b.samples[off : off+b.width*b.channels]
}

// At returns channel c of the pixel at (x, y).
func (b *Buffer) At(x, y, c int) float32 {
	return b.samples[y*b.stride+x*b.channels+c]
}
