package pixel

import "github.com/ivlev/imgforensics/internal/faults"

// Padded is a copy of a Buffer extended to whole multiples of a block size.
// It owns its samples and is read-only after Pad returns.
type Padded struct {
	*Buffer
	sourceWidth  int
	sourceHeight int
	padRight     int
	padBottom    int
}

func (p *Padded) PadRight() int  { return p.padRight }
func (p *Padded) PadBottom() int { return p.padBottom }

// SourceSize returns the dimensions of the buffer before padding.
func (p *Padded) SourceSize() (int, int) { return p.sourceWidth, p.sourceHeight }

// Pad copies buf into fresh storage whose width and height are multiples of
// blockSize. Added columns and rows repeat the nearest edge pixel, so the
// border adds no values that are absent from the image itself.
// The copy is made even when no padding is needed.
func Pad(buf *Buffer, blockSize int) (*Padded, error) {
	if blockSize < 1 {
		return nil, faults.InvalidConfig("block size must be >= 1, got %d", blockSize)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	padRight := (blockSize - buf.width%blockSize) % blockSize
	padBottom := (blockSize - buf.height%blockSize) % blockSize

	ch := buf.channels
	w := buf.width + padRight
	h := buf.height + padBottom
	stride := w * ch
	samples := make([]float32, h*stride)

	for y := 0; y < h; y++ {
		src := buf.Scanline(min(y, buf.height-1))
		dst := samples[y*stride : (y+1)*stride]
		copy(dst, src)

		edge := src[len(src)-ch:]
		for x := buf.width; x < w; x++ {
			copy(dst[x*ch:(x+1)*ch], edge)
		}
	}

	return &Padded{
		Buffer: &Buffer{
			width:    w,
			height:   h,
			channels: ch,
			stride:   stride,
			samples:  samples,
		},
		sourceWidth:  buf.width,
		sourceHeight: buf.height,
		padRight:     padRight,
		padBottom:    padBottom,
	}, nil
}
