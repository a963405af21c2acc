package pixel

import (
	"image"
	"iter"

	"github.com/ivlev/imgforensics/internal/faults"
)

// Block is one tile of a Grid: its grid coordinates, its pixel rectangle and
// a borrowed view of the padded samples. A Block is only valid while the
// Padded buffer it came from is alive.
type Block struct {
	Row, Col      int
	X, Y          int
	Width, Height int

	buf *Buffer
}

func (b Block) Size() (int, int) { return b.Width, b.Height }
func (b Block) Channels() int    { return b.buf.channels }

func (b Block) Scanline(y int) []float32 {
	off := (b.Y+y)*b.buf.stride + b.X*b.buf.channels
	return b.buf.samples[off : off+b.Width*b.buf.channels]
}

// Rect returns the pixel rectangle covered by the block.
func (b Block) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Grid is the block tiling of a Padded buffer.
type Grid struct {
	padded    *Padded
	blockSize int
	rows      int
	cols      int
}

// Partition lays a grid of blockSize×blockSize tiles over p.
func Partition(p *Padded, blockSize int) (*Grid, error) {
	if blockSize < 1 {
		return nil, faults.InvalidConfig("block size must be >= 1, got %d", blockSize)
	}
	if p == nil || p.Buffer == nil {
		return nil, faults.MalformedInput("nil padded buffer")
	}
	if p.width%blockSize != 0 || p.height%blockSize != 0 {
		return nil, faults.InvalidConfig("block size %d does not divide %dx%d", blockSize, p.width, p.height)
	}

	return &Grid{
		padded:    p,
		blockSize: blockSize,
		rows:      p.height / blockSize,
		cols:      p.width / blockSize,
	}, nil
}

func (g *Grid) Rows() int      { return g.rows }
func (g *Grid) Cols() int      { return g.cols }
func (g *Grid) Len() int       { return g.rows * g.cols }
func (g *Grid) BlockSize() int { return g.blockSize }

// Index maps grid coordinates to the row-major position used by every
// per-block slice in the pipeline.
func (g *Grid) Index(row, col int) int { return row*g.cols + col }

func (g *Grid) At(row, col int) Block {
	return Block{
		Row:    row,
		Col:    col,
		X:      col * g.blockSize,
		Y:      row * g.blockSize,
		Width:  g.blockSize,
		Height: g.blockSize,
		buf:    g.padded.Buffer,
	}
}

// All yields every block in row-major order. Each call starts over.
func (g *Grid) All() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for row := 0; row < g.rows; row++ {
			for col := 0; col < g.cols; col++ {
				if !yield(g.At(row, col)) {
					return
				}
			}
		}
	}
}
