package histogram

import "github.com/ivlev/imgforensics/internal/faults"

// Grid stores the per-channel histograms of every block, addressed by
// (row, col) in row-major order.
type Grid struct {
	Rows, Cols int
	Channels   int
	Bins       int

	cells [][]Histogram
}

func NewGrid(rows, cols, channels, bins int) *Grid {
	return &Grid{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Bins:     bins,
		cells:    make([][]Histogram, rows*cols),
	}
}

// Set stores the histograms of block (row, col). Distinct cells may be set
// from different goroutines.
func (g *Grid) Set(row, col int, hs []Histogram) error {
	if len(hs) != g.Channels {
		return faults.InvalidConfig("block (%d,%d): %d histograms for %d channels", row, col, len(hs), g.Channels)
	}
	for _, h := range hs {
		if h.Bins() != g.Bins {
			return faults.InvalidConfig("block (%d,%d): %d bins, grid uses %d", row, col, h.Bins(), g.Bins)
		}
	}
	g.cells[row*g.Cols+col] = hs
	return nil
}

func (g *Grid) At(row, col int) []Histogram {
	return g.cells[row*g.Cols+col]
}

// Global merges all block histograms into whole-image histograms.
func (g *Grid) Global() []Histogram {
	out := make([]Histogram, g.Channels)
	for c := range out {
		out[c] = New(c, g.Bins)
	}
	for _, hs := range g.cells {
		for c, h := range hs {
			out[c].Merge(h)
		}
	}
	return out
}
