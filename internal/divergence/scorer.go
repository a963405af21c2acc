package divergence

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/histogram"
	"github.com/ivlev/imgforensics/internal/system"
)

// Scorer compares every block with the merged histograms of the blocks
// within Radius (Chebyshev distance) of it. When a block has no neighbors
// the whole-image histogram is used instead.
type Scorer struct {
	Radius  int
	Workers int
}

// Score returns one anomaly score per block, row-major. The grid must be
// fully populated; it is only read.
func (s Scorer) Score(ctx context.Context, grid *histogram.Grid) ([]float64, error) {
	if s.Radius < 0 {
		return nil, faults.InvalidConfig("neighborhood radius must be >= 0, got %d", s.Radius)
	}

	// Дальше края сетки соседей нет: радиус больше не нужен
	radius := min(s.Radius, max(grid.Rows, grid.Cols))
	global := grid.Global()
	scores := make([]float64, grid.Rows*grid.Cols)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))

	for row := 0; row < grid.Rows; row++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ref := make([]histogram.Histogram, grid.Channels)
			for c := range ref {
				ref[c] = histogram.Histogram{Channel: c, Counts: system.GetCounts(grid.Bins)}
			}
			defer func() {
				for _, h := range ref {
					system.PutCounts(h.Counts)
				}
			}()
			cs := make([]float64, 0, grid.Bins)
			rs := make([]float64, 0, grid.Bins)

			for col := 0; col < grid.Cols; col++ {
				if err := gctx.Err(); err != nil {
					return faults.Cancelled(err)
				}
				scores[row*grid.Cols+col] = scoreBlock(grid, global, ref, cs, rs, radius, row, col)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, faults.Cancelled(err)
	}
	return scores, nil
}

func scoreBlock(grid *histogram.Grid, global, ref []histogram.Histogram, cs, rs []float64, radius, row, col int) float64 {
	for _, h := range ref {
		clear(h.Counts)
	}

	neighbors := 0
	for r := max(0, row-radius); r <= min(grid.Rows-1, row+radius); r++ {
		for c := max(0, col-radius); c <= min(grid.Cols-1, col+radius); c++ {
			if r == row && c == col {
				continue
			}
			for ch, h := range grid.At(r, c) {
				ref[ch].Merge(h)
			}
			neighbors++
		}
	}

	reference := ref
	if neighbors == 0 {
		reference = global
	}

	block := grid.At(row, col)
	var sum float64
	for ch := range block {
		sum += chiSquare(block[ch], reference[ch], cs, rs)
	}
	return sum / float64(len(block))
}
