package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/imgforensics/internal/config"
	"github.com/ivlev/imgforensics/internal/divergence"
	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/histogram"
	"github.com/ivlev/imgforensics/internal/pixel"
	"github.com/ivlev/imgforensics/internal/report"
	"github.com/ivlev/imgforensics/internal/system"
)

// Analyze runs the block analysis on buf and returns its report.
//
// Pipeline: pad -> partition -> per-block histograms -> (barrier) ->
// neighborhood divergence -> aggregation. Per-block work runs on at most
// cfg.Workers goroutines; the report is identical for any worker count.
// On any error, including cancellation of ctx, no report is returned.
func Analyze(ctx context.Context, buf *pixel.Buffer, cfg config.Config) (*report.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, faults.Cancelled(err)
	}

	logger := zerolog.Ctx(ctx)
	workers := cfg.Workers
	if workers == 0 {
		workers = system.DefaultWorkers(ctx)
	}
	startTime := time.Now()

	// Диапазон всего изображения: общий для всех блоков
	ranges := histogram.Ranges(buf)

	padded, err := pixel.Pad(buf, cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	grid, err := pixel.Partition(padded, cfg.BlockSize)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("width", buf.Width()).
		Int("height", buf.Height()).
		Int("channels", buf.Channels()).
		Int("pad_right", padded.PadRight()).
		Int("pad_bottom", padded.PadBottom()).
		Int("rows", grid.Rows()).
		Int("cols", grid.Cols()).
		Int("workers", workers).
		Msg("block grid ready")

	histStart := time.Now()
	hists, err := computeHistograms(ctx, grid, ranges, cfg.BinCount, workers)
	if err != nil {
		return nil, err
	}
	histEnd := time.Now()

	scorer := divergence.Scorer{Radius: cfg.NeighborhoodRadius, Workers: workers}
	scores, err := scorer.Score(ctx, hists)
	if err != nil {
		return nil, err
	}
	scoreEnd := time.Now()

	rep, err := report.Aggregate(scores, grid.Rows(), grid.Cols(), cfg.Threshold)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Dur("histograms", histEnd.Sub(histStart)).
		Dur("scoring", scoreEnd.Sub(histEnd)).
		Dur("total", time.Since(startTime)).
		Float64("forensic_score", rep.ForensicScore()).
		Float64("threshold", rep.ThresholdUsed()).
		Msg("analysis done")

	return rep, nil
}

// computeHistograms fills the histogram grid, one task per block row.
// It returns only after every task finished.
func computeHistograms(ctx context.Context, grid *pixel.Grid, ranges []histogram.Range, bins, workers int) (*histogram.Grid, error) {
	hists := histogram.NewGrid(grid.Rows(), grid.Cols(), len(ranges), bins)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for row := 0; row < grid.Rows(); row++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for col := 0; col < grid.Cols(); col++ {
				if err := gctx.Err(); err != nil {
					return faults.Cancelled(err)
				}
				hs, err := histogram.ComputeAll(grid.At(row, col), bins, ranges)
				if err != nil {
					return err
				}
				if err := hists.Set(row, col, hs); err != nil {
					return err
				}
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
	return hists, nil
}

// EstimateMemory approximates the bytes an analysis of a w×h image with ch
// channels allocates: the padded float32 copy plus the block histograms.
func EstimateMemory(w, h, ch int, cfg config.Config) uint64 {
	if cfg.BlockSize < 1 {
		return 0
	}
	bs := cfg.BlockSize
	pw := (w + bs - 1) / bs * bs
	ph := (h + bs - 1) / bs * bs
	blocks := uint64(pw/bs) * uint64(ph/bs)

	padded := uint64(pw) * uint64(ph) * uint64(ch) * 4
	hists := blocks * uint64(ch) * uint64(cfg.BinCount) * 4
	scores := blocks * 8 * 2
	return padded + hists + scores
}
