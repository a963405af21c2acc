package analyzer

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/ivlev/imgforensics/internal/config"
	"github.com/ivlev/imgforensics/internal/engine"
	"github.com/ivlev/imgforensics/internal/recompress"
)

// RecompressionDetector probes the image with JPEG recompression at several
// qualities, then runs the block analysis on the difference image at the
// estimated previous quality, so regions compressed differently from the
// rest stand out in the map.
type RecompressionDetector struct {
	Config    config.Config
	Qualities []int
}

func NewRecompressionDetector(cfg config.Config) *RecompressionDetector {
	return &RecompressionDetector{
		Config:    cfg,
		Qualities: recompress.DefaultQualities,
	}
}

func (d *RecompressionDetector) Name() string { return "recompress" }

func (d *RecompressionDetector) Detect(ctx context.Context, img image.Image) (*Finding, error) {
	curve, err := recompress.Curve(ctx, img, d.Qualities)
	if err != nil {
		return nil, err
	}

	quality, dip := recompress.EstimateQuality(curve)
	mapQuality := quality
	if mapQuality == 0 {
		mapQuality = recompress.HeatmapQuality
	}
	zerolog.Ctx(ctx).Debug().
		Int("estimated_quality", quality).
		Float64("dip", dip).
		Int("map_quality", mapQuality).
		Msg("recompression curve")

	diff, err := recompress.DiffBuffer(img, mapQuality)
	if err != nil {
		return nil, err
	}
	rep, err := engine.Analyze(ctx, diff, d.Config)
	if err != nil {
		return nil, err
	}

	return &Finding{
		Detector:         d.Name(),
		Report:           rep,
		Curve:            curve,
		EstimatedQuality: quality,
		Dip:              dip,
	}, nil
}
