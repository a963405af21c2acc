package analyzer

import (
	"context"
	"image"

	"github.com/ivlev/imgforensics/internal/config"
	"github.com/ivlev/imgforensics/internal/engine"
	"github.com/ivlev/imgforensics/internal/recompress"
)

// ELADetector is error level analysis: the image is saved once more at a
// fixed JPEG quality and the block analysis runs on the per-pixel error.
// Pasted regions that were compressed differently leave a different error
// level than their surroundings.
type ELADetector struct {
	Config  config.Config
	Quality int
}

func NewELADetector(cfg config.Config) *ELADetector {
	return &ELADetector{Config: cfg, Quality: recompress.ELAQuality}
}

func (d *ELADetector) Name() string { return "ela" }

func (d *ELADetector) Detect(ctx context.Context, img image.Image) (*Finding, error) {
	diff, err := recompress.DiffBuffer(img, d.Quality)
	if err != nil {
		return nil, err
	}
	rep, err := engine.Analyze(ctx, diff, d.Config)
	if err != nil {
		return nil, err
	}
	return &Finding{Detector: d.Name(), Report: rep, Quality: d.Quality}, nil
}
