package analyzer

import (
	"context"
	"image"

	"github.com/ivlev/imgforensics/internal/config"
	"github.com/ivlev/imgforensics/internal/engine"
	"github.com/ivlev/imgforensics/internal/pixel"
)

// BlockDetector runs the block histogram analysis on the image pixels.
type BlockDetector struct {
	Config config.Config
}

func NewBlockDetector(cfg config.Config) *BlockDetector {
	return &BlockDetector{Config: cfg}
}

func (d *BlockDetector) Name() string { return "blocks" }

func (d *BlockDetector) Detect(ctx context.Context, img image.Image) (*Finding, error) {
	rep, err := engine.Analyze(ctx, pixel.FromImage(img), d.Config)
	if err != nil {
		return nil, err
	}
	return &Finding{Detector: d.Name(), Report: rep}, nil
}
