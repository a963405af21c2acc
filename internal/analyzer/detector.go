package analyzer

import (
	"context"
	"image"

	"github.com/ivlev/imgforensics/internal/recompress"
	"github.com/ivlev/imgforensics/internal/report"
)

// Finding is the outcome of one detector on one image.
type Finding struct {
	Detector string         `yaml:"detector"`
	Report   *report.Report `yaml:"report,omitempty"`

	// Quality of the JPEG pass the error map was taken from (ela)
	Quality int `yaml:"quality,omitempty"`

	// Recompression only
	Curve            []recompress.Point `yaml:"curve,omitempty"`
	EstimatedQuality int                `yaml:"estimated_quality,omitempty"`
	Dip              float64            `yaml:"dip,omitempty"`
}

// Suspicious reports whether the block map has a value above its threshold.
func (f *Finding) Suspicious() bool {
	return f.Report != nil && f.Report.Exceeds()
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Name() string
	Detect(ctx context.Context, img image.Image) (*Finding, error)
}
