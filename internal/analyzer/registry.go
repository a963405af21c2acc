package analyzer

import (
	"fmt"

	"github.com/ivlev/imgforensics/internal/config"
)

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string, cfg config.Config) (Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch variant {
	case "blocks", "":
		return NewBlockDetector(cfg), nil
	case "recompress":
		return NewRecompressionDetector(cfg), nil
	case "ela":
		return NewELADetector(cfg), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
