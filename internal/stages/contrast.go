package stages

import (
	"math"

	"github.com/disintegration/imaging"

	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// ContrastRestore re-expands compressed dynamic range by the profile's
// contrast factor, boosted when the preflight flagged the image as faded.
// Factor 1 is a byte-identical no-op.
type ContrastRestore struct{}

func (s *ContrastRestore) Name() string { return "contrast_restoration" }

func (s *ContrastRestore) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	factor := rc.Profile.ContrastFactor
	if rc.Analysis != nil && rc.Analysis.IsFaded {
		factor *= 1.15
	}
	if math.Abs(factor-1) < 1e-9 {
		return in.Clone(), nil
	}

	adjusted := imaging.AdjustContrast(in.ToNRGBA(), (factor-1)*100)
	return raster.FromNRGBAShaped(adjusted, in.Channels()), nil
}
