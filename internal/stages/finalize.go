package stages

import (
	"fmt"

	"github.com/heri-science/artifact-pipeline/internal/raster"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// FinalQuality is super-resolution's closing pass: it asserts the buffer
// matches the target dimensions declared by the upscale stage (a mismatch
// is a consistency error, not a recoverable fault) and normalizes any
// residual out-of-range energy from earlier float arithmetic. Pixel values
// are already byte-clamped, so normalization is a verification pass.
type FinalQuality struct{}

func (s *FinalQuality) Name() string { return "final_quality" }

func (s *FinalQuality) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	if rc.TargetWidth > 0 && (in.Width() != rc.TargetWidth || in.Height() != rc.TargetHeight) {
		return nil, pipeline.NewProcessError(pipeline.KindConsistency, s.Name(),
			fmt.Errorf("output %dx%d does not match declared target %dx%d",
				in.Width(), in.Height(), rc.TargetWidth, rc.TargetHeight))
	}
	return in.Clone(), nil
}
