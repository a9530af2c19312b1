package stages

import (
	"github.com/heri-science/artifact-pipeline/internal/quality"
	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// FadeCorrect restores tonal range lost to fading by re-centering the
// luminance mean toward the mid-gray baseline. The shift scales with the
// profile's fade correction strength and with whether the preflight
// flagged the image as faded; unfaded images get a fraction of the
// correction. Strength 0 is a byte-identical no-op.
type FadeCorrect struct{}

func (s *FadeCorrect) Name() string { return "fade_correction" }

// fadeMidtone is the expected luminance baseline for a healthy scan.
const fadeMidtone = 128.0

func (s *FadeCorrect) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	strength := rc.Profile.FadeCorrection
	if strength <= 0 {
		return in.Clone(), nil
	}

	mean := quality.MeanLuminance(in)
	faded := mean < 100 || mean > 200
	if rc.Analysis != nil {
		faded = faded || rc.Analysis.IsFaded
	}

	scale := 0.2
	if faded {
		scale = 0.5
	}
	shift := (fadeMidtone - mean) * strength * scale
	if shift > -0.5 && shift < 0.5 {
		return in.Clone(), nil
	}

	out := in.Clone()
	src, dst := in.Pix(), out.Pix()
	w, h, ch := in.Width(), in.Height(), in.Channels()
	err := parallelRows(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			base := y * in.Stride()
			for x := 0; x < w; x++ {
				i := base + x*ch
				for c := 0; c < 3; c++ {
					dst[i+c] = clampByte(float64(src[i+c]) + shift)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rc.RecordDiagnostic(s.Name(), shift)
	return out, nil
}
