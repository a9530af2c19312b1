package stages

import (
	"github.com/disintegration/imaging"

	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// DetailSynthesis re-injects the high-frequency band lost to resampling:
// out = in + gain * (in - lowpass(in)), with the injected delta clamped to
// the profile's overshoot limit so edges do not ring. Gain 0 is a
// byte-identical no-op.
type DetailSynthesis struct{}

func (s *DetailSynthesis) Name() string { return "detail_synthesis" }

func (s *DetailSynthesis) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	gain := rc.Profile.DetailGain
	if gain <= 0 {
		return in.Clone(), nil
	}

	limit := float64(rc.Profile.OvershootLimit)
	if limit <= 0 {
		limit = 32
	}

	low := raster.FromNRGBAShaped(imaging.Blur(in.ToNRGBA(), 1.0), in.Channels())
	out := in.Clone()
	src, lowPix, dst := in.Pix(), low.Pix(), out.Pix()

	w, h, ch := in.Width(), in.Height(), in.Channels()
	energies := make([]float64, h)

	err := parallelRows(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			var rowEnergy float64
			base := y * in.Stride()
			for x := 0; x < w; x++ {
				i := base + x*ch
				for c := 0; c < 3; c++ {
					delta := gain * (float64(src[i+c]) - float64(lowPix[i+c]))
					if delta > limit {
						delta = limit
					} else if delta < -limit {
						delta = -limit
					}
					dst[i+c] = clampByte(float64(src[i+c]) + delta)
					if delta < 0 {
						delta = -delta
					}
					rowEnergy += delta
				}
			}
			energies[y] = rowEnergy
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var total float64
	for _, e := range energies {
		total += e
	}
	rc.RecordDiagnostic(s.Name(), total/float64(w*h*3))
	return out, nil
}
