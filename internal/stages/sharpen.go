package stages

import (
	"github.com/disintegration/imaging"

	"github.com/heri-science/artifact-pipeline/internal/raster"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// Sharpen boosts local contrast around edges by blending toward a
// Gaussian-sharpened rendition; radius and amount come from the profile.
// Amount 0 is a byte-identical no-op.
//
// With OutsideMask set (restoration's detail re-sharpening), pixels inside
// the damage mask keep their inpainted values so synthetic texture is not
// amplified. The mask must match the buffer dimensions exactly.
type Sharpen struct {
	OutsideMask bool
}

func (s *Sharpen) Name() string {
	if s.OutsideMask {
		return "detail_resharpen"
	}
	return "sharpen"
}

func (s *Sharpen) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	amount := rc.Profile.SharpenAmount
	if amount <= 0 {
		return in.Clone(), nil
	}
	if amount > 1.5 {
		amount = 1.5
	}

	if s.OutsideMask && rc.Mask != nil {
		if err := rc.Mask.CheckShape(in); err != nil {
			return nil, pipeline.NewProcessError(pipeline.KindConsistency, s.Name(), err)
		}
	}

	radius := rc.Profile.SharpenRadius
	if radius <= 0 {
		radius = 1.0
	}

	sharp := raster.FromNRGBAShaped(imaging.Sharpen(in.ToNRGBA(), radius), in.Channels())
	out := in.Clone()
	src, shp, dst := in.Pix(), sharp.Pix(), out.Pix()

	w, h, ch := in.Width(), in.Height(), in.Channels()
	err := parallelRows(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			base := y * in.Stride()
			for x := 0; x < w; x++ {
				weight := amount
				if s.OutsideMask && rc.Mask != nil {
					weight *= float64(1 - rc.Mask.At(x, y))
				}
				if weight <= 0 {
					continue
				}
				i := base + x*ch
				for c := 0; c < 3; c++ {
					v := float64(src[i+c]) + weight*(float64(shp[i+c])-float64(src[i+c]))
					dst[i+c] = clampByte(v)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
