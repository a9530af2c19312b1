package stages

import (
	"github.com/heri-science/artifact-pipeline/internal/raster"
	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// maskThreshold separates damaged from intact pixels when the graded mask
// is consumed.
const maskThreshold = 0.5

// Inpaint fills masked regions with neighborhood-consistent synthesis:
// each damaged pixel takes the inverse-distance weighted average of the
// nearest intact pixels found along the four axis directions, blended by
// the profile's inpainting strength. All reads come from the stage input,
// so fill order cannot influence results. Buffer dimensions are preserved
// exactly.
type Inpaint struct{}

func (s *Inpaint) Name() string { return "inpaint" }

func (s *Inpaint) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	strength := rc.Profile.InpaintStrength
	if strength <= 0 || rc.Mask == nil {
		return in.Clone(), nil
	}
	if strength > 1 {
		strength = 1
	}
	if err := rc.Mask.CheckShape(in); err != nil {
		return nil, pipeline.NewProcessError(pipeline.KindConsistency, s.Name(), err)
	}

	w, h := in.Width(), in.Height()
	out := in.Clone()
	src, dst := in.Pix(), out.Pix()
	mask := rc.Mask

	filled := make([]int, h)
	err := parallelRows(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				if mask.At(x, y) <= maskThreshold {
					continue
				}

				var weightSum float64
				var acc [3]float64
				scan := func(dx, dy int) {
					xx, yy := x+dx, y+dy
					dist := 1
					for xx >= 0 && xx < w && yy >= 0 && yy < h {
						if mask.At(xx, yy) <= maskThreshold {
							wgt := 1 / float64(dist)
							i := in.Index(xx, yy)
							for c := 0; c < 3; c++ {
								acc[c] += wgt * float64(src[i+c])
							}
							weightSum += wgt
							return
						}
						xx += dx
						yy += dy
						dist++
					}
				}
				scan(-1, 0)
				scan(1, 0)
				scan(0, -1)
				scan(0, 1)

				if weightSum == 0 {
					// Mask covers the whole image; nothing to synthesize
					// from. Recoverable: keep the original pixels.
					return &Fault{Reason: "damage mask has no intact neighborhood"}
				}

				i := in.Index(x, y)
				for c := 0; c < 3; c++ {
					fill := acc[c] / weightSum
					dst[i+c] = clampByte(float64(src[i+c]) + strength*(fill-float64(src[i+c])))
				}
				filled[y]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range filled {
		total += n
	}
	rc.RecordDiagnostic(s.Name(), float64(total)/float64(w*h))
	return out, nil
}
