package stages

import (
	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// Denoise removes high-frequency noise with an edge-aware 3x3 Gaussian
// blend: flat regions receive the full smoothing, edge pixels keep their
// original value in proportion to the local gradient magnitude. Strength 0
// is a byte-identical no-op.
//
// Conservative denoisers (restoration's noise removal) scale strength down
// so faint damage boundaries survive for the inpainter.
type Denoise struct {
	Conservative bool
}

func (s *Denoise) Name() string {
	if s.Conservative {
		return "noise_removal"
	}
	return "pre_denoise"
}

// gradientKnee controls how quickly smoothing falls off around edges.
const gradientKnee = 32.0

func (s *Denoise) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	strength := rc.Profile.DenoiseStrength
	if s.Conservative {
		strength *= rc.Profile.RestoreDenoiseScale
		if rc.Analysis != nil && !rc.Analysis.IsNoisy {
			// Clean scans need barely any smoothing.
			strength *= 0.5
		}
	}
	if strength <= 0 {
		return in.Clone(), nil
	}
	if strength > 1 {
		strength = 1
	}

	w, h := in.Width(), in.Height()
	out := in.Clone()
	src := in.Pix()
	dst := out.Pix()

	var totalShift float64
	shifts := make([]float64, h)

	err := parallelRows(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			var rowShift float64
			for x := 0; x < w; x++ {
				// Edge weight from the luma gradient: 0 in flat areas,
				// approaching 1 across hard edges.
				gx := in.Luminance(clampInt(x+1, w), y) - in.Luminance(clampInt(x-1, w), y)
				gy := in.Luminance(x, clampInt(y+1, h)) - in.Luminance(x, clampInt(y-1, h))
				g := gx*gx + gy*gy
				if g < 0 {
					g = 0
				}
				edge := g / (g + gradientKnee*gradientKnee)
				blend := strength * (1 - edge)
				if blend <= 0 {
					continue
				}

				for c := 0; c < 3; c++ {
					blurred := gauss3(src, in, x, y, c, w, h)
					i := in.Index(x, y) + c
					v := float64(src[i]) + blend*(blurred-float64(src[i]))
					dst[i] = clampByte(v)
					d := v - float64(src[i])
					if d < 0 {
						d = -d
					}
					rowShift += d
				}
			}
			shifts[y] = rowShift
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, v := range shifts {
		totalShift += v
	}
	rc.RecordDiagnostic(s.Name(), totalShift/float64(w*h*3))
	return out, nil
}

// gauss3 computes the 3x3 binomial smoothing of channel c at (x, y) with
// clamped borders.
func gauss3(pix []uint8, b *raster.Buffer, x, y, c, w, h int) float64 {
	var sum float64
	weights := [3]float64{1, 2, 1}
	var wsum float64
	for dy := -1; dy <= 1; dy++ {
		yy := clampInt(y+dy, h)
		for dx := -1; dx <= 1; dx++ {
			xx := clampInt(x+dx, w)
			wgt := weights[dy+1] * weights[dx+1]
			sum += wgt * float64(pix[b.Index(xx, yy)+c])
			wsum += wgt
		}
	}
	return sum / wsum
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
