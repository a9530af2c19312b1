package stages

import (
	"github.com/heri-science/artifact-pipeline/internal/quality"
	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// DamageMap is restoration's first stage. It runs the damage preflight
// (variance, brightness, fade/noise flags) and builds a graded mask of
// candidate damaged regions: patches whose local variance collapses while
// their local mean breaks away from the global mean — flat scratches,
// chips, and missing-patch fills look exactly like that. The mask is
// dilated one step so crack borders are covered, then threaded through the
// inpainting and re-sharpening stages.
//
// The buffer itself passes through unchanged.
type DamageMap struct{}

func (s *DamageMap) Name() string { return "damage_map" }

// damageWindow is the half-width of the local statistics window.
const damageWindow = 3

func (s *DamageMap) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	w, h := in.Width(), in.Height()

	globalVar := quality.LuminanceVariance(in)
	globalMean := quality.MeanLuminance(in)

	damageScore := 100 - globalVar/30
	if damageScore < 0 {
		damageScore = 0
	} else if damageScore > 100 {
		damageScore = 100
	}
	rc.Analysis = &DamageAnalysis{
		Variance:    globalVar,
		Brightness:  globalMean,
		IsFaded:     globalMean < 100 || globalMean > 200,
		IsNoisy:     globalVar > 1500,
		DamageScore: damageScore,
	}

	// Integral images over luma for O(1) windowed mean/variance.
	sum, sumSq := lumaIntegrals(in)

	mask := raster.NewMask(w, h)
	varMax := rc.Profile.DamageVarianceMax
	devMin := rc.Profile.DamageDeviationMin

	err := parallelRows(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				x0 := clampInt(x-damageWindow, w)
				x1 := clampInt(x+damageWindow, w)
				y0w := clampInt(y-damageWindow, h)
				y1w := clampInt(y+damageWindow, h)
				n := float64((x1 - x0 + 1) * (y1w - y0w + 1))

				winSum := windowSum(sum, w, x0, y0w, x1, y1w)
				winSumSq := windowSum(sumSq, w, x0, y0w, x1, y1w)
				mean := winSum / n
				variance := winSumSq/n - mean*mean

				dev := mean - globalMean
				if dev < 0 {
					dev = -dev
				}
				if variance < varMax && dev > devMin {
					// Grade by how far the patch drifts from the image.
					mask.Set(x, y, float32(dev/(2*devMin)))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rc.Mask = mask.Dilate()
	rc.RecordDiagnostic(s.Name(), rc.Mask.Fraction(0.5))
	return in.Clone(), nil
}

// lumaIntegrals builds summed-area tables of luma and squared luma, each
// (w+1)*(h+1) with a zero border row/column.
func lumaIntegrals(b *raster.Buffer) (sum, sumSq []float64) {
	w, h := b.Width(), b.Height()
	sum = make([]float64, (w+1)*(h+1))
	sumSq = make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum, rowSumSq float64
		for x := 0; x < w; x++ {
			l := b.Luminance(x, y)
			rowSum += l
			rowSumSq += l * l
			i := (y+1)*(w+1) + (x + 1)
			sum[i] = sum[i-(w+1)] + rowSum
			sumSq[i] = sumSq[i-(w+1)] + rowSumSq
		}
	}
	return sum, sumSq
}

// windowSum evaluates an inclusive window [x0,x1]x[y0,y1] from a summed
// area table with a zero border.
func windowSum(table []float64, w, x0, y0, x1, y1 int) float64 {
	stride := w + 1
	a := table[y0*stride+x0]
	b := table[y0*stride+(x1+1)]
	c := table[(y1+1)*stride+x0]
	d := table[(y1+1)*stride+(x1+1)]
	return d - b - c + a
}
