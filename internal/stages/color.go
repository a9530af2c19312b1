package stages

import (
	"math"

	"github.com/disintegration/imaging"

	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// ColorCorrect normalizes white balance drift with a gray-world per-channel
// gain, then applies the profile's saturation factor. All output values are
// clamped to [0,255]. A channel with near-zero mean (an all-black plate)
// makes the gain computation degenerate; that is a recoverable fault, not a
// run failure.
type ColorCorrect struct{}

func (s *ColorCorrect) Name() string { return "color_correction" }

// minChannelMean guards the gray-world division.
const minChannelMean = 1e-3

func (s *ColorCorrect) Apply(rc *RunContext, in *raster.Buffer) (*raster.Buffer, error) {
	wb := rc.Profile.WhiteBalance
	sat := rc.Profile.SaturationFactor
	if wb <= 0 && math.Abs(sat-1) < 1e-9 {
		return in.Clone(), nil
	}

	out := in
	var maxGainShift float64

	if wb > 0 {
		means, err := channelMeans(in)
		if err != nil {
			return nil, err
		}
		gray := (means[0] + means[1] + means[2]) / 3

		var gains [3]float64
		for c := 0; c < 3; c++ {
			g := 1 + wb*(gray/means[c]-1)
			// Bound correction so a strongly tinted artifact is nudged,
			// not recolored.
			if g < 0.5 {
				g = 0.5
			} else if g > 2.0 {
				g = 2.0
			}
			gains[c] = g
			if shift := math.Abs(g - 1); shift > maxGainShift {
				maxGainShift = shift
			}
		}

		balanced := in.Clone()
		src, dst := in.Pix(), balanced.Pix()
		w, h, ch := in.Width(), in.Height(), in.Channels()
		err = parallelRows(h, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				base := y * in.Stride()
				for x := 0; x < w; x++ {
					i := base + x*ch
					for c := 0; c < 3; c++ {
						dst[i+c] = clampByte(float64(src[i+c]) * gains[c])
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out = balanced
	}

	if math.Abs(sat-1) >= 1e-9 {
		adjusted := imaging.AdjustSaturation(out.ToNRGBA(), (sat-1)*100)
		out = raster.FromNRGBAShaped(adjusted, in.Channels())
	} else if out == in {
		out = in.Clone()
	}

	rc.RecordDiagnostic(s.Name(), maxGainShift)
	return out, nil
}

// channelMeans returns the RGB channel means, faulting when a channel mean
// is too small to divide by.
func channelMeans(b *raster.Buffer) ([3]float64, error) {
	var sums [3]float64
	pix := b.Pix()
	ch := b.Channels()
	for i := 0; i < len(pix); i += ch {
		sums[0] += float64(pix[i])
		sums[1] += float64(pix[i+1])
		sums[2] += float64(pix[i+2])
	}
	n := float64(b.Width() * b.Height())
	var means [3]float64
	for c := 0; c < 3; c++ {
		means[c] = sums[c] / n
		if means[c] < minChannelMean {
			return means, &Fault{Reason: "near-zero channel mean in white balance"}
		}
	}
	return means, nil
}
