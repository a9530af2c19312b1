// Package quality computes the global image statistics the restoration
// quality gate and the preflight damage analysis rely on: luminance moments,
// edge density, and reference metrics for comparing a processed buffer
// against its input.
package quality

import (
	"image"
	"math"

	"github.com/heri-science/artifact-pipeline/internal/raster"
)

// EdgeThreshold is the gradient magnitude above which a pixel counts as an
// edge for EdgeDensity.
const EdgeThreshold = 24.0

// MeanLuminance returns the average Rec. 601 luma over the buffer.
func MeanLuminance(b *raster.Buffer) float64 {
	sum := 0.0
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			sum += b.Luminance(x, y)
		}
	}
	return sum / float64(b.Width()*b.Height())
}

// LuminanceVariance returns the luma variance over the buffer.
func LuminanceVariance(b *raster.Buffer) float64 {
	return RegionVariance(b, image.Rect(0, 0, b.Width(), b.Height()))
}

// RegionVariance returns the luma variance inside rect, which must lie
// within the buffer.
func RegionVariance(b *raster.Buffer, rect image.Rectangle) float64 {
	n := 0
	sum, sumSq := 0.0, 0.0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			l := b.Luminance(x, y)
			sum += l
			sumSq += l * l
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// EdgeDensity returns the fraction of interior pixels whose central
// difference gradient magnitude exceeds EdgeThreshold.
func EdgeDensity(b *raster.Buffer) float64 {
	w, h := b.Width(), b.Height()
	if w < 3 || h < 3 {
		return 0
	}
	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := b.Luminance(x+1, y) - b.Luminance(x-1, y)
			gy := b.Luminance(x, y+1) - b.Luminance(x, y-1)
			if math.Hypot(gx, gy) > EdgeThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64((w-2)*(h-2))
}

// PSNR returns the peak signal-to-noise ratio between two same-shape
// buffers in dB, capped at 100 for identical inputs.
func PSNR(a, c *raster.Buffer) float64 {
	if !a.SameShape(c) {
		return 0
	}
	ap, cp := a.Pix(), c.Pix()
	sum := 0.0
	for i := range ap {
		d := float64(ap[i]) - float64(cp[i])
		sum += d * d
	}
	mse := sum / float64(len(ap))
	if mse < 1e-10 {
		return 100
	}
	psnr := 20*math.Log10(255) - 10*math.Log10(mse)
	if psnr > 100 {
		return 100
	}
	if psnr < 0 {
		return 0
	}
	return psnr
}

// MaxChannelDelta returns the largest absolute per-channel difference
// between two same-shape buffers. Used to verify identity contracts.
func MaxChannelDelta(a, c *raster.Buffer) int {
	if !a.SameShape(c) {
		return 256
	}
	ap, cp := a.Pix(), c.Pix()
	max := 0
	for i := range ap {
		d := int(ap[i]) - int(cp[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}
