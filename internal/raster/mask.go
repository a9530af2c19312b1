package raster

import "fmt"

// Mask is a graded per-pixel buffer in [0,1] marking regions that need
// structural repair. It travels alongside the working Buffer during
// restoration and must keep the buffer's spatial dimensions at every stage
// that consumes it.
type Mask struct {
	width  int
	height int
	data   []float32
}

// NewMask allocates a zeroed mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

// At returns the mask value at (x, y).
func (m *Mask) At(x, y int) float32 {
	return m.data[y*m.width+x]
}

// Set stores v at (x, y), clamped to [0,1].
func (m *Mask) Set(x, y int, v float32) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.data[y*m.width+x] = v
}

// Fraction returns the share of pixels with mask value above threshold.
func (m *Mask) Fraction(threshold float32) float64 {
	if len(m.data) == 0 {
		return 0
	}
	n := 0
	for _, v := range m.data {
		if v > threshold {
			n++
		}
	}
	return float64(n) / float64(len(m.data))
}

// Dilate grows marked regions by one pixel, returning a new mask. Each
// output pixel takes the maximum of its 4-neighborhood. Used to make the
// damage map cover crack borders.
func (m *Mask) Dilate() *Mask {
	out := NewMask(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			v := m.At(x, y)
			if x > 0 && m.At(x-1, y) > v {
				v = m.At(x-1, y)
			}
			if x < m.width-1 && m.At(x+1, y) > v {
				v = m.At(x+1, y)
			}
			if y > 0 && m.At(x, y-1) > v {
				v = m.At(x, y-1)
			}
			if y < m.height-1 && m.At(x, y+1) > v {
				v = m.At(x, y+1)
			}
			out.data[y*out.width+x] = v
		}
	}
	return out
}

// CheckShape returns an error unless the mask matches the buffer's spatial
// dimensions exactly.
func (m *Mask) CheckShape(b *Buffer) error {
	if m.width != b.Width() || m.height != b.Height() {
		return fmt.Errorf("mask %dx%d does not match buffer %dx%d",
			m.width, m.height, b.Width(), b.Height())
	}
	return nil
}
