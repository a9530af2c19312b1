// Package raster provides the in-memory pixel buffer all pipeline stages
// operate on, plus the codec adapter between encoded image bytes and
// buffers. Buffers are 8-bit per channel, row-major, 3 (RGB) or 4 (RGBA)
// channels. Dimensions and channel count are fixed at construction; stages
// produce new buffers instead of mutating their input.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Buffer is an 8-bit row-major pixel buffer.
type Buffer struct {
	width    int
	height   int
	channels int
	pix      []uint8
}

// NewBuffer allocates a zeroed buffer. Channels must be 3 or 4.
func NewBuffer(width, height, channels int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions: %dx%d", width, height)
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}, nil
}

func (b *Buffer) Width() int    { return b.width }
func (b *Buffer) Height() int   { return b.height }
func (b *Buffer) Channels() int { return b.channels }

// Stride returns the byte length of one pixel row.
func (b *Buffer) Stride() int { return b.width * b.channels }

// Pix exposes the raw pixel data. Callers writing through it must own the
// buffer exclusively.
func (b *Buffer) Pix() []uint8 { return b.pix }

// Index returns the offset of pixel (x, y) within Pix.
func (b *Buffer) Index(x, y int) int {
	return (y*b.width + x) * b.channels
}

// Clone returns a deep copy with identical dimensions and pixel data.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		width:    b.width,
		height:   b.height,
		channels: b.channels,
		pix:      make([]uint8, len(b.pix)),
	}
	copy(out.pix, b.pix)
	return out
}

// SameShape reports whether other has identical dimensions and channels.
func (b *Buffer) SameShape(other *Buffer) bool {
	return other != nil &&
		b.width == other.width &&
		b.height == other.height &&
		b.channels == other.channels
}

// Luminance returns the Rec. 601 luma of pixel (x, y) in [0,255].
func (b *Buffer) Luminance(x, y int) float64 {
	i := b.Index(x, y)
	return 0.299*float64(b.pix[i]) + 0.587*float64(b.pix[i+1]) + 0.114*float64(b.pix[i+2])
}

// FromImage converts a decoded image into a buffer. Images with any
// translucent pixel become 4-channel; fully opaque images become 3-channel.
func FromImage(img *image.NRGBA) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	channels := 3
	for y := 0; y < h && channels == 3; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] != 0xff {
				channels = 4
				break
			}
		}
	}

	buf := &Buffer{
		width:    w,
		height:   h,
		channels: channels,
		pix:      make([]uint8, w*h*channels),
	}
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := buf.pix[y*buf.Stride():]
		for x := 0; x < w; x++ {
			copy(dst[x*channels:x*channels+channels], src[x*4:x*4+channels])
		}
	}
	return buf
}

// ToNRGBA converts the buffer back to an NRGBA image for encoding or for
// handing to library transforms. Three-channel buffers get an opaque alpha.
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		src := b.pix[y*b.Stride():]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.width; x++ {
			s := x * b.channels
			d := x * 4
			dst[d] = src[s]
			dst[d+1] = src[s+1]
			dst[d+2] = src[s+2]
			if b.channels == 4 {
				dst[d+3] = src[s+3]
			} else {
				dst[d+3] = 0xff
			}
		}
	}
	return img
}

// FromNRGBAShaped converts img into a buffer with the given channel count,
// preserving the channel layout of an originating buffer across a library
// transform that always yields NRGBA.
func FromNRGBAShaped(img *image.NRGBA, channels int) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := &Buffer{
		width:    w,
		height:   h,
		channels: channels,
		pix:      make([]uint8, w*h*channels),
	}
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := buf.pix[y*buf.Stride():]
		for x := 0; x < w; x++ {
			copy(dst[x*channels:x*channels+channels], src[x*4:x*4+channels])
		}
	}
	return buf
}

// SetRGB writes an opaque color at (x, y), leaving alpha untouched on
// 4-channel buffers. Test helper and fill primitive.
func (b *Buffer) SetRGB(x, y int, c color.NRGBA) {
	i := b.Index(x, y)
	b.pix[i] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
}
