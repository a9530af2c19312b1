package raster

import (
	"errors"
	"image/color"
	"testing"

	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

func testBuffer(t *testing.T, w, h int) *Buffer {
	t.Helper()
	buf, err := NewBuffer(w, h, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetRGB(x, y, color.NRGBA{
				R: uint8((x*37 + y*11) % 256),
				G: uint8((x*13 + y*53) % 256),
				B: uint8((x + y*7) % 256),
			})
		}
	}
	return buf
}

func TestPNGRoundTripIsLossless(t *testing.T) {
	src := testBuffer(t, 24, 16)

	data, err := Encode(src, "png", 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(data, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !src.SameShape(back) {
		t.Fatalf("round trip shape %dx%dx%d, want %dx%dx%d",
			back.Width(), back.Height(), back.Channels(),
			src.Width(), src.Height(), src.Channels())
	}
	for i, v := range src.Pix() {
		if back.Pix()[i] != v {
			t.Fatalf("png round trip altered pixel at offset %d", i)
		}
	}
}

func TestJPEGRoundTripKeepsShape(t *testing.T) {
	src := testBuffer(t, 32, 20)

	data, err := Encode(src, "jpeg", DefaultJPEGQuality)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(data, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !src.SameShape(back) {
		t.Errorf("jpeg round trip changed shape to %dx%d", back.Width(), back.Height())
	}
}

func TestDecodeCorruptBytes(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"), 0)
	if !errors.Is(err, pipeline.ErrDecode) {
		t.Errorf("Decode() error = %v, want ErrDecode", err)
	}
}

func TestDecodeSizeLimit(t *testing.T) {
	src := testBuffer(t, 64, 48)
	data, err := Encode(src, "png", 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(data, 64); err != nil {
		t.Errorf("Decode() within limit error = %v", err)
	}
	_, err = Decode(data, 63)
	if !errors.Is(err, pipeline.ErrSizeLimit) {
		t.Errorf("Decode() over limit error = %v, want ErrSizeLimit", err)
	}
}

func TestEncodeRejections(t *testing.T) {
	src := testBuffer(t, 8, 8)

	tests := []struct {
		name    string
		format  string
		quality int
	}{
		{"unsupported format", "webp", 0},
		{"quality over 100", "jpeg", 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(src, tt.format, tt.quality)
			if !errors.Is(err, pipeline.ErrEncode) {
				t.Errorf("Encode() error = %v, want ErrEncode", err)
			}
		})
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "jpeg"},
		{"jpg", "jpeg"},
		{"jpeg", "jpeg"},
		{"png", "png"},
	}
	for _, tt := range tests {
		if got := NormalizeFormat(tt.in); got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
