package imagecodec

import (
	"testing"

	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

func checkerboardTexture(t *testing.T, cf colorformat.ColorFormat, w, h uint32) material.Texture {
	t.Helper()
	pixdata := make([]byte, colorformat.PixdataSize(w, h, cf))
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			val := uint8(0)
			if (x+y)%2 == 0 {
				val = 255
			}
			c := mathutil.Color{R: val, G: val, B: val, A: 255}
			if err := colorformat.WritePixelAt(c, pixdata, x, y, w, h, cf); err != nil {
				t.Fatalf("WritePixelAt: %v", err)
			}
		}
	}
	tex, err := material.NewTexture(w, h, 1, cf, pixdata)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	return tex
}

func TestPngRoundTripPreservesDimensions(t *testing.T) {
	tex := checkerboardTexture(t, colorformat.RGBA32, 8, 4)

	buf := stream.NewBuffer("out.png")
	if err := PngWrite(buf, tex); err != nil {
		t.Fatalf("PngWrite: %v", err)
	}

	buf.Seek(0)
	got, err := PngLoad(buf)
	if err != nil {
		t.Fatalf("PngLoad: %v", err)
	}
	if got.Width() != tex.Width() || got.Height() != tex.Height() {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width(), got.Height(), tex.Width(), tex.Height())
	}
	if !bytesEqual(got.Pixdata(), tex.Pixdata()) {
		t.Fatalf("pixel data mismatch after PNG round trip")
	}
}

func TestBmpRoundTripMinimalHeaderFormat(t *testing.T) {
	tex := checkerboardTexture(t, colorformat.RGB24, 6, 3)

	buf := stream.NewBuffer("out.bmp")
	if err := BmpWrite(buf, tex); err != nil {
		t.Fatalf("BmpWrite: %v", err)
	}

	buf.Seek(0)
	got, err := BmpLoad(buf)
	if err != nil {
		t.Fatalf("BmpLoad: %v", err)
	}
	if got.Width() != tex.Width() || got.Height() != tex.Height() {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width(), got.Height(), tex.Width(), tex.Height())
	}
}

func TestBmpRoundTripV4HeaderFormat(t *testing.T) {
	tex := checkerboardTexture(t, colorformat.RGBA32, 5, 2)

	buf := stream.NewBuffer("out.bmp")
	if err := BmpWrite(buf, tex); err != nil {
		t.Fatalf("BmpWrite: %v", err)
	}

	buf.Seek(0)
	got, err := BmpLoad(buf)
	if err != nil {
		t.Fatalf("BmpLoad: %v", err)
	}
	if got.Width() != tex.Width() || got.Height() != tex.Height() {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width(), got.Height(), tex.Width(), tex.Height())
	}
}

func TestBmpWriteRejectsIndexedFormat(t *testing.T) {
	cf := colorformat.ColorFormat{Mode: colorformat.Indexed, Bpp: 8}
	pixdata := make([]byte, colorformat.PixdataSize(2, 2, cf))
	tex, err := material.NewTexture(2, 2, 1, cf, pixdata)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}

	buf := stream.NewBuffer("out.bmp")
	if err := BmpWrite(buf, tex); err == nil {
		t.Fatal("BmpWrite: expected error for indexed color mode, got nil")
	}
}

func TestBmpRowPadding(t *testing.T) {
	cases := []struct {
		width uint32
		cf    colorformat.ColorFormat
		want  int
	}{
		{width: 4, cf: colorformat.RGB24, want: 0},  // 12 bytes/row, already aligned
		{width: 1, cf: colorformat.RGB24, want: 1},  // 3 bytes/row -> pad to 4
		{width: 3, cf: colorformat.RGBA32, want: 0}, // 12 bytes/row
	}
	for _, tc := range cases {
		if got := bmpRowPadding(tc.width, tc.cf); got != tc.want {
			t.Errorf("bmpRowPadding(%d, %+v) = %d, want %d", tc.width, tc.cf, got, tc.want)
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
