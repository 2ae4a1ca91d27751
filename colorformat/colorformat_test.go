package colorformat

import (
	"testing"

	"github.com/jonesengine/libim/mathutil"
)

func TestPixelRoundTripRGBA32(t *testing.T) {
	c := mathutil.Color{R: 10, G: 200, B: 50, A: 128}
	buf := make([]byte, 4)
	if err := WritePixel(c, buf, RGBA32); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	got, err := ReadPixel(buf, RGBA32)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	if got != c {
		t.Fatalf("round trip = %+v, want %+v", got, c)
	}
}

func TestPixelRoundTripRGB565LossyButStable(t *testing.T) {
	c := mathutil.Color{R: 8, G: 4, B: 8, A: 255} // values exactly representable at 5/6/5 bits
	buf := make([]byte, 2)
	if err := WritePixel(c, buf, RGB565); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	got, err := ReadPixel(buf, RGB565)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	if got != c {
		t.Fatalf("round trip = %+v, want %+v", got, c)
	}
}

func TestReadPixelShortBuffer(t *testing.T) {
	if _, err := ReadPixel([]byte{0x01}, RGBA32); err != ErrShortPixdata {
		t.Fatalf("err = %v, want ErrShortPixdata", err)
	}
}

func TestConvertPixdataIdentity(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst, err := ConvertPixdata(src, 2, 1, RGBA32, RGBA32)
	if err != nil {
		t.Fatalf("ConvertPixdata: %v", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("byte %d = %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestConvertPixdataRGBA32ToRGB24(t *testing.T) {
	buf := make([]byte, 4)
	c := mathutil.Color{R: 11, G: 22, B: 33, A: 255}
	if err := WritePixel(c, buf, RGBA32); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	dst, err := ConvertPixdata(buf, 1, 1, RGBA32, RGB24)
	if err != nil {
		t.Fatalf("ConvertPixdata: %v", err)
	}
	got, err := ReadPixel(dst, RGB24)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	if got.R != c.R || got.G != c.G || got.B != c.B || got.A != 255 {
		t.Fatalf("got = %+v, want rgb of %+v", got, c)
	}
}

func TestMipmapSize(t *testing.T) {
	// 4x4 RGBA32: level0=64, level1(2x2)=16, level2(1x1)=4 -> 84 total
	got := MipmapSize(4, 4, 3, RGBA32)
	if got != 84 {
		t.Fatalf("MipmapSize = %d, want 84", got)
	}
}

func TestMaxMipmapLevels(t *testing.T) {
	if got := MaxMipmapLevels(4, 4); got != 3 {
		t.Fatalf("MaxMipmapLevels(4,4) = %d, want 3", got)
	}
	if got := MaxMipmapLevels(1, 1); got != 1 {
		t.Fatalf("MaxMipmapLevels(1,1) = %d, want 1", got)
	}
	if got := MaxMipmapLevels(256, 128); got != 9 {
		t.Fatalf("MaxMipmapLevels(256,128) = %d, want 9", got)
	}
}

func TestGenerateMipmapsChainSizes(t *testing.T) {
	width, height := uint32(4), uint32(4)
	level0 := make([]byte, PixdataSize(width, height, RGBA32))
	for i := range level0 {
		level0[i] = byte(i)
	}

	chain, err := GenerateMipmaps(level0, width, height, 3, RGBA32, true)
	if err != nil {
		t.Fatalf("GenerateMipmaps: %v", err)
	}
	wantSizes := []int{64, 16, 4}
	if len(chain) != len(wantSizes) {
		t.Fatalf("len(chain) = %d, want %d", len(chain), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(chain[i]) != want {
			t.Errorf("level %d size = %d, want %d", i, len(chain[i]), want)
		}
	}
}

func TestBoxFilterScaleSolidColorStable(t *testing.T) {
	cf := RGBA32
	width, height := uint32(4), uint32(4)
	src := make([]byte, PixdataSize(width, height, cf))
	c := mathutil.Color{R: 100, G: 150, B: 200, A: 255}
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			if err := WritePixelAt(c, src, x, y, width, height, cf); err != nil {
				t.Fatalf("WritePixelAt: %v", err)
			}
		}
	}

	dst := make([]byte, PixdataSize(2, 2, cf))
	if err := BoxFilterScale(src, width, height, dst, 2, 2, cf, true); err != nil {
		t.Fatalf("BoxFilterScale: %v", err)
	}

	got, err := ReadPixelAt(dst, 0, 0, 2, 2, cf)
	if err != nil {
		t.Fatalf("ReadPixelAt: %v", err)
	}
	// A solid-color image scaled down should still be (approximately) the same color.
	const tol = 2
	if absDiff(got.R, c.R) > tol || absDiff(got.G, c.G) > tol || absDiff(got.B, c.B) > tol {
		t.Fatalf("scaled color = %+v, want ~%+v", got, c)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
