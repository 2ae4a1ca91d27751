package material

import (
	"testing"

	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/stream"
)

func oneByOneRGBA32(pixel uint32) Texture {
	buf := make([]byte, 4)
	stream.Order.PutUint32(buf, pixel)
	tex, err := NewTexture(1, 1, 1, colorformat.RGBA32, buf)
	if err != nil {
		panic(err)
	}
	return tex
}

func TestMaterialAddCelMismatchRejected(t *testing.T) {
	m := NewMaterial("test")
	if err := m.AddCel(oneByOneRGBA32(1)); err != nil {
		t.Fatalf("AddCel first cel: %v", err)
	}

	buf2x2 := make([]byte, colorformat.PixdataSize(2, 2, colorformat.RGBA32))
	mismatched, err := NewTexture(2, 2, 1, colorformat.RGBA32, buf2x2)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if err := m.AddCel(mismatched); err != ErrCelMismatch {
		t.Fatalf("AddCel mismatched = %v, want ErrCelMismatch", err)
	}
}

func TestMatRoundTrip1x1RGBA32(t *testing.T) {
	m := NewMaterial("test.mat")
	tex := oneByOneRGBA32(0x11223344)
	if err := m.AddCel(tex); err != nil {
		t.Fatalf("AddCel: %v", err)
	}

	buf := stream.NewBuffer("test.mat")
	if err := WriteMat(buf, m); err != nil {
		t.Fatalf("WriteMat: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	got, err := ReadMat(buf)
	if err != nil {
		t.Fatalf("ReadMat: %v", err)
	}
	if got.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", got.Count())
	}
	if got.Format() != colorformat.RGBA32 {
		t.Fatalf("Format() = %+v, want RGBA32", got.Format())
	}

	pixel, err := colorformat.ReadPixel(got.Cels()[0].Pixdata(), colorformat.RGBA32)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	// little-endian encoding of 0x11223344 is bytes 44 33 22 11
	if pixel.R != 0x11 || pixel.G != 0x22 || pixel.B != 0x33 || pixel.A != 0x44 {
		t.Fatalf("pixel = %+v, want R=0x11 G=0x22 B=0x33 A=0x44", pixel)
	}
}

func TestMatRoundTripMultiCelWithMipmaps(t *testing.T) {
	m := NewMaterial("multi.mat")
	width, height, levels := uint32(4), uint32(4), uint32(3)

	for i := 0; i < 2; i++ {
		base := make([]byte, colorformat.PixdataSize(width, height, colorformat.RGB565))
		for j := range base {
			base[j] = byte(i*16 + j)
		}
		chain, err := colorformat.GenerateMipmaps(base, width, height, int(levels), colorformat.RGB565, true)
		if err != nil {
			t.Fatalf("GenerateMipmaps: %v", err)
		}
		var combined []byte
		for _, lvl := range chain {
			combined = append(combined, lvl...)
		}
		tex, err := NewTexture(width, height, uint32(len(chain)), colorformat.RGB565, combined)
		if err != nil {
			t.Fatalf("NewTexture: %v", err)
		}
		if err := m.AddCel(tex); err != nil {
			t.Fatalf("AddCel: %v", err)
		}
	}

	buf := stream.NewBuffer("multi.mat")
	if err := WriteMat(buf, m); err != nil {
		t.Fatalf("WriteMat: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	got, err := ReadMat(buf)
	if err != nil {
		t.Fatalf("ReadMat: %v", err)
	}
	if got.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", got.Count())
	}
	for i, cel := range got.Cels() {
		if cel.Width() != width || cel.Height() != height || cel.MipLevels() != levels {
			t.Errorf("cel %d dims = %dx%d mip=%d, want %dx%d mip=%d", i, cel.Width(), cel.Height(), cel.MipLevels(), width, height, levels)
		}
	}
}

func TestTextureConvertPreservesDimensions(t *testing.T) {
	tex := oneByOneRGBA32(0xAABBCCDD)
	converted, err := tex.Convert(colorformat.RGB24)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.Width() != 1 || converted.Height() != 1 {
		t.Fatalf("converted dims = %dx%d, want 1x1", converted.Width(), converted.Height())
	}
	if converted.Format() != colorformat.RGB24 {
		t.Fatalf("converted format = %+v, want RGB24", converted.Format())
	}
}
