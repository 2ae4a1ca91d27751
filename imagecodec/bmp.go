package imagecodec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/image/bmp"

	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
)

const bmpMagic uint16 = 0x4D42 // "BM"

// bmpFileHeaderSize and bmpInfoHeaderSize/bmpV4HeaderSize are the
// on-disk sizes of the BITMAPFILEHEADER and BITMAPINFOHEADER/
// BITMAPV4HEADER records (spec §4.K: "minimal BITMAPINFOHEADER for
// RGB555, RGB24 without alpha; V4 header otherwise").
const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpV4HeaderSize   = 108
)

// BmpLoad decodes a BMP image from r into a single-mipmap Texture.
// Decoding is delegated to x/image/bmp, which only understands
// uncompressed RGB bitmaps; the result is normalized to RGBA32 the
// same way PngLoad is, so callers never see the source bit depth.
func BmpLoad(r stream.Reader) (material.Texture, error) {
	data, err := stream.ReadBytes(r, int(r.Size()-r.Tell()))
	if err != nil {
		return material.Texture{}, err
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return material.Texture{}, fmt.Errorf("imagecodec: bmp decode: %w", err)
	}
	return nrgbaToTexture(toNRGBA(img), colorformat.RGBA32)
}

// bmpRowPadding returns the number of zero-padding bytes appended to
// each row so pixel rows start on 4-byte boundaries (spec §4.K: "pads
// rows to a 4-byte boundary on disk").
func bmpRowPadding(width uint32, cf colorformat.ColorFormat) int {
	rowLen := int(colorformat.Stride(width, cf))
	return (4 - rowLen%4) % 4
}

// bmpUsesMinimalHeader reports whether cf can round-trip through the
// plain BITMAPINFOHEADER (BI_RGB, no channel masks needed): RGB555 and
// RGB24 are the two formats the reference encoder special-cases this
// way; every other format (anything carrying alpha, or an unusual bit
// layout) needs the V4 header's BI_BITFIELDS channel masks.
func bmpUsesMinimalHeader(cf colorformat.ColorFormat) bool {
	return cf.Equal(colorformat.RGB555) || cf.Equal(colorformat.RGB24)
}

func channelMask(bpp, shl uint32) uint32 {
	if bpp == 0 {
		return 0
	}
	return ((uint32(1) << bpp) - 1) << shl
}

// BmpWrite encodes tex's level-0 mipmap to w as a BMP image in tex's
// own color format (not normalized to RGBA32, unlike BmpLoad/PngWrite):
// BMP is the one format this codec can round-trip a material's native
// pixel layout through, via BI_BITFIELDS channel masks.
func BmpWrite(w stream.Writer, tex material.Texture) error {
	data, width, height, err := tex.Mipmap(0)
	if err != nil {
		return err
	}
	cf := tex.Format()
	if cf.Mode == colorformat.Indexed {
		return fmt.Errorf("imagecodec: cannot write indexed color mode %+v to BMP", cf)
	}

	pad := bmpRowPadding(width, cf)
	rowLen := int(colorformat.Stride(width, cf))
	paddedRowLen := rowLen + pad
	pixdataSize := paddedRowLen * int(height)

	// BMP rows are stored bottom-up.
	padded := make([]byte, pixdataSize)
	for row := 0; row < int(height); row++ {
		srcOff := row * rowLen
		dstRow := int(height) - 1 - row
		dstOff := dstRow * paddedRowLen
		copy(padded[dstOff:dstOff+rowLen], data[srcOff:srcOff+rowLen])
	}

	minimal := bmpUsesMinimalHeader(cf)
	infoHeaderSize := bmpV4HeaderSize
	if minimal {
		infoHeaderSize = bmpInfoHeaderSize
	}

	var buf bytes.Buffer
	offBits := uint32(bmpFileHeaderSize + infoHeaderSize)
	fileSize := offBits + uint32(pixdataSize)

	binary.Write(&buf, binary.LittleEndian, bmpMagic)
	binary.Write(&buf, binary.LittleEndian, fileSize)
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved1
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved2
	binary.Write(&buf, binary.LittleEndian, offBits)

	const biRGB uint32 = 0
	const biBitfields uint32 = 3
	compression := biRGB
	if !minimal {
		compression = biBitfields
	}

	binary.Write(&buf, binary.LittleEndian, uint32(infoHeaderSize))
	binary.Write(&buf, binary.LittleEndian, int32(width))
	binary.Write(&buf, binary.LittleEndian, int32(height))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // planes
	binary.Write(&buf, binary.LittleEndian, uint16(cf.Bpp))
	binary.Write(&buf, binary.LittleEndian, compression)
	binary.Write(&buf, binary.LittleEndian, uint32(pixdataSize))
	binary.Write(&buf, binary.LittleEndian, int32(0)) // X_PelsPerMeter
	binary.Write(&buf, binary.LittleEndian, int32(0)) // Y_PelsPerMeter
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // colorUsed
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // colorImportant

	if !minimal {
		const lcsSRGB uint32 = 0x73524742
		binary.Write(&buf, binary.LittleEndian, channelMask(cf.RedBPP, cf.RedShl))
		binary.Write(&buf, binary.LittleEndian, channelMask(cf.GreenBPP, cf.GreenShl))
		binary.Write(&buf, binary.LittleEndian, channelMask(cf.BlueBPP, cf.BlueShl))
		binary.Write(&buf, binary.LittleEndian, channelMask(cf.AlphaBPP, cf.AlphaShl))
		binary.Write(&buf, binary.LittleEndian, lcsSRGB)
		// CIEXYZTRIPLE endpoints + 3 gamma fields, unused for sRGB.
		binary.Write(&buf, binary.LittleEndian, make([]byte, 36+12))
	}

	buf.Write(padded)

	_, err = w.Write(buf.Bytes())
	return err
}
