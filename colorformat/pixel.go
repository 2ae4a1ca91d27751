package colorformat

import (
	"errors"
	"fmt"

	"github.com/jonesengine/libim/mathutil"
)

// ErrShortPixdata is returned when a buffer does not hold enough bytes
// to read or write an encoded pixel.
var ErrShortPixdata = errors.New("colorformat: not enough data to read/write pixel")

func colorMask(bpc uint32) uint32 {
	if bpc == 0 {
		return 0
	}
	return 0xFFFFFFFF >> (32 - bpc)
}

func clampU8(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// DecodePixel unpacks an encoded pixel of up to 4 bytes into a Color
// using cf's bit layout. Formats with no alpha channel decode as fully
// opaque; single-bit alpha (RGBA5551-style) widens to 0/255.
func DecodePixel(encPixel uint32, cf ColorFormat) mathutil.Color {
	r := ((encPixel >> cf.RedShl) & colorMask(cf.RedBPP)) << cf.RedShr
	g := ((encPixel >> cf.GreenShl) & colorMask(cf.GreenBPP)) << cf.GreenShr
	b := ((encPixel >> cf.BlueShl) & colorMask(cf.BlueBPP)) << cf.BlueShr
	a := uint32(255)
	if cf.AlphaBPP != 0 {
		a = ((encPixel >> cf.AlphaShl) & colorMask(cf.AlphaBPP)) << cf.AlphaShr
		if cf.AlphaBPP == 1 {
			if a > 0 {
				a = 255
			} else {
				a = 0
			}
		}
	}
	return mathutil.Color{R: clampU8(r), G: clampU8(g), B: clampU8(b), A: clampU8(a)}
}

// EncodePixel packs a Color into an encoded pixel using cf's bit layout.
func EncodePixel(pixel mathutil.Color, cf ColorFormat) uint32 {
	r := uint32(pixel.R)
	g := uint32(pixel.G)
	b := uint32(pixel.B)
	a := uint32(pixel.A)

	ep := ((r >> cf.RedShr) << cf.RedShl) |
		((g >> cf.GreenShr) << cf.GreenShl) |
		((b >> cf.BlueShr) << cf.BlueShl)

	if cf.AlphaBPP != 0 {
		ep |= (a >> cf.AlphaShr) << cf.AlphaShl
	}
	return ep
}

// ReadPixel decodes one pixel from the start of buf, which must hold
// at least Bbs(cf.Bpp) bytes.
func ReadPixel(buf []byte, cf ColorFormat) (mathutil.Color, error) {
	pixelSize := Bbs(cf.Bpp)
	if uint32(len(buf)) < pixelSize {
		return mathutil.Color{}, ErrShortPixdata
	}
	var enc uint32
	switch pixelSize {
	case 2:
		enc = uint32(buf[0]) | uint32(buf[1])<<8
	case 3:
		enc = uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16
	case 4:
		enc = uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	default:
		return mathutil.Color{}, fmt.Errorf("colorformat: unsupported pixel size %d", pixelSize)
	}
	return DecodePixel(enc, cf), nil
}

// WritePixel encodes pixel into the start of buf, which must hold at
// least Bbs(cf.Bpp) bytes.
func WritePixel(pixel mathutil.Color, buf []byte, cf ColorFormat) error {
	pixelSize := Bbs(cf.Bpp)
	if uint32(len(buf)) < pixelSize {
		return ErrShortPixdata
	}
	enc := EncodePixel(pixel, cf)
	for i := uint32(0); i < pixelSize; i++ {
		buf[i] = byte(enc >> (8 * i))
	}
	return nil
}

// ReadPixelAt decodes the pixel at (x, y) in a width x height image
// stored in pixdata using color format cf.
func ReadPixelAt(pixdata []byte, x, y, width, height uint32, cf ColorFormat) (mathutil.Color, error) {
	if x >= width || y >= height {
		return mathutil.Color{}, ErrShortPixdata
	}
	pixSize := Bbs(cf.Bpp)
	rowLen := width * pixSize
	pos := y*rowLen + x*pixSize
	return ReadPixel(pixdata[pos:], cf)
}

// WritePixelAt encodes pixel at (x, y) in a width x height image
// stored in pixdata using color format cf.
func WritePixelAt(pixel mathutil.Color, pixdata []byte, x, y, width, height uint32, cf ColorFormat) error {
	if x >= width || y >= height {
		return ErrShortPixdata
	}
	pixSize := Bbs(cf.Bpp)
	rowLen := width * pixSize
	pos := y*rowLen + x*pixSize
	return WritePixel(pixel, pixdata[pos:], cf)
}

// ConvertPixdataRow converts one row, rowSrc (encoded in ciSrc), into
// rowDest (encoded in ciDest).
func ConvertPixdataRow(rowSrc []byte, ciSrc ColorFormat, rowDest []byte, ciDest ColorFormat) error {
	pixelSizeSrc := Bbs(ciSrc.Bpp)
	pixelSizeDest := Bbs(ciDest.Bpp)
	psr := float64(pixelSizeDest) / float64(pixelSizeSrc)

	for colSrc := uint32(0); colSrc < uint32(len(rowSrc)); colSrc += pixelSizeSrc {
		pixel, err := ReadPixel(rowSrc[colSrc:], ciSrc)
		if err != nil {
			return err
		}
		destCol := uint32(float64(colSrc) * psr)
		if err := WritePixel(pixel, rowDest[destCol:], ciDest); err != nil {
			return err
		}
	}
	return nil
}

func validConvertBpp(bpp uint32) bool {
	return bpp%8 == 0 && bpp >= 16 && bpp <= 32
}

// ConvertPixdata converts a width x height image's pixel data from one
// color format to another, returning newly allocated pixel data.
func ConvertPixdata(src []byte, width, height uint32, from, to ColorFormat) ([]byte, error) {
	if from == to {
		dst := make([]byte, len(src))
		copy(dst, src)
		return dst, nil
	}

	strideSrc := Stride(width, from)
	if uint32(len(src)) != strideSrc*height {
		return nil, errors.New("colorformat: invalid src pixdata size")
	}
	if !validConvertBpp(from.Bpp) {
		return nil, errors.New("colorformat: invalid bpp of src color format")
	}
	if !validConvertBpp(to.Bpp) {
		return nil, errors.New("colorformat: invalid bpp of dest color format")
	}

	strideDest := Stride(width, to)
	dst := make([]byte, strideDest*height)
	for row := uint32(0); row < height; row++ {
		srcRow := src[row*strideSrc : (row+1)*strideSrc]
		destRow := dst[row*strideDest : (row+1)*strideDest]
		if err := ConvertPixdataRow(srcRow, from, destRow, to); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
