package colorformat

import "github.com/jonesengine/libim/mathutil"

// BoxFilterScale resizes src (srcWidth x srcHeight, encoded in cf) into
// dest (destWidth x destHeight, same format) using box filtering:
// every destination pixel is the average of a 2x2 neighborhood of
// source pixels. Averaging happens in linear color space; sRGB selects
// the sRGB transfer function over a plain linear one, matching the
// space mipmaps are meant to be generated in.
func BoxFilterScale(src []byte, srcWidth, srcHeight uint32, dest []byte, destWidth, destHeight uint32, cf ColorFormat, sRGB bool) error {
	idw := 1 / float32(destWidth)
	idh := 1 / float32(destHeight)

	for y := uint32(0); y < destHeight; y++ {
		gy := uint32(float32(y) * idh * float32(srcHeight))
		gy1 := gy + 1
		if gy1 > srcHeight-1 {
			gy1 = srcHeight - 1
		}
		for x := uint32(0); x < destWidth; x++ {
			gx := uint32(float32(x) * idw * float32(srcWidth))
			gx1 := gx + 1
			if gx1 > srcWidth-1 {
				gx1 = srcWidth - 1
			}

			p00, err := ReadPixelAt(src, gx, gy, srcWidth, srcHeight, cf)
			if err != nil {
				return err
			}
			p10, err := ReadPixelAt(src, gx1, gy, srcWidth, srcHeight, cf)
			if err != nil {
				return err
			}
			p01, err := ReadPixelAt(src, gx, gy1, srcWidth, srcHeight, cf)
			if err != nil {
				return err
			}
			p11, err := ReadPixelAt(src, gx1, gy1, srcWidth, srcHeight, cf)
			if err != nil {
				return err
			}

			l00 := mathutil.MakeLinearColor(p00, sRGB)
			l10 := mathutil.MakeLinearColor(p10, sRGB)
			l01 := mathutil.MakeLinearColor(p01, sRGB)
			l11 := mathutil.MakeLinearColor(p11, sRGB)

			avg := l00.Add(l01).Add(l10).Add(l11).Scale(0.25)
			if err := WritePixelAt(mathutil.MakeColor(avg, sRGB), dest, x, y, destWidth, destHeight, cf); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateMipmaps builds a full mipmap chain for a base level0 image
// (width x height, encoded in cf), box-filter scaling each subsequent
// level down from the previous one. The returned slice holds one pixel
// buffer per level, base level first; it stops early at the last level
// whose halved width and height are both non-zero. levels < 1 returns
// nil.
func GenerateMipmaps(level0 []byte, width, height uint32, levels int, cf ColorFormat, sRGB bool) ([][]byte, error) {
	if levels < 1 {
		return nil, nil
	}
	out := make([][]byte, levels)
	out[0] = level0

	w, h := width, height
	for lvl := 1; lvl < levels; lvl++ {
		srcW, srcH := w, h
		w = w >> 1
		h = h >> 1
		if w == 0 || h == 0 {
			out = out[:lvl]
			break
		}
		dst := make([]byte, PixdataSize(w, h, cf))
		if err := BoxFilterScale(out[lvl-1], srcW, srcH, dst, w, h, cf, sRGB); err != nil {
			return nil, err
		}
		out[lvl] = dst
	}
	return out, nil
}
