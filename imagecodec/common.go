package imagecodec

import (
	"image"
	"image/color"

	"github.com/jonesengine/libim/mathutil"
)

// toNRGBA normalizes any decoded image.Image (paletted, YCbCr, ...) to
// image.NRGBA so downstream conversion only ever handles one color model.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func mathColor(c color.NRGBA) mathutil.Color {
	return mathutil.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
