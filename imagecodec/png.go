// Package imagecodec adapts the PNG and BMP image formats to the
// material package's Texture type, for tools that need to export a
// single cel to (or import one from) a general-purpose image viewer.
package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
)

// textureToNRGBA converts a single mipmap level of tex to an
// image.NRGBA, the common currency both image codecs decode to/from.
func textureToNRGBA(tex material.Texture) (*image.NRGBA, error) {
	data, w, h, err := tex.Mipmap(0)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			c, err := colorformat.ReadPixelAt(data, x, y, w, h, tex.Format())
			if err != nil {
				return nil, err
			}
			img.SetNRGBA(int(x), int(y), color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return img, nil
}

// nrgbaToTexture converts img to a single-mipmap Texture in format cf.
func nrgbaToTexture(img *image.NRGBA, cf colorformat.ColorFormat) (material.Texture, error) {
	bounds := img.Bounds()
	w, h := uint32(bounds.Dx()), uint32(bounds.Dy())
	pixdata := make([]byte, colorformat.PixdataSize(w, h, cf))
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			c := img.NRGBAAt(bounds.Min.X+int(x), bounds.Min.Y+int(y))
			err := colorformat.WritePixelAt(
				mathColor(c), pixdata, x, y, w, h, cf)
			if err != nil {
				return material.Texture{}, err
			}
		}
	}
	return material.NewTexture(w, h, 1, cf, pixdata)
}

// PngLoad decodes a PNG image from r into a single-mipmap Texture in
// RGBA32 (spec §4.K: "preserve width, height" of the source image).
func PngLoad(r stream.Reader) (material.Texture, error) {
	data, err := stream.ReadBytes(r, int(r.Size()-r.Tell()))
	if err != nil {
		return material.Texture{}, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return material.Texture{}, fmt.Errorf("imagecodec: png decode: %w", err)
	}
	nrgba := toNRGBA(img)
	return nrgbaToTexture(nrgba, colorformat.RGBA32)
}

// PngWrite encodes tex's level-0 mipmap to w as a PNG image.
func PngWrite(w stream.Writer, tex material.Texture) error {
	img, err := textureToNRGBA(tex)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("imagecodec: png encode: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
