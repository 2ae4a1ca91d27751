// Package material implements the mipmap-chain texture container
// (Texture/Material) and the MAT binary serialization format.
package material

import (
	"errors"
	"fmt"

	"github.com/jonesengine/libim/colorformat"
)

// ErrEmptyTexture is returned when an operation requires non-empty
// pixel data.
var ErrEmptyTexture = errors.New("material: texture has no pixel data")

// Texture is an immutable, shared mipmap chain: width x height base
// level followed by mipLevels-1 successively halved levels, all in the
// same color format, packed back-to-back in Pixdata.
type Texture struct {
	width     uint32
	height    uint32
	mipLevels uint32
	format    colorformat.ColorFormat
	pixdata   []byte
}

// NewTexture builds a Texture from a complete mipmap chain's worth of
// pixel data. len(pixdata) must equal the chain's computed size.
func NewTexture(width, height, mipLevels uint32, format colorformat.ColorFormat, pixdata []byte) (Texture, error) {
	want := colorformat.MipmapSize(width, height, int(mipLevels), format)
	if uint32(len(pixdata)) != want {
		return Texture{}, fmt.Errorf("material: invalid texture size and color format: got %d bytes, want %d", len(pixdata), want)
	}
	return Texture{width: width, height: height, mipLevels: mipLevels, format: format, pixdata: pixdata}, nil
}

func (t Texture) Width() uint32                     { return t.width }
func (t Texture) Height() uint32                     { return t.height }
func (t Texture) MipLevels() uint32                  { return t.mipLevels }
func (t Texture) Format() colorformat.ColorFormat    { return t.format }
func (t Texture) Pixdata() []byte                    { return t.pixdata }
func (t Texture) Stride() uint32                     { return colorformat.Stride(t.width, t.format) }
func (t Texture) IsEmpty() bool                      { return len(t.pixdata) == 0 }

// Size is the byte size of the base (LOD 0) level's pixel data.
func (t Texture) Size() uint32 {
	return colorformat.PixdataSize(t.width, t.height, t.format)
}

// IsFullMipmapChain reports whether MipLevels equals the maximum
// number of LOD levels this texture's dimensions can hold.
func (t Texture) IsFullMipmapChain() bool {
	return t.mipLevels == colorformat.MaxMipmapLevels(t.width, t.height)
}

// Mipmap returns the pixel data for a single LOD level (0 is the base
// level), along with that level's width and height.
func (t Texture) Mipmap(lod uint32) (data []byte, w, h uint32, err error) {
	if lod >= t.mipLevels {
		return nil, 0, 0, fmt.Errorf("material: lod %d out of range (mipLevels=%d)", lod, t.mipLevels)
	}
	off := colorformat.MipmapSize(t.width, t.height, int(lod), t.format)
	w, h = t.width>>lod, t.height>>lod
	size := colorformat.PixdataSize(w, h, t.format)
	return t.pixdata[off : off+size], w, h, nil
}

// Convert returns a copy of this texture with every mipmap level
// converted to a different color format.
func (t Texture) Convert(to colorformat.ColorFormat) (Texture, error) {
	if t.format == to {
		dup := make([]byte, len(t.pixdata))
		copy(dup, t.pixdata)
		return Texture{t.width, t.height, t.mipLevels, t.format, dup}, nil
	}

	out := make([]byte, 0, colorformat.MipmapSize(t.width, t.height, int(t.mipLevels), to))
	w, h := t.width, t.height
	for lod := uint32(0); lod < t.mipLevels; lod++ {
		level, lw, lh, err := t.Mipmap(lod)
		if err != nil {
			return Texture{}, err
		}
		converted, err := colorformat.ConvertPixdata(level, lw, lh, t.format, to)
		if err != nil {
			return Texture{}, err
		}
		out = append(out, converted...)
		w, h = w>>1, h>>1
		_ = h
	}
	return Texture{t.width, t.height, t.mipLevels, to, out}, nil
}

// GenerateMipmaps returns a new Texture whose pixel buffer holds a
// fresh mipmap chain with the given number of levels (t itself is left
// unchanged), optionally
// converting to a different target color format first. levels == 0
// means "as many levels as the dimensions allow". Chain generation
// box-filter-scales each level down from the previous one.
func (t Texture) GenerateMipmaps(levels uint32, targetFormat *colorformat.ColorFormat, sRGB bool) (Texture, error) {
	if t.IsEmpty() {
		return Texture{}, ErrEmptyTexture
	}

	cf := t.format
	if targetFormat != nil {
		cf = *targetFormat
	}

	base, _, _, err := t.Mipmap(0)
	if err != nil {
		return Texture{}, err
	}
	if cf != t.format {
		base, err = colorformat.ConvertPixdata(base, t.width, t.height, t.format, cf)
		if err != nil {
			return Texture{}, err
		}
	}

	if levels == 0 {
		levels = colorformat.MaxMipmapLevels(t.width, t.height)
	}

	chain, err := colorformat.GenerateMipmaps(base, t.width, t.height, int(levels), cf, sRGB)
	if err != nil {
		return Texture{}, err
	}

	var combined []byte
	for _, level := range chain {
		combined = append(combined, level...)
	}
	return Texture{t.width, t.height, uint32(len(chain)), cf, combined}, nil
}
