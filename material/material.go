package material

import (
	"errors"

	"github.com/jonesengine/libim/colorformat"
)

// ErrCelMismatch is returned by Material.AddCel when a new cel
// disagrees with the material's existing cels on shape or format.
var ErrCelMismatch = errors.New("material: cel dimensions, format or mip levels mismatch existing cels")

// Material is an ordered list of Texture cels ("cels", typically
// animation frames) sharing width, height, color format and mip level
// count.
type Material struct {
	name string
	cels []Texture
}

// NewMaterial returns an empty, named Material.
func NewMaterial(name string) *Material {
	return &Material{name: name}
}

func (m *Material) Name() string       { return m.name }
func (m *Material) SetName(name string) { m.name = name }
func (m *Material) Cels() []Texture    { return m.cels }
func (m *Material) Count() int         { return len(m.cels) }
func (m *Material) IsEmpty() bool      { return len(m.cels) == 0 }

// Format returns the shared color format of this material's cels, or
// the zero value if the material has none.
func (m *Material) Format() colorformat.ColorFormat {
	if len(m.cels) == 0 {
		return colorformat.ColorFormat{}
	}
	return m.cels[0].format
}

// Width returns the shared cel width, or 0 if the material is empty.
func (m *Material) Width() uint32 {
	if len(m.cels) == 0 {
		return 0
	}
	return m.cels[0].width
}

// Height returns the shared cel height, or 0 if the material is empty.
func (m *Material) Height() uint32 {
	if len(m.cels) == 0 {
		return 0
	}
	return m.cels[0].height
}

// MipLevels returns the shared mip level count, or 0 if the material
// is empty.
func (m *Material) MipLevels() uint32 {
	if len(m.cels) == 0 {
		return 0
	}
	return m.cels[0].mipLevels
}

// AddCel appends tex as a new cel. It fails if the material already
// has cels and tex disagrees with them on width, height, format or
// mip level count, or if the material is non-empty and tex is empty.
func (m *Material) AddCel(tex Texture) error {
	if len(m.cels) > 0 {
		first := m.cels[0]
		if tex.IsEmpty() ||
			tex.width != first.width ||
			tex.height != first.height ||
			tex.format != first.format ||
			tex.mipLevels != first.mipLevels {
			return ErrCelMismatch
		}
	}
	m.cels = append(m.cels, tex)
	return nil
}
