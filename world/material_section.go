package world

import (
	"fmt"

	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
)

const cndMaterialNameFieldSize = 64

// cndMaterialHeaderSize is the on-disk byte size of cndMaterialHeader,
// used by the patcher to skip past a section's headers without
// decoding them.
const cndMaterialHeaderSize = cndMaterialNameFieldSize + 4*4 + 4 + 13*4

// cndMaterialHeader is the fixed per-material record in a CND's
// materials section (the "CndMatHeader" of the legacy codec): a name,
// the shared cel dimensions, cel count, mip level count and color
// format. Pixel data for every material is appended separately, as one
// contiguous blob after all headers (see readMaterialsSection).
type cndMaterialHeader struct {
	Name      string
	Width     uint32
	Height    uint32
	MipLevels uint32
	CelCount  uint32
	Format    colorformat.ColorFormat
}

func readCndColorFormat(r stream.Reader) (colorformat.ColorFormat, error) {
	var cf colorformat.ColorFormat
	mode, err := stream.ReadU32(r)
	if err != nil {
		return cf, err
	}
	cf.Mode = colorformat.Mode(mode)
	fields := []*uint32{
		&cf.Bpp,
		&cf.RedBPP, &cf.GreenBPP, &cf.BlueBPP,
		&cf.RedShl, &cf.GreenShl, &cf.BlueShl,
		&cf.RedShr, &cf.GreenShr, &cf.BlueShr,
		&cf.AlphaBPP, &cf.AlphaShl, &cf.AlphaShr,
	}
	for _, f := range fields {
		if *f, err = stream.ReadU32(r); err != nil {
			return cf, err
		}
	}
	return cf, nil
}

func writeCndColorFormat(w stream.Writer, cf colorformat.ColorFormat) error {
	if err := stream.WriteU32(w, uint32(cf.Mode)); err != nil {
		return err
	}
	fields := []uint32{
		cf.Bpp,
		cf.RedBPP, cf.GreenBPP, cf.BlueBPP,
		cf.RedShl, cf.GreenShl, cf.BlueShl,
		cf.RedShr, cf.GreenShr, cf.BlueShr,
		cf.AlphaBPP, cf.AlphaShl, cf.AlphaShr,
	}
	for _, v := range fields {
		if err := stream.WriteU32(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readCndMaterialHeader(r stream.Reader) (cndMaterialHeader, error) {
	var h cndMaterialHeader
	var err error
	if h.Name, err = stream.ReadFixedString(r, cndMaterialNameFieldSize); err != nil {
		return h, err
	}
	if h.Width, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Height, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.MipLevels, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.CelCount, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Format, err = readCndColorFormat(r); err != nil {
		return h, err
	}
	return h, nil
}

func writeCndMaterialHeader(w stream.Writer, h cndMaterialHeader) error {
	if err := stream.WriteFixedString(w, h.Name, cndMaterialNameFieldSize); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Width); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Height); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.MipLevels); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.CelCount); err != nil {
		return err
	}
	return writeCndColorFormat(w, h.Format)
}

// materialPixelBytes returns the total pixel byte size (all cels, full
// mip chains) a material occupies in the section's trailing blob.
func materialPixelBytes(m *material.Material) int {
	total := 0
	for _, cel := range m.Cels() {
		total += len(cel.Pixdata())
	}
	return total
}

// readMaterialsSection reads the CND materials section: a total
// pixel-byte count, then one cndMaterialHeader per material, then the
// pixel data for every material concatenated in order (spec §4.J; this
// layout is exactly what PatchCndMaterials streams around without
// decoding it, so the two must agree byte for byte).
func readMaterialsSection(r stream.Reader, h Header) ([]*material.Material, error) {
	if _, err := stream.ReadU32(r); err != nil { // total pixel byte count, recomputed on write
		return nil, err
	}
	headers := make([]cndMaterialHeader, h.Materials.Num)
	for i := range headers {
		mh, err := readCndMaterialHeader(r)
		if err != nil {
			return nil, err
		}
		headers[i] = mh
	}

	mats := make([]*material.Material, len(headers))
	for i, mh := range headers {
		m := material.NewMaterial(mh.Name)
		for c := uint32(0); c < mh.CelCount; c++ {
			size := colorformat.MipmapSize(mh.Width, mh.Height, int(mh.MipLevels), mh.Format)
			data, err := stream.ReadBytes(r, int(size))
			if err != nil {
				return nil, err
			}
			tex, err := material.NewTexture(mh.Width, mh.Height, mh.MipLevels, mh.Format, data)
			if err != nil {
				return nil, fmt.Errorf("world: material %q cel %d: %w", mh.Name, c, err)
			}
			if err := m.AddCel(tex); err != nil {
				return nil, fmt.Errorf("world: material %q cel %d: %w", mh.Name, c, err)
			}
		}
		mats[i] = m
	}
	return mats, nil
}

func writeMaterialsSection(w stream.Writer, mats []*material.Material) error {
	total := 0
	for _, m := range mats {
		total += materialPixelBytes(m)
	}
	if err := stream.WriteU32(w, uint32(total)); err != nil {
		return err
	}
	for _, m := range mats {
		mh := cndMaterialHeader{
			Name: m.Name(), Width: m.Width(), Height: m.Height(),
			MipLevels: m.MipLevels(), CelCount: uint32(m.Count()), Format: m.Format(),
		}
		if err := writeCndMaterialHeader(w, mh); err != nil {
			return err
		}
	}
	for _, m := range mats {
		for _, cel := range m.Cels() {
			if _, err := w.Write(cel.Pixdata()); err != nil {
				return err
			}
		}
	}
	return nil
}
