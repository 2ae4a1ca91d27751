package material

import (
	"fmt"

	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/stream"
)

// MatMagic is the 4-byte file signature of a MAT material file.
const MatMagic = "MAT "

// MatVersion is the only version this codec understands.
const MatVersion = 0x32

// MatTextureType is the only MatHeader.Type this codec understands
// (value 0 denotes a flat color material, unsupported here).
const MatTextureType = 2

const (
	matHeaderSize        = 76
	matRecordHeaderSize  = 40
	matTextureHeaderSize = 24
)

// matRecordHeader mirrors the 40-byte MatRecordHeader layout. ReadMat
// reads the records and discards them; WriteMat writes RecordType and
// TexIdx and zeroes every other field, so the values a file held in
// those fields (Unknown6/Unknown7 included) are not kept across a
// read/write round trip.
type matRecordHeader struct {
	RecordType       int32
	TransparentColor int32
	Unknown1         int32
	Unknown2         int32
	Unknown3         int32
	Unknown4         int32
	Unknown5         int32
	Unknown6         int32
	Unknown7         int32
	TexIdx           int32
}

func readColorFormat(r stream.Reader) (colorformat.ColorFormat, error) {
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
		v, err := stream.ReadU32(r)
		if err != nil {
			return cf, err
		}
		*f = v
	}
	return cf, nil
}

func writeColorFormat(w stream.Writer, cf colorformat.ColorFormat) error {
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

func readMatRecordHeader(r stream.Reader) (matRecordHeader, error) {
	var rh matRecordHeader
	vals := []*int32{
		&rh.RecordType, &rh.TransparentColor,
		&rh.Unknown1, &rh.Unknown2, &rh.Unknown3, &rh.Unknown4,
		&rh.Unknown5, &rh.Unknown6, &rh.Unknown7, &rh.TexIdx,
	}
	for _, v := range vals {
		n, err := stream.ReadI32(r)
		if err != nil {
			return rh, err
		}
		*v = n
	}
	return rh, nil
}

func writeMatRecordHeader(w stream.Writer, rh matRecordHeader) error {
	vals := []int32{
		rh.RecordType, rh.TransparentColor,
		rh.Unknown1, rh.Unknown2, rh.Unknown3, rh.Unknown4,
		rh.Unknown5, rh.Unknown6, rh.Unknown7, rh.TexIdx,
	}
	for _, v := range vals {
		if err := stream.WriteI32(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadMat reads a Material from r in the MAT binary format.
func ReadMat(r stream.Reader) (*Material, error) {
	magic, err := stream.ReadFixedString(r, 4)
	if err != nil {
		return nil, err
	}
	if magic != MatMagic {
		return nil, fmt.Errorf("material: bad MAT magic %q", magic)
	}
	version, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if version != MatVersion {
		return nil, fmt.Errorf("material: unsupported MAT version 0x%X", version)
	}
	typ, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if typ != MatTextureType {
		return nil, fmt.Errorf("material: MAT file contains no textures (type=%d)", typ)
	}
	recordCount, err := stream.ReadI32(r)
	if err != nil {
		return nil, err
	}
	celCount, err := stream.ReadI32(r)
	if err != nil {
		return nil, err
	}
	if recordCount != celCount {
		return nil, fmt.Errorf("material: cannot read older version of MAT file (recordCount=%d, celCount=%d)", recordCount, celCount)
	}
	if recordCount <= 0 {
		return nil, fmt.Errorf("material: MAT file record count <= 0")
	}

	cf, err := readColorFormat(r)
	if err != nil {
		return nil, err
	}
	if cf.Mode != colorformat.RGB && cf.Mode != colorformat.RGBA {
		return nil, fmt.Errorf("material: invalid color mode %d", cf.Mode)
	}
	if cf.Bpp%8 != 0 || cf.Bpp < 16 || cf.Bpp > 32 {
		return nil, fmt.Errorf("material: invalid BPP %d", cf.Bpp)
	}

	for i := int32(0); i < recordCount; i++ {
		if _, err := readMatRecordHeader(r); err != nil {
			return nil, err
		}
	}

	mat := NewMaterial(r.Name())
	for i := int32(0); i < celCount; i++ {
		width, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		height, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		if _, err := stream.ReadU32(r); err != nil { // transparentBool
			return nil, err
		}
		if _, err := stream.ReadU32(r); err != nil { // Unknown1
			return nil, err
		}
		if _, err := stream.ReadU32(r); err != nil { // Unknown2
			return nil, err
		}
		mipLevels, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}

		size := colorformat.MipmapSize(width, height, int(mipLevels), cf)
		pixdata, err := stream.ReadBytes(r, int(size))
		if err != nil {
			return nil, err
		}

		tex, err := NewTexture(width, height, mipLevels, cf, pixdata)
		if err != nil {
			return nil, err
		}
		if err := mat.AddCel(tex); err != nil {
			return nil, err
		}
	}

	return mat, nil
}

// WriteMat writes m to w in the MAT binary format.
func WriteMat(w stream.Writer, m *Material) error {
	if m.IsEmpty() {
		return fmt.Errorf("material: cannot write empty material %q", m.Name())
	}

	celCount := int32(m.Count())
	if err := stream.WriteFixedString(w, MatMagic, 4); err != nil {
		return err
	}
	if err := stream.WriteU32(w, MatVersion); err != nil {
		return err
	}
	if err := stream.WriteU32(w, MatTextureType); err != nil {
		return err
	}
	if err := stream.WriteI32(w, celCount); err != nil {
		return err
	}
	if err := stream.WriteI32(w, celCount); err != nil {
		return err
	}
	if err := writeColorFormat(w, m.Format()); err != nil {
		return err
	}

	rh := matRecordHeader{RecordType: 8, TexIdx: 0}
	for i := int32(0); i < celCount; i++ {
		rh.TexIdx = i
		if err := writeMatRecordHeader(w, rh); err != nil {
			return err
		}
	}

	for _, tex := range m.Cels() {
		if err := stream.WriteI32(w, int32(tex.Width())); err != nil {
			return err
		}
		if err := stream.WriteI32(w, int32(tex.Height())); err != nil {
			return err
		}
		if err := stream.WriteU32(w, 0); err != nil { // transparentBool
			return err
		}
		if err := stream.WriteU32(w, 0); err != nil { // Unknown1
			return err
		}
		if err := stream.WriteU32(w, 0); err != nil { // Unknown2
			return err
		}
		if err := stream.WriteI32(w, int32(tex.MipLevels())); err != nil {
			return err
		}
		if _, err := w.Write(tex.Pixdata()); err != nil {
			return err
		}
	}

	return w.Flush()
}
