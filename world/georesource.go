package world

import (
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

// SurfaceFlag is a bit in a Surface's flag set.
type SurfaceFlag uint32

const (
	SurfaceNone     SurfaceFlag = 0
	SurfaceNoAdjoin SurfaceFlag = 1 << 0
)

// FaceFlag is a bit in a Surface's face flag set.
type FaceFlag uint32

// GeoMode selects how a surface's geometry is rendered.
type GeoMode int32

// LightMode selects how a surface is lit.
type LightMode int32

// noIndex marks an absent optional index (material, adjoin) in both
// the binary and in-memory forms.
const noIndex int32 = -1

// SurfaceVertex is one corner of a Surface: an index into
// GeoResource.Verts, an optional index into GeoResource.TexVerts
// (noIndex if the surface is untextured at this corner), and a
// per-vertex color.
type SurfaceVertex struct {
	VertIdx int32
	TexIdx  int32
	Color   mathutil.Color
}

// Surface is a polygonal face: a flag set, an optional material
// index, an optional adjoin index, geo/light modes, a face normal and
// its vertex loop.
type Surface struct {
	MaterialIdx int32
	Flags       SurfaceFlag
	FaceFlags   FaceFlag
	GeoMode     GeoMode
	LightMode   LightMode
	AdjoinIdx   int32
	Color       mathutil.Color
	Normal      mathutil.Vector3
	Verts       []SurfaceVertex
}

// HasMaterial reports whether the surface references a material.
func (s Surface) HasMaterial() bool { return s.MaterialIdx != noIndex }

// HasAdjoin reports whether the surface references an adjoin.
func (s Surface) HasAdjoin() bool { return s.AdjoinIdx != noIndex }

// SurfaceAdjoin is a portal-like connection between two surfaces in
// adjacent sectors.
type SurfaceAdjoin struct {
	Flags    uint32
	Mirror   int32
	Distance float32
}

// HasMirror reports whether the adjoin references a mirroring adjoin
// on the far side of the portal.
func (a SurfaceAdjoin) HasMirror() bool { return a.Mirror != noIndex }

// Georesource is the world's shared geometry pool.
type Georesource struct {
	Verts    []mathutil.Vector3
	TexVerts []mathutil.Vector2
	Adjoins  []SurfaceAdjoin
	Surfaces []Surface
}

func readColor(r stream.Reader) (mathutil.Color, error) {
	var c [4]float32
	if err := readFloats(r, c[:]); err != nil {
		return mathutil.Color{}, err
	}
	return mathutil.Color{
		R: uint8(c[0] * 255), G: uint8(c[1] * 255),
		B: uint8(c[2] * 255), A: uint8(c[3] * 255),
	}, nil
}

func writeColor(w stream.Writer, c mathutil.Color) error {
	return writeFloats(w, []float32{
		float32(c.R) / 255, float32(c.G) / 255,
		float32(c.B) / 255, float32(c.A) / 255,
	})
}

func readVector3(r stream.Reader) (mathutil.Vector3, error) {
	x, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Vector3{}, err
	}
	y, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Vector3{}, err
	}
	z, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Vector3{}, err
	}
	return mathutil.Vector3{X: x, Y: y, Z: z}, nil
}

func writeVector3(w stream.Writer, v mathutil.Vector3) error {
	if err := stream.WriteF32(w, v.X); err != nil {
		return err
	}
	if err := stream.WriteF32(w, v.Y); err != nil {
		return err
	}
	return stream.WriteF32(w, v.Z)
}

func readVector2(r stream.Reader) (mathutil.Vector2, error) {
	x, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Vector2{}, err
	}
	y, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Vector2{}, err
	}
	return mathutil.Vector2{X: x, Y: y}, nil
}

func writeVector2(w stream.Writer, v mathutil.Vector2) error {
	if err := stream.WriteF32(w, v.X); err != nil {
		return err
	}
	return stream.WriteF32(w, v.Y)
}

func readAdjoin(r stream.Reader) (SurfaceAdjoin, error) {
	var a SurfaceAdjoin
	var err error
	if a.Flags, err = stream.ReadU32(r); err != nil {
		return a, err
	}
	if a.Mirror, err = stream.ReadI32(r); err != nil {
		return a, err
	}
	if a.Distance, err = stream.ReadF32(r); err != nil {
		return a, err
	}
	return a, nil
}

func writeAdjoin(w stream.Writer, a SurfaceAdjoin) error {
	if err := stream.WriteU32(w, a.Flags); err != nil {
		return err
	}
	if err := stream.WriteI32(w, a.Mirror); err != nil {
		return err
	}
	return stream.WriteF32(w, a.Distance)
}

func readSurface(r stream.Reader) (Surface, error) {
	var s Surface
	var err error
	if s.MaterialIdx, err = stream.ReadI32(r); err != nil {
		return s, err
	}
	flags, err := stream.ReadU32(r)
	if err != nil {
		return s, err
	}
	s.Flags = SurfaceFlag(flags)
	faceFlags, err := stream.ReadU32(r)
	if err != nil {
		return s, err
	}
	s.FaceFlags = FaceFlag(faceFlags)
	geoMode, err := stream.ReadI32(r)
	if err != nil {
		return s, err
	}
	s.GeoMode = GeoMode(geoMode)
	lightMode, err := stream.ReadI32(r)
	if err != nil {
		return s, err
	}
	s.LightMode = LightMode(lightMode)
	if s.AdjoinIdx, err = stream.ReadI32(r); err != nil {
		return s, err
	}
	if s.Color, err = readColor(r); err != nil {
		return s, err
	}
	if s.Normal, err = readVector3(r); err != nil {
		return s, err
	}
	numVerts, err := stream.ReadU32(r)
	if err != nil {
		return s, err
	}
	s.Verts = make([]SurfaceVertex, numVerts)
	for i := range s.Verts {
		v := &s.Verts[i]
		if v.VertIdx, err = stream.ReadI32(r); err != nil {
			return s, err
		}
		if v.TexIdx, err = stream.ReadI32(r); err != nil {
			return s, err
		}
		if v.Color, err = readColor(r); err != nil {
			return s, err
		}
	}
	return s, nil
}

func writeSurface(w stream.Writer, s Surface) error {
	if err := stream.WriteI32(w, s.MaterialIdx); err != nil {
		return err
	}
	if err := stream.WriteU32(w, uint32(s.Flags)); err != nil {
		return err
	}
	if err := stream.WriteU32(w, uint32(s.FaceFlags)); err != nil {
		return err
	}
	if err := stream.WriteI32(w, int32(s.GeoMode)); err != nil {
		return err
	}
	if err := stream.WriteI32(w, int32(s.LightMode)); err != nil {
		return err
	}
	if err := stream.WriteI32(w, s.AdjoinIdx); err != nil {
		return err
	}
	if err := writeColor(w, s.Color); err != nil {
		return err
	}
	if err := writeVector3(w, s.Normal); err != nil {
		return err
	}
	if err := stream.WriteU32(w, uint32(len(s.Verts))); err != nil {
		return err
	}
	for _, v := range s.Verts {
		if err := stream.WriteI32(w, v.VertIdx); err != nil {
			return err
		}
		if err := stream.WriteI32(w, v.TexIdx); err != nil {
			return err
		}
		if err := writeColor(w, v.Color); err != nil {
			return err
		}
	}
	return nil
}

func readGeoresource(r stream.Reader, h Header) (Georesource, error) {
	var g Georesource
	g.Verts = make([]mathutil.Vector3, h.Vertices)
	for i := range g.Verts {
		v, err := readVector3(r)
		if err != nil {
			return g, err
		}
		g.Verts[i] = v
	}
	g.TexVerts = make([]mathutil.Vector2, h.TexVertices)
	for i := range g.TexVerts {
		v, err := readVector2(r)
		if err != nil {
			return g, err
		}
		g.TexVerts[i] = v
	}
	g.Adjoins = make([]SurfaceAdjoin, h.Adjoins)
	for i := range g.Adjoins {
		a, err := readAdjoin(r)
		if err != nil {
			return g, err
		}
		g.Adjoins[i] = a
	}
	g.Surfaces = make([]Surface, h.Surfaces)
	for i := range g.Surfaces {
		s, err := readSurface(r)
		if err != nil {
			return g, err
		}
		g.Surfaces[i] = s
	}
	return g, nil
}

func writeGeoresource(w stream.Writer, g Georesource) error {
	for _, v := range g.Verts {
		if err := writeVector3(w, v); err != nil {
			return err
		}
	}
	for _, v := range g.TexVerts {
		if err := writeVector2(w, v); err != nil {
			return err
		}
	}
	for _, a := range g.Adjoins {
		if err := writeAdjoin(w, a); err != nil {
			return err
		}
	}
	for _, s := range g.Surfaces {
		if err := writeSurface(w, s); err != nil {
			return err
		}
	}
	return nil
}
