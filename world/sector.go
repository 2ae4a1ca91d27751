package world

import (
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

// SectorFlag is a bit in a Sector's flag set. AdjointsNotSet's exact
// semantics are documented only from cog-script call sites (spec §9
// open questions); it is preserved opaquely here.
type SectorFlag uint32

const (
	SectorNone           SectorFlag = 0
	SectorAdjointsNotSet SectorFlag = 1 << 0
	SectorUnderwater     SectorFlag = 1 << 1
	SectorCold           SectorFlag = 1 << 2
)

// Sector is a convex-ish region of the world bounded by surfaces.
// Invariant: the surface range [SurfacesStart, SurfacesStart+SurfacesCount)
// indexes into Georesource.Surfaces.
type Sector struct {
	Name  string
	Flags SectorFlag
	Tint  mathutil.Color

	PVSIdx int32
	Center mathutil.Vector3
	Radius float32
	Thrust mathutil.Vector3

	BoundBox   mathutil.Box3
	CollideBox mathutil.Box3

	AmbientLight mathutil.LinearColor
	ExtraLight   mathutil.LinearColor
	AvgLight     mathutil.LinearColor

	AmbientSound string

	VertexIDs     []int32
	SurfacesStart int32
	SurfacesCount int32
}

const sectorNameFieldSize = 64
const sectorSoundFieldSize = 64

func readBox(r stream.Reader) (mathutil.Box3, error) {
	min, err := readVector3(r)
	if err != nil {
		return mathutil.Box3{}, err
	}
	max, err := readVector3(r)
	if err != nil {
		return mathutil.Box3{}, err
	}
	return mathutil.Box3{Min: min, Max: max}, nil
}

func writeBox(w stream.Writer, b mathutil.Box3) error {
	if err := writeVector3(w, b.Min); err != nil {
		return err
	}
	return writeVector3(w, b.Max)
}

func readLinearColor(r stream.Reader) (mathutil.LinearColor, error) {
	var c [4]float32
	if err := readFloats(r, c[:]); err != nil {
		return mathutil.LinearColor{}, err
	}
	return mathutil.LinearColor{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

func writeLinearColor(w stream.Writer, c mathutil.LinearColor) error {
	return writeFloats(w, []float32{c.R, c.G, c.B, c.A})
}

func readSector(r stream.Reader) (Sector, error) {
	var s Sector
	var err error
	if s.Name, err = stream.ReadFixedString(r, sectorNameFieldSize); err != nil {
		return s, err
	}
	flags, err := stream.ReadU32(r)
	if err != nil {
		return s, err
	}
	s.Flags = SectorFlag(flags)
	if s.Tint, err = readColor(r); err != nil {
		return s, err
	}
	if s.PVSIdx, err = stream.ReadI32(r); err != nil {
		return s, err
	}
	if s.Center, err = readVector3(r); err != nil {
		return s, err
	}
	if s.Radius, err = stream.ReadF32(r); err != nil {
		return s, err
	}
	if s.Thrust, err = readVector3(r); err != nil {
		return s, err
	}
	if s.BoundBox, err = readBox(r); err != nil {
		return s, err
	}
	if s.CollideBox, err = readBox(r); err != nil {
		return s, err
	}
	if s.AmbientLight, err = readLinearColor(r); err != nil {
		return s, err
	}
	if s.ExtraLight, err = readLinearColor(r); err != nil {
		return s, err
	}
	if s.AvgLight, err = readLinearColor(r); err != nil {
		return s, err
	}
	if s.AmbientSound, err = stream.ReadFixedString(r, sectorSoundFieldSize); err != nil {
		return s, err
	}
	numVerts, err := stream.ReadU32(r)
	if err != nil {
		return s, err
	}
	s.VertexIDs = make([]int32, numVerts)
	for i := range s.VertexIDs {
		if s.VertexIDs[i], err = stream.ReadI32(r); err != nil {
			return s, err
		}
	}
	if s.SurfacesStart, err = stream.ReadI32(r); err != nil {
		return s, err
	}
	if s.SurfacesCount, err = stream.ReadI32(r); err != nil {
		return s, err
	}
	return s, nil
}

func writeSector(w stream.Writer, s Sector) error {
	if err := stream.WriteFixedString(w, s.Name, sectorNameFieldSize); err != nil {
		return err
	}
	if err := stream.WriteU32(w, uint32(s.Flags)); err != nil {
		return err
	}
	if err := writeColor(w, s.Tint); err != nil {
		return err
	}
	if err := stream.WriteI32(w, s.PVSIdx); err != nil {
		return err
	}
	if err := writeVector3(w, s.Center); err != nil {
		return err
	}
	if err := stream.WriteF32(w, s.Radius); err != nil {
		return err
	}
	if err := writeVector3(w, s.Thrust); err != nil {
		return err
	}
	if err := writeBox(w, s.BoundBox); err != nil {
		return err
	}
	if err := writeBox(w, s.CollideBox); err != nil {
		return err
	}
	if err := writeLinearColor(w, s.AmbientLight); err != nil {
		return err
	}
	if err := writeLinearColor(w, s.ExtraLight); err != nil {
		return err
	}
	if err := writeLinearColor(w, s.AvgLight); err != nil {
		return err
	}
	if err := stream.WriteFixedString(w, s.AmbientSound, sectorSoundFieldSize); err != nil {
		return err
	}
	if err := stream.WriteU32(w, uint32(len(s.VertexIDs))); err != nil {
		return err
	}
	for _, id := range s.VertexIDs {
		if err := stream.WriteI32(w, id); err != nil {
			return err
		}
	}
	if err := stream.WriteI32(w, s.SurfacesStart); err != nil {
		return err
	}
	return stream.WriteI32(w, s.SurfacesCount)
}

func readSectors(r stream.Reader, h Header) ([]Sector, error) {
	sectors := make([]Sector, h.Sectors)
	for i := range sectors {
		s, err := readSector(r)
		if err != nil {
			return nil, err
		}
		sectors[i] = s
	}
	return sectors, nil
}

func writeSectors(w stream.Writer, sectors []Sector) error {
	for _, s := range sectors {
		if err := writeSector(w, s); err != nil {
			return err
		}
	}
	return nil
}
