// Package world implements the compiled binary world format (CND) and
// its text projection (NDY): world-wide scalars, geometry, sectors,
// the named asset tables a level references, COG instances, thing
// templates and instances, and a per-sector visibility set.
package world

import (
	"fmt"

	"github.com/jonesengine/libim/stream"
)

// Type distinguishes a regular level CND from the static resource
// container CND (jones3dstatic.cnd) that every level's NDY→CND
// conversion can optionally filter references against.
type Type uint32

const (
	TypeWorld     Type = 0xC
	TypeContainer Type = 0xD
)

// Version is the only CND version this codec writes; readers accept
// any version but round-trip it through.
const Version uint32 = 0x20

// Copyright is the boilerplate string written into a fresh CND's
// header copyright field.
const Copyright = "Copyright (c) 1999-2000 LucasArts Entertainment Company LLC. All rights reserved."

const (
	copyrightFieldSize = 1216
	filePathFieldSize  = 64
)

// State is a bitset of world runtime flags stored in the header.
type State uint32

const (
	StateNone     State = 0
	StateUpdateFog State = 1 << 0
	StateInitHUD   State = 1 << 1
	StateStatic    State = 1 << 2
)

// Fog holds the world's distance-fog parameters.
type Fog struct {
	Enabled    int32
	Color      [4]float32
	StartDepth float32
	EndDepth   float32
}

// sectionCounts is the shared (actual, declared-capacity) count pair
// the header stores per section (spec §4.J: "the header records both
// an actual count and a declared capacity per section").
type sectionCounts struct {
	Num  uint32
	Size uint32
}

// Header is the fixed-layout record at the start of a CND file.
type Header struct {
	FileSize uint32
	Copyright string
	FilePath  string
	Type      Type
	Version   uint32

	Gravity         float32
	CeilingSkyZ     float32
	HorizonDistance float32
	HorizonSkyOffset [2]float32
	CeilingSkyOffset [2]float32
	LODDistances     [4]float32
	Fog              Fog

	State State

	Sounds       sectionCounts
	Materials    sectionCounts
	Vertices     uint32
	TexVertices  uint32
	Adjoins      uint32
	Surfaces     uint32
	Sectors      uint32
	AIClasses    sectionCounts
	Models       sectionCounts
	Sprites      sectionCounts
	Keyframes    sectionCounts
	AnimClasses  sectionCounts
	SoundClasses sectionCounts
	CogScripts   sectionCounts
	Cogs         sectionCounts
	Templates    sectionCounts
	Things       uint32
	LastThingIdx uint32
	PVSSize      uint32
}

func readSectionCounts(r stream.Reader) (sectionCounts, error) {
	var sc sectionCounts
	var err error
	if sc.Num, err = stream.ReadU32(r); err != nil {
		return sc, err
	}
	if sc.Size, err = stream.ReadU32(r); err != nil {
		return sc, err
	}
	return sc, nil
}

func writeSectionCounts(w stream.Writer, sc sectionCounts) error {
	if err := stream.WriteU32(w, sc.Num); err != nil {
		return err
	}
	return stream.WriteU32(w, sc.Size)
}

func readFloats(r stream.Reader, out []float32) error {
	for i := range out {
		v, err := stream.ReadF32(r)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

func writeFloats(w stream.Writer, vals []float32) error {
	for _, v := range vals {
		if err := stream.WriteF32(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadHeader reads and validates a CND header from r. A Type other
// than TypeWorld/TypeContainer is rejected with a plain error; no
// dedicated error type is used.
func ReadHeader(r stream.Reader) (Header, error) {
	var h Header
	var err error

	if h.FileSize, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Copyright, err = stream.ReadFixedString(r, copyrightFieldSize); err != nil {
		return h, err
	}
	if h.FilePath, err = stream.ReadFixedString(r, filePathFieldSize); err != nil {
		return h, err
	}
	ty, err := stream.ReadU32(r)
	if err != nil {
		return h, err
	}
	h.Type = Type(ty)
	if h.Type != TypeWorld && h.Type != TypeContainer {
		return h, fmt.Errorf("world: invalid CND type %#x", ty)
	}
	if h.Version, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Gravity, err = stream.ReadF32(r); err != nil {
		return h, err
	}
	if h.CeilingSkyZ, err = stream.ReadF32(r); err != nil {
		return h, err
	}
	if h.HorizonDistance, err = stream.ReadF32(r); err != nil {
		return h, err
	}
	if err = readFloats(r, h.HorizonSkyOffset[:]); err != nil {
		return h, err
	}
	if err = readFloats(r, h.CeilingSkyOffset[:]); err != nil {
		return h, err
	}
	if err = readFloats(r, h.LODDistances[:]); err != nil {
		return h, err
	}

	if h.Fog.Enabled, err = stream.ReadI32(r); err != nil {
		return h, err
	}
	if err = readFloats(r, h.Fog.Color[:]); err != nil {
		return h, err
	}
	if h.Fog.StartDepth, err = stream.ReadF32(r); err != nil {
		return h, err
	}
	if h.Fog.EndDepth, err = stream.ReadF32(r); err != nil {
		return h, err
	}

	state, err := stream.ReadU32(r)
	if err != nil {
		return h, err
	}
	h.State = State(state)

	for _, sc := range []*sectionCounts{&h.Sounds, &h.Materials} {
		if *sc, err = readSectionCounts(r); err != nil {
			return h, err
		}
	}
	for _, n := range []*uint32{&h.Vertices, &h.TexVertices, &h.Adjoins, &h.Surfaces, &h.Sectors} {
		if *n, err = stream.ReadU32(r); err != nil {
			return h, err
		}
	}
	for _, sc := range []*sectionCounts{
		&h.AIClasses, &h.Models, &h.Sprites, &h.Keyframes,
		&h.AnimClasses, &h.SoundClasses, &h.CogScripts, &h.Cogs, &h.Templates,
	} {
		if *sc, err = readSectionCounts(r); err != nil {
			return h, err
		}
	}
	if h.Things, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.LastThingIdx, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.PVSSize, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	return h, nil
}

// WriteHeader writes h to w in CND header layout.
func WriteHeader(w stream.Writer, h Header) error {
	if err := stream.WriteU32(w, h.FileSize); err != nil {
		return err
	}
	if err := stream.WriteFixedString(w, h.Copyright, copyrightFieldSize); err != nil {
		return err
	}
	if err := stream.WriteFixedString(w, h.FilePath, filePathFieldSize); err != nil {
		return err
	}
	if err := stream.WriteU32(w, uint32(h.Type)); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Version); err != nil {
		return err
	}
	if err := stream.WriteF32(w, h.Gravity); err != nil {
		return err
	}
	if err := stream.WriteF32(w, h.CeilingSkyZ); err != nil {
		return err
	}
	if err := stream.WriteF32(w, h.HorizonDistance); err != nil {
		return err
	}
	if err := writeFloats(w, h.HorizonSkyOffset[:]); err != nil {
		return err
	}
	if err := writeFloats(w, h.CeilingSkyOffset[:]); err != nil {
		return err
	}
	if err := writeFloats(w, h.LODDistances[:]); err != nil {
		return err
	}

	if err := stream.WriteI32(w, h.Fog.Enabled); err != nil {
		return err
	}
	if err := writeFloats(w, h.Fog.Color[:]); err != nil {
		return err
	}
	if err := stream.WriteF32(w, h.Fog.StartDepth); err != nil {
		return err
	}
	if err := stream.WriteF32(w, h.Fog.EndDepth); err != nil {
		return err
	}

	if err := stream.WriteU32(w, uint32(h.State)); err != nil {
		return err
	}

	for _, sc := range []sectionCounts{h.Sounds, h.Materials} {
		if err := writeSectionCounts(w, sc); err != nil {
			return err
		}
	}
	for _, n := range []uint32{h.Vertices, h.TexVertices, h.Adjoins, h.Surfaces, h.Sectors} {
		if err := stream.WriteU32(w, n); err != nil {
			return err
		}
	}
	for _, sc := range []sectionCounts{
		h.AIClasses, h.Models, h.Sprites, h.Keyframes,
		h.AnimClasses, h.SoundClasses, h.CogScripts, h.Cogs, h.Templates,
	} {
		if err := writeSectionCounts(w, sc); err != nil {
			return err
		}
	}
	if err := stream.WriteU32(w, h.Things); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.LastThingIdx); err != nil {
		return err
	}
	return stream.WriteU32(w, h.PVSSize)
}

// HeaderSize is the fixed on-disk byte size of Header, used by readers
// and the patcher to seek past it without materializing one.
const HeaderSize = 4 + copyrightFieldSize + filePathFieldSize + 4 + 4 +
	4 + 4 + 4 + 4*2 + 4*2 + 4*4 +
	4 + 4*4 + 4 + 4 +
	4 +
	(4+4)*2 + 4*5 + (4+4)*9 + 4 + 4 + 4
