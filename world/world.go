package world

import (
	"fmt"

	"github.com/jonesengine/libim/animation"
	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
)

// World is the fully decoded, in-memory form of a CND file.
type World struct {
	Header Header

	Sounds []string

	Materials []*material.Material

	Georesource Georesource
	Sectors     []Sector

	AIClasses    []string
	Models       []string
	Sprites      []string
	Keyframes    []*animation.Animation
	AnimClasses  []string
	SoundClasses []string

	CogScriptNames []string
	CogScripts     []*cog.Script
	Cogs           []Cog

	Templates []Template
	Things    []Thing

	PVS []byte
}

// ReadCnd reads a complete World from r, following the fixed section
// order of spec §4.J. Cog script bodies are not embedded in the CND;
// loadScripts resolves each name in CogScriptNames to a parsed Script
// (e.g. via a VFS), in the same order, once the name table has been
// read and before the COGs section (which references scripts by
// index) is parsed.
func ReadCnd(r stream.Reader, loadScripts func(names []string) ([]*cog.Script, error)) (*World, error) {
	w := &World{}
	var err error

	if w.Header, err = ReadHeader(r); err != nil {
		return nil, err
	}
	h := w.Header

	if w.Sounds, err = readNameList(r, h.Sounds.Num); err != nil {
		return nil, fmt.Errorf("world: sounds section: %w", err)
	}
	if w.Materials, err = readMaterialsSection(r, h); err != nil {
		return nil, fmt.Errorf("world: materials section: %w", err)
	}
	if w.Georesource, err = readGeoresource(r, h); err != nil {
		return nil, fmt.Errorf("world: georesource section: %w", err)
	}
	if w.Sectors, err = readSectors(r, h); err != nil {
		return nil, fmt.Errorf("world: sectors section: %w", err)
	}
	if w.AIClasses, err = readNameList(r, h.AIClasses.Num); err != nil {
		return nil, fmt.Errorf("world: aiclasses section: %w", err)
	}
	if w.Models, err = readNameList(r, h.Models.Num); err != nil {
		return nil, fmt.Errorf("world: models section: %w", err)
	}
	if w.Sprites, err = readNameList(r, h.Sprites.Num); err != nil {
		return nil, fmt.Errorf("world: sprites section: %w", err)
	}
	if w.Keyframes, err = readKeyframesSection(r, h); err != nil {
		return nil, fmt.Errorf("world: keyframes section: %w", err)
	}
	if w.AnimClasses, err = readNameList(r, h.AnimClasses.Num); err != nil {
		return nil, fmt.Errorf("world: animclasses section: %w", err)
	}
	if w.SoundClasses, err = readNameList(r, h.SoundClasses.Num); err != nil {
		return nil, fmt.Errorf("world: soundclasses section: %w", err)
	}
	if w.CogScriptNames, err = readNameList(r, h.CogScripts.Num); err != nil {
		return nil, fmt.Errorf("world: cogscripts section: %w", err)
	}

	if loadScripts != nil {
		if w.CogScripts, err = loadScripts(w.CogScriptNames); err != nil {
			return nil, fmt.Errorf("world: loading cog scripts: %w", err)
		}
	}
	if w.Cogs, err = readCogsSection(r, h, w.CogScripts); err != nil {
		return nil, fmt.Errorf("world: cogs section: %w", err)
	}
	if w.Templates, err = readTemplatesSection(r, h); err != nil {
		return nil, fmt.Errorf("world: templates section: %w", err)
	}
	if w.Things, err = readThingsSection(r, h); err != nil {
		return nil, fmt.Errorf("world: things section: %w", err)
	}
	if w.PVS, err = readPVSSection(r, h); err != nil {
		return nil, fmt.Errorf("world: pvs section: %w", err)
	}

	return w, nil
}

// WriteCnd writes w to ws in full: it reserves space for the header,
// writes every section in order while recomputing counts, then
// rewinds and writes the finished header (spec §4.J write pipeline).
// static marks the output as the jones3dstatic.cnd resource container.
func WriteCnd(ws stream.ReadWriter, w *World, static bool) error {
	if err := ws.Seek(int64(HeaderSize)); err != nil {
		return err
	}

	if err := writeNameList(ws, w.Sounds); err != nil {
		return err
	}
	if err := writeMaterialsSection(ws, w.Materials); err != nil {
		return err
	}
	if err := writeGeoresource(ws, w.Georesource); err != nil {
		return err
	}
	if err := writeSectors(ws, w.Sectors); err != nil {
		return err
	}
	if err := writeNameList(ws, w.AIClasses); err != nil {
		return err
	}
	if err := writeNameList(ws, w.Models); err != nil {
		return err
	}
	if err := writeNameList(ws, w.Sprites); err != nil {
		return err
	}
	if err := writeKeyframesSection(ws, w.Keyframes); err != nil {
		return err
	}
	if err := writeNameList(ws, w.AnimClasses); err != nil {
		return err
	}
	if err := writeNameList(ws, w.SoundClasses); err != nil {
		return err
	}
	if err := writeNameList(ws, w.CogScriptNames); err != nil {
		return err
	}
	if err := writeCogsSection(ws, w.Cogs, w.CogScripts); err != nil {
		return err
	}
	if err := writeTemplatesSection(ws, w.Templates); err != nil {
		return err
	}
	if err := writeThingsSection(ws, w.Things); err != nil {
		return err
	}
	if err := writePVSSection(ws, w.PVS); err != nil {
		return err
	}

	h := w.Header
	h.FileSize = uint32(ws.Size())
	h.Copyright = Copyright
	h.FilePath = ws.Name()
	h.Version = Version
	h.State |= StateUpdateFog | StateInitHUD
	if static {
		h.State |= StateStatic
	}

	h.Sounds.Num = uint32(len(w.Sounds))
	if h.Sounds.Size < h.Sounds.Num {
		h.Sounds.Size = h.Sounds.Num
	}
	h.Materials.Num = uint32(len(w.Materials))
	if h.Materials.Size < h.Materials.Num {
		h.Materials.Size = h.Materials.Num
	}
	h.Vertices = uint32(len(w.Georesource.Verts))
	h.TexVertices = uint32(len(w.Georesource.TexVerts))
	h.Adjoins = uint32(len(w.Georesource.Adjoins))
	h.Surfaces = uint32(len(w.Georesource.Surfaces))
	h.Sectors = uint32(len(w.Sectors))

	h.AIClasses.Num = uint32(len(w.AIClasses))
	if h.AIClasses.Size < h.AIClasses.Num {
		h.AIClasses.Size = h.AIClasses.Num
	}
	h.Models.Num = uint32(len(w.Models))
	if h.Models.Size < h.Models.Num {
		h.Models.Size = h.Models.Num
	}
	h.Sprites.Num = uint32(len(w.Sprites))
	if h.Sprites.Size < h.Sprites.Num {
		h.Sprites.Size = h.Sprites.Num
	}
	h.Keyframes.Num = uint32(len(w.Keyframes))
	if h.Keyframes.Size < h.Keyframes.Num {
		h.Keyframes.Size = h.Keyframes.Num
	}
	h.AnimClasses.Num = uint32(len(w.AnimClasses))
	if h.AnimClasses.Size < h.AnimClasses.Num {
		h.AnimClasses.Size = h.AnimClasses.Num
	}
	h.SoundClasses.Num = uint32(len(w.SoundClasses))
	if h.SoundClasses.Size < h.SoundClasses.Num {
		h.SoundClasses.Size = h.SoundClasses.Num
	}
	h.CogScripts.Num = uint32(len(w.CogScriptNames))
	if h.CogScripts.Size < h.CogScripts.Num {
		h.CogScripts.Size = h.CogScripts.Num
	}

	// Num is set to the actual written count rather than an allocation
	// capacity, a deliberate deviation from the reference tool's
	// possibly-buggy "Num holds a capacity hint" behavior.
	h.Cogs.Num = uint32(len(w.Cogs))
	if h.Cogs.Size < h.Cogs.Num {
		h.Cogs.Size = h.Cogs.Num
	}

	h.Templates.Num = uint32(len(w.Templates))
	if h.Templates.Size < h.Templates.Num {
		h.Templates.Size = h.Templates.Num
	}
	if h.Things < uint32(len(w.Things)) {
		h.Things = uint32(len(w.Things))
	}
	h.LastThingIdx = 0
	if h.PVSSize < uint32(len(w.PVS)) {
		h.PVSSize = uint32(len(w.PVS))
	}

	if err := ws.Seek(0); err != nil {
		return err
	}
	return WriteHeader(ws, h)
}
