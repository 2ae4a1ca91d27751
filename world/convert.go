package world

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonesengine/libim/animation"
	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/fixups"
	"github.com/jonesengine/libim/gobfile"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

// DirSource resolves VFS names against files under an on-disk
// directory, the ordinary (unpacked) search path entry a CND compiler
// consults before any GOB archive (spec §6).
type DirSource struct {
	Root string
}

// Open implements ResourceSource.
func (d DirSource) Open(name string) (stream.Reader, error) {
	return stream.OpenFileRead(filepath.Join(d.Root, name))
}

// GobSource resolves VFS names against a loaded GOB archive, the packed
// search path entry (e.g. res2.gob) a CND compiler consults after any
// directory sources.
type GobSource struct {
	Container *gobfile.Container
}

// Open implements ResourceSource.
func (g GobSource) Open(name string) (stream.Reader, error) {
	return g.Container.Open(name)
}

func resolveMaterials(vfs VFS, names []string) ([]*material.Material, error) {
	mats := make([]*material.Material, len(names))
	for i, name := range names {
		r, err := vfs.Find("mat", name)
		if err != nil {
			return nil, fmt.Errorf("world: resolving material %q: %w", name, err)
		}
		m, err := material.ReadMat(r)
		if err != nil {
			return nil, fmt.Errorf("world: reading material %q: %w", name, err)
		}
		mats[i] = m
	}
	return mats, nil
}

func resolveKeyframes(vfs VFS, names []string) ([]*animation.Animation, error) {
	anims := make([]*animation.Animation, len(names))
	for i, name := range names {
		r, err := vfs.Find("key", name)
		if err != nil {
			return nil, fmt.Errorf("world: resolving keyframe %q: %w", name, err)
		}
		a, err := animation.Read(text.NewReader(r))
		if err != nil {
			return nil, fmt.Errorf("world: reading keyframe %q: %w", name, err)
		}
		anims[i] = a
	}
	return anims, nil
}

// ResolveCogScripts opens and parses every named COG script against
// vfs, applying any registered fixup (fixups.Apply) to each before
// returning it. It is the production loadScripts callback ReadCnd and
// ReadNdy both take; CLI drivers pass it bound to a concrete VFS.
func ResolveCogScripts(vfs VFS) func(names []string) ([]*cog.Script, error) {
	return func(names []string) ([]*cog.Script, error) {
		scripts := make([]*cog.Script, len(names))
		for i, name := range names {
			r, err := vfs.Find("cog", name)
			if err != nil {
				return nil, fmt.Errorf("world: resolving cog script %q: %w", name, err)
			}
			script, _, err := cog.Read(text.NewReader(r), false)
			if err != nil {
				return nil, fmt.Errorf("world: parsing cog script %q: %w", name, err)
			}
			fixups.Apply(script)
			scripts[i] = script
		}
		return scripts, nil
	}
}

func verifyResourceNames(vfs VFS, subdir string, names []string) error {
	for _, name := range names {
		if _, err := vfs.Find(subdir, name); err != nil {
			return err
		}
	}
	return nil
}

// staticMaterialIndex builds a case-insensitive name lookup over a
// static container's material table.
func staticMaterialIndex(static *World) map[string]int32 {
	idx := make(map[string]int32, len(static.Materials))
	for i, m := range static.Materials {
		idx[strings.ToLower(m.Name())] = int32(i)
	}
	return idx
}

// filterStaticMaterials drops from materials every name the static
// container also declares, and returns an old-index→new-index remap
// for every entry: a non-negative value is the kept entry's
// position in the filtered list, a negative value -(staticIdx+1)
// marks a reference the static container itself resolves (spec §4.J
// (i): "filters out well-known static resource names ... and remaps
// surface material indices accordingly"; the negative-sentinel
// encoding for "resolved from the static table" is this codec's own
// choice, since the retrieved sources describe the filtering step but
// not its index convention).
func filterStaticMaterials(materials []string, static *World) ([]string, map[int32]int32) {
	remap := make(map[int32]int32, len(materials))
	if static == nil {
		for i := range materials {
			remap[int32(i)] = int32(i)
		}
		return materials, remap
	}

	staticIdx := staticMaterialIndex(static)
	filtered := make([]string, 0, len(materials))
	for i, name := range materials {
		if si, ok := staticIdx[strings.ToLower(name)]; ok {
			remap[int32(i)] = -(si + 1)
			continue
		}
		remap[int32(i)] = int32(len(filtered))
		filtered = append(filtered, name)
	}
	return filtered, remap
}

func remapSurfaceMaterialIndices(surfaces []Surface, remap map[int32]int32) []Surface {
	out := make([]Surface, len(surfaces))
	for i, s := range surfaces {
		if ni, ok := remap[s.MaterialIdx]; ok {
			s.MaterialIdx = ni
		}
		out[i] = s
	}
	return out
}

// ConvertOptions configures ConvertNdyToCnd's optional behaviors (spec
// §4.J: each of the three is called out as "optionally").
type ConvertOptions struct {
	// Static is the already-loaded jones3dstatic.cnd world, consulted
	// to filter duplicate material references out of the level CND
	// being produced. Nil skips filtering.
	Static *World
	// Verify checks that every name-only resource reference (sounds,
	// AI classes, models, sprites, anim classes, sound classes) opens
	// against vfs, beyond the materials/keyframes/scripts the codec
	// must open anyway to embed their data.
	Verify bool
	// IsStaticContainer marks the World being produced as the static
	// resource container itself (CND header type 0xD) rather than an
	// ordinary level (0xC).
	IsStaticContainer bool
}

// ConvertNdyToCnd resolves nw's name-only Materials and Keyframes
// against vfs, loads its referenced COG scripts if ReadNdy did not
// already do so, and assembles a fully-resolved World ready for
// WriteCnd (spec §4.J, the NDY→CND direction).
func ConvertNdyToCnd(nw *NdyWorld, vfs VFS, opts ConvertOptions) (*World, error) {
	if opts.Verify {
		lists := [][]string{nw.Sounds, nw.AIClasses, nw.Models, nw.Sprites, nw.AnimClasses, nw.SoundClasses}
		for _, names := range lists {
			if err := verifyResourceNames(vfs, "", names); err != nil {
				return nil, fmt.Errorf("world: verifying referenced resources: %w", err)
			}
		}
	}

	materialNames, materialRemap := filterStaticMaterials(nw.Materials, opts.Static)
	materials, err := resolveMaterials(vfs, materialNames)
	if err != nil {
		return nil, err
	}
	keyframes, err := resolveKeyframes(vfs, nw.Keyframes)
	if err != nil {
		return nil, err
	}

	scripts := nw.CogScripts
	if len(scripts) != len(nw.CogScriptNames) {
		loaded, err := ResolveCogScripts(vfs)(nw.CogScriptNames)
		if err != nil {
			return nil, err
		}
		scripts = loaded
	}

	headerType := TypeWorld
	if opts.IsStaticContainer {
		headerType = TypeContainer
	}

	return &World{
		Header: Header{
			Type:             headerType,
			Gravity:          nw.Params.Gravity,
			CeilingSkyZ:      nw.Params.CeilingSkyZ,
			HorizonDistance:  nw.Params.HorizonDistance,
			HorizonSkyOffset: [2]float32{nw.Params.HorizonSkyOffset.X, nw.Params.HorizonSkyOffset.Y},
			CeilingSkyOffset: [2]float32{nw.Params.CeilingSkyOffset.X, nw.Params.CeilingSkyOffset.Y},
			LODDistances:     nw.Params.LODDistances,
			Fog:              nw.Params.Fog,
			State:            nw.Params.State,
		},
		Sounds:    nw.Sounds,
		Materials: materials,
		Georesource: Georesource{
			Verts:    nw.Georesource.Verts,
			TexVerts: nw.Georesource.TexVerts,
			Adjoins:  nw.Georesource.Adjoins,
			Surfaces: remapSurfaceMaterialIndices(nw.Georesource.Surfaces, materialRemap),
		},
		Sectors:        nw.Sectors,
		AIClasses:      nw.AIClasses,
		Models:         nw.Models,
		Sprites:        nw.Sprites,
		Keyframes:      keyframes,
		AnimClasses:    nw.AnimClasses,
		SoundClasses:   nw.SoundClasses,
		CogScriptNames: nw.CogScriptNames,
		CogScripts:     scripts,
		Cogs:           nw.Cogs,
		Templates:      nw.Templates,
		Things:         nw.Things,
		PVS:            nw.PVS,
	}, nil
}

// ConvertCndToNdy projects w into its text-format counterpart: every
// field carries over unchanged except Materials and Keyframes, reduced
// to their bare names (spec §4.J). Unlike the NDY→CND direction, this
// conversion never filters: w already embeds exactly the materials and
// keyframes its own CND declared, static or not.
func ConvertCndToNdy(w *World) *NdyWorld {
	materialNames := make([]string, len(w.Materials))
	for i, m := range w.Materials {
		materialNames[i] = m.Name()
	}
	keyframeNames := make([]string, len(w.Keyframes))
	for i, a := range w.Keyframes {
		keyframeNames[i] = a.Name
	}

	h := w.Header
	return &NdyWorld{
		Params: WorldParams{
			Gravity:          h.Gravity,
			CeilingSkyZ:      h.CeilingSkyZ,
			HorizonDistance:  h.HorizonDistance,
			HorizonSkyOffset: mathutil.Vector2{X: h.HorizonSkyOffset[0], Y: h.HorizonSkyOffset[1]},
			CeilingSkyOffset: mathutil.Vector2{X: h.CeilingSkyOffset[0], Y: h.CeilingSkyOffset[1]},
			LODDistances:     h.LODDistances,
			Fog:              h.Fog,
			State:            h.State,
		},
		Sounds:         w.Sounds,
		Materials:      materialNames,
		Georesource:    w.Georesource,
		Sectors:        w.Sectors,
		AIClasses:      w.AIClasses,
		Models:         w.Models,
		Sprites:        w.Sprites,
		Keyframes:      keyframeNames,
		AnimClasses:    w.AnimClasses,
		SoundClasses:   w.SoundClasses,
		CogScriptNames: w.CogScriptNames,
		CogScripts:     w.CogScripts,
		Cogs:           w.Cogs,
		Templates:      w.Templates,
		Things:         w.Things,
		PVS:            w.PVS,
	}
}
