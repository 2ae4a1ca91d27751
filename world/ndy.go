package world

import (
	"fmt"
	"strconv"

	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/text"
)

// Section and key names mirror the write-call order and naming found
// in the reference NDY→CND conversion driver (cndtool's ndy.h:
// writeSection_Copyright/Header/Sounds/Materials/Georesource/Sectors/
// AIClasses/Models/Sprites/Keyframes/AnimClasses/SoundClasses/
// CogScripts/Cogs/Templates/Things/PVS). That driver calls into a NDY
// section writer library not present in the retrieved sources, so the
// concrete key/value grammar below is this codec's own construction,
// built from the same SECTION/key/list primitives the COG and KEY text
// formats already use (spec §9 open question: NDY's exact text grammar
// is undocumented in the retrieved corpus).
const (
	sectionHeader       = "HEADER"
	sectionSounds       = "SOUNDS"
	sectionMaterials    = "MATERIALS"
	sectionGeoresource  = "GEORESOURCE"
	sectionSectors      = "SECTORS"
	sectionAIClasses    = "AICLASSES"
	sectionModels       = "MODELS"
	sectionSprites      = "SPRITES"
	sectionKeyframes    = "KEYFRAMES"
	sectionAnimClasses  = "ANIMCLASSES"
	sectionSoundClasses = "SOUNDCLASSES"
	sectionCogScripts   = "COG SCRIPTS"
	sectionCogs         = "COGS"
	sectionTemplates    = "TEMPLATES"
	sectionThings       = "THINGS"
	sectionPVS          = "PVS"
	sectionFonts        = "FONTS"

	keyGravity          = "GRAVITY"
	keyCeilingSkyZ       = "CEILING SKY Z"
	keyHorizonDistance   = "HORIZON DISTANCE"
	keyHorizonSkyOffset  = "HORIZON SKY OFFSET"
	keyCeilingSkyOffset  = "CEILING SKY OFFSET"
	keyLODDistances      = "LOD DISTANCES"
	keyFogEnabled        = "FOG ENABLED"
	keyFogColor          = "FOG COLOR"
	keyFogStartDepth     = "FOG START DEPTH"
	keyFogEndDepth       = "FOG END DEPTH"
	keyWorldState        = "WORLD STATE"

	listVerts    = "WORLD VERTICES"
	listTexVerts = "WORLD TEXTURE VERTICES"
	listAdjoins  = "WORLD ADJOIN"
	listSurfaces = "WORLD SURFACES"
)

// WorldParams holds the world-wide scalar fields NDY's HEADER section
// carries: the fields of Header that describe the level itself (sky,
// fog, gravity, runtime state), as opposed to the purely binary
// bookkeeping fields (file size, per-section counts, copyright
// boilerplate, file path) that only make sense in CND's fixed-layout
// header and have no text-format counterpart.
type WorldParams struct {
	Gravity          float32
	CeilingSkyZ      float32
	HorizonDistance  float32
	HorizonSkyOffset mathutil.Vector2
	CeilingSkyOffset mathutil.Vector2
	LODDistances     [4]float32
	Fog              Fog
	State            State
}

// NdyWorld is the text-format projection of World (spec §4.J: NDY is
// CND's text counterpart). It is identical in shape except Materials
// and Keyframes are carried by name only, not embedded: a level's NDY
// file references its textures and animations by filename and expects
// a CND compiler to resolve them against a VFS, whereas a compiled CND
// embeds the resolved asset bytes directly (see ConvertNdyToCnd).
type NdyWorld struct {
	Params WorldParams

	Sounds      []string
	Materials   []string
	Georesource Georesource
	Sectors     []Sector

	AIClasses    []string
	Models       []string
	Sprites      []string
	Keyframes    []string
	AnimClasses  []string
	SoundClasses []string

	CogScriptNames []string
	CogScripts     []*cog.Script
	Cogs           []Cog

	Templates []Template
	Things    []Thing

	PVS   []byte
	Fonts []FontAtlas
}

func writeFloatSlash(w *text.Writer, vals []float32) error {
	for i, v := range vals {
		if i > 0 {
			if err := w.Write("/"); err != nil {
				return err
			}
		}
		if err := w.WriteFloat(float64(v), 4); err != nil {
			return err
		}
	}
	return nil
}

func readFloatSlash(r *text.Reader, n int) ([]float32, error) {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := r.AssertPunctuator("/"); err != nil {
				return nil, err
			}
		}
		v, err := r.GetFloat()
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func writeKeyFloatSlash(w *text.Writer, key string, vals []float32) error {
	if err := w.Write(key); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := writeFloatSlash(w, vals); err != nil {
		return err
	}
	return w.WriteEol()
}

func readKeyFloatSlash(r *text.Reader, key string, n int) ([]float32, error) {
	if err := r.AssertKey(key); err != nil {
		return nil, err
	}
	return readFloatSlash(r, n)
}

func writeWorldParams(w *text.Writer, p WorldParams) error {
	if err := w.WriteSection(sectionHeader, true); err != nil {
		return err
	}
	if err := w.WriteKeyFloat(keyGravity, float64(p.Gravity), 4, 1); err != nil {
		return err
	}
	if err := w.WriteKeyFloat(keyCeilingSkyZ, float64(p.CeilingSkyZ), 4, 1); err != nil {
		return err
	}
	if err := w.WriteKeyFloat(keyHorizonDistance, float64(p.HorizonDistance), 4, 1); err != nil {
		return err
	}
	if err := writeKeyFloatSlash(w, keyHorizonSkyOffset, []float32{p.HorizonSkyOffset.X, p.HorizonSkyOffset.Y}); err != nil {
		return err
	}
	if err := writeKeyFloatSlash(w, keyCeilingSkyOffset, []float32{p.CeilingSkyOffset.X, p.CeilingSkyOffset.Y}); err != nil {
		return err
	}
	if err := writeKeyFloatSlash(w, keyLODDistances, p.LODDistances[:]); err != nil {
		return err
	}
	if err := w.WriteKeyInt(keyFogEnabled, int64(p.Fog.Enabled), 1); err != nil {
		return err
	}
	if err := writeKeyFloatSlash(w, keyFogColor, p.Fog.Color[:]); err != nil {
		return err
	}
	if err := w.WriteKeyFloat(keyFogStartDepth, float64(p.Fog.StartDepth), 4, 1); err != nil {
		return err
	}
	if err := w.WriteKeyFloat(keyFogEndDepth, float64(p.Fog.EndDepth), 4, 1); err != nil {
		return err
	}
	return w.WriteKeyHexFlags(keyWorldState, uint32(p.State), 2, 1)
}

func readWorldParams(r *text.Reader) (WorldParams, error) {
	var p WorldParams
	if err := r.AssertSection(sectionHeader); err != nil {
		return p, err
	}
	var err error
	if p.Gravity, err = float32Key(r, keyGravity); err != nil {
		return p, err
	}
	if p.CeilingSkyZ, err = float32Key(r, keyCeilingSkyZ); err != nil {
		return p, err
	}
	if p.HorizonDistance, err = float32Key(r, keyHorizonDistance); err != nil {
		return p, err
	}
	v, err := readKeyFloatSlash(r, keyHorizonSkyOffset, 2)
	if err != nil {
		return p, err
	}
	p.HorizonSkyOffset = mathutil.Vector2{X: v[0], Y: v[1]}
	v, err = readKeyFloatSlash(r, keyCeilingSkyOffset, 2)
	if err != nil {
		return p, err
	}
	p.CeilingSkyOffset = mathutil.Vector2{X: v[0], Y: v[1]}
	lod, err := readKeyFloatSlash(r, keyLODDistances, 4)
	if err != nil {
		return p, err
	}
	copy(p.LODDistances[:], lod)
	fogEnabled, err := r.ReadKeyInt(keyFogEnabled)
	if err != nil {
		return p, err
	}
	p.Fog.Enabled = int32(fogEnabled)
	fogColor, err := readKeyFloatSlash(r, keyFogColor, 4)
	if err != nil {
		return p, err
	}
	copy(p.Fog.Color[:], fogColor)
	if p.Fog.StartDepth, err = float32Key(r, keyFogStartDepth); err != nil {
		return p, err
	}
	if p.Fog.EndDepth, err = float32Key(r, keyFogEndDepth); err != nil {
		return p, err
	}
	state, err := r.ReadKeyHexFlags(keyWorldState)
	if err != nil {
		return p, err
	}
	p.State = State(state)
	return p, nil
}

func float32Key(r *text.Reader, key string) (float32, error) {
	v, err := r.ReadKeyFloat(key)
	return float32(v), err
}

func writeNameListSection(w *text.Writer, section, listName string, names []string) error {
	if err := w.WriteSection(section, true); err != nil {
		return err
	}
	return text.WriteList(w, listName, names, true, true, func(w *text.Writer, _ int, name string) error {
		return w.WriteLine(name)
	})
}

func readNameListSection(r *text.Reader, section, listName string) ([]string, error) {
	if err := r.AssertSection(section); err != nil {
		return nil, err
	}
	return text.ReadList(r, listName, true, true, func(r *text.Reader, _ int) (string, error) {
		return r.ReadLine()
	})
}

func writeTextColor(w *text.Writer, c mathutil.Color) error {
	return writeFloatSlash(w, []float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
}

func readTextColor(r *text.Reader) (mathutil.Color, error) {
	v, err := readFloatSlash(r, 4)
	if err != nil {
		return mathutil.Color{}, err
	}
	return mathutil.Color{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2]), A: uint8(v[3])}, nil
}

func writeTextLinearColor(w *text.Writer, c mathutil.LinearColor) error {
	return writeFloatSlash(w, []float32{c.R, c.G, c.B, c.A})
}

func readTextLinearColor(r *text.Reader) (mathutil.LinearColor, error) {
	v, err := readFloatSlash(r, 4)
	if err != nil {
		return mathutil.LinearColor{}, err
	}
	return mathutil.LinearColor{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func writeGeoresourceText(w *text.Writer, g Georesource) error {
	if err := w.WriteSection(sectionGeoresource, true); err != nil {
		return err
	}
	if err := text.WriteList(w, listVerts, g.Verts, true, true, func(w *text.Writer, _ int, v mathutil.Vector3) error {
		return w.WriteVector3(v)
	}); err != nil {
		return err
	}
	if err := text.WriteList(w, listTexVerts, g.TexVerts, true, true, func(w *text.Writer, _ int, v mathutil.Vector2) error {
		return w.WriteVector2(v)
	}); err != nil {
		return err
	}
	if err := text.WriteList(w, listAdjoins, g.Adjoins, true, true, writeAdjoinText); err != nil {
		return err
	}
	return text.WriteList(w, listSurfaces, g.Surfaces, true, true, writeSurfaceText)
}

func readGeoresourceText(r *text.Reader) (Georesource, error) {
	var g Georesource
	if err := r.AssertSection(sectionGeoresource); err != nil {
		return g, err
	}
	verts, err := text.ReadList(r, listVerts, true, true, func(r *text.Reader, _ int) (mathutil.Vector3, error) {
		return r.ReadVector3()
	})
	if err != nil {
		return g, err
	}
	g.Verts = verts

	texVerts, err := text.ReadList(r, listTexVerts, true, true, func(r *text.Reader, _ int) (mathutil.Vector2, error) {
		return r.ReadVector2()
	})
	if err != nil {
		return g, err
	}
	g.TexVerts = texVerts

	adjoins, err := text.ReadList(r, listAdjoins, true, true, readAdjoinText)
	if err != nil {
		return g, err
	}
	g.Adjoins = adjoins

	surfaces, err := text.ReadList(r, listSurfaces, true, true, readSurfaceText)
	if err != nil {
		return g, err
	}
	g.Surfaces = surfaces
	return g, nil
}

func writeAdjoinText(w *text.Writer, _ int, a SurfaceAdjoin) error {
	if err := w.WriteHexFlags(a.Flags, 2); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.Write(strconv.Itoa(int(a.Mirror))); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteFloat(float64(a.Distance), 4); err != nil {
		return err
	}
	return w.WriteEol()
}

func readAdjoinText(r *text.Reader, _ int) (SurfaceAdjoin, error) {
	var a SurfaceAdjoin
	flags, err := r.GetNumber()
	if err != nil {
		return a, err
	}
	a.Flags = uint32(flags)
	mirror, err := r.GetNumber()
	if err != nil {
		return a, err
	}
	a.Mirror = int32(mirror)
	a.Distance, err = float32Get(r)
	return a, err
}

func float32Get(r *text.Reader) (float32, error) {
	v, err := r.GetFloat()
	return float32(v), err
}

func writeSurfaceText(w *text.Writer, _ int, s Surface) error {
	if err := w.Write(strconv.Itoa(int(s.MaterialIdx))); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteHexFlags(uint32(s.Flags), 2); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteHexFlags(uint32(s.FaceFlags), 4); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.Write(strconv.Itoa(int(s.GeoMode))); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.Write(strconv.Itoa(int(s.LightMode))); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.Write(strconv.Itoa(int(s.AdjoinIdx))); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := writeTextColor(w, s.Color); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteVector3(s.Normal); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	return text.WriteList(w, "VERTICES", s.Verts, false, true, func(w *text.Writer, _ int, v SurfaceVertex) error {
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write(strconv.Itoa(int(v.VertIdx))); err != nil {
			return err
		}
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write(strconv.Itoa(int(v.TexIdx))); err != nil {
			return err
		}
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := writeTextColor(w, v.Color); err != nil {
			return err
		}
		return w.WriteEol()
	})
}

func readSurfaceText(r *text.Reader, _ int) (Surface, error) {
	var s Surface
	n, err := r.GetNumber()
	if err != nil {
		return s, err
	}
	s.MaterialIdx = int32(n)
	flags, err := r.GetNumber()
	if err != nil {
		return s, err
	}
	s.Flags = SurfaceFlag(flags)
	faceFlags, err := r.GetNumber()
	if err != nil {
		return s, err
	}
	s.FaceFlags = FaceFlag(faceFlags)
	geoMode, err := r.GetNumber()
	if err != nil {
		return s, err
	}
	s.GeoMode = GeoMode(geoMode)
	lightMode, err := r.GetNumber()
	if err != nil {
		return s, err
	}
	s.LightMode = LightMode(lightMode)
	adjoinIdx, err := r.GetNumber()
	if err != nil {
		return s, err
	}
	s.AdjoinIdx = int32(adjoinIdx)
	if s.Color, err = readTextColor(r); err != nil {
		return s, err
	}
	if s.Normal, err = r.ReadVector3(); err != nil {
		return s, err
	}

	verts, err := text.ReadList(r, "VERTICES", false, true, func(r *text.Reader, _ int) (SurfaceVertex, error) {
		var v SurfaceVertex
		vi, err := r.GetNumber()
		if err != nil {
			return v, err
		}
		v.VertIdx = int32(vi)
		ti, err := r.GetNumber()
		if err != nil {
			return v, err
		}
		v.TexIdx = int32(ti)
		v.Color, err = readTextColor(r)
		return v, err
	})
	if err != nil {
		return s, err
	}
	s.Verts = verts
	return s, nil
}

func writeSectorText(w *text.Writer, _ int, s Sector) error {
	if err := w.WriteLine(s.Name); err != nil {
		return err
	}
	if err := w.WriteKeyHexFlags("FLAGS", uint32(s.Flags), 2, 1); err != nil {
		return err
	}
	if err := w.Write("TINT"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := writeTextColor(w, s.Tint); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.WriteKeyInt("PVS IDX", int64(s.PVSIdx), 1); err != nil {
		return err
	}
	if err := w.Write("CENTER"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteVector3(s.Center); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.WriteKeyFloat("RADIUS", float64(s.Radius), 4, 1); err != nil {
		return err
	}
	if err := w.Write("THRUST"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteVector3(s.Thrust); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Write("BOUNDBOX"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteBox(s.BoundBox); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Write("COLLIDEBOX"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteBox(s.CollideBox); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Write("AMBIENT LIGHT"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := writeTextLinearColor(w, s.AmbientLight); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Write("EXTRA LIGHT"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := writeTextLinearColor(w, s.ExtraLight); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Write("AVG LIGHT"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := writeTextLinearColor(w, s.AvgLight); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.WriteKeyValue("AMBIENT SOUND", s.AmbientSound, 1); err != nil {
		return err
	}
	ids := make([]int32, len(s.VertexIDs))
	copy(ids, s.VertexIDs)
	if err := text.WriteList(w, "VERTEX IDS", ids, false, true, func(w *text.Writer, _ int, id int32) error {
		if err := w.Indent(1); err != nil {
			return err
		}
		return w.WriteLine(strconv.Itoa(int(id)))
	}); err != nil {
		return err
	}
	if err := w.WriteKeyInt("SURFACES START", int64(s.SurfacesStart), 1); err != nil {
		return err
	}
	return w.WriteKeyInt("SURFACES COUNT", int64(s.SurfacesCount), 1)
}

func readSectorText(r *text.Reader, _ int) (Sector, error) {
	var s Sector
	var err error
	if s.Name, err = r.ReadLine(); err != nil {
		return s, err
	}
	flags, err := r.ReadKeyHexFlags("FLAGS")
	if err != nil {
		return s, err
	}
	s.Flags = SectorFlag(flags)
	if err := r.AssertKey("TINT"); err != nil {
		return s, err
	}
	if s.Tint, err = readTextColor(r); err != nil {
		return s, err
	}
	pvsIdx, err := r.ReadKeyInt("PVS IDX")
	if err != nil {
		return s, err
	}
	s.PVSIdx = int32(pvsIdx)
	if err := r.AssertKey("CENTER"); err != nil {
		return s, err
	}
	if s.Center, err = r.ReadVector3(); err != nil {
		return s, err
	}
	if s.Radius, err = float32Key(r, "RADIUS"); err != nil {
		return s, err
	}
	if err := r.AssertKey("THRUST"); err != nil {
		return s, err
	}
	if s.Thrust, err = r.ReadVector3(); err != nil {
		return s, err
	}
	if err := r.AssertKey("BOUNDBOX"); err != nil {
		return s, err
	}
	if s.BoundBox, err = r.ReadBox(); err != nil {
		return s, err
	}
	if err := r.AssertKey("COLLIDEBOX"); err != nil {
		return s, err
	}
	if s.CollideBox, err = r.ReadBox(); err != nil {
		return s, err
	}
	if err := r.AssertKey("AMBIENT LIGHT"); err != nil {
		return s, err
	}
	if s.AmbientLight, err = readTextLinearColor(r); err != nil {
		return s, err
	}
	if err := r.AssertKey("EXTRA LIGHT"); err != nil {
		return s, err
	}
	if s.ExtraLight, err = readTextLinearColor(r); err != nil {
		return s, err
	}
	if err := r.AssertKey("AVG LIGHT"); err != nil {
		return s, err
	}
	if s.AvgLight, err = readTextLinearColor(r); err != nil {
		return s, err
	}
	if s.AmbientSound, err = r.ReadKeyString("AMBIENT SOUND"); err != nil {
		return s, err
	}
	ids, err := text.ReadList(r, "VERTEX IDS", false, true, func(r *text.Reader, _ int) (int32, error) {
		n, err := r.GetNumber()
		return int32(n), err
	})
	if err != nil {
		return s, err
	}
	s.VertexIDs = ids
	start, err := r.ReadKeyInt("SURFACES START")
	if err != nil {
		return s, err
	}
	s.SurfacesStart = int32(start)
	count, err := r.ReadKeyInt("SURFACES COUNT")
	if err != nil {
		return s, err
	}
	s.SurfacesCount = int32(count)
	return s, nil
}

func writeSectorsText(w *text.Writer, sectors []Sector) error {
	if err := w.WriteSection(sectionSectors, true); err != nil {
		return err
	}
	return text.WriteList(w, "SECTORS", sectors, true, true, writeSectorText)
}

func readSectorsText(r *text.Reader) ([]Sector, error) {
	if err := r.AssertSection(sectionSectors); err != nil {
		return nil, err
	}
	return text.ReadList(r, "SECTORS", true, true, readSectorText)
}

func writeTemplateText(w *text.Writer, _ int, t Template) error {
	if err := w.WriteLine(t.Name); err != nil {
		return err
	}
	if err := w.WriteKeyValue("BASE", t.Base, 1); err != nil {
		return err
	}
	if err := w.WriteKeyInt("TYPE", int64(t.Type), 1); err != nil {
		return err
	}
	return writePlacementText(w, t.Placement)
}

func readTemplateText(r *text.Reader, _ int) (Template, error) {
	var t Template
	var err error
	if t.Name, err = r.ReadLine(); err != nil {
		return t, err
	}
	if t.Base, err = r.ReadKeyString("BASE"); err != nil {
		return t, err
	}
	ty, err := r.ReadKeyInt("TYPE")
	if err != nil {
		return t, err
	}
	t.Type = int32(ty)
	t.Placement, err = readPlacementText(r)
	return t, err
}

func writeThingText(w *text.Writer, things []Thing, templates []Template) func(*text.Writer, int, Thing) error {
	return func(w *text.Writer, _ int, t Thing) error {
		if err := w.WriteLine(t.Name); err != nil {
			return err
		}
		templateName := ""
		if t.TemplateIdx >= 0 && int(t.TemplateIdx) < len(templates) {
			templateName = templates[t.TemplateIdx].Name
		}
		if err := w.WriteKeyValue("TEMPLATE", templateName, 1); err != nil {
			return err
		}
		return writePlacementText(w, t.Placement)
	}
}

func readThingText(templateIdx map[string]int32) func(*text.Reader, int) (Thing, error) {
	return func(r *text.Reader, _ int) (Thing, error) {
		var t Thing
		var err error
		if t.Name, err = r.ReadLine(); err != nil {
			return t, err
		}
		templateName, err := r.ReadKeyString("TEMPLATE")
		if err != nil {
			return t, err
		}
		if idx, ok := templateIdx[templateName]; ok {
			t.TemplateIdx = idx
		} else {
			t.TemplateIdx = noIndex
		}
		t.Placement, err = readPlacementText(r)
		return t, err
	}
}

func writePlacementText(w *text.Writer, p Placement) error {
	if err := w.Write("POSITION"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteVector3(p.Position); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Write("ROTATION"); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteRotator(p.Rotation); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	return w.WriteKeyInt("SECTOR", int64(p.SectorIdx), 1)
}

func readPlacementText(r *text.Reader) (Placement, error) {
	var p Placement
	var err error
	if err := r.AssertKey("POSITION"); err != nil {
		return p, err
	}
	if p.Position, err = r.ReadVector3(); err != nil {
		return p, err
	}
	if err := r.AssertKey("ROTATION"); err != nil {
		return p, err
	}
	if p.Rotation, err = r.ReadRotator(); err != nil {
		return p, err
	}
	sectorIdx, err := r.ReadKeyInt("SECTOR")
	if err != nil {
		return p, err
	}
	p.SectorIdx = int32(sectorIdx)
	return p, nil
}

// writeCogValueText and readCogValueText mirror cog/writer.go's
// unexported writeValue and cog_section.go's binary readCogValue,
// adapted to the text grammar; duplicated rather than exported from
// cog because they're specific to this package's instance-value
// encoding (cog.Write only ever serializes a script's declarations,
// never a world's per-instance overrides).
func writeCogValueText(w *text.Writer, t cog.SymbolType, v cog.Value) error {
	switch t {
	case cog.TypeInt:
		return w.Write(strconv.Itoa(int(v.Int)))
	case cog.TypeFlex:
		return w.WriteFloat(float64(v.Flex), 6)
	case cog.TypeVector:
		return w.WriteVector3(v.Vector)
	case cog.TypeMessage:
		return w.Write(v.Message.String())
	case cog.TypeAi, cog.TypeKeyframe, cog.TypeMaterial, cog.TypeModel, cog.TypeSound, cog.TypeTemplate:
		return w.Write(v.Name)
	case cog.TypeCog, cog.TypeSector, cog.TypeSurface, cog.TypeThing:
		return w.Write(strconv.Itoa(int(v.Ref)))
	default:
		return fmt.Errorf("world: symbol type %s does not carry an instance value", t)
	}
}

func readCogValueText(r *text.Reader, t cog.SymbolType) (cog.Value, error) {
	switch t {
	case cog.TypeInt:
		n, err := r.GetNumber()
		return cog.Value{Int: int32(n)}, err
	case cog.TypeFlex:
		f, err := r.GetFloat()
		return cog.Value{Flex: float32(f)}, err
	case cog.TypeVector:
		v, err := r.ReadVector3()
		return cog.Value{Vector: v}, err
	case cog.TypeMessage:
		name, err := r.GetIdentifier()
		if err != nil {
			return cog.Value{}, err
		}
		mt, ok := cog.MessageTypeFromName(name)
		if !ok {
			return cog.Value{}, fmt.Errorf("world: unknown message name %q", name)
		}
		return cog.Value{Message: mt}, nil
	case cog.TypeAi, cog.TypeKeyframe, cog.TypeMaterial, cog.TypeModel, cog.TypeSound, cog.TypeTemplate:
		tok, err := r.GetSpaceDelimitedString(true)
		if err != nil {
			return cog.Value{}, err
		}
		return cog.Value{Name: tok.Value}, nil
	case cog.TypeCog, cog.TypeSector, cog.TypeSurface, cog.TypeThing:
		n, err := r.GetNumber()
		return cog.Value{Ref: int32(n)}, err
	default:
		return cog.Value{}, fmt.Errorf("world: symbol type %s does not carry an instance value", t)
	}
}

func writeCogsText(w *text.Writer, cogs []Cog, scriptNames []string, scripts []*cog.Script) error {
	if err := w.WriteSection(sectionCogs, true); err != nil {
		return err
	}
	return text.WriteList(w, "COGS", cogs, true, true, func(w *text.Writer, _ int, c Cog) error {
		if err := w.WriteLine(scriptNames[c.ScriptIdx]); err != nil {
			return err
		}
		script := scripts[c.ScriptIdx]
		for _, name := range nonLocalSymbolNames(script) {
			sym, _ := script.Symbols.Get(name)
			v, ok := sym.VTable.Get(c.VTableID)
			if !ok {
				v, _ = sym.VTable.Default()
			}
			if err := w.Indent(1); err != nil {
				return err
			}
			if err := w.Write(name); err != nil {
				return err
			}
			if err := w.Indent(1); err != nil {
				return err
			}
			if err := writeCogValueText(w, sym.Type, v); err != nil {
				return err
			}
			if err := w.WriteEol(); err != nil {
				return err
			}
		}
		return nil
	})
}

func readCogsText(r *text.Reader, scriptIdxByName map[string]int32, scripts []*cog.Script) ([]Cog, error) {
	if err := r.AssertSection(sectionCogs); err != nil {
		return nil, err
	}
	return text.ReadList(r, "COGS", true, true, func(r *text.Reader, i int) (Cog, error) {
		scriptName, err := r.ReadLine()
		if err != nil {
			return Cog{}, err
		}
		scriptIdx, ok := scriptIdxByName[scriptName]
		if !ok {
			return Cog{}, fmt.Errorf("world: cog %d references unknown script %q", i, scriptName)
		}
		script := scripts[scriptIdx]
		vtid := script.NextVTableID()
		for _, name := range nonLocalSymbolNames(script) {
			sym, _ := script.Symbols.Get(name)
			if err := r.AssertKey(name); err != nil {
				return Cog{}, fmt.Errorf("world: cog %d symbol %q: %w", i, name, err)
			}
			v, err := readCogValueText(r, sym.Type)
			if err != nil {
				return Cog{}, fmt.Errorf("world: cog %d symbol %q: %w", i, name, err)
			}
			sym.VTable.Set(vtid, v)
		}
		return Cog{ScriptIdx: scriptIdx, VTableID: vtid}, nil
	})
}

// ReadNdy reads a complete NdyWorld from r, following the same fixed
// section order ReadCnd uses for CND (spec §4.J). loadScripts resolves
// the parsed CogScriptNames list to loaded scripts, exactly as in
// ReadCnd: a VFS-backed implementation in practice.
func ReadNdy(r *text.Reader, loadScripts func(names []string) ([]*cog.Script, error)) (*NdyWorld, error) {
	nw := &NdyWorld{}
	var err error

	if nw.Params, err = readWorldParams(r); err != nil {
		return nil, fmt.Errorf("world: ndy header section: %w", err)
	}
	if nw.Sounds, err = readNameListSection(r, sectionSounds, "SOUNDS"); err != nil {
		return nil, fmt.Errorf("world: ndy sounds section: %w", err)
	}
	if nw.Materials, err = readNameListSection(r, sectionMaterials, "MATERIALS"); err != nil {
		return nil, fmt.Errorf("world: ndy materials section: %w", err)
	}
	if nw.Georesource, err = readGeoresourceText(r); err != nil {
		return nil, fmt.Errorf("world: ndy georesource section: %w", err)
	}
	if nw.Sectors, err = readSectorsText(r); err != nil {
		return nil, fmt.Errorf("world: ndy sectors section: %w", err)
	}
	if nw.AIClasses, err = readNameListSection(r, sectionAIClasses, "AICLASSES"); err != nil {
		return nil, fmt.Errorf("world: ndy aiclasses section: %w", err)
	}
	if nw.Models, err = readNameListSection(r, sectionModels, "MODELS"); err != nil {
		return nil, fmt.Errorf("world: ndy models section: %w", err)
	}
	if nw.Sprites, err = readNameListSection(r, sectionSprites, "SPRITES"); err != nil {
		return nil, fmt.Errorf("world: ndy sprites section: %w", err)
	}
	if nw.Keyframes, err = readNameListSection(r, sectionKeyframes, "KEYFRAMES"); err != nil {
		return nil, fmt.Errorf("world: ndy keyframes section: %w", err)
	}
	if nw.AnimClasses, err = readNameListSection(r, sectionAnimClasses, "ANIMCLASSES"); err != nil {
		return nil, fmt.Errorf("world: ndy animclasses section: %w", err)
	}
	if nw.SoundClasses, err = readNameListSection(r, sectionSoundClasses, "SOUNDCLASSES"); err != nil {
		return nil, fmt.Errorf("world: ndy soundclasses section: %w", err)
	}
	if nw.CogScriptNames, err = readNameListSection(r, sectionCogScripts, "COG SCRIPTS"); err != nil {
		return nil, fmt.Errorf("world: ndy cog scripts section: %w", err)
	}

	if loadScripts != nil {
		if nw.CogScripts, err = loadScripts(nw.CogScriptNames); err != nil {
			return nil, fmt.Errorf("world: ndy loading cog scripts: %w", err)
		}
	}

	scriptIdxByName := make(map[string]int32, len(nw.CogScriptNames))
	for i, name := range nw.CogScriptNames {
		scriptIdxByName[name] = int32(i)
	}
	if nw.Cogs, err = readCogsText(r, scriptIdxByName, nw.CogScripts); err != nil {
		return nil, fmt.Errorf("world: ndy cogs section: %w", err)
	}

	if err := r.AssertSection(sectionTemplates); err != nil {
		return nil, fmt.Errorf("world: ndy templates section: %w", err)
	}
	templates, err := text.ReadList(r, "TEMPLATES", true, true, readTemplateText)
	if err != nil {
		return nil, fmt.Errorf("world: ndy templates section: %w", err)
	}
	nw.Templates = templates

	templateIdx := make(map[string]int32, len(templates))
	for i, t := range templates {
		templateIdx[t.Name] = int32(i)
	}

	if err := r.AssertSection(sectionThings); err != nil {
		return nil, fmt.Errorf("world: ndy things section: %w", err)
	}
	things, err := text.ReadList(r, "THINGS", true, true, readThingText(templateIdx))
	if err != nil {
		return nil, fmt.Errorf("world: ndy things section: %w", err)
	}
	nw.Things = things

	if err := r.AssertSection(sectionPVS); err != nil {
		return nil, fmt.Errorf("world: ndy pvs section: %w", err)
	}
	pvsLine, err := r.ReadKeyString("BYTES")
	if err != nil {
		return nil, fmt.Errorf("world: ndy pvs section: %w", err)
	}
	nw.PVS = []byte(pvsLine)

	fonts, err := readFontAtlasesSection(r)
	if err != nil {
		return nil, err
	}
	nw.Fonts = fonts

	return nw, nil
}

// WriteNdy writes nw to w in full, in the same section order ReadNdy
// expects.
func WriteNdy(w *text.Writer, nw *NdyWorld) error {
	if err := writeWorldParams(w, nw.Params); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionSounds, "SOUNDS", nw.Sounds); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionMaterials, "MATERIALS", nw.Materials); err != nil {
		return err
	}
	if err := writeGeoresourceText(w, nw.Georesource); err != nil {
		return err
	}
	if err := writeSectorsText(w, nw.Sectors); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionAIClasses, "AICLASSES", nw.AIClasses); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionModels, "MODELS", nw.Models); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionSprites, "SPRITES", nw.Sprites); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionKeyframes, "KEYFRAMES", nw.Keyframes); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionAnimClasses, "ANIMCLASSES", nw.AnimClasses); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionSoundClasses, "SOUNDCLASSES", nw.SoundClasses); err != nil {
		return err
	}
	if err := writeNameListSection(w, sectionCogScripts, "COG SCRIPTS", nw.CogScriptNames); err != nil {
		return err
	}
	if err := writeCogsText(w, nw.Cogs, nw.CogScriptNames, nw.CogScripts); err != nil {
		return err
	}
	if err := w.WriteSection(sectionTemplates, true); err != nil {
		return err
	}
	if err := text.WriteList(w, "TEMPLATES", nw.Templates, true, true, writeTemplateText); err != nil {
		return err
	}
	if err := w.WriteSection(sectionThings, true); err != nil {
		return err
	}
	if err := text.WriteList(w, "THINGS", nw.Things, true, true, writeThingText(nw.Things, nw.Templates)); err != nil {
		return err
	}
	if err := w.WriteSection(sectionPVS, true); err != nil {
		return err
	}
	if err := w.WriteKeyValue("BYTES", string(nw.PVS), 1); err != nil {
		return err
	}
	return writeFontAtlasesSection(w, nw.Fonts)
}
