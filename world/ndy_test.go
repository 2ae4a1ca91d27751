package world

import (
	"strings"
	"testing"

	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

func buildTestNdyWorld(t *testing.T) *NdyWorld {
	t.Helper()
	script := parseTestScript(t, "flags = 0\nsymbols\nint count = 0\nend\n")
	cogs, err := readCogsSectionFromValues(script, 2)
	if err != nil {
		t.Fatalf("building test cogs: %v", err)
	}

	return &NdyWorld{
		Params: WorldParams{
			Gravity: 9.8, CeilingSkyZ: 100, HorizonDistance: 500,
			HorizonSkyOffset: mathutil.Vector2{X: 1, Y: 2},
			CeilingSkyOffset: mathutil.Vector2{X: 3, Y: 4},
			LODDistances:     [4]float32{10, 20, 30, 40},
			Fog: Fog{
				Enabled: 1, Color: [4]float32{0.1, 0.2, 0.3, 1},
				StartDepth: 5, EndDepth: 50,
			},
			State: StateUpdateFog | StateStatic,
		},
		Sounds:    []string{"explode.wav"},
		Materials: []string{"wall01.mat", "floor01.mat"},
		Georesource: Georesource{
			Verts:    []mathutil.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
			TexVerts: []mathutil.Vector2{{X: 0, Y: 0}},
			Adjoins:  []SurfaceAdjoin{{Flags: 1, Mirror: -1, Distance: 4.5}},
			Surfaces: []Surface{
				{
					MaterialIdx: 0, AdjoinIdx: -1,
					Color:  mathutil.Color{R: 255, G: 255, B: 255, A: 255},
					Normal: mathutil.Vector3{X: 0, Y: 0, Z: 1},
					Verts: []SurfaceVertex{
						{VertIdx: 0, TexIdx: 0, Color: mathutil.Color{R: 255, G: 255, B: 255, A: 255}},
						{VertIdx: 1, TexIdx: -1},
						{VertIdx: 2, TexIdx: -1},
					},
				},
			},
		},
		Sectors: []Sector{
			{
				Name: "sector0", Flags: SectorNone, PVSIdx: -1,
				Tint:         mathutil.Color{R: 10, G: 20, B: 30, A: 255},
				AmbientLight: mathutil.LinearColor{R: 0.5, G: 0.5, B: 0.5, A: 1},
				VertexIDs:    []int32{0, 1, 2},
				SurfacesCount: 1,
			},
		},
		AIClasses:      []string{},
		Models:         []string{},
		Sprites:        []string{},
		Keyframes:      []string{"walk.key"},
		AnimClasses:    []string{},
		SoundClasses:   []string{},
		CogScriptNames: []string{"test.cog"},
		CogScripts:     []*cog.Script{script},
		Cogs:           cogs,
		Templates: []Template{
			{Name: "base_template", Type: 1},
		},
		Things: []Thing{
			{Name: "thing0", TemplateIdx: 0, Placement: Placement{SectorIdx: 0}},
		},
		PVS: []byte{0x01, 0x02, 0x03},
		Fonts: []FontAtlas{
			{
				Name:     "hud_font",
				Material: "hudfont.mat",
				Glyphs: []Glyph{
					{ID: 65, X: 0, Y: 0, W: 8, H: 12, Advance: 9},
					{ID: 66, X: 8, Y: 0, W: 8, H: 12, Advance: 9},
				},
			},
		},
	}
}

func TestNdyRoundTrip(t *testing.T) {
	nw := buildTestNdyWorld(t)

	buf := stream.NewBuffer("test.ndy")
	if err := WriteNdy(text.NewWriter(buf), nw); err != nil {
		t.Fatalf("WriteNdy: %v", err)
	}

	if err := buf.Seek(0); err != nil {
		t.Fatal(err)
	}
	got, err := ReadNdy(text.NewReader(buf), loadScriptsStub(nw.CogScripts))
	if err != nil {
		t.Fatalf("ReadNdy: %v", err)
	}

	if got.Params != nw.Params {
		t.Fatalf("Params = %+v, want %+v", got.Params, nw.Params)
	}
	if len(got.Materials) != 2 || got.Materials[1] != "floor01.mat" {
		t.Fatalf("Materials = %+v", got.Materials)
	}
	if len(got.Georesource.Verts) != 3 {
		t.Fatalf("Verts count = %d, want 3", len(got.Georesource.Verts))
	}
	if len(got.Georesource.Surfaces) != 1 || got.Georesource.Surfaces[0].MaterialIdx != 0 {
		t.Fatalf("Surfaces = %+v", got.Georesource.Surfaces)
	}
	if len(got.Georesource.Surfaces[0].Verts) != 3 {
		t.Fatalf("Surface verts = %+v", got.Georesource.Surfaces[0].Verts)
	}
	if len(got.Sectors) != 1 || got.Sectors[0].Name != "sector0" {
		t.Fatalf("Sectors = %+v", got.Sectors)
	}
	if got.Sectors[0].Tint != nw.Sectors[0].Tint {
		t.Fatalf("Sectors[0].Tint = %+v, want %+v", got.Sectors[0].Tint, nw.Sectors[0].Tint)
	}
	if len(got.Keyframes) != 1 || got.Keyframes[0] != "walk.key" {
		t.Fatalf("Keyframes = %+v", got.Keyframes)
	}
	if len(got.CogScriptNames) != 1 || got.CogScriptNames[0] != "test.cog" {
		t.Fatalf("CogScriptNames = %+v", got.CogScriptNames)
	}
	if len(got.Cogs) != len(nw.Cogs) {
		t.Fatalf("Cogs count = %d, want %d", len(got.Cogs), len(nw.Cogs))
	}
	if err := VerifyCogs(got.Cogs, got.CogScripts); err != nil {
		t.Fatalf("VerifyCogs: %v", err)
	}
	if len(got.Templates) != 1 || got.Templates[0].Name != "base_template" {
		t.Fatalf("Templates = %+v", got.Templates)
	}
	if len(got.Things) != 1 || got.Things[0].Name != "thing0" || got.Things[0].TemplateIdx != 0 {
		t.Fatalf("Things = %+v", got.Things)
	}
	if string(got.PVS) != string(nw.PVS) {
		t.Fatalf("PVS = %v, want %v", got.PVS, nw.PVS)
	}
	if len(got.Fonts) != 1 || got.Fonts[0].Name != "hud_font" {
		t.Fatalf("Fonts = %+v", got.Fonts)
	}
	if len(got.Fonts[0].Glyphs) != 2 || got.Fonts[0].Glyphs[1].ID != 66 {
		t.Fatalf("Fonts[0].Glyphs = %+v", got.Fonts[0].Glyphs)
	}
}

func TestNdyWriteRejectsUnknownCogSymbolOnRead(t *testing.T) {
	nw := buildTestNdyWorld(t)

	buf := stream.NewBuffer("test.ndy")
	if err := WriteNdy(text.NewWriter(buf), nw); err != nil {
		t.Fatalf("WriteNdy: %v", err)
	}

	raw := string(buf.Bytes())
	corrupted := strings.Replace(raw, "count", "bogus", 1)
	if corrupted == raw {
		t.Skip("fixture did not contain the expected symbol key; adjust test")
	}

	bad := stream.NewBufferFromBytes("test.ndy", []byte(corrupted))
	if _, err := ReadNdy(text.NewReader(bad), loadScriptsStub(nw.CogScripts)); err == nil {
		t.Fatal("ReadNdy() = nil error, want error for a cog instance row with a mismatched symbol key")
	}
}
