package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesengine/libim/animation"
	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/colorformat"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

func buildTestMaterial(name string, pixel uint32) *material.Material {
	m := material.NewMaterial(name)
	buf := make([]byte, colorformat.PixdataSize(1, 1, colorformat.RGBA32))
	_ = colorformat.WritePixel(mathutil.Color{R: uint8(pixel), G: uint8(pixel >> 8), B: uint8(pixel >> 16), A: uint8(pixel >> 24)}, buf, colorformat.RGBA32)
	tex, err := material.NewTexture(1, 1, 1, colorformat.RGBA32, buf)
	if err != nil {
		panic(err)
	}
	if err := m.AddCel(tex); err != nil {
		panic(err)
	}
	return m
}

func buildTestAnimation(name string) *animation.Animation {
	return &animation.Animation{
		Name: name, Flags: 1, Type: 0, Frames: 10, Fps: 30, Joints: 2,
		Markers: []animation.Marker{{Frame: 0, Type: 1}},
		Nodes: []animation.Node{
			{
				Num: 0, MeshName: "mesh0",
				Entries: []animation.NodeEntry{
					{Frame: 0, Flags: 0, Pos: mathutil.Vector3{X: 1, Y: 2, Z: 3}},
				},
			},
		},
	}
}

func parseTestScript(t *testing.T, src string) *cog.Script {
	t.Helper()
	buf := stream.NewBuffer("test.cog")
	if _, err := buf.Write([]byte(src)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	script, _, err := cog.Read(text.NewReader(buf), false)
	if err != nil {
		t.Fatalf("cog.Read: %v", err)
	}
	return script
}

func buildTestWorld(t *testing.T) *World {
	t.Helper()
	script := parseTestScript(t, "flags = 0\nsymbols\nint count = 0\nend\n")

	w := &World{
		Header: Header{Type: TypeWorld, Version: Version},
		Sounds: []string{"explode.wav"},
		Materials: []*material.Material{
			buildTestMaterial("wall01.mat", 0x11223344),
			buildTestMaterial("floor01.mat", 0xAABBCCDD),
		},
		Georesource: Georesource{
			Verts:    []mathutil.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
			TexVerts: []mathutil.Vector2{{X: 0, Y: 0}},
			Adjoins:  []SurfaceAdjoin{{Flags: 1, Mirror: -1, Distance: 4.5}},
			Surfaces: []Surface{
				{
					MaterialIdx: 0, AdjoinIdx: -1,
					Verts: []SurfaceVertex{
						{VertIdx: 0, TexIdx: 0, Color: mathutil.Color{R: 255, G: 255, B: 255, A: 255}},
						{VertIdx: 1, TexIdx: -1},
						{VertIdx: 2, TexIdx: -1},
					},
				},
			},
		},
		Sectors: []Sector{
			{Name: "sector0", Flags: SectorNone, PVSIdx: -1, VertexIDs: []int32{0, 1, 2}, SurfacesCount: 1},
		},
		AIClasses:      []string{},
		Models:         []string{},
		Sprites:        []string{},
		Keyframes:      []*animation.Animation{buildTestAnimation("walk.key")},
		AnimClasses:    []string{},
		SoundClasses:   []string{},
		CogScriptNames: []string{"test.cog"},
		CogScripts:     []*cog.Script{script},
		Cogs:           nil,
		Templates: []Template{
			{Name: "base_template", Type: 1},
		},
		Things: []Thing{
			{Name: "thing0", TemplateIdx: 0, Placement: Placement{SectorIdx: 0}},
		},
		PVS: []byte{0x01, 0x02, 0x03},
	}

	cogs, err := readCogsSectionFromValues(script, 2)
	if err != nil {
		t.Fatalf("building test cogs: %v", err)
	}
	w.Cogs = cogs
	return w
}

// readCogsSectionFromValues assigns n fresh vtable ids against script,
// mirroring what readCogsSection would do for n world-authored cog
// instances, without needing an actual encoded byte stream.
func readCogsSectionFromValues(script *cog.Script, n int) ([]Cog, error) {
	cogs := make([]Cog, n)
	for i := range cogs {
		vtid := script.NextVTableID()
		for _, name := range nonLocalSymbolNames(script) {
			sym, _ := script.Symbols.Get(name)
			def, _ := sym.VTable.Default()
			sym.VTable.Set(vtid, def)
		}
		cogs[i] = Cog{ScriptIdx: 0, VTableID: vtid}
	}
	return cogs, nil
}

func loadScriptsStub(scripts []*cog.Script) func([]string) ([]*cog.Script, error) {
	return func(names []string) ([]*cog.Script, error) {
		return scripts, nil
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		FileSize: 1234, Copyright: Copyright, FilePath: "test.cnd",
		Type: TypeContainer, Version: Version,
		Gravity: 9.8, CeilingSkyZ: 100, HorizonDistance: 500,
		State: StateUpdateFog | StateStatic,
		Materials: sectionCounts{Num: 2, Size: 4},
		Cogs:      sectionCounts{Num: 1, Size: 1},
		PVSSize:   3,
	}
	buf := stream.NewBuffer("h")
	if err := WriteHeader(buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if buf.Size() != int64(HeaderSize) {
		t.Fatalf("written size = %d, want %d", buf.Size(), HeaderSize)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHeader(buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got != h {
		t.Fatalf("ReadHeader() = %+v, want %+v", got, h)
	}
}

func TestReadHeaderRejectsInvalidType(t *testing.T) {
	h := Header{Type: Type(0xFF), Version: Version}
	buf := stream.NewBuffer("h")
	if err := WriteHeader(buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadHeader(buf); err == nil {
		t.Fatal("ReadHeader() = nil error, want error for invalid type")
	}
}

func TestCndRoundTrip(t *testing.T) {
	w := buildTestWorld(t)

	buf := stream.NewBuffer("test.cnd")
	if err := WriteCnd(buf, w, false); err != nil {
		t.Fatalf("WriteCnd: %v", err)
	}

	if err := buf.Seek(0); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCnd(buf, loadScriptsStub(w.CogScripts))
	if err != nil {
		t.Fatalf("ReadCnd: %v", err)
	}

	if len(got.Materials) != len(w.Materials) {
		t.Fatalf("Materials count = %d, want %d", len(got.Materials), len(w.Materials))
	}
	for i, m := range got.Materials {
		if m.Name() != w.Materials[i].Name() {
			t.Fatalf("Materials[%d].Name() = %q, want %q", i, m.Name(), w.Materials[i].Name())
		}
		if string(m.Cels()[0].Pixdata()) != string(w.Materials[i].Cels()[0].Pixdata()) {
			t.Fatalf("Materials[%d] pixel data mismatch", i)
		}
	}

	if len(got.Georesource.Verts) != len(w.Georesource.Verts) {
		t.Fatalf("Verts count = %d, want %d", len(got.Georesource.Verts), len(w.Georesource.Verts))
	}
	if len(got.Georesource.Surfaces) != 1 || got.Georesource.Surfaces[0].MaterialIdx != 0 {
		t.Fatalf("Surfaces = %+v", got.Georesource.Surfaces)
	}

	if len(got.Sectors) != 1 || got.Sectors[0].Name != "sector0" {
		t.Fatalf("Sectors = %+v", got.Sectors)
	}

	if len(got.Keyframes) != 1 || got.Keyframes[0].Name != "walk.key" {
		t.Fatalf("Keyframes = %+v", got.Keyframes)
	}
	if len(got.Keyframes[0].Nodes) != 1 || len(got.Keyframes[0].Nodes[0].Entries) != 1 {
		t.Fatalf("Keyframes[0].Nodes = %+v", got.Keyframes[0].Nodes)
	}

	if len(got.Cogs) != len(w.Cogs) {
		t.Fatalf("Cogs count = %d, want %d", len(got.Cogs), len(w.Cogs))
	}
	if err := VerifyCogs(got.Cogs, got.CogScripts); err != nil {
		t.Fatalf("VerifyCogs: %v", err)
	}

	if len(got.Templates) != 1 || got.Templates[0].Name != "base_template" {
		t.Fatalf("Templates = %+v", got.Templates)
	}
	if len(got.Things) != 1 || got.Things[0].Name != "thing0" {
		t.Fatalf("Things = %+v", got.Things)
	}
	if string(got.PVS) != string(w.PVS) {
		t.Fatalf("PVS = %v, want %v", got.PVS, w.PVS)
	}

	if got.Header.FileSize != uint32(buf.Size()) {
		t.Fatalf("Header.FileSize = %d, want %d", got.Header.FileSize, buf.Size())
	}
	if got.Header.State&StateUpdateFog == 0 || got.Header.State&StateInitHUD == 0 {
		t.Fatalf("Header.State = %#x, want UpdateFog|InitHUD set", got.Header.State)
	}
}

func TestPatchCndMaterialsIdempotentWhenUnchanged(t *testing.T) {
	w := buildTestWorld(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.cnd")

	fs, err := stream.CreateFileWrite(path)
	if err != nil {
		t.Fatalf("CreateFileWrite: %v", err)
	}
	if err := WriteCnd(fs, w, false); err != nil {
		t.Fatalf("WriteCnd: %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if err := PatchCndMaterials(path, w.Materials); err != nil {
		t.Fatalf("PatchCndMaterials: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile after patch: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("patching with unchanged materials altered the file: %d bytes before, %d after", len(before), len(after))
	}
}

func TestPatchCndMaterialsGrowsFile(t *testing.T) {
	w := buildTestWorld(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.cnd")

	fs, err := stream.CreateFileWrite(path)
	if err != nil {
		t.Fatalf("CreateFileWrite: %v", err)
	}
	if err := WriteCnd(fs, w, false); err != nil {
		t.Fatalf("WriteCnd: %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	grown := append(append([]*material.Material{}, w.Materials...), buildTestMaterial("extra.mat", 0x01020304))
	if err := PatchCndMaterials(path, grown); err != nil {
		t.Fatalf("PatchCndMaterials: %v", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if after.Size() <= before.Size() {
		t.Fatalf("file size after adding a material = %d, want > %d", after.Size(), before.Size())
	}

	ifs, err := stream.OpenFileRead(path)
	if err != nil {
		t.Fatalf("OpenFileRead: %v", err)
	}
	defer ifs.Close()
	h, err := ReadHeader(ifs)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Materials.Num != uint32(len(grown)) {
		t.Fatalf("Header.Materials.Num = %d, want %d", h.Materials.Num, len(grown))
	}
	if h.FileSize != uint32(after.Size()) {
		t.Fatalf("Header.FileSize = %d, want %d", h.FileSize, after.Size())
	}
}

func TestPatchCndMaterialsLeavesInputOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cnd")
	if err := os.WriteFile(path, []byte("not a cnd file"), 0644); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := PatchCndMaterials(path, nil); err == nil {
		t.Fatal("PatchCndMaterials() = nil error, want error for corrupt input")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("a failed patch altered the input file")
	}
	if _, err := os.Stat(path + ".patched"); !os.IsNotExist(err) {
		t.Fatal("a failed patch left a .patched temp file behind")
	}
}

func TestVFSFindTriesSubdirThenBareName(t *testing.T) {
	src := NewVFS(fakeSource{"cog/test.cog": "found-in-subdir"})
	r, err := src.Find("cog", "test.cog")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	data, _ := stream.ReadBytes(r, len("found-in-subdir"))
	if string(data) != "found-in-subdir" {
		t.Fatalf("Find() = %q", data)
	}

	bare := NewVFS(fakeSource{"test.cog": "found-bare"})
	r, err = bare.Find("cog", "test.cog")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	data, _ = stream.ReadBytes(r, len("found-bare"))
	if string(data) != "found-bare" {
		t.Fatalf("Find() = %q", data)
	}
}

func TestVFSFindMissingReturnsError(t *testing.T) {
	src := NewVFS(fakeSource{})
	if _, err := src.Find("cog", "missing.cog"); err == nil {
		t.Fatal("Find() = nil error, want error for missing resource")
	}
}

type fakeSource map[string]string

func (f fakeSource) Open(name string) (stream.Reader, error) {
	data, ok := f[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return stream.NewBufferFromBytes(name, []byte(data)), nil
}
