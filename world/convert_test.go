package world

import (
	"fmt"
	"testing"

	"github.com/jonesengine/libim/animation"
	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

// mapSource is an in-memory ResourceSource backed by a flat name→bytes
// table, standing in for a directory or GOB archive in tests.
type mapSource map[string][]byte

func (m mapSource) Open(name string) (stream.Reader, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("mapSource: %q not found", name)
	}
	return stream.NewBufferFromBytes(name, data), nil
}

func encodeTestMaterial(t *testing.T, m *material.Material) []byte {
	t.Helper()
	buf := stream.NewBuffer(m.Name())
	if err := material.WriteMat(buf, m); err != nil {
		t.Fatalf("WriteMat: %v", err)
	}
	return buf.Bytes()
}

func encodeTestAnimation(t *testing.T, a *animation.Animation) []byte {
	t.Helper()
	buf := stream.NewBuffer(a.Name)
	if err := animation.Write(text.NewWriter(buf), a, nil); err != nil {
		t.Fatalf("animation.Write: %v", err)
	}
	return buf.Bytes()
}

func TestConvertCndToNdyProjectsNamesOnly(t *testing.T) {
	w := buildTestWorld(t)
	nw := ConvertCndToNdy(w)

	if len(nw.Materials) != len(w.Materials) {
		t.Fatalf("Materials count = %d, want %d", len(nw.Materials), len(w.Materials))
	}
	for i, name := range nw.Materials {
		if name != w.Materials[i].Name() {
			t.Fatalf("Materials[%d] = %q, want %q", i, name, w.Materials[i].Name())
		}
	}
	if nw.Params.Gravity != w.Header.Gravity {
		t.Fatalf("Params.Gravity = %v, want %v", nw.Params.Gravity, w.Header.Gravity)
	}
	if len(nw.Sectors) != len(w.Sectors) {
		t.Fatalf("Sectors count = %d, want %d", len(nw.Sectors), len(w.Sectors))
	}
}

func TestConvertNdyToCndResolvesResources(t *testing.T) {
	wallMat := buildTestMaterial("wall01.mat", 0x11223344)
	anim := buildTestAnimation("walk.key")

	vfs := NewVFS(mapSource{
		"wall01.mat": encodeTestMaterial(t, wallMat),
		"walk.key":   encodeTestAnimation(t, anim),
	})

	script := parseTestScript(t, "flags = 0\nsymbols\nint count = 0\nend\n")
	cogs, err := readCogsSectionFromValues(script, 1)
	if err != nil {
		t.Fatalf("building test cogs: %v", err)
	}

	nw := &NdyWorld{
		Params:         WorldParams{Gravity: 9.8},
		Materials:      []string{"wall01.mat"},
		Keyframes:      []string{"walk.key"},
		CogScriptNames: []string{"test.cog"},
		CogScripts:     []*cog.Script{script},
		Cogs:           cogs,
	}

	got, err := ConvertNdyToCnd(nw, vfs, ConvertOptions{})
	if err != nil {
		t.Fatalf("ConvertNdyToCnd: %v", err)
	}
	if len(got.Materials) != 1 || got.Materials[0].Name() != "wall01.mat" {
		t.Fatalf("Materials = %+v", got.Materials)
	}
	if len(got.Keyframes) != 1 || got.Keyframes[0].Name != "walk.key" {
		t.Fatalf("Keyframes = %+v", got.Keyframes)
	}
	if got.Header.Type != TypeWorld {
		t.Fatalf("Header.Type = %v, want TypeWorld", got.Header.Type)
	}
}

func TestConvertNdyToCndFiltersStaticMaterials(t *testing.T) {
	static := &World{
		Materials: []*material.Material{buildTestMaterial("static01.mat", 0)},
	}

	vfs := NewVFS(mapSource{
		"level01.mat": encodeTestMaterial(t, buildTestMaterial("level01.mat", 1)),
	})

	nw := &NdyWorld{
		Materials: []string{"static01.mat", "level01.mat"},
		Georesource: Georesource{
			Surfaces: []Surface{{MaterialIdx: 0}, {MaterialIdx: 1}},
		},
		CogScriptNames: []string{},
		CogScripts:     []*cog.Script{},
	}

	got, err := ConvertNdyToCnd(nw, vfs, ConvertOptions{Static: static})
	if err != nil {
		t.Fatalf("ConvertNdyToCnd: %v", err)
	}
	if len(got.Materials) != 1 || got.Materials[0].Name() != "level01.mat" {
		t.Fatalf("Materials = %+v, want only level01.mat", got.Materials)
	}
	if got.Georesource.Surfaces[0].MaterialIdx != -1 {
		t.Fatalf("Surfaces[0].MaterialIdx = %d, want -1 (static sentinel)", got.Georesource.Surfaces[0].MaterialIdx)
	}
	if got.Georesource.Surfaces[1].MaterialIdx != 0 {
		t.Fatalf("Surfaces[1].MaterialIdx = %d, want 0", got.Georesource.Surfaces[1].MaterialIdx)
	}
}
