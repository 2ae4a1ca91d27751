package animation

import (
	"testing"

	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

func buildAnimation() *Animation {
	return &Animation{
		Name:   "test.key",
		Flags:  FlagUsePuppetFPS,
		Type:   TypeTorso | TypeLeftArm,
		Frames: 30,
		Fps:    15.5,
		Joints: 12,
		Markers: []Marker{
			{Frame: 0, Type: MarkerTypeLeftFoot},
			{Frame: 10, Type: MarkerTypeRightFoot},
		},
		Nodes: []Node{
			{
				Num:      0,
				MeshName: "torso",
				Entries: []NodeEntry{
					{
						Frame: 0,
						Flags: EntryPositionChange,
						Pos:   mathutil.Vector3{X: 1, Y: 2, Z: 3},
						Rot:   mathutil.Rotator{Pitch: 0, Yaw: 0, Roll: 0},
						DPos:  mathutil.Vector3{},
						DRot:  mathutil.Rotator{},
					},
				},
			},
		},
	}
}

func TestKeyRoundTrip(t *testing.T) {
	anim := buildAnimation()

	buf := stream.NewBuffer("test.key")
	w := text.NewWriter(buf)
	if err := Write(w, anim, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	r := text.NewReader(buf)
	got, err := Read(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Flags != anim.Flags || got.Type != anim.Type || got.Frames != anim.Frames || got.Joints != anim.Joints {
		t.Fatalf("header mismatch: got %+v, want flags=%d type=%d frames=%d joints=%d", got, anim.Flags, anim.Type, anim.Frames, anim.Joints)
	}
	if diff := got.Fps - anim.Fps; diff > 0.001 || diff < -0.001 {
		t.Fatalf("Fps = %v, want %v", got.Fps, anim.Fps)
	}
	if len(got.Markers) != len(anim.Markers) {
		t.Fatalf("len(Markers) = %d, want %d", len(got.Markers), len(anim.Markers))
	}
	for i, m := range anim.Markers {
		if got.Markers[i].Type != m.Type {
			t.Errorf("marker %d type = %d, want %d", i, got.Markers[i].Type, m.Type)
		}
	}
	if len(got.Nodes) != 1 || got.Nodes[0].MeshName != "torso" {
		t.Fatalf("Nodes = %+v", got.Nodes)
	}
	if len(got.Nodes[0].Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(got.Nodes[0].Entries))
	}
	entry := got.Nodes[0].Entries[0]
	if entry.Pos != (mathutil.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("entry.Pos = %+v, want {1 2 3}", entry.Pos)
	}
	if entry.Flags != EntryPositionChange {
		t.Fatalf("entry.Flags = %d, want %d", entry.Flags, EntryPositionChange)
	}
}

func TestKeyNoMarkersSectionSkipped(t *testing.T) {
	anim := buildAnimation()
	anim.Markers = nil

	buf := stream.NewBuffer("nomark.key")
	w := text.NewWriter(buf)
	if err := Write(w, anim, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	got, err := Read(text.NewReader(buf))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Markers) != 0 {
		t.Fatalf("Markers = %+v, want empty", got.Markers)
	}
	if len(got.Nodes) != 1 {
		t.Fatalf("Nodes = %+v, want 1", got.Nodes)
	}
}
