// Package animation implements the KEY text format: header metadata,
// optional frame markers, and per-mesh-node keyframe entry lists.
package animation

import (
	"fmt"

	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/text"
)

const (
	sectionHeader   = "HEADER"
	sectionMarkers  = "MARKERS"
	sectionKfNodes  = "KEYFRAME NODES"

	keyFlags  = "FLAGS"
	keyType   = "TYPE"
	keyFrames = "FRAMES"
	keyFps    = "FPS"
	keyJoints = "JOINTS"

	keyNode     = "NODE"
	keyMeshName = "MESH NAME"

	listMarkers = "MARKERS"
	listNodes   = "NODES"
	listEntries = "ENTRIES"
)

// Marker type constants (frame-event markers used by the animation
// system to trigger footstep sounds, attacks, and similar cues).
const (
	MarkerTypeMarker       = 0
	MarkerTypeLeftFoot     = 1
	MarkerTypeRightFoot    = 2
	MarkerTypeAttack       = 3
	MarkerTypeSwing        = 4
	MarkerTypeSwingFinish  = 5
	MarkerTypeSwimLeft     = 6
	MarkerTypeRunLeftFoot  = 8
	MarkerTypeRunRightFoot = 9
	MarkerTypeDied         = 10
	MarkerTypeJump         = 11
	MarkerTypeSwimRight    = 13
	MarkerTypeDuck         = 14
	MarkerTypeClimb        = 15
	MarkerTypeActivate     = 16
	MarkerTypeCrawl        = 17
	MarkerTypeRunJumpLand  = 18
	MarkerTypePickup       = 25
	MarkerTypeDrop         = 26
	MarkerTypeMove         = 27
	MarkerTypeAttackFinish = 30
	MarkerTypeTurnOff      = 31
)

// Puppet sub-mode flag bits (Animation.Flags).
const (
	FlagLoop             uint32 = 0x00
	FlagUsePuppetFPS     uint32 = 0x01
	FlagNoLoop           uint32 = 0x02
	FlagPauseOnLastFrame uint32 = 0x04
	FlagRestartActive    uint32 = 0x08
	FlagDisableFadeIn    uint32 = 0x10
	FlagFadeOutAndNoLoop uint32 = 0x20
)

// 3DO mesh node body-part mask bits (Animation.Type).
const (
	TypeNone      uint32 = 0x00
	TypeTorso     uint32 = 0x01
	TypeLeftArm   uint32 = 0x02
	TypeRightArm  uint32 = 0x04
	TypeHead      uint32 = 0x08
	TypeHip       uint32 = 0x10
	TypeLeftLeg   uint32 = 0x20
	TypeRightLeg  uint32 = 0x40
	TypeLeftHand  uint32 = 0x80
	TypeRightHand uint32 = 0x100
	TypeVehicle   uint32 = 0x400
	TypeBackPart  uint32 = 0x800
	TypeFrontPart uint32 = 0x1000
)

// Keyframe entry flag bits (KeyNodeEntry.Flags).
const (
	EntryNoChange       uint32 = 0
	EntryPositionChange uint32 = 1
	EntryRotationChange uint32 = 2
)

// Marker is a frame-indexed event cue.
type Marker struct {
	Frame float32
	Type  uint32
}

// NodeEntry is one keyframe sample for a mesh node: an absolute pose
// (Pos/Rot) plus a delta pose (DPos/DRot) applied relative to the
// puppet's movement.
type NodeEntry struct {
	Frame float32
	Flags uint32
	Pos   mathutil.Vector3
	Rot   mathutil.Rotator
	DPos  mathutil.Vector3
	DRot  mathutil.Rotator
}

// Node is the keyframe track for a single mesh node.
type Node struct {
	Num      uint32
	MeshName string
	Entries  []NodeEntry
}

// Animation is the in-memory form of a KEY file.
type Animation struct {
	Name string

	Flags  uint32
	Type   uint32
	Frames uint32
	Fps    float32
	Joints uint32

	Markers []Marker
	Nodes   []Node
}

func readHeader(r *text.Reader, anim *Animation) error {
	if err := r.AssertSection(sectionHeader); err != nil {
		return err
	}
	var err error
	if anim.Flags, err = r.ReadKeyHexFlags(keyFlags); err != nil {
		return err
	}
	if anim.Type, err = r.ReadKeyHexFlags(keyType); err != nil {
		return err
	}
	frames, err := r.ReadKeyInt(keyFrames)
	if err != nil {
		return err
	}
	anim.Frames = uint32(frames)
	if anim.Fps, err = float32Key(r, keyFps); err != nil {
		return err
	}
	joints, err := r.ReadKeyInt(keyJoints)
	if err != nil {
		return err
	}
	anim.Joints = uint32(joints)
	return nil
}

func float32Key(r *text.Reader, key string) (float32, error) {
	v, err := r.ReadKeyFloat(key)
	return float32(v), err
}

func readMarkers(r *text.Reader, anim *Animation) error {
	markers, err := text.ReadList(r, listMarkers, false, true, func(r *text.Reader, _ int) (Marker, error) {
		frame, err := r.GetFloat()
		if err != nil {
			return Marker{}, err
		}
		typ, err := r.GetNumber()
		if err != nil {
			return Marker{}, err
		}
		return Marker{Frame: float32(frame), Type: uint32(typ)}, nil
	})
	if err != nil {
		return err
	}
	anim.Markers = markers
	return nil
}

func readNodeEntry(r *text.Reader, _ int) (NodeEntry, error) {
	frame, err := r.GetFloat()
	if err != nil {
		return NodeEntry{}, err
	}
	flags, err := r.GetNumber()
	if err != nil {
		return NodeEntry{}, err
	}
	pos, err := r.ReadVector3()
	if err != nil {
		return NodeEntry{}, err
	}
	rot, err := r.ReadRotator()
	if err != nil {
		return NodeEntry{}, err
	}
	dpos, err := r.ReadVector3()
	if err != nil {
		return NodeEntry{}, err
	}
	drot, err := r.ReadRotator()
	if err != nil {
		return NodeEntry{}, err
	}
	return NodeEntry{
		Frame: float32(frame), Flags: uint32(flags),
		Pos: pos, Rot: rot, DPos: dpos, DRot: drot,
	}, nil
}

func readNode(r *text.Reader, _ int) (Node, error) {
	num, err := r.ReadKeyInt(keyNode)
	if err != nil {
		return Node{}, err
	}
	meshName, err := r.ReadKeyString(keyMeshName)
	if err != nil {
		return Node{}, err
	}
	entries, err := text.ReadList(r, listEntries, true, true, readNodeEntry)
	if err != nil {
		return Node{}, err
	}
	return Node{Num: uint32(num), MeshName: meshName, Entries: entries}, nil
}

func readKeyframes(r *text.Reader, anim *Animation) error {
	nodes, err := text.ReadList(r, listNodes, false, true, readNode)
	if err != nil {
		return err
	}
	anim.Nodes = nodes
	return nil
}

// Read parses a KEY file from r.
func Read(r *text.Reader) (*Animation, error) {
	anim := &Animation{Name: r.Name()}
	if err := readHeader(r, anim); err != nil {
		return nil, err
	}

	section, err := r.ReadSection()
	if err != nil {
		return nil, err
	}
	switch section {
	case sectionMarkers:
		if err := readMarkers(r, anim); err != nil {
			return nil, err
		}
		if err := r.AssertSection(sectionKfNodes); err != nil {
			return nil, err
		}
	case sectionKfNodes:
		// already positioned past the section label
	default:
		return nil, fmt.Errorf("animation: expected section MARKERS or KEYFRAME NODES, found %q", section)
	}

	if err := readKeyframes(r, anim); err != nil {
		return nil, err
	}
	return anim, nil
}
