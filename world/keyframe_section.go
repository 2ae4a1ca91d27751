package world

import (
	"github.com/jonesengine/libim/animation"
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

const keyNameFieldSize = 64

// On-disk byte sizes of the keyframes section's fixed records, used by
// the patcher to skip past old section data without decoding it.
const (
	cndKeyHeaderSize = keyNameFieldSize + 4*7
	cndKeyNodeSize   = 4 + keyNameFieldSize + 4
	keyMarkerSize    = 4 + 4
	keyNodeEntrySize = 4 + 4 + 12 + 12 + 12 + 12
)

// The keyframes section stores every animation's fixed header up
// front, then the markers, node descriptors and node entries of every
// animation concatenated into three flat arrays (in that order), each
// animation claiming a contiguous run sized by its own header counts.
// This is not how the text KEY format nests things, but it is exactly
// the layout PatchCndAnimations streams past without decoding (it reads
// a leading [totalMarkers, totalNodes, totalEntries] triple and uses it
// to compute the old section's end offset), so the two must agree.

func readKeyMarker(r stream.Reader) (animation.Marker, error) {
	frame, err := stream.ReadF32(r)
	if err != nil {
		return animation.Marker{}, err
	}
	typ, err := stream.ReadU32(r)
	if err != nil {
		return animation.Marker{}, err
	}
	return animation.Marker{Frame: frame, Type: typ}, nil
}

func writeKeyMarker(w stream.Writer, m animation.Marker) error {
	if err := stream.WriteF32(w, m.Frame); err != nil {
		return err
	}
	return stream.WriteU32(w, m.Type)
}

func readRotator(r stream.Reader) (mathutil.Rotator, error) {
	pitch, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Rotator{}, err
	}
	yaw, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Rotator{}, err
	}
	roll, err := stream.ReadF32(r)
	if err != nil {
		return mathutil.Rotator{}, err
	}
	return mathutil.Rotator{Pitch: pitch, Yaw: yaw, Roll: roll}, nil
}

func writeRotator(w stream.Writer, r mathutil.Rotator) error {
	if err := stream.WriteF32(w, r.Pitch); err != nil {
		return err
	}
	if err := stream.WriteF32(w, r.Yaw); err != nil {
		return err
	}
	return stream.WriteF32(w, r.Roll)
}

func readKeyNodeEntry(r stream.Reader) (animation.NodeEntry, error) {
	var e animation.NodeEntry
	var err error
	if e.Frame, err = stream.ReadF32(r); err != nil {
		return e, err
	}
	if e.Flags, err = stream.ReadU32(r); err != nil {
		return e, err
	}
	if e.Pos, err = readVector3(r); err != nil {
		return e, err
	}
	if e.Rot, err = readRotator(r); err != nil {
		return e, err
	}
	if e.DPos, err = readVector3(r); err != nil {
		return e, err
	}
	if e.DRot, err = readRotator(r); err != nil {
		return e, err
	}
	return e, nil
}

func writeKeyNodeEntry(w stream.Writer, e animation.NodeEntry) error {
	if err := stream.WriteF32(w, e.Frame); err != nil {
		return err
	}
	if err := stream.WriteU32(w, e.Flags); err != nil {
		return err
	}
	if err := writeVector3(w, e.Pos); err != nil {
		return err
	}
	if err := writeRotator(w, e.Rot); err != nil {
		return err
	}
	if err := writeVector3(w, e.DPos); err != nil {
		return err
	}
	return writeRotator(w, e.DRot)
}

type cndKeyHeader struct {
	Name       string
	Flags      uint32
	Type       uint32
	Frames     uint32
	Fps        float32
	Joints     uint32
	NumMarkers uint32
	NumNodes   uint32
}

func readCndKeyHeader(r stream.Reader) (cndKeyHeader, error) {
	var h cndKeyHeader
	var err error
	if h.Name, err = stream.ReadFixedString(r, keyNameFieldSize); err != nil {
		return h, err
	}
	if h.Flags, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Type, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Frames, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.Fps, err = stream.ReadF32(r); err != nil {
		return h, err
	}
	if h.Joints, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.NumMarkers, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	if h.NumNodes, err = stream.ReadU32(r); err != nil {
		return h, err
	}
	return h, nil
}

func writeCndKeyHeader(w stream.Writer, h cndKeyHeader) error {
	if err := stream.WriteFixedString(w, h.Name, keyNameFieldSize); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Flags); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Type); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Frames); err != nil {
		return err
	}
	if err := stream.WriteF32(w, h.Fps); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.Joints); err != nil {
		return err
	}
	if err := stream.WriteU32(w, h.NumMarkers); err != nil {
		return err
	}
	return stream.WriteU32(w, h.NumNodes)
}

type cndKeyNode struct {
	Num        uint32
	MeshName   string
	NumEntries uint32
}

func readCndKeyNode(r stream.Reader) (cndKeyNode, error) {
	var n cndKeyNode
	var err error
	if n.Num, err = stream.ReadU32(r); err != nil {
		return n, err
	}
	if n.MeshName, err = stream.ReadFixedString(r, keyNameFieldSize); err != nil {
		return n, err
	}
	if n.NumEntries, err = stream.ReadU32(r); err != nil {
		return n, err
	}
	return n, nil
}

func writeCndKeyNode(w stream.Writer, n cndKeyNode) error {
	if err := stream.WriteU32(w, n.Num); err != nil {
		return err
	}
	if err := stream.WriteFixedString(w, n.MeshName, keyNameFieldSize); err != nil {
		return err
	}
	return stream.WriteU32(w, n.NumEntries)
}

func readKeyframesSection(r stream.Reader, h Header) ([]*animation.Animation, error) {
	totalMarkers, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	totalNodes, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	totalEntries, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}

	headers := make([]cndKeyHeader, h.Keyframes.Num)
	for i := range headers {
		if headers[i], err = readCndKeyHeader(r); err != nil {
			return nil, err
		}
	}

	markers := make([]animation.Marker, totalMarkers)
	for i := range markers {
		if markers[i], err = readKeyMarker(r); err != nil {
			return nil, err
		}
	}

	nodeHeaders := make([]cndKeyNode, totalNodes)
	for i := range nodeHeaders {
		if nodeHeaders[i], err = readCndKeyNode(r); err != nil {
			return nil, err
		}
	}

	entries := make([]animation.NodeEntry, totalEntries)
	for i := range entries {
		if entries[i], err = readKeyNodeEntry(r); err != nil {
			return nil, err
		}
	}

	anims := make([]*animation.Animation, len(headers))
	var markerCursor, nodeCursor, entryCursor uint32
	for i, kh := range headers {
		a := &animation.Animation{
			Name: kh.Name, Flags: kh.Flags, Type: kh.Type,
			Frames: kh.Frames, Fps: kh.Fps, Joints: kh.Joints,
		}
		a.Markers = append([]animation.Marker(nil), markers[markerCursor:markerCursor+kh.NumMarkers]...)
		markerCursor += kh.NumMarkers

		a.Nodes = make([]animation.Node, kh.NumNodes)
		for n := uint32(0); n < kh.NumNodes; n++ {
			nh := nodeHeaders[nodeCursor]
			nodeCursor++
			a.Nodes[n] = animation.Node{
				Num:      nh.Num,
				MeshName: nh.MeshName,
				Entries:  append([]animation.NodeEntry(nil), entries[entryCursor:entryCursor+nh.NumEntries]...),
			}
			entryCursor += nh.NumEntries
		}
		anims[i] = a
	}
	return anims, nil
}

func writeKeyframesSection(w stream.Writer, anims []*animation.Animation) error {
	var totalMarkers, totalNodes, totalEntries uint32
	for _, a := range anims {
		totalMarkers += uint32(len(a.Markers))
		totalNodes += uint32(len(a.Nodes))
		for _, n := range a.Nodes {
			totalEntries += uint32(len(n.Entries))
		}
	}
	if err := stream.WriteU32(w, totalMarkers); err != nil {
		return err
	}
	if err := stream.WriteU32(w, totalNodes); err != nil {
		return err
	}
	if err := stream.WriteU32(w, totalEntries); err != nil {
		return err
	}

	for _, a := range anims {
		kh := cndKeyHeader{
			Name: a.Name, Flags: a.Flags, Type: a.Type, Frames: a.Frames,
			Fps: a.Fps, Joints: a.Joints,
			NumMarkers: uint32(len(a.Markers)), NumNodes: uint32(len(a.Nodes)),
		}
		if err := writeCndKeyHeader(w, kh); err != nil {
			return err
		}
	}
	for _, a := range anims {
		for _, m := range a.Markers {
			if err := writeKeyMarker(w, m); err != nil {
				return err
			}
		}
	}
	for _, a := range anims {
		for _, n := range a.Nodes {
			nh := cndKeyNode{Num: n.Num, MeshName: n.MeshName, NumEntries: uint32(len(n.Entries))}
			if err := writeCndKeyNode(w, nh); err != nil {
				return err
			}
		}
	}
	for _, a := range anims {
		for _, n := range a.Nodes {
			for _, e := range n.Entries {
				if err := writeKeyNodeEntry(w, e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
