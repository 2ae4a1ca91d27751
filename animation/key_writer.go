package animation

import "github.com/jonesengine/libim/text"

func writeHeader(w *text.Writer, anim *Animation, headerComments []string) error {
	for _, c := range headerComments {
		if err := w.WriteLine("# " + c); err != nil {
			return err
		}
	}
	if len(headerComments) > 0 {
		if err := w.WriteEol(); err != nil {
			return err
		}
	}

	if err := w.WriteSection(sectionHeader, false); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.WriteKeyHexFlags(keyFlags, anim.Flags, 2, 1); err != nil {
		return err
	}
	if err := w.WriteKeyHexFlags(keyType, anim.Type, 3, 1); err != nil {
		return err
	}
	if err := w.WriteKeyInt(keyFrames, int64(anim.Frames), 1); err != nil {
		return err
	}
	if err := w.WriteKeyFloat(keyFps, float64(anim.Fps), 3, 1); err != nil {
		return err
	}
	if err := w.WriteKeyInt(keyJoints, int64(anim.Joints), 1); err != nil {
		return err
	}
	return w.WriteEol()
}

func writeMarkers(w *text.Writer, anim *Animation) error {
	if len(anim.Markers) == 0 {
		return nil
	}
	if err := w.WriteSection(sectionMarkers, false); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := text.WriteList(w, listMarkers, anim.Markers, false, true, func(w *text.Writer, _ int, m Marker) error {
		if err := w.WriteFloat(float64(m.Frame), 6); err != nil {
			return err
		}
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.WriteHexFlags(m.Type, 0); err != nil {
			return err
		}
		return w.WriteEol()
	}); err != nil {
		return err
	}
	return w.WriteEol()
}

func writeNodeEntry(w *text.Writer, idx int, e NodeEntry) error {
	if idx == 0 {
		if err := w.WriteLine("# num:   frame:   flags:           x:           y:           z:           p:           y:           r:"); err != nil {
			return err
		}
		if err := w.WriteLine("#                                dx:          dy:          dz:          dp:          dy:          dr:"); err != nil {
			return err
		}
	}
	if err := w.WriteFloat(float64(e.Frame), 6); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteHexFlags(e.Flags, 0); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteVector3(e.Pos); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteRotator(e.Rot); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	if err := w.Indent(4); err != nil {
		return err
	}
	if err := w.WriteVector3(e.DPos); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.WriteRotator(e.DRot); err != nil {
		return err
	}
	return w.WriteEol()
}

func writeNode(w *text.Writer, _ int, node Node) error {
	if err := w.WriteKeyInt(keyNode, int64(node.Num), 4); err != nil {
		return err
	}
	if err := w.WriteKeyValue(keyMeshName, node.MeshName, 1); err != nil {
		return err
	}
	return text.WriteList(w, listEntries, node.Entries, true, true, writeNodeEntry)
}

func writeKeyframes(w *text.Writer, anim *Animation) error {
	if err := w.WriteSection(sectionKfNodes, false); err != nil {
		return err
	}
	if err := w.WriteEol(); err != nil {
		return err
	}
	return text.WriteList(w, listNodes, anim.Nodes, false, true, writeNode)
}

// Write serializes anim to w in the KEY text format, optionally
// emitting headerComments as `#`-prefixed lines before the HEADER
// section.
func Write(w *text.Writer, anim *Animation, headerComments []string) error {
	if err := writeHeader(w, anim, headerComments); err != nil {
		return err
	}
	if err := writeMarkers(w, anim); err != nil {
		return err
	}
	return writeKeyframes(w, anim)
}
