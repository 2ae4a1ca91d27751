package world

import (
	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

const thingNameFieldSize = 64

// Template is a named entity prototype. Base names the template this
// one derives its unset fields from ("" if none); Type and Placement
// are engine-defined defaults new Things may override.
type Template struct {
	Name      string
	Base      string
	Type      int32
	Placement Placement
}

// Placement is the spatial state a Thing or Template default carries:
// a position and orientation within a sector.
type Placement struct {
	Position  mathutil.Vector3
	Rotation  mathutil.Rotator
	SectorIdx int32
}

// Thing is a world entity instance: a name, the template it was
// spawned from and its placement override.
type Thing struct {
	Name        string
	TemplateIdx int32
	Placement   Placement
}

func readPlacement(r stream.Reader) (Placement, error) {
	var p Placement
	var err error
	if p.Position, err = readVector3(r); err != nil {
		return p, err
	}
	if p.Rotation, err = readRotator(r); err != nil {
		return p, err
	}
	if p.SectorIdx, err = stream.ReadI32(r); err != nil {
		return p, err
	}
	return p, nil
}

func writePlacement(w stream.Writer, p Placement) error {
	if err := writeVector3(w, p.Position); err != nil {
		return err
	}
	if err := writeRotator(w, p.Rotation); err != nil {
		return err
	}
	return stream.WriteI32(w, p.SectorIdx)
}

func readTemplate(r stream.Reader) (Template, error) {
	var t Template
	var err error
	if t.Name, err = stream.ReadFixedString(r, thingNameFieldSize); err != nil {
		return t, err
	}
	if t.Base, err = stream.ReadFixedString(r, thingNameFieldSize); err != nil {
		return t, err
	}
	if t.Type, err = stream.ReadI32(r); err != nil {
		return t, err
	}
	if t.Placement, err = readPlacement(r); err != nil {
		return t, err
	}
	return t, nil
}

func writeTemplate(w stream.Writer, t Template) error {
	if err := stream.WriteFixedString(w, t.Name, thingNameFieldSize); err != nil {
		return err
	}
	if err := stream.WriteFixedString(w, t.Base, thingNameFieldSize); err != nil {
		return err
	}
	if err := stream.WriteI32(w, t.Type); err != nil {
		return err
	}
	return writePlacement(w, t.Placement)
}

func readThing(r stream.Reader) (Thing, error) {
	var t Thing
	var err error
	if t.Name, err = stream.ReadFixedString(r, thingNameFieldSize); err != nil {
		return t, err
	}
	if t.TemplateIdx, err = stream.ReadI32(r); err != nil {
		return t, err
	}
	if t.Placement, err = readPlacement(r); err != nil {
		return t, err
	}
	return t, nil
}

func writeThing(w stream.Writer, t Thing) error {
	if err := stream.WriteFixedString(w, t.Name, thingNameFieldSize); err != nil {
		return err
	}
	if err := stream.WriteI32(w, t.TemplateIdx); err != nil {
		return err
	}
	return writePlacement(w, t.Placement)
}

func readTemplatesSection(r stream.Reader, h Header) ([]Template, error) {
	templates := make([]Template, h.Templates.Num)
	for i := range templates {
		t, err := readTemplate(r)
		if err != nil {
			return nil, err
		}
		templates[i] = t
	}
	return templates, nil
}

func writeTemplatesSection(w stream.Writer, templates []Template) error {
	for _, t := range templates {
		if err := writeTemplate(w, t); err != nil {
			return err
		}
	}
	return nil
}

func readThingsSection(r stream.Reader, h Header) ([]Thing, error) {
	things := make([]Thing, h.Things)
	for i := range things {
		t, err := readThing(r)
		if err != nil {
			return nil, err
		}
		things[i] = t
	}
	return things, nil
}

func writeThingsSection(w stream.Writer, things []Thing) error {
	for _, t := range things {
		if err := writeThing(w, t); err != nil {
			return err
		}
	}
	return nil
}

// readPVSSection reads the header-declared-size PVS blob verbatim: a
// compact per-sector visibility bit vector the codec does not
// interpret (spec glossary: "PVS — potentially visible set").
func readPVSSection(r stream.Reader, h Header) ([]byte, error) {
	return stream.ReadBytes(r, int(h.PVSSize))
}

func writePVSSection(w stream.Writer, pvs []byte) error {
	_, err := w.Write(pvs)
	return err
}
