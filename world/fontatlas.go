package world

import (
	"fmt"

	"github.com/jonesengine/libim/text"
)

// Glyph is one character's rectangle within a FontAtlas's material,
// plus the horizontal advance a renderer steps by after drawing it.
type Glyph struct {
	ID      int32
	X, Y    int32
	W, H    int32
	Advance float32
}

// FontAtlas declares a bitmap font: a glyph table addressing rectangles
// within a single material. NDY worlds may declare zero or more of
// these (SUPPLEMENTED FEATURES: font atlas declarations) — a thin,
// static structure with no further asset dependencies of its own, read
// directly off the wire rather than resolved through the VFS.
type FontAtlas struct {
	Name     string
	Material string
	Glyphs   []Glyph
}

func writeGlyphText(w *text.Writer, _ int, g Glyph) error {
	if err := w.WriteKeyInt("ID", int64(g.ID), 1); err != nil {
		return err
	}
	if err := w.WriteKeyValue("RECT", fmt.Sprintf("%d/%d/%d/%d", g.X, g.Y, g.W, g.H), 1); err != nil {
		return err
	}
	return w.WriteKeyFloat("ADVANCE", float64(g.Advance), 4, 1)
}

func readGlyphText(r *text.Reader, _ int) (Glyph, error) {
	var g Glyph
	id, err := r.ReadKeyInt("ID")
	if err != nil {
		return g, err
	}
	g.ID = int32(id)

	rect, err := r.ReadKeyString("RECT")
	if err != nil {
		return g, err
	}
	if _, err := fmt.Sscanf(rect, "%d/%d/%d/%d", &g.X, &g.Y, &g.W, &g.H); err != nil {
		return g, fmt.Errorf("world: glyph rect %q: %w", rect, err)
	}

	advance, err := r.ReadKeyFloat("ADVANCE")
	if err != nil {
		return g, err
	}
	g.Advance = float32(advance)
	return g, nil
}

func writeFontAtlasText(w *text.Writer, _ int, f FontAtlas) error {
	if err := w.WriteLine(f.Name); err != nil {
		return err
	}
	if err := w.WriteKeyValue("MATERIAL", f.Material, 1); err != nil {
		return err
	}
	return text.WriteList(w, "GLYPHS", f.Glyphs, true, true, writeGlyphText)
}

func readFontAtlasText(r *text.Reader, _ int) (FontAtlas, error) {
	var f FontAtlas
	var err error
	if f.Name, err = r.ReadLine(); err != nil {
		return f, err
	}
	if f.Material, err = r.ReadKeyString("MATERIAL"); err != nil {
		return f, err
	}
	f.Glyphs, err = text.ReadList(r, "GLYPHS", true, true, readGlyphText)
	return f, err
}

func writeFontAtlasesSection(w *text.Writer, fonts []FontAtlas) error {
	if err := w.WriteSection(sectionFonts, true); err != nil {
		return err
	}
	return text.WriteList(w, "FONTS", fonts, true, true, writeFontAtlasText)
}

func readFontAtlasesSection(r *text.Reader) ([]FontAtlas, error) {
	if err := r.AssertSection(sectionFonts); err != nil {
		return nil, fmt.Errorf("world: ndy fonts section: %w", err)
	}
	return text.ReadList(r, "FONTS", true, true, readFontAtlasText)
}
