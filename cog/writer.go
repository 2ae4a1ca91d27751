package cog

import (
	"fmt"
	"strconv"

	"github.com/jonesengine/libim/text"
)

func writeValue(w *text.Writer, t SymbolType, v Value) error {
	switch t {
	case TypeInt:
		return w.Write(strconv.Itoa(int(v.Int)))
	case TypeFlex:
		return w.WriteFloat(float64(v.Flex), 6)
	case TypeVector:
		return w.WriteVector3(v.Vector)
	case TypeMessage:
		return w.Write(v.Message.String())
	case TypeAi, TypeKeyframe, TypeMaterial, TypeModel, TypeSound, TypeTemplate:
		return w.Write(v.Name)
	case TypeCog, TypeSector, TypeSurface, TypeThing:
		return w.Write(strconv.Itoa(int(v.Ref)))
	default:
		return fmt.Errorf("cog: type %s does not accept an init value", t)
	}
}

func writeSymbol(w *text.Writer, sym Symbol) error {
	if err := w.Write(sym.Type.String()); err != nil {
		return err
	}
	if err := w.Indent(1); err != nil {
		return err
	}
	if err := w.Write(sym.Name); err != nil {
		return err
	}

	if v, ok := sym.VTable.Default(); ok {
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write("="); err != nil {
			return err
		}
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := writeValue(w, sym.Type, v); err != nil {
			return err
		}
	}

	if sym.IsLocal && sym.Type != TypeMessage {
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write("local"); err != nil {
			return err
		}
	}
	if sym.NoLink {
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write("nolink"); err != nil {
			return err
		}
	}
	if !sym.Type.IsPrimitive() {
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write("linkid="); err != nil {
			return err
		}
		if err := w.Write(strconv.Itoa(int(sym.LinkID))); err != nil {
			return err
		}
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write("mask="); err != nil {
			return err
		}
		if err := w.Write(strconv.Itoa(int(sym.Mask))); err != nil {
			return err
		}
	}
	if sym.Description != "" {
		if err := w.Indent(1); err != nil {
			return err
		}
		if err := w.Write("desc="); err != nil {
			return err
		}
		if err := w.Write(sym.Description); err != nil {
			return err
		}
	}

	return w.WriteEol()
}

// Write serializes script to w in the COG text format.
func Write(w *text.Writer, script *Script) error {
	if script.Flags != FlagNone {
		if err := w.Write("flags="); err != nil {
			return err
		}
		if err := w.WriteHexFlags(uint32(script.Flags), 3); err != nil {
			return err
		}
		if err := w.WriteEol(); err != nil {
			return err
		}
	}

	if err := w.WriteLine("symbols"); err != nil {
		return err
	}

	var writeErr error
	script.Symbols.Each(func(_ int, _ string, sym Symbol) bool {
		if err := writeSymbol(w, sym); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	return w.WriteLine("end")
}
