package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

// Writer mirrors Reader: it emits the same section/label/key/list
// grammar. Numeric formatting is base-10 with optional fixed precision;
// flags are written as hex. Indentation uses a configurable indent char.
type Writer struct {
	w      stream.Writer
	indCh  byte
}

// NewWriter constructs a Writer over w, indenting with spaces by default.
func NewWriter(w stream.Writer) *Writer {
	return &Writer{w: w, indCh: ' '}
}

// SetIndentChar overrides the character used for indentation.
func (w *Writer) SetIndentChar(c byte) { w.indCh = c }

func (w *Writer) raw(s string) error {
	_, err := w.w.Write([]byte(s))
	return err
}

// Write emits text verbatim.
func (w *Writer) Write(text string) error {
	return w.raw(text)
}

// Indent emits width copies of the writer's indent character.
func (w *Writer) Indent(width int) error {
	if width <= 0 {
		return nil
	}
	return w.raw(strings.Repeat(string(w.indCh), width))
}

// WriteEol emits a newline.
func (w *Writer) WriteEol() error {
	return w.raw("\n")
}

// WriteLine emits text followed by a newline.
func (w *Writer) WriteLine(line string) error {
	if err := w.raw(line); err != nil {
		return err
	}
	return w.WriteEol()
}

// WriteLabel emits "<name>: <text>\n".
func (w *Writer) WriteLabel(name, text string) error {
	if err := w.raw(name + resLabelDelim + " " + text); err != nil {
		return err
	}
	return w.WriteEol()
}

// WriteSection emits "SECTION: <section>\n", with an optional overline
// comment above it matching the reference writer's section banner.
func (w *Writer) WriteSection(section string, overline bool) error {
	if overline {
		if err := w.WriteLine("################################################################################"); err != nil {
			return err
		}
	}
	return w.WriteLabel("SECTION", section)
}

// WriteKeyValue emits "<key><indent><value>\n".
func (w *Writer) WriteKeyValue(key, value string, indent int) error {
	if err := w.raw(key); err != nil {
		return err
	}
	if err := w.Indent(indent); err != nil {
		return err
	}
	if err := w.raw(value); err != nil {
		return err
	}
	return w.WriteEol()
}

// WriteKeyInt emits a key with a base-10 integer value.
func (w *Writer) WriteKeyInt(key string, v int64, indent int) error {
	return w.WriteKeyValue(key, strconv.FormatInt(v, 10), indent)
}

// WriteKeyFloat emits a key with a fixed-precision float value.
func (w *Writer) WriteKeyFloat(key string, v float64, precision int, indent int) error {
	return w.WriteKeyValue(key, strconv.FormatFloat(v, 'f', precision, 64), indent)
}

// WriteKeyHexFlags emits a key with a zero-padded hex flags value.
func (w *Writer) WriteKeyHexFlags(key string, v uint32, width int, indent int) error {
	return w.WriteKeyValue(key, fmt.Sprintf("0x%0*X", width, v), indent)
}

// WriteFloat writes a fixed-precision float value with no trailing
// newline, for composing several values onto one line.
func (w *Writer) WriteFloat(v float64, precision int) error {
	return w.raw(strconv.FormatFloat(v, 'f', precision, 64))
}

// WriteHexFlags writes a zero-padded hex flags value with no trailing
// newline, for composing several values onto one line.
func (w *Writer) WriteHexFlags(v uint32, width int) error {
	return w.raw(fmt.Sprintf("0x%0*X", width, v))
}

// WriteRowIdx emits "<idx>:" with idx right-aligned to indent width.
func (w *Writer) WriteRowIdx(idx int, indent int) error {
	s := strconv.Itoa(idx)
	if indent > len(s) {
		if err := w.Indent(indent - len(s)); err != nil {
			return err
		}
	}
	return w.raw(s + resLabelDelim)
}

func (w *Writer) writeSlashVector(vals []float64, precision int) error {
	for i, v := range vals {
		if i > 0 {
			if err := w.raw("/"); err != nil {
				return err
			}
		}
		if err := w.raw(strconv.FormatFloat(v, 'f', precision, 64)); err != nil {
			return err
		}
	}
	return nil
}

// WriteVector2 writes "( x/y )".
func (w *Writer) WriteVector2(v mathutil.Vector2) error {
	if err := w.raw("("); err != nil {
		return err
	}
	if err := w.writeSlashVector([]float64{float64(v.X), float64(v.Y)}, 6); err != nil {
		return err
	}
	return w.raw(")")
}

// WriteVector3 writes "( x/y/z )".
func (w *Writer) WriteVector3(v mathutil.Vector3) error {
	if err := w.raw("("); err != nil {
		return err
	}
	if err := w.writeSlashVector([]float64{float64(v.X), float64(v.Y), float64(v.Z)}, 6); err != nil {
		return err
	}
	return w.raw(")")
}

// WriteRotator writes "( pitch/yaw/roll )".
func (w *Writer) WriteRotator(r mathutil.Rotator) error {
	if err := w.raw("("); err != nil {
		return err
	}
	if err := w.writeSlashVector([]float64{float64(r.Pitch), float64(r.Yaw), float64(r.Roll)}, 6); err != nil {
		return err
	}
	return w.raw(")")
}

// WriteBox writes "(min)(max)".
func (w *Writer) WriteBox(b mathutil.Box3) error {
	if err := w.WriteVector3(b.Min); err != nil {
		return err
	}
	return w.WriteVector3(b.Max)
}

func (w *Writer) writeColorComponent(c mathutil.Color) error {
	return w.writeSlashVector([]float64{float64(c.R), float64(c.G), float64(c.B)}, 0)
}

// WriteGradientColor writes "(top/mid/bl/br)".
func (w *Writer) WriteGradientColor(g GradientColor) error {
	if err := w.raw("("); err != nil {
		return err
	}
	if err := w.writeColorComponent(g.Top); err != nil {
		return err
	}
	if err := w.raw("/"); err != nil {
		return err
	}
	if err := w.writeColorComponent(g.Mid); err != nil {
		return err
	}
	if err := w.raw("/"); err != nil {
		return err
	}
	if err := w.writeColorComponent(g.BottomLeft); err != nil {
		return err
	}
	if err := w.raw("/"); err != nil {
		return err
	}
	if err := w.writeColorComponent(g.BottomRight); err != nil {
		return err
	}
	return w.raw(")")
}

// WriteList emits a count-prefixed or "end"-terminated list (sized
// selects which), mirroring Reader's ReadList.
func WriteList[T any](w *Writer, name string, items []T, hasRowIDs, sized bool, rowWriter func(w *Writer, rowIdx int, item T) error) error {
	if sized {
		if err := w.WriteKeyInt(name, int64(len(items)), 1); err != nil {
			return err
		}
	}
	for i, item := range items {
		if hasRowIDs {
			if err := w.WriteRowIdx(i, 0); err != nil {
				return err
			}
		}
		if err := rowWriter(w, i, item); err != nil {
			return err
		}
	}
	if !sized {
		if err := w.WriteLine("end"); err != nil {
			return err
		}
	}
	return nil
}
