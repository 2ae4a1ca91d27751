package cog

import (
	"testing"

	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

func parseSource(t *testing.T, src string, parseDesc bool) (*Script, []Warning) {
	t.Helper()
	buf := stream.NewBuffer("test.cog")
	if _, err := buf.Write([]byte(src)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	script, warnings, err := Read(text.NewReader(buf), parseDesc)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return script, warnings
}

func TestReadBasicSymbols(t *testing.T) {
	src := "flags = 0x03\n" +
		"symbols\n" +
		"int         count = 3 local\n" +
		"flex        speed = 1.5\n" +
		"vector      dir = (1/0/0)\n" +
		"message     onTouch = touched\n" +
		"sound       snd = explode.wav\n" +
		"thing       target local linkid=5 mask=7\n" +
		"end\n"

	script, warnings := parseSource(t, src, false)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if script.Flags != (FlagDebug | FlagDisabled) {
		t.Fatalf("Flags = %#x, want %#x", script.Flags, FlagDebug|FlagDisabled)
	}
	if script.Symbols.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", script.Symbols.Len())
	}

	count, ok := script.Symbols.Get("count")
	if !ok {
		t.Fatal("count symbol missing")
	}
	if count.Type != TypeInt || !count.IsLocal {
		t.Fatalf("count = %+v", count)
	}
	if v, _ := count.VTable.Default(); v.Int != 3 {
		t.Fatalf("count default = %+v, want Int=3", v)
	}

	dir, ok := script.Symbols.Get("dir")
	if !ok {
		t.Fatal("dir symbol missing")
	}
	if v, _ := dir.VTable.Default(); v.Vector != (mathutil.Vector3{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("dir default = %+v", v)
	}

	onTouch, ok := script.Symbols.Get("onTouch")
	if !ok {
		t.Fatal("onTouch symbol missing")
	}
	if !onTouch.IsLocal {
		t.Fatal("message symbol must always be local")
	}
	if v, _ := onTouch.VTable.Default(); v.Message != MessageTouched {
		t.Fatalf("onTouch default = %+v, want MessageTouched", v)
	}

	target, ok := script.Symbols.Get("target")
	if !ok {
		t.Fatal("target symbol missing")
	}
	if target.LinkID != 5 || target.Mask != 7 || !target.IsLocal {
		t.Fatalf("target = %+v", target)
	}
}

func TestPrimitiveDefaultsLinkIDMinusOne(t *testing.T) {
	src := "symbols\nint n = 1\nend\n"
	script, _ := parseSource(t, src, false)
	n, ok := script.Symbols.Get("n")
	if !ok {
		t.Fatal("n missing")
	}
	if n.LinkID != -1 {
		t.Fatalf("LinkID = %d, want -1", n.LinkID)
	}
}

func TestNonPrimitiveDefaultMask(t *testing.T) {
	src := "symbols\nsound s = a.wav\nend\n"
	script, _ := parseSource(t, src, false)
	s, ok := script.Symbols.Get("s")
	if !ok {
		t.Fatal("s missing")
	}
	if s.LinkID != 0 || s.Mask != defaultNonPrimitiveMask {
		t.Fatalf("s = %+v, want LinkID=0 Mask=%#x", s, defaultNonPrimitiveMask)
	}
}

func TestIntTruncationWarns(t *testing.T) {
	src := "symbols\nint n = 3.7\nend\n"
	script, warnings := parseSource(t, src, false)
	n, _ := script.Symbols.Get("n")
	if v, _ := n.VTable.Default(); v.Int != 3 {
		t.Fatalf("Int = %d, want 3", v.Int)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
}

func TestDuplicateNonMessageRenamed(t *testing.T) {
	src := "symbols\nint n = 1\nint n = 2\nend\n"
	script, warnings := parseSource(t, src, false)
	if script.Symbols.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", script.Symbols.Len())
	}
	if _, ok := script.Symbols.Get("n_0"); !ok {
		t.Fatal("expected renamed symbol n_0")
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
}

func TestDuplicateMessageWarnedAndSkipped(t *testing.T) {
	src := "symbols\nmessage m1 = activate\nmessage m1 = timer\nend\n"
	script, warnings := parseSource(t, src, false)
	if script.Symbols.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", script.Symbols.Len())
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	m1, _ := script.Symbols.Get("m1")
	if v, _ := m1.VTable.Default(); v.Message != MessageActivate {
		t.Fatalf("m1 = %+v, want MessageActivate (first wins)", v)
	}
}

func TestTemplateRejectsPureInteger(t *testing.T) {
	src := "symbols\ntemplate t = 42\nend\n"
	buf := stream.NewBuffer("test.cog")
	buf.Write([]byte(src))
	buf.Seek(0)
	if _, _, err := Read(text.NewReader(buf), false); err == nil {
		t.Fatal("expected error for pure-integer template value")
	}
}

func TestWrongExtensionRejected(t *testing.T) {
	src := "symbols\nsound s = a.mat\nend\n"
	buf := stream.NewBuffer("test.cog")
	buf.Write([]byte(src))
	buf.Seek(0)
	if _, _, err := Read(text.NewReader(buf), false); err == nil {
		t.Fatal("expected error for sound value without .wav extension")
	}
}

func TestNextVTableIDStartsAtOneAndIncrements(t *testing.T) {
	script, _ := parseSource(t, "symbols\nint n = 1\nend\n", false)
	if id := script.NextVTableID(); id != 1 {
		t.Fatalf("NextVTableID() = %d, want 1", id)
	}
	if id := script.NextVTableID(); id != 2 {
		t.Fatalf("NextVTableID() = %d, want 2", id)
	}
}

func TestVTablePerInstanceOverride(t *testing.T) {
	script, _ := parseSource(t, "symbols\nint n = 1\nend\n", false)
	n, _ := script.Symbols.Get("n")
	id := script.NextVTableID()
	n.VTable.Set(id, Value{Int: 42})
	v, ok := n.VTable.Get(id)
	if !ok || v.Int != 42 {
		t.Fatalf("override = %+v, ok=%v, want Int=42", v, ok)
	}
	if def, _ := n.VTable.Default(); def.Int != 1 {
		t.Fatalf("default = %+v, want Int=1 (untouched by override)", def)
	}
}

func TestRoundTrip(t *testing.T) {
	src := "flags = 0x41\n" +
		"symbols\n" +
		"int         count = 3 local\n" +
		"flex        speed = 1.5\n" +
		"vector      dir = (1/0/0)\n" +
		"message     onTouch = touched\n" +
		"sound       snd = explode.wav\n" +
		"template    tpl = my_template\n" +
		"thing       target local linkid=5 mask=7\n" +
		"end\n"
	script, _ := parseSource(t, src, false)

	buf := stream.NewBuffer("out.cog")
	if err := Write(text.NewWriter(buf), script); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	got, _, err := Read(text.NewReader(buf), false)
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}
	if got.Flags != script.Flags {
		t.Fatalf("Flags = %#x, want %#x", got.Flags, script.Flags)
	}
	if got.Symbols.Len() != script.Symbols.Len() {
		t.Fatalf("Len() = %d, want %d", got.Symbols.Len(), script.Symbols.Len())
	}
	for _, name := range script.Symbols.Keys() {
		want, _ := script.Symbols.Get(name)
		gotSym, ok := got.Symbols.Get(name)
		if !ok {
			t.Fatalf("symbol %q missing after round trip", name)
		}
		if gotSym.Type != want.Type || gotSym.LinkID != want.LinkID || gotSym.Mask != want.Mask {
			t.Fatalf("symbol %q = %+v, want %+v", name, gotSym, want)
		}
	}
}
