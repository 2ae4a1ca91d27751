package fixups

import (
	"testing"

	"github.com/jonesengine/libim/cog"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
)

func parseScript(t *testing.T, name, src string) *cog.Script {
	t.Helper()
	buf := stream.NewBuffer(name)
	if _, err := buf.Write([]byte(src)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	script, _, err := cog.Read(text.NewReader(buf), false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return script
}

func TestIsMalformedMatchesCaseInsensitively(t *testing.T) {
	script := parseScript(t, "SHS_BTLadder.COG", "symbols\nint in_rotrate = 0 local\nend\n")
	if !IsMalformed(script) {
		t.Fatal("IsMalformed() = false, want true")
	}
}

func TestIsMalformedFalseForUnknownScript(t *testing.T) {
	script := parseScript(t, "some_other.cog", "symbols\nint in_rotrate = 0 local\nend\n")
	if IsMalformed(script) {
		t.Fatal("IsMalformed() = true, want false")
	}
}

func TestApplyClearsLocalFlag(t *testing.T) {
	script := parseScript(t, "shs_btladder.cog", "symbols\nint in_rotrate = 0 local\nend\n")

	sym, ok := script.Symbols.Get("in_rotrate")
	if !ok || !sym.IsLocal {
		t.Fatalf("precondition: in_rotrate = %+v, ok=%v, want IsLocal=true", sym, ok)
	}

	Apply(script)

	sym, ok = script.Symbols.Get("in_rotrate")
	if !ok {
		t.Fatal("in_rotrate missing after Apply")
	}
	if sym.IsLocal {
		t.Fatal("in_rotrate.IsLocal = true after Apply, want false")
	}
}

func TestApplyNoOpForUnregisteredScript(t *testing.T) {
	script := parseScript(t, "some_other.cog", "symbols\nint in_rotrate = 0 local\nend\n")

	Apply(script)

	sym, _ := script.Symbols.Get("in_rotrate")
	if !sym.IsLocal {
		t.Fatal("in_rotrate.IsLocal = false after Apply, want unchanged true")
	}
}
