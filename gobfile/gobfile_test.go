package gobfile

import (
	"testing"

	"github.com/jonesengine/libim/stream"
)

func buildGob(t *testing.T, files map[string][]byte, order []string) *stream.Buffer {
	t.Helper()
	buf := stream.NewBuffer("test.gob")

	if err := stream.WriteFixedString(buf, GobMagic, 4); err != nil {
		t.Fatalf("write magic: %v", err)
	}
	if err := stream.WriteU32(buf, GobVersion); err != nil {
		t.Fatalf("write version: %v", err)
	}
	// directoryOffset patched in below
	if err := stream.WriteU32(buf, 0); err != nil {
		t.Fatalf("write dir offset placeholder: %v", err)
	}

	offsets := make(map[string]uint32, len(order))
	for _, name := range order {
		offsets[name] = uint32(buf.Tell())
		if _, err := buf.Write(files[name]); err != nil {
			t.Fatalf("write file bytes: %v", err)
		}
	}

	dirOffset := uint32(buf.Tell())
	if err := stream.WriteU32(buf, uint32(len(order))); err != nil {
		t.Fatalf("write numEntries: %v", err)
	}
	for _, name := range order {
		if err := stream.WriteU32(buf, offsets[name]); err != nil {
			t.Fatalf("write entry offset: %v", err)
		}
		if err := stream.WriteU32(buf, uint32(len(files[name]))); err != nil {
			t.Fatalf("write entry size: %v", err)
		}
		if err := stream.WriteFixedString(buf, name, gobPathMaxSize); err != nil {
			t.Fatalf("write entry path: %v", err)
		}
	}

	if err := buf.Seek(8); err != nil {
		t.Fatalf("seek to patch dir offset: %v", err)
	}
	if err := stream.WriteU32(buf, dirOffset); err != nil {
		t.Fatalf("patch dir offset: %v", err)
	}
	if err := buf.Seek(0); err != nil {
		t.Fatalf("seek to start: %v", err)
	}
	return buf
}

func TestLoadDirectoryOrderAndFields(t *testing.T) {
	order := []string{"a/b.mat", "c.key"}
	files := map[string][]byte{
		"a/b.mat": []byte("0123456789AB"), // 12 bytes
		"c.key":   []byte("0123456"),      // 7 bytes
	}
	buf := buildGob(t, files, order)

	c, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	for i, name := range order {
		if entries[i].Path != name {
			t.Errorf("entries[%d].Path = %q, want %q", i, entries[i].Path, name)
		}
		if entries[i].Size != uint32(len(files[name])) {
			t.Errorf("entries[%d].Size = %d, want %d", i, entries[i].Size, len(files[name]))
		}
	}
}

func TestVirtualFileReadMatchesBytes(t *testing.T) {
	order := []string{"a/b.mat", "c.key"}
	files := map[string][]byte{
		"a/b.mat": []byte("0123456789AB"),
		"c.key":   []byte("0123456"),
	}
	buf := buildGob(t, files, order)

	c, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, name := range order {
		vf, err := c.Open(name)
		if err != nil {
			t.Fatalf("Open(%q): %v", name, err)
		}
		got, err := readAll(vf)
		if err != nil {
			t.Fatalf("readAll(%q): %v", name, err)
		}
		if string(got) != string(files[name]) {
			t.Errorf("contents of %q = %q, want %q", name, got, files[name])
		}
	}
}

func TestOpenCaseInsensitiveAndMissing(t *testing.T) {
	order := []string{"A/B.MAT"}
	files := map[string][]byte{"A/B.MAT": []byte("xyz")}
	buf := buildGob(t, files, order)

	c, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.Contains("a/b.mat") {
		t.Fatalf("Contains(lowercase) = false, want true")
	}
	if _, err := c.Open("missing.txt"); err == nil {
		t.Fatalf("Open(missing) = nil error, want error")
	}
}

func readAll(vf *VirtualFile) ([]byte, error) {
	var out []byte
	buf := make([]byte, 4)
	for {
		n, err := vf.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}
