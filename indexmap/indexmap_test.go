package indexmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPushBackOrderAndLookup(t *testing.T) {
	m := New[string, int]()
	m.PushBack("alpha", 1)
	m.PushBack("beta", 2)
	m.PushBack("gamma", 3)

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	if v, ok := m.Get("BETA"); !ok || v != 2 {
		t.Errorf("Get(\"BETA\") = %v, %v, want 2, true", v, ok)
	}
	if v, ok := m.At(2); !ok || v != 3 {
		t.Errorf("At(2) = %v, %v, want 3, true", v, ok)
	}
	if idx := m.IndexOf("gamma"); idx != 2 {
		t.Errorf("IndexOf(gamma) = %d, want 2", idx)
	}
}

func TestInsertDuplicateKeyNoOp(t *testing.T) {
	m := New[string, int]()
	m.PushBack("a", 1)
	idx, inserted := m.PushBack("a", 2)
	if inserted {
		t.Error("expected duplicate insert to report false")
	}
	if idx != 0 {
		t.Errorf("expected existing index 0, got %d", idx)
	}
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("expected original value to survive, got %d", v)
	}
}

func TestEraseIndexShiftsLaterEntries(t *testing.T) {
	m := New[string, int]()
	m.PushBack("a", 1)
	m.PushBack("b", 2)
	m.PushBack("c", 3)

	m.EraseIndex(0)

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if idx := m.IndexOf("b"); idx != 0 {
		t.Errorf("IndexOf(b) after erase = %d, want 0", idx)
	}
	if idx := m.IndexOf("c"); idx != 1 {
		t.Errorf("IndexOf(c) after erase = %d, want 1", idx)
	}
	if m.Contains("a") {
		t.Error("expected a to be gone")
	}
}

func TestEraseKey(t *testing.T) {
	m := New[string, int]()
	m.PushBack("a", 1)
	m.PushBack("b", 2)
	m.EraseKey("A")
	if m.Contains("a") {
		t.Error("expected case-insensitive erase to remove a")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestSetUpdatesInPlace(t *testing.T) {
	m := New[string, int]()
	m.PushBack("a", 1)
	m.PushBack("b", 2)
	idx := m.Set("a", 99)
	if idx != 0 {
		t.Errorf("Set() returned idx %d, want 0", idx)
	}
	if v, _ := m.Get("a"); v != 99 {
		t.Errorf("Get(a) = %d, want 99", v)
	}
	if m.Len() != 2 {
		t.Errorf("Set on existing key should not grow the map, Len() = %d", m.Len())
	}
}

func TestEachOrderAndEarlyExit(t *testing.T) {
	m := New[string, int]()
	m.PushBack("a", 1)
	m.PushBack("b", 2)
	m.PushBack("c", 3)

	var seen []string
	m.Each(func(_ int, k string, _ int) bool {
		seen = append(seen, k)
		return k != "b"
	})
	want := []string{"a", "b"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New[string, int]()
	m.PushBack("a", 1)
	clone := m.Clone()
	clone.EraseKey("a")

	if !m.Contains("a") {
		t.Error("erasing from clone should not affect original")
	}
	if clone.Contains("a") {
		t.Error("expected clone to have a erased")
	}
}

// TestCloneKeyOrderMatchesOriginal checks Clone's ordered content against
// the original before any mutation, the comparison spec's NDY<->CND
// round-trip property requires ("IndexMaps compared by ordered content").
func TestCloneKeyOrderMatchesOriginal(t *testing.T) {
	m := New[string, int]()
	m.PushBack("gamma", 3)
	m.PushBack("alpha", 1)
	m.PushBack("beta", 2)

	clone := m.Clone()
	if diff := cmp.Diff(m.Keys(), clone.Keys()); diff != "" {
		t.Errorf("clone key order mismatch (-original +clone):\n%s", diff)
	}

	clone.EraseIndex(1)
	want := []string{"gamma", "beta"}
	if diff := cmp.Diff(want, clone.Keys()); diff != "" {
		t.Errorf("clone key order after erase (-want +got):\n%s", diff)
	}
}
