package stream

import "testing"

func TestBufferRoundTrip(t *testing.T) {
	b := NewBuffer("test")
	want := []byte{1, 2, 3, 4, 5}
	n, err := b.Write(want)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(want) {
		t.Fatalf("Write n = %d, want %d", n, len(want))
	}
	if b.Tell() != int64(len(want)) {
		t.Fatalf("Tell() = %d, want %d", b.Tell(), len(want))
	}
	if b.Size() != int64(len(want)) {
		t.Fatalf("Size() = %d, want %d", b.Size(), len(want))
	}

	if err := b.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if b.Tell() != 0 {
		t.Fatalf("Tell() after seek = %d, want 0", b.Tell())
	}

	got := make([]byte, len(want))
	n, err = b.Read(got)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(want) {
		t.Fatalf("Read n = %d, want %d", n, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestBufferSeekPastEndThenWrite(t *testing.T) {
	b := NewBuffer("test")
	if err := b.Seek(4); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := b.Write([]byte{0xAA}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if b.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", b.Size())
	}
	data := b.Bytes()
	if data[4] != 0xAA {
		t.Fatalf("data[4] = %x, want 0xAA", data[4])
	}
}

func TestTypedReadWriteRoundTrip(t *testing.T) {
	b := NewBuffer("test")
	if err := WriteU32(b, 0xDEADBEEF); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if err := WriteI32(b, -42); err != nil {
		t.Fatalf("WriteI32: %v", err)
	}
	if err := WriteF32(b, 3.5); err != nil {
		t.Fatalf("WriteF32: %v", err)
	}
	if err := WriteFixedString(b, "abc", 8); err != nil {
		t.Fatalf("WriteFixedString: %v", err)
	}

	if err := b.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	u, err := ReadU32(b)
	if err != nil || u != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %x, %v, want 0xDEADBEEF", u, err)
	}
	i, err := ReadI32(b)
	if err != nil || i != -42 {
		t.Fatalf("ReadI32 = %d, %v, want -42", i, err)
	}
	f, err := ReadF32(b)
	if err != nil || f != 3.5 {
		t.Fatalf("ReadF32 = %v, %v, want 3.5", f, err)
	}
	s, err := ReadFixedString(b, 8)
	if err != nil || s != "abc" {
		t.Fatalf("ReadFixedString = %q, %v, want \"abc\"", s, err)
	}
}

func TestReadExactShortRead(t *testing.T) {
	b := NewBufferFromBytes("test", []byte{1, 2})
	buf := make([]byte, 4)
	err := ReadExact(b, buf)
	if err == nil {
		t.Fatal("expected short-read error")
	}
}
