package stream

// Buffer is an in-memory, growable read/write Stream. It backs
// synthesized archives and test fixtures, and is the destination for
// in-memory writers (e.g. assembling a MAT before handing it to a
// file-backed stream).
type Buffer struct {
	name string
	data []byte
	pos  int64
}

// NewBuffer creates an empty, writable, readable Buffer.
func NewBuffer(name string) *Buffer {
	return &Buffer{name: name}
}

// NewBufferFromBytes creates a Buffer pre-populated with data. The
// slice is not copied; callers should not mutate it afterwards.
func NewBufferFromBytes(name string, data []byte) *Buffer {
	return &Buffer{name: name, data: data}
}

func (b *Buffer) Name() string    { return b.name }
func (b *Buffer) Size() int64     { return int64(len(b.data)) }
func (b *Buffer) Tell() int64     { return b.pos }
func (b *Buffer) CanRead() bool   { return true }
func (b *Buffer) CanWrite() bool  { return true }
func (b *Buffer) Close() error    { return nil }
func (b *Buffer) Flush() error    { return nil }

// Bytes returns the buffer's full contents. Callers must not mutate it.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Seek(offset int64) error {
	if offset < 0 {
		return &StreamError{Name: b.name, Op: "seek", Err: ErrShortRead}
	}
	b.pos = offset
	return nil
}

func (b *Buffer) Read(buf []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, nil
	}
	n := copy(buf, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Write(buf []byte) (int, error) {
	end := b.pos + int64(len(buf))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	n := copy(b.data[b.pos:end], buf)
	b.pos = end
	return n, nil
}
