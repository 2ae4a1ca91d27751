// Package stream implements a sized, seekable byte stream abstraction
// over files and in-memory buffers, with typed primitive read/write on
// top. It is the foundation every other codec package builds on.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Order is the byte order used by typed reads and writes. Jones3D asset
// formats are little-endian throughout; Order exists so BMP's rare
// big-endian color formats can still share the same primitive helpers.
var Order binary.ByteOrder = binary.LittleEndian

// ErrShortRead is returned when a read_exact-style call could not fill
// the requested buffer before hitting end of stream.
var ErrShortRead = errors.New("stream: short read")

// ErrNotWritable is returned by write operations on a read-only stream.
var ErrNotWritable = errors.New("stream: not writable")

// ErrNotReadable is returned by read operations on a write-only stream.
var ErrNotReadable = errors.New("stream: not readable")

// StreamError wraps an I/O failure or short read encountered against a
// named stream. Invalid magic or version values found by the format
// readers are reported as plain errors, not as StreamError.
type StreamError struct {
	Name string
	Op   string
	Err  error
}

func (e *StreamError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("stream %q: %s: %v", e.Name, e.Op, e.Err)
	}
	return fmt.Sprintf("stream: %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Stream is a positioned cursor over a byte sequence shared by every
// file-backed and in-memory implementation in this package.
type Stream interface {
	// Name returns a diagnostic name for the stream (e.g. a file path).
	Name() string
	// Size returns the current total length of the stream.
	Size() int64
	// Tell returns the current cursor offset.
	Tell() int64
	// Seek moves the cursor to an absolute offset.
	Seek(offset int64) error
	// CanRead reports whether Read is permitted.
	CanRead() bool
	// CanWrite reports whether Write is permitted.
	CanWrite() bool
	// Close flushes any pending writes and releases underlying resources.
	Close() error
}

// Reader is a Stream that supports reading.
type Reader interface {
	Stream
	// Read copies up to len(buf) bytes starting at the cursor into buf,
	// advances the cursor by the number of bytes copied, and returns
	// that count. A short read (count < len(buf)) is not an error by
	// itself; callers that require an exact count should use ReadExact.
	Read(buf []byte) (int, error)
}

// Writer is a Stream that supports writing.
type Writer interface {
	Stream
	// Write copies buf into the stream starting at the cursor, extending
	// the stream if the cursor is past the current end, and advances the
	// cursor by len(buf).
	Write(buf []byte) (int, error)
	// Flush forces any buffered writes to the backing resource.
	Flush() error
}

// ReadWriter combines Reader and Writer.
type ReadWriter interface {
	Reader
	Writer
}

// ReadExact reads exactly len(buf) bytes from r, returning ErrShortRead
// wrapped in a StreamError if the stream ends early.
func ReadExact(r Reader, buf []byte) error {
	n, err := r.Read(buf)
	if err != nil {
		return err
	}
	if n < len(buf) {
		return &StreamError{Name: r.Name(), Op: "read_exact", Err: ErrShortRead}
	}
	return nil
}

// ReadU8 reads a single byte.
func ReadU8(r Reader) (uint8, error) {
	var buf [1]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a little-endian uint16.
func ReadU16(r Reader) (uint16, error) {
	var buf [2]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return Order.Uint16(buf[:]), nil
}

// ReadU32 reads a little-endian uint32.
func ReadU32(r Reader) (uint32, error) {
	var buf [4]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return Order.Uint32(buf[:]), nil
}

// ReadU64 reads a little-endian uint64.
func ReadU64(r Reader) (uint64, error) {
	var buf [8]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return Order.Uint64(buf[:]), nil
}

// ReadI32 reads a little-endian int32.
func ReadI32(r Reader) (int32, error) {
	v, err := ReadU32(r)
	return int32(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func ReadF32(r Reader) (float32, error) {
	v, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return decodeFloat32(v), nil
}

// ReadBytes reads exactly n bytes and returns them as a new slice.
func ReadBytes(r Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := ReadExact(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteU8 writes a single byte.
func WriteU8(w Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// WriteU16 writes a little-endian uint16.
func WriteU16(w Writer, v uint16) error {
	var buf [2]byte
	Order.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteU32 writes a little-endian uint32.
func WriteU32(w Writer, v uint32) error {
	var buf [4]byte
	Order.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteU64 writes a little-endian uint64.
func WriteU64(w Writer, v uint64) error {
	var buf [8]byte
	Order.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteI32 writes a little-endian int32.
func WriteI32(w Writer, v int32) error {
	return WriteU32(w, uint32(v))
}

// WriteF32 writes a little-endian IEEE-754 float32.
func WriteF32(w Writer, v float32) error {
	return WriteU32(w, encodeFloat32(v))
}

// WriteFixedString writes s truncated or zero-padded to exactly n bytes.
func WriteFixedString(w Writer, s string, n int) error {
	buf := make([]byte, n)
	copy(buf, s)
	_, err := w.Write(buf)
	return err
}

// ReadFixedString reads exactly n bytes and trims the result at the
// first NUL byte, matching the engine's fixed-width C string fields.
func ReadFixedString(r Reader, n int) (string, error) {
	buf, err := ReadBytes(r, n)
	if err != nil {
		return "", err
	}
	if i := indexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
