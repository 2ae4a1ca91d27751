package stream

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

const writeBufferSize = 4096

// FileStream is a Stream backed by an *os.File. Reads go directly to
// the file; writes are buffered. A memory-mapped read-only view is a
// separate type, MmapStream (see OpenMmap).
type FileStream struct {
	name     string
	f        *os.File
	canRead  bool
	canWrite bool
	pos      int64
	size     int64
	obuf     []byte
}

// OpenFileRead opens path for reading only.
func OpenFileRead(path string) (*FileStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StreamError{Name: path, Op: "open", Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &StreamError{Name: path, Op: "stat", Err: err}
	}
	return &FileStream{name: path, f: f, canRead: true, size: info.Size()}, nil
}

// CreateFileWrite creates (or truncates) path for writing only.
func CreateFileWrite(path string) (*FileStream, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, &StreamError{Name: path, Op: "create", Err: err}
	}
	return &FileStream{name: path, f: f, canWrite: true}, nil
}

// OpenFileReadWrite opens path for reading and writing without truncating.
func OpenFileReadWrite(path string) (*FileStream, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, &StreamError{Name: path, Op: "open", Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &StreamError{Name: path, Op: "stat", Err: err}
	}
	return &FileStream{name: path, f: f, canRead: true, canWrite: true, size: info.Size()}, nil
}

func (s *FileStream) Name() string   { return s.name }
func (s *FileStream) Size() int64    { return s.size }
func (s *FileStream) Tell() int64    { return s.pos }
func (s *FileStream) CanRead() bool  { return s.canRead }
func (s *FileStream) CanWrite() bool { return s.canWrite }

// Seek flushes any buffered writes (matching the original's
// flush-before-seek discipline) and repositions the cursor.
func (s *FileStream) Seek(offset int64) error {
	if err := s.Flush(); err != nil {
		return err
	}
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return &StreamError{Name: s.name, Op: "seek", Err: err}
	}
	s.pos = offset
	if s.pos > s.size {
		s.size = s.pos
	}
	return nil
}

func (s *FileStream) Read(buf []byte) (int, error) {
	if !s.canRead {
		return 0, &StreamError{Name: s.name, Op: "read", Err: ErrNotReadable}
	}
	n, err := s.f.Read(buf)
	s.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, &StreamError{Name: s.name, Op: "read", Err: err}
	}
	return n, nil
}

// Write buffers up to writeBufferSize bytes before issuing a syscall,
// amortizing small writes the way the reference FileStream's
// fixed-size IOBuffer does.
func (s *FileStream) Write(buf []byte) (int, error) {
	if !s.canWrite {
		return 0, &StreamError{Name: s.name, Op: "write", Err: ErrNotWritable}
	}
	total := 0
	for len(buf) > 0 {
		room := writeBufferSize - len(s.obuf)
		n := len(buf)
		if n > room {
			n = room
		}
		s.obuf = append(s.obuf, buf[:n]...)
		buf = buf[n:]
		total += n
		if len(s.obuf) >= writeBufferSize {
			if err := s.Flush(); err != nil {
				return total, err
			}
		}
	}
	s.pos += int64(total)
	if s.pos > s.size {
		s.size = s.pos
	}
	return total, nil
}

// Flush writes any buffered bytes to the underlying file.
func (s *FileStream) Flush() error {
	if len(s.obuf) == 0 {
		return nil
	}
	if _, err := s.f.Write(s.obuf); err != nil {
		return &StreamError{Name: s.name, Op: "flush", Err: err}
	}
	s.obuf = s.obuf[:0]
	return nil
}

// Close flushes and closes the underlying file.
func (s *FileStream) Close() error {
	if err := s.Flush(); err != nil {
		s.f.Close()
		return err
	}
	if err := s.f.Close(); err != nil {
		return &StreamError{Name: s.name, Op: "close", Err: err}
	}
	return nil
}

// MmapStream is a read-only Stream backed by a memory-mapped file,
// grounded on the teacher's use of mmap-go in file.go to avoid copying
// whole archives/world files into the process heap before parsing.
type MmapStream struct {
	name string
	f    *os.File
	data mmap.MMap
	pos  int64
}

// OpenMmap memory-maps path read-only.
func OpenMmap(path string) (*MmapStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StreamError{Name: path, Op: "open", Err: err}
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, &StreamError{Name: path, Op: "mmap", Err: err}
	}
	return &MmapStream{name: path, f: f, data: data}, nil
}

func (s *MmapStream) Name() string   { return s.name }
func (s *MmapStream) Size() int64    { return int64(len(s.data)) }
func (s *MmapStream) Tell() int64    { return s.pos }
func (s *MmapStream) CanRead() bool  { return true }
func (s *MmapStream) CanWrite() bool { return false }

func (s *MmapStream) Seek(offset int64) error {
	if offset < 0 {
		return &StreamError{Name: s.name, Op: "seek", Err: ErrShortRead}
	}
	s.pos = offset
	return nil
}

func (s *MmapStream) Read(buf []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, nil
	}
	n := copy(buf, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// Close unmaps the view and closes the underlying file.
func (s *MmapStream) Close() error {
	if err := s.data.Unmap(); err != nil {
		s.f.Close()
		return &StreamError{Name: s.name, Op: "unmap", Err: err}
	}
	return s.f.Close()
}
