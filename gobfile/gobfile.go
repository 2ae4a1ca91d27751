// Package gobfile implements the flat GOB archive format: a directory
// of named byte ranges over a single backing stream.
package gobfile

import (
	"fmt"
	"strings"

	"github.com/jonesengine/libim/stream"
)

// GobMagic is the 4-byte file signature of a GOB archive.
const GobMagic = "GOB "

// GobVersion is the only version this codec understands.
const GobVersion = 0x14

// gobPathMaxSize is the fixed width of a directory entry's path field.
const gobPathMaxSize = 128

// Entry describes one archived file's location within the backing
// stream.
type Entry struct {
	Path   string
	Offset uint32
	Size   uint32
}

// Container is the in-memory directory of a loaded GOB archive. The
// backing stream must outlive the Container and every VirtualFile
// handed out by it; lookups are case-insensitive, matching the
// engine's path handling.
type Container struct {
	backing stream.Reader
	entries map[string]Entry
	order   []string
}

// Load reads a GOB archive's header and directory from r. The archive
// is read-only; r is retained and shared by every VirtualFile this
// Container opens.
func Load(r stream.Reader) (*Container, error) {
	magic, err := stream.ReadFixedString(r, 4)
	if err != nil {
		return nil, err
	}
	if magic != GobMagic {
		return nil, fmt.Errorf("gobfile: unknown or invalid GOB file (bad magic %q)", magic)
	}
	version, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if version != GobVersion {
		return nil, fmt.Errorf("gobfile: wrong GOB file version: 0x%X", version)
	}
	directoryOffset, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}

	if err := r.Seek(int64(directoryOffset)); err != nil {
		return nil, err
	}

	numEntries, err := stream.ReadU32(r)
	if err != nil {
		return nil, err
	}

	c := &Container{
		backing: r,
		entries: make(map[string]Entry, numEntries),
	}
	for i := uint32(0); i < numEntries; i++ {
		offset, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		size, err := stream.ReadU32(r)
		if err != nil {
			return nil, err
		}
		path, err := stream.ReadFixedString(r, gobPathMaxSize)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(path)
		c.entries[key] = Entry{Path: path, Offset: offset, Size: size}
		c.order = append(c.order, key)
	}

	return c, nil
}

// Entries returns the archive's entries in directory order.
func (c *Container) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.entries[k])
	}
	return out
}

// Contains reports whether path (matched case-insensitively) exists in
// the archive.
func (c *Container) Contains(path string) bool {
	_, ok := c.entries[strings.ToLower(path)]
	return ok
}

// Open returns a VirtualFile for path (matched case-insensitively), or
// an error if the archive has no such entry.
func (c *Container) Open(path string) (*VirtualFile, error) {
	e, ok := c.entries[strings.ToLower(path)]
	if !ok {
		return nil, fmt.Errorf("gobfile: no such file %q in archive", path)
	}
	return &VirtualFile{backing: c.backing, entry: e}, nil
}

// VirtualFile is a read-only view over a byte range of a GOB archive's
// backing stream. Every read seeks the underlying stream and clamps
// to the entry's declared size.
type VirtualFile struct {
	backing stream.Reader
	entry   Entry
	pos     int64
}

func (v *VirtualFile) Name() string  { return v.entry.Path }
func (v *VirtualFile) Size() int64   { return int64(v.entry.Size) }
func (v *VirtualFile) Tell() int64   { return v.pos }
func (v *VirtualFile) CanRead() bool { return true }
func (v *VirtualFile) CanWrite() bool { return false }
func (v *VirtualFile) Close() error  { return nil }

// Seek moves the cursor to an offset relative to the start of this
// virtual file's byte range.
func (v *VirtualFile) Seek(offset int64) error {
	if offset < 0 || offset > int64(v.entry.Size) {
		return fmt.Errorf("gobfile: seek %d out of range for %q (size %d)", offset, v.entry.Path, v.entry.Size)
	}
	v.pos = offset
	return nil
}

// Read copies up to len(buf) bytes starting at the cursor, clamped to
// the remaining bytes in this virtual file's range.
func (v *VirtualFile) Read(buf []byte) (int, error) {
	remaining := int64(v.entry.Size) - v.pos
	if remaining <= 0 {
		return 0, nil
	}
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}
	if err := v.backing.Seek(int64(v.entry.Offset) + v.pos); err != nil {
		return 0, err
	}
	n, err := v.backing.Read(buf)
	v.pos += int64(n)
	return n, err
}
