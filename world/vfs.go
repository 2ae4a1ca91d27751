package world

import (
	"fmt"
	"path"

	"github.com/jonesengine/libim/stream"
)

// ResourceSource resolves a name to a readable stream, the minimal
// capability a GOB container or a plain directory on disk must offer
// to serve as one root of a virtual file system search path.
type ResourceSource interface {
	Open(name string) (stream.Reader, error)
}

// VFS is an ordered list of ResourceSources searched in turn, mirroring
// cndtool's "VFS path list to resolve assets" (spec §6): each NDY→CND
// conversion resolves cog/key/mat names against every listed root
// until one of them has the file.
type VFS struct {
	sources []ResourceSource
}

// NewVFS returns a VFS searching sources in the given order.
func NewVFS(sources ...ResourceSource) VFS {
	return VFS{sources: sources}
}

// Find opens name, first under subdir/ and then directly, trying each
// source in order (the reference loader's "cog/<name>, else <name>"
// fallback, generalized to any subdirectory).
func (v VFS) Find(subdir, name string) (stream.Reader, error) {
	candidates := []string{name}
	if subdir != "" {
		candidates = append([]string{path.Join(subdir, name)}, candidates...)
	}
	var lastErr error
	for _, src := range v.sources {
		for _, candidate := range candidates {
			r, err := src.Open(candidate)
			if err == nil {
				return r, nil
			}
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no resource sources configured")
	}
	return nil, fmt.Errorf("world: could not find resource %q: %w", name, lastErr)
}
