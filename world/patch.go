package world

import (
	"fmt"
	"io"
	"os"

	"github.com/jonesengine/libim/animation"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
)

// Byte offsets of the Materials.Num and Keyframes.Num header fields,
// computed the same way HeaderSize is: by summing the fields that
// precede them in Header's on-disk layout. The patch functions seek
// directly to these offsets to bump a section's declared count without
// rewriting the rest of the header.
const (
	headerOffsetMaterials = 4 + copyrightFieldSize + filePathFieldSize + 4 + 4 +
		4*3 + 4*2 + 4*2 + 4*4 +
		4 + 4*4 + 4 + 4 +
		4 +
		8
	headerOffsetKeyframes = headerOffsetMaterials + 8 + 4*5 + 8*3
)

const copyChunkSize = 64 * 1024

// copyRange copies n bytes from r's current cursor to w's current
// cursor, chunked to bound memory use on large CND files.
func copyRange(w stream.Writer, r stream.Reader, n int64) error {
	buf := make([]byte, copyChunkSize)
	for n > 0 {
		chunk := int64(len(buf))
		if n < chunk {
			chunk = n
		}
		read, err := r.Read(buf[:chunk])
		if err != nil {
			return err
		}
		if read == 0 {
			return io.ErrUnexpectedEOF
		}
		if _, err := w.Write(buf[:read]); err != nil {
			return err
		}
		n -= int64(read)
	}
	return nil
}

// patchInPlace runs the two-stage patch-in-place algorithm shared by
// PatchCndMaterials and PatchCndAnimations: stream-copy everything
// before the target section, let writeSection produce the replacement
// and report how many old bytes it displaces, stream-copy everything
// after, then go back and fix up the file size and the section's
// header count fields. On any failure the original file is left
// untouched and the temporary output is deleted (spec §7: "a failed
// patch must never truncate or corrupt the input").
func patchInPlace(cndPath string, countOffset int64, writeSection func(ifs stream.Reader, ofs stream.Writer, h Header) (oldSectionEnd int64, newCount uint32, err error)) (err error) {
	patchedPath := cndPath + ".patched"

	ifs, err := stream.OpenFileRead(cndPath)
	if err != nil {
		return err
	}
	defer ifs.Close()

	h, err := ReadHeader(ifs)
	if err != nil {
		return fmt.Errorf("world: patch: %w", err)
	}

	ofs, err := stream.CreateFileWrite(patchedPath)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			ofs.Close()
			os.Remove(patchedPath)
		}
	}()

	oldSectionEnd, newCount, err := writeSection(ifs, ofs, h)
	if err != nil {
		return err
	}

	if err = copyRange(ofs, ifs, ifs.Size()-oldSectionEnd); err != nil {
		return err
	}

	if err = ofs.Seek(0); err != nil {
		return err
	}
	if err = stream.WriteU32(ofs, uint32(ofs.Size())); err != nil {
		return err
	}

	if err = ofs.Seek(countOffset); err != nil {
		return err
	}
	if err = stream.WriteU32(ofs, newCount); err != nil {
		return err
	}

	if err = ofs.Close(); err != nil {
		return err
	}
	if err = ifs.Close(); err != nil {
		return err
	}
	return os.Rename(patchedPath, cndPath)
}

// PatchCndMaterials replaces the CND's materials section in place with
// materials, without touching any other section, by rewriting only the
// bytes between the old and new materials sections (spec §8: "patching
// a section must not perturb unrelated sections' bytes").
func PatchCndMaterials(cndPath string, materials []*material.Material) error {
	return patchInPlace(cndPath, headerOffsetMaterials, func(ifs stream.Reader, ofs stream.Writer, h Header) (int64, uint32, error) {
		if _, err := readNameList(ifs, h.Sounds.Num); err != nil {
			return 0, 0, err
		}
		matSectionOffset := ifs.Tell()

		if err := ifs.Seek(0); err != nil {
			return 0, 0, err
		}
		if err := copyRange(ofs, ifs, matSectionOffset); err != nil {
			return 0, 0, err
		}

		oldSizePixeldata, err := stream.ReadU32(ifs)
		if err != nil {
			return 0, 0, err
		}

		if err := writeMaterialsSection(ofs, materials); err != nil {
			return 0, 0, err
		}

		oldSectionEnd := matSectionOffset + 4 + int64(cndMaterialHeaderSize)*int64(h.Materials.Num) + int64(oldSizePixeldata)
		if err := ifs.Seek(oldSectionEnd); err != nil {
			return 0, 0, err
		}
		return oldSectionEnd, uint32(len(materials)), nil
	})
}

// PatchCndAnimations replaces the CND's keyframes section in place with
// animations, the Keyframes-section analog of PatchCndMaterials.
func PatchCndAnimations(cndPath string, animations []*animation.Animation) error {
	return patchInPlace(cndPath, headerOffsetKeyframes, func(ifs stream.Reader, ofs stream.Writer, h Header) (int64, uint32, error) {
		if _, err := readNameList(ifs, h.Sounds.Num); err != nil {
			return 0, 0, err
		}
		if _, err := readMaterialsSection(ifs, h); err != nil {
			return 0, 0, err
		}
		if _, err := readGeoresource(ifs, h); err != nil {
			return 0, 0, err
		}
		if _, err := readSectors(ifs, h); err != nil {
			return 0, 0, err
		}
		if _, err := readNameList(ifs, h.AIClasses.Num); err != nil {
			return 0, 0, err
		}
		if _, err := readNameList(ifs, h.Models.Num); err != nil {
			return 0, 0, err
		}
		if _, err := readNameList(ifs, h.Sprites.Num); err != nil {
			return 0, 0, err
		}

		keySectionOffset := ifs.Tell()

		if err := ifs.Seek(0); err != nil {
			return 0, 0, err
		}
		if err := copyRange(ofs, ifs, keySectionOffset); err != nil {
			return 0, 0, err
		}

		if err := writeKeyframesSection(ofs, animations); err != nil {
			return 0, 0, err
		}

		totalMarkers, err := stream.ReadU32(ifs)
		if err != nil {
			return 0, 0, err
		}
		totalNodes, err := stream.ReadU32(ifs)
		if err != nil {
			return 0, 0, err
		}
		totalEntries, err := stream.ReadU32(ifs)
		if err != nil {
			return 0, 0, err
		}

		oldSectionEnd := keySectionOffset + 12 +
			int64(cndKeyHeaderSize)*int64(h.Keyframes.Num) +
			int64(keyMarkerSize)*int64(totalMarkers) +
			int64(cndKeyNodeSize)*int64(totalNodes) +
			int64(keyNodeEntrySize)*int64(totalEntries)
		if err := ifs.Seek(oldSectionEnd); err != nil {
			return 0, 0, err
		}
		return oldSectionEnd, uint32(len(animations)), nil
	})
}
