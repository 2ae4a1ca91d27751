package world

import "github.com/jonesengine/libim/stream"

// nameFieldSize is the fixed-width string field used by every CND
// section that stores a flat table of resource names rather than
// embedded asset data (Sounds, AIClasses, Models, Sprites, AnimClasses,
// SoundClasses, COGScriptNames). The world loader resolves each name
// through the virtual file system; the CND itself only records which
// names a level references, not their content (spec §4.J: NDY→CND
// "loads every referenced MAT, KEY, and COG script via the relevant
// codec").
const nameFieldSize = 64

func readNameList(r stream.Reader, count uint32) ([]string, error) {
	names := make([]string, count)
	for i := range names {
		name, err := stream.ReadFixedString(r, nameFieldSize)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

func writeNameList(w stream.Writer, names []string) error {
	for _, name := range names {
		if err := stream.WriteFixedString(w, name, nameFieldSize); err != nil {
			return err
		}
	}
	return nil
}
