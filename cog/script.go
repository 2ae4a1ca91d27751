// Package cog implements the COG script text format: a flag header
// followed by a symbol table declaration. The package parses and
// serializes symbol declarations only; it does not interpret COG
// bytecode or execute message handlers (runtime COG interpretation is
// out of scope, per the asset codec's non-goals).
package cog

import (
	"fmt"

	"github.com/jonesengine/libim/indexmap"
	"github.com/jonesengine/libim/text"
)

// Flag is a bit in a script's metadata flags field, consulted by the
// world codec when a Cog instance references this script.
type Flag uint32

const (
	FlagNone        Flag = 0x000
	FlagDebug       Flag = 0x001
	FlagDisabled    Flag = 0x002
	FlagPulseSet    Flag = 0x004
	FlagTimerSet    Flag = 0x008
	FlagPaused      Flag = 0x010
	FlagThingLinked Flag = 0x020
	FlagLocal       Flag = 0x040
	FlagServer      Flag = 0x080
	FlagGlobal      Flag = 0x100
	FlagNoSync      Flag = 0x200
)

// Thing type-mask bits referenced by a non-primitive symbol's default
// mask (spec §4.I: "default mask is {Player, Free}"). Transcribed from
// the reference Thing::Type enum (Free=0, Player=10); TypeMask treats
// the enumerator's value as a bit index.
const (
	thingMaskFree   uint32 = 1 << 0
	thingMaskPlayer uint32 = 1 << 10
)

const defaultNonPrimitiveMask = thingMaskFree | thingMaskPlayer

// maxDuplicateSuffix bounds the "_<n>" rename attempts spec §4.I makes
// before treating a name collision as fatal.
const maxDuplicateSuffix = 256

// Warning is a non-fatal recoverable condition the parser encountered
// (an unknown attribute, a lossy int truncation, a duplicate message
// symbol, ...). The parser collects these rather than logging them
// directly, so a caller can choose whether/how to surface them.
type Warning struct {
	Message  string
	Location text.ParseLocation
}

func (w Warning) String() string {
	loc := w.Location
	return fmt.Sprintf("%s:%d:%d: %s", loc.Filename, loc.FirstLine, loc.FirstCol, w.Message)
}

// Script is the in-memory form of a COG script's declaration section.
type Script struct {
	Name    string
	Flags   Flag
	Symbols *indexmap.IndexMap[string, Symbol]

	nextVTableID uint32
}

func newScript(name string) *Script {
	return &Script{Name: name, Symbols: indexmap.New[string, Symbol]()}
}

// NextVTableID allocates and returns a fresh per-instance vtable id for
// a Cog that links against this script, mirroring the reference
// CogScript::getNextVTableId (id 0 is reserved for a symbol's parsed
// default, so allocation starts at 1).
func (s *Script) NextVTableID() uint32 {
	s.nextVTableID++
	return s.nextVTableID
}
