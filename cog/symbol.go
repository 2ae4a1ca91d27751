package cog

import (
	"strings"

	"github.com/jonesengine/libim/indexmap"
	"github.com/jonesengine/libim/mathutil"
)

// SymbolType is a COG script symbol's declared type. Values mirror the
// reference implementation's CogSymbol::Type enum; "float" is accepted
// as a parse-time alias for Flex (see symbolTypeFromKeyword) since
// older scripts spell the same type both ways.
type SymbolType int

const (
	TypeNone SymbolType = iota
	TypeInt
	TypeFlex
	TypeThing
	TypeTemplate
	TypeSector
	TypeSurface
	TypeKeyframe
	TypeSound
	TypeCog
	TypeMaterial
	TypeVector
	TypeModel
	TypeAi
	TypeMessage
)

func (t SymbolType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFlex:
		return "flex"
	case TypeThing:
		return "thing"
	case TypeTemplate:
		return "template"
	case TypeSector:
		return "sector"
	case TypeSurface:
		return "surface"
	case TypeKeyframe:
		return "keyframe"
	case TypeSound:
		return "sound"
	case TypeCog:
		return "cog"
	case TypeMaterial:
		return "material"
	case TypeVector:
		return "vector"
	case TypeModel:
		return "model"
	case TypeAi:
		return "ai"
	case TypeMessage:
		return "message"
	default:
		return "none"
	}
}

// IsPrimitive reports whether t is one of the three primitive types
// (spec §4.I: "Primitive types are int, flex, vector").
func (t SymbolType) IsPrimitive() bool {
	return t == TypeInt || t == TypeFlex || t == TypeVector
}

var typeKeywords = map[string]SymbolType{
	"int": TypeInt, "flex": TypeFlex, "float": TypeFlex,
	"thing": TypeThing, "template": TypeTemplate, "sector": TypeSector,
	"surface": TypeSurface, "keyframe": TypeKeyframe, "sound": TypeSound,
	"cog": TypeCog, "material": TypeMaterial, "vector": TypeVector,
	"model": TypeModel, "ai": TypeAi, "message": TypeMessage,
}

func normalizeIdent(s string) string {
	return strings.ToLower(s)
}

func symbolTypeFromKeyword(kw string) (SymbolType, bool) {
	t, ok := typeKeywords[normalizeIdent(kw)]
	return t, ok
}

// Value is the parsed form of a symbol's default/init value. Exactly
// one of the typed fields is meaningful, selected by Symbol.Type:
//   - TypeInt:                       Int
//   - TypeFlex:                      Flex
//   - TypeVector:                    Vector
//   - TypeMessage:                   Message
//   - TypeAi, TypeKeyframe,
//     TypeMaterial, TypeModel,
//     TypeSound, TypeTemplate:       Name
//   - TypeCog, TypeSector,
//     TypeSurface, TypeThing:        Ref
//
// Unlike the reference implementation's std::variant (which stores
// shared references to the loaded asset behind Sound/Animation/
// Material/Surface/Sector/Cog symbols), Value only carries the raw
// name or integer a script declares; resolving a name/ref to a loaded
// asset is the world codec's job, not the parser's (spec §4.I scopes
// the parser to declarations, not runtime interpretation).
type Value struct {
	Int     int32
	Flex    float32
	Vector  mathutil.Vector3
	Message MessageType
	Name    string
	Ref     int32
}

// VTable holds per-instance value overrides for a symbol, keyed by an
// opaque integer id assigned by the owning script (mirrors the
// reference CogVTable, which is keyed the same way so a Cog instance's
// runtime overrides can coexist with the symbol's parsed default under
// id 0). Backed by IndexMap per the declarative data model (spec §3:
// "vtable: IndexMap<vtableId,Value>").
type VTable struct {
	m *indexmap.IndexMap[uint32, Value]
}

// NewVTable returns an empty VTable.
func NewVTable() VTable {
	return VTable{m: indexmap.New[uint32, Value]()}
}

// DefaultID is the VTable key reserved for a symbol's parsed default
// value.
const DefaultID uint32 = 0

// Default returns the symbol's default value and whether one is set.
func (vt VTable) Default() (Value, bool) {
	return vt.m.Get(DefaultID)
}

// SetDefault stores v as the symbol's default value.
func (vt VTable) SetDefault(v Value) {
	vt.m.Set(DefaultID, v)
}

// Get returns the per-instance override stored under id, if any.
func (vt VTable) Get(id uint32) (Value, bool) {
	return vt.m.Get(id)
}

// Set stores v under id, overwriting any previous value there.
func (vt VTable) Set(id uint32, v Value) {
	vt.m.Set(id, v)
}

// Len returns the number of values (default plus per-instance
// overrides) currently stored.
func (vt VTable) Len() int {
	return vt.m.Len()
}

// Symbol is one declaration in a COG script's symbol table.
type Symbol struct {
	Type        SymbolType
	Name        string
	VTable      VTable
	IsLocal     bool
	NoLink      bool
	LinkID      int32
	Mask        uint32
	Description string
}
