// Package fixups applies small, name-keyed corrections to parsed COG
// scripts whose source text is known to confuse the declaration
// parser, working around quirks in specific shipped .cog files rather
// than bugs in the parser itself.
package fixups

import (
	"strings"

	"github.com/jonesengine/libim/cog"
)

type fixFunc func(*cog.Script)

// registry maps a lowercased script filename to the fix that repairs
// it. Keys are matched case-insensitively against Script.Name.
var registry = map[string]fixFunc{
	"shs_btladder.cog": FixSpike1CogLocal,
}

// IsMalformed reports whether s is a known-malformed script with a fix
// registered for it.
func IsMalformed(s *cog.Script) bool {
	_, ok := registry[strings.ToLower(s.Name)]
	return ok
}

// Apply runs the registered fix for s, if any. It is a no-op for
// scripts with no known issue.
func Apply(s *cog.Script) {
	if fix, ok := registry[strings.ToLower(s.Name)]; ok {
		fix(s)
	}
}

// FixSpike1CogLocal corrects shs_btladder.cog's "int in_rotrate"
// symbol. The script declares it as "int in_rotrate=0local" with no
// whitespace before the local attribute. The tokenizer ends the number
// at the first letter, so "0local" parses as the value 0 followed by
// the local attribute, leaving the symbol local when the level
// (03_shs) expects the engine to assign it as a non-local instance
// variable. The fix clears IsLocal.
func FixSpike1CogLocal(s *cog.Script) {
	sym, ok := s.Symbols.Get("in_rotrate")
	if !ok || sym.Type != cog.TypeInt {
		return
	}
	sym.IsLocal = false
	s.Symbols.Set("in_rotrate", sym)
}
