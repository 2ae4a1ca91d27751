package cog

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonesengine/libim/text"
)

func expectEol(r *text.Reader) error {
	saved := r.ReportEol()
	r.SetReportEol(true)
	defer r.SetReportEol(saved)
	tok, err := r.NextToken(false)
	if err != nil {
		return err
	}
	if tok.Type != text.EndOfLine && tok.Type != text.EndOfFile {
		return fmt.Errorf("cog: expected end of line, found %q", tok.Value)
	}
	return nil
}

func readFlags(r *text.Reader) (Flag, error) {
	if err := r.AssertIdentifier("flags"); err != nil {
		return 0, err
	}
	if err := r.AssertPunctuator("="); err != nil {
		return 0, err
	}
	v, err := r.GetNumber()
	if err != nil {
		return 0, err
	}
	if err := expectEol(r); err != nil {
		return 0, err
	}
	return Flag(v), nil
}

var valueExtensions = map[SymbolType]string{
	TypeAi:       ".ai",
	TypeKeyframe: ".key",
	TypeMaterial: ".mat",
	TypeModel:    ".3do",
	TypeSound:    ".wav",
}

func isPureInteger(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func readValue(r *text.Reader, t SymbolType, warn *[]Warning, loc text.ParseLocation) (Value, error) {
	switch t {
	case TypeInt:
		f, err := r.GetFloat()
		if err != nil {
			return Value{}, err
		}
		trunc := math.Trunc(f)
		if trunc != f {
			*warn = append(*warn, Warning{Message: "int init value truncated from a float literal", Location: loc})
		}
		return Value{Int: int32(trunc)}, nil

	case TypeFlex:
		f, err := r.GetFloat()
		if err != nil {
			return Value{}, err
		}
		return Value{Flex: float32(f)}, nil

	case TypeVector:
		v, err := r.ReadVector3()
		if err != nil {
			return Value{}, err
		}
		return Value{Vector: v}, nil

	case TypeMessage:
		name, err := r.GetIdentifier()
		if err != nil {
			return Value{}, err
		}
		m, ok := messageTypeFromName(name)
		if !ok {
			return Value{}, fmt.Errorf("cog: unknown message name %q", name)
		}
		return Value{Message: m}, nil

	case TypeAi, TypeKeyframe, TypeMaterial, TypeModel, TypeSound:
		tok, err := r.GetSpaceDelimitedString(true)
		if err != nil {
			return Value{}, err
		}
		ext := valueExtensions[t]
		if !strings.HasSuffix(strings.ToLower(tok.Value), ext) {
			return Value{}, fmt.Errorf("cog: %s value %q must end in %q", t, tok.Value, ext)
		}
		return Value{Name: tok.Value}, nil

	case TypeTemplate:
		tok, err := r.GetSpaceDelimitedString(true)
		if err != nil {
			return Value{}, err
		}
		if isPureInteger(tok.Value) {
			return Value{}, fmt.Errorf("cog: template value %q must not be a pure integer", tok.Value)
		}
		return Value{Name: tok.Value}, nil

	case TypeCog, TypeSector, TypeSurface, TypeThing:
		v, err := r.GetNumber()
		if err != nil {
			return Value{}, err
		}
		return Value{Ref: int32(v)}, nil

	default:
		return Value{}, fmt.Errorf("cog: type %s does not accept an init value", t)
	}
}

func readSymbol(r *text.Reader, parseSymDescription bool, warn *[]Warning) (Symbol, error) {
	saved := r.ReportEol()
	r.SetReportEol(true)
	defer r.SetReportEol(saved)

	typeTok, err := r.GetIdentifier()
	if err != nil {
		return Symbol{}, err
	}
	symType, ok := symbolTypeFromKeyword(typeTok)
	if !ok {
		return Symbol{}, fmt.Errorf("cog: unknown symbol type %q", typeTok)
	}

	name, err := r.GetIdentifier()
	if err != nil {
		return Symbol{}, err
	}

	sym := Symbol{Type: symType, Name: name, VTable: NewVTable()}
	if symType.IsPrimitive() {
		sym.LinkID = -1
	} else {
		sym.LinkID = 0
		sym.Mask = defaultNonPrimitiveMask
	}
	if symType == TypeMessage {
		sym.IsLocal = true
	}

	initTok, err := r.PeekToken(false)
	if err != nil {
		return Symbol{}, err
	}
	if initTok.Type == text.Punctuator && initTok.Value == "=" {
		if err := r.Skip(); err != nil {
			return Symbol{}, err
		}
		v, err := readValue(r, symType, warn, initTok.Location)
		if err != nil {
			return Symbol{}, err
		}
		sym.VTable.SetDefault(v)

		semi, err := r.PeekToken(false)
		if err != nil {
			return Symbol{}, err
		}
		if semi.Type == text.Punctuator && semi.Value == ";" {
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
		}
	}

	for {
		tok, err := r.PeekToken(true)
		if err != nil {
			return Symbol{}, err
		}
		if tok.Type == text.EndOfLine || tok.Type == text.EndOfFile {
			break
		}
		if tok.Type != text.Identifier {
			return Symbol{}, fmt.Errorf("cog: expected symbol attribute, found %q", tok.Value)
		}

		switch tok.Value {
		case "local":
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
			sym.IsLocal = true
		case "nolink":
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
			sym.NoLink = true
		case "desc":
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
			if err := r.AssertPunctuator("="); err != nil {
				return Symbol{}, err
			}
			desc, err := r.ReadLine()
			if err != nil {
				return Symbol{}, err
			}
			if parseSymDescription {
				sym.Description = strings.TrimSpace(desc)
			}
		case "linkid":
			loc := tok.Location
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
			if err := r.AssertPunctuator("="); err != nil {
				return Symbol{}, err
			}
			v, err := r.GetNumber()
			if err != nil {
				return Symbol{}, err
			}
			if symType.IsPrimitive() {
				*warn = append(*warn, Warning{Message: fmt.Sprintf("linkid ignored on primitive symbol %q", name), Location: loc})
			} else {
				sym.LinkID = int32(v)
			}
		case "mask":
			loc := tok.Location
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
			if err := r.AssertPunctuator("="); err != nil {
				return Symbol{}, err
			}
			v, err := r.GetNumber()
			if err != nil {
				return Symbol{}, err
			}
			if symType.IsPrimitive() {
				*warn = append(*warn, Warning{Message: fmt.Sprintf("mask ignored on primitive symbol %q", name), Location: loc})
			} else {
				sym.Mask = uint32(v)
			}
		default:
			if err := r.Skip(); err != nil {
				return Symbol{}, err
			}
			*warn = append(*warn, Warning{Message: fmt.Sprintf("unknown attribute %q on symbol %q skipped", tok.Value, name), Location: tok.Location})
			if next, err := r.PeekToken(true); err != nil {
				return Symbol{}, err
			} else if next.Type == text.Punctuator && next.Value == "=" {
				if err := r.Skip(); err != nil {
					return Symbol{}, err
				}
				if _, err := r.GetSpaceDelimitedString(false); err != nil {
					return Symbol{}, err
				}
			}
		}
	}

	if err := r.Skip(); err != nil {
		return Symbol{}, err
	}
	return sym, nil
}

func insertSymbol(script *Script, sym Symbol, warn *[]Warning, loc text.ParseLocation) error {
	if _, inserted := script.Symbols.PushBack(sym.Name, sym); inserted {
		return nil
	}
	if sym.Type == TypeMessage {
		*warn = append(*warn, Warning{Message: fmt.Sprintf("duplicate message symbol %q skipped", sym.Name), Location: loc})
		return nil
	}
	for n := 0; n < maxDuplicateSuffix; n++ {
		candidate := fmt.Sprintf("%s_%d", sym.Name, n)
		renamed := sym
		renamed.Name = candidate
		if _, inserted := script.Symbols.PushBack(candidate, renamed); inserted {
			*warn = append(*warn, Warning{Message: fmt.Sprintf("duplicate symbol %q renamed to %q", sym.Name, candidate), Location: loc})
			return nil
		}
	}
	return fmt.Errorf("cog: duplicate symbol %q: exhausted %d rename attempts", sym.Name, maxDuplicateSuffix)
}

// Read parses a COG script's flag header and symbol table from r. If
// parseSymDescription is false (the default used by most callers),
// "desc" attribute text is consumed but discarded rather than stored,
// matching the reference parser's opt-in description parsing.
func Read(r *text.Reader, parseSymDescription bool) (*Script, []Warning, error) {
	script := newScript(r.Name())
	var warnings []Warning

	peek, err := r.PeekToken(true)
	if err != nil {
		return nil, nil, err
	}
	if peek.Type == text.Identifier && peek.Value == "flags" {
		flags, err := readFlags(r)
		if err != nil {
			return nil, nil, err
		}
		script.Flags = flags
	}

	if err := r.AssertIdentifier("symbols"); err != nil {
		return nil, nil, err
	}
	if err := expectEol(r); err != nil {
		return nil, nil, err
	}

	for {
		peek, err := r.PeekToken(true)
		if err != nil {
			return nil, nil, err
		}
		if peek.Type == text.Identifier && peek.Value == "end" {
			if err := r.Skip(); err != nil {
				return nil, nil, err
			}
			if err := expectEol(r); err != nil {
				return nil, nil, err
			}
			break
		}

		sym, err := readSymbol(r, parseSymDescription, &warnings)
		if err != nil {
			return nil, nil, err
		}
		if err := insertSymbol(script, sym, &warnings, peek.Location); err != nil {
			return nil, nil, err
		}
	}

	return script, warnings, nil
}
