// Package text implements the lexical tokenizer and the layered
// section/key/list grammar shared by the NDY, KEY and COG text formats.
package text

import "strings"

// TokenType enumerates the lexical categories produced by the Tokenizer.
type TokenType int

const (
	Invalid TokenType = iota - 1
	EndOfFile
	EndOfLine
	Identifier
	String
	Punctuator
	Integer
	HexInteger
	OctInteger
	FloatNumber
)

func (t TokenType) String() string {
	switch t {
	case Invalid:
		return "Invalid"
	case EndOfFile:
		return "EndOfFile"
	case EndOfLine:
		return "EndOfLine"
	case Identifier:
		return "Identifier"
	case String:
		return "String"
	case Punctuator:
		return "Punctuator"
	case Integer:
		return "Integer"
	case HexInteger:
		return "HexInteger"
	case OctInteger:
		return "OctInteger"
	case FloatNumber:
		return "FloatNumber"
	default:
		return "Unknown"
	}
}

// TypeMask is a bitset of TokenType values, used by SkipIf/SkipIfNot.
type TypeMask uint32

// Mask returns the TypeMask bit for t.
func Mask(t TokenType) TypeMask {
	if t < 0 {
		return 0
	}
	return TypeMask(1) << uint(t)
}

// ParseLocation identifies a span of source text for diagnostics.
type ParseLocation struct {
	Filename             string
	FirstLine, FirstCol  int
	LastLine, LastCol    int
}

// Token is a single lexical unit: its type, literal text, and location.
type Token struct {
	Type     TokenType
	Value    string
	Location ParseLocation
}

// IsNumber reports whether t is one of the numeric token types.
func (t Token) IsNumber() bool {
	switch t.Type {
	case Integer, HexInteger, OctInteger, FloatNumber:
		return true
	default:
		return false
	}
}

// IsValid reports whether t is neither Invalid, EndOfFile, nor EndOfLine.
func (t Token) IsValid() bool {
	return t.Type != Invalid && t.Type != EndOfFile && t.Type != EndOfLine
}

// IsEmpty reports whether t carries no literal text.
func (t Token) IsEmpty() bool {
	return t.Value == ""
}

// Lowercased returns a copy of t with its value lowercased.
func (t Token) Lowercased() Token {
	t.Value = strings.ToLower(t.Value)
	return t
}
