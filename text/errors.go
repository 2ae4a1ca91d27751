package text

import "fmt"

// SyntaxError is a lexical or grammar error at a specific ParseLocation.
type SyntaxError struct {
	Message  string
	Location ParseLocation
}

func (e *SyntaxError) Error() string {
	loc := e.Location
	return fmt.Sprintf("%s:%d:%d: %s", loc.Filename, loc.FirstLine, loc.FirstCol, e.Message)
}

// TokenizerError is a SyntaxError raised by the character-level lexer
// itself (as opposed to a grammar layered on top of it).
type TokenizerError struct {
	SyntaxError
}

func newTokenizerError(message string, loc ParseLocation) error {
	return &TokenizerError{SyntaxError{Message: message, Location: loc}}
}

func newSyntaxError(message string, loc ParseLocation) error {
	return &SyntaxError{Message: message, Location: loc}
}
