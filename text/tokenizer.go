package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"

	"github.com/jonesengine/libim/stream"
)

const (
	chEof       = 0
	chEol       = '\n'
	chCr        = '\r'
	chTab       = '\t'
	chComment   = '#'
	chDblQuote  = '"'
	chQuote     = '\''
	chBackSlash = '\\'
	chMinus     = '-'
	chPlus      = '+'
	chDecimalSep = '.'
	chIdentifier  = '_'
	chIdentifier2 = '$'
)

// charSource is a small read-ahead buffer over a stream.Reader, reading
// one byte at a time while tracking the stream name for diagnostics.
// Grounded on the reference tokenizer's BufferedRead<4096>.
type charSource struct {
	r    stream.Reader
	name string
	buf  [4096]byte
	pos  int
	end  int
}

func newCharSource(r stream.Reader) *charSource {
	return &charSource{r: r, name: r.Name()}
}

func (c *charSource) readByte() byte {
	if c.pos >= c.end {
		n, _ := c.r.Read(c.buf[:])
		c.pos = 0
		c.end = n
		if n == 0 {
			return chEof
		}
	}
	b := c.buf[c.pos]
	c.pos++
	return b
}

// tell returns the logical stream offset of the next unread byte.
func (c *charSource) tell() int64 {
	return c.r.Tell() - int64(c.end-c.pos)
}

// seekTo repositions the source to the given absolute offset and
// discards any buffered lookahead, forcing a refill on next read. This
// is the basis for the tokenizer's snapshot/restore peek implementation.
func (c *charSource) seekTo(offset int64) {
	c.r.Seek(offset)
	c.pos, c.end = 0, 0
}

// Tokenizer is the character-level lexer shared by every text format.
// It maintains a lookahead of exactly one character beyond the current
// one, supports peeking a whole token without consuming it, and can
// toggle whether end-of-line is itself a significant token.
type Tokenizer struct {
	src       *charSource
	cur, next byte
	line, col int
	reportEol bool
	cached    Token
}

// NewTokenizer constructs a Tokenizer reading from r.
func NewTokenizer(r stream.Reader) *Tokenizer {
	t := &Tokenizer{src: newCharSource(r), line: 1, col: 1}
	t.cur = t.readNextChar()
	t.next = t.readNextChar()
	return t
}

func (t *Tokenizer) readNextChar() byte {
	return t.src.readByte()
}

func isCrLf(c1, c2 byte) bool {
	return c1 == chCr && c2 == chEol
}

func (t *Tokenizer) isEol() bool {
	return t.cur == chEol || isCrLf(t.cur, t.next)
}

func (t *Tokenizer) advance() {
	t.col++
	if t.cur == chEol {
		t.line++
		t.col = 1
	}
	t.cur = t.next
	t.next = t.readNextChar()
}

func isSpace(c byte) bool {
	return c == ' ' || c == chTab || c == '\f' || c == '\v' || c == chCr || c == chEol
}

func isIdentifierLead(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == chIdentifier || c == chIdentifier2
}

func isIdentifierChar(c byte) bool {
	return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == chIdentifier || c == chIdentifier2
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isPunct(c byte) bool {
	return c > 32 && c < 127 && !isDigit(c) && !unicode.IsLetter(rune(c)) && c != chIdentifier && c != chIdentifier2
}

func (t *Tokenizer) currentLocation() ParseLocation {
	return ParseLocation{Filename: t.src.name, FirstLine: t.line, FirstCol: t.col, LastLine: t.line, LastCol: t.col}
}

// SetReportEol toggles whether EndOfLine is produced as a real token
// (rather than being treated as insignificant whitespace).
func (t *Tokenizer) SetReportEol(report bool) { t.reportEol = report }

// ReportEol reports the current EOL-significance setting.
func (t *Tokenizer) ReportEol() bool { return t.reportEol }

func (t *Tokenizer) skipWhitespaceStep() bool {
	if t.cur == chEof {
		return false
	}
	if t.reportEol && t.cur == chEol {
		return false
	}
	if isSpace(t.cur) {
		t.advance()
		return true
	}
	if t.cur == chComment {
		t.SkipToNextLine()
		return true
	}
	return false
}

func (t *Tokenizer) skipWhitespace() {
	for t.skipWhitespaceStep() {
	}
}

// SkipToNextLine advances the cursor to just before the next EOL (or EOF).
func (t *Tokenizer) SkipToNextLine() {
	for t.cur != chEol && t.cur != chEof {
		t.advance()
	}
}

func (t *Tokenizer) readIdentifier(loc ParseLocation) Token {
	var sb strings.Builder
	// Caller has already verified isIdentifierLead(t.cur).
	for {
		sb.WriteByte(t.cur)
		t.advance()
		if !isIdentifierChar(t.cur) && t.cur != chMinus {
			break
		}
	}
	loc.LastLine, loc.LastCol = t.line, t.col
	return Token{Type: Identifier, Value: sb.String(), Location: loc}
}

func (t *Tokenizer) readNumericIntegerPart(sb *strings.Builder) {
	for isDigit(t.cur) {
		sb.WriteByte(t.cur)
		t.advance()
	}
}

func (t *Tokenizer) readNumericLiteral(loc ParseLocation) Token {
	var sb strings.Builder
	typ := Integer

	if t.cur == chMinus || t.cur == chPlus {
		sb.WriteByte(t.cur)
		t.advance()
	}

	if t.cur == '0' && (t.next == 'x' || t.next == 'X') {
		typ = HexInteger
		sb.WriteByte(t.cur)
		sb.WriteByte(t.next)
		t.advance()
		t.advance()
		for isHexDigit(t.cur) {
			sb.WriteByte(t.cur)
			t.advance()
		}
		loc.LastLine, loc.LastCol = t.line, t.col
		return Token{Type: typ, Value: sb.String(), Location: loc}
	}

	t.readNumericIntegerPart(&sb)

	if t.cur == chDecimalSep && isDigit(t.next) {
		s := sb.String()
		if s == "" || !isDigit(s[len(s)-1]) {
			sb.WriteByte('0')
		}
		sb.WriteByte(t.cur)
		t.advance()
		t.readNumericIntegerPart(&sb)
		typ = FloatNumber
	}

	if t.cur == 'e' || t.cur == 'E' {
		sb.WriteByte(t.cur)
		t.advance()
		if t.cur == chMinus || t.cur == chPlus {
			sb.WriteByte(t.cur)
			t.advance()
		}
		t.readNumericIntegerPart(&sb)
		typ = FloatNumber
	}

	loc.LastLine, loc.LastCol = t.line, t.col
	return Token{Type: typ, Value: sb.String(), Location: loc}
}

func (t *Tokenizer) readStringLiteral(loc ParseLocation) (Token, error) {
	var sb strings.Builder
	for {
		t.advance()
		switch t.cur {
		case chEof:
			loc.LastLine, loc.LastCol = t.line, t.col
			return Token{}, newTokenizerError("unexpected end of file in string literal", loc)
		case chEol:
			loc.LastLine, loc.LastCol = t.line, t.col
			return Token{}, newTokenizerError("unexpected new line in string literal", loc)
		case chDblQuote:
			t.advance()
			loc.LastLine, loc.LastCol = t.line, t.col
			return Token{Type: String, Value: sb.String(), Location: loc}, nil
		case chBackSlash:
			t.advance()
			switch t.cur {
			case chEol:
				// escaped newline, swallowed
			case chQuote, chDblQuote, chBackSlash:
				sb.WriteByte(t.cur)
			case 'n':
				sb.WriteByte(chEol)
			case 't':
				sb.WriteByte(chTab)
			default:
				loc.LastLine, loc.LastCol = t.line, t.col
				return Token{}, newTokenizerError("unknown escape sequence", loc)
			}
		default:
			writeSourceByte(&sb, t.cur)
		}
	}
}

// writeSourceByte appends b to sb, decoding bytes outside the ASCII
// range as Windows-1252 (the 8-bit text files on disk, spec §6, are
// not UTF-8): description strings and other free-form text may carry
// the extended Latin-1 punctuation/accents that code page covers.
func writeSourceByte(sb *strings.Builder, b byte) {
	if b < 0x80 {
		sb.WriteByte(b)
		return
	}
	sb.WriteRune(charmap.Windows1252.DecodeByte(b))
}

// ReadDelimitedString consumes raw characters (bypassing the normal
// token grammar) until isDelim reports true or EOF is hit.
func (t *Tokenizer) ReadDelimitedString(isDelim func(byte) bool) Token {
	t.skipWhitespace()
	loc := t.currentLocation()
	var sb strings.Builder
	for !isDelim(t.cur) && t.cur != chEof {
		writeSourceByte(&sb, t.cur)
		t.advance()
	}
	loc.LastLine, loc.LastCol = t.line, t.col
	tok := Token{Type: String, Value: sb.String(), Location: loc}
	t.cached = tok
	return tok
}

// GetSpaceDelimitedString reads up to the next whitespace character.
func (t *Tokenizer) GetSpaceDelimitedString(throwIfEmpty bool) (Token, error) {
	tok := t.ReadDelimitedString(isSpace)
	if throwIfEmpty && tok.IsEmpty() {
		return tok, newSyntaxError("expected string fragment", tok.Location)
	}
	return tok, nil
}

// GetString reads exactly len bytes, failing if the stream ends early.
func (t *Tokenizer) GetString(length int) (Token, error) {
	t.skipWhitespace()
	loc := t.currentLocation()
	var sb strings.Builder
	for i := 0; i < length; i++ {
		if t.cur == chEof {
			return Token{}, newTokenizerError("unexpected end of file in sized string", loc)
		}
		writeSourceByte(&sb, t.cur)
		t.advance()
	}
	loc.LastLine, loc.LastCol = t.line, t.col
	tok := Token{Type: String, Value: sb.String(), Location: loc}
	t.cached = tok
	return tok, nil
}

func (t *Tokenizer) readToken() (Token, error) {
	t.skipWhitespace()
	loc := t.currentLocation()

	switch {
	case t.cur == chEof:
		loc.LastLine, loc.LastCol = t.line, t.col
		return Token{Type: EndOfFile, Location: loc}, nil
	case t.cur == chEol:
		tok := Token{Type: EndOfLine, Location: loc}
		t.advance()
		tok.Location.LastLine, tok.Location.LastCol = t.line, t.col
		return tok, nil
	case t.cur == chDblQuote:
		return t.readStringLiteral(loc)
	case isIdentifierLead(t.cur):
		return t.readIdentifier(loc), nil
	case isDigit(t.cur):
		return t.readNumericLiteral(loc), nil
	case isPunct(t.cur):
		if t.cur == chMinus && (t.next == chDecimalSep || isDigit(t.next)) {
			return t.readNumericLiteral(loc), nil
		}
		if t.cur == chDecimalSep && isDigit(t.next) {
			return t.readNumericLiteral(loc), nil
		}
		tok := Token{Type: Punctuator, Value: string(t.cur), Location: loc}
		t.advance()
		tok.Location.LastLine, tok.Location.LastCol = t.line, t.col
		return tok, nil
	default:
		loc.LastLine, loc.LastCol = t.line, t.col
		return Token{Type: Invalid, Location: loc}, nil
	}
}

// NextToken advances past and returns the next token. When lowercase is
// true, identifier/string text is folded to lowercase.
func (t *Tokenizer) NextToken(lowercase bool) (Token, error) {
	tok, err := t.readToken()
	if err != nil {
		return Token{}, err
	}
	if lowercase {
		tok = tok.Lowercased()
	}
	t.cached = tok
	return tok, nil
}

// PeekToken produces the next token without advancing the tokenizer's
// visible state, by snapshotting and restoring position/line/column.
func (t *Tokenizer) PeekToken(lowercase bool) (Token, error) {
	savedOffset := t.src.tell()
	cur, next := t.cur, t.next
	line, col := t.line, t.col

	tok, err := t.readToken()

	t.src.seekTo(savedOffset)
	t.cur, t.next = cur, next
	t.line, t.col = line, col

	if err != nil {
		return Token{}, err
	}
	if lowercase {
		tok = tok.Lowercased()
	}
	return tok, nil
}

// CurrentToken returns the most recently produced token.
func (t *Tokenizer) CurrentToken() Token { return t.cached }

// GetIdentifier requires and returns the next token as an identifier.
func (t *Tokenizer) GetIdentifier() (string, error) {
	tok, err := t.NextToken(false)
	if err != nil {
		return "", err
	}
	if tok.Type != Identifier {
		return "", newSyntaxError("expected identifier", tok.Location)
	}
	return tok.Value, nil
}

// GetStringLiteral requires and returns the next token as a string literal.
func (t *Tokenizer) GetStringLiteral() (string, error) {
	tok, err := t.NextToken(false)
	if err != nil {
		return "", err
	}
	if tok.Type != String {
		return "", newSyntaxError("expected string literal", tok.Location)
	}
	return tok.Value, nil
}

// AssertIdentifier requires the next token to be the identifier id
// (case-insensitive).
func (t *Tokenizer) AssertIdentifier(id string) error {
	tok, err := t.NextToken(false)
	if err != nil {
		return err
	}
	if tok.Type != Identifier || !strings.EqualFold(tok.Value, id) {
		return newSyntaxError("expected identifier '"+id+"'", tok.Location)
	}
	return nil
}

// AssertPunctuator requires the next token to be the punctuator punc.
func (t *Tokenizer) AssertPunctuator(punc string) error {
	tok, err := t.NextToken(false)
	if err != nil {
		return err
	}
	if tok.Type != Punctuator || tok.Value != punc {
		return newSyntaxError("expected punctuator '"+punc+"'", tok.Location)
	}
	return nil
}

// AssertEndOfFile requires the next token to be EndOfFile.
func (t *Tokenizer) AssertEndOfFile() error {
	tok, err := t.NextToken(false)
	if err != nil {
		return err
	}
	if tok.Type != EndOfFile {
		return newSyntaxError("expected end of file", tok.Location)
	}
	return nil
}

// Skip consumes and discards the next token.
func (t *Tokenizer) Skip() error {
	_, err := t.NextToken(false)
	return err
}

// SkipIf consumes the next token only if its type is in mask, reporting
// whether it did.
func (t *Tokenizer) SkipIf(mask TypeMask) (bool, error) {
	tok, err := t.PeekToken(false)
	if err != nil {
		return false, err
	}
	if Mask(tok.Type)&mask != 0 {
		return true, t.Skip()
	}
	return false, nil
}

// SkipIfNot consumes the next token only if its type is NOT in mask.
func (t *Tokenizer) SkipIfNot(mask TypeMask) (bool, error) {
	tok, err := t.PeekToken(false)
	if err != nil {
		return false, err
	}
	if Mask(tok.Type)&mask == 0 {
		return true, t.Skip()
	}
	return false, nil
}
