package text

import (
	"strconv"
	"strings"

	"github.com/jonesengine/libim/mathutil"
	"github.com/jonesengine/libim/stream"
)

const resLabelDelim = ":"

// Reader layers the section/label/key/list grammar shared by NDY, KEY
// and COG over a Tokenizer.
type Reader struct {
	*Tokenizer
}

// NewReader constructs a Reader over r.
func NewReader(r stream.Reader) *Reader {
	return &Reader{Tokenizer: NewTokenizer(r)}
}

// AssertLabel requires "<label>:" at the cursor.
func (r *Reader) AssertLabel(label string) error {
	if err := r.AssertIdentifier(label); err != nil {
		return err
	}
	return r.AssertPunctuator(resLabelDelim)
}

// AssertKey requires the next fixed-width token to equal key
// case-insensitively (keys are read as sized strings, matching the
// reference reader's assertKey).
func (r *Reader) AssertKey(key string) error {
	tok, err := r.GetString(len(key))
	if err != nil {
		return err
	}
	if !strings.EqualFold(tok.Value, key) {
		return newSyntaxError("invalid key", tok.Location)
	}
	return nil
}

// ReadKeyToken reads "<key> <value-token>", with EndOfLine made
// significant for the duration so <value-token> stops at line end.
func (r *Reader) ReadKeyToken(key string) (Token, error) {
	if err := r.AssertKey(key); err != nil {
		return Token{}, err
	}
	saved := r.ReportEol()
	r.SetReportEol(true)
	defer r.SetReportEol(saved)
	return r.NextToken(false)
}

// ReadKeyString reads "<key> <string>".
func (r *Reader) ReadKeyString(key string) (string, error) {
	if err := r.AssertKey(key); err != nil {
		return "", err
	}
	line, err := r.ReadLine()
	return strings.TrimSpace(line), err
}

// ReadKeyInt reads "<key> <integer>".
func (r *Reader) ReadKeyInt(key string) (int64, error) {
	tok, err := r.ReadKeyToken(key)
	if err != nil {
		return 0, err
	}
	return tokenToInt(tok)
}

// ReadKeyFloat reads "<key> <number>".
func (r *Reader) ReadKeyFloat(key string) (float64, error) {
	tok, err := r.ReadKeyToken(key)
	if err != nil {
		return 0, err
	}
	return tokenToFloat(tok)
}

// ReadKeyHexFlags reads "<key> <hex-or-decimal-flags>".
func (r *Reader) ReadKeyHexFlags(key string) (uint32, error) {
	v, err := r.ReadKeyInt(key)
	return uint32(v), err
}

func tokenToInt(tok Token) (int64, error) {
	if !tok.IsNumber() {
		return 0, newSyntaxError("expected numeric literal", tok.Location)
	}
	base := 10
	s := tok.Value
	switch tok.Type {
	case HexInteger:
		base = 16
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	case OctInteger:
		base = 8
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, newSyntaxError("invalid numeric conversion from string", tok.Location)
	}
	return v, nil
}

func tokenToFloat(tok Token) (float64, error) {
	if !tok.IsNumber() {
		return 0, newSyntaxError("expected numeric literal", tok.Location)
	}
	if tok.Type == FloatNumber {
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return 0, newSyntaxError("invalid numeric conversion from string", tok.Location)
		}
		return v, nil
	}
	v, err := tokenToInt(tok)
	return float64(v), err
}

// GetNumber reads the next token and requires it to be numeric,
// returning its integer value.
func (r *Reader) GetNumber() (int64, error) {
	tok, err := r.NextToken(false)
	if err != nil {
		return 0, err
	}
	return tokenToInt(tok)
}

// GetFloat reads the next token and requires it to be numeric,
// returning its float value.
func (r *Reader) GetFloat() (float64, error) {
	tok, err := r.NextToken(false)
	if err != nil {
		return 0, err
	}
	return tokenToFloat(tok)
}

// ReadLine consumes raw text up to (not including) the next EOL.
func (r *Reader) ReadLine() (string, error) {
	saved := r.ReportEol()
	r.SetReportEol(true)
	defer r.SetReportEol(saved)
	tok := r.ReadDelimitedString(func(c byte) bool { return c == chEol || c == chEof })
	return tok.Value, nil
}

// ReadSection requires "SECTION: <name>" and returns name.
func (r *Reader) ReadSection() (string, error) {
	if err := r.AssertLabel("SECTION"); err != nil {
		return "", err
	}
	return r.ReadLine()
}

// AssertSection requires the next section to be named section.
func (r *Reader) AssertSection(section string) error {
	name, err := r.ReadSection()
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(name), section) {
		return newSyntaxError("invalid section, expected '"+section+"'", r.CurrentToken().Location)
	}
	return nil
}

// ReadRowIdx reads a row-index prefix of the form "<i>:".
func (r *Reader) ReadRowIdx() (int, error) {
	n, err := r.GetNumber()
	if err != nil {
		return 0, err
	}
	if err := r.AssertPunctuator(resLabelDelim); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *Reader) readSlashVector(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := r.AssertPunctuator("/"); err != nil {
				return nil, err
			}
		}
		v, err := r.GetFloat()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadVector2 reads a parenthesized "( x/y )" vector.
func (r *Reader) ReadVector2() (mathutil.Vector2, error) {
	if err := r.AssertPunctuator("("); err != nil {
		return mathutil.Vector2{}, err
	}
	v, err := r.readSlashVector(2)
	if err != nil {
		return mathutil.Vector2{}, err
	}
	if err := r.AssertPunctuator(")"); err != nil {
		return mathutil.Vector2{}, err
	}
	return mathutil.Vector2{X: float32(v[0]), Y: float32(v[1])}, nil
}

// ReadVector3 reads a parenthesized "( x/y/z )" vector.
func (r *Reader) ReadVector3() (mathutil.Vector3, error) {
	if err := r.AssertPunctuator("("); err != nil {
		return mathutil.Vector3{}, err
	}
	v, err := r.readSlashVector(3)
	if err != nil {
		return mathutil.Vector3{}, err
	}
	if err := r.AssertPunctuator(")"); err != nil {
		return mathutil.Vector3{}, err
	}
	return mathutil.Vector3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}, nil
}

// ReadRotator reads a parenthesized "( pitch/yaw/roll )" rotator.
func (r *Reader) ReadRotator() (mathutil.Rotator, error) {
	if err := r.AssertPunctuator("("); err != nil {
		return mathutil.Rotator{}, err
	}
	v, err := r.readSlashVector(3)
	if err != nil {
		return mathutil.Rotator{}, err
	}
	if err := r.AssertPunctuator(")"); err != nil {
		return mathutil.Rotator{}, err
	}
	return mathutil.Rotator{Pitch: float32(v[0]), Yaw: float32(v[1]), Roll: float32(v[2])}, nil
}

// ReadBox reads "( min )( max )" as a Box3.
func (r *Reader) ReadBox() (mathutil.Box3, error) {
	min, err := r.ReadVector3()
	if err != nil {
		return mathutil.Box3{}, err
	}
	max, err := r.ReadVector3()
	if err != nil {
		return mathutil.Box3{}, err
	}
	return mathutil.Box3{Min: min, Max: max}, nil
}

// GradientColor is a 4-corner gradient color value used by world tint
// fields, carried over from the original implementation's
// gradientcolor.h (dropped from the distilled spec's data model but
// present throughout NDY surface/sector declarations).
type GradientColor struct {
	Top, Mid, BottomLeft, BottomRight mathutil.Color
}

func (r *Reader) readColorComponent() (mathutil.Color, error) {
	v, err := r.readSlashVector(3)
	if err != nil {
		return mathutil.Color{}, err
	}
	return mathutil.Color{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2]), A: 255}, nil
}

// ReadGradientColor reads "(top/mid/bl/br)" where each component is
// itself a slash-separated RGB triple.
func (r *Reader) ReadGradientColor() (GradientColor, error) {
	if err := r.AssertPunctuator("("); err != nil {
		return GradientColor{}, err
	}
	top, err := r.readColorComponent()
	if err != nil {
		return GradientColor{}, err
	}
	if err := r.AssertPunctuator("/"); err != nil {
		return GradientColor{}, err
	}
	mid, err := r.readColorComponent()
	if err != nil {
		return GradientColor{}, err
	}
	if err := r.AssertPunctuator("/"); err != nil {
		return GradientColor{}, err
	}
	bl, err := r.readColorComponent()
	if err != nil {
		return GradientColor{}, err
	}
	if err := r.AssertPunctuator("/"); err != nil {
		return GradientColor{}, err
	}
	br, err := r.readColorComponent()
	if err != nil {
		return GradientColor{}, err
	}
	if err := r.AssertPunctuator(")"); err != nil {
		return GradientColor{}, err
	}
	return GradientColor{Top: top, Mid: mid, BottomLeft: bl, BottomRight: br}, nil
}

// ReadList consumes either a count-prefixed or an "end"-terminated list
// (sized selects which), optionally asserting a row-index prefix per
// row (hasRowIDs), delegating each row's construction to rowReader.
func ReadList[T any](r *Reader, name string, hasRowIDs, sized bool, rowReader func(r *Reader, rowIdx int) (T, error)) ([]T, error) {
	var result []T
	rowIdx := 0

	if sized {
		n, err := r.ReadKeyInt(name)
		if err != nil {
			return nil, err
		}
		result = make([]T, 0, n)
		for int64(rowIdx) < n {
			if hasRowIDs {
				got, err := r.ReadRowIdx()
				if err != nil {
					return nil, err
				}
				if got != rowIdx {
					return nil, newSyntaxError("row index mismatch", r.CurrentToken().Location)
				}
			}
			item, err := rowReader(r, rowIdx)
			if err != nil {
				return nil, err
			}
			result = append(result, item)
			rowIdx++
		}
		return result, nil
	}

	for {
		peek, err := r.PeekToken(true)
		if err != nil {
			return nil, err
		}
		if peek.Value == "end" {
			if err := r.Skip(); err != nil {
				return nil, err
			}
			break
		}
		if hasRowIDs {
			got, err := r.ReadRowIdx()
			if err != nil {
				return nil, err
			}
			if got != rowIdx {
				return nil, newSyntaxError("row index mismatch", r.CurrentToken().Location)
			}
		}
		item, err := rowReader(r, rowIdx)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
		rowIdx++
	}
	return result, nil
}
