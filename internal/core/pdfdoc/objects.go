package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// resolver wraps the pdfcpu cross reference table with lenient lookups:
// a missing or mistyped entry reads as absent.
type resolver struct {
	ctx *model.Context
}

func (r resolver) deref(o types.Object) types.Object {
	if _, ok := o.(types.IndirectRef); !ok {
		return o
	}
	if r.ctx == nil {
		return nil
	}
	v, err := r.ctx.Dereference(o)
	if err != nil {
		return nil
	}
	return v
}

func (r resolver) dict(o types.Object) types.Dict {
	switch v := r.deref(o).(type) {
	case types.Dict:
		return v
	case types.StreamDict:
		return v.Dict
	}
	return nil
}

func (r resolver) array(o types.Object) types.Array {
	if v, ok := r.deref(o).(types.Array); ok {
		return v
	}
	return nil
}

func (r resolver) number(o types.Object) (float64, bool) {
	switch v := r.deref(o).(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func (r resolver) name(o types.Object) string {
	if v, ok := r.deref(o).(types.Name); ok {
		return string(v)
	}
	return ""
}

func (r resolver) entry(d types.Dict, key string) types.Object {
	if d == nil {
		return nil
	}
	o, found := d.Find(key)
	if !found {
		return nil
	}
	return r.deref(o)
}

// stream returns the decoded content of a stream object.
func (r resolver) stream(o types.Object) ([]byte, error) {
	sd, _, err := r.ctx.DereferenceStreamDict(o)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}

// rect reads a four number array as a normalized rectangle.
func (r resolver) rect(o types.Object) (Rect, bool) {
	a := r.array(o)
	if len(a) != 4 {
		return Rect{}, false
	}
	var v [4]float64
	for i := range a {
		n, ok := r.number(a[i])
		if !ok {
			return Rect{}, false
		}
		v[i] = n
	}
	return NewRect(v[0], v[1], v[2], v[3]), true
}

// inherited looks key up on the page dictionary and then on its ancestors.
func (r resolver) inherited(page types.Dict, key string) types.Object {
	d := page
	for depth := 0; d != nil && depth < 64; depth++ {
		if v := r.entry(d, key); v != nil {
			return v
		}
		d = r.dict(r.entry(d, "Parent"))
	}
	return nil
}

// textString decodes a PDF text string (UTF-16BE with BOM or
// PDFDocEncoding) held in a pdfcpu string object.
func textString(o types.Object) (string, bool) {
	var raw []byte
	switch v := o.(type) {
	case types.StringLiteral:
		b, err := unescapeLiteral(string(v))
		if err != nil {
			return "", false
		}
		raw = b
	case types.HexLiteral:
		raw = decodeHex(string(v))
	default:
		return "", false
	}
	if bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		s, err := dec.Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(s), true
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(s), true
}

// encodeTextString produces a string object for s: a literal for plain
// ASCII, UTF-16BE hex otherwise.
func encodeTextString(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return types.StringLiteral(r.Replace(s))
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return types.StringLiteral("")
	}
	return types.HexLiteral(fmt.Sprintf("%X", b))
}

func unescapeLiteral(s string) ([]byte, error) {
	lx := &lexer{buf: []byte("(" + s + ")")}
	return lx.readLiteral()
}
