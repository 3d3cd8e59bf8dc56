package pdfdoc

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const defaultDescent = -0.2

// font holds what the interpreter needs from a font dictionary: code
// segmentation, advance widths and a code to text mapping.
type font struct {
	baseFont  string
	composite bool
	codeLen   int

	firstChar    int
	widths       []float64
	std          *[256]uint16
	fixedWidth   float64
	missingWidth float64

	cidWidths    map[int]float64
	defaultWidth float64

	descent     float64
	toUnicode   map[uint32]string
	differences map[int]string
}

// fallbackFont is used when Tf names a font the resources do not define.
func fallbackFont() *font {
	return &font{codeLen: 1, std: &helveticaWidths, descent: -0.207}
}

func loadFont(r resolver, d types.Dict) *font {
	f := &font{
		baseFont: r.name(r.entry(d, "BaseFont")),
		codeLen:  1,
		descent:  defaultDescent,
	}
	if i := strings.IndexByte(f.baseFont, '+'); i == 6 {
		f.baseFont = f.baseFont[i+1:]
	}

	descriptor := r.dict(r.entry(d, "FontDescriptor"))
	if r.name(r.entry(d, "Subtype")) == "Type0" {
		f.composite = true
		f.codeLen = 2
		f.defaultWidth = 1000
		if kids := r.array(r.entry(d, "DescendantFonts")); len(kids) > 0 {
			cid := r.dict(kids[0])
			if dw, ok := r.number(r.entry(cid, "DW")); ok {
				f.defaultWidth = dw
			}
			f.cidWidths = parseCIDWidths(r, r.array(r.entry(cid, "W")))
			descriptor = r.dict(r.entry(cid, "FontDescriptor"))
		}
	} else {
		if fc, ok := r.number(r.entry(d, "FirstChar")); ok {
			f.firstChar = int(fc)
		}
		for _, w := range r.array(r.entry(d, "Widths")) {
			v, _ := r.number(w)
			f.widths = append(f.widths, v)
		}
		f.std, f.fixedWidth, f.descent = standardMetrics(f.baseFont)
		f.differences = parseDifferences(r, r.dict(r.entry(d, "Encoding")))
	}

	if descriptor != nil {
		if v, ok := r.number(r.entry(descriptor, "Descent")); ok && v < 0 {
			f.descent = v / 1000
		}
		if v, ok := r.number(r.entry(descriptor, "MissingWidth")); ok {
			f.missingWidth = v
		}
	}

	if o, found := d.Find("ToUnicode"); found {
		if data, err := r.stream(o); err == nil && len(data) > 0 {
			var n int
			f.toUnicode, n = parseCMap(data)
			if f.composite && n > 0 {
				f.codeLen = n
			}
		}
	}
	return f
}

// standardMetrics maps a base font name onto the built-in width tables.
func standardMetrics(baseFont string) (*[256]uint16, float64, float64) {
	n := strings.ToLower(baseFont)
	n = strings.NewReplacer("-", "", ",", "", " ", "").Replace(n)
	bold := strings.Contains(n, "bold") || strings.Contains(n, "black")
	italic := strings.Contains(n, "italic") || strings.Contains(n, "oblique")
	switch {
	case strings.Contains(n, "courier"):
		return nil, 600, -0.157
	case strings.Contains(n, "times"):
		switch {
		case bold && italic:
			return &timesBoldItalicWidths, 0, -0.217
		case bold:
			return &timesBoldWidths, 0, -0.217
		case italic:
			return &timesItalicWidths, 0, -0.217
		}
		return &timesWidths, 0, -0.217
	case strings.Contains(n, "helvetica"), strings.Contains(n, "arial"):
		if bold {
			return &helveticaBoldWidths, 0, -0.207
		}
		return &helveticaWidths, 0, -0.207
	}
	return nil, 0, defaultDescent
}

func parseCIDWidths(r resolver, w types.Array) map[int]float64 {
	out := make(map[int]float64)
	for i := 0; i < len(w); {
		first, ok := r.number(w[i])
		if !ok || i+1 >= len(w) {
			break
		}
		if list := r.array(w[i+1]); list != nil {
			for j, v := range list {
				n, _ := r.number(v)
				out[int(first)+j] = n
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			break
		}
		last, _ := r.number(w[i+1])
		n, _ := r.number(w[i+2])
		for c := int(first); c <= int(last) && c-int(first) < 1<<16; c++ {
			out[c] = n
		}
		i += 3
	}
	return out
}

func parseDifferences(r resolver, enc types.Dict) map[int]string {
	diffs := r.array(r.entry(enc, "Differences"))
	if len(diffs) == 0 {
		return nil
	}
	out := make(map[int]string)
	code := 0
	for _, o := range diffs {
		if n, ok := r.number(o); ok {
			code = int(n)
			continue
		}
		if name := r.name(o); name != "" {
			out[code] = name
			code++
		}
	}
	return out
}

// split cuts a shown string into character codes.
func (f *font) split(s []byte) [][]byte {
	n := f.codeLen
	if n < 1 {
		n = 1
	}
	out := make([][]byte, 0, len(s)/n+1)
	for i := 0; i < len(s); i += n {
		j := i + n
		if j > len(s) {
			j = len(s)
		}
		out = append(out, s[i:j])
	}
	return out
}

func codeValue(b []byte) int {
	v := 0
	for _, c := range b {
		v = v<<8 | int(c)
	}
	return v
}

// width returns the horizontal advance of code in text space units (em).
func (f *font) width(code int) float64 {
	if f.composite {
		if w, ok := f.cidWidths[code]; ok {
			return w / 1000
		}
		return f.defaultWidth / 1000
	}
	if i := code - f.firstChar; len(f.widths) > 0 && i >= 0 && i < len(f.widths) {
		return f.widths[i] / 1000
	}
	if f.std != nil && code >= 0 && code < 256 {
		return float64(f.std[code]) / 1000
	}
	if f.fixedWidth > 0 {
		return f.fixedWidth / 1000
	}
	if f.missingWidth > 0 {
		return f.missingWidth / 1000
	}
	return 0.5
}

// text maps a character code to Unicode.
func (f *font) text(code int) string {
	if s, ok := f.toUnicode[uint32(code)]; ok {
		return s
	}
	if f.composite {
		if code >= 0x20 && code < 0xD800 {
			return string(rune(code))
		}
		return "\uFFFD"
	}
	if name, ok := f.differences[code]; ok {
		if s, ok := glyphText(name); ok {
			return s
		}
	}
	if code < 0 || code > 0xFF {
		return "\uFFFD"
	}
	return string(charmap.Windows1252.DecodeByte(byte(code)))
}

// parseCMap reads the bfchar and bfrange sections of a ToUnicode CMap. It
// also reports the code length declared by the first codespace range.
func parseCMap(data []byte) (map[uint32]string, int) {
	ops, err := parseContent(data)
	if err != nil {
		return nil, 0
	}
	out := make(map[uint32]string)
	codeLen := 0
	for _, o := range ops {
		switch o.name {
		case "endcodespacerange":
			if codeLen == 0 && len(o.operands) > 0 && o.operands[0].isString() {
				codeLen = len(o.operands[0].str)
			}
		case "endbfchar":
			for i := 0; i+1 < len(o.operands); i += 2 {
				src, dst := o.operands[i], o.operands[i+1]
				if !src.isString() {
					continue
				}
				if s, ok := cmapTarget(dst); ok {
					out[uint32(codeValue(src.str))] = s
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(o.operands); i += 3 {
				lo, hi, dst := o.operands[i], o.operands[i+1], o.operands[i+2]
				if !lo.isString() || !hi.isString() {
					continue
				}
				a, b := codeValue(lo.str), codeValue(hi.str)
				if b < a || b-a > 0xFFFF {
					continue
				}
				if dst.kind == kindArray {
					for j, it := range dst.items {
						if s, ok := cmapTarget(it); ok && a+j <= b {
							out[uint32(a+j)] = s
						}
					}
					continue
				}
				if !dst.isString() {
					continue
				}
				for c := a; c <= b; c++ {
					out[uint32(c)] = utf16Text(incrementLast(dst.str, c-a))
				}
			}
		}
	}
	return out, codeLen
}

func cmapTarget(o operand) (string, bool) {
	switch {
	case o.isString():
		return utf16Text(o.str), true
	case o.kind == kindName:
		return glyphText(o.name)
	}
	return "", false
}

func incrementLast(b []byte, n int) []byte {
	out := append([]byte(nil), b...)
	if len(out) == 0 {
		return out
	}
	if len(out) == 1 {
		out[0] += byte(n)
		return out
	}
	v := int(out[len(out)-2])<<8 | int(out[len(out)-1])
	v += n
	out[len(out)-2] = byte(v >> 8)
	out[len(out)-1] = byte(v)
	return out
}

func utf16Text(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	s, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "\uFFFD"
	}
	return string(s)
}
