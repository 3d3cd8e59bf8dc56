package pdfdoc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type operandKind int

const (
	kindNumber operandKind = iota
	kindString
	kindHex
	kindName
	kindArray
	kindDict
	kindBool
	kindNull
)

// operand is one argument of a content stream operator. raw keeps the
// source text so untouched operators are written back verbatim.
type operand struct {
	kind  operandKind
	num   float64
	str   []byte
	name  string
	items []operand
	raw   string
}

// op is a content stream operator with its operands. Inline images are a
// single "BI" op whose raw field holds the whole BI ... EI block.
type op struct {
	name     string
	operands []operand
	raw      string
}

func numberOperand(v float64) operand {
	return operand{kind: kindNumber, num: v}
}

func nameOperand(n string) operand {
	return operand{kind: kindName, name: n}
}

func hexOperand(b []byte) operand {
	return operand{kind: kindHex, str: append([]byte(nil), b...)}
}

func (o operand) isString() bool {
	return o.kind == kindString || o.kind == kindHex
}

func (o op) num(i int) float64 {
	if i < 0 || i >= len(o.operands) || o.operands[i].kind != kindNumber {
		return 0
	}
	return o.operands[i].num
}

// lastString returns the index of the final string operand, or -1.
func (o op) lastString() int {
	for i := len(o.operands) - 1; i >= 0; i-- {
		if o.operands[i].isString() {
			return i
		}
	}
	return -1
}

type lexer struct {
	buf []byte
	pos int
}

// parseContent tokenizes a decoded content stream into operators.
func parseContent(data []byte) ([]op, error) {
	lx := &lexer{buf: data}
	var (
		ops     []op
		pending []operand
	)
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.buf) {
			break
		}
		start := lx.pos
		c := lx.buf[lx.pos]
		switch {
		case c == ']' || c == ')' || c == '}' || c == '{':
			lx.pos++
			continue
		case c == '>':
			lx.pos++
			continue
		case isDelimiter(c) || isNumberStart(c):
			v, err := lx.readOperand()
			if err != nil {
				return nil, err
			}
			pending = append(pending, v)
			continue
		}
		word := lx.readRegular()
		switch word {
		case "true", "false":
			pending = append(pending, operand{kind: kindBool, raw: word, name: word})
			continue
		case "null":
			pending = append(pending, operand{kind: kindNull, raw: word})
			continue
		case "BI":
			if err := lx.skipInlineImage(); err != nil {
				return nil, err
			}
			ops = append(ops, op{name: "BI", raw: string(lx.buf[start:lx.pos])})
			pending = nil
			continue
		}
		if word == "" {
			lx.pos++
			continue
		}
		ops = append(ops, op{name: word, operands: pending})
		pending = nil
	}
	return ops, nil
}

func isWhite(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isNumberStart(c byte) bool {
	return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9')
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.buf) {
		c := lx.buf[lx.pos]
		if c == '%' {
			for lx.pos < len(lx.buf) && lx.buf[lx.pos] != '\n' && lx.buf[lx.pos] != '\r' {
				lx.pos++
			}
			continue
		}
		if !isWhite(c) {
			return
		}
		lx.pos++
	}
}

func (lx *lexer) readRegular() string {
	start := lx.pos
	for lx.pos < len(lx.buf) {
		c := lx.buf[lx.pos]
		if isWhite(c) || isDelimiter(c) {
			break
		}
		lx.pos++
	}
	return string(lx.buf[start:lx.pos])
}

func (lx *lexer) readOperand() (operand, error) {
	start := lx.pos
	c := lx.buf[lx.pos]
	switch {
	case c == '(':
		s, err := lx.readLiteral()
		if err != nil {
			return operand{}, err
		}
		return operand{kind: kindString, str: s, raw: string(lx.buf[start:lx.pos])}, nil
	case c == '<' && lx.peek(1) == '<':
		if err := lx.skipDict(); err != nil {
			return operand{}, err
		}
		return operand{kind: kindDict, raw: string(lx.buf[start:lx.pos])}, nil
	case c == '<':
		s, err := lx.readHex()
		if err != nil {
			return operand{}, err
		}
		return operand{kind: kindHex, str: s, raw: string(lx.buf[start:lx.pos])}, nil
	case c == '[':
		lx.pos++
		var items []operand
		for {
			lx.skipSpace()
			if lx.pos >= len(lx.buf) {
				return operand{}, fmt.Errorf("unterminated array at offset %d", start)
			}
			if lx.buf[lx.pos] == ']' {
				lx.pos++
				break
			}
			if !isDelimiter(lx.buf[lx.pos]) && !isNumberStart(lx.buf[lx.pos]) {
				word := lx.readRegular()
				if word == "" {
					lx.pos++
					continue
				}
				items = append(items, operand{kind: kindBool, name: word, raw: word})
				continue
			}
			v, err := lx.readOperand()
			if err != nil {
				return operand{}, err
			}
			items = append(items, v)
		}
		return operand{kind: kindArray, items: items, raw: string(lx.buf[start:lx.pos])}, nil
	case c == '/':
		lx.pos++
		n := lx.readRegular()
		return operand{kind: kindName, name: decodeName(n), raw: string(lx.buf[start:lx.pos])}, nil
	case isNumberStart(c):
		lx.pos++
		for lx.pos < len(lx.buf) && (isNumberStart(lx.buf[lx.pos]) || lx.buf[lx.pos] == 'e' || lx.buf[lx.pos] == 'E') {
			lx.pos++
		}
		raw := string(lx.buf[start:lx.pos])
		v, err := parseNumber(raw)
		if err != nil {
			return operand{}, err
		}
		return operand{kind: kindNumber, num: v, raw: raw}, nil
	}
	lx.pos++
	return operand{}, fmt.Errorf("unexpected byte %q at offset %d", c, start)
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.buf) {
		return lx.buf[lx.pos+n]
	}
	return 0
}

func parseNumber(raw string) (float64, error) {
	// Producers emit oddities such as "--1" or "1.2.3"; keep the valid prefix.
	s := strings.TrimLeft(raw, "+")
	for strings.HasPrefix(s, "--") {
		s = s[1:]
	}
	for len(s) > 0 {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return 0, fmt.Errorf("bad number %q", raw)
			}
			return v, nil
		}
		s = s[:len(s)-1]
	}
	if raw == "-" || raw == "." || raw == "+" {
		return 0, nil
	}
	return 0, fmt.Errorf("bad number %q", raw)
}

func (lx *lexer) readLiteral() ([]byte, error) {
	start := lx.pos
	lx.pos++
	depth := 1
	var out []byte
	for lx.pos < len(lx.buf) {
		c := lx.buf[lx.pos]
		lx.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
			out = append(out, c)
		case '\\':
			if lx.pos >= len(lx.buf) {
				break
			}
			e := lx.buf[lx.pos]
			lx.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if lx.pos < len(lx.buf) && lx.buf[lx.pos] == '\n' {
					lx.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && lx.pos < len(lx.buf); i++ {
						d := lx.buf[lx.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						lx.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return nil, fmt.Errorf("unterminated string at offset %d", start)
}

func (lx *lexer) readHex() ([]byte, error) {
	start := lx.pos
	lx.pos++
	end := bytes.IndexByte(lx.buf[lx.pos:], '>')
	if end < 0 {
		return nil, fmt.Errorf("unterminated hex string at offset %d", start)
	}
	body := lx.buf[lx.pos : lx.pos+end]
	lx.pos += end + 1
	return decodeHex(string(body)), nil
}

// decodeHex decodes hex digits, ignoring white space and padding an odd
// final digit with zero.
func decodeHex(s string) []byte {
	var digits []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	_, _ = hex.Decode(out, digits)
	return out
}

func (lx *lexer) skipDict() error {
	start := lx.pos
	depth := 0
	for lx.pos < len(lx.buf) {
		switch {
		case lx.buf[lx.pos] == '(':
			if _, err := lx.readLiteral(); err != nil {
				return err
			}
			continue
		case lx.buf[lx.pos] == '<' && lx.peek(1) == '<':
			depth++
			lx.pos += 2
			continue
		case lx.buf[lx.pos] == '>' && lx.peek(1) == '>':
			depth--
			lx.pos += 2
			if depth == 0 {
				return nil
			}
			continue
		}
		lx.pos++
	}
	return fmt.Errorf("unterminated dictionary at offset %d", start)
}

// skipInlineImage advances past the image data of an inline image. The
// lexer is positioned right after the BI keyword.
func (lx *lexer) skipInlineImage() error {
	start := lx.pos
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.buf) {
			return fmt.Errorf("unterminated inline image at offset %d", start)
		}
		c := lx.buf[lx.pos]
		if isDelimiter(c) || isNumberStart(c) {
			if _, err := lx.readOperand(); err != nil {
				return err
			}
			continue
		}
		if lx.readRegular() == "ID" {
			break
		}
	}
	// One white-space byte separates ID from the data.
	lx.pos++
	for lx.pos < len(lx.buf) {
		i := bytes.Index(lx.buf[lx.pos:], []byte("EI"))
		if i < 0 {
			return fmt.Errorf("inline image without EI at offset %d", start)
		}
		at := lx.pos + i
		before := at == 0 || isWhite(lx.buf[at-1])
		after := at+2 >= len(lx.buf) || isWhite(lx.buf[at+2]) || isDelimiter(lx.buf[at+2])
		lx.pos = at + 2
		if before && after {
			return nil
		}
	}
	return fmt.Errorf("inline image without EI at offset %d", start)
}

func decodeName(n string) string {
	if !strings.Contains(n, "#") {
		return n
	}
	var b strings.Builder
	for i := 0; i < len(n); i++ {
		if n[i] == '#' && i+2 < len(n) {
			if v, err := strconv.ParseUint(n[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(n[i])
	}
	return b.String()
}

// encodeName escapes the bytes of n that cannot appear in a name token.
func encodeName(n string) string {
	var b strings.Builder
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c < 0x21 || c > 0x7E || c == '#' || isDelimiter(c) {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// writeContent serializes ops in canonical form, one operator per line.
func writeContent(ops []op) []byte {
	var b bytes.Buffer
	for _, o := range ops {
		if o.raw != "" {
			b.WriteString(o.raw)
			b.WriteByte('\n')
			continue
		}
		for _, v := range o.operands {
			writeOperand(&b, v)
			b.WriteByte(' ')
		}
		b.WriteString(o.name)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func writeOperand(b *bytes.Buffer, v operand) {
	if v.raw != "" {
		b.WriteString(v.raw)
		return
	}
	switch v.kind {
	case kindNumber:
		b.WriteString(formatNumber(v.num))
	case kindString, kindHex:
		b.WriteByte('<')
		b.WriteString(hex.EncodeToString(v.str))
		b.WriteByte('>')
	case kindName:
		b.WriteByte('/')
		b.WriteString(encodeName(v.name))
	case kindArray:
		b.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeOperand(b, it)
		}
		b.WriteByte(']')
	case kindBool:
		b.WriteString(v.name)
	case kindNull:
		b.WriteString("null")
	}
}

func formatNumber(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
