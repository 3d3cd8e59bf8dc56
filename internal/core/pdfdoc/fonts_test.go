package pdfdoc

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCMap(t *testing.T) {
	cmap := []byte(`/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange <0000> <FFFF> endcodespacerange
2 beginbfchar <0003> <0020> <0024> <0041> endbfchar
1 beginbfrange <0030> <0032> <0061> endbfrange
1 beginbfrange <0040> <0041> [<00660069> <00660066>] endbfrange
endcmap`)

	m, codeLen := parseCMap(cmap)
	assert.Equal(t, 2, codeLen)
	assert.Equal(t, map[uint32]string{
		0x03: " ", 0x24: "A",
		0x30: "a", 0x31: "b", 0x32: "c",
		0x40: "fi", 0x41: "ff",
	}, m)
}

func TestGlyphText(t *testing.T) {
	tests := map[string]string{
		"A":            "A",
		"eacute":       "é",
		"uni00410042":  "AB",
		"u1F600":       "\U0001F600",
		"one.oldstyle": "1",
		"fi":           "fi",
	}
	for name, want := range tests {
		got, ok := glyphText(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := glyphText("g123")
	assert.False(t, ok)
}

func TestSimpleFontText(t *testing.T) {
	f := &font{codeLen: 1, std: &helveticaWidths, differences: map[int]string{65: "eacute"}}
	assert.Equal(t, "é", f.text(65))
	assert.Equal(t, "B", f.text(66))
	assert.Equal(t, "€", f.text(0x80))
	assert.InDelta(t, 0.667, f.width(66), 1e-9)

	f.firstChar = 66
	f.widths = []float64{500}
	assert.InDelta(t, 0.5, f.width(66), 1e-9)
	assert.InDelta(t, 0.722, f.width(67), 1e-9, "outside Widths falls back to the standard table")
}

func TestCompositeFont(t *testing.T) {
	f := &font{
		composite:    true,
		codeLen:      2,
		defaultWidth: 1000,
		cidWidths:    parseCIDWidths(resolver{}, types.Array{types.Integer(3), types.Array{types.Integer(500), types.Integer(250)}, types.Integer(10), types.Integer(12), types.Float(300)}),
		toUnicode:    map[uint32]string{3: "x"},
	}
	codes := f.split([]byte{0, 3, 0, 4, 0})
	require.Len(t, codes, 3)
	assert.Equal(t, 3, codeValue(codes[0]))

	assert.InDelta(t, 0.5, f.width(3), 1e-9)
	assert.InDelta(t, 0.25, f.width(4), 1e-9)
	assert.InDelta(t, 0.3, f.width(11), 1e-9)
	assert.InDelta(t, 1, f.width(99), 1e-9)

	assert.Equal(t, "x", f.text(3))
	assert.Equal(t, "A", f.text(0x41))
}

func TestStandardMetrics(t *testing.T) {
	widths, fixed, descent := standardMetrics("Courier-Bold")
	assert.Nil(t, widths)
	assert.Equal(t, 600.0, fixed)
	assert.Equal(t, -0.157, descent)

	widths, _, _ = standardMetrics("Times-BoldItalic")
	assert.Equal(t, &timesBoldItalicWidths, widths)

	widths, _, _ = standardMetrics("Arial,Bold")
	assert.Equal(t, &helveticaBoldWidths, widths)
}

func TestTextString(t *testing.T) {
	s, ok := textString(types.StringLiteral(`Caf\351 \(draft\)`))
	assert.True(t, ok)
	assert.Equal(t, "Café (draft)", s)

	s, ok = textString(encodeTextString("Jürgen"))
	assert.True(t, ok)
	assert.Equal(t, "Jürgen", s)

	s, ok = textString(encodeTextString("a (b)"))
	assert.True(t, ok)
	assert.Equal(t, "a (b)", s)
}
