package pdfdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResources struct {
	fonts    map[string]*font
	xobjects map[string]string
	forms    map[string]*form
}

func (s stubResources) font(name string) *font {
	if f, ok := s.fonts[name]; ok {
		return f
	}
	return fallbackFont()
}

func (s stubResources) xobjectKind(name string) string { return s.xobjects[name] }

func (s stubResources) form(name string) *form { return s.forms[name] }

func interpretString(t *testing.T, content string, res stubResources) (*interpreter, []op) {
	t.Helper()
	ops, err := parseContent([]byte(content))
	require.NoError(t, err)
	it := newInterpreter(res)
	it.run(ops)
	return it, ops
}

func shownText(glyphs []Glyph) string {
	var s string
	for _, g := range glyphs {
		s += g.Text
	}
	return s
}

func TestInterpreterShowText(t *testing.T) {
	it, _ := interpretString(t, "BT /F1 10 Tf 100 200 Td (AB) Tj ET", stubResources{})
	require.Len(t, it.glyphs, 2)
	assert.Equal(t, "AB", shownText(it.glyphs))

	a, b := it.glyphs[0].Box, it.glyphs[1].Box
	assert.InDelta(t, 100, a.X0, 1e-6)
	assert.InDelta(t, 106.67, a.X1, 1e-6)
	assert.InDelta(t, 197.93, a.Y0, 1e-6)
	assert.InDelta(t, 207.93, a.Y1, 1e-6)
	assert.InDelta(t, a.X1, b.X0, 1e-6)
	assert.InDelta(t, 10, it.glyphs[0].Size, 1e-6)
}

func TestInterpreterTextState(t *testing.T) {
	tests := []struct {
		name    string
		content string
		x0      []float64
		y0      []float64
	}{
		{
			name:    "TJ displacement",
			content: "BT /F1 10 Tf [(A) -1000 (B)] TJ ET",
			x0:      []float64{0, 16.67},
		},
		{
			name:    "horizontal scaling",
			content: "BT /F1 10 Tf 50 Tz (AB) Tj ET",
			x0:      []float64{0, 3.335},
		},
		{
			name:    "character spacing",
			content: "BT /F1 10 Tf 2 Tc (AB) Tj ET",
			x0:      []float64{0, 8.67},
		},
		{
			name:    "next line operators",
			content: "BT /F1 10 Tf 12 TL 0 100 Td (A) Tj (B) ' T* (C) Tj ET",
			x0:      []float64{0, 0, 0},
			y0:      []float64{97.93, 85.93, 73.93},
		},
		{
			name:    "word spacing applies to spaces only",
			content: "BT /F1 10 Tf 5 Tw (A B) Tj ET",
			x0:      []float64{0, 6.67, 14.45},
		},
		{
			name:    "current transformation matrix",
			content: "q 2 0 0 2 10 10 cm BT /F1 10 Tf (A) Tj ET Q",
			x0:      []float64{10},
			y0:      []float64{5.86},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, _ := interpretString(t, tt.content, stubResources{})
			require.Len(t, it.glyphs, len(tt.x0))
			for i, x := range tt.x0 {
				assert.InDelta(t, x, it.glyphs[i].Box.X0, 1e-6, "glyph %d", i)
			}
			for i, y := range tt.y0 {
				assert.InDelta(t, y, it.glyphs[i].Box.Y0, 1e-6, "glyph %d", i)
			}
		})
	}
}

func TestInterpreterImages(t *testing.T) {
	res := stubResources{xobjects: map[string]string{"Im1": "Image", "Fm1": "Form"}}
	it, _ := interpretString(t, "q 50 0 0 40 100 200 cm /Im1 Do Q /Fm1 Do q 10 0 0 10 0 0 cm BI /W 1 /H 1 ID x EI Q", res)
	require.Len(t, it.images, 2)
	assert.Equal(t, "Im1", it.images[0].name)
	assert.Equal(t, Rect{X0: 100, Y0: 200, X1: 150, Y1: 240}, it.images[0].rect)
	assert.Equal(t, "", it.images[1].name)
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, it.images[1].rect)
}

func parseOps(t *testing.T, content string) []op {
	t.Helper()
	ops, err := parseContent([]byte(content))
	require.NoError(t, err)
	return ops
}

func TestInterpreterFollowsForms(t *testing.T) {
	inner := stubResources{xobjects: map[string]string{"Im2": "Image"}}
	res := stubResources{
		xobjects: map[string]string{"Fm1": "Form"},
		forms: map[string]*form{"Fm1": {
			ops:    parseOps(t, "BT /F1 10 Tf 0 0 Td (A) Tj ET q 20 0 0 10 0 0 cm /Im2 Do Q"),
			matrix: translate(100, 200),
			res:    inner,
		}},
	}
	it, _ := interpretString(t, "q 2 0 0 2 0 0 cm /Fm1 Do Q BT /F1 10 Tf 0 0 Td (C) Tj ET", res)

	require.Len(t, it.glyphs, 2)
	assert.Equal(t, "AC", shownText(it.glyphs))
	a := it.glyphs[0]
	assert.InDelta(t, 200, a.Box.X0, 1e-6)
	assert.InDelta(t, 213.34, a.Box.X1, 1e-6)
	assert.Equal(t, 2, a.op, "attributed to the Do operator")
	assert.False(t, a.movable)

	c := it.glyphs[1]
	assert.InDelta(t, 0, c.Box.X0, 1e-6, "form state does not leak")
	assert.Equal(t, 7, c.op)
	assert.True(t, c.movable)

	require.Len(t, it.images, 1)
	assert.Equal(t, "Im2", it.images[0].name)
	assert.Equal(t, 2, it.images[0].op)
	assert.Equal(t, Rect{X0: 200, Y0: 400, X1: 240, Y1: 420}, it.images[0].rect)
}

func TestInterpreterStopsAtFormDepth(t *testing.T) {
	res := stubResources{xobjects: map[string]string{"Fm1": "Form"}, forms: map[string]*form{}}
	res.forms["Fm1"] = &form{ops: parseOps(t, "/Fm1 Do BT /F1 10 Tf (x) Tj ET"), matrix: identity, res: res}

	it, _ := interpretString(t, "/Fm1 Do", res)
	assert.Len(t, it.glyphs, maxFormDepth)
}

func TestRewriteShowKeepsPositions(t *testing.T) {
	it, ops := interpretString(t, "BT /F1 10 Tf 20 30 Td (ABC) Tj ET", stubResources{})
	require.Len(t, it.glyphs, 3)

	out := rewriteShow(ops[3], it.glyphs, []int{0, 1, 2}, map[int]bool{1: true})
	require.Len(t, out, 1)
	assert.Equal(t, "[<41> -667 <43>] TJ\n", string(writeContent(out)))

	rewritten := append(append(append([]op{}, ops[:3]...), out...), ops[4:]...)
	again := newInterpreter(stubResources{})
	again.run(rewritten)
	require.Len(t, again.glyphs, 2)
	assert.Equal(t, "AC", shownText(again.glyphs))
	assert.InDelta(t, it.glyphs[2].Box.X0, again.glyphs[1].Box.X0, 1e-6)
}

func TestRewriteShowQuoteOperators(t *testing.T) {
	it, ops := interpretString(t, `BT /F1 10 Tf 14 TL 1 2 (AB) " ET`, stubResources{})
	require.Len(t, it.glyphs, 2)

	out := rewriteShow(ops[3], it.glyphs, []int{0, 1}, map[int]bool{0: true})
	assert.Equal(t, "1 Tw\n2 Tc\nT*\n[-867 <42>] TJ\n", string(writeContent(out)))
}
