package pdfdoc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineString(l TextLine) string {
	var s string
	for _, it := range l.Items {
		s += it.Text
	}
	return s
}

func TestAnalyzeGroupsLinesAndBoxes(t *testing.T) {
	it, _ := interpretString(t,
		"BT /F1 10 Tf 0 100 Td (Hi you) Tj ET "+
			"BT /F1 10 Tf 0 88 Td (there) Tj ET "+
			"BT /F1 10 Tf 300 500 Td (far) Tj ET",
		stubResources{})

	boxes := Analyze(it.glyphs)
	require.Len(t, boxes, 2)
	require.Len(t, boxes[0].Lines, 2)
	require.Len(t, boxes[1].Lines, 1)

	assert.Equal(t, "Hi you\n", lineString(boxes[0].Lines[0]))
	assert.Equal(t, "there\n", lineString(boxes[0].Lines[1]))
	assert.Equal(t, "far\n", lineString(boxes[1].Lines[0]))

	last := boxes[0].Lines[0].Items[len(boxes[0].Lines[0].Items)-1]
	assert.True(t, last.LineBreak())
	assert.NoError(t, boxes[0].Check())

	var texts []string
	for _, w := range words(boxes) {
		texts = append(texts, w.Text)
	}
	assert.Equal(t, []string{"Hi", "you", "there", "far"}, texts)
}

func TestAnalyzeInsertsWordGaps(t *testing.T) {
	it, _ := interpretString(t, "BT /F1 10 Tf 0 0 Td (A) Tj 15 0 Td (B) Tj ET", stubResources{})

	boxes := Analyze(it.glyphs)
	require.Len(t, boxes, 1)
	require.Len(t, boxes[0].Lines, 1)
	items := boxes[0].Lines[0].Items
	require.Len(t, items, 4)
	assert.Equal(t, " ", items[1].Text)
	assert.True(t, items[1].Annotation)
	assert.False(t, items[1].LineBreak())

	ws := words(boxes)
	require.Len(t, ws, 2)
	assert.InDelta(t, 15, ws[1].Box.X0, 1e-6)
}

func TestTextBoxCheck(t *testing.T) {
	b := TextBox{Lines: []TextLine{{Items: []LayoutItem{
		{Text: "x", Box: Rect{X0: 0, Y0: 0, X1: math.Inf(1), Y1: 1}},
	}}}}
	assert.ErrorIs(t, b.Check(), ErrPageTraversal)

	b.Lines[0].Items[0].Annotation = true
	assert.NoError(t, b.Check())
}

func TestSearchTextFind(t *testing.T) {
	it, _ := interpretString(t, "BT /F1 10 Tf 0 100 Td (Hi   You) Tj ET", stubResources{})
	st := buildSearchText(Analyze(it.glyphs))
	assert.Equal(t, "hi you\n", string(st.runes))
	assert.Equal(t, [][2]int{{3, 6}}, st.find(normalizeNeedle(" YOU ")))
	assert.Equal(t, 5, st.owner[3], "first glyph after the collapsed spaces")

	aa := searchText{runes: []rune("aaaa"), owner: []int{0, 1, 2, 3}}
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}}, aa.find([]rune("aa")))
	assert.Empty(t, aa.find([]rune("b")))
	assert.Empty(t, aa.find(nil))
}

func TestSearchTextAcrossLines(t *testing.T) {
	it, _ := interpretString(t,
		"BT /F1 10 Tf 0 100 Td (Mail jane ) Tj 0 -12 Td (@example.com now) Tj ET",
		stubResources{})
	boxes := Analyze(it.glyphs)
	require.Len(t, boxes, 1)
	require.Len(t, boxes[0].Lines, 2)

	st := buildSearchText(boxes)
	assert.Equal(t, "mail jane\n@example.com now\n", string(st.runes))

	hits := st.find(normalizeNeedle("jane@example.com"))
	require.Len(t, hits, 1)
	quads := st.quads(it.glyphs, hits[0][0], hits[0][1])
	require.Len(t, quads, 2, "one quad per line")
	assert.Greater(t, quads[0].Bounds().X0, 20.0)
	assert.InDelta(t, 0, quads[1].Bounds().X0, 1e-6)
	assert.Greater(t, quads[0].Bounds().Y0, quads[1].Bounds().Y1)

	assert.Len(t, st.find(normalizeNeedle("JANE\n @example.com")), 1, "a needle space matches the line end")
	assert.Len(t, st.find(normalizeNeedle("mail jane @example")), 1)
	assert.Empty(t, st.find(normalizeNeedle("jane  now")))
}

func TestNormalizeNeedle(t *testing.T) {
	assert.Equal(t, "jane doe", string(normalizeNeedle("  Jane \n DOE ")))
	assert.Empty(t, normalizeNeedle("   "))
}
