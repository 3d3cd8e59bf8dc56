package pdfdoc

import (
	"bytes"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Redacta/internal/testutil/pdffixture"
)

func formFixture() []byte {
	return pdffixture.Raw(pdffixture.RawPage{
		Content: "q /Fm1 Do Q BT /F1 12 Tf 72 400 Td (Body text) Tj ET",
		Forms: map[string]string{
			"Fm1": "BT /F1 12 Tf 72 720 Td (Jane Doe) Tj ET q 50 0 0 40 300 600 cm /Im1 Do Q",
		},
	})
}

// streamsContaining counts the streams of doc whose decoded content holds s.
func streamsContaining(t *testing.T, doc *Document, s string) int {
	t.Helper()
	n := 0
	for _, e := range doc.ctx.Table {
		if e == nil || e.Free || e.Object == nil {
			continue
		}
		sd, ok := e.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		if bytes.Contains(sd.Content, []byte(s)) {
			n++
		}
	}
	return n
}

func TestFormContentIsRead(t *testing.T) {
	_, page := openPage(t, formFixture())

	assert.Equal(t, "Jane DoeBody text", pageText(t, page))

	quads, err := page.Search("jane doe")
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.InDelta(t, 72, quads[0].Bounds().X0, 1e-6)

	ws, err := page.WordsIn(Rect{X0: 0, Y0: 700, X1: 612, Y1: 792})
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "Jane", ws[0].Text)

	images, err := page.Images()
	require.NoError(t, err)
	require.Equal(t, []ImageRef{{Name: "Im1"}}, images)
	rects, err := page.ImageRects(images[0])
	require.NoError(t, err)
	assert.Equal(t, []Rect{{X0: 300, Y0: 600, X1: 350, Y1: 640}}, rects)
}

func TestNormalizeContentInlinesForms(t *testing.T) {
	_, page := openPage(t, formFixture())
	before, err := page.Chars()
	require.NoError(t, err)

	require.NoError(t, page.NormalizeContent())

	content, err := page.ContentBytes()
	require.NoError(t, err)
	assert.Contains(t, string(content), "(Jane Doe) Tj")
	assert.Contains(t, string(content), "/Fx1F1 12 Tf")
	assert.Contains(t, string(content), "/Fx1Im1 Do")
	assert.NotContains(t, string(content), "/Fm1 Do")
	assert.Empty(t, page.res().xobjectKind("Fm1"))

	after, err := page.Chars()
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.InDelta(t, before[i].Box.X0, after[i].Box.X0, 1e-6)
		assert.InDelta(t, before[i].Box.Y0, after[i].Box.Y0, 1e-6)
		assert.True(t, after[i].movable)
	}
}

func TestRedactionsReachFormContent(t *testing.T) {
	doc, page := openPage(t, formFixture())
	quads, err := page.Search("Jane Doe")
	require.NoError(t, err)
	require.Len(t, quads, 1)
	page.AddRedaction(quads[0])
	page.AddRedaction(Rect{X0: 310, Y0: 610, X1: 320, Y1: 620})
	require.NoError(t, page.ApplyRedactions())

	out, err := doc.Serialize()
	require.NoError(t, err)

	again, reopened := openPage(t, out)
	assert.Equal(t, "Body text", pageText(t, reopened))
	images, err := reopened.Images()
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Zero(t, streamsContaining(t, again, "Jane Doe"))
	assert.Equal(t, 1, streamsContaining(t, again, "Body text"))
}
