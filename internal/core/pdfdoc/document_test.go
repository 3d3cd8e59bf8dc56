package pdfdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Redacta/internal/testutil/pdffixture"
)

func resumeFixture(t *testing.T) []byte {
	return pdffixture.Build(t, pdffixture.Spec{
		Pages: []pdffixture.Page{{
			Texts:  []pdffixture.Text{{X: 72, Y: 700, S: "Hello World", Size: 12}},
			Links:  []pdffixture.Link{{Box: pdffixture.Box{X: 72, Y: 600, W: 100, H: 20}, URL: "https://example.com/jane"}},
			Images: []pdffixture.Image{{Box: pdffixture.Box{X: 300, Y: 300, W: 50, H: 40}}},
		}},
		Meta: map[string]string{"Title": "Resume of Jane Doe", "Author": "Jane Doe"},
	})
}

func openPage(t *testing.T, b []byte) (*Document, *Page) {
	t.Helper()
	doc, err := Open(b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	page, err := doc.Page(1)
	require.NoError(t, err)
	return doc, page
}

func pageText(t *testing.T, p *Page) string {
	t.Helper()
	glyphs, err := p.Chars()
	require.NoError(t, err)
	return shownText(glyphs)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = Open([]byte("this is not a pdf"))
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDocumentReadsFixture(t *testing.T) {
	doc, page := openPage(t, resumeFixture(t))

	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}, page.MediaBox())
	assert.Equal(t, page.MediaBox(), page.Bound())
	assert.Equal(t, "Hello World", pageText(t, page))

	quads, err := page.Search("WORLD")
	require.NoError(t, err)
	require.Len(t, quads, 1)
	b := quads[0].Bounds()
	assert.InDelta(t, 102.672, b.X0, 1e-3)
	assert.InDelta(t, 697.516, b.Y0, 1e-3)

	ws, err := page.WordsIn(Rect{X0: 0, Y0: 690, X1: 100, Y1: 720})
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, "Hello", ws[0].Text)

	links := page.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/jane", links[0].URI)
	assert.InDelta(t, 72, links[0].Rect.X0, 1e-2)
	assert.InDelta(t, 600, links[0].Rect.Y0, 1e-2)
	assert.InDelta(t, 620, links[0].Rect.Y1, 1e-2)

	images, err := page.Images()
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.False(t, images[0].Inline)
	rects, err := page.ImageRects(images[0])
	require.NoError(t, err)
	require.Len(t, rects, 1)
	assert.InDelta(t, 300, rects[0].X0, 1e-3)
	assert.InDelta(t, 340, rects[0].Y1, 1e-3)

	meta, err := doc.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Resume of Jane Doe", meta["Title"])
	assert.Equal(t, "Jane Doe", meta["Author"])
}

func TestApplyRedactionsRemovesText(t *testing.T) {
	doc, page := openPage(t, resumeFixture(t))

	before, err := page.Chars()
	require.NoError(t, err)
	quads, err := page.Search("world")
	require.NoError(t, err)
	require.Len(t, quads, 1)

	page.AddRedaction(quads[0])
	page.AddRedaction(Rect{X0: 5, Y0: 5, X1: 5, Y1: 50})
	require.Len(t, page.Marks(), 1, "regions without area are ignored")
	require.NoError(t, page.ApplyRedactions())
	assert.Empty(t, page.Marks())

	out, err := doc.Serialize()
	require.NoError(t, err)

	_, again := openPage(t, out)
	after, err := again.Chars()
	require.NoError(t, err)
	assert.Equal(t, "Hello ", shownText(after))
	assert.InDelta(t, before[0].Box.X0, after[0].Box.X0, 1e-6)
	assert.InDelta(t, before[0].Box.Y0, after[0].Box.Y0, 1e-6)

	quads, err = again.Search("world")
	require.NoError(t, err)
	assert.Empty(t, quads)

	content, err := again.ContentBytes()
	require.NoError(t, err)
	assert.Contains(t, string(content), " re\n")

	images, err := again.Images()
	require.NoError(t, err)
	assert.Len(t, images, 1, "images outside the regions stay")
}

func TestApplyRedactionsDropsImages(t *testing.T) {
	doc, page := openPage(t, resumeFixture(t))
	page.AddRedaction(Rect{X0: 320, Y0: 320, X1: 330, Y1: 330})
	require.NoError(t, page.ApplyRedactions())

	out, err := doc.Serialize()
	require.NoError(t, err)
	_, again := openPage(t, out)

	images, err := again.Images()
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, "Hello World", pageText(t, again))
}

func TestApplyRedactionsWithoutMarks(t *testing.T) {
	_, page := openPage(t, resumeFixture(t))
	before, err := page.ContentBytes()
	require.NoError(t, err)

	require.NoError(t, page.ApplyRedactions())

	after, err := page.ContentBytes()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteLink(t *testing.T) {
	doc, page := openPage(t, resumeFixture(t))
	links := page.Links()
	require.Len(t, links, 1)

	require.NoError(t, page.DeleteLink(links[0]))
	assert.Empty(t, page.Links())
	require.NoError(t, page.DeleteLink(links[0]))

	out, err := doc.Serialize()
	require.NoError(t, err)
	_, again := openPage(t, out)
	assert.Empty(t, again.Links())
}

func TestSetMetadata(t *testing.T) {
	doc, _ := openPage(t, resumeFixture(t))
	require.NoError(t, doc.SetMetadata(map[string]string{"Title": "Jürgen (CV)"}))

	out, err := doc.Serialize()
	require.NoError(t, err)
	again, _ := openPage(t, out)
	meta, err := again.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Jürgen (CV)", meta["Title"])
	assert.NotContains(t, meta, "Author")

	require.NoError(t, again.SetMetadata(nil))
	out, err = again.Serialize()
	require.NoError(t, err)
	cleared, _ := openPage(t, out)
	meta, err = cleared.Metadata()
	require.NoError(t, err)
	for k := range meta {
		assert.Contains(t, []string{"Producer", "CreationDate", "ModDate"}, k)
	}
}

func TestClose(t *testing.T) {
	doc, err := Open(resumeFixture(t))
	require.NoError(t, err)
	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	_, err = doc.Pages()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = doc.Serialize()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRotation(t *testing.T) {
	tests := []struct {
		rotate int
		want   int
		view   Rect
	}{
		{0, 0, Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}},
		{90, 90, Rect{X0: 0, Y0: 0, X1: 792, Y1: 612}},
		{180, 180, Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}},
		{-90, 270, Rect{X0: 0, Y0: 0, X1: 792, Y1: 612}},
		{450, 90, Rect{X0: 0, Y0: 0, X1: 792, Y1: 612}},
	}
	for _, tt := range tests {
		_, page := openPage(t, pdffixture.Raw(pdffixture.RawPage{Rotate: tt.rotate}))
		assert.Equal(t, tt.want, page.Rotation(), "rotate %d", tt.rotate)
		assert.Equal(t, tt.view, page.ViewMatrix().TransformRect(page.Bound()), "rotate %d", tt.rotate)
	}

	// With /Rotate 90 the left edge of user space is the top of the view.
	m := viewMatrix(Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}, 90)
	assert.Equal(t, Point{X: 400, Y: 612}, m.Apply(Point{X: 0, Y: 400}))
}

func TestViewTextBoxesFollowRotation(t *testing.T) {
	_, page := openPage(t, pdffixture.Raw(pdffixture.RawPage{
		Rotate:  90,
		Content: "q 0 1 -1 0 612 0 cm BT /F1 12 Tf 100 500 Td (Rotated name) Tj ET Q",
	}))

	view, err := page.ViewTextBoxes()
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.Len(t, view[0].Lines, 1)
	assert.InDelta(t, 100, view[0].Box.X0, 1e-6)
	assert.InDelta(t, 497.516, view[0].Box.Y0, 1e-6)
}
