package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// letter is used when neither the page nor its ancestors define a MediaBox.
var letter = Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}

// Page is one page of an open Document.
type Page struct {
	doc    *Document
	number int
	dict   types.Dict

	ops        []op
	loaded     bool
	normalized bool
	state      *interpreter

	rs *resources

	marks []Rect
}

// Link is a hyperlink annotation of a page.
type Link struct {
	Rect Rect
	URI  string

	objNr int
}

// ImageRef names an image painted on a page. Inline images share one
// ImageRef with Inline set.
type ImageRef struct {
	Name   string
	Inline bool
}

func (p *Page) resolver() resolver {
	return resolver{ctx: p.doc.ctx}
}

// Number is the 1-based page number.
func (p *Page) Number() int { return p.number }

// Bound returns the visible area of the page: the CropBox, or the MediaBox
// when no CropBox is set.
func (p *Page) Bound() Rect {
	r := p.resolver()
	if box, ok := r.rect(r.inherited(p.dict, "CropBox")); ok {
		return box
	}
	return p.MediaBox()
}

// Rotation returns the page's (possibly inherited) /Rotate normalized to
// 0, 90, 180 or 270 degrees clockwise.
func (p *Page) Rotation() int {
	r := p.resolver()
	v, _ := r.number(r.inherited(p.dict, "Rotate"))
	n := int(v) % 360
	if n < 0 {
		n += 360
	}
	return n - n%90
}

// ViewMatrix maps user space onto the page as it is displayed: turned by
// the page rotation, with the lower-left corner of the MediaBox at the
// origin.
func (p *Page) ViewMatrix() Matrix {
	return viewMatrix(p.MediaBox(), p.Rotation())
}

func viewMatrix(b Rect, rotate int) Matrix {
	switch rotate {
	case 90:
		return Matrix{0, -1, 1, 0, -b.Y0, b.X1}
	case 180:
		return Matrix{-1, 0, 0, -1, b.X1, b.Y1}
	case 270:
		return Matrix{0, 1, -1, 0, b.Y1, -b.X0}
	}
	return Matrix{1, 0, 0, 1, -b.X0, -b.Y0}
}

// MediaBox returns the page's (possibly inherited) MediaBox.
func (p *Page) MediaBox() Rect {
	r := p.resolver()
	if box, ok := r.rect(r.inherited(p.dict, "MediaBox")); ok {
		return box
	}
	return letter
}

// ContentBytes returns the decoded content streams of the page joined by
// newlines.
func (p *Page) ContentBytes() ([]byte, error) {
	if p.doc.ctx == nil {
		return nil, ErrClosed
	}
	r := p.resolver()
	o, found := p.dict.Find("Contents")
	if !found || o == nil {
		return nil, nil
	}
	var parts []types.Object
	if arr := r.array(o); arr != nil {
		parts = arr
	} else {
		parts = []types.Object{o}
	}
	var buf bytes.Buffer
	for _, part := range parts {
		data, err := r.stream(part)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d content: %v", ErrMalformedDocument, p.number, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (p *Page) content() ([]op, error) {
	if p.loaded {
		return p.ops, nil
	}
	data, err := p.ContentBytes()
	if err != nil {
		return nil, err
	}
	ops, err := parseContent(data)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d content: %v", ErrMalformedDocument, p.number, err)
	}
	p.ops, p.loaded = ops, true
	return ops, nil
}

// NormalizeContent merges the page's content streams into one stream with
// one operator per line and balanced q/Q and BT/ET pairs. Form XObjects
// painted by the page are expanded in place, so their text and images
// become part of the page stream.
func (p *Page) NormalizeContent() error {
	ops, err := p.content()
	if err != nil {
		return err
	}
	if err := p.setContent(balance(p.inlineForms(ops))); err != nil {
		return err
	}
	p.normalized = true
	return nil
}

func balance(ops []op) []op {
	out := make([]op, 0, len(ops)+2)
	depth := 0
	inText := false
	for _, o := range ops {
		switch o.name {
		case "q":
			depth++
		case "Q":
			if depth == 0 {
				continue
			}
			depth--
		case "BT":
			if inText {
				out = append(out, op{name: "ET"})
			}
			inText = true
		case "ET":
			if !inText {
				continue
			}
			inText = false
		}
		out = append(out, o)
	}
	if inText {
		out = append(out, op{name: "ET"})
	}
	for ; depth > 0; depth-- {
		out = append(out, op{name: "Q"})
	}
	return out
}

func (p *Page) setContent(ops []op) error {
	ctx := p.doc.ctx
	if ctx == nil {
		return ErrClosed
	}
	sd, err := ctx.NewStreamDictForBuf(writeContent(ops))
	if err != nil {
		return fmt.Errorf("new content stream: %w", err)
	}
	if err := sd.Encode(); err != nil {
		return fmt.Errorf("encode content stream: %w", err)
	}
	ir, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return fmt.Errorf("store content stream: %w", err)
	}
	p.dict.Update("Contents", *ir)
	p.ops, p.loaded = ops, true
	p.state = nil
	return nil
}

// interpret runs the content stream once and caches glyphs and images.
func (p *Page) interpret() (*interpreter, error) {
	if p.state != nil {
		return p.state, nil
	}
	ops, err := p.content()
	if err != nil {
		return nil, err
	}
	it := newInterpreter(p.res())
	it.run(ops)
	p.state = it
	return it, nil
}

// Chars returns every glyph shown by the page content, in content order.
func (p *Page) Chars() ([]Glyph, error) {
	it, err := p.interpret()
	if err != nil {
		return nil, err
	}
	return it.glyphs, nil
}

// TextBoxes runs layout analysis over the page's glyphs.
func (p *Page) TextBoxes() ([]TextBox, error) {
	glyphs, err := p.Chars()
	if err != nil {
		return nil, err
	}
	return Analyze(glyphs), nil
}

// ViewTextBoxes runs layout analysis on glyph boxes mapped through
// ViewMatrix, so lines run the way the displayed page reads.
func (p *Page) ViewTextBoxes() ([]TextBox, error) {
	glyphs, err := p.Chars()
	if err != nil {
		return nil, err
	}
	m := p.ViewMatrix()
	if m == identity {
		return Analyze(glyphs), nil
	}
	view := make([]Glyph, len(glyphs))
	for i, g := range glyphs {
		g.Box = m.TransformRect(g.Box)
		view[i] = g
	}
	return Analyze(view), nil
}

// WordsIn returns the words whose box intersects clip.
func (p *Page) WordsIn(clip Rect) ([]Word, error) {
	boxes, err := p.TextBoxes()
	if err != nil {
		return nil, err
	}
	var out []Word
	for _, w := range words(boxes) {
		if w.Box.Intersects(clip) {
			out = append(out, w)
		}
	}
	return out, nil
}

// Text returns the page text as layout analysis reads it: the items of
// every line, word gaps included, each line ended by a newline.
func (p *Page) Text() (string, error) {
	boxes, err := p.TextBoxes()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, tb := range boxes {
		for _, l := range tb.Lines {
			for _, it := range l.Items {
				b.WriteString(it.Text)
			}
		}
	}
	return b.String(), nil
}

// Search finds every case-insensitive occurrence of text in the page text
// and returns one quad per line the occurrence covers. Blank runs in text
// match one word gap, and a hit may continue on the next line.
func (p *Page) Search(text string) ([]Quad, error) {
	needle := normalizeNeedle(text)
	if len(needle) == 0 {
		return nil, nil
	}
	glyphs, err := p.Chars()
	if err != nil {
		return nil, err
	}
	st := buildSearchText(Analyze(glyphs))
	var out []Quad
	for _, m := range st.find(needle) {
		out = append(out, st.quads(glyphs, m[0], m[1])...)
	}
	return out, nil
}

// Links returns the page's link annotations.
func (p *Page) Links() []Link {
	r := p.resolver()
	var out []Link
	for _, a := range r.array(r.entry(p.dict, "Annots")) {
		d := r.dict(a)
		if r.name(r.entry(d, "Subtype")) != "Link" {
			continue
		}
		box, ok := r.rect(r.entry(d, "Rect"))
		if !ok {
			continue
		}
		l := Link{Rect: box}
		if ir, ok := a.(types.IndirectRef); ok {
			l.objNr = int(ir.ObjectNumber)
		}
		if uri, ok := textString(r.entry(r.dict(r.entry(d, "A")), "URI")); ok {
			l.URI = uri
		}
		out = append(out, l)
	}
	return out
}

// DeleteLink removes the annotation l from the page. Deleting a link that
// is no longer present is a no-op.
func (p *Page) DeleteLink(l Link) error {
	if p.doc.ctx == nil {
		return ErrClosed
	}
	r := p.resolver()
	annots := r.array(r.entry(p.dict, "Annots"))
	if annots == nil {
		return nil
	}
	kept := make(types.Array, 0, len(annots))
	removed := false
	for _, a := range annots {
		if !removed && p.isLink(a, l) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return nil
	}
	if len(kept) == 0 {
		p.dict.Delete("Annots")
		return nil
	}
	p.dict.Update("Annots", kept)
	return nil
}

func (p *Page) isLink(a types.Object, l Link) bool {
	if ir, ok := a.(types.IndirectRef); ok {
		return l.objNr != 0 && int(ir.ObjectNumber) == l.objNr
	}
	if l.objNr != 0 {
		return false
	}
	r := p.resolver()
	d := r.dict(a)
	if r.name(r.entry(d, "Subtype")) != "Link" {
		return false
	}
	box, ok := r.rect(r.entry(d, "Rect"))
	return ok && box == l.Rect
}

// Images returns the images painted by the page content, in order of first
// use.
func (p *Page) Images() ([]ImageRef, error) {
	it, err := p.interpret()
	if err != nil {
		return nil, err
	}
	var out []ImageRef
	seen := make(map[ImageRef]bool)
	for _, pl := range it.images {
		ref := ImageRef{Name: pl.name, Inline: pl.name == ""}
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out, nil
}

// ImageRects returns every placement rectangle of img on the page.
func (p *Page) ImageRects(img ImageRef) ([]Rect, error) {
	it, err := p.interpret()
	if err != nil {
		return nil, err
	}
	var out []Rect
	for _, pl := range it.images {
		if pl.name == img.Name && (pl.name == "") == img.Inline {
			out = append(out, pl.rect)
		}
	}
	return out, nil
}

// AddRedaction marks region for removal by ApplyRedactions.
func (p *Page) AddRedaction(region Region) {
	b := region.Bounds()
	if b.Empty() || !b.Finite() {
		return
	}
	p.marks = append(p.marks, b)
}

// Marks returns the regions pending redaction.
func (p *Page) Marks() []Rect {
	return append([]Rect(nil), p.marks...)
}

// res returns the page's (possibly inherited) resources.
func (p *Page) res() *resources {
	if p.rs == nil {
		r := p.resolver()
		p.rs = newResources(r, r.dict(r.inherited(p.dict, "Resources")))
	}
	return p.rs
}
