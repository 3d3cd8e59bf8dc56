// Package pdffixture builds small PDF documents for tests. Coordinates are
// PDF user space: origin at the bottom-left corner, y growing upwards.
package pdffixture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
)

// Text is a string drawn with its baseline starting at (X, Y).
type Text struct {
	X, Y   float64
	S      string
	Size   float64
	Family string
}

// Box is an axis-aligned area given by its lower-left corner and size.
type Box struct {
	X, Y, W, H float64
}

// Link is a URI link annotation covering Box.
type Link struct {
	Box
	URL string
}

// Image is a small generated PNG painted into Box.
type Image struct {
	Box
	Name string
}

type Page struct {
	Texts  []Text
	Links  []Link
	Images []Image
}

// Spec describes a document. Width and Height default to US Letter.
type Spec struct {
	Width, Height float64
	Pages         []Page
	Meta          map[string]string
}

// Build renders spec with fpdf. Standard fonts are written without a
// /Widths array, like most generators of simple PDFs.
func Build(t testing.TB, spec Spec) []byte {
	t.Helper()
	w, h := spec.Width, spec.Height
	if w == 0 || h == 0 {
		w, h = 612, 792
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	pdf.SetModificationDate(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	for k, v := range spec.Meta {
		switch k {
		case "Title":
			pdf.SetTitle(v, true)
		case "Author":
			pdf.SetAuthor(v, true)
		case "Subject":
			pdf.SetSubject(v, true)
		case "Keywords":
			pdf.SetKeywords(v, true)
		case "Creator":
			pdf.SetCreator(v, true)
		default:
			t.Fatalf("pdffixture: unsupported metadata key %q", k)
		}
	}

	registered := map[string]bool{}
	for _, p := range spec.Pages {
		pdf.AddPage()
		for _, tx := range p.Texts {
			family := tx.Family
			if family == "" {
				family = "Helvetica"
			}
			size := tx.Size
			if size == 0 {
				size = 12
			}
			pdf.SetFont(family, "", size)
			pdf.Text(tx.X, h-tx.Y, tx.S)
		}
		for _, l := range p.Links {
			pdf.LinkString(l.X, h-(l.Y+l.H), l.W, l.H, l.URL)
		}
		for _, im := range p.Images {
			name := im.Name
			if name == "" {
				name = "img"
			}
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			if !registered[name] {
				pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(pngBytes(t)))
				registered[name] = true
			}
			pdf.ImageOptions(name, im.X, h-(im.Y+im.H), im.W, im.H, false, opts, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("pdffixture: %v", err)
	}
	return buf.Bytes()
}

// SingleLine is a one page Letter document holding texts.
func SingleLine(t testing.TB, texts ...Text) []byte {
	t.Helper()
	return Build(t, Spec{Pages: []Page{{Texts: texts}}})
}

func pngBytes(t testing.TB) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(60 * x), G: uint8(60 * y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("pdffixture: encode png: %v", err)
	}
	return buf.Bytes()
}

// RawPage is a page with a hand-written content stream. The font resource
// /F1 is Helvetica without widths and /Im1 is a 1x1 gray image.
type RawPage struct {
	MediaBox [4]float64
	Rotate   int
	Content  string
	// Forms are form XObjects the content can paint by name. Each form has
	// the page's MediaBox as BBox and its own /F1 and /Im1 resources.
	Forms map[string]string
}

// Raw writes a document from literal page content streams. With no pages
// it produces a valid document with an empty page tree.
func Raw(pages ...RawPage) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, "") // page tree, filled below
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	objs = append(objs, "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\n\x80\nendstream")
	const shared = "/Font << /F1 3 0 R >> /XObject << /Im1 4 0 R"
	var kids bytes.Buffer
	for _, p := range pages {
		box := p.MediaBox
		if box == [4]float64{} {
			box = [4]float64{0, 0, 612, 792}
		}
		names := make([]string, 0, len(p.Forms))
		for name := range p.Forms {
			names = append(names, name)
		}
		sort.Strings(names)

		pageNr := len(objs) + 1
		contentNr := pageNr + 1
		var forms strings.Builder
		for i, name := range names {
			fmt.Fprintf(&forms, " /%s %d 0 R", name, contentNr+1+i)
		}
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [%g %g %g %g]%s /Resources << %s%s >> >> /Contents %d 0 R >>",
			box[0], box[1], box[2], box[3], rotate, shared, forms.String(), contentNr))
		objs = append(objs, stream("", p.Content))
		for _, name := range names {
			objs = append(objs, stream(fmt.Sprintf(
				"/Type /XObject /Subtype /Form /BBox [%g %g %g %g] /Resources << %s >> >> ",
				box[0], box[1], box[2], box[3], shared), p.Forms[name]))
		}
		fmt.Fprintf(&kids, "%d 0 R ", pageNr)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func stream(entries, content string) string {
	return fmt.Sprintf("<< %s/Length %d >>\nstream\n%s\nendstream", entries, len(content)+1, content)
}

// Empty is a valid document without pages.
func Empty() []byte {
	return Raw()
}
