// Package textextract reads resume PDFs for indexing: page size, plain text
// of every page, and word coordinates of the first page.
package textextract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
)

// letter is assumed when a page has no MediaBox anywhere in its tree.
var letter = [4]float64{0, 0, 612, 792}

// openReader parses b with the plain-text reader. The reader panics on some
// broken inputs; callers defer recoverMalformed.
func openReader(b []byte) (*pdf.Reader, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty input", pdfdoc.ErrMalformedDocument)
	}
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pdfdoc.ErrMalformedDocument, err)
	}
	return r, nil
}

func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", pdfdoc.ErrMalformedDocument, r)
	}
}

// pageCount reports the number of pages of b.
func pageCount(b []byte) (n int, err error) {
	defer recoverMalformed(&err)
	r, err := openReader(b)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// mediaBox looks the MediaBox up on the page and its ancestors.
func mediaBox(page pdf.Page) [4]float64 {
	v := page.V
	for depth := 0; !v.IsNull() && depth < 64; depth++ {
		if box := v.Key("MediaBox"); box.Len() == 4 {
			return [4]float64{
				box.Index(0).Float64(), box.Index(1).Float64(),
				box.Index(2).Float64(), box.Index(3).Float64(),
			}
		}
		v = v.Key("Parent")
	}
	return letter
}

// rotation returns the page's (possibly inherited) /Rotate in degrees,
// normalized to 0, 90, 180 or 270.
func rotation(page pdf.Page) int {
	v := page.V
	for depth := 0; !v.IsNull() && depth < 64; depth++ {
		if r := v.Key("Rotate"); r.Kind() == pdf.Integer || r.Kind() == pdf.Real {
			n := int(r.Float64()) % 360
			if n < 0 {
				n += 360
			}
			return n - n%90
		}
		v = v.Key("Parent")
	}
	return 0
}
