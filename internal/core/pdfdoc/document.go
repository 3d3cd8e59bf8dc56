package pdfdoc

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var disableConfigDir sync.Once

// Document is an open, mutable, in-memory PDF. It is not safe for
// concurrent use; every caller opens its own handle and closes it.
type Document struct {
	ctx   *model.Context
	pages []*Page
}

// Open parses b. Unparseable input yields ErrMalformedDocument.
func Open(b []byte) (doc *Document, err error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}
	disableConfigDir.Do(api.DisableConfigDir)

	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrMalformedDocument, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	ctx, err := api.ReadContext(bytes.NewReader(b), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrMalformedDocument, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: validate: %v", ErrMalformedDocument, err)
	}
	return &Document{ctx: ctx}, nil
}

func (d *Document) PageCount() int {
	if d.ctx == nil {
		return 0
	}
	return d.ctx.PageCount
}

// Pages returns every page in order.
func (d *Document) Pages() ([]*Page, error) {
	if d.ctx == nil {
		return nil, ErrClosed
	}
	if d.pages != nil {
		return d.pages, nil
	}
	pages := make([]*Page, 0, d.ctx.PageCount)
	for n := 1; n <= d.ctx.PageCount; n++ {
		dict, _, _, err := d.ctx.PageDict(n, false)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrMalformedDocument, n, err)
		}
		if dict == nil {
			return nil, fmt.Errorf("%w: page %d missing", ErrMalformedDocument, n)
		}
		pages = append(pages, &Page{doc: d, number: n, dict: dict})
	}
	d.pages = pages
	return pages, nil
}

// Page returns page n, counting from 1.
func (d *Document) Page(n int) (*Page, error) {
	pages, err := d.Pages()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(pages) {
		return nil, fmt.Errorf("page %d out of range [1,%d]", n, len(pages))
	}
	return pages[n-1], nil
}

// Metadata returns the document information dictionary as text.
func (d *Document) Metadata() (map[string]string, error) {
	if d.ctx == nil {
		return nil, ErrClosed
	}
	out := make(map[string]string)
	if d.ctx.Info == nil {
		return out, nil
	}
	r := resolver{ctx: d.ctx}
	info := r.dict(*d.ctx.Info)
	for k, v := range info {
		if s, ok := textString(r.deref(v)); ok {
			out[k] = s
			continue
		}
		if n := r.name(v); n != "" {
			out[k] = n
		}
	}
	return out, nil
}

// SetMetadata replaces the information dictionary with exactly the given
// entries and drops the catalog's XMP metadata stream. An empty map removes
// the information dictionary. The writer stamps Producer, CreationDate and
// ModDate when the document is serialized.
func (d *Document) SetMetadata(m map[string]string) error {
	if d.ctx == nil {
		return ErrClosed
	}
	if len(m) == 0 {
		d.ctx.Info = nil
	} else {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		info := types.NewDict()
		for _, k := range keys {
			info.Insert(k, encodeTextString(m[k]))
		}
		ir, err := d.ctx.IndRefForNewObject(info)
		if err != nil {
			return fmt.Errorf("store info dict: %w", err)
		}
		d.ctx.Info = ir
	}
	if d.ctx.Root != nil {
		if root := (resolver{ctx: d.ctx}).dict(*d.ctx.Root); root != nil {
			root.Delete("Metadata")
		}
	}
	return nil
}

// Serialize drops unreferenced and duplicate objects and writes the
// document with Flate-compressed streams.
func (d *Document) Serialize() (out []byte, err error) {
	if d.ctx == nil {
		return nil, ErrClosed
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: write: %v", ErrMalformedDocument, r)
		}
	}()
	if err := api.OptimizeContext(d.ctx); err != nil {
		return nil, fmt.Errorf("%w: optimize: %v", ErrMalformedDocument, err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrMalformedDocument, err)
	}
	return buf.Bytes(), nil
}

// Close releases the parsed document. It is safe to call more than once.
func (d *Document) Close() error {
	d.ctx = nil
	d.pages = nil
	return nil
}
