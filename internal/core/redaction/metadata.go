package redaction

import (
	"context"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
)

// Metadata empties the document information dictionary and drops XMP
// metadata. Page content is left alone.
type Metadata struct{}

func (Metadata) Name() string { return "metadata" }

func (Metadata) Apply(_ context.Context, b []byte) ([]byte, error) {
	doc, err := pdfdoc.Open(b)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if err := doc.SetMetadata(nil); err != nil {
		return nil, err
	}
	return doc.Serialize()
}
