package redaction

import (
	"context"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
)

// Links deletes every link annotation and blacks out the area it covered.
type Links struct{}

func (Links) Name() string { return "links" }

func (Links) Apply(ctx context.Context, b []byte) ([]byte, error) {
	return redactPages(ctx, b, func(_ context.Context, p *pdfdoc.Page) error {
		for _, l := range p.Links() {
			if err := p.DeleteLink(l); err != nil {
				return err
			}
			p.AddRedaction(l.Rect)
		}
		return nil
	})
}
