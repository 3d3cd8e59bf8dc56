package redaction

import (
	"context"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
)

// Images blacks out every placement of every image on each page.
type Images struct{}

func (Images) Name() string { return "images" }

func (Images) Apply(ctx context.Context, b []byte) ([]byte, error) {
	return redactPages(ctx, b, func(_ context.Context, p *pdfdoc.Page) error {
		images, err := p.Images()
		if err != nil {
			return err
		}
		for _, img := range images {
			rects, err := p.ImageRects(img)
			if err != nil {
				return err
			}
			for _, r := range rects {
				p.AddRedaction(r)
			}
		}
		return nil
	})
}
