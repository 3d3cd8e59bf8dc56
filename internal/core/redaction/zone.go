package redaction

import (
	"context"
	"fmt"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
)

// Zone redacts every word touching a horizontal band of the page as it is
// displayed. From and To are fractions of the page height measured from
// the top edge.
type Zone struct {
	Label    string
	From, To float64
}

// TopZone covers the top 30% of each page, where names and contact details
// usually sit.
func TopZone() Zone { return Zone{Label: "top-zone", From: 0, To: 0.3} }

// BottomZone covers the bottom 10% of each page.
func BottomZone() Zone { return Zone{Label: "bottom-zone", From: 0.9, To: 1} }

func (z Zone) Name() string { return z.Label }

// Band returns the zone's rectangle on a page with the given bound.
func (z Zone) Band(bound pdfdoc.Rect) pdfdoc.Rect {
	h := bound.Height()
	return pdfdoc.NewRect(bound.X0, bound.Y1-z.To*h, bound.X1, bound.Y1-z.From*h)
}

// bandOn places the band on p as the page is displayed and returns it in
// user space, so a rotated page loses its visual top rather than its
// user-space top.
func (z Zone) bandOn(p *pdfdoc.Page) pdfdoc.Rect {
	view := p.ViewMatrix()
	back, ok := view.Inverse()
	if !ok {
		return z.Band(p.Bound())
	}
	return back.TransformRect(z.Band(view.TransformRect(p.Bound())))
}

func (z Zone) Apply(ctx context.Context, b []byte) ([]byte, error) {
	if z.From < 0 || z.To > 1 || z.From >= z.To {
		return nil, fmt.Errorf("zone %s: invalid band [%g, %g]", z.Label, z.From, z.To)
	}
	return redactPages(ctx, b, func(_ context.Context, p *pdfdoc.Page) error {
		words, err := p.WordsIn(z.bandOn(p))
		if err != nil {
			return err
		}
		for _, w := range words {
			p.AddRedaction(w.Box)
		}
		return nil
	})
}
