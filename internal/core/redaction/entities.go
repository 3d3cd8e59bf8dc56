package redaction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
	"github.com/markdave123-py/Redacta/internal/core/textextract"
	"github.com/markdave123-py/Redacta/internal/logger"
)

// EntityFinder returns the sensitive substrings of a text.
type EntityFinder interface {
	FindEntities(ctx context.Context, text string) ([]string, error)
}

// Entities redacts every occurrence, on every page, of each substring the
// finder flags in the document's text.
type Entities struct {
	Finder EntityFinder
}

func (Entities) Name() string { return "entities" }

func (e Entities) Apply(ctx context.Context, b []byte) ([]byte, error) {
	if e.Finder == nil {
		return nil, fmt.Errorf("entities: no finder configured")
	}
	text, err := textextract.ExtractText(b)
	if err != nil {
		return nil, err
	}
	dirty, err := e.Finder.FindEntities(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("find entities: %w", err)
	}
	logger.FromContext(ctx).Debug("entities found", zap.Int("count", len(dirty)))

	return redactPages(ctx, b, func(_ context.Context, p *pdfdoc.Page) error {
		for _, word := range dirty {
			quads, err := p.Search(word)
			if err != nil {
				return err
			}
			for _, q := range quads {
				p.AddRedaction(q)
			}
		}
		return nil
	})
}
