// Package redaction removes identifying content from resume PDFs. Each
// Strategy turns document bytes into new document bytes; Redact folds an
// ordered list of strategies over a document.
package redaction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
	"github.com/markdave123-py/Redacta/internal/logger"
)

// Strategy is one redaction pass. Apply never modifies its input and
// yields a document with the same pages and page sizes. Strategies hold
// only configuration and are safe for concurrent use.
type Strategy interface {
	Name() string
	Apply(ctx context.Context, b []byte) ([]byte, error)
}

// Redact applies strategies in order, feeding each one the output of the
// previous one. The first failure aborts the pipeline.
func Redact(ctx context.Context, b []byte, strategies ...Strategy) ([]byte, error) {
	log := logger.FromContext(ctx)
	out := b
	for _, s := range strategies {
		start := time.Now()
		next, err := s.Apply(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("redact %s: %w", s.Name(), err)
		}
		log.Debug("redaction step done",
			zap.String("strategy", s.Name()),
			zap.Int("in_bytes", len(out)),
			zap.Int("out_bytes", len(next)),
			zap.Duration("took", time.Since(start)),
		)
		out = next
	}
	return out, nil
}

// ReferenceStrategies is the default pipeline: top band, bottom band,
// images, links, metadata.
func ReferenceStrategies() []Strategy {
	return []Strategy{TopZone(), BottomZone(), Images{}, Links{}, Metadata{}}
}

// markFunc adds the redaction regions of one page.
type markFunc func(ctx context.Context, p *pdfdoc.Page) error

// redactPages opens b, normalizes every page, lets mark add regions, burns
// them in and writes the document back.
func redactPages(ctx context.Context, b []byte, mark markFunc) ([]byte, error) {
	doc, err := pdfdoc.Open(b)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages, err := doc.Pages()
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		if err := p.NormalizeContent(); err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number(), err)
		}
		if err := mark(ctx, p); err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number(), err)
		}
		if err := p.ApplyRedactions(); err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number(), err)
		}
	}
	return doc.Serialize()
}
