// Package pii finds personally identifying substrings in resume text.
package pii

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrDetector is returned when a recognizer cannot produce an answer.
var ErrDetector = errors.New("entity detector failed")

// Kind classifies a detected entity.
type Kind string

const (
	Person       Kind = "PERSON"
	Organization Kind = "ORGANIZATION"
	Location     Kind = "LOCATION"
	Email        Kind = "EMAIL"
	Phone        Kind = "PHONE"
	URL          Kind = "URL"
)

// Span is a half-open byte range [Start, End) of the scanned text.
type Span struct {
	Start, End int
	Kind       Kind
}

// EntityRecognizer finds sensitive spans in text. Implementations must be
// safe for concurrent use.
type EntityRecognizer interface {
	Name() string
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// Detector runs an ordered list of recognizers and merges what they find.
// It holds no mutable state and may be shared between goroutines.
type Detector struct {
	recognizers []EntityRecognizer
}

// NewDetector builds a detector. The named entity recognizer usually comes
// first, followed by the pattern recognizers.
func NewDetector(recognizers ...EntityRecognizer) *Detector {
	return &Detector{recognizers: append([]EntityRecognizer(nil), recognizers...)}
}

// PatternDetector is a detector with the email, phone and URL recognizers
// only.
func PatternDetector() *Detector {
	return NewDetector(EmailRecognizer(), PhoneRecognizer(), URLRecognizer())
}

// FindEntities returns the literal substrings of text flagged as sensitive.
// Overlapping findings are merged into one substring. The result may hold
// duplicates when the same value occurs several times.
func (d *Detector) FindEntities(ctx context.Context, text string) ([]string, error) {
	spans, err := d.Spans(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, text[s.Start:s.End])
	}
	return out, nil
}

// Spans returns the merged spans ordered by position.
func (d *Detector) Spans(ctx context.Context, text string) ([]Span, error) {
	if text == "" {
		return nil, nil
	}
	var all []Span
	for _, r := range d.recognizers {
		spans, err := r.Recognize(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDetector, r.Name(), err)
		}
		for _, s := range spans {
			if s.Start >= 0 && s.End <= len(text) && s.Start < s.End {
				all = append(all, s)
			}
		}
	}
	return merge(all), nil
}

// merge joins overlapping spans. The merged span keeps the kind of the
// span that starts first.
func merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	out := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start < last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
