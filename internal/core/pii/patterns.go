package pii

import (
	"context"
	"regexp"
)

// RegexRecognizer reports every match of a compiled pattern.
type RegexRecognizer struct {
	name string
	kind Kind
	re   *regexp.Regexp
}

// NewRegexRecognizer compiles expr. It panics on an invalid expression, so
// it is meant for package level patterns.
func NewRegexRecognizer(name string, kind Kind, expr string) *RegexRecognizer {
	return &RegexRecognizer{name: name, kind: kind, re: regexp.MustCompile(expr)}
}

func (r *RegexRecognizer) Name() string { return r.name }

func (r *RegexRecognizer) Recognize(_ context.Context, text string) ([]Span, error) {
	var out []Span
	for _, m := range r.re.FindAllStringIndex(text, -1) {
		out = append(out, Span{Start: m[0], End: m[1], Kind: r.kind})
	}
	return out, nil
}

func EmailRecognizer() *RegexRecognizer {
	return NewRegexRecognizer("email", Email, `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
}

// PhoneRecognizer matches North American and international numbers written
// with optional country code, brackets and separators.
func PhoneRecognizer() *RegexRecognizer {
	return NewRegexRecognizer("phone", Phone, `(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)|\b\d{2,4})[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}\b`)
}

func URLRecognizer() *RegexRecognizer {
	return NewRegexRecognizer("url", URL, `(?i)\b(?:https?://|www\.)[^\s<>"']+[^\s<>"'.,;:!?)]`)
}
