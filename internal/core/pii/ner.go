package pii

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/markdave123-py/Redacta/internal/core"
)

const nerSystemPrompt = `You are a named entity recognizer for resumes.
Return a JSON array of objects {"text": string, "type": string} listing every
entity of the requested types. "text" must be copied exactly as it appears in
the input. Answer with the JSON array only.`

type nerEntity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// NERRecognizer asks a language model for person and organization names
// (and locations when enabled). Only answers that occur literally in the
// text are kept; every occurrence becomes a span.
type NERRecognizer struct {
	llm   core.LLMProvider
	kinds []Kind
}

// NewNERRecognizer wraps llm. The model client is created once by the
// caller and reused for every call.
func NewNERRecognizer(llm core.LLMProvider, enableLocation bool) *NERRecognizer {
	kinds := []Kind{Person, Organization}
	if enableLocation {
		kinds = append(kinds, Location)
	}
	return &NERRecognizer{llm: llm, kinds: kinds}
}

func (r *NERRecognizer) Name() string { return "ner" }

func (r *NERRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	types := make([]string, len(r.kinds))
	for i, k := range r.kinds {
		types[i] = string(k)
	}
	prompt := fmt.Sprintf("Entity types: %s\n\nInput:\n%s", strings.Join(types, ", "), text)

	answer, err := r.llm.Generate(ctx, nerSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	entities, err := parseEntities(answer)
	if err != nil {
		return nil, err
	}

	var out []Span
	for _, e := range entities {
		kind, ok := r.kind(e.Type)
		if !ok || strings.TrimSpace(e.Text) == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(text[from:], e.Text)
			if i < 0 {
				break
			}
			start := from + i
			out = append(out, Span{Start: start, End: start + len(e.Text), Kind: kind})
			from = start + len(e.Text)
		}
	}
	return out, nil
}

func (r *NERRecognizer) kind(t string) (Kind, bool) {
	t = strings.ToUpper(strings.TrimSpace(t))
	switch t {
	case "PER":
		t = string(Person)
	case "ORG":
		t = string(Organization)
	case "LOC":
		t = string(Location)
	}
	for _, k := range r.kinds {
		if string(k) == t {
			return k, true
		}
	}
	return "", false
}

// parseEntities decodes the model's answer, tolerating a fenced code block
// around the JSON.
func parseEntities(answer string) ([]nerEntity, error) {
	s := strings.TrimSpace(answer)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil, nil
	}
	var out []nerEntity
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}
	return out, nil
}
