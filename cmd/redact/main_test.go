package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Redacta/internal/core/textextract"
	"github.com/markdave123-py/Redacta/internal/testutil/pdffixture"
)

func TestRun(t *testing.T) {
	t.Setenv("REDACT_ENTITIES", "")
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "out.pdf")
	coords := filepath.Join(dir, "coords.json")

	require.NoError(t, os.WriteFile(in, pdffixture.Build(t, pdffixture.Spec{Pages: []pdffixture.Page{{
		Texts: []pdffixture.Text{
			{X: 72, Y: 750, S: "Jane Doe"},
			{X: 72, Y: 400, S: "Skills golang mail jane@example.com"},
		},
	}}}), 0o600))

	var stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-in", in, "-out", out, "-coords", coords, "-entities"}, &stderr))

	redacted, err := os.ReadFile(out)
	require.NoError(t, err)
	text, err := textextract.ExtractText(redacted)
	require.NoError(t, err)
	assert.Contains(t, text, "Skills golang mail")
	assert.NotContains(t, text, "Jane")
	assert.NotContains(t, text, "example")

	raw, err := os.ReadFile(coords)
	require.NoError(t, err)
	var index []map[string]any
	require.NoError(t, json.Unmarshal(raw, &index))
	var words []string
	for _, c := range index {
		words = append(words, c["text"].(string))
	}
	assert.Contains(t, words, "golang")
	assert.NotContains(t, words, "jane")
}

func TestRunUsage(t *testing.T) {
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-in", "x.pdf"}, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "-coords")
}
