package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/core/textextract"
	"github.com/markdave123-py/Redacta/internal/logger"
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText converts the document with docconv and returns its non-blank
// lines joined by newlines.
func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return "", fmt.Errorf("docconv %s: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(res.Body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// ResumeText extracts the plain text of a PDF. When the PDF yields no text
// and a fallback extractor is given, the fallback's text is used instead; a
// fallback failure is logged and leaves the text empty.
func ResumeText(ctx context.Context, data []byte, fallback core.DocumentExtractor) (string, error) {
	text, err := textextract.ExtractText(data)
	if err != nil {
		return "", err
	}
	if text != "" || fallback == nil {
		return text, nil
	}

	alt, err := fallback.ExtractText(ctx, data, "application/pdf")
	if err != nil {
		logger.FromContext(ctx).Warn("fallback text extraction failed", zap.Error(err))
		return "", nil
	}
	return alt, nil
}
