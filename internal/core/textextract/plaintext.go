package textextract

import (
	"fmt"
	"strings"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
)

// ExtractText returns the text of every page in page order, read with the
// same layout analysis that page search uses, so any substring of the
// result can be found again on its page. NUL bytes are dropped, blank runs
// inside a line collapse to one space and empty lines are removed. Files the
// layout reader refuses fall back to the plain content text.
func ExtractText(b []byte) (text string, err error) {
	n, err := pageCount(b)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	doc, err := pdfdoc.Open(b)
	if err != nil {
		return readerText(b)
	}
	defer doc.Close()

	pages, err := doc.Pages()
	if err != nil {
		return "", err
	}
	var out []string
	for _, p := range pages {
		content, err := p.Text()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", p.Number(), err)
		}
		out = appendLines(out, content)
	}
	return strings.Join(out, "\n"), nil
}

// readerText extracts the text of every page with the plain-text reader.
func readerText(b []byte) (text string, err error) {
	defer recoverMalformed(&err)
	r, err := openReader(b)
	if err != nil {
		return "", err
	}

	var out []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", pdfdoc.ErrMalformedDocument, i, err)
		}
		out = appendLines(out, content)
	}
	return strings.Join(out, "\n"), nil
}

func appendLines(out []string, content string) []string {
	content = strings.ReplaceAll(content, "\x00", "")
	for _, line := range strings.Split(content, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}
