package textextract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
	"github.com/markdave123-py/Redacta/internal/logger"
	"github.com/markdave123-py/Redacta/internal/models"
)

// wordRe matches what Python's \w matches: letters, digits and underscore
// in any script.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// run accumulates the glyphs between two word boundaries.
type run struct {
	text strings.Builder
	box  pdfdoc.Rect
	open bool
}

func (r *run) add(it pdfdoc.LayoutItem) {
	r.text.WriteString(it.Text)
	if !r.open {
		r.box, r.open = it.Box, true
		return
	}
	r.box = r.box.Union(it.Box)
}

func (r *run) reset() {
	r.text.Reset()
	r.box, r.open = pdfdoc.Rect{}, false
}

// keywords lower-cases the run, splits it into word tokens and drops stop
// words.
func (r *run) keywords() []string {
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(r.text.String()), -1) {
		if _, stop := stopWords[w]; !stop {
			out = append(out, w)
		}
	}
	return out
}

// ExtractCoordinates indexes the first page of b: every run of glyphs
// between two spaces or line ends becomes one record holding its non stop
// words and the box of the whole run. Boxes are in the coordinates of the
// displayed page, which differ from user space on rotated pages. Records
// are tagged with documentID and redacted. A document without pages yields
// no records.
func ExtractCoordinates(ctx context.Context, b []byte, documentID *int64, redacted bool) ([]models.WordCoordinate, error) {
	n, err := pageCount(b)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	doc, err := pdfdoc.Open(b)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := doc.Page(1)
	if err != nil {
		return nil, fmt.Errorf("first page: %w", err)
	}
	boxes, err := page.ViewTextBoxes()
	if err != nil {
		return nil, fmt.Errorf("first page layout: %w", err)
	}
	return scanBoxes(ctx, boxes, documentID, redacted), nil
}

func scanBoxes(ctx context.Context, boxes []pdfdoc.TextBox, documentID *int64, redacted bool) []models.WordCoordinate {
	log := logger.FromContext(ctx)
	var (
		out []models.WordCoordinate
		acc run
	)
	for i, tb := range boxes {
		if err := tb.Check(); err != nil {
			log.Warn("skipping text box", zap.Int("box", i), zap.Error(err))
			acc.reset()
			continue
		}
		for _, line := range tb.Lines {
			for _, it := range line.Items {
				if !it.Annotation && it.Text != " " {
					acc.add(it)
					continue
				}
				if acc.open {
					if words := acc.keywords(); len(words) > 0 {
						out = append(out, models.WordCoordinate{
							DocumentID: documentID,
							Text:       strings.Join(words, " "),
							X0:         acc.box.X0,
							Y0:         acc.box.Y0,
							X1:         acc.box.X1,
							Y1:         acc.box.Y1,
							Redacted:   redacted,
						})
					}
				}
				acc.reset()
			}
		}
	}
	return out
}
