package pdfdoc

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Layout parameters, in multiples of the glyph size, matching pdfminer's
// defaults.
const (
	charMargin  = 2.0
	wordMargin  = 0.1
	lineMargin  = 0.5
	lineOverlap = 0.5
)

// LayoutItem is one entry of a text line: either a glyph or a virtual
// annotation inserted by layout analysis (" " for a word gap, "\n" at the end
// of every line). Annotations carry no box.
type LayoutItem struct {
	Text       string
	Box        Rect
	Annotation bool

	glyph int
}

// LineBreak reports whether the item is the end-of-line annotation.
func (it LayoutItem) LineBreak() bool {
	return it.Annotation && it.Text == "\n"
}

type TextLine struct {
	Box   Rect
	Items []LayoutItem
}

type TextBox struct {
	Box   Rect
	Lines []TextLine
}

// Check reports ErrPageTraversal when a glyph of the box has coordinates
// that are not finite numbers.
func (b TextBox) Check() error {
	for i, l := range b.Lines {
		for j, it := range l.Items {
			if !it.Annotation && !it.Box.Finite() {
				return fmt.Errorf("%w: line %d item %d has box %v", ErrPageTraversal, i, j, it.Box)
			}
		}
	}
	return nil
}

// Analyze groups glyphs in content order into lines and text boxes.
func Analyze(glyphs []Glyph) []TextBox {
	lines := groupLines(glyphs)
	var boxes []TextBox
	for _, l := range lines {
		if n := len(boxes); n > 0 {
			cur := &boxes[n-1]
			prev := cur.Lines[len(cur.Lines)-1]
			if sameBox(prev.Box, l.Box, cur.Box) {
				cur.Lines = append(cur.Lines, l)
				cur.Box = cur.Box.Union(l.Box)
				continue
			}
		}
		boxes = append(boxes, TextBox{Box: l.Box, Lines: []TextLine{l}})
	}
	return boxes
}

func groupLines(glyphs []Glyph) []TextLine {
	var (
		lines []TextLine
		cur   *TextLine
		lastX float64
	)
	closeLine := func() {
		if cur == nil {
			return
		}
		cur.Items = append(cur.Items, LayoutItem{Text: "\n", Annotation: true, glyph: -1})
		lines = append(lines, *cur)
		cur = nil
	}
	for i, g := range glyphs {
		if cur != nil && !halign(glyphs[i-1].Box, g.Box) {
			closeLine()
		}
		if cur == nil {
			cur = &TextLine{Box: g.Box}
			lastX = g.Box.X1
			cur.Items = append(cur.Items, LayoutItem{Text: g.Text, Box: g.Box, glyph: i})
			continue
		}
		margin := wordMargin * math.Max(g.Box.Width(), g.Box.Height())
		if lastX < g.Box.X0-margin {
			cur.Items = append(cur.Items, LayoutItem{Text: " ", Annotation: true, glyph: -1})
		}
		lastX = g.Box.X1
		cur.Items = append(cur.Items, LayoutItem{Text: g.Text, Box: g.Box, glyph: i})
		cur.Box = cur.Box.Union(g.Box)
	}
	closeLine()
	return lines
}

// halign reports whether b continues the horizontal line ending with a.
func halign(a, b Rect) bool {
	vov := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	if !(b.Y0 <= a.Y1 && a.Y0 <= b.Y1) {
		return false
	}
	if !(math.Min(a.Height(), b.Height())*lineOverlap < vov) {
		return false
	}
	return hdistance(a, b) < math.Max(a.Width(), b.Width())*charMargin
}

func hdistance(a, b Rect) float64 {
	if b.X0 <= a.X1 && a.X0 <= b.X1 {
		return 0
	}
	return math.Min(math.Abs(a.X0-b.X1), math.Abs(a.X1-b.X0))
}

func sameBox(prev, line, box Rect) bool {
	gap := 0.0
	if !(line.Y0 <= prev.Y1 && prev.Y0 <= line.Y1) {
		gap = math.Max(prev.Y0-line.Y1, line.Y0-prev.Y1)
	}
	if !(gap < lineMargin*math.Max(prev.Height(), line.Height())) {
		return false
	}
	return line.X0 <= box.X1 && box.X0 <= line.X1
}

// Word is a maximal run of non-blank glyphs within a line.
type Word struct {
	Text string
	Box  Rect
}

func words(boxes []TextBox) []Word {
	var out []Word
	for _, b := range boxes {
		for _, l := range b.Lines {
			var (
				text strings.Builder
				box  Rect
				open bool
			)
			flush := func() {
				if open {
					out = append(out, Word{Text: text.String(), Box: box})
				}
				text.Reset()
				open = false
			}
			for _, it := range l.Items {
				if it.Annotation || strings.TrimSpace(it.Text) == "" {
					flush()
					continue
				}
				if !open {
					box, open = it.Box, true
				} else {
					box = box.Union(it.Box)
				}
				text.WriteString(it.Text)
			}
			flush()
		}
	}
	return out
}

// searchText is the searchable text of a page: lower-cased, blank runs
// collapsed to one space and a '\n' closing every line. owner maps each
// rune to the glyph it came from (-1 for virtual spaces and line ends).
type searchText struct {
	runes []rune
	owner []int
}

func buildSearchText(boxes []TextBox) searchText {
	var st searchText
	for _, b := range boxes {
		for _, l := range b.Lines {
			for _, it := range l.Items {
				if it.LineBreak() {
					st.endLine()
					continue
				}
				for _, r := range it.Text {
					if unicode.IsSpace(r) {
						if n := len(st.runes); n == 0 || st.runes[n-1] == ' ' || st.runes[n-1] == '\n' {
							continue
						}
						r = ' '
					}
					st.runes = append(st.runes, unicode.ToLower(r))
					st.owner = append(st.owner, it.glyph)
				}
			}
		}
	}
	return st
}

func (st *searchText) endLine() {
	n := len(st.runes)
	if n > 0 && st.runes[n-1] == ' ' {
		st.runes, st.owner = st.runes[:n-1], st.owner[:n-1]
		n--
	}
	if n == 0 || st.runes[n-1] == '\n' {
		return
	}
	st.runes = append(st.runes, '\n')
	st.owner = append(st.owner, -1)
}

// match reports where an occurrence of needle starting at i ends. A line
// end matches a space of the needle or nothing at all, so hits may wrap
// onto the next line.
func (st searchText) match(i int, needle []rune) (int, bool) {
	k := i
	for j := 0; j < len(needle); {
		if k >= len(st.runes) {
			return 0, false
		}
		r := st.runes[k]
		if r == '\n' {
			if needle[j] == ' ' {
				j++
			}
			k++
			continue
		}
		if r != needle[j] {
			return 0, false
		}
		j++
		k++
	}
	return k, true
}

// find returns the [start, end) rune ranges of the non-overlapping
// occurrences of needle, which must already be normalized.
func (st searchText) find(needle []rune) [][2]int {
	var out [][2]int
	if len(needle) == 0 {
		return nil
	}
	for i := 0; i < len(st.runes); {
		if st.runes[i] != '\n' {
			if end, ok := st.match(i, needle); ok {
				out = append(out, [2]int{i, end})
				i = end
				continue
			}
		}
		i++
	}
	return out
}

// quads returns one quad per line covered by the range [start, end).
func (st searchText) quads(glyphs []Glyph, start, end int) []Quad {
	var (
		out []Quad
		box Rect
		hit bool
	)
	flush := func() {
		if hit {
			out = append(out, QuadFromRect(box))
		}
		hit = false
	}
	for k := start; k < end; k++ {
		gi := st.owner[k]
		if st.runes[k] == '\n' {
			flush()
			continue
		}
		if gi < 0 {
			continue
		}
		if !hit {
			box, hit = glyphs[gi].Box, true
			continue
		}
		box = box.Union(glyphs[gi].Box)
	}
	flush()
	return out
}

func normalizeNeedle(s string) []rune {
	var out []rune
	for _, r := range strings.Join(strings.Fields(s), " ") {
		out = append(out, unicode.ToLower(r))
	}
	return out
}
