// Package pdf adapts the gofpdf reader into the page renderer the rest
// of the application consumes: page geometry, positioned words, text
// search and a raster preview.
//
// Word positions come from a light content-stream scan (see words.go).
// Complex encodings, CIDFonts and ToUnicode CMaps are not fully
// supported; extraction quality matches what the underlying reader
// offers for plain text.
package pdf

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lvillar/gofpdf/reader"

	"pagetag/pkg/types"
)

// lineTolerance matches the selection engine's notion of when two words
// share a text line, in points.
const lineTolerance = 5.0

// Document is a parsed PDF ready for viewing. Word extraction is
// cached per page. Safe for concurrent reads.
type Document struct {
	path string
	doc  *reader.Document

	mu        sync.Mutex
	wordCache map[int][]types.WordBox
}

// Open parses the PDF at path.
func Open(path string) (*Document, error) {
	doc, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf: opening %s: %w", path, err)
	}
	return &Document{
		path:      path,
		doc:       doc,
		wordCache: make(map[int][]types.WordBox),
	}, nil
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.doc.NumPages() }

// PageSize returns the page dimensions in points. Pages are 0-based
// here; the reader counts from 1.
func (d *Document) PageSize(page int) (w, h float64, err error) {
	p, err := d.doc.Page(page + 1)
	if err != nil {
		return 0, 0, fmt.Errorf("pdf: %w", err)
	}
	box := p.MediaBox
	if p.CropBox != nil {
		box = *p.CropBox
	}
	return box.Width(), box.Height(), nil
}

// Words returns the positioned words of a page in top-left document
// coordinates.
func (d *Document) Words(page int) ([]types.WordBox, error) {
	d.mu.Lock()
	if words, ok := d.wordCache[page]; ok {
		d.mu.Unlock()
		return words, nil
	}
	d.mu.Unlock()

	p, err := d.doc.Page(page + 1)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	content, err := p.ContentStream()
	if err != nil {
		return nil, fmt.Errorf("pdf: page %d content: %w", page, err)
	}

	_, pageH, err := d.PageSize(page)
	if err != nil {
		return nil, err
	}
	words := extractWords(content, pageH)

	d.mu.Lock()
	d.wordCache[page] = words
	d.mu.Unlock()
	return words, nil
}

// Text returns the plain text of a page.
func (d *Document) Text(page int) (string, error) {
	p, err := d.doc.Page(page + 1)
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	text, err := p.ExtractText()
	if err != nil {
		return "", fmt.Errorf("pdf: page %d text: %w", page, err)
	}
	return text, nil
}

// SearchText finds case-insensitive occurrences of query on a page and
// returns one bounding rectangle per occurrence. Matches may span word
// boundaries within a line.
func (d *Document) SearchText(page int, query string) ([]types.Rect, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	words, err := d.Words(page)
	if err != nil {
		return nil, err
	}

	var rects []types.Rect
	for _, line := range groupLines(words) {
		rects = append(rects, line.find(query)...)
	}
	return rects, nil
}

// line is a left-to-right run of words sharing a baseline, with the
// character span each word occupies in the joined text.
type textLine struct {
	words []types.WordBox
	spans [][2]int
	text  string
}

// groupLines orders words top to bottom, left to right and splits them
// into baseline groups.
func groupLines(words []types.WordBox) []textLine {
	sorted := make([]types.WordBox, len(words))
	copy(sorted, words)
	sortWords(sorted)

	var lines []textLine
	var cur textLine
	var b strings.Builder
	prevY := 0.0

	flush := func() {
		if len(cur.words) > 0 {
			cur.text = strings.ToLower(b.String())
			lines = append(lines, cur)
		}
		cur = textLine{}
		b.Reset()
	}

	// Breaks compare each word to the previous one, so a slow drift
	// within tolerance stays on one line.
	for _, w := range sorted {
		if len(cur.words) > 0 && abs(w.Rect.Y0-prevY) > lineTolerance {
			flush()
		}
		if len(cur.words) > 0 {
			b.WriteString(" ")
		}
		prevY = w.Rect.Y0
		start := b.Len()
		b.WriteString(w.Text)
		cur.words = append(cur.words, w)
		cur.spans = append(cur.spans, [2]int{start, b.Len()})
	}
	flush()
	return lines
}

// find locates query occurrences in the line and returns the union
// rectangle of the words each occurrence touches.
func (l textLine) find(query string) []types.Rect {
	var rects []types.Rect
	from := 0
	for {
		idx := strings.Index(l.text[from:], query)
		if idx < 0 {
			return rects
		}
		start := from + idx
		end := start + len(query)

		var hit types.Rect
		first := true
		for i, span := range l.spans {
			if span[1] <= start || span[0] >= end {
				continue
			}
			if first {
				hit = l.words[i].Rect
				first = false
			} else {
				hit = hit.Union(l.words[i].Rect)
			}
		}
		if !first {
			rects = append(rects, hit)
		}
		from = end
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
