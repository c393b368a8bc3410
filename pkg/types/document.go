package types

import "image"

// WordBox is a single word on a page: its bounding rectangle in document
// point space and its text content. Immutable once extracted.
type WordBox struct {
	Rect Rect
	Text string
}

// SearchHit is one text-search match: the file page it occurs on and its
// bounding rectangle in document point space.
type SearchHit struct {
	Page int
	Rect Rect
}

// PageRange is an inclusive run of contiguous page indices.
type PageRange struct {
	Start int
	End   int
}

// Renderer is the page rendering and text geometry collaborator. The
// viewer core never parses PDF structure itself; everything it knows
// about a document comes through this interface.
//
// Page indices are zero-based. Pages without extractable text return
// empty word lists and empty search results, not errors.
type Renderer interface {
	// PageCount returns the total number of pages in the document.
	PageCount() int

	// PageSize returns the page dimensions in PDF points.
	PageSize(page int) (w, h float64, err error)

	// Words returns the word bounding boxes for a page in document
	// point space, origin top-left.
	Words(page int) ([]WordBox, error)

	// SearchText returns the bounding rectangles of every occurrence
	// of query on the page, in document point space. Matching semantics
	// (case folding etc.) belong to the implementation.
	SearchText(page int, query string) ([]Rect, error)

	// Render rasterizes a page into an image of the given pixel size.
	Render(page int, width, height float64) (image.Image, error)

	// Text returns the plain text of a page in reading order.
	Text(page int) (string, error)
}

// Exporter writes a subset of a source document's pages to a new file.
type Exporter interface {
	// ExportPages copies the given inclusive page ranges (zero-based,
	// ascending) from the source PDF into a new PDF at dst.
	ExportPages(src, dst string, ranges []PageRange) error
}
