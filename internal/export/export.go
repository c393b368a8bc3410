// Package export writes the currently visible pages of a tagged PDF to
// a new PDF file, preserving file order.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gofpdf "github.com/lvillar/gofpdf"
	"github.com/lvillar/gofpdf/contrib/gofpdi"

	"pagetag/internal/log"
	"pagetag/pkg/types"
)

// DefaultExportSuffix is inserted before the extension of the source
// path to derive the default output path.
const DefaultExportSuffix = "_filtered"

// ErrNothingToExport is returned when the visible page set is empty.
var ErrNothingToExport = errors.New("export: no pages match the active filters")

// OutputPath derives the default export path for a source PDF.
func OutputPath(pdfPath, suffix string) string {
	if suffix == "" {
		suffix = DefaultExportSuffix
	}
	ext := filepath.Ext(pdfPath)
	return strings.TrimSuffix(pdfPath, ext) + suffix + ext
}

// CompactRanges collapses a set of page indices into inclusive runs of
// consecutive pages. Input order does not matter; duplicates are
// ignored. [1 2 3 7 8 10] becomes [1-3, 7-8, 10].
func CompactRanges(pages []int) []types.PageRange {
	if len(pages) == 0 {
		return nil
	}

	sorted := make([]int, len(pages))
	copy(sorted, pages)
	sort.Ints(sorted)

	var ranges []types.PageRange
	run := types.PageRange{Start: sorted[0], End: sorted[0]}
	for _, p := range sorted[1:] {
		switch {
		case p == run.End:
			// duplicate
		case p == run.End+1:
			run.End = p
		default:
			ranges = append(ranges, run)
			run = types.PageRange{Start: p, End: p}
		}
	}
	return append(ranges, run)
}

// PDFExporter copies pages between PDF files by importing each source
// page as a template into a fresh document.
type PDFExporter struct{}

// NewPDFExporter returns a ready exporter.
func NewPDFExporter() *PDFExporter { return &PDFExporter{} }

// ExportPages writes the given 0-based inclusive page ranges of src to
// dst, in range order. An existing dst is overwritten.
func (PDFExporter) ExportPages(src, dst string, ranges []types.PageRange) error {
	if len(ranges) == 0 {
		return ErrNothingToExport
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	imp := gofpdi.NewImporter()

	total := 0
	for _, r := range ranges {
		if r.End < r.Start || r.Start < 0 {
			return fmt.Errorf("export: invalid page range [%d, %d]", r.Start, r.End)
		}
		for page := r.Start; page <= r.End; page++ {
			// gofpdi counts pages from 1.
			tplID := imp.ImportPage(pdf, src, page+1, "/MediaBox")

			w, h := 595.28, 841.89 // A4 fallback
			if dims, ok := imp.GetPageSizes()[page+1]; ok {
				if mb, ok := dims["/MediaBox"]; ok {
					w = mb["w"]
					h = mb["h"]
				}
			}

			pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
			imp.UseImportedTemplate(pdf, tplID, 0, 0, w, h)
			total++
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: assembling %s: %w", dst, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("export: creating %s: %w", dst, err)
	}
	defer f.Close()
	if err := pdf.Output(f); err != nil {
		return fmt.Errorf("export: writing %s: %w", dst, err)
	}

	log.Infof("Exported %d pages to %s", total, dst)
	return nil
}

// Filtered exports the visible pages of src to dst using the given
// exporter. Returns ErrNothingToExport for an empty visible set.
func Filtered(exporter types.Exporter, src, dst string, visible []int) error {
	if len(visible) == 0 {
		return ErrNothingToExport
	}
	return exporter.ExportPages(src, dst, CompactRanges(visible))
}
