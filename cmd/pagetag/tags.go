package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"pagetag/internal/export"
	"pagetag/internal/pdf"
	"pagetag/internal/tags"
	"pagetag/pkg/types"
)

// NewTagsCmd creates the tags command
func NewTagsCmd() *cobra.Command {
	var (
		dir     string
		pattern string
		sets    []string
	)

	cmd := &cobra.Command{
		Use:   "tags [file.pdf]",
		Short: "Show or set page tags",
		Long: `Show the tag summary for a PDF, set tags from the command line, or
scan a directory of PDFs and report their tag counts.

Pages are numbered from 1. Examples:

  pagetag tags slides.pdf
  pagetag tags slides.pdf --set 3=green --set 7=red
  pagetag tags --dir ~/papers --pattern "*draft*.pdf"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				return scanDirectory(dir, pattern)
			}
			if len(args) == 0 {
				return fmt.Errorf("need a PDF path or --dir")
			}
			if len(sets) > 0 {
				return setTags(args[0], sets)
			}
			return showTags(args[0])
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Scan a directory instead of a single file")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "*.pdf", "Filename glob used with --dir")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Set a tag as page=tag, repeatable")

	return cmd
}

func showTags(path string) error {
	doc, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	adapter := newAdapter(doc)
	tagMap, err := adapter.Load()
	if err != nil {
		return err
	}

	fmt.Printf("== Tags for %s ==\n\n", path)
	fmt.Printf("Total pages: %d\n", doc.PageCount())
	printCounts(tagMap)

	for _, tag := range []types.Tag{types.TagGreen, types.TagYellow, types.TagRed} {
		var pages []int
		for page, t := range tagMap {
			if t == tag {
				pages = append(pages, page)
			}
		}
		if len(pages) == 0 {
			continue
		}
		fmt.Printf("  %s: %s\n", tag, formatPages(pages))
	}
	return nil
}

func setTags(path string, sets []string) error {
	doc, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	adapter := newAdapter(doc)
	tagMap, err := adapter.Load()
	if err != nil {
		return err
	}

	for _, spec := range sets {
		page, tag, err := parseSet(spec, doc.PageCount())
		if err != nil {
			return err
		}
		tagMap[page] = tag
		fmt.Printf("Page %d tagged %s\n", page+1, tag)
	}

	if err := adapter.Save(tagMap); err != nil {
		return err
	}
	printCounts(tagMap)
	return nil
}

// parseSet turns a "page=tag" argument into a zero-based page and a tag.
func parseSet(spec string, totalPages int) (int, types.Tag, error) {
	pageStr, tagStr, ok := strings.Cut(spec, "=")
	if !ok {
		return 0, types.TagNone, fmt.Errorf("bad --set %q (want page=tag)", spec)
	}
	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if err != nil || page < 1 || page > totalPages {
		return 0, types.TagNone, fmt.Errorf("bad --set %q: page must be between 1 and %d", spec, totalPages)
	}
	tag, err := types.ParseTag(strings.TrimSpace(tagStr))
	if err != nil {
		return 0, types.TagNone, fmt.Errorf("bad --set %q: %w", spec, err)
	}
	return page - 1, tag, nil
}

// scanDirectory reports tag counts for every matching PDF in dir.
func scanDirectory(dir, pattern string) error {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("bad --pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	fmt.Printf("== Tag scan of %s (%s) ==\n\n", dir, pattern)
	matched := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !matcher.Match(name) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		matched++
		path := filepath.Join(dir, name)

		doc, err := pdf.Open(path)
		if err != nil {
			fmt.Printf("  %s: unreadable (%v)\n", name, err)
			continue
		}

		tagMap, err := newAdapter(doc).Load()
		if err != nil {
			fmt.Printf("  %s: %v\n", name, err)
			continue
		}

		counts := tags.Counts(tagMap)
		if counts[types.TagGreen]+counts[types.TagYellow]+counts[types.TagRed] == 0 {
			fmt.Printf("  %s: %d pages, untagged\n", name, doc.PageCount())
			continue
		}
		fmt.Printf("  %s: %d pages, green %d, yellow %d, red %d\n",
			name, doc.PageCount(),
			counts[types.TagGreen], counts[types.TagYellow], counts[types.TagRed])
	}

	if matched == 0 {
		fmt.Println("  no matching PDFs")
	}
	return nil
}

func newAdapter(doc *pdf.Document) *tags.Adapter {
	store := tags.NewSidecarStore(tags.SidecarPath(doc.Path(), cfg.Tags.SidecarSuffix))
	return tags.NewAdapter(store, doc.PageCount())
}

func printCounts(m types.TagMap) {
	counts := tags.Counts(m)
	fmt.Printf("Counts: green %d, yellow %d, red %d, untagged %d\n",
		counts[types.TagGreen], counts[types.TagYellow],
		counts[types.TagRed], counts[types.TagNone])
}

// formatPages renders one-based pages as compact ranges, "3-5, 9".
func formatPages(pages []int) string {
	ranges := export.CompactRanges(pages)
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start+1))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start+1, r.End+1))
		}
	}
	return strings.Join(parts, ", ")
}
