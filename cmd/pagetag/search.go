package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pagetag/internal/nav"
	"pagetag/internal/pdf"
	"pagetag/internal/search"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var tagList string

	cmd := &cobra.Command{
		Use:   "search <file.pdf> <query>",
		Short: "Search text inside a PDF",
		Long: `Search for text and print the matching pages. With --tags the search
runs only over pages carrying one of the named tags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pdf.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			query := args[1]

			filters, err := parseTagList(tagList)
			if err != nil {
				return err
			}

			engine := nav.NewEngine(doc.PageCount(), newAdapter(doc))
			engine.SetActiveFilters(filters)

			searchEngine := search.NewEngine(doc)
			if err := searchEngine.Run(query, engine.VisiblePages()); err != nil {
				return err
			}

			if searchEngine.HitCount() == 0 {
				fmt.Printf("No hits for %q in %d pages\n", query, engine.VisibleCount())
				return nil
			}

			fmt.Printf("%d hits for %q:\n", searchEngine.HitCount(), query)
			hitsPerPage := make(map[int]int)
			var order []int
			for _, page := range engine.VisiblePages() {
				n := len(searchEngine.HitsOnPage(page))
				if n > 0 {
					hitsPerPage[page] = n
					order = append(order, page)
				}
			}
			for _, page := range order {
				fmt.Printf("  page %d: %d\n", page+1, hitsPerPage[page])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tagList, "tags", "t", "", "Comma-separated tags to search within, e.g. green,yellow")

	return cmd
}
