package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pagetag/internal/export"
	"pagetag/internal/nav"
	"pagetag/internal/pdf"
	"pagetag/pkg/types"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var (
		output  string
		tagList string
	)

	cmd := &cobra.Command{
		Use:   "export <file.pdf>",
		Short: "Export the filtered pages to a new PDF",
		Long: `Export pages to a new PDF. With --tags only pages carrying one of the
named tags are kept, otherwise every page is exported.

  pagetag export slides.pdf --tags green
  pagetag export slides.pdf --tags green,yellow -o keep.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pdf.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}

			filters, err := parseTagList(tagList)
			if err != nil {
				return err
			}

			engine := nav.NewEngine(doc.PageCount(), newAdapter(doc))
			engine.SetActiveFilters(filters)

			dst := output
			if dst == "" {
				dst = export.OutputPath(doc.Path(), cfg.Export.Suffix)
			}

			err = export.Filtered(export.NewPDFExporter(), doc.Path(), dst, engine.VisiblePages())
			if errors.Is(err, export.ErrNothingToExport) {
				return fmt.Errorf("no pages match the filter, nothing to export")
			}
			if err != nil {
				return err
			}

			fmt.Printf("Exported %d of %d pages to %s\n", engine.VisibleCount(), doc.PageCount(), dst)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default adds the configured suffix)")
	cmd.Flags().StringVarP(&tagList, "tags", "t", "", "Comma-separated tags to keep, e.g. green,yellow")

	return cmd
}

func parseTagList(list string) ([]types.Tag, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var filters []types.Tag
	for _, part := range strings.Split(list, ",") {
		tag, err := types.ParseTag(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad --tags: %w", err)
		}
		filters = append(filters, tag)
	}
	return filters, nil
}
