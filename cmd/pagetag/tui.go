package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pagetag/internal/nav"
	"pagetag/internal/pdf"
	"pagetag/internal/search"
	"pagetag/internal/tags"
	"pagetag/internal/tui"
)

// NewTuiCmd creates the terminal viewer command
func NewTuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <file.pdf>",
		Short: "Start the terminal viewer",
		Long:  `Tag, filter, search and export pages of a PDF from the terminal.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doc, err := pdf.Open(args[0])
			if err != nil {
				fmt.Printf("Error opening %s: %v\n", args[0], err)
				os.Exit(1)
			}

			store := tags.NewSidecarStore(tags.SidecarPath(doc.Path(), cfg.Tags.SidecarSuffix))
			adapter := tags.NewAdapter(store, doc.PageCount())
			navEngine := nav.NewEngine(doc.PageCount(), adapter)
			searchEngine := search.NewEngine(doc)
			navEngine.OnViewChanged(searchEngine.Invalidate)

			m := tui.New(cfg, doc.Path(), doc, navEngine, searchEngine)
			p := tea.NewProgram(m)
			if _, err := p.Run(); err != nil {
				fmt.Printf("Error running TUI: %v\n", err)
				os.Exit(1)
			}
		},
	}
}
