package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pagetag/internal/gui"
)

// NewGuiCmd creates the GUI command
func NewGuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui [file.pdf]",
		Short: "Launch the graphical viewer",
		Long:  `Launch the desktop viewer. Pass a PDF path to open it immediately, or use the open button once running.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := gui.NewApp(cfg)
			if len(args) == 1 {
				if err := app.OpenFile(args[0]); err != nil {
					fmt.Printf("Error opening %s: %v\n", args[0], err)
					os.Exit(1)
				}
			}
			app.Run()
		},
	}
}
