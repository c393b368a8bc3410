package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pagetag/internal/config"
	"pagetag/internal/log"
)

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pagetag",
		Short:   "Tag, filter, search and export PDF pages",
		Long:    `Pagetag is a PDF page tagger: mark pages green, yellow or red, navigate the filtered set, search inside it, and export the visible pages to a new file.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var configErr error
			if cfgFile != "" {
				cfg, configErr = config.LoadConfigFile(cfgFile)
			} else {
				cfg, configErr = config.LoadConfig()
			}
			if configErr != nil {
				fmt.Printf("Warning: could not load config: %v. Using default settings.\n", configErr)
				cfg = config.New()
			}
			if debug {
				cfg.Debug = true
			}
			log.SetDebug(cfg.Debug)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pagetag/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewGuiCmd())
	rootCmd.AddCommand(NewTuiCmd())
	rootCmd.AddCommand(NewTagsCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewSearchCmd())

	return rootCmd
}
