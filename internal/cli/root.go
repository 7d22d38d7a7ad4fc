// Package cli provides the Cobra command structure for peggylint.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/peggylint/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root peggylint command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "peggylint",
		Short: "Lint the JavaScript inside Peggy grammars",
		Long: `peggylint runs a JavaScript linter over the code embedded in Peggy
grammar files: the top-level initializer, the per-parse initializer,
actions, and semantic predicates.

Every code block is wrapped in a function that declares the names the
generated parser provides, so the host linter sees valid code. Diagnostics
and autofixes are mapped back to positions in the grammar file.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newLintCommand())
	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(color, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}
