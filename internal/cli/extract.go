package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/peggylint/internal/configloader"
	"github.com/yaklabco/peggylint/internal/logging"
	"github.com/yaklabco/peggylint/pkg/fsutil"
	"github.com/yaklabco/peggylint/pkg/grammar"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/processor"
)

type extractFlags struct {
	json     bool
	out      string
	language string
}

func newExtractCommand() *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <grammar>",
		Short: "Print the code handed to the host linter",
		Long: `Print the virtual files peggylint builds from a grammar: one per code
block, each wrapped so the names the generated parser provides are declared.

With --out the files are written below a directory instead, named like
<grammar>/<index>.<ext>, so they can be linted or inspected directly.

Examples:
  peggylint extract expr.peggy
  peggylint extract expr.peggy --json
  peggylint extract expr.peggy --out build/extracted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "print the virtual files as a JSON array")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write the virtual files below this directory")
	cmd.Flags().StringVar(&flags.language, "language", "",
		"language of the extracted code: JavaScript, TypeScript, or auto")

	return cmd
}

func runExtract(cmd *cobra.Command, path string, flags *extractFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return withExitCode(ExitInternalError, "get config flag: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   filepath.Dir(path),
		ExplicitPath: configPath,
	})
	if err != nil {
		return withExitCode(ExitConfigError, "load configuration: %w", err)
	}
	cfg := loadResult.Config
	if flags.language != "" {
		cfg.Linter.Language = flags.language
	}

	engine, err := lint.NewEngineFromConfig(cfg)
	if err != nil {
		return withExitCode(ExitConfigError, "create linter: %w", err)
	}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return withExitCode(ExitIOError, "read grammar: %w", err)
	}

	files, err := engine.Extract(filepath.Base(path), content)
	if err != nil {
		var synErr *grammar.SyntaxError
		if errors.As(err, &synErr) {
			return withExitCode(ExitLintErrors, "%s: %w", path, err)
		}
		return withExitCode(ExitInternalError, "extract %s: %w", path, err)
	}

	switch {
	case flags.out != "":
		return writeExtracted(ctx, flags.out, files)
	case flags.json:
		return printExtractedJSON(cmd.OutOrStdout(), files)
	default:
		return printExtracted(cmd.OutOrStdout(), files)
	}
}

// extractedFile is the JSON form of a virtual file.
type extractedFile struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func printExtractedJSON(w io.Writer, files []processor.VirtualFile) error {
	out := make([]extractedFile, 0, len(files))
	for _, f := range files {
		out = append(out, extractedFile(f))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return withExitCode(ExitIOError, "encode JSON: %w", err)
	}
	return nil
}

func printExtracted(w io.Writer, files []processor.VirtualFile) error {
	for i, f := range files {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return withExitCode(ExitIOError, "write output: %w", err)
			}
		}
		if _, err := fmt.Fprintf(w, "// %s\n%s", f.Name, f.Text); err != nil {
			return withExitCode(ExitIOError, "write output: %w", err)
		}
	}
	return nil
}

func writeExtracted(ctx context.Context, dir string, files []processor.VirtualFile) error {
	tree := make([]fsutil.TreeFile, 0, len(files))
	for _, f := range files {
		tree = append(tree, fsutil.TreeFile{Name: f.Name, Content: []byte(f.Text)})
	}

	written, err := fsutil.WriteTree(ctx, dir, tree)
	if err != nil {
		return withExitCode(ExitIOError, "write virtual files: %w", err)
	}

	logger := logging.FromContext(ctx)
	for _, path := range written {
		logger.Info("wrote virtual file", logging.FieldPath, path)
	}
	return nil
}
