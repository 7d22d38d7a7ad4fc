package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/peggylint/internal/configloader"
	"github.com/yaklabco/peggylint/internal/logging"
	"github.com/yaklabco/peggylint/pkg/analysis"
	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/reporter"
	"github.com/yaklabco/peggylint/pkg/runner"
)

type lintFlags struct {
	format         string
	ignore         []string
	ignoreRules    []string
	linter         string
	language       string
	strict         bool
	noContext      bool
	compact        bool
	sortBy         string
	followSymlinks bool
}

func newLintCommand() *cobra.Command {
	var cfg config.Config
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint the code in Peggy grammar files",
		Long:  lintLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, &cfg, flags)
		},
	}

	addLintFlags(cmd, &cfg, flags)

	return cmd
}

const lintLongDescription = `Lint the JavaScript embedded in Peggy grammar files.

By default, lints all .peggy and .pegjs files in the current directory
and subdirectories. Specify paths to lint specific files or directories.
Grammars that do not parse are reported as peggy-syntax errors.

Examples:
  peggylint lint                       # Lint current directory
  peggylint lint src/grammars/         # Lint a directory
  peggylint lint expr.peggy            # Lint a single grammar
  peggylint lint --fix                 # Apply the host linter's fixes
  peggylint lint --fix --dry-run       # Show fixes as a diff without writing
  peggylint lint --format sarif        # SARIF for code scanning
  peggylint lint --ignore-rule semi    # Drop a host rule's diagnostics
  peggylint lint --strict              # Treat warnings as errors`

func runLint(cmd *cobra.Command, args []string, cfg *config.Config, flags *lintFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	// Only values given on the command line override the loaded configuration.
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	cfg.Ignore = flags.ignore
	cfg.Linter.Name = flags.linter
	cfg.Linter.Language = flags.language

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return withExitCode(ExitInternalError, "get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return withExitCode(ExitIOError, "get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	})
	if err != nil {
		return withExitCode(ExitConfigError, "load configuration: %w", err)
	}

	finalCfg := loadResult.Config
	finalCfg.Linter.IgnoreRules = append(finalCfg.Linter.IgnoreRules, flags.ignoreRules...)

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, loadResult.LoadedFrom)
	}
	logger.Debug("configuration resolved",
		logging.FieldLinter, finalCfg.Linter.Name,
		logging.FieldLanguage, finalCfg.Linter.Language,
		logging.FieldFix, finalCfg.Fix,
		logging.FieldDryRun, finalCfg.DryRun,
		logging.FieldJobs, finalCfg.Jobs,
	)

	sortBy := analysis.SortField(flags.sortBy)
	if !sortBy.IsValid() {
		return withExitCode(ExitInvalidUsage, "invalid --sort %q: must be one of count, alpha, severity", flags.sortBy)
	}

	engine, err := lint.NewEngineFromConfig(finalCfg)
	if err != nil {
		return withExitCode(ExitConfigError, "create linter: %w", err)
	}

	runOpts := runner.OptionsFromConfig(finalCfg, args)
	runOpts.WorkingDir = workDir
	runOpts.FollowSymlinks = flags.followSymlinks

	logger.Debug("starting lint run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
	)

	result, err := runner.New(lint.NewPipeline(engine)).Run(ctx, runOpts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return withExitCode(ExitInternalError, "lint run cancelled: %w", err)
		}
		return withExitCode(ExitIOError, "lint run failed: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      finalCfg.Format,
		Color:       colorMode,
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Compact:     flags.compact,
		SortBy:      sortBy,
		ToolVersion: cmd.Root().Version,
		WorkingDir:  workDir,
	})
	if err != nil {
		return withExitCode(ExitInvalidUsage, "create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return withExitCode(ExitIOError, "report results: %w", err)
	}

	if code := ExitCodeFromResult(result, flags.strict); code != ExitSuccess {
		return &ExitError{Code: code, Err: ErrLintIssuesFound}
	}

	return nil
}

func addLintFlags(cmd *cobra.Command, cfg *config.Config, flags *lintFlags) {
	formats := make([]string, 0, len(config.Formats()))
	for _, f := range config.Formats() {
		formats = append(formats, string(f))
	}

	cmd.Flags().BoolVar(&cfg.Fix, "fix", false, "apply the host linter's fixes to grammar files")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "compute fixes and show them without writing")
	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatText),
		"output format: "+strings.Join(formats, ", "))
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of files to ignore")
	cmd.Flags().StringSliceVar(&flags.ignoreRules, "ignore-rule", nil,
		"host rule IDs or globs whose diagnostics are dropped")
	cmd.Flags().StringVar(&flags.linter, "linter", "", "host linter backend (default eslint)")
	cmd.Flags().StringVar(&flags.language, "language", "",
		"language of the extracted code: JavaScript, TypeScript, or auto")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when fixing")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "minify json and sarif output")
	cmd.Flags().StringVar(&flags.sortBy, "sort", string(analysis.SortByCount),
		"ordering of summary tables: count, alpha, severity")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
}
