package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yaklabco/peggylint/internal/logging"
	"github.com/yaklabco/peggylint/pkg/fsutil"
)

type restoreFlags struct {
	clean bool
}

func newRestoreCommand() *cobra.Command {
	flags := &restoreFlags{}

	cmd := &cobra.Command{
		Use:   "restore <grammar>...",
		Short: "Undo fixes using the backups made by lint --fix",
		Long: `Put back the content a grammar had before peggylint first fixed it,
from its ` + fsutil.BackupSuffix + ` sidecar backup.

With --clean the backups are deleted instead, keeping the fixed files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runRestore(ctx, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.clean, "clean", false, "delete backups instead of restoring them")

	return cmd
}

func runRestore(ctx context.Context, paths []string, flags *restoreFlags) error {
	logger := logging.NewInteractive()

	var missing int
	for _, path := range paths {
		var done bool
		var err error
		if flags.clean {
			done, err = fsutil.RemoveBackup(path, fsutil.BackupModeSidecar)
		} else {
			done, err = fsutil.RestoreBackup(ctx, path, fsutil.BackupModeSidecar)
		}
		if err != nil {
			return withExitCode(ExitIOError, "%s: %w", path, err)
		}

		switch {
		case !done:
			missing++
			logger.Warn("no backup", logging.FieldPath, path)
		case flags.clean:
			logger.Info("removed backup", logging.FieldPath, path)
		default:
			logger.Info("restored", logging.FieldPath, path)
		}
	}

	if missing == len(paths) {
		return withExitCode(ExitIOError, "no backups found for %d %s", missing, pluralFiles(missing))
	}
	return nil
}

func pluralFiles(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
