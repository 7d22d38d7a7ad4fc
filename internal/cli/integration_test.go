package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/peggylint/internal/cli"
	"github.com/yaklabco/peggylint/pkg/fsutil"
	"github.com/yaklabco/peggylint/pkg/reporter"
)

// fakeESLint reads the code on stdin and reports the first FOO of it as an
// error with a fix that lowercases it, in ESLint's JSON format.
const fakeESLint = `#!/bin/sh
awk '
BEGIN { off = 0; msg = "" }
{
	i = index($0, "FOO")
	if (i > 0 && msg == "") {
		msg = sprintf("{\"ruleId\":\"no-upper\",\"severity\":2,\"message\":\"Upper-case name.\",\"line\":%d,\"column\":%d,\"endLine\":%d,\"endColumn\":%d,\"fix\":{\"range\":[%d,%d],\"text\":\"foo\"}}", NR, i, NR, i + 3, off + i - 1, off + i + 2)
	}
	off += length($0) + 1
}
END { printf "[{\"filePath\":\"stdin\",\"messages\":[%s]}]\n", msg }
'
`

const (
	cleanGrammar  = "start = \"a\" { return 1; }\n"
	upperGrammar  = "start = \"a\" { return FOO; }\n"
	brokenGrammar = "a b\n"
)

// setup writes the fake linter, a config file using it, and the given
// grammars into a temporary directory. It returns the directory and the
// config path.
func setup(t *testing.T, grammars map[string]string) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("the fake linter is a shell script")
	}
	for _, tool := range []string{"sh", "awk"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}

	dir := t.TempDir()
	linter := filepath.Join(dir, "fake-eslint")
	require.NoError(t, os.WriteFile(linter, []byte(fakeESLint), 0o755))

	cfgPath := filepath.Join(dir, "peggylint.yml")
	cfg := "linter:\n  name: eslint\n  command: " + linter + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	for name, content := range grammars {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir, cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestIntegration_LintClean(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, map[string]string{"clean.peggy": cleanGrammar})

	out, err := execute(t, "lint", "--config", cfg, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No problems found (1 file checked)")
}

func TestIntegration_LintReportsHostDiagnostics(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, map[string]string{"upper.peggy": upperGrammar})
	path := filepath.Join(dir, "upper.peggy")

	out, err := execute(t, "lint", "--config", cfg, path)
	require.Error(t, err)
	assert.Equal(t, cli.ExitLintErrors, cli.ExitCode(err))
	assert.ErrorIs(t, err, cli.ErrLintIssuesFound)

	assert.Contains(t, out, "1:22  error  Upper-case name.  (eslint/no-upper)  fixable")
	assert.Contains(t, out, "    "+upperGrammar)
	assert.Equal(t, upperGrammar, readFile(t, path), "lint without --fix leaves the file alone")
}

func TestIntegration_IgnoreRule(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, map[string]string{"upper.peggy": upperGrammar})

	out, err := execute(t, "lint", "--config", cfg, "--ignore-rule", "no-*", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No problems found")
}

func TestIntegration_SyntaxError(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, map[string]string{"broken.peggy": brokenGrammar, "clean.peggy": cleanGrammar})

	out, err := execute(t, "lint", "--config", cfg, "--format", "json", dir)
	require.Error(t, err)
	assert.Equal(t, cli.ExitLintErrors, cli.ExitCode(err))

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	require.Len(t, output.Files, 2)

	broken := output.Files[0]
	assert.True(t, broken.SyntaxError)
	require.Len(t, broken.Diagnostics, 1)
	assert.Equal(t, "peggy-syntax", broken.Diagnostics[0].RuleID)
	assert.Equal(t, 1, output.Summary.TotalIssues)
}

func TestIntegration_FixAndRestore(t *testing.T) {
	t.Parallel()

	grammar := "start = \"a\" { return FOO + FOO; }\n"
	dir, cfg := setup(t, map[string]string{"upper.peggy": grammar})
	path := filepath.Join(dir, "upper.peggy")

	out, err := execute(t, "lint", "--config", cfg, "--fix", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "fixed 2 problems in 2 passes (backup created)")
	assert.Equal(t, "start = \"a\" { return foo + foo; }\n", readFile(t, path))
	assert.True(t, fsutil.BackupExists(path, fsutil.BackupModeSidecar))

	_, err = execute(t, "restore", path)
	require.NoError(t, err)
	assert.Equal(t, grammar, readFile(t, path))

	_, err = execute(t, "restore", "--clean", path)
	require.NoError(t, err)
	assert.False(t, fsutil.BackupExists(path, fsutil.BackupModeSidecar))

	_, err = execute(t, "restore", path)
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(err), "nothing left to restore")
}

func TestIntegration_DryRunDiff(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, map[string]string{"upper.peggy": upperGrammar})
	path := filepath.Join(dir, "upper.peggy")

	out, err := execute(t, "lint", "--config", cfg, "--dry-run", "--format", "diff", path)
	require.NoError(t, err, "a dry run reports what the fixes would leave")
	assert.Contains(t, out, "-start = \"a\" { return FOO; }\n+start = \"a\" { return foo; }\n")
	assert.Contains(t, out, "1 file changed, 1 insertion(+), 1 deletion(-)")
	assert.Equal(t, upperGrammar, readFile(t, path))
	assert.False(t, fsutil.BackupExists(path, fsutil.BackupModeSidecar))
}

func TestIntegration_Extract(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, map[string]string{"upper.peggy": upperGrammar, "broken.peggy": brokenGrammar})

	t.Run("print", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "extract", "--config", cfg, filepath.Join(dir, "upper.peggy"))
		require.NoError(t, err)
		assert.Contains(t, out, "// upper.peggy/0.js\n")
		assert.Contains(t, out, "return FOO;")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "extract", "--config", cfg, "--json", filepath.Join(dir, "upper.peggy"))
		require.NoError(t, err)

		var files []struct {
			Name string `json:"name"`
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &files))
		require.Len(t, files, 1)
		assert.Equal(t, "upper.peggy/0.js", files[0].Name)
	})

	t.Run("out", func(t *testing.T) {
		t.Parallel()

		outDir := t.TempDir()
		_, err := execute(t, "extract", "--config", cfg, "--out", outDir, filepath.Join(dir, "upper.peggy"))
		require.NoError(t, err)
		assert.Contains(t, readFile(t, filepath.Join(outDir, "upper.peggy", "0.js")), "return FOO;")
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "extract", "--config", cfg, filepath.Join(dir, "broken.peggy"))
		require.Error(t, err)
		assert.Equal(t, cli.ExitLintErrors, cli.ExitCode(err))
	})
}

func TestIntegration_ConfigError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("linter:\n  name: jshint\n"), 0o644))

	_, err := execute(t, "lint", "--config", cfgPath, dir)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "unknown linter")
}

func TestIntegration_InvalidSort(t *testing.T) {
	t.Parallel()

	dir, cfg := setup(t, nil)

	_, err := execute(t, "lint", "--config", cfg, "--sort", "size", dir)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, format := range []string{"yaml", "toml"} {
		path := filepath.Join(dir, "config."+format)

		_, err := execute(t, "init", "--format", format, "--output", path)
		require.NoError(t, err, format)
		assert.Contains(t, readFile(t, path), "eslint", format)

		_, err = execute(t, "init", "--format", format, "--output", path)
		require.Error(t, err, "existing file without --force")

		_, err = execute(t, "init", "--format", format, "--output", path, "--force")
		require.NoError(t, err)
	}

	_, err := execute(t, "init", "--format", "json")
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
