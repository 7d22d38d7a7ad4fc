package configloader

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/yaklabco/peggylint/pkg/config"
)

// envPrefix is the prefix for all peggylint environment variables.
const envPrefix = "PEGGYLINT"

// envOverrides lists the settings that can come from the environment.
// Pointer fields stay nil when their variable is unset.
type envOverrides struct {
	Linter          *string
	LinterCommand   *string  `split_words:"true"`
	LinterArgs      []string `split_words:"true"`
	Language        *string
	Globals         []string
	IgnoreRules     []string `split_words:"true"`
	Extensions      []string
	SeverityDefault *string `split_words:"true"`
	Ignore          []string
	Fix             *bool
	DryRun          *bool `split_words:"true"`
	Format          *string
	Jobs            *int
	BackupsEnabled  *bool   `split_words:"true"`
	BackupsMode     *string `split_words:"true"`
	NoBackups       *bool   `split_words:"true"`
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with PEGGYLINT_ (e.g., PEGGYLINT_LINTER).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("read %s_* variables: %w", envPrefix, err)
	}

	env.apply(cfg)
	return nil
}

func (e *envOverrides) apply(cfg *config.Config) {
	setString(&cfg.Linter.Name, e.Linter)
	setString(&cfg.Linter.Command, e.LinterCommand)
	setString(&cfg.Linter.Language, e.Language)
	setString(&cfg.SeverityDefault, e.SeverityDefault)
	setString(&cfg.Backups.Mode, e.BackupsMode)
	if e.Format != nil {
		cfg.Format = config.OutputFormat(*e.Format)
	}

	setSlice(&cfg.Linter.Args, e.LinterArgs)
	setSlice(&cfg.Linter.Globals, e.Globals)
	setSlice(&cfg.Linter.IgnoreRules, e.IgnoreRules)
	setSlice(&cfg.Extensions, e.Extensions)
	setSlice(&cfg.Ignore, e.Ignore)

	setBool(&cfg.Fix, e.Fix)
	setBool(&cfg.DryRun, e.DryRun)
	setBool(&cfg.Backups.Enabled, e.BackupsEnabled)
	setBool(&cfg.NoBackups, e.NoBackups)

	if e.Jobs != nil {
		cfg.Jobs = *e.Jobs
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// setSlice replaces dst with the trimmed, non-empty elements of v.
func setSlice(dst *[]string, v []string) {
	if v == nil {
		return
	}
	out := make([]string, 0, len(v))
	for _, part := range v {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*dst = out
}

// ListEnvVars returns the supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string)
	for _, v := range envVarTable() {
		out[v.name] = v.desc
	}
	return out
}

type envVar struct {
	name string
	desc string
}

func envVarTable() []envVar {
	return []envVar{
		{envPrefix + "_LINTER", "Host linter backend: eslint"},
		{envPrefix + "_LINTER_COMMAND", "Host linter executable"},
		{envPrefix + "_LINTER_ARGS", "Comma-separated arguments passed before the backend's own"},
		{envPrefix + "_LANGUAGE", "Language of extracted code: JavaScript, TypeScript or auto"},
		{envPrefix + "_GLOBALS", "Comma-separated extra global names"},
		{envPrefix + "_IGNORE_RULES", "Comma-separated host rule IDs to drop"},
		{envPrefix + "_EXTENSIONS", "Comma-separated grammar file extensions"},
		{envPrefix + "_SEVERITY_DEFAULT", "Default severity: error, warning, or info"},
		{envPrefix + "_IGNORE", "Comma-separated list of ignore patterns"},
		{envPrefix + "_FIX", "Enable auto-fix: true or false"},
		{envPrefix + "_DRY_RUN", "Dry-run mode: true or false"},
		{envPrefix + "_FORMAT", "Output format: text, json, or sarif"},
		{envPrefix + "_JOBS", "Number of parallel workers (0 = auto)"},
		{envPrefix + "_BACKUPS_ENABLED", "Enable backups when fixing: true or false"},
		{envPrefix + "_BACKUPS_MODE", "Backup mode: sidecar or none"},
		{envPrefix + "_NO_BACKUPS", "Disable backups: true or false"},
	}
}
