package configloader

import (
	"slices"

	"github.com/yaklabco/peggylint/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	result.Linter = mergeLinter(base.Linter, override.Linter)

	if override.SeverityDefault != "" {
		result.SeverityDefault = override.SeverityDefault
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// Booleans only turn on: false is indistinguishable from unset.
	if override.Fix {
		result.Fix = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}

	return result
}

// mergeLinter merges host linter settings field by field.
func mergeLinter(base, override config.LinterConfig) config.LinterConfig {
	result := config.LinterConfig{
		Name:        base.Name,
		Command:     base.Command,
		Args:        slices.Clone(base.Args),
		Language:    base.Language,
		Globals:     slices.Clone(base.Globals),
		IgnoreRules: slices.Clone(base.IgnoreRules),
	}

	if override.Name != "" {
		result.Name = override.Name
		// A different backend does not inherit the previous executable.
		if override.Command == "" && override.Name != base.Name {
			result.Command = override.Name
		}
	}
	if override.Command != "" {
		result.Command = override.Command
	}
	if override.Language != "" {
		result.Language = override.Language
	}
	if override.Args != nil {
		result.Args = slices.Clone(override.Args)
	}
	if override.Globals != nil {
		result.Globals = slices.Clone(override.Globals)
	}
	if override.IgnoreRules != nil {
		result.IgnoreRules = slices.Clone(override.IgnoreRules)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
