// Package config defines core configuration types for peggylint.
// These types are pure data structures; loading and merging live in internal/configloader.
package config

// Severity represents the severity level of a lint diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid returns true if the severity is one of the known levels.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// Linter backend names.
const (
	LinterESLint = "eslint"
)

// Languages the extracted code can be presented as.
const (
	LanguageJavaScript = "JavaScript"
	LanguageTypeScript = "TypeScript"
)

// LinterConfig configures the host linter that checks extracted code.
type LinterConfig struct {
	// Name selects the backend ("eslint").
	Name string `yaml:"name" toml:"name"`

	// Command is the executable to run. Defaults to the backend name.
	Command string `yaml:"command" toml:"command"`

	// Args are passed to Command before the backend's own arguments.
	Args []string `yaml:"args" toml:"args"`

	// Language decides the extension of the virtual files ("JavaScript" or "TypeScript").
	Language string `yaml:"language" toml:"language"`

	// Globals are extra names declared as implicit bindings in generated rule code.
	Globals []string `yaml:"globals" toml:"globals"`

	// IgnoreRules lists host rule IDs whose diagnostics are dropped.
	IgnoreRules []string `yaml:"ignore_rules" toml:"ignore_rules"`
}

// BackupsConfig controls backup behavior when fixing files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Mode    string `yaml:"mode" toml:"mode"` // "sidecar"
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// Config is the root configuration structure for peggylint.
type Config struct {
	// Linter configures the host linter.
	Linter LinterConfig `yaml:"linter" toml:"linter"`

	// Extensions lists the file extensions treated as grammar files.
	Extensions []string `yaml:"extensions" toml:"extensions"`

	// SeverityDefault is used for host messages that carry no usable severity.
	SeverityDefault string `yaml:"severity_default" toml:"severity_default"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `yaml:"ignore" toml:"ignore"`

	// Backups configures backup behavior when fixing.
	Backups BackupsConfig `yaml:"backups" toml:"backups"`

	// CLI-level options (not persisted to config files).

	// Fix enables auto-fixing of issues.
	Fix bool `yaml:"-" toml:"-"`

	// DryRun shows what would be fixed without making changes.
	DryRun bool `yaml:"-" toml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-" toml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-" toml:"-"`

	// NoBackups disables backup creation when fixing.
	NoBackups bool `yaml:"-" toml:"-"`
}

// DefaultExtensions returns the grammar file extensions recognized by default.
func DefaultExtensions() []string {
	return []string{".peggy", ".pegjs"}
}

// DefaultIgnoreRules returns host rules that never apply to extracted code.
// The extracted text never starts with a byte order mark.
func DefaultIgnoreRules() []string {
	return []string{"unicode-bom"}
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Linter: LinterConfig{
			Name:        LinterESLint,
			Command:     LinterESLint,
			Language:    LanguageJavaScript,
			IgnoreRules: DefaultIgnoreRules(),
		},
		Extensions:      DefaultExtensions(),
		SeverityDefault: string(SeverityWarning),
		Ignore:          nil,
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}
