package config

import (
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "toml".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch opts.Format {
	case "", "yaml", "yml":
		return []byte(yamlTemplate), nil
	case "toml":
		return generateTOMLTemplate()
	default:
		return nil, fmt.Errorf("unsupported template format %q (use yaml or toml)", opts.Format)
	}
}

const yamlTemplate = `# peggylint configuration
# See: https://github.com/yaklabco/peggylint

# Host linter used for the JavaScript embedded in grammar files.
linter:
  name: eslint
  # Executable to run; defaults to the linter name.
  command: eslint
  # Extra arguments placed before the generated ones.
  # args: ["--config", "eslint.config.mjs"]
  # Language of the extracted code: JavaScript or TypeScript.
  language: JavaScript
  # Names available to every action besides input and options.
  # globals: []
  # Host rules whose diagnostics are dropped.
  ignore_rules:
    - unicode-bom

# Grammar file extensions.
extensions:
  - .peggy
  - .pegjs

# Severity for host messages without one: error, warning, or info
severity_default: warning

# File patterns to ignore (glob patterns)
# ignore:
#   - "node_modules/**"

# Backup configuration for auto-fix
backups:
  enabled: true
  mode: sidecar
`

// generateTOMLTemplate encodes the default configuration as TOML.
func generateTOMLTemplate() ([]byte, error) {
	body, err := NewConfig().ToTOML()
	if err != nil {
		return nil, err
	}
	return withHeader(DefaultTemplateHeader(), body), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# peggylint configuration
# See: https://github.com/yaklabco/peggylint`
}
