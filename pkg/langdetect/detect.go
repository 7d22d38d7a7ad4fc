// Package langdetect decides which language the code embedded in a grammar
// is written in, and which file extension presents it to a host linter.
// It uses go-enry for extension lookup and as a fallback classifier.
package langdetect

import (
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names, as spelled by go-enry.
const (
	JavaScript = "JavaScript"
	TypeScript = "TypeScript"
)

// Auto asks for the language to be detected from the code itself.
const Auto = "auto"

const defaultExtension = ".js"

// typeScriptPatterns match syntax that is valid TypeScript but not JavaScript.
//
//nolint:gochecknoglobals // Compiled once.
var typeScriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:let|const|var)\s+[\w$]+\s*:\s*[\w$<>\[\]|]+\s*[=;]`),
	regexp.MustCompile(`\)\s*:\s*[\w$<>\[\]|]+\s*(?:=>|\{)`),
	regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:interface|type)\s+[\w$]+`),
	regexp.MustCompile(`\bas\s+(?:const|string|number|boolean|unknown|any)\b`),
	regexp.MustCompile(`\b(?:private|public|protected|readonly)\s+[\w$]+\s*[:;=]`),
}

// ExtensionFor returns the primary file extension of language, including
// the dot. Unknown languages fall back to ".js".
func ExtensionFor(language string) string {
	if name, ok := enry.GetLanguageByAlias(language); ok {
		language = name
	}
	exts := enry.GetLanguageExtensions(language)
	if len(exts) == 0 {
		return defaultExtension
	}
	return exts[0]
}

// Detect returns JavaScript or TypeScript for code fragments.
// Empty content is JavaScript.
func Detect(content []byte) string {
	if len(strings.TrimSpace(string(content))) == 0 {
		return JavaScript
	}

	// Strategy 1: syntax only TypeScript accepts.
	for _, pattern := range typeScriptPatterns {
		if pattern.Match(content) {
			return TypeScript
		}
	}

	// Strategy 2: classifier, trusted only when it is confident.
	if lang, safe := enry.GetLanguageByClassifier(content, []string{JavaScript, TypeScript}); safe && lang == TypeScript {
		return TypeScript
	}

	return JavaScript
}

// Resolve returns language unless it is empty or Auto, in which case the
// language is detected from the concatenated fragments.
func Resolve(language string, fragments ...string) string {
	switch {
	case language == "":
		return JavaScript
	case strings.EqualFold(language, Auto):
		return Detect([]byte(strings.Join(fragments, "\n")))
	default:
		return language
	}
}

// IsKnown reports whether language is Auto or a language go-enry knows by
// name or alias.
func IsKnown(language string) bool {
	if strings.EqualFold(language, Auto) {
		return true
	}
	_, ok := enry.GetLanguageByAlias(language)
	return ok
}
