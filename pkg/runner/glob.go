package runner

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// excludeSet matches slash-separated relative paths against ignore globs.
type excludeSet struct {
	globs []glob.Glob
}

// newExcludeSet compiles patterns. A pattern without a slash also matches
// the base name, so "*.pegjs" excludes such files at any depth.
func newExcludeSet(patterns []string) (*excludeSet, error) {
	set := &excludeSet{}
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(pattern)), "./")
		if pattern == "" {
			continue
		}
		if !strings.Contains(pattern, "/") {
			pattern = "{" + pattern + ",**/" + pattern + "}"
		}
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		set.globs = append(set.globs, compiled)
	}
	return set, nil
}

// match reports whether relPath is excluded. Directories also match
// patterns ending in "/**".
func (s *excludeSet) match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	for _, g := range s.globs {
		if g.Match(relPath) || (isDir && g.Match(relPath+"/")) {
			return true
		}
	}
	return false
}
