// Package processor turns the code embedded in a Peggy grammar into virtual
// files a JavaScript linter can check, and maps the linter's diagnostics back
// onto the grammar file.
//
// A Session owns the mapping state of one linting run. Preprocess registers
// one sourcechain.Chain per virtual file; Postprocess looks them up by name.
// Each grammar file may be preprocessed once per Session, and its
// Postprocess call must come after its Preprocess call. Different files may
// be processed from different goroutines.
package processor

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/yaklabco/peggylint/pkg/langdetect"
	"github.com/yaklabco/peggylint/pkg/sourcechain"
)

var (
	// ErrMappingNotFound is matched by errors returned when diagnostics
	// arrive for a virtual file the Session never produced.
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrAlreadyProcessed is returned when a grammar file is preprocessed
	// twice in one Session.
	ErrAlreadyProcessed = errors.New("file already preprocessed")
)

// MappingNotFoundError names the virtual file that has no registered chain.
type MappingNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *MappingNotFoundError) Error() string {
	return fmt.Sprintf("mapping not found for %s", e.Name)
}

// Is reports whether target is ErrMappingNotFound.
func (e *MappingNotFoundError) Is(target error) bool {
	return target == ErrMappingNotFound
}

// Options configures a Session.
type Options struct {
	// Language of the extracted code: "JavaScript", "TypeScript" or "auto".
	// Empty means JavaScript.
	Language string

	// Globals are declared as implicit bindings next to input and options.
	Globals []string
}

// Session holds the virtual files of one linting run.
type Session struct {
	opts Options

	mu     sync.RWMutex
	chains map[string]*sourcechain.Chain
	// exts records the extension chosen for each preprocessed grammar file.
	exts map[string]string
}

// NewSession returns an empty Session.
func NewSession(opts Options) *Session {
	opts.Globals = slices.Clone(opts.Globals)
	return &Session{
		opts:   opts,
		chains: make(map[string]*sourcechain.Chain),
		exts:   make(map[string]string),
	}
}

// Chain returns the chain registered under a virtual file name.
func (s *Session) Chain(name string) (*sourcechain.Chain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain, ok := s.chains[name]
	return chain, ok
}

// Len returns the number of registered virtual files.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chains)
}

// register stores the chains of filename and returns the virtual files.
func (s *Session) register(filename, ext string, chains []*sourcechain.Chain) ([]VirtualFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.exts[filename]; seen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, displayFilename(filename))
	}
	s.exts[filename] = ext

	files := make([]VirtualFile, 0, len(chains))
	for idx, chain := range chains {
		name := VirtualName(filename, idx, ext)
		s.chains[name] = chain
		files = append(files, VirtualFile{Name: name, Text: chain.String()})
	}
	return files, nil
}

// virtualName returns the name segment index of filename was (or would have
// been) registered under.
func (s *Session) virtualName(filename string, index int) string {
	s.mu.RLock()
	ext, ok := s.exts[filename]
	s.mu.RUnlock()

	if !ok {
		ext = langdetect.ExtensionFor(langdetect.Resolve(s.opts.Language))
	}
	return VirtualName(filename, index, ext)
}

// Release forgets the virtual files of filename so it can be preprocessed
// again, for example after a fix pass changed it. It reports whether
// filename was registered.
func (s *Session) Release(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext, ok := s.exts[filename]
	if !ok {
		return false
	}
	delete(s.exts, filename)

	for idx := 0; ; idx++ {
		name := VirtualName(filename, idx, ext)
		if _, ok := s.chains[name]; !ok {
			break
		}
		delete(s.chains, name)
	}
	return true
}
