package processor

import (
	"fmt"
	"strconv"
	"strings"
)

// anonymousFile replaces the filename of text that did not come from a file.
const anonymousFile = "<text>"

// VirtualFile is one extracted segment of a grammar file.
type VirtualFile struct {
	// Name is a path-like name derived from the grammar filename.
	Name string

	// Text is the generated code.
	Text string
}

// VirtualName returns the name of segment index of filename. The result
// looks like a path below the grammar file so host linters pick their
// configuration by ext.
func VirtualName(filename string, index int, ext string) string {
	return fmt.Sprintf("%s/%d%s", displayFilename(filename), index, ext)
}

func displayFilename(filename string) string {
	if filename == "" {
		return anonymousFile
	}
	return filename
}

// ParseVirtualName splits a name produced by VirtualName into the grammar
// filename and the segment index.
func ParseVirtualName(name string) (string, int, bool) {
	slash := strings.LastIndexByte(name, '/')
	if slash < 0 {
		return "", 0, false
	}

	base := name[slash+1:]
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	index, err := strconv.Atoi(base)
	if err != nil || index < 0 {
		return "", 0, false
	}

	filename := name[:slash]
	if filename == anonymousFile {
		filename = ""
	}
	return filename, index, true
}
