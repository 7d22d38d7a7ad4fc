package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0o644

// dirMode is the permission mode for directories created by WriteTree.
const dirMode os.FileMode = 0o755

// ErrUnsafePath is returned when a tree entry would escape its root.
var ErrUnsafePath = errors.New("path escapes output directory")

// WriteAtomic replaces path with content by writing a temp file in the same
// directory and renaming it over the target. A zero mode means
// DefaultFileMode. On failure the target is left untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// TreeFile is one file written by WriteTree.
type TreeFile struct {
	// Name is a slash-separated path relative to the tree root.
	Name    string
	Content []byte
}

// WriteTree writes files below root, creating directories as needed, and
// returns the paths written. Names must stay inside root.
func WriteTree(ctx context.Context, root string, files []TreeFile) ([]string, error) {
	written := make([]string, 0, len(files))
	for _, file := range files {
		rel := filepath.FromSlash(file.Name)
		if !filepath.IsLocal(rel) {
			return written, fmt.Errorf("%w: %s", ErrUnsafePath, file.Name)
		}

		target := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
			return written, fmt.Errorf("create directory: %w", err)
		}
		if err := WriteAtomic(ctx, target, file.Content, DefaultFileMode); err != nil {
			return written, fmt.Errorf("write %s: %w", file.Name, err)
		}
		written = append(written, target)
	}
	return written, nil
}
