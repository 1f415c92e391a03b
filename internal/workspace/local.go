package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gerrors "gitlet/internal/errors"
)

// MetaDir is the directory holding all repository state.
const MetaDir = ".gitlet"

// FindRoot searches for the workspace root by looking for the ".gitlet"
// directory in startDir and its parents.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, MetaDir)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", gerrors.NotFound("Not in an initialized Gitlet directory.")
}

// LocalWorkspace is the working tree a repository checks files in and out
// of. File names are slash-separated and relative to Root.
type LocalWorkspace struct {
	Root string
}

func NewLocalWorkspace(root string) (*LocalWorkspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	return &LocalWorkspace{Root: abs}, nil
}

// Clean normalizes a user-supplied name and rejects names outside the
// tree or inside the metadata directory.
func (w *LocalWorkspace) Clean(name string) (string, error) {
	if name == "" {
		return "", gerrors.NotFound("File does not exist.")
	}
	p := name
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			return "", gerrors.InvalidOperation(fmt.Sprintf("%s is outside the repository.", name))
		}
		p = rel
	}
	p = filepath.ToSlash(filepath.Clean(p))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", gerrors.InvalidOperation(fmt.Sprintf("%s is outside the repository.", name))
	}
	if w.shouldIgnore(p) {
		return "", gerrors.InvalidOperation(fmt.Sprintf("%s is inside the repository metadata.", name))
	}
	return p, nil
}

func (w *LocalWorkspace) abs(name string) string {
	return filepath.Join(w.Root, filepath.FromSlash(name))
}

// Exists reports whether name is a regular file in the tree.
func (w *LocalWorkspace) Exists(name string) bool {
	info, err := os.Stat(w.abs(name))
	return err == nil && info.Mode().IsRegular()
}

func (w *LocalWorkspace) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(w.abs(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, gerrors.NotFound("File does not exist.")
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Write replaces name's content, creating parent directories as needed.
func (w *LocalWorkspace) Write(name string, data []byte) error {
	path := w.abs(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Remove deletes name if it exists and prunes directories left empty.
func (w *LocalWorkspace) Remove(name string) error {
	path := w.abs(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	for dir := filepath.Dir(path); dir != w.Root && strings.HasPrefix(dir, w.Root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// Files lists every regular file in the tree, skipping hidden entries.
func (w *LocalWorkspace) Files() ([]string, error) {
	var names []string
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(w.Root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if w.shouldIgnore(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// shouldIgnore checks if a path should be ignored
func (w *LocalWorkspace) shouldIgnore(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == MetaDir || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
