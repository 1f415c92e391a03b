package branch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlet/internal/commit"
	"gitlet/internal/errors"
	"gitlet/shared/utils"
)

// Registry keeps one file per branch under dir, holding the branch's
// commit id, plus a HEAD file naming the active branch.
type Registry struct {
	dir      string
	headPath string
	commits  *commit.Store
}

func NewRegistry(dir, headPath string, commits *commit.Store) (*Registry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating branch directory: %w", err)
	}
	return &Registry{dir: dir, headPath: headPath, commits: commits}, nil
}

// ValidateName rejects names that cannot be stored as a path below the
// branch directory. Slashes are allowed for remote-tracking branches.
func ValidateName(name string) error {
	if name == "" {
		return errors.InvalidOperation("A branch name cannot be empty.")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "\\") {
		return errors.InvalidOperation(fmt.Sprintf("Invalid branch name %q.", name))
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." || strings.HasPrefix(part, ".") {
			return errors.InvalidOperation(fmt.Sprintf("Invalid branch name %q.", name))
		}
	}
	return nil
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.dir, filepath.FromSlash(name))
}

// CheckPath reports whether name can be stored without colliding with
// the path of another branch: no leading part of name may be a branch, and
// name itself may not be a directory of branches.
func (r *Registry) CheckPath(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	parts := strings.Split(name, "/")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], "/")
		if info, err := os.Stat(r.path(prefix)); err == nil && !info.IsDir() {
			return errors.InvalidOperation(fmt.Sprintf("Branch %s conflicts with existing branch %s.", name, prefix))
		}
	}
	if info, err := os.Stat(r.path(name)); err == nil && info.IsDir() {
		return errors.InvalidOperation(fmt.Sprintf("Branch %s conflicts with existing branches under %s/.", name, name))
	}
	return nil
}

// Set points name at commitID, creating the branch if needed.
func (r *Registry) Set(name, commitID string) error {
	if err := r.CheckPath(name); err != nil {
		return err
	}
	id, err := r.commits.Resolve(commitID)
	if err != nil {
		return err
	}
	if err := utils.SafeWrite(r.path(name), []byte(id), 0644); err != nil {
		return fmt.Errorf("writing branch %s: %w", name, err)
	}
	return nil
}

func (r *Registry) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(r.path(name))
	return err == nil && !info.IsDir()
}

// ID returns the commit id name points at.
func (r *Registry) ID(name string) (string, error) {
	if !r.Exists(name) {
		return "", errors.NotFound("No such branch exists.")
	}
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		return "", fmt.Errorf("reading branch %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Get returns the commit name points at.
func (r *Registry) Get(name string) (*commit.Commit, error) {
	id, err := r.ID(name)
	if err != nil {
		return nil, err
	}
	return r.commits.Get(id)
}

// Remove deletes a branch. The active branch cannot be removed.
func (r *Registry) Remove(name string) error {
	if !r.Exists(name) {
		return errors.NotFound("A branch with that name does not exist.")
	}
	current, err := r.Current()
	if err != nil {
		return err
	}
	if current == name {
		return errors.InvalidOperation("Cannot remove the current branch.")
	}
	if err := os.Remove(r.path(name)); err != nil {
		return fmt.Errorf("removing branch %s: %w", name, err)
	}
	r.pruneEmptyDirs(filepath.Dir(r.path(name)))
	return nil
}

func (r *Registry) pruneEmptyDirs(dir string) {
	for dir != r.dir && strings.HasPrefix(dir, r.dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// List returns every branch name in ascending order.
func (r *Registry) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Current returns the name of the active branch.
func (r *Registry) Current() (string, error) {
	data, err := os.ReadFile(r.headPath)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SetHead makes name the active branch.
func (r *Registry) SetHead(name string) error {
	if !r.Exists(name) {
		return errors.NotFound("No such branch exists.")
	}
	if err := utils.SafeWrite(r.headPath, []byte(name), 0644); err != nil {
		return fmt.Errorf("writing HEAD: %w", err)
	}
	return nil
}

// Head returns the commit of the active branch.
func (r *Registry) Head() (*commit.Commit, error) {
	name, err := r.Current()
	if err != nil {
		return nil, err
	}
	return r.Get(name)
}
