package remote

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"gitlet/internal/branch"
	"gitlet/internal/commit"
	"gitlet/internal/content"
	"gitlet/internal/errors"
	"gitlet/internal/storage"
)

const remotePrefix = "remote"

// Layout of a repository's metadata directory.
const (
	BlobsDir    = "objects/blobs"
	CommitsDir  = "objects/commits"
	BranchesDir = "branches"
	HeadFile    = "HEAD"
)

// Endpoint is the object, commit and branch storage of one repository.
type Endpoint struct {
	Dir      string
	Objects  *content.FileStore
	Commits  *commit.Store
	Branches *branch.Registry
}

// OpenEndpoint opens the stores under a repository's metadata directory.
// It does not touch the staging database, so it is safe to use on a
// repository that another handle has open.
func OpenEndpoint(gitletDir string, opts content.Options) (*Endpoint, error) {
	info, err := os.Stat(gitletDir)
	if err != nil || !info.IsDir() {
		return nil, errors.NotFound("Remote directory not found.")
	}

	objects, err := content.NewFileStore(filepath.Join(gitletDir, BlobsDir), opts)
	if err != nil {
		return nil, err
	}
	commits, err := commit.NewStore(filepath.Join(gitletDir, CommitsDir), opts.CacheSize)
	if err != nil {
		return nil, err
	}
	branches, err := branch.NewRegistry(filepath.Join(gitletDir, BranchesDir), filepath.Join(gitletDir, HeadFile), commits)
	if err != nil {
		return nil, err
	}
	return &Endpoint{Dir: gitletDir, Objects: objects, Commits: commits, Branches: branches}, nil
}

// CopyObject copies one blob between endpoints.
func CopyObject(from, to *Endpoint, id string) error {
	return content.Copy(from.Objects, to.Objects, id)
}

// CopyCommit copies a commit and every blob it references. The commit's
// parents must already be present in to.
func CopyCommit(from, to *Endpoint, id string) error {
	c, err := from.Commits.Get(id)
	if err != nil {
		return err
	}
	for _, name := range c.Names() {
		if err := CopyObject(from, to, c.Files[name]); err != nil {
			return fmt.Errorf("copying %s of commit %s: %w", name, c.ID, err)
		}
	}
	return to.Commits.Put(c)
}

// CopyHistory copies tip and every ancestor of it that to lacks, parents
// before children. It returns the number of commits copied.
func CopyHistory(from, to *Endpoint, tip string) (int, error) {
	type frame struct {
		c        *commit.Commit
		expanded bool
	}

	start, err := from.Commits.Get(tip)
	if err != nil {
		return 0, err
	}

	copied := 0
	done := make(map[string]bool)
	stack := []frame{{c: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if done[top.c.ID] || to.Commits.Exists(top.c.ID) {
			done[top.c.ID] = true
			stack = stack[:len(stack)-1]
			continue
		}
		if !top.expanded {
			top.expanded = true
			parents := top.c.Parents()
			for i := len(parents) - 1; i >= 0; i-- {
				if done[parents[i]] {
					continue
				}
				p, err := from.Commits.Get(parents[i])
				if err != nil {
					return copied, err
				}
				stack = append(stack, frame{c: p})
			}
			continue
		}
		if err := CopyCommit(from, to, top.c.ID); err != nil {
			return copied, err
		}
		done[top.c.ID] = true
		copied++
		stack = stack[:len(stack)-1]
	}
	return copied, nil
}

// Remote is a named pointer at another repository's metadata directory.
type Remote struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (r *Remote) GetID() string {
	return r.Name
}

// Registry stores remotes in the repository's badger DB.
type Registry struct {
	store *storage.BadgerStore
}

func NewRegistry(db *badger.DB) *Registry {
	return &Registry{store: storage.NewBadgerStore(db, remotePrefix)}
}

func (r *Registry) Add(name, path string) error {
	if err := branch.ValidateName(name); err != nil {
		return err
	}
	if ok, err := r.store.Has(name); err != nil {
		return err
	} else if ok {
		return errors.InvalidOperation("A remote with that name already exists.")
	}
	return r.store.Create(&Remote{Name: name, Path: filepath.Clean(path)})
}

func (r *Registry) Remove(name string) error {
	if err := r.store.Delete(name); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NotFound("A remote with that name does not exist.")
		}
		return err
	}
	return nil
}

func (r *Registry) Get(name string) (*Remote, error) {
	var rem Remote
	if err := r.store.Get(name, &rem); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFound("A remote with that name does not exist.")
		}
		return nil, err
	}
	return &rem, nil
}

func (r *Registry) List() ([]Remote, error) {
	var all []Remote
	if err := r.store.List(&all); err != nil {
		return nil, err
	}
	return all, nil
}
