package commit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"gitlet/internal/errors"
	"gitlet/shared/utils"
)

const (
	idLength         = 64
	minPrefixLen     = 2
	defaultCacheSize = 1024
)

const noSuchCommit = "No commit with that id exists."

// Store persists commits as JSON files fanned out by the first two
// characters of their id.
type Store struct {
	root  string
	cache *lru.Cache[string, *Commit]

	// Now is the clock used for new commits.
	Now func() time.Time
}

// NewStore opens the commit directory root, keeping up to cacheSize
// decoded commits in memory.
func NewStore(root string, cacheSize int) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating commit directory: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *Commit](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating commit cache: %w", err)
	}
	return &Store{
		root:  root,
		cache: cache,
		Now:   time.Now,
	}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id[:2], id[2:])
}

// Root returns the fixed initial commit without persisting it.
func Root() *Commit {
	return &Commit{
		ID:        RootID,
		Message:   RootMessage,
		Timestamp: 0,
		Files:     map[string]string{},
	}
}

// Init persists the root commit.
func (s *Store) Init() (*Commit, error) {
	root := Root()
	if err := s.Put(root); err != nil {
		return nil, err
	}
	return root, nil
}

// Create builds a commit on top of parent: parent's files, overwritten by
// addition, minus every name in removal. mergeParent may be nil.
func (s *Store) Create(parent, mergeParent *Commit, message string, addition map[string]string, removal []string) (*Commit, error) {
	if parent == nil {
		return nil, errors.InvalidOperation("a commit needs a parent")
	}

	files := make(map[string]string, len(parent.Files)+len(addition))
	for name, id := range parent.Files {
		files[name] = id
	}
	for name, id := range addition {
		files[name] = id
	}
	for _, name := range removal {
		delete(files, name)
	}

	c := &Commit{
		Message:   message,
		Timestamp: s.Now().UnixMilli(),
		Files:     files,
		Parent:    parent.ID,
	}
	if mergeParent != nil {
		c.MergeParent = mergeParent.ID
	}

	id, err := computeID(c.Message, c.Timestamp, c.Files, c.Parent, c.MergeParent)
	if err != nil {
		return nil, fmt.Errorf("hashing commit: %w", err)
	}
	c.ID = id

	if err := s.Put(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Put writes c if no commit with its id is stored yet. Parents must
// already be present.
func (s *Store) Put(c *Commit) error {
	if len(c.ID) != idLength || !utils.IsHex(c.ID) {
		return fmt.Errorf("invalid commit id %q", c.ID)
	}
	for _, p := range c.Parents() {
		if !s.has(p) {
			return errors.NotFound(fmt.Sprintf("parent commit %s is not stored", p))
		}
	}
	if s.has(c.ID) {
		return nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling commit: %w", err)
	}
	if err := utils.SafeWrite(s.path(c.ID), data, 0444); err != nil {
		return fmt.Errorf("writing commit %s: %w", c.ID, err)
	}
	s.cache.Add(c.ID, c)
	return nil
}

func (s *Store) has(id string) bool {
	if s.cache.Contains(id) {
		return true
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Resolve expands an abbreviated id. Exactly one stored commit must start
// with prefix. An unknown full id is NOT_FOUND; an abbreviation matching no
// commit or several is AMBIGUOUS_ABBREVIATION.
func (s *Store) Resolve(prefix string) (string, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < minPrefixLen || len(prefix) > idLength || !utils.IsHex(prefix) {
		return "", errors.Ambiguous(noSuchCommit)
	}

	if len(prefix) == idLength {
		if s.has(prefix) {
			return prefix, nil
		}
		return "", errors.NotFound(noSuchCommit)
	}

	entries, err := os.ReadDir(filepath.Join(s.root, prefix[:2]))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Ambiguous(noSuchCommit)
		}
		return "", fmt.Errorf("reading commit directory: %w", err)
	}

	var matches []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix[2:]) && !strings.HasPrefix(e.Name(), ".") {
			matches = append(matches, prefix[:2]+e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return "", errors.Ambiguous(noSuchCommit)
	case 1:
		return matches[0], nil
	default:
		return "", errors.Ambiguous(fmt.Sprintf("Commit id %s is ambiguous.", prefix)).
			WithDetail("matches", matches)
	}
}

// Get loads a commit by full or abbreviated id.
func (s *Store) Get(prefix string) (*Commit, error) {
	if c, ok := s.cache.Get(prefix); ok {
		return c, nil
	}

	id, err := s.Resolve(prefix)
	if err != nil {
		return nil, err
	}
	if c, ok := s.cache.Get(id); ok {
		return c, nil
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", id, err)
	}
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding commit %s: %w", id, err)
	}
	if c.Files == nil {
		c.Files = map[string]string{}
	}
	s.cache.Add(id, &c)
	return &c, nil
}

// Exists reports whether prefix names exactly one stored commit.
func (s *Store) Exists(prefix string) bool {
	_, err := s.Resolve(prefix)
	return err == nil
}

// IDs returns every stored commit id, sorted.
func (s *Store) IDs() ([]string, error) {
	var ids []string
	fanout, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading commit directory: %w", err)
	}
	for _, dir := range fanout {
		if !dir.IsDir() || len(dir.Name()) != 2 {
			continue
		}
		leaves, err := os.ReadDir(filepath.Join(s.root, dir.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading commit directory: %w", err)
		}
		for _, leaf := range leaves {
			id := dir.Name() + leaf.Name()
			if len(id) == idLength && utils.IsHex(id) {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// All loads every stored commit in id order.
func (s *Store) All() ([]*Commit, error) {
	ids, err := s.IDs()
	if err != nil {
		return nil, err
	}
	out := make([]*Commit, 0, len(ids))
	for _, id := range ids {
		c, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Ancestors returns the ids of c and everything reachable from it through
// either parent, walking breadth first.
func (s *Store) Ancestors(c *Commit) (map[string]bool, error) {
	seen := map[string]bool{c.ID: true}
	queue := []*Commit{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.IsRoot() {
			continue
		}
		for _, p := range cur.Parents() {
			if seen[p] {
				continue
			}
			parent, err := s.Get(p)
			if err != nil {
				return nil, fmt.Errorf("loading ancestor %s: %w", p, err)
			}
			seen[p] = true
			queue = append(queue, parent)
		}
	}
	return seen, nil
}

// SplitPoint returns the merge base of c1 and c2: the first commit on c2's
// first-parent chain that is an ancestor of c1. Merge parents on c2's side
// are never followed, so a nested merge can yield an older base than the
// true lowest common ancestor.
func (s *Store) SplitPoint(c1, c2 *Commit) (*Commit, error) {
	if c1.ID == c2.ID {
		return c1, nil
	}

	ancestors, err := s.Ancestors(c1)
	if err != nil {
		return nil, err
	}
	for cur := c2; ; {
		if ancestors[cur.ID] {
			return cur, nil
		}
		if cur.Parent == "" {
			return nil, fmt.Errorf("commits %s and %s share no history", c1.ID, c2.ID)
		}
		if cur, err = s.Get(cur.Parent); err != nil {
			return nil, err
		}
	}
}

// History follows first parents from c back to the root.
func (s *Store) History(c *Commit) ([]*Commit, error) {
	var out []*Commit
	for cur := c; ; {
		out = append(out, cur)
		if cur.Parent == "" {
			return out, nil
		}
		next, err := s.Get(cur.Parent)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}
