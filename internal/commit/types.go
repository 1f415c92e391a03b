package commit

import (
	"encoding/json"
	"strconv"

	"gitlet/shared/utils"
)

const (
	RootMessage = "initial commit"

	// RootID is the id of the commit every repository starts from. It only
	// depends on the root's fixed message, timestamp and empty file map.
	RootID = "631cbaf0c7958d1b9e5d931ea498a9103420f1b6eb251d28b46f9c5a6bffb0e9"
)

// Commit is an immutable snapshot of the tracked file set. Parents are
// referenced by id and resolved through a Store.
type Commit struct {
	ID          string            `json:"id"`
	Message     string            `json:"message"`
	Timestamp   int64             `json:"timestamp"` // unix milliseconds
	Files       map[string]string `json:"files"`     // file name -> blob id
	Parent      string            `json:"parent,omitempty"`
	MergeParent string            `json:"merge_parent,omitempty"`
}

func (c *Commit) GetID() string {
	return c.ID
}

// computeID hashes everything that identifies a commit. Files must be
// non-nil so the empty map encodes as {}.
func computeID(message string, timestamp int64, files map[string]string, parent, mergeParent string) (string, error) {
	encoded, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return utils.HashStrings(
		message,
		strconv.FormatInt(timestamp, 10),
		string(encoded),
		parent,
		mergeParent,
	), nil
}

func (c *Commit) Tracks(name string) bool {
	_, ok := c.Files[name]
	return ok
}

// BlobID returns the blob id tracked for name, or "".
func (c *Commit) BlobID(name string) string {
	return c.Files[name]
}

// Names returns the tracked file names, sorted.
func (c *Commit) Names() []string {
	return utils.SortedKeys(c.Files)
}

func (c *Commit) IsRoot() bool {
	return c.ID == RootID
}

func (c *Commit) IsMerge() bool {
	return c.MergeParent != ""
}

// Parents returns the parent ids, first parent first.
func (c *Commit) Parents() []string {
	var out []string
	if c.Parent != "" {
		out = append(out, c.Parent)
	}
	if c.MergeParent != "" {
		out = append(out, c.MergeParent)
	}
	return out
}
