package repository

import (
	"gitlet/internal/commit"
	"gitlet/internal/diff"
	"gitlet/internal/errors"
	shared "gitlet/shared/types"
	"gitlet/shared/utils"
)

// Log returns the first-parent history of the current commit, newest
// first.
func (r *Repository) Log() ([]*commit.Commit, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	return r.Commits.History(head)
}

// GlobalLog returns every commit ever made, in id order.
func (r *Repository) GlobalLog() ([]*commit.Commit, error) {
	return r.Commits.All()
}

// Find returns the ids of all commits with exactly message.
func (r *Repository) Find(message string) ([]string, error) {
	all, err := r.Commits.All()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range all {
		if c.Message == message {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil, errors.NotFound("Found no commit with that message.")
	}
	return ids, nil
}

// Status compares the working tree against the current commit and the
// staging area.
func (r *Repository) Status() (*shared.Status, error) {
	branches, err := r.Branches.List()
	if err != nil {
		return nil, err
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	additions, err := r.Stage.Additions()
	if err != nil {
		return nil, err
	}
	removals, err := r.Stage.Removals()
	if err != nil {
		return nil, err
	}
	untracked, err := r.untrackedFiles()
	if err != nil {
		return nil, err
	}
	files, err := r.Workspace.Files()
	if err != nil {
		return nil, err
	}

	st := &shared.Status{
		Branches:  []shared.BranchStatus{},
		Staged:    []string{},
		Removed:   []string{},
		Modified:  []shared.Modification{},
		Untracked: untracked,
	}
	if st.Untracked == nil {
		st.Untracked = []string{}
	}
	for _, name := range branches {
		st.Branches = append(st.Branches, shared.BranchStatus{Name: name, Current: name == current})
	}

	removed := make(map[string]bool, len(removals))
	for _, name := range removals {
		removed[name] = true
		if !r.Workspace.Exists(name) {
			st.Removed = append(st.Removed, name)
		}
	}

	candidates := make(map[string]bool)
	for _, name := range files {
		candidates[name] = true
	}
	for name := range additions {
		candidates[name] = true
	}
	for name := range head.Files {
		candidates[name] = true
	}

	for _, name := range utils.SortedKeys(candidates) {
		stagedID, staged := additions[name]
		tracked := head.Tracks(name)
		exists := r.Workspace.Exists(name)

		var workingID string
		if exists {
			data, err := r.Workspace.Read(name)
			if err != nil {
				return nil, err
			}
			workingID = utils.HashContent(data)
		}

		switch {
		case staged && !exists:
			st.Modified = append(st.Modified, shared.Modification{Name: name, Kind: shared.Deleted})
		case staged && workingID != stagedID:
			st.Modified = append(st.Modified, shared.Modification{Name: name, Kind: shared.Modified})
		case staged:
			st.Staged = append(st.Staged, name)
		case tracked && !exists && !removed[name]:
			st.Modified = append(st.Modified, shared.Modification{Name: name, Kind: shared.Deleted})
		case tracked && exists && !removed[name] && workingID != head.BlobID(name):
			st.Modified = append(st.Modified, shared.Modification{Name: name, Kind: shared.Modified})
		}
	}
	return st, nil
}

// Diff compares the current commit's version of each name with its
// working copy. With no names it covers every tracked file that changed.
func (r *Repository) Diff(names ...string) ([]*diff.DiffResult, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		names = head.Names()
	}

	var results []*diff.DiffResult
	for _, raw := range names {
		name, err := r.Workspace.Clean(raw)
		if err != nil {
			return nil, err
		}
		tracked := head.Tracks(name)
		exists := r.Workspace.Exists(name)
		if !tracked && !exists {
			return nil, errors.NotFound("File does not exist.")
		}

		var before, after []byte
		if tracked {
			if before, err = r.Objects.Get(head.BlobID(name)); err != nil {
				return nil, err
			}
		}
		if exists {
			if after, err = r.Workspace.Read(name); err != nil {
				return nil, err
			}
		}

		res, err := r.diffs.Diff(name, before, after)
		if err != nil {
			return nil, err
		}
		if !res.Empty() {
			results = append(results, res)
		}
	}
	return results, nil
}
