package repository

import (
	"go.uber.org/zap"

	"gitlet/internal/commit"
	"gitlet/internal/errors"
)

// Add stages the working copy of name. Staging content identical to the
// current commit's version cancels any pending change for name instead.
func (r *Repository) Add(name string) error {
	name, err := r.Workspace.Clean(name)
	if err != nil {
		return err
	}
	if !r.Workspace.Exists(name) {
		return errors.NotFound("File does not exist.")
	}

	data, err := r.Workspace.Read(name)
	if err != nil {
		return err
	}
	id, err := r.Objects.Store(data)
	if err != nil {
		return err
	}
	head, err := r.Head()
	if err != nil {
		return err
	}

	if head.Tracks(name) && head.BlobID(name) == id {
		if err := r.Stage.Unadd(name); err != nil {
			return err
		}
		r.Logger.Debug("Unchanged file, nothing staged", zap.String("file", name))
	} else {
		if err := r.Stage.Add(name, id); err != nil {
			return err
		}
		r.Logger.Debug("Staged file", zap.String("file", name), zap.String("blob", id))
	}
	return r.Stage.Unremove(name)
}

// Remove unstages name and, when the current commit tracks it, stages its
// removal and deletes the working copy.
func (r *Repository) Remove(name string) error {
	name, err := r.Workspace.Clean(name)
	if err != nil {
		return err
	}

	staged, err := r.Stage.IsStagedForAddition(name)
	if err != nil {
		return err
	}
	head, err := r.Head()
	if err != nil {
		return err
	}
	tracked := head.Tracks(name)

	if !staged && !tracked {
		return errors.InvalidOperation("No reason to remove the file.")
	}
	if staged {
		if err := r.Stage.Unadd(name); err != nil {
			return err
		}
	}
	if tracked {
		if err := r.Stage.MarkRemoved(name); err != nil {
			return err
		}
		if err := r.Workspace.Remove(name); err != nil {
			return err
		}
	}
	r.Logger.Debug("Removed file", zap.String("file", name), zap.Bool("tracked", tracked))
	return nil
}

// Commit records the staging area as a new commit on the active branch.
func (r *Repository) Commit(message string) (*commit.Commit, error) {
	if message == "" {
		return nil, errors.InvalidOperation("Please enter a commit message.")
	}
	empty, err := r.Stage.IsEmpty()
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, errors.InvalidOperation("No changes added to the commit.")
	}
	return r.commitStaged(message, nil)
}

func (r *Repository) commitStaged(message string, mergeParent *commit.Commit) (*commit.Commit, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	name, err := r.CurrentBranch()
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

	c, err := r.Commits.Create(head, mergeParent, message, additions, removals)
	if err != nil {
		return nil, err
	}
	if err := r.Branches.Set(name, c.ID); err != nil {
		return nil, err
	}
	if err := r.Stage.Clear(); err != nil {
		return nil, err
	}

	r.Logger.Debug("Created commit",
		zap.String("commit", c.ID),
		zap.String("branch", name),
		zap.Int("added", len(additions)),
		zap.Int("removed", len(removals)))
	return c, nil
}
