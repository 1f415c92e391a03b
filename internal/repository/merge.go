package repository

import (
	"fmt"

	"go.uber.org/zap"

	"gitlet/internal/commit"
	"gitlet/internal/errors"
	"gitlet/internal/merge"
)

type MergeOutcome int

const (
	// A two-parent commit was created.
	Merged MergeOutcome = iota
	// The given branch was checked out; the former branch is left as it was.
	FastForwarded
	// The given branch is already contained in the current one.
	AlreadyContained
)

func (o MergeOutcome) String() string {
	switch o {
	case Merged:
		return "merged"
	case FastForwarded:
		return "fast-forwarded"
	case AlreadyContained:
		return "already-contained"
	}
	return "unknown"
}

// MergeResult reports what a merge did. Conflicted lists the files written
// with conflict markers; the merge commit exists even when it is non-empty.
type MergeResult struct {
	Outcome    MergeOutcome
	Split      *commit.Commit
	Commit     *commit.Commit
	Conflicted []string
}

func (m *MergeResult) HasConflicts() bool {
	return len(m.Conflicted) > 0
}

// ConflictErr returns a merge-conflict error when the merge left
// conflicts, nil otherwise.
func (m *MergeResult) ConflictErr() error {
	if !m.HasConflicts() {
		return nil
	}
	return errors.MergeConflict(m.Conflicted)
}

// Message is the user-facing summary of the outcome, empty for a clean
// merge commit.
func (m *MergeResult) Message() string {
	switch m.Outcome {
	case FastForwarded:
		return "Current branch fast-forwarded."
	case AlreadyContained:
		return "Given branch is an ancestor of the current branch."
	}
	if m.HasConflicts() {
		return "Encountered a merge conflict."
	}
	return ""
}

// Merge merges branch given into the active branch.
func (r *Repository) Merge(given string) (*MergeResult, error) {
	empty, err := r.Stage.IsEmpty()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, errors.InvalidOperation("You have uncommitted changes.")
	}
	if !r.Branches.Exists(given) {
		return nil, errors.NotFound("A branch with that name does not exist.")
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	if current == given {
		return nil, errors.InvalidOperation("Cannot merge a branch with itself.")
	}

	cur, err := r.Head()
	if err != nil {
		return nil, err
	}
	other, err := r.Branches.Get(given)
	if err != nil {
		return nil, err
	}
	split, err := r.Commits.SplitPoint(cur, other)
	if err != nil {
		return nil, err
	}

	log := r.Logger.With(
		zap.String("current", current),
		zap.String("given", given),
		zap.String("split", split.ID))

	if split.ID == other.ID {
		log.Debug("Given branch already contained")
		return &MergeResult{Outcome: AlreadyContained, Split: split, Commit: cur}, nil
	}
	if split.ID == cur.ID {
		if err := r.CheckoutBranch(given); err != nil {
			return nil, err
		}
		log.Debug("Fast-forwarded by checking out given branch", zap.String("commit", other.ID))
		return &MergeResult{Outcome: FastForwarded, Split: split, Commit: other}, nil
	}

	if err := r.checkUntracked(other); err != nil {
		return nil, err
	}

	var conflicted []string
	for _, step := range merge.Plan(split, cur, other) {
		log.Debug("Merge step", zap.String("file", step.Name), zap.Stringer("action", step.Action))
		switch step.Action {
		case merge.TakeGiven, merge.AddGiven:
			if err := r.writeFromCommit(other, step.Name); err != nil {
				return nil, err
			}
			if err := r.Stage.Add(step.Name, other.BlobID(step.Name)); err != nil {
				return nil, err
			}
		case merge.Remove:
			if err := r.Stage.MarkRemoved(step.Name); err != nil {
				return nil, err
			}
			if err := r.Workspace.Remove(step.Name); err != nil {
				return nil, err
			}
		case merge.Conflict:
			if err := r.writeConflict(cur, other, step.Name); err != nil {
				return nil, err
			}
			conflicted = append(conflicted, step.Name)
		}
	}

	c, err := r.commitStaged(fmt.Sprintf("Merged %s into %s.", given, current), other)
	if err != nil {
		return nil, err
	}
	if len(conflicted) > 0 {
		log.Warn("Merge left conflicts", zap.Strings("files", conflicted))
	}
	return &MergeResult{Outcome: Merged, Split: split, Commit: c, Conflicted: conflicted}, nil
}

func (r *Repository) writeConflict(cur, other *commit.Commit, name string) error {
	side := func(c *commit.Commit) ([]byte, error) {
		if !c.Tracks(name) {
			return nil, nil
		}
		return r.Objects.Get(c.BlobID(name))
	}
	ours, err := side(cur)
	if err != nil {
		return err
	}
	theirs, err := side(other)
	if err != nil {
		return err
	}

	body := merge.ConflictBody(ours, theirs)
	id, err := r.Objects.Store(body)
	if err != nil {
		return err
	}
	if err := r.Workspace.Write(name, body); err != nil {
		return err
	}
	return r.Stage.Add(name, id)
}
