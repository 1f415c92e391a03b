package repository

import (
	"go.uber.org/zap"

	"gitlet/internal/commit"
	"gitlet/internal/errors"
)

// CheckoutFile overwrites the working copy of name with the version in
// commitID, or in the current commit when commitID is empty. Nothing is
// staged.
func (r *Repository) CheckoutFile(commitID, name string) error {
	var (
		c   *commit.Commit
		err error
	)
	if commitID == "" {
		c, err = r.Head()
	} else {
		c, err = r.Commits.Get(commitID)
	}
	if err != nil {
		return err
	}

	name, err = r.Workspace.Clean(name)
	if err != nil {
		return err
	}
	if !c.Tracks(name) {
		return errors.NotFound("File does not exist in that commit.")
	}
	return r.writeFromCommit(c, name)
}

func (r *Repository) writeFromCommit(c *commit.Commit, name string) error {
	data, err := r.Objects.Get(c.BlobID(name))
	if err != nil {
		return err
	}
	return r.Workspace.Write(name, data)
}

// CheckoutBranch switches to branch name, replacing the tracked files of
// the working tree.
func (r *Repository) CheckoutBranch(name string) error {
	if !r.Branches.Exists(name) {
		return errors.NotFound("No such branch exists.")
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return errors.InvalidOperation("No need to checkout the current branch.")
	}

	target, err := r.Branches.Get(name)
	if err != nil {
		return err
	}
	if err := r.restore(target); err != nil {
		return err
	}
	if err := r.Branches.SetHead(name); err != nil {
		return err
	}
	if err := r.Stage.Clear(); err != nil {
		return err
	}

	r.Logger.Debug("Checked out branch", zap.String("branch", name), zap.String("commit", target.ID))
	return nil
}

// Reset moves the active branch to commitID and checks out its files.
func (r *Repository) Reset(commitID string) error {
	target, err := r.Commits.Get(commitID)
	if err != nil {
		return err
	}
	return r.resetTo(target)
}

func (r *Repository) resetTo(target *commit.Commit) error {
	if err := r.restore(target); err != nil {
		return err
	}
	name, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if err := r.Branches.Set(name, target.ID); err != nil {
		return err
	}
	if err := r.Stage.Clear(); err != nil {
		return err
	}

	r.Logger.Debug("Reset branch", zap.String("branch", name), zap.String("commit", target.ID))
	return nil
}

// restore makes the working tree match target: files tracked only by the
// current commit are deleted and every file of target is written. It
// fails without touching anything if an untracked file would be
// overwritten.
func (r *Repository) restore(target *commit.Commit) error {
	if err := r.checkUntracked(target); err != nil {
		return err
	}

	head, err := r.Head()
	if err != nil {
		return err
	}
	for _, name := range head.Names() {
		if !target.Tracks(name) {
			if err := r.Workspace.Remove(name); err != nil {
				return err
			}
		}
	}
	for _, name := range target.Names() {
		if err := r.writeFromCommit(target, name); err != nil {
			return err
		}
	}
	return nil
}

// checkUntracked fails with a dangerous-overwrite error if any untracked
// working file is tracked by target.
func (r *Repository) checkUntracked(target *commit.Commit) error {
	untracked, err := r.untrackedFiles()
	if err != nil {
		return err
	}
	var inTheWay []string
	for _, name := range untracked {
		if target.Tracks(name) {
			inTheWay = append(inTheWay, name)
		}
	}
	if len(inTheWay) > 0 {
		return errors.DangerousOverwrite(inTheWay)
	}
	return nil
}

// untrackedFiles lists working files that are neither tracked nor staged
// for addition, plus files staged for removal that are present again.
func (r *Repository) untrackedFiles() ([]string, error) {
	files, err := r.Workspace.Files()
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

	var out []string
	for _, name := range files {
		removed, err := r.Stage.IsStagedForRemoval(name)
		if err != nil {
			return nil, err
		}
		_, staged := additions[name]
		if (!head.Tracks(name) && !staged) || removed {
			out = append(out, name)
		}
	}
	return out, nil
}

// CreateBranch points a new branch at the current commit.
func (r *Repository) CreateBranch(name string) error {
	if r.Branches.Exists(name) {
		return errors.InvalidOperation("A branch with that name already exists.")
	}
	head, err := r.Head()
	if err != nil {
		return err
	}
	if err := r.Branches.Set(name, head.ID); err != nil {
		return err
	}
	r.Logger.Debug("Created branch", zap.String("branch", name), zap.String("commit", head.ID))
	return nil
}

// RemoveBranch deletes the pointer only; commits stay.
func (r *Repository) RemoveBranch(name string) error {
	if err := r.Branches.Remove(name); err != nil {
		return err
	}
	r.Logger.Debug("Removed branch", zap.String("branch", name))
	return nil
}

// ListBranches returns every branch name, sorted.
func (r *Repository) ListBranches() ([]string, error) {
	return r.Branches.List()
}
