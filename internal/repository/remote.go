package repository

import (
	"path/filepath"

	"go.uber.org/zap"

	"gitlet/internal/content"
	"gitlet/internal/errors"
	"gitlet/internal/remote"
)

// AddRemote registers another repository by the path of its .gitlet
// directory.
func (r *Repository) AddRemote(name, path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Root, path)
	}
	if err := r.Remotes.Add(name, path); err != nil {
		return err
	}
	r.Logger.Debug("Added remote", zap.String("remote", name), zap.String("path", path))
	return nil
}

func (r *Repository) RemoveRemote(name string) error {
	if err := r.Remotes.Remove(name); err != nil {
		return err
	}
	r.Logger.Debug("Removed remote", zap.String("remote", name))
	return nil
}

func (r *Repository) ListRemotes() ([]remote.Remote, error) {
	return r.Remotes.List()
}

func (r *Repository) openRemote(name string) (*remote.Endpoint, error) {
	rem, err := r.Remotes.Get(name)
	if err != nil {
		return nil, err
	}
	return remote.OpenEndpoint(rem.Path, content.Options{
		CacheSize: r.Config.Objects.CacheSize,
		Compression: content.CompressionOptions{
			MinSize: r.Config.Objects.CompressMinSize,
			Level:   r.Config.Objects.CompressLevel,
		},
	})
}

// TrackingBranch is the local name under which branch of remote is
// fetched.
func TrackingBranch(remoteName, branchName string) string {
	return remoteName + "/" + branchName
}

// Fetch copies the history of branch from remote and points the local
// branch <remote>/<branch> at it.
func (r *Repository) Fetch(remoteName, branchName string) (string, error) {
	ep, err := r.openRemote(remoteName)
	if err != nil {
		return "", err
	}
	if !ep.Branches.Exists(branchName) {
		return "", errors.NotFound("That remote does not have that branch.")
	}
	tip, err := ep.Branches.ID(branchName)
	if err != nil {
		return "", err
	}
	tracking := TrackingBranch(remoteName, branchName)
	if err := r.Branches.CheckPath(tracking); err != nil {
		return "", err
	}

	n, err := remote.CopyHistory(ep, r.local, tip)
	if err != nil {
		return "", err
	}
	if err := r.Branches.Set(tracking, tip); err != nil {
		return "", err
	}

	r.Logger.Debug("Fetched",
		zap.String("remote", remoteName),
		zap.String("branch", tracking),
		zap.String("commit", tip),
		zap.Int("copied", n))
	return tracking, nil
}

// Push copies the current history to remote and advances its branch to
// the current commit. The remote branch must already be in our history.
func (r *Repository) Push(remoteName, branchName string) error {
	ep, err := r.openRemote(remoteName)
	if err != nil {
		return err
	}
	head, err := r.Head()
	if err != nil {
		return err
	}

	if err := ep.Branches.CheckPath(branchName); err != nil {
		return err
	}
	if ep.Branches.Exists(branchName) {
		remoteTip, err := ep.Branches.ID(branchName)
		if err != nil {
			return err
		}
		ancestors, err := r.Commits.Ancestors(head)
		if err != nil {
			return err
		}
		if !ancestors[remoteTip] {
			return errors.InvalidOperation("Please pull down remote changes before pushing.")
		}
	}

	n, err := remote.CopyHistory(r.local, ep, head.ID)
	if err != nil {
		return err
	}
	if err := ep.Branches.Set(branchName, head.ID); err != nil {
		return err
	}

	r.Logger.Debug("Pushed",
		zap.String("remote", remoteName),
		zap.String("branch", branchName),
		zap.String("commit", head.ID),
		zap.Int("copied", n))
	return nil
}

// Pull fetches branch from remote and merges it into the active branch.
func (r *Repository) Pull(remoteName, branchName string) (*MergeResult, error) {
	tracking, err := r.Fetch(remoteName, branchName)
	if err != nil {
		return nil, err
	}
	return r.Merge(tracking)
}
