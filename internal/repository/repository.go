package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"gitlet/internal/branch"
	"gitlet/internal/commit"
	"gitlet/internal/config"
	"gitlet/internal/content"
	"gitlet/internal/diff"
	"gitlet/internal/errors"
	"gitlet/internal/logging"
	"gitlet/internal/remote"
	"gitlet/internal/stage"
	"gitlet/internal/storage"
	"gitlet/internal/workspace"
)

const stageDir = "stage"

// Repository is an open gitlet repository: the working tree plus
// everything under its .gitlet directory. A Repository is not safe for
// concurrent use, and nothing guards against two processes mutating the
// same repository.
type Repository struct {
	Root string
	Dir  string

	Config    *config.Config
	DB        *badger.DB
	Objects   *content.FileStore
	Commits   *commit.Store
	Branches  *branch.Registry
	Stage     *stage.Area
	Remotes   *remote.Registry
	Workspace *workspace.LocalWorkspace
	Logger    *zap.Logger

	local *remote.Endpoint
	diffs *diff.Engine
}

// Options configures how a repository is opened. The zero value is usable.
type Options struct {
	Logger *logging.Logger
	// Config overrides the layered configuration when set.
	Config *config.Config
	// Now is the clock used for commit timestamps.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Init creates a repository in root with the initial commit on the
// default branch.
func Init(root string, opts Options) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	dir := filepath.Join(absRoot, workspace.MetaDir)
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.InvalidOperation("A Gitlet version-control system already exists in the current directory.")
	}

	dirs := []string{
		filepath.Join(dir, remote.BlobsDir),
		filepath.Join(dir, remote.CommitsDir),
		filepath.Join(dir, remote.BranchesDir),
		filepath.Join(dir, stageDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	identity, err := config.WriteRepoFile(dir, opts.now())
	if err != nil {
		return nil, err
	}
	if opts.Config != nil {
		cfg := *opts.Config
		cfg.Repository = *identity
		opts.Config = &cfg
	}

	r, err := open(absRoot, opts)
	if err != nil {
		return nil, err
	}

	initial, err := r.Commits.Init()
	if err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Branches.Set(r.Config.DefaultBranch, initial.ID); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Branches.SetHead(r.Config.DefaultBranch); err != nil {
		r.Close()
		return nil, err
	}

	r.Logger.Info("Initialized repository", zap.String("branch", r.Config.DefaultBranch))
	return r, nil
}

// Open opens the repository containing path.
func Open(path string, opts Options) (*Repository, error) {
	root, err := workspace.FindRoot(path)
	if err != nil {
		return nil, err
	}
	return open(root, opts)
}

func open(root string, opts Options) (*Repository, error) {
	dir := filepath.Join(root, workspace.MetaDir)

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(dir)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	objectOpts := content.Options{
		CacheSize: cfg.Objects.CacheSize,
		Compression: content.CompressionOptions{
			MinSize: cfg.Objects.CompressMinSize,
			Level:   cfg.Objects.CompressLevel,
		},
	}
	local, err := remote.OpenEndpoint(dir, objectOpts)
	if err != nil {
		return nil, errors.Internal(err, "opening object stores")
	}
	local.Commits.Now = opts.now

	ws, err := workspace.NewLocalWorkspace(root)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(filepath.Join(dir, stageDir))
	if err != nil {
		return nil, errors.Internal(err, "opening staging area")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Repository{
		Root:      root,
		Dir:       dir,
		Config:    cfg,
		DB:        db,
		Objects:   local.Objects,
		Commits:   local.Commits,
		Branches:  local.Branches,
		Stage:     stage.NewArea(db),
		Remotes:   remote.NewRegistry(db),
		Workspace: ws,
		Logger:    logger.ForRepository(cfg.Repository.ID, root),
		local:     local,
		diffs:     diff.NewEngine(3),
	}, nil
}

func (r *Repository) Close() error {
	if r.DB == nil {
		return nil
	}
	err := r.DB.Close()
	r.DB = nil
	if err != nil {
		return errors.Internal(err, "closing staging area")
	}
	return nil
}

// Head returns the commit of the active branch.
func (r *Repository) Head() (*commit.Commit, error) {
	return r.Branches.Head()
}

// CurrentBranch returns the name of the active branch.
func (r *Repository) CurrentBranch() (string, error) {
	return r.Branches.Current()
}
