package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlet/internal/commit"
	"gitlet/internal/config"
	"gitlet/internal/errors"
	"gitlet/internal/logging"
	"gitlet/internal/repository"
	"gitlet/internal/workspace"
	shared "gitlet/shared/types"
)

var logger = logging.Nop()

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "Gitlet is a small version-control system",
	Long: `Gitlet keeps snapshots of a directory as commits, with branches,
a staging area, three-way merges and remotes on the local filesystem.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.NewLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
}

// loadConfig reads the layered configuration of the enclosing repository,
// or the user-level configuration outside of one.
func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	root, err := workspace.FindRoot(dir)
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(filepath.Join(root, workspace.MetaDir))
}

func openRepo() (*repository.Repository, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return repository.Open(dir, repository.Options{Logger: logger})
}

// withRepo opens the repository around fn and closes it afterwards.
func withRepo(fn func(r *repository.Repository, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer func() {
			if err := r.Close(); err != nil {
				logger.Warn("closing repository", zap.Error(err))
			}
		}()
		return fn(r, args)
	}
}

// operands rejects anything but exactly n positional arguments.
func operands(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.InvalidOperation("Incorrect operands.")
		}
		return nil
	}
}

func init() {
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a repository in the current directory",
		Args:  operands(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			r, err := repository.Init(dir, repository.Options{Logger: logger})
			if err != nil {
				return err
			}
			return r.Close()
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add <file>",
		Short: "Stage the current contents of a file",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.Add(args[0])
		}),
	}

	var commitCmd = &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged changes",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			_, err := r.Commit(args[0])
			return err
		}),
	}

	var rmCmd = &cobra.Command{
		Use:   "rm <file>",
		Short: "Unstage a file, or stage a tracked file for removal",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.Remove(args[0])
		}),
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show the history of the current commit",
		Args:  operands(0),
	}
	logJSON := logCmd.Flags().Bool("json", false, "print entries as JSON")
	logCmd.RunE = withRepo(func(r *repository.Repository, args []string) error {
		commits, err := r.Log()
		if err != nil {
			return err
		}
		return printCommits(commits, *logJSON)
	})

	var globalLogCmd = &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  operands(0),
	}
	globalJSON := globalLogCmd.Flags().Bool("json", false, "print entries as JSON")
	globalLogCmd.RunE = withRepo(func(r *repository.Repository, args []string) error {
		commits, err := r.GlobalLog()
		if err != nil {
			return err
		}
		return printCommits(commits, *globalJSON)
	})

	var findCmd = &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of commits with the given message",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			ids, err := r.Find(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}),
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and working tree changes",
		Args:  operands(0),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			st, err := r.Status()
			if err != nil {
				return err
			}
			fmt.Print(formatStatus(st))
			return nil
		}),
	}

	var checkoutCmd = &cobra.Command{
		Use:   "checkout <branch> | -- <file> | <commit> -- <file>",
		Short: "Switch branches or restore a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseCheckout(args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}
			return withRepo(func(r *repository.Repository, _ []string) error {
				if target.file == "" {
					return r.CheckoutBranch(target.branch)
				}
				return r.CheckoutFile(target.commit, target.file)
			})(cmd, args)
		},
	}

	var branchCmd = &cobra.Command{
		Use:   "branch [name]",
		Short: "Create a branch at the current commit, or list branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			if len(args) == 1 {
				return r.CreateBranch(args[0])
			}
			st, err := r.Status()
			if err != nil {
				return err
			}
			fmt.Print(formatBranches(st.Branches))
			return nil
		}),
	}

	var rmBranchCmd = &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.RemoveBranch(args[0])
		}),
	}

	var resetCmd = &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the current branch to a commit and check it out",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.Reset(args[0])
		}),
	}

	var mergeCmd = &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			res, err := r.Merge(args[0])
			if err != nil {
				return err
			}
			printMergeResult(res)
			return nil
		}),
	}

	var addRemoteCmd = &cobra.Command{
		Use:   "add-remote <name> <path/to/.gitlet>",
		Short: "Register another repository as a remote",
		Args:  operands(2),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.AddRemote(args[0], args[1])
		}),
	}

	var rmRemoteCmd = &cobra.Command{
		Use:   "rm-remote <name>",
		Short: "Forget a remote",
		Args:  operands(1),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.RemoveRemote(args[0])
		}),
	}

	var fetchCmd = &cobra.Command{
		Use:   "fetch <remote> <branch>",
		Short: "Copy a remote branch into <remote>/<branch>",
		Args:  operands(2),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			_, err := r.Fetch(args[0], args[1])
			return err
		}),
	}

	var pushCmd = &cobra.Command{
		Use:   "push <remote> <branch>",
		Short: "Append the current history to a remote branch",
		Args:  operands(2),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			return r.Push(args[0], args[1])
		}),
	}

	var pullCmd = &cobra.Command{
		Use:   "pull <remote> <branch>",
		Short: "Fetch a remote branch and merge it",
		Args:  operands(2),
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			res, err := r.Pull(args[0], args[1])
			if err != nil {
				return err
			}
			printMergeResult(res)
			return nil
		}),
	}

	var diffCmd = &cobra.Command{
		Use:   "diff [files...]",
		Short: "Show changes between the current commit and the working tree",
		RunE: withRepo(func(r *repository.Repository, args []string) error {
			results, err := r.Diff(args...)
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Print(colorizeDiff(res.Unified))
			}
			return nil
		}),
	}

	rootCmd.AddCommand(
		initCmd, addCmd, commitCmd, rmCmd,
		logCmd, globalLogCmd, findCmd, statusCmd,
		checkoutCmd, branchCmd, rmBranchCmd, resetCmd, mergeCmd,
		addRemoteCmd, rmRemoteCmd, fetchCmd, pushCmd, pullCmd,
		diffCmd,
	)
}

func printCommits(commits []*commit.Commit, asJSON bool) error {
	if asJSON {
		entries := make([]shared.LogEntry, 0, len(commits))
		for _, c := range commits {
			entries = append(entries, toEntry(c))
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding log: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	for _, c := range commits {
		fmt.Println(formatEntry(toEntry(c)))
	}
	return nil
}

func printMergeResult(res *repository.MergeResult) {
	if msg := res.Message(); msg != "" {
		fmt.Println(msg)
	}
	if res.HasConflicts() {
		logger.Debug("conflicted files", zap.Strings("files", res.Conflicted))
	}
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(exitCode(err))
	}
}
