package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"gitlet/internal/commit"
	"gitlet/internal/errors"
	shared "gitlet/shared/types"
)

const dateLayout = "Mon Jan 2 15:04:05 2006 -0700"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func toEntry(c *commit.Commit) shared.LogEntry {
	return shared.LogEntry{
		ID:          c.ID,
		Message:     c.Message,
		Timestamp:   c.Timestamp,
		Parent:      c.Parent,
		MergeParent: c.MergeParent,
	}
}

func short(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// formatEntry renders one commit the way log and global-log print it.
func formatEntry(e shared.LogEntry) string {
	var b strings.Builder
	b.WriteString("===\n")
	fmt.Fprintf(&b, "%s %s\n", yellow("commit"), yellow(e.ID))
	if e.MergeParent != "" {
		fmt.Fprintf(&b, "Merge: %s %s\n", short(e.Parent), short(e.MergeParent))
	}
	fmt.Fprintf(&b, "Date: %s\n", time.UnixMilli(e.Timestamp).Format(dateLayout))
	b.WriteString(e.Message)
	b.WriteString("\n")
	return b.String()
}

func formatBranches(branches []shared.BranchStatus) string {
	var b strings.Builder
	for _, br := range branches {
		if br.Current {
			fmt.Fprintf(&b, "*%s\n", green(br.Name))
		} else {
			fmt.Fprintf(&b, "%s\n", br.Name)
		}
	}
	return b.String()
}

func formatStatus(st *shared.Status) string {
	var b strings.Builder
	b.WriteString("=== Branches ===\n")
	b.WriteString(formatBranches(st.Branches))

	b.WriteString("\n=== Staged Files ===\n")
	for _, name := range st.Staged {
		fmt.Fprintf(&b, "%s\n", green(name))
	}

	b.WriteString("\n=== Removed Files ===\n")
	for _, name := range st.Removed {
		fmt.Fprintf(&b, "%s\n", red(name))
	}

	b.WriteString("\n=== Modifications Not Staged For Commit ===\n")
	for _, m := range st.Modified {
		fmt.Fprintf(&b, "%s (%s)\n", yellow(m.Name), m.Kind)
	}

	b.WriteString("\n=== Untracked Files ===\n")
	for _, name := range st.Untracked {
		fmt.Fprintf(&b, "%s\n", red(name))
	}
	b.WriteString("\n")
	return b.String()
}

func colorizeDiff(unified string) string {
	lines := strings.SplitAfter(unified, "\n")
	var b strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(line)
		case strings.HasPrefix(line, "@@"):
			b.WriteString(cyan(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(green(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(red(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

type checkoutTarget struct {
	branch string
	commit string
	file   string
}

// parseCheckout splits checkout's operands. dash is the number of
// arguments before "--", or -1 when there is none.
func parseCheckout(args []string, dash int) (checkoutTarget, error) {
	switch {
	case dash < 0 && len(args) == 1:
		return checkoutTarget{branch: args[0]}, nil
	case dash == 0 && len(args) == 1:
		return checkoutTarget{file: args[0]}, nil
	case dash == 1 && len(args) == 2:
		return checkoutTarget{commit: args[0], file: args[1]}, nil
	}
	return checkoutTarget{}, errors.InvalidOperation("Incorrect operands.")
}

// exitCode maps a failure to the process exit status: 1 for user-facing
// domain errors, 2 for everything else.
func exitCode(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeInternal:
		return 2
	case errors.ErrorTypeMergeConflict:
		return 0
	}
	return 1
}
