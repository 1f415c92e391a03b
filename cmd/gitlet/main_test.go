package main

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlet/internal/errors"
	shared "gitlet/shared/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestParseCheckout(t *testing.T) {
	tests := []struct {
		name string
		args []string
		dash int
		want checkoutTarget
	}{
		{"branch", []string{"feature"}, -1, checkoutTarget{branch: "feature"}},
		{"file at head", []string{"f.txt"}, 0, checkoutTarget{file: "f.txt"}},
		{"file at commit", []string{"abc123", "f.txt"}, 1, checkoutTarget{commit: "abc123", file: "f.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCheckout(tt.args, tt.dash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range [][]string{{}, {"a", "b"}} {
		_, err := parseCheckout(bad, -1)
		assert.EqualError(t, err, "Incorrect operands.")
	}
	_, err := parseCheckout([]string{"abc123", "f.txt"}, 0)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.NotFound("No such branch exists.")))
	assert.Equal(t, 1, exitCode(errors.DangerousOverwrite([]string{"f"})))
	assert.Equal(t, 0, exitCode(errors.MergeConflict([]string{"f"})))
	assert.Equal(t, 2, exitCode(os.ErrPermission))
}

func TestFormatEntry(t *testing.T) {
	plain := formatEntry(shared.LogEntry{
		ID:      strings.Repeat("a", 64),
		Message: "add f",
		Parent:  strings.Repeat("b", 64),
	})
	lines := strings.Split(plain, "\n")
	assert.Equal(t, "===", lines[0])
	assert.Equal(t, "commit "+strings.Repeat("a", 64), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Date: "))
	assert.Equal(t, "add f", lines[3])
	assert.NotContains(t, plain, "Merge:")

	merged := formatEntry(shared.LogEntry{
		ID:          strings.Repeat("c", 64),
		Message:     "Merged feature into master.",
		Parent:      "1234567890",
		MergeParent: "abcdef0123",
	})
	assert.Contains(t, merged, "\nMerge: 1234567 abcdef0\nDate: ")
}

func TestFormatStatus(t *testing.T) {
	out := formatStatus(&shared.Status{
		Branches:  []shared.BranchStatus{{Name: "master", Current: true}, {Name: "other"}},
		Staged:    []string{"wug.txt"},
		Removed:   []string{"goodbye.txt"},
		Modified:  []shared.Modification{{Name: "junk.txt", Kind: shared.Deleted}},
		Untracked: []string{"random.stuff"},
	})

	want := `=== Branches ===
*master
other

=== Staged Files ===
wug.txt

=== Removed Files ===
goodbye.txt

=== Modifications Not Staged For Commit ===
junk.txt (deleted)

=== Untracked Files ===
random.stuff

`
	assert.Equal(t, want, out)
}

func TestColorizeDiffKeepsText(t *testing.T) {
	unified := "--- a/f\n+++ b/f\n@@ -1 +1 @@\n-old\n+new\n"
	assert.Equal(t, unified, colorizeDiff(unified))
}
