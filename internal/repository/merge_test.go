package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlet/internal/errors"
)

func TestMergeNoConflict(t *testing.T) {
	r := setupRepo(t)
	commitFiles(t, r, "X", map[string]string{"base": "b"})
	require.NoError(t, r.CreateBranch("feature"))

	require.NoError(t, r.CheckoutBranch("feature"))
	commitFiles(t, r, "add g", map[string]string{"g": "G"})
	require.NoError(t, r.CheckoutBranch("master"))
	cur := commitFiles(t, r, "add h", map[string]string{"h": "H"})

	res, err := r.Merge("feature")
	require.NoError(t, err)
	assert.Equal(t, Merged, res.Outcome)
	assert.False(t, res.HasConflicts())
	assert.NoError(t, res.ConflictErr())
	assert.Empty(t, res.Message())

	c := res.Commit
	assert.True(t, c.Tracks("g"))
	assert.True(t, c.Tracks("h"))
	assert.True(t, c.Tracks("base"))
	assert.Equal(t, "Merged feature into master.", c.Message)
	assert.Equal(t, cur.ID, c.Parent)

	feature, err := r.Branches.Get("feature")
	require.NoError(t, err)
	assert.Equal(t, feature.ID, c.MergeParent)

	assert.Equal(t, "G", readFile(t, r, "g"))
	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, c.ID, head.ID)

	empty, err := r.Stage.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestMergeConflict(t *testing.T) {
	r := setupRepo(t)
	commitFiles(t, r, "split", map[string]string{"f": "A"})
	require.NoError(t, r.CreateBranch("feature"))

	commitFiles(t, r, "main edit", map[string]string{"f": "B"})
	require.NoError(t, r.CheckoutBranch("feature"))
	commitFiles(t, r, "feature edit", map[string]string{"f": "C"})
	require.NoError(t, r.CheckoutBranch("master"))

	res, err := r.Merge("feature")
	require.NoError(t, err)
	assert.True(t, res.HasConflicts())
	assert.Equal(t, []string{"f"}, res.Conflicted)
	assert.True(t, errors.Is(res.ConflictErr(), errors.ErrMergeConflict))
	assert.Equal(t, "Encountered a merge conflict.", res.Message())

	assert.Equal(t, "<<<<<<< HEAD\nB=======\nC>>>>>>>", readFile(t, r, "f"))
	assert.True(t, res.Commit.IsMerge())
	assert.Len(t, res.Commit.Parents(), 2)

	data, err := r.Objects.Get(res.Commit.BlobID("f"))
	require.NoError(t, err)
	assert.Equal(t, "<<<<<<< HEAD\nB=======\nC>>>>>>>", string(data))
}

func TestMergeEditVersusDelete(t *testing.T) {
	r := setupRepo(t)
	commitFiles(t, r, "split", map[string]string{"f": "A", "gone": "x", "kept": "k"})
	require.NoError(t, r.CreateBranch("feature"))

	// master edits f, feature deletes it; feature also deletes an untouched file
	commitFiles(t, r, "edit f", map[string]string{"f": "B"})
	require.NoError(t, r.CheckoutBranch("feature"))
	require.NoError(t, r.Remove("f"))
	require.NoError(t, r.Remove("gone"))
	commitFiles(t, r, "feature side", map[string]string{"kept": "k2"})
	require.NoError(t, r.CheckoutBranch("master"))

	res, err := r.Merge("feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, res.Conflicted)
	assert.Equal(t, "<<<<<<< HEAD\nB=======\n>>>>>>>", readFile(t, r, "f"))

	assert.False(t, res.Commit.Tracks("gone"))
	assert.False(t, fileExists(r, "gone"))
	assert.Equal(t, "k2", readFile(t, r, "kept"))
}

func TestMergeFastPaths(t *testing.T) {
	t.Run("fast-forward", func(t *testing.T) {
		r := setupRepo(t)
		commitFiles(t, r, "base", map[string]string{"f": "A"})
		require.NoError(t, r.CreateBranch("feature"))
		require.NoError(t, r.CheckoutBranch("feature"))
		ahead := commitFiles(t, r, "ahead", map[string]string{"f": "B", "g": "G"})
		require.NoError(t, r.CheckoutBranch("master"))
		before, err := r.Branches.ID("master")
		require.NoError(t, err)

		res, err := r.Merge("feature")
		require.NoError(t, err)
		assert.Equal(t, FastForwarded, res.Outcome)
		assert.Equal(t, "Current branch fast-forwarded.", res.Message())

		head, err := r.Head()
		require.NoError(t, err)
		assert.Equal(t, ahead.ID, head.ID)
		assert.False(t, head.IsMerge())

		name, err := r.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "feature", name)
		after, err := r.Branches.ID("master")
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, "B", readFile(t, r, "f"))
		assert.Equal(t, "G", readFile(t, r, "g"))
	})

	t.Run("given is ancestor", func(t *testing.T) {
		r := setupRepo(t)
		require.NoError(t, r.CreateBranch("old"))
		before := commitFiles(t, r, "newer", map[string]string{"f": "A"})

		res, err := r.Merge("old")
		require.NoError(t, err)
		assert.Equal(t, AlreadyContained, res.Outcome)
		assert.Equal(t, "Given branch is an ancestor of the current branch.", res.Message())

		head, err := r.Head()
		require.NoError(t, err)
		assert.Equal(t, before.ID, head.ID)
	})
}

func TestMergePreconditions(t *testing.T) {
	r := setupRepo(t)
	commitFiles(t, r, "base", map[string]string{"f": "A"})
	require.NoError(t, r.CreateBranch("feature"))

	_, err := r.Merge("master")
	assert.EqualError(t, err, "Cannot merge a branch with itself.")

	_, err = r.Merge("ghost")
	assert.EqualError(t, err, "A branch with that name does not exist.")

	writeFile(t, r, "f", "dirty")
	require.NoError(t, r.Add("f"))
	_, err = r.Merge("feature")
	assert.EqualError(t, err, "You have uncommitted changes.")
}

func TestMergeUntrackedInTheWay(t *testing.T) {
	r := setupRepo(t)
	commitFiles(t, r, "base", map[string]string{"f": "A"})
	require.NoError(t, r.CreateBranch("feature"))
	require.NoError(t, r.CheckoutBranch("feature"))
	commitFiles(t, r, "new file", map[string]string{"new": "theirs"})
	require.NoError(t, r.CheckoutBranch("master"))
	commitFiles(t, r, "diverge", map[string]string{"f": "B"})

	writeFile(t, r, "new", "mine")
	before, err := r.Head()
	require.NoError(t, err)

	_, err = r.Merge("feature")
	assert.True(t, errors.Is(err, errors.ErrDangerousOverwrite))
	assert.Equal(t, "mine", readFile(t, r, "new"))

	after, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
}
