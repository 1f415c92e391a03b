package commit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlet/internal/errors"
)

func setupStore(t *testing.T) (*Store, *Commit) {
	s, err := NewStore(filepath.Join(t.TempDir(), "commits"), 0)
	require.NoError(t, err)

	tick := time.UnixMilli(1_700_000_000_000)
	s.Now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	root, err := s.Init()
	require.NoError(t, err)
	return s, root
}

func commitOn(t *testing.T, s *Store, parent *Commit, msg string, add map[string]string) *Commit {
	c, err := s.Create(parent, nil, msg, add, nil)
	require.NoError(t, err)
	return c
}

func TestRootID(t *testing.T) {
	id, err := computeID(RootMessage, 0, map[string]string{}, "", "")
	require.NoError(t, err)
	assert.Equal(t, RootID, id)

	s, root := setupStore(t)
	assert.True(t, root.IsRoot())
	got, err := s.Get(RootID)
	require.NoError(t, err)
	assert.Empty(t, got.Files)
}

func TestCreate(t *testing.T) {
	s, root := setupStore(t)

	c1 := commitOn(t, s, root, "m1", map[string]string{"f": "blob-a", "g": "blob-g"})
	assert.Equal(t, root.ID, c1.Parent)
	assert.Equal(t, map[string]string{"f": "blob-a", "g": "blob-g"}, c1.Files)

	c2, err := s.Create(c1, nil, "m2", map[string]string{"f": "blob-b"}, []string{"g"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f": "blob-b"}, c2.Files)

	// parent is untouched
	assert.Equal(t, "blob-a", c1.Files["f"])

	t.Run("persisted with fan-out", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(s.root, c2.ID[:2], c2.ID[2:]))
		require.NoError(t, err)

		fresh, err := NewStore(s.root, 0)
		require.NoError(t, err)
		loaded, err := fresh.Get(c2.ID)
		require.NoError(t, err)
		assert.Equal(t, c2, loaded)
	})

	t.Run("merge parent", func(t *testing.T) {
		side := commitOn(t, s, root, "side", map[string]string{"h": "blob-h"})
		m, err := s.Create(c2, side, "Merged side into master.", nil, nil)
		require.NoError(t, err)
		assert.True(t, m.IsMerge())
		assert.Equal(t, []string{c2.ID, side.ID}, m.Parents())
	})

	t.Run("unknown parent", func(t *testing.T) {
		orphan := &Commit{ID: strings.Repeat("ab", 32), Files: map[string]string{}}
		_, err := s.Create(orphan, nil, "x", nil, nil)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestResolve(t *testing.T) {
	s, root := setupStore(t)
	c1 := commitOn(t, s, root, "m1", map[string]string{"f": "a"})

	t.Run("full id", func(t *testing.T) {
		id, err := s.Resolve(c1.ID)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, id)
	})

	t.Run("abbreviated", func(t *testing.T) {
		id, err := s.Resolve(c1.ID[:8])
		require.NoError(t, err)
		assert.Equal(t, c1.ID, id)

		got, err := s.Get(c1.ID[:6])
		require.NoError(t, err)
		assert.Equal(t, c1.ID, got.ID)
		assert.True(t, s.Exists(c1.ID[:6]))
	})

	t.Run("too short or not hex", func(t *testing.T) {
		for _, q := range []string{"", "a", "zz", "../x"} {
			_, err := s.Resolve(q)
			assert.True(t, errors.Is(err, errors.ErrAmbiguous), q)
		}
	})

	t.Run("abbreviation without match", func(t *testing.T) {
		_, err := s.Get("ffffffffff")
		assert.True(t, errors.Is(err, errors.ErrAmbiguous))
		assert.EqualError(t, err, "No commit with that id exists.")
		assert.False(t, s.Exists("ffffffffff"))
	})

	t.Run("unknown full id", func(t *testing.T) {
		_, err := s.Get(strings.Repeat("f", 64))
		assert.True(t, errors.Is(err, errors.ErrNotFound))
		assert.EqualError(t, err, "No commit with that id exists.")
	})

	t.Run("ambiguous", func(t *testing.T) {
		// Two fake leaves that share a prefix.
		dir := filepath.Join(s.root, "ee")
		require.NoError(t, os.MkdirAll(dir, 0755))
		leaf := "0000000000000000000000000000000000000000000000000000000000"
		for _, suffix := range []string{"01", "02"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, leaf+suffix), []byte("{}"), 0644))
		}

		_, err := s.Resolve("ee00")
		assert.True(t, errors.Is(err, errors.ErrAmbiguous))
		assert.False(t, s.Exists("ee00"))

		id, err := s.Resolve("ee" + leaf + "01")
		require.NoError(t, err)
		assert.Equal(t, "ee"+leaf+"01", id)
	})
}

func TestAncestors(t *testing.T) {
	s, root := setupStore(t)

	t.Run("root", func(t *testing.T) {
		anc, err := s.Ancestors(root)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{RootID: true}, anc)
	})

	t.Run("linear", func(t *testing.T) {
		m1 := commitOn(t, s, root, "m1", map[string]string{"f": "A"})
		m2 := commitOn(t, s, m1, "m2", map[string]string{"f": "B"})

		anc, err := s.Ancestors(m2)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{RootID: true, m1.ID: true, m2.ID: true}, anc)
	})

	t.Run("follows merge parents", func(t *testing.T) {
		a := commitOn(t, s, root, "a", map[string]string{"a": "1"})
		b := commitOn(t, s, root, "b", map[string]string{"b": "1"})
		m, err := s.Create(a, b, "merge", nil, nil)
		require.NoError(t, err)

		anc, err := s.Ancestors(m)
		require.NoError(t, err)
		assert.Len(t, anc, 4)
		assert.True(t, anc[b.ID])
	})
}

func TestSplitPoint(t *testing.T) {
	s, root := setupStore(t)

	c1 := commitOn(t, s, root, "c1", map[string]string{"f": "1"})
	c2 := commitOn(t, s, c1, "c2", map[string]string{"f": "2"})

	t.Run("same commit", func(t *testing.T) {
		sp, err := s.SplitPoint(c2, c2)
		require.NoError(t, err)
		assert.Equal(t, c2.ID, sp.ID)
	})

	t.Run("linear", func(t *testing.T) {
		sp, err := s.SplitPoint(c1, c2)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, sp.ID)

		sp, err = s.SplitPoint(c2, c1)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, sp.ID)
	})

	t.Run("diverged", func(t *testing.T) {
		left := commitOn(t, s, c1, "left", map[string]string{"l": "1"})
		right := commitOn(t, s, c1, "right", map[string]string{"r": "1"})

		sp, err := s.SplitPoint(left, right)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, sp.ID)
	})

	t.Run("only first parents of the second commit are walked", func(t *testing.T) {
		// base <- x (current side)
		// base <- y <- merge(y, x) (given side)
		base := commitOn(t, s, root, "base", map[string]string{"b": "1"})
		x := commitOn(t, s, base, "x", map[string]string{"x": "1"})
		y := commitOn(t, s, base, "y", map[string]string{"y": "1"})
		given, err := s.Create(y, x, "merge", nil, nil)
		require.NoError(t, err)
		cur := commitOn(t, s, x, "after x", map[string]string{"x": "2"})

		sp, err := s.SplitPoint(cur, given)
		require.NoError(t, err)
		// x is the real common ancestor, but it is only reachable through
		// given's merge parent.
		assert.Equal(t, base.ID, sp.ID)
	})
}

func TestCacheEviction(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "commits"), 2)
	require.NoError(t, err)
	root, err := s.Init()
	require.NoError(t, err)

	var made []*Commit
	parent := root
	for i := 0; i < 5; i++ {
		parent = commitOn(t, s, parent, "c", map[string]string{"f": string(rune('a' + i))})
		made = append(made, parent)
	}
	assert.Equal(t, 2, s.cache.Len())

	for _, c := range made {
		got, err := s.Get(c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Files, got.Files)
	}
	history, err := s.History(made[len(made)-1])
	require.NoError(t, err)
	assert.Len(t, history, 6)
}

func TestHistoryAndAll(t *testing.T) {
	s, root := setupStore(t)
	c1 := commitOn(t, s, root, "c1", map[string]string{"f": "1"})
	side := commitOn(t, s, root, "side", map[string]string{"g": "1"})
	m, err := s.Create(c1, side, "merge", nil, nil)
	require.NoError(t, err)

	hist, err := s.History(m)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, []string{m.ID, c1.ID, RootID}, []string{hist[0].ID, hist[1].ID, hist[2].ID})

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
