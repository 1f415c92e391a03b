package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	e := NewEngine(3)

	t.Run("identical", func(t *testing.T) {
		r, err := e.Diff("f", []byte("a\nb\n"), []byte("a\nb\n"))
		require.NoError(t, err)
		assert.True(t, r.Empty())
		assert.Empty(t, r.Unified)
	})

	t.Run("one line changed", func(t *testing.T) {
		r, err := e.Diff("f.txt", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"))
		require.NoError(t, err)
		require.Len(t, r.Hunks, 1)
		assert.Equal(t, 1, r.Stats.Additions)
		assert.Equal(t, 1, r.Stats.Deletions)

		h := r.Hunks[0]
		assert.Equal(t, 1, h.OldStart)
		assert.Equal(t, 3, h.OldLines)
		assert.Equal(t, []LineType{Context, Deletion, Addition, Context},
			[]LineType{h.Lines[0].Type, h.Lines[1].Type, h.Lines[2].Type, h.Lines[3].Type})

		assert.Contains(t, r.Unified, "--- a/f.txt")
		assert.Contains(t, r.Unified, "+++ b/f.txt")
		assert.Contains(t, r.Unified, "-b\n")
		assert.Contains(t, r.Unified, "+B\n")
	})

	t.Run("deleted file", func(t *testing.T) {
		r, err := e.Diff("gone", []byte("x\ny\n"), nil)
		require.NoError(t, err)
		assert.Equal(t, 2, r.Stats.Deletions)
		assert.Equal(t, 0, r.Stats.Additions)
	})

	t.Run("new file", func(t *testing.T) {
		r, err := e.Diff("new", nil, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, 1, r.Stats.Additions)
	})
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b"}, splitLines([]byte("a\nb")))
	assert.Equal(t, []string{"a\n"}, splitLines([]byte("a\n")))
	assert.Empty(t, splitLines(nil))
}
