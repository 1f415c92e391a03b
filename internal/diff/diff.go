package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Line represents a single line in a diff with its type and content
type Line struct {
	Type    LineType
	Content string
	OldNum  int
	NewNum  int
}

// LineType indicates whether a line was added, removed, or is context
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// DiffResult contains the complete diff information
type DiffResult struct {
	Name  string
	Hunks []Hunk
	Stats struct {
		Additions int
		Deletions int
	}
	// Unified is the diff rendered in unified format, empty when the
	// contents are identical.
	Unified string
}

// Hunk represents a continuous section of changes
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Engine provides diffing capabilities
type Engine struct {
	contextLines int
}

func NewEngine(contextLines int) *Engine {
	return &Engine{
		contextLines: contextLines,
	}
}

// Diff compares two versions of the file name line by line.
func (e *Engine) Diff(name string, oldContent, newContent []byte) (*DiffResult, error) {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	result := &DiffResult{Name: name}

	matcher := difflib.NewMatcher(oldLines, newLines)
	for _, group := range matcher.GetGroupedOpCodes(e.contextLines) {
		first, last := group[0], group[len(group)-1]
		hunk := Hunk{
			OldStart: first.I1 + 1,
			OldLines: last.I2 - first.I1,
			NewStart: first.J1 + 1,
			NewLines: last.J2 - first.J1,
		}
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for i := op.I1; i < op.I2; i++ {
					hunk.Lines = append(hunk.Lines, Line{Type: Context, Content: oldLines[i], OldNum: i + 1, NewNum: op.J1 + i - op.I1 + 1})
				}
			case 'r', 'd', 'i':
				for i := op.I1; i < op.I2; i++ {
					hunk.Lines = append(hunk.Lines, Line{Type: Deletion, Content: oldLines[i], OldNum: i + 1})
					result.Stats.Deletions++
				}
				for j := op.J1; j < op.J2; j++ {
					hunk.Lines = append(hunk.Lines, Line{Type: Addition, Content: newLines[j], NewNum: j + 1})
					result.Stats.Additions++
				}
			}
		}
		result.Hunks = append(result.Hunks, hunk)
	}

	if len(result.Hunks) == 0 {
		return result, nil
	}

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        oldLines,
		B:        newLines,
		FromFile: fmt.Sprintf("a/%s", name),
		ToFile:   fmt.Sprintf("b/%s", name),
		Context:  e.contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering diff for %s: %w", name, err)
	}
	result.Unified = unified
	return result, nil
}

// Empty reports whether both versions were identical.
func (r *DiffResult) Empty() bool {
	return len(r.Hunks) == 0
}

// splitLines keeps line terminators so a missing final newline shows up as
// a change.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
