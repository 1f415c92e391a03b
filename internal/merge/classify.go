package merge

import (
	"sort"

	"gitlet/internal/commit"
)

// Action is what a merge does with one file name.
type Action int

const (
	// Keep the current branch's version (or absence) untouched.
	None Action = iota
	// Check out the given branch's version and stage it.
	TakeGiven
	// Stage the file for removal.
	Remove
	// Check out a file that only the given branch introduced.
	AddGiven
	// Write conflict markers and stage the result.
	Conflict
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case TakeGiven:
		return "take-given"
	case Remove:
		return "remove"
	case AddGiven:
		return "add-given"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// Presence describes one file across the split point S, the current
// commit C and the given commit G. The Changed fields compare blob ids and
// are only meaningful when both sides are present.
type Presence struct {
	InSplit, InCurrent, InGiven bool

	// S -> C and S -> G
	CurrentChanged, GivenChanged bool
	// C vs G
	SidesDiffer bool
}

type rule struct {
	name   string
	action Action
	match  func(p Presence) bool
}

// rules are checked in order; the first match wins.
var rules = []rule{
	{"given edited, current untouched", TakeGiven, func(p Presence) bool {
		return p.InSplit && p.InCurrent && p.InGiven && p.GivenChanged && !p.CurrentChanged
	}},
	{"given deleted, current untouched", Remove, func(p Presence) bool {
		return p.InSplit && p.InCurrent && !p.InGiven && !p.CurrentChanged
	}},
	{"added only on given", AddGiven, func(p Presence) bool {
		return !p.InSplit && !p.InCurrent && p.InGiven
	}},
	{"both edited differently", Conflict, func(p Presence) bool {
		return p.InSplit && p.InCurrent && p.InGiven && p.CurrentChanged && p.GivenChanged && p.SidesDiffer
	}},
	{"current edited, given deleted", Conflict, func(p Presence) bool {
		return p.InSplit && p.InCurrent && !p.InGiven && p.CurrentChanged
	}},
	{"given edited, current deleted", Conflict, func(p Presence) bool {
		return p.InSplit && !p.InCurrent && p.InGiven && p.GivenChanged
	}},
	{"added on both differently", Conflict, func(p Presence) bool {
		return !p.InSplit && p.InCurrent && p.InGiven && p.SidesDiffer
	}},
}

// Classify maps a file's presence tuple to the merge action.
func Classify(p Presence) Action {
	for _, r := range rules {
		if r.match(p) {
			return r.action
		}
	}
	return None
}

// Inspect computes the presence tuple for name.
func Inspect(split, current, given *commit.Commit, name string) Presence {
	s, inS := split.Files[name]
	c, inC := current.Files[name]
	g, inG := given.Files[name]
	return Presence{
		InSplit:        inS,
		InCurrent:      inC,
		InGiven:        inG,
		CurrentChanged: inS && inC && s != c,
		GivenChanged:   inS && inG && s != g,
		SidesDiffer:    inC && inG && c != g,
	}
}

// Step is the resolved action for one file.
type Step struct {
	Name   string
	Action Action
}

// Plan classifies every name in the union of the three commits and returns
// the steps that do something, sorted by name.
func Plan(split, current, given *commit.Commit) []Step {
	names := make(map[string]struct{})
	for _, c := range []*commit.Commit{split, current, given} {
		for name := range c.Files {
			names[name] = struct{}{}
		}
	}

	var steps []Step
	for name := range names {
		if a := Classify(Inspect(split, current, given, name)); a != None {
			steps = append(steps, Step{Name: name, Action: a})
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Name < steps[j].Name })
	return steps
}

// ConflictBody joins both sides of a conflicting file. A side that does not
// have the file contributes nothing.
func ConflictBody(current, given []byte) []byte {
	out := make([]byte, 0, len(current)+len(given)+32)
	out = append(out, "<<<<<<< HEAD\n"...)
	out = append(out, current...)
	out = append(out, "=======\n"...)
	out = append(out, given...)
	out = append(out, ">>>>>>>"...)
	return out
}
