package shared

// BranchStatus is one line of the branch section of a status report.
type BranchStatus struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

type ModificationKind string

const (
	Modified ModificationKind = "modified"
	Deleted  ModificationKind = "deleted"
)

// Modification is a tracked or staged file whose working copy no longer
// matches what would be committed.
type Modification struct {
	Name string           `json:"name"`
	Kind ModificationKind `json:"kind"`
}

// Status is a snapshot of the repository as seen from the working tree.
// Every list is sorted by name.
type Status struct {
	Branches  []BranchStatus `json:"branches"`
	Staged    []string       `json:"staged"`
	Removed   []string       `json:"removed"`
	Modified  []Modification `json:"modified"`
	Untracked []string       `json:"untracked"`
}

// LogEntry is a commit as presented by log, global-log and find.
type LogEntry struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	Parent      string `json:"parent,omitempty"`
	MergeParent string `json:"merge_parent,omitempty"`
}
