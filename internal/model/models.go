package model

import "time"

// Snapshot is a saved shell session: the whole tree plus the session state
// needed to resume it. It is stored in the snapshot store and serialized as
// the portable export format.
type Snapshot struct {
	ID         string         `toml:"id"`          // UUID
	Name       string         `toml:"name"`        // User-chosen, unique within a store
	CreatedAt  time.Time      `toml:"created_at"`
	WorkingDir string         `toml:"working_dir"` // Absolute path rendered with Separator
	Separator  string         `toml:"separator"`
	Nodes      []SnapshotNode `toml:"nodes"`
	History    []string       `toml:"history"`
	DirStack   []string       `toml:"dir_stack"` // Absolute paths, bottom of the stack first
}

// SnapshotNode is one node of a saved tree. Nodes are listed in pre-order,
// so every parent appears before its children. The root has Index 0 and is
// its own parent.
type SnapshotNode struct {
	Index   int    `toml:"index"`
	Parent  int    `toml:"parent"`
	Kind    string `toml:"kind"` // "d" or "f"
	Name    string `toml:"name"`
	Content string `toml:"content,omitempty"`
}

// SnapshotInfo is the listing row for a stored snapshot.
type SnapshotInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
	NodeCount int
}
