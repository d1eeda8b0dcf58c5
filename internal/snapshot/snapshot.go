// Package snapshot converts between a live session tree and its saved form.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"vsh/internal/model"
	"vsh/internal/vfs"
)

// ErrInvalidSnapshot is returned when a saved snapshot does not describe a
// valid tree.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// State is the part of a shell session that a snapshot preserves.
type State struct {
	Tree      *vfs.Tree
	Cwd       vfs.NodeID
	Separator string
	History   []string
	DirStack  []vfs.Path
}

// Capture records st as a snapshot. Nodes are listed in pre-order starting
// with the root.
func Capture(st *State, id, name string, at time.Time) *model.Snapshot {
	sep := st.Separator
	if sep == "" {
		sep = vfs.DefaultSeparator
	}

	s := &model.Snapshot{
		ID:         id,
		Name:       name,
		CreatedAt:  at,
		WorkingDir: st.Tree.PathTo(st.Cwd, sep).String(),
		Separator:  sep,
		History:    append([]string(nil), st.History...),
	}

	index := make(map[vfs.NodeID]int)
	for nid := range st.Tree.Walk(st.Tree.Root()) {
		i := len(s.Nodes)
		index[nid] = i
		n := model.SnapshotNode{
			Index: i,
			Kind:  st.Tree.Kind(nid).Short(),
			Name:  st.Tree.Name(nid),
		}
		if i > 0 {
			n.Parent = index[st.Tree.Parent(nid)]
		}
		if content, err := st.Tree.Content(nid); err == nil {
			n.Content = content
		}
		s.Nodes = append(s.Nodes, n)
	}

	for _, p := range st.DirStack {
		s.DirStack = append(s.DirStack, p.String())
	}
	return s
}

// Restore rebuilds a session state from s. The tree is rebuilt through the
// regular creation entry points, so a snapshot with duplicate or illegal
// names is rejected rather than loaded.
func Restore(s *model.Snapshot) (*State, error) {
	if len(s.Nodes) == 0 {
		return nil, fmt.Errorf("%s: no root node: %w", s.Name, ErrInvalidSnapshot)
	}
	root := s.Nodes[0]
	if root.Index != 0 || root.Parent != 0 || root.Kind != vfs.KindDirectory.Short() {
		return nil, fmt.Errorf("%s: first node is not the root directory: %w", s.Name, ErrInvalidSnapshot)
	}

	sep := s.Separator
	if sep == "" {
		sep = vfs.DefaultSeparator
	}
	if !vfs.ValidSeparator(sep) {
		return nil, fmt.Errorf("%s: separator %q: %w", s.Name, sep, ErrInvalidSnapshot)
	}

	tree := vfs.NewTree()
	ids := make([]vfs.NodeID, len(s.Nodes))
	ids[0] = tree.Root()
	for i := 1; i < len(s.Nodes); i++ {
		n := s.Nodes[i]
		if n.Index != i {
			return nil, fmt.Errorf("%s: node %d has index %d: %w", s.Name, i, n.Index, ErrInvalidSnapshot)
		}
		if n.Parent < 0 || n.Parent >= i {
			return nil, fmt.Errorf("%s: node %d has parent %d: %w", s.Name, i, n.Parent, ErrInvalidSnapshot)
		}
		kind, err := vfs.ParseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: node %d: %v: %w", s.Name, i, err, ErrInvalidSnapshot)
		}
		id, err := tree.Create(ids[n.Parent], kind, n.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: node %d: %w", s.Name, i, err)
		}
		if kind == vfs.KindFile {
			if err := tree.WriteContent(id, n.Content); err != nil {
				return nil, fmt.Errorf("%s: node %d: %w", s.Name, i, err)
			}
		}
		ids[i] = id
	}

	cwd := tree.Root()
	if s.WorkingDir != "" {
		id, ok, err := tree.Lookup(vfs.ParsePath(s.WorkingDir, sep), tree.Root())
		if err != nil {
			return nil, fmt.Errorf("%s: working directory: %w", s.Name, err)
		}
		if !ok || !tree.IsDir(id) {
			return nil, fmt.Errorf("%s: working directory %s is not a directory: %w", s.Name, s.WorkingDir, ErrInvalidSnapshot)
		}
		cwd = id
	}

	st := &State{
		Tree:      tree,
		Cwd:       cwd,
		Separator: sep,
		History:   append([]string(nil), s.History...),
	}
	for _, raw := range s.DirStack {
		st.DirStack = append(st.DirStack, vfs.ParsePath(raw, sep))
	}
	return st, nil
}
