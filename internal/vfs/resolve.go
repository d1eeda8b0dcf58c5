package vfs

import "fmt"

// Location describes where a path points. For an existing node, Node is
// that node and Parent its parent. For a path whose last segment is absent,
// Node is NoNode, Parent is the deepest directory reached and Name is the
// missing segment: the place a new node with that name would be created.
// A Location is never inserted into the tree.
type Location struct {
	Node   NodeID
	Parent NodeID
	Name   string
}

// Exists reports whether the location names an existing node.
func (l Location) Exists() bool {
	return !l.Node.IsZero()
}

// Lookup walks p from the root when p is absolute and from cwd otherwise.
// It returns ok=false with a nil error when only the last segment is
// missing. A missing intermediate segment fails with ErrPathNotFound and
// passing through a file fails with ErrNotADirectory.
func (t *Tree) Lookup(p Path, cwd NodeID) (NodeID, bool, error) {
	loc, err := t.walk(p, cwd)
	if err != nil {
		return NoNode, false, err
	}
	if !loc.Exists() {
		return NoNode, false, nil
	}
	return loc.Node, true, nil
}

// Locate is Lookup for callers that need a destination: when the last
// segment is missing it returns the placeholder Location instead of
// reporting absence.
func (t *Tree) Locate(p Path, cwd NodeID) (Location, error) {
	return t.walk(p, cwd)
}

func (t *Tree) walk(p Path, cwd NodeID) (Location, error) {
	cur := cwd
	if p.IsAbsolute() {
		cur = t.root
	}
	if !t.Valid(cur) {
		return Location{}, fmt.Errorf("%s: %w", p, ErrInvalidNode)
	}

	prev := NoNode
	var missing string
	for seg := range p.Segments() {
		if cur.IsZero() {
			return Location{}, fmt.Errorf("%s: %w", p, ErrPathNotFound)
		}
		if t.Kind(cur) == KindFile {
			return Location{}, fmt.Errorf("%s: %w", p, ErrNotADirectory)
		}
		prev = cur
		switch seg {
		case "", currentSegment:
		case parentSegment:
			cur = t.Parent(cur)
		default:
			next, ok := t.Child(cur, seg)
			if !ok {
				missing = seg
			}
			cur = next
		}
	}

	if cur.IsZero() {
		return Location{Node: NoNode, Parent: prev, Name: missing}, nil
	}
	return Location{Node: cur, Parent: t.Parent(cur), Name: t.Name(cur)}, nil
}
