package vfs

import "fmt"

// IsDescendantOf reports whether candidate lies strictly below ancestor.
// A file has no descendants and no node is its own descendant. The test
// walks candidate's parent links, so a node inside a detached copy is never
// below the original.
func (t *Tree) IsDescendantOf(candidate, ancestor NodeID) bool {
	if !t.Valid(candidate) || candidate == t.root || t.Kind(ancestor) != KindDirectory {
		return false
	}
	for cur := t.Parent(candidate); !cur.IsZero(); cur = t.Parent(cur) {
		if cur == ancestor {
			return true
		}
		if cur == t.root {
			return false
		}
	}
	return false
}

// contains reports whether id is dir or lies below it.
func (t *Tree) contains(dir, id NodeID) bool {
	return id == dir || t.IsDescendantOf(id, dir)
}

// CheckMove is the move legality gate. Moving a directory fails with
// ErrResourceBusy when the working directory is inside it, and with
// ErrIllegalOperation when the destination is the directory itself or lies
// below it. Files can always be moved.
func (t *Tree) CheckMove(source, destParent, cwd NodeID) error {
	if t.Kind(source) != KindDirectory {
		return nil
	}
	name := t.PathTo(source, DefaultSeparator)
	if t.contains(source, cwd) {
		return fmt.Errorf("cannot move %s: %w", name, ErrResourceBusy)
	}
	if t.contains(source, destParent) {
		return fmt.Errorf("cannot move %s into itself: %w", name, ErrIllegalOperation)
	}
	return nil
}

// CheckRemove is the delete legality gate: the working directory and its
// ancestors, the root included, cannot be removed.
func (t *Tree) CheckRemove(target, cwd NodeID) error {
	if t.Kind(target) != KindDirectory {
		return nil
	}
	if t.contains(target, cwd) {
		return fmt.Errorf("cannot remove %s: %w", t.PathTo(target, DefaultSeparator), ErrResourceBusy)
	}
	return nil
}
