package vfs

import "iter"

// Walk yields start and every node below it in pre-order, children in
// insertion order, together with their depth relative to start (start is 0).
// The tree must not be modified while walking.
func (t *Tree) Walk(start NodeID) iter.Seq2[NodeID, int] {
	return func(yield func(NodeID, int) bool) {
		if t.Valid(start) {
			t.walkFrom(start, 0, yield)
		}
	}
}

func (t *Tree) walkFrom(id NodeID, depth int, yield func(NodeID, int) bool) bool {
	if !yield(id, depth) {
		return false
	}
	for _, c := range t.nodes[id.slot].children {
		if !t.walkFrom(c, depth+1, yield) {
			return false
		}
	}
	return true
}
