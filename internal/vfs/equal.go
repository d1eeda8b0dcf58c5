package vfs

// Equal reports whether a and b are structurally equal: same kind, same
// name, and the same payload (files) or the same set of children compared
// recursively (directories). Parents and slot identity do not matter, so a
// deep copy is Equal to its original.
func (t *Tree) Equal(a, b NodeID) bool {
	return EqualTrees(t, a, t, b)
}

// EqualTrees is Equal for nodes that may live in different trees.
func EqualTrees(ta *Tree, a NodeID, tb *Tree, b NodeID) bool {
	na, nb := ta.get(a), tb.get(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	if na.kind != nb.kind || na.name != nb.name {
		return false
	}
	switch na.kind {
	case KindFile:
		return na.content == nb.content
	case KindDirectory:
		if len(na.children) != len(nb.children) {
			return false
		}
		// Child order is insertion order and is not part of equality.
		// Names are unique among siblings, so matching by name pairs
		// every child with its only candidate.
		for _, ca := range na.children {
			cb, ok := tb.Child(b, ta.nodes[ca.slot].name)
			if !ok || !EqualTrees(ta, ca, tb, cb) {
				return false
			}
		}
		return true
	}
	return false
}
