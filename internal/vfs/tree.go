package vfs

import (
	"fmt"
	"slices"
)

// Tree is an in-memory directory tree stored as an arena of node slots.
// The root slot's parent is the root itself, so walking above the root stays
// at the root.
//
// Tree is the only writer of its structure. It is not safe for concurrent
// use; a shell session executes one command at a time.
type Tree struct {
	nodes []node
	free  []uint32
	root  NodeID
	live  int
}

// NewTree returns a tree holding only an empty root directory.
func NewTree() *Tree {
	t := &Tree{}
	// Slot 0 stays unused so that the zero NodeID never names a node.
	t.nodes = append(t.nodes, node{})
	t.root = t.alloc(KindDirectory, RootName)
	t.nodes[t.root.slot].parent = t.root
	return t
}

// alloc claims a slot for a new detached node.
func (t *Tree) alloc(kind Kind, name string) NodeID {
	var slot uint32
	if n := len(t.free); n > 0 {
		slot, t.free = t.free[n-1], t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node{})
		slot = uint32(len(t.nodes) - 1)
	}
	n := &t.nodes[slot]
	n.gen++
	n.live = true
	n.kind = kind
	n.name = name
	n.parent = NoNode
	n.children = nil
	n.content = ""
	t.live++
	return NodeID{slot: slot, gen: n.gen}
}

// release frees id and every node below it.
func (t *Tree) release(id NodeID) {
	n := t.get(id)
	if n == nil {
		return
	}
	for _, c := range n.children {
		t.release(c)
	}
	n.live = false
	n.children = nil
	n.content = ""
	n.parent = NoNode
	t.free = append(t.free, id.slot)
	t.live--
}

// get returns the slot for id, or nil when id is not a live node.
func (t *Tree) get(id NodeID) *node {
	if id.IsZero() || int(id.slot) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[id.slot]
	if !n.live || n.gen != id.gen {
		return nil
	}
	return n
}

func (t *Tree) mustGet(id NodeID) (*node, error) {
	n := t.get(id)
	if n == nil {
		return nil, fmt.Errorf("%v: %w", id, ErrInvalidNode)
	}
	return n, nil
}

// Query surface

// Root returns the root directory.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of live nodes, detached ones included.
func (t *Tree) Len() int {
	return t.live
}

// Valid reports whether id refers to a live node.
func (t *Tree) Valid(id NodeID) bool {
	return t.get(id) != nil
}

// Name returns the node's name, or "" for an invalid ID.
func (t *Tree) Name(id NodeID) string {
	if n := t.get(id); n != nil {
		return n.name
	}
	return ""
}

// Kind returns the node's kind, or 0 for an invalid ID.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.get(id); n != nil {
		return n.kind
	}
	return 0
}

// IsDir reports whether id is a live directory.
func (t *Tree) IsDir(id NodeID) bool {
	return t.Kind(id) == KindDirectory
}

// IsFile reports whether id is a live file.
func (t *Tree) IsFile(id NodeID) bool {
	return t.Kind(id) == KindFile
}

// Parent returns the node's parent. The root is its own parent; a detached
// node has NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.parent
	}
	return NoNode
}

// Attached reports whether id is reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	for cur := id; ; {
		n := t.get(cur)
		if n == nil || n.parent.IsZero() {
			return false
		}
		if cur == t.root {
			return true
		}
		cur = n.parent
	}
}

// Children returns a copy of a directory's children in insertion order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.get(id)
	if n == nil || n.kind != KindDirectory {
		return nil
	}
	return slices.Clone(n.children)
}

// Child returns the child of dir named exactly name.
func (t *Tree) Child(dir NodeID, name string) (NodeID, bool) {
	n := t.get(dir)
	if n == nil || n.kind != KindDirectory {
		return NoNode, false
	}
	for _, c := range n.children {
		if t.nodes[c.slot].name == name {
			return c, true
		}
	}
	return NoNode, false
}

// Content returns a file's payload.
func (t *Tree) Content(id NodeID) (string, error) {
	n, err := t.mustGet(id)
	if err != nil {
		return "", err
	}
	switch n.kind {
	case KindFile:
		return n.content, nil
	case KindDirectory:
		return "", fmt.Errorf("%s: %w", n.name, ErrNotAFile)
	}
	return "", fmt.Errorf("%v: %w", id, ErrInvalidNode)
}

// PathTo returns the absolute path from the root to id. A detached subtree
// is rendered from its topmost detached ancestor.
func (t *Tree) PathTo(id NodeID, sep string) Path {
	var names []string
	for cur := id; ; {
		n := t.get(cur)
		if n == nil || cur == t.root {
			break
		}
		names = append(names, n.name)
		if n.parent.IsZero() {
			break
		}
		cur = n.parent
	}
	slices.Reverse(names)
	if sep == "" {
		sep = DefaultSeparator
	}
	return Path{segments: names, absolute: true, sep: sep}
}

// Mutation gateway

// Create makes a new node of kind under parent. It fails with ErrIllegalName
// for a forbidden name and with ErrDuplicate when any child of parent,
// of either kind, already has that name.
func (t *Tree) Create(parent NodeID, kind Kind, name string) (NodeID, error) {
	switch kind {
	case KindDirectory, KindFile:
	default:
		return NoNode, fmt.Errorf("cannot create node of unknown %v", kind)
	}
	if err := t.checkInsert(parent, name, NoNode); err != nil {
		return NoNode, err
	}
	id := t.alloc(kind, name)
	t.attach(id, parent)
	return id, nil
}

// Insert attaches a detached node as the newest child of parent, with the
// same checks as Create.
func (t *Tree) Insert(id, parent NodeID) error {
	n, err := t.mustGet(id)
	if err != nil {
		return err
	}
	if !n.parent.IsZero() {
		return fmt.Errorf("%s: node is already attached", n.name)
	}
	if err := t.checkInsert(parent, n.name, NoNode); err != nil {
		return err
	}
	t.attach(id, parent)
	return nil
}

// checkInsert validates that name could be added to parent. self is ignored
// in the sibling scan so that a node can be re-added to its own parent.
func (t *Tree) checkInsert(parent NodeID, name string, self NodeID) error {
	p, err := t.mustGet(parent)
	if err != nil {
		return err
	}
	if p.kind != KindDirectory {
		return fmt.Errorf("%s: %w", p.name, ErrNotADirectory)
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if c, ok := t.Child(parent, name); ok && c != self {
		return fmt.Errorf("%s: %w", name, ErrDuplicate)
	}
	return nil
}

func (t *Tree) attach(id, parent NodeID) {
	p := &t.nodes[parent.slot]
	p.children = append(p.children, id)
	t.nodes[id.slot].parent = parent
}

// detach unlinks id from its parent and leaves it with NoNode as parent.
func (t *Tree) detach(id NodeID) {
	n := &t.nodes[id.slot]
	if p := t.get(n.parent); p != nil {
		if i := slices.Index(p.children, id); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	n.parent = NoNode
}

// Remove detaches the child of parent named name and discards its subtree.
// A missing child is not an error; legality is the caller's concern.
func (t *Tree) Remove(parent NodeID, name string) {
	c, ok := t.Child(parent, name)
	if !ok {
		return
	}
	t.detach(c)
	t.release(c)
}

// Discard releases a detached node and its subtree, for copies that were
// never inserted.
func (t *Tree) Discard(id NodeID) {
	n := t.get(id)
	if n == nil || !n.parent.IsZero() {
		return
	}
	t.release(id)
}

// Rename changes a node's name in place. The new name must be legal and
// must not be used by another sibling; a detached node has no siblings.
// The root cannot be renamed.
func (t *Tree) Rename(id NodeID, name string) error {
	n, err := t.mustGet(id)
	if err != nil {
		return err
	}
	if id == t.root {
		return fmt.Errorf("cannot rename the root directory: %w", ErrIllegalOperation)
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if !n.parent.IsZero() {
		if c, ok := t.Child(n.parent, name); ok && c != id {
			return fmt.Errorf("%s: %w", name, ErrDuplicate)
		}
	}
	n.name = name
	return nil
}

// DeepCopy returns a detached clone of id. Directory clones are built by
// inserting a clone of every child, so the copy is Equal to the original
// and shares no slot with it.
func (t *Tree) DeepCopy(id NodeID) (NodeID, error) {
	n, err := t.mustGet(id)
	if err != nil {
		return NoNode, err
	}
	// alloc may grow the arena, so read everything we need first.
	kind, name, content := n.kind, n.name, n.content
	children := slices.Clone(n.children)

	cp := t.alloc(kind, name)
	switch kind {
	case KindFile:
		t.nodes[cp.slot].content = content
	case KindDirectory:
		for _, c := range children {
			sub, err := t.DeepCopy(c)
			if err != nil {
				t.release(cp)
				return NoNode, err
			}
			if err := t.Insert(sub, cp); err != nil {
				t.release(sub)
				t.release(cp)
				return NoNode, fmt.Errorf("copying %s: %w", name, err)
			}
		}
	}
	return cp, nil
}

// Clear empties dir and every directory below it. Afterwards dir, and every
// directory that was below it, is Equal to a new empty directory of its name.
// The former descendants stay valid but detached; it returns them so the
// caller can Discard them once it no longer holds their IDs.
func (t *Tree) Clear(dir NodeID) ([]NodeID, error) {
	n, err := t.mustGet(dir)
	if err != nil {
		return nil, err
	}
	if n.kind != KindDirectory {
		return nil, fmt.Errorf("%s: %w", n.name, ErrNotADirectory)
	}
	children := n.children
	n.children = nil
	var detached []NodeID
	for _, c := range children {
		t.nodes[c.slot].parent = NoNode
		detached = append(detached, c)
		if t.IsDir(c) {
			sub, err := t.Clear(c)
			if err != nil {
				return detached, err
			}
			detached = append(detached, sub...)
		}
	}
	return detached, nil
}

// Move relinks id under destParent with the name newName. It runs the move
// legality gate against cwd, validates the name and checks the destination
// for a sibling with that name before changing anything, so a failed move
// leaves the tree as it was.
func (t *Tree) Move(id, destParent NodeID, newName string, cwd NodeID) error {
	if _, err := t.mustGet(id); err != nil {
		return err
	}
	if err := t.CheckMove(id, destParent, cwd); err != nil {
		return err
	}
	if err := t.checkInsert(destParent, newName, id); err != nil {
		return err
	}
	t.detach(id)
	t.nodes[id.slot].name = newName
	t.attach(id, destParent)
	return nil
}

// WriteContent replaces a file's payload.
func (t *Tree) WriteContent(id NodeID, content string) error {
	n, err := t.fileNode(id)
	if err != nil {
		return err
	}
	n.content = content
	return nil
}

// AppendContent appends to a file's payload.
func (t *Tree) AppendContent(id NodeID, content string) error {
	n, err := t.fileNode(id)
	if err != nil {
		return err
	}
	n.content += content
	return nil
}

func (t *Tree) fileNode(id NodeID) (*node, error) {
	n, err := t.mustGet(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindFile {
		return nil, fmt.Errorf("%s: %w", n.name, ErrNotAFile)
	}
	return n, nil
}
