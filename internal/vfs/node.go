package vfs

import (
	"fmt"
	"strings"
)

// Kind tells the two node variants apart.
type Kind uint8

const (
	KindDirectory Kind = iota + 1
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind maps the search/snapshot shorthands "d" and "f" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "d", "directory":
		return KindDirectory, nil
	case "f", "file":
		return KindFile, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

// Short returns the one-letter form accepted by ParseKind.
func (k Kind) Short() string {
	switch k {
	case KindDirectory:
		return "d"
	case KindFile:
		return "f"
	default:
		return "?"
	}
}

// NodeID addresses a node slot in a Tree. The generation makes IDs of
// released slots stale instead of silently aliasing the slot's next owner.
// The zero value is NoNode.
type NodeID struct {
	slot uint32
	gen  uint32
}

// NoNode is the ID of no node: the parent of a detached node and the node of
// a placeholder Location.
var NoNode = NodeID{}

// IsZero reports whether id is NoNode.
func (id NodeID) IsZero() bool {
	return id == NoNode
}

func (id NodeID) String() string {
	if id.IsZero() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d.%d)", id.slot, id.gen)
}

// node is one arena slot. children is only used by directories and content
// only by files.
type node struct {
	gen      uint32
	live     bool
	kind     Kind
	name     string
	parent   NodeID
	children []NodeID
	content  string
}

// RootName is the name of every tree's root directory.
const RootName = "/"

// forbiddenChars may not appear in any node name.
const forbiddenChars = "!@#$%^&*(){}~|<>?./"

const forbiddenDisplay = "! @ # $ % ^ & * ( ) { } ~ | < > ? . /"

// ValidateName returns ErrIllegalName when name is empty or contains a
// forbidden character.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, forbiddenChars) {
		return fmt.Errorf("%q: %w", name, ErrIllegalName)
	}
	return nil
}
