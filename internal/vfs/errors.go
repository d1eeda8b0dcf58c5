package vfs

import "errors"

// Error kinds reported by the tree. Callers match them with errors.Is; the
// returned errors wrap these with the offending name or path.
var (
	// ErrPathNotFound means a segment before the last one does not exist.
	ErrPathNotFound = errors.New("no such file or directory")

	// ErrNotADirectory means a walk tried to pass through a file, or a
	// directory was required and something else was found.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotAFile means a file was required and a directory was found.
	ErrNotAFile = errors.New("not a file")

	// ErrIllegalName means a proposed name is empty or contains a forbidden character.
	ErrIllegalName = errors.New("file name cannot contain any of the following characters: " + forbiddenDisplay)

	// ErrDuplicate means the proposed name is already used by a sibling.
	ErrDuplicate = errors.New("file or directory already exists")

	// ErrIllegalOperation means the mutation would nest a directory inside
	// itself or rename the root.
	ErrIllegalOperation = errors.New("illegal operation")

	// ErrResourceBusy means the mutation would remove or orphan the working directory.
	ErrResourceBusy = errors.New("resource busy: the working directory is inside the target")

	// ErrInvalidNode means a NodeID does not refer to a live node of the tree.
	ErrInvalidNode = errors.New("invalid node")
)
