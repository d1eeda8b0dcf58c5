package vsh

import "errors"

var (
	// ErrSyntax means a command was given the wrong arguments.
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownCommand means the first word of a line names no command.
	ErrUnknownCommand = errors.New("command not found")

	// ErrEmptyStack means popd was run with an empty directory stack.
	ErrEmptyStack = errors.New("directory stack empty")

	// ErrSessionModified means loadJShell was run after other commands.
	ErrSessionModified = errors.New("session already modified; load snapshots only from a new session")

	// ErrConnectionFailed means a fetch did not return 200 OK.
	ErrConnectionFailed = errors.New("connection failed or invalid url")

	// ErrSnapshotNotFound means no snapshot with the requested name is stored.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrNoStore means the session was built without a snapshot store.
	ErrNoStore = errors.New("no snapshot store configured")

	// ErrBlobNotFound means a vault has nothing under the requested key.
	ErrBlobNotFound = errors.New("blob not found")
)
