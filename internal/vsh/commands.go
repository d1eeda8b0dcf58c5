package vsh

import (
	"context"
	"fmt"
)

// Command is one entry of the command table. Run receives the arguments
// after redirection has been removed. It may return output together with an
// error when some targets succeeded before one failed.
type Command struct {
	Name   string
	Manual string
	Run    func(ctx context.Context, s *Session, args []string) (*Output, error)
}

// DefaultCommands returns the built-in command table. Commands hold no state
// of their own; everything they change lives in the Session.
func DefaultCommands() map[string]Command {
	cmds := []Command{
		{Name: "cd", Run: runCd, Manual: manCd},
		{Name: "pwd", Run: runPwd, Manual: manPwd},
		{Name: "pushd", Run: runPushd, Manual: manPushd},
		{Name: "popd", Run: runPopd, Manual: manPopd},
		{Name: "ls", Run: runLs, Manual: manLs},
		{Name: "tree", Run: runTree, Manual: manTree},
		{Name: "mkdir", Run: runMkdir, Manual: manMkdir},
		{Name: "touch", Run: runTouch, Manual: manTouch},
		{Name: "cat", Run: runCat, Manual: manCat},
		{Name: "echo", Run: runEcho, Manual: manEcho},
		{Name: "cp", Run: runCp, Manual: manCp},
		{Name: "mv", Run: runMv, Manual: manMv},
		{Name: "rm", Run: runRm, Manual: manRm},
		{Name: "search", Run: runSearch, Manual: manSearch},
		{Name: "history", Run: runHistory, Manual: manHistory},
		{Name: "man", Run: runMan, Manual: manMan},
		{Name: "curl", Run: runCurl, Manual: manCurl},
		{Name: "saveJShell", Run: runSave, Manual: manSave},
		{Name: "loadJShell", Run: runLoad, Manual: manLoad},
		{Name: "exit", Run: runExit, Manual: manExit},
	}
	table := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		table[c.Name] = c
	}
	return table
}

func wantArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d: %w", name, n, len(args), ErrSyntax)
	}
	return nil
}

func wantSomeArgs(name string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s: too few arguments: %w", name, ErrSyntax)
	}
	return nil
}

const (
	manCd = `Syntax: cd DIR

Changes the working directory to DIR, relative to the working directory or
absolute. ".." is the parent directory and "." the current one. Above the
root, ".." stays at the root.`

	manPwd = `Syntax: pwd

Prints the absolute path of the working directory.`

	manPushd = `Syntax: pushd DIR

Pushes the working directory onto the directory stack and changes to DIR.
Return to it later with popd.`

	manPopd = `Syntax: popd

Pops the top of the directory stack and changes to it. Fails when the stack
is empty.`

	manLs = `Syntax: ls [-R] [PATH ...]

Without PATH, lists the working directory. For each PATH, prints the path
of a file, or a directory's path, a colon and its contents. -R lists
subdirectories recursively. Stops at the first PATH that does not exist.`

	manTree = `Syntax: tree

Prints the whole tree from the root, one node per line, indented by one tab
per level.`

	manMkdir = `Syntax: mkdir DIR ...

Creates each DIR. Stops at the first DIR that cannot be created; the ones
before it stay created.`

	manTouch = `Syntax: touch FILE ...

Creates each FILE empty, with the same rules as mkdir.`

	manCat = `Syntax: cat FILE ...

Prints the contents of each FILE, separated by three line breaks. A FILE that
cannot be read is reported and the rest are still printed.`

	manEcho = `Syntax: echo "STRING" [> FILE | >> FILE]

Prints STRING, which must be wrapped in double quotes and contain none.
"> FILE" replaces the contents of FILE and ">> FILE" appends to it; FILE is
created when it does not exist. Any command's output can be redirected.`

	manCp = `Syntax: cp SOURCE TARGET

Copies SOURCE, recursively for directories. When TARGET is a directory the
copy is placed inside it; when TARGET does not exist the copy is created
under that name.`

	manMv = `Syntax: mv SOURCE TARGET

Moves SOURCE, with the same TARGET rules as cp. A directory cannot be moved
into itself, and neither can the working directory or one of its ancestors.`

	manRm = `Syntax: rm PATH

Removes PATH and everything below it. The working directory and its
ancestors cannot be removed.`

	manSearch = `Syntax: search PATH ... -type [f|d] -name "EXPRESSION"

Searches PATH and everything below it for files (f) or directories (d)
whose name is EXPRESSION or matches it as a glob pattern, and prints their
absolute paths.`

	manHistory = `Syntax: history [NUMBER]

Prints the recent command lines, oldest first and numbered, including lines
that failed. NUMBER limits the output to the last NUMBER lines.`

	manMan = `Syntax: man CMD ...

Prints the manual of each CMD.`

	manCurl = `Syntax: curl URL

Downloads URL into a new file in the working directory. The file is named
after the last part of the URL with every "." replaced by "_".`

	manSave = `Syntax: saveJShell NAME

Saves the tree, the working directory, the directory stack and the history
as snapshot NAME, replacing an older snapshot of that name.`

	manLoad = `Syntax: loadJShell NAME

Replaces the session with snapshot NAME. Only allowed as the first command
of a session.`

	manExit = `Syntax: exit

Quits the shell.`
)
