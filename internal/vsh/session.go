package vsh

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"vsh/internal/snapshot"
	"vsh/internal/vfs"
)

// DefaultPrompt is printed before every line in interactive mode.
const DefaultPrompt = "/#: "

// Config holds the session settings that come from the config file.
type Config struct {
	Separator string
	Prompt    string
	// HistoryLimit caps the number of remembered lines; 0 keeps everything.
	HistoryLimit int
}

// Session is one shell: a tree, a working directory and the state the
// commands share. A Session executes one command at a time and is not safe
// for concurrent use.
type Session struct {
	tree     *vfs.Tree
	cwd      vfs.NodeID
	sep      string
	prompt   string
	dirStack []vfs.Path

	history      []string
	historyLimit int

	modified bool
	exited   bool

	commands map[string]Command
	store    SnapshotStore
	fetcher  Fetcher
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	out    io.Writer
	errOut io.Writer
}

// NewSession creates a session on a new empty tree with DefaultCommands.
// store and fetcher may be nil; the commands that need them then fail.
// A nil logger, clock or idgen falls back to the no-op or real one.
func NewSession(cfg Config, store SnapshotStore, fetcher Fetcher, logger Logger, clock Clock, idgen IDGenerator) *Session {
	if cfg.Separator == "" {
		cfg.Separator = vfs.DefaultSeparator
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	tree := vfs.NewTree()
	return &Session{
		tree:         tree,
		cwd:          tree.Root(),
		sep:          cfg.Separator,
		prompt:       cfg.Prompt,
		historyLimit: cfg.HistoryLimit,
		commands:     DefaultCommands(),
		store:        store,
		fetcher:      fetcher,
		logger:       logger,
		clock:        clock,
		idgen:        idgen,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

// SetOutput sets where command output and error messages are written.
func (s *Session) SetOutput(out, errOut io.Writer) {
	s.out = out
	s.errOut = errOut
}

// Tree returns the session's tree. It is shared, not copied.
func (s *Session) Tree() *vfs.Tree { return s.tree }

// Cwd returns the working directory.
func (s *Session) Cwd() vfs.NodeID { return s.cwd }

// Separator returns the path separator the session parses and renders with.
func (s *Session) Separator() string { return s.sep }

// Modified reports whether any known command has run in the session. A
// modified session can no longer load a snapshot.
func (s *Session) Modified() bool { return s.modified }

// Exited reports whether exit has been run.
func (s *Session) Exited() bool { return s.exited }

// History returns a copy of the recorded command lines, oldest first.
func (s *Session) History() []string { return append([]string(nil), s.history...) }

// DirStack returns a copy of the pushd stack, bottom first.
func (s *Session) DirStack() []vfs.Path { return append([]vfs.Path(nil), s.dirStack...) }

// WorkingDir returns the absolute path of the working directory.
func (s *Session) WorkingDir() vfs.Path { return s.tree.PathTo(s.cwd, s.sep) }

// State returns the session state a snapshot preserves. The tree is shared,
// not copied.
func (s *Session) State() *snapshot.State {
	return &snapshot.State{
		Tree:      s.tree,
		Cwd:       s.cwd,
		Separator: s.sep,
		History:   s.History(),
		DirStack:  s.DirStack(),
	}
}

// Execute runs one command line. Every non-blank line is added to the
// history, including lines that fail. The returned error is also what the
// REPL prints.
func (s *Session) Execute(ctx context.Context, line string) error {
	line = strings.TrimRight(line, "\r\n")
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil
	}
	s.record(line)

	name := tokens[0]
	cmd, ok := s.commands[name]
	if !ok {
		s.logger.Warn("unknown command", "command", name)
		return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}

	s.logger.Debug("executing command", "command", name, "args", len(tokens)-1)
	err := s.dispatch(ctx, cmd, tokens[1:])
	s.modified = true
	if err != nil {
		s.logger.Warn("command failed", "command", name, "error", err)
	}
	return err
}

func (s *Session) dispatch(ctx context.Context, cmd Command, args []string) error {
	args, r, err := extractRedirect(args)
	if err != nil {
		return err
	}
	out, err := cmd.Run(ctx, s, args)
	// A command that failed before producing anything leaves the redirect
	// target alone.
	if err != nil && out == nil {
		return err
	}
	if werr := s.emit(out, r); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}

// Run reads lines from in and executes them until EOF, exit or ctx is done.
// Errors from individual lines are printed and do not stop the loop. When
// interactive is set the prompt is printed before each line.
func (s *Session) Run(ctx context.Context, in io.Reader, interactive bool) error {
	sc := bufio.NewScanner(in)
	for !s.exited {
		if err := ctx.Err(); err != nil {
			return err
		}
		if interactive {
			fmt.Fprint(s.out, s.prompt)
		}
		if !sc.Scan() {
			break
		}
		if err := s.Execute(ctx, sc.Text()); err != nil {
			fmt.Fprintln(s.errOut, err)
		}
	}
	return sc.Err()
}

func (s *Session) record(line string) {
	s.history = append(s.history, line)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = append([]string(nil), s.history[len(s.history)-s.historyLimit:]...)
	}
}

// notice prints a status message that is never redirected.
func (s *Session) notice(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Session) path(raw string) vfs.Path {
	return vfs.ParsePath(raw, s.sep)
}

func (s *Session) render(id vfs.NodeID) string {
	return s.tree.PathTo(id, s.sep).String()
}

// lookup resolves raw and reports a missing target as ErrPathNotFound.
func (s *Session) lookup(raw string) (vfs.NodeID, error) {
	id, ok, err := s.tree.Lookup(s.path(raw), s.cwd)
	if err != nil {
		return vfs.NoNode, err
	}
	if !ok {
		return vfs.NoNode, fmt.Errorf("%s: %w", raw, vfs.ErrPathNotFound)
	}
	return id, nil
}

// lookupDir resolves raw and requires a directory.
func (s *Session) lookupDir(raw string) (vfs.NodeID, error) {
	id, ok, err := s.tree.Lookup(s.path(raw), s.cwd)
	if err != nil {
		return vfs.NoNode, err
	}
	if !ok || !s.tree.IsDir(id) {
		return vfs.NoNode, fmt.Errorf("%s: %w", raw, vfs.ErrNotADirectory)
	}
	return id, nil
}

// restore replaces the session tree and state with st.
func (s *Session) restore(st *snapshot.State) {
	s.tree = st.Tree
	s.cwd = st.Cwd
	s.dirStack = s.dirStack[:0]
	for _, p := range st.DirStack {
		s.dirStack = append(s.dirStack, p.WithSeparator(s.sep))
	}
	s.history = append([]string(nil), st.History...)
}
