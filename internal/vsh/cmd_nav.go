package vsh

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"vsh/internal/vfs"
)

func runCd(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("cd", args, 1); err != nil {
		return nil, err
	}
	dir, err := s.lookupDir(args[0])
	if err != nil {
		return nil, fmt.Errorf("cd: %w", err)
	}
	s.cwd = dir
	return nil, nil
}

func runPwd(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("pwd", args, 0); err != nil {
		return nil, err
	}
	return lines(s.render(s.cwd)), nil
}

func runPushd(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("pushd", args, 1); err != nil {
		return nil, err
	}
	dir, err := s.lookupDir(args[0])
	if err != nil {
		return nil, fmt.Errorf("pushd: %w", err)
	}
	old := s.WorkingDir()
	s.dirStack = append(s.dirStack, old)
	s.cwd = dir
	s.notice("Old directory: %s pushed to stack.", old)
	return nil, nil
}

func runPopd(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("popd", args, 0); err != nil {
		return nil, err
	}
	n := len(s.dirStack)
	if n == 0 {
		return nil, fmt.Errorf("popd: %w", ErrEmptyStack)
	}
	top := s.dirStack[n-1]
	s.dirStack = s.dirStack[:n-1]

	dir, ok, err := s.tree.Lookup(top, s.tree.Root())
	if err != nil {
		return nil, fmt.Errorf("popd: %w", err)
	}
	if !ok || !s.tree.IsDir(dir) {
		return nil, fmt.Errorf("popd: %s: %w", top, vfs.ErrNotADirectory)
	}
	s.cwd = dir
	s.notice("Returning to %s", top)
	return nil, nil
}

func runLs(_ context.Context, s *Session, args []string) (*Output, error) {
	recursive := false
	var paths []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			paths = append(paths, a)
			continue
		}
		if a != "-R" {
			return nil, fmt.Errorf("ls: unknown flag %q: %w", a, ErrSyntax)
		}
		recursive = true
	}

	out := &Output{}
	if len(paths) == 0 {
		s.listDir(out, s.cwd, 0, recursive)
		// The working directory is listed without its header line.
		out.Lines = out.Lines[1:]
		return out, nil
	}

	for _, p := range paths {
		id, err := s.lookup(p)
		if err != nil {
			return out, fmt.Errorf("ls: %w", err)
		}
		if s.tree.IsFile(id) {
			out.Lines = append(out.Lines, strings.TrimSuffix(s.render(id), s.sep))
			continue
		}
		s.listDir(out, id, 2, recursive)
	}
	return out, nil
}

// listDir appends a "PATH: " header and a line with the children's names,
// each followed by two spaces. Subdirectories follow when recursive.
func (s *Session) listDir(out *Output, dir vfs.NodeID, indent int, recursive bool) {
	out.Lines = append(out.Lines, s.render(dir)+": ")

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indent))
	var subdirs []vfs.NodeID
	for _, c := range s.tree.Children(dir) {
		b.WriteString(s.tree.Name(c))
		b.WriteString("  ")
		if recursive && s.tree.IsDir(c) {
			subdirs = append(subdirs, c)
		}
	}
	out.Lines = append(out.Lines, b.String())

	for _, d := range subdirs {
		s.listDir(out, d, 2, true)
	}
}

func runTree(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("tree", args, 0); err != nil {
		return nil, err
	}
	out := &Output{}
	for id, depth := range s.tree.Walk(s.tree.Root()) {
		out.Lines = append(out.Lines, strings.Repeat("\t", depth)+s.tree.Name(id))
	}
	return out, nil
}

func runSearch(_ context.Context, s *Session, args []string) (*Output, error) {
	var typ, expr string
	var paths []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-type", "-name":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("search: %s: flag value expected: %w", args[i], ErrSyntax)
			}
			if args[i] == "-type" {
				typ = args[i+1]
			} else {
				expr = args[i+1]
			}
			i++
		default:
			paths = append(paths, args[i])
		}
	}
	if typ == "" || expr == "" {
		return nil, fmt.Errorf("search: -type and -name are required: %w", ErrSyntax)
	}
	kind, err := vfs.ParseKind(typ)
	if err != nil || len(typ) != 1 {
		return nil, fmt.Errorf("search: -type %s: unknown parameter: %w", typ, ErrSyntax)
	}
	name, ok := unquote(expr)
	if !ok {
		return nil, fmt.Errorf("search: invalid string %s: %w", expr, ErrSyntax)
	}
	if err := wantSomeArgs("search", paths); err != nil {
		return nil, err
	}

	out := &Output{}
	for _, p := range paths {
		start, err := s.lookup(p)
		if err != nil {
			return out, fmt.Errorf("search: %w", err)
		}
		for id := range s.tree.Walk(start) {
			if s.tree.Kind(id) == kind && nameMatches(name, s.tree.Name(id)) {
				out.Lines = append(out.Lines, s.render(id))
			}
		}
	}
	return out, nil
}

// nameMatches reports whether name is expr or matches it as a glob. A
// malformed pattern only matches literally.
func nameMatches(expr, name string) bool {
	if expr == name {
		return true
	}
	ok, err := doublestar.Match(expr, name)
	return err == nil && ok
}
