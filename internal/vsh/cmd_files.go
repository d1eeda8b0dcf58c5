package vsh

import (
	"context"
	"errors"
	"fmt"

	"vsh/internal/vfs"
)

func runMkdir(_ context.Context, s *Session, args []string) (*Output, error) {
	return nil, s.createAll("mkdir", vfs.KindDirectory, args)
}

func runTouch(_ context.Context, s *Session, args []string) (*Output, error) {
	return nil, s.createAll("touch", vfs.KindFile, args)
}

// createAll creates one node per argument and stops at the first failure.
func (s *Session) createAll(cmd string, kind vfs.Kind, args []string) error {
	if err := wantSomeArgs(cmd, args); err != nil {
		return err
	}
	for _, raw := range args {
		loc, err := s.tree.Locate(s.path(raw), s.cwd)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		// The root has no legal name, so Create cannot report it.
		if loc.Node == s.tree.Root() {
			return fmt.Errorf("%s: %s: %w", cmd, raw, vfs.ErrDuplicate)
		}
		// Any other existing target yields its own parent and name, so
		// Create reports it as a duplicate.
		if _, err := s.tree.Create(loc.Parent, kind, loc.Name); err != nil {
			return fmt.Errorf("%s: %s: %w", cmd, raw, err)
		}
	}
	return nil
}

func runCat(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantSomeArgs("cat", args); err != nil {
		return nil, err
	}
	out := &Output{Separator: "\n\n\n"}
	var errs []error
	for _, raw := range args {
		content, err := s.readFile(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("cat: %w", err))
			continue
		}
		out.Lines = append(out.Lines, content)
	}
	if len(out.Lines) == 0 {
		return nil, errors.Join(errs...)
	}
	return out, errors.Join(errs...)
}

// readFile returns the payload of the file at raw.
func (s *Session) readFile(raw string) (string, error) {
	id, err := s.lookup(raw)
	if err != nil {
		return "", err
	}
	content, err := s.tree.Content(id)
	if err != nil {
		if errors.Is(err, vfs.ErrNotAFile) {
			return "", fmt.Errorf("%s: %w", raw, vfs.ErrNotAFile)
		}
		return "", err
	}
	return content, nil
}

func runEcho(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("echo", args, 1); err != nil {
		return nil, err
	}
	text, ok := unquote(args[0])
	if !ok {
		return nil, fmt.Errorf("echo: invalid string %s: %w", args[0], ErrSyntax)
	}
	return lines(text), nil
}

// target is where cp and mv put their source: inside an existing directory
// under the source's own name, or at a new name.
type target struct {
	parent vfs.NodeID
	name   string
}

func (s *Session) resolveTarget(cmd, raw string, source vfs.NodeID) (target, error) {
	loc, err := s.tree.Locate(s.path(raw), s.cwd)
	if err != nil {
		return target{}, fmt.Errorf("%s: %w", cmd, err)
	}
	switch {
	case !loc.Exists():
		return target{parent: loc.Parent, name: loc.Name}, nil
	case s.tree.IsDir(loc.Node):
		return target{parent: loc.Node, name: s.tree.Name(source)}, nil
	default:
		return target{}, fmt.Errorf("%s: %s: %w", cmd, raw, vfs.ErrDuplicate)
	}
}

func runCp(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("cp", args, 2); err != nil {
		return nil, err
	}
	src, err := s.lookup(args[0])
	if err != nil {
		return nil, fmt.Errorf("cp: %w", err)
	}
	dst, err := s.resolveTarget("cp", args[1], src)
	if err != nil {
		return nil, err
	}

	cp, err := s.tree.DeepCopy(src)
	if err != nil {
		return nil, fmt.Errorf("cp: %w", err)
	}
	if err := s.tree.Rename(cp, dst.name); err != nil {
		s.tree.Discard(cp)
		return nil, fmt.Errorf("cp: %w", err)
	}
	if err := s.tree.Insert(cp, dst.parent); err != nil {
		s.tree.Discard(cp)
		return nil, fmt.Errorf("cp: %w", err)
	}
	return nil, nil
}

func runMv(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("mv", args, 2); err != nil {
		return nil, err
	}
	src, err := s.lookup(args[0])
	if err != nil {
		return nil, fmt.Errorf("mv: %w", err)
	}
	dst, err := s.resolveTarget("mv", args[1], src)
	if err != nil {
		return nil, err
	}
	if err := s.tree.Move(src, dst.parent, dst.name, s.cwd); err != nil {
		return nil, fmt.Errorf("mv: %w", err)
	}
	return nil, nil
}

func runRm(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("rm", args, 1); err != nil {
		return nil, err
	}
	id, err := s.lookup(args[0])
	if err != nil {
		return nil, fmt.Errorf("rm: %w", err)
	}
	if err := s.tree.CheckRemove(id, s.cwd); err != nil {
		return nil, fmt.Errorf("rm: %w", err)
	}
	s.tree.Remove(s.tree.Parent(id), s.tree.Name(id))
	return nil, nil
}
