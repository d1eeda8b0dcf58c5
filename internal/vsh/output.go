package vsh

import (
	"fmt"
	"strings"

	"vsh/internal/vfs"
)

// Output is what a command prints. A nil *Output means the command prints
// nothing, not even an empty line.
type Output struct {
	Lines []string
	// Separator joins Lines; "\n" when empty.
	Separator string
}

// Text joins the lines with the output's separator.
func (o *Output) Text() string {
	if o == nil {
		return ""
	}
	sep := o.Separator
	if sep == "" {
		sep = "\n"
	}
	return strings.Join(o.Lines, sep)
}

func lines(l ...string) *Output {
	return &Output{Lines: l}
}

type redirectMode int

const (
	redirectNone redirectMode = iota
	redirectOverwrite
	redirectAppend
)

type redirect struct {
	mode   redirectMode
	target string
}

// extractRedirect removes "> FILE" and ">> FILE" from args. When several are
// given the last one wins.
func extractRedirect(args []string) ([]string, redirect, error) {
	var (
		rest []string
		r    redirect
	)
	for i := 0; i < len(args); i++ {
		var mode redirectMode
		switch args[i] {
		case ">":
			mode = redirectOverwrite
		case ">>":
			mode = redirectAppend
		default:
			rest = append(rest, args[i])
			continue
		}
		if i+1 >= len(args) {
			return nil, redirect{}, fmt.Errorf("%s: file name expected: %w", args[i], ErrSyntax)
		}
		r = redirect{mode: mode, target: args[i+1]}
		i++
	}
	return rest, r, nil
}

// emit writes out to the session's output, or to a file when redirected.
func (s *Session) emit(out *Output, r redirect) error {
	if r.mode == redirectNone {
		if out != nil {
			fmt.Fprintln(s.out, out.Text())
		}
		return nil
	}

	loc, err := s.tree.Locate(s.path(r.target), s.cwd)
	if err != nil {
		return err
	}
	id := loc.Node
	if !loc.Exists() {
		if id, err = s.tree.Create(loc.Parent, vfs.KindFile, loc.Name); err != nil {
			return err
		}
	}
	if r.mode == redirectAppend {
		return s.tree.AppendContent(id, out.Text())
	}
	return s.tree.WriteContent(id, out.Text())
}
