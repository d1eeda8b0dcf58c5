package vsh

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vsh/internal/snapshot"
	"vsh/internal/vfs"
)

func runHistory(_ context.Context, s *Session, args []string) (*Output, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("history: too many arguments: %w", ErrSyntax)
	}
	n := len(s.history)
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 || strings.ContainsAny(args[0], "+-") {
			return nil, fmt.Errorf("history: %s is not a non-negative integer: %w", args[0], ErrSyntax)
		}
		n = min(v, n)
	}

	out := &Output{}
	first := len(s.history) - n
	for i := first; i < len(s.history); i++ {
		out.Lines = append(out.Lines, fmt.Sprintf("%d. %s", i+1, s.history[i]))
	}
	return out, nil
}

func runMan(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantSomeArgs("man", args); err != nil {
		return nil, err
	}
	out := &Output{Separator: "\n\n\n"}
	for _, name := range args {
		cmd, ok := s.commands[name]
		if !ok {
			return out, fmt.Errorf("man: %s: %w", name, ErrUnknownCommand)
		}
		out.Lines = append(out.Lines, "Manual for "+name+": \n"+cmd.Manual)
	}
	return out, nil
}

func runCurl(ctx context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("curl", args, 1); err != nil {
		return nil, err
	}
	url := args[0]
	name, err := curlFileName(url)
	if err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("curl: no fetcher configured: %w", ErrConnectionFailed)
	}

	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("curl: %w", err)
	}
	id, err := s.tree.Create(s.cwd, vfs.KindFile, name)
	if err != nil {
		return nil, fmt.Errorf("curl: %w", err)
	}
	if err := s.tree.WriteContent(id, body); err != nil {
		return nil, fmt.Errorf("curl: %w", err)
	}
	s.logger.Info("fetched url", "url", url, "file", name, "bytes", len(body))
	return nil, nil
}

// curlFileName names a downloaded file after the last non-empty segment of
// the URL, with every "." replaced by "_".
func curlFileName(url string) (string, error) {
	parts := strings.Split(url, "/")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("curl: invalid url %q: %w", url, ErrSyntax)
	}
	return strings.ReplaceAll(parts[len(parts)-1], ".", "_"), nil
}

func runSave(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("saveJShell", args, 1); err != nil {
		return nil, err
	}
	name := args[0]
	if err := vfs.ValidateName(name); err != nil {
		return nil, fmt.Errorf("saveJShell: %w", err)
	}
	if s.store == nil {
		return nil, fmt.Errorf("saveJShell: %w", ErrNoStore)
	}

	snap := snapshot.Capture(s.State(), s.idgen.New(), name, s.clock.Now())
	if err := s.store.Save(snap); err != nil {
		return nil, fmt.Errorf("saveJShell: %w", err)
	}
	s.logger.Info("snapshot saved", "name", name, "id", snap.ID, "nodes", len(snap.Nodes))
	s.notice("Work state saved to %s", name)
	return nil, nil
}

func runLoad(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("loadJShell", args, 1); err != nil {
		return nil, err
	}
	if s.modified {
		return nil, fmt.Errorf("loadJShell: %w", ErrSessionModified)
	}
	if s.store == nil {
		return nil, fmt.Errorf("loadJShell: %w", ErrNoStore)
	}
	name := args[0]

	snap, err := s.store.Load(name)
	if err != nil {
		return nil, fmt.Errorf("loadJShell: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("loadJShell: %s: %w", name, ErrSnapshotNotFound)
	}
	st, err := snapshot.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("loadJShell: %w", err)
	}

	// The loading line itself stays the newest history entry.
	var current []string
	if n := len(s.history); n > 0 {
		current = s.history[n-1:]
	}
	s.restore(st)
	for _, line := range current {
		s.record(line)
	}

	s.logger.Info("snapshot loaded", "name", name, "id", snap.ID)
	s.notice("Work state loaded successfully.")
	return nil, nil
}

func runExit(_ context.Context, s *Session, args []string) (*Output, error) {
	if err := wantArgs("exit", args, 0); err != nil {
		return nil, err
	}
	s.exited = true
	return nil, nil
}
