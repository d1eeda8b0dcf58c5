package testutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"vsh/internal/vsh"
)

// TestSession is a vsh.Session wired to an in-memory store, a StubFetcher
// and a fixed clock, with its output captured.
type TestSession struct {
	*vsh.Session
	Store   vsh.SnapshotStore
	Fetcher *StubFetcher
	Out     *bytes.Buffer
	ErrOut  *bytes.Buffer
}

// NewTestSession creates a TestSession. A nil store gets a fresh in-memory
// one; pass the same store to two sessions to share snapshots.
func NewTestSession(t *testing.T, cfg vsh.Config, store vsh.SnapshotStore, bodies map[string]string) *TestSession {
	t.Helper()

	if store == nil {
		store = NewTestStore(t)
	}
	fetcher := NewStubFetcher(bodies)
	s := vsh.NewSession(cfg, store, fetcher, vsh.NewNopLogger(), FixedClock(), NewStubIDGenerator())

	ts := &TestSession{Session: s, Store: store, Fetcher: fetcher, Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	s.SetOutput(ts.Out, ts.ErrOut)
	return ts
}

// MustRun executes each line and fails the test on the first error.
func (ts *TestSession) MustRun(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := ts.Execute(context.Background(), line); err != nil {
			t.Fatalf("Execute(%q) error = %v", line, err)
		}
	}
}

// Output executes line and returns what it printed, resetting the buffer.
func (ts *TestSession) Output(t *testing.T, line string) (string, error) {
	t.Helper()
	ts.Out.Reset()
	err := ts.Execute(context.Background(), line)
	return ts.Out.String(), err
}

// MustOutput is Output that fails the test on error.
func (ts *TestSession) MustOutput(t *testing.T, line string) string {
	t.Helper()
	out, err := ts.Output(t, line)
	if err != nil {
		t.Fatalf("Execute(%q) error = %v", line, err)
	}
	return out
}

// Lines splits output into lines, dropping the final newline.
func Lines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
